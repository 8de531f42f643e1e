package rule

import (
	"fmt"
	"strings"
)

// commandTemplate is a command line with {name} placeholders. Doubled braces
// render as literal braces.
type commandTemplate struct {
	raw   string
	parts []templatePart
}

type templatePart struct {
	literal     string
	placeholder string
}

func parseCommandTemplate(raw string) (commandTemplate, error) {
	tpl := commandTemplate{raw: raw}
	var lit strings.Builder
	flush := func() {
		if lit.Len() > 0 {
			tpl.parts = append(tpl.parts, templatePart{literal: lit.String()})
			lit.Reset()
		}
	}
	for i := 0; i < len(raw); i++ {
		switch ch := raw[i]; ch {
		case '{':
			if i+1 < len(raw) && raw[i+1] == '{' {
				lit.WriteByte('{')
				i++
				continue
			}
			end := strings.IndexByte(raw[i+1:], '}')
			if end < 0 {
				return commandTemplate{}, fmt.Errorf("%w: unclosed '{' in %q", ErrMalformedTemplate, raw)
			}
			name := raw[i+1 : i+1+end]
			if name == "" || strings.ContainsAny(name, "{") {
				return commandTemplate{}, fmt.Errorf("%w: bad placeholder in %q", ErrMalformedTemplate, raw)
			}
			flush()
			tpl.parts = append(tpl.parts, templatePart{placeholder: name})
			i += end + 1
		case '}':
			if i+1 < len(raw) && raw[i+1] == '}' {
				lit.WriteByte('}')
				i++
				continue
			}
			return commandTemplate{}, fmt.Errorf("%w: single '}' in %q", ErrMalformedTemplate, raw)
		default:
			lit.WriteByte(ch)
		}
	}
	flush()
	return tpl, nil
}

func parseCommandTemplates(raws []string) ([]commandTemplate, error) {
	if len(raws) == 0 {
		return nil, ErrEmptyCommands
	}
	out := make([]commandTemplate, 0, len(raws))
	for _, raw := range raws {
		tpl, err := parseCommandTemplate(raw)
		if err != nil {
			return nil, err
		}
		out = append(out, tpl)
	}
	return out, nil
}

// placeholders lists the parameter names referenced by the template.
func (t commandTemplate) placeholders() []string {
	var names []string
	for _, part := range t.parts {
		if part.placeholder != "" {
			names = append(names, part.placeholder)
		}
	}
	return names
}

func (t commandTemplate) render(values map[string]string) (string, error) {
	var b strings.Builder
	for _, part := range t.parts {
		if part.placeholder == "" {
			b.WriteString(part.literal)
			continue
		}
		value, ok := values[part.placeholder]
		if !ok {
			return "", fmt.Errorf("%w: {%s} in %q", ErrUnresolvedPlaceholder, part.placeholder, t.raw)
		}
		b.WriteString(value)
	}
	return b.String(), nil
}

func renderCommands(templates []commandTemplate, values map[string]string) ([]string, error) {
	out := make([]string, 0, len(templates))
	for _, tpl := range templates {
		line, err := tpl.render(values)
		if err != nil {
			return nil, err
		}
		out = append(out, line)
	}
	return out, nil
}

func rawTemplates(templates []commandTemplate) []string {
	out := make([]string, len(templates))
	for i, tpl := range templates {
		out[i] = tpl.raw
	}
	return out
}
