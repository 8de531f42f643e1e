package rule

import (
	"fmt"
	"regexp"
)

// ActionType names the transform a command condition applies.
type ActionType string

const (
	// ActionDelete removes matching lines from the applicable commands.
	ActionDelete ActionType = "Delete"
	// ActionAdd appends the conditional commands.
	ActionAdd ActionType = "Add"
)

// MatchMode selects how Delete compares conditional and applicable lines.
type MatchMode string

const (
	// MatchLiteral removes applicable lines equal to a conditional line.
	MatchLiteral MatchMode = "literal"
	// MatchRegex treats each conditional line as a pattern searched in applicable lines.
	MatchRegex MatchMode = "regex"
)

// ParseMatchMode resolves a match mode; the empty string selects MatchLiteral.
func ParseMatchMode(s string) (MatchMode, error) {
	switch m := MatchMode(s); m {
	case "":
		return MatchLiteral, nil
	case MatchLiteral, MatchRegex:
		return m, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownMatchMode, s)
	}
}

// Action is a pure transform over two command lists.
type Action struct {
	kind  ActionType
	match MatchMode
}

// BuildAction resolves an action name such as "Delete" or "Add".
func BuildAction(name string, match MatchMode) (Action, error) {
	switch kind := ActionType(name); kind {
	case ActionDelete, ActionAdd:
		if match == "" {
			match = MatchLiteral
		}
		if match != MatchLiteral && match != MatchRegex {
			return Action{}, fmt.Errorf("%w: %q", ErrUnknownMatchMode, match)
		}
		return Action{kind: kind, match: match}, nil
	default:
		return Action{}, fmt.Errorf("%w: %q", ErrUnknownAction, name)
	}
}

func (a Action) Type() ActionType { return a.kind }
func (a Action) Match() MatchMode { return a.match }

// Do combines the conditional commands with the applicable ones. Neither input
// is modified.
func (a Action) Do(conditional, applicable []string) ([]string, error) {
	switch a.kind {
	case ActionAdd:
		out := make([]string, 0, len(applicable)+len(conditional))
		out = append(out, applicable...)
		return append(out, conditional...), nil
	case ActionDelete:
		return a.delete(conditional, applicable)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownAction, a.kind)
	}
}

func (a Action) delete(conditional, applicable []string) ([]string, error) {
	var matches func(string) bool
	switch a.match {
	case MatchRegex:
		patterns := make([]*regexp.Regexp, 0, len(conditional))
		for _, cmd := range conditional {
			re, err := regexp.Compile(cmd)
			if err != nil {
				return nil, fmt.Errorf("%w: %q: %v", ErrInvalidPattern, cmd, err)
			}
			patterns = append(patterns, re)
		}
		matches = func(line string) bool {
			for _, re := range patterns {
				if re.MatchString(line) {
					return true
				}
			}
			return false
		}
	default:
		set := make(map[string]struct{}, len(conditional))
		for _, cmd := range conditional {
			set[cmd] = struct{}{}
		}
		matches = func(line string) bool {
			_, ok := set[line]
			return ok
		}
	}

	out := make([]string, 0, len(applicable))
	for _, line := range applicable {
		if !matches(line) {
			out = append(out, line)
		}
	}
	return out, nil
}
