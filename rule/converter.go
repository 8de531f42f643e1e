package rule

import (
	"errors"
	"fmt"
	"strings"

	"github.com/timzifer/netconv/devconfig"
	"github.com/timzifer/netconv/parameter"
)

// CommonParameter holds settings shared by every converter rule of a device.
type CommonParameter struct {
	filling string
}

// NewCommonParameter validates the filler token. An empty token is rejected;
// callers wanting the default pass DefaultFilling.
func NewCommonParameter(filling string) (CommonParameter, error) {
	if filling == "" {
		return CommonParameter{}, ErrEmptyFilling
	}
	return CommonParameter{filling: filling}, nil
}

// Filling returns the filler token, DefaultFilling for the zero value.
func (c CommonParameter) Filling() string {
	if c.filling == "" {
		return DefaultFilling
	}
	return c.filling
}

// SkipReason explains why a parameter row contributed no command group.
type SkipReason string

const (
	SkipRequired   SkipReason = "required"
	SkipValidation SkipReason = "validation"
)

// Skip records one row left out of a config source.
type Skip struct {
	Index  int
	Reason SkipReason
	Detail string
}

// ConverterSpec carries the already validated parts of a converter rule.
type ConverterSpec struct {
	Key         string
	Description string
	Marker      string
	Data        parameter.LocationSource
	Commands    []string
	Validations []Validator
	Conditions  []CommandCondition
	Options     Options
}

// ConverterRule maps one template marker to a command generation recipe.
type ConverterRule struct {
	key         string
	description string
	marker      string
	data        parameter.LocationSource
	commands    []commandTemplate
	validations []Validator
	conditions  []CommandCondition
	options     Options
}

// NewConverterRule validates the marker and command templates.
func NewConverterRule(spec ConverterSpec) (ConverterRule, error) {
	if !devconfig.IsMarker(spec.Marker) {
		return ConverterRule{}, fmt.Errorf("%w: %q must match %%%%WORD%%%%", ErrInvalidMarker, spec.Marker)
	}
	if spec.Data.Rows() == 0 {
		return ConverterRule{}, fmt.Errorf("converter rule %s: %w", spec.Marker, parameter.ErrNoColumnLocations)
	}
	templates, err := parseCommandTemplates(spec.Commands)
	if err != nil {
		return ConverterRule{}, fmt.Errorf("converter rule %s: %w", spec.Marker, err)
	}
	return ConverterRule{
		key:         spec.Key,
		description: spec.Description,
		marker:      spec.Marker,
		data:        spec.Data,
		commands:    templates,
		validations: append([]Validator(nil), spec.Validations...),
		conditions:  append([]CommandCondition(nil), spec.Conditions...),
		options:     spec.Options,
	}, nil
}

func (r ConverterRule) Key() string                    { return r.key }
func (r ConverterRule) Description() string            { return r.description }
func (r ConverterRule) Marker() string                 { return r.marker }
func (r ConverterRule) Data() parameter.LocationSource { return r.data }
func (r ConverterRule) Commands() []string             { return rawTemplates(r.commands) }
func (r ConverterRule) Options() Options               { return r.options }

func (r ConverterRule) Validations() []Validator {
	return append([]Validator(nil), r.validations...)
}

func (r ConverterRule) Conditions() []CommandCondition {
	return append([]CommandCondition(nil), r.conditions...)
}

// Placeholders lists every parameter name referenced by the rule's command
// templates, in first-seen order.
func (r ConverterRule) Placeholders() []string {
	seen := make(map[string]struct{})
	var names []string
	add := func(templates []commandTemplate) {
		for _, tpl := range templates {
			for _, name := range tpl.placeholders() {
				if _, ok := seen[name]; ok {
					continue
				}
				seen[name] = struct{}{}
				names = append(names, name)
			}
		}
	}
	add(r.commands)
	for _, cond := range r.conditions {
		add(cond.commands)
	}
	return names
}

// gate applies the required-parameter check and every validator.
func (r ConverterRule) gate(group parameter.Group) (SkipReason, string, bool) {
	if missing := group.MissingRequired(); len(missing) > 0 {
		return SkipRequired, "missing " + strings.Join(missing, ", "), false
	}
	for _, v := range r.validations {
		if !v.IsValid(group) {
			return SkipValidation, v.String(), false
		}
	}
	return "", "", true
}

// BuildCommands renders the rule's command list for a single row, applying
// every command condition in declared order.
func (r ConverterRule) BuildCommands(group parameter.Group) ([]string, error) {
	commands, err := renderCommands(r.commands, group.Values())
	if err != nil {
		return nil, err
	}
	for i, cond := range r.conditions {
		commands, err = cond.Apply(group, commands)
		if err != nil {
			return nil, fmt.Errorf("condition %d: %w", i, err)
		}
	}
	return commands, nil
}

// MakeConfigSource builds the rule's config source from one parameter group
// per expanded row. Rows failing the required-parameter check or a validator
// are left out and reported in the returned skips. When every row is skipped
// the error wraps devconfig.ErrEmptyCommandsGroup.
func (r ConverterRule) MakeConfigSource(groups []parameter.Group, common CommonParameter) (devconfig.Source, []Skip, error) {
	var skips []Skip
	commandsGroup := make([][]string, 0, len(groups))
	for idx, group := range groups {
		if reason, detail, ok := r.gate(group); !ok {
			skips = append(skips, Skip{Index: idx, Reason: reason, Detail: detail})
			continue
		}
		commands, err := r.BuildCommands(group)
		if err != nil {
			return devconfig.Source{}, skips, fmt.Errorf("converter rule %s row %d: %w", r.marker, idx, err)
		}
		commandsGroup = append(commandsGroup, commands)
	}

	shaped := r.options.Apply(commandsGroup, common.Filling())
	src, err := devconfig.NewSource(r.marker, shaped)
	if err != nil {
		return devconfig.Source{}, skips, fmt.Errorf("converter rule %s: %w", r.marker, err)
	}
	return src, skips, nil
}

// Rule is the full rule set of a conversion: shared parameters plus converter
// rules in declared order.
type Rule struct {
	common     CommonParameter
	converters []ConverterRule
}

// NewRule rejects duplicate markers and duplicate keys.
func NewRule(common CommonParameter, converters ...ConverterRule) (*Rule, error) {
	markers := make(map[string]string, len(converters))
	keys := make(map[string]struct{}, len(converters))
	for _, conv := range converters {
		if prev, exists := markers[conv.marker]; exists {
			return nil, fmt.Errorf("%w: %s used by %q and %q", ErrDuplicateMarker, conv.marker, prev, conv.key)
		}
		markers[conv.marker] = conv.key
		if conv.key == "" {
			continue
		}
		if _, exists := keys[conv.key]; exists {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateRuleKey, conv.key)
		}
		keys[conv.key] = struct{}{}
	}
	return &Rule{common: common, converters: append([]ConverterRule(nil), converters...)}, nil
}

func (r *Rule) CommonParameter() CommonParameter { return r.common }

// ConverterRules returns the converter rules in declared order.
func (r *Rule) ConverterRules() []ConverterRule {
	return append([]ConverterRule(nil), r.converters...)
}

// Lookup returns the converter rule declared under key.
func (r *Rule) Lookup(key string) (ConverterRule, bool) {
	for _, conv := range r.converters {
		if conv.key == key {
			return conv, true
		}
	}
	return ConverterRule{}, false
}

// Markers returns every marker in declared order.
func (r *Rule) Markers() []string {
	out := make([]string, 0, len(r.converters))
	for _, conv := range r.converters {
		out = append(out, conv.marker)
	}
	return out
}

// IsNoRows reports whether err means a converter rule produced no rows.
func IsNoRows(err error) bool {
	return errors.Is(err, devconfig.ErrEmptyCommandsGroup)
}
