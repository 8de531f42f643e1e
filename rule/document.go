package rule

import (
	"errors"
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/timzifer/netconv/parameter"
)

// Document mirrors the rule file layout. Field names match the file exactly.
type Document struct {
	CommonParameter *CommonParameterDocument `yaml:"common_parameter"`
	ConverterRules  ConverterRulesDocument   `yaml:"converter_rules"`
}

// CommonParameterDocument is the `common_parameter` block.
type CommonParameterDocument struct {
	Filling *string `yaml:"filling"`
}

// ConverterRulesDocument keeps the `converter_rules` mapping in file order.
type ConverterRulesDocument []NamedConverterRuleDocument

// NamedConverterRuleDocument pairs a converter rule with its mapping key.
type NamedConverterRuleDocument struct {
	Key  string
	Rule ConverterRuleDocument
}

// UnmarshalYAML decodes the mapping node pair by pair to preserve order.
func (c *ConverterRulesDocument) UnmarshalYAML(value *yaml.Node) error {
	if value == nil {
		return errors.New("converter_rules node is nil")
	}
	if value.Kind != yaml.MappingNode {
		return fmt.Errorf("converter_rules must be a mapping (line %d)", value.Line)
	}
	out := make(ConverterRulesDocument, 0, len(value.Content)/2)
	for i := 0; i+1 < len(value.Content); i += 2 {
		keyNode, ruleNode := value.Content[i], value.Content[i+1]
		var rule ConverterRuleDocument
		if err := ruleNode.Decode(&rule); err != nil {
			return fmt.Errorf("decode converter rule %s: %w", keyNode.Value, err)
		}
		out = append(out, NamedConverterRuleDocument{Key: keyNode.Value, Rule: rule})
	}
	*c = out
	return nil
}

// ConverterRuleDocument is one entry of `converter_rules`.
type ConverterRuleDocument struct {
	Description string                     `yaml:"description"`
	Marker      string                     `yaml:"marker"`
	Data        LocationSourceDocument     `yaml:"data"`
	Commands    []string                   `yaml:"commands"`
	Validations []ValidatorDocument        `yaml:"validations"`
	Conditions  []CommandConditionDocument `yaml:"conditions"`
	Options     *OptionsDocument           `yaml:"options"`
}

// LocationSourceDocument is the `data` block of a converter rule.
type LocationSourceDocument struct {
	ParameterColumnLocations []ColumnLocationDocument `yaml:"parameter_column_locations"`
	RowFrom                  int                      `yaml:"row_from"`
	RowTo                    int                      `yaml:"row_to"`
}

// ColumnLocationDocument is one entry of `parameter_column_locations`.
type ColumnLocationDocument struct {
	Name         string `yaml:"name"`
	ColumnNumber string `yaml:"column_number"`
	Required     bool   `yaml:"required"`
}

// ValidatorDocument is one entry of `validations`.
type ValidatorDocument struct {
	ValidatorType string `yaml:"validator_type"`
	ParameterName string `yaml:"parameter_name"`
	Pattern       string `yaml:"pattern"`
	// Bounds stay raw so decimals keep their exact text.
	Min yaml.Node `yaml:"min"`
	Max yaml.Node `yaml:"max"`
}

// CommandConditionDocument is one entry of `conditions`.
type CommandConditionDocument struct {
	Condition ConditionDocument `yaml:"condition"`
	Action    string            `yaml:"action"`
	Match     string            `yaml:"match"`
	Commands  []string          `yaml:"commands"`
}

// ConditionDocument carries the fields of every condition variant; Type selects one.
type ConditionDocument struct {
	Type             string   `yaml:"type"`
	TargetParameters []string `yaml:"target_parameters"`
	TargetString     string   `yaml:"target_string"`
	Expression       string   `yaml:"expression"`
}

// OptionsDocument is the `options` block.
type OptionsDocument struct {
	IndentLevel              int  `yaml:"indent_level"`
	FillingEachCommands      bool `yaml:"filling_each_commands"`
	FillingEachCommandsGroup bool `yaml:"filling_each_commands_group"`
}

// Load reads, schema checks and builds a rule file.
func Load(path string) (*Rule, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rule file: %w", err)
	}
	rule, err := Decode(raw)
	if err != nil {
		return nil, fmt.Errorf("rule file %s: %w", path, err)
	}
	return rule, nil
}

// Decode schema checks and builds a rule document.
func Decode(raw []byte) (*Rule, error) {
	var generic interface{}
	if err := yaml.Unmarshal(raw, &generic); err != nil {
		return nil, fmt.Errorf("unmarshal rule document: %w", err)
	}
	if err := CheckSchema(generic); err != nil {
		return nil, err
	}
	var doc Document
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("unmarshal rule document: %w", err)
	}
	return doc.Build()
}

// Build validates every value object of the document.
func (d Document) Build() (*Rule, error) {
	filling := DefaultFilling
	if d.CommonParameter != nil && d.CommonParameter.Filling != nil {
		filling = *d.CommonParameter.Filling
	}
	common, err := NewCommonParameter(filling)
	if err != nil {
		return nil, fmt.Errorf("common_parameter: %w", err)
	}

	converters := make([]ConverterRule, 0, len(d.ConverterRules))
	for _, named := range d.ConverterRules {
		conv, err := named.Rule.build(named.Key)
		if err != nil {
			return nil, fmt.Errorf("converter rule %s: %w", named.Key, err)
		}
		converters = append(converters, conv)
	}
	return NewRule(common, converters...)
}

func (d ConverterRuleDocument) build(key string) (ConverterRule, error) {
	data, err := d.Data.build()
	if err != nil {
		return ConverterRule{}, fmt.Errorf("data: %w", err)
	}

	validations := make([]Validator, 0, len(d.Validations))
	for i, vd := range d.Validations {
		v, err := vd.build()
		if err != nil {
			return ConverterRule{}, fmt.Errorf("validations[%d]: %w", i, err)
		}
		validations = append(validations, v)
	}

	conditions := make([]CommandCondition, 0, len(d.Conditions))
	for i, cd := range d.Conditions {
		c, err := cd.build()
		if err != nil {
			return ConverterRule{}, fmt.Errorf("conditions[%d]: %w", i, err)
		}
		conditions = append(conditions, c)
	}

	var opts Options
	if d.Options != nil {
		opts, err = NewOptions(d.Options.IndentLevel, d.Options.FillingEachCommands, d.Options.FillingEachCommandsGroup)
		if err != nil {
			return ConverterRule{}, err
		}
	}

	return NewConverterRule(ConverterSpec{
		Key:         key,
		Description: d.Description,
		Marker:      d.Marker,
		Data:        data,
		Commands:    d.Commands,
		Validations: validations,
		Conditions:  conditions,
		Options:     opts,
	})
}

func (d LocationSourceDocument) build() (parameter.LocationSource, error) {
	cols := make([]parameter.ColumnLocation, 0, len(d.ParameterColumnLocations))
	for i, cd := range d.ParameterColumnLocations {
		col, err := parameter.NewColumnLocation(cd.Name, cd.ColumnNumber, cd.Required)
		if err != nil {
			return parameter.LocationSource{}, fmt.Errorf("parameter_column_locations[%d]: %w", i, err)
		}
		cols = append(cols, col)
	}
	return parameter.NewLocationSource(cols, d.RowFrom, d.RowTo)
}

func (d ValidatorDocument) build() (Validator, error) {
	kind, err := ParseValidatorType(d.ValidatorType)
	if err != nil {
		return Validator{}, err
	}
	switch kind {
	case ValidatorRegex:
		return NewRegexValidator(d.ParameterName, d.Pattern)
	case ValidatorNumberRange:
		min, err := decimalNode("min", d.Min)
		if err != nil {
			return Validator{}, err
		}
		max, err := decimalNode("max", d.Max)
		if err != nil {
			return Validator{}, err
		}
		return NewNumberRangeValidator(d.ParameterName, min, max)
	default:
		return Validator{}, fmt.Errorf("%w: %q", ErrUnknownValidatorType, d.ValidatorType)
	}
}

func decimalNode(field string, node yaml.Node) (decimal.Decimal, error) {
	if node.Kind != yaml.ScalarNode || node.Tag == "!!null" {
		return decimal.Decimal{}, fmt.Errorf("%w: %s is required", ErrInvalidRange, field)
	}
	value, err := decimal.NewFromString(node.Value)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("%w: %s %q: %v", ErrInvalidRange, field, node.Value, err)
	}
	return value, nil
}

func (d CommandConditionDocument) build() (CommandCondition, error) {
	cond, err := d.Condition.build()
	if err != nil {
		return CommandCondition{}, fmt.Errorf("condition: %w", err)
	}
	match, err := ParseMatchMode(d.Match)
	if err != nil {
		return CommandCondition{}, err
	}
	action, err := BuildAction(d.Action, match)
	if err != nil {
		return CommandCondition{}, err
	}
	return NewCommandCondition(cond, action, d.Commands)
}

func (d ConditionDocument) build() (Condition, error) {
	kind, err := ParseConditionType(d.Type)
	if err != nil {
		return Condition{}, err
	}
	switch kind {
	case ConditionIsEmpty:
		return NewIsEmpty(d.TargetParameters)
	case ConditionIsContained:
		return NewIsContained(d.TargetParameters, d.TargetString)
	case ConditionExpression:
		return NewExpression(d.Expression)
	default:
		return Condition{}, fmt.Errorf("%w: %q", ErrUnknownConditionType, d.Type)
	}
}
