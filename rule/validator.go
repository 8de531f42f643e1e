package rule

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/timzifer/netconv/parameter"
)

// ValidatorType is the discriminator written in the rule document's
// `validator_type` field.
type ValidatorType string

const (
	ValidatorRegex       ValidatorType = "RegexValidator"
	ValidatorNumberRange ValidatorType = "NumberRangeValidator"
)

// ParseValidatorType resolves a discriminator string.
func ParseValidatorType(s string) (ValidatorType, error) {
	switch t := ValidatorType(s); t {
	case ValidatorRegex, ValidatorNumberRange:
		return t, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownValidatorType, s)
	}
}

// Validator gates whether a parameter row is used at all.
type Validator struct {
	kind      ValidatorType
	parameter string
	pattern   *regexp.Regexp
	min       decimal.Decimal
	max       decimal.Decimal
}

// NewRegexValidator accepts rows whose parameter value contains a match of pattern.
func NewRegexValidator(parameterName, pattern string) (Validator, error) {
	if strings.TrimSpace(parameterName) == "" {
		return Validator{}, parameter.ErrEmptyName
	}
	if pattern == "" {
		return Validator{}, fmt.Errorf("%w: pattern must not be empty", ErrInvalidPattern)
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return Validator{}, fmt.Errorf("%w: %q: %v", ErrInvalidPattern, pattern, err)
	}
	return Validator{kind: ValidatorRegex, parameter: parameterName, pattern: re}, nil
}

// NewNumberRangeValidator accepts rows whose parameter value is a number in [min, max].
func NewNumberRangeValidator(parameterName string, min, max decimal.Decimal) (Validator, error) {
	if strings.TrimSpace(parameterName) == "" {
		return Validator{}, parameter.ErrEmptyName
	}
	if min.GreaterThan(max) {
		return Validator{}, fmt.Errorf("%w: min %s is greater than max %s", ErrInvalidRange, min, max)
	}
	return Validator{kind: ValidatorNumberRange, parameter: parameterName, min: min, max: max}, nil
}

func (v Validator) Type() ValidatorType   { return v.kind }
func (v Validator) ParameterName() string { return v.parameter }

// IsValid reports whether the group passes the validator. A missing parameter
// never passes.
func (v Validator) IsValid(group parameter.Group) bool {
	p, ok := group.Get(v.parameter)
	if !ok {
		return false
	}
	switch v.kind {
	case ValidatorRegex:
		return v.pattern.MatchString(p.Value())
	case ValidatorNumberRange:
		value, err := decimal.NewFromString(strings.TrimSpace(p.Value()))
		if err != nil {
			return false
		}
		return value.GreaterThanOrEqual(v.min) && value.LessThanOrEqual(v.max)
	default:
		return false
	}
}

// String describes the validator for diagnostics.
func (v Validator) String() string {
	switch v.kind {
	case ValidatorRegex:
		return fmt.Sprintf("%s(%s =~ %s)", v.kind, v.parameter, v.pattern)
	case ValidatorNumberRange:
		return fmt.Sprintf("%s(%s in [%s, %s])", v.kind, v.parameter, v.min, v.max)
	default:
		return string(v.kind)
	}
}
