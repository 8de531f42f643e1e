package rule

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/timzifer/netconv/parameter"
)

// ConditionType is the discriminator of a condition, as written in the rule
// document's `type` field.
type ConditionType string

const (
	// ConditionIsEmpty holds when no target parameter has content.
	ConditionIsEmpty ConditionType = "isEmpty"
	// ConditionIsContained holds when every target parameter matches target_string.
	ConditionIsContained ConditionType = "isContained"
	// ConditionExpression holds when an expr-lang boolean expression evaluates true.
	ConditionExpression ConditionType = "expression"
)

// ParseConditionType resolves a discriminator string.
func ParseConditionType(s string) (ConditionType, error) {
	switch t := ConditionType(s); t {
	case ConditionIsEmpty, ConditionIsContained, ConditionExpression:
		return t, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownConditionType, s)
	}
}

// Condition is a predicate over a parameter group. The zero value is not
// usable; build conditions with NewIsEmpty, NewIsContained or NewExpression.
type Condition struct {
	kind         ConditionType
	targets      []string
	targetString string
	pattern      *regexp.Regexp
	expression   string
	program      *vm.Program
}

// NewIsEmpty builds a condition that holds when every target is absent or empty.
func NewIsEmpty(targets []string) (Condition, error) {
	cleaned, err := checkTargets(targets)
	if err != nil {
		return Condition{}, err
	}
	return Condition{kind: ConditionIsEmpty, targets: cleaned}, nil
}

// NewIsContained builds a condition that holds when every target is present
// and its value contains a match of targetString.
func NewIsContained(targets []string, targetString string) (Condition, error) {
	cleaned, err := checkTargets(targets)
	if err != nil {
		return Condition{}, err
	}
	if targetString == "" {
		return Condition{}, ErrEmptyTargetString
	}
	pattern, err := regexp.Compile(targetString)
	if err != nil {
		return Condition{}, fmt.Errorf("%w: target_string %q: %v", ErrInvalidPattern, targetString, err)
	}
	return Condition{kind: ConditionIsContained, targets: cleaned, targetString: targetString, pattern: pattern}, nil
}

// NewExpression compiles a boolean expr-lang expression. Parameters are
// visible by name and through the `params` map.
func NewExpression(source string) (Condition, error) {
	if strings.TrimSpace(source) == "" {
		return Condition{}, fmt.Errorf("%w: expression must not be empty", ErrInvalidExpression)
	}
	program, err := expr.Compile(source, expr.Env(map[string]interface{}{}), expr.AllowUndefinedVariables(), expr.AsBool())
	if err != nil {
		return Condition{}, fmt.Errorf("%w: %v", ErrInvalidExpression, err)
	}
	return Condition{kind: ConditionExpression, expression: source, program: program}, nil
}

func checkTargets(targets []string) ([]string, error) {
	if len(targets) == 0 {
		return nil, ErrEmptyTargets
	}
	out := make([]string, len(targets))
	for i, target := range targets {
		if strings.TrimSpace(target) == "" {
			return nil, fmt.Errorf("%w: target %d is blank", ErrEmptyTargets, i)
		}
		out[i] = target
	}
	return out, nil
}

func (c Condition) Type() ConditionType { return c.kind }

// Targets returns a copy of the target parameter names.
func (c Condition) Targets() []string { return append([]string(nil), c.targets...) }

func (c Condition) TargetString() string { return c.targetString }
func (c Condition) Expression() string   { return c.expression }

// Evaluate reports whether the group satisfies the condition. Only expression
// conditions can fail at evaluation time.
func (c Condition) Evaluate(group parameter.Group) (bool, error) {
	switch c.kind {
	case ConditionIsEmpty:
		for _, target := range c.targets {
			if p, ok := group.Get(target); ok && !p.Empty() {
				return false, nil
			}
		}
		return true, nil
	case ConditionIsContained:
		for _, target := range c.targets {
			p, ok := group.Get(target)
			if !ok {
				return false, nil
			}
			if !c.pattern.MatchString(p.Value()) {
				return false, nil
			}
		}
		return true, nil
	case ConditionExpression:
		out, err := expr.Run(c.program, expressionEnv(group))
		if err != nil {
			return false, fmt.Errorf("%w: %s: %v", ErrEvaluation, c.expression, err)
		}
		result, ok := out.(bool)
		if !ok {
			return false, fmt.Errorf("%w: %s returned %T", ErrEvaluation, c.expression, out)
		}
		return result, nil
	default:
		return false, fmt.Errorf("%w: %q", ErrUnknownConditionType, c.kind)
	}
}

func expressionEnv(group parameter.Group) map[string]interface{} {
	values := group.Values()
	env := make(map[string]interface{}, len(values)+1)
	for name, value := range values {
		env[name] = value
	}
	env["params"] = values
	return env
}
