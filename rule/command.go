package rule

import (
	"fmt"

	"github.com/timzifer/netconv/parameter"
)

// CommandCondition adds or removes command lines when its condition holds.
type CommandCondition struct {
	condition Condition
	action    Action
	commands  []commandTemplate
}

// NewCommandCondition validates the command templates of a conditional block.
func NewCommandCondition(condition Condition, action Action, commands []string) (CommandCondition, error) {
	if condition.kind == "" {
		return CommandCondition{}, fmt.Errorf("%w: condition is not set", ErrUnknownConditionType)
	}
	if action.kind == "" {
		return CommandCondition{}, fmt.Errorf("%w: action is not set", ErrUnknownAction)
	}
	templates, err := parseCommandTemplates(commands)
	if err != nil {
		return CommandCondition{}, err
	}
	return CommandCondition{condition: condition, action: action, commands: templates}, nil
}

func (c CommandCondition) Condition() Condition { return c.condition }
func (c CommandCondition) Action() Action       { return c.action }
func (c CommandCondition) Commands() []string   { return rawTemplates(c.commands) }

// Apply evaluates the condition against the group. When it holds, the
// condition's commands are rendered with the group's values and combined with
// applicable through the action; otherwise applicable is returned as is.
func (c CommandCondition) Apply(group parameter.Group, applicable []string) ([]string, error) {
	ok, err := c.condition.Evaluate(group)
	if err != nil {
		return nil, err
	}
	if !ok {
		return applicable, nil
	}
	conditional, err := renderCommands(c.commands, group.Values())
	if err != nil {
		return nil, err
	}
	return c.action.Do(conditional, applicable)
}
