package rule

import (
	"fmt"
	"strings"
)

// DefaultFilling is the filler token used when a rule document omits one.
const DefaultFilling = "!"

// Options shapes the command groups produced by a converter rule.
type Options struct {
	indentLevel              int
	fillingEachCommands      bool
	fillingEachCommandsGroup bool
}

// NewOptions validates the indentation level.
func NewOptions(indentLevel int, fillingEachCommands, fillingEachCommandsGroup bool) (Options, error) {
	if indentLevel < 0 {
		return Options{}, fmt.Errorf("%w: indent_level %d must not be negative", ErrInvalidOptions, indentLevel)
	}
	return Options{
		indentLevel:              indentLevel,
		fillingEachCommands:      fillingEachCommands,
		fillingEachCommandsGroup: fillingEachCommandsGroup,
	}, nil
}

func (o Options) IndentLevel() int               { return o.indentLevel }
func (o Options) FillingEachCommands() bool      { return o.fillingEachCommands }
func (o Options) FillingEachCommandsGroup() bool { return o.fillingEachCommandsGroup }

// Apply returns new command groups with indentation and filler lines. Lines are
// indented first, so filler tokens are never indented. Empty groups stay empty.
func (o Options) Apply(groups [][]string, filling string) [][]string {
	indent := strings.Repeat(" ", o.indentLevel)
	out := make([][]string, 0, len(groups))
	for _, group := range groups {
		size := len(group)
		if o.fillingEachCommands && size > 1 {
			size += size - 1
		}
		if o.fillingEachCommandsGroup && len(group) > 0 {
			size++
		}
		shaped := make([]string, 0, size)
		for i, line := range group {
			if i > 0 && o.fillingEachCommands {
				shaped = append(shaped, filling)
			}
			shaped = append(shaped, indent+line)
		}
		if o.fillingEachCommandsGroup && len(group) > 0 {
			shaped = append(shaped, filling)
		}
		out = append(out, shaped)
	}
	return out
}
