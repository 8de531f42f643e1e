package parameter

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrEmptyName is returned when a parameter or location is declared without a name.
	ErrEmptyName = errors.New("parameter name must not be empty")
	// ErrDuplicateParameter is returned when a group holds two parameters with the same name.
	ErrDuplicateParameter = errors.New("duplicate parameter name")
)

// Parameter is a single named value read from a device's parameter sheet.
type Parameter struct {
	name     string
	value    string
	required bool
}

// New validates and constructs a parameter. Value may be empty.
func New(name, value string, required bool) (Parameter, error) {
	if strings.TrimSpace(name) == "" {
		return Parameter{}, ErrEmptyName
	}
	return Parameter{name: name, value: value, required: required}, nil
}

func (p Parameter) Name() string   { return p.name }
func (p Parameter) Value() string  { return p.value }
func (p Parameter) Required() bool { return p.required }

// Empty reports whether the parameter has no content.
func (p Parameter) Empty() bool { return p.value == "" }

// Group is the ordered set of parameters read for one row of a rule.
type Group struct {
	params []Parameter
	index  map[string]int
}

// NewGroup builds a group, rejecting duplicate names.
func NewGroup(params ...Parameter) (Group, error) {
	g := Group{
		params: make([]Parameter, 0, len(params)),
		index:  make(map[string]int, len(params)),
	}
	for _, p := range params {
		if p.name == "" {
			return Group{}, ErrEmptyName
		}
		if _, exists := g.index[p.name]; exists {
			return Group{}, fmt.Errorf("%w: %s", ErrDuplicateParameter, p.name)
		}
		g.index[p.name] = len(g.params)
		g.params = append(g.params, p)
	}
	return g, nil
}

// MustGroup is like NewGroup but panics on error. Intended for fixtures.
func MustGroup(params ...Parameter) Group {
	g, err := NewGroup(params...)
	if err != nil {
		panic(err)
	}
	return g
}

// Has reports whether a parameter with the given name is part of the group.
func (g Group) Has(name string) bool {
	_, ok := g.index[name]
	return ok
}

// Get returns the parameter with the given name.
func (g Group) Get(name string) (Parameter, bool) {
	idx, ok := g.index[name]
	if !ok {
		return Parameter{}, false
	}
	return g.params[idx], true
}

// Len returns the number of parameters in the group.
func (g Group) Len() int { return len(g.params) }

// Parameters returns a copy of the group's parameters in declaration order.
func (g Group) Parameters() []Parameter {
	out := make([]Parameter, len(g.params))
	copy(out, g.params)
	return out
}

// Values returns a name to value mapping of the group.
func (g Group) Values() map[string]string {
	out := make(map[string]string, len(g.params))
	for _, p := range g.params {
		out[p.name] = p.value
	}
	return out
}

// AllRequiredAvailable reports whether every required parameter has a value.
func (g Group) AllRequiredAvailable() bool {
	for _, p := range g.params {
		if p.required && p.Empty() {
			return false
		}
	}
	return true
}

// MissingRequired lists the names of required parameters without a value.
func (g Group) MissingRequired() []string {
	var missing []string
	for _, p := range g.params {
		if p.required && p.Empty() {
			missing = append(missing, p.name)
		}
	}
	return missing
}
