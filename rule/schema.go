package rule

import (
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
)

// schemaSource constrains the shape of a rule document before it is built.
const schemaSource = `
#ColumnLocation: {
	name:          string & !=""
	column_number: =~"^[A-Z]+$"
	required?:     bool
}

#Data: {
	parameter_column_locations: [#ColumnLocation, ...#ColumnLocation]
	row_from: int & >=1
	row_to:   int & >=1
}

#IsEmpty: {
	type: "isEmpty"
	target_parameters: [string, ...string]
}

#IsContained: {
	type: "isContained"
	target_parameters: [string, ...string]
	target_string: string & !=""
}

#Expression: {
	type:       "expression"
	expression: string & !=""
}

#CommandCondition: {
	condition: #IsEmpty | #IsContained | #Expression
	action:    "Delete" | "Add"
	match?:    "literal" | "regex"
	commands: [string, ...string]
}

#RegexValidator: {
	validator_type: "RegexValidator"
	parameter_name: string & !=""
	pattern:        string & !=""
}

#NumberRangeValidator: {
	validator_type: "NumberRangeValidator"
	parameter_name: string & !=""
	min:            number
	max:            number
}

#Options: {
	indent_level?:                int & >=0
	filling_each_commands?:       bool
	filling_each_commands_group?: bool
}

#ConverterRule: {
	description?: null | string
	marker:       =~"^%%\\w+%%$"
	data:         #Data
	commands: [string, ...string]
	validations?: null | [...(#RegexValidator | #NumberRangeValidator)]
	conditions?:  null | [...#CommandCondition]
	options?:     null | #Options
}

#Rule: {
	common_parameter?: null | {
		filling?: string & !=""
	}
	converter_rules: [string]: #ConverterRule
}
`

// CheckSchema validates a generically decoded rule document against the
// rule schema. Errors wrap ErrSchema.
func CheckSchema(doc interface{}) error {
	ctx := cuecontext.New()
	schema := ctx.CompileString(schemaSource, cue.Filename("rule_schema.cue"))
	if err := schema.Err(); err != nil {
		return fmt.Errorf("compile rule schema: %w", err)
	}
	value := ctx.Encode(doc)
	if err := value.Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrSchema, err)
	}
	unified := schema.LookupPath(cue.ParsePath("#Rule")).Unify(value)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return fmt.Errorf("%w: %s", ErrSchema, cueerrors.Details(err, nil))
	}
	return nil
}
