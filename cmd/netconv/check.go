package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/timzifer/netconv/render"
	"github.com/timzifer/netconv/rule"
)

func newCheckCmd() *cobra.Command {
	var ruleFile, sampleFile string
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Validate a rule file and print its converter rules",
		Long: `Loads the rule file, runs schema and construction checks and prints one
report per converter rule. With --config_sample_file the template markers are
compared with the rule markers as well. Exits with status 1 on errors.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := checkPaths(ruleFile); err != nil {
				return err
			}
			var markers []string
			if sampleFile != "" {
				tmpl, err := render.LoadTemplate(sampleFile)
				if err != nil {
					return err
				}
				markers = tmpl.Markers()
			}
			if code := executeRuleCheck(cmd.OutOrStdout(), ruleFile, markers, sampleFile != ""); code != 0 {
				return exitCode(code)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&ruleFile, "rule_file", "r", "", "rule document (YAML)")
	cmd.Flags().StringVarP(&sampleFile, "config_sample_file", "c", "", "optional configuration template to compare markers against")
	_ = cmd.MarkFlagRequired("rule_file")
	return cmd
}

func executeRuleCheck(out io.Writer, path string, templateMarkers []string, withTemplate bool) int {
	r, err := rule.Load(path)
	if err != nil {
		fmt.Fprintf(out, "rule file invalid: %v\n", err)
		return 1
	}

	convs := r.ConverterRules()
	if len(convs) == 0 {
		fmt.Fprintln(out, "No converter rules configured.")
		return 0
	}

	inTemplate := make(map[string]struct{}, len(templateMarkers))
	for _, m := range templateMarkers {
		inTemplate[m] = struct{}{}
	}

	status := 0
	fmt.Fprintf(out, "Filling: %q\n\n", r.CommonParameter().Filling())
	for _, conv := range convs {
		fmt.Fprintf(out, "Converter rule %q\n", conv.Key())
		fmt.Fprintf(out, "  Marker: %s\n", conv.Marker())
		if desc := strings.TrimSpace(conv.Description()); desc != "" {
			fmt.Fprintf(out, "  Description: %s\n", desc)
		}
		data := conv.Data()
		fmt.Fprintf(out, "  Rows: %d-%d (%d)\n", data.RowFrom(), data.RowTo(), data.Rows())

		declared := make(map[string]struct{}, len(data.Columns()))
		params := make([]string, 0, len(data.Columns()))
		for _, col := range data.Columns() {
			declared[col.Name()] = struct{}{}
			label := fmt.Sprintf("%s@%s", col.Name(), col.ColumnNumber())
			if col.Required() {
				label += " (required)"
			}
			params = append(params, label)
		}
		fmt.Fprintf(out, "  Parameters: %s\n", strings.Join(params, ", "))
		fmt.Fprintf(out, "  Commands: %d, conditions: %d, validations: %d\n",
			len(conv.Commands()), len(conv.Conditions()), len(conv.Validations()))

		var errs, warnings []string
		for _, name := range conv.Placeholders() {
			if _, ok := declared[name]; !ok {
				errs = append(errs, fmt.Sprintf("placeholder {%s} is not a declared parameter", name))
			}
		}
		for _, v := range conv.Validations() {
			if _, ok := declared[v.ParameterName()]; !ok {
				warnings = append(warnings, fmt.Sprintf("validator %s checks an undeclared parameter, every row will be skipped", v))
			}
		}
		if withTemplate {
			if _, ok := inTemplate[conv.Marker()]; !ok {
				warnings = append(warnings, "marker does not occur in the configuration sample")
			}
		}

		for _, msg := range warnings {
			fmt.Fprintf(out, "  Warning: %s\n", msg)
		}
		if len(errs) > 0 {
			status = 1
			fmt.Fprintln(out, "  Errors:")
			for _, msg := range errs {
				fmt.Fprintf(out, "    - %s\n", msg)
			}
		} else {
			fmt.Fprintln(out, "  Status: OK")
		}
		fmt.Fprintln(out)
	}

	if withTemplate {
		known := make(map[string]struct{}, len(convs))
		for _, m := range r.Markers() {
			known[m] = struct{}{}
		}
		for _, m := range templateMarkers {
			if _, ok := known[m]; !ok {
				fmt.Fprintf(out, "Template marker %s has no converter rule and will be left empty.\n", m)
			}
		}
	}

	if status == 0 {
		fmt.Fprintln(out, "Rule check completed successfully.")
	} else {
		fmt.Fprintln(out, "Rule check completed with errors.")
	}
	return status
}
