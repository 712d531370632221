package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/zclconf/go-cty/cty"

	"github.com/specialistvlad/hopsgo/internal/component"
)

func newEvalCommand(v *viper.Viper) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "eval ROUTE [ARG...]",
		Short: "Run one component locally",
		Long: `Run one component in-process without starting a server.

Each ARG is a JSON document bound to the inputs in declaration order.
Arguments that are not valid JSON are passed as strings, and missing
trailing arguments fall back to the input defaults.

Examples:
  hopsgo eval add 2 3
  hopsgo eval unit_vectors '{"X":3,"Y":4,"Z":0}'
  hopsgo eval -o json average_speed 100 20`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if output != "text" && output != "json" {
				return usageError(fmt.Errorf("unknown output format %q: use text or json", output))
			}
			a, err := loadApp(cmd, v)
			if err != nil {
				return err
			}

			route := component.NormalizeRoute(args[0])
			d, err := a.Registry().Lookup(route)
			if err != nil {
				return usageError(err)
			}
			values := make([]cty.Value, 0, len(args)-1)
			for _, arg := range args[1:] {
				values = append(values, argValue(arg))
			}

			results, err := a.Dispatcher().Dispatch(a.Context(), route, values)
			if err != nil {
				return runtimeError(fmt.Errorf("%s: %w", component.Outcome(err), err))
			}
			if err := writeResults(cmd.OutOrStdout(), output, d.Outputs, results); err != nil {
				return runtimeError(err)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "text", "Output format: text or json")
	return cmd
}

func argValue(arg string) cty.Value {
	if !json.Valid([]byte(arg)) {
		return cty.StringVal(arg)
	}
	v, err := component.FromJSON([]byte(arg))
	if err != nil {
		return cty.StringVal(arg)
	}
	return v
}

// writeResults prints one "Name = value" line per output, or a single JSON
// object keyed by output name.
func writeResults(w io.Writer, format string, outputs []component.Param, results []cty.Value) error {
	docs := make([]json.RawMessage, len(results))
	for i, r := range results {
		b, err := component.ToJSON(r)
		if err != nil {
			return fmt.Errorf("output %s: %w", outputs[i].Name, err)
		}
		docs[i] = b
	}

	if format == "json" {
		obj := make(map[string]json.RawMessage, len(docs))
		for i, doc := range docs {
			obj[outputs[i].Name] = doc
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(obj)
	}
	for i, doc := range docs {
		if _, err := fmt.Fprintf(w, "%s = %s\n", outputs[i].Name, doc); err != nil {
			return err
		}
	}
	return nil
}
