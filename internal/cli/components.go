package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	ctyjson "github.com/zclconf/go-cty/cty/json"
	"gopkg.in/yaml.v3"

	"github.com/specialistvlad/hopsgo/internal/app"
	"github.com/specialistvlad/hopsgo/internal/component"
)

type paramView struct {
	Name        string `json:"name" yaml:"name"`
	Nickname    string `json:"nickname,omitempty" yaml:"nickname,omitempty"`
	Type        string `json:"type" yaml:"type"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	Default     string `json:"default,omitempty" yaml:"default,omitempty"`
}

type componentView struct {
	Route       string      `json:"route" yaml:"route"`
	Name        string      `json:"name" yaml:"name"`
	Nickname    string      `json:"nickname" yaml:"nickname"`
	Category    string      `json:"category,omitempty" yaml:"category,omitempty"`
	Subcategory string      `json:"subcategory,omitempty" yaml:"subcategory,omitempty"`
	Description string      `json:"description,omitempty" yaml:"description,omitempty"`
	Inputs      []paramView `json:"inputs" yaml:"inputs"`
	Outputs     []paramView `json:"outputs" yaml:"outputs"`
}

var headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
var cellStyle = lipgloss.NewStyle().Padding(0, 1)

func newComponentsCommand(v *viper.Viper) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:     "components",
		Aliases: []string{"ls"},
		Short:   "List registered components",
		Long: `List the components the server would register, sorted by route.

The embedded manifests are used unless --manifests-path points elsewhere,
so this command also checks that a manifest directory pairs up with the
compiled handlers.

Examples:
  hopsgo components
  hopsgo components -o json
  hopsgo components --manifests-path ./modules -o yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			switch output {
			case "table", "json", "yaml":
			default:
				return usageError(fmt.Errorf("unknown output format %q: use table, json or yaml", output))
			}
			a, err := loadApp(cmd, v)
			if err != nil {
				return err
			}
			views := componentViews(a.Registry())
			if err := writeComponents(cmd.OutOrStdout(), output, views); err != nil {
				return runtimeError(err)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "table", "Output format: table, json, yaml")
	return cmd
}

// loadApp builds the application for commands that only need its registry.
func loadApp(cmd *cobra.Command, v *viper.Viper) (*app.App, error) {
	cfg, err := loadConfig(v)
	if err != nil {
		return nil, err
	}
	a, err := app.NewApp(cmd.ErrOrStderr(), cfg)
	if err != nil {
		return nil, runtimeError(err)
	}
	return a, nil
}

func componentViews(reg *component.Registry) []componentView {
	views := make([]componentView, 0, reg.Len())
	for _, route := range reg.SortedRoutes() {
		d, err := reg.Lookup(route)
		if err != nil {
			continue
		}
		views = append(views, componentView{
			Route:       d.Route,
			Name:        d.Name,
			Nickname:    d.Nickname,
			Category:    d.Category,
			Subcategory: d.Subcategory,
			Description: d.Description,
			Inputs:      paramViews(d.Inputs),
			Outputs:     paramViews(d.Outputs),
		})
	}
	return views
}

func paramViews(params []component.Param) []paramView {
	out := make([]paramView, 0, len(params))
	for _, p := range params {
		pv := paramView{Name: p.Name, Nickname: p.Nickname, Type: p.Type.String(), Description: p.Description}
		if p.Default != nil {
			if b, err := ctyjson.Marshal(*p.Default, p.Default.Type()); err == nil {
				pv.Default = string(b)
			}
		}
		out = append(out, pv)
	}
	return out
}

func writeComponents(w io.Writer, format string, views []componentView) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(views)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(views); err != nil {
			return err
		}
		return enc.Close()
	}

	rows := make([][]string, 0, len(views))
	for _, c := range views {
		rows = append(rows, []string{c.Route, c.Name, c.Category, signature(c.Inputs), signature(c.Outputs)})
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("ROUTE", "NAME", "CATEGORY", "INPUTS", "OUTPUTS").
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
	_, err := fmt.Fprintln(w, t.Render())
	return err
}

// signature renders params as "A:number, B:number".
func signature(params []paramView) string {
	parts := make([]string, 0, len(params))
	for _, p := range params {
		parts = append(parts, p.Name+":"+p.Type)
	}
	return strings.Join(parts, ", ")
}
