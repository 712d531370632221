package manifest

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/specialistvlad/hopsgo/internal/component"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

func TestParse_Success(t *testing.T) {
	t.Parallel()

	src := `
component "/pointat" {
  name        = "PointAt"
  nickname    = "PtAt"
  description = "Get point along curve"
  category    = "Curve"
  subcategory = "Analysis"

  lifecycle {
    on_run = "OnRunPointAt"
  }

  input "Curve" {
    nickname    = "C"
    description = "Curve to evaluate"
    type        = curve
  }
  input "t" {
    description = "Parameter on curve domain to evaluate"
    type        = number
    default     = 0
  }
  output "P" {
    description = "Point on curve at t"
    type        = point
  }
}

component "/add" {
  lifecycle { on_run = "OnRunAdd" }
  input "A" { type = number }
  input "B" { type = number }
  output "Sum" { type = number }
}
`
	got, err := Parse(context.Background(), []byte(src), "curves.hcl")
	require.NoError(t, err)
	require.Len(t, got, 2)

	zero := cty.NumberIntVal(0)
	want := &Manifest{
		Route:       "/pointat",
		Name:        "PointAt",
		Nickname:    "PtAt",
		Description: "Get point along curve",
		Category:    "Curve",
		Subcategory: "Analysis",
		Lifecycle:   Lifecycle{OnRun: "OnRunPointAt"},
		Inputs: []Param{
			{Name: "Curve", Nickname: "C", Description: "Curve to evaluate", Type: component.Curve},
			{Name: "t", Nickname: "t", Description: "Parameter on curve domain to evaluate", Type: component.Number, Default: &zero},
		},
		Outputs:  []Param{{Name: "P", Nickname: "P", Description: "Point on curve at t", Type: component.Point}},
		FilePath: "curves.hcl",
	}
	ctyCmp := cmp.Comparer(func(a, b cty.Value) bool { return a.RawEquals(b) })
	if diff := cmp.Diff(want, got[0], ctyCmp); diff != "" {
		t.Errorf("manifest mismatch (-want +got):\n%s", diff)
	}

	add := got[1]
	require.Equal(t, "/add", add.Route)
	require.Equal(t, []string{"A", "B"}, []string{add.Inputs[0].Name, add.Inputs[1].Name})
	require.Equal(t, "OnRunAdd", add.Lifecycle.OnRun)
}

func TestParse_Errors(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		src     string
		errText string
	}{
		{
			name:    "syntax error",
			src:     `component "/x" {`,
			errText: "",
		},
		{
			name: "unknown type keyword",
			src: `
component "/x" {
  lifecycle { on_run = "X" }
  input "a" { type = string }
}`,
			errText: "Unsupported type",
		},
		{
			name: "missing type",
			src: `
component "/x" {
  lifecycle { on_run = "X" }
  input "a" { description = "no type" }
}`,
			errText: "Missing 'type' attribute",
		},
		{
			name: "duplicate input",
			src: `
component "/x" {
  lifecycle { on_run = "X" }
  input "a" { type = number }
  input "a" { type = number }
}`,
			errText: "Duplicate input definition",
		},
		{
			name: "missing lifecycle",
			src: `
component "/x" {
  input "a" { type = number }
}`,
			errText: "Missing lifecycle block",
		},
		{
			name: "duplicate lifecycle",
			src: `
component "/x" {
  lifecycle { on_run = "X" }
  lifecycle { on_run = "Y" }
}`,
			errText: "Duplicate \"lifecycle\" block",
		},
		{
			name: "complex type expression",
			src: `
component "/x" {
  lifecycle { on_run = "X" }
  output "a" { type = list(number) }
}`,
			errText: "Invalid type specification",
		},
		{
			name: "unknown attribute",
			src: `
component "/x" {
  lifecycle { on_run = "X" }
  color = "red"
}`,
			errText: "Unsupported argument",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := Parse(context.Background(), []byte(tc.src), "bad.hcl")
			require.Error(t, err)
			if tc.errText != "" {
				require.Contains(t, err.Error(), tc.errText)
			}
		})
	}
}

func TestManifest_Descriptor(t *testing.T) {
	t.Parallel()

	m := &Manifest{
		Route:    "/add",
		Name:     "Add",
		Category: "Math",
		Inputs:   []Param{{Name: "A", Type: component.Number}, {Name: "B", Type: component.Number}},
		Outputs:  []Param{{Name: "Sum", Type: component.Number}},
	}
	fn := func(a, b float64) (float64, error) { return a + b, nil }
	d := m.Descriptor(fn)

	want := component.Descriptor{
		Route:    "/add",
		Name:     "Add",
		Category: "Math",
		Inputs:   []component.Param{{Name: "A", Type: component.Number}, {Name: "B", Type: component.Number}},
		Outputs:  []component.Param{{Name: "Sum", Type: component.Number}},
	}
	if diff := cmp.Diff(want, d, cmpopts.IgnoreUnexported(component.Descriptor{}), cmpopts.IgnoreFields(component.Descriptor{}, "Handler")); diff != "" {
		t.Errorf("descriptor mismatch (-want +got):\n%s", diff)
	}

	b := component.NewBuilder()
	require.NoError(t, b.Register(d))
}
