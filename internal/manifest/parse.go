package manifest

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/specialistvlad/hopsgo/internal/ctxlog"
)

// rootSchema expects one or more 'component' blocks.
type rootSchema struct {
	Components []*hclComponent `hcl:"component,block"`
}

type hclComponent struct {
	Route string   `hcl:"route,label"`
	Body  hcl.Body `hcl:",remain"`
}

var componentBodySchema = &hcl.BodySchema{
	Attributes: []hcl.AttributeSchema{
		{Name: "name"},
		{Name: "nickname"},
		{Name: "description"},
		{Name: "category"},
		{Name: "subcategory"},
	},
	Blocks: []hcl.BlockHeaderSchema{
		{Type: "lifecycle"},
		{Type: "input", LabelNames: []string{"name"}},
		{Type: "output", LabelNames: []string{"name"}},
	},
}

var inputBodySchema = &hcl.BodySchema{
	Attributes: []hcl.AttributeSchema{
		// `type` is required, but checked by hand for a better message.
		{Name: "type"},
		{Name: "nickname"},
		{Name: "description"},
		{Name: "default"},
	},
}

var outputBodySchema = &hcl.BodySchema{
	Attributes: []hcl.AttributeSchema{
		{Name: "type", Required: true},
		{Name: "nickname"},
		{Name: "description"},
	},
}

// Parse decodes every component block in src.
func Parse(ctx context.Context, src []byte, filename string) ([]*Manifest, error) {
	file, diags := hclparse.NewParser().ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, diags
	}
	manifests, diags := ParseFile(ctx, file, filename)
	if diags.HasErrors() {
		return nil, diags
	}
	return manifests, nil
}

// ParseFile decodes an already parsed HCL file.
func ParseFile(ctx context.Context, hclFile *hcl.File, filePath string) ([]*Manifest, hcl.Diagnostics) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Parsing component manifests from file", "file_path", filePath)

	var allDiags hcl.Diagnostics
	if hclFile == nil {
		return nil, append(allDiags, &hcl.Diagnostic{Severity: hcl.DiagError, Summary: "HCL file is nil"})
	}

	schema := &rootSchema{}
	diags := gohcl.DecodeBody(hclFile.Body, nil, schema)
	allDiags = append(allDiags, diags...)
	if diags.HasErrors() {
		return nil, allDiags
	}

	manifests := make([]*Manifest, 0, len(schema.Components))
	for _, parsed := range schema.Components {
		content, contentDiags := parsed.Body.Content(componentBodySchema)
		allDiags = append(allDiags, contentDiags...)
		if contentDiags.HasErrors() {
			continue // Skip this component but keep reporting on the others.
		}

		m := &Manifest{Route: parsed.Route, FilePath: filePath}
		allDiags = append(allDiags, decodeStrings(content.Attributes, map[string]*string{
			"name":        &m.Name,
			"nickname":    &m.Nickname,
			"description": &m.Description,
			"category":    &m.Category,
			"subcategory": &m.Subcategory,
		})...)

		var blockDiags hcl.Diagnostics
		m.Lifecycle, blockDiags = parseLifecycle(content.Blocks)
		allDiags = append(allDiags, blockDiags...)
		m.Inputs, blockDiags = parseParams(content.Blocks, "input", inputBodySchema)
		allDiags = append(allDiags, blockDiags...)
		m.Outputs, blockDiags = parseParams(content.Blocks, "output", outputBodySchema)
		allDiags = append(allDiags, blockDiags...)

		manifests = append(manifests, m)
	}

	if allDiags.HasErrors() {
		return nil, allDiags
	}
	logger.Debug("Successfully parsed component manifests", "count", len(manifests))
	return manifests, allDiags
}

func decodeStrings(attrs hcl.Attributes, targets map[string]*string) hcl.Diagnostics {
	var diags hcl.Diagnostics
	for name, target := range targets {
		if attr, ok := attrs[name]; ok {
			diags = append(diags, gohcl.DecodeExpression(attr.Expr, nil, target)...)
		}
	}
	return diags
}

func parseLifecycle(blocks hcl.Blocks) (Lifecycle, hcl.Diagnostics) {
	var lifecycle Lifecycle

	block, diags := findUniqueBlock(blocks, "lifecycle")
	if diags.HasErrors() {
		return lifecycle, diags
	}
	if block == nil {
		return lifecycle, append(diags, &hcl.Diagnostic{
			Severity: hcl.DiagError,
			Summary:  "Missing lifecycle block",
			Detail:   "Every component needs a lifecycle block naming its on_run handler.",
		})
	}

	diags = append(diags, gohcl.DecodeBody(block.Body, nil, &lifecycle)...)
	return lifecycle, diags
}

// parseParams decodes all blocks of kind ("input" or "output") in order.
func parseParams(blocks hcl.Blocks, kind string, schema *hcl.BodySchema) ([]Param, hcl.Diagnostics) {
	var diags hcl.Diagnostics
	var params []Param
	seen := make(map[string]struct{})

	for _, block := range blocks.OfType(kind) {
		// The schema guarantees us one label.
		name := block.Labels[0]
		if _, exists := seen[name]; exists {
			diags = append(diags, &hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  fmt.Sprintf("Duplicate %s definition", kind),
				Detail:   fmt.Sprintf("An %s named '%s' has already been defined.", kind, name),
				Subject:  &block.DefRange,
			})
			continue
		}
		seen[name] = struct{}{}

		content, contentDiags := block.Body.Content(schema)
		diags = append(diags, contentDiags...)
		if contentDiags.HasErrors() {
			continue
		}

		typeAttr, exists := content.Attributes["type"]
		if !exists {
			missing := block.Body.MissingItemRange()
			diags = append(diags, &hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  "Missing 'type' attribute",
				Detail:   fmt.Sprintf("The 'type' attribute is required for all %s blocks.", kind),
				Subject:  &missing,
			})
			continue
		}
		typ, typeDiags := typeFromExpr(typeAttr.Expr)
		diags = append(diags, typeDiags...)
		if typeDiags.HasErrors() {
			continue
		}

		p := Param{Name: name, Type: typ}
		diags = append(diags, decodeStrings(content.Attributes, map[string]*string{
			"nickname":    &p.Nickname,
			"description": &p.Description,
		})...)

		if defaultAttr, ok := content.Attributes["default"]; ok {
			// Defaults must be literals, so no eval context.
			val, valDiags := defaultAttr.Expr.Value(nil)
			diags = append(diags, valDiags...)
			if valDiags.HasErrors() {
				continue
			}
			if val.IsNull() || !val.IsWhollyKnown() {
				diags = append(diags, &hcl.Diagnostic{
					Severity: hcl.DiagError,
					Summary:  "Invalid default value",
					Detail:   fmt.Sprintf("The default for '%s' must be a known, non-null literal.", name),
					Subject:  defaultAttr.Expr.Range().Ptr(),
				})
				continue
			}
			p.Default = &val
		}
		if p.Nickname == "" {
			p.Nickname = name
		}
		params = append(params, p)
	}
	return params, diags
}
