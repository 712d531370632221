package manifest

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/specialistvlad/hopsgo/internal/component"
)

// findUniqueBlock returns the block named name, or nil if absent. More than
// one such block is a diagnostic error.
func findUniqueBlock(blocks hcl.Blocks, name string) (*hcl.Block, hcl.Diagnostics) {
	var found *hcl.Block
	var diags hcl.Diagnostics

	for _, block := range blocks {
		if block.Type == name {
			if found != nil {
				diags = append(diags, &hcl.Diagnostic{
					Severity: hcl.DiagError,
					Summary:  "Duplicate \"" + name + "\" block",
					Detail:   "Only one \"" + name + "\" block is allowed.",
					Subject:  &block.DefRange,
				})
			}
			found = block
		}
	}

	return found, diags
}

// typeFromExpr reads a type keyword such as `number` or `point`.
func typeFromExpr(expr hcl.Expression) (component.Type, hcl.Diagnostics) {
	traversal, diags := hcl.AbsTraversalForExpr(expr)
	if diags.HasErrors() || len(traversal) != 1 {
		return component.Invalid, hcl.Diagnostics{{
			Severity: hcl.DiagError,
			Summary:  "Invalid type specification",
			Detail:   "The 'type' attribute must be a bare type keyword like number, point, vector, curve or surface.",
			Subject:  expr.Range().Ptr(),
		}}
	}

	typeName := traversal.RootName()
	t, err := component.ParseType(typeName)
	if err != nil {
		return component.Invalid, hcl.Diagnostics{{
			Severity: hcl.DiagError,
			Summary:  "Unsupported type",
			Detail:   fmt.Sprintf("The keyword '%s' is not a valid type. Supported types are: %v.", typeName, component.Types()),
			Subject:  expr.Range().Ptr(),
		}}
	}
	return t, nil
}
