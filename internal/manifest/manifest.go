// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// Package manifest parses component manifests written in HCL.
//
// Why keep component metadata in HCL instead of Go?
//
// The metadata is what the Hops host shows to people: names, nicknames,
// descriptions and categories. Keeping it next to the handler code, but out
// of it, lets the Go side stay a plain typed function while the manifest
// carries the contract. The registry then checks the two against each other
// at startup, so a renamed handler or a reordered parameter is caught before
// the first request.
//
// A manifest file holds one or more component blocks:
//
//	component "/add" {
//	  name        = "Add"
//	  description = "Add numbers"
//	  category    = "Math"
//	  lifecycle { on_run = "OnRunAdd" }
//	  input "A" { type = number  description = "First addend" }
//	  input "B" { type = number }
//	  output "Sum" { type = number }
//	}
//
// Input and output order is the block order in the file.
package manifest

import (
	"github.com/specialistvlad/hopsgo/internal/component"
	"github.com/zclconf/go-cty/cty"
)

// Manifest is the parsed form of one component block.
type Manifest struct {
	Route       string
	Name        string
	Nickname    string
	Description string
	Category    string
	Subcategory string
	Lifecycle   Lifecycle
	Inputs      []Param
	Outputs     []Param
	// FilePath is the file the block was read from, for error reporting.
	FilePath string
}

// Lifecycle maps component events to Go handler names.
type Lifecycle struct {
	OnRun string `hcl:"on_run,attr"`
}

// Param is one input or output block.
type Param struct {
	Name        string
	Nickname    string
	Description string
	Type        component.Type
	Default     *cty.Value
}

// Descriptor joins the manifest with its handler func.
func (m *Manifest) Descriptor(handler any) component.Descriptor {
	return component.Descriptor{
		Route:       m.Route,
		Name:        m.Name,
		Nickname:    m.Nickname,
		Description: m.Description,
		Category:    m.Category,
		Subcategory: m.Subcategory,
		Inputs:      toParams(m.Inputs),
		Outputs:     toParams(m.Outputs),
		Handler:     handler,
	}
}

func toParams(ps []Param) []component.Param {
	out := make([]component.Param, len(ps))
	for i, p := range ps {
		out[i] = component.Param{
			Name:        p.Name,
			Nickname:    p.Nickname,
			Description: p.Description,
			Type:        p.Type,
			Default:     p.Default,
		}
	}
	return out
}
