// Package modules bundles the component modules compiled into hopsgo: their
// Go handlers and their embedded HCL manifests.
package modules

import (
	"embed"
	"io/fs"

	"github.com/specialistvlad/hopsgo/internal/handlers"
	"github.com/specialistvlad/hopsgo/modules/arithmetic"
	"github.com/specialistvlad/hopsgo/modules/curves"
	"github.com/specialistvlad/hopsgo/modules/kinematics"
	"github.com/specialistvlad/hopsgo/modules/problems"
	"github.com/specialistvlad/hopsgo/modules/trigonometry"
	"github.com/specialistvlad/hopsgo/modules/vectors"
)

//go:embed */*.hcl
var manifests embed.FS

// ManifestPattern matches the embedded manifests inside Manifests().
const ManifestPattern = "*/*.hcl"

// Manifests returns the embedded manifest tree, one directory per module.
func Manifests() fs.FS { return manifests }

// Core is the definitive list of all modules compiled into the binary.
func Core() []handlers.Module {
	return []handlers.Module{
		&arithmetic.Module{},
		&curves.Module{},
		&kinematics.Module{},
		&vectors.Module{},
		&trigonometry.Module{},
		&problems.Module{},
	}
}
