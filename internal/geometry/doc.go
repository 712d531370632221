// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// Package geometry is the small 3D kernel the components compute with.
//
// It provides the value types exchanged with the host editor (Point3d,
// Vector3d), a minimal curve family (LineCurve, PolylineCurve) with
// parameter evaluation, and ruled surfaces built from two edge curves.
//
// Curves and surfaces travel over the wire as opaque JSON handles. The
// component layer never looks inside them; it only asks this package to
// decode and encode them:
//
//	{"kind":"line","from":{"X":0,"Y":0,"Z":0},"to":{"X":1,"Y":0,"Z":0}}
//	{"kind":"polyline","points":[{"X":0,"Y":0,"Z":0}, ...]}
//	{"kind":"ruled","edges":[<curve>, <curve>]}
package geometry
