// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package assets

import "fmt"

// Material describes the physically based appearance of a surface.
// Materials are shared by reference between objects and must not be
// modified once in use.
type Material struct {

	// Name is the name of the material.
	Name string

	// BaseColor is the linear RGBA base color.
	BaseColor [4]float32

	// Metallic is the metalness, from 0 (dielectric) to 1 (metal).
	Metallic float32

	// Roughness is the roughness, from 0 (smooth) to 1 (rough).
	Roughness float32

	// DoubleSided is whether back faces are rendered.
	DoubleSided bool
}

// NewMaterial returns a new opaque non-metallic [Material] with the given RGB base color.
func NewMaterial(name string, r, g, b float32) *Material {
	return &Material{Name: name, BaseColor: [4]float32{r, g, b, 1}, Roughness: 1}
}

func (m *Material) String() string {
	return fmt.Sprintf("Material(%s, %v)", m.Name, m.BaseColor)
}

// Material presets.
var (
	Gray25  = NewMaterial("gray25", 0.25, 0.25, 0.25)
	Gray50  = NewMaterial("gray50", 0.5, 0.5, 0.5)
	Gray75  = NewMaterial("gray75", 0.75, 0.75, 0.75)
	White   = NewMaterial("white", 1, 1, 1)
	Black   = NewMaterial("black", 0, 0, 0)
	Red     = NewMaterial("red", 1, 0, 0)
	Green   = NewMaterial("green", 0, 1, 0)
	Blue    = NewMaterial("blue", 0, 0, 1)
	Cyan    = NewMaterial("cyan", 0, 1, 1)
	Magenta = NewMaterial("magenta", 1, 0, 1)
	Yellow  = NewMaterial("yellow", 1, 1, 0)
)

// DefaultMaterial is the material of objects created without one.
var DefaultMaterial = Gray50
