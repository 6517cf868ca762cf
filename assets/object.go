// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package assets

import (
	"cogentcore.org/simenv/math32"
	"cogentcore.org/simenv/tree"
)

// Object is an asset with a mesh and a material.
type Object struct {
	AssetBase

	// Mesh is the shape of the object.
	Mesh *Mesh `copier:"-"`

	// Material is the appearance of the object, shared by reference.
	Material *Material `copier:"-"`
}

// objecter is implemented by [Object] and the primitives that embed it.
type objecter interface {
	AsObject() *Object
}

// NewObject returns a new [Object] with the given name, mesh and material.
// A nil material is [DefaultMaterial].
func NewObject(name string, mesh *Mesh, material *Material) *Object {
	o := tree.NewRoot[*Object](name)
	o.Mesh = mesh
	o.SetMaterial(material)
	return o
}

func (o *Object) AsObject() *Object {
	return o
}

// CopyFieldsFrom copies the fields of the given object, cloning the
// mesh and sharing the material.
func (o *Object) CopyFieldsFrom(from tree.Node) {
	o.AssetBase.CopyFieldsFrom(from)
	fo := from.(objecter).AsObject()
	o.Mesh = fo.Mesh.Clone()
	o.Material = fo.Material
}

// SetMaterial sets the material, using [DefaultMaterial] for nil.
func (o *Object) SetMaterial(m *Material) {
	if m == nil {
		m = DefaultMaterial
	}
	o.Material = m
}

// AddCollider sets a box collider enclosing the mesh.
func (o *Object) AddCollider() {
	if o.Mesh == nil {
		return
	}
	mn, mx := o.Mesh.Bounds()
	size := mx.Sub(mn)
	c := mn.Add(size.MulScalar(0.5))
	o.Collider = &Collider{Kind: ColliderBox, BoundingBox: [3]float32{size.X, size.Y, size.Z}, Offset: [3]float32{c.X, c.Y, c.Z}}
}

// Box is an axis-aligned box.
type Box struct {
	Object

	// Bounds are the extents of the box in the local frame:
	// xmin, xmax, ymin, ymax, zmin, zmax.
	Bounds [6]float32
}

// NewBox returns a new [Box] of the given size centered at the origin.
func NewBox(name string, size math32.Vector3, material *Material) *Box {
	h := size.MulScalar(0.5)
	return NewBoxBounds(name, [6]float32{-h.X, h.X, -h.Y, h.Y, -h.Z, h.Z}, material)
}

// NewBoxBounds returns a new [Box] with the given extents:
// xmin, xmax, ymin, ymax, zmin, zmax.
func NewBoxBounds(name string, bounds [6]float32, material *Material) *Box {
	b := tree.NewRoot[*Box](name)
	b.Bounds = bounds
	b.Mesh = NewBoxMesh(math32.Vec3(bounds[0], bounds[2], bounds[4]), math32.Vec3(bounds[1], bounds[3], bounds[5]))
	b.SetMaterial(material)
	return b
}

// Plane is a flat horizontal rectangle facing up.
type Plane struct {
	Object

	// Size is the width (x) and depth (z) of the plane.
	Size [2]float32
}

// NewPlane returns a new [Plane] of the given width and depth.
func NewPlane(name string, width, depth float32, material *Material) *Plane {
	p := tree.NewRoot[*Plane](name)
	p.Size = [2]float32{width, depth}
	p.Mesh = NewPlaneMesh(width, depth)
	p.SetMaterial(material)
	return p
}

// Sphere is a sphere centered at the origin.
type Sphere struct {
	Object

	// Radius is the radius of the sphere.
	Radius float32
}

// NewSphere returns a new [Sphere] of the given radius with 32 segments.
func NewSphere(name string, radius float32, material *Material) *Sphere {
	s := tree.NewRoot[*Sphere](name)
	s.Radius = radius
	s.Mesh = NewSphereMesh(radius, 32, 16)
	s.SetMaterial(material)
	return s
}

// Capsule is a vertical capsule centered at the origin.
type Capsule struct {
	Object

	// Radius is the radius of the capsule.
	Radius float32

	// Height is the total height of the capsule.
	Height float32
}

// NewCapsule returns a new [Capsule] of the given radius and height.
func NewCapsule(name string, radius, height float32, material *Material) *Capsule {
	c := tree.NewRoot[*Capsule](name)
	c.Radius = radius
	c.Height = height
	c.Mesh = NewCapsuleMesh(radius, height, 32)
	c.SetMaterial(material)
	return c
}

// setFromMesh sets the shape parameters of a loaded primitive from its mesh bounds.
func setFromMesh(a Asset) {
	o, ok := a.(objecter)
	if !ok || o.AsObject().Mesh == nil {
		return
	}
	mn, mx := o.AsObject().Mesh.Bounds()
	switch p := a.(type) {
	case *Box:
		p.Bounds = [6]float32{mn.X, mx.X, mn.Y, mx.Y, mn.Z, mx.Z}
	case *Plane:
		p.Size = [2]float32{mx.X - mn.X, mx.Z - mn.Z}
	case *Sphere:
		p.Radius = (mx.X - mn.X) / 2
	case *Capsule:
		p.Radius = (mx.X - mn.X) / 2
		p.Height = mx.Y - mn.Y
	}
}
