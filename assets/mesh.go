// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package assets

import (
	"slices"

	"cogentcore.org/simenv/math32"
)

// Mesh is an indexed triangle mesh.
type Mesh struct {

	// Points are the vertex positions.
	Points []math32.Vector3

	// Normals are the vertex normals; empty or one per point.
	Normals []math32.Vector3

	// Faces are the triangles, as indexes into Points.
	Faces [][3]uint32
}

// NumPoints returns the number of points.
func (ms *Mesh) NumPoints() int { return len(ms.Points) }

// NumFaces returns the number of triangles.
func (ms *Mesh) NumFaces() int { return len(ms.Faces) }

// Bounds returns the bounding box of the points.
func (ms *Mesh) Bounds() (mn, mx math32.Vector3) {
	if len(ms.Points) == 0 {
		return
	}
	mn, mx = ms.Points[0], ms.Points[0]
	for _, p := range ms.Points[1:] {
		mn = mn.Min(p)
		mx = mx.Max(p)
	}
	return
}

// Clone returns a deep copy of the mesh.
func (ms *Mesh) Clone() *Mesh {
	if ms == nil {
		return nil
	}
	return &Mesh{Points: slices.Clone(ms.Points), Normals: slices.Clone(ms.Normals), Faces: slices.Clone(ms.Faces)}
}

// addQuad adds a quad of 4 points with the given normal, in
// counter-clockwise order when seen from the normal side.
func (ms *Mesh) addQuad(a, b, c, d, normal math32.Vector3) {
	n := uint32(len(ms.Points))
	ms.Points = append(ms.Points, a, b, c, d)
	ms.Normals = append(ms.Normals, normal, normal, normal, normal)
	ms.Faces = append(ms.Faces, [3]uint32{n, n + 1, n + 2}, [3]uint32{n, n + 2, n + 3})
}

// NewBoxMesh returns the mesh of an axis-aligned box between the given
// corners, with 4 points per face so that each face has flat normals.
func NewBoxMesh(mn, mx math32.Vector3) *Mesh {
	ms := &Mesh{}
	p := func(x, y, z int) math32.Vector3 {
		v := mn
		if x == 1 {
			v.X = mx.X
		}
		if y == 1 {
			v.Y = mx.Y
		}
		if z == 1 {
			v.Z = mx.Z
		}
		return v
	}
	ms.addQuad(p(1, 0, 0), p(1, 1, 0), p(1, 1, 1), p(1, 0, 1), math32.Vec3(1, 0, 0))
	ms.addQuad(p(0, 0, 0), p(0, 0, 1), p(0, 1, 1), p(0, 1, 0), math32.Vec3(-1, 0, 0))
	ms.addQuad(p(0, 1, 0), p(0, 1, 1), p(1, 1, 1), p(1, 1, 0), math32.Vec3(0, 1, 0))
	ms.addQuad(p(0, 0, 0), p(1, 0, 0), p(1, 0, 1), p(0, 0, 1), math32.Vec3(0, -1, 0))
	ms.addQuad(p(0, 0, 1), p(1, 0, 1), p(1, 1, 1), p(0, 1, 1), math32.Vec3(0, 0, 1))
	ms.addQuad(p(0, 0, 0), p(0, 1, 0), p(1, 1, 0), p(1, 0, 0), math32.Vec3(0, 0, -1))
	return ms
}

// NewPlaneMesh returns the mesh of a horizontal plane of the given
// size centered at the origin, facing up.
func NewPlaneMesh(width, depth float32) *Mesh {
	ms := &Mesh{}
	w, d := width/2, depth/2
	ms.addQuad(math32.Vec3(-w, 0, -d), math32.Vec3(-w, 0, d), math32.Vec3(w, 0, d), math32.Vec3(w, 0, -d), math32.Vec3(0, 1, 0))
	return ms
}

// NewSphereMesh returns the mesh of a sphere of the given radius
// centered at the origin, with the given number of segments around
// and from top to bottom.
func NewSphereMesh(radius float32, widthSegs, heightSegs int) *Mesh {
	ms := &Mesh{}
	ms.addSphereSector(radius, widthSegs, heightSegs, 0, math32.Pi, math32.Vector3{})
	return ms
}

// NewCapsuleMesh returns the mesh of a vertical capsule of the given
// radius and total height centered at the origin: two hemispheres
// joined by a cylinder.
func NewCapsuleMesh(radius, height float32, segs int) *Mesh {
	ms := &Mesh{}
	half := max(height/2-radius, 0)
	ms.addSphereSector(radius, segs, segs/2, 0, math32.Pi/2, math32.Vec3(0, half, 0))
	ms.addSphereSector(radius, segs, segs/2, math32.Pi/2, math32.Pi/2, math32.Vec3(0, -half, 0))
	if half > 0 {
		n := uint32(len(ms.Points))
		for x := 0; x <= segs; x++ {
			a := 2 * math32.Pi * float32(x) / float32(segs)
			norm := math32.Vec3(-math32.Cos(a), 0, math32.Sin(a))
			ms.Points = append(ms.Points, norm.MulScalar(radius).Add(math32.Vec3(0, half, 0)), norm.MulScalar(radius).Add(math32.Vec3(0, -half, 0)))
			ms.Normals = append(ms.Normals, norm, norm)
		}
		for x := uint32(0); x < uint32(segs); x++ {
			t0, b0, t1, b1 := n+2*x, n+2*x+1, n+2*x+2, n+2*x+3
			ms.Faces = append(ms.Faces, [3]uint32{t1, t0, b0}, [3]uint32{t1, b0, b1})
		}
	}
	return ms
}

// addSphereSector adds a sphere sector of the given radius between the
// given elevation angles in radians (0 is the top), displaced by offset.
func (ms *Mesh) addSphereSector(radius float32, widthSegs, heightSegs int, elevStart, elevLen float32, offset math32.Vector3) {
	widthSegs = max(widthSegs, 3)
	heightSegs = max(heightSegs, 1)
	st := uint32(len(ms.Points))
	elevEnd := elevStart + elevLen
	row := func(y, x int) uint32 { return st + uint32(y*(widthSegs+1)+x) }
	for y := 0; y <= heightSegs; y++ {
		v := float32(y) / float32(heightSegs)
		elev := elevStart + v*elevLen
		for x := 0; x <= widthSegs; x++ {
			u := float32(x) / float32(widthSegs)
			ang := u * 2 * math32.Pi
			norm := math32.Vec3(-math32.Cos(ang)*math32.Sin(elev), math32.Cos(elev), math32.Sin(ang)*math32.Sin(elev))
			ms.Points = append(ms.Points, norm.MulScalar(radius).Add(offset))
			ms.Normals = append(ms.Normals, norm)
		}
	}
	for y := 0; y < heightSegs; y++ {
		for x := 0; x < widthSegs; x++ {
			v1, v2, v3, v4 := row(y, x+1), row(y, x), row(y+1, x), row(y+1, x+1)
			if y != 0 || elevStart > 0 {
				ms.Faces = append(ms.Faces, [3]uint32{v1, v2, v4})
			}
			if y != heightSegs-1 || elevEnd < math32.Pi {
				ms.Faces = append(ms.Faces, [3]uint32{v2, v3, v4})
			}
		}
	}
}
