// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package assets

import "cogentcore.org/simenv/math32"

// Transform is the local transform of an asset relative to its parent,
// applied as scale, then rotation, then translation.
type Transform struct {

	// Translation is the position.
	Translation math32.Vector3

	// Rotation is the orientation.
	Rotation math32.Quat

	// Scale is the scale along each axis.
	Scale math32.Vector3
}

// Defaults sets the identity transform.
func (t *Transform) Defaults() {
	t.Translation = math32.Vector3{}
	t.Rotation.SetIdentity()
	t.Scale = math32.Vector3Scalar(1)
}

// Matrix returns the transformation matrix, T * R * S.
func (t *Transform) Matrix() *math32.Matrix4 {
	m := &math32.Matrix4{}
	m.SetTransform(t.Translation, t.Rotation, t.Scale)
	return m
}

// SetMatrix sets the transform by decomposing the given matrix.
func (t *Transform) SetMatrix(m *math32.Matrix4) {
	t.Translation, t.Rotation, t.Scale = m.Decompose()
}

// SetEulerRotation sets the rotation from Euler angles in degrees.
func (t *Transform) SetEulerRotation(x, y, z float32) {
	t.Rotation = math32.NewQuatEuler(math32.Vec3(x, y, z).MulScalar(math32.DegToRadFactor))
}

// EulerRotation returns the rotation as Euler angles in degrees.
func (t *Transform) EulerRotation() math32.Vector3 {
	return t.Rotation.ToEuler().MulScalar(math32.RadToDegFactor)
}
