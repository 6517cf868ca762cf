// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package assets

import "cogentcore.org/simenv/tree"

// Light is the interface of light assets.
type Light interface {
	Asset

	// AsLightBase returns the [LightBase] of this Light.
	AsLightBase() *LightBase
}

// LightBase holds the properties common to all lights.
type LightBase struct {
	AssetBase

	// Intensity is the brightness of the light: lux for the sun
	// and candela for point and spot lights.
	Intensity float32

	// Color is the linear RGB color of the light.
	Color [3]float32
}

func (lb *LightBase) AsLightBase() *LightBase {
	return lb
}

func (lb *LightBase) Init() {
	lb.AssetBase.Init()
	lb.Intensity = 1
	lb.Color = [3]float32{1, 1, 1}
}

// LightSun is a directional light shining along its -Z axis from
// infinitely far away, like the sun.
type LightSun struct {
	LightBase
}

// NewLightSun returns a new [LightSun] pointing down.
func NewLightSun(name string, intensity float32) *LightSun {
	l := tree.NewRoot[*LightSun](name)
	l.Intensity = intensity
	l.Transform.SetEulerRotation(-90, 0, 0)
	return l
}

// LightPoint is an omnidirectional light at a position.
type LightPoint struct {
	LightBase

	// Range is the distance beyond which the light has no effect; 0 is unlimited.
	Range float32
}

// NewLightPoint returns a new [LightPoint].
func NewLightPoint(name string, intensity float32) *LightPoint {
	l := tree.NewRoot[*LightPoint](name)
	l.Intensity = intensity
	return l
}

// LightSpot is a cone of light shining along its -Z axis.
type LightSpot struct {
	LightBase

	// Range is the distance beyond which the light has no effect; 0 is unlimited.
	Range float32

	// InnerConeAngle is the angle in degrees at which the light starts to fall off.
	InnerConeAngle float32

	// OuterConeAngle is the angle in degrees at which the light ends.
	OuterConeAngle float32
}

func (l *LightSpot) Init() {
	l.LightBase.Init()
	l.OuterConeAngle = 45
}

// NewLightSpot returns a new [LightSpot] with the given outer cone angle in degrees.
func NewLightSpot(name string, intensity, outerConeAngle float32) *LightSpot {
	l := tree.NewRoot[*LightSpot](name)
	l.Intensity = intensity
	l.OuterConeAngle = outerConeAngle
	return l
}
