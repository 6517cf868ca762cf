// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package assets

import (
	"fmt"

	"cogentcore.org/simenv/engine"
	"cogentcore.org/simenv/rl"
	"cogentcore.org/simenv/spaces"
	"cogentcore.org/simenv/tree"
)

// Camera is a perspective camera looking along its -Z axis. The
// engine renders one RGB frame per camera on every step, which makes
// cameras the observation sources of agents.
type Camera struct {
	AssetBase

	// Width is the width of rendered frames in pixels.
	Width int

	// Height is the height of rendered frames in pixels.
	Height int

	// YFov is the vertical field of view in degrees.
	YFov float32

	// ZNear is the distance to the near clipping plane.
	ZNear float32

	// ZFar is the distance to the far clipping plane; 0 is infinite.
	ZFar float32
}

var _ rl.Sensor = (*Camera)(nil)

func (c *Camera) Init() {
	c.AssetBase.Init()
	c.Width = 256
	c.Height = 256
	c.YFov = 60
	c.ZNear = 0.3
	c.ZFar = 1000
}

// NewCamera returns a new [Camera] rendering frames of the given size.
func NewCamera(name string, width, height int) *Camera {
	c := tree.NewRoot[*Camera](name)
	c.Width = width
	c.Height = height
	return c
}

// ObservationSpace returns the space of rendered frames:
// 8-bit values of shape [3, Height, Width].
func (c *Camera) ObservationSpace() spaces.Space {
	return spaces.NewBox(0, 255, []int{3, c.Height, c.Width}, spaces.Uint8)
}

// Observe returns the frame of the camera in the given step result.
func (c *Camera) Observe(ev *engine.Event, path string) ([]float64, error) {
	if ev == nil || ev.Frames == nil {
		return nil, fmt.Errorf("camera %q: %w", path, rl.ErrNoObservation)
	}
	fr, ok := ev.Frames.ValueByKeyTry(path)
	if !ok {
		return nil, fmt.Errorf("camera %q: %w", path, rl.ErrNoObservation)
	}
	if fr.Channels != 3 || fr.Height != c.Height || fr.Width != c.Width {
		return nil, fmt.Errorf("camera %q: frame is %dx%dx%d, want 3x%dx%d", path, fr.Channels, fr.Height, fr.Width, c.Height, c.Width)
	}
	return fr.Float64s(), nil
}
