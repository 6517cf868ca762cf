// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package assets

import (
	"cogentcore.org/simenv/engine"
	"cogentcore.org/simenv/math32"
	"cogentcore.org/simenv/rl"
	"cogentcore.org/simenv/tree"
)

// Agent is an asset controlled by actions, typically with an
// [rl.Component] and a camera among its children.
type Agent struct {
	AssetBase

	// Color is the linear RGB color of the agent body.
	Color [3]float32
}

func (ag *Agent) Init() {
	ag.AssetBase.Init()
	ag.Color = [3]float32{1, 0, 0}
}

// NewAgent returns a new [Agent] with no children.
func NewAgent(name string) *Agent {
	return tree.NewRoot[*Agent](name)
}

// NewSimpleRlAgent returns a new [Agent] with a capsule body, a camera
// named "camera" at eye height, three discrete actions (turn left,
// turn right and move forward) and a dense reward for approaching the
// given target.
func NewSimpleRlAgent(name string, target Asset) (*Agent, error) {
	ag := NewAgent(name)
	body := NewCapsule("body", 0.25, 1.5, NewMaterial(name+"-color", ag.Color[0], ag.Color[1], ag.Color[2]))
	body.SetPosition(0, 0.75, 0)
	cam := NewCamera("camera", 32, 32)
	cam.SetPosition(0, 1.25, 0)
	if err := ag.Add(body, cam); err != nil {
		return nil, err
	}
	actions, err := rl.NewMappedDiscrete([]engine.CommandKinds{engine.ChangeRelativeRotation,
		engine.ChangeRelativeRotation, engine.ChangeRelativePosition}, []float32{-10, 10, 1})
	if err != nil {
		return nil, err
	}
	actions.Axes = [][3]float32{{0, 1, 0}, {0, 1, 0}, {0, 0, -1}}
	c, err := rl.NewComponent(actions, []rl.Sensor{cam}, []*rl.RewardFunction{rl.NewRewardFunction(rl.RewardDense, ag, target)})
	if err != nil {
		return nil, err
	}
	ag.RL = c
	return ag, nil
}

// Forward returns the direction the agent faces, its rotated -Z axis.
func (ag *Agent) Forward() math32.Vector3 {
	return math32.Vec3(0, 0, -1).MulQuat(ag.Transform.Rotation)
}
