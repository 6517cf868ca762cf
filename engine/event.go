// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package engine

import (
	"fmt"

	"cogentcore.org/simenv/base/ordmap"
	"cogentcore.org/simenv/math32"
)

// CommandKinds are the kinds of physics commands an agent can issue.
type CommandKinds string

const (
	AddForce               CommandKinds = "add_force"
	AddRelativeForce       CommandKinds = "add_relative_force"
	AddTorque              CommandKinds = "add_torque"
	AddRelativeTorque      CommandKinds = "add_relative_torque"
	ChangePosition         CommandKinds = "change_position"
	ChangeRelativePosition CommandKinds = "change_relative_position"
	ChangeRotation         CommandKinds = "change_rotation"
	ChangeRelativeRotation CommandKinds = "change_relative_rotation"
	SetVelocity            CommandKinds = "set_velocity"
	SetAngularVelocity     CommandKinds = "set_angular_velocity"
)

// CommandKindsValues returns all of the command kinds.
func CommandKindsValues() []CommandKinds {
	return []CommandKinds{AddForce, AddRelativeForce, AddTorque, AddRelativeTorque,
		ChangePosition, ChangeRelativePosition, ChangeRotation, ChangeRelativeRotation,
		SetVelocity, SetAngularVelocity}
}

// Validate returns an error if the kind is not one of [CommandKindsValues].
func (k CommandKinds) Validate() error {
	for _, v := range CommandKindsValues() {
		if k == v {
			return nil
		}
	}
	return fmt.Errorf("unknown physics command %q", string(k))
}

// Command is one physics command applied to an agent for a step.
// Rotation values are Euler angles in degrees.
type Command struct {
	Kind  CommandKinds `json:"kind"`
	Value [3]float32   `json:"value"`
}

// NewCommand returns a new [Command] with the given vector value.
func NewCommand(kind CommandKinds, v math32.Vector3) Command {
	return Command{Kind: kind, Value: [3]float32{v.X, v.Y, v.Z}}
}

// Vector returns the value of the command as a vector.
func (c Command) Vector() math32.Vector3 {
	return math32.Vec3(c.Value[0], c.Value[1], c.Value[2])
}

// NodeState is the state of one node after a step.
type NodeState struct {
	Position        [3]float32 `json:"position"`
	Rotation        [4]float32 `json:"rotation"`
	Velocity        [3]float32 `json:"velocity,omitempty"`
	AngularVelocity [3]float32 `json:"angular_velocity,omitempty"`
}

// Pos returns the position as a vector.
func (s NodeState) Pos() math32.Vector3 {
	return math32.Vec3(s.Position[0], s.Position[1], s.Position[2])
}

// Quat returns the rotation as a quaternion, with the identity for a zero rotation.
func (s NodeState) Quat() math32.Quat {
	q := math32.NewQuat(s.Rotation[0], s.Rotation[1], s.Rotation[2], s.Rotation[3])
	if q.IsNil() {
		q.SetIdentity()
	}
	return q
}

// SetPos sets the position from a vector.
func (s *NodeState) SetPos(v math32.Vector3) {
	s.Position = [3]float32{v.X, v.Y, v.Z}
}

// SetQuat sets the rotation from a quaternion.
func (s *NodeState) SetQuat(q math32.Quat) {
	s.Rotation = [4]float32{q.X, q.Y, q.Z, q.W}
}

// Frame is a rendered camera image with 8 bits per channel, stored
// channel-first: Pix[(c*Height+y)*Width+x].
type Frame struct {
	Channels int     `json:"channels"`
	Height   int     `json:"height"`
	Width    int     `json:"width"`
	Pix      []uint8 `json:"pix"`
}

// NewFrame returns a new zero [Frame] of the given size.
func NewFrame(channels, height, width int) Frame {
	return Frame{Channels: channels, Height: height, Width: width, Pix: make([]uint8, channels*height*width)}
}

// At returns the value of channel c at x, y.
func (f Frame) At(c, y, x int) uint8 {
	return f.Pix[(c*f.Height+y)*f.Width+x]
}

// Validate returns an error if the pixel buffer does not match the frame size.
func (f Frame) Validate() error {
	if n := f.Channels * f.Height * f.Width; n != len(f.Pix) {
		return fmt.Errorf("frame of %dx%dx%d has %d bytes, want %d", f.Channels, f.Height, f.Width, len(f.Pix), n)
	}
	return nil
}

// Float64s returns the pixel values as float64s, in the same order.
func (f Frame) Float64s() []float64 {
	x := make([]float64, len(f.Pix))
	for i, p := range f.Pix {
		x[i] = float64(p)
	}
	return x
}

// Event is the result of one simulation step.
type Event struct {

	// Nodes is the state of each node, keyed by its path from the scene root,
	// with position and rotation relative to its parent node.
	Nodes map[string]NodeState `json:"nodes"`

	// Frames has one frame per camera, keyed by camera path, in scene order.
	Frames *ordmap.Map[string, Frame] `json:"frames"`

	// Rewards holds any rewards computed by the engine, keyed by agent path.
	Rewards map[string]float32 `json:"rewards,omitempty"`

	// Done is whether the engine ended the episode.
	Done bool `json:"done,omitempty"`
}

// NewEvent returns a new empty [Event].
func NewEvent() *Event {
	return &Event{Nodes: map[string]NodeState{}, Frames: ordmap.New[string, Frame]()}
}

// Validate returns an error if any frame is malformed.
func (ev *Event) Validate() error {
	if ev.Frames == nil {
		return nil
	}
	for _, kv := range ev.Frames.Order {
		if err := kv.Value.Validate(); err != nil {
			return fmt.Errorf("camera %q: %w", kv.Key, err)
		}
	}
	return nil
}
