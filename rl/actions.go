// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package rl

import (
	"fmt"
	"slices"

	"cogentcore.org/simenv/engine"
	"cogentcore.org/simenv/math32"
	"cogentcore.org/simenv/spaces"
)

// Actions maps the actions of an agent onto the physics commands
// that the engine applies to it.
type Actions interface {

	// Space returns the action space.
	Space() spaces.Space

	// Map returns the physics commands for the given action,
	// which must be a member of [Actions.Space].
	Map(action []float64) ([]engine.Command, error)

	// Validate returns an error if the mapping is inconsistent.
	Validate() error
}

// DefaultAxis returns the axis a command of the given kind acts along
// when no axis is given: Y (yaw) for rotations and Z (forward) otherwise.
func DefaultAxis(kind engine.CommandKinds) [3]float32 {
	switch kind {
	case engine.AddTorque, engine.AddRelativeTorque, engine.ChangeRotation,
		engine.ChangeRelativeRotation, engine.SetAngularVelocity:
		return [3]float32{0, 1, 0}
	}
	return [3]float32{0, 0, 1}
}

func axisOf(axes [][3]float32, kinds []engine.CommandKinds, i int) math32.Vector3 {
	a := DefaultAxis(kinds[i])
	if i < len(axes) {
		a = axes[i]
	}
	return math32.Vec3(a[0], a[1], a[2])
}

func validateKinds(name string, kinds []engine.CommandKinds, n int, axes [][3]float32) error {
	if len(kinds) != n {
		return fmt.Errorf("rl.%s: %d physics commands for %d actions", name, len(kinds), n)
	}
	for _, k := range kinds {
		if err := k.Validate(); err != nil {
			return fmt.Errorf("rl.%s: %w", name, err)
		}
	}
	if len(axes) != 0 && len(axes) != n {
		return fmt.Errorf("rl.%s: %d axes for %d actions", name, len(axes), n)
	}
	return nil
}

// MappedDiscrete is a discrete action space where action i issues the
// physics command Physics[i] with magnitude Amplitudes[i] along Axes[i].
type MappedDiscrete struct {

	// N is the number of actions.
	N int `json:"n"`

	// Physics is the command kind of each action.
	Physics []engine.CommandKinds `json:"physics"`

	// Amplitudes is the magnitude of each action; 1 if not given.
	Amplitudes []float32 `json:"amplitudes,omitempty"`

	// Axes is the direction of each action; see [DefaultAxis].
	Axes [][3]float32 `json:"axes,omitempty"`
}

// NewMappedDiscrete returns a new [MappedDiscrete] with one action per
// physics command kind, returning an error if they do not match.
func NewMappedDiscrete(physics []engine.CommandKinds, amplitudes []float32) (*MappedDiscrete, error) {
	md := &MappedDiscrete{N: len(physics), Physics: physics, Amplitudes: amplitudes}
	return md, md.Validate()
}

func (md *MappedDiscrete) Validate() error {
	if md.N <= 0 {
		return fmt.Errorf("rl.MappedDiscrete: %d actions", md.N)
	}
	if len(md.Amplitudes) != 0 && len(md.Amplitudes) != md.N {
		return fmt.Errorf("rl.MappedDiscrete: %d amplitudes for %d actions", len(md.Amplitudes), md.N)
	}
	return validateKinds("MappedDiscrete", md.Physics, md.N, md.Axes)
}

func (md *MappedDiscrete) Space() spaces.Space {
	return spaces.NewDiscrete(md.N)
}

func (md *MappedDiscrete) Map(action []float64) ([]engine.Command, error) {
	if !md.Space().Contains(action) {
		return nil, fmt.Errorf("rl.MappedDiscrete: action %v not in %s: %w", action, md.Space(), ErrInvalidAction)
	}
	i := int(action[0])
	amp := float32(1)
	if len(md.Amplitudes) > i {
		amp = md.Amplitudes[i]
	}
	return []engine.Command{engine.NewCommand(md.Physics[i], axisOf(md.Axes, md.Physics, i).MulScalar(amp))}, nil
}

func (md *MappedDiscrete) String() string {
	return fmt.Sprintf("MappedDiscrete(%d, %v)", md.N, md.Physics)
}

// MappedBox is a continuous action space where element i of an action
// issues the physics command Physics[i] with magnitude
// action[i]*Scaling[i]+Offsets[i] along Axes[i].
type MappedBox struct {

	// Low is the lower bound of each element.
	Low []float64 `json:"low"`

	// High is the upper bound of each element.
	High []float64 `json:"high"`

	// Physics is the command kind of each element.
	Physics []engine.CommandKinds `json:"physics"`

	// Scaling multiplies each element; 1 if not given.
	Scaling []float32 `json:"scaling,omitempty"`

	// Offsets is added to each scaled element; 0 if not given.
	Offsets []float32 `json:"offsets,omitempty"`

	// Axes is the direction of each element; see [DefaultAxis].
	Axes [][3]float32 `json:"axes,omitempty"`
}

// NewMappedBox returns a new [MappedBox] with the given bounds and one
// physics command kind per element, returning an error if they do not match.
func NewMappedBox(low, high []float64, physics []engine.CommandKinds) (*MappedBox, error) {
	mb := &MappedBox{Low: low, High: high, Physics: physics}
	return mb, mb.Validate()
}

func (mb *MappedBox) Validate() error {
	if _, err := spaces.NewBoxBounds(mb.Low, mb.High); err != nil {
		return fmt.Errorf("rl.MappedBox: %w", err)
	}
	n := len(mb.Low)
	if len(mb.Scaling) != 0 && len(mb.Scaling) != n {
		return fmt.Errorf("rl.MappedBox: %d scaling factors for %d elements", len(mb.Scaling), n)
	}
	if len(mb.Offsets) != 0 && len(mb.Offsets) != n {
		return fmt.Errorf("rl.MappedBox: %d offsets for %d elements", len(mb.Offsets), n)
	}
	return validateKinds("MappedBox", mb.Physics, n, mb.Axes)
}

func (mb *MappedBox) Space() spaces.Space {
	b, err := spaces.NewBoxBounds(mb.Low, mb.High)
	if err != nil {
		return nil
	}
	return b
}

func (mb *MappedBox) Map(action []float64) ([]engine.Command, error) {
	sp := mb.Space()
	if sp == nil || !sp.Contains(action) {
		return nil, fmt.Errorf("rl.MappedBox: action %v not in %v: %w", action, sp, ErrInvalidAction)
	}
	cmds := make([]engine.Command, len(action))
	for i, a := range action {
		v := float32(a)
		if len(mb.Scaling) > i {
			v *= mb.Scaling[i]
		}
		if len(mb.Offsets) > i {
			v += mb.Offsets[i]
		}
		cmds[i] = engine.NewCommand(mb.Physics[i], axisOf(mb.Axes, mb.Physics, i).MulScalar(v))
	}
	return cmds, nil
}

func (mb *MappedBox) String() string {
	return fmt.Sprintf("MappedBox(%v, %v, %v)", mb.Low, mb.High, mb.Physics)
}

// cloneActions returns a deep copy of the given mapping.
func cloneActions(a Actions) Actions {
	switch a := a.(type) {
	case *MappedDiscrete:
		c := *a
		c.Physics = slices.Clone(a.Physics)
		c.Amplitudes = slices.Clone(a.Amplitudes)
		c.Axes = slices.Clone(a.Axes)
		return &c
	case *MappedBox:
		c := *a
		c.Low = slices.Clone(a.Low)
		c.High = slices.Clone(a.High)
		c.Physics = slices.Clone(a.Physics)
		c.Scaling = slices.Clone(a.Scaling)
		c.Offsets = slices.Clone(a.Offsets)
		c.Axes = slices.Clone(a.Axes)
		return &c
	}
	return a
}
