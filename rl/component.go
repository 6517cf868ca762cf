// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package rl turns an asset into a reinforcement learning agent by
// attaching a [Component]: a mapping from actions to physics commands,
// an ordered list of observation sources, and an ordered list of
// reward functions.
package rl

import (
	"fmt"
	"slices"

	"cogentcore.org/simenv/base/ordmap"
	"cogentcore.org/simenv/engine"
	"cogentcore.org/simenv/spaces"
	"cogentcore.org/simenv/tree"
)

// Sensor is a node that produces observations, such as a camera.
type Sensor interface {
	tree.Node

	// ObservationSpace returns the space of the observations of the sensor.
	ObservationSpace() spaces.Space

	// Observe returns the observation of the sensor in the given step
	// result, where path is the path of the sensor from the scene root.
	Observe(ev *engine.Event, path string) ([]float64, error)
}

// Component is the reinforcement learning part of an agent.
// Observations and Rewards are never nil after [NewComponent].
type Component struct {

	// Actions maps actions onto physics commands. It may be nil.
	Actions Actions

	// Observations are the observation sources, in order.
	Observations []Sensor

	// Rewards are the reward functions, in order. The reward of a
	// step is their sum.
	Rewards []*RewardFunction
}

// NewComponent returns a new [Component], returning an error if the
// action mapping or a reward function is invalid.
func NewComponent(actions Actions, observations []Sensor, rewards []*RewardFunction) (*Component, error) {
	c := &Component{Actions: actions, Observations: observations, Rewards: rewards}
	if c.Observations == nil {
		c.Observations = []Sensor{}
	}
	if c.Rewards == nil {
		c.Rewards = []*RewardFunction{}
	}
	return c, c.Validate()
}

// Validate returns an error if any part of the component is invalid.
func (c *Component) Validate() error {
	if c.Actions != nil {
		if err := c.Actions.Validate(); err != nil {
			return err
		}
	}
	for i, s := range c.Observations {
		if s == nil {
			return fmt.Errorf("rl.Component: observation source %d is nil", i)
		}
	}
	for i, rf := range c.Rewards {
		if rf == nil {
			return fmt.Errorf("rl.Component: reward function %d is nil", i)
		}
		if err := rf.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// ActionSpace returns the action space, or nil if there is no action mapping.
func (c *Component) ActionSpace() spaces.Space {
	if c.Actions == nil {
		return nil
	}
	return c.Actions.Space()
}

// ObservationSpace returns the observation space of the first
// observation source, or nil if there is none. Other sources are not
// part of it; see [Component.CompositeObservationSpace].
func (c *Component) ObservationSpace() spaces.Space {
	if len(c.Observations) == 0 {
		return nil
	}
	return c.Observations[0].ObservationSpace()
}

// CompositeObservationSpace returns a [spaces.Dict] with the space of
// every observation source, keyed by source name.
func (c *Component) CompositeObservationSpace() *spaces.Dict {
	d := spaces.NewDict()
	for _, s := range c.Observations {
		d.Add(s.AsTree().Name, s.ObservationSpace())
	}
	return d
}

// Map returns the physics commands for the given action.
func (c *Component) Map(action []float64) ([]engine.Command, error) {
	if c.Actions == nil {
		return nil, fmt.Errorf("rl.Component: no action mapping: %w", ErrInvalidAction)
	}
	return c.Actions.Map(action)
}

// Observation returns the observation of the first observation source
// in the given step result, whose node paths are relative to root.
func (c *Component) Observation(ev *engine.Event, root tree.Node) ([]float64, error) {
	if len(c.Observations) == 0 {
		return nil, ErrNoObservation
	}
	s := c.Observations[0]
	return s.Observe(ev, s.AsTree().PathFrom(root))
}

// AllObservations returns the observation of every source, keyed by source name.
func (c *Component) AllObservations(ev *engine.Event, root tree.Node) (*ordmap.Map[string, []float64], error) {
	om := ordmap.New[string, []float64]()
	for _, s := range c.Observations {
		obs, err := s.Observe(ev, s.AsTree().PathFrom(root))
		if err != nil {
			return nil, err
		}
		om.Add(s.AsTree().Name, obs)
	}
	return om, nil
}

// Reward returns the summed reward of all reward functions for the given
// step and whether any of them ended the episode.
func (c *Component) Reward(lookup StateLookup, step int) (float32, bool, error) {
	var total float32
	done := false
	for _, rf := range c.Rewards {
		r, d, err := rf.Evaluate(lookup, step)
		if err != nil {
			return 0, false, err
		}
		total += r
		done = done || d
	}
	return total, done, nil
}

// Reset clears the per-episode state of the reward functions.
func (c *Component) Reset() {
	for _, rf := range c.Rewards {
		rf.Reset()
	}
}

// Clone returns a deep copy of the component. The copy refers to the
// same nodes until [Component.RemapRefs] is called on it.
func (c *Component) Clone() *Component {
	if c == nil {
		return nil
	}
	nc := &Component{Actions: cloneActions(c.Actions), Observations: slices.Clone(c.Observations),
		Rewards: make([]*RewardFunction, len(c.Rewards))}
	for i, rf := range c.Rewards {
		nc.Rewards[i] = rf.Clone()
	}
	return nc
}

// RemapRefs applies the remap function to every node the component refers to.
func (c *Component) RemapRefs(remap func(r tree.Ref) tree.Ref) {
	if c == nil {
		return
	}
	for i, s := range c.Observations {
		if ns, ok := remap(tree.NewRef(s)).Node().(Sensor); ok {
			c.Observations[i] = ns
		}
	}
	for _, rf := range c.Rewards {
		rf.RemapRefs(remap)
	}
}

func (c *Component) String() string {
	names := make([]string, len(c.Observations))
	for i, s := range c.Observations {
		names[i] = s.AsTree().Name
	}
	return fmt.Sprintf("Component(actions=%v, observations=%v, rewards=%v)", c.Actions, names, c.Rewards)
}
