// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package rl

import (
	"encoding/json"
	"fmt"

	"cogentcore.org/simenv/tree"
)

// componentData is the serialized form of a [Component], in which node
// references are paths relative to the scene root.
type componentData struct {
	Actions      *actionsData  `json:"actions,omitempty"`
	Observations []string      `json:"observations,omitempty"`
	Rewards      []*rewardData `json:"rewards,omitempty"`
}

type actionsData struct {
	Discrete *MappedDiscrete `json:"discrete,omitempty"`
	Box      *MappedBox      `json:"box,omitempty"`
}

type rewardData struct {
	Kind           RewardKinds     `json:"kind"`
	EntityA        string          `json:"entity_a,omitempty"`
	EntityB        string          `json:"entity_b,omitempty"`
	DistanceMetric DistanceMetrics `json:"distance_metric,omitempty"`
	Scalar         float32         `json:"scalar"`
	Threshold      float32         `json:"threshold"`
	IsTerminal     bool            `json:"is_terminal,omitempty"`
	IsCollectable  bool            `json:"is_collectable,omitempty"`
	TriggerOnce    bool            `json:"trigger_once,omitempty"`
	A              *rewardData     `json:"reward_function_a,omitempty"`
	B              *rewardData     `json:"reward_function_b,omitempty"`
}

// Encode returns the JSON form of the component, with every node it
// refers to written as its path from root. It returns an error wrapping
// [ErrOutsideRoot] if a referenced node is not in the tree under root.
func (c *Component) Encode(root tree.Node) ([]byte, error) {
	root = root.AsTree().This
	cd := &componentData{}
	switch a := c.Actions.(type) {
	case nil:
	case *MappedDiscrete:
		cd.Actions = &actionsData{Discrete: a}
	case *MappedBox:
		cd.Actions = &actionsData{Box: a}
	default:
		return nil, fmt.Errorf("rl.Component.Encode: unsupported action mapping %T", a)
	}
	for _, s := range c.Observations {
		p, err := refPath(tree.NewRef(s), root)
		if err != nil {
			return nil, err
		}
		cd.Observations = append(cd.Observations, p)
	}
	for _, rf := range c.Rewards {
		rd, err := encodeReward(rf, root)
		if err != nil {
			return nil, err
		}
		cd.Rewards = append(cd.Rewards, rd)
	}
	return json.Marshal(cd)
}

// refPath returns the path of the referenced node from root.
func refPath(r tree.Ref, root tree.Node) (string, error) {
	n := r.Node()
	if n == nil {
		return "", nil
	}
	if n.AsTree().ParentLevel(root) <= 0 {
		return "", fmt.Errorf("rl.Component.Encode: %s: %w", r, ErrOutsideRoot)
	}
	return r.PathFrom(root), nil
}

func encodeReward(rf *RewardFunction, root tree.Node) (*rewardData, error) {
	if rf == nil {
		return nil, nil
	}
	rd := &rewardData{Kind: rf.Kind, DistanceMetric: rf.DistanceMetric, Scalar: rf.Scalar, Threshold: rf.Threshold,
		IsTerminal: rf.IsTerminal, IsCollectable: rf.IsCollectable, TriggerOnce: rf.TriggerOnce}
	var err error
	if rd.EntityA, err = refPath(rf.EntityA, root); err != nil {
		return nil, err
	}
	if rd.EntityB, err = refPath(rf.EntityB, root); err != nil {
		return nil, err
	}
	if rd.A, err = encodeReward(rf.A, root); err != nil {
		return nil, err
	}
	if rd.B, err = encodeReward(rf.B, root); err != nil {
		return nil, err
	}
	return rd, nil
}

// Decode returns the component encoded by [Component.Encode], resolving
// node paths from root. Every observation source must be a [Sensor].
func Decode(b []byte, root tree.Node) (*Component, error) {
	cd := &componentData{}
	if err := json.Unmarshal(b, cd); err != nil {
		return nil, fmt.Errorf("rl.Decode: %w", err)
	}
	var actions Actions
	if cd.Actions != nil {
		switch {
		case cd.Actions.Discrete != nil:
			actions = cd.Actions.Discrete
		case cd.Actions.Box != nil:
			actions = cd.Actions.Box
		}
	}
	var obs []Sensor
	for _, p := range cd.Observations {
		n, err := root.AsTree().Get(p)
		if err != nil {
			return nil, fmt.Errorf("rl.Decode: observation source: %w", err)
		}
		s, ok := n.(Sensor)
		if !ok {
			return nil, fmt.Errorf("rl.Decode: observation source %q is a %T, not a sensor", p, n)
		}
		obs = append(obs, s)
	}
	var rewards []*RewardFunction
	for _, rd := range cd.Rewards {
		rf, err := decodeReward(rd, root)
		if err != nil {
			return nil, err
		}
		rewards = append(rewards, rf)
	}
	c, err := NewComponent(actions, obs, rewards)
	if err != nil {
		return nil, fmt.Errorf("rl.Decode: %w", err)
	}
	return c, nil
}

func decodeReward(rd *rewardData, root tree.Node) (*RewardFunction, error) {
	if rd == nil {
		return nil, nil
	}
	rf := &RewardFunction{Kind: rd.Kind, DistanceMetric: rd.DistanceMetric, Scalar: rd.Scalar,
		Threshold: rd.Threshold, IsTerminal: rd.IsTerminal, IsCollectable: rd.IsCollectable, TriggerOnce: rd.TriggerOnce}
	var err error
	if rf.EntityA, err = tree.Resolve(root, rd.EntityA); err != nil {
		return nil, fmt.Errorf("rl.Decode: reward entity: %w", err)
	}
	if rf.EntityB, err = tree.Resolve(root, rd.EntityB); err != nil {
		return nil, fmt.Errorf("rl.Decode: reward entity: %w", err)
	}
	if rf.A, err = decodeReward(rd.A, root); err != nil {
		return nil, err
	}
	if rf.B, err = decodeReward(rd.B, root); err != nil {
		return nil, err
	}
	return rf, nil
}
