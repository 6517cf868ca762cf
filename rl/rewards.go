// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package rl

import (
	"fmt"

	"cogentcore.org/simenv/base/errors"
	"cogentcore.org/simenv/engine"
	"cogentcore.org/simenv/math32"
	"cogentcore.org/simenv/tree"
)

// RewardKinds are the kinds of reward functions.
type RewardKinds string

const (
	// RewardDense rewards every step according to the distance
	// between EntityA and EntityB.
	RewardDense RewardKinds = "dense"

	// RewardSparse rewards the steps on which EntityA is within
	// Threshold of EntityB.
	RewardSparse RewardKinds = "sparse"

	// RewardAnd rewards when both A and B are triggered.
	RewardAnd RewardKinds = "and"

	// RewardOr rewards when A or B is triggered.
	RewardOr RewardKinds = "or"

	// RewardXor rewards when exactly one of A and B is triggered.
	RewardXor RewardKinds = "xor"

	// RewardNot rewards when A is not triggered.
	RewardNot RewardKinds = "not"

	// RewardTimeout rewards once the step count reaches Threshold.
	RewardTimeout RewardKinds = "timeout"

	// RewardSee rewards when EntityB is within Threshold degrees of
	// the forward (-Z) direction of EntityA.
	RewardSee RewardKinds = "see"
)

// DistanceMetrics are the distance metrics used by dense and sparse rewards.
type DistanceMetrics string

const (
	// Euclidean is the straight-line distance; dense rewards are its negative.
	Euclidean DistanceMetrics = "euclidean"

	// BestEuclidean is the straight-line distance; dense rewards are the
	// improvement over the best distance so far in the episode.
	BestEuclidean DistanceMetrics = "best_euclidean"

	// Cosine is one minus the cosine similarity of the positions.
	Cosine DistanceMetrics = "cosine"
)

// StateLookup returns the state of the referenced node after a step.
type StateLookup func(r tree.Ref) (engine.NodeState, bool)

// RewardFunction computes a scalar reward and an episode-end signal
// from the node states after each step. The logical kinds combine
// the trigger state of the nested functions A and B.
type RewardFunction struct {

	// Kind is the kind of reward function.
	Kind RewardKinds

	// EntityA is the first entity, typically the agent.
	EntityA tree.Ref

	// EntityB is the second entity, typically the target.
	EntityB tree.Ref

	// DistanceMetric is the metric used by dense and sparse rewards.
	DistanceMetric DistanceMetrics

	// Scalar multiplies the reward.
	Scalar float32

	// Threshold is the trigger distance of sparse rewards, the step
	// count of timeouts and the view angle in degrees of see rewards.
	Threshold float32

	// IsTerminal is whether triggering the reward ends the episode.
	IsTerminal bool

	// IsCollectable is whether the reward can be collected only once
	// per episode, after which it yields nothing.
	IsCollectable bool

	// TriggerOnce is whether the reward is given only on the first step
	// of a run of triggered steps.
	TriggerOnce bool

	// A is the first operand of the logical kinds.
	A *RewardFunction

	// B is the second operand of and, or and xor.
	B *RewardFunction

	best      float32
	hasBest   bool
	collected bool
	wasOn     bool
}

// NewRewardFunction returns a new reward function of the given kind
// between the two entities, with euclidean distance and unit scalar.
func NewRewardFunction(kind RewardKinds, a, b tree.Node) *RewardFunction {
	return &RewardFunction{Kind: kind, EntityA: tree.NewRef(a), EntityB: tree.NewRef(b),
		DistanceMetric: Euclidean, Scalar: 1, Threshold: 1}
}

// Validate returns an error if the function is missing what its kind needs.
func (rf *RewardFunction) Validate() error {
	switch rf.Kind {
	case RewardDense, RewardSparse, RewardSee:
		if rf.EntityA.IsNil() || rf.EntityB.IsNil() {
			return fmt.Errorf("rl.RewardFunction: %s reward needs two entities", rf.Kind)
		}
		switch rf.DistanceMetric {
		case Euclidean, BestEuclidean, Cosine:
		default:
			return fmt.Errorf("rl.RewardFunction: unknown distance metric %q", rf.DistanceMetric)
		}
	case RewardAnd, RewardOr, RewardXor:
		if rf.A == nil || rf.B == nil {
			return fmt.Errorf("rl.RewardFunction: %s reward needs two reward functions", rf.Kind)
		}
		return errors.Join(rf.A.Validate(), rf.B.Validate())
	case RewardNot:
		if rf.A == nil {
			return fmt.Errorf("rl.RewardFunction: not reward needs a reward function")
		}
		return rf.A.Validate()
	case RewardTimeout:
	default:
		return fmt.Errorf("rl.RewardFunction: unknown kind %q", rf.Kind)
	}
	return nil
}

// Reset clears the per-episode state of the function and its operands.
func (rf *RewardFunction) Reset() {
	rf.best, rf.hasBest, rf.collected, rf.wasOn = 0, false, false, false
	if rf.A != nil {
		rf.A.Reset()
	}
	if rf.B != nil {
		rf.B.Reset()
	}
}

// Evaluate returns the reward for the given step and whether it ends
// the episode, looking up entity states with the given function.
func (rf *RewardFunction) Evaluate(lookup StateLookup, step int) (float32, bool, error) {
	on, value, err := rf.trigger(lookup, step)
	if err != nil {
		return 0, false, err
	}
	if rf.Kind == RewardDense {
		return rf.Scalar * value, false, nil
	}
	if !on {
		rf.wasOn = false
		return 0, false, nil
	}
	first := !rf.wasOn
	rf.wasOn = true
	done := rf.IsTerminal
	switch {
	case rf.IsCollectable && rf.collected:
		return 0, false, nil
	case rf.TriggerOnce && !first:
		return 0, done, nil
	}
	rf.collected = true
	return rf.Scalar, done, nil
}

// trigger returns whether the function is triggered on this step and,
// for dense rewards, the unscaled reward value.
func (rf *RewardFunction) trigger(lookup StateLookup, step int) (bool, float32, error) {
	switch rf.Kind {
	case RewardTimeout:
		return float32(step) >= rf.Threshold, 0, nil
	case RewardAnd, RewardOr, RewardXor, RewardNot:
		a, _, err := rf.A.trigger(lookup, step)
		if err != nil {
			return false, 0, err
		}
		if rf.Kind == RewardNot {
			return !a, 0, nil
		}
		b, _, err := rf.B.trigger(lookup, step)
		if err != nil {
			return false, 0, err
		}
		switch rf.Kind {
		case RewardAnd:
			return a && b, 0, nil
		case RewardOr:
			return a || b, 0, nil
		}
		return a != b, 0, nil
	}
	sa, ok := lookup(rf.EntityA)
	if !ok {
		return false, 0, fmt.Errorf("rl.RewardFunction: entity %s: %w", rf.EntityA, ErrNoState)
	}
	sb, ok := lookup(rf.EntityB)
	if !ok {
		return false, 0, fmt.Errorf("rl.RewardFunction: entity %s: %w", rf.EntityB, ErrNoState)
	}
	pa, pb := sa.Pos(), sb.Pos()
	switch rf.Kind {
	case RewardSee:
		dir := pb.Sub(pa)
		if dir.IsNil() {
			return true, 0, nil
		}
		fwd := math32.Vec3(0, 0, -1).MulQuat(sa.Quat())
		cos := math32.Clamp(fwd.Dot(dir.Normal()), -1, 1)
		angle := math32.RadToDeg(math32.Acos(cos))
		return angle <= rf.Threshold, 0, nil
	case RewardSparse:
		return rf.distance(pa, pb) <= rf.Threshold, 0, nil
	}
	d := rf.distance(pa, pb)
	if rf.DistanceMetric != BestEuclidean {
		return false, -d, nil
	}
	if !rf.hasBest {
		rf.best, rf.hasBest = d, true
		return false, 0, nil
	}
	if d >= rf.best {
		return false, 0, nil
	}
	gain := rf.best - d
	rf.best = d
	return false, gain, nil
}

func (rf *RewardFunction) distance(a, b math32.Vector3) float32 {
	if rf.DistanceMetric == Cosine {
		la, lb := a.Length(), b.Length()
		if la == 0 || lb == 0 {
			return 1
		}
		return 1 - a.Dot(b)/(la*lb)
	}
	return a.DistanceTo(b)
}

// Clone returns a deep copy of the function tree with cleared episode state.
func (rf *RewardFunction) Clone() *RewardFunction {
	if rf == nil {
		return nil
	}
	c := *rf
	c.A = rf.A.Clone()
	c.B = rf.B.Clone()
	c.Reset()
	return &c
}

// RemapRefs applies the remap function to the entities of the function
// and its operands.
func (rf *RewardFunction) RemapRefs(remap func(r tree.Ref) tree.Ref) {
	if rf == nil {
		return
	}
	rf.EntityA = remap(rf.EntityA)
	rf.EntityB = remap(rf.EntityB)
	rf.A.RemapRefs(remap)
	rf.B.RemapRefs(remap)
}

func (rf *RewardFunction) String() string {
	switch rf.Kind {
	case RewardAnd, RewardOr, RewardXor:
		return fmt.Sprintf("%s(%v, %v)", rf.Kind, rf.A, rf.B)
	case RewardNot:
		return fmt.Sprintf("not(%v)", rf.A)
	case RewardTimeout:
		return fmt.Sprintf("timeout(%g)", rf.Threshold)
	}
	return fmt.Sprintf("%s(%s, %s, %s)", rf.Kind, rf.EntityA, rf.EntityB, rf.DistanceMetric)
}
