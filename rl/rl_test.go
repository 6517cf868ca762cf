// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package rl

import (
	"testing"

	"cogentcore.org/simenv/engine"
	"cogentcore.org/simenv/spaces"
	"cogentcore.org/simenv/tree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testGroup struct {
	tree.NodeBase
}

type testCamera struct {
	tree.NodeBase
	Width, Height int
}

func (c *testCamera) Init() {
	c.Width, c.Height = 4, 2
}

func (c *testCamera) ObservationSpace() spaces.Space {
	return spaces.NewBox(0, 255, []int{3, c.Height, c.Width}, spaces.Uint8)
}

func (c *testCamera) Observe(ev *engine.Event, path string) ([]float64, error) {
	fr, ok := ev.Frames.ValueByKeyTry(path)
	if !ok {
		return nil, ErrNoObservation
	}
	return fr.Float64s(), nil
}

type testAgent struct {
	tree.NodeBase
	RL *Component `copier:"-"`
}

func (a *testAgent) CopyFieldsFrom(from tree.Node) {
	a.NodeBase.CopyFieldsFrom(from)
	a.RL = from.(*testAgent).RL.Clone()
}

func (a *testAgent) RemapRefs(remap func(r tree.Ref) tree.Ref) {
	a.RL.RemapRefs(remap)
}

// testScene returns scene/{agent/camera, target}.
func testScene(t *testing.T) (*testGroup, *testAgent, *testCamera, *testGroup) {
	scene := tree.NewRoot[*testGroup]("scene")
	agent, err := tree.New[*testAgent](scene, "agent")
	require.NoError(t, err)
	cam, err := tree.New[*testCamera](agent, "camera")
	require.NoError(t, err)
	target, err := tree.New[*testGroup](scene, "target")
	require.NoError(t, err)
	return scene, agent, cam, target
}

func states(m map[tree.Node]engine.NodeState) StateLookup {
	return func(r tree.Ref) (engine.NodeState, bool) {
		s, ok := m[r.Node()]
		return s, ok
	}
}

func at(x, y, z float32) engine.NodeState {
	return engine.NodeState{Position: [3]float32{x, y, z}, Rotation: [4]float32{0, 0, 0, 1}}
}

func TestMappedDiscrete(t *testing.T) {
	md, err := NewMappedDiscrete([]engine.CommandKinds{engine.ChangeRelativeRotation, engine.ChangeRelativeRotation, engine.ChangeRelativePosition},
		[]float32{-10, 10, 2})
	require.NoError(t, err)
	assert.Equal(t, "Discrete(3)", md.Space().String())

	cmds, err := md.Map([]float64{1})
	require.NoError(t, err)
	assert.Equal(t, []engine.Command{{Kind: engine.ChangeRelativeRotation, Value: [3]float32{0, 10, 0}}}, cmds)
	cmds, err = md.Map([]float64{2})
	require.NoError(t, err)
	assert.Equal(t, [3]float32{0, 0, 2}, cmds[0].Value)

	_, err = md.Map([]float64{3})
	assert.ErrorIs(t, err, ErrInvalidAction)
	_, err = md.Map([]float64{0.5})
	assert.ErrorIs(t, err, ErrInvalidAction)

	_, err = NewMappedDiscrete([]engine.CommandKinds{"teleport"}, nil)
	assert.Error(t, err)
	_, err = NewMappedDiscrete([]engine.CommandKinds{engine.AddForce}, []float32{1, 2})
	assert.Error(t, err)
}

func TestMappedBox(t *testing.T) {
	mb, err := NewMappedBox([]float64{-1, -1}, []float64{1, 1}, []engine.CommandKinds{engine.AddForce, engine.AddTorque})
	require.NoError(t, err)
	mb.Scaling = []float32{10, 1}
	mb.Offsets = []float32{0, 0.5}
	mb.Axes = [][3]float32{{1, 0, 0}, {0, 0, 1}}
	require.NoError(t, mb.Validate())

	cmds, err := mb.Map([]float64{0.5, -1})
	require.NoError(t, err)
	require.Len(t, cmds, 2)
	assert.Equal(t, engine.Command{Kind: engine.AddForce, Value: [3]float32{5, 0, 0}}, cmds[0])
	assert.Equal(t, engine.Command{Kind: engine.AddTorque, Value: [3]float32{0, 0, -0.5}}, cmds[1])

	_, err = mb.Map([]float64{2, 0})
	assert.ErrorIs(t, err, ErrInvalidAction)
	_, err = NewMappedBox([]float64{1}, []float64{0}, []engine.CommandKinds{engine.AddForce})
	assert.Error(t, err)
	_, err = NewMappedBox([]float64{0}, []float64{1}, nil)
	assert.Error(t, err)
}

func TestRewardDense(t *testing.T) {
	_, agent, _, target := testScene(t)
	rf := NewRewardFunction(RewardDense, agent, target)
	require.NoError(t, rf.Validate())
	m := map[tree.Node]engine.NodeState{agent: at(0, 0, 0), target: at(3, 4, 0)}

	r, done, err := rf.Evaluate(states(m), 0)
	require.NoError(t, err)
	assert.False(t, done)
	assert.InDelta(t, -5, r, 1e-5)

	rf.DistanceMetric = BestEuclidean
	r, _, err = rf.Evaluate(states(m), 0)
	require.NoError(t, err)
	assert.Zero(t, r)
	m[agent] = at(3, 2, 0)
	r, _, _ = rf.Evaluate(states(m), 1)
	assert.InDelta(t, 3, r, 1e-5)
	m[agent] = at(3, 4, 0)
	r, _, _ = rf.Evaluate(states(m), 2)
	assert.InDelta(t, 2, r, 1e-5)
	r, _, _ = rf.Evaluate(states(m), 3)
	assert.Zero(t, r)

	_, _, err = rf.Evaluate(states(map[tree.Node]engine.NodeState{}), 4)
	assert.ErrorIs(t, err, ErrNoState)
}

func TestRewardSparse(t *testing.T) {
	_, agent, _, target := testScene(t)
	rf := NewRewardFunction(RewardSparse, agent, target)
	rf.Scalar = 2
	rf.IsTerminal = true
	m := map[tree.Node]engine.NodeState{agent: at(0, 0, 0), target: at(0, 0, 3)}

	r, done, err := rf.Evaluate(states(m), 0)
	require.NoError(t, err)
	assert.Zero(t, r)
	assert.False(t, done)

	m[agent] = at(0, 0, 2.5)
	r, done, _ = rf.Evaluate(states(m), 1)
	assert.Equal(t, float32(2), r)
	assert.True(t, done)

	rf.IsCollectable = true
	r, done, _ = rf.Evaluate(states(m), 2)
	assert.Zero(t, r)
	assert.False(t, done)
	rf.Reset()
	r, _, _ = rf.Evaluate(states(m), 0)
	assert.Equal(t, float32(2), r)
}

func TestRewardTriggerOnce(t *testing.T) {
	_, agent, _, target := testScene(t)
	rf := NewRewardFunction(RewardSparse, agent, target)
	rf.TriggerOnce = true
	m := map[tree.Node]engine.NodeState{agent: at(0, 0, 0), target: at(0, 0, 0)}

	r, _, _ := rf.Evaluate(states(m), 0)
	assert.Equal(t, float32(1), r)
	r, _, _ = rf.Evaluate(states(m), 1)
	assert.Zero(t, r)
	m[target] = at(10, 0, 0)
	rf.Evaluate(states(m), 2)
	m[target] = at(0, 0, 0)
	r, _, _ = rf.Evaluate(states(m), 3)
	assert.Equal(t, float32(1), r)
}

func TestRewardLogical(t *testing.T) {
	_, agent, cam, target := testScene(t)
	near := NewRewardFunction(RewardSparse, agent, target)
	timeout := &RewardFunction{Kind: RewardTimeout, Threshold: 5, Scalar: 1}
	m := map[tree.Node]engine.NodeState{agent: at(0, 0, 0), cam: at(0, 0, 0), target: at(0, 0, 0.5)}

	and := &RewardFunction{Kind: RewardAnd, A: near, B: timeout, Scalar: 3}
	or := &RewardFunction{Kind: RewardOr, A: near, B: timeout, Scalar: 3}
	xor := &RewardFunction{Kind: RewardXor, A: near, B: timeout, Scalar: 3}
	not := &RewardFunction{Kind: RewardNot, A: near, Scalar: 3}
	for _, rf := range []*RewardFunction{and, or, xor, not} {
		require.NoError(t, rf.Validate())
	}

	eval := func(rf *RewardFunction, step int) float32 {
		r, _, err := rf.Evaluate(states(m), step)
		require.NoError(t, err)
		return r
	}
	assert.Zero(t, eval(and, 0))
	assert.Equal(t, float32(3), eval(and, 5))
	assert.Equal(t, float32(3), eval(or, 0))
	assert.Equal(t, float32(3), eval(xor, 0))
	assert.Zero(t, eval(xor, 6))
	assert.Zero(t, eval(not, 0))

	r, done, err := timeout.Evaluate(states(m), 4)
	require.NoError(t, err)
	assert.Zero(t, r)
	assert.False(t, done)
	timeout.IsTerminal = true
	_, done, _ = timeout.Evaluate(states(m), 5)
	assert.True(t, done)

	assert.Error(t, (&RewardFunction{Kind: RewardAnd, A: near}).Validate())
	assert.Error(t, (&RewardFunction{Kind: "maybe"}).Validate())
	assert.Error(t, (&RewardFunction{Kind: RewardDense, EntityA: tree.NewRef(agent)}).Validate())
}

func TestRewardSee(t *testing.T) {
	_, agent, _, target := testScene(t)
	rf := NewRewardFunction(RewardSee, agent, target)
	rf.Threshold = 30
	m := map[tree.Node]engine.NodeState{agent: at(0, 0, 0), target: at(0, 1, -5)}

	r, _, err := rf.Evaluate(states(m), 0)
	require.NoError(t, err)
	assert.Equal(t, float32(1), r)
	m[target] = at(5, 0, 0)
	r, _, _ = rf.Evaluate(states(m), 1)
	assert.Zero(t, r)
}

func TestComponentObservationSpace(t *testing.T) {
	_, agent, cam, target := testScene(t)
	c, err := NewComponent(nil, nil, nil)
	require.NoError(t, err)
	assert.Nil(t, c.ObservationSpace())
	assert.Nil(t, c.ActionSpace())
	assert.NotNil(t, c.Observations)
	assert.NotNil(t, c.Rewards)

	c, err = NewComponent(nil, []Sensor{cam}, []*RewardFunction{NewRewardFunction(RewardDense, agent, target)})
	require.NoError(t, err)
	assert.Equal(t, cam.ObservationSpace(), c.ObservationSpace())
	assert.Equal(t, "Box(0, 255, [3 2 4], uint8)", c.ObservationSpace().String())

	wide, err := tree.New[*testCamera](agent, "wide")
	require.NoError(t, err)
	wide.Width = 8
	c.Observations = append(c.Observations, wide)
	assert.Equal(t, cam.ObservationSpace(), c.ObservationSpace())
	comp := c.CompositeObservationSpace()
	assert.Equal(t, []string{"camera", "wide"}, comp.Spaces.Keys())
	assert.Equal(t, 24+48, comp.Size())
}

func TestComponentObservation(t *testing.T) {
	scene, agent, cam, target := testScene(t)
	md, err := NewMappedDiscrete([]engine.CommandKinds{engine.ChangeRelativePosition}, nil)
	require.NoError(t, err)
	c, err := NewComponent(md, []Sensor{cam}, []*RewardFunction{NewRewardFunction(RewardDense, agent, target)})
	require.NoError(t, err)

	ev := engine.NewEvent()
	fr := engine.NewFrame(3, 2, 4)
	fr.Pix[0] = 9
	ev.Frames.Add("agent/camera", fr)
	obs, err := c.Observation(ev, scene)
	require.NoError(t, err)
	assert.Len(t, obs, 24)
	assert.Equal(t, float64(9), obs[0])
	assert.True(t, c.ObservationSpace().Contains(obs))

	all, err := c.AllObservations(ev, scene)
	require.NoError(t, err)
	assert.Equal(t, []string{"camera"}, all.Keys())

	_, err = c.Observation(engine.NewEvent(), scene)
	assert.ErrorIs(t, err, ErrNoObservation)
	empty, _ := NewComponent(md, nil, nil)
	_, err = empty.Observation(ev, scene)
	assert.ErrorIs(t, err, ErrNoObservation)

	cmds, err := c.Map([]float64{0})
	require.NoError(t, err)
	assert.Equal(t, engine.ChangeRelativePosition, cmds[0].Kind)
}

func TestComponentClone(t *testing.T) {
	scene, agent, cam, target := testScene(t)
	var err error
	agent.RL, err = NewComponent(nil, []Sensor{cam}, []*RewardFunction{
		NewRewardFunction(RewardDense, agent, target),
		{Kind: RewardNot, Scalar: 1, A: NewRewardFunction(RewardSparse, agent, target)},
	})
	require.NoError(t, err)

	copied := scene.Clone()
	assert.Equal(t, "scene-copy", scene.LastCopyName())
	na := copied.AsTree().FindPath("agent").(*testAgent)
	nc := copied.AsTree().FindPath("agent/camera")
	nt := copied.AsTree().FindPath("target")
	require.NotNil(t, na.RL)
	assert.NotSame(t, agent.RL, na.RL)

	assert.Same(t, nc, na.RL.Observations[0])
	assert.Same(t, na, na.RL.Rewards[0].EntityA.Node())
	assert.Same(t, nt, na.RL.Rewards[0].EntityB.Node())
	assert.Same(t, nt, na.RL.Rewards[1].A.EntityB.Node())
	assert.Same(t, cam, agent.RL.Observations[0])
	assert.Same(t, target, agent.RL.Rewards[0].EntityB.Node())

	// copying only the agent keeps the reference to the target outside it
	acopy := agent.Clone().(*testAgent)
	assert.Same(t, acopy.Children[0], acopy.RL.Observations[0])
	assert.Same(t, target, acopy.RL.Rewards[0].EntityB.Node())
}

func TestComponentEncode(t *testing.T) {
	scene, agent, cam, target := testScene(t)
	md, err := NewMappedDiscrete([]engine.CommandKinds{engine.ChangeRelativeRotation, engine.ChangeRelativePosition}, []float32{90, 1})
	require.NoError(t, err)
	sparse := NewRewardFunction(RewardSparse, agent, target)
	sparse.IsTerminal = true
	c, err := NewComponent(md, []Sensor{cam}, []*RewardFunction{
		NewRewardFunction(RewardDense, agent, target),
		{Kind: RewardOr, Scalar: 1, A: sparse, B: &RewardFunction{Kind: RewardTimeout, Threshold: 100}},
	})
	require.NoError(t, err)

	b, err := c.Encode(scene)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"observations":["agent/camera"]`)
	assert.Contains(t, string(b), `"entity_b":"target"`)

	d, err := Decode(b, scene)
	require.NoError(t, err)
	assert.Equal(t, md, d.Actions)
	assert.Same(t, cam, d.Observations[0])
	require.Len(t, d.Rewards, 2)
	assert.Same(t, target, d.Rewards[0].EntityB.Node())
	assert.True(t, d.Rewards[1].A.IsTerminal)
	assert.Equal(t, float32(100), d.Rewards[1].B.Threshold)

	_, err = Decode([]byte(`{"observations":["target"]}`), scene)
	assert.Error(t, err)
	_, err = Decode([]byte(`{"observations":["nowhere"]}`), scene)
	assert.ErrorIs(t, err, tree.ErrNotFound)
}
