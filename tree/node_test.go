// Copyright (c) 2023, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package tree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testNode struct {
	NodeBase

	Mass   float32
	Tags   []string
	Target Ref `copier:"-"`
}

func (t *testNode) CopyFieldsFrom(from Node) {
	t.NodeBase.CopyFieldsFrom(from)
	t.Target = from.(*testNode).Target
}

func (t *testNode) RemapRefs(remap func(r Ref) Ref) {
	t.Target = remap(t.Target)
}

func TestAddChild(t *testing.T) {
	root := NewRoot[*testNode]()
	assert.Equal(t, "test-node", root.Name)

	child := &testNode{}
	require.NoError(t, root.AddChild(child))
	assert.Equal(t, "test-node-0", child.Name)
	assert.Equal(t, root, child.Parent)
	assert.Equal(t, "/test-node/test-node-0", child.Path())

	named, err := New[*testNode](root, "cube")
	require.NoError(t, err)
	assert.Equal(t, "/test-node/cube", named.Path())
	assert.Equal(t, 2, root.NumChildren())
	assert.Equal(t, 1, named.IndexInParent())
}

func TestAddDuplicateName(t *testing.T) {
	root := NewRoot[*testNode]("scene")
	_, err := New[*testNode](root, "cube")
	require.NoError(t, err)

	dup := &testNode{}
	dup.SetName("cube")
	err = root.AddChild(dup)
	assert.ErrorIs(t, err, ErrDuplicateName)
	assert.Equal(t, 1, root.NumChildren())
	assert.Nil(t, dup.Parent)

	other, err := New[*testNode](root, "other")
	require.NoError(t, err)
	assert.ErrorIs(t, other.Rename("cube"), ErrDuplicateName)
	assert.NoError(t, other.Rename("sphere"))
}

func TestAddCycle(t *testing.T) {
	root := NewRoot[*testNode]("scene")
	a, err := New[*testNode](root, "a")
	require.NoError(t, err)
	b, err := New[*testNode](a, "b")
	require.NoError(t, err)

	assert.ErrorIs(t, b.AddChild(root), ErrCycle)
	assert.ErrorIs(t, b.AddChild(b), ErrCycle)
	assert.ErrorIs(t, a.AddChild(a), ErrCycle)
	assert.Equal(t, 2, root.Len())
}

func TestAddMoves(t *testing.T) {
	root := NewRoot[*testNode]("scene")
	a, _ := New[*testNode](root, "a")
	b, _ := New[*testNode](root, "b")
	c, _ := New[*testNode](a, "c")

	require.NoError(t, b.Add(c))
	assert.Equal(t, 0, a.NumChildren())
	assert.Equal(t, "/scene/b/c", c.Path())
}

func TestFindPath(t *testing.T) {
	root := NewRoot[*testNode]("scene")
	agent, _ := New[*testNode](root, "agent")
	cam, _ := New[*testNode](agent, "camera")
	slash, _ := New[*testNode](root, "a/b")

	assert.Equal(t, Node(cam), root.FindPath("agent/camera"))
	assert.Equal(t, Node(cam), root.FindPath("/agent/camera"))
	assert.Equal(t, Node(cam), root.FindPath("agent.camera"))
	assert.Equal(t, Node(cam), root.FindPath("[0]/[-1]"))
	assert.Equal(t, Node(slash), root.FindPath(slash.PathFrom(root)))
	assert.Equal(t, Node(root), root.FindPath(""))
	assert.Nil(t, root.FindPath("agent/light"))
	assert.Nil(t, root.FindPath("[5]"))

	_, err := root.Get("agent/light")
	assert.ErrorIs(t, err, ErrNotFound)
	got, err := agent.Get("camera")
	require.NoError(t, err)
	assert.Equal(t, Node(cam), got)
	assert.Equal(t, "agent/camera", cam.PathFrom(root))
	assert.Equal(t, Node(root), Root(cam))
	assert.Equal(t, 2, cam.Depth())
	assert.Equal(t, Node(root), Node(ParentByType[*testNode](agent)))
}

func TestWalkAndLen(t *testing.T) {
	root := NewRoot[*testNode]("scene")
	a, _ := New[*testNode](root, "a")
	New[*testNode](a, "a1")
	New[*testNode](a, "a2")
	New[*testNode](root, "b")

	var names []string
	root.WalkDown(func(n Node) bool {
		names = append(names, n.AsTree().Name)
		return n.AsTree().Name != "a"
	})
	assert.Equal(t, []string{"scene", "a", "b"}, names)

	assert.Equal(t, 4, root.Len())
	assert.Equal(t, 0, NewRoot[*testNode]().Len())
	assert.Len(t, root.Descendants(), 4)
	assert.Equal(t, "a2", root.Descendants()[2].AsTree().Name)
	assert.Equal(t, 2, root.MaxDepth())

	assert.True(t, root.DeleteChildByName("a"))
	assert.False(t, root.DeleteChildByName("a"))
	assert.Equal(t, 1, root.Len())
}

func TestClone(t *testing.T) {
	root := NewRoot[*testNode]("scene")
	agent, _ := New[*testNode](root, "agent")
	cam, _ := New[*testNode](agent, "camera")
	outside, _ := New[*testNode](root, "target")
	agent.Mass = 2
	agent.Tags = []string{"rl"}
	agent.Target = NewRef(cam)
	cam.Target = NewRef(outside)
	agent.SetProperty("color", "red")

	cp := agent.Clone().(*testNode)
	assert.Equal(t, "agent-copy", cp.Name)
	assert.Equal(t, "agent-copy", agent.LastCopyName())
	assert.Nil(t, cp.Parent)
	assert.Equal(t, float32(2), cp.Mass)
	assert.Equal(t, "red", cp.Property("color"))

	cp.Tags[0] = "changed"
	assert.Equal(t, "rl", agent.Tags[0])

	cpCam := cp.ChildByName("camera")
	require.NotNil(t, cpCam)
	assert.NotSame(t, cam, cpCam)
	assert.Equal(t, cpCam, cp.Target.Node())
	assert.Equal(t, Node(cam), agent.Target.Node())
	assert.Equal(t, Node(outside), cpCam.(*testNode).Target.Node())

	require.NoError(t, root.AddChild(cp))
	assert.Equal(t, "/scene/agent-copy/camera", cp.Target.String())

	cp2 := agent.Clone()
	assert.Equal(t, "agent-copy-1", cp2.AsTree().Name)
	assert.NoError(t, root.AddChild(cp2))
}

func TestRefResolve(t *testing.T) {
	root := NewRoot[*testNode]("scene")
	agent, _ := New[*testNode](root, "agent")
	cam, _ := New[*testNode](agent, "camera")

	r := NewRef(cam)
	p := r.PathFrom(root)
	assert.Equal(t, "agent/camera", p)
	back, err := Resolve(root, p)
	require.NoError(t, err)
	assert.Equal(t, r, back)

	empty, err := Resolve(root, "")
	require.NoError(t, err)
	assert.True(t, empty.IsNil())
	_, err = Resolve(root, "nope")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, "<nil>", Ref{}.String())
}
