// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package assets

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"cogentcore.org/simenv/engine"
	"cogentcore.org/simenv/math32"
	"cogentcore.org/simenv/rl"
	"cogentcore.org/simenv/tree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tol = 1.0e-5

// testScene returns a scene with one of each kind of asset:
//
//	floor, boxes/{red, gray}, ball, sun, lamp, agent/{body, camera}
func testScene(t *testing.T) *Scene {
	t.Helper()
	sc := NewScene()
	floor := NewPlane("floor", 10, 10, Gray25)
	boxes := NewAsset("boxes")
	boxes.SetPosition(1, 0, -2)
	boxes.Transform.SetEulerRotation(0, 30, 0)
	red := NewBox("red", math32.Vec3(1, 1, 1), Red)
	red.SetPosition(0, 0.5, 0)
	red.SetPhysics(NewRigidBodyComponent())
	red.AddCollider()
	gray := NewBox("gray", math32.Vec3(0.5, 2, 0.5), Gray75)
	gray.SetPosition(2, 1, 0)
	gray.Transform.Scale = math32.Vec3(1, 2, 1)
	require.NoError(t, boxes.Add(red, gray))
	ball := NewSphere("ball", 0.5, Gray75)
	ball.SetPosition(-3, 0.5, 4)
	sun := NewLightSun("sun", 2)
	lamp := NewLightSpot("lamp", 1.5, 30)
	lamp.Range = 20
	ag, err := NewSimpleRlAgent("agent", red)
	require.NoError(t, err)
	ag.SetPosition(0, 0, 5)
	require.NoError(t, sc.Add(floor, boxes, ball, sun, lamp, ag))
	return sc
}

func TestCompose(t *testing.T) {
	sc := NewScene()
	a := NewAsset("a")
	b := NewAsset("b")
	require.NoError(t, sc.Add(a))
	require.NoError(t, a.Add(b))

	assert.ErrorIs(t, sc.Add(NewAsset("a")), tree.ErrDuplicateName)
	assert.ErrorIs(t, b.Add(a), tree.ErrCycle)
	assert.Equal(t, 2, sc.Len())

	n, err := sc.Get("a.b")
	require.NoError(t, err)
	assert.Same(t, b, n)
	_, err = sc.Get("a.c")
	assert.ErrorIs(t, err, tree.ErrNotFound)

	got, err := Get[*AssetBase](sc, "a/b")
	require.NoError(t, err)
	assert.Same(t, b, got)
	_, err = Get[*Camera](sc, "a/b")
	assert.Error(t, err)
}

func TestWorldMatrix(t *testing.T) {
	sc := testScene(t)
	red, err := Get[*Box](sc, "boxes/red")
	require.NoError(t, err)
	want := sc.Child(1).(Asset).AsAsset().Transform.Matrix().Mul(red.Transform.Matrix())
	assert.Equal(t, want, red.WorldMatrix())
	assert.True(t, sc.WorldMatrix().IsIdentity())
}

// assertEquivalent asserts that the two trees have the same structure,
// mesh points and world matrices.
func assertEquivalent(t *testing.T, want, got Asset) {
	t.Helper()
	wn := want.AsTree().Descendants()
	gn := got.AsTree().Descendants()
	require.Equal(t, len(wn), len(gn))
	for i, w := range wn {
		wa := w.(Asset).AsAsset()
		ga := gn[i].(Asset).AsAsset()
		assert.Equal(t, wa.PathFrom(want), ga.PathFrom(got))
		assert.Equal(t, tree.TypeName(w), tree.TypeName(gn[i]), wa.Name)
		wm, gm := wa.WorldMatrix(), ga.WorldMatrix()
		for j := range wm {
			assert.InDelta(t, wm[j], gm[j], tol, "%s matrix[%d]", wa.Name, j)
		}
		if wo, ok := w.(objecter); ok {
			gobj, ok := gn[i].(objecter)
			require.True(t, ok, wa.Name)
			assert.Equal(t, wo.AsObject().Mesh.Points, gobj.AsObject().Mesh.Points, wa.Name)
			assert.Equal(t, wo.AsObject().Mesh.Faces, gobj.AsObject().Mesh.Faces, wa.Name)
			assert.Equal(t, wo.AsObject().Material.BaseColor, gobj.AsObject().Material.BaseColor, wa.Name)
		}
	}
}

func TestSaveLoad(t *testing.T) {
	for _, ext := range []string{".gltf", ".glb"} {
		t.Run(ext, func(t *testing.T) {
			sc := testScene(t)
			path := filepath.Join(t.TempDir(), "scene"+ext)
			require.NoError(t, sc.Save(path))
			want, err := FormatFromExt(path)
			require.NoError(t, err)
			got, err := DetectFileFormat(path)
			require.NoError(t, err)
			assert.Equal(t, want, got)
			if ext == ".gltf" {
				b, err := os.ReadFile(path)
				require.NoError(t, err)
				require.NotEmpty(t, bytes.TrimSpace(b))
				assert.Equal(t, byte('{'), bytes.TrimSpace(b)[0])
				assert.Contains(t, string(b), "data:application/octet-stream;base64,")
			}

			ld, err := Load(path)
			require.NoError(t, err)
			assert.Equal(t, sc.Len(), ld.Len())
			assertEquivalent(t, sc, ld)

			gray, err := Get[*Box](ld, "boxes/gray")
			require.NoError(t, err)
			assert.Equal(t, Gray75.BaseColor, gray.Material.BaseColor)
			assert.Equal(t, [6]float32{-0.25, 0.25, -1, 1, -0.25, 0.25}, gray.Bounds)
			ball, err := Get[*Sphere](ld, "ball")
			require.NoError(t, err)
			assert.Same(t, gray.Material, ball.Material)
			assert.InDelta(t, 0.5, ball.Radius, 1e-3)

			red, err := Get[*Box](ld, "boxes/red")
			require.NoError(t, err)
			require.IsType(t, &RigidBodyComponent{}, red.Physics)
			assert.Equal(t, float32(1), red.Physics.(*RigidBodyComponent).Mass)
			require.NotNil(t, red.Collider)
			assert.Equal(t, ColliderBox, red.Collider.Kind)

			lamp, err := Get[*LightSpot](ld, "lamp")
			require.NoError(t, err)
			assert.Equal(t, float32(1.5), lamp.Intensity)
			assert.Equal(t, float32(20), lamp.Range)
			assert.Equal(t, float32(30), lamp.OuterConeAngle)

			cam, err := Get[*Camera](ld, "agent.camera")
			require.NoError(t, err)
			assert.Equal(t, 32, cam.Width)
			assert.Equal(t, 32, cam.Height)
			assert.InDelta(t, 60, cam.YFov, 1e-3)
		})
	}
}

func TestSaveLoadRL(t *testing.T) {
	sc := testScene(t)
	path := filepath.Join(t.TempDir(), "scene.glb")
	require.NoError(t, sc.Save(path))
	ld, err := Load(path)
	require.NoError(t, err)

	ag, err := Get[*Agent](ld, "agent")
	require.NoError(t, err)
	require.NotNil(t, ag.RL)
	assert.Equal(t, [3]float32{1, 0, 0}, ag.Color)
	require.Len(t, ag.RL.Observations, 1)
	cam, err := Get[*Camera](ld, "agent/camera")
	require.NoError(t, err)
	assert.Same(t, cam, ag.RL.Observations[0])
	require.Len(t, ag.RL.Rewards, 1)
	rf := ag.RL.Rewards[0]
	assert.Same(t, ag, rf.EntityA.Node())
	red, err := Get[*Box](ld, "boxes/red")
	require.NoError(t, err)
	assert.Same(t, red, rf.EntityB.Node())
	assert.Equal(t, "Discrete(3)", ag.RL.ActionSpace().String())
}

func TestLoadFixture(t *testing.T) {
	a, err := LoadAsset(filepath.Join("testdata", "Box.gltf"))
	require.NoError(t, err)
	assert.Equal(t, 1, a.Len())
	box, err := Get[*Object](a, "Box")
	require.NoError(t, err)
	assert.Equal(t, 24, box.Mesh.NumPoints())
	assert.Equal(t, 12, box.Mesh.NumFaces())
	assert.Len(t, box.Mesh.Normals, 24)
	assert.Equal(t, [4]float32{0.800000011920929, 0, 0, 1}, box.Material.BaseColor)
	assert.Equal(t, float32(0), box.Material.Metallic)
	assert.InDelta(t, 2, box.Transform.Translation.Y, tol)
	assert.InDelta(t, -0.7071068, box.Transform.Rotation.X, tol)

	path := filepath.Join(t.TempDir(), "Box.gltf")
	require.NoError(t, a.Save(path))
	b, err := LoadAsset(path)
	require.NoError(t, err)
	assert.Equal(t, a.Len(), b.Len())
	assertEquivalent(t, a, b)
}

func TestArticulatedSiblings(t *testing.T) {
	root := NewAsset("robot")
	base := NewBox("base", math32.Vec3(1, 0.2, 1), nil)
	fixed, err := NewArticulatedBodyComponent(JointFixed)
	require.NoError(t, err)
	base.SetPhysics(fixed)
	arm := NewCapsule("arm", 0.1, 1, nil)
	revolute, err := NewArticulatedBodyComponent(JointRevolute)
	require.NoError(t, err)
	revolute.UpperLimit = 90
	revolute.LowerLimit = -90
	arm.SetPhysics(revolute)
	hand := NewSphere("hand", 0.1, nil)
	require.NoError(t, arm.Add(hand))
	require.NoError(t, root.Add(base, arm))

	var buf bytes.Buffer
	require.NoError(t, Encode(root, &buf, FormatGLB))
	ld := NewAsset("robot")
	require.NoError(t, Decode(ld, &buf))
	assert.Equal(t, root.Len(), ld.Len())
	assert.Equal(t, root.MaxDepth(), ld.MaxDepth())

	lb, err := Get[*Box](ld, "base")
	require.NoError(t, err)
	assert.Equal(t, JointFixed, lb.Physics.(*ArticulatedBodyComponent).JointKind)
	la, err := Get[*Capsule](ld, "arm")
	require.NoError(t, err)
	lr := la.Physics.(*ArticulatedBodyComponent)
	assert.Equal(t, JointRevolute, lr.JointKind)
	assert.Equal(t, float32(90), lr.UpperLimit)

	_, err = NewArticulatedBodyComponent("hinge")
	assert.Error(t, err)
}

func TestObservationSpace(t *testing.T) {
	target := NewBox("target", math32.Vec3(1, 1, 1), nil)
	ag, err := NewSimpleRlAgent("agent", target)
	require.NoError(t, err)
	cam, err := Get[*Camera](ag, "camera")
	require.NoError(t, err)
	assert.Equal(t, cam.ObservationSpace().String(), ag.RL.ObservationSpace().String())
	assert.Equal(t, "Box(0, 255, [3 32 32], uint8)", ag.RL.ObservationSpace().String())
	assert.Equal(t, "Discrete(3)", ag.RL.ActionSpace().String())
}

func TestClone(t *testing.T) {
	sc := testScene(t)
	cp := sc.Clone().(*Scene)
	assert.Equal(t, "scene-copy", cp.Name)
	assert.Equal(t, "scene-copy", sc.LastCopyName())
	assert.Equal(t, sc.Len(), cp.Len())
	assertEquivalent(t, sc, cp)

	ag, err := Get[*Agent](cp, "agent")
	require.NoError(t, err)
	orig, err := Get[*Agent](sc, "agent")
	require.NoError(t, err)
	require.NotSame(t, orig.RL, ag.RL)
	for _, s := range ag.RL.Observations {
		assert.Same(t, cp, tree.Root(s))
	}
	for _, rf := range ag.RL.Rewards {
		assert.Same(t, cp, tree.Root(rf.EntityA.Node()))
		assert.Same(t, cp, tree.Root(rf.EntityB.Node()))
	}
	for _, rf := range orig.RL.Rewards {
		assert.Same(t, sc, tree.Root(rf.EntityB.Node()))
	}

	red, err := Get[*Box](cp, "boxes/red")
	require.NoError(t, err)
	ored, err := Get[*Box](sc, "boxes/red")
	require.NoError(t, err)
	assert.NotSame(t, ored.Mesh, red.Mesh)
	assert.NotSame(t, ored.Physics, red.Physics)
	assert.Same(t, ored.Material, red.Material)

	sc.Clone()
	assert.Equal(t, "scene-copy-1", sc.LastCopyName())
}

func TestSceneEngine(t *testing.T) {
	ctx := context.Background()
	sc := testScene(t)
	assert.ErrorIs(t, sc.Show(ctx), ErrNoEngine)

	fe := engine.NewFake()
	sc.SetEngine(fe)
	require.NoError(t, sc.Show(ctx))
	ag, err := Get[*Agent](sc, "agent")
	require.NoError(t, err)

	ev, err := sc.Step(ctx, map[string][]engine.Command{
		"agent": {engine.NewCommand(engine.ChangePosition, math32.Vec3(1, 0, -1))},
	})
	require.NoError(t, err)
	assert.Same(t, ev, sc.LastEvent)
	assert.InDelta(t, 1, ag.Transform.Translation.X, tol)
	assert.InDelta(t, 4, ag.Transform.Translation.Z, tol)
	red, err := Get[*Box](sc, "boxes/red")
	require.NoError(t, err)
	assert.Less(t, red.Transform.Translation.Y, float32(0.5))

	fr, ok := ev.Frames.ValueByKeyTry("agent/camera")
	require.True(t, ok)
	obs, err := ag.RL.Observation(ev, sc)
	require.NoError(t, err)
	assert.Len(t, obs, 3*32*32)
	assert.Equal(t, float64(fr.Pix[0]), obs[0])

	st, ok := sc.StateLookup(ev)(tree.NewRef(red))
	require.True(t, ok)
	assert.Equal(t, red.WorldMatrix().Pos(), st.Pos())
	assert.Less(t, st.Velocity[1], float32(0))

	require.NoError(t, sc.Reset(ctx))
	assert.InDelta(t, 5, ag.Transform.Translation.Z, tol)
	assert.Equal(t, float32(0.5), red.Transform.Translation.Y)
	assert.Nil(t, sc.LastEvent)

	require.NoError(t, sc.Close())
	_, err = sc.Step(ctx, nil)
	assert.ErrorIs(t, err, engine.ErrClosed)
}

func TestSceneAgents(t *testing.T) {
	sc := testScene(t)
	ags := sc.Agents()
	require.Len(t, ags, 1)
	assert.Equal(t, "agent", ags[0].Name)
	assert.Empty(t, NewScene().Agents())
}

func TestFormat(t *testing.T) {
	f, err := DetectFormat([]byte("glTF\x02\x00\x00\x00\x10\x00\x00\x00"))
	require.NoError(t, err)
	assert.Equal(t, FormatGLB, f)
	f, err = DetectFormat([]byte("\xef\xbb\xbf  {\"asset\":{}}"))
	require.NoError(t, err)
	assert.Equal(t, FormatGLTF, f)
	_, err = DetectFormat([]byte("\x89PNG\r\n\x1a\n"))
	assert.Error(t, err)

	f, err = FormatFromExt("a/b.GLB")
	require.NoError(t, err)
	assert.Equal(t, FormatGLB, f)
	_, err = FormatFromExt("scene.obj")
	assert.Error(t, err)

	f, err = DetectFileFormat(filepath.Join("testdata", "Box.gltf"))
	require.NoError(t, err)
	assert.Equal(t, FormatGLTF, f)
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()
	_, err := Load(filepath.Join(dir, "missing.gltf"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	bad := filepath.Join(dir, "bad.gltf")
	require.NoError(t, os.WriteFile(bad, []byte("not a document"), 0666))
	_, err = Load(bad)
	assert.Error(t, err)

	trunc := filepath.Join(dir, "trunc.gltf")
	require.NoError(t, os.WriteFile(trunc, []byte(`{"asset": {"version": "2.0"}, "nodes": [`), 0666))
	_, err = Load(trunc)
	assert.Error(t, err)

	dup := `{"asset":{"version":"2.0"},"scenes":[{"nodes":[0,1]}],"nodes":[{"name":"a"},{"name":"a"}]}`
	err = Decode(NewAsset(), bytes.NewReader([]byte(dup)))
	assert.ErrorIs(t, err, tree.ErrDuplicateName)

	kind := `{"asset":{"version":"2.0"},"scenes":[{"nodes":[0]}],"nodes":[{"name":"a","extras":{"simenv":{"kind":"teapot"}}}]}`
	err = Decode(NewAsset(), bytes.NewReader([]byte(kind)))
	assert.ErrorContains(t, err, "teapot")

	cycle := `{"asset":{"version":"2.0"},"scenes":[{"nodes":[0]}],"nodes":[{"name":"a","children":[1]},{"name":"b","children":[0]}]}`
	err = Decode(NewAsset(), bytes.NewReader([]byte(cycle)))
	assert.ErrorIs(t, err, tree.ErrCycle)

	badAccessor := `{"asset":{"version":"2.0"},"scenes":[{"nodes":[0]}],"nodes":[{"name":"a","mesh":0}],"meshes":[{"primitives":[{"attributes":{"POSITION":7}}]}]}`
	assert.NotPanics(t, func() {
		err = Decode(NewScene(), bytes.NewReader([]byte(badAccessor)))
	})
	assert.ErrorContains(t, err, "accessor index 7 out of range")

	badIndices := `{"asset":{"version":"2.0"},"scenes":[{"nodes":[0]}],"nodes":[{"name":"a","mesh":0}],"meshes":[{"primitives":[{"attributes":{"POSITION":0},"indices":3}]}],` +
		`"accessors":[{"bufferView":4,"componentType":5126,"count":3,"type":"VEC3"}]}`
	assert.NotPanics(t, func() {
		err = Decode(NewScene(), bytes.NewReader([]byte(badIndices)))
	})
	assert.ErrorContains(t, err, "buffer view index 4 out of range")

	future := `{"asset":{"version":"3.0"},"scenes":[{"nodes":[0]}],"nodes":[{"name":"a"}]}`
	err = Decode(NewAsset(), bytes.NewReader([]byte(future)))
	assert.ErrorIs(t, err, ErrVersion)

	minv := `{"asset":{"version":"2.0","minVersion":"2.1"},"scenes":[{"nodes":[0]}],"nodes":[{"name":"a"}]}`
	assert.NoError(t, Decode(NewAsset(), bytes.NewReader([]byte(minv))))

	require.Error(t, Save(NewAsset(), filepath.Join(dir, "scene.obj")))
}

func TestRLReferenceOutsideTree(t *testing.T) {
	sc := NewScene()
	outside := NewBox("outside", math32.Vec3(1, 1, 1), nil)
	ag, err := NewSimpleRlAgent("agent", outside)
	require.NoError(t, err)
	require.NoError(t, sc.Add(ag))
	var buf bytes.Buffer
	assert.ErrorIs(t, Encode(sc, &buf, FormatGLB), rl.ErrOutsideRoot)

	grp := NewAsset("grp")
	ag, err = NewSimpleRlAgent("agent", grp)
	require.NoError(t, err)
	require.NoError(t, grp.Add(ag))
	path := filepath.Join(t.TempDir(), "grp.glb")
	assert.ErrorIs(t, grp.Save(path), rl.ErrOutsideRoot)

	outer := NewAsset("outer")
	require.NoError(t, outer.Add(grp))
	require.NoError(t, outer.Save(path))
	ld, err := LoadAsset(path)
	require.NoError(t, err)
	lag, err := Get[*Agent](ld, "grp/agent")
	require.NoError(t, err)
	require.NotNil(t, lag.RL)
}
