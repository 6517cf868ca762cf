// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"sync"

	"cogentcore.org/simenv/math32"
	"cogentcore.org/simenv/tree"
	"github.com/qmuntal/gltf"
)

// Gravity is the downward acceleration applied by [Fake] to rigid bodies.
const Gravity = 9.81

// fakeBody is the state [Fake] keeps for one node.
type fakeBody struct {
	path       string
	state      NodeState
	mass       float32
	dynamic    bool
	useGravity bool
	camera     *fakeCamera
}

type fakeCamera struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// fakeExtras mirrors the parts of the node extras that [Fake] uses.
type fakeExtras struct {
	Camera  *fakeCamera `json:"camera"`
	Physics *struct {
		Kind       string  `json:"kind"`
		Mass       float32 `json:"mass"`
		UseGravity bool    `json:"use_gravity"`
		Kinematic  bool    `json:"kinematic"`
	} `json:"physics"`
}

// Fake is a deterministic in-process [Engine] with trivial kinematics.
// It reads node transforms, cameras and rigid bodies from the scene
// description, integrates gravity and velocity for non-kinematic rigid
// bodies, applies position, rotation, velocity and force commands, and
// renders a uniform gray frame for every camera. It is not a physics engine.
type Fake struct {

	// Steps is the number of steps taken since the last reset.
	Steps int

	// Commands records the commands of every step since the last reset.
	Commands []map[string][]Command

	opts    Options
	bodies  []*fakeBody
	initial []NodeState

	mu          sync.Mutex
	busy        bool
	closed      bool
	initialized bool
}

// NewFake returns a new [Fake] engine.
func NewFake() *Fake {
	return &Fake{}
}

func (f *Fake) acquire() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return ErrClosed
	}
	if f.busy {
		return ErrStepInProgress
	}
	f.busy = true
	return nil
}

func (f *Fake) release() {
	f.mu.Lock()
	f.busy = false
	f.mu.Unlock()
}

func (f *Fake) Initialize(ctx context.Context, description []byte, opts Options) error {
	if err := f.acquire(); err != nil {
		return err
	}
	defer f.release()
	if opts.FrameRate <= 0 || opts.FrameSkip <= 0 {
		return fmt.Errorf("engine.Fake.Initialize: invalid options %+v", opts)
	}
	doc := &gltf.Document{}
	if err := gltf.NewDecoder(bytes.NewReader(description)).Decode(doc); err != nil {
		return fmt.Errorf("engine.Fake.Initialize: %w", err)
	}
	f.opts = opts
	f.bodies = nil
	if len(doc.Scenes) > 0 {
		si := 0
		if doc.Scene != nil {
			si = *doc.Scene
		}
		for _, ni := range doc.Scenes[si].Nodes {
			if err := f.addNode(doc, ni, ""); err != nil {
				return err
			}
		}
	}
	f.initial = make([]NodeState, len(f.bodies))
	for i, b := range f.bodies {
		f.initial[i] = b.state
	}
	f.initialized = true
	f.Steps = 0
	f.Commands = nil
	return nil
}

func (f *Fake) addNode(doc *gltf.Document, ni int, parent string) error {
	if ni < 0 || ni >= len(doc.Nodes) {
		return fmt.Errorf("engine.Fake: node index %d out of range", ni)
	}
	nd := doc.Nodes[ni]
	path := tree.EscapePathName(nd.Name)
	if parent != "" {
		path = parent + "/" + path
	}
	b := &fakeBody{path: path, mass: 1}
	pos, rot := nodePose(nd)
	b.state.SetPos(pos)
	b.state.SetQuat(rot)
	if nd.Extras != nil {
		var ex struct {
			Simenv fakeExtras `json:"simenv"`
		}
		raw, err := json.Marshal(nd.Extras)
		if err == nil && json.Unmarshal(raw, &ex) == nil {
			if ex.Simenv.Camera != nil {
				b.camera = ex.Simenv.Camera
			}
			if p := ex.Simenv.Physics; p != nil && p.Kind == "rigid_body" {
				b.dynamic = !p.Kinematic
				b.useGravity = p.UseGravity
				if p.Mass > 0 {
					b.mass = p.Mass
				}
			}
		}
	}
	if b.camera == nil && nd.Camera != nil {
		b.camera = &fakeCamera{Width: 256, Height: 256}
	}
	f.bodies = append(f.bodies, b)
	for _, ci := range nd.Children {
		if err := f.addNode(doc, ci, path); err != nil {
			return err
		}
	}
	return nil
}

// nodePose returns the local position and rotation of a glTF node.
func nodePose(nd *gltf.Node) (math32.Vector3, math32.Quat) {
	m := nd.MatrixOrDefault()
	if m != gltf.DefaultMatrix {
		pos, rot, _ := math32.Matrix4FromArray(m).Decompose()
		return pos, rot
	}
	return math32.Vector3FromArray(nd.TranslationOrDefault()), math32.QuatFromArray(nd.RotationOrDefault())
}

func (f *Fake) body(path string) *fakeBody {
	for _, b := range f.bodies {
		if b.path == path {
			return b
		}
	}
	return nil
}

func (f *Fake) Step(ctx context.Context, commands map[string][]Command) (*Event, error) {
	if err := f.acquire(); err != nil {
		return nil, err
	}
	defer f.release()
	if !f.initialized {
		return nil, ErrNotInitialized
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	for path, cmds := range commands {
		if f.body(path) == nil {
			return nil, fmt.Errorf("engine.Fake.Step: no node %q", path)
		}
		for _, c := range cmds {
			if err := c.Kind.Validate(); err != nil {
				return nil, fmt.Errorf("engine.Fake.Step: %q: %w", path, err)
			}
		}
	}
	dt := 1 / float32(f.opts.FrameRate)
	for path, cmds := range commands {
		b := f.body(path)
		for _, c := range cmds {
			if err := f.apply(b, c, dt*float32(f.opts.FrameSkip)); err != nil {
				return nil, err
			}
		}
	}
	for i, n := 0, f.opts.FrameSkip; i < n; i++ {
		for _, b := range f.bodies {
			if !b.dynamic {
				continue
			}
			v := math32.Vec3(b.state.Velocity[0], b.state.Velocity[1], b.state.Velocity[2])
			if b.useGravity {
				v.Y -= Gravity * dt
			}
			b.state.Velocity = [3]float32{v.X, v.Y, v.Z}
			b.state.SetPos(b.state.Pos().Add(v.MulScalar(dt)))
			av := math32.Vec3(b.state.AngularVelocity[0], b.state.AngularVelocity[1], b.state.AngularVelocity[2])
			if !av.IsNil() {
				q := b.state.Quat().Mul(math32.NewQuatEuler(av.MulScalar(dt)))
				q.Normalize()
				b.state.SetQuat(q)
			}
		}
	}
	f.Steps++
	f.Commands = append(f.Commands, maps.Clone(commands))

	ev := NewEvent()
	for _, b := range f.bodies {
		ev.Nodes[b.path] = b.state
		if b.camera != nil {
			fr := NewFrame(3, b.camera.Height, b.camera.Width)
			for i := range fr.Pix {
				fr.Pix[i] = 127
			}
			ev.Frames.Add(b.path, fr)
		}
	}
	return ev, nil
}

// apply applies one command to the body. Forces and torques act as
// impulses over the duration of the step.
func (f *Fake) apply(b *fakeBody, c Command, stepTime float32) error {
	v := c.Vector()
	q := b.state.Quat()
	switch c.Kind {
	case ChangePosition:
		b.state.SetPos(b.state.Pos().Add(v))
	case ChangeRelativePosition:
		b.state.SetPos(b.state.Pos().Add(v.MulQuat(q)))
	case ChangeRotation:
		nq := math32.NewQuatEuler(v.MulScalar(math32.DegToRadFactor)).Mul(q)
		nq.Normalize()
		b.state.SetQuat(nq)
	case ChangeRelativeRotation:
		nq := q.Mul(math32.NewQuatEuler(v.MulScalar(math32.DegToRadFactor)))
		nq.Normalize()
		b.state.SetQuat(nq)
	case SetVelocity:
		b.state.Velocity = c.Value
	case SetAngularVelocity:
		b.state.AngularVelocity = c.Value
	case AddForce, AddRelativeForce:
		if c.Kind == AddRelativeForce {
			v = v.MulQuat(q)
		}
		dv := v.MulScalar(stepTime / b.mass)
		b.state.Velocity = [3]float32{b.state.Velocity[0] + dv.X, b.state.Velocity[1] + dv.Y, b.state.Velocity[2] + dv.Z}
	case AddTorque, AddRelativeTorque:
		if c.Kind == AddRelativeTorque {
			v = v.MulQuat(q)
		}
		dv := v.MulScalar(stepTime / b.mass)
		av := b.state.AngularVelocity
		b.state.AngularVelocity = [3]float32{av[0] + dv.X, av[1] + dv.Y, av[2] + dv.Z}
	default:
		return fmt.Errorf("engine.Fake: %w", c.Kind.Validate())
	}
	return nil
}

func (f *Fake) Reset(ctx context.Context) error {
	if err := f.acquire(); err != nil {
		return err
	}
	defer f.release()
	if !f.initialized {
		return ErrNotInitialized
	}
	for i, b := range f.bodies {
		b.state = f.initial[i]
	}
	f.Steps = 0
	f.Commands = nil
	return nil
}

func (f *Fake) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}
