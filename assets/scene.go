// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package assets

import (
	"context"
	"fmt"
	"log/slog"

	"cogentcore.org/simenv/base/errors"
	"cogentcore.org/simenv/engine"
	"cogentcore.org/simenv/rl"
	"cogentcore.org/simenv/tree"
)

// ErrNoEngine is returned by the simulation methods of a [Scene]
// that has no engine.
var ErrNoEngine = errors.New("assets: scene has no engine")

// Scene is the root of an asset tree, bound to the engine that
// simulates it. Node states returned by the engine are keyed by
// their path from the scene and are relative to the parent node.
type Scene struct {
	AssetBase

	// Engine simulates the scene.
	Engine engine.Engine `copier:"-"`

	// Options are passed to the engine when the scene is shown.
	Options engine.Options

	// LastEvent is the result of the last step.
	LastEvent *engine.Event `copier:"-"`

	// initial holds the local transform of every asset when the scene
	// was shown, restored by Reset.
	initial map[Asset]Transform
}

// NewScene returns a new scene with the given name, defaulting to "scene".
func NewScene(name ...string) *Scene {
	return tree.NewRoot[*Scene](name...)
}

func (sc *Scene) Init() {
	sc.AssetBase.Init()
	sc.Options = engine.DefaultOptions()
}

// SetEngine sets the engine that simulates the scene.
func (sc *Scene) SetEngine(e engine.Engine) *Scene {
	sc.Engine = e
	return sc
}

// Show sends the scene to the engine as a binary glTF document,
// launching or connecting to it as needed.
func (sc *Scene) Show(ctx context.Context) error {
	if sc.Engine == nil {
		return ErrNoEngine
	}
	desc, err := EncodeBinary(sc)
	if err != nil {
		return fmt.Errorf("encoding scene %q: %w", sc.Name, err)
	}
	if err := sc.Engine.Initialize(ctx, desc, sc.Options); err != nil {
		return err
	}
	sc.initial = map[Asset]Transform{}
	sc.WalkDown(func(n tree.Node) bool {
		if a, ok := n.(Asset); ok {
			sc.initial[a] = a.AsAsset().Transform
		}
		return true
	})
	slog.Debug("scene shown", "scene", sc.Name, "nodes", sc.Len(), "bytes", len(desc))
	return nil
}

// Step applies the given commands, keyed by agent path, advances the
// simulation and updates the local transforms of the assets from the
// returned node states.
func (sc *Scene) Step(ctx context.Context, commands map[string][]engine.Command) (*engine.Event, error) {
	if sc.Engine == nil {
		return nil, ErrNoEngine
	}
	ev, err := sc.Engine.Step(ctx, commands)
	if err != nil {
		return nil, err
	}
	sc.apply(ev)
	sc.LastEvent = ev
	return ev, nil
}

// apply sets the local transforms of the assets named in the event.
func (sc *Scene) apply(ev *engine.Event) {
	for path, st := range ev.Nodes {
		n := sc.FindPath(path)
		a, ok := n.(Asset)
		if !ok || n == sc.This {
			continue
		}
		tr := &a.AsAsset().Transform
		tr.Translation = st.Pos()
		tr.Rotation = st.Quat()
	}
}

// Reset resets the engine and restores the transforms the assets had
// when the scene was shown.
func (sc *Scene) Reset(ctx context.Context) error {
	if sc.Engine == nil {
		return ErrNoEngine
	}
	if err := sc.Engine.Reset(ctx); err != nil {
		return err
	}
	for a, tr := range sc.initial {
		a.AsAsset().Transform = tr
	}
	sc.LastEvent = nil
	return nil
}

// Close closes the engine, if any.
func (sc *Scene) Close() error {
	if sc.Engine == nil {
		return nil
	}
	return sc.Engine.Close()
}

// Agents returns all of the agents in the scene, in tree order.
func (sc *Scene) Agents() []*Agent {
	var ags []*Agent
	sc.WalkDown(func(n tree.Node) bool {
		if ag, ok := n.(*Agent); ok {
			ags = append(ags, ag)
		}
		return true
	})
	return ags
}

// StateLookup returns an [rl.StateLookup] giving the world position
// and rotation of assets in the scene from their current transforms,
// with the velocities reported for them in the given event, if any.
func (sc *Scene) StateLookup(ev *engine.Event) rl.StateLookup {
	return func(r tree.Ref) (engine.NodeState, bool) {
		n := r.Node()
		if n == nil {
			return engine.NodeState{}, false
		}
		a, ok := n.(Asset)
		if !ok || tree.Root(n) != sc.This {
			return engine.NodeState{}, false
		}
		st := engine.NodeState{}
		if ev != nil {
			if es, ok := ev.Nodes[r.PathFrom(sc)]; ok {
				st.Velocity, st.AngularVelocity = es.Velocity, es.AngularVelocity
			}
		}
		pos, q, _ := a.AsAsset().WorldMatrix().Decompose()
		st.SetPos(pos)
		st.SetQuat(q)
		return st, true
	}
}
