// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package rlenv provides a reinforcement learning environment over a
// scene: each step maps an action of one agent to engine commands,
// advances the engine and returns the observation of the agent, its
// reward and whether the episode is done.
package rlenv

import (
	"context"
	"fmt"
	"log/slog"

	"cogentcore.org/simenv/assets"
	"cogentcore.org/simenv/base/errors"
	"cogentcore.org/simenv/base/ordmap"
	"cogentcore.org/simenv/base/randx"
	"cogentcore.org/simenv/config"
	"cogentcore.org/simenv/engine"
	"cogentcore.org/simenv/spaces"
	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"
)

// ErrNoAgent is returned when the environment agent cannot be determined.
var ErrNoAgent = errors.New("rlenv: no agent")

// Options are the options of an [Env].
type Options struct {

	// Agent is the path of the agent from the scene. If it is empty,
	// the scene must have exactly one agent.
	Agent string

	// MaxSteps is the number of steps after which an episode is
	// truncated; 0 means no limit.
	MaxSteps int

	// Seed seeds [Env.SampleAction].
	Seed int64
}

// OptionsFromConfig returns the options in the given config.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{Agent: cfg.Env.Agent, MaxSteps: cfg.Env.MaxSteps, Seed: cfg.Env.Seed}
}

// Info is the extra information returned by [Env.Step].
type Info struct {

	// Step is the number of steps taken in the episode, including this one.
	Step int

	// Truncated is whether the episode ended because it reached
	// [Options.MaxSteps].
	Truncated bool

	// EngineReward is the part of the reward computed by the engine.
	EngineReward float32

	// Observations are the observations of every source of the agent,
	// keyed by source name.
	Observations *ordmap.Map[string, []float64]

	// Event is the step result of the engine.
	Event *engine.Event
}

// Env is a reinforcement learning environment in which one agent of
// a scene acts. The scene must have an engine.
type Env struct {
	Options

	// Scene is the simulated scene.
	Scene *assets.Scene

	// Agent is the agent that acts.
	Agent *assets.Agent

	// Steps is the number of steps taken in the current episode.
	Steps int

	path  string
	rand  *randx.SysRand
	shown bool
	done  bool
}

// New returns a new environment for the given scene.
func New(sc *assets.Scene, opts Options) (*Env, error) {
	ag, err := findAgent(sc, opts.Agent)
	if err != nil {
		return nil, err
	}
	if ag.RL == nil || ag.RL.Actions == nil {
		return nil, fmt.Errorf("rlenv.New: agent %q has no action mapping: %w", ag.Name, ErrNoAgent)
	}
	return &Env{Options: opts, Scene: sc, Agent: ag, path: ag.PathFrom(sc), rand: randx.NewSysRand(opts.Seed)}, nil
}

func findAgent(sc *assets.Scene, path string) (*assets.Agent, error) {
	if path != "" {
		ag, err := assets.Get[*assets.Agent](sc, path)
		if err != nil {
			if s := suggestAgent(sc, path); s != "" {
				return nil, fmt.Errorf("rlenv.New: %w: %w (did you mean %q?)", ErrNoAgent, err, s)
			}
			return nil, fmt.Errorf("rlenv.New: %w: %w", ErrNoAgent, err)
		}
		return ag, nil
	}
	ags := sc.Agents()
	if len(ags) != 1 {
		return nil, fmt.Errorf("rlenv.New: scene %q has %d agents, want 1: %w", sc.Name, len(ags), ErrNoAgent)
	}
	return ags[0], nil
}

// suggestAgent returns the path of the scene agent most similar to
// the given path, or "" if none is close.
func suggestAgent(sc *assets.Scene, path string) string {
	lev := metrics.NewLevenshtein()
	best, bestSim := "", 0.5
	for _, ag := range sc.Agents() {
		p := ag.PathFrom(sc)
		if sim := strutil.Similarity(path, p, lev); sim >= bestSim {
			best, bestSim = p, sim
		}
	}
	return best
}

// ActionSpace returns the action space of the agent.
func (e *Env) ActionSpace() spaces.Space {
	return e.Agent.RL.ActionSpace()
}

// ObservationSpace returns the observation space of the agent.
func (e *Env) ObservationSpace() spaces.Space {
	return e.Agent.RL.ObservationSpace()
}

// SampleAction returns a random action from the action space.
func (e *Env) SampleAction() []float64 {
	return e.ActionSpace().Sample(e.rand)
}

// Reset starts a new episode and returns its first observation. The
// scene is shown to the engine on the first call and reset afterwards,
// and then advanced by one step without commands to render the first
// observation.
func (e *Env) Reset(ctx context.Context) ([]float64, error) {
	if !e.shown {
		if err := e.Scene.Show(ctx); err != nil {
			return nil, err
		}
		e.shown = true
	} else if err := e.Scene.Reset(ctx); err != nil {
		return nil, err
	}
	e.Agent.RL.Reset()
	e.Steps = 0
	e.done = false
	ev, err := e.Scene.Step(ctx, nil)
	if err != nil {
		return nil, err
	}
	slog.Debug("episode reset", "agent", e.path)
	return e.observe(ev)
}

func (e *Env) observe(ev *engine.Event) ([]float64, error) {
	if len(e.Agent.RL.Observations) == 0 {
		return nil, nil
	}
	return e.Agent.RL.Observation(ev, e.Scene)
}

// Step applies the given action and returns the resulting observation,
// the reward, and whether the episode is done. An episode is done when
// a terminal reward function triggers, the engine ends it, or it reaches
// [Options.MaxSteps]. Stepping a done episode without [Env.Reset] is an error.
func (e *Env) Step(ctx context.Context, action []float64) ([]float64, float32, bool, *Info, error) {
	if !e.shown {
		return nil, 0, false, nil, fmt.Errorf("rlenv.Env.Step: Reset must be called first")
	}
	if e.done {
		return nil, 0, true, nil, fmt.Errorf("rlenv.Env.Step: episode is done; call Reset")
	}
	cmds, err := e.Agent.RL.Map(action)
	if err != nil {
		return nil, 0, false, nil, err
	}
	ev, err := e.Scene.Step(ctx, map[string][]engine.Command{e.path: cmds})
	if err != nil {
		return nil, 0, false, nil, err
	}
	e.Steps++
	info := &Info{Step: e.Steps, Event: ev}
	obs, err := e.observe(ev)
	if err != nil {
		return nil, 0, false, nil, err
	}
	if len(e.Agent.RL.Observations) > 1 {
		info.Observations, err = e.Agent.RL.AllObservations(ev, e.Scene)
		if err != nil {
			return nil, 0, false, nil, err
		}
	}
	reward, done, err := e.Agent.RL.Reward(e.Scene.StateLookup(ev), e.Steps)
	if err != nil {
		return nil, 0, false, nil, err
	}
	if r, ok := ev.Rewards[e.path]; ok {
		info.EngineReward = r
		reward += r
	}
	done = done || ev.Done
	if !done && e.MaxSteps > 0 && e.Steps >= e.MaxSteps {
		done = true
		info.Truncated = true
	}
	e.done = done
	return obs, reward, done, info, nil
}

// Close closes the engine of the scene.
func (e *Env) Close() error {
	return e.Scene.Close()
}
