// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package engine defines the synchronous client interface to a
// simulation engine, which owns physics and rendering. A scene is
// handed to the engine once with [Engine.Initialize], then advanced
// with [Engine.Step] until [Engine.Close].
package engine

import (
	"context"
	"fmt"

	"cogentcore.org/simenv/base/errors"
	"cogentcore.org/simenv/config"
)

var (
	// ErrClosed is returned by every method called after [Engine.Close].
	ErrClosed = errors.New("engine: closed")

	// ErrStepInProgress is returned when a request is made while another
	// request on the same engine has not returned yet.
	ErrStepInProgress = errors.New("engine: request already in progress")

	// ErrNotInitialized is returned by Step and Reset before Initialize.
	ErrNotInitialized = errors.New("engine: not initialized")
)

// Engine is a simulation engine that renders and simulates a scene.
// All methods are synchronous: each blocks until the engine has answered,
// and at most one request may be outstanding at a time.
type Engine interface {

	// Initialize hands the scene description (a binary glTF document)
	// to the engine, launching or attaching to the engine process first
	// if needed. It must be called once before Step.
	Initialize(ctx context.Context, description []byte, opts Options) error

	// Step applies the given commands, keyed by the path of the agent
	// node they act on, advances the simulation by [Options.FrameSkip]
	// physics frames and returns the resulting state.
	Step(ctx context.Context, commands map[string][]Command) (*Event, error)

	// Reset restores the scene to its initial state.
	Reset(ctx context.Context) error

	// Close releases the engine. It is safe to call more than once.
	Close() error
}

// Options are the simulation options passed to the engine at initialization.
type Options struct {

	// FrameRate is the number of physics frames per simulated second.
	FrameRate int `json:"frame_rate"`

	// FrameSkip is the number of physics frames advanced by each step.
	FrameSkip int `json:"frame_skip"`
}

// DefaultOptions returns the default options: 30 frames per second
// and 10 frames per step.
func DefaultOptions() Options {
	return Options{FrameRate: 30, FrameSkip: 10}
}

// OptionsFromConfig returns the options in the given config.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{FrameRate: cfg.Sim.FrameRate, FrameSkip: cfg.Sim.FrameSkip}
}

// New returns a new unconnected engine of the kind given in the config.
func New(cfg *config.Config) (Engine, error) {
	switch cfg.Engine.Kind {
	case config.EngineRemote, "":
		return NewRemote(cfg), nil
	case config.EngineFake:
		return NewFake(), nil
	}
	return nil, fmt.Errorf("engine.New: unknown engine kind %q", cfg.Engine.Kind)
}
