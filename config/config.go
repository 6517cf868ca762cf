// Copyright (c) 2023, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package config contains the configuration structs for simenv,
// covering the engine connection, simulation timing, cameras and logging.
package config

import (
	"log/slog"
	"time"

	"cogentcore.org/simenv/logx"
)

// EngineKinds are the supported engine bridge implementations.
type EngineKinds string

const (
	// EngineRemote talks to an engine process over a websocket.
	EngineRemote EngineKinds = "remote"

	// EngineFake runs the in-process test engine.
	EngineFake EngineKinds = "fake"
)

// Config is the main config struct that contains all of the
// configuration options for simenv.
type Config struct {

	// LogLevel is the minimum level of log messages shown (debug, info, warn, error).
	LogLevel string `toml:"log_level" yaml:"log_level" default:"warn"`

	// Engine contains the engine connection options.
	Engine Engine `toml:"engine" yaml:"engine"`

	// Sim contains the simulation timing options passed to the engine.
	Sim Sim `toml:"sim" yaml:"sim"`

	// Camera contains the default camera options.
	Camera Camera `toml:"camera" yaml:"camera"`

	// Env contains the reinforcement learning environment options.
	Env Env `toml:"env" yaml:"env"`
}

// Engine contains the engine connection options.
type Engine struct {

	// Kind is the engine implementation to use.
	Kind EngineKinds `toml:"kind" yaml:"kind" default:"remote"`

	// Exe is the engine command line to launch, such as
	// "godot --headless". If it is empty, simenv
	// attaches to an engine already listening on Host:Port.
	Exe string `toml:"exe" yaml:"exe"`

	// Host is the host the engine listens on.
	Host string `toml:"host" yaml:"host" default:"localhost"`

	// Port is the port the engine listens on.
	Port int `toml:"port" yaml:"port" default:"55000"`

	// Timeout is the number of seconds to wait for the engine to
	// accept a connection or answer a request.
	Timeout int `toml:"timeout" yaml:"timeout" default:"30"`
}

// Sim contains the simulation timing options.
type Sim struct {

	// FrameRate is the number of physics frames per simulated second.
	FrameRate int `toml:"frame_rate" yaml:"frame_rate" default:"30"`

	// FrameSkip is the number of physics frames advanced by each step.
	FrameSkip int `toml:"frame_skip" yaml:"frame_skip" default:"10"`
}

// Camera contains the default camera options.
type Camera struct {

	// Width is the default camera width in pixels.
	Width int `toml:"width" yaml:"width" default:"256"`

	// Height is the default camera height in pixels.
	Height int `toml:"height" yaml:"height" default:"256"`
}

// Env contains the reinforcement learning environment options.
type Env struct {

	// Agent is the path of the agent controlled by the environment.
	// If it is empty, the scene must have exactly one agent.
	Agent string `toml:"agent" yaml:"agent"`

	// MaxSteps is the number of steps after which an episode is
	// truncated; 0 means no limit.
	MaxSteps int `toml:"max_steps" yaml:"max_steps" default:"0"`

	// Seed seeds the random sampling of actions.
	Seed int64 `toml:"seed" yaml:"seed" default:"1"`
}

// New returns a new [Config] with default values.
func New() *Config {
	c := &Config{}
	c.Defaults()
	return c
}

// Defaults sets all fields to the values in their default struct tags.
func (c *Config) Defaults() {
	SetFromDefaults(c)
}

// ConnectTimeout returns [Engine.Timeout] as a duration.
func (e *Engine) ConnectTimeout() time.Duration {
	return time.Duration(e.Timeout) * time.Second
}

// Level returns the parsed [Config.LogLevel].
func (c *Config) Level() slog.Level {
	l, _ := logx.LevelFromString(c.LogLevel)
	return l
}
