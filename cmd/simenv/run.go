// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"time"

	"cogentcore.org/simenv/assets"
	"cogentcore.org/simenv/base/errors"
	"cogentcore.org/simenv/config"
	"cogentcore.org/simenv/engine"
	"cogentcore.org/simenv/rlenv"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
)

// runOptions are the flags of the run command.
type runOptions struct {
	engine   string
	episodes int
	steps    int
	watch    bool
}

func (a *app) runCmd() *cobra.Command {
	ro := &runOptions{}
	cmd := &cobra.Command{
		Use:   "run <file>",
		Short: "Simulate a scene, acting randomly with its agent if it has one",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := *a.cfg
			if ro.engine != "" {
				cfg.Engine.Kind = config.EngineKinds(ro.engine)
			}
			if ro.steps > 0 {
				cfg.Env.MaxSteps = ro.steps
			}
			run := func() error {
				return runScene(cmd.Context(), &cfg, args[0], ro.episodes, cmd.OutOrStdout())
			}
			if ro.watch {
				return watch(cmd.Context(), args[0], run)
			}
			return run()
		},
	}
	f := cmd.Flags()
	f.StringVar(&ro.engine, "engine", "", "engine kind (remote or fake), overriding the config")
	f.IntVar(&ro.episodes, "episodes", 1, "number of episodes to run")
	f.IntVar(&ro.steps, "steps", 0, "maximum steps per episode, overriding the config")
	f.BoolVar(&ro.watch, "watch", false, "run again whenever the file changes")
	return cmd
}

// runScene loads the scene at the given path and simulates it with the
// engine in the config. With an agent, it runs episodes of random
// actions and prints the total reward of each; without one, it steps
// the scene and prints the final state.
func runScene(ctx context.Context, cfg *config.Config, path string, episodes int, out io.Writer) error {
	sc, err := assets.Load(path)
	if err != nil {
		return err
	}
	eng, err := engine.New(cfg)
	if err != nil {
		return err
	}
	sc.SetEngine(eng)
	sc.Options = engine.OptionsFromConfig(cfg)
	defer func() { errors.Log(sc.Close()) }()

	if len(sc.Agents()) == 0 {
		return stepScene(ctx, sc, max(cfg.Env.MaxSteps, 1), out)
	}
	opts := rlenv.OptionsFromConfig(cfg)
	if opts.MaxSteps <= 0 {
		opts.MaxSteps = 100
	}
	env, err := rlenv.New(sc, opts)
	if err != nil {
		return err
	}
	for ep, n := 0, episodes; ep < n; ep++ {
		if _, err := env.Reset(ctx); err != nil {
			return err
		}
		var total float32
		for {
			_, reward, done, _, err := env.Step(ctx, env.SampleAction())
			if err != nil {
				return err
			}
			total += reward
			if done {
				break
			}
		}
		slog.Info("episode done", "episode", ep, "steps", env.Steps)
		fmt.Fprintf(out, "episode %d: %d steps, reward %.4g\n", ep, env.Steps, total)
	}
	return nil
}

// stepScene steps a scene without agents and prints the final node states.
func stepScene(ctx context.Context, sc *assets.Scene, steps int, out io.Writer) error {
	if err := sc.Show(ctx); err != nil {
		return err
	}
	for i := 0; i < steps; i++ {
		if _, err := sc.Step(ctx, nil); err != nil {
			return err
		}
	}
	fmt.Fprintf(out, "after %d steps:\n", steps)
	printTree(out, sc)
	return nil
}

// watch calls fn, and then calls it again whenever the file at the given
// path is written or replaced, until the context is done. Errors from
// fn are logged.
func watch(ctx context.Context, path string, fn func() error) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		return err
	}
	errors.Log(fn())

	// changes are coalesced until the file is quiet for 100ms
	var pending <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != abs || !ev.Has(fsnotify.Write|fsnotify.Create) {
				continue
			}
			pending = time.After(100 * time.Millisecond)
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			errors.Log(err)
		case <-pending:
			pending = nil
			slog.Info("file changed, running again", "path", path)
			errors.Log(fn())
		}
	}
}
