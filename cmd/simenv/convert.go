// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"log/slog"

	"cogentcore.org/simenv/assets"
	"cogentcore.org/simenv/math32"
	"github.com/spf13/cobra"
)

func (a *app) convertCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "convert <in> <out>",
		Short: "Convert between .gltf and .glb documents",
		Long:  "Convert loads a glTF document and saves it again in the format given by the extension of the output file.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			sc, err := assets.Load(args[0])
			if err != nil {
				return err
			}
			if err := sc.Save(args[1]); err != nil {
				return err
			}
			slog.Info("converted", "from", args[0], "to", args[1], "assets", sc.Len())
			return nil
		},
	}
}

func (a *app) exampleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "example <out>",
		Short: "Save an example scene with a floor, a target and a simple agent",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sc, err := exampleScene(a.cfg.Camera.Width, a.cfg.Camera.Height)
			if err != nil {
				return err
			}
			if err := sc.Save(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "saved %s with %d assets\n", args[0], sc.Len())
			return nil
		},
	}
}

// exampleScene returns a scene with a lit floor, a target box and a
// simple agent facing it, whose camera renders frames of the given size.
func exampleScene(width, height int) (*assets.Scene, error) {
	sc := assets.NewScene()
	floor := assets.NewPlane("floor", 20, 20, assets.Gray75)
	target := assets.NewBox("target", math32.Vec3(1, 1, 1), assets.Green)
	target.SetPosition(0, 0.5, 0)
	target.AddCollider()
	ag, err := assets.NewSimpleRlAgent("agent", target)
	if err != nil {
		return nil, err
	}
	ag.SetPosition(0, 0, 5)
	cam, err := assets.Get[*assets.Camera](ag, "camera")
	if err != nil {
		return nil, err
	}
	cam.Width, cam.Height = width, height
	if err := sc.Add(assets.NewLightSun("sun", 1), floor, target, ag); err != nil {
		return nil, err
	}
	return sc, nil
}
