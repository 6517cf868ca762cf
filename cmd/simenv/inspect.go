// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"io"
	"strings"

	"cogentcore.org/simenv/assets"
	"cogentcore.org/simenv/tree"
	"github.com/spf13/cobra"
)

func (a *app) inspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <file>",
		Short: "Print the asset tree of a glTF document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := assets.DetectFileFormat(args[0])
			if err != nil {
				return err
			}
			sc, err := assets.Load(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s: %s, %d assets, depth %d\n", args[0], format, sc.Len(), sc.MaxDepth())
			printTree(out, sc)
			return nil
		},
	}
}

// printTree writes one line per descendant of the scene, indented by depth.
func printTree(w io.Writer, sc *assets.Scene) {
	for _, n := range sc.Descendants() {
		a := n.(assets.Asset).AsAsset()
		fmt.Fprintf(w, "%s%s %s at %v", strings.Repeat("  ", a.ParentLevel(sc)-1), tree.TypeName(n), a.Name, a.Transform.Translation)
		switch n := n.(type) {
		case *assets.Camera:
			fmt.Fprintf(w, " %dx%d", n.Width, n.Height)
		case assets.Light:
			fmt.Fprintf(w, " intensity %g", n.AsLightBase().Intensity)
		}
		if o, ok := n.(interface{ AsObject() *assets.Object }); ok {
			if ob := o.AsObject(); ob.Mesh != nil {
				fmt.Fprintf(w, " mesh %d points %d faces", ob.Mesh.NumPoints(), ob.Mesh.NumFaces())
			}
			if ob := o.AsObject(); ob.Material != nil {
				fmt.Fprintf(w, " material %s", ob.Material.Name)
			}
		}
		if a.Physics != nil {
			fmt.Fprintf(w, " physics %s", a.Physics.PhysicsKind())
		}
		if a.RL != nil {
			fmt.Fprintf(w, " rl actions %v", a.RL.ActionSpace())
		}
		fmt.Fprintln(w)
	}
}
