// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package assets provides the scene graph: a tree of named assets
// (primitives, cameras, lights and agents) with local transforms,
// physics and reinforcement learning components, which can be saved
// to and loaded from glTF documents and simulated by an engine.
//
// Trees are composed with [tree.NodeBase.Add], which fails on a
// duplicate sibling name or a cycle, and searched with
// [tree.NodeBase.Get], which accepts slash or dot separated paths.
package assets

import (
	"fmt"

	"cogentcore.org/simenv/math32"
	"cogentcore.org/simenv/rl"
	"cogentcore.org/simenv/tree"
)

// Asset is the interface that all scene nodes satisfy.
// All assets embed [AssetBase].
type Asset interface {
	tree.Node

	// AsAsset returns the [AssetBase] of this Asset.
	AsAsset() *AssetBase
}

// AssetBase is the base type of all assets. It is also used directly
// as a plain group node.
type AssetBase struct {
	tree.NodeBase

	// Transform is the transform relative to the parent.
	Transform Transform

	// Physics is the physics component, if any.
	Physics Physics `copier:"-"`

	// Collider is the collider, if any.
	Collider *Collider

	// RL is the reinforcement learning component, if any.
	RL *rl.Component `copier:"-"`
}

// NewAsset returns a new plain group asset with the given name.
func NewAsset(name ...string) *AssetBase {
	return tree.NewRoot[*AssetBase](name...)
}

func (a *AssetBase) AsAsset() *AssetBase {
	return a
}

func (a *AssetBase) Init() {
	a.Transform.Defaults()
}

// CopyFieldsFrom copies the fields of the given asset, cloning the
// physics and reinforcement learning components.
func (a *AssetBase) CopyFieldsFrom(from tree.Node) {
	a.NodeBase.CopyFieldsFrom(from)
	fa := from.(Asset).AsAsset()
	a.Physics = clonePhysics(fa.Physics)
	a.RL = fa.RL.Clone()
}

// RemapRefs remaps the nodes referred to by the reinforcement learning component.
func (a *AssetBase) RemapRefs(remap func(r tree.Ref) tree.Ref) {
	a.RL.RemapRefs(remap)
}

// SetPosition sets the translation of the asset.
func (a *AssetBase) SetPosition(x, y, z float32) {
	a.Transform.Translation = math32.Vec3(x, y, z)
}

// SetPhysics sets the physics component, replacing any existing one.
func (a *AssetBase) SetPhysics(p Physics) {
	a.Physics = p
}

// SetRL attaches the given reinforcement learning component.
func (a *AssetBase) SetRL(c *rl.Component) {
	a.RL = c
}

// WorldMatrix returns the transform of the asset relative to the tree
// root. The transform of the root itself is not included.
func (a *AssetBase) WorldMatrix() *math32.Matrix4 {
	if a.Parent == nil {
		return math32.Identity4()
	}
	pa, ok := a.Parent.(Asset)
	if !ok {
		return a.Transform.Matrix()
	}
	return pa.AsAsset().WorldMatrix().Mul(a.Transform.Matrix())
}

// Assets returns the child assets.
func (a *AssetBase) Assets() []Asset {
	as := make([]Asset, 0, len(a.Children))
	for _, k := range a.Children {
		if ka, ok := k.(Asset); ok {
			as = append(as, ka)
		}
	}
	return as
}

func (a *AssetBase) String() string {
	return fmt.Sprintf("%s(%s, %v)", tree.TypeName(a.This), a.Name, a.Transform.Translation)
}

// Get returns the asset at the given path from the given asset, as
// its concrete type, returning an error if there is none or it has
// a different type.
func Get[T Asset](a Asset, path string) (T, error) {
	var zero T
	n, err := a.AsTree().Get(path)
	if err != nil {
		return zero, err
	}
	t, ok := n.(T)
	if !ok {
		return zero, fmt.Errorf("assets.Get: %q is a %T, not a %T", path, n, zero)
	}
	return t, nil
}
