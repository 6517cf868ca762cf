// Copyright (c) 2018, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package tree

// Ref is a reference from one node to another node, typically in the
// same tree. Node types that hold Refs implement [RefRemapper] so that
// [NodeBase.Clone] can point the references held by copies at the
// copied targets. The zero Ref references nothing.
type Ref struct {
	node Node
}

// NewRef returns a [Ref] to the given node.
func NewRef(n Node) Ref {
	if n == nil {
		return Ref{}
	}
	return Ref{node: n.AsTree().This}
}

// Node returns the referenced node, or nil.
func (r Ref) Node() Node {
	return r.node
}

// IsNil returns whether the reference is empty.
func (r Ref) IsNil() bool {
	return r.node == nil
}

// PathFrom returns the path of the referenced node relative to the given
// root, as used when references are serialized.
func (r Ref) PathFrom(root Node) string {
	if r.node == nil {
		return ""
	}
	return r.node.AsTree().PathFrom(root)
}

func (r Ref) String() string {
	if r.node == nil {
		return "<nil>"
	}
	return r.node.AsTree().Path()
}

// Resolve returns a [Ref] to the node at the given path from the given root,
// as produced by [Ref.PathFrom]. An empty path resolves to the empty Ref.
func Resolve(root Node, path string) (Ref, error) {
	if path == "" {
		return Ref{}, nil
	}
	n, err := root.AsTree().Get(path)
	if err != nil {
		return Ref{}, err
	}
	return Ref{node: n}, nil
}
