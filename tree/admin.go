// Copyright (c) 2018, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package tree

import (
	"reflect"
	"strconv"

	"github.com/iancoleman/strcase"
)

// admin.go has infrastructure code outside of the Node interface.

// InitNode initializes the node, setting [NodeBase.This] and calling
// [Node.Init] the first time it is called on a node.
func InitNode(n Node) {
	nb := n.AsTree()
	if nb.This != n {
		nb.This = n
		n.Init()
	}
}

// setParent sets the parent of the given node to the given parent node,
// giving the child a default unique name if it has none.
// It does not add the node to the parent's list of children.
func setParent(child Node, parent Node) {
	n := child.AsTree()
	n.Parent = parent
	if parent == nil {
		return
	}
	pn := parent.AsTree()
	c := pn.numLifetimeChildren
	pn.numLifetimeChildren++
	if n.Name == "" {
		n.Name = TypeName(child) + "-" + strconv.FormatUint(c, 10)
		for pn.ChildByName(n.Name) != child {
			c = pn.numLifetimeChildren
			pn.numLifetimeChildren++
			n.Name = TypeName(child) + "-" + strconv.FormatUint(c, 10)
		}
	}
	n.index = len(pn.Children) - 1
}

// New returns a new node of the given type added as a child of the given
// parent, with the given name. If the name is unspecified, it defaults to
// the kebab-case name of the type, plus the number of lifetime children
// of its parent. If the parent is nil, it is the same as [NewRoot].
// It returns an error if the name is already used by a sibling.
func New[T Node](parent Node, name ...string) (T, error) {
	n := newOf[T]()
	if len(name) > 0 {
		n.AsTree().Name = name[0]
	}
	InitNode(n)
	if parent == nil {
		if n.AsTree().Name == "" {
			n.AsTree().Name = TypeName(n)
		}
		return n, nil
	}
	err := parent.AsTree().AddChild(n)
	return n, err
}

// NewRoot returns a new root node of the given type with the given name.
// If the name is unspecified, it defaults to the kebab-case name of the type.
func NewRoot[T Node](name ...string) T {
	n := newOf[T]()
	nm := TypeName(n)
	if len(name) > 0 {
		nm = name[0]
	}
	n.AsTree().Name = nm
	InitNode(n)
	return n
}

func newOf[T Node]() T {
	var zero T
	return NewOfType(zero).(T)
}

// NewOfType returns a new, uninitialized instance of the concrete type of
// the given node, which must be a pointer type. The node itself may be nil.
func NewOfType(n Node) Node {
	typ := reflect.TypeOf(n)
	return reflect.New(typ.Elem()).Interface().(Node)
}

// TypeName returns the kebab-case name of the concrete type of the
// given node, such as "light-sun" for *LightSun.
func TypeName(n Node) string {
	typ := reflect.TypeOf(n)
	if typ.Kind() == reflect.Pointer {
		typ = typ.Elem()
	}
	return strcase.ToKebab(typ.Name())
}

// IsRoot tests whether the given node is the root node in its tree.
func IsRoot(n Node) bool {
	return n.AsTree().Parent == nil
}

// Root returns the root node of the given node's tree.
func Root(n Node) Node {
	for !IsRoot(n) {
		n = n.AsTree().Parent
	}
	return n.AsTree().This
}

// ParentByType returns the closest ancestor of the given node that
// has the concrete type T, or the zero value if there is none.
func ParentByType[T Node](n Node) T {
	for p := n.AsTree().Parent; p != nil; p = p.AsTree().Parent {
		if t, ok := p.AsTree().This.(T); ok {
			return t
		}
	}
	var zero T
	return zero
}
