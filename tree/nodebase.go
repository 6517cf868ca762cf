// Copyright (c) 2018, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package tree

import (
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/jinzhu/copier"
)

// NodeBase implements the [Node] interface and provides the core functionality
// for the simenv tree system. You must use NodeBase as an embedded struct
// in all higher-level tree types.
//
// All nodes must be properly initialized by using one of [New], [NewRoot],
// [NodeBase.AddChild] or [NodeBase.Clone]. This ensures that the
// [NodeBase.This] field is set correctly and the [Node.Init] method is called.
type NodeBase struct {

	// Name is the name of this node, which is unique relative to other children of
	// the same parent. It is used for finding and serializing nodes. If not otherwise set,
	// it defaults to the kebab-case name of the node type combined with the total number
	// of children that have ever been added to the node's parent.
	Name string `copier:"-"`

	// This is the value of this Node as its true underlying type. This allows methods
	// defined on base types to call methods defined on higher-level types.
	// It is set to nil when the node is deleted.
	This Node `copier:"-" json:"-"`

	// Parent is the parent of this node, which is set automatically when this node is
	// added as a child of a parent. Nodes can only have one parent at a time.
	Parent Node `copier:"-" json:"-"`

	// Children is the list of children of this node. All of them are set to have this node
	// as their parent. Use [NodeBase.AddChild] and [NodeBase.DeleteChild] to modify it
	// so that names stay unique.
	Children []Node `copier:"-" json:",omitempty"`

	// Properties is a property map for arbitrary key-value properties,
	// such as unrecognized interchange metadata carried through a round trip.
	// When possible, use typed fields on a new type embedding NodeBase instead of this.
	Properties map[string]any `copier:"-" json:",omitempty"`

	// numLifetimeChildren is the number of children that have ever been added to this
	// node, which is used for automatic unique naming.
	numLifetimeChildren uint64

	// numCopies is the number of times this node has been cloned,
	// which is used for deterministic copy names.
	numCopies uint64

	// lastCopyName is the name given to the most recent clone of this node.
	lastCopyName string

	// index is the last value of our index, which is used as a starting point for
	// finding us in our parent next time. It is not guaranteed to be accurate;
	// use the [NodeBase.IndexInParent] method.
	index int
}

// String implements the [fmt.Stringer] interface by returning the path of the node.
func (n *NodeBase) String() string {
	if n == nil || n.This == nil {
		return "nil"
	}
	return n.Path()
}

// AsTree returns the [NodeBase] for this Node.
func (n *NodeBase) AsTree() *NodeBase {
	return n
}

// Init is a placeholder implementation of
// [Node.Init] that does nothing.
func (n *NodeBase) Init() {}

// SetName sets the [NodeBase.Name] of this node. It does not check
// for uniqueness among siblings; use [NodeBase.Rename] for that.
func (n *NodeBase) SetName(name string) *NodeBase {
	n.Name = name
	return n
}

// Rename sets the name of this node, returning [ErrDuplicateName]
// if a sibling already has the new name.
func (n *NodeBase) Rename(name string) error {
	if n.Parent != nil {
		if sib := n.Parent.AsTree().ChildByName(name); sib != nil && sib != n.This {
			return fmt.Errorf("rename %q to %q in %s: %w", n.Name, name, n.Parent.AsTree().Path(), ErrDuplicateName)
		}
	}
	n.Name = name
	return nil
}

// IndexInParent returns our index within our parent node. It caches the
// last value and uses that as a starting point for the next search.
// It returns -1 if the node does not have a parent.
func (n *NodeBase) IndexInParent() int {
	if n.Parent == nil {
		return -1
	}
	idx := IndexOf(n.Parent.AsTree().Children, n.This, n.index)
	if idx >= 0 {
		n.index = idx
	}
	return idx
}

// ParentLevel finds a given potential parent node recursively up the
// hierarchy, returning the level above the current node that the parent was
// found, and -1 if not found.
func (n *NodeBase) ParentLevel(parent Node) int {
	level := 0
	for cur := n.This; cur != nil; cur = cur.AsTree().Parent {
		if cur == parent {
			return level
		}
		level++
	}
	return -1
}

// Depth returns the number of ancestors of this node.
func (n *NodeBase) Depth() int {
	d := 0
	for p := n.Parent; p != nil; p = p.AsTree().Parent {
		d++
	}
	return d
}

// HasChildren returns whether this node has any children.
func (n *NodeBase) HasChildren() bool {
	return len(n.Children) > 0
}

// NumChildren returns the number of children this node has.
func (n *NodeBase) NumChildren() int {
	return len(n.Children)
}

// Child returns the child of this node at the given index and returns nil if
// the index is out of range.
func (n *NodeBase) Child(i int) Node {
	if i >= len(n.Children) || i < 0 {
		return nil
	}
	return n.Children[i]
}

// ChildByName returns the first child that has the given name, and nil
// if no such element is found. startIndex arg allows for optimized
// bidirectional find if you have an idea where it might be, which
// can be a key speedup for large lists. If no value is specified for
// startIndex, it starts in the middle, which is a good default.
func (n *NodeBase) ChildByName(name string, startIndex ...int) Node {
	return n.Child(IndexByName(n.Children, name, startIndex...))
}

// Paths:

// EscapePathName returns a name that replaces any / with \\
func EscapePathName(name string) string {
	return strings.ReplaceAll(name, "/", `\\`)
}

// UnescapePathName returns a name that replaces any \\ with /
func UnescapePathName(name string) string {
	return strings.ReplaceAll(name, `\\`, "/")
}

// Path returns the path to this node from the tree root,
// using [NodeBase.Name]s separated by / delimeters. Any
// existing / characters in names are escaped to \\
func (n *NodeBase) Path() string {
	if n.Parent != nil {
		return n.Parent.AsTree().Path() + "/" + EscapePathName(n.Name)
	}
	return "/" + EscapePathName(n.Name)
}

// PathFrom returns the path to this node from the given parent node,
// using [NodeBase.Name]s separated by / delimeters. Any
// existing / characters in names are escaped to \\
//
// The paths that it returns exclude the
// name of the parent and the leading slash; for example, in the tree
// a/b/c/d/e, the result of d.PathFrom(b) would be c/d.
func (n *NodeBase) PathFrom(parent Node) string {
	if n.This == parent {
		return ""
	}
	parent = parent.AsTree().This
	if n.Parent == nil || n.Parent == parent {
		return EscapePathName(n.Name)
	}
	ppath := n.Parent.AsTree().PathFrom(parent)
	return ppath + "/" + EscapePathName(n.Name)
}

// FindPath returns the node at the given path from this node, or nil
// if no node is found at the given path. The given path must be consistent
// with the format produced by [NodeBase.PathFrom]. There is also support
// for index-based access (ie: [0] for the first child, [-1] for the last).
// A path element that does not name a child but contains dots is resolved
// as a dotted sequence of names, so "agent.camera" finds the same node
// as "agent/camera".
func (n *NodeBase) FindPath(path string) Node {
	curn := n.This
	pels := strings.Split(strings.Trim(strings.TrimSpace(path), "\""), "/")
	for _, pe := range pels {
		if len(pe) == 0 {
			continue
		}
		idx := findPathChild(curn, UnescapePathName(pe))
		if idx >= 0 {
			curn = curn.AsTree().Children[idx]
			continue
		}
		if !strings.Contains(pe, ".") {
			return nil
		}
		for _, de := range strings.Split(pe, ".") {
			if len(de) == 0 {
				return nil
			}
			idx := findPathChild(curn, UnescapePathName(de))
			if idx < 0 {
				return nil
			}
			curn = curn.AsTree().Children[idx]
		}
	}
	return curn
}

// Get returns the node at the given path from this node, as in
// [NodeBase.FindPath], returning an error wrapping [ErrNotFound]
// if there is no such node.
func (n *NodeBase) Get(path string) (Node, error) {
	if nd := n.FindPath(path); nd != nil {
		return nd, nil
	}
	return nil, fmt.Errorf("%q in %s: %w", path, n.Path(), ErrNotFound)
}

// findPathChild finds the child with the given string representation in [NodeBase.FindPath].
func findPathChild(n Node, child string) int {
	kids := n.AsTree().Children
	if child[0] == '[' && child[len(child)-1] == ']' {
		idx, err := strconv.Atoi(child[1 : len(child)-1])
		if err != nil {
			return -1
		}
		if idx < 0 { // from end
			idx = len(kids) + idx
		}
		if idx < 0 || idx >= len(kids) {
			return -1
		}
		return idx
	}
	return IndexByName(kids, child)
}

// Adding and Deleting Children:

// AddChild adds the given child at the end of the children list.
// If the child has no name, it gets a default unique name. If the child
// is already in a tree, it is moved from its current parent. It returns
// an error wrapping [ErrDuplicateName] if a sibling already has the
// child's name and [ErrCycle] if the child is this node or one of its
// ancestors; in both cases the tree is left unchanged.
func (n *NodeBase) AddChild(kid Node) error {
	InitNode(kid)
	kt := kid.AsTree()
	if n.ParentLevel(kid) >= 0 {
		return fmt.Errorf("add %q to %s: %w", kt.Name, n.Path(), ErrCycle)
	}
	if kt.Name != "" && n.ChildByName(kt.Name) != nil {
		return fmt.Errorf("add %q to %s: %w", kt.Name, n.Path(), ErrDuplicateName)
	}
	if kt.Parent != nil {
		kt.Parent.AsTree().DeleteChild(kid)
	}
	n.Children = append(n.Children, kid)
	setParent(kid, n.This)
	return nil
}

// Add adds each of the given nodes as children of this node in order,
// stopping at the first error. See [NodeBase.AddChild].
func (n *NodeBase) Add(kids ...Node) error {
	for _, kid := range kids {
		if err := n.AddChild(kid); err != nil {
			return err
		}
	}
	return nil
}

// DeleteChildAt deletes the child at the given index, returning false
// if the index is out of range. The child keeps its own subtree.
func (n *NodeBase) DeleteChildAt(index int) bool {
	child := n.Child(index)
	if child == nil {
		return false
	}
	n.Children = slices.Delete(n.Children, index, index+1)
	child.AsTree().Parent = nil
	return true
}

// DeleteChild deletes the given child node, returning false if
// it can not find it.
func (n *NodeBase) DeleteChild(child Node) bool {
	if child == nil {
		return false
	}
	idx := IndexOf(n.Children, child, child.AsTree().index)
	if idx < 0 {
		return false
	}
	return n.DeleteChildAt(idx)
}

// DeleteChildByName deletes the child node with the given name,
// returning false if it can not find it.
func (n *NodeBase) DeleteChildByName(name string) bool {
	idx := IndexByName(n.Children, name)
	if idx < 0 {
		return false
	}
	return n.DeleteChildAt(idx)
}

// Delete removes this node from its parent.
func (n *NodeBase) Delete() {
	if n.Parent != nil {
		n.Parent.AsTree().DeleteChild(n.This)
	}
}

// Property Storage:

// SetProperty sets given the given property to the given value.
func (n *NodeBase) SetProperty(key string, value any) {
	if n.Properties == nil {
		n.Properties = map[string]any{}
	}
	n.Properties[key] = value
}

// Property returns the property value for the given key.
// It returns nil if it doesn't exist.
func (n *NodeBase) Property(key string) any {
	return n.Properties[key]
}

// DeleteProperty deletes the property with the given key.
func (n *NodeBase) DeleteProperty(key string) {
	if n.Properties == nil {
		return
	}
	delete(n.Properties, key)
}

// Copying:

// CopyFieldsFrom copies the fields of the node from the given node.
// By default, it is [NodeBase.CopyFieldsFrom], which automatically does
// a deep copy of all of the fields of the node that do not a have a
// `copier:"-"` struct tag.
func (n *NodeBase) CopyFieldsFrom(from Node) {
	err := copier.CopyWithOption(n.This, from.AsTree().This, copier.Option{CaseSensitive: true, DeepCopy: true})
	if err != nil {
		slog.Error("tree.NodeBase.CopyFieldsFrom", "err", err)
	}
}

// Clone creates and returns a deep copy of the tree from this node down.
// The copy is a new root: it has no parent. Copies are built in pre-order
// into an arena indexed by each source node's position, so every [Ref]
// held by a copied node that points into the source subtree is remapped
// to the copy at the same position before Clone returns; references to
// nodes outside the subtree are kept as they are.
//
// The root of the copy is named by [NodeBase.LastCopyName] after the call,
// which is the source name plus "-copy" and, after the first copy, the
// number of earlier copies. All descendants keep their names.
func (n *NodeBase) Clone() Node {
	src := n.FlattenAll()
	index := make(map[Node]int, len(src))
	arena := make([]Node, len(src))
	for i, s := range src {
		index[s] = i
		st := s.AsTree()
		d := NewOfType(s)
		InitNode(d)
		dt := d.AsTree()
		dt.Name = st.Name
		if st.Properties != nil {
			dt.Properties = maps.Clone(st.Properties)
		}
		d.CopyFieldsFrom(s)
		dt.numLifetimeChildren, dt.numCopies, dt.lastCopyName = 0, 0, ""
		arena[i] = d
		if i > 0 {
			p := arena[index[st.Parent]]
			pt := p.AsTree()
			dt.index = len(pt.Children)
			pt.Children = append(pt.Children, d)
			dt.Parent = p
			pt.numLifetimeChildren++
		}
	}
	remap := func(r Ref) Ref {
		if i, ok := index[r.node]; ok {
			return Ref{node: arena[i]}
		}
		return r
	}
	for _, d := range arena {
		if rm, ok := d.(RefRemapper); ok {
			rm.RemapRefs(remap)
		}
	}
	n.lastCopyName = n.Name + "-copy"
	if n.numCopies > 0 {
		n.lastCopyName += "-" + strconv.FormatUint(n.numCopies, 10)
	}
	n.numCopies++
	root := arena[0]
	root.AsTree().Name = n.lastCopyName
	return root
}

// LastCopyName returns the name given to the root of the most recent
// [NodeBase.Clone] of this node, or "" if it was never cloned.
func (n *NodeBase) LastCopyName() string {
	return n.lastCopyName
}
