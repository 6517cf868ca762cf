// Copyright (c) 2018, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package tree

// WalkDown calls the given function on the node and all of its children
// in a depth-first, pre-order manner, sequentially in the current goroutine.
// It stops walking the current branch of the tree if the function returns
// [Break] and keeps walking if it returns [Continue]. It is non-recursive.
func (n *NodeBase) WalkDown(fun func(n Node) bool) {
	if n.This == nil {
		return
	}
	stack := []Node{n.This}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !fun(cur) {
			continue
		}
		kids := cur.AsTree().Children
		for i := len(kids) - 1; i >= 0; i-- {
			stack = append(stack, kids[i])
		}
	}
}

// WalkUp calls the given function on the node and all of its parents,
// sequentially in the current goroutine (generally necessary for going up,
// which is typically quite fast anyway). It stops walking if the function
// returns [Break] and keeps walking if it returns [Continue]. It returns
// whether walking was finished (false if it was aborted with [Break]).
func (n *NodeBase) WalkUp(fun func(n Node) bool) bool {
	for cur := n.This; cur != nil; cur = cur.AsTree().Parent {
		if !fun(cur) {
			return false
		}
	}
	return true
}

// FlattenAll returns this node and all of its descendants in pre-order.
func (n *NodeBase) FlattenAll() []Node {
	var all []Node
	n.WalkDown(func(k Node) bool {
		all = append(all, k)
		return Continue
	})
	return all
}

// Descendants returns all of the descendants of this node in pre-order,
// not including the node itself.
func (n *NodeBase) Descendants() []Node {
	all := n.FlattenAll()
	if len(all) == 0 {
		return nil
	}
	return all[1:]
}

// Len returns the number of descendants of this node, not including itself.
func (n *NodeBase) Len() int {
	c := 0
	n.WalkDown(func(k Node) bool {
		c++
		return Continue
	})
	return max(c-1, 0)
}

// MaxDepth returns the depth of the deepest descendant of this node,
// relative to this node (0 for a leaf).
func (n *NodeBase) MaxDepth() int {
	md := 0
	var walk func(k Node, d int)
	walk = func(k Node, d int) {
		md = max(md, d)
		for _, c := range k.AsTree().Children {
			walk(c, d+1)
		}
	}
	walk(n.This, 0)
	return md
}
