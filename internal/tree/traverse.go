/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package tree implements the document mutation engine: pure functions from an
// input forest to a new forest. Inputs are never mutated. Subtrees that are not
// on the path to a change are shared between the input and the result, which is
// what lets history snapshots and the live document coexist safely.
package tree

import "pagebuilder/internal/domain"

// Action tells Rebuild what to do with a visited node.
type Action int

const (
	// Descend keeps the node and visits its children.
	Descend Action = iota
	// Keep keeps the node and its whole subtree untouched.
	Keep
	// Replace substitutes the node with Decision.Nodes (zero or more nodes).
	Replace
)

// Decision is returned by a Visitor for every node it sees.
// Stop ends the traversal after the decision is applied; the remaining nodes
// are carried over unchanged.
type Decision struct {
	Action Action
	Nodes  []*domain.Node
	Stop   bool
}

// Visitor decides the fate of one node.
type Visitor func(n *domain.Node) Decision

// Rebuild walks the forest depth-first and applies the visitor's decisions.
// Every ancestor of a replaced node is shallow-copied with a fresh children
// slice. If nothing was replaced, the input forest is returned as is and
// changed is false.
func Rebuild(f domain.Forest, visit Visitor) (out domain.Forest, changed bool) {
	res, changed, _ := rebuild(f, visit)
	if !changed {
		return f, false
	}
	return domain.Forest(res), true
}

func rebuild(nodes []*domain.Node, visit Visitor) ([]*domain.Node, bool, bool) {
	var out []*domain.Node
	changed := false
	for i, n := range nodes {
		d := visit(n)
		switch d.Action {
		case Replace:
			if !changed {
				out = make([]*domain.Node, 0, len(nodes)+len(d.Nodes))
				out = append(out, nodes[:i]...)
				changed = true
			}
			out = append(out, d.Nodes...)
		case Descend:
			kids, kidsChanged, stop := rebuild(n.Children, visit)
			if kidsChanged {
				cp := n.ShallowCopy()
				cp.Children = kids
				if !changed {
					out = make([]*domain.Node, 0, len(nodes))
					out = append(out, nodes[:i]...)
					changed = true
				}
				out = append(out, cp)
			} else if changed {
				out = append(out, n)
			}
			if stop || d.Stop {
				if changed {
					out = append(out, nodes[i+1:]...)
				}
				return out, changed, true
			}
			continue
		default:
			if changed {
				out = append(out, n)
			}
		}
		if d.Stop {
			if changed {
				out = append(out, nodes[i+1:]...)
			}
			return out, changed, true
		}
	}
	if !changed {
		return nodes, false, false
	}
	return out, true, false
}

// WalkFunc is called for every node with its parent (nil at top level) and
// its index among the parent's children. Returning false stops the walk.
type WalkFunc func(n, parent *domain.Node, index int) bool

// Walk visits the forest depth-first, parents before children.
func Walk(f domain.Forest, fn WalkFunc) {
	walk(f, nil, fn)
}

func walk(nodes []*domain.Node, parent *domain.Node, fn WalkFunc) bool {
	for i, n := range nodes {
		if !fn(n, parent, i) {
			return false
		}
		if !walk(n.Children, n, fn) {
			return false
		}
	}
	return true
}
