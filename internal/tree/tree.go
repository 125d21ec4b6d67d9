/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package tree

import (
	"errors"
	"fmt"

	"pagebuilder/internal/domain"
)

var (
	// ErrNotFound reports that a referenced node is not in the forest.
	ErrNotFound = errors.New("node not found")
	// ErrCycle reports a move that would make a node its own descendant.
	ErrCycle = errors.New("move would create a cycle")
	// ErrDuplicateID reports two nodes sharing an id.
	ErrDuplicateID = errors.New("duplicate node id")
	// ErrSharedNode reports a node reachable under two parents.
	ErrSharedNode = errors.New("node owned by more than one parent")
	// ErrVisiblePages reports more than one visible top-level page.
	ErrVisiblePages = errors.New("more than one visible page")
)

// Find returns the first node with id in depth-first order.
func Find(f domain.Forest, id string) (*domain.Node, bool) {
	var found *domain.Node
	Walk(f, func(n, _ *domain.Node, _ int) bool {
		if n.ID == id {
			found = n
			return false
		}
		return true
	})
	return found, found != nil
}

// FindParent returns the parent of id (nil for a top-level node) and its index.
func FindParent(f domain.Forest, id string) (parent *domain.Node, index int, ok bool) {
	Walk(f, func(n, p *domain.Node, i int) bool {
		if n.ID == id {
			parent, index, ok = p, i, true
			return false
		}
		return true
	})
	return parent, index, ok
}

// UpdateByID replaces the node with id by updater(copy). The updater receives a
// shallow copy it may modify freely, except for Children which must be
// replaced rather than modified in place. Unknown ids leave the forest unchanged.
func UpdateByID(f domain.Forest, id string, updater func(*domain.Node) *domain.Node) domain.Forest {
	out, _ := Rebuild(f, func(n *domain.Node) Decision {
		if n.ID != id {
			return Decision{Action: Descend}
		}
		return Decision{Action: Replace, Nodes: []*domain.Node{updater(n.ShallowCopy())}, Stop: true}
	})
	return out
}

// InsertInto appends node to the children of parentID. Unknown parents leave
// the forest unchanged.
func InsertInto(f domain.Forest, parentID string, node *domain.Node) domain.Forest {
	return UpdateByID(f, parentID, func(p *domain.Node) *domain.Node {
		kids := make([]*domain.Node, 0, len(p.Children)+1)
		kids = append(kids, p.Children...)
		p.Children = append(kids, node)
		return p
	})
}

// InsertAfter places node immediately after siblingID, at whatever depth the
// sibling lives. Unknown siblings leave the forest unchanged.
func InsertAfter(f domain.Forest, siblingID string, node *domain.Node) domain.Forest {
	out, _ := Rebuild(f, func(n *domain.Node) Decision {
		if n.ID != siblingID {
			return Decision{Action: Descend}
		}
		return Decision{Action: Replace, Nodes: []*domain.Node{n, node}, Stop: true}
	})
	return out
}

// DeleteByID removes the node with id and its entire subtree. Unknown ids
// leave the forest unchanged.
func DeleteByID(f domain.Forest, id string) domain.Forest {
	out, _ := Rebuild(f, func(n *domain.Node) Decision {
		if n.ID != id {
			return Decision{Action: Descend}
		}
		return Decision{Action: Replace, Stop: true}
	})
	return out
}

// CloneWithNewIDs deep-copies node and assigns a fresh id from gen to the copy
// and to every descendant.
func CloneWithNewIDs(node *domain.Node, gen domain.IDGenerator) *domain.Node {
	if node == nil {
		return nil
	}
	if gen == nil {
		gen = domain.NewID
	}
	cp := node.Clone()
	reassign(cp, gen)
	return cp
}

func reassign(n *domain.Node, gen domain.IDGenerator) {
	n.ID = gen()
	for _, c := range n.Children {
		reassign(c, gen)
	}
}

// ContainsInSubtree reports whether id is node itself or one of its descendants.
func ContainsInSubtree(node *domain.Node, id string) bool {
	if node == nil {
		return false
	}
	if node.ID == id {
		return true
	}
	for _, c := range node.Children {
		if ContainsInSubtree(c, id) {
			return true
		}
	}
	return false
}

// SubtreeIDs lists node's id followed by all descendant ids in depth-first order.
func SubtreeIDs(node *domain.Node) []string {
	if node == nil {
		return nil
	}
	var ids []string
	Walk(domain.Forest{node}, func(n, _ *domain.Node, _ int) bool {
		ids = append(ids, n.ID)
		return true
	})
	return ids
}

// IDs lists every id of the forest in depth-first order.
func IDs(f domain.Forest) []string {
	var ids []string
	Walk(f, func(n, _ *domain.Node, _ int) bool {
		ids = append(ids, n.ID)
		return true
	})
	return ids
}

// Count returns the number of nodes in the forest.
func Count(f domain.Forest) int {
	c := 0
	Walk(f, func(*domain.Node, *domain.Node, int) bool {
		c++
		return true
	})
	return c
}

// Validate checks the structural invariants: unique ids, exclusive ownership
// and at most one visible top-level page.
func Validate(f domain.Forest) error {
	ids := make(map[string]struct{})
	seen := make(map[*domain.Node]struct{})
	var err error
	Walk(f, func(n, _ *domain.Node, _ int) bool {
		if _, dup := seen[n]; dup {
			err = fmt.Errorf("%w: %s", ErrSharedNode, n.ID)
			return false
		}
		seen[n] = struct{}{}
		if _, dup := ids[n.ID]; dup {
			err = fmt.Errorf("%w: %s", ErrDuplicateID, n.ID)
			return false
		}
		ids[n.ID] = struct{}{}
		return true
	})
	if err != nil {
		return err
	}
	if visible := VisiblePages(f); len(visible) > 1 {
		return fmt.Errorf("%w: %v", ErrVisiblePages, visible)
	}
	return nil
}
