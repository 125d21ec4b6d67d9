/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package tree

import (
	"fmt"
	"strings"

	"pagebuilder/internal/domain"
)

// Position says where a dragged node lands relative to its drop target.
type Position string

const (
	Before Position = "before"
	After  Position = "after"
	Inside Position = "inside"
)

// ParsePosition accepts before, after or inside (case-insensitive).
func ParsePosition(s string) (Position, error) {
	switch p := Position(strings.ToLower(strings.TrimSpace(s))); p {
	case Before, After, Inside:
		return p, nil
	}
	return "", fmt.Errorf("unknown drop position %q", s)
}

// Reorder moves dragID next to (Before, After) or into (Inside, as first child)
// targetID. The move is rejected with ErrCycle when the target is the dragged
// node or lies in its subtree, and with ErrNotFound when either node is
// missing. On error the input forest is returned unchanged.
func Reorder(f domain.Forest, dragID, targetID string, pos Position) (domain.Forest, error) {
	drag, ok := Find(f, dragID)
	if !ok {
		return f, fmt.Errorf("drag %s: %w", dragID, ErrNotFound)
	}
	// checked once on the pre-removal tree
	if ContainsInSubtree(drag, targetID) {
		return f, fmt.Errorf("%s into %s: %w", dragID, targetID, ErrCycle)
	}
	if _, ok := Find(f, targetID); !ok {
		return f, fmt.Errorf("target %s: %w", targetID, ErrNotFound)
	}
	switch pos {
	case Before, After, Inside:
	default:
		return f, fmt.Errorf("unknown drop position %q", pos)
	}

	removed := DeleteByID(f, dragID)
	if pos == Inside {
		return UpdateByID(removed, targetID, func(t *domain.Node) *domain.Node {
			kids := make([]*domain.Node, 0, len(t.Children)+1)
			kids = append(kids, drag)
			t.Children = append(kids, t.Children...)
			t.IsExpanded = true
			return t
		}), nil
	}
	out, _ := Rebuild(removed, func(n *domain.Node) Decision {
		if n.ID != targetID {
			return Decision{Action: Descend}
		}
		nodes := []*domain.Node{drag, n}
		if pos == After {
			nodes = []*domain.Node{n, drag}
		}
		return Decision{Action: Replace, Nodes: nodes, Stop: true}
	})
	return out, nil
}
