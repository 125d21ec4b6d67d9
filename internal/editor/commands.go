/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package editor

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"pagebuilder/internal/domain"
	applog "pagebuilder/internal/log"
	"pagebuilder/internal/tree"
)

// AddElement creates a node of kind from its template plus ov and selects it.
// Pages always go to the top level and become the visible page. Other kinds go
// into ov.ParentID, else into the primary selection when it is a container,
// else into the active page, else to the top level.
func (e *Editor) AddElement(kind domain.Kind, ov Overrides) (string, error) {
	if !kind.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	if err := ov.Props.Validate(); err != nil {
		return "", err
	}
	tpl := templates[kind]
	n := &domain.Node{
		ID:         e.newID(),
		Kind:       kind,
		Name:       strings.TrimSpace(ov.Name),
		Props:      tpl.props.Merge(ov.Props),
		Style:      ov.Style.Apply(tpl.style),
		IsExpanded: kind.IsContainer(),
	}
	if n.Name == "" {
		n.Name = fmt.Sprintf("%s %d", kindTitle(kind), e.countKind(kind)+1)
	}

	var next domain.Forest
	parent := ""
	if kind == domain.KindPage {
		next = append(append(domain.Forest(nil), e.elements...), n)
		next, _ = tree.ShowPage(next, n.ID)
	} else {
		parent = e.insertionParent(ov.ParentID)
		if parent == "" {
			next = append(append(domain.Forest(nil), e.elements...), n)
		} else {
			next = tree.InsertInto(e.elements, parent, n)
			next = tree.UpdateByID(next, parent, func(p *domain.Node) *domain.Node {
				p.IsExpanded = true
				return p
			})
		}
	}
	e.commit("Add "+kindTitle(kind), next)
	e.sel.Select(n.ID, false)
	e.changed("Select")
	e.log.Debug("element added", applog.Node(n.ID), slog.String("kind", string(kind)), slog.String("parent", parent))
	return n.ID, nil
}

func (e *Editor) insertionParent(explicit string) string {
	if explicit != "" {
		if e.exists(explicit) {
			return explicit
		}
		e.log.Debug("explicit parent missing, falling back", slog.String("parent", explicit))
	}
	if p := e.sel.Primary(); p != "" {
		if n, ok := tree.Find(e.elements, p); ok && n.Kind.IsContainer() {
			return p
		}
	}
	if id, ok := tree.ActivePage(e.elements); ok {
		return id
	}
	return ""
}

func (e *Editor) countKind(kind domain.Kind) int {
	c := 0
	tree.Walk(e.elements, func(n, _ *domain.Node, _ int) bool {
		if n.Kind == kind {
			c++
		}
		return true
	})
	return c
}

// DeleteElement removes id and its subtree. Deleting the visible page brings
// the root page back; the selection is cleared when it touched the subtree.
func (e *Editor) DeleteElement(id string) error {
	if id == domain.RootPageID {
		e.log.Warn("refusing to delete the root page")
		return ErrRootDelete
	}
	n, ok := tree.Find(e.elements, id)
	if !ok {
		return nil
	}
	e.deleteNodes("Delete "+n.Name, []string{id})
	return nil
}

// DeleteSelection removes every selected node in one history step. The root
// page is skipped.
func (e *Editor) DeleteSelection() bool {
	var ids []string
	for _, id := range e.sel.IDs() {
		if id != domain.RootPageID && e.exists(id) {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return false
	}
	label := "Delete Elements"
	if len(ids) == 1 {
		n, _ := tree.Find(e.elements, ids[0])
		label = "Delete " + n.Name
	}
	return e.deleteNodes(label, ids)
}

func (e *Editor) deleteNodes(label string, ids []string) bool {
	active := e.ActivePageID()
	next := e.elements
	var removed []string
	for _, id := range ids {
		n, ok := tree.Find(next, id)
		if !ok {
			continue
		}
		removed = append(removed, tree.SubtreeIDs(n)...)
		next = tree.DeleteByID(next, id)
	}
	if _, ok := tree.Find(next, active); !ok && active != "" {
		next, _ = tree.ShowPage(next, domain.RootPageID)
	}
	if !e.commit(label, next) {
		return false
	}
	if e.sel.ClearIfAny(removed) {
		e.changed("Clear Selection")
	}
	return true
}

// updateNode applies fn to a copy of node id and commits the result under
// action when it differs. fn must not mutate maps it did not allocate.
func (e *Editor) updateNode(action, id string, fn func(n *domain.Node)) bool {
	cur, ok := tree.Find(e.elements, id)
	if !ok {
		e.log.Debug("update of missing node ignored", applog.Node(id), applog.Action(action))
		return false
	}
	var updated *domain.Node
	next := tree.UpdateByID(e.elements, id, func(n *domain.Node) *domain.Node {
		fn(n)
		updated = n
		return n
	})
	if nodeEqual(cur, updated) {
		return false
	}
	if updated.Kind == domain.KindPage && !updated.Style.Hidden() {
		next, _ = tree.ShowPage(next, id)
	}
	return e.commit(action, next)
}

func nodeEqual(a, b *domain.Node) bool {
	return fieldsEqual(a, b) && sameChildren(a.Children, b.Children)
}

func fieldsEqual(a, b *domain.Node) bool {
	return a.ID == b.ID && a.Kind == b.Kind && a.Name == b.Name &&
		a.IsExpanded == b.IsExpanded && a.IsLocked == b.IsLocked &&
		a.Props.Equal(b.Props) && a.Style.Equal(b.Style)
}

// forestEqual compares two forests node by node, treating nil and empty
// props or extras as the same.
func forestEqual(a, b []*domain.Node) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] == b[i] {
			continue
		}
		if !fieldsEqual(a[i], b[i]) || !forestEqual(a[i].Children, b[i].Children) {
			return false
		}
	}
	return true
}

func sameChildren(a, b []*domain.Node) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// UpdateProps merges patch into the props of id. A nil value deletes a key.
func (e *Editor) UpdateProps(id string, patch domain.Props) error {
	if err := patch.Validate(); err != nil {
		return err
	}
	e.updateNode("Update Properties", id, func(n *domain.Node) {
		n.Props = n.Props.Merge(patch)
	})
	return nil
}

// UpdateStyle applies patch to the style of id. Showing a page hides the others.
func (e *Editor) UpdateStyle(id string, patch StylePatch) bool {
	return e.updateNode("Update Style", id, func(n *domain.Node) {
		n.Style = patch.Apply(n.Style)
	})
}

// Rename sets the display name of id. Blank names are ignored.
func (e *Editor) Rename(id, name string) bool {
	name = strings.TrimSpace(name)
	if name == "" {
		return false
	}
	return e.updateNode("Rename Element", id, func(n *domain.Node) { n.Name = name })
}

// ToggleLock flips the lock flag of id. Locked nodes ignore MoveSelection.
func (e *Editor) ToggleLock(id string) bool {
	n, ok := tree.Find(e.elements, id)
	if !ok {
		return false
	}
	action := "Lock Element"
	if n.IsLocked {
		action = "Unlock Element"
	}
	return e.updateNode(action, id, func(n *domain.Node) { n.IsLocked = !n.IsLocked })
}

// ToggleExpand flips the outline expansion of id. It is view state and never
// enters the history.
func (e *Editor) ToggleExpand(id string) bool {
	if !e.exists(id) {
		return false
	}
	e.elements = tree.UpdateByID(e.elements, id, func(n *domain.Node) *domain.Node {
		n.IsExpanded = !n.IsExpanded
		return n
	})
	e.changed("Toggle Expand")
	return true
}

// hiddenDisplayKey remembers the display a node had before it was hidden.
const hiddenDisplayKey = "displayBeforeHide"

// ToggleVisibility hides id with display none or restores its previous display.
// Showing a page hides every other page.
func (e *Editor) ToggleVisibility(id string) bool {
	n, ok := tree.Find(e.elements, id)
	if !ok {
		return false
	}
	action := "Hide Element"
	if n.Style.Hidden() {
		action = "Show Element"
	}
	return e.updateNode(action, id, func(n *domain.Node) {
		s := n.Style.Clone()
		if s.Hidden() {
			s.Display = s.Extra[hiddenDisplayKey]
			if s.Display == "" && n.Kind == domain.KindPage {
				s.Display = domain.DisplayFlex
			}
			delete(s.Extra, hiddenDisplayKey)
			if len(s.Extra) == 0 {
				s.Extra = nil
			}
		} else {
			if s.Display != "" {
				if s.Extra == nil {
					s.Extra = map[string]string{}
				}
				s.Extra[hiddenDisplayKey] = s.Display
			}
			s.Display = domain.DisplayNone
		}
		n.Style = s
	})
}

// DuplicateSelection inserts a copy with fresh ids after every selected node,
// offset by the duplicate offset, and selects the copies. Nodes whose ancestor
// is also selected are copied along with that ancestor only. Copied pages start
// hidden.
func (e *Editor) DuplicateSelection() []string {
	ids := e.topmostSelected()
	if len(ids) == 0 {
		return nil
	}
	next := e.elements
	var fresh []string
	for _, id := range ids {
		n, _ := tree.Find(next, id)
		cp := tree.CloneWithNewIDs(n, e.newID)
		cp.Name = n.Name + " Copy"
		cp.IsLocked = false
		if cp.Kind == domain.KindPage {
			cp.Style.Display = domain.DisplayNone
		} else {
			cp.Style.Left += e.opts.DuplicateOffset
			cp.Style.Top += e.opts.DuplicateOffset
		}
		next = tree.InsertAfter(next, id, cp)
		fresh = append(fresh, cp.ID)
	}
	label := "Duplicate Elements"
	if len(fresh) == 1 {
		label = "Duplicate Element"
	}
	e.commit(label, next)
	e.sel.Set(fresh)
	e.changed("Select")
	return fresh
}

func (e *Editor) topmostSelected() []string {
	var out []string
	for _, id := range e.sel.IDs() {
		if !e.exists(id) || e.hasSelectedAncestor(id) {
			continue
		}
		out = append(out, id)
	}
	return out
}

func (e *Editor) hasSelectedAncestor(id string) bool {
	for {
		p, _, ok := tree.FindParent(e.elements, id)
		if !ok || p == nil {
			return false
		}
		if e.sel.Has(p.ID) {
			return true
		}
		id = p.ID
	}
}

// MoveSelection shifts every selected, unlocked, non-page node by (dx, dy).
func (e *Editor) MoveSelection(dx, dy float64) bool {
	if dx == 0 && dy == 0 {
		return false
	}
	next := e.elements
	moved := 0
	for _, id := range e.topmostSelected() {
		n, _ := tree.Find(next, id)
		if n.IsLocked || n.Kind == domain.KindPage {
			continue
		}
		next = tree.UpdateByID(next, id, func(n *domain.Node) *domain.Node {
			n.Style = n.Style.Clone()
			n.Style.Left += dx
			n.Style.Top += dy
			return n
		})
		moved++
	}
	if moved == 0 {
		return false
	}
	return e.commit("Move Elements", next)
}

// Reorder moves dragID before, after or inside targetID. Moves into the
// dragged subtree, moves of missing nodes, and moves that would nest a page are
// logged and ignored. A move that leaves the tree as it was records nothing.
func (e *Editor) Reorder(dragID, targetID string, pos tree.Position) bool {
	if drag, ok := tree.Find(e.elements, dragID); ok && drag.Kind == domain.KindPage {
		if pos == tree.Inside || !e.isTopLevel(targetID) {
			e.log.Warn("pages stay at the top level", slog.String("drag", dragID), slog.String("target", targetID))
			return false
		}
	}
	next, err := tree.Reorder(e.elements, dragID, targetID, pos)
	if err != nil {
		if errors.Is(err, tree.ErrCycle) {
			e.log.Warn("reorder rejected", slog.String("err", err.Error()))
		} else {
			e.log.Debug("reorder ignored", slog.String("err", err.Error()))
		}
		return false
	}
	if forestEqual(e.elements, next) {
		return false
	}
	return e.commit("Reorder Elements", next)
}

func (e *Editor) isTopLevel(id string) bool {
	for _, n := range e.elements {
		if n.ID == id {
			return true
		}
	}
	return false
}

// UpdateSettings applies patch to the project settings.
func (e *Editor) UpdateSettings(patch SettingsPatch) bool {
	next := patch.Apply(e.settings)
	if next.Equal(e.settings) {
		return false
	}
	e.timeline.Record("Update Settings", e.state())
	e.settings = next
	e.changed("Update Settings")
	return true
}
