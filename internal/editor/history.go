/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package editor

import (
	"log/slog"

	"pagebuilder/internal/domain"
	applog "pagebuilder/internal/log"
	"pagebuilder/internal/tree"
	"pagebuilder/internal/undo"
)

// Undo restores the most recent snapshot. It reports false when there is
// nothing to undo.
func (e *Editor) Undo() bool {
	s, ok := e.timeline.Undo(e.state())
	if !ok {
		return false
	}
	e.restore("Undo", s)
	return true
}

// Redo re-applies the most recently undone snapshot.
func (e *Editor) Redo() bool {
	s, ok := e.timeline.Redo(e.state())
	if !ok {
		return false
	}
	e.restore("Redo", s)
	return true
}

// RestoreHistory jumps to past entry i (0 is the oldest). The entries after i
// and the live state move to the future, led by a "Current State" marker.
func (e *Editor) RestoreHistory(i int) bool {
	s, ok := e.timeline.JumpToPast(i, e.state())
	if !ok {
		e.log.Debug("history index out of range", slog.Int("index", i))
		return false
	}
	e.restore("Restore History", s)
	return true
}

// JumpToFuture jumps to future entry i (0 is the nearest). Jumping onto the
// "Current State" marker left by RestoreHistory returns to where the jump
// started.
func (e *Editor) JumpToFuture(i int) bool {
	s, ok := e.timeline.JumpToFuture(i, e.state())
	if !ok {
		e.log.Debug("future index out of range", slog.Int("index", i))
		return false
	}
	e.restore("Jump To Future", s)
	return true
}

// ClearHistory drops both stacks. The live document is untouched.
func (e *Editor) ClearHistory() {
	e.timeline.Clear()
	e.changed("Clear History")
}

// restore installs s as the live state and drops selected ids that no longer
// exist.
func (e *Editor) restore(action string, s undo.State) {
	e.elements = s.Elements
	e.settings = s.Settings
	e.sel.ClearUnless(e.exists)
	e.changed(action)
}

// Select makes id the selection, or toggles it in a multi-selection. Selecting
// a top-level page also makes it the visible page; that switch is view state
// and is not recorded. An empty id clears the selection.
func (e *Editor) Select(id string, multi bool) {
	if id == "" {
		e.ClearSelection()
		return
	}
	n, ok := tree.Find(e.elements, id)
	if !ok {
		e.log.Debug("select of missing node ignored", applog.Node(id))
		return
	}
	e.sel.Select(id, multi)
	if n.Kind == domain.KindPage && e.sel.Has(id) {
		if next, changed := tree.ShowPage(e.elements, id); changed {
			e.elements = next
		}
	}
	e.changed("Select")
}

// ClearSelection empties the selection.
func (e *Editor) ClearSelection() {
	if e.sel.Empty() {
		return
	}
	e.sel.Clear()
	e.changed("Clear Selection")
}
