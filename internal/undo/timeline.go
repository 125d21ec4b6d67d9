/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package undo keeps the document timeline: a bounded stack of past snapshots
// and an unbounded stack of future snapshots around a live state owned by the
// caller. Besides single-step undo and redo it supports jumping to any past or
// future entry while keeping everything in between reachable.
package undo

import (
	"sync"
	"time"

	"pagebuilder/internal/domain"
)

// DefaultMaxPast is the number of past snapshots kept when Config.MaxPast is unset.
const DefaultMaxPast = 50

// CurrentStateLabel labels the marker inserted for the live state on a jump.
const CurrentStateLabel = "Current State"

// State is the pair of values a snapshot captures.
type State struct {
	Elements domain.Forest
	Settings domain.Settings
}

// Clone deep-copies the state.
func (s State) Clone() State {
	return State{Elements: s.Elements.Clone(), Settings: s.Settings.Clone()}
}

// Snapshot is an immutable, deep-copied record of a State labeled with an action.
// In the past stack the action is the one applied right after the snapshot;
// in the future stack it is the one that produced it.
type Snapshot struct {
	ID        string
	State     State
	Action    string
	Timestamp time.Time
}

// Entry is the lightweight view of a snapshot used by timeline UIs.
type Entry struct {
	ID        string
	Action    string
	Timestamp time.Time
}

// Config controls depth cap and the injected clock/id source.
type Config struct {
	// MaxPast caps the past stack; the oldest entries are dropped first.
	MaxPast int
	Now     func() time.Time
	NewID   domain.IDGenerator
}

// Timeline is safe for concurrent use.
type Timeline struct {
	cfg    Config
	mu     sync.Mutex
	past   []Snapshot // oldest first
	future []Snapshot // nearest first
	// accounting
	dropped int
}

func NewTimeline(cfg Config) *Timeline {
	if cfg.MaxPast <= 0 {
		cfg.MaxPast = DefaultMaxPast
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.NewID == nil {
		cfg.NewID = domain.Prefixed("snap-", nil)
	}
	return &Timeline{cfg: cfg}
}

func (t *Timeline) snapshot(action string, live State) Snapshot {
	return Snapshot{ID: t.cfg.NewID(), State: live.Clone(), Action: action, Timestamp: t.cfg.Now()}
}

// Record pushes the live state onto the past stack labeled with the action
// about to be applied, and discards the redo branch.
func (t *Timeline) Record(action string, live State) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.past = append(t.past, t.snapshot(action, live))
	// Any new change invalidates redo
	t.future = nil
	t.enforceCapLocked()
}

// Undo returns the most recent past state and moves live onto the future stack.
func (t *Timeline) Undo(live State) (State, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	n := len(t.past)
	if n == 0 {
		return State{}, false
	}
	p := t.past[n-1]
	t.past = t.past[:n-1]
	t.future = prepend(t.future, t.snapshot(p.Action, live))
	return p.State.Clone(), true
}

// Redo returns the nearest future state and moves live onto the past stack.
func (t *Timeline) Redo(live State) (State, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.future) == 0 {
		return State{}, false
	}
	f := t.future[0]
	t.future = append([]Snapshot(nil), t.future[1:]...)
	t.past = append(t.past, t.snapshot(f.Action, live))
	t.enforceCapLocked()
	return f.State.Clone(), true
}

// JumpToPast makes past[index] live. The entries after it and a marker for the
// live state move to the front of the future stack, nearest to the target
// first; the past stack keeps only the entries before index. Each moved entry
// takes the label of the action that produced it.
func (t *Timeline) JumpToPast(index int, live State) (State, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if index < 0 || index >= len(t.past) {
		return State{}, false
	}
	target := t.past[index]
	moved := make([]Snapshot, 0, len(t.past)-index+len(t.future))
	for k := index + 1; k < len(t.past); k++ {
		s := t.past[k]
		s.Action = t.past[k-1].Action
		moved = append(moved, s)
	}
	moved = append(moved, t.snapshot(CurrentStateLabel, live))
	moved = append(moved, t.future...)
	t.future = moved
	t.past = append([]Snapshot(nil), t.past[:index]...)
	return target.State.Clone(), true
}

// JumpToFuture makes future[index] live. A marker for the live state and the
// future entries before index move onto the past stack in chronological order,
// each labelled with the action applied after it; the future stack keeps only
// the entries after index.
func (t *Timeline) JumpToFuture(index int, live State) (State, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if index < 0 || index >= len(t.future) {
		return State{}, false
	}
	target := t.future[index]
	t.past = append(t.past, t.snapshot(CurrentStateLabel, live))
	for k := 0; k < index; k++ {
		s := t.future[k]
		s.Action = t.future[k+1].Action
		t.past = append(t.past, s)
	}
	t.future = append([]Snapshot(nil), t.future[index+1:]...)
	t.enforceCapLocked()
	return target.State.Clone(), true
}

// Clear empties both stacks; the live state is not touched.
func (t *Timeline) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.past = nil
	t.future = nil
}

// CanUndo reports whether the past stack is non-empty.
func (t *Timeline) CanUndo() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.past) > 0
}

// CanRedo reports whether the future stack is non-empty.
func (t *Timeline) CanRedo() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.future) > 0
}

// Past lists the past stack, oldest first.
func (t *Timeline) Past() []Entry {
	t.mu.Lock()
	defer t.mu.Unlock()
	return entries(t.past)
}

// Future lists the future stack, nearest first.
func (t *Timeline) Future() []Entry {
	t.mu.Lock()
	defer t.mu.Unlock()
	return entries(t.future)
}

// PastSnapshot returns a deep copy of past[index] for previews.
func (t *Timeline) PastSnapshot(index int) (Snapshot, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if index < 0 || index >= len(t.past) {
		return Snapshot{}, false
	}
	s := t.past[index]
	s.State = s.State.Clone()
	return s, true
}

// Stats returns current sizes for diagnostics. dropped counts snapshots
// discarded by the depth cap since creation.
func (t *Timeline) Stats() (past, future, dropped int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.past), len(t.future), t.dropped
}

func (t *Timeline) enforceCapLocked() {
	if extra := len(t.past) - t.cfg.MaxPast; extra > 0 {
		// drop the oldest extras
		t.past = append([]Snapshot(nil), t.past[extra:]...)
		t.dropped += extra
	}
}

func prepend(list []Snapshot, s Snapshot) []Snapshot {
	out := make([]Snapshot, 0, len(list)+1)
	out = append(out, s)
	return append(out, list...)
}

func entries(list []Snapshot) []Entry {
	out := make([]Entry, len(list))
	for i, s := range list {
		out[i] = Entry{ID: s.ID, Action: s.Action, Timestamp: s.Timestamp}
	}
	return out
}
