/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package editor is the integration point of the document engine. An Editor
// owns the live forest, the project settings, the selection and the history
// timeline, and exposes the commands rendering, canvas and assistant
// collaborators issue. Every mutating command except ToggleExpand records a
// history snapshot before it changes anything; commands that would not change
// the document leave the history untouched.
//
// An Editor is not safe for concurrent use; the host event loop serializes all
// commands.
package editor

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"pagebuilder/internal/config"
	"pagebuilder/internal/domain"
	"pagebuilder/internal/index"
	applog "pagebuilder/internal/log"
	"pagebuilder/internal/selection"
	"pagebuilder/internal/tree"
	"pagebuilder/internal/undo"
)

var (
	// ErrRootDelete is returned when asked to delete the canonical root page.
	ErrRootDelete = errors.New("the root page cannot be deleted")
	// ErrUnknownKind is returned for element kinds outside the palette.
	ErrUnknownKind = errors.New("unknown element kind")
)

// Options configure a new Editor.
type Options struct {
	HistoryLimit    int
	DuplicateOffset float64
	NudgeStep       float64
	NudgeStepLarge  float64
	Settings        domain.Settings
	Elements        domain.Forest
	Logger          *slog.Logger
	NewID           domain.IDGenerator
	Now             func() time.Time
	Assistant       Assistant
}

type Option func(*Options)

// WithConfig applies the editor section of the user configuration.
func WithConfig(c config.EditorConfig) Option {
	return func(o *Options) {
		if c.HistoryLimit > 0 {
			o.HistoryLimit = c.HistoryLimit
		}
		o.DuplicateOffset = c.DuplicateOffset
		if c.NudgeStep > 0 {
			o.NudgeStep = c.NudgeStep
		}
		if c.NudgeStepLarge > 0 {
			o.NudgeStepLarge = c.NudgeStepLarge
		}
		if c.ProjectName != "" {
			o.Settings.ProjectName = c.ProjectName
		}
		if c.Theme != "" {
			o.Settings.Theme = c.Theme
		}
	}
}

func WithLogger(l *slog.Logger) Option { return func(o *Options) { o.Logger = l } }
func WithIDGenerator(g domain.IDGenerator) Option { return func(o *Options) { o.NewID = g } }
func WithClock(now func() time.Time) Option { return func(o *Options) { o.Now = now } }
func WithSettings(s domain.Settings) Option { return func(o *Options) { o.Settings = s } }
func WithHistoryLimit(n int) Option { return func(o *Options) { o.HistoryLimit = n } }
func WithDuplicateOffset(px float64) Option { return func(o *Options) { o.DuplicateOffset = px } }

// WithAssistant names the content-generation collaborator whose fragments
// arrive through InsertFragment. Only the presence of its API key is kept.
func WithAssistant(c config.AssistantConfig, hasKey bool) Option {
	return func(o *Options) {
		o.Assistant = Assistant{Endpoint: c.Endpoint, Model: c.Model, HasKey: hasKey}
	}
}

// WithElements starts the editor on an existing forest instead of a blank
// document. The forest is deep-copied. A forest with duplicate ids or unknown
// kinds is logged and replaced by a blank document.
func WithElements(f domain.Forest) Option { return func(o *Options) { o.Elements = f.Clone() } }

// Change is delivered to observers after every change of the live document,
// selection or history.
type Change struct {
	Action string
	Rev    uint64
}

// Editor is the explicit document store.
type Editor struct {
	opts      Options
	elements  domain.Forest
	settings  domain.Settings
	sel       selection.Selection
	timeline  *undo.Timeline
	idx       *index.Index
	rev       uint64
	newID     domain.IDGenerator
	log       *slog.Logger
	observers []func(Change)
}

// New creates an editor on a blank document holding only the root page, unless
// WithElements provides a forest.
func New(opts ...Option) *Editor {
	o := Options{
		HistoryLimit:    undo.DefaultMaxPast,
		DuplicateOffset: 20,
		NudgeStep:       1,
		NudgeStepLarge:  10,
		Settings:        domain.DefaultSettings(),
	}
	for _, fn := range opts {
		fn(&o)
	}
	if o.Logger == nil {
		o.Logger = applog.WithComponent("editor")
	}
	if o.NewID == nil {
		o.NewID = domain.Prefixed("el-", nil)
	}
	e := &Editor{
		opts:     o,
		settings: o.Settings.Clone(),
		newID:    o.NewID,
		log:      o.Logger,
		timeline: undo.NewTimeline(undo.Config{MaxPast: o.HistoryLimit, Now: o.Now}),
	}
	e.elements = blankDocument()
	if o.Elements != nil {
		f, err := startingForest(o.Elements)
		if err != nil {
			e.log.Warn("starting forest rejected, using a blank document", slog.String("err", err.Error()))
		} else {
			e.elements = f
		}
	}
	return e
}

// startingForest normalises the page visibility of f and checks it holds
// unique ids of palette kinds.
func startingForest(f domain.Forest) (domain.Forest, error) {
	f, _ = tree.EnsureSinglePage(f)
	if err := tree.Validate(f); err != nil {
		return nil, err
	}
	var err error
	tree.Walk(f, func(n, _ *domain.Node, _ int) bool {
		if !n.Kind.Valid() {
			err = fmt.Errorf("%w: %q", ErrUnknownKind, n.Kind)
			return false
		}
		return true
	})
	return f, err
}

func blankDocument() domain.Forest {
	return domain.Forest{{
		ID:         domain.RootPageID,
		Kind:       domain.KindPage,
		Name:       "Home",
		Props:      domain.Props{},
		Style:      domain.Style{Display: domain.DisplayFlex, Position: "relative", Width: 1440, Height: 900},
		IsExpanded: true,
	}}
}

// OnChange registers an observer.
func (e *Editor) OnChange(fn func(Change)) {
	if fn != nil {
		e.observers = append(e.observers, fn)
	}
}

// Close releases the search index.
func (e *Editor) Close() error {
	if e.idx == nil {
		return nil
	}
	err := e.idx.Close()
	e.idx = nil
	return err
}

// Elements returns a deep copy of the live forest.
func (e *Editor) Elements() domain.Forest { return e.elements.Clone() }

// Find returns a deep copy of the node with id.
func (e *Editor) Find(id string) (*domain.Node, bool) {
	n, ok := tree.Find(e.elements, id)
	if !ok {
		return nil, false
	}
	return n.Clone(), true
}

// Settings returns a copy of the project settings.
func (e *Editor) Settings() domain.Settings { return e.settings.Clone() }

func (e *Editor) SelectedID() string { return e.sel.Primary() }
func (e *Editor) SelectedIDs() []string { return e.sel.IDs() }
func (e *Editor) History() []undo.Entry { return e.timeline.Past() }
func (e *Editor) Future() []undo.Entry { return e.timeline.Future() }
func (e *Editor) CanUndo() bool { return e.timeline.CanUndo() }
func (e *Editor) CanRedo() bool { return e.timeline.CanRedo() }
func (e *Editor) Revision() uint64 { return e.rev }

// ActivePageID returns the visible top-level page, or "" when none is visible.
func (e *Editor) ActivePageID() string {
	id, _ := tree.ActivePage(e.elements)
	return id
}

func (e *Editor) state() undo.State {
	return undo.State{Elements: e.elements, Settings: e.settings}
}

// commit records the pre-change state under action and installs next. It is a
// no-op when next is the live forest itself.
func (e *Editor) commit(action string, next domain.Forest) bool {
	if sameForest(e.elements, next) {
		return false
	}
	next, _ = tree.EnsureSinglePage(next)
	e.timeline.Record(action, e.state())
	e.elements = next
	e.changed(action)
	past, _, _ := e.timeline.Stats()
	e.log.Debug("commit", applog.Action(action), applog.Revision(e.rev), slog.Int("past", past))
	return true
}

func (e *Editor) changed(action string) {
	e.rev++
	c := Change{Action: action, Rev: e.rev}
	for _, fn := range e.observers {
		fn(c)
	}
}

func (e *Editor) exists(id string) bool {
	_, ok := tree.Find(e.elements, id)
	return ok
}

func sameForest(a, b domain.Forest) bool {
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
