/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package log

import (
	"context"
	"log/slog"
)

// Attribute keys shared by the editor packages.
const (
	KeyComponent = "component"
	KeyOperation = "op"
	KeyAction    = "action"
	KeyRevision  = "rev"
	KeyTrigger   = "trigger"
	KeyNode      = "node"
)

// Action, Revision and Node build the standard editor attributes.
func Action(label string) slog.Attr { return slog.String(KeyAction, label) }
func Revision(rev uint64) slog.Attr { return slog.Uint64(KeyRevision, rev) }
func Node(id string) slog.Attr { return slog.String(KeyNode, id) }

type ctxAttrsKey struct{}

// ContextWith returns a context carrying attrs. Records logged with it get the
// attrs appended; a key set again replaces the earlier value.
func ContextWith(ctx context.Context, attrs ...slog.Attr) context.Context {
	prev := contextAttrs(ctx)
	all := make([]slog.Attr, 0, len(prev)+len(attrs))
	for _, a := range prev {
		if !hasKey(attrs, a.Key) {
			all = append(all, a)
		}
	}
	all = append(all, attrs...)
	return context.WithValue(ctx, ctxAttrsKey{}, all)
}

// WithRevision tags ctx with the document revision the work is done for.
func WithRevision(ctx context.Context, rev uint64) context.Context {
	return ContextWith(ctx, Revision(rev))
}

// WithAction tags ctx with the history label of the command being run.
func WithAction(ctx context.Context, label string) context.Context {
	return ContextWith(ctx, Action(label))
}

// WithTrigger tags ctx with what caused background work (search, export...).
func WithTrigger(ctx context.Context, trigger string) context.Context {
	return ContextWith(ctx, slog.String(KeyTrigger, trigger))
}

func contextAttrs(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	attrs, _ := ctx.Value(ctxAttrsKey{}).([]slog.Attr)
	return attrs
}

func hasKey(attrs []slog.Attr, key string) bool {
	for _, a := range attrs {
		if a.Key == key {
			return true
		}
	}
	return false
}

// contextHandler appends the context attrs to every record.
type contextHandler struct{ next slog.Handler }

func withContextAttrs(h slog.Handler) slog.Handler { return contextHandler{next: h} }

func (h contextHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h contextHandler) Handle(ctx context.Context, r slog.Record) error {
	if attrs := contextAttrs(ctx); len(attrs) > 0 {
		r = r.Clone()
		r.AddAttrs(attrs...)
	}
	return h.next.Handle(ctx, r)
}

func (h contextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return contextHandler{next: h.next.WithAttrs(attrs)}
}

func (h contextHandler) WithGroup(name string) slog.Handler {
	return contextHandler{next: h.next.WithGroup(name)}
}

// fanout sends each record to every handler.
type fanout []slog.Handler

func (f fanout) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range f {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (f fanout) Handle(ctx context.Context, r slog.Record) error {
	var first error
	for _, h := range f {
		if !h.Enabled(ctx, r.Level) {
			continue
		}
		if err := h.Handle(ctx, r.Clone()); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func (f fanout) WithAttrs(attrs []slog.Attr) slog.Handler {
	out := make(fanout, len(f))
	for i, h := range f {
		out[i] = h.WithAttrs(attrs)
	}
	return out
}

func (f fanout) WithGroup(name string) slog.Handler {
	out := make(fanout, len(f))
	for i, h := range f {
		out[i] = h.WithGroup(name)
	}
	return out
}
