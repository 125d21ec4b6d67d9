/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package log configures the slog loggers of the page editor. Records go to a
// console handler (or JSON) and, when a file is configured, to a rotating JSON
// file. Records logged with a context carry the editor attributes attached by
// WithRevision, WithAction and WithTrigger.
package log

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	lj "gopkg.in/natefinch/lumberjack.v2"

	"pagebuilder/internal/version"
)

// Env var names read by FromEnv.
const (
	EnvLevel  = "PB_LOG_LEVEL"
	EnvFormat = "PB_LOG_FORMAT"
	EnvSource = "PB_LOG_SOURCE"
	EnvFile   = "PB_LOG_FILE"
)

// Options controls logger construction. The zero value logs INFO and above to
// stderr in console format.
type Options struct {
	Level     string // debug|info|warn|error
	Format    string // console|json
	AddSource bool
	// File enables a rotating JSON log next to the console output.
	File string
	// Output replaces stderr (tests, REPL capture).
	Output io.Writer
}

var (
	mu      sync.RWMutex
	current *slog.Logger
	sink    io.Closer
)

// L returns the application logger, initializing it from the environment on
// first use.
func L() *slog.Logger {
	mu.RLock()
	l := current
	mu.RUnlock()
	if l != nil {
		return l
	}
	return Init(FromEnv())
}

// Init replaces the application logger and slog's default. A log file opened
// by a previous Init is closed.
func Init(opts Options) *slog.Logger {
	l, closer := New(opts)
	mu.Lock()
	prev := sink
	current, sink = l, closer
	mu.Unlock()
	if prev != nil {
		_ = prev.Close()
	}
	slog.SetDefault(l)
	return l
}

// New builds a logger from opts without installing it. The closer releases the
// log file; it is nil when File is empty.
func New(opts Options) (*slog.Logger, io.Closer) {
	lvl := parseLevel(opts.Level)
	out := opts.Output
	if out == nil {
		out = os.Stderr
	}

	// JSON records name the app and build.
	static := []slog.Attr{slog.String("app", "pagebuilder"), slog.String("ver", version.Version)}
	var primary slog.Handler
	if strings.EqualFold(strings.TrimSpace(opts.Format), "json") {
		primary = slog.NewJSONHandler(out, &slog.HandlerOptions{Level: lvl, AddSource: opts.AddSource}).WithAttrs(static)
	} else {
		primary = newConsoleHandler(out, lvl, opts.AddSource)
	}
	h := withContextAttrs(primary)

	var closer io.Closer
	if f := strings.TrimSpace(opts.File); f != "" {
		w := &lj.Logger{Filename: f, MaxSize: 10, MaxBackups: 3, MaxAge: 28, Compress: true}
		fh := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: lvl, AddSource: opts.AddSource}).WithAttrs(static)
		h = fanout{h, withContextAttrs(fh)}
		closer = w
	}
	return slog.New(h), closer
}

// FromEnv reads Options from the PB_LOG_* variables.
func FromEnv() Options {
	return Options{
		Level:     getenv(EnvLevel, "info"),
		Format:    getenv(EnvFormat, "console"),
		AddSource: strings.EqualFold(os.Getenv(EnvSource), "true"),
		File:      os.Getenv(EnvFile),
	}
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// WithComponent returns the application logger tagged with a component. The
// console handler prints it as a [name] prefix.
func WithComponent(name string) *slog.Logger { return L().With(slog.String(KeyComponent, name)) }

// WithOperation tags l with an operation name.
func WithOperation(l *slog.Logger, op string) *slog.Logger { return l.With(slog.String(KeyOperation, op)) }

// Discard returns a logger that drops everything.
func Discard() *slog.Logger { return slog.New(slog.DiscardHandler) }

func parseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
