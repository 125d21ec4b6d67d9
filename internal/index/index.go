/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package index maintains a derived, disposable SQLite index of the document
// tree used for layer search. The database lives in memory only; it is rebuilt
// from the forest whenever the document revision changes and never persists
// anything.
package index

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	"pagebuilder/internal/domain"
	applog "pagebuilder/internal/log"

	// Pure-Go SQLite driver (CGO-free)
	_ "modernc.org/sqlite"
)

var schema = []string{
	// language=SQL
	// dialect=SQLite
	`CREATE TABLE IF NOT EXISTS nodes (
	id        TEXT PRIMARY KEY,
	parent_id TEXT,
	page_id   TEXT,
	kind      TEXT NOT NULL,
	name      TEXT NOT NULL DEFAULT '',
	body      TEXT NOT NULL DEFAULT '',
	depth     INTEGER NOT NULL,
	ord       INTEGER NOT NULL,
	locked    INTEGER NOT NULL DEFAULT 0
)`,
	`CREATE INDEX IF NOT EXISTS idx_nodes_kind ON nodes(kind)`,
	`CREATE INDEX IF NOT EXISTS idx_nodes_parent ON nodes(parent_id)`,
}

// language=SQL
// dialect=SQLite
const insertNodeSQL = `INSERT INTO nodes(id, parent_id, page_id, kind, name, body, depth, ord, locked) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

// language=SQL
// dialect=SQLite
const searchSQL = `SELECT id, kind, name, COALESCE(page_id, ''), depth FROM nodes
WHERE lower(name) LIKE ? ESCAPE '\' OR lower(body) LIKE ? ESCAPE '\'
ORDER BY ord LIMIT ?`

// language=SQL
// dialect=SQLite
const byKindSQL = `SELECT id FROM nodes WHERE kind = ? ORDER BY ord`

// language=SQL
// dialect=SQLite
const countSQL = `SELECT COUNT(*) FROM nodes`

var dbSeq atomic.Uint64

// Hit is one search result.
type Hit struct {
	ID     string
	Kind   domain.Kind
	Name   string
	PageID string
	Depth  int
}

// Index wraps the in-memory database. It is safe for concurrent use.
type Index struct {
	db  *sql.DB
	mu  sync.Mutex
	rev uint64
	ok  bool // rev is meaningful
	log *slog.Logger
}

// Open creates a fresh in-memory index.
func Open(ctx context.Context) (*Index, error) {
	l := applog.WithOperation(applog.WithComponent("index"), "open")
	// a named shared-cache memory db survives pool reconnects as long as one
	// connection stays open
	dsn := fmt.Sprintf("file:pbindex-%d?mode=memory&cache=shared&_pragma=busy_timeout(5000)", dbSeq.Add(1))
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		l.Error("sqlite open failed", slog.Any("err", err))
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	for _, q := range schema {
		if _, err := db.ExecContext(ctx, q); err != nil {
			_ = db.Close()
			l.Error("ensure index schema failed", slog.Any("err", err))
			return nil, fmt.Errorf("create schema: %w", err)
		}
	}
	l.Debug("index ready", slog.String("dsn", dsn))
	return &Index{db: db, log: applog.WithComponent("index")}, nil
}

// Close releases the database; the index content is gone afterwards.
func (x *Index) Close() error {
	if x == nil || x.db == nil {
		return nil
	}
	return x.db.Close()
}

// Rev returns the document revision of the last successful Sync.
func (x *Index) Rev() (uint64, bool) {
	x.mu.Lock()
	defer x.mu.Unlock()
	return x.rev, x.ok
}

// Sync rebuilds the index from f in one transaction unless rev was already
// indexed.
func (x *Index) Sync(ctx context.Context, rev uint64, f domain.Forest) error {
	x.mu.Lock()
	defer x.mu.Unlock()
	if x.ok && x.rev == rev {
		return nil
	}
	l := applog.WithOperation(x.log, "sync")
	ctx = applog.WithRevision(ctx, rev)
	tx, err := x.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM nodes`); err != nil {
		return fmt.Errorf("clear nodes: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, insertNodeSQL)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	ord := 0
	var insert func(nodes []*domain.Node, parent, page string, depth int) error
	insert = func(nodes []*domain.Node, parent, page string, depth int) error {
		for _, n := range nodes {
			p := page
			if depth == 0 && n.Kind == domain.KindPage {
				p = n.ID
			}
			ord++
			if _, err := stmt.ExecContext(ctx, n.ID, nullable(parent), nullable(p), string(n.Kind), n.Name, bodyText(n.Props), depth, ord, n.IsLocked); err != nil {
				return fmt.Errorf("insert %s: %w", n.ID, err)
			}
			if err := insert(n.Children, n.ID, p, depth+1); err != nil {
				return err
			}
		}
		return nil
	}
	if err := insert(f, "", "", 0); err != nil {
		l.ErrorContext(ctx, "index sync failed", slog.Any("err", err))
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	x.rev, x.ok = rev, true
	l.DebugContext(ctx, "index synced", slog.Int("nodes", ord))
	return nil
}

// Search returns nodes whose name or text content contains query
// (case-insensitive), in document order. limit <= 0 means 50.
func (x *Index) Search(ctx context.Context, query string, limit int) ([]Hit, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}
	if limit <= 0 {
		limit = 50
	}
	pattern := "%" + escapeLike(strings.ToLower(query)) + "%"
	x.mu.Lock()
	defer x.mu.Unlock()
	rows, err := x.db.QueryContext(ctx, searchSQL, pattern, pattern, limit)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	defer func() { _ = rows.Close() }()
	var out []Hit
	for rows.Next() {
		var h Hit
		var kind string
		if err := rows.Scan(&h.ID, &kind, &h.Name, &h.PageID, &h.Depth); err != nil {
			return nil, err
		}
		h.Kind = domain.Kind(kind)
		out = append(out, h)
	}
	return out, rows.Err()
}

// ByKind lists the ids of every node of kind, in document order.
func (x *Index) ByKind(ctx context.Context, kind domain.Kind) ([]string, error) {
	x.mu.Lock()
	defer x.mu.Unlock()
	rows, err := x.db.QueryContext(ctx, byKindSQL, string(kind))
	if err != nil {
		return nil, fmt.Errorf("by kind: %w", err)
	}
	defer func() { _ = rows.Close() }()
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Count returns the number of indexed nodes.
func (x *Index) Count(ctx context.Context) (int, error) {
	x.mu.Lock()
	defer x.mu.Unlock()
	var n int
	err := x.db.QueryRowContext(ctx, countSQL).Scan(&n)
	return n, err
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// bodyText joins the string-valued props in key order.
func bodyText(p domain.Props) string {
	if len(p) == 0 {
		return ""
	}
	keys := make([]string, 0, len(p))
	for k, v := range p {
		if _, ok := v.(string); ok {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, p[k].(string))
	}
	return strings.Join(parts, " ")
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
