/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package editor

import (
	"context"
	"fmt"

	"pagebuilder/internal/domain"
	"pagebuilder/internal/index"
	applog "pagebuilder/internal/log"
)

// Search finds nodes whose name or text content contains query. The index is
// opened on first use and rebuilt whenever the document changed since the
// previous search.
func (e *Editor) Search(ctx context.Context, query string) ([]index.Hit, error) {
	if err := e.syncIndex(ctx); err != nil {
		return nil, err
	}
	return e.idx.Search(ctx, query, 0)
}

// FindByKind lists the ids of every node of kind in document order.
func (e *Editor) FindByKind(ctx context.Context, kind domain.Kind) ([]string, error) {
	if err := e.syncIndex(ctx); err != nil {
		return nil, err
	}
	return e.idx.ByKind(ctx, kind)
}

func (e *Editor) syncIndex(ctx context.Context) error {
	if e.idx == nil {
		idx, err := index.Open(ctx)
		if err != nil {
			return fmt.Errorf("open search index: %w", err)
		}
		e.idx = idx
	}
	ctx = applog.WithRevision(applog.WithTrigger(ctx, "search"), e.rev)
	if err := e.idx.Sync(ctx, e.rev, e.elements); err != nil {
		return fmt.Errorf("sync search index: %w", err)
	}
	return nil
}
