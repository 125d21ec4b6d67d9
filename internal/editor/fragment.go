/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package editor

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/goccy/go-json"
	"github.com/xeipuuv/gojsonschema"

	"pagebuilder/internal/domain"
	"pagebuilder/internal/tree"
)

// ErrInvalidFragment is returned when pasted or generated element JSON does not
// describe a well-formed subtree.
var ErrInvalidFragment = errors.New("invalid element fragment")

//go:embed schema/fragment.json
var fragmentSchemaJSON string

var (
	fragmentSchemaOnce sync.Once
	fragmentSchema     *gojsonschema.Schema
	fragmentSchemaErr  error
)

func compiledFragmentSchema() (*gojsonschema.Schema, error) {
	fragmentSchemaOnce.Do(func() {
		fragmentSchema, fragmentSchemaErr = gojsonschema.NewSchema(gojsonschema.NewStringLoader(fragmentSchemaJSON))
	})
	return fragmentSchema, fragmentSchemaErr
}

// ParseFragment validates data against the fragment schema and decodes it. A
// single node object and a non-empty array of nodes are both accepted.
func ParseFragment(data []byte) (domain.Forest, error) {
	schema, err := compiledFragmentSchema()
	if err != nil {
		return nil, fmt.Errorf("fragment schema: %w", err)
	}
	res, err := schema.Validate(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFragment, err)
	}
	if !res.Valid() {
		msgs := make([]string, 0, len(res.Errors()))
		for _, re := range res.Errors() {
			msgs = append(msgs, re.String())
		}
		return nil, fmt.Errorf("%w: %s", ErrInvalidFragment, strings.Join(msgs, "; "))
	}

	var nodes domain.Forest
	if trimmed := bytes.TrimSpace(data); len(trimmed) > 0 && trimmed[0] == '[' {
		err = json.Unmarshal(trimmed, &nodes)
	} else {
		var n domain.Node
		err = json.Unmarshal(trimmed, &n)
		nodes = domain.Forest{&n}
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFragment, err)
	}
	return nodes, nil
}

// InsertFragment parses data and inserts the decoded nodes, with fresh ids,
// into parentID (or where AddElement would put them when parentID is empty).
// Pages are only accepted at the top level and arrive hidden. The whole insert
// is one history step and the inserted roots become the selection. Logs carry
// the configured Assistant as the fragment source.
func (e *Editor) InsertFragment(parentID string, data []byte) ([]string, error) {
	ids, err := e.insertFragment(parentID, data)
	if err != nil {
		e.log.Warn("fragment rejected",
			slog.Any("assistant", e.opts.Assistant), slog.Int("bytes", len(data)), slog.String("err", err.Error()))
		return nil, err
	}
	return ids, nil
}

func (e *Editor) insertFragment(parentID string, data []byte) ([]string, error) {
	nodes, err := ParseFragment(data)
	if err != nil {
		return nil, err
	}
	hasPage := false
	for _, n := range nodes {
		if err := checkFragmentNode(n, true); err != nil {
			return nil, err
		}
		hasPage = hasPage || n.Kind == domain.KindPage
	}

	parent := ""
	if !hasPage {
		parent = e.insertionParent(parentID)
	} else if parentID != "" {
		return nil, fmt.Errorf("%w: pages cannot be nested", ErrInvalidFragment)
	}

	next := e.elements
	ids := make([]string, 0, len(nodes))
	for _, n := range nodes {
		cp := tree.CloneWithNewIDs(n, e.newID)
		e.fillDefaults(cp)
		if cp.Kind == domain.KindPage {
			cp.Style.Display = domain.DisplayNone
		}
		if parent == "" {
			next = append(append(domain.Forest(nil), next...), cp)
		} else {
			next = tree.InsertInto(next, parent, cp)
		}
		ids = append(ids, cp.ID)
	}
	e.commit("Insert Fragment", next)
	e.sel.Set(ids)
	e.changed("Select")
	e.log.Debug("fragment inserted",
		slog.Int("roots", len(ids)), slog.String("parent", parent), slog.Any("assistant", e.opts.Assistant))
	return ids, nil
}

func checkFragmentNode(n *domain.Node, top bool) error {
	if !n.Kind.Valid() {
		return fmt.Errorf("%w: %w: %q", ErrInvalidFragment, ErrUnknownKind, n.Kind)
	}
	if n.Kind == domain.KindPage && !top {
		return fmt.Errorf("%w: pages cannot be nested", ErrInvalidFragment)
	}
	if err := n.Props.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidFragment, err)
	}
	for _, c := range n.Children {
		if err := checkFragmentNode(c, false); err != nil {
			return err
		}
	}
	return nil
}

// fillDefaults gives nodes without a name or style the template values of
// their kind.
func (e *Editor) fillDefaults(n *domain.Node) {
	tpl := templates[n.Kind]
	if strings.TrimSpace(n.Name) == "" {
		n.Name = kindTitle(n.Kind)
	}
	if n.Style.Equal(domain.Style{}) {
		n.Style = tpl.style.Clone()
	}
	if n.Props == nil {
		n.Props = tpl.props.Merge(nil)
	}
	for _, c := range n.Children {
		e.fillDefaults(c)
	}
}
