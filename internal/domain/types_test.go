/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package domain

import (
	"errors"
	"strings"
	"testing"

	"github.com/goccy/go-json"
)

func TestNodeJSONRoundTrip(t *testing.T) {
	n := &Node{
		ID:   "a",
		Kind: KindSection,
		Name: "Hero",
		Props: Props{"text": "hello", "animation": map[string]any{"type": "fade", "duration": 0.4}},
		Style: Style{Display: DisplayFlex, Left: 10, Top: 20, Extra: map[string]string{"color": "#333"}},
		Children: []*Node{
			{ID: "b", Kind: KindText, Name: "Title"},
		},
		IsExpanded: true,
	}
	b, err := json.Marshal(n)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(b), `"type":"section"`) {
		t.Fatalf("kind should serialize as type: %s", b)
	}
	var got Node
	if err := json.Unmarshal(b, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.ID != "a" || got.Name != "Hero" || len(got.Children) != 1 || got.Children[0].ID != "b" {
		t.Fatalf("unexpected structure: %+v", got)
	}
	if got.Style.Extra["color"] != "#333" || got.Style.Left != 10 {
		t.Fatalf("style mismatch: %+v", got.Style)
	}
}

func TestCloneIsIndependent(t *testing.T) {
	orig := Forest{{
		ID:       "p",
		Kind:     KindPage,
		Props:    Props{"list": []any{"x", map[string]any{"k": "v"}}},
		Style:    Style{Extra: map[string]string{"bg": "red"}},
		Children: []*Node{{ID: "c", Kind: KindText, Props: Props{"text": "t"}}},
	}}
	cp := orig.Clone()
	cp[0].Name = "changed"
	cp[0].Style.Extra["bg"] = "blue"
	cp[0].Props["list"].([]any)[1].(map[string]any)["k"] = "changed"
	cp[0].Children[0].Props["text"] = "changed"
	cp[0].Children = append(cp[0].Children, &Node{ID: "d"})

	if orig[0].Name != "" || orig[0].Style.Extra["bg"] != "red" {
		t.Fatalf("clone shares top-level state with original")
	}
	if orig[0].Props["list"].([]any)[1].(map[string]any)["k"] != "v" {
		t.Fatalf("clone shares nested prop values")
	}
	if orig[0].Children[0].Props["text"] != "t" || len(orig[0].Children) != 1 {
		t.Fatalf("clone shares children")
	}
}

func TestPropsValidate(t *testing.T) {
	ok := Props{"a": "s", "b": 1, "c": true, "d": nil, "e": []any{1.5, "x"}, "f": map[string]any{"g": false}}
	if err := ok.Validate(); err != nil {
		t.Fatalf("plain data rejected: %v", err)
	}
	bad := Props{"onClick": func() {}}
	if err := bad.Validate(); !errors.Is(err, ErrUnsupportedValue) {
		t.Fatalf("expected ErrUnsupportedValue, got %v", err)
	}
	nested := Props{"anim": map[string]any{"ch": make(chan int)}}
	if err := nested.Validate(); !errors.Is(err, ErrUnsupportedValue) {
		t.Fatalf("expected nested ErrUnsupportedValue, got %v", err)
	}
}

func TestPropsMerge(t *testing.T) {
	p := Props{"text": "a", "label": "b"}
	got := p.Merge(Props{"text": "z", "label": nil, "size": 3})
	if got.String("text") != "z" {
		t.Fatalf("text = %q", got.String("text"))
	}
	if _, ok := got["label"]; ok {
		t.Fatalf("nil patch value should delete key")
	}
	if got["size"] != float64(3) {
		t.Fatalf("ints should be normalized to float64, got %T", got["size"])
	}
	if p.String("text") != "a" {
		t.Fatalf("merge mutated receiver")
	}
}

func TestKinds(t *testing.T) {
	for _, k := range Kinds {
		if !k.Valid() {
			t.Fatalf("%s should be valid", k)
		}
	}
	if Kind("video").Valid() {
		t.Fatalf("unknown kind reported valid")
	}
	if !KindFrame.IsContainer() || KindText.IsContainer() {
		t.Fatalf("IsContainer mismatch")
	}
}

func TestPrefixedIDs(t *testing.T) {
	gen := Prefixed("el-", nil)
	a, b := gen(), gen()
	if !strings.HasPrefix(a, "el-") || a == b {
		t.Fatalf("unexpected ids %q %q", a, b)
	}
}
