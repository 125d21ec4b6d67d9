/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package selection

import (
	"reflect"
	"testing"

	"pgregory.net/rapid"
)

func TestSelectSingle(t *testing.T) {
	var s Selection
	s.Select("a", false)
	s.Select("b", false)
	if s.Primary() != "b" || !reflect.DeepEqual(s.IDs(), []string{"b"}) {
		t.Fatalf("got primary=%q ids=%v", s.Primary(), s.IDs())
	}
}

func TestSelectMultiToggle(t *testing.T) {
	var s Selection
	s.Select("a", false)
	s.Select("b", true)
	s.Select("c", true)
	if s.Primary() != "c" || !reflect.DeepEqual(s.IDs(), []string{"a", "b", "c"}) {
		t.Fatalf("after adds: primary=%q ids=%v", s.Primary(), s.IDs())
	}
	// removing a non-primary keeps the primary
	s.Select("a", true)
	if s.Primary() != "c" || !reflect.DeepEqual(s.IDs(), []string{"b", "c"}) {
		t.Fatalf("after removing a: primary=%q ids=%v", s.Primary(), s.IDs())
	}
	// removing the primary promotes the last remaining member
	s.Select("c", true)
	if s.Primary() != "b" || !reflect.DeepEqual(s.IDs(), []string{"b"}) {
		t.Fatalf("after removing c: primary=%q ids=%v", s.Primary(), s.IDs())
	}
	s.Select("b", true)
	if s.Primary() != "" || !s.Empty() {
		t.Fatalf("expected empty selection, got primary=%q ids=%v", s.Primary(), s.IDs())
	}
}

func TestSelectEmptyClears(t *testing.T) {
	var s Selection
	s.Select("a", false)
	s.Select("b", true)
	s.Select("", true)
	if s.Primary() != "" || s.Len() != 0 {
		t.Fatalf("expected cleared selection")
	}
}

func TestClearIfAny(t *testing.T) {
	var s Selection
	s.Set([]string{"a", "b"})
	if s.ClearIfAny([]string{"x", "y"}) || s.Len() != 2 {
		t.Fatalf("disjoint delete should keep the selection")
	}
	if !s.ClearIfAny([]string{"b"}) || !s.Empty() || s.Primary() != "" {
		t.Fatalf("intersecting delete should clear everything")
	}
}

func TestClearUnless(t *testing.T) {
	var s Selection
	s.Set([]string{"a", "b"})
	live := map[string]bool{"a": true, "b": true}
	if s.ClearUnless(func(id string) bool { return live[id] }) {
		t.Fatalf("all ids exist")
	}
	delete(live, "a")
	if !s.ClearUnless(func(id string) bool { return live[id] }) || !s.Empty() {
		t.Fatalf("expected clear when a member vanished")
	}
}

func TestIDsIsACopy(t *testing.T) {
	var s Selection
	s.Set([]string{"a", "b"})
	ids := s.IDs()
	ids[0] = "zzz"
	if s.IDs()[0] != "a" {
		t.Fatalf("IDs leaked internal slice")
	}
}

func TestPropertyPrimaryIsMember(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		var s Selection
		ids := []string{"", "a", "b", "c", "d"}
		for i, n := 0, rapid.IntRange(1, 40).Draw(t, "n"); i < n; i++ {
			s.Select(rapid.SampledFrom(ids).Draw(t, "id"), rapid.Bool().Draw(t, "multi"))
			if p := s.Primary(); p != "" && !s.Has(p) {
				t.Fatalf("primary %q not in %v", p, s.IDs())
			}
			if s.Primary() == "" && !s.Empty() {
				t.Fatalf("non-empty selection without primary: %v", s.IDs())
			}
			seen := map[string]bool{}
			for _, id := range s.IDs() {
				if seen[id] {
					t.Fatalf("duplicate id in selection %v", s.IDs())
				}
				seen[id] = true
			}
		}
	})
}
