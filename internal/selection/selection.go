/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package selection tracks the primary selected node and the set of
// co-selected nodes. The primary is always empty or a member of the set.
package selection

// Selection is a small value type; the zero value is an empty selection.
type Selection struct {
	primary string
	ids     []string
}

// Primary returns the primary id, or "" when nothing is selected.
func (s *Selection) Primary() string { return s.primary }

// IDs returns a copy of the selected ids in selection order.
func (s *Selection) IDs() []string { return append([]string(nil), s.ids...) }

// Len returns the number of selected ids.
func (s *Selection) Len() int { return len(s.ids) }

// Empty reports whether nothing is selected.
func (s *Selection) Empty() bool { return len(s.ids) == 0 }

// Has reports whether id is selected.
func (s *Selection) Has(id string) bool { return s.index(id) >= 0 }

// Select applies a click on id. Without multi the selection collapses to id.
// With multi the id is toggled: removing the primary promotes the last
// remaining member, adding an id makes it primary. An empty id clears.
func (s *Selection) Select(id string, multi bool) {
	if id == "" {
		s.Clear()
		return
	}
	if !multi {
		s.primary = id
		s.ids = []string{id}
		return
	}
	if i := s.index(id); i >= 0 {
		s.ids = append(s.ids[:i:i], s.ids[i+1:]...)
		if s.primary == id {
			s.primary = ""
			if n := len(s.ids); n > 0 {
				s.primary = s.ids[n-1]
			}
		}
		return
	}
	s.ids = append(s.ids, id)
	s.primary = id
}

// Set replaces the selection with ids; the last one becomes primary.
func (s *Selection) Set(ids []string) {
	s.Clear()
	for _, id := range ids {
		if id == "" || s.Has(id) {
			continue
		}
		s.ids = append(s.ids, id)
		s.primary = id
	}
}

// Clear empties the selection.
func (s *Selection) Clear() {
	s.primary = ""
	s.ids = nil
}

// Intersects reports whether any of ids is selected.
func (s *Selection) Intersects(ids []string) bool {
	for _, id := range ids {
		if s.Has(id) {
			return true
		}
	}
	return false
}

// ClearIfAny clears the whole selection when it intersects ids. The selection
// is never partially repaired. It reports whether it cleared.
func (s *Selection) ClearIfAny(ids []string) bool {
	if !s.Intersects(ids) {
		return false
	}
	s.Clear()
	return true
}

// ClearUnless clears the whole selection when any member fails exists.
func (s *Selection) ClearUnless(exists func(id string) bool) bool {
	for _, id := range s.ids {
		if !exists(id) {
			s.Clear()
			return true
		}
	}
	return false
}

func (s *Selection) index(id string) int {
	for i, v := range s.ids {
		if v == id {
			return i
		}
	}
	return -1
}
