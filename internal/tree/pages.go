/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package tree

import "pagebuilder/internal/domain"

// VisiblePages returns the ids of top-level pages not hidden by display:none.
func VisiblePages(f domain.Forest) []string {
	var ids []string
	for _, n := range f {
		if n.Kind == domain.KindPage && !n.Style.Hidden() {
			ids = append(ids, n.ID)
		}
	}
	return ids
}

// ActivePage returns the visible top-level page, if any.
func ActivePage(f domain.Forest) (string, bool) {
	if ids := VisiblePages(f); len(ids) > 0 {
		return ids[0], true
	}
	return "", false
}

// ShowPage makes pageID the only visible top-level page: display flex on it,
// none on every other page. When pageID is not a top-level page, or every page
// already has the wanted display, the input is returned and changed is false.
func ShowPage(f domain.Forest, pageID string) (domain.Forest, bool) {
	isPage := false
	for _, n := range f {
		if n.ID == pageID && n.Kind == domain.KindPage {
			isPage = true
			break
		}
	}
	if !isPage {
		return f, false
	}
	return setPageDisplay(f, func(n *domain.Node) string {
		if n.ID == pageID {
			return domain.DisplayFlex
		}
		return domain.DisplayNone
	})
}

// EnsureSinglePage hides every visible top-level page but the first one.
func EnsureSinglePage(f domain.Forest) (domain.Forest, bool) {
	active, ok := ActivePage(f)
	if !ok {
		return f, false
	}
	return setPageDisplay(f, func(n *domain.Node) string {
		if n.ID == active {
			return n.Style.Display
		}
		return domain.DisplayNone
	})
}

func setPageDisplay(f domain.Forest, want func(*domain.Node) string) (domain.Forest, bool) {
	var out domain.Forest
	for i, n := range f {
		if n.Kind != domain.KindPage {
			continue
		}
		d := want(n)
		if n.Style.Display == d {
			continue
		}
		if out == nil {
			out = make(domain.Forest, len(f))
			copy(out, f)
		}
		cp := n.ShallowCopy()
		cp.Style = n.Style.Clone()
		cp.Style.Display = d
		out[i] = cp
	}
	if out == nil {
		return f, false
	}
	return out, true
}
