/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package domain

import "maps"

// This file defines the document model: a forest of element nodes plus the
// project settings that travel with it through history snapshots.

// RootPageID is the canonical root page. It is created with every new document
// and can never be deleted.
const RootPageID = "page-root"

// Display values the engine itself writes when toggling page visibility.
const (
	DisplayNone = "none"
	DisplayFlex = "flex"
)

// Kind is the element type of a node.
type Kind string

const (
	KindPage      Kind = "page"
	KindSection   Kind = "section"
	KindContainer Kind = "container"
	KindText      Kind = "text"
	KindButton    Kind = "button"
	KindGrid      Kind = "grid"
	KindRectangle Kind = "rectangle"
	KindCircle    Kind = "circle"
	KindBox       Kind = "box"
	KindFrame     Kind = "frame"
	KindImage     Kind = "image"
)

// Kinds lists every supported kind in palette order.
var Kinds = []Kind{
	KindPage, KindSection, KindContainer, KindText, KindButton, KindGrid,
	KindRectangle, KindCircle, KindBox, KindFrame, KindImage,
}

// Valid reports whether k is one of the known kinds.
func (k Kind) Valid() bool {
	for _, c := range Kinds {
		if c == k {
			return true
		}
	}
	return false
}

// IsContainer reports whether nodes of this kind accept new children from the palette.
func (k Kind) IsContainer() bool {
	switch k {
	case KindPage, KindSection, KindContainer, KindGrid, KindBox, KindFrame:
		return true
	}
	return false
}

// Style holds presentation attributes. The layout fields are typed because the
// engine reads and writes them; everything else goes to Extra.
// Width/Height of 0 mean "auto".
type Style struct {
	Display  string            `json:"display,omitempty"`
	Position string            `json:"position,omitempty"`
	Left     float64           `json:"left,omitempty"`
	Top      float64           `json:"top,omitempty"`
	Width    float64           `json:"width,omitempty"`
	Height   float64           `json:"height,omitempty"`
	Extra    map[string]string `json:"extra,omitempty"`
}

// Hidden reports whether the style removes the node from layout.
func (s Style) Hidden() bool { return s.Display == DisplayNone }

// Clone returns a copy that shares nothing with s.
func (s Style) Clone() Style {
	out := s
	if s.Extra != nil {
		out.Extra = make(map[string]string, len(s.Extra))
		for k, v := range s.Extra {
			out.Extra[k] = v
		}
	}
	return out
}

// Equal reports whether s and o describe the same style. A nil and an empty
// Extra are the same.
func (s Style) Equal(o Style) bool {
	return s.Display == o.Display && s.Position == o.Position &&
		s.Left == o.Left && s.Top == o.Top && s.Width == o.Width && s.Height == o.Height &&
		maps.Equal(s.Extra, o.Extra)
}

// Node is one element of the document tree. A parent exclusively owns its
// children; no node appears under two parents.
type Node struct {
	ID         string  `json:"id"`
	Kind       Kind    `json:"type"`
	Name       string  `json:"name"`
	Props      Props   `json:"props,omitempty"`
	Style      Style   `json:"style"`
	Children   []*Node `json:"children,omitempty"`
	IsExpanded bool    `json:"isExpanded,omitempty"`
	IsLocked   bool    `json:"isLocked,omitempty"`
}

// ShallowCopy copies n's fields but shares its children slice backing array,
// props and style maps. Callers replacing a child must copy Children first.
func (n *Node) ShallowCopy() *Node {
	cp := *n
	return &cp
}

// Clone deep-copies n and its whole subtree, keeping ids.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	cp := &Node{
		ID:         n.ID,
		Kind:       n.Kind,
		Name:       n.Name,
		Props:      n.Props.Clone(),
		Style:      n.Style.Clone(),
		IsExpanded: n.IsExpanded,
		IsLocked:   n.IsLocked,
	}
	if len(n.Children) > 0 {
		cp.Children = make([]*Node, len(n.Children))
		for i, c := range n.Children {
			cp.Children[i] = c.Clone()
		}
	}
	return cp
}

// Forest is the ordered top-level sequence of nodes.
type Forest []*Node

// Clone deep-copies every tree of the forest.
func (f Forest) Clone() Forest {
	if f == nil {
		return nil
	}
	out := make(Forest, len(f))
	for i, n := range f {
		out[i] = n.Clone()
	}
	return out
}

// Settings are the project-wide options captured together with the forest.
type Settings struct {
	ProjectName  string            `json:"projectName" yaml:"project_name"`
	Theme        string            `json:"theme" yaml:"theme"`
	CanvasWidth  float64           `json:"canvasWidth" yaml:"canvas_width"`
	CanvasHeight float64           `json:"canvasHeight" yaml:"canvas_height"`
	GridSize     float64           `json:"gridSize" yaml:"grid_size"`
	SnapToGrid   bool              `json:"snapToGrid" yaml:"snap_to_grid"`
	Extra        map[string]string `json:"extra,omitempty" yaml:"extra,omitempty"`
}

// DefaultSettings returns the settings of a fresh document.
func DefaultSettings() Settings {
	return Settings{
		ProjectName:  "Untitled",
		Theme:        "light",
		CanvasWidth:  1440,
		CanvasHeight: 900,
		GridSize:     8,
	}
}

// Clone returns a copy that shares nothing with s.
func (s Settings) Clone() Settings {
	out := s
	if s.Extra != nil {
		out.Extra = make(map[string]string, len(s.Extra))
		for k, v := range s.Extra {
			out.Extra[k] = v
		}
	}
	return out
}

// Equal reports whether s and o hold the same settings. A nil and an empty
// Extra are the same.
func (s Settings) Equal(o Settings) bool {
	return s.ProjectName == o.ProjectName && s.Theme == o.Theme &&
		s.CanvasWidth == o.CanvasWidth && s.CanvasHeight == o.CanvasHeight &&
		s.GridSize == o.GridSize && s.SnapToGrid == o.SnapToGrid &&
		maps.Equal(s.Extra, o.Extra)
}
