/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package editor

import (
	"strings"

	"pagebuilder/internal/domain"
)

// template is the starting point for a freshly added element of one kind.
type template struct {
	props domain.Props
	style domain.Style
}

var templates = map[domain.Kind]template{
	domain.KindPage: {
		style: domain.Style{Display: domain.DisplayFlex, Position: "relative", Width: 1440, Height: 900,
			Extra: map[string]string{"flexDirection": "column"}},
	},
	domain.KindSection: {
		style: domain.Style{Display: "flex", Position: "relative", Height: 400,
			Extra: map[string]string{"flexDirection": "column", "padding": "40px"}},
	},
	domain.KindContainer: {
		style: domain.Style{Display: "flex", Position: "relative", Width: 960,
			Extra: map[string]string{"gap": "16px", "margin": "0 auto"}},
	},
	domain.KindText: {
		props: domain.Props{"text": "Text"},
		style: domain.Style{Position: "absolute", Width: 200, Height: 40,
			Extra: map[string]string{"fontSize": "16px"}},
	},
	domain.KindButton: {
		props: domain.Props{"label": "Button", "href": ""},
		style: domain.Style{Display: "inline-flex", Position: "absolute", Width: 120, Height: 40,
			Extra: map[string]string{"borderRadius": "6px", "background": "#2563eb", "color": "#ffffff"}},
	},
	domain.KindGrid: {
		props: domain.Props{"columns": float64(3)},
		style: domain.Style{Display: "grid", Position: "relative", Height: 300,
			Extra: map[string]string{"gridTemplateColumns": "repeat(3, 1fr)", "gap": "16px"}},
	},
	domain.KindRectangle: {
		style: domain.Style{Position: "absolute", Width: 160, Height: 100,
			Extra: map[string]string{"background": "#e5e7eb"}},
	},
	domain.KindCircle: {
		style: domain.Style{Position: "absolute", Width: 100, Height: 100,
			Extra: map[string]string{"background": "#e5e7eb", "borderRadius": "50%"}},
	},
	domain.KindBox: {
		style: domain.Style{Display: "block", Position: "absolute", Width: 200, Height: 200,
			Extra: map[string]string{"border": "1px solid #d1d5db"}},
	},
	domain.KindFrame: {
		style: domain.Style{Display: "block", Position: "absolute", Width: 375, Height: 667,
			Extra: map[string]string{"overflow": "hidden"}},
	},
	domain.KindImage: {
		props: domain.Props{"src": "", "alt": ""},
		style: domain.Style{Position: "absolute", Width: 240, Height: 160,
			Extra: map[string]string{"objectFit": "cover"}},
	},
}

// Overrides customise AddElement. Zero fields keep the kind's defaults.
type Overrides struct {
	// ParentID places the element inside an explicit parent instead of the
	// selection or the active page.
	ParentID string
	Name     string
	Props    domain.Props
	Style    StylePatch
}

// kindTitle renders a kind for names and history labels ("rectangle" -> "Rectangle").
func kindTitle(k domain.Kind) string {
	s := string(k)
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// StylePatch updates selected style fields. Nil pointers leave a field alone;
// an empty string in Extra deletes that key.
type StylePatch struct {
	Display  *string
	Position *string
	Left     *float64
	Top      *float64
	Width    *float64
	Height   *float64
	Extra    map[string]string
}

// Apply returns a copy of s with the patch applied.
func (p StylePatch) Apply(s domain.Style) domain.Style {
	out := s.Clone()
	if p.Display != nil {
		out.Display = *p.Display
	}
	if p.Position != nil {
		out.Position = *p.Position
	}
	if p.Left != nil {
		out.Left = *p.Left
	}
	if p.Top != nil {
		out.Top = *p.Top
	}
	if p.Width != nil {
		out.Width = *p.Width
	}
	if p.Height != nil {
		out.Height = *p.Height
	}
	for k, v := range p.Extra {
		if v == "" {
			delete(out.Extra, k)
			continue
		}
		if out.Extra == nil {
			out.Extra = map[string]string{}
		}
		out.Extra[k] = v
	}
	if len(out.Extra) == 0 {
		out.Extra = nil
	}
	return out
}

// SettingsPatch updates selected project settings.
type SettingsPatch struct {
	ProjectName  *string
	Theme        *string
	CanvasWidth  *float64
	CanvasHeight *float64
	GridSize     *float64
	SnapToGrid   *bool
	Extra        map[string]string
}

// Apply returns a copy of s with the patch applied.
func (p SettingsPatch) Apply(s domain.Settings) domain.Settings {
	out := s.Clone()
	if p.ProjectName != nil {
		out.ProjectName = *p.ProjectName
	}
	if p.Theme != nil {
		out.Theme = *p.Theme
	}
	if p.CanvasWidth != nil {
		out.CanvasWidth = *p.CanvasWidth
	}
	if p.CanvasHeight != nil {
		out.CanvasHeight = *p.CanvasHeight
	}
	if p.GridSize != nil {
		out.GridSize = *p.GridSize
	}
	if p.SnapToGrid != nil {
		out.SnapToGrid = *p.SnapToGrid
	}
	for k, v := range p.Extra {
		if v == "" {
			delete(out.Extra, k)
			continue
		}
		if out.Extra == nil {
			out.Extra = map[string]string{}
		}
		out.Extra[k] = v
	}
	if len(out.Extra) == 0 {
		out.Extra = nil
	}
	return out
}

// Ptr is a convenience for building patches.
func Ptr[T any](v T) *T { return &v }
