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
	"fmt"
	"reflect"
)

// ErrUnsupportedValue is returned for prop values that are not plain data.
var ErrUnsupportedValue = errors.New("unsupported prop value")

// Props carries kind-specific content (text, label, src, animation, ...).
// Values must be plain data: nil, string, bool, float64, []any or
// map[string]any of the same. Integers are accepted and stored as float64.
type Props map[string]any

// Clone deep-copies the bag.
func (p Props) Clone() Props {
	if p == nil {
		return nil
	}
	out := make(Props, len(p))
	for k, v := range p {
		out[k] = cloneValue(v)
	}
	return out
}

// Equal reports whether p and o hold the same values. A nil and an empty bag
// are the same.
func (p Props) Equal(o Props) bool {
	if len(p) == 0 && len(o) == 0 {
		return true
	}
	return reflect.DeepEqual(p, o)
}

// String returns the string value at key, or "".
func (p Props) String(key string) string {
	if s, ok := p[key].(string); ok {
		return s
	}
	return ""
}

// Merge returns a copy of p with every key of patch applied. A nil value in the
// patch deletes the key.
func (p Props) Merge(patch Props) Props {
	out := p.Clone()
	if out == nil {
		out = Props{}
	}
	for k, v := range patch {
		if v == nil {
			delete(out, k)
			continue
		}
		out[k] = cloneValue(normalizeValue(v))
	}
	return out
}

// Validate checks every value of the bag.
func (p Props) Validate() error {
	for k, v := range p {
		if err := ValidateValue(v); err != nil {
			return fmt.Errorf("prop %q: %w", k, err)
		}
	}
	return nil
}

// ValidateValue reports whether v is plain data.
func ValidateValue(v any) error {
	switch t := v.(type) {
	case nil, string, bool, float64, float32, int, int32, int64:
		return nil
	case []any:
		for i, e := range t {
			if err := ValidateValue(e); err != nil {
				return fmt.Errorf("[%d]: %w", i, err)
			}
		}
		return nil
	case map[string]any:
		for k, e := range t {
			if err := ValidateValue(e); err != nil {
				return fmt.Errorf("%s: %w", k, err)
			}
		}
		return nil
	default:
		return fmt.Errorf("%w: %T", ErrUnsupportedValue, v)
	}
}

func normalizeValue(v any) any {
	switch t := v.(type) {
	case int:
		return float64(t)
	case int32:
		return float64(t)
	case int64:
		return float64(t)
	case float32:
		return float64(t)
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = normalizeValue(e)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = normalizeValue(e)
		}
		return out
	}
	return v
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = cloneValue(e)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = cloneValue(e)
		}
		return out
	}
	return v
}
