/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package editor

import "strings"

// KeyEvent is a key press as delivered by the host. Key uses DOM-style names
// ("z", "Delete", "ArrowLeft", ...). Editable is set when focus is in a text
// field, where shortcuts must not fire.
type KeyEvent struct {
	Key      string
	Ctrl     bool
	Meta     bool
	Shift    bool
	Editable bool
}

// HandleKey runs the shortcut bound to ev and reports whether one matched.
func (e *Editor) HandleKey(ev KeyEvent) bool {
	if ev.Editable {
		return false
	}
	mod := ev.Ctrl || ev.Meta
	switch key := strings.ToLower(ev.Key); {
	case mod && key == "z" && ev.Shift, mod && key == "y":
		e.Redo()
		return true
	case mod && key == "z":
		e.Undo()
		return true
	case mod:
		return false
	case key == "delete" || key == "backspace":
		e.DeleteSelection()
		return true
	}

	step := e.opts.NudgeStep
	if ev.Shift {
		step = e.opts.NudgeStepLarge
	}
	switch ev.Key {
	case "ArrowLeft":
		e.MoveSelection(-step, 0)
	case "ArrowRight":
		e.MoveSelection(step, 0)
	case "ArrowUp":
		e.MoveSelection(0, -step)
	case "ArrowDown":
		e.MoveSelection(0, step)
	default:
		return false
	}
	return true
}
