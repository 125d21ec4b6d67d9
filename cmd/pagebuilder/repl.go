/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"pagebuilder/internal/domain"
	"pagebuilder/internal/editor"
	applog "pagebuilder/internal/log"
	"pagebuilder/internal/tree"
	"pagebuilder/internal/undo"
	"pagebuilder/internal/version"
)

// REPL holds the state of the interactive session.
type REPL struct {
	ed     *editor.Editor
	reader *bufio.Reader
	out    io.Writer
	log    *slog.Logger
	prompt string
	// echo prints each command before running it (script mode).
	echo bool
}

func newREPL(ed *editor.Editor, in io.Reader, out io.Writer) *REPL {
	return &REPL{ed: ed, reader: bufio.NewReader(in), out: out, log: applog.WithComponent("repl")}
}

func (r *REPL) printf(format string, a ...any) { _, _ = fmt.Fprintf(r.out, format, a...) }

// Run reads commands until quit, end of input or ctx cancellation.
func (r *REPL) Run(ctx context.Context) {
	for ctx.Err() == nil {
		if r.prompt != "" {
			r.printf("%s", r.prompt)
		}
		input, err := r.reader.ReadString('\n')
		input = strings.TrimSpace(input)
		if input != "" && !strings.HasPrefix(input, "#") {
			if r.echo {
				r.printf("> %s\n", input)
			}
			if !r.handleCommand(ctx, input) {
				return
			}
		}
		if err != nil {
			if r.prompt != "" {
				r.printf("\nGoodbye!\n")
			}
			return
		}
	}
}

func (r *REPL) handleCommand(ctx context.Context, input string) bool {
	parts := strings.Fields(input)
	if len(parts) == 0 {
		return true
	}
	cmd := strings.ToLower(parts[0])
	args := parts[1:]
	r.log.Debug("command", slog.String("cmd", cmd), slog.Int("args", len(args)))

	switch cmd {
	case "help":
		r.printHelp()
	case "quit", "exit":
		r.printf("Goodbye!\n")
		return false
	case "add":
		r.cmdAdd(args)
	case "del", "delete":
		r.cmdDelete(args)
	case "sel", "select":
		r.cmdSelect(args, false)
	case "msel":
		r.cmdSelect(args, true)
	case "move":
		r.cmdMove(args)
	case "dup":
		r.report(len(r.ed.DuplicateSelection()) > 0, "duplicated %v", r.ed.SelectedIDs())
	case "mv":
		r.cmdReorder(args)
	case "rename":
		r.cmdRename(args)
	case "lock":
		r.withID(args, func(id string) { r.report(r.ed.ToggleLock(id), "toggled lock of %s", id) })
	case "hide":
		r.withID(args, func(id string) { r.report(r.ed.ToggleVisibility(id), "toggled visibility of %s", id) })
	case "expand":
		r.withID(args, func(id string) { r.report(r.ed.ToggleExpand(id), "toggled expansion of %s", id) })
	case "prop":
		r.cmdProp(args)
	case "style":
		r.cmdStyle(args)
	case "set":
		r.cmdSettings(args)
	case "undo":
		r.report(r.ed.Undo(), "undone")
	case "redo":
		r.report(r.ed.Redo(), "redone")
	case "history":
		r.cmdHistory()
	case "jump":
		r.withIndex(args, func(i int) { r.report(r.ed.RestoreHistory(i), "restored history entry %d", i) })
	case "fjump":
		r.withIndex(args, func(i int) { r.report(r.ed.JumpToFuture(i), "jumped to future entry %d", i) })
	case "clear":
		r.ed.ClearHistory()
		r.printf("history cleared\n")
	case "tree":
		r.cmdTree()
	case "find":
		r.cmdFind(ctx, args)
	case "key":
		r.cmdKey(args)
	case "paste":
		r.cmdPaste(strings.TrimSpace(strings.TrimPrefix(input, parts[0])))
	case "assistant":
		r.cmdAssistant()
	case "version":
		r.printf("PageBuilder %s\n", version.String())
	default:
		r.printf("Unknown command: %s. Type 'help' for available commands.\n", cmd)
	}
	return true
}

func (r *REPL) printHelp() {
	r.printf(`Commands:
  add <kind> [name...]            add an element (kinds: %s)
  del [id]                        delete id, or the selection
  sel <id> | sel                  select id, or clear the selection
  msel <id>                       toggle id in a multi-selection
  move <dx> <dy>                  move the selection
  dup                             duplicate the selection
  mv <id> before|after|inside <target>
  rename <id> <name...>
  lock|hide|expand <id>
  prop <id> key=value...          set props (numbers, true/false, null deletes)
  style <id> key=value...         set style (display, position, left, top, width, height, others)
  set key=value...                project settings (name, theme, width, height, grid, snap)
  undo | redo | history | clear
  jump <i>                        restore past entry i (0 = oldest)
  fjump <i>                       jump to future entry i (0 = nearest)
  tree                            print the document outline
  find <text> | find kind:<kind>  search the document
  key <combo>                     press a shortcut, e.g. ctrl+z, shift+ArrowLeft, Delete
  paste [parent] <json>           insert an element fragment
  assistant                       show the fragment source
  version | help | quit
`, kindList())
}

func kindList() string {
	names := make([]string, len(domain.Kinds))
	for i, k := range domain.Kinds {
		names[i] = string(k)
	}
	return strings.Join(names, ", ")
}

// report prints msg when the command changed something.
func (r *REPL) report(changed bool, format string, a ...any) {
	if !changed {
		r.printf("nothing changed\n")
		return
	}
	r.printf(format+"\n", a...)
}

func (r *REPL) withID(args []string, fn func(id string)) {
	if len(args) < 1 {
		r.printf("id required\n")
		return
	}
	fn(args[0])
}

func (r *REPL) withIndex(args []string, fn func(i int)) {
	if len(args) < 1 {
		r.printf("index required\n")
		return
	}
	i, err := strconv.Atoi(args[0])
	if err != nil {
		r.printf("invalid index %q\n", args[0])
		return
	}
	fn(i)
}

func (r *REPL) cmdAdd(args []string) {
	if len(args) < 1 {
		r.printf("kind required (%s)\n", kindList())
		return
	}
	id, err := r.ed.AddElement(domain.Kind(strings.ToLower(args[0])), editor.Overrides{Name: strings.Join(args[1:], " ")})
	if err != nil {
		r.printf("Error: %v\n", err)
		return
	}
	r.printf("added %s\n", id)
}

func (r *REPL) cmdDelete(args []string) {
	if len(args) == 0 {
		r.report(r.ed.DeleteSelection(), "deleted selection")
		return
	}
	if err := r.ed.DeleteElement(args[0]); err != nil {
		r.printf("Error: %v\n", err)
		return
	}
	r.printf("deleted %s\n", args[0])
}

func (r *REPL) cmdSelect(args []string, multi bool) {
	if len(args) == 0 {
		r.ed.ClearSelection()
		r.printf("selection cleared\n")
		return
	}
	r.ed.Select(args[0], multi)
	r.printf("selected %v\n", r.ed.SelectedIDs())
}

func (r *REPL) cmdMove(args []string) {
	if len(args) < 2 {
		r.printf("move requires <dx> <dy>\n")
		return
	}
	dx, err1 := strconv.ParseFloat(args[0], 64)
	dy, err2 := strconv.ParseFloat(args[1], 64)
	if err1 != nil || err2 != nil {
		r.printf("invalid offsets\n")
		return
	}
	r.report(r.ed.MoveSelection(dx, dy), "moved %v", r.ed.SelectedIDs())
}

func (r *REPL) cmdReorder(args []string) {
	if len(args) < 3 {
		r.printf("mv requires <id> before|after|inside <target>\n")
		return
	}
	pos, err := tree.ParsePosition(args[1])
	if err != nil {
		r.printf("Error: %v\n", err)
		return
	}
	r.report(r.ed.Reorder(args[0], args[2], pos), "moved %s %s %s", args[0], pos, args[2])
}

func (r *REPL) cmdRename(args []string) {
	if len(args) < 2 {
		r.printf("rename requires <id> <name>\n")
		return
	}
	r.report(r.ed.Rename(args[0], strings.Join(args[1:], " ")), "renamed %s", args[0])
}

// parseValue turns a command line token into a prop value.
func parseValue(s string) any {
	switch s {
	case "null":
		return nil
	case "true":
		return true
	case "false":
		return false
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	return s
}

func splitPairs(args []string) (map[string]string, bool) {
	out := make(map[string]string, len(args))
	for _, a := range args {
		k, v, ok := strings.Cut(a, "=")
		if !ok || k == "" {
			return nil, false
		}
		out[k] = v
	}
	return out, true
}

func (r *REPL) cmdProp(args []string) {
	if len(args) < 2 {
		r.printf("prop requires <id> key=value...\n")
		return
	}
	pairs, ok := splitPairs(args[1:])
	if !ok {
		r.printf("expected key=value pairs\n")
		return
	}
	patch := domain.Props{}
	for k, v := range pairs {
		patch[k] = parseValue(v)
	}
	if err := r.ed.UpdateProps(args[0], patch); err != nil {
		r.printf("Error: %v\n", err)
		return
	}
	r.printf("props of %s updated\n", args[0])
}

func (r *REPL) cmdStyle(args []string) {
	if len(args) < 2 {
		r.printf("style requires <id> key=value...\n")
		return
	}
	pairs, ok := splitPairs(args[1:])
	if !ok {
		r.printf("expected key=value pairs\n")
		return
	}
	var p editor.StylePatch
	for k, v := range pairs {
		num := func() *float64 {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				r.printf("%s: %q is not a number\n", k, v)
				return nil
			}
			return &f
		}
		switch k {
		case "display":
			p.Display = editor.Ptr(v)
		case "position":
			p.Position = editor.Ptr(v)
		case "left":
			p.Left = num()
		case "top":
			p.Top = num()
		case "width":
			p.Width = num()
		case "height":
			p.Height = num()
		default:
			if p.Extra == nil {
				p.Extra = map[string]string{}
			}
			p.Extra[k] = v
		}
	}
	r.report(r.ed.UpdateStyle(args[0], p), "style of %s updated", args[0])
}

func (r *REPL) cmdSettings(args []string) {
	pairs, ok := splitPairs(args)
	if !ok || len(pairs) == 0 {
		r.printf("set requires key=value pairs\n")
		return
	}
	var p editor.SettingsPatch
	for k, v := range pairs {
		f, numErr := strconv.ParseFloat(v, 64)
		switch k {
		case "name":
			p.ProjectName = editor.Ptr(v)
		case "theme":
			p.Theme = editor.Ptr(v)
		case "snap":
			p.SnapToGrid = editor.Ptr(v == "true")
		case "width", "height", "grid":
			if numErr != nil {
				r.printf("%s: %q is not a number\n", k, v)
				return
			}
			switch k {
			case "width":
				p.CanvasWidth = &f
			case "height":
				p.CanvasHeight = &f
			default:
				p.GridSize = &f
			}
		default:
			if p.Extra == nil {
				p.Extra = map[string]string{}
			}
			p.Extra[k] = v
		}
	}
	r.report(r.ed.UpdateSettings(p), "settings updated")
}

func (r *REPL) cmdHistory() {
	past, future := r.ed.History(), r.ed.Future()
	if len(past) == 0 && len(future) == 0 {
		r.printf("history is empty\n")
		return
	}
	printEntries := func(title string, es []undo.Entry) {
		r.printf("%s:\n", title)
		for i, e := range es {
			r.printf("  %2d  %s  %s\n", i, e.Timestamp.Format("15:04:05"), e.Action)
		}
	}
	printEntries("past (oldest first)", past)
	printEntries("future (nearest first)", future)
}

func (r *REPL) cmdTree() {
	sel := map[string]bool{}
	for _, id := range r.ed.SelectedIDs() {
		sel[id] = true
	}
	els := r.ed.Elements()
	var show func(nodes []*domain.Node, depth int)
	show = func(nodes []*domain.Node, depth int) {
		for _, n := range nodes {
			var flags []string
			if n.Style.Hidden() {
				flags = append(flags, "hidden")
			}
			if n.IsLocked {
				flags = append(flags, "locked")
			}
			if sel[n.ID] {
				flags = append(flags, "selected")
			}
			suffix := ""
			if len(flags) > 0 {
				suffix = " [" + strings.Join(flags, ", ") + "]"
			}
			r.printf("%s- %s %q (%s)%s\n", strings.Repeat("  ", depth), n.Kind, n.Name, n.ID, suffix)
			if n.IsExpanded {
				show(n.Children, depth+1)
			} else if len(n.Children) > 0 {
				r.printf("%s  ... %d collapsed\n", strings.Repeat("  ", depth), len(n.Children))
			}
		}
	}
	show(els, 0)
	s := r.ed.Settings()
	r.printf("project %q, %d elements, active page %s\n", s.ProjectName, tree.Count(els), r.ed.ActivePageID())
}

func (r *REPL) cmdFind(ctx context.Context, args []string) {
	if len(args) == 0 {
		r.printf("find requires a query\n")
		return
	}
	q := strings.Join(args, " ")
	if kind, ok := strings.CutPrefix(q, "kind:"); ok {
		ids, err := r.ed.FindByKind(ctx, domain.Kind(kind))
		if err != nil {
			r.printf("Error: %v\n", err)
			return
		}
		r.printf("%d match(es): %s\n", len(ids), strings.Join(ids, " "))
		return
	}
	hits, err := r.ed.Search(ctx, q)
	if err != nil {
		r.printf("Error: %v\n", err)
		return
	}
	r.printf("%d match(es)\n", len(hits))
	for _, h := range hits {
		r.printf("  %s %q (%s) page=%s depth=%d\n", h.Kind, h.Name, h.ID, h.PageID, h.Depth)
	}
}

// parseKey reads combos like "ctrl+shift+z" or "ArrowLeft".
func parseKey(combo string) editor.KeyEvent {
	var ev editor.KeyEvent
	parts := strings.Split(combo, "+")
	for _, m := range parts[:len(parts)-1] {
		switch strings.ToLower(m) {
		case "ctrl":
			ev.Ctrl = true
		case "cmd", "meta":
			ev.Meta = true
		case "shift":
			ev.Shift = true
		}
	}
	ev.Key = parts[len(parts)-1]
	return ev
}

func (r *REPL) cmdKey(args []string) {
	if len(args) < 1 {
		r.printf("key requires a combo\n")
		return
	}
	if !r.ed.HandleKey(parseKey(args[0])) {
		r.printf("no binding for %s\n", args[0])
		return
	}
	r.printf("ok\n")
}

func (r *REPL) cmdPaste(rest string) {
	parent := ""
	if rest != "" && rest[0] != '{' && rest[0] != '[' {
		parent, rest, _ = strings.Cut(rest, " ")
		rest = strings.TrimSpace(rest)
	}
	if rest == "" {
		r.printf("paste requires JSON\n")
		return
	}
	ids, err := r.ed.InsertFragment(parent, []byte(rest))
	if err != nil {
		r.printf("Error: %v\n", err)
		return
	}
	r.printf("inserted %s\n", strings.Join(ids, " "))
}

func (r *REPL) cmdAssistant() {
	a := r.ed.Assistant()
	switch {
	case a.Endpoint == "":
		r.printf("assistant: not configured\n")
	case !a.HasKey:
		r.printf("assistant: %s at %s (no API key, run 'pagebuilder config set-key')\n", a.Model, a.Endpoint)
	default:
		r.printf("assistant: %s at %s\n", a.Model, a.Endpoint)
	}
}
