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
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"gopkg.in/yaml.v3"

	"pagebuilder/internal/config"
	"pagebuilder/internal/crash"
	"pagebuilder/internal/editor"
	applog "pagebuilder/internal/log"
	"pagebuilder/internal/version"
)

func usage() {
	fmt.Println("PageBuilder: interactive page structure editor")
	fmt.Printf("Version: %s\n", version.String())
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  pagebuilder [repl]                 Start the interactive editor")
	fmt.Println("  pagebuilder run <file>             Execute editor commands from <file>")
	fmt.Println("  pagebuilder config                 Print the effective configuration")
	fmt.Println("  pagebuilder config set-key <key>   Store the assistant API key in the OS keychain")
	fmt.Println("  pagebuilder config forget-key      Remove the stored assistant API key")
	fmt.Println("  pagebuilder version|-v|--version   Show version")
}

func main() {
	cfg, apiKey, cfgErr := config.Load()
	applog.Init(logOptions(cfg.Logging))
	l := applog.WithComponent("cli")
	if cfgErr != nil {
		l.Warn("configuration not loaded, using defaults", slog.Any("err", cfgErr))
	}

	ed := editor.New(
		editor.WithConfig(cfg.Editor),
		editor.WithAssistant(cfg.Assistant, apiKey != ""),
		editor.WithLogger(applog.WithComponent("editor")),
	)
	defer crash.Recover(ed)
	defer func() { _ = ed.Close() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	args := os.Args
	l.Debug("start", slog.Int("args", len(args)), slog.Any("assistant", ed.Assistant()))
	cmd := "repl"
	if len(args) > 1 {
		cmd = args[1]
	}
	switch cmd {
	case "version", "--version", "-v":
		fmt.Println("PageBuilder")
		fmt.Println(version.String())
	case "repl":
		fmt.Println("PageBuilder REPL")
		fmt.Println("Type 'help' for available commands, 'quit' to exit")
		fmt.Println()
		r := newREPL(ed, os.Stdin, os.Stdout)
		r.prompt = "pagebuilder> "
		r.Run(ctx)
	case "run":
		if len(args) < 3 {
			fmt.Println("run requires <file>")
			usage()
			os.Exit(2)
		}
		f, err := os.Open(args[2])
		if err != nil {
			l.Error("open script failed", slog.Any("err", err))
			fmt.Println("Error:", err)
			os.Exit(1)
		}
		defer func() { _ = f.Close() }()
		r := newREPL(ed, f, os.Stdout)
		r.echo = true
		r.Run(ctx)
	case "config":
		if err := runConfig(cfg, apiKey, args[2:]); err != nil {
			l.Error("config command failed", slog.Any("err", err))
			fmt.Println("Error:", err)
			os.Exit(1)
		}
	default:
		usage()
		os.Exit(2)
	}
}

func logOptions(c config.LoggingConfig) applog.Options {
	return applog.Options{Level: c.Level, Format: c.Format, AddSource: c.Source, File: c.File}
}

func runConfig(cfg config.AppConfig, apiKey string, args []string) error {
	if len(args) == 0 {
		path, _ := config.ConfigPath()
		fmt.Println("# file:", path)
		w := bufio.NewWriter(os.Stdout)
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(cfg); err != nil {
			return err
		}
		if err := enc.Close(); err != nil {
			return err
		}
		if err := w.Flush(); err != nil {
			return err
		}
		if apiKey != "" {
			fmt.Println("# assistant API key: stored in keychain")
		}
		return nil
	}
	switch args[0] {
	case "set-key":
		if len(args) < 2 || strings.TrimSpace(args[1]) == "" {
			return fmt.Errorf("set-key requires <key>")
		}
		if err := config.Save(cfg, strings.TrimSpace(args[1])); err != nil {
			return err
		}
		fmt.Println("Assistant API key stored.")
	case "forget-key":
		if err := config.ForgetAPIKey(); err != nil {
			return err
		}
		fmt.Println("Assistant API key removed.")
	default:
		return fmt.Errorf("unknown config command %q", args[0])
	}
	return nil
}
