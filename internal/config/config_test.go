/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/zalando/go-keyring"
)

func TestMain(m *testing.M) {
	// in-memory keyring so tests never touch the OS keychain
	keyring.MockInit()
	os.Exit(m.Run())
}

func useTempConfig(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	t.Setenv(EnvConfigPath, path)
	return path
}

func TestLoadDefaultsWhenMissing(t *testing.T) {
	useTempConfig(t)
	cfg, key, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Editor.HistoryLimit != 50 || cfg.Editor.NudgeStepLarge != 10 {
		t.Fatalf("unexpected defaults: %+v", cfg.Editor)
	}
	if key != "" {
		t.Fatalf("expected no api key, got %q", key)
	}
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	useTempConfig(t)
	cfg := Defaults()
	cfg.Editor.HistoryLimit = 80
	cfg.Editor.Theme = "dark"
	cfg.Assistant.Endpoint = "https://assistant.example.test"
	if err := Save(cfg, "sk-test"); err != nil {
		t.Fatalf("Save() error: %v", err)
	}
	got, key, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if got.Editor.HistoryLimit != 80 || got.Editor.Theme != "dark" || got.Assistant.Endpoint != "https://assistant.example.test" {
		t.Fatalf("round trip mismatch: %+v", got)
	}
	if key != "sk-test" {
		t.Fatalf("api key = %q", key)
	}
	if err := ForgetAPIKey(); err != nil {
		t.Fatalf("ForgetAPIKey: %v", err)
	}
	if err := ForgetAPIKey(); err != nil {
		t.Fatalf("second ForgetAPIKey should be a no-op: %v", err)
	}
	if _, key, _ = Load(); key != "" {
		t.Fatalf("api key should be gone, got %q", key)
	}
}

func TestKeyIsNotWrittenToFile(t *testing.T) {
	path := useTempConfig(t)
	t.Cleanup(func() { _ = ForgetAPIKey() })
	if err := Save(Defaults(), "sk-secret"); err != nil {
		t.Fatalf("Save() error: %v", err)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(b) == 0 || strings.Contains(string(b), "sk-secret") {
		t.Fatalf("config file leaks the key or is empty: %s", b)
	}
}

func TestLoadFileMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("editor: [unclosed"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFile(path); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestEnvOverridesEditor(t *testing.T) {
	useTempConfig(t)
	t.Setenv(EnvHistoryLimit, "12")
	t.Setenv(EnvDuplicateOffset, "5.5")
	t.Setenv(EnvTheme, "DARK")
	cfg, _, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Editor.HistoryLimit != 12 || cfg.Editor.DuplicateOffset != 5.5 || cfg.Editor.Theme != "dark" {
		t.Fatalf("env overrides not applied: %+v", cfg.Editor)
	}
	if env, ok := EnvOverrideFor("editor.history_limit"); !ok || env != EnvHistoryLimit {
		t.Fatalf("EnvOverrideFor = %q %v", env, ok)
	}
	if _, ok := EnvOverrideFor("assistant.model"); ok {
		t.Fatalf("assistant.model is not overridden")
	}
}

func TestEnvOverridesIgnoreGarbage(t *testing.T) {
	useTempConfig(t)
	t.Setenv(EnvHistoryLimit, "lots")
	cfg, _, _ := Load()
	if cfg.Editor.HistoryLimit != 50 {
		t.Fatalf("garbage history limit should be ignored, got %d", cfg.Editor.HistoryLimit)
	}
}

func TestMergeIncludesLogging(t *testing.T) {
	dst := Defaults()
	src := Defaults()
	src.Logging.Level = " DEBUG "
	src.Logging.Format = "json"
	src.Logging.Source = true
	src.Logging.File = "/tmp/pb.log"
	mergeInto(&dst, &src)
	if dst.Logging.Level != "debug" || dst.Logging.Format != "json" || !dst.Logging.Source || dst.Logging.File != "/tmp/pb.log" {
		t.Fatalf("logging fields not merged correctly: %#v", dst.Logging)
	}
}

func TestEnvOverridesLogging(t *testing.T) {
	useTempConfig(t)
	t.Setenv(EnvLogLevel, "error")
	t.Setenv(EnvLogFormat, "json")
	t.Setenv(EnvLogSource, "1")
	t.Setenv(EnvLogFile, "X:/pb.log")
	cfg, _, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Logging.Level != "error" || cfg.Logging.Format != "json" || !cfg.Logging.Source || cfg.Logging.File != "X:/pb.log" {
		t.Fatalf("env overrides not applied to logging: %#v", cfg.Logging)
	}
}
