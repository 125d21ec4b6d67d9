/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package config loads the user-editable editor configuration.
//
// The YAML file lives in the per-user config directory. Environment variables
// are read-only overrides applied at runtime. Secrets (the assistant API key)
// are never written to the file; they live in the OS keyring.
//
// config_version: bump when the structure changes in a backward-incompatible way.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/zalando/go-keyring"
	"gopkg.in/yaml.v3"
)

type EditorConfig struct {
	// HistoryLimit caps the undo stack.
	HistoryLimit    int     `yaml:"history_limit"`
	DuplicateOffset float64 `yaml:"duplicate_offset"`
	NudgeStep       float64 `yaml:"nudge_step"`
	NudgeStepLarge  float64 `yaml:"nudge_step_large"`
	ProjectName     string  `yaml:"project_name"`
	Theme           string  `yaml:"theme"` // "light" | "dark"
}

// AssistantConfig describes the content-generation service the editor hands
// elements to. The API key lives in the OS keychain.
type AssistantConfig struct {
	Endpoint string `yaml:"endpoint"`
	Model    string `yaml:"model"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Source bool   `yaml:"source"`
	File   string `yaml:"file"`
}

type AppConfig struct {
	ConfigVersion int             `yaml:"config_version"`
	Editor        EditorConfig    `yaml:"editor"`
	Assistant     AssistantConfig `yaml:"assistant"`
	Logging       LoggingConfig   `yaml:"logging"`
}

// Defaults returns the application defaults.
func Defaults() AppConfig {
	return AppConfig{
		ConfigVersion: 1,
		Editor: EditorConfig{
			HistoryLimit:    50,
			DuplicateOffset: 20,
			NudgeStep:       1,
			NudgeStepLarge:  10,
			ProjectName:     "Untitled",
			Theme:           "light",
		},
		Assistant: AssistantConfig{Endpoint: "", Model: ""},
		Logging:   LoggingConfig{Level: "info", Format: "console", Source: false, File: ""},
	}
}

// Env var names used as overrides.
const (
	EnvConfigPath         = "PB_CONFIG"
	EnvHistoryLimit       = "PB_HISTORY_LIMIT"
	EnvDuplicateOffset    = "PB_DUPLICATE_OFFSET"
	EnvTheme              = "PB_THEME"
	EnvAssistantEndpoint  = "PB_ASSISTANT_ENDPOINT"
	EnvAssistantModel     = "PB_ASSISTANT_MODEL"
	EnvLogLevel           = "PB_LOG_LEVEL"
	EnvLogFormat          = "PB_LOG_FORMAT"
	EnvLogSource          = "PB_LOG_SOURCE"
	EnvLogFile            = "PB_LOG_FILE"
	keyringService        = "PageBuilder"
	keyringAssistantToken = "assistant_api_key"
)

// TokenStore abstracts the keyring, so we can stub in tests.
type TokenStore interface {
	Get(service, key string) (string, error)
	Set(service, key, value string) error
	Delete(service, key string) error
}

// osKeyring implements TokenStore using github.com/zalando/go-keyring.
type osKeyring struct{}

func (osKeyring) Get(service, key string) (string, error) { return keyring.Get(service, key) }
func (osKeyring) Set(service, key, value string) error    { return keyring.Set(service, key, value) }
func (osKeyring) Delete(service, key string) error        { return keyring.Delete(service, key) }

var tokenStore TokenStore = osKeyring{}

// ConfigPath returns the per-user config file path. PB_CONFIG wins when set.
func ConfigPath() (string, error) {
	if p := strings.TrimSpace(os.Getenv(EnvConfigPath)); p != "" {
		return p, nil
	}
	var base string
	switch runtime.GOOS {
	case "windows":
		base = os.Getenv("AppData")
		if base == "" { // fallback
			base = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		base = filepath.Join(base, "PageBuilder")
	case "darwin":
		base = filepath.Join(os.Getenv("HOME"), "Library", "Application Support", "PageBuilder")
	default: // linux and others
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			base = filepath.Join(xdg, "pagebuilder")
		} else {
			base = filepath.Join(os.Getenv("HOME"), ".config", "pagebuilder")
		}
	}
	if base == "" {
		return "", errors.New("cannot resolve config directory")
	}
	return filepath.Join(base, "config.yaml"), nil
}

// Load reads the user config file (if present), applies defaults and merges
// environment overrides. The assistant API key is read from the keyring and
// returned separately; a missing key is not an error.
func Load() (AppConfig, string, error) {
	path, err := ConfigPath()
	if err != nil {
		return Defaults(), "", err
	}
	cfg, err := LoadFile(path)
	if err != nil {
		return cfg, "", err
	}
	applyEnvOverrides(&cfg)
	// a missing or unavailable keyring means running without a key
	tok, _ := tokenStore.Get(keyringService, keyringAssistantToken)
	return cfg, tok, nil
}

// LoadFile reads path on top of the defaults. A missing file yields the
// defaults; a malformed one is reported.
func LoadFile(path string) (AppConfig, error) {
	cfg := Defaults()
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	var fileCfg AppConfig
	if err := yaml.Unmarshal(data, &fileCfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	mergeInto(&cfg, &fileCfg)
	return cfg, nil
}

// Save writes the user config YAML and stores the API key in the OS keyring
// (if non-empty).
func Save(cfg AppConfig, apiKey string) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return err
	}
	if apiKey != "" {
		if err := tokenStore.Set(keyringService, keyringAssistantToken, apiKey); err != nil {
			return fmt.Errorf("store api key: %w", err)
		}
	}
	return nil
}

// ForgetAPIKey removes the assistant key from the keyring.
func ForgetAPIKey() error {
	err := tokenStore.Delete(keyringService, keyringAssistantToken)
	if errors.Is(err, keyring.ErrNotFound) {
		return nil
	}
	return err
}

func mergeInto(dst *AppConfig, src *AppConfig) {
	if src.ConfigVersion != 0 {
		dst.ConfigVersion = src.ConfigVersion
	}
	if src.Editor.HistoryLimit > 0 {
		dst.Editor.HistoryLimit = src.Editor.HistoryLimit
	}
	if src.Editor.DuplicateOffset != 0 {
		dst.Editor.DuplicateOffset = src.Editor.DuplicateOffset
	}
	if src.Editor.NudgeStep > 0 {
		dst.Editor.NudgeStep = src.Editor.NudgeStep
	}
	if src.Editor.NudgeStepLarge > 0 {
		dst.Editor.NudgeStepLarge = src.Editor.NudgeStepLarge
	}
	if strings.TrimSpace(src.Editor.ProjectName) != "" {
		dst.Editor.ProjectName = strings.TrimSpace(src.Editor.ProjectName)
	}
	if strings.TrimSpace(src.Editor.Theme) != "" {
		dst.Editor.Theme = strings.ToLower(strings.TrimSpace(src.Editor.Theme))
	}
	if strings.TrimSpace(src.Assistant.Endpoint) != "" {
		dst.Assistant.Endpoint = strings.TrimSpace(src.Assistant.Endpoint)
	}
	if strings.TrimSpace(src.Assistant.Model) != "" {
		dst.Assistant.Model = strings.TrimSpace(src.Assistant.Model)
	}
	// logging
	if strings.TrimSpace(src.Logging.Level) != "" {
		dst.Logging.Level = strings.ToLower(strings.TrimSpace(src.Logging.Level))
	}
	if strings.TrimSpace(src.Logging.Format) != "" {
		dst.Logging.Format = strings.ToLower(strings.TrimSpace(src.Logging.Format))
	}
	dst.Logging.Source = src.Logging.Source
	if strings.TrimSpace(src.Logging.File) != "" {
		dst.Logging.File = strings.TrimSpace(src.Logging.File)
	}
}

func applyEnvOverrides(cfg *AppConfig) {
	if v := strings.TrimSpace(os.Getenv(EnvHistoryLimit)); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Editor.HistoryLimit = n
		}
	}
	if v := strings.TrimSpace(os.Getenv(EnvDuplicateOffset)); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Editor.DuplicateOffset = f
		}
	}
	if v := strings.TrimSpace(os.Getenv(EnvTheme)); v != "" {
		cfg.Editor.Theme = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvAssistantEndpoint)); v != "" {
		cfg.Assistant.Endpoint = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvAssistantModel)); v != "" {
		cfg.Assistant.Model = v
	}
	// logging overrides
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFormat)); v != "" {
		cfg.Logging.Format = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogSource)); v != "" {
		cfg.Logging.Source = parseBool(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFile)); v != "" {
		cfg.Logging.File = v
	}
}

func parseBool(v string) bool {
	lv := strings.ToLower(strings.TrimSpace(v))
	return lv == "1" || lv == "true" || lv == "on" || lv == "yes"
}

// EnvOverrideFor returns the env var name if the field is overridden by environment variables.
func EnvOverrideFor(key string) (string, bool) {
	names := map[string]string{
		"editor.history_limit":    EnvHistoryLimit,
		"editor.duplicate_offset": EnvDuplicateOffset,
		"editor.theme":            EnvTheme,
		"assistant.endpoint":      EnvAssistantEndpoint,
		"assistant.model":         EnvAssistantModel,
		"logging.level":           EnvLogLevel,
		"logging.format":          EnvLogFormat,
		"logging.source":          EnvLogSource,
		"logging.file":            EnvLogFile,
	}
	env, ok := names[key]
	if !ok || os.Getenv(env) == "" {
		return "", false
	}
	return env, true
}
