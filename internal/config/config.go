// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"bytes"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/jeranaias/astra-tui/internal/util"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete astra configuration.
type Config struct {
	Backend BackendConfig `toml:"backend"`
	Agent   AgentConfig   `toml:"agent"`
	UI      UIConfig      `toml:"ui"`
	Logging LoggingConfig `toml:"logging"`
}

// BackendConfig contains the Astra backend endpoints.
type BackendConfig struct {
	// APIURL is the base URL of the REST API.
	APIURL string `toml:"api_url"`
	// WSURL is the agent websocket endpoint.
	WSURL string `toml:"ws_url"`
	// TimeoutSecs bounds each REST call.
	TimeoutSecs int `toml:"timeout_secs"`
}

// AgentConfig contains agent addressing and streaming timings.
type AgentConfig struct {
	// Name is sent as agent_name in every envelope.
	Name string `toml:"name"`
	// ChunkIdleMs is the quiet period after which a streamed reply is final.
	ChunkIdleMs int `toml:"chunk_idle_ms"`
	// RefreshDelayMs is how long after a send the thread list is reloaded.
	RefreshDelayMs int `toml:"refresh_delay_ms"`
}

// UIConfig contains terminal UI preferences.
type UIConfig struct {
	// Theme is "dark", "light" or "auto".
	Theme string `toml:"theme"`
	// Markdown renders agent replies through glamour.
	Markdown bool `toml:"markdown"`
	// ThoughtPanel shows the intermediate-notes panel.
	ThoughtPanel bool `toml:"thought_panel"`
}

// LoggingConfig contains log output settings.
type LoggingConfig struct {
	// Level is debug, info, warn or error.
	Level string `toml:"level"`
	// File is the log file path (empty = ~/.astra/astra.log).
	File string `toml:"file"`
}

// ChunkIdle returns the idle window as a duration.
func (a AgentConfig) ChunkIdle() time.Duration {
	return time.Duration(a.ChunkIdleMs) * time.Millisecond
}

// RefreshDelay returns the post-send refresh delay as a duration.
func (a AgentConfig) RefreshDelay() time.Duration {
	return time.Duration(a.RefreshDelayMs) * time.Millisecond
}

// Timeout returns the REST timeout as a duration.
func (b BackendConfig) Timeout() time.Duration {
	return time.Duration(b.TimeoutSecs) * time.Second
}

// =============================================================================
// DEFAULT CONFIGURATION
// =============================================================================

// Defaults used by Default and SetDefaults.
const (
	DefaultAPIURL         = "http://localhost:8000"
	DefaultWSURL          = "ws://localhost:8000/agents/ws"
	DefaultAgentName      = "astra"
	DefaultChunkIdleMs    = 500
	DefaultRefreshDelayMs = 2000
	DefaultTimeoutSecs    = 30
)

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Backend: BackendConfig{
			APIURL:      DefaultAPIURL,
			WSURL:       DefaultWSURL,
			TimeoutSecs: DefaultTimeoutSecs,
		},
		Agent: AgentConfig{
			Name:           DefaultAgentName,
			ChunkIdleMs:    DefaultChunkIdleMs,
			RefreshDelayMs: DefaultRefreshDelayMs,
		},
		UI: UIConfig{
			Theme:        "auto",
			Markdown:     true,
			ThoughtPanel: true,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// Dir returns the astra state directory. ASTRA_HOME overrides ~/.astra.
func Dir() (string, error) {
	if home := os.Getenv("ASTRA_HOME"); home != "" {
		return home, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".astra"), nil
}

// Path returns the path to the TOML config file.
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// StatePath returns the path to the durable key/value database.
func StatePath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "state.db"), nil
}

// LogPath returns the configured log file, or the default under Dir.
func (c *Config) LogPath() (string, error) {
	if c.Logging.File != "" {
		return c.Logging.File, nil
	}
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "astra.log"), nil
}

// EnsureDir creates the state directory if needed.
func EnsureDir() error {
	dir, err := Dir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0700)
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load loads the configuration from the default path, falling back to
// defaults when the file is absent. Environment overrides are applied last.
func Load() (*Config, error) {
	path, err := Path()
	if err != nil {
		return nil, err
	}
	return LoadFromPath(path)
}

// LoadFromPath loads configuration from path. A missing file is not an
// error.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()
	if _, err := os.Stat(path); err == nil {
		if err := LoadTOML(cfg, path); err != nil {
			return nil, err
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to stat config: %w", err)
	}

	cfg.ApplyEnvOverrides()
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadTOML decodes path on top of cfg.
func LoadTOML(cfg *Config, path string) error {
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return fmt.Errorf("failed to decode TOML file: %w", err)
	}
	return nil
}

// =============================================================================
// SAVE FUNCTIONS
// =============================================================================

// Save saves the configuration to the default path.
func Save(cfg *Config) error {
	path, err := Path()
	if err != nil {
		return err
	}
	return SaveTOML(cfg, path)
}

// SaveTOML writes cfg to path with 0600 permissions.
func SaveTOML(cfg *Config, path string) error {
	var buf bytes.Buffer
	buf.WriteString("# astra configuration file\n")
	buf.WriteString("# Generated by astra - edit with care\n\n")

	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := util.AtomicWriteFile(path, buf.Bytes(), 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors is a collection of validation errors.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	msgs := make([]string, 0, len(e))
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

var (
	validThemes = map[string]bool{"dark": true, "light": true, "auto": true}
	validLevels = map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
)

// Validate validates the configuration and returns any errors.
func (c *Config) Validate() error {
	var errs ValidateErrors

	if err := validateURL(c.Backend.APIURL, "http", "https"); err != nil {
		errs = append(errs, ValidationError{Field: "backend.api_url", Message: err.Error()})
	}
	if err := validateURL(c.Backend.WSURL, "ws", "wss"); err != nil {
		errs = append(errs, ValidationError{Field: "backend.ws_url", Message: err.Error()})
	}
	if c.Backend.TimeoutSecs <= 0 {
		errs = append(errs, ValidationError{Field: "backend.timeout_secs", Message: "must be positive"})
	}
	if strings.TrimSpace(c.Agent.Name) == "" {
		errs = append(errs, ValidationError{Field: "agent.name", Message: "must not be empty"})
	}
	if c.Agent.ChunkIdleMs <= 0 {
		errs = append(errs, ValidationError{Field: "agent.chunk_idle_ms", Message: "must be positive"})
	}
	if c.Agent.RefreshDelayMs <= 0 {
		errs = append(errs, ValidationError{Field: "agent.refresh_delay_ms", Message: "must be positive"})
	}
	if !validThemes[c.UI.Theme] {
		errs = append(errs, ValidationError{Field: "ui.theme", Message: fmt.Sprintf("unknown theme %q (want dark, light or auto)", c.UI.Theme)})
	}
	if !validLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, ValidationError{Field: "logging.level", Message: fmt.Sprintf("unknown level %q", c.Logging.Level)})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func validateURL(raw string, schemes ...string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid URL: %v", err)
	}
	if u.Host == "" {
		return fmt.Errorf("URL %q has no host", raw)
	}
	for _, s := range schemes {
		if u.Scheme == s {
			return nil
		}
	}
	return fmt.Errorf("scheme %q not allowed (want %s)", u.Scheme, strings.Join(schemes, " or "))
}

// SetDefaults fills zero-value fields with defaults.
func (c *Config) SetDefaults() {
	d := Default()
	if c.Backend.APIURL == "" {
		c.Backend.APIURL = d.Backend.APIURL
	}
	if c.Backend.WSURL == "" {
		c.Backend.WSURL = d.Backend.WSURL
	}
	if c.Backend.TimeoutSecs == 0 {
		c.Backend.TimeoutSecs = d.Backend.TimeoutSecs
	}
	if c.Agent.Name == "" {
		c.Agent.Name = d.Agent.Name
	}
	if c.Agent.ChunkIdleMs == 0 {
		c.Agent.ChunkIdleMs = d.Agent.ChunkIdleMs
	}
	if c.Agent.RefreshDelayMs == 0 {
		c.Agent.RefreshDelayMs = d.Agent.RefreshDelayMs
	}
	if c.UI.Theme == "" {
		c.UI.Theme = d.UI.Theme
	}
	if c.Logging.Level == "" {
		c.Logging.Level = d.Logging.Level
	}
	c.Backend.APIURL = strings.TrimRight(c.Backend.APIURL, "/")
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies environment variable overrides to the config.
//
// Supported environment variables:
//   - ASTRA_API_URL: overrides backend.api_url
//   - ASTRA_WS_URL: overrides backend.ws_url
//   - ASTRA_AGENT_NAME: overrides agent.name
//   - ASTRA_LOG_LEVEL: overrides logging.level
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("ASTRA_API_URL"); v != "" {
		c.Backend.APIURL = v
	}
	if v := os.Getenv("ASTRA_WS_URL"); v != "" {
		c.Backend.WSURL = v
	}
	if v := os.Getenv("ASTRA_AGENT_NAME"); v != "" {
		c.Agent.Name = v
	}
	if v := os.Getenv("ASTRA_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
}

// =============================================================================
// GET/SET HELPERS (DOT NOTATION)
// =============================================================================

// Get retrieves a value using dot notation (e.g. "agent.chunk_idle_ms").
func (c *Config) Get(key string) (interface{}, error) {
	field, err := c.lookup(key)
	if err != nil {
		return nil, err
	}
	return field.Interface(), nil
}

// Set sets a value using dot notation. String values are converted to the
// field's type.
func (c *Config) Set(key string, value interface{}) error {
	field, err := c.lookup(key)
	if err != nil {
		return err
	}
	if !field.CanSet() {
		return fmt.Errorf("cannot set field: %s", key)
	}
	return setFieldValue(field, value)
}

func (c *Config) lookup(key string) (reflect.Value, error) {
	parts := strings.Split(key, ".")
	if key == "" || len(parts) != 2 {
		return reflect.Value{}, fmt.Errorf("invalid key %q (want section.field)", key)
	}

	v := reflect.ValueOf(c).Elem()
	for i, part := range parts {
		field, ok := fieldByTag(v, part)
		if !ok {
			return reflect.Value{}, fmt.Errorf("unknown field: %s", strings.Join(parts[:i+1], "."))
		}
		if i == len(parts)-1 {
			return field, nil
		}
		if field.Kind() != reflect.Struct {
			return reflect.Value{}, fmt.Errorf("field '%s' is not a struct", strings.Join(parts[:i+1], "."))
		}
		v = field
	}
	return reflect.Value{}, fmt.Errorf("invalid key: %s", key)
}

// fieldByTag finds the struct field whose toml tag equals name.
func fieldByTag(v reflect.Value, name string) (reflect.Value, bool) {
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		if t.Field(i).Tag.Get("toml") == name {
			return v.Field(i), true
		}
	}
	return reflect.Value{}, false
}

func setFieldValue(field reflect.Value, value interface{}) error {
	if strVal, ok := value.(string); ok {
		switch field.Kind() {
		case reflect.String:
			field.SetString(strVal)
			return nil
		case reflect.Int, reflect.Int64:
			intVal, err := strconv.ParseInt(strVal, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid integer value: %v", err)
			}
			field.SetInt(intVal)
			return nil
		case reflect.Bool:
			boolVal, err := strconv.ParseBool(strVal)
			if err != nil {
				return fmt.Errorf("invalid boolean value: %v", err)
			}
			field.SetBool(boolVal)
			return nil
		}
	}

	val := reflect.ValueOf(value)
	if val.Type().AssignableTo(field.Type()) {
		field.Set(val)
		return nil
	}
	if val.Type().ConvertibleTo(field.Type()) {
		field.Set(val.Convert(field.Type()))
		return nil
	}
	return fmt.Errorf("cannot assign %T to %s", value, field.Type())
}

// Keys returns every settable key in dot notation.
func Keys() []string {
	var keys []string
	t := reflect.TypeOf(Config{})
	for i := 0; i < t.NumField(); i++ {
		section := t.Field(i)
		for j := 0; j < section.Type.NumField(); j++ {
			keys = append(keys, section.Tag.Get("toml")+"."+section.Type.Field(j).Tag.Get("toml"))
		}
	}
	return keys
}

// Clone returns a copy of the configuration. Config holds only value
// fields so a shallow copy is deep.
func (c *Config) Clone() *Config {
	cp := *c
	return &cp
}

// =============================================================================
// SINGLETON PATTERN (THREAD-SAFE)
// =============================================================================

var (
	globalConfig     *Config
	globalConfigOnce sync.Once
	globalConfigMu   sync.RWMutex
)

// Global returns the process-wide configuration, loading it on first use.
// A broken config file falls back to defaults with a warning on stderr.
func Global() *Config {
	globalConfigOnce.Do(func() {
		cfg, err := Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v (using defaults)\n", err)
			cfg = Default()
		}
		globalConfigMu.Lock()
		globalConfig = cfg
		globalConfigMu.Unlock()
	})

	globalConfigMu.RLock()
	defer globalConfigMu.RUnlock()
	return globalConfig
}

// SetGlobal replaces the process-wide configuration.
func SetGlobal(cfg *Config) {
	globalConfigOnce.Do(func() {})
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = cfg
}

// ResetGlobalForTesting resets the global config state for testing.
func ResetGlobalForTesting() {
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = nil
	globalConfigOnce = sync.Once{}
}
