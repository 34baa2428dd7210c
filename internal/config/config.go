// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/jeranaias/gpterm/internal/util"
)

// Provider names accepted in provider.name.
const (
	ProviderOpenAI     = "openai"
	ProviderAnthropic  = "anthropic"
	ProviderOllama     = "ollama"
	ProviderOpenRouter = "openrouter"
)

// Storage backends accepted in storage.backend.
const (
	BackendNone   = "none"
	BackendJSON   = "json"
	BackendSQLite = "sqlite"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete gpterm configuration.
type Config struct {
	// Model is the model identifier sent with every request.
	Model string `toml:"model" json:"model"`
	// MaxTokens is the token budget for each reply.
	MaxTokens int `toml:"max_tokens" json:"max_tokens"`
	// SystemPrompt is the instruction placed at the head of every conversation.
	SystemPrompt string `toml:"system_prompt" json:"system_prompt"`
	// Models is the numbered catalogue offered by /model.
	Models []string `toml:"models" json:"models"`
	// RequestsPerMinute throttles outgoing requests; 0 disables throttling.
	RequestsPerMinute int `toml:"requests_per_minute" json:"requests_per_minute"`
	// Debug enables the debug log file.
	Debug bool `toml:"debug" json:"debug"`

	Provider    ProviderConfig    `toml:"provider" json:"provider"`
	Credentials CredentialsConfig `toml:"-" json:"-"`
	Storage     StorageConfig     `toml:"storage" json:"storage"`
	UI          UIConfig          `toml:"ui" json:"ui"`
}

// ProviderConfig selects the completion backend.
type ProviderConfig struct {
	// Name is one of openai, anthropic, ollama, openrouter.
	Name string `toml:"name" json:"name"`
	// BaseURL overrides the backend's default endpoint.
	BaseURL string `toml:"base_url" json:"base_url"`
}

// CredentialsConfig holds secrets. They come from the environment only and
// are never written back to the config file.
type CredentialsConfig struct {
	Organization string
	APIKey       string
}

// StorageConfig controls where conversations go on /save, /new and exit.
type StorageConfig struct {
	// Backend is one of none, json, sqlite.
	Backend string `toml:"backend" json:"backend"`
	// Dir is the directory holding conversation files or the database.
	Dir string `toml:"dir" json:"dir"`
	// MaxConversations caps the JSON store; oldest are pruned. 0 keeps all.
	MaxConversations int `toml:"max_conversations" json:"max_conversations"`
}

// UIConfig contains terminal presentation settings.
type UIConfig struct {
	// CodeStyle is the chroma style used for fenced code blocks.
	CodeStyle string `toml:"code_style" json:"code_style"`
	// NoColor disables all colour and highlighting.
	NoColor bool `toml:"no_color" json:"no_color"`
}

// =============================================================================
// DEFAULT CONFIGURATION
// =============================================================================

// DefaultSystemPrompt is the instruction every conversation starts with.
const DefaultSystemPrompt = "You are a helpful assistant."

// DefaultModels is the catalogue offered by /model when none is configured.
var DefaultModels = []string{
	"gpt-3.5-turbo",
	"gpt-3.5-turbo-16k",
	"gpt-4",
	"gpt-4-32k",
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Model:        "gpt-3.5-turbo",
		MaxTokens:    1000,
		SystemPrompt: DefaultSystemPrompt,
		Models:       append([]string(nil), DefaultModels...),
		Provider: ProviderConfig{
			Name: ProviderOpenAI,
		},
		Storage: StorageConfig{
			Backend:          BackendNone,
			MaxConversations: 100,
		},
		UI: UIConfig{
			CodeStyle: "material",
		},
	}
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// ConfigDir returns the gpterm configuration directory path.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".gpterm"), nil
}

// ConfigPath returns the path to the TOML config file.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// ensureSecurePermissions tightens a config file to 0600.
func ensureSecurePermissions(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if mode := info.Mode().Perm(); mode != 0600 {
		if err := os.Chmod(path, 0600); err != nil {
			return fmt.Errorf("failed to fix insecure permissions (was %o): %w", mode, err)
		}
	}
	return nil
}

// =============================================================================
// LOAD / SAVE
// =============================================================================

// Load builds a Config from defaults, the TOML file at path (the default
// location when path is empty) and the environment. A missing file is not an
// error. Validate is left to the caller so command line flags can be applied
// first.
func Load(path string) (*Config, error) {
	if path == "" {
		p, err := ConfigPath()
		if err != nil {
			return nil, err
		}
		path = p
	}

	cfg := Default()
	if _, err := os.Stat(path); err == nil {
		if err := LoadTOML(cfg, path); err != nil {
			return nil, err
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}

	cfg.ApplyEnvOverrides()
	if err := fillDefaults(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadTOML decodes the TOML file at path on top of cfg.
func LoadTOML(cfg *Config, path string) error {
	if err := ensureSecurePermissions(path); err != nil {
		// Not fatal: some filesystems cannot change modes.
		fmt.Fprintf(os.Stderr, "Warning: could not ensure secure permissions on %s: %v\n", path, err)
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return fmt.Errorf("failed to decode TOML file %s: %w", path, err)
	}
	return nil
}

// fillDefaults fills any zero values left by a partial file.
func fillDefaults(cfg *Config) error {
	defaults := Default()

	if cfg.Model == "" {
		cfg.Model = defaults.Model
	}
	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = defaults.MaxTokens
	}
	if cfg.SystemPrompt == "" {
		cfg.SystemPrompt = defaults.SystemPrompt
	}
	if len(cfg.Models) == 0 {
		cfg.Models = defaults.Models
	}
	if cfg.Provider.Name == "" {
		cfg.Provider.Name = defaults.Provider.Name
	}
	cfg.Provider.Name = strings.ToLower(cfg.Provider.Name)
	if cfg.Storage.Backend == "" {
		cfg.Storage.Backend = defaults.Storage.Backend
	}
	cfg.Storage.Backend = strings.ToLower(cfg.Storage.Backend)
	if cfg.Storage.Dir == "" {
		dir, err := ConfigDir()
		if err != nil {
			return err
		}
		cfg.Storage.Dir = filepath.Join(dir, "conversations")
	}
	if cfg.UI.CodeStyle == "" {
		cfg.UI.CodeStyle = defaults.UI.CodeStyle
	}
	return nil
}

// SaveTOML writes cfg to path with 0600 permissions. Credentials are never
// written.
func SaveTOML(cfg *Config, path string) error {
	var buf bytes.Buffer
	buf.WriteString("# gpterm configuration file\n")
	buf.WriteString("# Credentials are read from the environment and never stored here.\n\n")

	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if err := util.AtomicWriteFile(path, buf.Bytes(), 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// apiKeyVars lists the environment variables consulted for each provider's
// API key, first match wins.
var apiKeyVars = map[string][]string{
	ProviderOpenAI:     {"OPENAI_API_KEY", "MY_OPENAI_API_KEY"},
	ProviderAnthropic:  {"ANTHROPIC_API_KEY"},
	ProviderOpenRouter: {"OPENROUTER_API_KEY"},
	ProviderOllama:     {"OLLAMA_API_KEY"},
}

// APIKeyVars returns the environment variables that supply the API key for
// the given provider.
func APIKeyVars(provider string) []string {
	return apiKeyVars[strings.ToLower(provider)]
}

// ApplyEnvOverrides applies environment variable overrides.
//
// Supported environment variables:
//   - GPTERM_PROVIDER: overrides provider.name
//   - GPTERM_BASE_URL: overrides provider.base_url
//   - GPTERM_MODEL: overrides model
//   - GPTERM_MAX_TOKENS: overrides max_tokens (ignored if not an integer)
//   - GPTERM_STORAGE: overrides storage.backend
//   - GPTERM_DEBUG: "1" or "true" enables the debug log
//   - NO_COLOR: any value disables colour
//   - OPENAI_ORGANIZATION / MY_OPENAI_ORGANIZATION: organization id
//   - OPENAI_API_KEY / MY_OPENAI_API_KEY, ANTHROPIC_API_KEY,
//     OPENROUTER_API_KEY, OLLAMA_API_KEY: API key for the active provider
func (c *Config) ApplyEnvOverrides() {
	if provider := os.Getenv("GPTERM_PROVIDER"); provider != "" {
		c.Provider.Name = strings.ToLower(provider)
	}
	if baseURL := os.Getenv("GPTERM_BASE_URL"); baseURL != "" {
		c.Provider.BaseURL = baseURL
	}
	if model := os.Getenv("GPTERM_MODEL"); model != "" {
		c.Model = model
	}
	if v := os.Getenv("GPTERM_MAX_TOKENS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.MaxTokens = n
		}
	}
	if backend := os.Getenv("GPTERM_STORAGE"); backend != "" {
		c.Storage.Backend = strings.ToLower(backend)
	}
	if debug := os.Getenv("GPTERM_DEBUG"); debug != "" {
		c.Debug = debug == "1" || strings.EqualFold(debug, "true")
	}
	if os.Getenv("NO_COLOR") != "" {
		c.UI.NoColor = true
	}

	if org := firstEnv("OPENAI_ORGANIZATION", "MY_OPENAI_ORGANIZATION"); org != "" {
		c.Credentials.Organization = org
	}
	provider := c.Provider.Name
	if provider == "" {
		provider = ProviderOpenAI
	}
	if key := firstEnv(APIKeyVars(provider)...); key != "" {
		c.Credentials.APIKey = key
	}
}

func firstEnv(names ...string) string {
	for _, name := range names {
		if v := os.Getenv(name); v != "" {
			return v
		}
	}
	return ""
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

// RequiresAPIKey reports whether the named provider refuses requests
// without a key. Local ollama does not need one.
func RequiresAPIKey(provider string) bool {
	return strings.ToLower(provider) != ProviderOllama
}

// Validate validates the configuration and returns ValidateErrors when
// anything is wrong. A missing API key is reported here so it surfaces at
// startup rather than on the first request.
func (c *Config) Validate() error {
	var errs ValidateErrors

	if strings.TrimSpace(c.Model) == "" {
		errs = append(errs, ValidationError{Field: "model", Message: "must not be empty"})
	}
	if c.MaxTokens <= 0 {
		errs = append(errs, ValidationError{
			Field:   "max_tokens",
			Message: fmt.Sprintf("must be positive, got %d", c.MaxTokens),
		})
	}
	if c.RequestsPerMinute < 0 {
		errs = append(errs, ValidationError{
			Field:   "requests_per_minute",
			Message: fmt.Sprintf("must not be negative, got %d", c.RequestsPerMinute),
		})
	}

	if _, ok := apiKeyVars[c.Provider.Name]; !ok {
		errs = append(errs, ValidationError{
			Field:   "provider.name",
			Message: fmt.Sprintf("invalid provider '%s', must be one of: openai, anthropic, ollama, openrouter", c.Provider.Name),
		})
	} else if RequiresAPIKey(c.Provider.Name) && c.Credentials.APIKey == "" {
		errs = append(errs, ValidationError{
			Field:   "credentials.api_key",
			Message: fmt.Sprintf("no API key found, set %s", strings.Join(APIKeyVars(c.Provider.Name), " or ")),
		})
	}

	switch c.Storage.Backend {
	case BackendNone, BackendJSON, BackendSQLite:
	default:
		errs = append(errs, ValidationError{
			Field:   "storage.backend",
			Message: fmt.Sprintf("invalid backend '%s', must be one of: none, json, sqlite", c.Storage.Backend),
		})
	}
	if c.Storage.MaxConversations < 0 {
		errs = append(errs, ValidationError{
			Field:   "storage.max_conversations",
			Message: "must not be negative",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}
