// Package config provides the configuration schema, loader, and provider
// registry for the LemmeTalk voice assistant.
package config

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration wraps time.Duration so YAML values like "10s" parse naturally.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler, accepting Go duration strings.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// LogLevel controls log verbosity.
type LogLevel string

const (
	LogDebug LogLevel = "debug"
	LogInfo  LogLevel = "info"
	LogWarn  LogLevel = "warn"
	LogError LogLevel = "error"
)

// IsValid reports whether l is a recognised log level.
func (l LogLevel) IsValid() bool {
	switch l {
	case LogDebug, LogInfo, LogWarn, LogError:
		return true
	}
	return false
}

// StorageBackend selects how lists are persisted.
type StorageBackend string

const (
	// StorageFile keeps one JSON flat file per list.
	StorageFile StorageBackend = "file"

	// StorageSQLite keeps all lists in one embedded SQLite database.
	StorageSQLite StorageBackend = "sqlite"
)

// IsValid reports whether b is a recognised storage backend.
func (b StorageBackend) IsValid() bool {
	return b == StorageFile || b == StorageSQLite
}

// Config is the root configuration structure, typically loaded from a YAML
// file with [Load] or [LoadFromReader].
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Providers ProvidersConfig `yaml:"providers"`
	Assistant AssistantConfig `yaml:"assistant"`
	Storage   StorageConfig   `yaml:"storage"`
	Workflows WorkflowsConfig `yaml:"workflows"`
	Timeouts  TimeoutsConfig  `yaml:"timeouts"`
}

// ServerConfig holds logging and metrics settings.
type ServerConfig struct {
	// LogLevel controls verbosity. Default: info.
	LogLevel LogLevel `yaml:"log_level"`

	// MetricsAddr is the TCP address serving the Prometheus /metrics
	// endpoint. Empty disables the endpoint.
	MetricsAddr string `yaml:"metrics_addr"`
}

// ProvidersConfig declares which provider implementation serves each stage
// of the voice pipeline. Each Name selects a factory registered in the
// [Registry].
type ProvidersConfig struct {
	LLM ProviderEntry `yaml:"llm"`
	STT ProviderEntry `yaml:"stt"`
	TTS ProviderEntry `yaml:"tts"`
}

// ProviderEntry is the common configuration block shared by all provider
// kinds.
type ProviderEntry struct {
	// Name selects the registered provider implementation (e.g. "openai",
	// "whisper-native", "coqui").
	Name string `yaml:"name"`

	// APIKey is the provider's authentication key, if any.
	APIKey string `yaml:"api_key"`

	// BaseURL overrides the provider's default endpoint.
	BaseURL string `yaml:"base_url"`

	// Model selects a specific model (e.g. "gpt-4o-mini", a ggml file path
	// for local Whisper).
	Model string `yaml:"model"`

	// Options holds provider-specific values not covered by the standard
	// fields.
	Options map[string]any `yaml:"options"`
}

// StringOption returns Options[key] as a string, or "" when absent or not a
// string.
func (e ProviderEntry) StringOption(key string) string {
	if v, ok := e.Options[key].(string); ok {
		return v
	}
	return ""
}

// AssistantConfig holds assistant behaviour settings.
type AssistantConfig struct {
	// UserID identifies the user of this single-user instance.
	// Default: "default".
	UserID string `yaml:"user_id"`

	// MaxHistoryTurns caps the retained non-system conversation turns.
	// Default: 10.
	MaxHistoryTurns int `yaml:"max_history_turns"`

	// ContextTurns is how many recent turns feed the router's classifier.
	// Default: 4.
	ContextTurns int `yaml:"context_turns"`
}

// StorageConfig selects and locates the list storage backend.
type StorageConfig struct {
	// Backend selects "file" or "sqlite". Default: file.
	Backend StorageBackend `yaml:"backend"`

	// Dir is the directory for per-list JSON files (file backend).
	// Default: ~/.lemmetalk.
	Dir string `yaml:"dir"`

	// SQLitePath is the database file path (sqlite backend).
	SQLitePath string `yaml:"sqlite_path"`
}

// WorkflowsConfig controls which workflows are registered.
type WorkflowsConfig struct {
	// Enabled lists the workflows to register, in order. Empty enables all.
	Enabled []string `yaml:"enabled"`

	// News holds news workflow settings.
	News NewsConfig `yaml:"news"`
}

// NewsConfig tunes the news bulletin.
type NewsConfig struct {
	// StoryCount is how many top stories make the bulletin. Default: 10.
	StoryCount int `yaml:"story_count"`
}

// TimeoutsConfig bounds the per-turn operations.
type TimeoutsConfig struct {
	// Classify bounds the router's LLM classification call. Default: 10s.
	Classify Duration `yaml:"classify"`

	// Workflow bounds a single workflow execution. Default: 60s.
	Workflow Duration `yaml:"workflow"`
}
