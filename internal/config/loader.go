package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"

	"gopkg.in/yaml.v3"
)

// ValidProviderNames lists known provider names per provider kind. Used by
// [Validate] to warn about unrecognised names — a typo should not hard-fail
// startup because custom factories may be registered.
var ValidProviderNames = map[string][]string{
	"llm": {"openai", "anthropic", "ollama", "gemini", "deepseek", "mistral", "groq", "llamacpp", "llamafile", "openai-direct"},
	"stt": {"whisper-native"},
	"tts": {"coqui", "sysvoice"},
}

// KnownWorkflows lists the workflow names the application can register.
var KnownWorkflows = []string{"shopping", "reminders", "weather", "news"}

// Load reads the YAML configuration file at path and returns a validated
// [Config]. It is a convenience wrapper around [LoadFromReader].
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %q: %w", path, err)
	}
	defer f.Close()

	cfg, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}
	return cfg, nil
}

// LoadFromReader decodes a YAML config from r and validates the result.
// Useful in tests where configs are constructed from string literals.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := &Config{}
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("config: decode yaml: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that cfg contains a coherent set of values. It returns a
// joined error listing all validation failures found.
func Validate(cfg *Config) error {
	var errs []error

	if cfg.Server.LogLevel != "" && !cfg.Server.LogLevel.IsValid() {
		errs = append(errs, fmt.Errorf("server.log_level %q is invalid; valid values: debug, info, warn, error", cfg.Server.LogLevel))
	}

	validateProviderName("llm", cfg.Providers.LLM.Name)
	validateProviderName("stt", cfg.Providers.STT.Name)
	validateProviderName("tts", cfg.Providers.TTS.Name)

	if cfg.Providers.LLM.Name == "" {
		errs = append(errs, errors.New("providers.llm.name is required; the assistant cannot route or converse without an LLM"))
	}

	if cfg.Storage.Backend != "" && !cfg.Storage.Backend.IsValid() {
		errs = append(errs, fmt.Errorf("storage.backend %q is invalid; valid values: file, sqlite", cfg.Storage.Backend))
	}
	if cfg.Storage.Backend == StorageSQLite && cfg.Storage.SQLitePath == "" {
		errs = append(errs, errors.New("storage.sqlite_path is required when storage.backend is sqlite"))
	}

	for i, name := range cfg.Workflows.Enabled {
		if !slices.Contains(KnownWorkflows, name) {
			errs = append(errs, fmt.Errorf("workflows.enabled[%d] %q is unknown; valid values: %v", i, name, KnownWorkflows))
		}
	}
	if cfg.Workflows.News.StoryCount < 0 {
		errs = append(errs, fmt.Errorf("workflows.news.story_count %d must not be negative", cfg.Workflows.News.StoryCount))
	}

	if cfg.Timeouts.Classify < 0 {
		errs = append(errs, errors.New("timeouts.classify must not be negative"))
	}
	if cfg.Timeouts.Workflow < 0 {
		errs = append(errs, errors.New("timeouts.workflow must not be negative"))
	}
	if cfg.Assistant.MaxHistoryTurns < 0 {
		errs = append(errs, errors.New("assistant.max_history_turns must not be negative"))
	}

	return errors.Join(errs...)
}

// validateProviderName warns (it does not error) when a provider name is not
// in the known list for its kind.
func validateProviderName(kind, name string) {
	if name == "" {
		return
	}
	if !slices.Contains(ValidProviderNames[kind], name) {
		slog.Warn("unrecognised provider name; a custom factory must be registered for it",
			"kind", kind, "name", name)
	}
}

// SlogLevel converts the configured level to a slog.Level. Empty or invalid
// values map to info.
func (l LogLevel) SlogLevel() slog.Level {
	switch l {
	case LogDebug:
		return slog.LevelDebug
	case LogWarn:
		return slog.LevelWarn
	case LogError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
