package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration is a time.Duration that unmarshals from yaml strings like "10m".
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the value as a standard time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Settings holds the non-secret runtime configuration. Secrets (API keys,
// tokens) stay in the environment; everything here may be committed to a
// melodia.yaml alongside the binary.
type Settings struct {
	// Addr is the HTTP listen address, e.g. ":8080".
	Addr string `yaml:"addr"`

	// RecursionLimit bounds the number of workflow steps in a single run.
	RecursionLimit int `yaml:"recursion_limit"`

	// PlaylistTargetSize is the default number of tracks in a generated playlist.
	PlaylistTargetSize int `yaml:"playlist_target_size"`

	// SessionTTL controls how long an idle conversation is kept.
	SessionTTL Duration `yaml:"session_ttl"`

	// SessionMaxTurns caps the stored turns per conversation.
	SessionMaxTurns int `yaml:"session_max_turns"`

	// HistoryBudget is the rune budget for chat history passed to the model.
	// 0 means no limit.
	HistoryBudget int `yaml:"history_budget"`

	// PromptsDir optionally overrides the embedded prompt templates.
	PromptsDir string `yaml:"prompts_dir"`
}

// DefaultSettings returns the values used when no melodia.yaml is present.
func DefaultSettings() Settings {
	return Settings{
		Addr:               ":8080",
		RecursionLimit:     50,
		PlaylistTargetSize: 30,
		SessionTTL:         Duration(30 * time.Minute),
		SessionMaxTurns:    50,
		HistoryBudget:      4000,
	}
}

// LoadSettings reads settings from path, starting from defaults. A missing
// file is not an error. Environment variables override file values last:
// MELODIA_ADDR, MELODIA_RECURSION_LIMIT, MELODIA_PLAYLIST_SIZE,
// MELODIA_PROMPTS_DIR.
func LoadSettings(path string) (Settings, error) {
	s := DefaultSettings()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &s); err != nil {
			return s, fmt.Errorf("parse %s: %w", path, err)
		}
		log.Printf("[Config] Loaded settings from %s", path)
	case os.IsNotExist(err):
		// Defaults only.
	default:
		return s, fmt.Errorf("read %s: %w", path, err)
	}

	applyEnvOverrides(&s)

	if err := s.validate(); err != nil {
		return s, err
	}
	return s, nil
}

func applyEnvOverrides(s *Settings) {
	if v := os.Getenv("MELODIA_ADDR"); v != "" {
		s.Addr = v
	}
	if v := os.Getenv("MELODIA_RECURSION_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			s.RecursionLimit = n
		}
	}
	if v := os.Getenv("MELODIA_PLAYLIST_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			s.PlaylistTargetSize = n
		}
	}
	if v := os.Getenv("MELODIA_PROMPTS_DIR"); v != "" {
		s.PromptsDir = v
	}
}

func (s Settings) validate() error {
	if s.Addr == "" {
		return fmt.Errorf("settings: addr must not be empty")
	}
	if s.RecursionLimit <= 0 {
		return fmt.Errorf("settings: recursion_limit must be positive, got %d", s.RecursionLimit)
	}
	if s.PlaylistTargetSize <= 0 {
		return fmt.Errorf("settings: playlist_target_size must be positive, got %d", s.PlaylistTargetSize)
	}
	return nil
}
