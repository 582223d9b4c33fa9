package testsupport

import (
	"path/filepath"
	"testing"

	"castpress/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.DataDir = filepath.Join(base, "data")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.TTS.APIKey = "test"
	cfg.Notifications.NtfyTopic = ""

	for _, opt := range opts {
		opt(&cfg)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}
	return &cfg
}

// WithProvider overrides the TTS provider on the test config.
func WithProvider(name string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.TTS.Provider = name
	}
}

// WithSampleRate overrides the synthesis sample rate on the test config.
func WithSampleRate(rate int) ConfigOption {
	return func(cfg *config.Config) {
		cfg.TTS.SampleRate = rate
	}
}
