package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func clearEnv(t *testing.T) {
	for _, key := range []string{"SKIN", "REPLY_DELAY_MS", "TIME_FORMAT", "RANDOM_SEED", "PERSIST", "DATA_DIR", "IMAGE_DIR", "LOG_DIR", "LOG_LEVEL"} {
		t.Setenv(envPrefix+key, "")
	}
}

func TestLoadFromCreatesDefault(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "nested", DefaultConfigFile)

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}
	if cfg.Skin != SkinUtility || cfg.ReplyDelayMs != 1000 || cfg.TimeFormat != "15:04" {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("default config was not written: %v", err)
	}
}

func TestLoadFromReadsFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), DefaultConfigFile)
	content := "skin: material\nreply_delay_ms: 250\nrandom_seed: 9\npersist: true\ndata_dir: /tmp/cozy\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}
	if cfg.Skin != SkinMaterial || cfg.ReplyDelayMs != 250 || cfg.RandomSeed != 9 || !cfg.Persist {
		t.Errorf("file values not applied: %+v", cfg)
	}
	// Keys missing from the file keep their defaults
	if cfg.LogLevel != "info" || cfg.TimeFormat != "15:04" {
		t.Errorf("defaults lost: %+v", cfg)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), DefaultConfigFile)
	if err := os.WriteFile(path, []byte("skin: material\nreply_delay_ms: 250\n"), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("COZY_CHAT_SKIN", "Utility")
	t.Setenv("COZY_CHAT_REPLY_DELAY_MS", "0")
	t.Setenv("COZY_CHAT_PERSIST", "true")

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}
	if cfg.Skin != SkinUtility || cfg.ReplyDelayMs != 0 || !cfg.Persist {
		t.Errorf("env overrides not applied: %+v", cfg)
	}
}

func TestEnvRejectsMalformedValues(t *testing.T) {
	tests := []struct {
		key   string
		value string
	}{
		{"COZY_CHAT_REPLY_DELAY_MS", "soon"},
		{"COZY_CHAT_RANDOM_SEED", "abc"},
		{"COZY_CHAT_PERSIST", "maybe"},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.value)
			_, err := LoadFrom(filepath.Join(t.TempDir(), DefaultConfigFile))
			if err == nil || !strings.Contains(err.Error(), tt.key) {
				t.Errorf("expected error naming %s, got %v", tt.key, err)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(c *Config) {}, false},
		{"material skin", func(c *Config) { c.Skin = SkinMaterial }, false},
		{"unknown skin", func(c *Config) { c.Skin = "neon" }, true},
		{"negative delay", func(c *Config) { c.ReplyDelayMs = -1 }, true},
		{"empty time format", func(c *Config) { c.TimeFormat = " " }, true},
		{"persist without dir", func(c *Config) { c.Persist = true; c.DataDir = "" }, true},
		{"bad log level", func(c *Config) { c.LogLevel = "verbose" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestSaveToRefusesInvalid(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Skin = "neon"
	if err := SaveTo(cfg, filepath.Join(t.TempDir(), DefaultConfigFile)); err == nil {
		t.Error("expected error saving invalid config")
	}
}

func TestLoadFromReportsUnwritableDefault(t *testing.T) {
	clearEnv(t)
	blocker := filepath.Join(t.TempDir(), "not-a-dir")
	if err := os.WriteFile(blocker, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(blocker, DefaultConfigFile)

	cfg, err := LoadFrom(path)
	if !errors.Is(err, ErrNotSaved) {
		t.Fatalf("LoadFrom() error = %v, want %v", err, ErrNotSaved)
	}
	if cfg == nil || cfg.Skin != SkinUtility {
		t.Errorf("expected default config alongside the error, got %+v", cfg)
	}
}
