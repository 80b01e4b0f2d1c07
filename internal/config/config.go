package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	DefaultConfigDir  = ".cozy-chat"
	DefaultConfigFile = "config.yaml"

	SkinUtility  = "utility"
	SkinMaterial = "material"

	envPrefix = "COZY_CHAT_"
)

// ErrNotSaved is returned alongside a usable config when the default file
// could not be written.
var ErrNotSaved = errors.New("default config not saved")

// Skins lists the presentational skins in display order.
var Skins = []string{SkinUtility, SkinMaterial}

var logLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// Config represents the application configuration
type Config struct {
	Skin string `yaml:"skin"`

	// ReplyDelayMs is how long the UI waits before showing the assistant's
	// reply. It is cosmetic; the reply text is computed up front.
	ReplyDelayMs int `yaml:"reply_delay_ms"`

	// TimeFormat is a Go time layout used for message timestamps
	TimeFormat string `yaml:"time_format"`

	// RandomSeed seeds the reply simulator. 0 means seed from the clock.
	RandomSeed int64 `yaml:"random_seed"`

	Persist  bool   `yaml:"persist"`
	DataDir  string `yaml:"data_dir"`
	ImageDir string `yaml:"image_dir"`
	LogDir   string `yaml:"log_dir"`
	LogLevel string `yaml:"log_level"`
}

func DefaultConfig() *Config {
	base := DefaultConfigDir
	if homeDir, err := os.UserHomeDir(); err == nil {
		base = filepath.Join(homeDir, DefaultConfigDir)
	}

	return &Config{
		Skin:         SkinUtility,
		ReplyDelayMs: 1000,
		TimeFormat:   "15:04",
		RandomSeed:   0,
		Persist:      false,
		DataDir:      filepath.Join(base, "db"),
		ImageDir:     ".",
		LogDir:       filepath.Join(base, "logs"),
		LogLevel:     "info",
	}
}

// GetConfigPath returns the path to the config file
func GetConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	configDir := filepath.Join(homeDir, DefaultConfigDir)
	return filepath.Join(configDir, DefaultConfigFile), nil
}

// Load loads the configuration from the default path, creating it if missing.
// A .env file in the working directory and COZY_CHAT_* variables override
// values from the file.
func Load() (*Config, error) {
	configPath, err := GetConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFrom(configPath)
}

// LoadFrom loads the configuration from configPath, writing defaults there if
// the file does not exist yet. If that write fails the config is still
// returned, together with an error wrapping ErrNotSaved.
func LoadFrom(configPath string) (*Config, error) {
	// Missing .env is the normal case
	_ = godotenv.Load()

	cfg := DefaultConfig()

	var saveErr error
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		// Keep the defaults so the app still starts; the caller decides
		// whether an unwritable config location matters
		if err := SaveTo(cfg, configPath); err != nil {
			saveErr = fmt.Errorf("%w: %v", ErrNotSaved, err)
		}
	} else {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, saveErr
}

// Save saves the configuration to the default path
func Save(cfg *Config) error {
	configPath, err := GetConfigPath()
	if err != nil {
		return err
	}
	return SaveTo(cfg, configPath)
}

// SaveTo writes cfg as YAML to configPath
func SaveTo(cfg *Config, configPath string) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("cannot save invalid config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

func (c *Config) applyEnv() error {
	if v := getEnv("SKIN"); v != "" {
		c.Skin = strings.ToLower(v)
	}
	if v := getEnv("REPLY_DELAY_MS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%sREPLY_DELAY_MS must be an integer, got %q", envPrefix, v)
		}
		c.ReplyDelayMs = n
	}
	if v := getEnv("TIME_FORMAT"); v != "" {
		c.TimeFormat = v
	}
	if v := getEnv("RANDOM_SEED"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("%sRANDOM_SEED must be an integer, got %q", envPrefix, v)
		}
		c.RandomSeed = n
	}
	if v := getEnv("PERSIST"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%sPERSIST must be a boolean, got %q", envPrefix, v)
		}
		c.Persist = b
	}
	if v := getEnv("DATA_DIR"); v != "" {
		c.DataDir = v
	}
	if v := getEnv("IMAGE_DIR"); v != "" {
		c.ImageDir = v
	}
	if v := getEnv("LOG_DIR"); v != "" {
		c.LogDir = v
	}
	if v := getEnv("LOG_LEVEL"); v != "" {
		c.LogLevel = strings.ToLower(v)
	}
	return nil
}

func getEnv(key string) string {
	return strings.TrimSpace(os.Getenv(envPrefix + key))
}

// Validate validates the configuration values
func (c *Config) Validate() error {
	if !IsSkin(c.Skin) {
		return fmt.Errorf("skin must be one of %s, got %q", strings.Join(Skins, ", "), c.Skin)
	}

	if c.ReplyDelayMs < 0 {
		return fmt.Errorf("reply_delay_ms must not be negative, got %d", c.ReplyDelayMs)
	}

	if strings.TrimSpace(c.TimeFormat) == "" {
		return fmt.Errorf("time_format must not be empty")
	}

	if c.Persist && c.DataDir == "" {
		return fmt.Errorf("data_dir is required when persist is enabled")
	}

	if !logLevels[c.LogLevel] {
		return fmt.Errorf("log_level must be debug, info, warn or error, got %q", c.LogLevel)
	}

	return nil
}

// IsSkin reports whether name is a known skin
func IsSkin(name string) bool {
	for _, s := range Skins {
		if s == name {
			return true
		}
	}
	return false
}
