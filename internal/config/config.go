// Package config handles reading and writing ~/.skillforge/config.yaml and
// layering .env and environment overrides on top of it.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the top-level structure for config.yaml.
type Config struct {
	Version int         `yaml:"version"`
	API     APIConfig   `yaml:"api"`
	Audio   AudioConfig `yaml:"audio"`
	Log     LogConfig   `yaml:"log"`
	Store   StoreConfig `yaml:"store"`
	UI      UIConfig    `yaml:"ui"`
}

// APIConfig points the client at the SkillForge backend.
type APIConfig struct {
	BaseURL        string `yaml:"base_url"`
	RequestTimeout int    `yaml:"request_timeout"` // seconds
	VoiceTimeout   int    `yaml:"voice_timeout"`   // seconds
}

// AudioConfig selects the external capture command used for voice messages.
// The command must write raw audio to stdout until it is interrupted.
type AudioConfig struct {
	Command  string   `yaml:"command"`
	Args     []string `yaml:"args"`
	MIMEType string   `yaml:"mime_type"`
	Filename string   `yaml:"filename"`
}

// LogConfig controls the structured log sink.
type LogConfig struct {
	Level string `yaml:"level"` // "debug" | "info" | "warn" | "error"
	File  string `yaml:"file"`  // path, or "-" for stderr
}

// StoreConfig locates the durable local state database.
type StoreConfig struct {
	Path string `yaml:"path"`
}

// UIConfig holds presentation defaults.
type UIConfig struct {
	DefaultTrack string `yaml:"default_track"`
}

const (
	configDir  = ".skillforge"
	configFile = "config.yaml"
)

// DefaultTrack is the track the catalog opens on when none is configured.
const DefaultTrack = "arrays"

// HomeEnv overrides the directory that holds .skillforge/.
const HomeEnv = "SKILLFORGE_HOME"

// Dir returns the directory containing .skillforge/: $SKILLFORGE_HOME when
// set, the user's home directory otherwise.
func Dir() (string, error) {
	if dir := os.Getenv(HomeEnv); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving home directory: %w", err)
	}
	return home, nil
}

// StateDir returns dir/.skillforge, creating it if needed.
func StateDir(dir string) (string, error) {
	path := filepath.Join(dir, configDir)
	if err := os.MkdirAll(path, 0700); err != nil {
		return "", fmt.Errorf("creating state directory: %w", err)
	}
	return path, nil
}

// ReadConfig reads .skillforge/config.yaml from dir.
// Returns an error if the file is not found or YAML is malformed.
func ReadConfig(dir string) (*Config, error) {
	path := filepath.Join(dir, configDir, configFile)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	return cfg, nil
}

// WriteConfig writes cfg to .skillforge/config.yaml in dir.
func WriteConfig(dir string, cfg *Config) error {
	dirPath, err := StateDir(dir)
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}

	path := filepath.Join(dirPath, configFile)
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}

// DefaultConfig returns a Config populated with sensible defaults.
// Paths are left empty and resolved against the state directory by Load.
func DefaultConfig() *Config {
	return &Config{
		Version: 1,
		API: APIConfig{
			BaseURL:        "http://localhost:8001",
			RequestTimeout: 30,
			VoiceTimeout:   90,
		},
		Audio: AudioConfig{
			Command:  "arecord",
			Args:     []string{"-q", "-f", "S16_LE", "-r", "16000", "-c", "1", "-t", "wav", "-"},
			MIMEType: "audio/wav",
			Filename: "voice.wav",
		},
		Log: LogConfig{
			Level: "info",
		},
		UI: UIConfig{
			DefaultTrack: DefaultTrack,
		},
	}
}

// Load builds the effective configuration for dir: defaults, then the config
// file if present, then .env in the working directory, then SKILLFORGE_*
// environment variables. The result is validated.
func Load(dir string) (*Config, error) {
	cfg, err := ReadConfig(dir)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
		cfg = DefaultConfig()
	}

	// A missing .env is normal.
	_ = godotenv.Load()

	applyEnv(cfg)

	if cfg.Store.Path == "" {
		cfg.Store.Path = filepath.Join(dir, configDir, "state.db")
	}
	if cfg.Log.File == "" {
		cfg.Log.File = filepath.Join(dir, configDir, "skillforge.log")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	cfg.API.BaseURL = getEnv("SKILLFORGE_API_URL", cfg.API.BaseURL)
	cfg.API.RequestTimeout = getEnvInt("SKILLFORGE_REQUEST_TIMEOUT", cfg.API.RequestTimeout)
	cfg.API.VoiceTimeout = getEnvInt("SKILLFORGE_VOICE_TIMEOUT", cfg.API.VoiceTimeout)
	cfg.Log.Level = getEnv("SKILLFORGE_LOG_LEVEL", cfg.Log.Level)
	cfg.Log.File = getEnv("SKILLFORGE_LOG_FILE", cfg.Log.File)
	cfg.Store.Path = getEnv("SKILLFORGE_STORE_PATH", cfg.Store.Path)
	cfg.UI.DefaultTrack = getEnv("SKILLFORGE_TRACK", cfg.UI.DefaultTrack)
	if cmd := os.Getenv("SKILLFORGE_AUDIO_COMMAND"); cmd != "" {
		fields := strings.Fields(cmd)
		cfg.Audio.Command = fields[0]
		cfg.Audio.Args = fields[1:]
	}
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	u, err := url.Parse(c.API.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid api.base_url %q", c.API.BaseURL)
	}
	if c.API.RequestTimeout <= 0 {
		return fmt.Errorf("api.request_timeout must be positive, got %d", c.API.RequestTimeout)
	}
	if c.API.VoiceTimeout <= 0 {
		return fmt.Errorf("api.voice_timeout must be positive, got %d", c.API.VoiceTimeout)
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log.level %q", c.Log.Level)
	}
	return nil
}

// RequestTimeout returns the per-call timeout for ordinary API requests.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.API.RequestTimeout) * time.Second
}

// VoiceTimeout returns the per-call timeout for voice uploads.
func (c *Config) VoiceTimeout() time.Duration {
	return time.Duration(c.API.VoiceTimeout) * time.Second
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
