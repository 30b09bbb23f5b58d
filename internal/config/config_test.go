package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestConfigYAMLRoundTrip(t *testing.T) {
	tmpDir := t.TempDir()

	cfg := DefaultConfig()
	cfg.API.BaseURL = "https://skillforge.example.edu"
	cfg.API.VoiceTimeout = 120
	cfg.UI.DefaultTrack = "strings"

	if err := WriteConfig(tmpDir, cfg); err != nil {
		t.Fatalf("WriteConfig failed: %v", err)
	}

	loaded, err := ReadConfig(tmpDir)
	if err != nil {
		t.Fatalf("ReadConfig failed: %v", err)
	}

	if loaded.API.BaseURL != "https://skillforge.example.edu" {
		t.Errorf("API.BaseURL: got %q, want %q", loaded.API.BaseURL, "https://skillforge.example.edu")
	}
	if loaded.API.VoiceTimeout != 120 {
		t.Errorf("API.VoiceTimeout: got %d, want 120", loaded.API.VoiceTimeout)
	}
	if loaded.UI.DefaultTrack != "strings" {
		t.Errorf("UI.DefaultTrack: got %q, want %q", loaded.UI.DefaultTrack, "strings")
	}
}

func TestPartialFileKeepsDefaults(t *testing.T) {
	tmpDir := t.TempDir()
	partial := `version: 1
api:
  base_url: "http://10.0.0.5:8001"
`
	dir := filepath.Join(tmpDir, ".skillforge")
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("failed to create dir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(partial), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := ReadConfig(tmpDir)
	if err != nil {
		t.Fatalf("ReadConfig failed: %v", err)
	}
	if cfg.API.RequestTimeout != 30 {
		t.Errorf("API.RequestTimeout: got %d, want default 30", cfg.API.RequestTimeout)
	}
	if cfg.Audio.Command != "arecord" {
		t.Errorf("Audio.Command: got %q, want default arecord", cfg.Audio.Command)
	}
}

func TestLoadWithoutFileUsesDefaults(t *testing.T) {
	tmpDir := t.TempDir()

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.API.BaseURL != "http://localhost:8001" {
		t.Errorf("API.BaseURL: got %q", cfg.API.BaseURL)
	}
	wantStore := filepath.Join(tmpDir, ".skillforge", "state.db")
	if cfg.Store.Path != wantStore {
		t.Errorf("Store.Path: got %q, want %q", cfg.Store.Path, wantStore)
	}
	if cfg.RequestTimeout() != 30*time.Second {
		t.Errorf("RequestTimeout: got %v, want 30s", cfg.RequestTimeout())
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("SKILLFORGE_API_URL", "https://api.skillforge.test")
	t.Setenv("SKILLFORGE_VOICE_TIMEOUT", "45")
	t.Setenv("SKILLFORGE_AUDIO_COMMAND", "ffmpeg -f alsa -i default -f wav -")
	t.Setenv("SKILLFORGE_REQUEST_TIMEOUT", "not-a-number")

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.API.BaseURL != "https://api.skillforge.test" {
		t.Errorf("API.BaseURL: got %q", cfg.API.BaseURL)
	}
	if cfg.VoiceTimeout() != 45*time.Second {
		t.Errorf("VoiceTimeout: got %v, want 45s", cfg.VoiceTimeout())
	}
	if cfg.API.RequestTimeout != 30 {
		t.Errorf("unparseable override should keep default, got %d", cfg.API.RequestTimeout)
	}
	if cfg.Audio.Command != "ffmpeg" || len(cfg.Audio.Args) != 6 {
		t.Errorf("Audio: got %q %v", cfg.Audio.Command, cfg.Audio.Args)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"relative url", func(c *Config) { c.API.BaseURL = "localhost" }, true},
		{"zero timeout", func(c *Config) { c.API.RequestTimeout = 0 }, true},
		{"negative voice timeout", func(c *Config) { c.API.VoiceTimeout = -1 }, true},
		{"bad level", func(c *Config) { c.Log.Level = "verbose" }, true},
	}
	for _, tt := range tests {
		cfg := DefaultConfig()
		tt.mutate(cfg)
		err := cfg.Validate()
		if (err != nil) != tt.wantErr {
			t.Errorf("%s: got err %v, wantErr %v", tt.name, err, tt.wantErr)
		}
	}
}
