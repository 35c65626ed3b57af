package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Volatile-Noble/dialogue-systems-1-2026/internal/prompts"
)

func writeFile(t *testing.T, name, data string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad_MergesDefaultsAndEnv(t *testing.T) {
	path := writeFile(t, "booking.json", `{
		"logging": {"level": "debug"},
		"speech": {"no_input_timeout_ms": 3000},
		"dialog": {"echo_slots": true, "prompts": {"meeting": "Who is it?"}}
	}`)

	t.Setenv("LOG_LEVEL", "warn")
	t.Setenv("SPEECH_MODE", "Remote")
	t.Setenv("SPEECH_ENDPOINT", "wss://speech.example.com/ws")
	t.Setenv("SPEECH_API_KEY", "speech-key")
	t.Setenv("BOOKING_LISTEN_ADDR", ":9090")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Logging.Level != "warn" {
		t.Fatalf("expected LOG_LEVEL to override config, got %q", cfg.Logging.Level)
	}
	if cfg.NoInputTimeout() != 3*time.Second {
		t.Fatalf("expected 3s no-input timeout, got %v", cfg.NoInputTimeout())
	}
	if !cfg.Dialog.EchoSlots {
		t.Fatalf("expected echo_slots from file")
	}
	if cfg.Dialog.Prompts.Meeting != "Who is it?" {
		t.Fatalf("expected meeting prompt override, got %q", cfg.Dialog.Prompts.Meeting)
	}
	if cfg.Dialog.Prompts.Greeting != prompts.DefaultTemplates().Greeting {
		t.Fatalf("expected default greeting to be preserved")
	}
	if cfg.Speech.Mode != "remote" || cfg.Speech.APIKey != "speech-key" {
		t.Fatalf("expected speech settings from env, got %+v", cfg.Speech)
	}
	if cfg.Server.ListenAddr != ":9090" {
		t.Fatalf("expected listen addr from env, got %q", cfg.Server.ListenAddr)
	}
	if cfg.Speech.Voice != "en-US-DavisNeural" {
		t.Fatalf("expected default voice, got %q", cfg.Speech.Voice)
	}
}

func TestLoadYAML(t *testing.T) {
	path := writeFile(t, "booking.yaml", `
speech:
  mode: bridge
dialog:
  clear_on_reject: true
grammar:
  people:
    eve: Eve Online
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Speech.Mode != "bridge" {
		t.Fatalf("expected bridge mode, got %q", cfg.Speech.Mode)
	}
	if !cfg.Dialog.ClearOnReject {
		t.Fatalf("expected clear_on_reject")
	}
	if cfg.Grammar.People["eve"] != "Eve Online" {
		t.Fatalf("expected people override, got %v", cfg.Grammar.People)
	}
	if cfg.Speech.NoInputTimeoutMs != 5000 {
		t.Fatalf("expected default timeout, got %d", cfg.Speech.NoInputTimeoutMs)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.json"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Speech.Mode != "console" {
		t.Fatalf("expected console mode, got %q", cfg.Speech.Mode)
	}
}

func TestLoadRejectsMalformedFile(t *testing.T) {
	path := writeFile(t, "booking.json", `{"speech": `)
	if _, err := Load(path); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*AppConfig)
	}{
		{"unknown speech mode", func(c *AppConfig) { c.Speech.Mode = "telepathy" }},
		{"zero timeout", func(c *AppConfig) { c.Speech.NoInputTimeoutMs = 0 }},
		{"bad log format", func(c *AppConfig) { c.Logging.Format = "xml" }},
		{"bad listen addr", func(c *AppConfig) { c.Server.ListenAddr = "localhost" }},
		{"bad endpoint", func(c *AppConfig) { c.Speech.Endpoint = "not a url" }},
		{"empty person name", func(c *AppConfig) { c.Grammar.People = map[string]string{"eve": " "} }},
	}

	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatalf("expected validation error")
			}
		})
	}
}

func TestValidateKeys(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.ValidateKeys(); err != nil {
		t.Fatalf("console mode needs no keys: %v", err)
	}

	cfg.Speech.Mode = "remote"
	if err := cfg.ValidateKeys(); err == nil {
		t.Fatalf("expected error when endpoint and key are missing")
	}

	cfg.Speech.Endpoint = "wss://speech.example.com/ws"
	cfg.Speech.APIKey = "key"
	if err := cfg.ValidateKeys(); err != nil {
		t.Fatalf("unexpected key validation error: %v", err)
	}
}
