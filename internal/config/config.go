package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/Volatile-Noble/dialogue-systems-1-2026/internal/prompts"
)

const DefaultPath = "config/booking.json"

type AppConfig struct {
	Logging LoggingConfig `json:"logging" yaml:"logging"`
	Server  ServerConfig  `json:"server" yaml:"server"`
	Speech  SpeechConfig  `json:"speech" yaml:"speech"`
	Dialog  DialogConfig  `json:"dialog" yaml:"dialog"`
	Grammar GrammarConfig `json:"grammar" yaml:"grammar"`
}

type LoggingConfig struct {
	Level  string `json:"level" yaml:"level"`
	Format string `json:"format" yaml:"format" validate:"omitempty,oneof=console json"`
}

type ServerConfig struct {
	ListenAddr string `json:"listen_addr" yaml:"listen_addr" validate:"required,hostname_port"`
}

type SpeechConfig struct {
	Mode             string `json:"mode" yaml:"mode" validate:"required,oneof=console remote bridge"`
	Endpoint         string `json:"endpoint" yaml:"endpoint" validate:"omitempty,url"`
	APIKey           string `json:"api_key" yaml:"api_key"`
	Locale           string `json:"locale" yaml:"locale" validate:"required"`
	Voice            string `json:"voice" yaml:"voice" validate:"required"`
	NoInputTimeoutMs int    `json:"no_input_timeout_ms" yaml:"no_input_timeout_ms" validate:"gt=0"`
}

type DialogConfig struct {
	EchoSlots     bool              `json:"echo_slots" yaml:"echo_slots"`
	ClearOnReject bool              `json:"clear_on_reject" yaml:"clear_on_reject"`
	Prompts       prompts.Templates `json:"prompts" yaml:"prompts"`
}

type GrammarConfig struct {
	// People replaces the default person lexicon when non-empty.
	People map[string]string `json:"people" yaml:"people"`
}

func DefaultConfig() *AppConfig {
	return &AppConfig{
		Logging: LoggingConfig{},
		Server: ServerConfig{
			ListenAddr: "127.0.0.1:8080",
		},
		Speech: SpeechConfig{
			Mode:             "console",
			Locale:           "en-US",
			Voice:            "en-US-DavisNeural",
			NoInputTimeoutMs: 5000,
		},
		Dialog: DialogConfig{
			Prompts: prompts.DefaultTemplates(),
		},
	}
}

func Load(path string) (*AppConfig, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		path = DefaultPath
	}

	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			cfg.ApplyEnv()
			return cfg, cfg.Validate()
		}
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, cfg)
	default:
		err = json.Unmarshal(data, cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	cfg.ApplyEnv()
	return cfg, cfg.Validate()
}

func (c *AppConfig) ApplyEnv() {
	if level := strings.TrimSpace(os.Getenv("LOG_LEVEL")); level != "" {
		c.Logging.Level = level
	}
	if format := strings.TrimSpace(os.Getenv("LOG_FORMAT")); format != "" {
		c.Logging.Format = format
	}
	if addr := strings.TrimSpace(os.Getenv("BOOKING_LISTEN_ADDR")); addr != "" {
		c.Server.ListenAddr = addr
	}
	if mode := strings.TrimSpace(os.Getenv("SPEECH_MODE")); mode != "" {
		c.Speech.Mode = strings.ToLower(mode)
	}
	if endpoint := strings.TrimSpace(os.Getenv("SPEECH_ENDPOINT")); endpoint != "" {
		c.Speech.Endpoint = endpoint
	}
	if key := strings.TrimSpace(os.Getenv("SPEECH_API_KEY")); key != "" {
		c.Speech.APIKey = key
	}
}

func (c *AppConfig) Validate() error {
	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("validate config: %w", err)
	}

	for token, name := range c.Grammar.People {
		if strings.TrimSpace(token) == "" || strings.TrimSpace(name) == "" {
			return fmt.Errorf("invalid grammar.people entry %q: %q", token, name)
		}
	}

	return nil
}

// ValidateKeys checks what the selected speech mode needs before dialing out.
func (c *AppConfig) ValidateKeys() error {
	if c.Speech.Mode != "remote" {
		return nil
	}
	if strings.TrimSpace(c.Speech.Endpoint) == "" {
		return errors.New("speech endpoint is required in remote mode")
	}
	if strings.TrimSpace(c.Speech.APIKey) == "" {
		return errors.New("speech api_key is required in remote mode")
	}
	return nil
}

func (c *AppConfig) NoInputTimeout() time.Duration {
	return time.Duration(c.Speech.NoInputTimeoutMs) * time.Millisecond
}
