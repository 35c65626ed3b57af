// Package speech is the narrow command/event contract between the dialogue
// manager and the speech I/O service that owns synthesis and recognition.
package speech

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var (
	ErrClosed       = errors.New("speech service closed")
	ErrNotConnected = errors.New("speech service not connected")
)

const (
	ModeConsole = "console"
	ModeRemote  = "remote"
	ModeBridge  = "bridge"

	DefaultLocale         = "en-US"
	DefaultVoice          = "en-US-DavisNeural"
	DefaultNoInputTimeout = 5 * time.Second
)

// Hypothesis is one recognition candidate.
type Hypothesis struct {
	Utterance  string  `json:"utterance"`
	Confidence float64 `json:"confidence"`
}

type CommandType int

const (
	CommandNone CommandType = iota
	CommandPrepare
	CommandSpeak
	CommandListen
)

func (c CommandType) String() string {
	switch c {
	case CommandNone:
		return "NONE"
	case CommandPrepare:
		return "PREPARE"
	case CommandSpeak:
		return "SPEAK"
	case CommandListen:
		return "LISTEN"
	default:
		return "UNKNOWN"
	}
}

func (c CommandType) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// Command is an instruction to the speech service. Utterance is only used by SPEAK.
type Command struct {
	Type      CommandType `json:"type"`
	Utterance string      `json:"utterance,omitempty"`
}

type EventType int

const (
	EventReady EventType = iota + 1
	EventSpeakComplete
	EventRecognised
	EventNoInput
	EventListenComplete
)

func (e EventType) String() string {
	switch e {
	case EventReady:
		return "READY"
	case EventSpeakComplete:
		return "SPEAK_COMPLETE"
	case EventRecognised:
		return "RECOGNISED"
	case EventNoInput:
		return "NO_INPUT"
	case EventListenComplete:
		return "LISTEN_COMPLETE"
	default:
		return "UNKNOWN"
	}
}

// Event is a notification from the speech service. Hypotheses is only set on
// RECOGNISED.
type Event struct {
	Type       EventType
	Hypotheses []Hypothesis
}

// Completes reports whether ev finishes the outstanding command cmd.
func (ev Event) Completes(cmd CommandType) bool {
	switch cmd {
	case CommandPrepare:
		return ev.Type == EventReady
	case CommandSpeak:
		return ev.Type == EventSpeakComplete
	case CommandListen:
		return ev.Type == EventListenComplete
	default:
		return false
	}
}

// Service is the speech I/O service. Every adapter emits LISTEN_COMPLETE right
// after the RECOGNISED or NO_INPUT that ends a LISTEN.
type Service interface {
	Prepare(ctx context.Context) error
	Speak(ctx context.Context, text string) error
	Listen(ctx context.Context) error
	Events() <-chan Event
	Close() error
}

// Execute forwards cmd to the matching Service method.
func Execute(ctx context.Context, svc Service, cmd Command) error {
	switch cmd.Type {
	case CommandPrepare:
		return svc.Prepare(ctx)
	case CommandSpeak:
		return svc.Speak(ctx, cmd.Utterance)
	case CommandListen:
		return svc.Listen(ctx)
	case CommandNone:
		return nil
	default:
		return fmt.Errorf("unsupported speech command %d", int(cmd.Type))
	}
}

type Config struct {
	Mode           string
	Endpoint       string
	APIKey         string
	Locale         string
	Voice          string
	NoInputTimeout time.Duration
}

func (c Config) withDefaults() Config {
	if c.Locale == "" {
		c.Locale = DefaultLocale
	}
	if c.Voice == "" {
		c.Voice = DefaultVoice
	}
	if c.NoInputTimeout <= 0 {
		c.NoInputTimeout = DefaultNoInputTimeout
	}
	return c
}
