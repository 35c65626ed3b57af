package speech

import (
	"encoding/json"
	"errors"
	"fmt"
)

const (
	msgPrepare = "PREPARE"
	msgSpeak   = "SPEAK"
	msgListen  = "LISTEN"

	msgReady          = "READY"
	msgASRTTSReady    = "ASRTTS_READY"
	msgSpeakComplete  = "SPEAK_COMPLETE"
	msgRecognised     = "RECOGNISED"
	msgNoInput        = "NO_INPUT"
	msgASRNoInput     = "ASR_NOINPUT"
	msgListenComplete = "LISTEN_COMPLETE"
)

var errUnknownMessage = errors.New("unknown speech message")

type commandMessage struct {
	Type             string `json:"type"`
	Utterance        string `json:"utterance,omitempty"`
	Locale           string `json:"locale,omitempty"`
	Voice            string `json:"voice,omitempty"`
	NoInputTimeoutMs int64  `json:"no_input_timeout_ms,omitempty"`
}

type eventMessage struct {
	Type  string       `json:"type"`
	Value []Hypothesis `json:"value,omitempty"`
}

func encodeCommand(cmd Command, cfg Config) ([]byte, error) {
	msg := commandMessage{}
	switch cmd.Type {
	case CommandPrepare:
		msg.Type = msgPrepare
		msg.Locale = cfg.Locale
		msg.Voice = cfg.Voice
		msg.NoInputTimeoutMs = cfg.NoInputTimeout.Milliseconds()
	case CommandSpeak:
		msg.Type = msgSpeak
		msg.Utterance = cmd.Utterance
	case CommandListen:
		msg.Type = msgListen
	default:
		return nil, fmt.Errorf("unsupported speech command %s", cmd.Type)
	}
	return json.Marshal(msg)
}

// decodeEvents maps one peer message onto machine events. A recognition or a
// timeout is followed by a synthesized LISTEN_COMPLETE; a LISTEN_COMPLETE sent
// by the peer itself is dropped so it is never delivered twice.
func decodeEvents(data []byte) ([]Event, error) {
	var msg eventMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("decode speech message: %w", err)
	}

	switch msg.Type {
	case msgReady, msgASRTTSReady:
		return []Event{{Type: EventReady}}, nil
	case msgSpeakComplete:
		return []Event{{Type: EventSpeakComplete}}, nil
	case msgRecognised:
		if len(msg.Value) == 0 {
			return listenEnded(Event{Type: EventNoInput}), nil
		}
		return listenEnded(Event{Type: EventRecognised, Hypotheses: msg.Value}), nil
	case msgNoInput, msgASRNoInput:
		return listenEnded(Event{Type: EventNoInput}), nil
	case msgListenComplete:
		return nil, nil
	default:
		return nil, fmt.Errorf("%w: %q", errUnknownMessage, msg.Type)
	}
}

func listenEnded(ev Event) []Event {
	return []Event{ev, {Type: EventListenComplete}}
}
