package dialog

import (
	"time"

	"github.com/Volatile-Noble/dialogue-systems-1-2026/internal/speech"
)

// InputType is an event consumed by the machine: a speech event or the START
// trigger.
type InputType int

const (
	InputReady InputType = iota + 1
	InputStart
	InputSpeakComplete
	InputRecognised
	InputNoInput
	InputListenComplete
)

func (t InputType) String() string {
	switch t {
	case InputReady:
		return "READY"
	case InputStart:
		return "START"
	case InputSpeakComplete:
		return "SPEAK_COMPLETE"
	case InputRecognised:
		return "RECOGNISED"
	case InputNoInput:
		return "NO_INPUT"
	case InputListenComplete:
		return "LISTEN_COMPLETE"
	default:
		return "UNKNOWN"
	}
}

// awaits is the command that must be outstanding for t to be accepted.
func (t InputType) awaits() speech.CommandType {
	switch t {
	case InputReady:
		return speech.CommandPrepare
	case InputSpeakComplete:
		return speech.CommandSpeak
	case InputRecognised, InputNoInput, InputListenComplete:
		return speech.CommandListen
	default:
		return speech.CommandNone
	}
}

type Input struct {
	Type       InputType
	Hypotheses []speech.Hypothesis
}

func Start() Input {
	return Input{Type: InputStart}
}

// FromSpeech converts a speech event into a machine input.
func FromSpeech(ev speech.Event) Input {
	in := Input{Hypotheses: ev.Hypotheses}
	switch ev.Type {
	case speech.EventReady:
		in.Type = InputReady
	case speech.EventSpeakComplete:
		in.Type = InputSpeakComplete
	case speech.EventRecognised:
		in.Type = InputRecognised
	case speech.EventNoInput:
		in.Type = InputNoInput
	case speech.EventListenComplete:
		in.Type = InputListenComplete
	}
	return in
}

type Event interface {
	Type() EventType
	Timestamp() time.Time
}

type EventType int

const (
	EventTypeStateChanged EventType = iota
	EventTypeCommandIssued
	EventTypeConversationCompleted
)

type EventHandler func(event Event)

// EventBus fans published events out to subscribers. Subscribe returns a func
// that removes the subscription.
type EventBus interface {
	Publish(event Event)
	Subscribe(eventType EventType, handler EventHandler) func()
}

type BaseEvent struct {
	eventType EventType
	timestamp time.Time
}

func (e *BaseEvent) Type() EventType {
	return e.eventType
}

func (e *BaseEvent) Timestamp() time.Time {
	return e.timestamp
}

type StateChangedEvent struct {
	BaseEvent
	Old Snapshot
	New Snapshot
}

func NewStateChangedEvent(from, to Snapshot) *StateChangedEvent {
	return &StateChangedEvent{
		BaseEvent: BaseEvent{
			eventType: EventTypeStateChanged,
			timestamp: time.Now(),
		},
		Old: from,
		New: to,
	}
}

type CommandIssuedEvent struct {
	BaseEvent
	Command speech.Command
	State   Snapshot
}

func NewCommandIssuedEvent(cmd speech.Command, state Snapshot) *CommandIssuedEvent {
	return &CommandIssuedEvent{
		BaseEvent: BaseEvent{
			eventType: EventTypeCommandIssued,
			timestamp: time.Now(),
		},
		Command: cmd,
		State:   state,
	}
}

// ConversationCompletedEvent carries the context of a booking that reached Done.
type ConversationCompletedEvent struct {
	BaseEvent
	Conversation int
	Context      Context
}

func NewConversationCompletedEvent(conversation int, c Context) *ConversationCompletedEvent {
	return &ConversationCompletedEvent{
		BaseEvent: BaseEvent{
			eventType: EventTypeConversationCompleted,
			timestamp: time.Now(),
		},
		Conversation: conversation,
		Context:      c.clone(),
	}
}
