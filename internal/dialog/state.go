package dialog

import "slices"

// State is a top-level state of the booking dialogue.
type State int

const (
	StatePrepare State = iota
	StateWaitToStart
	StateGreeting
	StateMeeting
	StateCheckPerson
	StateDay
	StateCheckDay
	StateWhole
	StateTime
	StateCheckTime
	StateConfirm
	StateFin
	StateDone
)

func (s State) String() string {
	switch s {
	case StatePrepare:
		return "Prepare"
	case StateWaitToStart:
		return "WaitToStart"
	case StateGreeting:
		return "Greeting"
	case StateMeeting:
		return "Meeting"
	case StateCheckPerson:
		return "CheckPerson"
	case StateDay:
		return "Day"
	case StateCheckDay:
		return "CheckDay"
	case StateWhole:
		return "Whole"
	case StateTime:
		return "Time"
	case StateCheckTime:
		return "CheckTime"
	case StateConfirm:
		return "Confirm"
	case StateFin:
		return "Fin"
	case StateDone:
		return "Done"
	default:
		return "Unknown"
	}
}

func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// IsSlot reports whether s runs the Prompt/Ask/NoInput sub-dialogue.
func (s State) IsSlot() bool {
	switch s {
	case StateMeeting, StateDay, StateWhole, StateTime, StateConfirm:
		return true
	default:
		return false
	}
}

// Startable reports whether a START trigger is accepted in s.
func (s State) Startable() bool {
	return s == StateWaitToStart || s == StateDone
}

// SubState is the position inside a slot sub-dialogue.
type SubState int

const (
	SubNone SubState = iota
	SubPrompt
	SubAsk
	SubNoInput
)

func (s SubState) String() string {
	switch s {
	case SubNone:
		return ""
	case SubPrompt:
		return "Prompt"
	case SubAsk:
		return "Ask"
	case SubNoInput:
		return "NoInput"
	default:
		return "Unknown"
	}
}

func (s SubState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// validTransitions lists the legal top-level edges. Slot states loop onto
// themselves for moves between their sub-states.
var validTransitions = map[State][]State{
	StatePrepare:     {StateWaitToStart},
	StateWaitToStart: {StateGreeting},
	StateGreeting:    {StateMeeting},
	StateMeeting:     {StateMeeting, StateCheckPerson, StateDay},
	StateCheckPerson: {StateDay},
	StateDay:         {StateDay, StateCheckDay, StateWhole},
	StateCheckDay:    {StateWhole},
	StateWhole:       {StateWhole, StateTime, StateConfirm},
	StateTime:        {StateTime, StateCheckTime, StateConfirm},
	StateCheckTime:   {StateConfirm},
	StateConfirm:     {StateConfirm, StateMeeting, StateFin},
	StateFin:         {StateDone},
	StateDone:        {StateGreeting},
}

// CanTransition checks the edge from -> to against validTransitions.
func CanTransition(from, to State) bool {
	validTo, ok := validTransitions[from]
	if !ok {
		return false
	}

	return slices.Contains(validTo, to)
}
