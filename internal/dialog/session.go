package dialog

import "github.com/Volatile-Noble/dialogue-systems-1-2026/internal/speech"

// Session is the mutable dialogue state owned by a Machine.
type Session struct {
	ID           string
	Conversation int
	State        State
	Sub          SubState
	Pending      speech.CommandType
	Context      Context
	Seq          uint64
}

// Path renders the active state, e.g. "Day.Ask".
func (s Session) Path() string {
	if s.Sub == SubNone {
		return s.State.String()
	}
	return s.State.String() + "." + s.Sub.String()
}

// Snapshot is an immutable copy of a Session handed to observers.
type Snapshot struct {
	SessionID    string             `json:"session_id"`
	Conversation int                `json:"conversation"`
	State        State              `json:"state"`
	Sub          SubState           `json:"sub_state,omitempty"`
	Path         string             `json:"path"`
	Pending      speech.CommandType `json:"pending"`
	Context      Context            `json:"context"`
	Seq          uint64             `json:"seq"`
}

func (s Session) Snapshot() Snapshot {
	return Snapshot{
		SessionID:    s.ID,
		Conversation: s.Conversation,
		State:        s.State,
		Sub:          s.Sub,
		Path:         s.Path(),
		Pending:      s.Pending,
		Context:      s.Context.clone(),
		Seq:          s.Seq,
	}
}
