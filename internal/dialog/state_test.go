package dialog

import (
	"testing"

	"github.com/Volatile-Noble/dialogue-systems-1-2026/internal/grammar"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		name     string
		from     State
		to       State
		expected bool
	}{
		{"Prepare can go to WaitToStart", StatePrepare, StateWaitToStart, true},
		{"WaitToStart can go to Greeting", StateWaitToStart, StateGreeting, true},
		{"Meeting can re-enter itself", StateMeeting, StateMeeting, true},
		{"Whole can skip Time", StateWhole, StateConfirm, true},
		{"Confirm can go back to Meeting", StateConfirm, StateMeeting, true},
		{"Done can restart", StateDone, StateGreeting, true},
		{"Prepare cannot go to Greeting", StatePrepare, StateGreeting, false},
		{"Meeting cannot skip to Time", StateMeeting, StateTime, false},
		{"Greeting cannot re-enter itself", StateGreeting, StateGreeting, false},
		{"Fin cannot go back to Confirm", StateFin, StateConfirm, false},
		{"Unknown state", State(99), StateDone, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanTransition(tt.from, tt.to); got != tt.expected {
				t.Errorf("CanTransition(%v, %v) = %v, want %v", tt.from, tt.to, got, tt.expected)
			}
		})
	}
}

func TestTableEdgesAreValid(t *testing.T) {
	for _, opts := range []tableOptions{
		{grammar: grammar.Default()},
		{grammar: grammar.Default(), echoSlots: true},
		{grammar: grammar.Default(), clearOnReject: true},
	} {
		for _, tr := range buildTable(opts) {
			if tr.internal {
				if tr.sub != SubAsk || tr.reduce == nil {
					t.Errorf("internal row %s.%s --%s--> must be an Ask reducer", tr.state, tr.sub, tr.input)
				}
				continue
			}
			if !CanTransition(tr.state, tr.target) {
				t.Errorf("row %s.%s --%s--> %s is not a valid transition", tr.state, tr.sub, tr.input, tr.target)
			}
			if tr.target.IsSlot() && tr.targetSub == SubNone {
				t.Errorf("row %s --%s--> %s enters a slot without a sub-state", tr.state, tr.input, tr.target)
			}
			if !tr.target.IsSlot() && tr.targetSub != SubNone {
				t.Errorf("row %s --%s--> %s sets a sub-state on a plain state", tr.state, tr.input, tr.target)
			}
		}
	}
}

func TestLookupPrefersChildHandlers(t *testing.T) {
	table := buildTable(tableOptions{grammar: grammar.Default()})

	tr, ok := lookup(table, StateMeeting, SubAsk, Input{Type: InputRecognised}, Context{})
	if !ok || !tr.internal || tr.sub != SubAsk {
		t.Fatalf("expected the Ask handler for RECOGNISED, got %+v", tr)
	}

	tr, ok = lookup(table, StateMeeting, SubAsk, Input{Type: InputListenComplete}, Context{})
	if !ok || tr.sub != SubNone || tr.targetSub != SubNoInput {
		t.Fatalf("expected the parent fallback for LISTEN_COMPLETE, got %+v", tr)
	}

	if _, ok := lookup(table, StateGreeting, SubNone, Input{Type: InputListenComplete}, Context{}); ok {
		t.Fatalf("Greeting has no LISTEN_COMPLETE handler")
	}
}

func TestStateStrings(t *testing.T) {
	if got := (Session{State: StateDay, Sub: SubNoInput}).Path(); got != "Day.NoInput" {
		t.Fatalf("Path() = %q", got)
	}
	if got := (Session{State: StateFin}).Path(); got != "Fin" {
		t.Fatalf("Path() = %q", got)
	}
	if !StateDone.Startable() || StateMeeting.Startable() {
		t.Fatalf("unexpected Startable() result")
	}
}
