package dialog

import (
	"context"
	"errors"
	"fmt"

	"github.com/Volatile-Noble/dialogue-systems-1-2026/internal/grammar"
	"github.com/Volatile-Noble/dialogue-systems-1-2026/internal/logging"
	"github.com/Volatile-Noble/dialogue-systems-1-2026/internal/prompts"
	"github.com/Volatile-Noble/dialogue-systems-1-2026/internal/speech"
)

var (
	ErrNoPrompter         = errors.New("dialog machine needs a prompter")
	ErrAlreadyInitialized = errors.New("dialog machine already initialized")
	ErrInvalidTransition  = errors.New("invalid dialog transition")
)

// Prompter renders the spoken text for a prompt kind.
type Prompter interface {
	Render(ctx context.Context, kind prompts.Kind, v prompts.Values) (string, error)
}

type Options struct {
	Grammar  *grammar.Grammar
	Prompter Prompter
	// EchoSlots inserts the CheckPerson/CheckDay/CheckTime echo states.
	EchoSlots bool
	// ClearOnReject unsets every slot when the confirmation is declined.
	ClearOnReject bool
	SessionID     string
}

// Step is the outcome of one dispatch. Command is nil when nothing has to be
// sent to the speech service.
type Step struct {
	Handled   bool
	From      Snapshot
	To        Snapshot
	Command   *speech.Command
	Completed bool
}

// Machine runs the booking dialogue over one Session. It is not safe for
// concurrent use; the orchestrator owns it from a single goroutine.
type Machine struct {
	prompter    Prompter
	table       []transition
	session     Session
	initialized bool
}

func NewMachine(opts Options) (*Machine, error) {
	if opts.Prompter == nil {
		return nil, ErrNoPrompter
	}
	if opts.Grammar == nil {
		opts.Grammar = grammar.Default()
	}
	if opts.SessionID == "" {
		opts.SessionID = logging.NewSessionID()
	}

	table := buildTable(tableOptions{
		grammar:       opts.Grammar,
		echoSlots:     opts.EchoSlots,
		clearOnReject: opts.ClearOnReject,
	})
	for _, t := range table {
		if !t.internal && !CanTransition(t.state, t.target) {
			return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, t.state, t.target)
		}
	}

	return &Machine{
		prompter: opts.Prompter,
		table:    table,
		session: Session{
			ID:    opts.SessionID,
			State: StatePrepare,
		},
	}, nil
}

func (m *Machine) Snapshot() Snapshot {
	return m.session.Snapshot()
}

// Init enters Prepare and returns the PREPARE command.
func (m *Machine) Init(ctx context.Context) (Step, error) {
	if m.initialized {
		return Step{}, ErrAlreadyInitialized
	}
	before := m.session.Snapshot()

	cmd, err := m.entryCommand(ctx, StatePrepare, SubNone, Context{})
	if err != nil {
		return Step{}, err
	}
	m.initialized = true
	m.session.Pending = cmd.Type
	m.session.Seq++
	metricCommands.WithLabelValues(cmd.Type.String()).Inc()

	return Step{Handled: true, From: before, To: m.session.Snapshot(), Command: cmd}, nil
}

// Dispatch feeds one input to the machine. Inputs that match no handler, or
// arrive without the command they answer being outstanding, are ignored and
// leave the session untouched.
func (m *Machine) Dispatch(ctx context.Context, in Input) (Step, error) {
	before := m.session.Snapshot()
	ignored := Step{From: before, To: before}

	if !m.initialized || in.Type.awaits() != m.session.Pending {
		m.ignore(in, "no matching pending command")
		return ignored, nil
	}

	t, ok := lookup(m.table, m.session.State, m.session.Sub, in, m.session.Context)
	if !ok {
		m.ignore(in, "no handler")
		return ignored, nil
	}

	next := m.session
	if t.reduce != nil {
		next.Context = t.reduce(next.Context, in)
	}

	var cmd *speech.Command
	if !t.internal {
		if !CanTransition(m.session.State, t.target) {
			return ignored, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, m.session.State, t.target)
		}
		var err error
		cmd, err = m.entryCommand(ctx, t.target, t.targetSub, next.Context)
		if err != nil {
			return ignored, fmt.Errorf("enter %s: %w", t.target, err)
		}
		next.State, next.Sub = t.target, t.targetSub
		next.Pending = speech.CommandNone
		if cmd != nil {
			next.Pending = cmd.Type
		}
	}
	if in.Type == InputStart {
		next.Conversation++
	}
	next.Seq++
	m.session = next

	step := Step{
		Handled:   true,
		From:      before,
		To:        m.session.Snapshot(),
		Command:   cmd,
		Completed: before.State == StateFin && next.State == StateDone,
	}
	m.record(in, step)
	return step, nil
}

func (m *Machine) ignore(in Input, reason string) {
	logging.Debugf("dialog: ignoring %s in %s (%s, pending %s)", in.Type, m.session.Path(), reason, m.session.Pending)
	metricEventsIgnored.WithLabelValues(m.session.State.String(), in.Type.String()).Inc()
}

func (m *Machine) record(in Input, step Step) {
	switch in.Type {
	case InputNoInput:
		metricNoInput.WithLabelValues(step.From.State.String()).Inc()
	case InputRecognised:
		if !step.To.Context.hasResult() {
			metricGrammarMiss.WithLabelValues(step.From.State.String()).Inc()
		}
	case InputStart:
		metricConversationsStarted.Inc()
	}
	if step.Completed {
		metricConversationsCompleted.Inc()
	}
	if step.Command != nil {
		metricCommands.WithLabelValues(step.Command.Type.String()).Inc()
	}
	if step.From.Path != step.To.Path {
		metricTransitions.WithLabelValues(step.From.Path, step.To.Path).Inc()
	}
}

// entryCommand is the speech command issued on entering state/sub.
func (m *Machine) entryCommand(ctx context.Context, state State, sub SubState, c Context) (*speech.Command, error) {
	switch state {
	case StatePrepare:
		return &speech.Command{Type: speech.CommandPrepare}, nil
	case StateWaitToStart, StateDone:
		return nil, nil
	case StateGreeting:
		return m.speak(ctx, prompts.KindGreeting, c)
	case StateCheckPerson, StateCheckDay, StateCheckTime:
		return m.speak(ctx, prompts.KindEcho, c)
	case StateFin:
		return m.speak(ctx, prompts.KindCreated, c)
	}

	switch sub {
	case SubAsk:
		return &speech.Command{Type: speech.CommandListen}, nil
	case SubNoInput:
		return m.speak(ctx, prompts.KindNoInput, c)
	case SubPrompt:
		return m.speak(ctx, promptKind(state, c), c)
	default:
		return nil, fmt.Errorf("%w: %s without sub-state", ErrInvalidTransition, state)
	}
}

func (m *Machine) speak(ctx context.Context, kind prompts.Kind, c Context) (*speech.Command, error) {
	text, err := m.prompter.Render(ctx, kind, prompts.Values{
		Person:    c.Person,
		Day:       c.Day,
		Time:      c.Time,
		Utterance: c.Utterance(),
	})
	if err != nil {
		return nil, fmt.Errorf("render %s prompt: %w", kind, err)
	}
	return &speech.Command{Type: speech.CommandSpeak, Utterance: text}, nil
}

func promptKind(state State, c Context) prompts.Kind {
	switch state {
	case StateMeeting:
		return prompts.KindMeeting
	case StateDay:
		return prompts.KindDay
	case StateWhole:
		return prompts.KindWhole
	case StateTime:
		return prompts.KindTime
	case StateConfirm:
		if isTrue(c.WholeDay) {
			return prompts.KindConfirmWholeDay
		}
		return prompts.KindConfirm
	default:
		return prompts.KindNoInput
	}
}
