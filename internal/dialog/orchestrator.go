package dialog

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/Volatile-Noble/dialogue-systems-1-2026/internal/logging"
	"github.com/Volatile-Noble/dialogue-systems-1-2026/internal/speech"
)

var ErrOrchestratorStarted = errors.New("orchestrator already started")

// Orchestrator drives a Machine against a speech service: it feeds speech
// events and START triggers to the machine one at a time, executes the
// resulting commands and publishes what happened on its event bus.
type Orchestrator interface {
	Start(ctx context.Context) error
	Stop() error
	// Wait blocks until the run loop exits and returns its error.
	Wait() error
	// Trigger queues a START. It reports false when the loop is not running or
	// a START is already queued.
	Trigger() bool
	Snapshot() Snapshot
	Subscribe(eventType EventType, handler EventHandler) func()
}

type orchestratorImpl struct {
	machine  *Machine
	speech   speech.Service
	eventBus EventBus
	triggers chan struct{}

	snapMu   sync.RWMutex
	snapshot Snapshot

	ctx     context.Context
	cancel  context.CancelFunc
	done    chan struct{}
	err     error
	started bool
	mu      sync.Mutex
}

func NewOrchestrator(machine *Machine, svc speech.Service) Orchestrator {
	return &orchestratorImpl{
		machine:  machine,
		speech:   svc,
		eventBus: NewEventBus(),
		triggers: make(chan struct{}, 1),
		snapshot: machine.Snapshot(),
		done:     make(chan struct{}),
	}
}

func (o *orchestratorImpl) Start(ctx context.Context) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.started {
		return ErrOrchestratorStarted
	}
	o.started = true
	o.ctx, o.cancel = context.WithCancel(ctx)

	go func() {
		defer close(o.done)
		o.err = o.run()
		if o.err != nil {
			logging.Errorf("dialog: orchestrator stopped: %v", o.err)
		}
	}()
	return nil
}

func (o *orchestratorImpl) Stop() error {
	o.mu.Lock()
	started := o.started
	if o.cancel != nil {
		o.cancel()
	}
	o.mu.Unlock()

	if !started {
		return nil
	}
	<-o.done
	return nil
}

func (o *orchestratorImpl) Wait() error {
	o.mu.Lock()
	started := o.started
	o.mu.Unlock()

	if !started {
		return nil
	}
	<-o.done
	return o.err
}

func (o *orchestratorImpl) Trigger() bool {
	o.mu.Lock()
	started := o.started
	o.mu.Unlock()
	if !started {
		return false
	}

	select {
	case <-o.done:
		return false
	default:
	}
	select {
	case o.triggers <- struct{}{}:
		return true
	default:
		return false
	}
}

func (o *orchestratorImpl) Snapshot() Snapshot {
	o.snapMu.RLock()
	defer o.snapMu.RUnlock()
	return o.snapshot
}

func (o *orchestratorImpl) Subscribe(eventType EventType, handler EventHandler) func() {
	return o.eventBus.Subscribe(eventType, handler)
}

func (o *orchestratorImpl) run() error {
	ctx := o.ctx
	logging.SetSessionID(o.machine.Snapshot().SessionID)

	step, err := o.machine.Init(ctx)
	if err != nil {
		return err
	}
	if err := o.apply(ctx, Input{}, step); err != nil {
		return err
	}

	events := o.speech.Events()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-o.triggers:
			if err := o.dispatch(ctx, Start()); err != nil {
				return err
			}
		case ev, ok := <-events:
			if !ok {
				return speech.ErrClosed
			}
			if err := o.dispatch(ctx, FromSpeech(ev)); err != nil {
				return err
			}
		}
	}
}

func (o *orchestratorImpl) dispatch(ctx context.Context, in Input) error {
	if in.Type == InputRecognised {
		logging.StartTurn()
		logging.Infof("dialog: recognised %q in %s", topUtterance(in), o.Snapshot().Path)
	}

	step, err := o.machine.Dispatch(ctx, in)
	if err != nil {
		return err
	}
	if !step.Handled {
		return nil
	}
	return o.apply(ctx, in, step)
}

func (o *orchestratorImpl) apply(ctx context.Context, in Input, step Step) error {
	o.snapMu.Lock()
	o.snapshot = step.To
	o.snapMu.Unlock()

	if step.To.Conversation != step.From.Conversation {
		logging.SetSessionID(fmt.Sprintf("%s-%d", step.To.SessionID, step.To.Conversation))
		logging.Infof("dialog: conversation %d started", step.To.Conversation)
	}
	if step.From.Path != step.To.Path {
		logging.Infof("dialog: %s -> %s", step.From.Path, step.To.Path)
	} else if in.Type != 0 {
		logging.Debugf("dialog: %s handled in %s", in.Type, step.To.Path)
	}

	o.eventBus.Publish(NewStateChangedEvent(step.From, step.To))

	if step.Command != nil {
		cmd := *step.Command
		o.eventBus.Publish(NewCommandIssuedEvent(cmd, step.To))
		if err := speech.Execute(ctx, o.speech, cmd); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("execute %s: %w", cmd.Type, err)
		}
	}

	if step.Completed {
		logging.Infof("dialog: appointment created with %s on %s", step.To.Context.Person, step.To.Context.Day)
		o.eventBus.Publish(NewConversationCompletedEvent(step.To.Conversation, step.To.Context))
	}
	return nil
}

func topUtterance(in Input) string {
	if len(in.Hypotheses) == 0 {
		return ""
	}
	return in.Hypotheses[0].Utterance
}
