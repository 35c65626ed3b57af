package speech

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
)

// Console plays the speech service on a terminal: prompts are printed and
// every LISTEN reads one line, timing out into NO_INPUT.
type Console struct {
	cfg    Config
	out    io.Writer
	lines  chan string
	cmds   chan Command
	events chan Event
	done   chan struct{}

	closeOnce sync.Once
}

func NewConsole(cfg Config, in io.Reader, out io.Writer) *Console {
	c := &Console{
		cfg:    cfg.withDefaults(),
		out:    out,
		lines:  make(chan string),
		cmds:   make(chan Command),
		events: make(chan Event, 8),
		done:   make(chan struct{}),
	}
	go c.readLines(in)
	go c.run()
	return c
}

func (c *Console) Prepare(ctx context.Context) error {
	return c.send(ctx, Command{Type: CommandPrepare})
}

func (c *Console) Speak(ctx context.Context, text string) error {
	return c.send(ctx, Command{Type: CommandSpeak, Utterance: text})
}

func (c *Console) Listen(ctx context.Context) error {
	return c.send(ctx, Command{Type: CommandListen})
}

// Events is closed when the console is closed or stdin reaches EOF.
func (c *Console) Events() <-chan Event {
	return c.events
}

func (c *Console) Close() error {
	c.closeOnce.Do(func() { close(c.done) })
	return nil
}

func (c *Console) send(ctx context.Context, cmd Command) error {
	select {
	case <-c.done:
		return ErrClosed
	default:
	}
	select {
	case c.cmds <- cmd:
		return nil
	case <-c.done:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *Console) readLines(in io.Reader) {
	defer close(c.lines)
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		select {
		case c.lines <- scanner.Text():
		case <-c.done:
			return
		}
	}
}

func (c *Console) run() {
	defer close(c.events)
	for {
		select {
		case <-c.done:
			return
		case cmd := <-c.cmds:
			if !c.handle(cmd) {
				return
			}
		}
	}
}

func (c *Console) handle(cmd Command) bool {
	switch cmd.Type {
	case CommandPrepare:
		fmt.Fprintf(c.out, "[speech ready: %s, %s]\n", c.cfg.Locale, c.cfg.Voice)
		return c.emit(Event{Type: EventReady})
	case CommandSpeak:
		fmt.Fprintf(c.out, "bot> %s\n", cmd.Utterance)
		return c.emit(Event{Type: EventSpeakComplete})
	case CommandListen:
		return c.listen()
	}
	return true
}

func (c *Console) listen() bool {
	fmt.Fprint(c.out, "you> ")

	timer := time.NewTimer(c.cfg.NoInputTimeout)
	defer timer.Stop()

	var ev Event
	select {
	case line, ok := <-c.lines:
		if !ok {
			return false
		}
		line = strings.TrimSpace(line)
		if line == "" {
			ev = Event{Type: EventNoInput}
		} else {
			ev = Event{Type: EventRecognised, Hypotheses: []Hypothesis{{Utterance: line, Confidence: 1}}}
		}
	case <-timer.C:
		fmt.Fprintln(c.out, "(no input)")
		ev = Event{Type: EventNoInput}
	case <-c.done:
		return false
	}

	return c.emit(ev) && c.emit(Event{Type: EventListenComplete})
}

func (c *Console) emit(ev Event) bool {
	select {
	case c.events <- ev:
		return true
	case <-c.done:
		return false
	}
}
