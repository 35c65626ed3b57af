// Package prompts renders the spoken texts of the booking dialogue.
package prompts

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"
)

// Kind selects one of the dialogue prompts.
type Kind int

const (
	KindGreeting Kind = iota
	KindMeeting
	KindDay
	KindWhole
	KindTime
	KindConfirm
	KindConfirmWholeDay
	KindNoInput
	KindEcho
	KindCreated
)

func (k Kind) String() string {
	switch k {
	case KindGreeting:
		return "greeting"
	case KindMeeting:
		return "meeting"
	case KindDay:
		return "day"
	case KindWhole:
		return "whole"
	case KindTime:
		return "time"
	case KindConfirm:
		return "confirm"
	case KindConfirmWholeDay:
		return "confirm_whole_day"
	case KindNoInput:
		return "no_input"
	case KindEcho:
		return "echo"
	case KindCreated:
		return "created"
	default:
		return "unknown"
	}
}

var ErrUnknownKind = errors.New("unknown prompt kind")

// Templates holds one FString template per prompt kind. Placeholders are
// {person}, {day}, {time} and {utterance}.
type Templates struct {
	Greeting        string `json:"greeting" yaml:"greeting"`
	Meeting         string `json:"meeting" yaml:"meeting"`
	Day             string `json:"day" yaml:"day"`
	Whole           string `json:"whole" yaml:"whole"`
	Time            string `json:"time" yaml:"time"`
	Confirm         string `json:"confirm" yaml:"confirm"`
	ConfirmWholeDay string `json:"confirm_whole_day" yaml:"confirm_whole_day"`
	NoInput         string `json:"no_input" yaml:"no_input"`
	Echo            string `json:"echo" yaml:"echo"`
	Created         string `json:"created" yaml:"created"`
}

func DefaultTemplates() Templates {
	return Templates{
		Greeting:        "Hi, let's create an appointment.",
		Meeting:         "Who are you meeting with?",
		Day:             "On which day are you meeting {person}?",
		Whole:           "Will your appointment take the whole day?",
		Time:            "What time on {day} do you wish to meet {person}?",
		Confirm:         "Do you want me to create an appointment with {person} on {day} at {time}?",
		ConfirmWholeDay: "Do you want me to create an appointment with {person} on {day} for the whole day?",
		NoInput:         "I can't hear you!",
		Echo:            "You just said: {utterance}.",
		Created:         "Your appointment has been created.",
	}
}

// WithDefaults fills every empty template from DefaultTemplates.
func (t Templates) WithDefaults() Templates {
	d := DefaultTemplates()
	fill := func(dst *string, def string) {
		if strings.TrimSpace(*dst) == "" {
			*dst = def
		}
	}
	fill(&t.Greeting, d.Greeting)
	fill(&t.Meeting, d.Meeting)
	fill(&t.Day, d.Day)
	fill(&t.Whole, d.Whole)
	fill(&t.Time, d.Time)
	fill(&t.Confirm, d.Confirm)
	fill(&t.ConfirmWholeDay, d.ConfirmWholeDay)
	fill(&t.NoInput, d.NoInput)
	fill(&t.Echo, d.Echo)
	fill(&t.Created, d.Created)
	return t
}

func (t Templates) byKind() map[Kind]string {
	return map[Kind]string{
		KindGreeting:        t.Greeting,
		KindMeeting:         t.Meeting,
		KindDay:             t.Day,
		KindWhole:           t.Whole,
		KindTime:            t.Time,
		KindConfirm:         t.Confirm,
		KindConfirmWholeDay: t.ConfirmWholeDay,
		KindNoInput:         t.NoInput,
		KindEcho:            t.Echo,
		KindCreated:         t.Created,
	}
}

type Values struct {
	Person    string
	Day       string
	Time      string
	Utterance string
}

func (v Values) toMap() map[string]any {
	return map[string]any{
		"person":    v.Person,
		"day":       v.Day,
		"time":      v.Time,
		"utterance": v.Utterance,
	}
}

// Renderer turns a prompt kind plus slot values into the text handed to SPEAK.
type Renderer struct {
	templates map[Kind]prompt.ChatTemplate
}

// New builds one chat template per kind and renders each once with sample
// values so a broken placeholder fails at startup rather than mid-dialogue.
func New(ctx context.Context, t Templates) (*Renderer, error) {
	r := &Renderer{templates: make(map[Kind]prompt.ChatTemplate)}
	sample := Values{Person: "Adam", Day: "Monday", Time: "3:00 pm", Utterance: "adam"}

	for kind, text := range t.WithDefaults().byKind() {
		r.templates[kind] = prompt.FromMessages(schema.FString, schema.AssistantMessage(text, nil))
		if _, err := r.Render(ctx, kind, sample); err != nil {
			return nil, fmt.Errorf("invalid %s prompt template: %w", kind, err)
		}
	}
	return r, nil
}

// Render fills the template of kind with v.
func (r *Renderer) Render(ctx context.Context, kind Kind, v Values) (string, error) {
	tpl, ok := r.templates[kind]
	if !ok {
		return "", fmt.Errorf("%w: %d", ErrUnknownKind, int(kind))
	}

	msgs, err := tpl.Format(ctx, v.toMap())
	if err != nil {
		return "", err
	}
	if len(msgs) == 0 {
		return "", nil
	}
	return strings.TrimSpace(msgs[0].Content), nil
}
