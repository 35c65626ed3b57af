package dialog

import "github.com/Volatile-Noble/dialogue-systems-1-2026/internal/speech"

// Context is the conversation context. Unset slots are the zero value.
type Context struct {
	LastResult []speech.Hypothesis `json:"last_result,omitempty"`
	Person     string              `json:"person,omitempty"`
	Day        string              `json:"day,omitempty"`
	Time       string              `json:"time,omitempty"`
	WholeDay   *bool               `json:"whole_day,omitempty"`
	Complete   *bool               `json:"complete,omitempty"`
}

func (c Context) clone() Context {
	next := c
	next.LastResult = cloneHypotheses(c.LastResult)
	next.WholeDay = cloneBool(c.WholeDay)
	next.Complete = cloneBool(c.Complete)
	return next
}

// Utterance is the top hypothesis of LastResult, or "".
func (c Context) Utterance() string {
	if len(c.LastResult) == 0 {
		return ""
	}
	return c.LastResult[0].Utterance
}

func (c Context) hasResult() bool {
	return c.LastResult != nil
}

func isTrue(b *bool) bool  { return b != nil && *b }
func isFalse(b *bool) bool { return b != nil && !*b }

func boolPtr(b bool) *bool { return &b }

func cloneBool(b *bool) *bool {
	if b == nil {
		return nil
	}
	return boolPtr(*b)
}

func cloneHypotheses(h []speech.Hypothesis) []speech.Hypothesis {
	if h == nil {
		return nil
	}
	out := make([]speech.Hypothesis, len(h))
	copy(out, h)
	return out
}
