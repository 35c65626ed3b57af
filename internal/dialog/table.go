package dialog

import (
	"github.com/Volatile-Noble/dialogue-systems-1-2026/internal/grammar"
)

// Guard decides whether a transition applies to the current context.
type Guard func(Context) bool

// Reducer derives the next context from the current one and the input.
type Reducer func(Context, Input) Context

// transition is one row of the ordered table. A row with sub == SubNone on a
// slot state is a parent handler and is only consulted after the rows of the
// active sub-state. Internal rows run their reducer without leaving the state.
type transition struct {
	state     State
	sub       SubState
	input     InputType
	guard     Guard
	reduce    Reducer
	target    State
	targetSub SubState
	internal  bool
}

type tableOptions struct {
	grammar       *grammar.Grammar
	echoSlots     bool
	clearOnReject bool
}

func buildTable(opts tableOptions) []transition {
	g := opts.grammar

	afterMeeting, afterDay, afterTime := StateDay, StateWhole, StateConfirm
	if opts.echoSlots {
		afterMeeting, afterDay, afterTime = StateCheckPerson, StateCheckDay, StateCheckTime
	}

	var onReject Reducer
	if opts.clearOnReject {
		onReject = resetContext
	}

	table := []transition{
		{state: StatePrepare, input: InputReady, target: StateWaitToStart},
		{state: StateWaitToStart, input: InputStart, reduce: resetContext, target: StateGreeting},
		{state: StateGreeting, input: InputSpeakComplete, target: StateMeeting, targetSub: SubPrompt},
	}

	table = append(table, slotRows(StateMeeting, func(c *Context, utterance string) bool {
		c.Person, _ = g.MatchPerson(utterance)
		return c.Person != ""
	})...)
	table = append(table,
		transition{state: StateMeeting, input: InputListenComplete, guard: slotFilled(func(c Context) bool { return c.Person != "" }), target: afterMeeting, targetSub: slotSub(afterMeeting)},
		transition{state: StateMeeting, input: InputListenComplete, target: StateMeeting, targetSub: SubNoInput},
		transition{state: StateCheckPerson, input: InputSpeakComplete, target: StateDay, targetSub: SubPrompt},
	)

	table = append(table, slotRows(StateDay, func(c *Context, utterance string) bool {
		c.Day, _ = g.MatchDay(utterance)
		return c.Day != ""
	})...)
	table = append(table,
		transition{state: StateDay, input: InputListenComplete, guard: slotFilled(func(c Context) bool { return c.Day != "" }), target: afterDay, targetSub: slotSub(afterDay)},
		transition{state: StateDay, input: InputListenComplete, target: StateDay, targetSub: SubNoInput},
		transition{state: StateCheckDay, input: InputSpeakComplete, target: StateWhole, targetSub: SubPrompt},
	)

	table = append(table, slotRows(StateWhole, func(c *Context, utterance string) bool {
		c.WholeDay = matchYesNo(g, utterance)
		return c.WholeDay != nil
	})...)
	table = append(table,
		transition{state: StateWhole, input: InputListenComplete, guard: slotFilled(func(c Context) bool { return isTrue(c.WholeDay) }), target: StateConfirm, targetSub: SubPrompt},
		transition{state: StateWhole, input: InputListenComplete, guard: slotFilled(func(c Context) bool { return isFalse(c.WholeDay) }), target: StateTime, targetSub: SubPrompt},
		transition{state: StateWhole, input: InputListenComplete, target: StateWhole, targetSub: SubNoInput},
	)

	table = append(table, slotRows(StateTime, func(c *Context, utterance string) bool {
		c.Time, _ = g.MatchTime(utterance)
		return c.Time != ""
	})...)
	table = append(table,
		transition{state: StateTime, input: InputListenComplete, guard: slotFilled(func(c Context) bool { return c.Time != "" }), target: afterTime, targetSub: slotSub(afterTime)},
		transition{state: StateTime, input: InputListenComplete, target: StateTime, targetSub: SubNoInput},
		transition{state: StateCheckTime, input: InputSpeakComplete, target: StateConfirm, targetSub: SubPrompt},
	)

	table = append(table, slotRows(StateConfirm, func(c *Context, utterance string) bool {
		c.Complete = matchYesNo(g, utterance)
		return c.Complete != nil
	})...)
	table = append(table,
		transition{state: StateConfirm, input: InputListenComplete, guard: slotFilled(func(c Context) bool { return isTrue(c.Complete) }), target: StateFin},
		transition{state: StateConfirm, input: InputListenComplete, guard: slotFilled(func(c Context) bool { return isFalse(c.Complete) }), reduce: onReject, target: StateMeeting, targetSub: SubPrompt},
		transition{state: StateConfirm, input: InputListenComplete, target: StateConfirm, targetSub: SubNoInput},

		transition{state: StateFin, input: InputSpeakComplete, target: StateDone},
		transition{state: StateDone, input: InputStart, reduce: resetContext, target: StateGreeting},
	)

	return table
}

// slotRows are the child handlers shared by every slot sub-dialogue.
func slotRows(s State, fill func(c *Context, utterance string) bool) []transition {
	return []transition{
		{state: s, sub: SubPrompt, input: InputSpeakComplete, target: s, targetSub: SubAsk},
		{state: s, sub: SubAsk, input: InputRecognised, reduce: evaluate(fill), internal: true},
		{state: s, sub: SubAsk, input: InputNoInput, reduce: clearResult, internal: true},
		{state: s, sub: SubNoInput, input: InputSpeakComplete, target: s, targetSub: SubAsk},
	}
}

// evaluate writes the slot from the top hypothesis. A grammar miss unsets the
// slot and drops LastResult so the parent guard treats it like silence.
func evaluate(fill func(c *Context, utterance string) bool) Reducer {
	return func(c Context, in Input) Context {
		next := c.clone()
		utterance := ""
		if len(in.Hypotheses) > 0 {
			utterance = in.Hypotheses[0].Utterance
		}
		if fill(&next, utterance) {
			next.LastResult = cloneHypotheses(in.Hypotheses)
		} else {
			next.LastResult = nil
		}
		return next
	}
}

func clearResult(c Context, _ Input) Context {
	next := c.clone()
	next.LastResult = nil
	return next
}

func resetContext(Context, Input) Context {
	return Context{}
}

func slotFilled(cond func(Context) bool) Guard {
	return func(c Context) bool {
		return c.hasResult() && cond(c)
	}
}

func slotSub(s State) SubState {
	if s.IsSlot() {
		return SubPrompt
	}
	return SubNone
}

func matchYesNo(g *grammar.Grammar, utterance string) *bool {
	v, ok := g.MatchYesNo(utterance)
	if !ok {
		return nil
	}
	return boolPtr(v)
}

// lookup returns the first applicable row, child handlers before parent ones.
func lookup(table []transition, state State, sub SubState, in Input, c Context) (transition, bool) {
	scopes := []SubState{sub}
	if sub != SubNone {
		scopes = append(scopes, SubNone)
	}

	for _, scope := range scopes {
		for _, t := range table {
			if t.state != state || t.sub != scope || t.input != in.Type {
				continue
			}
			if t.guard != nil && !t.guard(c) {
				continue
			}
			return t, true
		}
	}
	return transition{}, false
}
