package dialog

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	metricTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dialog_transitions_total",
		Help: "Dialogue state transitions",
	}, []string{"from", "to"})

	metricEventsIgnored = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dialog_events_ignored_total",
		Help: "Inputs dropped because no handler or no matching pending command",
	}, []string{"state", "input"})

	metricNoInput = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dialog_no_input_total",
		Help: "Silent listens per slot",
	}, []string{"state"})

	metricGrammarMiss = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dialog_grammar_miss_total",
		Help: "Recognised utterances the slot grammar could not use",
	}, []string{"state"})

	metricCommands = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dialog_commands_total",
		Help: "Speech commands issued",
	}, []string{"type"})

	metricConversationsStarted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dialog_conversations_started_total",
		Help: "Conversations started by a START trigger",
	})

	metricConversationsCompleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dialog_conversations_completed_total",
		Help: "Conversations that reached Done",
	})
)
