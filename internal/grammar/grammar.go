// Package grammar maps recognized utterances onto the typed slot values the
// booking dialogue collects. Every matcher is total: a miss is reported through
// the boolean result, never through an error.
package grammar

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/elliotchance/pie/v2"
)

var ErrInvalidToken = errors.New("grammar token must be a single lowercase word")

// Lexicon holds the fixed vocabularies keyed by lowercase token.
type Lexicon struct {
	People map[string]string
	Days   map[string]string
}

func DefaultLexicon() Lexicon {
	return Lexicon{
		People: map[string]string{
			"adam": "Adam",
			"vlad": "Vladislav Maraev",
			"bora": "Bora Kara",
			"tal":  "Talha Bedir",
			"tom":  "Tom Södahl Bladsjö",
		},
		Days: map[string]string{
			"monday":    "Monday",
			"tuesday":   "Tuesday",
			"wednesday": "Wednesday",
			"thursday":  "Thursday",
			"friday":    "Friday",
			"saturday":  "Saturday",
			"sunday":    "Sunday",
		},
	}
}

var (
	affirmatives = []string{"yes", "yeah", "yea", "yep"}
	negatives    = []string{"no", "nope", "nah"}

	timePattern    = regexp.MustCompile(`(\d+)(?::(\d+))?\s*(am|pm)?`)
	meridiemDots   = strings.NewReplacer("a.m.", "am", "p.m.", "pm")
	defaultGrammar = mustNew(DefaultLexicon())
)

// Grammar bundles a lexicon with the slot matchers.
type Grammar struct {
	lexicon Lexicon
}

// New validates the lexicon. Tokens are compared against words split on
// non-letter runes, so a key with spaces, digits or upper case could never hit.
func New(lex Lexicon) (*Grammar, error) {
	for _, table := range []map[string]string{lex.People, lex.Days} {
		for token, value := range table {
			if !validToken(token) {
				return nil, fmt.Errorf("%w: %q", ErrInvalidToken, token)
			}
			if strings.TrimSpace(value) == "" {
				return nil, fmt.Errorf("empty value for grammar token %q", token)
			}
		}
	}
	return &Grammar{lexicon: lex}, nil
}

func mustNew(lex Lexicon) *Grammar {
	g, err := New(lex)
	if err != nil {
		panic(err)
	}
	return g
}

func Default() *Grammar {
	return defaultGrammar
}

// MatchPerson returns the display name of the first utterance token found in
// the people table.
func (g *Grammar) MatchPerson(utterance string) (string, bool) {
	return lookupFirst(g.lexicon.People, utterance)
}

// MatchDay is MatchPerson over the weekday table.
func (g *Grammar) MatchDay(utterance string) (string, bool) {
	return lookupFirst(g.lexicon.Days, utterance)
}

// MatchTime extracts the first "H[:MM][am|pm]" expression and renders it on a
// 12-hour clock, e.g. "15:30" -> "3:30 pm".
func (g *Grammar) MatchTime(utterance string) (string, bool) {
	text := meridiemDots.Replace(strings.ToLower(utterance))
	m := timePattern.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}

	hour, err := strconv.Atoi(m[1])
	if err != nil || hour > 23 {
		return "", false
	}
	minute := 0
	if m[2] != "" {
		minute, err = strconv.Atoi(m[2])
		if err != nil || minute > 59 {
			return "", false
		}
	}

	marker := m[3]
	if marker == "" {
		marker = "am"
		if hour >= 12 {
			marker = "pm"
		}
	}

	switch {
	case hour == 0:
		hour = 12
	case hour > 12:
		hour -= 12
	}

	return fmt.Sprintf("%d:%02d %s", hour, minute, marker), true
}

// MatchYesNo scans for affirmative substrings first, then negative ones.
// "no" also hits words like "know" or "not".
func (g *Grammar) MatchYesNo(utterance string) (bool, bool) {
	text := strings.ToLower(utterance)
	if containsAny(text, affirmatives) {
		return true, true
	}
	if containsAny(text, negatives) {
		return false, true
	}
	return false, false
}

// InGrammar reports whether any slot matcher accepts the utterance.
func (g *Grammar) InGrammar(utterance string) bool {
	if _, ok := g.MatchPerson(utterance); ok {
		return true
	}
	if _, ok := g.MatchDay(utterance); ok {
		return true
	}
	if _, ok := g.MatchTime(utterance); ok {
		return true
	}
	_, ok := g.MatchYesNo(utterance)
	return ok
}

func MatchPerson(utterance string) (string, bool) { return defaultGrammar.MatchPerson(utterance) }
func MatchDay(utterance string) (string, bool)    { return defaultGrammar.MatchDay(utterance) }
func MatchTime(utterance string) (string, bool)   { return defaultGrammar.MatchTime(utterance) }
func MatchYesNo(utterance string) (bool, bool)    { return defaultGrammar.MatchYesNo(utterance) }
func InGrammar(utterance string) bool             { return defaultGrammar.InGrammar(utterance) }

// Tokens lowercases the utterance and splits it on non-letter runes.
func Tokens(utterance string) []string {
	return strings.FieldsFunc(strings.ToLower(utterance), func(r rune) bool {
		return !unicode.IsLetter(r)
	})
}

func lookupFirst(table map[string]string, utterance string) (string, bool) {
	tokens := Tokens(utterance)
	i := pie.FindFirstUsing(tokens, func(token string) bool {
		_, ok := table[token]
		return ok
	})
	if i < 0 {
		return "", false
	}
	return table[tokens[i]], true
}

func containsAny(text string, needles []string) bool {
	for _, needle := range needles {
		if strings.Contains(text, needle) {
			return true
		}
	}
	return false
}

func validToken(token string) bool {
	if token == "" {
		return false
	}
	for _, r := range token {
		if !unicode.IsLetter(r) || unicode.IsUpper(r) {
			return false
		}
	}
	return true
}
