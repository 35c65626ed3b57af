package grammar

import (
	"errors"
	"testing"
)

func TestMatchPerson(t *testing.T) {
	tests := []struct {
		name      string
		utterance string
		want      string
		wantOK    bool
	}{
		{"bare name", "Adam", "Adam", true},
		{"name in sentence", "I am meeting vlad tomorrow", "Vladislav Maraev", true},
		{"punctuation", "Bora.", "Bora Kara", true},
		{"first hit wins", "tom and adam", "Tom Södahl Bladsjö", true},
		{"whole token only", "talking to adamant people", "", false},
		{"substring of token", "tomorrow", "", false},
		{"no name", "nobody", "", false},
		{"empty", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := MatchPerson(tt.utterance)
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("MatchPerson(%q) = %q, %v, want %q, %v", tt.utterance, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestMatchDay(t *testing.T) {
	tests := []struct {
		utterance string
		want      string
		wantOK    bool
	}{
		{"monday", "Monday", true},
		{"On TUESDAY please", "Tuesday", true},
		{"sunday or saturday", "Sunday", true},
		{"next week", "", false},
		{"mondays", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.utterance, func(t *testing.T) {
			got, ok := MatchDay(tt.utterance)
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("MatchDay(%q) = %q, %v, want %q, %v", tt.utterance, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestMatchTime(t *testing.T) {
	tests := []struct {
		utterance string
		want      string
		wantOK    bool
	}{
		{"3pm", "3:00 pm", true},
		{"15:30", "3:30 pm", true},
		{"12", "12:00 pm", true},
		{"0:00am", "12:00 am", true},
		{"hello", "", false},
		{"at 9", "9:00 am", true},
		{"3 pm", "3:00 pm", true},
		{"3 p.m.", "3:00 pm", true},
		{"10:05 AM", "10:05 am", true},
		{"8:5", "8:05 am", true},
		{"0", "12:00 am", true},
		{"23:59", "11:59 pm", true},
		{"25", "", false},
		{"9:75", "", false},
		{"three o'clock", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.utterance, func(t *testing.T) {
			got, ok := MatchTime(tt.utterance)
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("MatchTime(%q) = %q, %v, want %q, %v", tt.utterance, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestMatchYesNo(t *testing.T) {
	tests := []struct {
		utterance string
		want      bool
		wantOK    bool
	}{
		{"yeah sure", true, true},
		{"nope", false, true},
		{"maybe", false, false},
		{"Yes", true, true},
		{"yep", true, true},
		{"nah", false, true},
		{"no", false, true},
		{"I don't know", false, true},
		{"yes no", true, true},
	}

	for _, tt := range tests {
		t.Run(tt.utterance, func(t *testing.T) {
			got, ok := MatchYesNo(tt.utterance)
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("MatchYesNo(%q) = %v, %v, want %v, %v", tt.utterance, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestInGrammar(t *testing.T) {
	tests := []struct {
		utterance string
		want      bool
	}{
		{"adam", true},
		{"friday", true},
		{"4pm", true},
		{"yes", true},
		{"banana", false},
	}

	for _, tt := range tests {
		t.Run(tt.utterance, func(t *testing.T) {
			if got := InGrammar(tt.utterance); got != tt.want {
				t.Errorf("InGrammar(%q) = %v, want %v", tt.utterance, got, tt.want)
			}
		})
	}
}

func TestNewCustomLexicon(t *testing.T) {
	lex := DefaultLexicon()
	lex.People = map[string]string{"eve": "Eve Online"}

	g, err := New(lex)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if got, ok := g.MatchPerson("with eve please"); !ok || got != "Eve Online" {
		t.Fatalf("MatchPerson() = %q, %v, want Eve Online", got, ok)
	}
	if _, ok := g.MatchPerson("adam"); ok {
		t.Fatalf("expected default people to be replaced")
	}
}

func TestNewRejectsInvalidTokens(t *testing.T) {
	tests := []struct {
		name  string
		token string
	}{
		{"upper case", "Adam"},
		{"two words", "van dyke"},
		{"digits", "r2d2"},
		{"empty", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lex := DefaultLexicon()
			lex.People = map[string]string{tt.token: "Someone"}
			if _, err := New(lex); !errors.Is(err, ErrInvalidToken) {
				t.Fatalf("New() error = %v, want ErrInvalidToken", err)
			}
		})
	}
}

func TestTokens(t *testing.T) {
	got := Tokens("Meet ADAM, at 3pm!")
	want := []string{"meet", "adam", "at", "pm"}
	if len(got) != len(want) {
		t.Fatalf("Tokens() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Tokens() = %v, want %v", got, want)
		}
	}
}
