package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/Volatile-Noble/dialogue-systems-1-2026/internal/config"
	"github.com/Volatile-Noble/dialogue-systems-1-2026/internal/grammar"
	"github.com/Volatile-Noble/dialogue-systems-1-2026/internal/logging"
)

func main() {
	configPath := flag.String("config", "", "config file with grammar.people overrides (optional)")
	flag.Parse()

	if err := logging.InitFromEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer logging.Sync()

	lexicon := grammar.DefaultLexicon()
	if *configPath != "" {
		appConfig, err := config.Load(*configPath)
		if err != nil {
			logging.Fatalf("load config failed: %v", err)
		}
		if len(appConfig.Grammar.People) > 0 {
			lexicon.People = appConfig.Grammar.People
		}
	}

	g, err := grammar.New(lexicon)
	if err != nil {
		logging.Fatalf("build grammar failed: %v", err)
	}

	if flag.NArg() > 0 {
		for _, utterance := range flag.Args() {
			report(os.Stdout, g, utterance)
		}
		return
	}

	logging.Infof("reading utterances from stdin, one per line (Ctrl+D to stop)")
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		utterance := strings.TrimSpace(scanner.Text())
		if utterance == "" {
			continue
		}
		report(os.Stdout, g, utterance)
	}
	if err := scanner.Err(); err != nil {
		logging.Fatalf("read stdin failed: %v", err)
	}
}

func report(w io.Writer, g *grammar.Grammar, utterance string) {
	fmt.Fprintf(w, "%q\n", utterance)
	fmt.Fprintf(w, "  tokens:     %s\n", strings.Join(grammar.Tokens(utterance), " "))
	fmt.Fprintf(w, "  person:     %s\n", show(g.MatchPerson(utterance)))
	fmt.Fprintf(w, "  day:        %s\n", show(g.MatchDay(utterance)))
	fmt.Fprintf(w, "  time:       %s\n", show(g.MatchTime(utterance)))
	answer, ok := g.MatchYesNo(utterance)
	yesNo := "-"
	if ok {
		yesNo = fmt.Sprintf("%t", answer)
	}
	fmt.Fprintf(w, "  yes/no:     %s\n", yesNo)
	fmt.Fprintf(w, "  in grammar: %t\n", g.InGrammar(utterance))
}

func show(value string, ok bool) string {
	if !ok {
		return "-"
	}
	return value
}
