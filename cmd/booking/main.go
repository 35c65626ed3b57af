package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/Volatile-Noble/dialogue-systems-1-2026/internal/api"
	"github.com/Volatile-Noble/dialogue-systems-1-2026/internal/config"
	"github.com/Volatile-Noble/dialogue-systems-1-2026/internal/dialog"
	"github.com/Volatile-Noble/dialogue-systems-1-2026/internal/grammar"
	"github.com/Volatile-Noble/dialogue-systems-1-2026/internal/logging"
	"github.com/Volatile-Noble/dialogue-systems-1-2026/internal/prompts"
	"github.com/Volatile-Noble/dialogue-systems-1-2026/internal/speech"
)

func main() {
	configPath := flag.String("config", config.DefaultPath, "config file path")
	autostart := flag.Bool("autostart", false, "start a conversation as soon as the dialogue is idle")
	flag.Parse()

	_ = godotenv.Load()

	appConfig, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if err := appConfig.ValidateKeys(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid config: %v\n", err)
		os.Exit(1)
	}

	if err := logging.Init(logging.Config{
		Level:  appConfig.Logging.Level,
		Format: appConfig.Logging.Format,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer logging.Sync()

	sessionID := logging.NewSessionID()
	logging.SetSessionID(sessionID)
	logging.Infof("booking dialogue starting (speech mode %s)", appConfig.Speech.Mode)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, appConfig, sessionID, *autostart); err != nil {
		logging.Errorf("booking dialogue stopped: %v", err)
		logging.Sync()
		os.Exit(1)
	}
	logging.Infof("booking dialogue stopped")
}

func run(ctx context.Context, appConfig *config.AppConfig, sessionID string, autostart bool) error {
	lexicon := grammar.DefaultLexicon()
	if len(appConfig.Grammar.People) > 0 {
		lexicon.People = appConfig.Grammar.People
	}
	g, err := grammar.New(lexicon)
	if err != nil {
		return fmt.Errorf("build grammar: %w", err)
	}

	renderer, err := prompts.New(ctx, appConfig.Dialog.Prompts)
	if err != nil {
		return fmt.Errorf("build prompts: %w", err)
	}

	machine, err := dialog.NewMachine(dialog.Options{
		Grammar:       g,
		Prompter:      renderer,
		EchoSlots:     appConfig.Dialog.EchoSlots,
		ClearOnReject: appConfig.Dialog.ClearOnReject,
		SessionID:     sessionID,
	})
	if err != nil {
		return fmt.Errorf("build dialog machine: %w", err)
	}

	svc, bridge, err := newSpeechService(ctx, appConfig)
	if err != nil {
		return err
	}
	defer svc.Close()

	orchestrator := dialog.NewOrchestrator(machine, svc)
	if autostart {
		orchestrator.Subscribe(dialog.EventTypeStateChanged, func(e dialog.Event) {
			ev, ok := e.(*dialog.StateChangedEvent)
			if ok && ev.New.State == dialog.StateWaitToStart && ev.Old.State != ev.New.State {
				orchestrator.Trigger()
			}
		})
	}

	server := &http.Server{
		Addr:              appConfig.Server.ListenAddr,
		Handler:           api.NewRouter(orchestrator, bridge),
		ReadHeaderTimeout: 5 * time.Second,
	}

	group, gctx := errgroup.WithContext(ctx)

	group.Go(func() error {
		if err := orchestrator.Start(gctx); err != nil {
			return err
		}
		err := orchestrator.Wait()
		if errors.Is(err, speech.ErrClosed) && appConfig.Speech.Mode == speech.ModeConsole {
			logging.Infof("console input closed")
			return context.Canceled
		}
		return err
	})

	group.Go(func() error {
		logging.Infof("http: listening on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	group.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
		return orchestrator.Stop()
	})

	if err := group.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// newSpeechService returns the configured speech service, plus its HTTP
// handler when the peer has to connect to us.
func newSpeechService(ctx context.Context, appConfig *config.AppConfig) (speech.Service, http.Handler, error) {
	cfg := speech.Config{
		Mode:           appConfig.Speech.Mode,
		Endpoint:       appConfig.Speech.Endpoint,
		APIKey:         appConfig.Speech.APIKey,
		Locale:         appConfig.Speech.Locale,
		Voice:          appConfig.Speech.Voice,
		NoInputTimeout: appConfig.NoInputTimeout(),
	}

	switch cfg.Mode {
	case speech.ModeConsole:
		return speech.NewConsole(cfg, os.Stdin, os.Stdout), nil, nil
	case speech.ModeRemote:
		remote, err := speech.DialRemote(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		return remote, nil, nil
	case speech.ModeBridge:
		bridge := speech.NewBridge(cfg)
		return bridge, bridge, nil
	default:
		return nil, nil, fmt.Errorf("unknown speech mode %q", cfg.Mode)
	}
}
