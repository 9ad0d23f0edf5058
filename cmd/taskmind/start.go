package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/taskmindbot/taskmind/internal/config"
	"github.com/taskmindbot/taskmind/internal/dialogue"
	"github.com/taskmindbot/taskmind/internal/logging"
	"github.com/taskmindbot/taskmind/internal/nlp"
	"github.com/taskmindbot/taskmind/internal/reminders"
	"github.com/taskmindbot/taskmind/internal/tasks"
	"github.com/taskmindbot/taskmind/internal/telegram"
)

func newStartCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the Taskmind bot",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath())
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			if err := logging.Init(cfg.Logging); err != nil {
				return fmt.Errorf("failed to initialize logging: %w", err)
			}
			log := logging.WithComponent("main")

			store, err := tasks.NewStore(cfg.Data.Path)
			if err != nil {
				return fmt.Errorf("failed to open store: %w", err)
			}
			defer func() { _ = store.Close() }()

			// Regex patterns handle classification; the LLM fallback only
			// sees text no pattern matched.
			var fallback dialogue.FallbackClassifier
			if cfg.LLM != nil && cfg.LLM.APIKey != "" {
				fallback = nlp.NewAnthropicFallback(cfg.LLM.APIKey, cfg.LLM.Model)
			} else {
				fallback = nlp.NewKeywordFallback()
			}

			var escape func(string) string
			if !cfg.Telegram.PlainText {
				escape = telegram.EscapeMarkdown
			}

			engine := dialogue.NewProcessor(&dialogue.Config{
				Classifier: dialogue.NewClassifier(fallback),
				Extractor:  nlp.NewRegexExtractor(),
				Sentiment:  nlp.NewLexiconAnalyzer(),
				Creator:    store,
				Escape:     escape,
			})

			client := telegram.NewClient(cfg.Telegram.Token)
			handler := telegram.NewHandler(client, engine, store, telegram.HandlerConfig{
				PlainText:   cfg.Telegram.PlainText,
				AllowedChat: cfg.Telegram.AllowedChat,
			})
			transport := telegram.NewTransport(client, handler)

			scheduler := reminders.NewScheduler(cfg.Reminders, store, handler)
			if err := scheduler.Start(); err != nil {
				return fmt.Errorf("failed to start reminder scheduler: %w", err)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			transport.StartPolling(ctx)
			log.Info("Taskmind started", "version", version)
			fmt.Println("🚀 Taskmind is running. Press Ctrl+C to stop.")

			<-ctx.Done()

			fmt.Println("🛑 Shutting down...")
			transport.Stop()
			scheduler.Stop()
			log.Info("Taskmind stopped")
			return nil
		},
	}
}
