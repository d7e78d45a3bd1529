package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/vibetracker/vibetracker/internal/auth"
	"github.com/vibetracker/vibetracker/internal/config"
	"github.com/vibetracker/vibetracker/internal/db"
	"github.com/vibetracker/vibetracker/internal/httpapi"
	"github.com/vibetracker/vibetracker/internal/reminder"
	"github.com/vibetracker/vibetracker/internal/steps"
)

func newServeCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the VibeTracker API server",
		Long:  "Connects to the database, migrates tables, starts the reminder dispatcher if enabled, and serves the HTTP API until interrupted.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, configPath)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "vibetracker.yaml", "path to config file")
	return cmd
}

func runServe(cmd *cobra.Command, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := zap.NewProduction()
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	gormDB, err := db.Connect(cfg.DB)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	if err := db.AutoMigrate(gormDB); err != nil {
		return err
	}

	catalog := steps.Load(cfg.CatalogPath)
	log.Info("step catalog loaded", zap.Int("steps", catalog.Len()))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Reminders.Enabled {
		notifier, err := buildNotifier(cfg, log)
		if err != nil {
			return err
		}
		dispatcher := reminder.NewDispatcher(gormDB, notifier, log, cfg.Reminders.Schedule)
		if err := dispatcher.Start(); err != nil {
			return fmt.Errorf("start reminder dispatcher: %w", err)
		}
		defer dispatcher.Stop()
		log.Info("reminder dispatcher running",
			zap.String("schedule", cfg.Reminders.Schedule),
			zap.String("notifier", cfg.Reminders.Notifier))
	}

	return httpapi.Start(ctx, httpapi.StartOpts{
		DB:          gormDB,
		Catalog:     catalog,
		Verifier:    auth.NewJWTVerifier(cfg.Auth.JWTSecret),
		Log:         log,
		Port:        cfg.Server.Port,
		CORSOrigins: cfg.Server.CORSOrigins,
	})
}

func buildNotifier(cfg *config.Config, log *zap.Logger) (reminder.Notifier, error) {
	switch cfg.Reminders.Notifier {
	case "discord":
		n, err := reminder.NewDiscordNotifier(cfg.Reminders.Discord.Token, cfg.Reminders.Discord.ChannelID)
		if err != nil {
			return nil, fmt.Errorf("init discord notifier: %w", err)
		}
		return n, nil
	case "slack":
		return reminder.NewSlackNotifier(cfg.Reminders.Slack.Token, cfg.Reminders.Slack.Channel), nil
	default:
		return &reminder.LogNotifier{Log: log}, nil
	}
}
