package cmd

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/nextlevelbuilder/relaygram/internal/channels/telegram"
	"github.com/nextlevelbuilder/relaygram/internal/config"
	"github.com/nextlevelbuilder/relaygram/internal/relay"
	"github.com/nextlevelbuilder/relaygram/internal/store/file"
)

func runBot() {
	logLevel := slog.LevelInfo
	if verbose {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})))

	cfgPath := resolveConfigPath()
	cfg, err := config.Load(cfgPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if cfg.Telegram.Token == "" {
		slog.Error("telegram bot token not set (RELAYGRAM_TELEGRAM_TOKEN)")
		os.Exit(1)
	}

	pairs, err := file.NewPairStore(cfg.Relay.StatePath)
	if err != nil {
		slog.Error("failed to open relay pair store", "path", cfg.Relay.StatePath, "error", err)
		os.Exit(1)
	}

	policy := relay.DefaultPolicy()
	if cfg.Relay.MaxAttempts > 0 {
		policy.MaxAttempts = cfg.Relay.MaxAttempts
	}
	if d := cfg.Relay.BaseDelay(); d > 0 {
		policy.BaseDelay = d
	}
	exec := relay.NewExecutor(policy)

	channel, err := telegram.New(cfg.Telegram, cfg.Relay, exec, pairs)
	if err != nil {
		slog.Error("failed to create telegram channel", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := pairs.Watch(ctx); err != nil {
			slog.Warn("relay pair watcher stopped", "error", err)
		}
	}()

	if err := channel.Start(ctx); err != nil {
		slog.Error("failed to start telegram channel", "error", err)
		os.Exit(1)
	}

	<-ctx.Done()
	stop()

	if err := channel.Stop(context.Background()); err != nil {
		slog.Warn("telegram channel shutdown error", "error", err)
	}
}
