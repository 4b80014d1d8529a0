package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mymmrac/telego"

	"github.com/nextlevelbuilder/relaygram/internal/config"
	"github.com/nextlevelbuilder/relaygram/internal/relay"
	"github.com/nextlevelbuilder/relaygram/internal/store/file"
)

// Channel connects to Telegram via the Bot API using long polling,
// feeds source-channel posts into the relay router and answers admin
// commands sent in direct messages.
type Channel struct {
	bot        *telego.Bot
	cfg        config.TelegramConfig
	relayCfg   config.RelayConfig
	exec       *relay.Executor
	pairs      *file.PairStore
	router     *relay.Router
	pollCancel context.CancelFunc // cancels the long polling context
	pollDone   chan struct{}      // closed when the polling goroutine exits
}

// New creates a Telegram channel from config. The relay router is wired
// in Start, where the polling context is available.
func New(cfg config.TelegramConfig, relayCfg config.RelayConfig, exec *relay.Executor, pairs *file.PairStore) (*Channel, error) {
	bot, err := telego.NewBot(cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}
	return &Channel{
		bot:      bot,
		cfg:      cfg,
		relayCfg: relayCfg,
		exec:     exec,
		pairs:    pairs,
	}, nil
}

// Start begins long polling for Telegram updates.
func (c *Channel) Start(ctx context.Context) error {
	slog.Info("starting telegram bot (polling mode)")

	pollCtx, cancel := context.WithCancel(ctx)
	c.pollCancel = cancel
	c.pollDone = make(chan struct{})

	sender := NewSender(c.bot, c.relayCfg.SendRatePerSec, c.relayCfg.SendBurst)
	c.router = relay.NewRouter(pollCtx, c.pairs, c.exec, sender,
		c.relayCfg.DebounceWindow(), c.relayCfg.MaxGroupSize)

	updates, err := c.bot.UpdatesViaLongPolling(pollCtx, &telego.GetUpdatesParams{
		Timeout:        30,
		AllowedUpdates: []string{"message", "channel_post"},
	})
	if err != nil {
		cancel()
		return fmt.Errorf("start long polling: %w", err)
	}

	slog.Info("telegram bot connected", "username", c.bot.Username())

	go func() {
		defer close(c.pollDone)
		for {
			select {
			case <-pollCtx.Done():
				return
			case update, ok := <-updates:
				if !ok {
					slog.Info("telegram updates channel closed")
					return
				}
				c.handleUpdate(pollCtx, update)
			}
		}
	}()

	return nil
}

// handleUpdate routes one update. Channel posts are relay traffic;
// direct messages may carry admin commands.
func (c *Channel) handleUpdate(ctx context.Context, update telego.Update) {
	switch {
	case update.ChannelPost != nil:
		c.router.Handle(ctx, toRelayMessage(update.ChannelPost))
	case update.Message != nil:
		message := update.Message
		if message.Chat.Type == "private" && c.handleCommand(ctx, message) {
			return
		}
		c.router.Handle(ctx, toRelayMessage(message))
	default:
		slog.Debug("telegram update skipped", "update_id", update.UpdateID)
	}
}

// Stop shuts down the bot by cancelling the long polling context and
// waiting for the polling goroutine to exit, so Telegram releases the
// getUpdates lock before a new instance starts.
func (c *Channel) Stop(_ context.Context) error {
	slog.Info("stopping telegram bot")

	if c.pollCancel != nil {
		c.pollCancel()
	}
	if c.pollDone != nil {
		select {
		case <-c.pollDone:
			slog.Info("telegram bot stopped")
		case <-time.After(10 * time.Second):
			slog.Warn("telegram polling goroutine did not exit within timeout")
		}
	}
	return nil
}
