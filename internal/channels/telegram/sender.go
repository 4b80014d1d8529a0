package telegram

import (
	"context"
	"errors"
	"time"

	"github.com/mymmrac/telego"
	"github.com/mymmrac/telego/telegoapi"
	tu "github.com/mymmrac/telego/telegoutil"
	"golang.org/x/time/rate"

	"github.com/nextlevelbuilder/relaygram/internal/relay"
)

// Sender implements relay.Transport on top of the Bot API. All outbound
// calls share one pacing limiter; Telegram throttles sustained sends
// well below the long-poll rate and answers bursts with 429s.
type Sender struct {
	bot     *telego.Bot
	limiter *rate.Limiter
}

// NewSender creates a paced sender. Non-positive pacing values fall
// back to one call per second with a burst of three.
func NewSender(bot *telego.Bot, perSec float64, burst int) *Sender {
	if perSec <= 0 {
		perSec = 1
	}
	if burst <= 0 {
		burst = 3
	}
	return &Sender{bot: bot, limiter: rate.NewLimiter(rate.Limit(perSec), burst)}
}

// SendBatch delivers a canonical batch as one sendMediaGroup call.
func (s *Sender) SendBatch(ctx context.Context, chatID int64, batch relay.Batch) error {
	if err := s.limiter.Wait(ctx); err != nil {
		return err
	}
	media, err := buildInputMedia(batch)
	if err != nil {
		return err
	}
	_, err = s.bot.SendMediaGroup(ctx, &telego.SendMediaGroupParams{
		ChatID: tu.ID(chatID),
		Media:  media,
	})
	return mapAPIError(err)
}

// Copy duplicates one message's content by reference.
func (s *Sender) Copy(ctx context.Context, chatID, fromChatID int64, messageID int) error {
	if err := s.limiter.Wait(ctx); err != nil {
		return err
	}
	_, err := s.bot.CopyMessage(ctx, &telego.CopyMessageParams{
		ChatID:     tu.ID(chatID),
		FromChatID: tu.ID(fromChatID),
		MessageID:  messageID,
	})
	return mapAPIError(err)
}

// mapAPIError converts a Bot API 429 into relay.RateLimitError so the
// retry executor can honor the advised delay. Other errors pass through.
func mapAPIError(err error) error {
	if err == nil {
		return nil
	}
	var apiErr *telegoapi.Error
	if errors.As(err, &apiErr) && apiErr.Parameters != nil && apiErr.Parameters.RetryAfter > 0 {
		return &relay.RateLimitError{
			RetryAfter: time.Duration(apiErr.Parameters.RetryAfter) * time.Second,
		}
	}
	return err
}
