package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/mymmrac/telego"
	tu "github.com/mymmrac/telego/telegoutil"
)

const helpText = `Available commands:
/setsource <channel_id> - Set the source channel ID
/setdestination <channel_id> - Set the destination channel ID
/config - Show current configuration
/help - Show this help message`

// handleCommand checks whether the message is a known admin command and
// handles it. Returns true if the message was consumed as a command.
func (c *Channel) handleCommand(ctx context.Context, message *telego.Message) bool {
	text := message.Text
	if len(text) == 0 || text[0] != '/' {
		return false
	}

	parts := strings.Fields(text)
	// Strip an @botname suffix if present.
	cmd := strings.ToLower(strings.SplitN(parts[0], "@", 2)[0])
	args := parts[1:]

	reply := func(text string) {
		if _, err := c.bot.SendMessage(ctx, tu.Message(tu.ID(message.Chat.ID), text)); err != nil {
			slog.Warn("failed to send command reply", "command", cmd, "error", err)
		}
	}

	switch cmd {
	case "/start":
		reply("Hello! I relay posts from one channel to another. Use /help to see available commands.")
	case "/help":
		reply(helpText)
	case "/setsource":
		c.handleSet(message, args, reply, "Source", c.pairs.SetSource)
	case "/setdestination":
		c.handleSet(message, args, reply, "Destination", c.pairs.SetDestination)
	case "/config":
		if !c.isOwner(message) {
			reply("You're not authorized to use this command.")
			return true
		}
		reply(c.describeConfig())
	default:
		return false
	}
	return true
}

// handleSet parses and persists one side of the channel pair. The
// record is saved durably before the confirmation reply goes out.
func (c *Channel) handleSet(message *telego.Message, args []string, reply func(string), label string, set func(int64) error) {
	if !c.isOwner(message) {
		reply("You're not authorized to use this command.")
		return
	}
	if len(args) == 0 {
		reply(fmt.Sprintf("Please provide the %s channel ID.", strings.ToLower(label)))
		return
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		reply("Please provide a valid numeric ID.")
		return
	}
	if err := set(id); err != nil {
		slog.Error("failed to save relay pair", "error", err)
		reply("Failed to save configuration, check the logs.")
		return
	}
	reply(fmt.Sprintf("%s ID set to: %d", label, id))
}

// describeConfig renders the current pair, gate state and buffer depth.
func (c *Channel) describeConfig() string {
	pair := c.pairs.Pair()
	format := func(id *int64) string {
		if id == nil {
			return "not set"
		}
		return strconv.FormatInt(*id, 10)
	}

	gate := "ready"
	if err := pair.Validate(); err != nil {
		gate = err.Error()
	}

	pending := 0
	if c.router != nil {
		pending = c.router.Aggregator().Pending()
	}

	return fmt.Sprintf("Source ID: %s\nDestination ID: %s\nGate: %s\nBuffered groups: %d",
		format(pair.SourceID), format(pair.DestinationID), gate, pending)
}

// isOwner reports whether the message comes from the configured owner.
// With no owner configured every admin command is refused.
func (c *Channel) isOwner(message *telego.Message) bool {
	return message.From != nil && c.cfg.OwnerID != 0 && message.From.ID == c.cfg.OwnerID
}
