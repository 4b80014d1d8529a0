package relay

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Transport is the outbound side of the relay: the Telegram sender in
// production, a stub in tests.
type Transport interface {
	// SendBatch delivers an ordered media batch to chatID as one call.
	SendBatch(ctx context.Context, chatID int64, batch Batch) error
	// Copy duplicates a single message by reference to chatID.
	Copy(ctx context.Context, chatID int64, fromChatID int64, messageID int) error
}

// Router is the single entry point for inbound messages. It applies the
// channel-pair gate, hands grouped messages to the aggregator and sends
// everything else directly, always through the retry executor. One
// message's failure never affects any other message or group.
type Router struct {
	pairs PairSource
	exec  *Executor
	tr    Transport
	agg   *Aggregator
	ctx   context.Context // base context for asynchronous flushes
}

// NewRouter wires a router with its own group aggregator. ctx bounds
// asynchronous timer-triggered flushes.
func NewRouter(ctx context.Context, pairs PairSource, exec *Executor, tr Transport, window time.Duration, maxGroupSize int) *Router {
	r := &Router{pairs: pairs, exec: exec, tr: tr, ctx: ctx}
	r.agg = NewAggregator(window, maxGroupSize, r.deliverGroup)
	return r
}

// Aggregator exposes the group buffer, e.g. for status reporting.
func (r *Router) Aggregator() *Aggregator { return r.agg }

// Handle processes one inbound message. Messages from chats other than
// the configured source are ignored silently; a closed gate drops the
// message with a diagnostic and no side effects.
func (r *Router) Handle(ctx context.Context, msg Message) {
	pair := r.pairs.Pair()

	if pair.SourceID == nil || msg.ChatID != *pair.SourceID {
		return
	}
	if pair.DestinationID == nil {
		slog.Warn("destination channel not set, skipping forward", "message_id", msg.ID)
		return
	}
	if err := pair.Validate(); err != nil {
		slog.Error("invalid relay configuration", "error", err)
		return
	}

	if msg.GroupID != "" {
		r.agg.Add(msg)
		return
	}

	r.deliverSingle(ctx, *pair.DestinationID, msg)
}

// deliverSingle forwards one ungrouped message. Media-bearing kinds go
// as a one-item batch so caption formatting matches the group path;
// everything else is duplicated by reference.
func (r *Router) deliverSingle(ctx context.Context, destID int64, msg Message) {
	var err error
	if msg.Kind.Mediaful() && msg.FileID != "" {
		batch := Canonicalize("", []Message{msg})
		err = r.exec.Do(ctx, "send_single", func(ctx context.Context) error {
			return r.tr.SendBatch(ctx, destID, batch)
		})
	} else {
		err = r.exec.Do(ctx, "copy_message", func(ctx context.Context) error {
			return r.tr.Copy(ctx, destID, msg.ChatID, msg.ID)
		})
	}
	if err != nil {
		slog.Error("failed to forward message", "message_id", msg.ID, "error", err)
	}
}

// deliverGroup is the aggregator's flush callback. The destination is
// re-read at flush time; a gate that closed while the group was
// buffering drops the batch.
func (r *Router) deliverGroup(groupID string, msgs []Message) {
	pair := r.pairs.Pair()
	if err := pair.Validate(); err != nil {
		slog.Error("dropping media group, invalid relay configuration",
			"group_id", groupID, "error", err)
		return
	}

	batch := Canonicalize(groupID, msgs)
	if len(batch) == 0 {
		slog.Debug("media group produced no sendable items", "group_id", groupID)
		return
	}

	flushID := uuid.NewString()[:8]
	slog.Info("forwarding media group",
		"group_id", groupID, "flush_id", flushID, "items", len(batch))

	err := r.exec.Do(r.ctx, "send_media_group", func(ctx context.Context) error {
		return r.tr.SendBatch(ctx, *pair.DestinationID, batch)
	})
	if err != nil {
		slog.Error("failed to forward media group",
			"group_id", groupID, "flush_id", flushID, "error", err)
		return
	}
	slog.Info("media group forwarded",
		"group_id", groupID, "flush_id", flushID, "items", len(batch))
}
