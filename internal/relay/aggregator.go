package relay

import (
	"log/slog"
	"sync"
	"time"
)

const (
	// DefaultDebounceWindow is the quiet period after the most recent
	// group member before the group is considered complete.
	DefaultDebounceWindow = 2 * time.Second

	// DefaultMaxGroupSize caps one media group (the Bot API sends at
	// most 10 items per sendMediaGroup call).
	DefaultMaxGroupSize = 10
)

// FlushFunc consumes the buffered messages of one completed group.
type FlushFunc func(groupID string, msgs []Message)

// Aggregator buffers messages that share a media group id and flushes
// each group exactly once per lifecycle: either when its debounce
// window expires with no new members, or immediately when it reaches
// capacity. Append, timer reset and consume are atomic per group.
type Aggregator struct {
	mu      sync.Mutex
	groups  map[string]*pendingGroup
	window  time.Duration
	maxSize int
	flush   FlushFunc
}

type pendingGroup struct {
	msgs  []Message
	timer *time.Timer
}

// NewAggregator creates an aggregator. Non-positive window or maxSize
// fall back to the defaults.
func NewAggregator(window time.Duration, maxSize int, flush FlushFunc) *Aggregator {
	if window <= 0 {
		window = DefaultDebounceWindow
	}
	if maxSize <= 0 {
		maxSize = DefaultMaxGroupSize
	}
	return &Aggregator{
		groups:  make(map[string]*pendingGroup),
		window:  window,
		maxSize: maxSize,
		flush:   flush,
	}
}

// Add buffers msg under its group id. Every new member cancels the
// group's pending debounce timer and starts a fresh one, so a group
// flushes window after its last observed message. Reaching capacity
// flushes synchronously, bypassing the timer.
func (a *Aggregator) Add(msg Message) {
	a.mu.Lock()

	g, ok := a.groups[msg.GroupID]
	if !ok {
		g = &pendingGroup{}
		a.groups[msg.GroupID] = g
	}
	g.msgs = append(g.msgs, msg)

	if g.timer != nil {
		g.timer.Stop()
		g.timer = nil
	}

	if len(g.msgs) >= a.maxSize {
		msgs := a.takeLocked(msg.GroupID)
		a.mu.Unlock()
		slog.Info("flushing media group at capacity",
			"group_id", msg.GroupID, "count", len(msgs))
		a.flush(msg.GroupID, msgs)
		return
	}

	groupID := msg.GroupID
	g.timer = time.AfterFunc(a.window, func() {
		a.flushExpired(groupID)
	})
	count := len(g.msgs)
	a.mu.Unlock()

	slog.Debug("media group timer reset", "group_id", groupID, "count", count)
}

// flushExpired handles a fired debounce timer. A group already consumed
// by a capacity flush yields nothing; that race is a benign no-op.
func (a *Aggregator) flushExpired(groupID string) {
	a.mu.Lock()
	msgs := a.takeLocked(groupID)
	a.mu.Unlock()

	if len(msgs) == 0 {
		return
	}
	slog.Info("flushing media group after debounce",
		"group_id", groupID, "count", len(msgs))
	a.flush(groupID, msgs)
}

// takeLocked removes and returns the buffered messages for groupID,
// stopping any pending timer. Caller holds a.mu. A message arriving
// after take starts a brand-new group lifecycle.
func (a *Aggregator) takeLocked(groupID string) []Message {
	g, ok := a.groups[groupID]
	if !ok {
		return nil
	}
	delete(a.groups, groupID)
	if g.timer != nil {
		g.timer.Stop()
	}
	return g.msgs
}

// Pending returns the number of groups currently buffered.
func (a *Aggregator) Pending() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.groups)
}
