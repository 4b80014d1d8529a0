package relay

import (
	"log/slog"
	"sort"
)

// Canonicalize turns the buffered messages of one flushed group into an
// ordered, deduplicated batch with at most one caption.
//
// Delivery order from the platform is not guaranteed, so messages are
// sorted by server timestamp with the message id as tiebreaker.
// Duplicate submissions are detected by file id, keeping the first
// occurrence. Messages without a file id (text, unsupported kinds)
// cannot travel inside a media batch and are dropped. The first
// non-empty caption in sorted order goes onto the first output item;
// every other item carries none. An empty result means nothing to send.
func Canonicalize(groupID string, msgs []Message) Batch {
	if len(msgs) == 0 {
		return nil
	}

	sorted := make([]Message, len(msgs))
	copy(sorted, msgs)
	sort.Slice(sorted, func(i, j int) bool {
		if !sorted[i].Timestamp.Equal(sorted[j].Timestamp) {
			return sorted[i].Timestamp.Before(sorted[j].Timestamp)
		}
		return sorted[i].ID < sorted[j].ID
	})

	// Mixed kinds inside one group is a sender error; forward as-is.
	kinds := make(map[Kind]struct{})
	for _, m := range sorted {
		if m.Kind.Mediaful() {
			kinds[m.Kind] = struct{}{}
		}
	}
	if len(kinds) > 1 {
		slog.Warn("mixed media kinds in group", "group_id", groupID, "kinds", kindNames(kinds))
	}

	seen := make(map[string]struct{}, len(sorted))
	unique := make([]Message, 0, len(sorted))
	for _, m := range sorted {
		if !m.Kind.Mediaful() || m.FileID == "" {
			continue
		}
		if _, dup := seen[m.FileID]; dup {
			continue
		}
		seen[m.FileID] = struct{}{}
		unique = append(unique, m)
	}
	if len(unique) == 0 {
		return nil
	}

	caption := ""
	for _, m := range unique {
		if m.Caption != "" {
			caption = m.Caption
			break
		}
	}

	batch := make(Batch, 0, len(unique))
	for i, m := range unique {
		item := Item{Kind: m.Kind, FileID: m.FileID, Meta: m.Meta}
		if i == 0 {
			item.Caption = caption
		}
		batch = append(batch, item)
	}
	return batch
}

func kindNames(set map[Kind]struct{}) []string {
	names := make([]string, 0, len(set))
	for k := range set {
		names = append(names, string(k))
	}
	sort.Strings(names)
	return names
}
