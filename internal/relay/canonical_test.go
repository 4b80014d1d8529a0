package relay

import (
	"testing"
	"time"
)

func photoMsg(msgID int, ts int64, fileID, caption string) Message {
	return Message{
		ID:        msgID,
		ChatID:    -100123,
		Timestamp: time.Unix(ts, 0),
		GroupID:   "g1",
		Kind:      KindPhoto,
		FileID:    fileID,
		Caption:   caption,
	}
}

// TestCanonicalize_SortsByTimestampThenID verifies deterministic
// ordering regardless of arrival order, with the message id breaking
// timestamp ties.
func TestCanonicalize_SortsByTimestampThenID(t *testing.T) {
	msgs := []Message{
		photoMsg(30, 1700000002, "f3", ""),
		photoMsg(10, 1700000001, "f1", ""),
		photoMsg(21, 1700000001, "f2b", ""),
		photoMsg(20, 1700000001, "f2a", ""),
	}

	batch := Canonicalize("g1", msgs)
	if len(batch) != 4 {
		t.Fatalf("batch has %d items, want 4", len(batch))
	}
	wantOrder := []string{"f1", "f2a", "f2b", "f3"}
	for i, want := range wantOrder {
		if batch[i].FileID != want {
			t.Errorf("position %d = %s, want %s", i, batch[i].FileID, want)
		}
	}
}

// TestCanonicalize_DeduplicatesByFileID verifies that any number of
// repeats of N distinct file ids yields exactly N items, keeping the
// first occurrence in sorted order.
func TestCanonicalize_DeduplicatesByFileID(t *testing.T) {
	msgs := []Message{
		photoMsg(1, 1700000001, "f1", ""),
		photoMsg(2, 1700000002, "f2", ""),
		photoMsg(3, 1700000003, "f1", ""),
		photoMsg(4, 1700000004, "f2", ""),
		photoMsg(5, 1700000005, "f1", ""),
	}

	batch := Canonicalize("g1", msgs)
	if len(batch) != 2 {
		t.Fatalf("batch has %d items, want 2 distinct", len(batch))
	}
	if batch[0].FileID != "f1" || batch[1].FileID != "f2" {
		t.Errorf("batch order = [%s %s], want [f1 f2]", batch[0].FileID, batch[1].FileID)
	}
}

// TestCanonicalize_CaptionOnFirstItemOnly verifies that the first
// non-empty caption in sorted order lands on position 0 and nowhere
// else, regardless of which source message carried it.
func TestCanonicalize_CaptionOnFirstItemOnly(t *testing.T) {
	msgs := []Message{
		photoMsg(3, 1700000003, "f3", "third caption"),
		photoMsg(2, 1700000002, "f2", "second caption"),
		photoMsg(1, 1700000001, "f1", ""),
	}

	batch := Canonicalize("g1", msgs)
	if len(batch) != 3 {
		t.Fatalf("batch has %d items, want 3", len(batch))
	}
	if batch[0].Caption != "second caption" {
		t.Errorf("position 0 caption = %q, want %q", batch[0].Caption, "second caption")
	}
	for i := 1; i < len(batch); i++ {
		if batch[i].Caption != "" {
			t.Errorf("position %d caption = %q, want empty", i, batch[i].Caption)
		}
	}
}

// TestCanonicalize_DropsNonMediaMessages verifies that items without a
// content identity token never enter the batch.
func TestCanonicalize_DropsNonMediaMessages(t *testing.T) {
	msgs := []Message{
		photoMsg(2, 1700000002, "f1", ""),
		{ID: 1, Timestamp: time.Unix(1700000001, 0), GroupID: "g1", Kind: KindText, Caption: ""},
		{ID: 3, Timestamp: time.Unix(1700000003, 0), GroupID: "g1", Kind: KindOther},
	}

	batch := Canonicalize("g1", msgs)
	if len(batch) != 1 {
		t.Fatalf("batch has %d items, want 1", len(batch))
	}
	if batch[0].FileID != "f1" {
		t.Errorf("kept item = %s, want f1", batch[0].FileID)
	}
}

func TestCanonicalize_NothingSendable(t *testing.T) {
	msgs := []Message{
		{ID: 1, Timestamp: time.Unix(1700000001, 0), GroupID: "g1", Kind: KindText},
		{ID: 2, Timestamp: time.Unix(1700000002, 0), GroupID: "g1", Kind: KindOther},
	}
	if batch := Canonicalize("g1", msgs); batch != nil {
		t.Errorf("batch = %v, want nil for a group with no media", batch)
	}
	if batch := Canonicalize("g1", nil); batch != nil {
		t.Errorf("batch = %v, want nil for empty input", batch)
	}
}

// TestCanonicalize_CarriesMetadata verifies kind-specific metadata
// passes through untouched.
func TestCanonicalize_CarriesMetadata(t *testing.T) {
	msgs := []Message{
		{
			ID: 1, Timestamp: time.Unix(1700000001, 0), GroupID: "g1",
			Kind: KindVideo, FileID: "v1",
			Meta: MediaMeta{Duration: 42, Width: 1280, Height: 720},
		},
		{
			ID: 2, Timestamp: time.Unix(1700000002, 0), GroupID: "g1",
			Kind: KindAudio, FileID: "a1",
			Meta: MediaMeta{Duration: 180, Performer: "performer", Title: "title"},
		},
	}

	batch := Canonicalize("g1", msgs)
	if len(batch) != 2 {
		t.Fatalf("batch has %d items, want 2", len(batch))
	}
	if batch[0].Meta.Width != 1280 || batch[0].Meta.Height != 720 || batch[0].Meta.Duration != 42 {
		t.Errorf("video meta = %+v, not carried through", batch[0].Meta)
	}
	if batch[1].Meta.Performer != "performer" || batch[1].Meta.Title != "title" {
		t.Errorf("audio meta = %+v, not carried through", batch[1].Meta)
	}
}

// TestCanonicalize_MixedKindsForwardedAsIs verifies that a mixed group
// is forwarded unchanged; the inconsistency is the sender's problem.
func TestCanonicalize_MixedKindsForwardedAsIs(t *testing.T) {
	msgs := []Message{
		photoMsg(1, 1700000001, "f1", ""),
		{ID: 2, Timestamp: time.Unix(1700000002, 0), GroupID: "g1", Kind: KindVideo, FileID: "v1"},
	}

	batch := Canonicalize("g1", msgs)
	if len(batch) != 2 {
		t.Errorf("batch has %d items, want 2 (mixed kinds kept)", len(batch))
	}
}
