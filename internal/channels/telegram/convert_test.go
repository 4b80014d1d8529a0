package telegram

import (
	"testing"
	"time"

	"github.com/mymmrac/telego"

	"github.com/nextlevelbuilder/relaygram/internal/relay"
)

func TestToRelayMessage_Photo(t *testing.T) {
	msg := &telego.Message{
		MessageID:    42,
		Chat:         telego.Chat{ID: -100123},
		Date:         1700000000,
		MediaGroupID: "g1",
		Caption:      "a caption",
		Photo: []telego.PhotoSize{
			{FileID: "small"},
			{FileID: "medium"},
			{FileID: "large"},
		},
	}

	got := toRelayMessage(msg)
	if got.Kind != relay.KindPhoto {
		t.Errorf("Kind = %s, want photo", got.Kind)
	}
	if got.FileID != "large" {
		t.Errorf("FileID = %s, want the highest-resolution size", got.FileID)
	}
	if got.ID != 42 || got.ChatID != -100123 || got.GroupID != "g1" || got.Caption != "a caption" {
		t.Errorf("identity fields not carried: %+v", got)
	}
	if !got.Timestamp.Equal(time.Unix(1700000000, 0)) {
		t.Errorf("Timestamp = %v, want unix 1700000000", got.Timestamp)
	}
}

func TestToRelayMessage_VideoMetadata(t *testing.T) {
	msg := &telego.Message{
		MessageID: 1,
		Chat:      telego.Chat{ID: -100123},
		Video:     &telego.Video{FileID: "v1", Duration: 42, Width: 1280, Height: 720},
	}

	got := toRelayMessage(msg)
	if got.Kind != relay.KindVideo || got.FileID != "v1" {
		t.Fatalf("got %s/%s, want video/v1", got.Kind, got.FileID)
	}
	if got.Meta.Duration != 42 || got.Meta.Width != 1280 || got.Meta.Height != 720 {
		t.Errorf("Meta = %+v, video attributes not carried", got.Meta)
	}
}

func TestToRelayMessage_DocumentAndAudio(t *testing.T) {
	doc := toRelayMessage(&telego.Message{
		MessageID: 1,
		Document:  &telego.Document{FileID: "d1", FileName: "report.pdf"},
	})
	if doc.Kind != relay.KindDocument || doc.Meta.FileName != "report.pdf" {
		t.Errorf("document = %+v, filename not carried", doc)
	}

	audio := toRelayMessage(&telego.Message{
		MessageID: 2,
		Audio:     &telego.Audio{FileID: "a1", Duration: 180, Performer: "someone", Title: "a song"},
	})
	if audio.Kind != relay.KindAudio || audio.Meta.Performer != "someone" || audio.Meta.Title != "a song" || audio.Meta.Duration != 180 {
		t.Errorf("audio = %+v, attributes not carried", audio)
	}
}

// TestToRelayMessage_AnimationBeforeDocument covers GIFs: the Bot API
// sets both the animation and document fields, and the animation must
// win so the message takes the copy path instead of a media group.
func TestToRelayMessage_AnimationBeforeDocument(t *testing.T) {
	got := toRelayMessage(&telego.Message{
		MessageID: 1,
		Animation: &telego.Animation{FileID: "anim1"},
		Document:  &telego.Document{FileID: "doc1", FileName: "clip.mp4"},
	})
	if got.Kind != relay.KindAnimation || got.FileID != "anim1" {
		t.Errorf("animation message = %s/%s, want animation/anim1", got.Kind, got.FileID)
	}
	if got.Kind.Mediaful() {
		t.Error("animation must not be media-group eligible")
	}
}

func TestToRelayMessage_TextAndUnsupported(t *testing.T) {
	text := toRelayMessage(&telego.Message{MessageID: 1, Text: "hello"})
	if text.Kind != relay.KindText || text.FileID != "" {
		t.Errorf("text message = %+v, want kind text with no file id", text)
	}

	sticker := toRelayMessage(&telego.Message{MessageID: 2})
	if sticker.Kind != relay.KindOther {
		t.Errorf("contentless message = %s, want other", sticker.Kind)
	}
}

func TestBuildInputMedia_Kinds(t *testing.T) {
	batch := relay.Batch{
		{Kind: relay.KindPhoto, FileID: "f1", Caption: "cap"},
		{Kind: relay.KindVideo, FileID: "v1", Meta: relay.MediaMeta{Duration: 10, Width: 640, Height: 480}},
		{Kind: relay.KindDocument, FileID: "d1"},
		{Kind: relay.KindAudio, FileID: "a1", Meta: relay.MediaMeta{Duration: 60, Performer: "p", Title: "t"}},
	}

	media, err := buildInputMedia(batch)
	if err != nil {
		t.Fatalf("buildInputMedia: %v", err)
	}
	if len(media) != 4 {
		t.Fatalf("got %d input media, want 4", len(media))
	}

	photo, ok := media[0].(*telego.InputMediaPhoto)
	if !ok {
		t.Fatalf("media[0] is %T, want *telego.InputMediaPhoto", media[0])
	}
	if photo.Caption != "cap" {
		t.Errorf("photo caption = %q, want %q", photo.Caption, "cap")
	}

	video, ok := media[1].(*telego.InputMediaVideo)
	if !ok {
		t.Fatalf("media[1] is %T, want *telego.InputMediaVideo", media[1])
	}
	if video.Caption != "" {
		t.Errorf("video caption = %q, want empty past position 0", video.Caption)
	}
	if video.Duration != 10 || video.Width != 640 || video.Height != 480 {
		t.Errorf("video attributes = %d/%dx%d, not carried", video.Duration, video.Width, video.Height)
	}

	if _, ok := media[2].(*telego.InputMediaDocument); !ok {
		t.Errorf("media[2] is %T, want *telego.InputMediaDocument", media[2])
	}

	audio, ok := media[3].(*telego.InputMediaAudio)
	if !ok {
		t.Fatalf("media[3] is %T, want *telego.InputMediaAudio", media[3])
	}
	if audio.Duration != 60 || audio.Performer != "p" || audio.Title != "t" {
		t.Errorf("audio attributes = %+v, not carried", audio)
	}
}

func TestBuildInputMedia_RejectsNonMedia(t *testing.T) {
	if _, err := buildInputMedia(relay.Batch{{Kind: relay.KindText}}); err == nil {
		t.Error("buildInputMedia accepted a text item, want error")
	}
}
