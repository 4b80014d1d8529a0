package telegram

import (
	"fmt"
	"time"

	"github.com/mymmrac/telego"
	tu "github.com/mymmrac/telego/telegoutil"

	"github.com/nextlevelbuilder/relaygram/internal/relay"
)

// toRelayMessage decodes a Telegram message into the relay's model.
// The file id doubles as the content identity token for deduplication.
func toRelayMessage(msg *telego.Message) relay.Message {
	m := relay.Message{
		ID:        msg.MessageID,
		ChatID:    msg.Chat.ID,
		Timestamp: time.Unix(msg.Date, 0),
		GroupID:   msg.MediaGroupID,
		Caption:   msg.Caption,
		Kind:      relay.KindOther,
	}

	switch {
	case len(msg.Photo) > 0:
		m.Kind = relay.KindPhoto
		// Highest resolution is the last element.
		m.FileID = msg.Photo[len(msg.Photo)-1].FileID
	case msg.Video != nil:
		m.Kind = relay.KindVideo
		m.FileID = msg.Video.FileID
		m.Meta = relay.MediaMeta{
			Duration: msg.Video.Duration,
			Width:    msg.Video.Width,
			Height:   msg.Video.Height,
		}
	case msg.Animation != nil:
		// Animations also carry a document field; check first so GIFs
		// are relayed by reference, not sent as documents.
		m.Kind = relay.KindAnimation
		m.FileID = msg.Animation.FileID
	case msg.Document != nil:
		m.Kind = relay.KindDocument
		m.FileID = msg.Document.FileID
		m.Meta = relay.MediaMeta{FileName: msg.Document.FileName}
	case msg.Audio != nil:
		m.Kind = relay.KindAudio
		m.FileID = msg.Audio.FileID
		m.Meta = relay.MediaMeta{
			Duration:  msg.Audio.Duration,
			Performer: msg.Audio.Performer,
			Title:     msg.Audio.Title,
		}
	case msg.Text != "":
		m.Kind = relay.KindText
	}
	return m
}

// buildInputMedia maps a canonical batch onto Bot API input media, one
// constructor per kind. Kinds that cannot travel in a media group never
// reach this point; hitting the default arm is a programming error
// surfaced as a non-retryable send failure.
func buildInputMedia(batch relay.Batch) ([]telego.InputMedia, error) {
	media := make([]telego.InputMedia, 0, len(batch))
	for _, item := range batch {
		mediaFile := tu.FileFromID(item.FileID)
		switch item.Kind {
		case relay.KindPhoto:
			photo := tu.MediaPhoto(mediaFile)
			photo.Caption = item.Caption
			media = append(media, photo)
		case relay.KindVideo:
			video := tu.MediaVideo(mediaFile)
			video.Caption = item.Caption
			video.Duration = item.Meta.Duration
			video.Width = item.Meta.Width
			video.Height = item.Meta.Height
			media = append(media, video)
		case relay.KindDocument:
			doc := tu.MediaDocument(mediaFile)
			doc.Caption = item.Caption
			media = append(media, doc)
		case relay.KindAudio:
			audio := tu.MediaAudio(mediaFile)
			audio.Caption = item.Caption
			audio.Duration = item.Meta.Duration
			audio.Performer = item.Meta.Performer
			audio.Title = item.Meta.Title
			media = append(media, audio)
		default:
			return nil, fmt.Errorf("kind %q cannot be sent in a media group", item.Kind)
		}
	}
	return media, nil
}
