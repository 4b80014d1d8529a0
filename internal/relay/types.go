package relay

import "time"

// Kind classifies the content of an inbound message.
type Kind string

const (
	KindText      Kind = "text"
	KindPhoto     Kind = "photo"
	KindVideo     Kind = "video"
	KindDocument  Kind = "document"
	KindAudio     Kind = "audio"
	KindAnimation Kind = "animation"
	KindOther     Kind = "other"
)

// Mediaful reports whether the kind carries a media payload that can
// travel inside a media group. Animations cannot; they are relayed by
// reference instead.
func (k Kind) Mediaful() bool {
	switch k {
	case KindPhoto, KindVideo, KindDocument, KindAudio:
		return true
	}
	return false
}

// MediaMeta carries kind-specific attributes through canonicalization
// unchanged. Only the fields relevant to the item's kind are set.
type MediaMeta struct {
	Duration  int    // video, audio (seconds)
	Width     int    // video
	Height    int    // video
	FileName  string // document
	Performer string // audio
	Title     string // audio
}

// Message is one unit of inbound content, already decoded from the
// transport's native update type.
type Message struct {
	ID        int       // message identifier, monotonically assigned by the origin
	ChatID    int64     // originating chat
	Timestamp time.Time // server-assigned
	GroupID   string    // non-empty iff part of a media group
	Kind      Kind
	Caption   string
	FileID    string // content identity token; empty for text/other
	Meta      MediaMeta
}

// Item is one entry of a canonical batch.
type Item struct {
	Kind    Kind
	FileID  string
	Caption string // set on position 0 only
	Meta    MediaMeta
}

// Batch is the ordered, deduplicated, single-captioned sequence of
// items ready for one delivery call. Never mutated after creation.
type Batch []Item
