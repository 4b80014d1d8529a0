package relay

import "errors"

// Validation failures for a channel pair, matched with errors.Is.
var (
	ErrMissingSource        = errors.New("source channel not set")
	ErrMissingDestination   = errors.New("destination channel not set")
	ErrSameChannel          = errors.New("source and destination channels cannot be the same")
	ErrMalformedSource      = errors.New("source channel id is not a channel id")
	ErrMalformedDestination = errors.New("destination channel id is not a channel id")
)

// Pair holds the source and destination channel identifiers. Nil means
// not set. Telegram assigns negative ids to channels and supergroups,
// so a non-negative id cannot be a relay endpoint.
type Pair struct {
	SourceID      *int64 `json:"source_id"`
	DestinationID *int64 `json:"destination_id"`
}

// Ready reports whether both identifiers are set.
func (p Pair) Ready() bool {
	return p.SourceID != nil && p.DestinationID != nil
}

// Validate checks that both identifiers are set, channel-like and
// distinct. The first failing check wins, so the more specific
// missing/malformed reasons are reported before equality.
func (p Pair) Validate() error {
	if p.SourceID == nil {
		return ErrMissingSource
	}
	if p.DestinationID == nil {
		return ErrMissingDestination
	}
	if *p.SourceID >= 0 {
		return ErrMalformedSource
	}
	if *p.DestinationID >= 0 {
		return ErrMalformedDestination
	}
	if *p.SourceID == *p.DestinationID {
		return ErrSameChannel
	}
	return nil
}

// PairSource provides the current channel pair. Implemented by the
// durable store; reads reflect the latest successful write.
type PairSource interface {
	Pair() Pair
}
