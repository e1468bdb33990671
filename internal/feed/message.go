package feed

import "encoding/json"

// TypeShowMatch is the message type announcing which field a match is now
// showing on. Every other message type on the stream is display chatter.
const TypeShowMatch = "SHOW_MATCH"

// keepAlivePayload is the literal non-JSON frame the scoring system sends
// periodically in response to pings.
const keepAlivePayload = "pong"

// Kind classifies a received frame.
type Kind int

const (
	// KindIgnored covers valid JSON that carries nothing actionable:
	// unrelated message types, or a SHOW_MATCH without a field number.
	// Ignored frames are high-frequency chatter and must not be logged.
	KindIgnored Kind = iota

	// KindPong is the scoring system's keep-alive frame.
	KindPong

	// KindMalformed is a non-JSON frame other than the keep-alive.
	// Recoverable: the caller logs a decode warning and drops it.
	KindMalformed

	// KindMatchShow is a SHOW_MATCH message carrying a field number.
	KindMatchShow
)

// Event is the classified form of a feed frame.
type Event struct {
	Kind Kind

	// Field is the field number a match is now showing on.
	// Only meaningful when Kind is KindMatchShow.
	Field int
}

// showMatchMessage is the recognised wire shape. The field number appears at
// the top level on older scoring system builds and under params on newer ones.
type showMatchMessage struct {
	Type   string `json:"type"`
	Field  *int   `json:"field"`
	Params struct {
		Field *int `json:"field"`
	} `json:"params"`
}

// Classify decodes and classifies a raw feed frame.
//
// Classification never fails: undecodable input maps to KindPong or
// KindMalformed rather than an error, because a single bad frame must not
// disturb the receive loop.
func Classify(payload []byte) Event {
	if string(payload) == keepAlivePayload {
		return Event{Kind: KindPong}
	}

	var msg showMatchMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		return Event{Kind: KindMalformed}
	}

	if msg.Type != TypeShowMatch {
		return Event{Kind: KindIgnored}
	}

	field := msg.Field
	if field == nil {
		field = msg.Params.Field
	}
	if field == nil {
		return Event{Kind: KindIgnored}
	}

	return Event{Kind: KindMatchShow, Field: *field}
}
