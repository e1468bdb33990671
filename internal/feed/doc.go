// Package feed receives and classifies the scoring system's live display
// command stream.
//
// The scoring system exposes one WebSocket endpoint per event:
//
//	ws://<host>:<port>/stream/display/command/?code=<event_code>
//
// Inbound frames are UTF-8 text: either the literal keep-alive "pong" or a
// JSON object. The only shape fieldcast acts on is
//
//	{"type": "SHOW_MATCH", "field": 2}
//	{"type": "SHOW_MATCH", "params": {"field": 2}}
//
// announcing which field a match is now showing on. Everything else on the
// stream is chatter and is dropped without logging.
//
// The Client keeps reads cancellable: Receive waits at most one bounded
// interval before returning ErrTimeout, which is the hook the session's
// receive loop uses to notice a stop request without blocking indefinitely.
package feed
