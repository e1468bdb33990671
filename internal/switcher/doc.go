// Package switcher holds the field-to-scene registry and the coordinator
// that decides when a scene switch actually happens.
//
// The coordinator is deliberately dumb about transports: it sees classified
// match-show events and an interface that can switch scenes. Debouncing,
// missing-mapping handling, and the only-advance-on-success rule live here
// and nowhere else, so every front end gets identical behaviour.
package switcher
