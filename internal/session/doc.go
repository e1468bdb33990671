// Package session sequences one monitoring session: connect to OBS and the
// scoring feed, run the receive loop, and tear everything down on stop.
//
// The Supervisor is the whole public contract a front end needs (Start,
// Stop, Status, CurrentField, UpdateMapping) plus a status callback and the
// logging sink wired in through Options. The CLI, and any GUI wrapping this
// core, contain no switching logic of their own.
//
// # Lifecycle
//
//	stopped → connecting → running → stopping → stopped
//
// Cancellation is cooperative: the receive loop waits at most one receive
// timeout before checking for a stop request, and in-flight OBS calls are
// allowed to finish inside the shutdown bound. If graceful shutdown exceeds
// that bound, termination is forced and a warning is logged rather than
// hanging indefinitely.
package session
