// Package journal persists the history of scene-switch attempts in a
// local SQLite database.
//
// Every attempt the coordinator makes is recorded with its outcome, so
// operators can review what happened during an event after the fact.
// The Store satisfies switcher.Recorder and is wired into the session
// at startup when journalling is enabled.
package journal
