package journal

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/fieldcast/fieldcast/internal/switcher"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(Config{Path: filepath.Join(t.TempDir(), "data", "fieldcast.db")})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("Close() error = %v", err)
		}
	})
	return store
}

func TestOpen_CreatesDirectory(t *testing.T) {
	// The data directory does not exist yet; Open must create it.
	openTestStore(t)
}

func TestRecordSwitch_RoundTrip(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	at := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
	recs := []switcher.Record{
		{At: at, Field: 1, Scene: "Field 1", Outcome: switcher.OutcomeSwitched},
		{At: at.Add(time.Minute), Field: 9, Outcome: switcher.OutcomeNoMapping},
		{At: at.Add(2 * time.Minute), Field: 2, Scene: "Field 2", Outcome: switcher.OutcomeFailed, Detail: "obs: request failed"},
	}
	for _, rec := range recs {
		if err := store.RecordSwitch(ctx, rec); err != nil {
			t.Fatalf("RecordSwitch(%+v) error = %v", rec, err)
		}
	}

	entries, err := store.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("Recent() returned %d entries, want 3", len(entries))
	}

	// Newest first.
	if entries[0].Outcome != string(switcher.OutcomeFailed) {
		t.Errorf("entries[0].Outcome = %q, want failed (newest)", entries[0].Outcome)
	}
	if entries[0].Detail != "obs: request failed" {
		t.Errorf("entries[0].Detail = %q, want the failure detail", entries[0].Detail)
	}
	if entries[2].Field != 1 || entries[2].Scene != "Field 1" {
		t.Errorf("entries[2] = %+v, want the first switch (oldest)", entries[2])
	}
	if !entries[2].At.Equal(at) {
		t.Errorf("entries[2].At = %v, want %v", entries[2].At, at)
	}
	if entries[0].ID == "" || entries[0].ID == entries[1].ID {
		t.Errorf("entry IDs %q/%q not unique", entries[0].ID, entries[1].ID)
	}
}

func TestRecordSwitch_StampsMissingTimestamp(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	before := time.Now().UTC().Add(-time.Second)
	if err := store.RecordSwitch(ctx, switcher.Record{Field: 1, Scene: "Field 1", Outcome: switcher.OutcomeSwitched}); err != nil {
		t.Fatalf("RecordSwitch() error = %v", err)
	}

	entries, err := store.Recent(ctx, 1)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("Recent() returned %d entries, want 1", len(entries))
	}
	if entries[0].At.Before(before) {
		t.Errorf("entries[0].At = %v, want a fresh timestamp", entries[0].At)
	}
}

func TestRecent_Limit(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	for i := 1; i <= 5; i++ {
		rec := switcher.Record{
			At:      time.Now().UTC().Add(time.Duration(i) * time.Second),
			Field:   i,
			Scene:   "Field",
			Outcome: switcher.OutcomeSwitched,
		}
		if err := store.RecordSwitch(ctx, rec); err != nil {
			t.Fatalf("RecordSwitch() error = %v", err)
		}
	}

	entries, err := store.Recent(ctx, 2)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("Recent(2) returned %d entries, want 2", len(entries))
	}
	if entries[0].Field != 5 || entries[1].Field != 4 {
		t.Errorf("Recent(2) fields = %d, %d; want 5, 4", entries[0].Field, entries[1].Field)
	}
}

func TestRecent_Empty(t *testing.T) {
	store := openTestStore(t)

	entries, err := store.Recent(context.Background(), 10)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("Recent() on empty journal = %v, want none", entries)
	}
}

func TestHealthCheck(t *testing.T) {
	store := openTestStore(t)

	if err := store.HealthCheck(context.Background()); err != nil {
		t.Errorf("HealthCheck() error = %v", err)
	}
}

func TestStore_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fieldcast.db")
	ctx := context.Background()

	store, err := Open(Config{Path: path})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if err := store.RecordSwitch(ctx, switcher.Record{Field: 1, Scene: "Field 1", Outcome: switcher.OutcomeSwitched}); err != nil {
		t.Fatalf("RecordSwitch() error = %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	// History survives across process restarts.
	store, err = Open(Config{Path: path})
	if err != nil {
		t.Fatalf("reopening: %v", err)
	}
	defer store.Close()

	entries, err := store.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("Recent() after reopen = %d entries, want 1", len(entries))
	}
}
