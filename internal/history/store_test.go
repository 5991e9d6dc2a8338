package history_test

import (
	"context"
	"testing"
	"time"

	"scanpi/internal/history"
	"scanpi/internal/session"
	"scanpi/internal/testsupport"
)

func openStore(t *testing.T) *history.Store {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	store, err := history.Open(cfg)
	if err != nil {
		t.Fatalf("open history store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestRecordAndGet(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	sess := session.New("a4", 400)
	sess.AddPage("batch/out01.pdf")
	sess.AddPage("batch/out02.pdf")
	sess.OutputPath = "/home/op/invoice.pdf"
	sess.Uploaded = true
	sess.SetCompleted()

	if err := store.Record(ctx, sess); err != nil {
		t.Fatalf("record: %v", err)
	}

	entry, err := store.GetByID(ctx, sess.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if entry == nil {
		t.Fatal("expected entry")
	}
	if entry.Format != "a4" || entry.Resolution != 400 || entry.PageCount != 2 {
		t.Fatalf("unexpected entry: %+v", entry)
	}
	if entry.Status != session.StatusCompleted || !entry.Uploaded {
		t.Fatalf("unexpected status fields: %+v", entry)
	}
	if entry.OutputPath != "/home/op/invoice.pdf" {
		t.Fatalf("unexpected output path: %q", entry.OutputPath)
	}
	if entry.StartedAt.IsZero() || entry.FinishedAt.IsZero() {
		t.Fatalf("expected timestamps, got %+v", entry)
	}
}

func TestRecordIsIdempotentPerSession(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	sess := session.New("a5", 200)
	sess.SetFailed("scanner offline")
	if err := store.Record(ctx, sess); err != nil {
		t.Fatalf("record failed state: %v", err)
	}

	sess.Status = session.StatusCompleted
	sess.ErrorMessage = ""
	if err := store.Record(ctx, sess); err != nil {
		t.Fatalf("record updated state: %v", err)
	}

	entries, err := store.List(ctx, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected single row per session, got %d", len(entries))
	}
	if entries[0].Status != session.StatusCompleted {
		t.Fatalf("expected latest status, got %s", entries[0].Status)
	}
}

func TestListNewestFirstWithLimit(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	var last string
	for i := 0; i < 3; i++ {
		sess := session.New("a4", 400)
		sess.StartedAt = base.Add(time.Duration(i) * time.Minute)
		sess.SetCompleted()
		if err := store.Record(ctx, sess); err != nil {
			t.Fatalf("record %d: %v", i, err)
		}
		last = sess.ID
	}

	entries, err := store.List(ctx, 2)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].ID != last {
		t.Fatalf("expected newest session first, got %s", entries[0].ID)
	}
}

func TestStatsAndClear(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	ok := session.New("a4", 400)
	ok.SetCompleted()
	bad := session.New("a4", 400)
	bad.SetFailed("gs exited 1")
	for _, sess := range []*session.Session{ok, bad} {
		if err := store.Record(ctx, sess); err != nil {
			t.Fatalf("record: %v", err)
		}
	}

	stats, err := store.Stats(ctx)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats[session.StatusCompleted] != 1 || stats[session.StatusFailed] != 1 {
		t.Fatalf("unexpected stats: %v", stats)
	}

	removed, err := store.Clear(ctx)
	if err != nil {
		t.Fatalf("clear: %v", err)
	}
	if removed != 2 {
		t.Fatalf("expected 2 rows cleared, got %d", removed)
	}
}

func TestGetMissingReturnsNil(t *testing.T) {
	store := openStore(t)
	entry, err := store.GetByID(context.Background(), "no-such-id")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if entry != nil {
		t.Fatalf("expected nil for missing id, got %+v", entry)
	}
}
