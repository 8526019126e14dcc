package history_test

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"videoengine/internal/history"
	"videoengine/internal/testsupport"

	_ "modernc.org/sqlite"
)

func TestRecordAndList(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithHistory())
	store := testsupport.MustOpenHistory(t, cfg)
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	first := &history.Run{Codec: "h264", Passes: 2, Width: 200, Height: 150, OutputBytes: 1024, StartedAt: base, FinishedAt: base.Add(3 * time.Second)}
	second := &history.Run{Codec: "vp9", Passes: 1, Status: history.StatusFailed, ErrorKind: "encode", ErrorMessage: "boom", StartedAt: base.Add(time.Minute)}
	for _, run := range []*history.Run{first, second} {
		if err := store.Record(ctx, run); err != nil {
			t.Fatalf("Record failed: %v", err)
		}
		if run.ID == "" {
			t.Fatal("expected run ID to be assigned")
		}
	}

	runs, err := store.List(ctx, 0)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	if runs[0].ID != second.ID || runs[1].ID != first.ID {
		t.Fatalf("expected newest first, got %s then %s", runs[0].Codec, runs[1].Codec)
	}
	if runs[1].Status != history.StatusSucceeded {
		t.Fatalf("expected default succeeded status, got %q", runs[1].Status)
	}
	if runs[1].Duration() != 3*time.Second {
		t.Fatalf("unexpected duration %v", runs[1].Duration())
	}
	if runs[0].ErrorKind != "encode" || runs[0].ErrorMessage != "boom" {
		t.Fatalf("failure details not persisted: %+v", runs[0])
	}

	limited, err := store.List(ctx, 1)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(limited) != 1 || limited[0].ID != second.ID {
		t.Fatalf("unexpected limited list: %+v", limited)
	}
}

func TestListOrdersSubSecondTimestamps(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithHistory())
	store := testsupport.MustOpenHistory(t, cfg)
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 12, 0, 5, 0, time.UTC)
	early := &history.Run{Codec: "h264", StartedAt: base.Add(100 * time.Millisecond)}
	late := &history.Run{Codec: "h264", StartedAt: base.Add(120 * time.Millisecond)}
	for _, run := range []*history.Run{late, early} {
		if err := store.Record(ctx, run); err != nil {
			t.Fatalf("Record failed: %v", err)
		}
	}
	runs, err := store.List(ctx, 0)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if runs[0].ID != late.ID {
		t.Fatalf("expected %s first, got %s", late.ID, runs[0].ID)
	}
}

func TestGetAndPrune(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithHistory())
	store := testsupport.MustOpenHistory(t, cfg)
	ctx := context.Background()

	old := &history.Run{Codec: "h265", StartedAt: time.Now().Add(-48 * time.Hour)}
	recent := &history.Run{Codec: "h265"}
	for _, run := range []*history.Run{old, recent} {
		if err := store.Record(ctx, run); err != nil {
			t.Fatalf("Record failed: %v", err)
		}
	}

	got, err := store.Get(ctx, old.ID)
	if err != nil || got == nil || got.Codec != "h265" {
		t.Fatalf("Get returned %+v, %v", got, err)
	}
	missing, err := store.Get(ctx, "missing")
	if err != nil || missing != nil {
		t.Fatalf("expected nil for missing run, got %+v, %v", missing, err)
	}

	removed, err := store.Prune(ctx, time.Now().Add(-24*time.Hour))
	if err != nil {
		t.Fatalf("Prune failed: %v", err)
	}
	if removed != 1 {
		t.Fatalf("expected 1 pruned run, got %d", removed)
	}
	runs, err := store.List(ctx, 0)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(runs) != 1 || runs[0].ID != recent.ID {
		t.Fatalf("unexpected remaining runs: %+v", runs)
	}
}

func TestRecordRequiresCodec(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithHistory())
	store := testsupport.MustOpenHistory(t, cfg)
	if err := store.Record(context.Background(), &history.Run{}); err == nil {
		t.Fatal("expected error when codec missing")
	}
}

func TestReopenKeepsRuns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "history.db")
	store, err := history.OpenPath(path)
	if err != nil {
		t.Fatalf("OpenPath failed: %v", err)
	}
	if err := store.Record(context.Background(), &history.Run{Codec: "vp9"}); err != nil {
		t.Fatalf("Record failed: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected database file: %v", err)
	}

	reopened, err := history.OpenPath(path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer reopened.Close()
	runs, err := reopened.List(context.Background(), 0)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("expected 1 persisted run, got %d", len(runs))
	}
}

func TestOpenRejectsNewerLedger(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	store, err := history.OpenPath(path)
	if err != nil {
		t.Fatalf("OpenPath failed: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("open raw db: %v", err)
	}
	if _, err := db.Exec("PRAGMA user_version = 99"); err != nil {
		t.Fatalf("bump version: %v", err)
	}
	_ = db.Close()

	_, err = history.OpenPath(path)
	if !errors.Is(err, history.ErrSchemaMismatch) {
		t.Fatalf("expected ErrSchemaMismatch, got %v", err)
	}
}
