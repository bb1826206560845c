package file

import (
	"context"
	"os"
	"testing"

	"thrifty/internal/core"
)

func TestLoadMissingFileReturnsEmptyDefaults(t *testing.T) {
	s := New(t.TempDir())
	snap, err := s.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(snap.Transactions) != 0 || snap.Points != 0 || len(snap.Badges) != 0 {
		t.Fatalf("expected empty defaults, got %+v", snap)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	s := New(t.TempDir())
	in := core.Snapshot{
		Transactions: []core.Transaction{{
			ID:          "abc",
			Description: "Coffee",
			Amount:      core.Money{Cents: 15000},
			Type:        core.TypeExpense,
			Category:    core.CategoryFood,
			Date:        core.NewDate(2024, 1, 1),
		}},
		Points: 10,
		Badges: []core.Badge{{Name: "Novice Tracker", Icon: "medal"}},
	}
	if err := s.Save(context.Background(), in); err != nil {
		t.Fatalf("save: %v", err)
	}
	out, err := s.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(out.Transactions) != 1 || out.Transactions[0].ID != "abc" {
		t.Fatalf("unexpected transactions %+v", out.Transactions)
	}
	if out.Points != 10 || len(out.Badges) != 1 {
		t.Fatalf("unexpected gamification state %+v", out)
	}
}

func TestSaveOverwritesPrevious(t *testing.T) {
	s := New(t.TempDir())
	ctx := context.Background()
	if err := s.Save(ctx, core.Snapshot{Points: 10}); err != nil {
		t.Fatal(err)
	}
	if err := s.Save(ctx, core.Snapshot{Points: 20}); err != nil {
		t.Fatal(err)
	}
	out, err := s.Load(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if out.Points != 20 {
		t.Fatalf("expected latest snapshot, got points=%d", out.Points)
	}
}

func TestLoadCorruptFile(t *testing.T) {
	dir := t.TempDir()
	s := New(dir)
	if err := os.WriteFile(s.Path(), []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Load(context.Background()); err == nil {
		t.Fatal("expected decode error")
	}
}
