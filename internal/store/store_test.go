package store

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/switchlog/switchlog/internal/entry"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "switchlog.db"))
	if err != nil {
		t.Fatalf("Open() unexpected error: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestChannelSheetMapping(t *testing.T) {
	db := openTestDB(t)

	if _, err := db.SheetForChannel("D08SS90DC3X"); !errors.Is(err, ErrNotFound) {
		t.Errorf("SheetForChannel(unprovisioned) error = %v, want ErrNotFound", err)
	}

	if err := db.SetSheetForChannel("D08SS90DC3X", "sheet-1"); err != nil {
		t.Fatalf("SetSheetForChannel() unexpected error: %v", err)
	}

	id, err := db.SheetForChannel("D08SS90DC3X")
	if err != nil {
		t.Fatalf("SheetForChannel() unexpected error: %v", err)
	}
	if id != "sheet-1" {
		t.Errorf("SheetForChannel() = %q, want sheet-1", id)
	}

	// Upsert replaces the mapping
	if err := db.SetSheetForChannel("D08SS90DC3X", "sheet-2"); err != nil {
		t.Fatal(err)
	}
	id, _ = db.SheetForChannel("D08SS90DC3X")
	if id != "sheet-2" {
		t.Errorf("SheetForChannel() after upsert = %q, want sheet-2", id)
	}
}

func TestTodoDocState(t *testing.T) {
	db := openTestDB(t)

	if _, err := db.TodoDocForWeek("2026-08-24"); !errors.Is(err, ErrNotFound) {
		t.Errorf("TodoDocForWeek(new week) error = %v, want ErrNotFound", err)
	}

	doc := &TodoDoc{WeekStart: "2026-08-24", DocID: "doc-1"}
	if err := db.SaveTodoDoc(doc); err != nil {
		t.Fatalf("SaveTodoDoc() unexpected error: %v", err)
	}

	loaded, err := db.TodoDocForWeek("2026-08-24")
	if err != nil {
		t.Fatalf("TodoDocForWeek() unexpected error: %v", err)
	}
	if loaded.DocID != "doc-1" || len(loaded.DaysWritten) != 0 {
		t.Errorf("loaded = %+v", loaded)
	}
	if loaded.HasDay("2026-08-30") {
		t.Error("HasDay() = true before any day header")
	}

	loaded.DaysWritten = append(loaded.DaysWritten, "2026-08-30")
	if err := db.SaveTodoDoc(loaded); err != nil {
		t.Fatal(err)
	}

	again, err := db.TodoDocForWeek("2026-08-24")
	if err != nil {
		t.Fatal(err)
	}
	if !again.HasDay("2026-08-30") {
		t.Error("HasDay() = false after saving the day")
	}
}

func TestEntryJournal(t *testing.T) {
	db := openTestDB(t)

	base := time.Date(2026, 8, 30, 9, 0, 0, 0, time.UTC)
	entries := []struct {
		e  entry.Entry
		at time.Time
	}{
		{entry.Entry{Kind: entry.KindSwitch, Description: "standup", Category: "meetings"}, base},
		{entry.Entry{Kind: entry.KindSwitch, Description: "coded ingest", Category: "coding"}, base.Add(30 * time.Minute)},
		{entry.Entry{Kind: entry.KindTodo, Description: "book dentist", Category: "personal"}, base.Add(time.Hour)},
	}

	ids := make(map[string]bool)
	for _, it := range entries {
		id, err := db.AddEntry("D08SS90DC3X", it.e, it.at)
		if err != nil {
			t.Fatalf("AddEntry() unexpected error: %v", err)
		}
		if ids[id] {
			t.Errorf("duplicate entry ID %q", id)
		}
		ids[id] = true
	}

	// Entry in another channel should not show up
	if _, err := db.AddEntry("C0123ABCDEF", entry.Entry{Kind: entry.KindSwitch, Description: "other", Category: "x"}, base); err != nil {
		t.Fatal(err)
	}

	got, err := db.EntriesBetween("D08SS90DC3X", base, base.Add(45*time.Minute))
	if err != nil {
		t.Fatalf("EntriesBetween() unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d entries, want 2", len(got))
	}
	if got[0].Entry.Description != "standup" || got[1].Entry.Category != "coding" {
		t.Errorf("entries = %+v", got)
	}
	if !got[0].LoggedAt.Equal(base) {
		t.Errorf("LoggedAt = %v, want %v", got[0].LoggedAt, base)
	}
}
