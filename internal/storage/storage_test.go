package storage

import (
	"errors"
	"strings"
	"testing"
)

func openTestStorage(t *testing.T) *Storage {
	t.Helper()
	s, err := NewStorageAt(t.TempDir())
	if err != nil {
		t.Fatalf("NewStorageAt: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestPreferencesRoundTrip(t *testing.T) {
	s := openTestStorage(t)

	prefs, err := s.LoadPreferences()
	if err != nil {
		t.Fatalf("LoadPreferences: %v", err)
	}
	if prefs.BoardName != "auto-chessboard" || prefs.SettleMillis != 1000 {
		t.Errorf("defaults = %+v", prefs)
	}

	prefs.BoardName = "living room board"
	prefs.SettleMillis = 750
	prefs.FlipOrientation = true
	if err := s.SavePreferences(prefs); err != nil {
		t.Fatalf("SavePreferences: %v", err)
	}

	got, err := s.LoadPreferences()
	if err != nil {
		t.Fatalf("LoadPreferences: %v", err)
	}
	if got.BoardName != "living room board" || got.SettleMillis != 750 || !got.FlipOrientation {
		t.Errorf("loaded = %+v", got)
	}
	if got.LastUsed.IsZero() {
		t.Error("LastUsed not stamped on save")
	}
}

func TestArchiveGame(t *testing.T) {
	s := openTestStorage(t)

	id1, err := s.ArchiveGame("1. f3 e5 2. g4 Qh4# 0-1", "final fen 1", "0-1", "checkmate", 4)
	if err != nil {
		t.Fatalf("ArchiveGame: %v", err)
	}
	id2, err := s.ArchiveGame("1. e4 1/2-1/2", "final fen 2", "1/2-1/2", "stalemate", 1)
	if err != nil {
		t.Fatalf("ArchiveGame: %v", err)
	}

	ids, err := s.ListGames()
	if err != nil {
		t.Fatalf("ListGames: %v", err)
	}
	if len(ids) != 2 || ids[0] != id2 || ids[1] != id1 {
		t.Errorf("ListGames = %v, want newest first [%s %s]", ids, id2, id1)
	}

	rec, err := s.LoadGame(id1)
	if err != nil {
		t.Fatalf("LoadGame: %v", err)
	}
	if rec.Result != "0-1" || rec.Method != "checkmate" || rec.MoveCount != 4 {
		t.Errorf("record = %+v", rec)
	}
	for _, want := range []string{
		`[Event "Casual game"]`,
		`[Result "0-1"]`,
		"1. f3 e5 2. g4 Qh4# 0-1",
	} {
		if !strings.Contains(rec.PGN, want) {
			t.Errorf("PGN missing %q:\n%s", want, rec.PGN)
		}
	}

	if err := s.DeleteGame(id1); err != nil {
		t.Fatalf("DeleteGame: %v", err)
	}
	if _, err := s.LoadGame(id1); !errors.Is(err, ErrNoSuchGame) {
		t.Errorf("LoadGame after delete err = %v, want ErrNoSuchGame", err)
	}
	ids, err = s.ListGames()
	if err != nil {
		t.Fatalf("ListGames: %v", err)
	}
	if len(ids) != 1 || ids[0] != id2 {
		t.Errorf("ListGames after delete = %v", ids)
	}
}

func TestArchiveTotals(t *testing.T) {
	s := openTestStorage(t)

	results := []string{"1-0", "0-1", "0-1", "1/2-1/2"}
	for _, r := range results {
		if _, err := s.ArchiveGame("*", "fen", r, "test", 0); err != nil {
			t.Fatalf("ArchiveGame(%s): %v", r, err)
		}
	}

	totals, err := s.LoadTotals()
	if err != nil {
		t.Fatalf("LoadTotals: %v", err)
	}
	want := ArchiveTotals{Games: 4, WhiteWins: 1, BlackWins: 2, Draws: 1}
	if *totals != want {
		t.Errorf("totals = %+v, want %+v", totals, want)
	}
}
