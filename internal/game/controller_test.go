package game

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/boopdotpng/auto-chessboard/internal/board"
	"github.com/boopdotpng/auto-chessboard/internal/engine"
	"github.com/boopdotpng/auto-chessboard/internal/events"
	"github.com/boopdotpng/auto-chessboard/internal/storage"
)

// startController wires a controller onto a running bus and returns a
// channel carrying only the outbound events.
func startController(t *testing.T, eng *engine.Engine, store *storage.Storage) (*events.Bus, chan events.Event) {
	t.Helper()
	bus := events.NewBus()
	bus.Register(NewController(eng, bus, store).HandleEvent)

	out := make(chan events.Event, 64)
	bus.Register(func(ev events.Event) error {
		switch ev.(type) {
		case events.BoardPositionUpdated, events.SendPgn, events.MoveApplied,
			events.PromotionPrompt, events.InvalidMove, events.GameEnded:
			out <- ev
		}
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go bus.Run(ctx)
	return bus, out
}

func next(t *testing.T, out chan events.Event) events.Event {
	t.Helper()
	select {
	case ev := <-out:
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for an output event")
		return nil
	}
}

func TestControllerMoveFlow(t *testing.T) {
	bus, out := startController(t, engine.NewEngine(), nil)

	bus.Publish(events.MovePiece{From: board.E2, To: board.E4})
	applied, ok := next(t, out).(events.MoveApplied)
	if !ok || applied.Summary.SAN != "e4" {
		t.Fatalf("want MoveApplied e4, got %#v", applied)
	}
	updated, ok := next(t, out).(events.BoardPositionUpdated)
	if !ok || !strings.Contains(updated.FEN, " b ") {
		t.Fatalf("want update with black to move, got %#v", updated)
	}

	// e2 is empty now.
	bus.Publish(events.MovePiece{From: board.E2, To: board.E4})
	if _, ok := next(t, out).(events.InvalidMove); !ok {
		t.Fatal("want InvalidMove for empty origin")
	}

	bus.Publish(events.RequestPgn{})
	pgn, ok := next(t, out).(events.SendPgn)
	if !ok || pgn.PGN != "1. e4 *" {
		t.Fatalf("want SendPgn 1. e4 *, got %#v", pgn)
	}

	bus.Publish(events.UndoLastMove{})
	restored, ok := next(t, out).(events.BoardPositionUpdated)
	if !ok || restored.FEN != board.StartFEN {
		t.Fatalf("want start position after undo, got %#v", restored)
	}

	bus.Publish(events.UndoLastMove{})
	if _, ok := next(t, out).(events.InvalidMove); !ok {
		t.Fatal("want InvalidMove for empty history")
	}
}

func TestControllerBoardChangeFlow(t *testing.T) {
	eng := engine.NewEngine()
	bus, out := startController(t, eng, nil)

	occ := eng.Occupancy()
	mask := board.SquareBB(board.E2) | board.SquareBB(board.E4)
	state := (occ &^ board.SquareBB(board.E2)) | board.SquareBB(board.E4)
	bus.Publish(events.BoardChange{Mask: mask, State: state})

	applied, ok := next(t, out).(events.MoveApplied)
	if !ok || applied.Summary.SAN != "e4" {
		t.Fatalf("want MoveApplied e4, got %#v", applied)
	}
}

func TestControllerPromotionFlow(t *testing.T) {
	eng := engine.NewEngine()
	if err := eng.SetPosition("7k/P7/8/8/8/8/8/K7 w - - 0 1"); err != nil {
		t.Fatal(err)
	}
	bus, out := startController(t, eng, nil)

	bus.Publish(events.MovePiece{From: board.A7, To: board.A8})
	prompt, ok := next(t, out).(events.PromotionPrompt)
	if !ok || prompt.Request.Square != board.A8 || prompt.Request.Color != board.White {
		t.Fatalf("want white promotion prompt on a8, got %#v", prompt)
	}

	bus.Publish(events.MovePiece{From: board.H8, To: board.H7})
	invalid, ok := next(t, out).(events.InvalidMove)
	if !ok || !strings.Contains(invalid.Reason, "promotion pending") {
		t.Fatalf("want promotion-pending rejection, got %#v", invalid)
	}

	bus.Publish(events.Promotion{Piece: board.Queen, Square: board.A8})
	applied, ok := next(t, out).(events.MoveApplied)
	if !ok || applied.Summary.SAN != "a8=Q+" {
		t.Fatalf("want MoveApplied a8=Q+, got %#v", applied)
	}
}

func TestControllerArchivesFinishedGame(t *testing.T) {
	store, err := storage.NewStorageAt(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()
	bus, out := startController(t, engine.NewEngine(), store)

	for _, mv := range []events.MovePiece{
		{From: board.F2, To: board.F3},
		{From: board.E7, To: board.E5},
		{From: board.G2, To: board.G4},
		{From: board.D8, To: board.H4},
	} {
		bus.Publish(mv)
	}

	var ended events.GameEnded
loop:
	for {
		select {
		case ev := <-out:
			if ge, ok := ev.(events.GameEnded); ok {
				ended = ge
				break loop
			}
		case <-time.After(5 * time.Second):
			t.Fatal("timed out waiting for GameEnded")
		}
	}
	if ended.Outcome.Result != engine.BlackWins {
		t.Errorf("result = %v, want black wins", ended.Outcome.Result)
	}
	if ended.PGN != "1. f3 e5 2. g4 Qh4# 0-1" {
		t.Errorf("PGN = %q", ended.PGN)
	}

	ids, err := store.ListGames()
	if err != nil {
		t.Fatal(err)
	}
	if len(ids) != 1 {
		t.Fatalf("archived %d games, want 1", len(ids))
	}
	rec, err := store.LoadGame(ids[0])
	if err != nil {
		t.Fatal(err)
	}
	if rec.Result != "0-1" || !strings.Contains(rec.PGN, "Qh4#") {
		t.Errorf("record = %+v", rec)
	}
}
