package engine

import (
	"errors"
	"testing"

	"github.com/boopdotpng/auto-chessboard/internal/board"
)

func TestCommandAppliesLegalMove(t *testing.T) {
	e := NewEngine()
	sum, err := e.Command(board.E2, board.E4)
	if err != nil {
		t.Fatalf("Command: %v", err)
	}
	if sum.SAN != "e4" {
		t.Errorf("SAN = %q, want e4", sum.SAN)
	}
	if e.MoveCount() != 1 {
		t.Errorf("MoveCount = %d, want 1", e.MoveCount())
	}
}

func TestCommandRejectsIllegal(t *testing.T) {
	e := NewEngine()
	cases := []struct {
		name     string
		from, to board.Square
	}{
		{"pawn jumps three ranks", board.E2, board.E5},
		{"wrong side to move", board.E7, board.E5},
		{"empty origin square", board.E4, board.E5},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := e.Command(tc.from, tc.to); !errors.Is(err, ErrIllegalMove) {
				t.Errorf("err = %v, want ErrIllegalMove", err)
			}
			if e.FEN() != board.StartFEN {
				t.Errorf("position changed: %q", e.FEN())
			}
		})
	}
}

func TestCommandCastleByKingJourney(t *testing.T) {
	e := newEngineAt(t, "4k3/8/8/8/8/8/8/4K2R w K - 0 1")
	sum, err := e.Command(board.E1, board.G1)
	if err != nil {
		t.Fatalf("Command: %v", err)
	}
	if !sum.Move.IsCastling() || sum.SAN != "O-O" {
		t.Errorf("move = %v SAN = %q, want castling O-O", sum.Move, sum.SAN)
	}
}

func TestCommandPromotionSuspends(t *testing.T) {
	e := newEngineAt(t, "7k/P7/8/8/8/8/8/K7 w - - 0 1")
	sum, err := e.Command(board.A7, board.A8)
	if err != nil {
		t.Fatalf("Command: %v", err)
	}
	if sum.Pending == nil {
		t.Fatal("promotion command did not suspend")
	}
	done, err := e.ConfirmPromotion(board.Knight, board.A8)
	if err != nil {
		t.Fatalf("ConfirmPromotion: %v", err)
	}
	if done.SAN != "a8=N" {
		t.Errorf("SAN = %q, want a8=N", done.SAN)
	}
	if e.PieceAt(board.A8) != board.WhiteKnight {
		t.Errorf("a8 = %v, want white knight", e.PieceAt(board.A8))
	}
}

func TestUndoRewindsHistory(t *testing.T) {
	e := NewEngine()
	if _, err := e.Command(board.E2, board.E4); err != nil {
		t.Fatal(err)
	}
	afterFirst := e.FEN()
	if _, err := e.Command(board.E7, board.E5); err != nil {
		t.Fatal(err)
	}

	fen, err := e.Undo()
	if err != nil {
		t.Fatalf("Undo: %v", err)
	}
	if fen != afterFirst {
		t.Errorf("undo restored %q, want %q", fen, afterFirst)
	}
	fen, err = e.Undo()
	if err != nil {
		t.Fatalf("Undo: %v", err)
	}
	if fen != board.StartFEN {
		t.Errorf("undo restored %q, want start", fen)
	}
	if _, err := e.Undo(); !errors.Is(err, ErrIllegalMove) {
		t.Errorf("empty-history undo err = %v, want ErrIllegalMove", err)
	}
}

func TestSetPositionRejectsBadFEN(t *testing.T) {
	e := NewEngine()
	if _, err := e.Command(board.E2, board.E4); err != nil {
		t.Fatal(err)
	}
	before := e.FEN()

	err := e.SetPosition("this is not a position")
	if !errors.Is(err, board.ErrInvalidFEN) {
		t.Fatalf("err = %v, want ErrInvalidFEN", err)
	}
	if e.FEN() != before {
		t.Errorf("position changed on rejected FEN: %q", e.FEN())
	}
	if e.MoveCount() != 1 {
		t.Errorf("history clobbered on rejected FEN")
	}
}

func TestFoolsMate(t *testing.T) {
	e := NewEngine()
	seq := []struct{ from, to board.Square }{
		{board.F2, board.F3},
		{board.E7, board.E5},
		{board.G2, board.G4},
		{board.D8, board.H4},
	}
	var last *MoveSummary
	for _, mv := range seq {
		sum, err := e.Command(mv.from, mv.to)
		if err != nil {
			t.Fatalf("Command %s%s: %v", mv.from, mv.to, err)
		}
		last = sum
	}
	if !last.Check || !last.Checkmate {
		t.Errorf("final summary check=%v mate=%v, want both", last.Check, last.Checkmate)
	}
	if last.Outcome == nil || last.Outcome.Result != BlackWins || last.Outcome.Method != "checkmate" {
		t.Errorf("outcome = %+v, want black wins by checkmate", last.Outcome)
	}
	if pgn := e.PGN(); pgn != "1. f3 e5 2. g4 Qh4# 0-1" {
		t.Errorf("PGN = %q", pgn)
	}
}

func TestThreefoldRepetition(t *testing.T) {
	e := NewEngine()
	shuffle := []struct{ from, to board.Square }{
		{board.G1, board.F3}, {board.G8, board.F6},
		{board.F3, board.G1}, {board.F6, board.G8},
	}
	var last *MoveSummary
	for round := 0; round < 2; round++ {
		for _, mv := range shuffle {
			sum, err := e.Command(mv.from, mv.to)
			if err != nil {
				t.Fatalf("Command %s%s: %v", mv.from, mv.to, err)
			}
			last = sum
		}
	}
	if last.Outcome == nil || last.Outcome.Result != Draw || last.Outcome.Method != "threefold repetition" {
		t.Errorf("outcome = %+v, want threefold draw", last.Outcome)
	}
}

func TestStatus(t *testing.T) {
	cases := []struct {
		name   string
		fen    string
		result Result
		method string
	}{
		{"fresh game", board.StartFEN, Ongoing, ""},
		{"stalemate", "k7/8/1QK5/8/8/8/8/8 b - - 0 1", Draw, "stalemate"},
		{"bare kings", "4k3/8/8/8/8/8/8/4K3 w - - 0 1", Draw, "insufficient material"},
		{"fifty-move rule", "4k3/8/8/8/8/8/8/4KR2 w - - 100 60", Draw, "fifty-move rule"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := newEngineAt(t, tc.fen)
			out := e.Status()
			if out.Result != tc.result || out.Method != tc.method {
				t.Errorf("Status = %+v, want %v %q", out, tc.result, tc.method)
			}
		})
	}
}

func TestPGNContinuationNumbering(t *testing.T) {
	e := newEngineAt(t, "rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq e3 0 1")
	if _, err := e.Command(board.E7, board.E5); err != nil {
		t.Fatal(err)
	}
	if pgn := e.PGN(); pgn != "1... e5 *" {
		t.Errorf("PGN = %q, want %q", pgn, "1... e5 *")
	}
	if _, err := e.Command(board.G1, board.F3); err != nil {
		t.Fatal(err)
	}
	if pgn := e.PGN(); pgn != "1... e5 2. Nf3 *" {
		t.Errorf("PGN = %q, want %q", pgn, "1... e5 2. Nf3 *")
	}
}
