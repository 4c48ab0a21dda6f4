package board

import (
	"errors"
	"testing"
)

func TestParseFENStartingPosition(t *testing.T) {
	pos, err := ParseFEN(StartFEN)
	if err != nil {
		t.Fatalf("parse FEN: %v", err)
	}

	if pos.SideToMove != White {
		t.Errorf("side to move = %v, want White", pos.SideToMove)
	}
	if pos.CastlingRights != AllCastling {
		t.Errorf("castling rights = %v, want KQkq", pos.CastlingRights)
	}
	if pos.EnPassant != NoSquare {
		t.Errorf("en passant = %v, want none", pos.EnPassant)
	}
	if pos.HalfMoveClock != 0 || pos.FullMoveNumber != 1 {
		t.Errorf("clocks = %d/%d, want 0/1", pos.HalfMoveClock, pos.FullMoveNumber)
	}
	if pos.PieceAt(E1) != WhiteKing || pos.PieceAt(E8) != BlackKing {
		t.Error("kings not on e1/e8")
	}
	if pos.AllOccupied.PopCount() != 32 {
		t.Errorf("occupied squares = %d, want 32", pos.AllOccupied.PopCount())
	}
	if pos.Hash != pos.ComputeHash() {
		t.Error("hash not initialized from scratch computation")
	}
}

func TestFENRoundTrip(t *testing.T) {
	fens := []string{
		StartFEN,
		"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1",
		"rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq e3 0 1",
		"8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 4 20",
		"8/8/8/8/k2Pp2R/8/8/4K3 b - d3 0 1",
		"4k3/8/8/8/8/8/8/4K3 w - - 99 120",
	}

	for _, fen := range fens {
		pos, err := ParseFEN(fen)
		if err != nil {
			t.Errorf("parse FEN %q: %v", fen, err)
			continue
		}
		if got := pos.ToFEN(); got != fen {
			t.Errorf("round trip of %q produced %q", fen, got)
		}
	}
}

func TestParseFENRejectsMalformed(t *testing.T) {
	fens := []string{
		"",
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR",             // placement only
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq -",    // five fields
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP w KQkq - 0 1",         // seven ranks
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNM w KQkq - 0 1", // bad piece
		"rnbqkbnr/pppppppp/9/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1", // rank too long
		"rnbqkbnr/pppppppp/7/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1", // rank too short
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR x KQkq - 0 1", // bad side
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KXkq - 0 1", // bad castling
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq e9 0 1", // bad square
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq e3 0 1", // ep target on mover's own side
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - -1 1", // negative clock
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 0",  // fullmove below 1
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQ1BNR w KQkq - 0 1",  // missing white king
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBKR w KQkq - 0 1",  // two white kings
		"Pnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1",  // pawn on rank 8
	}

	for _, fen := range fens {
		if _, err := ParseFEN(fen); err == nil {
			t.Errorf("ParseFEN(%q) accepted malformed input", fen)
		} else if !errors.Is(err, ErrInvalidFEN) {
			t.Errorf("ParseFEN(%q) error %v does not wrap ErrInvalidFEN", fen, err)
		}
	}
}

func TestParseFENRejectsImpossibleCheck(t *testing.T) {
	// White queen already attacks the black king, yet white is on move.
	_, err := ParseFEN("4kQ2/8/8/8/8/8/8/4K3 w - - 0 1")
	if err == nil {
		t.Fatal("expected rejection of position with side not to move in check")
	}
	if !errors.Is(err, ErrInvalidFEN) {
		t.Errorf("error %v does not wrap ErrInvalidFEN", err)
	}
}
