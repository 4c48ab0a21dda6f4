// Package events is the dispatch fabric between the sensing plane, the
// transports, and the game controller. A single Bus goroutine delivers
// one event at a time in publish order, so the core never needs
// internal locking.
package events

import (
	"github.com/boopdotpng/auto-chessboard/internal/board"
	"github.com/boopdotpng/auto-chessboard/internal/engine"
)

// Event is the closed set of messages crossing module boundaries.
type Event interface{ isEvent() }

// SetBoardPosition replaces the whole game state from a FEN line.
type SetBoardPosition struct{ FEN string }

// MovePiece is a direct move command from the link, given by endpoints.
type MovePiece struct{ From, To board.Square }

// BoardChange is a settled occupancy event from the sensing plane.
type BoardChange struct {
	Mask  board.Bitboard // every square that changed during the event
	State board.Bitboard // settled occupancy
}

// Promotion resolves a pending promotion with a piece choice.
type Promotion struct {
	Piece  board.PieceType
	Square board.Square
}

// UndoLastMove rolls back the most recent accepted move.
type UndoLastMove struct{}

// RequestBoardPosition asks for the current FEN.
type RequestBoardPosition struct{}

// RequestPgn asks for the session transcript.
type RequestPgn struct{}

// BoardPositionUpdated reports the position after a state change.
type BoardPositionUpdated struct{ FEN string }

// SendPgn carries the transcript out to the link.
type SendPgn struct{ PGN string }

// MoveApplied reports one accepted move.
type MoveApplied struct{ Summary engine.MoveSummary }

// PromotionPrompt asks the player to choose a piece.
type PromotionPrompt struct{ Request engine.PromotionRequest }

// InvalidMove reports a rejected input.
type InvalidMove struct{ Reason string }

// GameEnded reports a decided game with its final record.
type GameEnded struct {
	Outcome engine.Outcome
	FEN     string
	PGN     string
}

func (SetBoardPosition) isEvent()     {}
func (MovePiece) isEvent()            {}
func (BoardChange) isEvent()          {}
func (Promotion) isEvent()            {}
func (UndoLastMove) isEvent()         {}
func (RequestBoardPosition) isEvent() {}
func (RequestPgn) isEvent()           {}

func (BoardPositionUpdated) isEvent() {}
func (SendPgn) isEvent()              {}
func (MoveApplied) isEvent()          {}
func (PromotionPrompt) isEvent()      {}
func (InvalidMove) isEvent()          {}
func (GameEnded) isEvent()            {}
