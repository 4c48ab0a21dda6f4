// Package engine arbitrates chess state for the physical board. It owns
// one position and its move history, turns sensed occupancy changes and
// link commands into validated moves, suspends on ambiguous promotions,
// and reports every accepted or rejected transition. It is a rules and
// state arbiter, not an opponent.
package engine

import (
	"fmt"

	"github.com/boopdotpng/auto-chessboard/internal/board"
)

// A MoveSummary reports one accepted transition.
type MoveSummary struct {
	Move      board.Move
	SAN       string
	FEN       string
	Check     bool
	Checkmate bool
	Pending   *PromotionRequest // set while the move awaits a piece choice
	Outcome   *Outcome          // set when the move decided the game
}

// Result is the game result from White's point of view.
type Result int

const (
	Ongoing Result = iota
	WhiteWins
	BlackWins
	Draw
)

// String returns the PGN result token.
func (r Result) String() string {
	switch r {
	case WhiteWins:
		return "1-0"
	case BlackWins:
		return "0-1"
	case Draw:
		return "1/2-1/2"
	}
	return "*"
}

// An Outcome is a decided game.
type Outcome struct {
	Result Result
	Method string
}

// played is one accepted move with everything needed to report and
// reverse it.
type played struct {
	move board.Move
	undo board.Undo
	san  string
}

// Engine is the state arbiter. All methods are synchronous; the caller
// is expected to serialize access (the event bus delivers one event at
// a time).
type Engine struct {
	pos     *board.Position
	tracker PromotionTracker
	history []played

	startSide board.Color
	startMove int
}

// NewEngine returns an engine at the standard starting position.
func NewEngine() *Engine {
	e := &Engine{pos: board.NewPosition()}
	e.rebase()
	return e
}

func (e *Engine) rebase() {
	e.history = e.history[:0]
	e.tracker.clear()
	e.startSide = e.pos.SideToMove
	e.startMove = e.pos.FullMoveNumber
}

// SetPosition replaces the whole state from a FEN line, discarding the
// history and any pending promotion. On a parse failure the current
// state is untouched.
func (e *Engine) SetPosition(fen string) error {
	pos, err := board.ParseFEN(fen)
	if err != nil {
		return err
	}
	e.pos = pos
	e.rebase()
	return nil
}

// Observe interprets a settled occupancy event from the sensing plane.
// mask holds every square that changed at any point during the event;
// state holds the settled occupancy of those squares. Returns (nil,
// nil) when the event amounts to no move attempt at all.
func (e *Engine) Observe(mask, state board.Bitboard) (*MoveSummary, error) {
	if e.tracker.Waiting() {
		return nil, fmt.Errorf("%w: choose a piece for %s first", ErrPromotionPending, e.tracker.square)
	}
	settled := (e.pos.AllOccupied &^ mask) | (state & mask)
	if settled == e.pos.AllOccupied {
		return nil, nil
	}
	cs := NewChangeSet(mask, state, e.pos)
	if !cs.RepresentsMove() {
		return nil, nil
	}
	intent, err := cs.Intent(e.pos)
	if err != nil {
		return nil, err
	}
	m, incomplete, err := resolveIntent(e.pos, intent)
	if err != nil {
		return nil, err
	}
	if occupancyAfter(e.pos, m) != settled {
		return nil, fmt.Errorf("%w: settled board does not match %s", ErrUnresolvedChange, m)
	}
	if incomplete {
		return e.beginPromotion(m), nil
	}
	return e.apply(m), nil
}

// Command validates and applies a move given only its endpoints, the
// way the phone link issues moves. Castling is commanded by the king's
// two-square journey; a promotion command suspends awaiting the piece
// choice like a sensed promotion does.
func (e *Engine) Command(from, to board.Square) (*MoveSummary, error) {
	if e.tracker.Waiting() {
		return nil, fmt.Errorf("%w: choose a piece for %s first", ErrPromotionPending, e.tracker.square)
	}
	legal := e.pos.GenerateLegalMoves()
	var matches []board.Move
	for i := 0; i < legal.Len(); i++ {
		m := legal.Get(i)
		if m.From() == from && m.To() == to {
			matches = append(matches, m)
		}
	}
	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("%w: %s%s", ErrIllegalMove, from, to)
	case 1:
		return e.apply(matches[0]), nil
	default:
		// Only the four promotion variants share endpoints.
		return e.beginPromotion(board.NewMove(from, to)), nil
	}
}

// ConfirmPromotion resolves the outstanding promotion request with a
// piece choice, rewrites the pawn in place, and finalizes the suspended
// move.
func (e *Engine) ConfirmPromotion(pt board.PieceType, sq board.Square) (*MoveSummary, error) {
	req := e.tracker.Request()
	if req == nil || req.Square != sq {
		return nil, fmt.Errorf("%w: no promotion outstanding on %s", ErrUnknownPromotionPiece, sq)
	}
	if pt < board.Knight || pt > board.Queen {
		return nil, fmt.Errorf("%w: %s", ErrUnknownPromotionPiece, pt)
	}
	e.pos.PromotePawn(sq, pt)
	m := board.NewPromotion(e.tracker.from, sq, pt)
	san := m.ToSAN(&e.tracker.prev)
	last := &e.history[len(e.history)-1]
	last.move = m
	last.san = san
	e.tracker.clear()
	return e.summarize(m, san), nil
}

// Undo reverses the most recent accepted move and returns the restored
// position's FEN.
func (e *Engine) Undo() (string, error) {
	if e.tracker.Waiting() {
		return "", fmt.Errorf("%w: choose a piece for %s first", ErrPromotionPending, e.tracker.square)
	}
	if len(e.history) == 0 {
		return "", fmt.Errorf("%w: nothing to undo", ErrIllegalMove)
	}
	last := e.history[len(e.history)-1]
	e.history = e.history[:len(e.history)-1]
	e.pos.UnmakeMove(last.move, last.undo)
	return e.pos.ToFEN(), nil
}

func (e *Engine) apply(m board.Move) *MoveSummary {
	san := m.ToSAN(e.pos)
	undo := e.pos.MakeMove(m)
	e.history = append(e.history, played{move: m, undo: undo, san: san})
	return e.summarize(m, san)
}

// beginPromotion applies the pawn advance with no piece chosen yet and
// engages the tracker. The history entry is rewritten once the choice
// arrives.
func (e *Engine) beginPromotion(m board.Move) *MoveSummary {
	prev := *e.pos
	undo := e.pos.MakeMove(m)
	e.history = append(e.history, played{move: m, undo: undo})
	e.tracker.begin(m.From(), m.To(), prev)
	return &MoveSummary{Move: m, FEN: e.pos.ToFEN(), Pending: e.tracker.Request()}
}

func (e *Engine) summarize(m board.Move, san string) *MoveSummary {
	s := &MoveSummary{
		Move:      m,
		SAN:       san,
		FEN:       e.pos.ToFEN(),
		Check:     e.pos.InCheck(),
		Checkmate: e.pos.IsCheckmate(),
	}
	if out := e.Status(); out.Result != Ongoing {
		s.Outcome = &out
	}
	return s
}

// Status reports the game outcome at the current position. While a
// promotion is outstanding the game is never decided.
func (e *Engine) Status() Outcome {
	if e.tracker.Waiting() {
		return Outcome{}
	}
	if e.pos.IsCheckmate() {
		if e.pos.SideToMove == board.White {
			return Outcome{Result: BlackWins, Method: "checkmate"}
		}
		return Outcome{Result: WhiteWins, Method: "checkmate"}
	}
	if e.pos.IsStalemate() {
		return Outcome{Result: Draw, Method: "stalemate"}
	}
	if e.pos.IsInsufficientMaterial() {
		return Outcome{Result: Draw, Method: "insufficient material"}
	}
	if e.pos.HalfMoveClock >= 100 {
		return Outcome{Result: Draw, Method: "fifty-move rule"}
	}
	if e.repetitions() >= 3 {
		return Outcome{Result: Draw, Method: "threefold repetition"}
	}
	return Outcome{}
}

// repetitions counts how often the current position has occurred,
// counting right now.
func (e *Engine) repetitions() int {
	n := 1
	for i := range e.history {
		if e.history[i].undo.Hash == e.pos.Hash {
			n++
		}
	}
	return n
}

// FEN returns the current position as a FEN line.
func (e *Engine) FEN() string { return e.pos.ToFEN() }

// Occupancy returns the set of squares a perfect sensing plane would
// report occupied.
func (e *Engine) Occupancy() board.Bitboard { return e.pos.AllOccupied }

// PieceAt returns the piece standing on sq, for rendering.
func (e *Engine) PieceAt(sq board.Square) board.Piece { return e.pos.PieceAt(sq) }

// SideToMove returns whose turn it is.
func (e *Engine) SideToMove() board.Color { return e.pos.SideToMove }

// PendingPromotion returns the outstanding promotion request, if any.
func (e *Engine) PendingPromotion() *PromotionRequest { return e.tracker.Request() }

// MoveCount returns the number of accepted moves since the last reset.
func (e *Engine) MoveCount() int { return len(e.history) }
