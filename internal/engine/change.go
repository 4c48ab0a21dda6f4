package engine

import (
	"fmt"

	"github.com/boopdotpng/auto-chessboard/internal/board"
)

// A ChangeSet classifies every square touched during one physical event
// against the current position. The sensing plane reports occupancy
// only, never identity, so classification leans on which piece stood on
// each square before the event.
type ChangeSet struct {
	RemovedOwn   []board.Square // own piece lifted, square settled empty
	RemovedEnemy []board.Square // enemy piece lifted, square settled empty
	Added        []board.Square // was empty, settled occupied
	Replaced     []board.Square // was occupied, touched, settled occupied
}

// NewChangeSet classifies the squares in mask. state supplies the
// settled occupancy bit for each masked square; squares outside the
// mask are taken as unchanged. A masked square empty both before and
// after is slide-through noise and is dropped.
func NewChangeSet(mask, state board.Bitboard, pos *board.Position) ChangeSet {
	var cs ChangeSet
	us := pos.SideToMove
	for _, sq := range mask.Squares() {
		before := pos.AllOccupied.IsSet(sq)
		after := state.IsSet(sq)
		switch {
		case before && !after:
			if pos.Occupied[us].IsSet(sq) {
				cs.RemovedOwn = append(cs.RemovedOwn, sq)
			} else {
				cs.RemovedEnemy = append(cs.RemovedEnemy, sq)
			}
		case !before && after:
			cs.Added = append(cs.Added, sq)
		case before && after:
			cs.Replaced = append(cs.Replaced, sq)
		}
	}
	return cs
}

// RepresentsMove reports whether the side to move lifted a piece.
// Anything else, like the opponent straightening a piece, is not a move
// attempt.
func (cs *ChangeSet) RepresentsMove() bool {
	return len(cs.RemovedOwn) > 0
}

// A MoveIntent is an unvalidated hypothesis about what the player did,
// inferred from the physical footprint alone.
type MoveIntent struct {
	From    board.Square
	To      board.Square // NoSquare when the destination never surfaced
	Capture board.Square // en-passant victim square, or NoSquare
	Castle  bool
}

// Intent derives the move hypothesis from the classified footprint.
func (cs *ChangeSet) Intent(pos *board.Position) (MoveIntent, error) {
	if len(cs.RemovedOwn) == 2 && len(cs.Added) == 2 &&
		len(cs.RemovedEnemy) == 0 && len(cs.Replaced) == 0 {
		return cs.castleIntent(pos)
	}
	if len(cs.RemovedOwn) != 1 {
		return MoveIntent{}, fmt.Errorf("%w: %d own pieces lifted", ErrAmbiguousChange, len(cs.RemovedOwn))
	}
	if len(cs.RemovedEnemy) > 1 || len(cs.Replaced) > 1 {
		return MoveIntent{}, fmt.Errorf("%w: too many squares disturbed", ErrAmbiguousChange)
	}
	intent := MoveIntent{From: cs.RemovedOwn[0], To: board.NoSquare, Capture: board.NoSquare}
	switch {
	case len(cs.Added) == 1:
		// Plain relocation. A lifted enemy piece alongside it is an
		// en-passant victim; a replaced square is the opponent
		// adjusting a piece mid-event and carries no meaning.
		intent.To = cs.Added[0]
		if len(cs.RemovedEnemy) == 1 {
			intent.Capture = cs.RemovedEnemy[0]
		}
	case len(cs.Added) == 0 && len(cs.RemovedEnemy) == 0 && len(cs.Replaced) == 1:
		// Capture landing: the destination was lifted and refilled
		// within one event, so it settles occupied.
		intent.To = cs.Replaced[0]
	case len(cs.Added) == 0 && len(cs.RemovedEnemy) == 0 && len(cs.Replaced) == 0:
		// Capture whose victim never left the mat long enough to
		// register. The destination is unknown; resolution falls
		// entirely to the legal-move set.
	default:
		return MoveIntent{}, fmt.Errorf("%w: unrecognized footprint", ErrAmbiguousChange)
	}
	return intent, nil
}

// The four castling footprints: the king's journey plus the rook that
// rides along.
var castleFootprints = [4]struct {
	kingFrom, kingTo, rookFrom, rookTo board.Square
}{
	{board.E1, board.G1, board.H1, board.F1},
	{board.E1, board.C1, board.A1, board.D1},
	{board.E8, board.G8, board.H8, board.F8},
	{board.E8, board.C8, board.A8, board.D8},
}

func (cs *ChangeSet) castleIntent(pos *board.Position) (MoveIntent, error) {
	kings := pos.Pieces[pos.SideToMove][board.King]
	kingFrom, rookFrom := board.NoSquare, board.NoSquare
	for _, sq := range cs.RemovedOwn {
		if kings.IsSet(sq) {
			kingFrom = sq
		} else {
			rookFrom = sq
		}
	}
	for _, f := range castleFootprints {
		if kingFrom != f.kingFrom || rookFrom != f.rookFrom {
			continue
		}
		if cs.hasAdded(f.kingTo) && cs.hasAdded(f.rookTo) {
			return MoveIntent{From: f.kingFrom, To: f.kingTo, Capture: board.NoSquare, Castle: true}, nil
		}
	}
	return MoveIntent{}, fmt.Errorf("%w: four squares changed but not a castle", ErrAmbiguousChange)
}

func (cs *ChangeSet) hasAdded(sq board.Square) bool {
	for _, s := range cs.Added {
		if s == sq {
			return true
		}
	}
	return false
}

// resolveIntent matches an intent against the legal moves of pos. The
// footprint is accepted only when exactly one legal move fits it; the
// sole exception is the four promotion variants of one pawn journey,
// which collapse into a single incomplete move awaiting a piece choice.
func resolveIntent(pos *board.Position, intent MoveIntent) (board.Move, bool, error) {
	legal := pos.GenerateLegalMoves()
	var matches []board.Move
	for i := 0; i < legal.Len(); i++ {
		c := legal.Get(i)
		if c.From() != intent.From || c.IsCastling() != intent.Castle {
			continue
		}
		if intent.To != board.NoSquare && c.To() != intent.To {
			continue
		}
		if intent.To == board.NoSquare && (!c.IsCapture(pos) || c.IsEnPassant()) {
			// An unknown destination can only mean a plain capture; an
			// en-passant victim would have surfaced as a lifted enemy.
			continue
		}
		if intent.Capture != board.NoSquare {
			if !c.IsEnPassant() || enPassantVictim(c, pos.SideToMove) != intent.Capture {
				continue
			}
		} else if c.IsEnPassant() && intent.To != board.NoSquare {
			// En passant without its lifted victim leaves the settled
			// board inconsistent.
			continue
		}
		matches = append(matches, c)
	}

	switch len(matches) {
	case 0:
		return board.NoMove, false, fmt.Errorf("%w: no legal move fits the footprint", ErrUnresolvedChange)
	case 1:
		return matches[0], false, nil
	}
	first := matches[0]
	for _, c := range matches {
		if !c.IsPromotion() || c.From() != first.From() || c.To() != first.To() {
			return board.NoMove, false, fmt.Errorf("%w: %d legal moves fit the footprint", ErrUnresolvedChange, len(matches))
		}
	}
	return board.NewMove(first.From(), first.To()), true, nil
}

// enPassantVictim returns the square of the pawn removed by an
// en-passant capture played by us.
func enPassantVictim(m board.Move, us board.Color) board.Square {
	if us == board.White {
		return m.To() - 8
	}
	return m.To() + 8
}

// occupancyAfter returns the occupancy that applying m would produce,
// without touching pos.
func occupancyAfter(pos *board.Position, m board.Move) board.Bitboard {
	v := board.NewVBoard(pos)
	v.ApplyMove(m, pos.SideToMove)
	return v.AllOccupied
}
