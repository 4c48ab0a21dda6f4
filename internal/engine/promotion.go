package engine

import "github.com/boopdotpng/auto-chessboard/internal/board"

// A PromotionRequest identifies the pawn awaiting its piece choice.
type PromotionRequest struct {
	Square board.Square
	Color  board.Color
}

// PromotionTracker gates move acceptance while a promotion choice is
// outstanding. The pawn advance itself is already on the board when the
// tracker engages, exactly as it is physically; the choice later
// rewrites the pawn in place. At most one request exists at a time,
// because the tracker blocks every further mutation until it resolves.
type PromotionTracker struct {
	waiting bool
	square  board.Square
	color   board.Color
	from    board.Square
	prev    board.Position // position before the advance, for the final SAN
}

// Waiting reports whether a promotion choice is outstanding.
func (t *PromotionTracker) Waiting() bool { return t.waiting }

// Request returns the outstanding request, or nil when idle.
func (t *PromotionTracker) Request() *PromotionRequest {
	if !t.waiting {
		return nil
	}
	return &PromotionRequest{Square: t.square, Color: t.color}
}

func (t *PromotionTracker) begin(from, to board.Square, prev board.Position) {
	t.waiting = true
	t.square = to
	t.color = prev.SideToMove
	t.from = from
	t.prev = prev
}

func (t *PromotionTracker) clear() {
	*t = PromotionTracker{}
}
