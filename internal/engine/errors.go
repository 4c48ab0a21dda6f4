package engine

import "errors"

// Rejection sentinels. Every rejection is recoverable: state is mutated
// only after full validation succeeds, so a rejected input leaves the
// engine exactly where it was.
var (
	// ErrIllegalMove covers wrong side to move, blocked paths,
	// self-check, violated castling preconditions, and undo on an
	// empty history.
	ErrIllegalMove = errors.New("illegal move")

	// ErrAmbiguousChange means the physical diff matches none of the
	// canonical footprints (relocation, capture, castle).
	ErrAmbiguousChange = errors.New("ambiguous board change")

	// ErrUnresolvedChange means the footprint was recognized but fits
	// zero legal moves, or more than one indistinguishably.
	ErrUnresolvedChange = errors.New("unresolved board change")

	// ErrPromotionPending rejects board mutation while a promotion
	// choice is outstanding.
	ErrPromotionPending = errors.New("promotion pending")

	// ErrUnknownPromotionPiece rejects a promotion choice naming a bad
	// piece kind or a square with no outstanding request.
	ErrUnknownPromotionPiece = errors.New("unknown promotion piece")
)
