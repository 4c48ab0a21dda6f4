// Package sense turns raw occupancy samples into settled board-change
// events, mirroring the firmware's debounce: any flicker opens an event
// and restarts its settle window, and the event closes once the board
// holds still for the full window, carrying every square that changed
// along the way. That grouping is what lets a capture's two motions or
// a castle's four arrive as one event.
package sense

import (
	"time"

	"github.com/boopdotpng/auto-chessboard/internal/board"
	"github.com/boopdotpng/auto-chessboard/internal/events"
)

// DefaultSettle is how long the board must hold still before an open
// event closes.
const DefaultSettle = time.Second

// Debouncer accumulates occupancy flicker into one settled event. It
// keeps no clock of its own: the caller stamps every sample, so tests
// drive it with a fake clock.
type Debouncer struct {
	settle  time.Duration
	last    board.Bitboard
	mask    board.Bitboard
	open    bool
	changed time.Time
}

// NewDebouncer returns a debouncer based at the given occupancy.
// settle <= 0 falls back to DefaultSettle.
func NewDebouncer(settle time.Duration, initial board.Bitboard) *Debouncer {
	if settle <= 0 {
		settle = DefaultSettle
	}
	return &Debouncer{settle: settle, last: initial}
}

// Reset re-bases on a known occupancy and discards any open event.
// Called after a position reset or an undo so stale flicker does not
// leak into the next event.
func (d *Debouncer) Reset(state board.Bitboard) {
	d.last = state
	d.mask = 0
	d.open = false
}

// Pending returns the accumulated mask of the open event, for display.
func (d *Debouncer) Pending() board.Bitboard {
	return d.mask
}

// Sample feeds one occupancy reading. When the reading closes an event,
// Sample returns it with ok true.
func (d *Debouncer) Sample(state board.Bitboard, now time.Time) (events.BoardChange, bool) {
	if diff := state ^ d.last; diff != 0 {
		d.mask |= diff
		d.last = state
		d.open = true
		d.changed = now
		return events.BoardChange{}, false
	}
	if d.open && now.Sub(d.changed) >= d.settle {
		ev := events.BoardChange{Mask: d.mask, State: state}
		d.mask = 0
		d.open = false
		return ev, true
	}
	return events.BoardChange{}, false
}
