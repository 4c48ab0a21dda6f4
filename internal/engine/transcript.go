package engine

import (
	"fmt"
	"strings"

	"github.com/boopdotpng/auto-chessboard/internal/board"
)

// PGN renders the session transcript as numbered SAN movetext ending
// with the result token. A game continued from a position with Black to
// move opens with a continuation number, e.g. "3... Nf6". A move still
// awaiting its promotion choice is left out until it completes.
func (e *Engine) PGN() string {
	sans := make([]string, 0, len(e.history))
	for i := range e.history {
		if e.history[i].san == "" {
			break
		}
		sans = append(sans, e.history[i].san)
	}
	return movetext(sans, e.startMove, e.startSide, e.Status().Result)
}

func movetext(sans []string, startMove int, startSide board.Color, result Result) string {
	var sb strings.Builder
	num := startMove
	side := startSide
	for i, san := range sans {
		if i > 0 {
			sb.WriteByte(' ')
		}
		if side == board.White {
			fmt.Fprintf(&sb, "%d. %s", num, san)
			side = board.Black
		} else {
			if i == 0 {
				fmt.Fprintf(&sb, "%d... %s", num, san)
			} else {
				sb.WriteString(san)
			}
			side = board.White
			num++
		}
	}
	if sb.Len() > 0 {
		sb.WriteByte(' ')
	}
	sb.WriteString(result.String())
	return sb.String()
}
