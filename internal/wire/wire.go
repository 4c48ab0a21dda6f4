// Package wire implements the ASCII frame grammar spoken over the phone
// link: one frame per message, a command word followed by its payload.
// Variable-length text rides behind a byte-count prefix so FEN lines
// and PGN bodies survive framing untouched.
package wire

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/boopdotpng/auto-chessboard/internal/board"
	"github.com/boopdotpng/auto-chessboard/internal/events"
)

// ErrBadFrame reports an unparseable frame. The transport logs and
// drops it; the core never sees the frame.
var ErrBadFrame = errors.New("bad frame")

// Decode parses one inbound frame into its event.
func Decode(line string) (events.Event, error) {
	line = strings.TrimRight(line, "\r\n")
	cmd, rest, _ := strings.Cut(line, " ")
	switch cmd {
	case "REQ_BOARD":
		if rest != "" {
			return nil, fmt.Errorf("%w: REQ_BOARD takes no payload", ErrBadFrame)
		}
		return events.RequestBoardPosition{}, nil
	case "REQ_PGN":
		if rest != "" {
			return nil, fmt.Errorf("%w: REQ_PGN takes no payload", ErrBadFrame)
		}
		return events.RequestPgn{}, nil
	case "UNDO":
		if rest != "" {
			return nil, fmt.Errorf("%w: UNDO takes no payload", ErrBadFrame)
		}
		return events.UndoLastMove{}, nil
	case "MOVE":
		parts := strings.Fields(rest)
		if len(parts) != 2 {
			return nil, fmt.Errorf("%w: MOVE wants two squares", ErrBadFrame)
		}
		from, err := parseSquareIndex(parts[0])
		if err != nil {
			return nil, err
		}
		to, err := parseSquareIndex(parts[1])
		if err != nil {
			return nil, err
		}
		return events.MovePiece{From: from, To: to}, nil
	case "PROMOTE":
		parts := strings.Fields(rest)
		if len(parts) != 2 {
			return nil, fmt.Errorf("%w: PROMOTE wants a piece and a square", ErrBadFrame)
		}
		pt, ok := promotionPiece(parts[0])
		if !ok {
			return nil, fmt.Errorf("%w: piece %q", ErrBadFrame, parts[0])
		}
		sq, err := parseSquareIndex(parts[1])
		if err != nil {
			return nil, err
		}
		return events.Promotion{Piece: pt, Square: sq}, nil
	case "SET_BOARD":
		fen, err := parseCounted(rest)
		if err != nil {
			return nil, err
		}
		return events.SetBoardPosition{FEN: fen}, nil
	}
	return nil, fmt.Errorf("%w: unknown command %q", ErrBadFrame, cmd)
}

// Encode renders an outbound event as a frame. The second return is
// false for events that never leave the process.
func Encode(ev events.Event) (string, bool) {
	switch e := ev.(type) {
	case events.BoardPositionUpdated:
		return "BOARD " + counted(e.FEN), true
	case events.SendPgn:
		return "PGN " + counted(e.PGN), true
	case events.MoveApplied:
		return "MOVED " + counted(e.Summary.SAN), true
	case events.PromotionPrompt:
		return fmt.Sprintf("PROMOTING %d", e.Request.Square), true
	case events.InvalidMove:
		return "INVALID " + counted(e.Reason), true
	case events.GameEnded:
		return "RESULT " + counted(fmt.Sprintf("%s %s", e.Outcome.Result, e.Outcome.Method)), true
	}
	return "", false
}

// Squares travel as decimal indices 0-63 to keep the firmware parser
// trivial.
func parseSquareIndex(s string) (board.Square, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 || n > 63 {
		return board.NoSquare, fmt.Errorf("%w: square %q", ErrBadFrame, s)
	}
	return board.Square(n), nil
}

func promotionPiece(s string) (board.PieceType, bool) {
	if len(s) != 1 {
		return board.NoPieceType, false
	}
	switch s[0] {
	case 'N':
		return board.Knight, true
	case 'B':
		return board.Bishop, true
	case 'R':
		return board.Rook, true
	case 'Q':
		return board.Queen, true
	}
	return board.NoPieceType, false
}

// parseCounted reads a "<len>:<payload>" field, verifying the count.
func parseCounted(s string) (string, error) {
	lenStr, payload, ok := strings.Cut(s, ":")
	if !ok {
		return "", fmt.Errorf("%w: missing length prefix", ErrBadFrame)
	}
	n, err := strconv.Atoi(lenStr)
	if err != nil || n < 0 {
		return "", fmt.Errorf("%w: length %q", ErrBadFrame, lenStr)
	}
	if len(payload) != n {
		return "", fmt.Errorf("%w: length %d does not match %d payload bytes", ErrBadFrame, n, len(payload))
	}
	return payload, nil
}

func counted(s string) string {
	return fmt.Sprintf("%d:%s", len(s), s)
}
