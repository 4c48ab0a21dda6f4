package board

import (
	"fmt"
	"strings"
)

// ToSAN converts a move to Standard Algebraic Notation for the position
// it is about to be played in, including "+" and "#" markers.
func (m Move) ToSAN(pos *Position) string {
	if m == NoMove {
		return "-"
	}

	from := m.From()
	to := m.To()
	piece := pos.PieceAt(from)
	if piece == NoPiece {
		return m.String()
	}

	var sb strings.Builder

	if m.IsCastling() {
		if to > from {
			sb.WriteString("O-O")
		} else {
			sb.WriteString("O-O-O")
		}
	} else {
		pt := piece.Type()
		if pt != Pawn {
			sb.WriteByte(pt.Letter())
			sb.WriteString(disambiguation(pos, m, pt))
		}
		if m.IsCapture(pos) {
			if pt == Pawn {
				sb.WriteByte(byte('a' + from.File()))
			}
			sb.WriteByte('x')
		}
		sb.WriteString(to.String())
		if m.IsPromotion() {
			sb.WriteByte('=')
			sb.WriteByte(m.Promotion().Letter())
		}
	}

	// Play the move out to classify check and mate.
	newPos := pos.Copy()
	newPos.MakeMove(m)
	if newPos.IsCheckmate() {
		sb.WriteByte('#')
	} else if newPos.InCheck() {
		sb.WriteByte('+')
	}

	return sb.String()
}

// disambiguation returns the qualifier needed when another piece of the
// same type can reach the same destination: file if that settles it,
// otherwise rank, otherwise both.
func disambiguation(pos *Position, m Move, pt PieceType) string {
	from := m.From()
	to := m.To()
	pieces := pos.Pieces[pos.SideToMove][pt]

	var candidates []Square
	for _, other := range pos.GenerateLegalMoves().Slice() {
		if other.To() != to || other.From() == from {
			continue
		}
		if pieces.IsSet(other.From()) {
			candidates = append(candidates, other.From())
		}
	}
	if len(candidates) == 0 {
		return ""
	}

	sameFile, sameRank := false, false
	for _, sq := range candidates {
		if sq.File() == from.File() {
			sameFile = true
		}
		if sq.Rank() == from.Rank() {
			sameRank = true
		}
	}
	if !sameFile {
		return string(byte('a' + from.File()))
	}
	if !sameRank {
		return string(byte('1' + from.Rank()))
	}
	return from.String()
}

// ParseSAN parses a SAN token against the position and returns the
// matching legal move.
func ParseSAN(s string, pos *Position) (Move, error) {
	token := strings.TrimSpace(s)
	token = strings.TrimSuffix(token, "+")
	token = strings.TrimSuffix(token, "#")

	if token == "O-O" || token == "0-0" {
		if pos.SideToMove == White {
			return matchLegal(pos, NewCastling(E1, G1), s)
		}
		return matchLegal(pos, NewCastling(E8, G8), s)
	}
	if token == "O-O-O" || token == "0-0-0" {
		if pos.SideToMove == White {
			return matchLegal(pos, NewCastling(E1, C1), s)
		}
		return matchLegal(pos, NewCastling(E8, C8), s)
	}

	promo := NoPieceType
	if idx := strings.IndexByte(token, '='); idx >= 0 && idx+1 < len(token) {
		promo = PieceTypeFromLetter(token[idx+1])
		if promo == NoPieceType || promo == Pawn || promo == King {
			return NoMove, fmt.Errorf("bad promotion in SAN %q", s)
		}
		token = token[:idx]
	}

	isCapture := strings.ContainsRune(token, 'x')
	token = strings.ReplaceAll(token, "x", "")

	pt := Pawn
	if len(token) > 0 && token[0] >= 'A' && token[0] <= 'Z' {
		pt = PieceTypeFromLetter(token[0])
		if pt == NoPieceType {
			return NoMove, fmt.Errorf("bad piece in SAN %q", s)
		}
		token = token[1:]
	}

	if len(token) < 2 {
		return NoMove, fmt.Errorf("cannot parse SAN %q", s)
	}
	dest, err := ParseSquare(token[len(token)-2:])
	if err != nil {
		return NoMove, fmt.Errorf("cannot parse SAN %q", s)
	}
	token = token[:len(token)-2]

	disambigFile, disambigRank := -1, -1
	for _, c := range token {
		switch {
		case c >= 'a' && c <= 'h':
			disambigFile = int(c - 'a')
		case c >= '1' && c <= '8':
			disambigRank = int(c - '1')
		default:
			return NoMove, fmt.Errorf("cannot parse SAN %q", s)
		}
	}

	for _, m := range pos.GenerateLegalMoves().Slice() {
		if m.To() != dest {
			continue
		}
		from := m.From()
		if pos.PieceAt(from).Type() != pt {
			continue
		}
		if disambigFile >= 0 && from.File() != disambigFile {
			continue
		}
		if disambigRank >= 0 && from.Rank() != disambigRank {
			continue
		}
		if isCapture && !m.IsCapture(pos) {
			continue
		}
		if promo != NoPieceType && (!m.IsPromotion() || m.Promotion() != promo) {
			continue
		}
		if promo == NoPieceType && m.IsPromotion() {
			continue
		}
		return m, nil
	}
	return NoMove, fmt.Errorf("no legal move matches SAN %q", s)
}

// matchLegal confirms a constructed move is actually legal here.
func matchLegal(pos *Position, m Move, san string) (Move, error) {
	if pos.GenerateLegalMoves().Contains(m) {
		return m, nil
	}
	return NoMove, fmt.Errorf("no legal move matches SAN %q", san)
}

// MovesToSAN renders a move sequence from the given position as SAN.
func MovesToSAN(pos *Position, moves []Move) []string {
	result := make([]string, len(moves))
	p := pos.Copy()
	for i, m := range moves {
		result[i] = m.ToSAN(p)
		p.MakeMove(m)
	}
	return result
}
