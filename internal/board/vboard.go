package board

// VBoard is a scratch board used to answer "would this move leave the
// king in check". It carries only what attack detection needs, so a
// candidate move can be played out on a stack copy without touching
// hashes, clocks, or castling state.
type VBoard struct {
	Pieces      [2][6]Bitboard
	Occupied    [2]Bitboard
	AllOccupied Bitboard
	KingSquare  [2]Square
}

// NewVBoard copies the occupancy state out of a Position.
func NewVBoard(p *Position) VBoard {
	return VBoard{
		Pieces:      p.Pieces,
		Occupied:    p.Occupied,
		AllOccupied: p.AllOccupied,
		KingSquare:  p.KingSquare,
	}
}

// ApplyMove plays a move for the given side. No validation and no
// bookkeeping beyond occupancy; the caller supplies a pseudo-legal move.
func (v *VBoard) ApplyMove(m Move, us Color) {
	them := us.Other()
	from, to := m.From(), m.To()
	fromBB, toBB := SquareBB(from), SquareBB(to)

	var pt PieceType
	for t := Pawn; t <= King; t++ {
		if v.Pieces[us][t]&fromBB != 0 {
			pt = t
			break
		}
	}

	// Remove a captured piece, including the pawn taken en passant,
	// which sits behind the destination square.
	capBB := toBB
	if m.IsEnPassant() {
		if us == White {
			capBB = SquareBB(to - 8)
		} else {
			capBB = SquareBB(to + 8)
		}
	}
	for t := Pawn; t <= Queen; t++ {
		if v.Pieces[them][t]&capBB != 0 {
			v.Pieces[them][t] &^= capBB
			v.Occupied[them] &^= capBB
			break
		}
	}

	moveBB := fromBB | toBB
	v.Pieces[us][pt] ^= moveBB
	v.Occupied[us] ^= moveBB
	if pt == King {
		v.KingSquare[us] = to
	}

	if m.IsPromotion() {
		v.Pieces[us][Pawn] &^= toBB
		v.Pieces[us][m.Promotion()] |= toBB
	}

	if m.IsCastling() {
		var rookBB Bitboard
		if to > from {
			rookBB = SquareBB(from+3) | SquareBB(from+1)
		} else {
			rookBB = SquareBB(from-4) | SquareBB(from-1)
		}
		v.Pieces[us][Rook] ^= rookBB
		v.Occupied[us] ^= rookBB
	}

	v.AllOccupied = v.Occupied[White] | v.Occupied[Black]
}

// IsKingAttacked reports whether the king on kingSq is attacked by
// byColor.
func (v *VBoard) IsKingAttacked(kingSq Square, byColor Color) bool {
	us := byColor.Other()

	if pawnAttacks[us][kingSq]&v.Pieces[byColor][Pawn] != 0 {
		return true
	}
	if knightAttacks[kingSq]&v.Pieces[byColor][Knight] != 0 {
		return true
	}
	if kingAttacks[kingSq]&v.Pieces[byColor][King] != 0 {
		return true
	}
	if BishopAttacks(kingSq, v.AllOccupied)&(v.Pieces[byColor][Bishop]|v.Pieces[byColor][Queen]) != 0 {
		return true
	}
	if RookAttacks(kingSq, v.AllOccupied)&(v.Pieces[byColor][Rook]|v.Pieces[byColor][Queen]) != 0 {
		return true
	}
	return false
}
