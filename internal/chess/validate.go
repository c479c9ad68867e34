package chess

// MoveResult is the verdict of Validate.
type MoveResult uint8

const (
	Illegal MoveResult = iota
	Legal
	LegalWithPromotion
)

func (r MoveResult) String() string {
	switch r {
	case Legal:
		return "legal"
	case LegalWithPromotion:
		return "legal_with_promotion"
	default:
		return "illegal"
	}
}

// OK reports whether the move may be applied.
func (r MoveResult) OK() bool { return r != Illegal }

// Validator checks piece geometry against a board. The zero value follows the
// house rules: pawns only ever move by diagonal capture.
type Validator struct {
	// PawnPushes also allows straight pawn advances (one square, or two from
	// the starting row) into empty squares.
	PawnPushes bool
}

// Validate checks a move with the default Validator.
func Validate(b *Board, from, to Position) MoveResult {
	return Validator{}.Validate(b, from, to)
}

// Validate never mutates b.
func (v Validator) Validate(b *Board, from, to Position) MoveResult {
	if b == nil || !from.Valid() || !to.Valid() || from == to {
		return Illegal
	}
	mover := b.At(from)
	if mover.IsEmpty() {
		return Illegal
	}
	target := b.At(to)
	if target.Holds(mover.Color) {
		return Illegal
	}

	dr, dc := to.Row-from.Row, to.Col-from.Col
	ok := false
	switch mover.Kind {
	case Pawn:
		ok = v.pawnMove(b, mover.Color, from, to, target)
		if ok && to.Row == mover.Color.PromotionRow() {
			return LegalWithPromotion
		}
	case Knight:
		ok = (abs(dr) == 1 && abs(dc) == 2) || (abs(dr) == 2 && abs(dc) == 1)
	case Bishop:
		ok = diagonal(dr, dc) && pathClear(b, from, to)
	case Rook:
		ok = orthogonal(dr, dc) && pathClear(b, from, to)
	case Queen:
		ok = (diagonal(dr, dc) || orthogonal(dr, dc)) && pathClear(b, from, to)
	case King:
		ok = abs(dr) <= 1 && abs(dc) <= 1
	}
	if !ok {
		return Illegal
	}
	return Legal
}

func (v Validator) pawnMove(b *Board, c Color, from, to Position, target Square) bool {
	dr, dc := to.Row-from.Row, to.Col-from.Col
	fwd := c.Forward()

	// diagonal capture of an enemy piece
	if abs(dc) == 1 && dr == fwd {
		return target.Holds(c.Opposite())
	}
	if !v.PawnPushes || dc != 0 || !target.IsEmpty() {
		return false
	}
	if dr == fwd {
		return true
	}
	if dr == 2*fwd && from.Row == c.PawnRow() {
		return b.At(Pos(from.Row+fwd, from.Col)).IsEmpty()
	}
	return false
}

func diagonal(dr, dc int) bool   { return dr != 0 && abs(dr) == abs(dc) }
func orthogonal(dr, dc int) bool { return (dr == 0) != (dc == 0) }

// pathClear steps from one square past from up to (not including) to.
// The caller guarantees from and to share a line.
func pathClear(b *Board, from, to Position) bool {
	sr, sc := sign(to.Row-from.Row), sign(to.Col-from.Col)
	for p := Pos(from.Row+sr, from.Col+sc); p != to; p = Pos(p.Row+sr, p.Col+sc) {
		if !b.At(p).IsEmpty() {
			return false
		}
	}
	return true
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

func sign(n int) int {
	switch {
	case n > 0:
		return 1
	case n < 0:
		return -1
	default:
		return 0
	}
}
