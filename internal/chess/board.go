package chess

import "fmt"

// BoardSize is the number of rows and columns on the board.
const BoardSize = 8

// Color identifies a side.
type Color uint8

const (
	White Color = iota
	Black
)

func (c Color) String() string {
	switch c {
	case White:
		return "white"
	case Black:
		return "black"
	default:
		return fmt.Sprintf("color(%d)", uint8(c))
	}
}

// Opposite returns the other side.
func (c Color) Opposite() Color {
	if c == White {
		return Black
	}
	return White
}

// Forward is the row delta a pawn of this color advances by.
// White starts on rows 6-7 and moves toward row 0.
func (c Color) Forward() int {
	if c == White {
		return -1
	}
	return 1
}

// PromotionRow is the farthest row for the side's pawns.
func (c Color) PromotionRow() int {
	if c == White {
		return 0
	}
	return BoardSize - 1
}

// PawnRow is the row the side's pawns start on.
func (c Color) PawnRow() int {
	if c == White {
		return BoardSize - 2
	}
	return 1
}

// PieceKind is the kind of piece on a square. NoPiece marks an empty square.
type PieceKind uint8

const (
	NoPiece PieceKind = iota
	Pawn
	Knight
	Bishop
	Rook
	Queen
	King
)

func (k PieceKind) String() string {
	switch k {
	case Pawn:
		return "pawn"
	case Knight:
		return "knight"
	case Bishop:
		return "bishop"
	case Rook:
		return "rook"
	case Queen:
		return "queen"
	case King:
		return "king"
	default:
		return ""
	}
}

// ParsePieceKind accepts the lowercase names produced by String.
func ParsePieceKind(s string) (PieceKind, bool) {
	for k := Pawn; k <= King; k++ {
		if k.String() == s {
			return k, true
		}
	}
	return NoPiece, false
}

// Square is either empty or holds one piece. The zero value is empty.
type Square struct {
	Color Color
	Kind  PieceKind
}

// Empty is the empty square.
var Empty = Square{}

// Occupied builds a square holding a piece of the given color and kind.
func Occupied(c Color, k PieceKind) Square {
	return Square{Color: c, Kind: k}
}

func (s Square) IsEmpty() bool { return s.Kind == NoPiece }

// Holds reports whether the square has a piece of color c.
func (s Square) Holds(c Color) bool { return !s.IsEmpty() && s.Color == c }

func (s Square) String() string {
	if s.IsEmpty() {
		return "empty"
	}
	return s.Color.String() + " " + s.Kind.String()
}

// Position addresses a square by row and column, both in [0, BoardSize).
type Position struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// Pos is shorthand for Position{Row: row, Col: col}.
func Pos(row, col int) Position { return Position{Row: row, Col: col} }

func (p Position) Valid() bool {
	return p.Row >= 0 && p.Row < BoardSize && p.Col >= 0 && p.Col < BoardSize
}

func (p Position) String() string { return fmt.Sprintf("(%d,%d)", p.Row, p.Col) }

// Board is the 8x8 grid. It never validates itself; Session enforces move invariants.
type Board struct {
	squares [BoardSize][BoardSize]Square
}

var backRank = [BoardSize]PieceKind{Rook, Knight, Bishop, Queen, King, Bishop, Knight, Rook}

// Initial returns the starting layout: Black on rows 0-1, White on rows 6-7.
func Initial() Board {
	var b Board
	for col := 0; col < BoardSize; col++ {
		b.squares[0][col] = Occupied(Black, backRank[col])
		b.squares[1][col] = Occupied(Black, Pawn)
		b.squares[6][col] = Occupied(White, Pawn)
		b.squares[7][col] = Occupied(White, backRank[col])
	}
	return b
}

// At returns the square at p. Out-of-range positions panic.
func (b *Board) At(p Position) Square {
	mustBeOnBoard(p)
	return b.squares[p.Row][p.Col]
}

// Set overwrites the square at p. Out-of-range positions panic.
func (b *Board) Set(p Position, s Square) {
	mustBeOnBoard(p)
	b.squares[p.Row][p.Col] = s
}

// Reset restores the starting layout in place.
func (b *Board) Reset() {
	*b = Initial()
}

// Count returns the number of pieces of color c.
func (b *Board) Count(c Color) int {
	n := 0
	for r := 0; r < BoardSize; r++ {
		for col := 0; col < BoardSize; col++ {
			if b.squares[r][col].Holds(c) {
				n++
			}
		}
	}
	return n
}

func mustBeOnBoard(p Position) {
	if !p.Valid() {
		panic(fmt.Sprintf("chess: position %s out of bounds", p))
	}
}
