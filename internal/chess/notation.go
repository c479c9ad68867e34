package chess

import (
	"fmt"
	"strings"
)

// Text form of a board: one string per row, row 0 first. Uppercase letters are
// White, lowercase Black, '.' is empty. Only persistence and wire formats use it.

var kindLetters = map[PieceKind]byte{
	Pawn:   'p',
	Knight: 'n',
	Bishop: 'b',
	Rook:   'r',
	Queen:  'q',
	King:   'k',
}

// Letter returns the single-letter code for the square.
func (s Square) Letter() byte {
	l, ok := kindLetters[s.Kind]
	if !ok {
		return '.'
	}
	if s.Color == White {
		return l - 'a' + 'A'
	}
	return l
}

// ParseSquare decodes a single-letter code.
func ParseSquare(c byte) (Square, bool) {
	if c == '.' {
		return Empty, true
	}
	color := Black
	lower := c
	if c >= 'A' && c <= 'Z' {
		color = White
		lower = c - 'A' + 'a'
	}
	for k, l := range kindLetters {
		if l == lower {
			return Occupied(color, k), true
		}
	}
	return Empty, false
}

// EncodeRows renders the board as BoardSize strings.
func EncodeRows(b Board) []string {
	rows := make([]string, BoardSize)
	for r := 0; r < BoardSize; r++ {
		var sb strings.Builder
		for c := 0; c < BoardSize; c++ {
			sb.WriteByte(b.At(Pos(r, c)).Letter())
		}
		rows[r] = sb.String()
	}
	return rows
}

// DecodeRows parses the output of EncodeRows.
func DecodeRows(rows []string) (Board, error) {
	var b Board
	if len(rows) != BoardSize {
		return b, fmt.Errorf("want %d rows, got %d: %w", BoardSize, len(rows), ErrInvalidSnapshot)
	}
	for r, line := range rows {
		line = strings.TrimSpace(line)
		if len(line) != BoardSize {
			return b, fmt.Errorf("row %d has %d squares: %w", r, len(line), ErrInvalidSnapshot)
		}
		for c := 0; c < BoardSize; c++ {
			sq, ok := ParseSquare(line[c])
			if !ok {
				return b, fmt.Errorf("row %d col %d: bad piece %q: %w", r, c, line[c], ErrInvalidSnapshot)
			}
			b.Set(Pos(r, c), sq)
		}
	}
	return b, nil
}

// ParseColor accepts "white"/"w" and "black"/"b".
func ParseColor(s string) (Color, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "white", "w":
		return White, true
	case "black", "b":
		return Black, true
	default:
		return White, false
	}
}
