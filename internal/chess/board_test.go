package chess

import (
	"errors"
	"testing"
)

func TestInitialLayout(t *testing.T) {
	b := Initial()
	if got := b.Count(White); got != 16 {
		t.Fatalf("white pieces = %d, want 16", got)
	}
	if got := b.Count(Black); got != 16 {
		t.Fatalf("black pieces = %d, want 16", got)
	}
	want := []PieceKind{Rook, Knight, Bishop, Queen, King, Bishop, Knight, Rook}
	for c := 0; c < BoardSize; c++ {
		if sq := b.At(Pos(0, c)); sq != Occupied(Black, want[c]) {
			t.Fatalf("row 0 col %d = %v, want black %v", c, sq, want[c])
		}
		if sq := b.At(Pos(7, c)); sq != Occupied(White, want[c]) {
			t.Fatalf("row 7 col %d = %v, want white %v", c, sq, want[c])
		}
		if sq := b.At(Pos(1, c)); sq != Occupied(Black, Pawn) {
			t.Fatalf("row 1 col %d = %v, want black pawn", c, sq)
		}
		if sq := b.At(Pos(6, c)); sq != Occupied(White, Pawn) {
			t.Fatalf("row 6 col %d = %v, want white pawn", c, sq)
		}
		for r := 2; r <= 5; r++ {
			if !b.At(Pos(r, c)).IsEmpty() {
				t.Fatalf("(%d,%d) should start empty", r, c)
			}
		}
	}
}

func TestBoardSetAndReset(t *testing.T) {
	b := Initial()
	b.Set(Pos(4, 4), Occupied(White, Queen))
	b.Set(Pos(0, 0), Empty)
	if b.At(Pos(4, 4)) != Occupied(White, Queen) || !b.At(Pos(0, 0)).IsEmpty() {
		t.Fatalf("set did not overwrite squares")
	}
	b.Reset()
	if b != Initial() {
		t.Fatalf("reset did not restore the initial layout")
	}
}

func TestBoardOutOfBoundsPanics(t *testing.T) {
	for _, p := range []Position{Pos(-1, 0), Pos(0, 8), Pos(8, 8)} {
		func() {
			defer func() {
				if recover() == nil {
					t.Fatalf("At(%v) did not panic", p)
				}
			}()
			b := Initial()
			b.At(p)
		}()
	}
}

func TestRowsRoundTripInitial(t *testing.T) {
	rows := EncodeRows(Initial())
	if rows[0] != "rnbqkbnr" || rows[7] != "RNBQKBNR" || rows[3] != "........" {
		t.Fatalf("unexpected rows: %v", rows)
	}
	b, err := DecodeRows(rows)
	if err != nil {
		t.Fatalf("DecodeRows: %v", err)
	}
	if b != Initial() {
		t.Fatalf("decoded board differs from initial")
	}
}

func TestDecodeRowsRejectsGarbage(t *testing.T) {
	cases := [][]string{
		{"rnbqkbnr"},
		{"rnbqkbnr", "pppppppp", "........", "........", "........", "........", "PPPPPPPP", "RNBQKBN"},
		{"rnbqkbnx", "pppppppp", "........", "........", "........", "........", "PPPPPPPP", "RNBQKBNR"},
	}
	for i, rows := range cases {
		if _, err := DecodeRows(rows); !errors.Is(err, ErrInvalidSnapshot) {
			t.Fatalf("case %d: err = %v, want ErrInvalidSnapshot", i, err)
		}
	}
}

func TestParsePieceKind(t *testing.T) {
	for k := Pawn; k <= King; k++ {
		if got, ok := ParsePieceKind(k.String()); !ok || got != k {
			t.Fatalf("ParsePieceKind(%q) = %v %v", k.String(), got, ok)
		}
	}
	for _, s := range []string{"", "Queen", "empress"} {
		if _, ok := ParsePieceKind(s); ok {
			t.Fatalf("ParsePieceKind(%q) accepted", s)
		}
	}
}
