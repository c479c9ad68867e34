package render

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"testing"

	"github.com/park285/cheese-hotseat/internal/chess"
)

func decode(t *testing.T, raw []byte) image.Image {
	t.Helper()
	img, err := png.Decode(bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("png decode: %v", err)
	}
	return img
}

func centerOf(r image.Rectangle) image.Point {
	return image.Pt((r.Min.X+r.Max.X)/2, (r.Min.Y+r.Max.Y)/2)
}

func sameRGB(img image.Image, p image.Point, want [3]uint8) bool {
	r, g, b, _ := img.At(p.X, p.Y).RGBA()
	return uint8(r>>8) == want[0] && uint8(g>>8) == want[1] && uint8(b>>8) == want[2]
}

func TestSquareAtIntegerDivision(t *testing.T) {
	l := NewLayout(50)
	o := l.Origin()
	cases := []struct {
		x, y int
		want chess.Position
		ok   bool
	}{
		{o.X, o.Y, chess.Pos(0, 0), true},
		{o.X + 49, o.Y + 49, chess.Pos(0, 0), true},
		{o.X + 50, o.Y, chess.Pos(0, 1), true},
		{o.X + 399, o.Y + 399, chess.Pos(7, 7), true},
		{o.X + 125, o.Y + 310, chess.Pos(6, 2), true},
		{o.X + 400, o.Y, chess.Position{}, false},
		{o.X - 1, o.Y, chess.Position{}, false},
		{o.X, o.Y - 1, chess.Position{}, false},
	}
	for _, tc := range cases {
		got, ok := l.SquareAt(tc.x, tc.y)
		if ok != tc.ok || (ok && got != tc.want) {
			t.Fatalf("SquareAt(%d,%d) = %v %v, want %v %v", tc.x, tc.y, got, ok, tc.want, tc.ok)
		}
	}
}

func TestSquareRectRoundTrip(t *testing.T) {
	l := NewLayout(72)
	for r := 0; r < chess.BoardSize; r++ {
		for c := 0; c < chess.BoardSize; c++ {
			p := chess.Pos(r, c)
			ctr := centerOf(l.SquareRect(p))
			if got, ok := l.SquareAt(ctr.X, ctr.Y); !ok || got != p {
				t.Fatalf("center of %v maps to %v %v", p, got, ok)
			}
		}
	}
}

func TestButtonAtMatchesDrawnRects(t *testing.T) {
	l := NewLayout(72)
	for n := 1; n <= 5; n++ {
		rects := l.ButtonRects(n)
		if len(rects) != n {
			t.Fatalf("ButtonRects(%d) = %d rects", n, len(rects))
		}
		for i, r := range rects {
			if !r.In(l.BoardRect()) {
				t.Fatalf("button %d of %d outside the board: %v", i, n, r)
			}
			ctr := centerOf(r)
			if got, ok := l.ButtonAt(n, ctr.X, ctr.Y); !ok || got != i {
				t.Fatalf("ButtonAt center of %d = %d %v", i, got, ok)
			}
		}
		if _, ok := l.ButtonAt(n, 0, 0); ok {
			t.Fatalf("corner hit a button")
		}
	}
}

func TestRenderBoardPixels(t *testing.T) {
	r := NewRenderer(NewLayout(40))
	b := chess.Initial()
	sel := chess.Pos(6, 4)
	raw, err := r.RenderBoard(context.Background(), &b, BoardOptions{Banner: "White's Turn", Selected: &sel})
	if err != nil {
		t.Fatalf("RenderBoard: %v", err)
	}
	img := decode(t, raw)
	l := r.Layout()
	if img.Bounds() != l.Bounds() {
		t.Fatalf("bounds = %v, want %v", img.Bounds(), l.Bounds())
	}
	// empty squares keep the board palette
	if !sameRGB(img, centerOf(l.SquareRect(chess.Pos(4, 4))), [3]uint8{233, 207, 163}) {
		t.Fatalf("(4,4) is not a light square")
	}
	if !sameRGB(img, centerOf(l.SquareRect(chess.Pos(4, 3))), [3]uint8{187, 136, 96}) {
		t.Fatalf("(4,3) is not a dark square")
	}
	// selection tints the square corner, which no piece covers
	corner := l.SquareRect(sel).Min.Add(image.Pt(1, 1))
	if sameRGB(img, corner, [3]uint8{233, 207, 163}) || sameRGB(img, corner, [3]uint8{187, 136, 96}) {
		t.Fatalf("selected square not highlighted")
	}
}

func TestRenderBoardOverlayDimsBoard(t *testing.T) {
	r := NewRenderer(NewLayout(40))
	b := chess.Initial()
	raw, err := r.RenderBoard(context.Background(), &b, BoardOptions{
		Overlay: &MenuView{Title: "Paused", Buttons: []string{"Resume", "Exit"}},
	})
	if err != nil {
		t.Fatalf("RenderBoard: %v", err)
	}
	img := decode(t, raw)
	corner := r.Layout().SquareRect(chess.Pos(4, 4)).Min.Add(image.Pt(1, 1))
	if sameRGB(img, corner, [3]uint8{233, 207, 163}) {
		t.Fatalf("overlay did not dim the board")
	}
}

func TestRenderMenuAndErrors(t *testing.T) {
	r := NewRenderer(NewLayout(40))
	raw, err := r.RenderMenu(context.Background(), MenuView{Title: "Hot-Seat Chess", Buttons: []string{"Start", "Exit"}})
	if err != nil {
		t.Fatalf("RenderMenu: %v", err)
	}
	if decode(t, raw).Bounds() != r.Layout().Bounds() {
		t.Fatalf("menu image size differs from board image")
	}

	if _, err := r.RenderBoard(context.Background(), nil, BoardOptions{}); err == nil {
		t.Fatalf("nil board accepted")
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	b := chess.Initial()
	if _, err := r.RenderBoard(ctx, &b, BoardOptions{}); err == nil {
		t.Fatalf("cancelled context ignored")
	}
}

func TestEveryPieceSpriteRasterises(t *testing.T) {
	for _, c := range []chess.Color{chess.White, chess.Black} {
		for _, k := range []chess.PieceKind{chess.Pawn, chess.Knight, chess.Bishop, chess.Rook, chess.Queen, chess.King} {
			img, err := renderPieceImage(chess.Occupied(c, k), 48)
			if err != nil {
				t.Fatalf("%v %v: %v", c, k, err)
			}
			// the centre of every sprite is opaque
			if _, _, _, a := img.At(24, 30).RGBA(); a == 0 {
				t.Fatalf("%v %v sprite is empty at its centre", c, k)
			}
		}
	}
}

func TestMaterialDiff(t *testing.T) {
	b := chess.Initial()
	if d := materialDiff(&b); d != 0 {
		t.Fatalf("initial diff = %d", d)
	}
	b.Set(chess.Pos(0, 3), chess.Empty)
	if d := materialDiff(&b); d != 9 {
		t.Fatalf("diff without black queen = %d", d)
	}
}
