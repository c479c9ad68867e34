package render

import (
	"image"

	"github.com/park285/cheese-hotseat/internal/chess"
)

const (
	sideMargin   = 36
	topMargin    = 110
	bottomMargin = 60
)

// Layout maps between image pixels and board squares or menu buttons.
// The same geometry is used to draw and to hit-test, so a click on a drawn
// button always lands on it.
type Layout struct {
	SquareSize int
}

func NewLayout(squareSize int) Layout {
	if squareSize <= 0 {
		squareSize = 72
	}
	return Layout{SquareSize: squareSize}
}

func (l Layout) boardPixels() int { return l.SquareSize * chess.BoardSize }

// Origin is the top-left pixel of square (0,0).
func (l Layout) Origin() image.Point { return image.Pt(sideMargin, topMargin) }

// Bounds is the full image size.
func (l Layout) Bounds() image.Rectangle {
	n := l.boardPixels()
	return image.Rect(0, 0, n+sideMargin*2, n+topMargin+bottomMargin)
}

func (l Layout) BoardRect() image.Rectangle {
	o := l.Origin()
	n := l.boardPixels()
	return image.Rect(o.X, o.Y, o.X+n, o.Y+n)
}

func (l Layout) SquareRect(p chess.Position) image.Rectangle {
	o := l.Origin()
	x := o.X + p.Col*l.SquareSize
	y := o.Y + p.Row*l.SquareSize
	return image.Rect(x, y, x+l.SquareSize, y+l.SquareSize)
}

// SquareAt integer-divides the pixel offset from the board origin by the square size.
func (l Layout) SquareAt(x, y int) (chess.Position, bool) {
	o := l.Origin()
	x -= o.X
	y -= o.Y
	if x < 0 || y < 0 {
		return chess.Position{}, false
	}
	p := chess.Pos(y/l.SquareSize, x/l.SquareSize)
	return p, p.Valid()
}

// ButtonRects stacks n buttons vertically, centred on the board.
func (l Layout) ButtonRects(n int) []image.Rectangle {
	if n <= 0 {
		return nil
	}
	board := l.BoardRect()
	w := board.Dx() * 5 / 8
	h := l.SquareSize * 3 / 4
	gap := l.SquareSize / 4
	total := n*h + (n-1)*gap
	left := board.Min.X + (board.Dx()-w)/2
	top := board.Min.Y + (board.Dy()-total)/2 + l.SquareSize/2

	rects := make([]image.Rectangle, n)
	for i := range rects {
		y := top + i*(h+gap)
		rects[i] = image.Rect(left, y, left+w, y+h)
	}
	return rects
}

// ButtonAt returns the index of the button under (x,y) among n stacked buttons.
func (l Layout) ButtonAt(n, x, y int) (int, bool) {
	pt := image.Pt(x, y)
	for i, r := range l.ButtonRects(n) {
		if pt.In(r) {
			return i, true
		}
	}
	return 0, false
}

// menuTitleRect sits above the first button.
func (l Layout) menuTitleRect(n int) image.Rectangle {
	rects := l.ButtonRects(n)
	board := l.BoardRect()
	top := board.Min.Y + l.SquareSize/2
	if len(rects) > 0 {
		top = rects[0].Min.Y - l.SquareSize
	}
	return image.Rect(board.Min.X, top, board.Max.X, top+l.SquareSize*3/4)
}
