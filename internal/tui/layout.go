package tui

import "github.com/park285/cheese-hotseat/internal/chess"

// Cell geometry. A square is cellW columns by cellH rows so it looks roughly square.
const (
	cellW   = 4
	cellH   = 2
	originX = 3
	originY = 3

	menuGap    = 4
	menuWidth  = 22
	menuTop    = originY + 2
	menuStride = 2
)

// cellLayout hit-tests terminal cells the same way the image layout hit-tests pixels.
type cellLayout struct{}

func (cellLayout) SquareAt(x, y int) (chess.Position, bool) {
	x -= originX
	y -= originY
	if x < 0 || y < 0 {
		return chess.Position{}, false
	}
	p := chess.Pos(y/cellH, x/cellW)
	return p, p.Valid()
}

func (cellLayout) ButtonAt(n, x, y int) (int, bool) {
	if x < menuX() || x >= menuX()+menuWidth {
		return 0, false
	}
	for i := 0; i < n; i++ {
		if y == buttonY(i) {
			return i, true
		}
	}
	return 0, false
}

func squareOrigin(p chess.Position) (int, int) {
	return originX + p.Col*cellW, originY + p.Row*cellH
}

func boardBottom() int { return originY + chess.BoardSize*cellH }

func menuX() int { return originX + chess.BoardSize*cellW + menuGap }

func buttonY(i int) int { return menuTop + 2 + i*menuStride }
