package tui

import (
	"fmt"
	"strconv"

	"github.com/gdamore/tcell/v2"

	"github.com/park285/cheese-hotseat/internal/app"
	"github.com/park285/cheese-hotseat/internal/chess"
)

// Theme colours the terminal board.
type Theme struct {
	SquareLight tcell.Color
	SquareDark  tcell.Color
	SquareHigh  tcell.Color
	SquareLast  tcell.Color
	SquarePromo tcell.Color
	White       tcell.Color
	Black       tcell.Color
	Banner      tcell.Color
	Status      tcell.Color
	Menu        tcell.Color
	Coord       tcell.Color
}

var DefaultTheme = Theme{
	SquareLight: tcell.NewRGBColor(240, 217, 181),
	SquareDark:  tcell.NewRGBColor(181, 136, 99),
	SquareHigh:  tcell.NewRGBColor(246, 246, 105),
	SquareLast:  tcell.NewRGBColor(170, 162, 58),
	SquarePromo: tcell.NewRGBColor(186, 120, 210),
	White:       tcell.ColorWhite,
	Black:       tcell.ColorBlack,
	Banner:      tcell.ColorAqua,
	Status:      tcell.ColorYellow,
	Menu:        tcell.ColorFuchsia,
	Coord:       tcell.ColorGray,
}

func drawText(s tcell.Screen, x, y int, style tcell.Style, text string) {
	for _, r := range text {
		s.SetContent(x, y, r, nil, style)
		x++
	}
}

func (ui *UI) draw(u app.Update) {
	s, t := ui.screen, ui.theme
	s.Clear()

	drawText(s, originX, 0, tcell.StyleDefault.Bold(true), ui.title)
	drawText(s, originX, 1, tcell.StyleDefault.Foreground(t.Banner), u.Banner)

	if u.State != app.StateMainMenu && u.State != app.StateExited {
		ui.drawBoard(u)
	}
	if u.Status != "" {
		drawText(s, originX, boardBottom()+1, tcell.StyleDefault.Foreground(t.Status), u.Status)
	}
	if u.Menu != nil {
		ui.drawMenu(u.Menu)
	}
	drawText(s, originX, boardBottom()+3, tcell.StyleDefault.Foreground(t.Coord), "esc: pause   1-9: menu   ctrl+c: quit")
	s.Show()
}

func (ui *UI) drawBoard(u app.Update) {
	s, t := ui.screen, ui.theme
	coord := tcell.StyleDefault.Foreground(t.Coord)
	for i := 0; i < chess.BoardSize; i++ {
		drawText(s, originX+i*cellW+1, originY-1, coord, strconv.Itoa(i))
		drawText(s, originX-2, originY+i*cellH, coord, strconv.Itoa(i))
	}

	for row := 0; row < chess.BoardSize; row++ {
		for col := 0; col < chess.BoardSize; col++ {
			p := chess.Pos(row, col)
			bg := t.SquareLight
			if (row+col)%2 == 1 {
				bg = t.SquareDark
			}
			switch {
			case u.Pending != nil && *u.Pending == p:
				bg = t.SquarePromo
			case u.Selected != nil && *u.Selected == p:
				bg = t.SquareHigh
			case u.LastMove != nil && (u.LastMove.From == p || u.LastMove.To == p):
				bg = t.SquareLast
			}
			x, y := squareOrigin(p)
			blank := tcell.StyleDefault.Background(bg)
			for dy := 0; dy < cellH; dy++ {
				for dx := 0; dx < cellW; dx++ {
					s.SetContent(x+dx, y+dy, ' ', nil, blank)
				}
			}
			sq := u.Board.At(p)
			if sq.IsEmpty() {
				continue
			}
			fg := t.White
			if sq.Color == chess.Black {
				fg = t.Black
			}
			s.SetContent(x+1, y, rune(sq.Letter()), nil, blank.Foreground(fg).Bold(true))
		}
	}
}

func (ui *UI) drawMenu(m *app.Menu) {
	s, t := ui.screen, ui.theme
	style := tcell.StyleDefault.Foreground(t.Menu)
	drawText(s, menuX(), menuTop, style.Bold(true), m.Title)
	for i, label := range m.Labels {
		drawText(s, menuX(), buttonY(i), style.Reverse(true), fmt.Sprintf(" %d  %-*s", i+1, menuWidth-5, label))
	}
}
