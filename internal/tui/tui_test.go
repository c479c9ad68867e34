package tui

import (
	"context"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/park285/cheese-hotseat/internal/app"
	"github.com/park285/cheese-hotseat/internal/chess"
)

func newUI(t *testing.T) (*UI, tcell.SimulationScreen) {
	t.Helper()
	s := tcell.NewSimulationScreen("UTF-8")
	if err := s.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}
	s.SetSize(80, 30)
	m := app.NewMachine(chess.NewSession(), app.WithLayout(Layout()))
	return New(s, m, "Hot-Seat Chess"), s
}

func cellRune(s tcell.SimulationScreen, x, y int) rune {
	cells, w, _ := s.GetContents()
	c := cells[y*w+x]
	if len(c.Runes) == 0 {
		return ' '
	}
	return c.Runes[0]
}

func click(ui *UI, x, y int) bool {
	ctx := context.Background()
	quit := ui.handle(ctx, tcell.NewEventMouse(x, y, tcell.Button1, tcell.ModNone))
	ui.handle(ctx, tcell.NewEventMouse(x, y, tcell.ButtonNone, tcell.ModNone))
	return quit
}

func TestCellLayout(t *testing.T) {
	l := cellLayout{}
	x, y := squareOrigin(chess.Pos(6, 3))
	for _, d := range [][2]int{{0, 0}, {cellW - 1, cellH - 1}} {
		if p, ok := l.SquareAt(x+d[0], y+d[1]); !ok || p != chess.Pos(6, 3) {
			t.Fatalf("SquareAt(%d,%d) = %v %v", x+d[0], y+d[1], p, ok)
		}
	}
	if _, ok := l.SquareAt(originX-1, originY); ok {
		t.Fatalf("left of board should miss")
	}
	if _, ok := l.SquareAt(originX, boardBottom()); ok {
		t.Fatalf("below board should miss")
	}
	if i, ok := l.ButtonAt(5, menuX()+3, buttonY(2)); !ok || i != 2 {
		t.Fatalf("ButtonAt = %d %v", i, ok)
	}
	if _, ok := l.ButtonAt(2, menuX()+3, buttonY(2)); ok {
		t.Fatalf("button beyond n should miss")
	}
}

func TestMouseDrivesGame(t *testing.T) {
	ui, s := newUI(t)
	ui.draw(ui.current)

	// main menu: click Start
	click(ui, menuX()+2, buttonY(0))
	if ui.current.State != app.StatePlaying {
		t.Fatalf("state = %v", ui.current.State)
	}
	x, y := squareOrigin(chess.Pos(7, 1))
	if got := cellRune(s, x+1, y); got != 'N' {
		t.Fatalf("cell at white knight = %q", got)
	}

	click(ui, x+2, y+1)
	tx, ty := squareOrigin(chess.Pos(5, 2))
	click(ui, tx, ty)
	if ui.current.SideToMove != chess.Black || ui.current.MoveCount != 1 {
		t.Fatalf("after move = %+v", ui.current)
	}
	if got := cellRune(s, tx+1, ty); got != 'N' {
		t.Fatalf("knight not redrawn, got %q", got)
	}
}

func TestHeldButtonClicksOnce(t *testing.T) {
	ui, _ := newUI(t)
	ctx := context.Background()
	click(ui, menuX()+2, buttonY(0))

	x, y := squareOrigin(chess.Pos(6, 0))
	ui.handle(ctx, tcell.NewEventMouse(x, y, tcell.Button1, tcell.ModNone))
	// drag events while held are ignored, so the selection is not toggled off
	ui.handle(ctx, tcell.NewEventMouse(x+1, y, tcell.Button1, tcell.ModNone))
	if ui.current.Selected == nil || *ui.current.Selected != chess.Pos(6, 0) {
		t.Fatalf("selection = %v", ui.current.Selected)
	}
}

func TestKeysPauseAndChoose(t *testing.T) {
	ui, _ := newUI(t)
	ctx := context.Background()
	ui.handle(ctx, tcell.NewEventKey(tcell.KeyRune, '1', tcell.ModNone))
	if ui.current.State != app.StatePlaying {
		t.Fatalf("'1' on main menu = %v", ui.current.State)
	}
	ui.handle(ctx, tcell.NewEventKey(tcell.KeyEscape, 0, tcell.ModNone))
	if ui.current.State != app.StatePaused {
		t.Fatalf("esc = %v", ui.current.State)
	}
	// 5th pause button is Exit
	if quit := ui.handle(ctx, tcell.NewEventKey(tcell.KeyRune, '5', tcell.ModNone)); !quit {
		t.Fatalf("exit button did not quit")
	}
}

func TestRunStopsOnQuit(t *testing.T) {
	ui, s := newUI(t)
	done := make(chan error, 1)
	go func() { done <- ui.Run(context.Background()) }()

	s.InjectKey(tcell.KeyCtrlC, 0, tcell.ModNone)
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("Run did not return after ctrl+c")
	}
}
