// Package tui plays the game in a terminal: the mouse clicks squares and menu
// buttons, Esc pauses and digit keys pick menu entries.
package tui

import (
	"context"
	"errors"

	"github.com/gdamore/tcell/v2"
	"go.uber.org/zap"

	"github.com/park285/cheese-hotseat/internal/app"
	"github.com/park285/cheese-hotseat/internal/obslog"
)

type UI struct {
	screen tcell.Screen
	m      *app.Machine
	theme  Theme
	title  string

	mouseDown bool
	current   app.Update
}

// Layout is the cell hit-tester; pass it to the Machine with app.WithLayout.
func Layout() app.Layout { return cellLayout{} }

// New wraps an initialised screen. The machine should be built with Layout().
func New(screen tcell.Screen, m *app.Machine, title string) *UI {
	return &UI{screen: screen, m: m, theme: DefaultTheme, title: title, current: m.View()}
}

// Run draws and handles events until the game exits or ctx is done. It calls Fini on return.
func (ui *UI) Run(ctx context.Context) error {
	defer ui.screen.Fini()
	ui.screen.EnableMouse()
	ui.draw(ui.current)

	events := make(chan tcell.Event)
	done := make(chan struct{})
	defer close(done)
	go func() {
		for {
			ev := ui.screen.PollEvent()
			if ev == nil {
				return
			}
			select {
			case events <- ev:
			case <-done:
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev := <-events:
			if ui.handle(ctx, ev) {
				return nil
			}
		}
	}
}

// handle applies one terminal event and reports whether the UI should close.
func (ui *UI) handle(ctx context.Context, ev tcell.Event) bool {
	var in app.Input
	switch ev := ev.(type) {
	case *tcell.EventResize:
		ui.screen.Sync()
		ui.draw(ui.current)
		return false
	case *tcell.EventKey:
		in = keyInput(ev)
	case *tcell.EventMouse:
		pressed := ev.Buttons()&tcell.Button1 != 0
		// only the press edge counts as a click
		if pressed && !ui.mouseDown {
			x, y := ev.Position()
			in = app.Pointer{X: x, Y: y}
		}
		ui.mouseDown = pressed
	}
	if in == nil {
		return false
	}

	u, err := ui.m.Handle(ctx, in)
	if err != nil && !errors.Is(err, app.ErrExited) {
		obslog.L().Debug("tui_input", zap.Error(err))
	}
	ui.current = u
	if u.Quit {
		return true
	}
	ui.draw(u)
	return false
}

func keyInput(ev *tcell.EventKey) app.Input {
	switch ev.Key() {
	case tcell.KeyEscape:
		return app.Escape{}
	case tcell.KeyCtrlC:
		return app.Quit{}
	case tcell.KeyRune:
		r := ev.Rune()
		if r >= '1' && r <= '9' {
			return app.Choose{Index: int(r - '1')}
		}
	}
	return nil
}
