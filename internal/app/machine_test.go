package app

import (
	"context"
	"errors"
	"slices"
	"testing"

	"github.com/park285/cheese-hotseat/internal/chess"
	"github.com/park285/cheese-hotseat/internal/render"
	"github.com/park285/cheese-hotseat/internal/store"
)

func newMachine(t *testing.T, opts ...MachineOption) *Machine {
	t.Helper()
	opts = append([]MachineOption{WithStore(store.NewFileStore(t.TempDir()))}, opts...)
	return NewMachine(chess.NewSession(), opts...)
}

func mustHandle(t *testing.T, m *Machine, in Input) Update {
	t.Helper()
	u, err := m.Handle(context.Background(), in)
	if err != nil {
		t.Fatalf("Handle(%#v): %v", in, err)
	}
	return u
}

func startGame(t *testing.T, m *Machine) {
	t.Helper()
	if u := mustHandle(t, m, Press{ButtonStart}); u.State != StatePlaying {
		t.Fatalf("state after start = %v", u.State)
	}
}

func TestMainMenuStartAndExit(t *testing.T) {
	m := newMachine(t)
	u := m.View()
	if u.State != StateMainMenu || u.Menu == nil || !slices.Equal(u.Menu.Buttons, []Button{ButtonStart, ButtonExit}) {
		t.Fatalf("initial view = %+v", u)
	}
	if u.Menu.Labels[0] != "Start" {
		t.Fatalf("label = %q", u.Menu.Labels[0])
	}
	if _, err := m.Handle(context.Background(), Click{chess.Pos(6, 0)}); !errors.Is(err, ErrNotPlaying) {
		t.Fatalf("click on main menu err = %v", err)
	}

	u = mustHandle(t, m, Press{ButtonStart})
	if u.State != StatePlaying || u.Banner != "White's Turn" || u.Menu != nil {
		t.Fatalf("after start = %+v", u)
	}
	if !slices.Equal(u.Cues, []Cue{CueMenu}) {
		t.Fatalf("cues = %v", u.Cues)
	}

	m2 := newMachine(t)
	u = mustHandle(t, m2, Choose{1})
	if u.State != StateExited || !u.Quit {
		t.Fatalf("exit via choice = %+v", u)
	}
	if _, err := m2.Handle(context.Background(), Press{ButtonStart}); !errors.Is(err, ErrExited) {
		t.Fatalf("input after exit err = %v", err)
	}
}

func TestPlayingMoveCuesAndBanner(t *testing.T) {
	m := newMachine(t)
	startGame(t, m)

	u := mustHandle(t, m, Click{chess.Pos(7, 1)})
	if u.Selected == nil || *u.Selected != chess.Pos(7, 1) || !slices.Equal(u.Cues, []Cue{CueMove}) {
		t.Fatalf("select = %+v", u)
	}
	u = mustHandle(t, m, Click{chess.Pos(5, 2)})
	if u.Selected != nil || u.SideToMove != chess.Black || u.Banner != "Black's Turn" {
		t.Fatalf("after move = %+v", u)
	}
	if u.LastMove == nil || u.LastMove.To != chess.Pos(5, 2) || u.MoveCount != 1 {
		t.Fatalf("last move = %+v", u.LastMove)
	}

	mustHandle(t, m, Click{chess.Pos(0, 0)})
	u = mustHandle(t, m, Click{chess.Pos(3, 3)})
	if !slices.Equal(u.Cues, []Cue{CueInvalid}) || u.Status == "" {
		t.Fatalf("rejected move = %+v", u)
	}
	// status is transient
	if u = mustHandle(t, m, Click{chess.Pos(4, 4)}); u.Status != "" {
		t.Fatalf("status survived another input: %q", u.Status)
	}
}

func TestEscapeTogglesPause(t *testing.T) {
	m := newMachine(t)
	startGame(t, m)
	mustHandle(t, m, Click{chess.Pos(7, 1)})

	u := mustHandle(t, m, Escape{})
	if u.State != StatePaused || u.Menu == nil || len(u.Menu.Buttons) != 5 {
		t.Fatalf("paused view = %+v", u)
	}
	if _, err := m.Handle(context.Background(), Click{chess.Pos(5, 2)}); !errors.Is(err, ErrNotPlaying) {
		t.Fatalf("board click while paused err = %v", err)
	}
	u = mustHandle(t, m, Escape{})
	if u.State != StatePlaying || u.Selected == nil {
		t.Fatalf("resume via escape lost state: %+v", u)
	}

	mustHandle(t, m, Escape{})
	u = mustHandle(t, m, Press{ButtonNewGame})
	if u.State != StatePlaying || u.Selected != nil || u.Board != chess.Initial() || u.SideToMove != chess.White {
		t.Fatalf("new game = %+v", u)
	}
	if len(u.Events) != 1 || u.Events[0].Kind != chess.EventReset {
		t.Fatalf("new game events = %v", u.Events)
	}
}

// Black pawn at (6,4) can capture onto (7,3), with Black to move.
func promotionMachine(t *testing.T) *Machine {
	t.Helper()
	m := newMachine(t)
	startGame(t, m)
	var b chess.Board
	b.Set(chess.Pos(6, 4), chess.Occupied(chess.Black, chess.Pawn))
	b.Set(chess.Pos(7, 3), chess.Occupied(chess.White, chess.Rook))
	if err := m.Session().Restore(b, chess.Black); err != nil {
		t.Fatalf("Restore: %v", err)
	}
	mustHandle(t, m, Click{chess.Pos(6, 4)})
	u := mustHandle(t, m, Click{chess.Pos(7, 3)})
	if u.State != StatePromotion || u.Pending == nil || *u.Pending != chess.Pos(7, 3) {
		t.Fatalf("promotion view = %+v", u)
	}
	if !slices.Equal(u.Cues, []Cue{CueMove, CuePromote}) {
		t.Fatalf("cues = %v", u.Cues)
	}
	return m
}

func TestPromotionMenu(t *testing.T) {
	m := promotionMachine(t)
	u := m.View()
	if !slices.Equal(u.Menu.Buttons, []Button{ButtonQueen, ButtonKnight}) {
		t.Fatalf("promotion buttons = %v", u.Menu.Buttons)
	}
	if u.Banner != "Promote the pawn on (7,3)" {
		t.Fatalf("banner = %q", u.Banner)
	}
	if _, err := m.Handle(context.Background(), Press{ButtonResume}); !errors.Is(err, ErrButtonNotOffered) {
		t.Fatalf("resume during promotion err = %v", err)
	}
	// escape does not dismiss the choice
	if u = mustHandle(t, m, Escape{}); u.State != StatePromotion {
		t.Fatalf("escape left promotion: %v", u.State)
	}

	u = mustHandle(t, m, Press{ButtonKnight})
	if u.State != StatePlaying || u.Board.At(chess.Pos(7, 3)) != chess.Occupied(chess.Black, chess.Knight) {
		t.Fatalf("after knight = %+v", u)
	}
	if !slices.Contains(u.Cues, CuePromoted) || u.Pending != nil {
		t.Fatalf("promotion not resolved: %+v", u)
	}
	if u.SideToMove != chess.White {
		t.Fatalf("side = %v", u.SideToMove)
	}
}

func TestSaveRefusedDuringPromotion(t *testing.T) {
	m := promotionMachine(t)
	u, err := m.Handle(context.Background(), Save{Slot: "mid"})
	if !errors.Is(err, chess.ErrPromotionPending) {
		t.Fatalf("save err = %v", err)
	}
	if u.State != StatePromotion || u.Status == "" {
		t.Fatalf("refused save view = %+v", u)
	}
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	m := newMachine(t)
	startGame(t, m)
	mustHandle(t, m, Click{chess.Pos(7, 6)})
	mustHandle(t, m, Click{chess.Pos(5, 5)})
	saved := m.View()

	u := mustHandle(t, m, Save{Slot: "Before-Lunch"})
	if u.Slot != "before-lunch" || u.Status != "Saved to slot before-lunch" {
		t.Fatalf("save update = %+v", u)
	}

	mustHandle(t, m, Escape{})
	mustHandle(t, m, Press{ButtonNewGame})
	mustHandle(t, m, Click{chess.Pos(7, 1)})

	u = mustHandle(t, m, Load{Slot: "before-lunch"})
	if u.State != StatePlaying || u.Board != saved.Board || u.SideToMove != saved.SideToMove {
		t.Fatalf("load did not restore: %+v", u)
	}
	if u.Selected != nil {
		t.Fatalf("selection survived load")
	}

	// the pause menu's load button reuses the last slot
	mustHandle(t, m, Escape{})
	u = mustHandle(t, m, Press{ButtonLoad})
	if u.State != StatePlaying || u.Slot != "before-lunch" {
		t.Fatalf("menu load = %+v", u)
	}

	if _, err := m.Handle(context.Background(), Load{Slot: "never-saved"}); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("missing load err = %v", err)
	}
}

func TestMenuSaveGeneratesSlot(t *testing.T) {
	m := newMachine(t)
	startGame(t, m)
	mustHandle(t, m, Escape{})
	u := mustHandle(t, m, Press{ButtonSave})
	if u.Slot == "" || u.State != StatePaused {
		t.Fatalf("menu save = %+v", u)
	}
	if _, err := store.NormalizeSlot(u.Slot); err != nil {
		t.Fatalf("generated slot %q invalid", u.Slot)
	}
}

func TestNoStoreConfigured(t *testing.T) {
	m := NewMachine(nil)
	startGame(t, m)
	if _, err := m.Handle(context.Background(), Save{}); !errors.Is(err, ErrNoStore) {
		t.Fatalf("save without store err = %v", err)
	}
}

func TestPointerUsesLayout(t *testing.T) {
	l := render.NewLayout(50)
	m := newMachine(t, WithLayout(l))

	// main menu: first button is Start
	r := l.ButtonRects(2)[0]
	u := mustHandle(t, m, Pointer{X: r.Min.X + 5, Y: r.Min.Y + 5})
	if u.State != StatePlaying {
		t.Fatalf("pointer on start = %v", u.State)
	}

	sq := l.SquareRect(chess.Pos(6, 3))
	u = mustHandle(t, m, Pointer{X: sq.Min.X + 10, Y: sq.Min.Y + 10})
	if u.Selected == nil || *u.Selected != chess.Pos(6, 3) {
		t.Fatalf("pointer selection = %+v", u.Selected)
	}
	// off-board clicks are ignored
	u = mustHandle(t, m, Pointer{X: 0, Y: 0})
	if u.Selected == nil || len(u.Events) != 0 {
		t.Fatalf("off-board pointer changed state: %+v", u)
	}
}

func TestQuitFromAnywhere(t *testing.T) {
	m := promotionMachine(t)
	if u := mustHandle(t, m, Quit{}); !u.Quit || u.State != StateExited {
		t.Fatalf("quit = %+v", u)
	}
}
