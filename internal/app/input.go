package app

import (
	"fmt"

	"github.com/park285/cheese-hotseat/internal/chess"
)

// State is the top-level screen.
type State uint8

const (
	StateMainMenu State = iota
	StatePlaying
	StatePaused
	StatePromotion
	StateExited
)

func (s State) String() string {
	switch s {
	case StateMainMenu:
		return "main_menu"
	case StatePlaying:
		return "playing"
	case StatePaused:
		return "paused"
	case StatePromotion:
		return "promotion"
	case StateExited:
		return "exited"
	default:
		return fmt.Sprintf("state(%d)", uint8(s))
	}
}

// Button names a menu entry.
type Button string

const (
	ButtonStart   Button = "start"
	ButtonExit    Button = "exit"
	ButtonResume  Button = "resume"
	ButtonNewGame Button = "new_game"
	ButtonSave    Button = "save"
	ButtonLoad    Button = "load"
	ButtonQueen   Button = "queen"
	ButtonKnight  Button = "knight"
)

var menuButtons = map[State][]Button{
	StateMainMenu:  {ButtonStart, ButtonExit},
	StatePaused:    {ButtonResume, ButtonNewGame, ButtonSave, ButtonLoad, ButtonExit},
	StatePromotion: {ButtonQueen, ButtonKnight},
}

// Cue is an audio hint for the front-end.
type Cue string

const (
	CueMove     Cue = "move"
	CueInvalid  Cue = "invalid"
	CuePromote  Cue = "promote"
	CuePromoted Cue = "promoted"
	CueMenu     Cue = "menu"
)

// Input is one user action. Exactly one of the types below.
type Input interface{ input() }

// Pointer is a click in image pixels, mapped through the Layout.
type Pointer struct{ X, Y int }

// Click is a click already resolved to a board square.
type Click struct{ Pos chess.Position }

// Press activates a menu button by name.
type Press struct{ Button Button }

// Choose activates the i-th button of the current menu, counting from 0.
type Choose struct{ Index int }

type Escape struct{}

type Quit struct{}

// Save writes the game to Slot; an empty slot gets a generated name.
type Save struct{ Slot string }

// Load restores Slot; an empty slot means the last slot used.
type Load struct{ Slot string }

func (Pointer) input() {}
func (Click) input()   {}
func (Press) input()   {}
func (Choose) input()  {}
func (Escape) input()  {}
func (Quit) input()    {}
func (Save) input()    {}
func (Load) input()    {}

// Layout hit-tests pointer positions. render.Layout implements it.
type Layout interface {
	SquareAt(x, y int) (chess.Position, bool)
	ButtonAt(n, x, y int) (int, bool)
}
