package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/park285/cheese-hotseat/internal/chess"
	"github.com/park285/cheese-hotseat/internal/msgcat"
	"github.com/park285/cheese-hotseat/internal/obslog"
	"github.com/park285/cheese-hotseat/internal/store"
)

var (
	ErrExited           = errors.New("application has exited")
	ErrButtonNotOffered = errors.New("button not offered in this state")
	ErrNotPlaying       = errors.New("no game in progress")
	ErrNoStore          = errors.New("saving is not configured")
	ErrNoSlot           = errors.New("no save slot given")
)

// Menu is the button list shown in the current state.
type Menu struct {
	Title   string
	Buttons []Button
	Labels  []string
}

// Update is a full view of the application after one input.
type Update struct {
	State      State
	Board      chess.Board
	SideToMove chess.Color
	Selected   *chess.Position
	Pending    *chess.Position
	LastMove   *chess.Move
	MoveCount  int
	Banner     string
	Menu       *Menu
	Status     string
	Events     []chess.Event
	Cues       []Cue
	Slot       string
	Quit       bool
}

// Machine is the application state machine. The chess session is subordinate:
// the machine decides which inputs reach it. Not safe for concurrent use; Loop
// serialises access.
type Machine struct {
	state    State
	session  *chess.Session
	store    store.Store
	catalog  *msgcat.Catalog
	layout   Layout
	status   string
	lastSlot string
}

type MachineOption func(*Machine)

func WithStore(s store.Store) MachineOption { return func(m *Machine) { m.store = s } }

func WithCatalog(c *msgcat.Catalog) MachineOption { return func(m *Machine) { m.catalog = c } }

func WithLayout(l Layout) MachineOption { return func(m *Machine) { m.layout = l } }

// NewMachine starts at the main menu with a fresh session.
func NewMachine(session *chess.Session, opts ...MachineOption) *Machine {
	if session == nil {
		session = chess.NewSession()
	}
	m := &Machine{state: StateMainMenu, session: session}
	for _, opt := range opts {
		opt(m)
	}
	if m.catalog == nil {
		m.catalog = msgcat.Default()
	}
	return m
}

func (m *Machine) State() State { return m.state }

// Session exposes the engine for read-only inspection in tests and logs.
func (m *Machine) Session() *chess.Session { return m.session }

// View returns the current screen without applying any input.
func (m *Machine) View() Update {
	u := Update{
		State:      m.state,
		Board:      m.session.Board(),
		SideToMove: m.session.SideToMove(),
		LastMove:   m.session.LastMove(),
		MoveCount:  m.session.MoveCount(),
		Banner:     m.banner(),
		Menu:       m.menu(),
		Status:     m.status,
		Quit:       m.state == StateExited,
	}
	if p, ok := m.session.Selection(); ok {
		u.Selected = &p
	}
	if p, ok := m.session.PendingPromotion(); ok {
		u.Pending = &p
	}
	return u
}

// Handle applies one input. The returned Update is valid even when err is not nil.
func (m *Machine) Handle(ctx context.Context, in Input) (Update, error) {
	if m.state == StateExited {
		return m.View(), ErrExited
	}
	m.status = ""
	before := m.state

	var (
		events []chess.Event
		cues   []Cue
		slot   string
		err    error
	)
	switch in := in.(type) {
	case Quit:
		m.state = StateExited
	case Escape:
		m.escape()
	case Pointer:
		events, cues, slot, err = m.pointer(ctx, in)
	case Click:
		events, cues, err = m.click(in.Pos)
	case Choose:
		events, cues, slot, err = m.choose(ctx, in.Index)
	case Press:
		events, cues, slot, err = m.press(ctx, in.Button)
	case Save:
		slot, err = m.save(ctx, in.Slot)
	case Load:
		slot, err = m.load(ctx, in.Slot)
		if err == nil {
			events = []chess.Event{{Kind: chess.EventReset}}
		}
	default:
		err = fmt.Errorf("unknown input %T", in)
	}

	if m.state != before {
		obslog.L().Info("app_state", zap.Stringer("from", before), zap.Stringer("to", m.state))
	}
	u := m.View()
	u.Events = events
	u.Cues = cues
	u.Slot = slot
	return u, err
}

func (m *Machine) escape() {
	switch m.state {
	case StatePlaying:
		m.state = StatePaused
	case StatePaused:
		m.state = StatePlaying
	}
}

func (m *Machine) pointer(ctx context.Context, p Pointer) ([]chess.Event, []Cue, string, error) {
	if m.layout == nil {
		return nil, nil, "", errors.New("pointer input needs a layout")
	}
	if m.state == StatePlaying {
		pos, ok := m.layout.SquareAt(p.X, p.Y)
		if !ok {
			return nil, nil, "", nil
		}
		events, cues, err := m.click(pos)
		return events, cues, "", err
	}
	menu := menuButtons[m.state]
	i, ok := m.layout.ButtonAt(len(menu), p.X, p.Y)
	if !ok {
		return nil, nil, "", nil
	}
	return m.press(ctx, menu[i])
}

func (m *Machine) click(pos chess.Position) ([]chess.Event, []Cue, error) {
	if m.state != StatePlaying {
		return nil, nil, fmt.Errorf("click in %s: %w", m.state, ErrNotPlaying)
	}
	events, err := m.session.Click(pos)
	if err != nil {
		return nil, nil, err
	}
	for _, e := range events {
		switch e.Kind {
		case chess.EventMoveApplied:
			obslog.L().Info("session_move",
				zap.String("session", m.session.ID()),
				zap.Stringer("from", e.From), zap.Stringer("to", e.To),
				zap.Stringer("piece", e.Piece), zap.Stringer("captured", e.Captured))
		case chess.EventMoveRejected:
			m.status = m.catalog.Text("outcome.rejected",
				map[string]any{"From": e.From.String(), "To": e.To.String()}, "Illegal move")
		case chess.EventPromotionRequired:
			m.state = StatePromotion
		}
	}
	return events, cuesFor(events), nil
}

func cuesFor(events []chess.Event) []Cue {
	var cues []Cue
	for _, e := range events {
		switch e.Kind {
		case chess.EventPieceSelected, chess.EventMoveApplied:
			cues = append(cues, CueMove)
		case chess.EventMoveRejected:
			cues = append(cues, CueInvalid)
		case chess.EventPromotionRequired:
			cues = append(cues, CuePromote)
		case chess.EventPromotionApplied:
			cues = append(cues, CuePromoted)
		}
	}
	return cues
}

func (m *Machine) choose(ctx context.Context, i int) ([]chess.Event, []Cue, string, error) {
	menu := menuButtons[m.state]
	if i < 0 || i >= len(menu) {
		return nil, nil, "", fmt.Errorf("choice %d in %s: %w", i, m.state, ErrButtonNotOffered)
	}
	return m.press(ctx, menu[i])
}

func (m *Machine) press(ctx context.Context, b Button) ([]chess.Event, []Cue, string, error) {
	offered := false
	for _, x := range menuButtons[m.state] {
		if x == b {
			offered = true
			break
		}
	}
	if !offered {
		return nil, nil, "", fmt.Errorf("%s in %s: %w", b, m.state, ErrButtonNotOffered)
	}
	cues := []Cue{CueMenu}

	switch b {
	case ButtonStart, ButtonNewGame:
		ev := m.session.Reset()
		m.state = StatePlaying
		return []chess.Event{ev}, cues, "", nil
	case ButtonResume:
		m.state = StatePlaying
	case ButtonExit:
		m.state = StateExited
	case ButtonSave:
		slot, err := m.save(ctx, "")
		return nil, cues, slot, err
	case ButtonLoad:
		slot, err := m.load(ctx, "")
		if err != nil {
			return nil, cues, slot, err
		}
		return []chess.Event{{Kind: chess.EventReset}}, cues, slot, nil
	case ButtonQueen, ButtonKnight:
		// promotion buttons are named after the piece
		kind, _ := chess.ParsePieceKind(string(b))
		sq, _ := m.session.PendingPromotion()
		ev, err := m.session.ResolvePromotion(sq, kind)
		if err != nil {
			return nil, nil, "", err
		}
		m.state = StatePlaying
		return []chess.Event{ev}, append(cues, CuePromoted), "", nil
	}
	return nil, cues, "", nil
}

func (m *Machine) save(ctx context.Context, slot string) (string, error) {
	if m.store == nil {
		return "", ErrNoStore
	}
	switch m.state {
	case StatePromotion:
		m.status = m.catalog.Text("outcome.save_blocked", nil, "Finish the promotion before saving")
		return "", chess.ErrPromotionPending
	case StatePlaying, StatePaused:
	default:
		return "", fmt.Errorf("save in %s: %w", m.state, ErrNotPlaying)
	}
	slot = strings.TrimSpace(slot)
	if slot == "" {
		slot = store.NewSlotName()
	}
	slot, err := store.NormalizeSlot(slot)
	if err != nil {
		return "", err
	}
	if err := m.store.Save(ctx, slot, store.NewSnapshot(slot, m.session)); err != nil {
		obslog.L().Error("store_save", zap.String("slot", slot), zap.Error(err))
		return slot, fmt.Errorf("save %s: %w", slot, err)
	}
	m.lastSlot = slot
	m.status = m.catalog.Text("outcome.saved", map[string]any{"Slot": slot}, "Saved")
	obslog.L().Info("store_save", zap.String("slot", slot), zap.String("session", m.session.ID()))
	return slot, nil
}

func (m *Machine) load(ctx context.Context, slot string) (string, error) {
	if m.store == nil {
		return "", ErrNoStore
	}
	if m.state == StatePromotion {
		return "", chess.ErrPromotionPending
	}
	slot = strings.TrimSpace(slot)
	if slot == "" {
		slot = m.lastSlot
	}
	if slot == "" {
		return "", ErrNoSlot
	}
	snap, err := m.store.Load(ctx, slot)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			m.status = m.catalog.Text("outcome.not_found", map[string]any{"Slot": slot}, "Save not found")
		}
		return slot, fmt.Errorf("load %s: %w", slot, err)
	}
	if err := m.session.Restore(snap.Board, snap.SideToMove); err != nil {
		return slot, err
	}
	m.lastSlot = snap.Slot
	m.state = StatePlaying
	m.status = m.catalog.Text("outcome.loaded", map[string]any{"Slot": snap.Slot}, "Loaded")
	obslog.L().Info("store_load", zap.String("slot", snap.Slot), zap.String("snapshot", snap.ID))
	return snap.Slot, nil
}

func (m *Machine) banner() string {
	switch m.state {
	case StateMainMenu, StateExited:
		return m.catalog.Text("banner.title", nil, "Hot-Seat Chess")
	case StatePaused:
		return m.catalog.Text("banner.paused", nil, "Paused")
	case StatePromotion:
		sq, _ := m.session.PendingPromotion()
		return m.catalog.Text("banner.promotion", map[string]any{"Square": sq.String()}, "Promote the pawn")
	}
	side := m.session.SideToMove()
	name := m.catalog.Text("side."+side.String(), nil, side.String())
	return m.catalog.Text("banner.turn", map[string]any{"Side": name}, name+"'s Turn")
}

func (m *Machine) menu() *Menu {
	buttons := menuButtons[m.state]
	if len(buttons) == 0 {
		return nil
	}
	titleKey := map[State]string{
		StateMainMenu:  "menu.main",
		StatePaused:    "menu.paused",
		StatePromotion: "menu.promotion",
	}[m.state]
	menu := &Menu{
		Title:   m.catalog.Text(titleKey, nil, ""),
		Buttons: append([]Button(nil), buttons...),
		Labels:  make([]string, len(buttons)),
	}
	for i, b := range buttons {
		menu.Labels[i] = m.catalog.Text("button."+string(b), nil, string(b))
	}
	return menu
}
