package chess

import (
	"fmt"
	"slices"

	"github.com/google/uuid"
)

// PromotionChoices are the kinds a pawn may become.
var PromotionChoices = []PieceKind{Queen, Knight}

// StartingSide moves first in every new game.
const StartingSide = White

// EventKind classifies what a session input did.
type EventKind uint8

const (
	EventNoOp EventKind = iota
	EventPieceSelected
	EventMoveRejected
	EventMoveApplied
	EventPromotionRequired
	EventPromotionApplied
	EventReset
)

func (k EventKind) String() string {
	switch k {
	case EventPieceSelected:
		return "piece_selected"
	case EventMoveRejected:
		return "move_rejected"
	case EventMoveApplied:
		return "move_applied"
	case EventPromotionRequired:
		return "promotion_required"
	case EventPromotionApplied:
		return "promotion_applied"
	case EventReset:
		return "reset"
	default:
		return "noop"
	}
}

// Event is one outcome emitted by Session. Fields that do not apply to Kind are zero.
type Event struct {
	Kind     EventKind
	From     Position
	To       Position
	Piece    Square // piece selected, moved or promoted
	Captured Square // occupant removed by a move
}

// Move is a completed from/to pair.
type Move struct {
	From Position
	To   Position
}

// Session is one game: board, turn, selection and pending promotion.
// It is not safe for concurrent use; feed it from a single goroutine.
type Session struct {
	id        string
	board     Board
	turn      Color
	validator Validator

	selected  bool
	selection Position

	promoting bool
	promotion Position

	lastMove *Move
	moves    int
}

// Option configures a Session.
type Option func(*Session)

// WithValidator replaces the default rules.
func WithValidator(v Validator) Option {
	return func(s *Session) { s.validator = v }
}

// WithID fixes the session id instead of generating one.
func WithID(id string) Option {
	return func(s *Session) { s.id = id }
}

func NewSession(opts ...Option) *Session {
	s := &Session{
		id:    uuid.NewString(),
		board: Initial(),
		turn:  StartingSide,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Session) ID() string { return s.id }

func (s *Session) SideToMove() Color { return s.turn }

func (s *Session) MoveCount() int { return s.moves }

// Board returns a copy of the current board.
func (s *Session) Board() Board { return s.board }

// Selection returns the square picked by the first click, if any.
func (s *Session) Selection() (Position, bool) { return s.selection, s.selected }

// PendingPromotion returns the square awaiting a promotion choice, if any.
func (s *Session) PendingPromotion() (Position, bool) { return s.promotion, s.promoting }

// LastMove returns the most recent applied move, or nil.
func (s *Session) LastMove() *Move {
	if s.lastMove == nil {
		return nil
	}
	m := *s.lastMove
	return &m
}

// Click interprets a square click against the current selection.
func (s *Session) Click(pos Position) ([]Event, error) {
	if !pos.Valid() {
		return nil, fmt.Errorf("click %s: %w", pos, ErrOutOfBounds)
	}
	// 승급 선택 중에는 보드 클릭을 무시한다
	if s.promoting {
		return []Event{{Kind: EventNoOp, To: pos}}, nil
	}

	if !s.selected {
		sq := s.board.At(pos)
		if !sq.Holds(s.turn) {
			return []Event{{Kind: EventNoOp, To: pos}}, nil
		}
		s.selected, s.selection = true, pos
		return []Event{{Kind: EventPieceSelected, From: pos, Piece: sq}}, nil
	}

	from := s.selection
	s.selected, s.selection = false, Position{}
	mover := s.board.At(from)

	result := s.validator.Validate(&s.board, from, pos)
	if !result.OK() {
		return []Event{{Kind: EventMoveRejected, From: from, To: pos, Piece: mover}}, nil
	}

	captured := s.board.At(pos)
	s.board.Set(pos, mover)
	s.board.Set(from, Empty)
	s.turn = s.turn.Opposite()
	s.lastMove = &Move{From: from, To: pos}
	s.moves++

	events := []Event{{Kind: EventMoveApplied, From: from, To: pos, Piece: mover, Captured: captured}}
	if result == LegalWithPromotion {
		s.promoting, s.promotion = true, pos
		events = append(events, Event{Kind: EventPromotionRequired, To: pos, Piece: mover})
	}
	return events, nil
}

// ResolvePromotion replaces the pending pawn with kind, keeping its color.
func (s *Session) ResolvePromotion(square Position, kind PieceKind) (Event, error) {
	if !s.promoting {
		return Event{}, ErrNoPendingPromotion
	}
	if square != s.promotion {
		return Event{}, fmt.Errorf("resolve %s, pending %s: %w", square, s.promotion, ErrPromotionSquare)
	}
	if !slices.Contains(PromotionChoices, kind) {
		return Event{}, fmt.Errorf("resolve as %q: %w", kind, ErrPromotionKind)
	}
	pawn := s.board.At(square)
	promoted := Occupied(pawn.Color, kind)
	s.board.Set(square, promoted)
	s.promoting, s.promotion = false, Position{}
	return Event{Kind: EventPromotionApplied, To: square, Piece: promoted}, nil
}

// Reset starts a new game on the same session.
func (s *Session) Reset() Event {
	s.board.Reset()
	s.turn = StartingSide
	s.selected, s.selection = false, Position{}
	s.promoting, s.promotion = false, Position{}
	s.lastMove = nil
	s.moves = 0
	return Event{Kind: EventReset}
}

// Restore replaces the board and side to move, e.g. after loading a save.
func (s *Session) Restore(b Board, turn Color) error {
	if turn != White && turn != Black {
		return fmt.Errorf("restore side %s: %w", turn, ErrInvalidSnapshot)
	}
	s.board = b
	s.turn = turn
	s.selected, s.selection = false, Position{}
	s.promoting, s.promotion = false, Position{}
	s.lastMove = nil
	s.moves = 0
	return nil
}
