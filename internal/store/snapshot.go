package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"

	petname "github.com/dustinkirkland/golang-petname"
	"github.com/google/uuid"

	"github.com/park285/cheese-hotseat/internal/chess"
)

var (
	ErrNotFound    = errors.New("save slot not found")
	ErrInvalidSlot = errors.New("invalid save slot name")
)

// Snapshot is a saved position. Selection and pending promotion are never saved.
type Snapshot struct {
	ID         string
	Slot       string
	Board      chess.Board
	SideToMove chess.Color
	SavedAt    time.Time
}

// Store persists snapshots by slot name.
type Store interface {
	Save(ctx context.Context, slot string, snap Snapshot) error
	Load(ctx context.Context, slot string) (Snapshot, error)
}

// Lister is implemented by stores that can enumerate their slots.
type Lister interface {
	Slots(ctx context.Context) ([]string, error)
}

// NewSnapshot captures the session's board and turn.
func NewSnapshot(slot string, s *chess.Session) Snapshot {
	return Snapshot{
		ID:         uuid.NewString(),
		Slot:       slot,
		Board:      s.Board(),
		SideToMove: s.SideToMove(),
		SavedAt:    time.Now().UTC(),
	}
}

// record is the on-disk and on-wire form shared by every backend.
type record struct {
	ID      string    `json:"id" yaml:"id"`
	Slot    string    `json:"slot" yaml:"slot"`
	Side    string    `json:"side" yaml:"side"`
	Rows    []string  `json:"rows" yaml:"rows"`
	SavedAt time.Time `json:"savedAt" yaml:"saved_at"`
}

func toRecord(s Snapshot) record {
	return record{
		ID:      s.ID,
		Slot:    s.Slot,
		Side:    s.SideToMove.String(),
		Rows:    chess.EncodeRows(s.Board),
		SavedAt: s.SavedAt,
	}
}

func fromRecord(r record) (Snapshot, error) {
	b, err := chess.DecodeRows(r.Rows)
	if err != nil {
		return Snapshot{}, err
	}
	side, ok := chess.ParseColor(r.Side)
	if !ok {
		return Snapshot{}, fmt.Errorf("side %q: %w", r.Side, chess.ErrInvalidSnapshot)
	}
	return Snapshot{ID: r.ID, Slot: r.Slot, Board: b, SideToMove: side, SavedAt: r.SavedAt}, nil
}

// NormalizeSlot lowercases the slot and checks it is safe as a file name and key suffix.
func NormalizeSlot(slot string) (string, error) {
	s := strings.ToLower(strings.TrimSpace(slot))
	if s == "" || len(s) > 64 {
		return "", fmt.Errorf("%q: %w", slot, ErrInvalidSlot)
	}
	for _, r := range s {
		if r > unicode.MaxASCII || !(unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '_') {
			return "", fmt.Errorf("%q: %w", slot, ErrInvalidSlot)
		}
	}
	return s, nil
}

// NewSlotName returns a random readable slot such as "brave-otter".
func NewSlotName() string {
	return petname.Generate(2, "-")
}
