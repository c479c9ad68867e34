package store

import (
	"context"
	"errors"
	"sort"

	"github.com/hashicorp/go-multierror"
	"go.uber.org/zap"

	"github.com/park285/cheese-hotseat/internal/obslog"
)

// Multi saves to every backend and loads from the first one that has the slot.
// Order matters: put the cheapest or most authoritative store first.
type Multi []Store

func (m Multi) Save(ctx context.Context, slot string, snap Snapshot) error {
	var errs error
	saved := 0
	for _, s := range m {
		if err := s.Save(ctx, slot, snap); err != nil {
			errs = multierror.Append(errs, err)
			continue
		}
		saved++
	}
	if saved == 0 {
		if errs == nil {
			return errors.New("no save backends configured")
		}
		return errs
	}
	if errs != nil {
		obslog.L().Warn("store_save_partial", zap.String("slot", slot), zap.Int("saved", saved), zap.Error(errs))
	}
	return nil
}

func (m Multi) Load(ctx context.Context, slot string) (Snapshot, error) {
	var errs error
	for _, s := range m {
		snap, err := s.Load(ctx, slot)
		if err == nil {
			return snap, nil
		}
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if errors.Is(err, ErrInvalidSlot) {
			return Snapshot{}, err
		}
		errs = multierror.Append(errs, err)
	}
	if errs != nil {
		return Snapshot{}, errs
	}
	return Snapshot{}, ErrNotFound
}

// Slots merges the slot names of every backend that can list them.
func (m Multi) Slots(ctx context.Context) ([]string, error) {
	seen := make(map[string]struct{})
	var errs error
	listed := 0
	for _, s := range m {
		l, ok := s.(Lister)
		if !ok {
			continue
		}
		slots, err := l.Slots(ctx)
		if err != nil {
			errs = multierror.Append(errs, err)
			continue
		}
		listed++
		for _, slot := range slots {
			seen[slot] = struct{}{}
		}
	}
	if listed == 0 && errs != nil {
		return nil, errs
	}
	out := make([]string, 0, len(seen))
	for slot := range seen {
		out = append(out, slot)
	}
	sort.Strings(out)
	return out, nil
}
