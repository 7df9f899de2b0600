package reorder

import (
	"context"
	"errors"
)

// ErrNotInScope is returned when an entity does not belong to the sibling set
// an operation was scoped to.
var ErrNotInScope = errors.New("entity not in sibling scope")

// Scope is one sibling set as seen by the storage layer. Implementations are
// expected to run inside a single transaction.
type Scope interface {
	// Count returns the number of siblings in the set.
	Count(ctx context.Context) (int, error)
	// Position returns the current position of id, or false when id is not
	// a member of the set.
	Position(ctx context.Context, id uint) (int, bool, error)
	// Shift applies s to the siblings of this set only.
	Shift(ctx context.Context, s Shift) error
	// Place sets the position of id and makes it a member of this set.
	Place(ctx context.Context, id uint, pos int) error
}

// MoveWithin moves id to pos inside s. The returned plan carries the clamped
// target; a no-op plan means nothing was written.
func MoveWithin(ctx context.Context, s Scope, id uint, pos int) (Plan, error) {
	from, ok, err := s.Position(ctx, id)
	if err != nil {
		return Plan{}, err
	}
	if !ok {
		return Plan{}, ErrNotInScope
	}
	n, err := s.Count(ctx)
	if err != nil {
		return Plan{}, err
	}
	plan := Move(from, pos, n)
	if plan.NoOp() {
		return plan, nil
	}
	return plan, apply(ctx, s, id, plan)
}

// Transfer moves id out of from and into to at pos. The source set closes its
// gap, the target set opens one. pos is clamped to [0, m] where m is the size
// of the target set before the transfer, so appending is allowed.
func Transfer(ctx context.Context, from, to Scope, id uint, pos int) (Plan, error) {
	old, ok, err := from.Position(ctx, id)
	if err != nil {
		return Plan{}, err
	}
	if !ok {
		return Plan{}, ErrNotInScope
	}

	leave := Remove(old)
	if err := from.Shift(ctx, leave); err != nil {
		return Plan{}, err
	}

	m, err := to.Count(ctx)
	if err != nil {
		return Plan{}, err
	}
	pos = Clamp(pos, m+1)
	enter := Insert(pos)
	if err := to.Shift(ctx, enter); err != nil {
		return Plan{}, err
	}
	if err := to.Place(ctx, id, pos); err != nil {
		return Plan{}, err
	}
	return Plan{From: old, To: pos, Shifts: []Shift{leave, enter}}, nil
}

// Close restores density after the sibling at pos was deleted.
func Close(ctx context.Context, s Scope, pos int) error {
	return s.Shift(ctx, Remove(pos))
}

func apply(ctx context.Context, s Scope, id uint, plan Plan) error {
	for _, sh := range plan.Shifts {
		if err := s.Shift(ctx, sh); err != nil {
			return err
		}
	}
	return s.Place(ctx, id, plan.To)
}
