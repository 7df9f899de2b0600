package reorder

import (
	"context"
	"fmt"
)

// Entry requests that the sibling ID end up at Position.
type Entry struct {
	ID       uint
	Position int
}

// Result summarizes an ApplyOrder run.
type Result struct {
	Moves   int
	Skipped []uint
}

// CollisionError reports two entries whose targets name the same slot once
// clamped to the scope. Index and Other are offsets into the entries passed
// to ApplyOrder.
type CollisionError struct {
	Index    int
	Other    int
	Position int
}

func (e *CollisionError) Error() string {
	return fmt.Sprintf("entries %d and %d both target position %d", e.Other, e.Index, e.Position)
}

// ApplyOrder applies a target ordering to s. Entries are processed in the
// order given; ids that are not members of s are skipped. Targets are clamped
// to the scope first, and two members landing on the same slot fail the call
// with a *CollisionError before anything is written.
//
// A single pass can displace an entity placed earlier in the same pass, so
// passes repeat until every named entity sits at its requested position. The
// number of passes is bounded by the number of entries, plus one pass to
// confirm the result.
func ApplyOrder(ctx context.Context, s Scope, entries []Entry) (Result, error) {
	var res Result
	n, err := s.Count(ctx)
	if err != nil {
		return res, err
	}

	members := make([]Entry, 0, len(entries))
	taken := make(map[int]int, len(entries))
	for i, e := range entries {
		_, ok, err := s.Position(ctx, e.ID)
		if err != nil {
			return res, err
		}
		if !ok {
			res.Skipped = append(res.Skipped, e.ID)
			continue
		}
		e.Position = Clamp(e.Position, n)
		if j, dup := taken[e.Position]; dup {
			return res, &CollisionError{Index: i, Other: j, Position: e.Position}
		}
		taken[e.Position] = i
		members = append(members, e)
	}

	for pass := 0; pass <= len(members); pass++ {
		settled := true
		for _, e := range members {
			from, ok, err := s.Position(ctx, e.ID)
			if err != nil {
				return res, err
			}
			if !ok {
				return res, fmt.Errorf("entity %d left the scope during reorder", e.ID)
			}
			plan := Move(from, e.Position, n)
			if plan.NoOp() {
				continue
			}
			if err := apply(ctx, s, e.ID, plan); err != nil {
				return res, err
			}
			settled = false
			res.Moves++
		}
		if settled {
			break
		}
	}
	return res, nil
}
