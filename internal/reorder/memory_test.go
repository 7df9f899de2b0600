package reorder

import (
	"context"
	"sort"
)

type row struct {
	parent uint
	pos    int
}

// table mirrors a database table with a parent reference and a position.
type table struct {
	rows   map[uint]*row
	nextID uint
	shifts int
}

func newTable() *table {
	return &table{rows: make(map[uint]*row), nextID: 1}
}

// add appends a new sibling under parent and returns its id.
func (t *table) add(parent uint) uint {
	maxPos := -1
	for _, r := range t.rows {
		if r.parent == parent && r.pos > maxPos {
			maxPos = r.pos
		}
	}
	id := t.nextID
	t.nextID++
	t.rows[id] = &row{parent: parent, pos: Next(maxPos)}
	return id
}

func (t *table) fill(parent uint, n int) []uint {
	ids := make([]uint, 0, n)
	for i := 0; i < n; i++ {
		ids = append(ids, t.add(parent))
	}
	return ids
}

func (t *table) delete(ctx context.Context, id uint) error {
	r := t.rows[id]
	delete(t.rows, id)
	return Close(ctx, t.scope(r.parent), r.pos)
}

// order returns the ids of parent sorted by position.
func (t *table) order(parent uint) []uint {
	var ids []uint
	for id, r := range t.rows {
		if r.parent == parent {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return t.rows[ids[i]].pos < t.rows[ids[j]].pos })
	return ids
}

// positions returns the sorted positions of parent's children.
func (t *table) positions(parent uint) []int {
	var out []int
	for _, r := range t.rows {
		if r.parent == parent {
			out = append(out, r.pos)
		}
	}
	sort.Ints(out)
	return out
}

func (t *table) dense(parent uint) bool {
	for i, p := range t.positions(parent) {
		if p != i {
			return false
		}
	}
	return true
}

func (t *table) scope(parent uint) Scope {
	return &tableScope{t: t, parent: parent}
}

type tableScope struct {
	t      *table
	parent uint
}

func (s *tableScope) Count(ctx context.Context) (int, error) {
	n := 0
	for _, r := range s.t.rows {
		if r.parent == s.parent {
			n++
		}
	}
	return n, nil
}

func (s *tableScope) Position(ctx context.Context, id uint) (int, bool, error) {
	r, ok := s.t.rows[id]
	if !ok || r.parent != s.parent {
		return 0, false, nil
	}
	return r.pos, true, nil
}

func (s *tableScope) Shift(ctx context.Context, sh Shift) error {
	s.t.shifts++
	for _, r := range s.t.rows {
		if r.parent == s.parent && sh.Contains(r.pos) {
			r.pos += sh.Delta
		}
	}
	return nil
}

func (s *tableScope) Place(ctx context.Context, id uint, pos int) error {
	r := s.t.rows[id]
	r.parent = s.parent
	r.pos = pos
	return nil
}
