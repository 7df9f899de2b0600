// Package reorder keeps the positions of sibling entities (columns of a board,
// tasks of a column) dense: every sibling set holds exactly 0..n-1.
//
// Moves never renumber the whole set. They produce range shifts covering only
// the siblings between the old and the new slot, which the storage layer turns
// into single ranged UPDATE statements.
package reorder

import "math"

// Unbounded marks a shift range that runs to the end of the sibling set.
const Unbounded = math.MaxInt

// Shift adds Delta to the position of every sibling in [Min, Max].
type Shift struct {
	Min   int
	Max   int
	Delta int
}

// Contains reports whether pos falls inside the shifted range.
func (s Shift) Contains(pos int) bool {
	return pos >= s.Min && pos <= s.Max
}

// Plan is the outcome of moving one entity inside its sibling set.
type Plan struct {
	From   int
	To     int
	Shifts []Shift
}

// NoOp reports whether the plan leaves every position unchanged.
func (p Plan) NoOp() bool {
	return p.From == p.To && len(p.Shifts) == 0
}

// Clamp limits pos to the occupied slots [0, n-1] of a set of n siblings.
func Clamp(pos, n int) int {
	if n <= 0 || pos < 0 {
		return 0
	}
	if pos > n-1 {
		return n - 1
	}
	return pos
}

// Move plans moving the sibling at from to the slot to, inside a set of n
// siblings that includes the moved one. Targets past the end are clamped to
// the last slot.
func Move(from, to, n int) Plan {
	to = Clamp(to, n)
	p := Plan{From: from, To: to}
	switch {
	case to < from:
		// open a gap at to by pushing [to, from) forward
		p.Shifts = []Shift{{Min: to, Max: from - 1, Delta: 1}}
	case to > from:
		// close the gap left at from by pulling (from, to] back
		p.Shifts = []Shift{{Min: from + 1, Max: to, Delta: -1}}
	}
	return p
}

// Remove returns the shift that closes the gap left by a sibling leaving pos.
func Remove(pos int) Shift {
	return Shift{Min: pos + 1, Max: Unbounded, Delta: -1}
}

// Insert returns the shift that opens a gap at pos for an incoming sibling.
func Insert(pos int) Shift {
	return Shift{Min: pos, Max: Unbounded, Delta: 1}
}

// Next returns the append position given the highest position in use, or a
// negative value when the set is empty.
func Next(maxPos int) int {
	if maxPos < 0 {
		return 0
	}
	return maxPos + 1
}
