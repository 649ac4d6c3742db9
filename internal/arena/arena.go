// Package arena implements fixed-capacity index-cursor allocators used for
// shader-visible descriptor scratch space.
package arena

import "errors"

// ErrExhausted is returned when an allocation does not fit in the
// remaining capacity. Arenas never grow.
var ErrExhausted = errors.New("arena: capacity exhausted")

// Range is a contiguous block of slots [Offset, Offset+Count).
type Range struct {
	Offset uint32
	Count  uint32
}

// End returns the slot one past the block.
func (r Range) End() uint32 { return r.Offset + r.Count }

// Arena hands out contiguous slot ranges by bumping a cursor. Every slot
// in [0, Capacity) is usable. Reset rewinds the cursor; blocks handed out
// before Reset must no longer be referenced by pending GPU work.
//
// Arena is not safe for concurrent use. Each command buffer owns its own.
type Arena struct {
	capacity uint32
	cursor   uint32
	peak     uint32
}

// New creates an arena with capacity slots.
func New(capacity uint32) *Arena {
	return &Arena{capacity: capacity}
}

// Allocate reserves count contiguous slots. A zero count returns an empty
// range at the cursor.
func (a *Arena) Allocate(count uint32) (Range, error) {
	if count > a.capacity-a.cursor {
		return Range{}, ErrExhausted
	}
	r := Range{Offset: a.cursor, Count: count}
	a.cursor += count
	if a.cursor > a.peak {
		a.peak = a.cursor
	}
	return r, nil
}

// Reset rewinds the cursor to zero.
func (a *Arena) Reset() {
	a.cursor = 0
}

// Capacity returns the fixed slot count.
func (a *Arena) Capacity() uint32 { return a.capacity }

// Used returns the number of slots allocated since the last Reset.
func (a *Arena) Used() uint32 { return a.cursor }

// Remaining returns the number of free slots.
func (a *Arena) Remaining() uint32 { return a.capacity - a.cursor }

// Peak returns the highest cursor observed over the arena's lifetime.
func (a *Arena) Peak() uint32 { return a.peak }

// Utilization returns Used/Capacity in [0, 1].
func (a *Arena) Utilization() float64 {
	if a.capacity == 0 {
		return 0
	}
	return float64(a.cursor) / float64(a.capacity)
}
