// Package pool provides the fixed-capacity slot tables the device uses to map opaque handles to
// native objects.
package pool

import (
	"github.com/vkngwrapper/kiln/fatal"
)

// DefaultCapacity is the slot count used when a pool is created with a capacity of 0
const DefaultCapacity = 1 << 16

// Pool is a fixed-capacity slot array. Add reuses the most recently released slot before bumping
// the high-water mark. Handles carry no generation, so holding a handle past Remove is a caller bug
// the pool cannot detect.
type Pool[T any] struct {
	slots    []T
	released []uint32
	offset   uint32
	live     int
}

func New[T any](capacity int) *Pool[T] {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}

	return &Pool[T]{
		slots: make([]T, capacity),
	}
}

// Add stores value and returns its handle. Running out of slots is fatal.
func (p *Pool[T]) Add(value T) uint32 {
	var index uint32
	if n := len(p.released); n > 0 {
		index = p.released[n-1]
		p.released = p.released[:n-1]
	} else {
		fatal.Check(int(p.offset) < len(p.slots), "resource pool exhausted: capacity %d", len(p.slots))
		index = p.offset
		p.offset++
	}

	p.slots[index] = value
	p.live++
	return index
}

// Get returns a pointer to the slot for handle. The pointer stays valid for the life of the pool.
func (p *Pool[T]) Get(handle uint32) *T {
	fatal.Check(handle < p.offset, "resource pool handle %d was never allocated (high-water mark %d)", handle, p.offset)
	return &p.slots[handle]
}

// Remove releases handle for reuse. The slot's value is cleared.
func (p *Pool[T]) Remove(handle uint32) {
	fatal.Check(handle < p.offset, "resource pool handle %d was never allocated (high-water mark %d)", handle, p.offset)

	var zero T
	p.slots[handle] = zero
	p.released = append(p.released, handle)
	p.live--
}

// Len is the number of live slots
func (p *Pool[T]) Len() int {
	return p.live
}

func (p *Pool[T]) Cap() int {
	return len(p.slots)
}

// HighWaterMark is the number of slots that have ever been handed out
func (p *Pool[T]) HighWaterMark() int {
	return int(p.offset)
}
