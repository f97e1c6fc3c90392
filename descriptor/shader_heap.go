// Package descriptor hands out descriptor ranges. ShaderHeap carves tables out of the single
// shader-visible heap; CPUPool hands out single render-target or depth-stencil descriptors from
// chunks it grows on demand.
package descriptor

import (
	"github.com/cockroachdb/errors"
	"github.com/dolthub/swiss"
	"github.com/vkngwrapper/kiln/fatal"
	"github.com/vkngwrapper/kiln/gpu/native"
)

// DefaultShaderHeapSize is the number of descriptors in the shader-visible heap
const DefaultShaderHeapSize = 1_000_000

// HeapCreator is the part of native.Device descriptor allocation needs
type HeapCreator interface {
	CreateDescriptorHeap(kind native.DescriptorHeapKind, count int) (native.DescriptorHeap, error)
}

// Table is a contiguous range of shader-visible descriptors
type Table struct {
	CPU       uint64
	GPU       uint64
	Count     uint32
	Increment uint32
	// capacity is the size of the range when it was first carved out. A recycled table keeps it.
	capacity uint32
}

// CPUAt is the CPU handle of descriptor index inside the table
func (t Table) CPUAt(index uint32) uint64 {
	fatal.Check(index < t.Count, "descriptor %d is outside a table of %d", index, t.Count)
	return t.CPU + uint64(index)*uint64(t.Increment)
}

// GPUAt is the GPU handle of descriptor index inside the table
func (t Table) GPUAt(index uint32) uint64 {
	fatal.Check(index < t.Count, "descriptor %d is outside a table of %d", index, t.Count)
	return t.GPU + uint64(index)*uint64(t.Increment)
}

func (t Table) IsNull() bool {
	return t.Count == 0
}

type ShaderHeap struct {
	heap      native.DescriptorHeap
	increment uint32
	count     uint32
	offset    uint32

	released []Table
	// live maps the GPU start of every table in use to its capacity
	live *swiss.Map[uint64, uint32]
}

func NewShaderHeap(creator HeapCreator, count int) (*ShaderHeap, error) {
	if count <= 0 {
		count = DefaultShaderHeapSize
	}

	heap, err := creator.CreateDescriptorHeap(native.DescriptorHeapShader, count)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to create shader-visible descriptor heap of %d descriptors", count)
	}

	return &ShaderHeap{
		heap:      heap,
		increment: heap.Increment(),
		count:     uint32(count),
		live:      swiss.NewMap[uint64, uint32](64),
	}, nil
}

// Native is the heap command lists bind before setting descriptor tables
func (h *ShaderHeap) Native() native.DescriptorHeap { return h.heap }

func (h *ShaderHeap) Increment() uint32 { return h.increment }

// Allocate returns a table of count descriptors. The first released table with enough room is
// reused whole; otherwise the table is bumped off the end of the heap. Running out is fatal.
func (h *ShaderHeap) Allocate(count uint32) Table {
	for index, table := range h.released {
		if table.capacity < count {
			continue
		}

		h.released = append(h.released[:index], h.released[index+1:]...)
		table.Count = count
		h.live.Put(table.GPU, table.capacity)
		return table
	}

	fatal.Check(uint64(h.offset)+uint64(count) <= uint64(h.count),
		"shader descriptor heap exhausted: %d of %d in use, %d requested", h.offset, h.count, count)

	base := uint64(h.offset) * uint64(h.increment)
	h.offset += count

	table := Table{
		CPU:       h.heap.CPUStart() + base,
		GPU:       h.heap.GPUStart() + base,
		Count:     count,
		Increment: h.increment,
		capacity:  count,
	}
	h.live.Put(table.GPU, table.capacity)
	return table
}

// Release returns table to the heap. Releasing a table twice is fatal.
func (h *ShaderHeap) Release(table Table) {
	capacity, ok := h.live.Get(table.GPU)
	fatal.Check(ok, "descriptor table at %#x is not live", table.GPU)

	h.live.Delete(table.GPU)
	table.capacity = capacity
	h.released = append(h.released, table)
}

// Live is the number of tables that have been allocated and not released
func (h *ShaderHeap) Live() int {
	return h.live.Count()
}

// Offset is the bump offset in descriptors
func (h *ShaderHeap) Offset() uint32 {
	return h.offset
}

func (h *ShaderHeap) Destroy() {
	h.heap.Release()
	h.released = nil
	h.live = nil
}
