package descriptor

import (
	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/kiln/fatal"
	"github.com/vkngwrapper/kiln/gpu/native"
)

// DefaultChunkSize is the number of descriptors in each native heap a CPUPool creates
const DefaultChunkSize = 1024

// CPUPool hands out single CPU-only descriptors of one kind
type CPUPool struct {
	creator   HeapCreator
	kind      native.DescriptorHeapKind
	chunkSize int

	chunks    []native.DescriptorHeap
	start     uint64
	increment uint64
	remaining int
	released  []uint64
}

func NewCPUPool(creator HeapCreator, kind native.DescriptorHeapKind, chunkSize int) (*CPUPool, error) {
	if kind == native.DescriptorHeapShader {
		return nil, errors.New("cpu descriptor pools hold render-target or depth-stencil descriptors")
	}
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}

	return &CPUPool{
		creator:   creator,
		kind:      kind,
		chunkSize: chunkSize,
	}, nil
}

// Allocate returns the most recently released descriptor, then the next free descriptor of the
// current chunk. When the chunk is used up, a new one is created.
func (p *CPUPool) Allocate() uint64 {
	if n := len(p.released); n > 0 {
		descriptor := p.released[n-1]
		p.released = p.released[:n-1]
		return descriptor
	}

	if len(p.chunks) > 0 && p.remaining > 0 {
		descriptor := p.start + p.increment*uint64(p.chunkSize-p.remaining)
		p.remaining--
		return descriptor
	}

	chunk, err := p.creator.CreateDescriptorHeap(p.kind, p.chunkSize)
	fatal.Must(err, "failed to create cpu descriptor chunk")

	p.chunks = append(p.chunks, chunk)
	p.start = chunk.CPUStart()
	p.increment = uint64(chunk.Increment())
	p.remaining = p.chunkSize - 1
	return p.start
}

func (p *CPUPool) Release(descriptor uint64) {
	p.released = append(p.released, descriptor)
}

// Chunks is the number of native heaps the pool has created
func (p *CPUPool) Chunks() int {
	return len(p.chunks)
}

func (p *CPUPool) Destroy() {
	for _, chunk := range p.chunks {
		chunk.Release()
	}
	p.chunks = nil
	p.released = nil
	p.remaining = 0
}
