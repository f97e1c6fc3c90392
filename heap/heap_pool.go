package heap

import (
	"context"
	"strconv"

	"github.com/cockroachdb/errors"
	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
	"github.com/vkngwrapper/kiln/fatal"
	"github.com/vkngwrapper/kiln/gpu/native"
	"github.com/vkngwrapper/kiln/memutils"
	"golang.org/x/exp/slog"
)

type heapBlock struct {
	native native.Heap
	tail   int
	refs   int
}

type placement struct {
	heap   int
	offset int
	size   int
	refs   int
	// retired placements were reclaimed by the tail and only hold an arena slot
	retired bool
}

// heapPool hands out placements from a list of equally sized heaps of one class
type heapPool struct {
	logger   *slog.Logger
	class    native.HeapClass
	provider native.HeapProvider
	heapSize int

	heaps      []heapBlock
	placements []placement
	retired    []uint32
}

func (p *heapPool) Init(logger *slog.Logger, class native.HeapClass, provider native.HeapProvider, heapSize int) {
	p.logger = logger
	p.class = class
	p.provider = provider
	p.heapSize = heapSize
}

func (p *heapPool) Allocate(size, alignment int) (uint32, error) {
	fatal.Check(size <= p.heapSize, "%s placement of %d bytes exceeds the heap size of %d bytes", p.class, size, p.heapSize)
	if alignment < 1 {
		alignment = 1
	}

	for index := range p.placements {
		candidate := &p.placements[index]
		if candidate.retired || candidate.refs != 0 {
			continue
		}

		if size <= candidate.size && candidate.offset%alignment == 0 {
			candidate.refs++
			p.heaps[candidate.heap].refs++
			return uint32(index), nil
		}
	}

	for heapIndex := range p.heaps {
		heap := &p.heaps[heapIndex]
		offset := memutils.AlignUp(heap.tail, alignment)
		if offset+size <= p.heapSize {
			heap.tail = offset + size
			return p.createPlacement(heapIndex, offset, size), nil
		}
	}

	heapIndex, err := p.createHeap()
	if err != nil {
		return 0, err
	}

	p.heaps[heapIndex].tail = size
	return p.createPlacement(heapIndex, 0, size), nil
}

func (p *heapPool) Deallocate(index uint32) {
	fatal.Check(int(index) < len(p.placements), "%s placement %d does not exist", p.class, index)
	alloc := &p.placements[index]
	fatal.Check(!alloc.retired && alloc.refs > 0, "%s placement %d was deallocated twice", p.class, index)

	alloc.refs--
	if alloc.refs > 0 {
		return
	}

	heap := &p.heaps[alloc.heap]
	fatal.Check(heap.refs > 0, "%s heap %d has no live placements to release", p.class, alloc.heap)
	heap.refs--

	if alloc.offset+alloc.size == heap.tail {
		heap.tail -= alloc.size
		alloc.retired = true
		p.retired = append(p.retired, index)
	}
}

func (p *heapPool) createPlacement(heap, offset, size int) uint32 {
	p.heaps[heap].refs++

	alloc := placement{
		heap:   heap,
		offset: offset,
		size:   size,
		refs:   1,
	}

	if n := len(p.retired); n > 0 {
		index := p.retired[n-1]
		p.retired = p.retired[:n-1]
		p.placements[index] = alloc
		return index
	}

	p.placements = append(p.placements, alloc)
	return uint32(len(p.placements) - 1)
}

func (p *heapPool) createHeap() (int, error) {
	heap, err := p.provider.CreateHeap(p.class, p.heapSize)
	if err != nil {
		return 0, errors.Wrapf(err, "failed to create %s heap of %d bytes", p.class, p.heapSize)
	}

	p.heaps = append(p.heaps, heapBlock{native: heap})
	p.logger.LogAttrs(context.Background(), slog.LevelDebug, "created heap",
		slog.String("class", p.class.String()),
		slog.Int("heap", len(p.heaps)-1),
		slog.Int("size", p.heapSize),
	)

	return len(p.heaps) - 1, nil
}

func (p *heapPool) AddDetailedStatistics(stats *memutils.DetailedStatistics) {
	for _, heap := range p.heaps {
		stats.AddHeap(p.heapSize, heap.tail)
	}

	for _, alloc := range p.placements {
		if alloc.retired {
			continue
		}

		if alloc.refs == 0 {
			stats.AddReleasedPlacement()
			continue
		}

		stats.AddPlacement(alloc.size)
	}
}

func (p *heapPool) PrintDetailedMap(json *jwriter.ObjectState) {
	for heapIndex, heap := range p.heaps {
		heapObj := json.Name(p.class.String() + "/" + strconv.Itoa(heapIndex)).Object()
		heapObj.Name("TotalBytes").Int(p.heapSize)
		heapObj.Name("Tail").Int(heap.tail)
		heapObj.Name("References").Int(heap.refs)

		arrayState := heapObj.Name("Placements").Array()
		for _, alloc := range p.placements {
			if alloc.retired || alloc.heap != heapIndex {
				continue
			}

			obj := arrayState.Object()
			obj.Name("Offset").Int(alloc.offset)
			obj.Name("Size").Int(alloc.size)
			obj.Name("Released").Bool(alloc.refs == 0)
			obj.End()
		}
		arrayState.End()

		heapObj.End()
	}
}

// checkLeaks logs every placement that is still live
func (p *heapPool) checkLeaks() error {
	leaked := 0
	for index, alloc := range p.placements {
		if alloc.retired || alloc.refs == 0 {
			continue
		}

		leaked++
		p.logger.LogAttrs(context.Background(), slog.LevelError, "[UNRELEASED MEMORY] unfreed placement",
			slog.Int("placement", index),
			slog.Int("offset", alloc.offset),
			slog.Int("size", alloc.size),
			slog.String("class", p.class.String()),
			slog.Int("heap", alloc.heap),
		)
	}

	if leaked > 0 {
		return errors.Wrapf(ErrUnreleasedPlacements, "%d %s placements", leaked, p.class)
	}
	return nil
}

func (p *heapPool) Destroy() {
	for _, heap := range p.heaps {
		heap.native.Release()
	}
	p.heaps = nil
	p.placements = nil
	p.retired = nil
}

func (p *heapPool) Validate() error {
	liveRefs := make([]int, len(p.heaps))
	for index, alloc := range p.placements {
		if alloc.retired {
			continue
		}

		if alloc.heap >= len(p.heaps) {
			return errors.Newf("placement %d refers to heap %d, but there are only %d heaps", index, alloc.heap, len(p.heaps))
		}
		if alloc.offset+alloc.size > p.heaps[alloc.heap].tail {
			return errors.Newf("placement %d ends at %d, past the tail of heap %d (%d)", index, alloc.offset+alloc.size, alloc.heap, p.heaps[alloc.heap].tail)
		}
		if alloc.refs > 0 {
			liveRefs[alloc.heap]++
		}

		for otherIndex := index + 1; otherIndex < len(p.placements); otherIndex++ {
			other := p.placements[otherIndex]
			if other.retired || other.heap != alloc.heap {
				continue
			}

			if memutils.RangesOverlap(alloc.offset, alloc.size, other.offset, other.size) {
				return errors.Newf("placements %d and %d overlap in heap %d", index, otherIndex, alloc.heap)
			}
		}
	}

	for heapIndex, heap := range p.heaps {
		if heap.tail > p.heapSize {
			return errors.Newf("heap %d tail %d is past its size %d", heapIndex, heap.tail, p.heapSize)
		}
		if heap.refs != liveRefs[heapIndex] {
			return errors.Newf("heap %d has %d references but %d live placements", heapIndex, heap.refs, liveRefs[heapIndex])
		}
	}

	return nil
}
