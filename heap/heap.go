// Package heap places GPU resources inside large, fixed-size native heaps. Each heap class keeps
// its own list of heaps; a placement is found by rescanning released placements, then bumping the
// tail of an existing heap, then creating a new heap.
package heap

import (
	"github.com/cockroachdb/errors"
	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
	"github.com/vkngwrapper/kiln/fatal"
	"github.com/vkngwrapper/kiln/gpu/native"
	"github.com/vkngwrapper/kiln/internal/utils"
	"github.com/vkngwrapper/kiln/memutils"
	"golang.org/x/exp/slog"
)

// DefaultHeapSize is the size of every native heap when Options.HeapSize is left at 0
const DefaultHeapSize = 1 << 28

// ErrUnreleasedPlacements is returned from Destroy when placements are still live
var ErrUnreleasedPlacements = errors.New("placements were not released before the allocator was destroyed")

type Options struct {
	// HeapSize is the byte size of every heap created by the allocator
	HeapSize int
	// Synchronized guards the allocator with a mutex. Leave it off when a single thread owns the
	// allocator.
	Synchronized bool
}

// Placement identifies one sub-range of a heap. It is an index into the allocator's placement
// arena for its class, so it must not be used after it has been deallocated.
type Placement struct {
	Class native.HeapClass
	index uint32
}

// Info describes where a placement lives
type Info struct {
	Heap       int
	NativeHeap native.Heap
	Offset     int
	Size       int
	References int
}

type Allocator struct {
	logger   *slog.Logger
	mutex    utils.OptionalRWMutex
	heapSize int
	pools    [native.HeapClassCount]heapPool
}

func New(logger *slog.Logger, provider native.HeapProvider, options Options) (*Allocator, error) {
	if logger == nil {
		return nil, errors.New("logger must not be nil")
	}
	if provider == nil {
		return nil, errors.New("heap provider must not be nil")
	}

	heapSize := options.HeapSize
	if heapSize == 0 {
		heapSize = DefaultHeapSize
	}
	if heapSize < 0 {
		return nil, errors.Newf("heap size %d is negative", heapSize)
	}

	allocator := &Allocator{
		logger:   logger,
		heapSize: heapSize,
	}
	allocator.mutex.Enabled = options.Synchronized

	for class := range allocator.pools {
		allocator.pools[class].Init(logger, native.HeapClass(class), provider, heapSize)
	}

	return allocator, nil
}

// HeapSize is the byte size of every heap
func (a *Allocator) HeapSize() int { return a.heapSize }

// Allocate finds room for a resource of the given footprint in a heap of class. A footprint larger
// than a whole heap is fatal; failure to create a new native heap is returned.
func (a *Allocator) Allocate(class native.HeapClass, size, alignment int) (Placement, error) {
	fatal.Check(class < native.HeapClassCount, "unknown heap class %d", class)
	memutils.DebugCheckPow2(alignment, "placement alignment")

	a.mutex.Lock()
	defer a.mutex.Unlock()

	pool := &a.pools[class]
	index, err := pool.Allocate(size, alignment)
	if err != nil {
		return Placement{}, err
	}

	memutils.DebugValidate(pool)
	return Placement{Class: class, index: index}, nil
}

// Deallocate releases one reference to the placement. When the last reference goes away the heap
// loses a reference as well, and if the placement sat at the heap's tail, the tail retracts.
func (a *Allocator) Deallocate(placement Placement) {
	fatal.Check(placement.Class < native.HeapClassCount, "unknown heap class %d", placement.Class)

	a.mutex.Lock()
	defer a.mutex.Unlock()

	pool := &a.pools[placement.Class]
	pool.Deallocate(placement.index)
	memutils.DebugValidate(pool)
}

func (a *Allocator) Info(placement Placement) Info {
	a.mutex.RLock()
	defer a.mutex.RUnlock()

	pool := &a.pools[placement.Class]
	fatal.Check(int(placement.index) < len(pool.placements), "%s placement %d does not exist", placement.Class, placement.index)
	alloc := pool.placements[placement.index]

	return Info{
		Heap:       alloc.heap,
		NativeHeap: pool.heaps[alloc.heap].native,
		Offset:     alloc.offset,
		Size:       alloc.size,
		References: alloc.refs,
	}
}

// HeapCount is the number of native heaps created for class
func (a *Allocator) HeapCount(class native.HeapClass) int {
	a.mutex.RLock()
	defer a.mutex.RUnlock()

	return len(a.pools[class].heaps)
}

// HeapTail is the bump offset of one heap of class
func (a *Allocator) HeapTail(class native.HeapClass, heap int) int {
	a.mutex.RLock()
	defer a.mutex.RUnlock()

	return a.pools[class].heaps[heap].tail
}

// HeapReferences is the number of live placements in one heap of class
func (a *Allocator) HeapReferences(class native.HeapClass, heap int) int {
	a.mutex.RLock()
	defer a.mutex.RUnlock()

	return a.pools[class].heaps[heap].refs
}

// CalculateStatistics fills stats with totals across every heap class. perClass, if not nil,
// receives one entry per class.
func (a *Allocator) CalculateStatistics(stats *memutils.DetailedStatistics, perClass []memutils.DetailedStatistics) {
	a.mutex.RLock()
	defer a.mutex.RUnlock()

	stats.Clear()
	for class := range a.pools {
		var classStats memutils.DetailedStatistics
		classStats.Clear()
		a.pools[class].AddDetailedStatistics(&classStats)

		if class < len(perClass) {
			perClass[class] = classStats
		}
		stats.AddDetailedStatistics(&classStats)
	}
}

// BuildStatsString returns a JSON document with the allocator totals. When detailedMap is set the
// document also lists every heap and placement.
func (a *Allocator) BuildStatsString(detailedMap bool) string {
	var total memutils.DetailedStatistics
	perClass := make([]memutils.DetailedStatistics, native.HeapClassCount)
	a.CalculateStatistics(&total, perClass)

	writer := jwriter.NewWriter()
	a.PrintStats(&writer, &total, perClass, detailedMap)
	return string(writer.Bytes())
}

// PrintStats writes the allocator statistics as one JSON object into writer
func (a *Allocator) PrintStats(writer *jwriter.Writer, total *memutils.DetailedStatistics, perClass []memutils.DetailedStatistics, detailedMap bool) {
	obj := writer.Object()
	defer obj.End()

	a.WriteStats(&obj, total, perClass, detailedMap)
}

// WriteStats writes the allocator statistics as members of an object that is already open, so
// callers can nest them inside a larger document
func (a *Allocator) WriteStats(obj *jwriter.ObjectState, total *memutils.DetailedStatistics, perClass []memutils.DetailedStatistics, detailedMap bool) {
	totalObj := obj.Name("Total").Object()
	printStatistics(&totalObj, total)
	totalObj.End()

	classesObj := obj.Name("HeapClasses").Object()
	for class := range perClass {
		classObj := classesObj.Name(native.HeapClass(class).String()).Object()
		printStatistics(&classObj, &perClass[class])
		classObj.End()
	}
	classesObj.End()

	if !detailedMap {
		return
	}

	a.mutex.RLock()
	defer a.mutex.RUnlock()

	mapObj := obj.Name("DetailedMap").Object()
	for class := range a.pools {
		a.pools[class].PrintDetailedMap(&mapObj)
	}
	mapObj.End()
}

func printStatistics(json *jwriter.ObjectState, stats *memutils.DetailedStatistics) {
	json.Name("HeapCount").Int(stats.HeapCount)
	json.Name("HeapBytes").Int(stats.HeapBytes)
	json.Name("PlacementCount").Int(stats.PlacementCount)
	json.Name("PlacementBytes").Int(stats.PlacementBytes)
	json.Name("ReleasedPlacementCount").Int(stats.ReleasedPlacementCount)
	json.Name("TailBytes").Int(stats.TailBytes)
	if stats.PlacementCount > 0 {
		json.Name("PlacementSizeMin").Int(stats.PlacementSizeMin)
		json.Name("PlacementSizeMax").Int(stats.PlacementSizeMax)
	}
}

// Destroy releases every heap. If any placement is still live, each one is logged, nothing is
// released, and an error wrapping ErrUnreleasedPlacements is returned.
func (a *Allocator) Destroy() error {
	a.mutex.Lock()
	defer a.mutex.Unlock()

	var leaks error
	for class := range a.pools {
		if err := a.pools[class].checkLeaks(); err != nil {
			leaks = errors.CombineErrors(leaks, err)
		}
	}
	if leaks != nil {
		return leaks
	}

	for class := range a.pools {
		a.pools[class].Destroy()
	}
	return nil
}
