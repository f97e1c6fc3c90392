package heap

import (
	"encoding/json"
	"io"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"
	"github.com/vkngwrapper/kiln/fatal"
	"github.com/vkngwrapper/kiln/gpu"
	"github.com/vkngwrapper/kiln/gpu/native"
	"github.com/vkngwrapper/kiln/gpu/native/fake"
	"github.com/vkngwrapper/kiln/memutils"
	"golang.org/x/exp/slog"
)

const mib = 1 << 20

func testAllocator(t *testing.T, heapSize int) (*Allocator, *fake.Device) {
	device := fake.NewDevice(fake.Options{})
	allocator, err := New(slog.New(slog.NewJSONHandler(io.Discard)), device, Options{HeapSize: heapSize})
	require.NoError(t, err)
	return allocator, device
}

func TestAllocatorReusesReleasedPlacement(t *testing.T) {
	allocator, _ := testAllocator(t, 256*mib)

	first, err := allocator.Allocate(native.HeapBuffer, 4*mib, 256)
	require.NoError(t, err)
	second, err := allocator.Allocate(native.HeapBuffer, 4*mib, 256)
	require.NoError(t, err)

	allocator.Deallocate(first)
	require.Equal(t, 8*mib, allocator.HeapTail(native.HeapBuffer, 0))
	require.Equal(t, 1, allocator.HeapReferences(native.HeapBuffer, 0))

	reused, err := allocator.Allocate(native.HeapBuffer, 4*mib, 256)
	require.NoError(t, err)
	require.Equal(t, first, reused)
	require.Equal(t, 1, allocator.HeapCount(native.HeapBuffer))
	require.Equal(t, 2, allocator.HeapReferences(native.HeapBuffer, 0))

	info := allocator.Info(reused)
	require.Equal(t, 0, info.Heap)
	require.Equal(t, 0, info.Offset)
	require.Equal(t, 1, info.References)

	allocator.Deallocate(second)
	allocator.Deallocate(reused)
	require.NoError(t, allocator.Destroy())
}

func TestAllocatorReuseHonorsAlignment(t *testing.T) {
	allocator, _ := testAllocator(t, 256*mib)

	_, err := allocator.Allocate(native.HeapTexture, 256, 256)
	require.NoError(t, err)
	unaligned, err := allocator.Allocate(native.HeapTexture, 1024, 256)
	require.NoError(t, err)
	_, err = allocator.Allocate(native.HeapTexture, 256, 256)
	require.NoError(t, err)

	allocator.Deallocate(unaligned)

	aligned, err := allocator.Allocate(native.HeapTexture, 512, 1024)
	require.NoError(t, err)
	require.NotEqual(t, unaligned, aligned)
	require.Equal(t, 2048, allocator.Info(aligned).Offset)
}

func TestAllocatorTailRetractsOnlyForTailPlacement(t *testing.T) {
	allocator, _ := testAllocator(t, 256*mib)

	first, err := allocator.Allocate(native.HeapBuffer, 100*mib, 64*1024)
	require.NoError(t, err)
	second, err := allocator.Allocate(native.HeapBuffer, 50*mib, 64*1024)
	require.NoError(t, err)
	require.Equal(t, 150*mib, allocator.HeapTail(native.HeapBuffer, 0))

	allocator.Deallocate(first)
	require.Equal(t, 150*mib, allocator.HeapTail(native.HeapBuffer, 0))

	allocator.Deallocate(second)
	require.Equal(t, 100*mib, allocator.HeapTail(native.HeapBuffer, 0))
	require.Equal(t, 0, allocator.HeapReferences(native.HeapBuffer, 0))
}

func TestAllocatorRetiredPlacementIsNotReused(t *testing.T) {
	allocator, _ := testAllocator(t, 256*mib)

	_, err := allocator.Allocate(native.HeapBuffer, 1024, 256)
	require.NoError(t, err)
	top, err := allocator.Allocate(native.HeapBuffer, 512, 256)
	require.NoError(t, err)
	allocator.Deallocate(top)
	require.Equal(t, 1024, allocator.HeapTail(native.HeapBuffer, 0))

	large, err := allocator.Allocate(native.HeapBuffer, 2048, 256)
	require.NoError(t, err)
	require.Equal(t, 1024, allocator.Info(large).Offset)

	small, err := allocator.Allocate(native.HeapBuffer, 512, 256)
	require.NoError(t, err)
	require.Equal(t, 3072, allocator.Info(small).Offset)
	require.NoError(t, allocator.pools[native.HeapBuffer].Validate())
}

func TestAllocatorScenarioFitsInOneHeap(t *testing.T) {
	allocator, device := testAllocator(t, 256*mib)

	sizes := []int{100 * mib, 50 * mib, 100 * mib}
	offsets := []int{0, 100 * mib, 150 * mib}
	for i, size := range sizes {
		placement, err := allocator.Allocate(native.HeapBuffer, size, 64*1024)
		require.NoError(t, err)

		info := allocator.Info(placement)
		require.Equal(t, 0, info.Heap)
		require.Equal(t, offsets[i], info.Offset)
	}

	require.Equal(t, 1, allocator.HeapCount(native.HeapBuffer))
	require.Equal(t, 250*mib, allocator.HeapTail(native.HeapBuffer, 0))
	require.Len(t, device.Heaps, 1)
}

func TestAllocatorCreatesHeapWhenTailIsFull(t *testing.T) {
	allocator, device := testAllocator(t, 256*mib)

	var placements []Placement
	for i := 0; i < 3; i++ {
		placement, err := allocator.Allocate(native.HeapBuffer, 100*mib, 64*1024)
		require.NoError(t, err)
		placements = append(placements, placement)
	}

	require.Equal(t, 0, allocator.Info(placements[0]).Heap)
	require.Equal(t, 0, allocator.Info(placements[1]).Heap)

	third := allocator.Info(placements[2])
	require.Equal(t, 1, third.Heap)
	require.Equal(t, 0, third.Offset)
	require.Equal(t, 2, allocator.HeapCount(native.HeapBuffer))
	require.Len(t, device.Heaps, 2)

	// later heaps are still scanned for tail room
	small, err := allocator.Allocate(native.HeapBuffer, 50*mib, 64*1024)
	require.NoError(t, err)
	require.Equal(t, 0, allocator.Info(small).Heap)
}

func TestAllocatorKeepsClassesApart(t *testing.T) {
	allocator, device := testAllocator(t, 16*mib)

	_, err := allocator.Allocate(ClassForBuffer(gpu.StorageUpload), 1024, 256)
	require.NoError(t, err)
	_, err = allocator.Allocate(ClassForBuffer(gpu.StorageDevice), 1024, 256)
	require.NoError(t, err)
	_, err = allocator.Allocate(ClassForTexture(gpu.TextureDesc{Width: 4, Height: 4, SampleCount: 4, Flags: gpu.BindRenderTarget}), 1024, 256)
	require.NoError(t, err)

	require.Equal(t, 1, allocator.HeapCount(native.HeapUpload))
	require.Equal(t, 1, allocator.HeapCount(native.HeapBuffer))
	require.Equal(t, 1, allocator.HeapCount(native.HeapMultisampleTexture))
	require.Equal(t, 0, allocator.HeapCount(native.HeapRenderTarget))
	require.Len(t, device.Heaps, 3)
	require.Equal(t, native.HeapUpload, device.Heaps[0].Class())
}

func TestClassForTexture(t *testing.T) {
	require.Equal(t, native.HeapTexture, ClassForTexture(gpu.TextureDesc{Flags: gpu.BindShaderResource}))
	require.Equal(t, native.HeapRenderTarget, ClassForTexture(gpu.TextureDesc{Flags: gpu.BindRenderTarget}))
	require.Equal(t, native.HeapRenderTarget, ClassForTexture(gpu.TextureDesc{Flags: gpu.BindDepthStencilTarget | gpu.BindShaderResource}))
	require.Equal(t, native.HeapMultisampleTexture, ClassForTexture(gpu.TextureDesc{SampleCount: 2}))
	require.Equal(t, native.HeapReadback, ClassForBuffer(gpu.StorageReadback))
}

func TestAllocatorOversizedPlacementIsFatal(t *testing.T) {
	allocator, _ := testAllocator(t, 1*mib)

	var reported error
	restore := fatal.SetHandler(func(err error) {
		reported = err
		panic(err)
	})
	defer restore()

	require.Panics(t, func() {
		_, _ = allocator.Allocate(native.HeapBuffer, 2*mib, 256)
	})
	require.ErrorContains(t, reported, "exceeds the heap size")
}

func TestAllocatorDoubleDeallocateIsFatal(t *testing.T) {
	allocator, _ := testAllocator(t, 1*mib)
	restore := fatal.SetHandler(func(err error) { panic(err) })
	defer restore()

	placement, err := allocator.Allocate(native.HeapBuffer, 1024, 256)
	require.NoError(t, err)
	_, err = allocator.Allocate(native.HeapBuffer, 1024, 256)
	require.NoError(t, err)

	allocator.Deallocate(placement)
	require.Panics(t, func() { allocator.Deallocate(placement) })
}

func TestAllocatorHeapCreationFailure(t *testing.T) {
	device := fake.NewDevice(fake.Options{FailHeapCreation: true})
	allocator, err := New(slog.New(slog.NewJSONHandler(io.Discard)), device, Options{HeapSize: mib})
	require.NoError(t, err)

	_, err = allocator.Allocate(native.HeapTexture, 1024, 256)
	require.ErrorContains(t, err, "failed to create Texture heap")
	require.Equal(t, 0, allocator.HeapCount(native.HeapTexture))
}

func TestAllocatorDestroyReportsLeaks(t *testing.T) {
	allocator, device := testAllocator(t, 16*mib)

	placement, err := allocator.Allocate(native.HeapRenderTarget, 1024, 256)
	require.NoError(t, err)

	err = allocator.Destroy()
	require.True(t, errors.Is(err, ErrUnreleasedPlacements))
	require.Equal(t, 1, device.LiveHeaps())

	allocator.Deallocate(placement)
	require.NoError(t, allocator.Destroy())
	require.Equal(t, 0, device.LiveHeaps())
}

func TestAllocatorStatistics(t *testing.T) {
	allocator, _ := testAllocator(t, 16*mib)

	first, err := allocator.Allocate(native.HeapBuffer, 1024, 256)
	require.NoError(t, err)
	_, err = allocator.Allocate(native.HeapBuffer, 4096, 256)
	require.NoError(t, err)
	_, err = allocator.Allocate(native.HeapUpload, 2048, 256)
	require.NoError(t, err)
	allocator.Deallocate(first)

	var total memutils.DetailedStatistics
	perClass := make([]memutils.DetailedStatistics, native.HeapClassCount)
	allocator.CalculateStatistics(&total, perClass)

	require.Equal(t, 2, total.HeapCount)
	require.Equal(t, 32*mib, total.HeapBytes)
	require.Equal(t, 2, total.PlacementCount)
	require.Equal(t, 6144, total.PlacementBytes)
	require.Equal(t, 1, total.ReleasedPlacementCount)
	require.Equal(t, 2048, total.PlacementSizeMin)
	require.Equal(t, 4096, total.PlacementSizeMax)
	require.Equal(t, 32*mib-5120-2048, total.TailBytes)
	require.Equal(t, 1, perClass[native.HeapBuffer].PlacementCount)
	require.Equal(t, 0, perClass[native.HeapTexture].HeapCount)

	var document struct {
		Total struct {
			HeapCount      int
			PlacementBytes int
		}
		HeapClasses map[string]struct {
			HeapCount int
		}
		DetailedMap map[string]struct {
			Tail       int
			References int
			Placements []struct {
				Offset   int
				Size     int
				Released bool
			}
		}
	}
	require.NoError(t, json.Unmarshal([]byte(allocator.BuildStatsString(true)), &document))
	require.Equal(t, 2, document.Total.HeapCount)
	require.Equal(t, 6144, document.Total.PlacementBytes)
	require.Equal(t, 1, document.HeapClasses["Upload"].HeapCount)

	bufferHeap := document.DetailedMap["Buffer/0"]
	require.Equal(t, 5120, bufferHeap.Tail)
	require.Equal(t, 1, bufferHeap.References)
	require.Len(t, bufferHeap.Placements, 2)
	require.True(t, bufferHeap.Placements[0].Released)
	require.Equal(t, 1024, bufferHeap.Placements[1].Offset)
}
