// Package vulkan backs native heaps with Vulkan device memory. Each heap class is mapped onto the
// cheapest memory type that satisfies its access pattern.
package vulkan

import (
	"context"
	"math"
	"math/bits"

	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/v2/common"
	"github.com/vkngwrapper/core/v2/core1_0"
	"github.com/vkngwrapper/core/v2/driver"
	"github.com/vkngwrapper/extensions/v2/ext_memory_priority"
	"github.com/vkngwrapper/kiln/gpu/native"
	"golang.org/x/exp/slog"
)

const (
	// DefaultPriority is the memory priority of every heap class but render targets
	DefaultPriority float32 = 0.5
	// RenderTargetPriority keeps render and depth targets resident under memory pressure
	RenderTargetPriority float32 = 1.0
)

// MemoryAllocator is the part of core1_0.Device the provider needs
type MemoryAllocator interface {
	AllocateMemory(allocationCallbacks *driver.AllocationCallbacks, o core1_0.MemoryAllocateInfo) (core1_0.DeviceMemory, common.VkResult, error)
}

type Options struct {
	AllocationCallbacks *driver.AllocationCallbacks
	// UseMemoryPriority chains a VkMemoryPriorityAllocateInfoEXT onto every allocation. Only set it
	// when VK_EXT_memory_priority is enabled on the device.
	UseMemoryPriority bool
}

type HeapProvider struct {
	logger      *slog.Logger
	device      MemoryAllocator
	options     Options
	memoryTypes [native.HeapClassCount]int
}

var _ native.HeapProvider = &HeapProvider{}

func NewHeapProvider(logger *slog.Logger, device MemoryAllocator, properties *core1_0.PhysicalDeviceMemoryProperties, options Options) (*HeapProvider, error) {
	if logger == nil {
		return nil, errors.New("logger must not be nil")
	}
	if device == nil {
		return nil, errors.New("device must not be nil")
	}
	if properties == nil {
		return nil, errors.New("memory properties must not be nil")
	}

	provider := &HeapProvider{
		logger:  logger,
		device:  device,
		options: options,
	}

	for class := native.HeapClass(0); class < native.HeapClassCount; class++ {
		required, preferred, notPreferred := memoryPreferences(class)
		typeIndex, err := findMemoryTypeIndex(properties, required, preferred, notPreferred)
		if err != nil {
			return nil, errors.Wrapf(err, "no memory type can hold %s heaps", class)
		}

		provider.memoryTypes[class] = typeIndex
		logger.LogAttrs(context.Background(), slog.LevelDebug, "selected memory type",
			slog.String("class", class.String()),
			slog.Int("memoryType", typeIndex),
			slog.Uint64("flags", uint64(properties.MemoryTypes[typeIndex].PropertyFlags)),
		)
	}

	return provider, nil
}

// MemoryTypeIndex is the memory type heaps of class are allocated from
func (p *HeapProvider) MemoryTypeIndex(class native.HeapClass) int {
	return p.memoryTypes[class]
}

func (p *HeapProvider) CreateHeap(class native.HeapClass, size int) (native.Heap, error) {
	if class >= native.HeapClassCount {
		return nil, errors.Newf("unknown heap class %d", class)
	}

	var allocInfo core1_0.MemoryAllocateInfo
	allocInfo.MemoryTypeIndex = p.memoryTypes[class]
	allocInfo.AllocationSize = size

	if p.options.UseMemoryPriority {
		priority := DefaultPriority
		if class == native.HeapRenderTarget || class == native.HeapMultisampleTexture {
			priority = RenderTargetPriority
		}

		priorityInfo := ext_memory_priority.MemoryPriorityAllocateInfo{
			Priority: priority,
		}
		priorityInfo.Next = allocInfo.Next
		allocInfo.Next = priorityInfo
	}

	memory, _, err := p.device.AllocateMemory(p.options.AllocationCallbacks, allocInfo)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to allocate %d bytes of %s device memory", size, class)
	}

	return &Heap{
		memory:    memory,
		class:     class,
		size:      size,
		typeIndex: allocInfo.MemoryTypeIndex,
		callbacks: p.options.AllocationCallbacks,
	}, nil
}

func memoryPreferences(class native.HeapClass) (required, preferred, notPreferred core1_0.MemoryPropertyFlags) {
	switch class {
	case native.HeapUpload:
		required = core1_0.MemoryPropertyHostVisible | core1_0.MemoryPropertyHostCoherent
		notPreferred = core1_0.MemoryPropertyHostCached
	case native.HeapReadback:
		required = core1_0.MemoryPropertyHostVisible
		preferred = core1_0.MemoryPropertyHostCached
	default:
		required = core1_0.MemoryPropertyDeviceLocal
		notPreferred = core1_0.MemoryPropertyHostVisible
	}

	return required, preferred, notPreferred
}

func findMemoryTypeIndex(properties *core1_0.PhysicalDeviceMemoryProperties, required, preferred, notPreferred core1_0.MemoryPropertyFlags) (int, error) {
	bestMemoryTypeIndex := -1
	minCost := math.MaxInt

	for memTypeIndex, memType := range properties.MemoryTypes {
		flags := memType.PropertyFlags
		if required&flags != required {
			continue
		}

		missingPreferredFlags := preferred & ^flags
		presentNotPreferredFlags := notPreferred & flags
		cost := bits.OnesCount32(uint32(missingPreferredFlags)) + bits.OnesCount32(uint32(presentNotPreferredFlags))
		if cost == 0 {
			return memTypeIndex, nil
		} else if cost < minCost {
			bestMemoryTypeIndex = memTypeIndex
			minCost = cost
		}
	}

	if bestMemoryTypeIndex < 0 {
		return -1, core1_0.VKErrorFeatureNotPresent.ToError()
	}

	return bestMemoryTypeIndex, nil
}

// Heap is one VkDeviceMemory allocation
type Heap struct {
	memory    core1_0.DeviceMemory
	class     native.HeapClass
	size      int
	typeIndex int
	callbacks *driver.AllocationCallbacks
}

func (h *Heap) Size() int                    { return h.size }
func (h *Heap) Class() native.HeapClass      { return h.class }
func (h *Heap) MemoryTypeIndex() int         { return h.typeIndex }
func (h *Heap) Memory() core1_0.DeviceMemory { return h.memory }

func (h *Heap) Release() {
	if h.memory == nil {
		return
	}

	h.memory.Free(h.callbacks)
	h.memory = nil
}
