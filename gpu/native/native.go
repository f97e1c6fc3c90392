// Package native is the contract between the GPU core and the explicit graphics API underneath
// it. Everything above this package speaks in handles and descriptions; everything below it is a
// backend. Backends are expected to be driven from a single recording thread.
package native

import (
	"github.com/vkngwrapper/kiln/gpu"
)

// HeapClass selects which kind of resources a heap may hold. The underlying API does not allow
// these to be mixed within one heap.
type HeapClass uint8

const (
	HeapUpload HeapClass = iota
	HeapReadback
	HeapBuffer
	HeapRenderTarget
	HeapTexture
	HeapMultisampleTexture

	HeapClassCount = 6
)

var heapClassNames = [...]string{"Upload", "Readback", "Buffer", "RenderTarget", "Texture", "MultisampleTexture"}

func (c HeapClass) String() string {
	if int(c) < len(heapClassNames) {
		return heapClassNames[c]
	}
	return "Unknown"
}

// Heap is a fixed-size block of memory that resources are placed into
type Heap interface {
	Size() int
	Release()
}

type HeapProvider interface {
	CreateHeap(class HeapClass, size int) (Heap, error)
}

// Resource is a buffer or texture bound to a heap placement, or a swapchain image
type Resource interface {
	GPUAddress() uint64
	// Map returns the CPU view of [offset, offset+size) of an upload or readback buffer
	Map(offset, size int) ([]byte, error)
	Unmap(offset, size int)
	Release()
}

// AllocationInfo is the heap footprint of a resource
type AllocationInfo struct {
	Size      int
	Alignment int
}

type DescriptorHeapKind uint8

const (
	// DescriptorHeapShader holds shader-visible SRV/UAV/CBV descriptors
	DescriptorHeapShader DescriptorHeapKind = iota
	DescriptorHeapRenderTarget
	DescriptorHeapDepthStencil
)

type DescriptorHeap interface {
	Kind() DescriptorHeapKind
	CPUStart() uint64
	// GPUStart is 0 for heaps that are not shader visible
	GPUStart() uint64
	Increment() uint32
	Count() int
	Release()
}

type RootSignature interface {
	Release()
}

type PipelineState interface {
	Release()
}

type QueryHeap interface {
	Release()
}

type CommandAllocator interface {
	Reset() error
	Release()
}

type Fence interface {
	CompletedValue() uint64
	// Wait blocks the calling thread until the fence reaches value
	Wait(value uint64) error
	Release()
}

type Queue interface {
	ExecuteCommandLists(lists []CommandList) error
	Signal(fence Fence, value uint64) error
	// Wait makes the queue wait on the GPU timeline until fence reaches value
	Wait(fence Fence, value uint64) error
	TimestampFrequency() uint64
	Release()
}

type SwapChain interface {
	CurrentBackBufferIndex() int
	BackBuffer(index int) Resource
	Present() error
	Resize(width, height uint32) error
	Release()
}

// Device creates every native object the core needs
type Device interface {
	HeapProvider

	BufferAllocationInfo(desc gpu.BufferDesc) AllocationInfo
	TextureAllocationInfo(desc gpu.TextureDesc) AllocationInfo
	CreatePlacedBuffer(heap Heap, offset int, desc gpu.BufferDesc) (Resource, error)
	CreatePlacedTexture(heap Heap, offset int, desc gpu.TextureDesc) (Resource, error)

	CreateDescriptorHeap(kind DescriptorHeapKind, count int) (DescriptorHeap, error)
	CreateTextureView(kind gpu.DescriptorType, resource Resource, view gpu.TextureView, dest uint64)
	CreateBufferView(kind gpu.DescriptorType, resource Resource, view gpu.BufferView, dest uint64)
	CreateRenderTargetView(resource Resource, view gpu.TextureView, dest uint64)
	CreateDepthStencilView(resource Resource, view gpu.TextureView, readOnly bool, dest uint64)

	CreateRootSignature(layout *gpu.PipelineInputLayout) (RootSignature, error)
	CreateComputePipeline(signature RootSignature, desc *gpu.ComputePipelineDesc) (PipelineState, error)
	CreateGraphicsPipeline(signature RootSignature, desc *gpu.GraphicsPipelineDesc) (PipelineState, error)

	CreateQueue(queueType gpu.QueueType) (Queue, error)
	CreateFence(initial uint64) (Fence, error)
	CreateCommandAllocator(queueType gpu.QueueType) (CommandAllocator, error)
	CreateCommandList(queueType gpu.QueueType, allocator CommandAllocator) (CommandList, error)
	CreateTimestampQueryHeap(count int) (QueryHeap, error)
	CreateSwapChain(queue Queue, desc gpu.SwapChainDesc, bufferCount int) (SwapChain, error)

	UMA() bool
}
