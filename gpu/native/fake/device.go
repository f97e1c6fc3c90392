// Package fake is an in-memory backend. Buffers are backed by byte slices, copies recorded on a
// command list are carried out when the list is executed, and fences complete either as soon as
// they are signaled or when a test says so. It backs the package tests and the headless CLI.
package fake

import (
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/kiln/gpu"
	"github.com/vkngwrapper/kiln/gpu/native"
	"github.com/vkngwrapper/kiln/memutils"
)

const (
	descriptorIncrement = 32
	bufferAlignment     = 256
	textureAlignment    = 64 * 1024
	msaaAlignment       = 4 * 1024 * 1024
	addressSpaceStart   = 0x10000
)

// Options control how the fake device behaves
type Options struct {
	// ManualFences stops queues from completing signaled fence values until the test calls
	// Fence.Complete or a CPU wait forces completion
	ManualFences bool
	UMA          bool
	// TimestampFrequency is reported by every queue
	TimestampFrequency uint64
	// FailHeapCreation makes CreateHeap return an error
	FailHeapCreation bool
}

// Device implements native.Device. All counters are exported for tests.
type Device struct {
	options Options
	lock    sync.Mutex

	nextAddress uint64

	Heaps             []*Heap
	Buffers           []*Resource
	Textures          []*Resource
	Queues            [gpu.QueueTypeCount]*Queue
	Fences            []*Fence
	CommandAllocators []*CommandAllocator
	CommandLists      []*CommandList
	DescriptorHeaps   []*DescriptorHeap
	RootSignatures    []*RootSignature
	Pipelines         []*PipelineState
	SwapChain         *SwapChain
	QueryHeaps        []*QueryHeap

	// Views maps a descriptor address to the view written there
	Views map[uint64]View
}

var _ native.Device = &Device{}

func NewDevice(options Options) *Device {
	if options.TimestampFrequency == 0 {
		options.TimestampFrequency = 1_000_000_000
	}

	return &Device{
		options:     options,
		nextAddress: addressSpaceStart,
		Views:       make(map[uint64]View),
	}
}

func (d *Device) reserveAddressSpace(size int) uint64 {
	d.lock.Lock()
	defer d.lock.Unlock()

	base := d.nextAddress
	d.nextAddress += uint64(memutils.AlignUp(size, textureAlignment)) + textureAlignment
	return base
}

func (d *Device) CreateHeap(class native.HeapClass, size int) (native.Heap, error) {
	if d.options.FailHeapCreation {
		return nil, errors.Newf("fake: heap creation disabled (%s, %d bytes)", class, size)
	}

	heap := &Heap{
		class:   class,
		size:    size,
		address: d.reserveAddressSpace(size),
	}
	d.Heaps = append(d.Heaps, heap)
	return heap, nil
}

// LiveHeaps counts heaps that have not been released
func (d *Device) LiveHeaps() int {
	count := 0
	for _, heap := range d.Heaps {
		if !heap.Released {
			count++
		}
	}
	return count
}

func (d *Device) BufferAllocationInfo(desc gpu.BufferDesc) native.AllocationInfo {
	return native.AllocationInfo{
		Size:      memutils.AlignUp(int(desc.Size), bufferAlignment),
		Alignment: bufferAlignment,
	}
}

func (d *Device) TextureAllocationInfo(desc gpu.TextureDesc) native.AllocationInfo {
	texel := int(desc.Format.ByteSize())
	if texel == 0 {
		texel = 1
	}

	size := 0
	width, height := int(desc.Width), int(desc.Height)
	mips := int(desc.MipLevels)
	if mips == 0 {
		mips = 1
	}
	for mip := 0; mip < mips; mip++ {
		size += max(width, 1) * max(height, 1) * texel
		width /= 2
		height /= 2
	}

	depth := int(desc.Depth)
	if depth == 0 {
		depth = 1
	}
	samples := int(desc.SampleCount)
	if samples == 0 {
		samples = 1
	}
	size *= depth * samples

	alignment := textureAlignment
	if samples > 1 {
		alignment = msaaAlignment
	}

	return native.AllocationInfo{
		Size:      memutils.AlignUp(size, alignment),
		Alignment: alignment,
	}
}

func (d *Device) CreatePlacedBuffer(heap native.Heap, offset int, desc gpu.BufferDesc) (native.Resource, error) {
	h, ok := heap.(*Heap)
	if !ok {
		return nil, errors.Newf("fake: foreign heap %T", heap)
	}
	if offset+int(desc.Size) > h.size {
		return nil, errors.Newf("fake: buffer of %d bytes at offset %d overflows heap of %d bytes", desc.Size, offset, h.size)
	}

	resource := &Resource{
		Heap:    h,
		Offset:  offset,
		Buffer:  desc,
		address: h.address + uint64(offset),
		Memory:  make([]byte, desc.Size),
	}
	h.Placed++
	d.Buffers = append(d.Buffers, resource)
	return resource, nil
}

func (d *Device) CreatePlacedTexture(heap native.Heap, offset int, desc gpu.TextureDesc) (native.Resource, error) {
	h, ok := heap.(*Heap)
	if !ok {
		return nil, errors.Newf("fake: foreign heap %T", heap)
	}

	info := d.TextureAllocationInfo(desc)
	if offset+info.Size > h.size {
		return nil, errors.Newf("fake: texture of %d bytes at offset %d overflows heap of %d bytes", info.Size, offset, h.size)
	}

	resource := &Resource{
		Heap:      h,
		Offset:    offset,
		Texture:   desc,
		IsTexture: true,
		address:   h.address + uint64(offset),
		Memory:    make([]byte, info.Size),
	}
	h.Placed++
	d.Textures = append(d.Textures, resource)
	return resource, nil
}

func (d *Device) CreateDescriptorHeap(kind native.DescriptorHeapKind, count int) (native.DescriptorHeap, error) {
	if count <= 0 {
		return nil, errors.Newf("fake: descriptor heap of %d entries", count)
	}

	size := count * descriptorIncrement
	heap := &DescriptorHeap{
		kind:  kind,
		count: count,
		cpu:   d.reserveAddressSpace(size),
	}
	if kind == native.DescriptorHeapShader {
		heap.gpu = d.reserveAddressSpace(size)
	}
	d.DescriptorHeaps = append(d.DescriptorHeaps, heap)
	return heap, nil
}

func (d *Device) CreateTextureView(kind gpu.DescriptorType, resource native.Resource, view gpu.TextureView, dest uint64) {
	d.Views[dest] = View{Kind: ViewShader, Type: kind, Resource: resource, Texture: view}
}

func (d *Device) CreateBufferView(kind gpu.DescriptorType, resource native.Resource, view gpu.BufferView, dest uint64) {
	d.Views[dest] = View{Kind: ViewShader, Type: kind, Resource: resource, Buffer: view}
}

func (d *Device) CreateRenderTargetView(resource native.Resource, view gpu.TextureView, dest uint64) {
	d.Views[dest] = View{Kind: ViewRenderTarget, Resource: resource, Texture: view}
}

func (d *Device) CreateDepthStencilView(resource native.Resource, view gpu.TextureView, readOnly bool, dest uint64) {
	kind := ViewDepthWrite
	if readOnly {
		kind = ViewDepthRead
	}
	d.Views[dest] = View{Kind: kind, Resource: resource, Texture: view}
}

// CountViews counts the views of the given kind that have been written
func (d *Device) CountViews(kind ViewKind) int {
	count := 0
	for _, view := range d.Views {
		if view.Kind == kind {
			count++
		}
	}
	return count
}

func (d *Device) CreateRootSignature(layout *gpu.PipelineInputLayout) (native.RootSignature, error) {
	signature := &RootSignature{Layout: *layout}
	d.RootSignatures = append(d.RootSignatures, signature)
	return signature, nil
}

func (d *Device) CreateComputePipeline(signature native.RootSignature, desc *gpu.ComputePipelineDesc) (native.PipelineState, error) {
	if len(desc.ComputeShader) == 0 {
		return nil, errors.New("fake: compute pipeline without bytecode")
	}

	pipeline := &PipelineState{Signature: signature, Compute: true}
	d.Pipelines = append(d.Pipelines, pipeline)
	return pipeline, nil
}

func (d *Device) CreateGraphicsPipeline(signature native.RootSignature, desc *gpu.GraphicsPipelineDesc) (native.PipelineState, error) {
	if len(desc.VertexShader) == 0 {
		return nil, errors.New("fake: graphics pipeline without vertex shader")
	}

	pipeline := &PipelineState{Signature: signature}
	d.Pipelines = append(d.Pipelines, pipeline)
	return pipeline, nil
}

func (d *Device) CreateQueue(queueType gpu.QueueType) (native.Queue, error) {
	queue := &Queue{Type: queueType, device: d}
	d.Queues[queueType] = queue
	return queue, nil
}

func (d *Device) CreateFence(initial uint64) (native.Fence, error) {
	fence := &Fence{completed: initial, signaled: initial}
	d.Fences = append(d.Fences, fence)
	return fence, nil
}

func (d *Device) CreateCommandAllocator(queueType gpu.QueueType) (native.CommandAllocator, error) {
	allocator := &CommandAllocator{Type: queueType}
	d.CommandAllocators = append(d.CommandAllocators, allocator)
	return allocator, nil
}

func (d *Device) CreateCommandList(queueType gpu.QueueType, allocator native.CommandAllocator) (native.CommandList, error) {
	a, ok := allocator.(*CommandAllocator)
	if !ok {
		return nil, errors.Newf("fake: foreign command allocator %T", allocator)
	}

	list := &CommandList{Type: queueType, allocator: a, recording: true}
	a.InUse = true
	d.CommandLists = append(d.CommandLists, list)
	return list, nil
}

func (d *Device) CreateTimestampQueryHeap(count int) (native.QueryHeap, error) {
	heap := &QueryHeap{Timestamps: make([]uint64, count)}
	d.QueryHeaps = append(d.QueryHeaps, heap)
	return heap, nil
}

func (d *Device) CreateSwapChain(queue native.Queue, desc gpu.SwapChainDesc, bufferCount int) (native.SwapChain, error) {
	if desc.Width == 0 || desc.Height == 0 {
		return nil, errors.Newf("fake: swapchain of %dx%d", desc.Width, desc.Height)
	}

	swapChain := &SwapChain{device: d, Width: desc.Width, Height: desc.Height}
	swapChain.buffers = make([]*Resource, bufferCount)
	swapChain.createBuffers()
	d.SwapChain = swapChain
	return swapChain, nil
}

func (d *Device) UMA() bool {
	return d.options.UMA
}

// TotalExecutions counts ExecuteCommandLists calls across every queue
func (d *Device) TotalExecutions() int {
	total := 0
	for _, queue := range d.Queues {
		if queue != nil {
			total += len(queue.Executions)
		}
	}
	return total
}
