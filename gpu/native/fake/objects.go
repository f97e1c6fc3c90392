package fake

import (
	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/kiln/gpu"
	"github.com/vkngwrapper/kiln/gpu/native"
)

type Heap struct {
	class    native.HeapClass
	size     int
	address  uint64
	Placed   int
	Released bool
}

func (h *Heap) Class() native.HeapClass { return h.class }
func (h *Heap) Size() int               { return h.size }
func (h *Heap) Release()                { h.Released = true }

// Resource is a placed buffer or texture, or a swapchain image. Memory holds its contents.
type Resource struct {
	Heap      *Heap
	Offset    int
	Buffer    gpu.BufferDesc
	Texture   gpu.TextureDesc
	IsTexture bool
	Memory    []byte
	Mapped    int
	Released  bool
	address   uint64
}

func (r *Resource) GPUAddress() uint64 {
	return r.address
}

func (r *Resource) Map(offset, size int) ([]byte, error) {
	if r.IsTexture {
		return nil, errors.New("fake: textures cannot be mapped")
	}
	if offset < 0 || size < 0 || offset+size > len(r.Memory) {
		return nil, errors.Newf("fake: map range [%d, %d) outside buffer of %d bytes", offset, offset+size, len(r.Memory))
	}

	r.Mapped++
	return r.Memory[offset : offset+size], nil
}

func (r *Resource) Unmap(offset, size int) {
	r.Mapped--
}

func (r *Resource) Release() {
	r.Released = true
	if r.Heap != nil {
		r.Heap.Placed--
	}
}

type DescriptorHeap struct {
	kind     native.DescriptorHeapKind
	count    int
	cpu      uint64
	gpu      uint64
	Released bool
}

func (h *DescriptorHeap) Kind() native.DescriptorHeapKind { return h.kind }
func (h *DescriptorHeap) CPUStart() uint64                { return h.cpu }
func (h *DescriptorHeap) GPUStart() uint64                { return h.gpu }
func (h *DescriptorHeap) Increment() uint32               { return descriptorIncrement }
func (h *DescriptorHeap) Count() int                      { return h.count }
func (h *DescriptorHeap) Release()                        { h.Released = true }

type ViewKind uint8

const (
	ViewShader ViewKind = iota
	ViewRenderTarget
	ViewDepthWrite
	ViewDepthRead
)

// View is a descriptor written by the device
type View struct {
	Kind     ViewKind
	Type     gpu.DescriptorType
	Resource native.Resource
	Texture  gpu.TextureView
	Buffer   gpu.BufferView
}

type RootSignature struct {
	Layout   gpu.PipelineInputLayout
	Released bool
}

func (s *RootSignature) Release() { s.Released = true }

type PipelineState struct {
	Signature native.RootSignature
	Compute   bool
	Released  bool
}

func (p *PipelineState) Release() { p.Released = true }

type QueryHeap struct {
	Timestamps []uint64
	Released   bool
}

func (h *QueryHeap) Release() { h.Released = true }

type CommandAllocator struct {
	Type gpu.QueueType
	// InUse is set while a command list is recording into the allocator
	InUse    bool
	Resets   int
	Released bool
}

func (a *CommandAllocator) Reset() error {
	if a.InUse {
		return errors.New("fake: command allocator reset while a command list is recording into it")
	}
	a.Resets++
	return nil
}

func (a *CommandAllocator) Release() { a.Released = true }

// Fence tracks the highest value signaled on a queue and the highest value the GPU has reached
type Fence struct {
	completed uint64
	signaled  uint64
	// Signals lists every value signaled on the fence, in order
	Signals  []uint64
	CPUWaits []uint64
	Released bool
}

func (f *Fence) CompletedValue() uint64 {
	return f.completed
}

func (f *Fence) Wait(value uint64) error {
	f.CPUWaits = append(f.CPUWaits, value)
	if f.completed >= value {
		return nil
	}
	if f.signaled < value {
		return errors.Newf("fake: CPU wait on fence value %d that was never signaled (signaled %d)", value, f.signaled)
	}

	f.completed = value
	return nil
}

// Complete marks every signaled value up to value as reached by the GPU
func (f *Fence) Complete(value uint64) {
	if value > f.signaled {
		value = f.signaled
	}
	if value > f.completed {
		f.completed = value
	}
}

// CompleteAll marks every signaled value as reached
func (f *Fence) CompleteAll() {
	f.completed = f.signaled
}

func (f *Fence) Signaled() uint64 {
	return f.signaled
}

func (f *Fence) Release() { f.Released = true }

type GPUWait struct {
	Fence *Fence
	Value uint64
}

type Queue struct {
	Type   gpu.QueueType
	device *Device
	// Executions holds one entry per ExecuteCommandLists call
	Executions [][]*CommandList
	GPUWaits   []GPUWait
	Released   bool
}

func (q *Queue) ExecuteCommandLists(lists []native.CommandList) error {
	batch := make([]*CommandList, 0, len(lists))
	for _, list := range lists {
		l, ok := list.(*CommandList)
		if !ok {
			return errors.Newf("fake: foreign command list %T", list)
		}
		if l.recording {
			return errors.New("fake: executing a command list that was not closed")
		}
		if l.Type != q.Type {
			return errors.Newf("fake: %s command list executed on %s queue", l.Type, q.Type)
		}

		l.execute()
		l.Executions++
		batch = append(batch, l)
	}

	q.Executions = append(q.Executions, batch)
	return nil
}

func (q *Queue) Signal(fence native.Fence, value uint64) error {
	f, ok := fence.(*Fence)
	if !ok {
		return errors.Newf("fake: foreign fence %T", fence)
	}
	if value < f.signaled {
		return errors.Newf("fake: fence signaled backwards from %d to %d", f.signaled, value)
	}

	f.signaled = value
	f.Signals = append(f.Signals, value)
	if !q.device.options.ManualFences {
		f.completed = value
	}
	return nil
}

func (q *Queue) Wait(fence native.Fence, value uint64) error {
	f, ok := fence.(*Fence)
	if !ok {
		return errors.Newf("fake: foreign fence %T", fence)
	}

	q.GPUWaits = append(q.GPUWaits, GPUWait{Fence: f, Value: value})
	return nil
}

func (q *Queue) TimestampFrequency() uint64 {
	return q.device.options.TimestampFrequency
}

func (q *Queue) Release() { q.Released = true }

type SwapChain struct {
	device   *Device
	buffers  []*Resource
	current  int
	Width    uint32
	Height   uint32
	Presents int
	Resizes  int
	Released bool
}

func (s *SwapChain) createBuffers() {
	desc := gpu.TextureDesc{
		Width:       uint16(s.Width),
		Height:      uint16(s.Height),
		Depth:       1,
		MipLevels:   1,
		SampleCount: 1,
		Format:      gpu.FormatR8G8B8A8_UNORM,
		Dimension:   gpu.Texture2D,
		Flags:       gpu.BindRenderTarget,
	}
	info := s.device.TextureAllocationInfo(desc)

	for i := range s.buffers {
		s.buffers[i] = &Resource{
			Texture:   desc,
			IsTexture: true,
			Memory:    make([]byte, info.Size),
			address:   s.device.reserveAddressSpace(info.Size),
		}
	}
}

func (s *SwapChain) CurrentBackBufferIndex() int {
	return s.current
}

func (s *SwapChain) BackBuffer(index int) native.Resource {
	return s.buffers[index]
}

func (s *SwapChain) Present() error {
	s.Presents++
	s.current = (s.current + 1) % len(s.buffers)
	return nil
}

func (s *SwapChain) Resize(width, height uint32) error {
	if width == 0 || height == 0 {
		return errors.Newf("fake: resize to %dx%d", width, height)
	}

	s.Width = width
	s.Height = height
	s.current = 0
	s.Resizes++
	s.createBuffers()
	return nil
}

func (s *SwapChain) Release() { s.Released = true }
