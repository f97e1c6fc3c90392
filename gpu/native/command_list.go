package native

import "github.com/vkngwrapper/kiln/gpu"

// State is the native resource state a barrier transitions between. It is wider than
// gpu.ResourceState because copies and presentation need their own states.
type State uint16

const (
	StateCommon          State = 0
	StateRenderTarget    State = 0x4
	StateUnorderedAccess State = 0x8
	StateDepthWrite      State = 0x10
	StateDepthRead       State = 0x20
	StateCopyDest        State = 0x400
	StateCopySource      State = 0x800
	StatePresent         State = StateCommon
)

// StateFor maps a tracked resource state to its native state
func StateFor(state gpu.ResourceState) State {
	switch state {
	case gpu.StateCommon:
		return StateCommon
	case gpu.StateRenderTarget:
		return StateRenderTarget
	case gpu.StateUnorderedAccess:
		return StateUnorderedAccess
	case gpu.StateDepthWrite:
		return StateDepthWrite
	case gpu.StateDepthRead:
		return StateDepthRead
	}
	return StateCommon
}

// AllSubresources targets every subresource of a texture in a transition barrier
const AllSubresources uint32 = 0xffffffff

type BarrierKind uint8

const (
	BarrierTransition BarrierKind = iota
	BarrierUAV
)

type Barrier struct {
	Kind        BarrierKind
	Resource    Resource
	Subresource uint32
	Before      State
	After       State
}

func Transition(resource Resource, subresource uint32, before, after State) Barrier {
	return Barrier{Kind: BarrierTransition, Resource: resource, Subresource: subresource, Before: before, After: after}
}

func UAVBarrier(resource Resource) Barrier {
	return Barrier{Kind: BarrierUAV, Resource: resource}
}

type VertexBufferView struct {
	Address uint64
	Size    uint32
	Stride  uint32
}

type IndexBufferView struct {
	Address uint64
	Size    uint32
	Format  gpu.BufferFormat
}

// Footprint describes how texel rows are laid out inside a buffer for texture copies
type Footprint struct {
	Offset   uint64
	Format   gpu.BufferFormat
	Width    uint32
	Height   uint32
	Depth    uint32
	RowPitch uint32
}

// CopyLocation is either a texture subresource or, when Placed is set, a footprint in a buffer
type CopyLocation struct {
	Resource    Resource
	Subresource uint32
	Placed      bool
	Footprint   Footprint
}

type RenderPassTarget struct {
	Descriptor uint64
	Desc       gpu.RenderTargetDesc
}

type RenderPassDepthTarget struct {
	Descriptor uint64
	Desc       gpu.DepthStencilTargetDesc
}

// CommandList records native GPU commands. A list is reset onto an allocator, recorded, closed
// and then executed on a queue of the type it was created for.
type CommandList interface {
	Reset(allocator CommandAllocator) error
	Close() error

	SetDescriptorHeap(heap DescriptorHeap)
	ResourceBarrier(barriers []Barrier)

	SetComputeRootSignature(signature RootSignature)
	SetGraphicsRootSignature(signature RootSignature)
	SetComputeRootDescriptorTable(slot uint32, base uint64)
	SetGraphicsRootDescriptorTable(slot uint32, base uint64)
	SetComputeRootView(slot uint32, kind gpu.DescriptorType, address uint64)
	SetGraphicsRootView(slot uint32, kind gpu.DescriptorType, address uint64)
	SetPipelineState(state PipelineState)

	Dispatch(x, y, z uint32)
	DispatchIndirect(args Resource, offset uint64)

	BeginRenderPass(targets []RenderPassTarget, depth *RenderPassDepthTarget)
	EndRenderPass()
	SetViewport(viewport gpu.Viewport)
	SetScissor(scissor gpu.Scissor)
	SetPrimitiveTopology(topology gpu.PrimitiveTopology)
	SetVertexBuffers(views []VertexBufferView)
	SetIndexBuffer(view IndexBufferView)
	DrawInstanced(vertexCount, instanceCount uint32)
	DrawIndexedInstanced(indexCount, instanceCount uint32)

	CopyBufferRegion(dst Resource, dstOffset uint64, src Resource, srcOffset uint64, size uint64)
	CopyTextureRegion(dst CopyLocation, src CopyLocation)

	EndQuery(heap QueryHeap, index uint32)
	ResolveQueryData(heap QueryHeap, start, count uint32, dest Resource, offset uint64)

	Release()
}
