package command

import "github.com/vkngwrapper/kiln/gpu"

// Type tags every record in a Buffer
type Type uint32

const (
	TypeDraw Type = iota
	TypeLayoutBarrier
	TypeResourceBarrier
	TypeDispatch
	TypeDispatchIndirect
	TypeBeginRenderPass
	TypeEndRenderPass
	TypeCopyBuffer
	TypeCopyBufferToTexture
	TypeCopyTexture
	TypeCopyTextureToBuffer
	TypeInsertTimestamp
	TypeResolveTimestamps
	TypeCopyToSwapChain
	TypeInvalid
)

var typeNames = [...]string{
	"Draw",
	"LayoutBarrier",
	"ResourceBarrier",
	"Dispatch",
	"DispatchIndirect",
	"BeginRenderPass",
	"EndRenderPass",
	"CopyBuffer",
	"CopyBufferToTexture",
	"CopyTexture",
	"CopyTextureToBuffer",
	"InsertTimestamp",
	"ResolveTimestamps",
	"CopyToSwapChain",
	"Invalid",
}

func (t Type) String() string {
	if int(t) < len(typeNames) {
		return typeNames[t]
	}
	return "Unknown"
}

// Command is implemented by the pointer form of every record payload. Payloads must stay free of
// Go pointers, slices, strings and maps: they are copied byte-for-byte into the arena.
type Command interface {
	CommandType() Type
}

type Draw struct {
	GraphicsPipeline    gpu.PipelineHandle
	InputState          gpu.PipelineInputState
	Rect                gpu.Scissor
	InputBuffer         gpu.BufferHandle
	IndexBuffer         gpu.BufferHandle
	NumInstances        uint16
	NumVertexBuffers    uint8
	NumElements         uint32
	VertexBufferOffsets [gpu.MaxVertexBuffers]uint32
	VertexBufferSizes   [gpu.MaxVertexBuffers]uint32
	VertexBufferStrides [gpu.MaxVertexBuffers]uint32
	IndexBufferSize     uint32
	IndexBufferOffset   uint32
}

// LayoutBarrier transitions a texture view between two resource states
type LayoutBarrier struct {
	Texture         gpu.TextureView
	Before          gpu.ResourceState
	After           gpu.ResourceState
	AllSubresources bool
}

// ResourceBarrier orders unordered-access writes to the listed resources
type ResourceBarrier struct {
	Buffers            [gpu.MaxResourceBarriers]gpu.BufferHandle
	Textures           [gpu.MaxResourceBarriers]gpu.TextureHandle
	NumBufferBarriers  uint32
	NumTextureBarriers uint32
}

type Dispatch struct {
	ComputePipeline gpu.PipelineHandle
	InputState      gpu.PipelineInputState
	X               uint32
	Y               uint32
	Z               uint32
}

// DispatchIndirectArgs is the layout DispatchIndirect reads from its argument buffer
type DispatchIndirectArgs struct {
	X uint32
	Y uint32
	Z uint32
}

type DispatchIndirect struct {
	ComputePipeline gpu.PipelineHandle
	InputState      gpu.PipelineInputState
	Args            gpu.BufferHandle
	Offset          uint32
}

type BeginRenderPass struct {
	Color             [gpu.MaxRenderTargets]gpu.TextureView
	RenderTargetCount uint32
	DepthStencil      gpu.TextureView
	RenderPass        gpu.PipelineHandle
	Topology          gpu.PrimitiveTopology
	Viewport          gpu.Viewport
	DepthWrite        bool
	StencilWrite      bool
}

type EndRenderPass struct{}

type CopyBuffer struct {
	Dst       gpu.BufferHandle
	DstOffset uint64
	Src       gpu.BufferHandle
	SrcOffset uint64
	NumBytes  uint64
}

type CopyBufferToTexture struct {
	Texture      gpu.TextureView
	Width        uint32
	Height       uint32
	Buffer       gpu.BufferHandle
	BufferOffset uint32
	RowSize      uint32
}

type CopyTexture struct {
	Dst gpu.TextureView
	Src gpu.TextureView
}

type CopyTextureToBuffer struct {
	Texture      gpu.TextureView
	Width        uint32
	Height       uint32
	Buffer       gpu.BufferHandle
	BufferOffset uint32
	RowSize      uint32
}

type InsertTimestamp struct {
	Index uint32
}

type ResolveTimestamps struct {
	Index          uint32
	TimestampCount uint32
	Dest           gpu.BufferHandle
	AlignedOffset  uint32
}

// CopyToSwapChain copies a texture into the current back buffer. TextureState is the state the
// texture is in when the copy starts and is restored afterwards.
type CopyToSwapChain struct {
	Texture      gpu.TextureView
	TextureState gpu.ResourceState
}

func (*Draw) CommandType() Type                { return TypeDraw }
func (*LayoutBarrier) CommandType() Type       { return TypeLayoutBarrier }
func (*ResourceBarrier) CommandType() Type     { return TypeResourceBarrier }
func (*Dispatch) CommandType() Type            { return TypeDispatch }
func (*DispatchIndirect) CommandType() Type    { return TypeDispatchIndirect }
func (*BeginRenderPass) CommandType() Type     { return TypeBeginRenderPass }
func (*EndRenderPass) CommandType() Type       { return TypeEndRenderPass }
func (*CopyBuffer) CommandType() Type          { return TypeCopyBuffer }
func (*CopyBufferToTexture) CommandType() Type { return TypeCopyBufferToTexture }
func (*CopyTexture) CommandType() Type         { return TypeCopyTexture }
func (*CopyTextureToBuffer) CommandType() Type { return TypeCopyTextureToBuffer }
func (*InsertTimestamp) CommandType() Type     { return TypeInsertTimestamp }
func (*ResolveTimestamps) CommandType() Type   { return TypeResolveTimestamps }
func (*CopyToSwapChain) CommandType() Type     { return TypeCopyToSwapChain }
