package gpu

type DescriptorType uint8

const (
	DescriptorSRV DescriptorType = iota
	DescriptorUAV
	DescriptorCBV
)

func (t DescriptorType) String() string {
	switch t {
	case DescriptorSRV:
		return "SRV"
	case DescriptorUAV:
		return "UAV"
	case DescriptorCBV:
		return "CBV"
	}
	return "Unknown"
}

type PipelineInputGroupType uint8

const (
	InputResourceList PipelineInputGroupType = iota
	InputBuffer
)

// ResourceListDesc is one descriptor range of a resource list entry
type ResourceListDesc struct {
	Type         DescriptorType
	BindingSlot  uint32
	BindingSpace uint32
	NumResources uint32
	Offset       uint32
}

type PipelineInputListDesc struct {
	ResourceLists    [MaxResourceListRanges]ResourceListDesc
	NumResourceLists uint32
}

type PipelineInputBufferDesc struct {
	Type         DescriptorType
	BindingSlot  uint32
	BindingSpace uint32
}

// PipelineInputGroup is one root argument slot. Only the member selected by Type is read.
type PipelineInputGroup struct {
	Type          PipelineInputGroupType
	ResourceLists PipelineInputListDesc
	Buffer        PipelineInputBufferDesc
}

// ResourceListGroup builds a resource list entry from up to MaxResourceListRanges ranges
func ResourceListGroup(ranges ...ResourceListDesc) PipelineInputGroup {
	group := PipelineInputGroup{Type: InputResourceList}
	n := copy(group.ResourceLists.ResourceLists[:], ranges)
	group.ResourceLists.NumResourceLists = uint32(n)
	return group
}

// BufferGroup builds a root buffer entry bound at slot/space
func BufferGroup(t DescriptorType, slot, space uint32) PipelineInputGroup {
	return PipelineInputGroup{
		Type:   InputBuffer,
		Buffer: PipelineInputBufferDesc{Type: t, BindingSlot: slot, BindingSpace: space},
	}
}

type Filter uint8

const (
	FilterPoint Filter = iota
	FilterLinear
)

type AddressMode uint8

const (
	AddressWrap AddressMode = iota
	AddressMirror
	AddressClamp
	AddressMirrorClamp
)

type CompareOp uint8

const (
	CompareNever CompareOp = iota
	CompareLess
	CompareEqual
	CompareLessEqual
	CompareGreater
	CompareNotEqual
	CompareGreaterEqual
	CompareAlways
)

type SamplerDesc struct {
	AnisotropyEnable bool
	MaxAnisotropy    uint8
	MinFilter        Filter
	MagFilter        Filter
	MipFilter        Filter
	AddressU         AddressMode
	AddressV         AddressMode
	AddressW         AddressMode
	MipLODBias       float32
	ComparisonFunc   CompareOp
	MinLOD           float32
	MaxLOD           float32
}

type PipelineInputLayout struct {
	Entries             [MaxPipelineLayoutEntries]PipelineInputGroup
	Samplers            [MaxPipelineLayoutSamplers]SamplerDesc
	SamplerBindingSlots [MaxPipelineLayoutSamplers]uint16
	SamplerBindingSpace [MaxPipelineLayoutSamplers]uint16
	NumEntries          uint16
	NumSamplers         uint16
}

// AddEntry appends a root argument and returns its slot
func (l *PipelineInputLayout) AddEntry(group PipelineInputGroup) int {
	slot := int(l.NumEntries)
	l.Entries[slot] = group
	l.NumEntries++
	return slot
}

// AddSampler appends a static sampler bound at slot/space
func (l *PipelineInputLayout) AddSampler(desc SamplerDesc, slot, space uint16) {
	i := l.NumSamplers
	l.Samplers[i] = desc
	l.SamplerBindingSlots[i] = slot
	l.SamplerBindingSpace[i] = space
	l.NumSamplers++
}

type InputElement struct {
	Name             string
	Index            uint32
	Format           BufferFormat
	Slot             uint16
	Offset           uint16
	InstanceDataRate uint16
	InstanceElement  bool
}

type PrimitiveTopology uint8

const (
	TopologyPointList PrimitiveTopology = iota
	TopologyLineList
	TopologyLineStrip
	TopologyTriangleList
	TopologyTriangleStrip
	TopologyLineListAdjacency
	TopologyLineStripAdjacency
	TopologyTriangleListAdjacency
	TopologyTriangleStripAdjacency
	TopologyPatchList
)

type FillMode uint8

const (
	FillWireframe FillMode = iota
	FillSolid
)

type CullMode uint8

const (
	CullNone CullMode = iota
	CullBack
	CullFront
)

type FrontFace uint8

const (
	FrontFaceClockwise FrontFace = iota
	FrontFaceCounterClockwise
)

type RasterizerParameters struct {
	FillMode                 FillMode
	CullMode                 CullMode
	FrontFace                FrontFace
	DepthClipEnable          bool
	MultisampleEnable        bool
	AntialiasedLineEnable    bool
	ConservativeRasterEnable bool
	DepthBias                int32
	DepthBiasClamp           float32
	DepthBiasSlope           float32
	ForcedSampleCount        uint32
}

type BlendFactor uint8

const (
	BlendZero BlendFactor = iota
	BlendOne
	BlendSrcColor
	BlendInvSrcColor
	BlendSrcAlpha
	BlendInvSrcAlpha
	BlendDstAlpha
	BlendInvDstAlpha
	BlendDstColor
	BlendInvDstColor
)

type BlendOp uint8

const (
	BlendOpAdd BlendOp = iota
	BlendOpSubtract
	BlendOpReverseSubtract
	BlendOpMin
	BlendOpMax
)

type RenderTargetBlend struct {
	BlendEnable           bool
	SrcBlend              BlendFactor
	DstBlend              BlendFactor
	BlendOp               BlendOp
	SrcAlphaBlend         BlendFactor
	DstAlphaBlend         BlendFactor
	AlphaBlendOp          BlendOp
	RenderTargetWriteMask uint8
}

type StencilOp uint8

const (
	StencilKeep StencilOp = iota
	StencilZero
	StencilReplace
	StencilIncrementSaturate
	StencilDecrementSaturate
	StencilInvert
	StencilIncrementWrap
	StencilDecrementWrap
)

type DepthStencilOp struct {
	StencilFailOp      StencilOp
	StencilDepthFailOp StencilOp
	StencilPassOp      StencilOp
	StencilFunc        CompareOp
}

type DepthStencilState struct {
	DepthEnable      bool
	DepthWrite       bool
	DepthCompareOp   CompareOp
	StencilEnable    bool
	StencilReadMask  uint8
	StencilWriteMask uint8
	FrontFaceOp      DepthStencilOp
	BackFaceOp       DepthStencilOp
}

type GraphicsPipelineDesc struct {
	InputLayout         []InputElement
	VertexShader        []byte
	PixelShader         []byte
	Rasterizer          RasterizerParameters
	Blend               [MaxRenderTargets]RenderTargetBlend
	DepthStencil        DepthStencilState
	DepthStencilFormat  BufferFormat
	Topology            PrimitiveTopology
	RenderTargetFormats [MaxRenderTargets]BufferFormat
	RenderTargetCount   uint16
	SampleCount         uint16
	SampleMask          uint32
}

type ComputePipelineDesc struct {
	ComputeShader []byte
}

type PipelineInputBuffer struct {
	Buffer BufferHandle
	Offset uint32
	Type   DescriptorType
}

// PipelineInput is the argument bound to one root slot; Type selects ResourceList or Buffer
type PipelineInput struct {
	Type         PipelineInputGroupType
	ResourceList PipelineHandle
	Buffer       PipelineInputBuffer
}

type PipelineInputState struct {
	Inputs      [MaxPipelineLayoutEntries]PipelineInput
	NumElements uint32
}

// SetResourceList binds an input list to slot, growing NumElements to cover it
func (s *PipelineInputState) SetResourceList(slot int, list PipelineHandle) {
	s.Inputs[slot] = PipelineInput{Type: InputResourceList, ResourceList: list}
	s.grow(slot)
}

// SetBuffer binds a root buffer to slot, growing NumElements to cover it
func (s *PipelineInputState) SetBuffer(slot int, buffer BufferHandle, offset uint32, t DescriptorType) {
	s.Inputs[slot] = PipelineInput{
		Type:   InputBuffer,
		Buffer: PipelineInputBuffer{Buffer: buffer, Offset: offset, Type: t},
	}
	s.grow(slot)
}

func (s *PipelineInputState) grow(slot int) {
	if uint32(slot+1) > s.NumElements {
		s.NumElements = uint32(slot + 1)
	}
}

// Sampler filters with filter on every axis and addresses every axis with mode
func Sampler(filter Filter, mode AddressMode) SamplerDesc {
	return SamplerDesc{
		MinFilter: filter,
		MagFilter: filter,
		MipFilter: filter,
		AddressU:  mode,
		AddressV:  mode,
		AddressW:  mode,
	}
}

func AnisotropicSampler(maxAnisotropy uint8) SamplerDesc {
	return SamplerDesc{AnisotropyEnable: true, MaxAnisotropy: maxAnisotropy}
}

// SolidRasterizer fills triangles without culling
func SolidRasterizer() RasterizerParameters {
	return RasterizerParameters{FillMode: FillSolid, CullMode: CullNone, FrontFace: FrontFaceClockwise, DepthClipEnable: true}
}

// DepthTest enables a less-or-equal depth test that writes depth when write is set
func DepthTest(write bool) DepthStencilState {
	return DepthStencilState{DepthEnable: true, DepthWrite: write, DepthCompareOp: CompareLessEqual}
}

// DefaultGraphicsPipeline is a single-sample triangle-list pipeline with renderTargets color
// outputs
func DefaultGraphicsPipeline(renderTargets uint16, depth DepthStencilState) GraphicsPipelineDesc {
	return GraphicsPipelineDesc{
		Rasterizer:        SolidRasterizer(),
		DepthStencil:      depth,
		Topology:          TopologyTriangleList,
		RenderTargetCount: renderTargets,
		SampleCount:       1,
		SampleMask:        ^uint32(0),
	}
}
