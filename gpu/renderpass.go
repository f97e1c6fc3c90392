package gpu

type RenderPassBeginOp uint8

const (
	BeginDiscard RenderPassBeginOp = iota
	BeginClear
	BeginPreserve
)

type RenderPassEndOp uint8

const (
	EndDiscard RenderPassEndOp = iota
	EndResolve
	EndPreserve
)

type RenderTargetDesc struct {
	BeginOp     RenderPassBeginOp
	EndOp       RenderPassEndOp
	ClearFormat BufferFormat
	ClearValue  [4]float32
}

type DepthStencilTargetDesc struct {
	DepthBeginOp       RenderPassBeginOp
	StencilBeginOp     RenderPassBeginOp
	DepthEndOp         RenderPassEndOp
	StencilEndOp       RenderPassEndOp
	DepthClearFormat   BufferFormat
	StencilClearFormat BufferFormat
	BeginDepthClear    float32
	EndDepthClear      float32
	BeginStencilClear  uint8
	EndStencilClear    uint8
}

type RenderPassDesc struct {
	RenderTargets    [MaxRenderTargets]RenderTargetDesc
	NumRenderTargets uint32
	// DepthStencil is nil for passes without a depth attachment
	DepthStencil *DepthStencilTargetDesc
}

// DepthTarget describes a depth attachment whose stencil plane is preserved
func DepthTarget(begin RenderPassBeginOp, end RenderPassEndOp, clear float32) DepthStencilTargetDesc {
	return DepthStencilTargetDesc{
		DepthBeginOp:       begin,
		StencilBeginOp:     BeginPreserve,
		DepthEndOp:         end,
		StencilEndOp:       EndPreserve,
		DepthClearFormat:   FormatD32_FLOAT,
		StencilClearFormat: FormatX24_Typeless_G8_UINT,
		BeginDepthClear:    clear,
		EndDepthClear:      clear,
	}
}
