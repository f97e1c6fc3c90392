package gpu

const (
	SwapChainBackBufferCount  = 3
	MaxRenderTargets          = 8
	MaxInputElements          = 8
	MaxVertexBuffers          = 8
	MaxTimestampQueries       = 100
	MaxResourceListRanges     = 3
	MaxPipelineLayoutEntries  = 8
	MaxPipelineLayoutSamplers = 8
	MaxResourceBarriers       = 8

	// DispatchIndirectStride is the byte size of one x/y/z indirect dispatch argument
	DispatchIndirectStride = 12
	// TimestampSize is the byte size of one resolved timestamp
	TimestampSize = 8
)
