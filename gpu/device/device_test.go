package device

import (
	"encoding/json"
	"io"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"
	"github.com/vkngwrapper/kiln/gpu"
	"github.com/vkngwrapper/kiln/gpu/command"
	"github.com/vkngwrapper/kiln/gpu/native"
	"github.com/vkngwrapper/kiln/gpu/native/fake"
	"github.com/vkngwrapper/kiln/heap"
	"golang.org/x/exp/slog"
)

func testDevice(t *testing.T, options fake.Options) (*Device, *fake.Device) {
	backend := fake.NewDevice(options)
	d, err := New(slog.New(slog.NewJSONHandler(io.Discard)), backend, Options{
		SwapChain:             gpu.SwapChainDesc{Width: 64, Height: 64},
		HeapSize:              16 << 20,
		ShaderDescriptors:     1024,
		TargetDescriptorChunk: 16,
		PoolCapacity:          256,
	})
	require.NoError(t, err)
	return d, backend
}

func listsOf(backend *fake.Device, queueType gpu.QueueType) []*fake.CommandList {
	var lists []*fake.CommandList
	for _, list := range backend.CommandLists {
		if list.Type == queueType {
			lists = append(lists, list)
		}
	}
	return lists
}

func allocatorsOf(backend *fake.Device, queueType gpu.QueueType) []*fake.CommandAllocator {
	var allocators []*fake.CommandAllocator
	for _, allocator := range backend.CommandAllocators {
		if allocator.Type == queueType {
			allocators = append(allocators, allocator)
		}
	}
	return allocators
}

func timestampBuffer() *command.Buffer {
	cb := command.New(1024)
	cb.Add(&command.InsertTimestamp{Index: 0})
	return cb
}

func colorTarget(t *testing.T, d *Device, width, height uint16) gpu.TextureHandle {
	handle, err := d.CreateTexture(gpu.TextureDesc{
		Width:       width,
		Height:      height,
		Depth:       1,
		MipLevels:   1,
		SampleCount: 1,
		Format:      gpu.FormatR8G8B8A8_UNORM,
		Dimension:   gpu.Texture2D,
		Flags:       gpu.BindRenderTarget | gpu.BindShaderResource,
	})
	require.NoError(t, err)
	return handle
}

func view2D(handle gpu.TextureHandle, format gpu.BufferFormat) gpu.TextureView {
	return gpu.TextureView{Texture: handle, Format: format, Dimension: gpu.ViewTexture2D, MipCount: 1, Depth: 1}
}

func TestDirectSubmissionsCoalesceIntoOneExecution(t *testing.T) {
	d, backend := testDevice(t, fake.Options{})
	cb := timestampBuffer()

	first := d.SubmitCommands(cb, gpu.QueueDirect)
	second := d.SubmitCommands(cb, gpu.QueueDirect)
	require.Equal(t, gpu.Signal{Queue: gpu.QueueDirect, Value: 1}, first)
	require.Equal(t, gpu.Signal{Queue: gpu.QueueDirect, Value: 2}, second)

	direct := backend.Queues[gpu.QueueDirect]
	require.Empty(t, direct.Executions)
	require.Len(t, listsOf(backend, gpu.QueueDirect), 2)

	presented := d.Present()
	require.Equal(t, gpu.Signal{Queue: gpu.QueueDirect, Value: 3}, presented)
	require.Len(t, direct.Executions, 1)
	require.Len(t, direct.Executions[0], 2)
	require.Equal(t, 1, backend.SwapChain.Presents)

	fence := d.Engine().Fence(gpu.QueueDirect)
	require.Equal(t, uint64(3), fence.Head)
	require.Equal(t, uint64(3), fence.LastSignal)
	require.Equal(t, uint64(3), fence.Tail)
	require.NoError(t, fence.Validate())

	// both lists were reset after execution and are handed out again
	d.SubmitCommands(cb, gpu.QueueDirect)
	d.SubmitCommands(cb, gpu.QueueDirect)
	require.Len(t, listsOf(backend, gpu.QueueDirect), 2)
}

func TestComputeAndCopySubmissionsExecuteImmediately(t *testing.T) {
	d, backend := testDevice(t, fake.Options{})
	cb := timestampBuffer()

	d.SubmitCommands(cb, gpu.QueueCompute)
	d.SubmitCommands(cb, gpu.QueueCopy)

	require.Len(t, backend.Queues[gpu.QueueCompute].Executions, 1)
	require.Len(t, backend.Queues[gpu.QueueCopy].Executions, 1)

	// copy lists never bind the shader-visible heap
	require.Zero(t, listsOf(backend, gpu.QueueCopy)[0].Count("SetDescriptorHeap"))
	require.Equal(t, 1, listsOf(backend, gpu.QueueCompute)[0].Count("SetDescriptorHeap"))
}

func TestFenceStaysOrderedThroughSubmitSignalAndBlock(t *testing.T) {
	d, _ := testDevice(t, fake.Options{ManualFences: true})
	cb := timestampBuffer()
	engine := d.Engine()

	check := func() {
		for i := 0; i < gpu.QueueTypeCount; i++ {
			fence := engine.Fence(gpu.QueueType(i))
			require.NoError(t, fence.Validate())
		}
	}

	signal := d.SubmitCommands(cb, gpu.QueueCompute)
	check()
	require.Equal(t, uint64(0), engine.Fence(gpu.QueueCompute).LastSignal)

	require.Equal(t, uint64(1), d.Signal(gpu.QueueCompute))
	check()
	// signaling again without new work is a no-op
	require.Equal(t, uint64(1), d.Signal(gpu.QueueCompute))

	d.SubmitCommands(cb, gpu.QueueCompute)
	check()

	d.Block(signal)
	check()
	fence := engine.Fence(gpu.QueueCompute)
	require.Equal(t, uint64(2), fence.Tail)
	require.Equal(t, uint64(2), fence.LastSignal)

	d.Present()
	check()
	d.Sync()
	check()
}

func TestAllocatorsAreNotResetWhileInFlight(t *testing.T) {
	d, backend := testDevice(t, fake.Options{ManualFences: true})
	cb := timestampBuffer()

	d.SubmitCommands(cb, gpu.QueueCompute)
	// the list's first allocator was stamped with fence value 1, which the GPU has not reached
	require.Len(t, allocatorsOf(backend, gpu.QueueCompute), 2)

	signal := d.SubmitCommands(cb, gpu.QueueCompute)
	require.Len(t, allocatorsOf(backend, gpu.QueueCompute), 3)
	for _, allocator := range allocatorsOf(backend, gpu.QueueCompute) {
		require.Zero(t, allocator.Resets)
	}

	d.Block(signal)

	d.SubmitCommands(cb, gpu.QueueCompute)
	allocators := allocatorsOf(backend, gpu.QueueCompute)
	require.Len(t, allocators, 3)
	require.Equal(t, 1, allocators[0].Resets)
	require.Len(t, listsOf(backend, gpu.QueueCompute), 1)
}

func TestWaitFlushesAndSignalsProducerFirst(t *testing.T) {
	d, backend := testDevice(t, fake.Options{})
	cb := timestampBuffer()

	produced := d.SubmitCommands(cb, gpu.QueueDirect)
	d.Wait(produced, gpu.QueueCompute)

	direct := backend.Queues[gpu.QueueDirect]
	require.Len(t, direct.Executions, 1)

	fence := d.Engine().Fence(gpu.QueueDirect)
	directFence := fence.Native().(*fake.Fence)
	require.Equal(t, []uint64{1}, directFence.Signals)

	compute := backend.Queues[gpu.QueueCompute]
	require.Equal(t, []fake.GPUWait{{Fence: directFence, Value: 1}}, compute.GPUWaits)
}

func TestWaitPastHeadIsFatal(t *testing.T) {
	d, _ := testDevice(t, fake.Options{})

	require.Panics(t, func() {
		d.Wait(gpu.Signal{Queue: gpu.QueueCopy, Value: 5}, gpu.QueueDirect)
	})
}

func TestEmptySubmissionIsFatal(t *testing.T) {
	d, _ := testDevice(t, fake.Options{})

	require.Panics(t, func() {
		d.SubmitCommands(command.New(64), gpu.QueueDirect)
	})
}

func TestBarriersAreBatchedAndFlushedBeforeCopies(t *testing.T) {
	d, backend := testDevice(t, fake.Options{})
	src := colorTarget(t, d, 32, 32)
	dst := colorTarget(t, d, 32, 32)

	cb := command.New(8192)
	states := []gpu.ResourceState{gpu.StateCommon, gpu.StateRenderTarget}
	for i := 0; i < 12; i++ {
		cb.Add(&command.LayoutBarrier{
			Texture:         view2D(src, gpu.FormatR8G8B8A8_UNORM),
			Before:          states[i%2],
			After:           states[(i+1)%2],
			AllSubresources: true,
		})
	}
	cb.Add(&command.CopyTexture{Dst: view2D(dst, gpu.FormatR8G8B8A8_UNORM), Src: view2D(src, gpu.FormatR8G8B8A8_UNORM)})

	d.SubmitCommands(cb, gpu.QueueDirect)

	list := listsOf(backend, gpu.QueueDirect)[0]
	barrierCalls := list.CallsOf("ResourceBarrier")
	require.Len(t, barrierCalls, 2)
	require.Len(t, barrierCalls[0].Args[0], 10)
	require.Len(t, barrierCalls[1].Args[0], 2)

	methods := make([]string, 0, len(list.Calls))
	for _, call := range list.Calls {
		methods = append(methods, call.Method)
	}
	require.Equal(t, []string{"SetDescriptorHeap", "ResourceBarrier", "ResourceBarrier", "CopyTextureRegion"}, methods)

	barrier := list.Barriers()[0]
	require.Equal(t, native.AllSubresources, barrier.Subresource)
	require.Equal(t, native.StateCommon, barrier.Before)
	require.Equal(t, native.StateRenderTarget, barrier.After)
}

func TestSubresourceBarrier(t *testing.T) {
	d, backend := testDevice(t, fake.Options{})
	tex := colorTarget(t, d, 32, 32)

	view := gpu.TextureView{Texture: tex, Dimension: gpu.ViewTexture2DArray, MipLevel: 1, MipCount: 3, Index: 2, Depth: 4}
	cb := command.New(1024)
	cb.Add(&command.LayoutBarrier{Texture: view, Before: gpu.StateCommon, After: gpu.StateUnorderedAccess})
	d.SubmitCommands(cb, gpu.QueueDirect)

	// closing the list issues the pending barrier
	barriers := listsOf(backend, gpu.QueueDirect)[0].Barriers()
	require.Len(t, barriers, 1)
	require.Equal(t, uint32(1+3*2), barriers[0].Subresource)
	require.Equal(t, native.StateUnorderedAccess, barriers[0].After)
}

func TestUAVBarriersCoverBuffersAndTextures(t *testing.T) {
	d, backend := testDevice(t, fake.Options{})
	buf, err := d.CreateBuffer(gpu.BufferDesc{Size: 512, Flags: gpu.BindRW})
	require.NoError(t, err)
	tex := colorTarget(t, d, 16, 16)

	cmd := &command.ResourceBarrier{NumBufferBarriers: 1, NumTextureBarriers: 1}
	cmd.Buffers[0] = buf
	cmd.Textures[0] = tex

	cb := command.New(1024)
	cb.Add(cmd)
	d.SubmitCommands(cb, gpu.QueueDirect)

	barriers := listsOf(backend, gpu.QueueDirect)[0].Barriers()
	require.Len(t, barriers, 2)
	require.Equal(t, native.BarrierUAV, barriers[0].Kind)
	require.Equal(t, native.BarrierUAV, barriers[1].Kind)
	require.Same(t, backend.Textures[0], barriers[1].Resource)
}

func computePipeline(t *testing.T, d *Device) gpu.PipelineHandle {
	var layout gpu.PipelineInputLayout
	layout.AddEntry(gpu.ResourceListGroup(gpu.ResourceListDesc{Type: gpu.DescriptorSRV, NumResources: 4}))
	layout.AddEntry(gpu.BufferGroup(gpu.DescriptorCBV, 0, 0))

	handle, err := d.CreateComputePipeline(&gpu.ComputePipelineDesc{ComputeShader: []byte{0x44, 0x58}}, &layout)
	require.NoError(t, err)
	return handle
}

func TestRootArgumentsAreOnlyRebound(t *testing.T) {
	d, backend := testDevice(t, fake.Options{})
	pipeline := computePipeline(t, d)
	inputs := d.CreatePipelineInputList(4)
	constants, err := d.CreateBuffer(gpu.BufferDesc{Size: 1024, Storage: gpu.StorageUpload})
	require.NoError(t, err)

	var state gpu.PipelineInputState
	state.SetResourceList(0, inputs)
	state.SetBuffer(1, constants, 0, gpu.DescriptorCBV)

	moved := state
	moved.SetBuffer(1, constants, 256, gpu.DescriptorCBV)

	cb := command.New(4096)
	cb.Add(&command.Dispatch{ComputePipeline: pipeline, InputState: state, X: 1, Y: 1, Z: 1})
	cb.Add(&command.Dispatch{ComputePipeline: pipeline, InputState: state, X: 2, Y: 1, Z: 1})
	cb.Add(&command.Dispatch{ComputePipeline: pipeline, InputState: moved, X: 3, Y: 1, Z: 1})
	d.SubmitCommands(cb, gpu.QueueDirect)

	list := listsOf(backend, gpu.QueueDirect)[0]
	require.Equal(t, 1, list.Count("SetComputeRootSignature"))
	require.Equal(t, 1, list.Count("SetComputeRootDescriptorTable"))
	require.Equal(t, 2, list.Count("SetComputeRootView"))
	require.Equal(t, 1, list.Count("SetPipelineState"))
	require.Equal(t, 3, list.Count("Dispatch"))

	views := list.CallsOf("SetComputeRootView")
	address := d.BufferAddress(constants)
	require.Equal(t, []any{uint32(1), gpu.DescriptorCBV, address}, views[0].Args)
	require.Equal(t, []any{uint32(1), gpu.DescriptorCBV, address + 256}, views[1].Args)

	// a reset list starts from a cleared bind state and rebinds everything
	d.Present()
	d.SubmitCommands(cb, gpu.QueueDirect)
	require.Len(t, listsOf(backend, gpu.QueueDirect), 1)
	require.Equal(t, 1, list.Count("SetComputeRootSignature"))
	require.Equal(t, 1, list.Count("SetComputeRootDescriptorTable"))
	require.Equal(t, 2, list.Count("SetComputeRootView"))
}

func TestDispatchIndirect(t *testing.T) {
	d, backend := testDevice(t, fake.Options{})
	pipeline := computePipeline(t, d)
	args, err := d.CreateBuffer(gpu.BufferDesc{Size: 64, Flags: gpu.BindIndirectArguments})
	require.NoError(t, err)

	cb := command.New(2048)
	cb.Add(&command.DispatchIndirect{ComputePipeline: pipeline, Args: args, Offset: 12})
	d.SubmitCommands(cb, gpu.QueueCompute)

	// compute lists are reset right after execution, so the queue is the witness
	require.Len(t, backend.Queues[gpu.QueueCompute].Executions, 1)
	require.Equal(t, 1, listsOf(backend, gpu.QueueCompute)[0].Executions)

	overrun := command.New(2048)
	overrun.Add(&command.DispatchIndirect{ComputePipeline: pipeline, Args: args, Offset: 60})
	require.Panics(t, func() { d.SubmitCommands(overrun, gpu.QueueCompute) })
}

func TestGraphicsPipelineOnComputeDispatchIsFatal(t *testing.T) {
	d, _ := testDevice(t, fake.Options{})
	var layout gpu.PipelineInputLayout
	graphics, err := d.CreateGraphicsPipeline(&gpu.GraphicsPipelineDesc{VertexShader: []byte{1}}, &layout)
	require.NoError(t, err)

	cb := command.New(2048)
	cb.Add(&command.Dispatch{ComputePipeline: graphics, X: 1, Y: 1, Z: 1})
	require.Panics(t, func() { d.SubmitCommands(cb, gpu.QueueDirect) })
}

func TestDrawBindsVertexAndIndexBuffers(t *testing.T) {
	d, backend := testDevice(t, fake.Options{})
	var layout gpu.PipelineInputLayout
	pipeline, err := d.CreateGraphicsPipeline(&gpu.GraphicsPipelineDesc{VertexShader: []byte{1}}, &layout)
	require.NoError(t, err)

	vertices, err := d.CreateBuffer(gpu.BufferDesc{Size: 4096, Flags: gpu.BindVertexBuffer})
	require.NoError(t, err)
	indices, err := d.CreateBuffer(gpu.BufferDesc{Size: 1024, Flags: gpu.BindIndexBuffer})
	require.NoError(t, err)

	indexed := &command.Draw{
		GraphicsPipeline:  pipeline,
		Rect:              gpu.FullScissor(64, 64),
		InputBuffer:       vertices,
		IndexBuffer:       indices,
		NumInstances:      2,
		NumVertexBuffers:  2,
		NumElements:       36,
		IndexBufferSize:   144,
		IndexBufferOffset: 64,
	}
	indexed.VertexBufferOffsets = [gpu.MaxVertexBuffers]uint32{0, 1024}
	indexed.VertexBufferSizes = [gpu.MaxVertexBuffers]uint32{1024, 512}
	indexed.VertexBufferStrides = [gpu.MaxVertexBuffers]uint32{12, 8}

	plain := &command.Draw{GraphicsPipeline: pipeline, Rect: gpu.FullScissor(64, 64), NumInstances: 1, NumElements: 3}

	cb := command.New(4096)
	cb.Add(indexed)
	cb.Add(plain)
	d.SubmitCommands(cb, gpu.QueueDirect)

	list := listsOf(backend, gpu.QueueDirect)[0]
	base := d.BufferAddress(vertices)

	vertexCalls := list.CallsOf("SetVertexBuffers")
	require.Len(t, vertexCalls, 2)
	require.Equal(t, []native.VertexBufferView{
		{Address: base, Size: 1024, Stride: 12},
		{Address: base + 1024, Size: 512, Stride: 8},
	}, vertexCalls[0].Args[0])
	require.Empty(t, vertexCalls[1].Args[0])

	require.Equal(t, []any{native.IndexBufferView{
		Address: d.BufferAddress(indices) + 64,
		Size:    144,
		Format:  gpu.FormatR32_UINT,
	}}, list.CallsOf("SetIndexBuffer")[0].Args)
	require.Equal(t, []any{uint32(36), uint32(2)}, list.CallsOf("DrawIndexedInstanced")[0].Args)
	require.Equal(t, []any{uint32(3), uint32(1)}, list.CallsOf("DrawInstanced")[0].Args)
	require.Equal(t, 2, list.Count("SetScissor"))
	require.Equal(t, 1, list.Count("SetPipelineState"))
}

func TestRenderPassViewsAreCreatedOncePerTextureAndUsage(t *testing.T) {
	d, backend := testDevice(t, fake.Options{})
	color := colorTarget(t, d, 64, 64)
	depth, err := d.CreateTexture(gpu.TextureDesc{
		Width: 64, Height: 64, Depth: 1, MipLevels: 1, SampleCount: 1,
		Format:    gpu.FormatD32_FLOAT_S8X24_UINT,
		Dimension: gpu.Texture2D,
		Flags:     gpu.BindDepthStencilTarget,
	})
	require.NoError(t, err)

	var desc gpu.RenderPassDesc
	desc.NumRenderTargets = 1
	desc.RenderTargets[0] = gpu.RenderTargetDesc{BeginOp: gpu.BeginClear, EndOp: gpu.EndPreserve}
	desc.DepthStencil = &gpu.DepthStencilTargetDesc{DepthBeginOp: gpu.BeginClear, BeginDepthClear: 1}
	pass := d.CreateRenderPass(desc)

	begin := func(write bool) *command.BeginRenderPass {
		cmd := &command.BeginRenderPass{
			RenderTargetCount: 1,
			DepthStencil:      view2D(depth, gpu.FormatD32_FLOAT_S8X24_UINT),
			RenderPass:        pass,
			Topology:          gpu.TopologyTriangleList,
			Viewport:          gpu.FullViewport(64, 64),
			DepthWrite:        write,
		}
		cmd.Color[0] = view2D(color, gpu.FormatR8G8B8A8_UNORM)
		return cmd
	}

	require.Equal(t, gpu.SwapChainBackBufferCount, backend.CountViews(fake.ViewRenderTarget))

	cb := command.New(4096)
	cb.Add(begin(true))
	cb.Add(&command.EndRenderPass{})
	cb.Add(begin(false))
	cb.Add(&command.EndRenderPass{})
	d.SubmitCommands(cb, gpu.QueueDirect)
	d.SubmitCommands(cb, gpu.QueueDirect)

	require.Equal(t, gpu.SwapChainBackBufferCount+1, backend.CountViews(fake.ViewRenderTarget))
	require.Equal(t, 1, backend.CountViews(fake.ViewDepthWrite))
	require.Equal(t, 1, backend.CountViews(fake.ViewDepthRead))

	calls := listsOf(backend, gpu.QueueDirect)[0].CallsOf("BeginRenderPass")
	require.Len(t, calls, 2)
	targets := calls[0].Args[0].([]native.RenderPassTarget)
	require.Len(t, targets, 1)
	require.Equal(t, gpu.BeginClear, targets[0].Desc.BeginOp)
	writeDepth := calls[0].Args[1].(*native.RenderPassDepthTarget)
	readDepth := calls[1].Args[1].(*native.RenderPassDepthTarget)
	require.NotEqual(t, writeDepth.Descriptor, readDepth.Descriptor)
	require.Equal(t, fake.ViewDepthRead, backend.Views[readDepth.Descriptor].Kind)

	// destroying the texture hands its render-target descriptor to the next one
	d.DestroyTexture(color)
	replacement := colorTarget(t, d, 64, 64)
	require.Equal(t, color, replacement)

	d.Present()
	d.SubmitCommands(cb, gpu.QueueDirect)
	again := listsOf(backend, gpu.QueueDirect)[0].CallsOf("BeginRenderPass")
	require.Equal(t, targets[0].Descriptor, again[0].Args[0].([]native.RenderPassTarget)[0].Descriptor)
	require.Same(t, backend.Textures[len(backend.Textures)-1], backend.Views[targets[0].Descriptor].Resource)
}

func TestNestedRenderPassIsFatal(t *testing.T) {
	d, _ := testDevice(t, fake.Options{})
	color := colorTarget(t, d, 16, 16)

	var desc gpu.RenderPassDesc
	desc.NumRenderTargets = 1
	pass := d.CreateRenderPass(desc)

	begin := &command.BeginRenderPass{RenderTargetCount: 1, RenderPass: pass}
	begin.Color[0] = view2D(color, gpu.FormatR8G8B8A8_UNORM)

	cb := command.New(4096)
	cb.Add(begin)
	cb.Add(begin)
	require.Panics(t, func() { d.SubmitCommands(cb, gpu.QueueDirect) })

	unbalanced := command.New(64)
	unbalanced.Add(&command.EndRenderPass{})
	d2, _ := testDevice(t, fake.Options{})
	require.Panics(t, func() { d2.SubmitCommands(unbalanced, gpu.QueueDirect) })
}

func TestCopyToSwapChainRestoresStates(t *testing.T) {
	d, backend := testDevice(t, fake.Options{})
	color := colorTarget(t, d, 64, 64)

	cb := command.New(1024)
	cb.Add(&command.CopyToSwapChain{Texture: view2D(color, gpu.FormatR8G8B8A8_UNORM), TextureState: gpu.StateRenderTarget})
	d.SubmitCommands(cb, gpu.QueueDirect)

	list := listsOf(backend, gpu.QueueDirect)[0]
	backBuffer := backend.SwapChain.BackBuffer(0)
	texture := backend.Textures[0]

	barriers := list.Barriers()
	require.Equal(t, []native.Barrier{
		native.Transition(texture, 0, native.StateRenderTarget, native.StateCopySource),
		native.Transition(backBuffer, 0, native.StatePresent, native.StateCopyDest),
		native.Transition(backBuffer, 0, native.StateCopyDest, native.StatePresent),
		native.Transition(texture, 0, native.StateCopySource, native.StateRenderTarget),
	}, barriers)

	copies := list.CallsOf("CopyTextureRegion")
	require.Len(t, copies, 1)
	require.Same(t, backBuffer, copies[0].Args[0].(native.CopyLocation).Resource)
}

func TestBufferToTextureCopyUsesPlacedFootprint(t *testing.T) {
	d, backend := testDevice(t, fake.Options{})
	tex := colorTarget(t, d, 4, 2)
	staging, err := d.CreateBuffer(gpu.BufferDesc{Size: 1024, Storage: gpu.StorageUpload})
	require.NoError(t, err)

	data, err := d.Map(staging, 0, 1024)
	require.NoError(t, err)
	for i := range data {
		data[i] = byte(i)
	}
	d.Unmap(staging, 0, 1024)

	cb := command.New(1024)
	cb.Add(&command.CopyBufferToTexture{
		Texture:      view2D(tex, gpu.FormatR8G8B8A8_UNORM),
		Width:        4,
		Height:       2,
		Buffer:       staging,
		BufferOffset: 256,
		RowSize:      256,
	})
	d.SubmitCommands(cb, gpu.QueueCopy)

	texture := backend.Textures[0]
	require.Equal(t, data[256:256+16], texture.Memory[:16])
	require.Equal(t, data[512:512+16], texture.Memory[16:32])

	copies := listsOf(backend, gpu.QueueCopy)[0]
	require.Equal(t, 1, copies.Executions)
}

func TestTimestampsAreBoundsChecked(t *testing.T) {
	d, _ := testDevice(t, fake.Options{})
	readback, err := d.CreateBuffer(gpu.BufferDesc{Size: 1024, Storage: gpu.StorageReadback})
	require.NoError(t, err)

	cb := command.New(1024)
	cb.Add(&command.InsertTimestamp{Index: 0})
	cb.Add(&command.InsertTimestamp{Index: 1})
	cb.Add(&command.ResolveTimestamps{Index: 0, TimestampCount: 2, Dest: readback})
	d.SubmitCommands(cb, gpu.QueueDirect)

	outOfRange := command.New(64)
	outOfRange.Add(&command.InsertTimestamp{Index: gpu.MaxTimestampQueries})
	require.Panics(t, func() { d.SubmitCommands(outOfRange, gpu.QueueCompute) })

	d2, _ := testDevice(t, fake.Options{})
	nullDest := command.New(64)
	nullDest.Add(&command.ResolveTimestamps{Index: 0, TimestampCount: 2})
	require.Panics(t, func() { d2.SubmitCommands(nullDest, gpu.QueueDirect) })
}

func TestMapRequiresCPUVisibleStorage(t *testing.T) {
	d, _ := testDevice(t, fake.Options{})
	deviceLocal, err := d.CreateBuffer(gpu.BufferDesc{Size: 256})
	require.NoError(t, err)
	upload, err := d.CreateBuffer(gpu.BufferDesc{Size: 256, Storage: gpu.StorageUpload})
	require.NoError(t, err)

	_, err = d.Map(deviceLocal, 0, 16)
	require.Error(t, err)

	data, err := d.Map(upload, 16, 32)
	require.NoError(t, err)
	require.Len(t, data, 32)
	require.Equal(t, 1, d.MappedBuffers())

	d.Unmap(upload, 16, 32)
	require.Zero(t, d.MappedBuffers())
	require.Panics(t, func() { d.Unmap(upload, 16, 32) })
}

func TestPipelineInputListUpdates(t *testing.T) {
	d, backend := testDevice(t, fake.Options{})
	list := d.CreatePipelineInputList(4)
	tex := colorTarget(t, d, 16, 16)
	buf, err := d.CreateBuffer(gpu.BufferDesc{Size: 1024, Storage: gpu.StorageUpload})
	require.NoError(t, err)

	table := *d.res.inputList(list)

	d.UpdateTextureViews(list, gpu.DescriptorSRV, []gpu.TextureView{view2D(tex, gpu.FormatR8G8B8A8_UNORM)}, 1)
	d.UpdateBufferViews(list, gpu.DescriptorCBV, []gpu.BufferView{{Buffer: buf, Offset: 256, Size: 256}, {Buffer: buf, Size: 256}}, 2)

	written := backend.Views[table.CPU+uint64(table.Increment)]
	require.Equal(t, gpu.DescriptorSRV, written.Type)
	require.Equal(t, tex, written.Texture.Texture)

	cbv := backend.Views[table.CPU+3*uint64(table.Increment)]
	require.Equal(t, gpu.DescriptorCBV, cbv.Type)
	require.Equal(t, buf, cbv.Buffer.Buffer)

	require.Panics(t, func() {
		d.UpdateTextureViews(list, gpu.DescriptorCBV, []gpu.TextureView{view2D(tex, gpu.FormatR8G8B8A8_UNORM)}, 0)
	})
	require.Panics(t, func() {
		d.UpdateBufferViews(list, gpu.DescriptorSRV, make([]gpu.BufferView, 2), 3)
	})
}

func TestDestroyPipelineResources(t *testing.T) {
	d, backend := testDevice(t, fake.Options{})
	pipeline := computePipeline(t, d)
	list := d.CreatePipelineInputList(8)
	pass := d.CreateRenderPass(gpu.RenderPassDesc{})

	d.DestroyPipelineResource(pipeline)
	d.DestroyPipelineResource(list)
	d.DestroyPipelineResource(pass)

	require.True(t, backend.Pipelines[0].Released)
	require.True(t, backend.RootSignatures[0].Released)
	require.Zero(t, d.shaderHeap.Live())

	require.Panics(t, func() { d.DestroyPipelineResource(pipeline) })
	require.Panics(t, func() { d.DestroyPipelineResource(list) })
	require.Panics(t, func() { d.DestroyPipelineResource(pass) })
	require.Panics(t, func() { d.DestroyPipelineResource(gpu.PipelineHandle{Handle: 1, Type: gpu.PipelineType(9)}) })
}

func TestDepthStencilTexturesCannotBeWritable(t *testing.T) {
	d, _ := testDevice(t, fake.Options{})

	require.Panics(t, func() {
		_, _ = d.CreateTexture(gpu.TextureDesc{
			Width: 16, Height: 16, Format: gpu.FormatD32_FLOAT_S8X24_UINT,
			Flags: gpu.BindDepthStencilTarget | gpu.BindRW,
		})
	})
}

func TestResizeBuffersDrainsAndRecreatesViews(t *testing.T) {
	d, backend := testDevice(t, fake.Options{ManualFences: true})
	d.SubmitCommands(timestampBuffer(), gpu.QueueDirect)

	require.NoError(t, d.ResizeBuffers(128, 96))

	fence := d.Engine().Fence(gpu.QueueDirect)
	require.Equal(t, fence.Head, fence.Tail)
	require.Equal(t, 1, backend.SwapChain.Resizes)

	width, height := d.SwapChainSize()
	require.Equal(t, uint32(128), width)
	require.Equal(t, uint32(96), height)

	for i, view := range d.swapChain.views {
		require.Same(t, backend.SwapChain.BackBuffer(i), backend.Views[view].Resource)
	}

	require.Error(t, d.ResizeBuffers(0, 0))
}

func TestFeatureInfo(t *testing.T) {
	d, _ := testDevice(t, fake.Options{UMA: true, TimestampFrequency: 1000})

	info := d.FeatureInfo()
	require.True(t, info.UMA)
	require.Equal(t, [gpu.QueueTypeCount]uint64{1000, 1000, 1000}, info.TimestampFrequency)
}

func TestBuildStatsString(t *testing.T) {
	d, _ := testDevice(t, fake.Options{})
	_, err := d.CreateBuffer(gpu.BufferDesc{Size: 4096})
	require.NoError(t, err)
	colorTarget(t, d, 32, 32)
	d.SubmitCommands(timestampBuffer(), gpu.QueueDirect)

	var stats struct {
		Pools map[string]struct {
			Live     int
			Capacity int
		}
		Queues map[string]struct {
			Head         int
			CommandLists int
		}
		Memory struct {
			Total struct {
				HeapCount      int
				PlacementCount int
			}
			DetailedMap map[string]json.RawMessage
		}
	}
	require.NoError(t, json.Unmarshal([]byte(d.BuildStatsString(true)), &stats))

	require.Equal(t, 1, stats.Pools["Buffers"].Live)
	require.Equal(t, 1, stats.Pools["Textures"].Live)
	require.Equal(t, 256, stats.Pools["Buffers"].Capacity)
	require.Equal(t, 1, stats.Queues["Direct"].Head)
	require.Equal(t, 1, stats.Queues["Direct"].CommandLists)
	require.Equal(t, 2, stats.Memory.Total.PlacementCount)
	require.Equal(t, 2, stats.Memory.Total.HeapCount)
	require.Contains(t, stats.Memory.DetailedMap, "Buffer/0")
	require.Contains(t, stats.Memory.DetailedMap, "RenderTarget/0")
}

func TestDestroyReportsLiveResources(t *testing.T) {
	d, backend := testDevice(t, fake.Options{})
	buf, err := d.CreateBuffer(gpu.BufferDesc{Size: 256})
	require.NoError(t, err)

	err = d.Destroy()
	require.Error(t, err)
	require.True(t, errors.Is(err, heap.ErrUnreleasedPlacements))
	// nothing is released while placements are live
	require.Equal(t, 1, backend.LiveHeaps())

	clean, cleanBackend := testDevice(t, fake.Options{})
	buf, err = clean.CreateBuffer(gpu.BufferDesc{Size: 256})
	require.NoError(t, err)
	clean.DestroyBuffer(buf)

	require.NoError(t, clean.Destroy())
	require.Zero(t, cleanBackend.LiveHeaps())
	require.True(t, cleanBackend.SwapChain.Released)
	for _, descriptors := range cleanBackend.DescriptorHeaps {
		require.True(t, descriptors.Released)
	}
}
