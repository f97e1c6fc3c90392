// Package device is the GPU device façade. It owns every resource table, the heap allocator, the
// shader-visible descriptor heap, the swapchain and the Engine that replays command buffers onto
// native command lists.
package device

import (
	"github.com/cockroachdb/errors"
	"github.com/dolthub/swiss"
	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
	"github.com/vkngwrapper/kiln/descriptor"
	"github.com/vkngwrapper/kiln/fatal"
	"github.com/vkngwrapper/kiln/gpu"
	"github.com/vkngwrapper/kiln/gpu/command"
	"github.com/vkngwrapper/kiln/gpu/native"
	"github.com/vkngwrapper/kiln/heap"
	"github.com/vkngwrapper/kiln/memutils"
	"golang.org/x/exp/slog"
)

type Options struct {
	SwapChain gpu.SwapChainDesc
	// HeapSize is passed to the heap allocator; 0 selects heap.DefaultHeapSize
	HeapSize int
	// ShaderDescriptors sizes the shader-visible descriptor heap; 0 selects
	// descriptor.DefaultShaderHeapSize
	ShaderDescriptors int
	// TargetDescriptorChunk is the number of render-target or depth-stencil descriptors in each
	// native heap the CPU descriptor pools create
	TargetDescriptorChunk int
	// PoolCapacity bounds every resource table
	PoolCapacity int
}

// mapping counts the outstanding Map calls on a buffer
type mapping struct {
	count int
	bytes int
}

type Device struct {
	logger     *slog.Logger
	backend    native.Device
	allocator  *heap.Allocator
	shaderHeap *descriptor.ShaderHeap
	res        *resources
	engine     *Engine
	swapChain  *swapChain
	features   gpu.FeatureInfo
	mapped     *swiss.Map[gpu.BufferHandle, mapping]
}

func New(logger *slog.Logger, backend native.Device, options Options) (*Device, error) {
	if logger == nil {
		return nil, errors.New("logger must not be nil")
	}
	if backend == nil {
		return nil, errors.New("native device must not be nil")
	}

	allocator, err := heap.New(logger, backend, heap.Options{HeapSize: options.HeapSize})
	if err != nil {
		return nil, err
	}

	shaderHeap, err := descriptor.NewShaderHeap(backend, options.ShaderDescriptors)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create shader descriptor heap")
	}

	res, err := newResources(backend, options.PoolCapacity, options.TargetDescriptorChunk)
	if err != nil {
		shaderHeap.Destroy()
		return nil, err
	}

	engine, err := newEngine(logger, backend, res, shaderHeap)
	if err != nil {
		res.destroy()
		shaderHeap.Destroy()
		return nil, err
	}

	d := &Device{
		logger:     logger,
		backend:    backend,
		allocator:  allocator,
		shaderHeap: shaderHeap,
		res:        res,
		engine:     engine,
		mapped:     swiss.NewMap[gpu.BufferHandle, mapping](16),
	}

	d.swapChain, err = newSwapChain(backend, engine.queues[gpu.QueueDirect].native, options.SwapChain, res.rtvs)
	if err != nil {
		engine.destroy()
		res.destroy()
		shaderHeap.Destroy()
		return nil, err
	}
	engine.swapChain = d.swapChain

	d.features.UMA = backend.UMA()
	for i := range d.features.TimestampFrequency {
		d.features.TimestampFrequency[i] = engine.TimestampFrequency(gpu.QueueType(i))
	}

	logger.Info("device created",
		slog.Int("width", int(options.SwapChain.Width)),
		slog.Int("height", int(options.SwapChain.Height)),
		slog.Bool("uma", d.features.UMA),
	)
	return d, nil
}

func (d *Device) Logger() *slog.Logger { return d.logger }

func (d *Device) Engine() *Engine { return d.engine }

func (d *Device) CreateBuffer(desc gpu.BufferDesc) (gpu.BufferHandle, error) {
	if desc.Size == 0 {
		return gpu.InvalidBuffer, errors.New("buffer size must be greater than 0")
	}

	info := d.backend.BufferAllocationInfo(desc)
	placement, err := d.allocator.Allocate(heap.ClassForBuffer(desc.Storage), info.Size, info.Alignment)
	if err != nil {
		return gpu.InvalidBuffer, err
	}

	where := d.allocator.Info(placement)
	resource, err := d.backend.CreatePlacedBuffer(where.NativeHeap, where.Offset, desc)
	if err != nil {
		d.allocator.Deallocate(placement)
		return gpu.InvalidBuffer, errors.Wrapf(err, "failed to place %s buffer of %d bytes", desc.Storage, desc.Size)
	}

	handle := d.res.buffers.Add(buffer{resource: resource, placement: placement, desc: desc})
	return gpu.BufferHandle(handle), nil
}

func (d *Device) CreateTexture(desc gpu.TextureDesc) (gpu.TextureHandle, error) {
	if desc.Flags.Has(gpu.BindDepthStencilTarget) {
		fatal.Check(!desc.Flags.Has(gpu.BindRenderTarget) && !desc.Flags.Has(gpu.BindRW),
			"depth stencil textures cannot also be render targets or read-write")
	}
	if desc.Width == 0 || desc.Height == 0 {
		return gpu.InvalidTexture, errors.Newf("texture of %dx%d", desc.Width, desc.Height)
	}

	info := d.backend.TextureAllocationInfo(desc)
	placement, err := d.allocator.Allocate(heap.ClassForTexture(desc), info.Size, info.Alignment)
	if err != nil {
		return gpu.InvalidTexture, err
	}

	where := d.allocator.Info(placement)
	resource, err := d.backend.CreatePlacedTexture(where.NativeHeap, where.Offset, desc)
	if err != nil {
		d.allocator.Deallocate(placement)
		return gpu.InvalidTexture, errors.Wrapf(err, "failed to place %s texture of %dx%d", desc.Format, desc.Width, desc.Height)
	}

	handle := d.res.textures.Add(texture{resource: resource, placement: placement, desc: desc})
	return gpu.TextureHandle(handle), nil
}

func (d *Device) CreateRenderPass(desc gpu.RenderPassDesc) gpu.PipelineHandle {
	fatal.Check(desc.NumRenderTargets <= gpu.MaxRenderTargets, "render pass with %d render targets", desc.NumRenderTargets)

	if desc.DepthStencil != nil {
		depth := *desc.DepthStencil
		desc.DepthStencil = &depth
	}

	handle := d.res.renderPasses.Add(renderPass{desc: desc, live: true})
	return gpu.PipelineHandle{Handle: handle, Type: gpu.RenderPass}
}

// CreatePipelineInputList carves a table of count descriptors out of the shader-visible heap
func (d *Device) CreatePipelineInputList(count uint32) gpu.PipelineHandle {
	fatal.Check(count > 0, "pipeline input list of 0 descriptors")

	table := d.shaderHeap.Allocate(count)
	handle := d.res.inputLists.Add(table)
	return gpu.PipelineHandle{Handle: handle, Type: gpu.PipelineInputList}
}

func checkLayout(layout *gpu.PipelineInputLayout) {
	fatal.Check(layout.NumEntries <= gpu.MaxPipelineLayoutEntries, "pipeline layout with %d entries", layout.NumEntries)
	fatal.Check(layout.NumSamplers <= gpu.MaxPipelineLayoutSamplers, "pipeline layout with %d samplers", layout.NumSamplers)
}

func (d *Device) CreateComputePipeline(desc *gpu.ComputePipelineDesc, layout *gpu.PipelineInputLayout) (gpu.PipelineHandle, error) {
	checkLayout(layout)

	signature, err := d.backend.CreateRootSignature(layout)
	if err != nil {
		return gpu.PipelineHandle{}, errors.Wrap(err, "failed to create compute root signature")
	}

	pso, err := d.backend.CreateComputePipeline(signature, desc)
	if err != nil {
		signature.Release()
		return gpu.PipelineHandle{}, errors.Wrap(err, "failed to create compute pipeline")
	}

	handle := d.res.pipelines.Add(pipelineState{pso: pso, signature: signature, compute: true})
	return gpu.PipelineHandle{Handle: handle, Type: gpu.ComputePipeline}, nil
}

func (d *Device) CreateGraphicsPipeline(desc *gpu.GraphicsPipelineDesc, layout *gpu.PipelineInputLayout) (gpu.PipelineHandle, error) {
	checkLayout(layout)
	fatal.Check(len(desc.InputLayout) <= gpu.MaxInputElements, "graphics pipeline with %d input elements", len(desc.InputLayout))
	fatal.Check(desc.RenderTargetCount <= gpu.MaxRenderTargets, "graphics pipeline with %d render targets", desc.RenderTargetCount)

	signature, err := d.backend.CreateRootSignature(layout)
	if err != nil {
		return gpu.PipelineHandle{}, errors.Wrap(err, "failed to create graphics root signature")
	}

	pso, err := d.backend.CreateGraphicsPipeline(signature, desc)
	if err != nil {
		signature.Release()
		return gpu.PipelineHandle{}, errors.Wrap(err, "failed to create graphics pipeline")
	}

	handle := d.res.pipelines.Add(pipelineState{pso: pso, signature: signature})
	return gpu.PipelineHandle{Handle: handle, Type: gpu.GraphicsPipeline}, nil
}

// DestroyBuffer releases the buffer immediately. Callers must make sure the GPU is done with it.
func (d *Device) DestroyBuffer(handle gpu.BufferHandle) {
	b := d.res.buffer(handle)
	fatal.Check(b.resource != nil, "buffer %d destroyed twice", handle)

	if m, ok := d.mapped.Get(handle); ok {
		d.logger.Warn("destroying mapped buffer", slog.Int("buffer", int(handle)), slog.Int("maps", m.count))
		d.mapped.Delete(handle)
	}

	b.resource.Release()
	d.allocator.Deallocate(b.placement)
	d.res.buffers.Remove(uint32(handle))
}

func (d *Device) DestroyTexture(handle gpu.TextureHandle) {
	t := d.res.texture(handle)
	fatal.Check(t.resource != nil, "texture %d destroyed twice", handle)

	d.res.releaseTargetViews(t)
	t.resource.Release()
	d.allocator.Deallocate(t.placement)
	d.res.textures.Remove(uint32(handle))
}

func (d *Device) DestroyPipelineResource(handle gpu.PipelineHandle) {
	switch handle.Type {
	case gpu.ComputePipeline, gpu.GraphicsPipeline:
		p := d.res.pipeline(handle)
		fatal.Check(p.pso != nil, "%s destroyed twice", handle)
		p.pso.Release()
		p.signature.Release()
		d.res.pipelines.Remove(handle.Handle)
	case gpu.PipelineInputList:
		table := d.res.inputList(handle)
		fatal.Check(!table.IsNull(), "%s destroyed twice", handle)
		d.shaderHeap.Release(*table)
		d.res.inputLists.Remove(handle.Handle)
	case gpu.RenderPass:
		pass := d.res.renderPass(handle)
		fatal.Check(pass.live, "%s destroyed twice", handle)
		d.res.renderPasses.Remove(handle.Handle)
	default:
		fatal.Reportf("invalid pipeline resource type %s", handle.Type)
	}
}

// Map returns the CPU view of [offset, offset+size) of an upload or readback buffer
func (d *Device) Map(handle gpu.BufferHandle, offset, size int) ([]byte, error) {
	b := d.res.buffer(handle)
	if !b.desc.Storage.CPUVisible() {
		return nil, errors.Newf("buffer %d has %s storage and cannot be mapped", handle, b.desc.Storage)
	}

	data, err := b.resource.Map(offset, size)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to map buffer %d", handle)
	}

	m, _ := d.mapped.Get(handle)
	m.count++
	m.bytes += size
	d.mapped.Put(handle, m)
	return data, nil
}

func (d *Device) Unmap(handle gpu.BufferHandle, offset, size int) {
	b := d.res.buffer(handle)

	m, ok := d.mapped.Get(handle)
	fatal.Check(ok, "buffer %d unmapped without being mapped", handle)

	b.resource.Unmap(offset, size)

	m.count--
	m.bytes -= size
	if m.count == 0 {
		d.mapped.Delete(handle)
	} else {
		d.mapped.Put(handle, m)
	}
}

// MappedBuffers is the number of buffers with outstanding Map calls
func (d *Device) MappedBuffers() int {
	return d.mapped.Count()
}

func (d *Device) BufferSize(handle gpu.BufferHandle) uint64 {
	return d.res.buffer(handle).desc.Size
}

func (d *Device) BufferDesc(handle gpu.BufferHandle) gpu.BufferDesc {
	return d.res.buffer(handle).desc
}

func (d *Device) TextureDesc(handle gpu.TextureHandle) gpu.TextureDesc {
	return d.res.texture(handle).desc
}

// BufferAddress is the GPU virtual address of the start of the buffer
func (d *Device) BufferAddress(handle gpu.BufferHandle) uint64 {
	return d.res.buffer(handle).resource.GPUAddress()
}

// UpdateTextureViews writes one view per texture into list, starting at descriptor offset.
// Textures take shader-resource or unordered-access views.
func (d *Device) UpdateTextureViews(list gpu.PipelineHandle, kind gpu.DescriptorType, views []gpu.TextureView, offset uint32) {
	fatal.Check(kind == gpu.DescriptorSRV || kind == gpu.DescriptorUAV, "textures cannot take %s views", kind)

	table := d.res.inputList(list)
	fatal.Check(!table.IsNull(), "%s has no descriptors", list)
	fatal.Check(int(offset)+len(views) <= int(table.Count),
		"writing %d views at offset %d into a list of %d", len(views), offset, table.Count)

	for i, view := range views {
		t := d.res.texture(view.Texture)
		d.backend.CreateTextureView(kind, t.resource, view, table.CPUAt(offset+uint32(i)))
	}
}

// UpdateBufferViews writes one view per buffer into list, starting at descriptor offset
func (d *Device) UpdateBufferViews(list gpu.PipelineHandle, kind gpu.DescriptorType, views []gpu.BufferView, offset uint32) {
	fatal.Check(kind <= gpu.DescriptorCBV, "invalid descriptor type %s", kind)

	table := d.res.inputList(list)
	fatal.Check(!table.IsNull(), "%s has no descriptors", list)
	fatal.Check(int(offset)+len(views) <= int(table.Count),
		"writing %d views at offset %d into a list of %d", len(views), offset, table.Count)

	for i, view := range views {
		b := d.res.buffer(view.Buffer)
		d.backend.CreateBufferView(kind, b.resource, view, table.CPUAt(offset+uint32(i)))
	}
}

// SubmitCommands replays buffer on queueType. Empty buffers are a caller bug.
func (d *Device) SubmitCommands(buffer *command.Buffer, queueType gpu.QueueType) gpu.Signal {
	fatal.Check(buffer.Len() > 0, "submitting an empty command buffer to the %s queue", queueType)
	return d.engine.Submit(buffer, queueType)
}

func (d *Device) Signal(queueType gpu.QueueType) uint64 {
	return d.engine.SignalQueue(queueType)
}

func (d *Device) Wait(producer gpu.Signal, queueType gpu.QueueType) {
	d.engine.Wait(producer, queueType)
}

// Block stalls the CPU until signal has been reached
func (d *Device) Block(signal gpu.Signal) {
	d.engine.Block(signal)
}

// Present shows the current back buffer and returns the direct-queue value that marks the end of
// the frame
func (d *Device) Present() gpu.Signal {
	return d.engine.Present()
}

// Sync drains every queue
func (d *Device) Sync() {
	d.engine.Sync()
}

func (d *Device) CompletedValue(queueType gpu.QueueType) uint64 {
	return d.engine.CompletedValue(queueType)
}

// ResizeBuffers drains the GPU and resizes the swapchain
func (d *Device) ResizeBuffers(width, height uint32) error {
	d.engine.Sync()

	if err := d.swapChain.resize(d.backend, width, height); err != nil {
		return err
	}

	d.logger.Info("swapchain resized", slog.Int("width", int(width)), slog.Int("height", int(height)))
	return nil
}

func (d *Device) SwapChainSize() (width, height uint32) {
	return d.swapChain.width, d.swapChain.height
}

func (d *Device) BackBufferIndex() int {
	return d.swapChain.native.CurrentBackBufferIndex()
}

func (d *Device) FeatureInfo() gpu.FeatureInfo {
	return d.features
}

// BuildStatsString returns a JSON document with resource table occupancy and heap statistics
func (d *Device) BuildStatsString(detailedMap bool) string {
	var total memutils.DetailedStatistics
	perClass := make([]memutils.DetailedStatistics, native.HeapClassCount)
	d.allocator.CalculateStatistics(&total, perClass)

	writer := jwriter.NewWriter()
	obj := writer.Object()

	pools := obj.Name("Pools").Object()
	writePoolStats(&pools, "Buffers", d.res.buffers.Len()-1, d.res.buffers.Cap())
	writePoolStats(&pools, "Textures", d.res.textures.Len()-1, d.res.textures.Cap())
	writePoolStats(&pools, "Pipelines", d.res.pipelines.Len()-1, d.res.pipelines.Cap())
	writePoolStats(&pools, "PipelineInputLists", d.res.inputLists.Len()-1, d.res.inputLists.Cap())
	writePoolStats(&pools, "RenderPasses", d.res.renderPasses.Len()-1, d.res.renderPasses.Cap())
	pools.End()

	descriptors := obj.Name("ShaderDescriptors").Object()
	descriptors.Name("Tables").Int(d.shaderHeap.Live())
	descriptors.Name("Offset").Int(int(d.shaderHeap.Offset()))
	descriptors.End()

	queues := obj.Name("Queues").Object()
	for i := range d.engine.queues {
		q := &d.engine.queues[i]
		queueObj := queues.Name(q.queueType.String()).Object()
		queueObj.Name("Head").Int(int(q.fence.Head))
		queueObj.Name("Tail").Int(int(q.fence.Tail))
		queueObj.Name("LastSignal").Int(int(q.fence.LastSignal))
		queueObj.Name("CommandLists").Int(len(q.lists))
		queueObj.End()
	}
	queues.End()

	memory := obj.Name("Memory").Object()
	d.allocator.WriteStats(&memory, &total, perClass, detailedMap)
	memory.End()

	obj.End()
	return string(writer.Bytes())
}

func writePoolStats(json *jwriter.ObjectState, name string, live, capacity int) {
	poolObj := json.Name(name).Object()
	poolObj.Name("Live").Int(live)
	poolObj.Name("Capacity").Int(capacity)
	poolObj.End()
}

// Destroy drains the GPU and releases everything the device created. Live buffers and textures are
// reported by the heap allocator.
func (d *Device) Destroy() error {
	d.engine.Sync()

	d.swapChain.release(d.res.rtvs)
	d.engine.destroy()
	d.res.destroy()
	d.shaderHeap.Destroy()

	if err := d.allocator.Destroy(); err != nil {
		return errors.Wrap(err, "device destroyed with live resources")
	}
	return nil
}
