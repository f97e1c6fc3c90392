package frame

import (
	"github.com/cockroachdb/errors"
	"github.com/dolthub/swiss"
	"github.com/vkngwrapper/kiln/fatal"
	"github.com/vkngwrapper/kiln/gpu"
	"github.com/vkngwrapper/kiln/gpu/command"
	"golang.org/x/exp/slog"
)

// DefaultMaxLatency is the number of frames whose GPU work may be outstanding at once
const DefaultMaxLatency = 3

type Options struct {
	Width  uint32
	Height uint32
	// MaxLatency caps the frames in flight; 0 selects DefaultMaxLatency
	MaxLatency        int
	CommandBufferSize int
	RingSize          int
	RingAlignment     int
	CopySize          int
}

// TextureID names a frame texture. The native texture behind it is created on first use and
// recreated after a resize.
type TextureID uint32

type frameTexture struct {
	desc gpu.TextureDesc
	// created is desc with the frame size filled in when the texture was last realized
	created gpu.TextureDesc
	handle  gpu.TextureHandle
	state   gpu.ResourceState
	// screenSized textures follow the frame size
	screenSized bool

	views bool
	srv   gpu.PipelineHandle
	uav   gpu.PipelineHandle
}

type viewKey struct {
	texture TextureID
	kind    gpu.DescriptorType
	view    gpu.TextureView
}

// Frame drives the per-frame loop: Begin bounds the number of frames in flight and reclaims ring
// space, recording goes into CommandBuffer, and Present submits, presents and locks the ring
// behind the present fence.
type Frame struct {
	logger *slog.Logger
	device Device

	commands *command.Buffer
	viewport gpu.Viewport

	presentFences []gpu.Signal
	presentIndex  int
	completed     uint64
	frameIndex    uint64
	// copiesWaited is the last ring copy-queue value the direct queue was made to wait on
	copiesWaited uint64
	// generation counts the resizes that dropped the frame textures
	generation uint64

	allocator   *BufferAllocator
	copyContext *CopyContext

	textures  []frameTexture
	viewCache *swiss.Map[viewKey, gpu.PipelineHandle]

	pipelines []gpu.PipelineHandle
}

func New(logger *slog.Logger, dev Device, options Options) (*Frame, error) {
	if logger == nil {
		return nil, errors.New("logger must not be nil")
	}
	if options.Width == 0 || options.Height == 0 {
		return nil, errors.Newf("frame of %dx%d", options.Width, options.Height)
	}
	if options.MaxLatency <= 0 {
		options.MaxLatency = DefaultMaxLatency
	}

	allocator, err := NewBufferAllocator(dev, options.RingSize, options.RingAlignment)
	if err != nil {
		return nil, err
	}

	copyContext, err := NewCopyContext(dev, options.CopySize)
	if err != nil {
		allocator.Destroy()
		return nil, err
	}

	return &Frame{
		logger:        logger,
		device:        dev,
		commands:      command.New(options.CommandBufferSize),
		viewport:      gpu.FullViewport(options.Width, options.Height),
		presentFences: make([]gpu.Signal, options.MaxLatency),
		allocator:     allocator,
		copyContext:   copyContext,
		viewCache:     swiss.NewMap[viewKey, gpu.PipelineHandle](16),
	}, nil
}

// Begin starts a frame. When MaxLatency frames are already in flight it blocks until the oldest
// of them has been presented, then hands its ring space back.
func (f *Frame) Begin() {
	f.completed = max(f.completed, f.device.CompletedValue(gpu.QueueDirect))

	oldest := f.presentFences[f.presentIndex]
	if oldest.Value > f.completed {
		f.logger.Debug("frame latency cap reached",
			slog.Uint64("frame", f.frameIndex),
			slog.Uint64("waiting_on", oldest.Value),
			slog.Uint64("completed", f.completed),
		)
		f.device.Block(oldest)
		f.completed = max(f.completed, f.device.CompletedValue(gpu.QueueDirect), oldest.Value)
	}

	f.allocator.Reset(f.completed)
}

// Present makes the direct queue wait for ring copies flushed since the last frame, submits the frame's commands,
// presents and locks the frame's ring span behind the present fence
func (f *Frame) Present() gpu.Signal {
	f.allocator.UpdateData()
	if copies := f.allocator.Flush(); copies.Value > f.copiesWaited {
		f.device.Wait(copies, gpu.QueueDirect)
		f.copiesWaited = copies.Value
	}

	if f.commands.Len() > 0 {
		f.device.SubmitCommands(f.commands, gpu.QueueDirect)
		f.commands.Reset()
	}

	fence := f.device.Present()
	f.presentFences[f.presentIndex] = fence
	f.allocator.Lock(fence)

	f.presentIndex = (f.presentIndex + 1) % len(f.presentFences)
	f.frameIndex++
	return fence
}

// Wait blocks until every presented frame has finished on the GPU
func (f *Frame) Wait() {
	latest := f.presentFences[(f.presentIndex+len(f.presentFences)-1)%len(f.presentFences)]
	if latest.Value == 0 {
		return
	}

	f.device.Block(latest)
	f.completed = max(f.completed, latest.Value)
	f.allocator.Reset(f.completed)
}

// AddTexture registers a frame texture. A desc with zero width and height follows the frame size.
// With views set the texture gets a shader-resource list and, for read-write textures, an
// unordered-access list.
func (f *Frame) AddTexture(desc gpu.TextureDesc, views bool) TextureID {
	texture := frameTexture{
		desc:        desc,
		state:       gpu.StateCommon,
		screenSized: desc.Width == 0 && desc.Height == 0,
		views:       views,
	}
	if views {
		texture.srv = f.device.CreatePipelineInputList(1)
		if desc.Flags.Has(gpu.BindRW) {
			texture.uav = f.device.CreatePipelineInputList(1)
		}
	}

	f.textures = append(f.textures, texture)
	return TextureID(len(f.textures) - 1)
}

func (f *Frame) realize(id TextureID) *frameTexture {
	fatal.Check(int(id) < len(f.textures), "frame texture %d was never added", id)

	t := &f.textures[id]
	if t.handle.Valid() {
		return t
	}

	desc := t.desc
	if t.screenSized {
		desc.Width = uint16(f.viewport.Width)
		desc.Height = uint16(f.viewport.Height)
	}

	handle, err := f.device.CreateTexture(desc)
	fatal.Must(err, "failed to create frame texture")
	t.handle = handle
	t.created = desc
	t.state = gpu.StateCommon

	if t.views {
		view := gpu.DefaultView(handle, desc)
		f.device.UpdateTextureViews(t.srv, gpu.DescriptorSRV, []gpu.TextureView{view}, 0)
		if !t.uav.IsNull() {
			f.device.UpdateTextureViews(t.uav, gpu.DescriptorUAV, []gpu.TextureView{view}, 0)
		}
	}
	return t
}

// Texture returns the native texture behind id, creating it if needed
func (f *Frame) Texture(id TextureID) gpu.TextureHandle {
	return f.realize(id).handle
}

// TextureDesc is the description the texture behind id was created with
func (f *Frame) TextureDesc(id TextureID) gpu.TextureDesc {
	return f.realize(id).created
}

// View is the default 2D view of the texture behind id
func (f *Frame) View(id TextureID) gpu.TextureView {
	return gpu.DefaultView(f.Texture(id), f.TextureDesc(id))
}

// State is the resource state the texture behind id was last bound in
func (f *Frame) State(id TextureID) gpu.ResourceState {
	return f.realize(id).state
}

// SRV is the shader-resource list of a texture added with views
func (f *Frame) SRV(id TextureID) gpu.PipelineHandle {
	t := f.realize(id)
	fatal.Check(t.views, "frame texture %d has no views", id)
	return t.srv
}

// UAV is the unordered-access list of a read-write texture added with views
func (f *Frame) UAV(id TextureID) gpu.PipelineHandle {
	t := f.realize(id)
	fatal.Check(!t.uav.IsNull(), "frame texture %d has no unordered-access view", id)
	return t.uav
}

// TextureView returns a one-descriptor input list holding view of the texture behind id. Lists
// are cached per texture, descriptor type and view until the next resize.
func (f *Frame) TextureView(id TextureID, kind gpu.DescriptorType, view gpu.TextureView) gpu.PipelineHandle {
	view.Texture = f.Texture(id)

	key := viewKey{texture: id, kind: kind, view: view}
	if list, ok := f.viewCache.Get(key); ok {
		return list
	}

	list := f.device.CreatePipelineInputList(1)
	f.device.UpdateTextureViews(list, kind, []gpu.TextureView{view}, 0)
	f.viewCache.Put(key, list)
	return list
}

// BindResources records a transition of every texture in ids to state. Textures already in state
// are skipped, and the tracked state is updated as soon as the barrier is recorded.
func (f *Frame) BindResources(state gpu.ResourceState, ids ...TextureID) {
	for _, id := range ids {
		t := f.realize(id)
		if t.state == state {
			continue
		}

		f.commands.Add(&command.LayoutBarrier{
			Texture:         gpu.DefaultView(t.handle, t.created),
			Before:          t.state,
			After:           state,
			AllSubresources: true,
		})
		t.state = state
	}
}

func (f *Frame) CreateRenderPass(desc gpu.RenderPassDesc) gpu.PipelineHandle {
	handle := f.device.CreateRenderPass(desc)
	f.pipelines = append(f.pipelines, handle)
	return handle
}

func (f *Frame) CreateComputePipeline(desc *gpu.ComputePipelineDesc, layout *gpu.PipelineInputLayout) (gpu.PipelineHandle, error) {
	handle, err := f.device.CreateComputePipeline(desc, layout)
	if err != nil {
		return handle, err
	}
	f.pipelines = append(f.pipelines, handle)
	return handle, nil
}

func (f *Frame) CreateGraphicsPipeline(desc *gpu.GraphicsPipelineDesc, layout *gpu.PipelineInputLayout) (gpu.PipelineHandle, error) {
	handle, err := f.device.CreateGraphicsPipeline(desc, layout)
	if err != nil {
		return handle, err
	}
	f.pipelines = append(f.pipelines, handle)
	return handle, nil
}

// Resize drains the GPU and drops every frame texture when the frame grows. Textures are
// recreated at the new size on their next use. Shrinking only narrows the viewport. Resize
// reports whether the textures were dropped.
func (f *Frame) Resize(width, height uint32) (bool, error) {
	if width == 0 || height == 0 {
		return false, errors.Newf("frame resized to %dx%d", width, height)
	}

	grown := float32(width) > f.viewport.Width || float32(height) > f.viewport.Height
	if grown {
		if f.commands.Len() > 0 {
			f.device.SubmitCommands(f.commands, gpu.QueueDirect)
			f.commands.Reset()
		}
		f.device.Sync()
		f.completed = f.device.CompletedValue(gpu.QueueDirect)
		f.allocator.Reset(f.completed)

		f.destroyTextures()
		f.generation++
		if err := f.device.ResizeBuffers(width, height); err != nil {
			return false, err
		}

		f.logger.Info("frame resized", slog.Int("width", int(width)), slog.Int("height", int(height)))
	}

	f.viewport = gpu.FullViewport(width, height)
	return grown, nil
}

func (f *Frame) destroyTextures() {
	for i := range f.textures {
		t := &f.textures[i]
		if t.handle.Valid() {
			f.device.DestroyTexture(t.handle)
			t.handle = gpu.NullTexture
		}
		t.state = gpu.StateCommon
	}

	f.viewCache.Iter(func(_ viewKey, list gpu.PipelineHandle) bool {
		f.device.DestroyPipelineResource(list)
		return false
	})
	f.viewCache = swiss.NewMap[viewKey, gpu.PipelineHandle](16)
}

// Destroy waits for the GPU and releases everything the frame created
func (f *Frame) Destroy() {
	f.device.Sync()

	f.destroyTextures()
	for _, t := range f.textures {
		if !t.srv.IsNull() {
			f.device.DestroyPipelineResource(t.srv)
		}
		if !t.uav.IsNull() {
			f.device.DestroyPipelineResource(t.uav)
		}
	}
	f.textures = nil

	for _, handle := range f.pipelines {
		f.device.DestroyPipelineResource(handle)
	}
	f.pipelines = nil

	f.copyContext.Destroy()
	f.allocator.Destroy()
}

func (f *Frame) Viewport() gpu.Viewport { return f.viewport }

func (f *Frame) Width() uint32 { return uint32(f.viewport.Width) }

func (f *Frame) Height() uint32 { return uint32(f.viewport.Height) }

// Generation changes every time Resize drops the frame textures. Callers holding descriptors
// that point at frame textures rewrite them when it changes.
func (f *Frame) Generation() uint64 { return f.generation }

// Index counts presented frames
func (f *Frame) Index() uint64 { return f.frameIndex }

func (f *Frame) Device() Device { return f.device }

func (f *Frame) Logger() *slog.Logger { return f.logger }

func (f *Frame) CommandBuffer() *command.Buffer { return f.commands }

func (f *Frame) Allocator() *BufferAllocator { return f.allocator }

func (f *Frame) CopyContext() *CopyContext { return f.copyContext }
