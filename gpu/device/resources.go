package device

import (
	"github.com/vkngwrapper/kiln/descriptor"
	"github.com/vkngwrapper/kiln/fatal"
	"github.com/vkngwrapper/kiln/gpu"
	"github.com/vkngwrapper/kiln/gpu/native"
	"github.com/vkngwrapper/kiln/heap"
	"github.com/vkngwrapper/kiln/pool"
)

// noDescriptor marks a lazily created CPU descriptor that has not been written yet
const noDescriptor uint64 = 0

// handleCapacity keeps buffer and texture handles below their Invalid sentinel
const handleCapacity = 1<<16 - 1

type buffer struct {
	resource  native.Resource
	placement heap.Placement
	desc      gpu.BufferDesc
}

type texture struct {
	resource  native.Resource
	placement heap.Placement
	desc      gpu.TextureDesc
	rtv       uint64
	dsvWrite  uint64
	dsvRead   uint64
}

type pipelineState struct {
	pso       native.PipelineState
	signature native.RootSignature
	compute   bool
}

type renderPass struct {
	desc gpu.RenderPassDesc
	// live is false for the null entry and for released slots
	live bool
}

// resources maps every handle the device hands out to its native object. Slot 0 of each pool is a
// null entry so that zero handles never resolve to a live object.
type resources struct {
	buffers      *pool.Pool[buffer]
	textures     *pool.Pool[texture]
	pipelines    *pool.Pool[pipelineState]
	inputLists   *pool.Pool[descriptor.Table]
	renderPasses *pool.Pool[renderPass]

	rtvs *descriptor.CPUPool
	dsvs *descriptor.CPUPool
}

func newResources(creator descriptor.HeapCreator, capacity, chunkSize int) (*resources, error) {
	rtvs, err := descriptor.NewCPUPool(creator, native.DescriptorHeapRenderTarget, chunkSize)
	if err != nil {
		return nil, err
	}
	dsvs, err := descriptor.NewCPUPool(creator, native.DescriptorHeapDepthStencil, chunkSize)
	if err != nil {
		return nil, err
	}

	r := &resources{
		buffers:      pool.New[buffer](min(capacity, handleCapacity)),
		textures:     pool.New[texture](min(capacity, handleCapacity)),
		pipelines:    pool.New[pipelineState](capacity),
		inputLists:   pool.New[descriptor.Table](capacity),
		renderPasses: pool.New[renderPass](capacity),
		rtvs:         rtvs,
		dsvs:         dsvs,
	}

	r.buffers.Add(buffer{})
	r.textures.Add(texture{})
	r.pipelines.Add(pipelineState{})
	r.inputLists.Add(descriptor.Table{})
	r.renderPasses.Add(renderPass{})

	return r, nil
}

func (r *resources) buffer(handle gpu.BufferHandle) *buffer {
	fatal.Check(handle.Valid(), "buffer handle %d is not valid", handle)
	return r.buffers.Get(uint32(handle))
}

func (r *resources) texture(handle gpu.TextureHandle) *texture {
	fatal.Check(handle.Valid(), "texture handle %d is not valid", handle)
	return r.textures.Get(uint32(handle))
}

func (r *resources) pipeline(handle gpu.PipelineHandle) *pipelineState {
	fatal.Check(handle.Type == gpu.ComputePipeline || handle.Type == gpu.GraphicsPipeline,
		"%s is not a pipeline", handle)
	return r.pipelines.Get(handle.Handle)
}

func (r *resources) inputList(handle gpu.PipelineHandle) *descriptor.Table {
	fatal.Check(handle.Type == gpu.PipelineInputList, "%s is not a pipeline input list", handle)
	return r.inputLists.Get(handle.Handle)
}

func (r *resources) renderPass(handle gpu.PipelineHandle) *renderPass {
	fatal.Check(handle.Type == gpu.RenderPass, "%s is not a render pass", handle)
	return r.renderPasses.Get(handle.Handle)
}

// releaseTargetViews returns the render-target and depth-stencil descriptors a texture picked up
// while it was used in render passes
func (r *resources) releaseTargetViews(t *texture) {
	if t.rtv != noDescriptor {
		r.rtvs.Release(t.rtv)
	}
	if t.dsvWrite != noDescriptor {
		r.dsvs.Release(t.dsvWrite)
	}
	if t.dsvRead != noDescriptor {
		r.dsvs.Release(t.dsvRead)
	}
	t.rtv, t.dsvWrite, t.dsvRead = noDescriptor, noDescriptor, noDescriptor
}

func (r *resources) destroy() {
	r.rtvs.Destroy()
	r.dsvs.Destroy()
}
