package render

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/vkngwrapper/kiln/frame"
	"github.com/vkngwrapper/kiln/gpu"
	"github.com/vkngwrapper/kiln/gpu/command"
	"golang.org/x/exp/slog"
)

// GBufferFormats are the formats of the four geometry targets: packed normals and tangent
// frame, UV, UV derivatives and material index
var GBufferFormats = [4]gpu.BufferFormat{
	gpu.FormatR32G32B32A32_UINT,
	gpu.FormatR16G16_SNORM,
	gpu.FormatR16G16B16A16_SNORM,
	gpu.FormatR16_UINT,
}

// DepthFormat is the format of the scene depth buffer
const DepthFormat = gpu.FormatD32_FLOAT_S8X24_UINT

const (
	rendererSlotTransforms = iota
	rendererSlotQueueConstants
	rendererSlotMeshInstance
	rendererSlotCount
)

const (
	mat4Size     = 64
	positionSize = 12
)

// Renderer turns the models added for a frame into the depth prepass and G-buffer draws
type Renderer struct {
	logger *slog.Logger
	frame  *frame.Frame

	depthPipeline    gpu.PipelineHandle
	geometryPipeline gpu.PipelineHandle

	depthQueue    *RenderQueue
	geometryQueue *RenderQueue

	models          []Model
	transforms      []mgl32.Mat4
	transformBuffer frame.Allocation
	culled          int
}

func rendererLayout() *gpu.PipelineInputLayout {
	layout := &gpu.PipelineInputLayout{}
	layout.AddEntry(gpu.BufferGroup(gpu.DescriptorSRV, 0, 0))
	layout.AddEntry(gpu.BufferGroup(gpu.DescriptorCBV, 0, 0))
	layout.AddEntry(gpu.BufferGroup(gpu.DescriptorCBV, 1, 0))
	return layout
}

func NewRenderer(f *frame.Frame, compiler ShaderCompiler) (*Renderer, error) {
	layout := rendererLayout()

	depthVS, err := compile(compiler, ShaderDesc{Path: "shaders/depth_pass.hlsl", EntryPoint: "vs_main", Stage: StageVertex})
	if err != nil {
		return nil, err
	}

	depthDesc := gpu.DefaultGraphicsPipeline(0, gpu.DepthTest(true))
	depthDesc.VertexShader = depthVS
	depthDesc.InputLayout = []gpu.InputElement{
		{Name: "POSITION", Format: gpu.FormatR32G32B32_FLOAT, Slot: VertexPosition},
	}
	depthDesc.DepthStencilFormat = DepthFormat

	depthPipeline, err := f.CreateGraphicsPipeline(&depthDesc, layout)
	if err != nil {
		return nil, err
	}

	geometryVS, err := compile(compiler, ShaderDesc{Path: "shaders/gbuffer.hlsl", EntryPoint: "vs_main", Stage: StageVertex})
	if err != nil {
		return nil, err
	}
	geometryPS, err := compile(compiler, ShaderDesc{Path: "shaders/gbuffer.hlsl", EntryPoint: "ps_main", Stage: StagePixel})
	if err != nil {
		return nil, err
	}

	// depth was laid down by the prepass
	geometryDesc := gpu.DefaultGraphicsPipeline(uint16(len(GBufferFormats)), gpu.DepthTest(false))
	geometryDesc.VertexShader = geometryVS
	geometryDesc.PixelShader = geometryPS
	geometryDesc.InputLayout = []gpu.InputElement{
		{Name: "POSITION", Format: gpu.FormatR32G32B32_FLOAT, Slot: VertexPosition},
		{Name: "NORMAL", Format: gpu.FormatR32G32B32_FLOAT, Slot: VertexNormal},
		{Name: "TANGENT", Format: gpu.FormatR32G32B32_FLOAT, Slot: VertexTangent},
		{Name: "UV", Format: gpu.FormatR32G32_FLOAT, Slot: VertexTexCoords},
	}
	geometryDesc.DepthStencilFormat = DepthFormat
	copy(geometryDesc.RenderTargetFormats[:], GBufferFormats[:])

	geometryPipeline, err := f.CreateGraphicsPipeline(&geometryDesc, layout)
	if err != nil {
		return nil, err
	}

	return &Renderer{
		logger:           f.Logger(),
		frame:            f,
		depthPipeline:    depthPipeline,
		geometryPipeline: geometryPipeline,
		depthQueue:       NewRenderQueue(ConsumerDepth),
		geometryQueue:    NewRenderQueue(ConsumerGeometry),
	}, nil
}

// AddModel queues model for the current frame, placed in the world by transform
func (r *Renderer) AddModel(model Model, transform mgl32.Mat4) {
	r.models = append(r.models, model)
	r.transforms = append(r.transforms, transform)
}

func materialAt(materials []Material, i int) Material {
	if i < len(materials) {
		return materials[i]
	}
	return nil
}

// Build uploads the frame's transforms and queue constants, culls every mesh against the
// camera, fills and sorts both render queues, and flushes the ring copies. It fails when
// the ring is full.
func (r *Renderer) Build(camera Camera) error {
	ring := r.frame.Allocator()

	if len(r.transforms) > 0 {
		var w constantWriter
		for _, transform := range r.transforms {
			w.mat4(transform)
		}
		alloc, err := ring.CreateBuffer(uint32(len(r.transforms)*mat4Size), w.bytes(), true)
		if err != nil {
			return err
		}
		r.transformBuffer = alloc
	}

	viewProjection := camera.ViewProjection()
	var constants constantWriter
	constants.mat4(viewProjection)

	if err := r.depthQueue.Setup(ring, constants.bytes()); err != nil {
		return err
	}
	if err := r.geometryQueue.Setup(ring, constants.bytes()); err != nil {
		return err
	}

	view := camera.View()
	r.culled = 0
	for modelIndex, model := range r.models {
		transform := r.transforms[modelIndex]
		mvp := viewProjection.Mul4(transform)
		modelView := view.Mul4(transform)

		materials := model.Materials()
		for meshIndex, mesh := range model.Meshes() {
			bounds := mesh.Bounds()
			if !visible(bounds, mvp) {
				r.culled++
				continue
			}

			depth := viewDepth(bounds, modelView)
			if err := r.geometryQueue.Add(mesh, materialAt(materials, meshIndex), uint32(modelIndex), depth); err != nil {
				return err
			}
			if err := r.depthQueue.Add(mesh, nil, uint32(modelIndex), depth); err != nil {
				return err
			}
		}
	}

	ring.UpdateData()
	ring.Flush()

	r.depthQueue.Sort()
	r.geometryQueue.Sort()

	r.logger.Debug("render queues built",
		slog.Int("models", len(r.models)),
		slog.Int("visible", r.geometryQueue.Len()),
		slog.Int("culled", r.culled),
	)
	return nil
}

// Clear forgets the frame's models and queued meshes
func (r *Renderer) Clear() {
	r.depthQueue.Reset()
	r.geometryQueue.Reset()

	for i := range r.models {
		r.models[i] = nil
	}
	r.models = r.models[:0]
	r.transforms = r.transforms[:0]
	r.transformBuffer = frame.Allocation{}
}

func (r *Renderer) inputState(queue *RenderQueue) gpu.PipelineInputState {
	var state gpu.PipelineInputState
	state.SetBuffer(rendererSlotTransforms, r.transformBuffer.Buffer, r.transformBuffer.Offset, gpu.DescriptorSRV)
	constants := queue.Constants()
	state.SetBuffer(rendererSlotQueueConstants, constants.Buffer, constants.Offset, gpu.DescriptorCBV)
	return state
}

// DrawDepth records one position-only draw per visible mesh, front to back
func (r *Renderer) DrawDepth(cb *command.Buffer) {
	if r.depthQueue.Len() == 0 {
		return
	}

	state := r.inputState(r.depthQueue)
	rect := fullRect(r.frame.Viewport())

	r.depthQueue.each(func(instance *meshInstance) {
		input := instance.mesh.InputBuffer()
		state.SetBuffer(rendererSlotMeshInstance, instance.constants.Buffer, instance.constants.Offset, gpu.DescriptorCBV)

		draw := command.Draw{
			GraphicsPipeline: r.depthPipeline,
			InputState:       state,
			Rect:             rect,
			InputBuffer:      input.InputBuffer,
			IndexBuffer:      input.IndexBuffer,
			IndexBufferSize:  input.IndexBufferSize,
			NumElements:      input.NumIndices,
			NumInstances:     1,
			NumVertexBuffers: 1,
		}
		draw.VertexBufferOffsets[0] = input.VertexBufferOffsets[VertexPosition]
		draw.VertexBufferSizes[0] = input.VertexBufferSizes[VertexPosition]
		draw.VertexBufferStrides[0] = positionSize
		cb.Add(&draw)
	})
}

// DrawGeometry records one draw per visible mesh with every vertex stream bound, grouped by
// material
func (r *Renderer) DrawGeometry(cb *command.Buffer) {
	if r.geometryQueue.Len() == 0 {
		return
	}

	state := r.inputState(r.geometryQueue)
	rect := fullRect(r.frame.Viewport())

	r.geometryQueue.each(func(instance *meshInstance) {
		input := instance.mesh.InputBuffer()
		state.SetBuffer(rendererSlotMeshInstance, instance.constants.Buffer, instance.constants.Offset, gpu.DescriptorCBV)

		draw := command.Draw{
			GraphicsPipeline: r.geometryPipeline,
			InputState:       state,
			Rect:             rect,
			InputBuffer:      input.InputBuffer,
			IndexBuffer:      input.IndexBuffer,
			IndexBufferSize:  input.IndexBufferSize,
			NumElements:      input.NumIndices,
			NumInstances:     1,
			NumVertexBuffers: VertexElementCount,
		}
		copy(draw.VertexBufferOffsets[:], input.VertexBufferOffsets[:])
		copy(draw.VertexBufferSizes[:], input.VertexBufferSizes[:])
		copy(draw.VertexBufferStrides[:], input.VertexBufferStrides[:])
		cb.Add(&draw)
	})
}

// Culled is the number of meshes the last Build rejected
func (r *Renderer) Culled() int { return r.culled }

// Visible is the number of meshes the last Build queued
func (r *Renderer) Visible() int { return r.geometryQueue.Len() }
