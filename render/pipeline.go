package render

import (
	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/kiln/frame"
	"github.com/vkngwrapper/kiln/gpu"
	"github.com/vkngwrapper/kiln/gpu/command"
	"golang.org/x/exp/slog"
)

// RenderPipeline owns the frame textures and render passes of the deferred path and records a
// whole frame in pass order: depth, geometry, lighting, tonemapping, sky and the copy to the
// swapchain
type RenderPipeline struct {
	logger *slog.Logger
	frame  *frame.Frame

	renderer   *Renderer
	sky        *Sky
	lighting   *Lighting
	tonemapper *Tonemapper

	depthPass    gpu.PipelineHandle
	geometryPass gpu.PipelineHandle
	skyPass      gpu.PipelineHandle

	depth   frame.TextureID
	gbuffer [len(GBufferFormats)]frame.TextureID
	lit     frame.TextureID
	final   frame.TextureID

	// geometryView holds the G-buffer and depth SRVs the lighting pass reads. It is rewritten
	// whenever the frame textures have been recreated.
	geometryView       gpu.PipelineHandle
	geometryGeneration uint64
	geometryWritten    bool
}

func New(logger *slog.Logger, f *frame.Frame, renderer *Renderer, sky *Sky, compiler ShaderCompiler) (*RenderPipeline, error) {
	if logger == nil {
		return nil, errors.New("logger must not be nil")
	}

	lighting, err := NewLighting(f, compiler)
	if err != nil {
		return nil, err
	}
	tonemapper, err := NewTonemapper(f, compiler)
	if err != nil {
		return nil, err
	}

	p := &RenderPipeline{
		logger:       logger,
		frame:        f,
		renderer:     renderer,
		sky:          sky,
		lighting:     lighting,
		tonemapper:   tonemapper,
		geometryView: f.Device().CreatePipelineInputList(uint32(GeometryViewSize)),
	}
	p.createRenderPasses()
	p.createTextures()

	logger.Info("render pipeline created",
		slog.Int("width", int(f.Width())),
		slog.Int("height", int(f.Height())),
	)
	return p, nil
}

func (p *RenderPipeline) createRenderPasses() {
	depthTarget := gpu.DepthTarget(gpu.BeginClear, gpu.EndPreserve, 1)
	p.depthPass = p.frame.CreateRenderPass(gpu.RenderPassDesc{DepthStencil: &depthTarget})

	geometry := gpu.RenderPassDesc{NumRenderTargets: uint32(len(GBufferFormats))}
	for i, format := range GBufferFormats {
		geometry.RenderTargets[i] = gpu.RenderTargetDesc{
			BeginOp:     gpu.BeginClear,
			EndOp:       gpu.EndPreserve,
			ClearFormat: format,
		}
	}
	geometryDepth := gpu.DepthTarget(gpu.BeginPreserve, gpu.EndPreserve, 1)
	geometry.DepthStencil = &geometryDepth
	p.geometryPass = p.frame.CreateRenderPass(geometry)

	sky := gpu.RenderPassDesc{NumRenderTargets: 1}
	sky.RenderTargets[0] = gpu.RenderTargetDesc{BeginOp: gpu.BeginPreserve, EndOp: gpu.EndPreserve, ClearFormat: FinalFormat}
	skyDepth := gpu.DepthTarget(gpu.BeginPreserve, gpu.EndPreserve, 1)
	sky.DepthStencil = &skyDepth
	p.skyPass = p.frame.CreateRenderPass(sky)
}

// createTextures registers every frame texture at the frame size. Nothing is created on the
// device until the first frame uses it.
func (p *RenderPipeline) createTextures() {
	p.depth = p.frame.AddTexture(gpu.Texture2DDesc(0, 0, DepthFormat, gpu.BindDepthStencilTarget|gpu.BindShaderResource), false)
	for i, format := range GBufferFormats {
		p.gbuffer[i] = p.frame.AddTexture(gpu.Texture2DDesc(0, 0, format, gpu.BindRenderTarget|gpu.BindShaderResource), false)
	}
	p.lit = p.frame.AddTexture(gpu.Texture2DDesc(0, 0, gpu.FormatR16G16B16A16_FLOAT, gpu.BindRW|gpu.BindShaderResource), true)
	p.final = p.frame.AddTexture(gpu.Texture2DDesc(0, 0, FinalFormat, gpu.BindRW|gpu.BindRenderTarget|gpu.BindShaderResource), true)
}

// depthShaderView reads the depth plane of the depth buffer
func (p *RenderPipeline) depthShaderView() gpu.TextureView {
	view := p.frame.View(p.depth)
	view.Format = gpu.FormatR32_FLOAT_X8X24_Typeless
	return view
}

func (p *RenderPipeline) refreshGeometryView() {
	if p.geometryWritten && p.geometryGeneration == p.frame.Generation() {
		return
	}

	var views [GeometryViewSize]gpu.TextureView
	for i, id := range p.gbuffer {
		views[i] = p.frame.View(id)
	}
	views[len(p.gbuffer)] = p.depthShaderView()
	p.frame.Device().UpdateTextureViews(p.geometryView, gpu.DescriptorSRV, views[:], 0)

	p.geometryGeneration = p.frame.Generation()
	p.geometryWritten = true
}

// Render records every pass of the frame into the frame's command buffer. The renderer must
// have been built for the scene's camera.
func (p *RenderPipeline) Render(scene Scene) error {
	p.refreshGeometryView()

	cb := p.frame.CommandBuffer()
	p.executeDepth(cb)
	p.executeGeometry(cb)
	p.executeLighting(cb, scene)
	p.executeTonemapping(cb)
	if err := p.executeSky(cb, scene); err != nil {
		return errors.Wrap(err, "failed to record sky pass")
	}
	p.executePresent(cb)
	return nil
}

func (p *RenderPipeline) executeDepth(cb *command.Buffer) {
	p.frame.BindResources(gpu.StateDepthWrite, p.depth)

	targets := passTargets{depth: p.frame.View(p.depth), depthWrite: true}
	inRenderPass(cb, p.depthPass, targets, p.frame.Viewport(), func() {
		p.renderer.DrawDepth(cb)
	})
}

func (p *RenderPipeline) executeGeometry(cb *command.Buffer) {
	p.frame.BindResources(gpu.StateRenderTarget, p.gbuffer[:]...)
	p.frame.BindResources(gpu.StateDepthRead, p.depth)

	color := make([]gpu.TextureView, len(p.gbuffer))
	for i, id := range p.gbuffer {
		color[i] = p.frame.View(id)
	}

	targets := passTargets{color: color, depth: p.frame.View(p.depth)}
	inRenderPass(cb, p.geometryPass, targets, p.frame.Viewport(), func() {
		p.renderer.DrawGeometry(cb)
	})
}

func (p *RenderPipeline) executeLighting(cb *command.Buffer, scene Scene) {
	p.frame.BindResources(gpu.StateCommon, p.gbuffer[:]...)
	p.frame.BindResources(gpu.StateCommon, p.depth)
	p.frame.BindResources(gpu.StateUnorderedAccess, p.lit)

	p.lighting.Apply(cb, scene, p.geometryView, p.frame.UAV(p.lit))
}

func (p *RenderPipeline) executeTonemapping(cb *command.Buffer) {
	p.frame.BindResources(gpu.StateCommon, p.lit)
	p.frame.BindResources(gpu.StateUnorderedAccess, p.final)

	p.tonemapper.Apply(cb, p.frame.SRV(p.lit), p.frame.UAV(p.final))
}

func (p *RenderPipeline) executeSky(cb *command.Buffer, scene Scene) error {
	p.frame.BindResources(gpu.StateRenderTarget, p.final)
	p.frame.BindResources(gpu.StateDepthRead, p.depth)

	var err error
	targets := passTargets{color: []gpu.TextureView{p.frame.View(p.final)}, depth: p.frame.View(p.depth)}
	inRenderPass(cb, p.skyPass, targets, p.frame.Viewport(), func() {
		err = p.sky.Render(cb, scene.Camera())
	})
	return err
}

func (p *RenderPipeline) executePresent(cb *command.Buffer) {
	cb.Add(&command.CopyToSwapChain{
		Texture:      p.frame.View(p.final),
		TextureState: p.frame.State(p.final),
	})
}

// GeometryView is the input list holding the G-buffer and depth SRVs
func (p *RenderPipeline) GeometryView() gpu.PipelineHandle {
	return p.geometryView
}

// FinalImage is the frame texture copied to the swapchain
func (p *RenderPipeline) FinalImage() frame.TextureID {
	return p.final
}

// Destroy releases what the pipeline created outside the frame. Frame textures and pipelines
// are released by the frame.
func (p *RenderPipeline) Destroy() {
	p.frame.Device().DestroyPipelineResource(p.geometryView)
}
