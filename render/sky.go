package render

import (
	"github.com/vkngwrapper/kiln/frame"
	"github.com/vkngwrapper/kiln/gpu"
	"github.com/vkngwrapper/kiln/gpu/command"
)

// FinalFormat is the format of the tonemapped image the sky is drawn into and that is copied to
// the swapchain
const FinalFormat = gpu.FormatR8G8B8A8_UNORM

// Sky draws a cube map behind the scene with a full-screen triangle
type Sky struct {
	frame    *frame.Frame
	pipeline gpu.PipelineHandle
	skybox   gpu.PipelineHandle
	texture  gpu.TextureHandle
}

func NewSky(f *frame.Frame, compiler ShaderCompiler) (*Sky, error) {
	vs, err := compile(compiler, ShaderDesc{Path: "shaders/sky.hlsl", EntryPoint: "vs_main", Stage: StageVertex})
	if err != nil {
		return nil, err
	}
	ps, err := compile(compiler, ShaderDesc{Path: "shaders/sky.hlsl", EntryPoint: "ps_main", Stage: StagePixel})
	if err != nil {
		return nil, err
	}

	desc := gpu.DefaultGraphicsPipeline(1, gpu.DepthTest(false))
	desc.VertexShader = vs
	desc.PixelShader = ps
	desc.DepthStencilFormat = DepthFormat
	desc.RenderTargetFormats[0] = FinalFormat

	layout := &gpu.PipelineInputLayout{}
	layout.AddEntry(gpu.BufferGroup(gpu.DescriptorCBV, 0, 0))
	layout.AddEntry(gpu.ResourceListGroup(gpu.ResourceListDesc{Type: gpu.DescriptorSRV, NumResources: 1}))
	SetDefaultSamplers(layout)

	pipeline, err := f.CreateGraphicsPipeline(&desc, layout)
	if err != nil {
		return nil, err
	}

	return &Sky{
		frame:    f,
		pipeline: pipeline,
		skybox:   f.Device().CreatePipelineInputList(1),
		texture:  gpu.NullTexture,
	}, nil
}

// SetTexture points the sky at a cube texture. Until it is called Render draws nothing.
func (s *Sky) SetTexture(texture gpu.TextureHandle, desc gpu.TextureDesc) {
	view := gpu.TextureView{
		Texture:   texture,
		Format:    desc.Format,
		Dimension: gpu.ViewTextureCube,
		MipCount:  desc.MipLevels,
		Depth:     desc.Depth,
	}
	s.frame.Device().UpdateTextureViews(s.skybox, gpu.DescriptorSRV, []gpu.TextureView{view}, 0)
	s.texture = texture
}

// Render records the sky draw. It has to be recorded inside a render pass targeting the final
// image with depth bound read-only.
func (s *Sky) Render(cb *command.Buffer, camera Camera) error {
	if !s.texture.Valid() {
		return nil
	}

	var w constantWriter
	w.mat4(camera.Transform())
	w.mat4(camera.InverseProjection())
	constants, err := s.frame.Allocator().CreateBuffer(uint32(len(w.bytes())), w.bytes(), false)
	if err != nil {
		return err
	}

	draw := command.Draw{
		GraphicsPipeline: s.pipeline,
		Rect:             fullRect(s.frame.Viewport()),
		InputBuffer:      gpu.NullBuffer,
		IndexBuffer:      gpu.NullBuffer,
		NumInstances:     1,
		NumElements:      3,
	}
	draw.InputState.SetBuffer(0, constants.Buffer, constants.Offset, gpu.DescriptorCBV)
	draw.InputState.SetResourceList(1, s.skybox)
	cb.Add(&draw)
	return nil
}

func (s *Sky) Destroy() {
	s.frame.Device().DestroyPipelineResource(s.skybox)
}
