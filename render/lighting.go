package render

import (
	"github.com/chewxy/math32"
	"github.com/vkngwrapper/kiln/frame"
	"github.com/vkngwrapper/kiln/gpu"
	"github.com/vkngwrapper/kiln/gpu/command"
)

const (
	// MaterialListSize is the number of texture descriptors the lighting pass binds as the
	// material list
	MaterialListSize = 1 << 16
	// GeometryViewSize is the four G-buffer targets followed by depth
	GeometryViewSize = len(GBufferFormats) + 1

	lightingGroupSize = 8
	tonemapGroupSize  = 16
)

const (
	lightingSlotMaterials = iota
	lightingSlotLights
	lightingSlotParameters
	lightingSlotInputs
	lightingSlotOutput
)

// groups is the number of size-wide thread groups needed to cover extent
func groups(extent float32, size float32) uint32 {
	return uint32(math32.Ceil(extent / size))
}

// Lighting shades the G-buffer into an HDR target with a compute pass
type Lighting struct {
	frame    *frame.Frame
	pipeline gpu.PipelineHandle
}

func NewLighting(f *frame.Frame, compiler ShaderCompiler) (*Lighting, error) {
	shader, err := compile(compiler, ShaderDesc{Path: "shaders/lighting.hlsl", EntryPoint: "main", Stage: StageCompute})
	if err != nil {
		return nil, err
	}

	layout := &gpu.PipelineInputLayout{}
	SetDefaultSamplers(layout)
	layout.AddEntry(gpu.ResourceListGroup(gpu.ResourceListDesc{Type: gpu.DescriptorSRV, NumResources: MaterialListSize}))
	layout.AddEntry(gpu.BufferGroup(gpu.DescriptorSRV, 0, 1))
	layout.AddEntry(gpu.BufferGroup(gpu.DescriptorCBV, 0, 0))
	layout.AddEntry(gpu.ResourceListGroup(gpu.ResourceListDesc{Type: gpu.DescriptorSRV, BindingSpace: 2, NumResources: uint32(GeometryViewSize)}))
	layout.AddEntry(gpu.ResourceListGroup(gpu.ResourceListDesc{Type: gpu.DescriptorUAV, NumResources: 1}))

	pipeline, err := f.CreateComputePipeline(&gpu.ComputePipelineDesc{ComputeShader: shader}, layout)
	if err != nil {
		return nil, err
	}
	return &Lighting{frame: f, pipeline: pipeline}, nil
}

// Apply records the lighting dispatch. input is the geometry view list and output the UAV list
// of the HDR target.
func (l *Lighting) Apply(cb *command.Buffer, scene Scene, input, output gpu.PipelineHandle) {
	lights := scene.LightBuffer()
	params := scene.LightingParameters()

	dispatch := command.Dispatch{ComputePipeline: l.pipeline, Z: 1}
	dispatch.InputState.SetResourceList(lightingSlotMaterials, scene.MaterialList())
	dispatch.InputState.SetBuffer(lightingSlotLights, lights.Buffer, lights.Offset, gpu.DescriptorSRV)
	dispatch.InputState.SetBuffer(lightingSlotParameters, params.Buffer, params.Offset, gpu.DescriptorCBV)
	dispatch.InputState.SetResourceList(lightingSlotInputs, input)
	dispatch.InputState.SetResourceList(lightingSlotOutput, output)

	viewport := l.frame.Viewport()
	dispatch.X = groups(viewport.Width, lightingGroupSize)
	dispatch.Y = groups(viewport.Height, lightingGroupSize)
	cb.Add(&dispatch)
}

// Tonemapper maps the HDR lighting result into the displayable final image
type Tonemapper struct {
	frame    *frame.Frame
	pipeline gpu.PipelineHandle
}

func NewTonemapper(f *frame.Frame, compiler ShaderCompiler) (*Tonemapper, error) {
	shader, err := compile(compiler, ShaderDesc{Path: "shaders/tonemapping.hlsl", EntryPoint: "main", Stage: StageCompute})
	if err != nil {
		return nil, err
	}

	layout := &gpu.PipelineInputLayout{}
	layout.AddEntry(gpu.ResourceListGroup(gpu.ResourceListDesc{Type: gpu.DescriptorSRV, NumResources: 1}))
	layout.AddEntry(gpu.ResourceListGroup(gpu.ResourceListDesc{Type: gpu.DescriptorUAV, NumResources: 1}))

	pipeline, err := f.CreateComputePipeline(&gpu.ComputePipelineDesc{ComputeShader: shader}, layout)
	if err != nil {
		return nil, err
	}
	return &Tonemapper{frame: f, pipeline: pipeline}, nil
}

func (t *Tonemapper) Apply(cb *command.Buffer, in, out gpu.PipelineHandle) {
	dispatch := command.Dispatch{ComputePipeline: t.pipeline, Z: 1}
	dispatch.InputState.SetResourceList(0, in)
	dispatch.InputState.SetResourceList(1, out)

	viewport := t.frame.Viewport()
	dispatch.X = groups(viewport.Width, tonemapGroupSize)
	dispatch.Y = groups(viewport.Height, tonemapGroupSize)
	cb.Add(&dispatch)
}
