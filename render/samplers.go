package render

import "github.com/vkngwrapper/kiln/gpu"

// SetDefaultSamplers binds the static samplers every shader can rely on to slots 0-5 of
// space 0: anisotropic x8, anisotropic x16, point clamp, point wrap, linear clamp and
// linear wrap.
func SetDefaultSamplers(layout *gpu.PipelineInputLayout) {
	layout.AddSampler(gpu.AnisotropicSampler(8), 0, 0)
	layout.AddSampler(gpu.AnisotropicSampler(16), 1, 0)
	layout.AddSampler(gpu.Sampler(gpu.FilterPoint, gpu.AddressClamp), 2, 0)
	layout.AddSampler(gpu.Sampler(gpu.FilterPoint, gpu.AddressWrap), 3, 0)
	layout.AddSampler(gpu.Sampler(gpu.FilterLinear, gpu.AddressClamp), 4, 0)
	layout.AddSampler(gpu.Sampler(gpu.FilterLinear, gpu.AddressWrap), 5, 0)
}
