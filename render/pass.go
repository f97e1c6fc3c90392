package render

import (
	"github.com/vkngwrapper/kiln/gpu"
	"github.com/vkngwrapper/kiln/gpu/command"
)

type passTargets struct {
	color      []gpu.TextureView
	depth      gpu.TextureView
	depthWrite bool
}

// inRenderPass records a BeginRenderPass, everything draw records, and the matching
// EndRenderPass
func inRenderPass(cb *command.Buffer, pass gpu.PipelineHandle, targets passTargets, viewport gpu.Viewport, draw func()) {
	begin := command.BeginRenderPass{
		RenderPass:        pass,
		RenderTargetCount: uint32(len(targets.color)),
		DepthStencil:      targets.depth,
		DepthWrite:        targets.depthWrite,
		Topology:          gpu.TopologyTriangleList,
		Viewport:          viewport,
	}
	copy(begin.Color[:], targets.color)

	cb.Add(&begin)
	draw()
	cb.Add(&command.EndRenderPass{})
}

func fullRect(viewport gpu.Viewport) gpu.Scissor {
	return gpu.FullScissor(uint32(viewport.Width), uint32(viewport.Height))
}
