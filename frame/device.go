// Package frame manages the resources whose lifetime is tied to rendered frames: the transient
// upload ring, the blocking copy context used for asset uploads, and the frame-owned textures
// whose resource state is tracked between passes.
package frame

import (
	"github.com/vkngwrapper/kiln/gpu"
	"github.com/vkngwrapper/kiln/gpu/command"
	"github.com/vkngwrapper/kiln/gpu/device"
)

// Device is the part of the device façade the frame layer records and submits through
type Device interface {
	CreateBuffer(desc gpu.BufferDesc) (gpu.BufferHandle, error)
	DestroyBuffer(handle gpu.BufferHandle)
	CreateTexture(desc gpu.TextureDesc) (gpu.TextureHandle, error)
	DestroyTexture(handle gpu.TextureHandle)

	CreateRenderPass(desc gpu.RenderPassDesc) gpu.PipelineHandle
	CreatePipelineInputList(count uint32) gpu.PipelineHandle
	CreateComputePipeline(desc *gpu.ComputePipelineDesc, layout *gpu.PipelineInputLayout) (gpu.PipelineHandle, error)
	CreateGraphicsPipeline(desc *gpu.GraphicsPipelineDesc, layout *gpu.PipelineInputLayout) (gpu.PipelineHandle, error)
	DestroyPipelineResource(handle gpu.PipelineHandle)
	UpdateTextureViews(list gpu.PipelineHandle, kind gpu.DescriptorType, views []gpu.TextureView, offset uint32)
	UpdateBufferViews(list gpu.PipelineHandle, kind gpu.DescriptorType, views []gpu.BufferView, offset uint32)

	Map(handle gpu.BufferHandle, offset, size int) ([]byte, error)
	Unmap(handle gpu.BufferHandle, offset, size int)

	SubmitCommands(buffer *command.Buffer, queueType gpu.QueueType) gpu.Signal
	Signal(queueType gpu.QueueType) uint64
	Wait(producer gpu.Signal, queueType gpu.QueueType)
	Block(signal gpu.Signal)
	Present() gpu.Signal
	Sync()
	CompletedValue(queueType gpu.QueueType) uint64
	ResizeBuffers(width, height uint32) error
}

var _ Device = &device.Device{}
