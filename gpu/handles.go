package gpu

import "fmt"

type BufferHandle uint16

const (
	NullBuffer    BufferHandle = 0
	InvalidBuffer BufferHandle = 65535
)

func (h BufferHandle) Valid() bool {
	return h != NullBuffer && h != InvalidBuffer
}

type TextureHandle uint16

const (
	NullTexture    TextureHandle = 0
	InvalidTexture TextureHandle = 65535
)

func (h TextureHandle) Valid() bool {
	return h != NullTexture && h != InvalidTexture
}

type PipelineType uint8

const (
	PipelineInputList PipelineType = iota
	ComputePipeline
	GraphicsPipeline
	RenderPass
)

var pipelineTypeNames = [...]string{"PipelineInputList", "ComputePipeline", "GraphicsPipeline", "RenderPass"}

func (t PipelineType) String() string {
	if int(t) < len(pipelineTypeNames) {
		return pipelineTypeNames[t]
	}
	return fmt.Sprintf("PipelineType(%d)", uint8(t))
}

// PipelineHandle refers to one of the pipeline-side objects. The handle value is an index into
// the table selected by Type, so the same value means different objects under different types.
type PipelineHandle struct {
	Handle uint32
	Type   PipelineType
}

func (h PipelineHandle) IsNull() bool {
	return h.Handle == 0
}

func (h PipelineHandle) String() string {
	return fmt.Sprintf("%s(%d)", h.Type, h.Handle)
}

type QueueType uint8

const (
	QueueDirect QueueType = iota
	QueueCompute
	QueueCopy

	QueueTypeCount = 3
)

var queueTypeNames = [...]string{"Direct", "Compute", "Copy"}

func (q QueueType) String() string {
	if int(q) < len(queueTypeNames) {
		return queueTypeNames[q]
	}
	return fmt.Sprintf("QueueType(%d)", uint8(q))
}

// Signal names a point on a queue's fence timeline
type Signal struct {
	Queue QueueType
	Value uint64
}
