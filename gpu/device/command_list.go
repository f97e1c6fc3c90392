package device

import (
	"math"

	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/kiln/descriptor"
	"github.com/vkngwrapper/kiln/fatal"
	"github.com/vkngwrapper/kiln/gpu"
	"github.com/vkngwrapper/kiln/gpu/native"
)

// barrierBatchSize is how many transitions a command list buffers before it has to issue them
const barrierBatchSize = 10

type listState uint8

const (
	listRecording listState = iota
	listPending
	listReset
)

var listStateNames = [...]string{"Recording", "Pending", "Reset"}

func (s listState) String() string {
	if int(s) < len(listStateNames) {
		return listStateNames[s]
	}
	return "Unknown"
}

// commandAllocator pairs a native allocator with the fence value of the last submission recorded
// into it. The allocator may be reset once the queue's tail has reached that value.
type commandAllocator struct {
	native native.CommandAllocator
	fence  uint64
}

// bindState is the root signature, pipeline and root arguments last bound at one bind point.
// cleared forces every argument to be rebound on the next draw or dispatch.
type bindState struct {
	signature native.RootSignature
	pso       native.PipelineState
	arguments gpu.PipelineInputState
	cleared   bool
}

// commandList wraps one native command list together with the allocators it has recorded into.
// A list moves from Recording to Pending when it is closed, to Reset once its queue has executed
// it, and back to Recording when the engine hands it out again.
type commandList struct {
	backend   native.Device
	queueType gpu.QueueType
	fence     *Fence
	res       *resources
	// shaderHeap is nil for copy lists, which cannot bind descriptor heaps
	shaderHeap *descriptor.ShaderHeap
	state      listState

	list       native.CommandList
	allocators []commandAllocator
	current    int

	barriers     [barrierBatchSize]native.Barrier
	barrierCount int

	graphics bindState
	compute  bindState

	renderPass *renderPass
	targets    [gpu.MaxRenderTargets]native.RenderPassTarget
}

func newCommandList(backend native.Device, queueType gpu.QueueType, fence *Fence, res *resources, shaderHeap *descriptor.ShaderHeap) (*commandList, error) {
	allocator, err := backend.CreateCommandAllocator(queueType)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to create %s command allocator", queueType)
	}

	list, err := backend.CreateCommandList(queueType, allocator)
	if err != nil {
		allocator.Release()
		return nil, errors.Wrapf(err, "failed to create %s command list", queueType)
	}

	cl := &commandList{
		backend:    backend,
		queueType:  queueType,
		fence:      fence,
		res:        res,
		shaderHeap: shaderHeap,
		state:      listRecording,
		list:       list,
		allocators: []commandAllocator{{native: allocator, fence: fence.Tail}},
		graphics:   bindState{cleared: true},
		compute:    bindState{cleared: true},
	}
	if shaderHeap != nil {
		list.SetDescriptorHeap(shaderHeap.Native())
	}

	return cl, nil
}

// lock hands a Reset list out for recording
func (l *commandList) lock() {
	fatal.Check(l.state == listReset, "%s command list locked while %s", l.queueType, l.state)
	l.state = listRecording
}

// close finishes recording. The current allocator is stamped with the queue head, which the
// engine has already advanced for this submission.
func (l *commandList) close() {
	fatal.Check(l.state == listRecording, "%s command list closed while %s", l.queueType, l.state)

	l.issueBarriers()
	fatal.Must(l.list.Close(), "failed to close command list")
	l.allocators[l.current].fence = l.fence.Head

	l.state = listPending
}

// reset readies an executed list for recording. It reuses the first allocator whose submissions
// the GPU has finished, and creates a new one if every allocator is still in flight.
func (l *commandList) reset() {
	fatal.Check(l.state == listPending, "%s command list reset while %s", l.queueType, l.state)

	found := -1
	for i := range l.allocators {
		if l.allocators[i].fence <= l.fence.Tail {
			fatal.Must(l.allocators[i].native.Reset(), "failed to reset command allocator")
			found = i
			break
		}
	}

	if found < 0 {
		allocator, err := l.backend.CreateCommandAllocator(l.queueType)
		fatal.Must(err, "failed to create command allocator")
		l.allocators = append(l.allocators, commandAllocator{native: allocator, fence: math.MaxUint64})
		found = len(l.allocators) - 1
	}
	l.current = found

	fatal.Must(l.list.Reset(l.allocators[found].native), "failed to reset command list")

	if l.shaderHeap != nil {
		l.list.SetDescriptorHeap(l.shaderHeap.Native())
	}

	l.graphics = bindState{cleared: true}
	l.compute = bindState{cleared: true}

	fatal.Check(l.renderPass == nil, "%s command list reset inside a render pass", l.queueType)

	l.state = listReset
}

func (l *commandList) release() {
	for _, allocator := range l.allocators {
		allocator.native.Release()
	}
	l.allocators = nil
	l.list.Release()
}

func (l *commandList) issueBarriers() {
	if l.barrierCount == 0 {
		return
	}

	l.list.ResourceBarrier(l.barriers[:l.barrierCount])
	l.barrierCount = 0
}

func (l *commandList) addTransition(resource native.Resource, subresource uint32, before, after native.State) {
	if l.barrierCount == len(l.barriers) {
		l.issueBarriers()
	}

	l.barriers[l.barrierCount] = native.Transition(resource, subresource, before, after)
	l.barrierCount++
}

// bindPoint is the part of native.CommandList that differs between compute and graphics binding
type bindPoint struct {
	setSignature func(native.RootSignature)
	setTable     func(slot uint32, base uint64)
	setView      func(slot uint32, kind gpu.DescriptorType, address uint64)
}

func (l *commandList) computeBindPoint() bindPoint {
	return bindPoint{
		setSignature: l.list.SetComputeRootSignature,
		setTable:     l.list.SetComputeRootDescriptorTable,
		setView:      l.list.SetComputeRootView,
	}
}

func (l *commandList) graphicsBindPoint() bindPoint {
	return bindPoint{
		setSignature: l.list.SetGraphicsRootSignature,
		setTable:     l.list.SetGraphicsRootDescriptorTable,
		setView:      l.list.SetGraphicsRootView,
	}
}

// bind brings one bind point up to date with pipeline and inputs. A new root signature rebinds
// every argument; otherwise an argument is only rebound when it differs from what was last bound
// in its slot.
func (l *commandList) bind(state *bindState, point bindPoint, pipeline *pipelineState, inputs *gpu.PipelineInputState) {
	if pipeline.signature != state.signature {
		point.setSignature(pipeline.signature)
		state.signature = pipeline.signature
		state.cleared = true
	}

	for i := uint32(0); i < inputs.NumElements; i++ {
		input := inputs.Inputs[i]
		if !state.cleared && input == state.arguments.Inputs[i] {
			continue
		}

		switch input.Type {
		case gpu.InputResourceList:
			table := l.res.inputList(input.ResourceList)
			point.setTable(i, table.GPU)
		case gpu.InputBuffer:
			buffer := l.res.buffer(input.Buffer.Buffer)
			point.setView(i, input.Buffer.Type, buffer.resource.GPUAddress()+uint64(input.Buffer.Offset))
		default:
			fatal.Reportf("unhandled pipeline input type %d in slot %d", input.Type, i)
		}
	}

	state.arguments = *inputs
	state.cleared = false

	if pipeline.pso != state.pso {
		l.list.SetPipelineState(pipeline.pso)
		state.pso = pipeline.pso
	}
}

func (l *commandList) setComputeState(handle gpu.PipelineHandle, inputs *gpu.PipelineInputState) {
	pipeline := l.res.pipeline(handle)
	fatal.Check(pipeline.compute, "%s is not a compute pipeline", handle)
	l.bind(&l.compute, l.computeBindPoint(), pipeline, inputs)
}

func (l *commandList) setGraphicsState(handle gpu.PipelineHandle, inputs *gpu.PipelineInputState) {
	pipeline := l.res.pipeline(handle)
	fatal.Check(!pipeline.compute, "%s is not a graphics pipeline", handle)
	l.bind(&l.graphics, l.graphicsBindPoint(), pipeline, inputs)
}

func textureSubresource(view gpu.TextureView) uint32 {
	return gpu.SubresourceIndex(uint32(view.MipLevel), uint32(view.Index), uint32(view.Plane), uint32(view.MipCount), uint32(view.Depth))
}
