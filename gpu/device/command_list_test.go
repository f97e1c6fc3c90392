package device

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vkngwrapper/kiln/gpu"
	"github.com/vkngwrapper/kiln/gpu/native/fake"
	"github.com/vkngwrapper/kiln/gpu/native/mocks"
	"go.uber.org/mock/gomock"
)

func testResources(t *testing.T) *resources {
	res, err := newResources(fake.NewDevice(fake.Options{}), 16, 4)
	require.NoError(t, err)
	return res
}

func mockedList(ctrl *gomock.Controller, res *resources, fence *Fence) (*commandList, *mocks.MockCommandList) {
	list := mocks.NewMockCommandList(ctrl)
	return &commandList{
		backend:   fake.NewDevice(fake.Options{}),
		queueType: gpu.QueueCompute,
		fence:     fence,
		res:       res,
		state:     listRecording,
		list:      list,
		graphics:  bindState{cleared: true},
		compute:   bindState{cleared: true},
	}, list
}

func TestBindSkipsUnchangedArguments(t *testing.T) {
	ctrl := gomock.NewController(t)
	res := testResources(t)
	cl, list := mockedList(ctrl, res, &Fence{})

	signature := &fake.RootSignature{}
	pso := &fake.PipelineState{Compute: true}
	pipeline := gpu.PipelineHandle{
		Handle: res.pipelines.Add(pipelineState{pso: pso, signature: signature, compute: true}),
		Type:   gpu.ComputePipeline,
	}
	constants := gpu.BufferHandle(res.buffers.Add(buffer{resource: &fake.Resource{}, desc: gpu.BufferDesc{Size: 1024}}))

	var inputs gpu.PipelineInputState
	inputs.SetBuffer(0, constants, 0, gpu.DescriptorCBV)

	gomock.InOrder(
		list.EXPECT().SetComputeRootSignature(signature),
		list.EXPECT().SetComputeRootView(uint32(0), gpu.DescriptorCBV, uint64(0)),
		list.EXPECT().SetPipelineState(pso),
		list.EXPECT().SetComputeRootView(uint32(0), gpu.DescriptorCBV, uint64(512)),
	)

	cl.setComputeState(pipeline, &inputs)
	cl.setComputeState(pipeline, &inputs)

	inputs.SetBuffer(0, constants, 512, gpu.DescriptorCBV)
	cl.setComputeState(pipeline, &inputs)
	cl.setComputeState(pipeline, &inputs)
}

func TestBindRequiresMatchingPipelineKind(t *testing.T) {
	ctrl := gomock.NewController(t)
	res := testResources(t)
	cl, _ := mockedList(ctrl, res, &Fence{})

	graphics := gpu.PipelineHandle{
		Handle: res.pipelines.Add(pipelineState{pso: &fake.PipelineState{}, signature: &fake.RootSignature{}}),
		Type:   gpu.GraphicsPipeline,
	}

	require.Panics(t, func() {
		cl.setComputeState(graphics, &gpu.PipelineInputState{})
	})
}

func TestBarriersIssueInBatches(t *testing.T) {
	ctrl := gomock.NewController(t)
	cl, list := mockedList(ctrl, testResources(t), &Fence{})
	resource := &fake.Resource{IsTexture: true}

	gomock.InOrder(
		list.EXPECT().ResourceBarrier(gomock.Len(barrierBatchSize)),
		list.EXPECT().ResourceBarrier(gomock.Len(3)),
	)

	for i := 0; i < barrierBatchSize+3; i++ {
		cl.addTransition(resource, 0, 0, 0)
	}
	cl.issueBarriers()
	// nothing pending
	cl.issueBarriers()
}

func TestAllocatorsAreStampedAndReused(t *testing.T) {
	ctrl := gomock.NewController(t)
	fence := &Fence{Head: 5}
	cl, list := mockedList(ctrl, testResources(t), fence)

	first := mocks.NewMockCommandAllocator(ctrl)
	cl.allocators = []commandAllocator{{native: first, fence: fence.Tail}}

	list.EXPECT().Close().Return(nil).Times(2)
	list.EXPECT().Reset(gomock.Any()).Return(nil)

	cl.close()
	require.Equal(t, listPending, cl.state)
	require.Equal(t, uint64(5), cl.allocators[0].fence)

	// the GPU has not reached 5, so a second allocator is created
	cl.reset()
	require.Equal(t, listReset, cl.state)
	require.Len(t, cl.allocators, 2)
	require.Equal(t, 1, cl.current)
	require.Equal(t, uint64(math.MaxUint64), cl.allocators[1].fence)

	cl.lock()
	fence.Head = 6
	cl.close()
	require.Equal(t, uint64(6), cl.allocators[1].fence)

	fence.Tail = 5
	first.EXPECT().Reset().Return(nil)
	list.EXPECT().Reset(first).Return(nil)

	cl.reset()
	require.Len(t, cl.allocators, 2)
	require.Zero(t, cl.current)
}

func TestCommandListStateIsChecked(t *testing.T) {
	ctrl := gomock.NewController(t)
	cl, list := mockedList(ctrl, testResources(t), &Fence{})

	require.Panics(t, func() { cl.lock() })
	require.Panics(t, func() { cl.reset() })

	list.EXPECT().Close().Return(nil)
	cl.allocators = []commandAllocator{{native: mocks.NewMockCommandAllocator(ctrl)}}
	cl.close()
	require.Panics(t, func() { cl.close() })
}
