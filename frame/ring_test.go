package frame

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vkngwrapper/kiln/gpu"
	"github.com/vkngwrapper/kiln/gpu/device"
	"github.com/vkngwrapper/kiln/gpu/native/fake"
	"golang.org/x/exp/slog"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard))
}

func testDevice(t *testing.T, options fake.Options) (*device.Device, *fake.Device) {
	backend := fake.NewDevice(options)
	d, err := device.New(testLogger(), backend, device.Options{
		SwapChain:             gpu.SwapChainDesc{Width: 64, Height: 64},
		HeapSize:              16 << 20,
		ShaderDescriptors:     1024,
		TargetDescriptorChunk: 16,
		PoolCapacity:          256,
	})
	require.NoError(t, err)
	return d, backend
}

func direct(n uint64) gpu.Signal {
	return gpu.Signal{Queue: gpu.QueueDirect, Value: n}
}

func TestRingAlignmentMustBePow2(t *testing.T) {
	d, _ := testDevice(t, fake.Options{})

	_, err := NewBufferAllocator(d, 4096, 96)
	require.Error(t, err)
}

func TestRingReturnsFullUntilOldFramesComplete(t *testing.T) {
	d, _ := testDevice(t, fake.Options{})
	ring, err := NewBufferAllocator(d, 4096, 256)
	require.NoError(t, err)

	for i := uint64(1); i <= 3; i++ {
		alloc, err := ring.CreateBuffer(1200, nil, false)
		require.NoError(t, err)
		require.Equal(t, uint32(1280*(i-1)), alloc.Offset)
		ring.Lock(direct(i))
	}
	require.Equal(t, 3, ring.LockedSpans())

	// the fourth frame wraps onto the first frame's span
	_, err = ring.CreateBuffer(1200, nil, false)
	require.ErrorIs(t, err, ErrRingFull)

	ring.Reset(1)
	require.Equal(t, 2, ring.LockedSpans())

	alloc, err := ring.CreateBuffer(1200, nil, false)
	require.NoError(t, err)
	require.Zero(t, alloc.Offset)
}

func TestRingLocksBothHalvesOfAWrappedFrame(t *testing.T) {
	d, _ := testDevice(t, fake.Options{})
	ring, err := NewBufferAllocator(d, 4096, 256)
	require.NoError(t, err)

	_, err = ring.CreateBuffer(3000, nil, false)
	require.NoError(t, err)
	ring.Lock(direct(1))
	ring.Reset(1)
	require.Zero(t, ring.LockedSpans())

	alloc, err := ring.CreateBuffer(1500, nil, false)
	require.NoError(t, err)
	require.Zero(t, alloc.Offset)
	ring.Lock(direct(2))
	require.Equal(t, 2, ring.LockedSpans())

	// [3072, 4096) is still held by frame 2
	_, err = ring.CreateBuffer(2000, nil, false)
	require.ErrorIs(t, err, ErrRingFull)

	ring.Reset(2)
	alloc, err = ring.CreateBuffer(2000, nil, false)
	require.NoError(t, err)
	require.Equal(t, uint32(1536), alloc.Offset)
}

func TestRingFrameThatFillsTheRingIsFull(t *testing.T) {
	d, _ := testDevice(t, fake.Options{})
	ring, err := NewBufferAllocator(d, 1024, 256)
	require.NoError(t, err)

	_, err = ring.CreateBuffer(256, nil, false)
	require.NoError(t, err)
	ring.Lock(direct(1))
	ring.Reset(1)

	a, err := ring.CreateBuffer(768, nil, false)
	require.NoError(t, err)
	require.Equal(t, uint32(256), a.Offset)
	b, err := ring.CreateBuffer(256, nil, false)
	require.NoError(t, err)
	require.Zero(t, b.Offset)

	// head is back on tail, so the frame owns every byte
	_, err = ring.CreateBuffer(256, nil, false)
	require.ErrorIs(t, err, ErrRingFull)

	ring.Lock(direct(2))
	require.Equal(t, 2, ring.LockedSpans())

	_, err = ring.CreateBuffer(512, nil, false)
	require.ErrorIs(t, err, ErrRingFull)

	ring.Reset(2)
	require.Zero(t, ring.LockedSpans())
	c, err := ring.CreateBuffer(512, nil, false)
	require.NoError(t, err)
	require.Equal(t, uint32(256), c.Offset)
}

func TestRingFailureLeavesStateUntouched(t *testing.T) {
	d, _ := testDevice(t, fake.Options{})
	ring, err := NewBufferAllocator(d, 1024, 256)
	require.NoError(t, err)

	_, err = ring.CreateBuffer(600, nil, false)
	require.NoError(t, err)
	ring.Lock(direct(1))

	_, err = ring.CreateBuffer(600, nil, true)
	require.ErrorIs(t, err, ErrRingFull)
	_, err = ring.CreateBuffer(600, nil, true)
	require.ErrorIs(t, err, ErrRingFull)

	// nothing was queued for upload, so the frame can still be locked
	ring.Lock(direct(2))
	require.Equal(t, 1, ring.LockedSpans())
}

func TestRingAllocationSizeIsChecked(t *testing.T) {
	d, _ := testDevice(t, fake.Options{})
	ring, err := NewBufferAllocator(d, 1024, 256)
	require.NoError(t, err)

	require.Panics(t, func() { _, _ = ring.CreateBuffer(0, nil, false) })
	require.Panics(t, func() { _, _ = ring.CreateBuffer(1024, nil, false) })
	require.Panics(t, func() { _, _ = ring.CreateBuffer(4, make([]byte, 8), false) })
}

func TestRingUploadsCoalescedRanges(t *testing.T) {
	d, backend := testDevice(t, fake.Options{})
	ring, err := NewBufferAllocator(d, 4096, 256)
	require.NoError(t, err)

	staging := backend.Buffers[len(backend.Buffers)-2]
	local := backend.Buffers[len(backend.Buffers)-1]

	first := bytes.Repeat([]byte{1}, 100)
	second := bytes.Repeat([]byte{2}, 300)
	cpuOnly := bytes.Repeat([]byte{3}, 64)
	last := bytes.Repeat([]byte{4}, 16)

	a, err := ring.CreateBuffer(100, first, true)
	require.NoError(t, err)
	require.Equal(t, ring.gpuBuffer, a.Buffer)
	b, err := ring.CreateBuffer(300, second, true)
	require.NoError(t, err)
	c, err := ring.CreateBuffer(64, cpuOnly, false)
	require.NoError(t, err)
	require.Equal(t, ring.uploadBuffer, c.Buffer)
	require.Equal(t, cpuOnly, ring.Bytes(c))
	e, err := ring.CreateBuffer(16, last, true)
	require.NoError(t, err)

	require.Equal(t, []span{{0, 768}, {1024, 1280}}, ring.dirty)

	ring.UpdateData()
	require.Empty(t, ring.dirty)
	require.Equal(t, 2, ring.commands.Len())

	fence := ring.Flush()
	require.Equal(t, gpu.Signal{Queue: gpu.QueueCopy, Value: 1}, fence)
	require.Equal(t, fence, ring.CopyFence())
	require.Len(t, backend.Queues[gpu.QueueCopy].Executions, 1)

	require.Equal(t, cpuOnly, staging.Memory[c.Offset:c.Offset+c.Size])
	require.Equal(t, first, local.Memory[a.Offset:a.Offset+a.Size])
	require.Equal(t, second, local.Memory[b.Offset:b.Offset+b.Size])
	require.Equal(t, make([]byte, 64), local.Memory[c.Offset:c.Offset+c.Size])
	require.Equal(t, last, local.Memory[e.Offset:e.Offset+e.Size])

	// nothing new to copy
	require.Equal(t, fence, ring.Flush())
	require.Len(t, backend.Queues[gpu.QueueCopy].Executions, 1)
}

func TestRingLockWithPendingUploadsIsFatal(t *testing.T) {
	d, _ := testDevice(t, fake.Options{})
	ring, err := NewBufferAllocator(d, 4096, 256)
	require.NoError(t, err)

	_, err = ring.CreateBuffer(16, nil, true)
	require.NoError(t, err)
	require.Panics(t, func() { ring.Lock(direct(1)) })
}

func TestRingDestroyReleasesBuffers(t *testing.T) {
	d, _ := testDevice(t, fake.Options{})
	ring, err := NewBufferAllocator(d, 4096, 256)
	require.NoError(t, err)

	ring.Destroy()
	require.NoError(t, d.Destroy())
}
