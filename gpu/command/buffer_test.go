package command

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vkngwrapper/kiln/fatal"
	"github.com/vkngwrapper/kiln/gpu"
)

func TestBufferReplaysInOrder(t *testing.T) {
	buffer := New(4096)

	dispatch := &Dispatch{
		ComputePipeline: gpu.PipelineHandle{Handle: 3, Type: gpu.ComputePipeline},
		X:               8,
		Y:               4,
		Z:               1,
	}
	dispatch.InputState.SetBuffer(1, gpu.BufferHandle(7), 256, gpu.DescriptorCBV)

	buffer.Add(&LayoutBarrier{
		Texture: gpu.TextureView{Texture: 2},
		Before:  gpu.StateCommon,
		After:   gpu.StateUnorderedAccess,
	})
	buffer.Add(dispatch)
	buffer.Add(&EndRenderPass{})
	buffer.Add(&CopyBuffer{Dst: 1, DstOffset: 1 << 40, Src: 2, NumBytes: 12})

	require.Equal(t, 4, buffer.Len())

	var types []Type
	var total int
	records := buffer.Records()
	for records.Next() {
		record := records.Record()
		types = append(types, record.Type)
		total += int(record.Size)

		switch record.Type {
		case TypeLayoutBarrier:
			barrier := Decode[LayoutBarrier](record)
			require.Equal(t, gpu.TextureHandle(2), barrier.Texture.Texture)
			require.Equal(t, gpu.StateUnorderedAccess, barrier.After)
		case TypeDispatch:
			decoded := Decode[Dispatch](record)
			require.Equal(t, *dispatch, *decoded)
			require.Equal(t, uint32(2), decoded.InputState.NumElements)
		case TypeCopyBuffer:
			copyCmd := Decode[CopyBuffer](record)
			require.Equal(t, uint64(1<<40), copyCmd.DstOffset)
			require.Equal(t, uint64(12), copyCmd.NumBytes)
		}
	}

	require.Equal(t, []Type{TypeLayoutBarrier, TypeDispatch, TypeEndRenderPass, TypeCopyBuffer}, types)
	require.Equal(t, buffer.Size(), total)
}

func TestRecordSizesAreSelfDescribing(t *testing.T) {
	buffer := New(1024)
	buffer.Add(&InsertTimestamp{Index: 1})
	buffer.Add(&EndRenderPass{})

	records := buffer.Records()
	require.True(t, records.Next())
	require.Equal(t, uint32(16), records.Record().Size)
	require.True(t, records.Next())
	require.Equal(t, uint32(8), records.Record().Size)
	require.False(t, records.Next())
}

func TestResetKeepsStorage(t *testing.T) {
	buffer := New(1024)
	buffer.Add(&InsertTimestamp{Index: 4})
	capacity := buffer.Capacity()

	buffer.Reset()
	require.Equal(t, 0, buffer.Len())
	require.Equal(t, 0, buffer.Size())
	require.Equal(t, capacity, buffer.Capacity())

	records := buffer.Records()
	require.False(t, records.Next())

	buffer.Add(&InsertTimestamp{Index: 5})
	records = buffer.Records()
	require.True(t, records.Next())
	require.Equal(t, uint32(5), Decode[InsertTimestamp](records.Record()).Index)
}

func TestOverflowIsFatal(t *testing.T) {
	buffer := New(16)
	buffer.Add(&InsertTimestamp{Index: 1})

	require.Panics(t, func() {
		buffer.Add(&InsertTimestamp{Index: 2})
	})
}

func TestDecodeWrongTypeIsFatal(t *testing.T) {
	var reported error
	restore := fatal.SetHandler(func(err error) {
		reported = err
		panic(err)
	})
	defer restore()

	buffer := New(128)
	buffer.Add(&InsertTimestamp{Index: 1})
	records := buffer.Records()
	require.True(t, records.Next())

	require.Panics(t, func() {
		Decode[Dispatch](records.Record())
	})
	require.ErrorContains(t, reported, "decoded as Dispatch")
}

func TestDefaultSize(t *testing.T) {
	require.Equal(t, DefaultSize, New(0).Capacity())
}
