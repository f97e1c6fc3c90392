package fake

import (
	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/kiln/gpu"
	"github.com/vkngwrapper/kiln/gpu/native"
)

// Call is one recorded native command
type Call struct {
	Method string
	Args   []any
}

// CommandList records every call it receives. Copies are replayed against resource memory when
// the list is executed on a queue.
type CommandList struct {
	Type       gpu.QueueType
	allocator  *CommandAllocator
	recording  bool
	Calls      []Call
	Closes     int
	Resets     int
	Executions int
	Released   bool
	deferred   []func()
}

var _ native.CommandList = &CommandList{}

func (l *CommandList) record(method string, args ...any) {
	l.Calls = append(l.Calls, Call{Method: method, Args: args})
}

// Count returns how many times method was recorded since the last Reset
func (l *CommandList) Count(method string) int {
	count := 0
	for _, call := range l.Calls {
		if call.Method == method {
			count++
		}
	}
	return count
}

// CallsOf returns every recorded call to method since the last Reset
func (l *CommandList) CallsOf(method string) []Call {
	var calls []Call
	for _, call := range l.Calls {
		if call.Method == method {
			calls = append(calls, call)
		}
	}
	return calls
}

// Allocator is the command allocator the list is currently recording into
func (l *CommandList) Allocator() *CommandAllocator {
	return l.allocator
}

func (l *CommandList) Reset(allocator native.CommandAllocator) error {
	a, ok := allocator.(*CommandAllocator)
	if !ok {
		return errors.Newf("fake: foreign command allocator %T", allocator)
	}
	if l.recording {
		return errors.New("fake: command list reset while recording")
	}
	if a.InUse {
		return errors.New("fake: command allocator is already recording another list")
	}

	a.InUse = true
	l.allocator = a
	l.recording = true
	l.Calls = l.Calls[:0]
	l.deferred = l.deferred[:0]
	l.Resets++
	return nil
}

func (l *CommandList) Close() error {
	if !l.recording {
		return errors.New("fake: closing a command list that is not recording")
	}

	l.recording = false
	l.allocator.InUse = false
	l.Closes++
	return nil
}

func (l *CommandList) execute() {
	for _, op := range l.deferred {
		op()
	}
}

func (l *CommandList) SetDescriptorHeap(heap native.DescriptorHeap) {
	l.record("SetDescriptorHeap", heap)
}

func (l *CommandList) ResourceBarrier(barriers []native.Barrier) {
	l.record("ResourceBarrier", append([]native.Barrier(nil), barriers...))
}

// Barriers flattens every barrier recorded since the last Reset
func (l *CommandList) Barriers() []native.Barrier {
	var barriers []native.Barrier
	for _, call := range l.CallsOf("ResourceBarrier") {
		barriers = append(barriers, call.Args[0].([]native.Barrier)...)
	}
	return barriers
}

func (l *CommandList) SetComputeRootSignature(signature native.RootSignature) {
	l.record("SetComputeRootSignature", signature)
}

func (l *CommandList) SetGraphicsRootSignature(signature native.RootSignature) {
	l.record("SetGraphicsRootSignature", signature)
}

func (l *CommandList) SetComputeRootDescriptorTable(slot uint32, base uint64) {
	l.record("SetComputeRootDescriptorTable", slot, base)
}

func (l *CommandList) SetGraphicsRootDescriptorTable(slot uint32, base uint64) {
	l.record("SetGraphicsRootDescriptorTable", slot, base)
}

func (l *CommandList) SetComputeRootView(slot uint32, kind gpu.DescriptorType, address uint64) {
	l.record("SetComputeRootView", slot, kind, address)
}

func (l *CommandList) SetGraphicsRootView(slot uint32, kind gpu.DescriptorType, address uint64) {
	l.record("SetGraphicsRootView", slot, kind, address)
}

func (l *CommandList) SetPipelineState(state native.PipelineState) {
	l.record("SetPipelineState", state)
}

func (l *CommandList) Dispatch(x, y, z uint32) {
	l.record("Dispatch", x, y, z)
}

func (l *CommandList) DispatchIndirect(args native.Resource, offset uint64) {
	l.record("DispatchIndirect", args, offset)
}

func (l *CommandList) BeginRenderPass(targets []native.RenderPassTarget, depth *native.RenderPassDepthTarget) {
	var depthCopy *native.RenderPassDepthTarget
	if depth != nil {
		d := *depth
		depthCopy = &d
	}
	l.record("BeginRenderPass", append([]native.RenderPassTarget(nil), targets...), depthCopy)
}

func (l *CommandList) EndRenderPass() {
	l.record("EndRenderPass")
}

func (l *CommandList) SetViewport(viewport gpu.Viewport) {
	l.record("SetViewport", viewport)
}

func (l *CommandList) SetScissor(scissor gpu.Scissor) {
	l.record("SetScissor", scissor)
}

func (l *CommandList) SetPrimitiveTopology(topology gpu.PrimitiveTopology) {
	l.record("SetPrimitiveTopology", topology)
}

func (l *CommandList) SetVertexBuffers(views []native.VertexBufferView) {
	l.record("SetVertexBuffers", append([]native.VertexBufferView(nil), views...))
}

func (l *CommandList) SetIndexBuffer(view native.IndexBufferView) {
	l.record("SetIndexBuffer", view)
}

func (l *CommandList) DrawInstanced(vertexCount, instanceCount uint32) {
	l.record("DrawInstanced", vertexCount, instanceCount)
}

func (l *CommandList) DrawIndexedInstanced(indexCount, instanceCount uint32) {
	l.record("DrawIndexedInstanced", indexCount, instanceCount)
}

func (l *CommandList) CopyBufferRegion(dst native.Resource, dstOffset uint64, src native.Resource, srcOffset uint64, size uint64) {
	l.record("CopyBufferRegion", dst, dstOffset, src, srcOffset, size)

	d, dOK := dst.(*Resource)
	s, sOK := src.(*Resource)
	if !dOK || !sOK {
		return
	}
	l.deferred = append(l.deferred, func() {
		copy(d.Memory[dstOffset:dstOffset+size], s.Memory[srcOffset:srcOffset+size])
	})
}

func (l *CommandList) CopyTextureRegion(dst native.CopyLocation, src native.CopyLocation) {
	l.record("CopyTextureRegion", dst, src)

	d, dOK := dst.Resource.(*Resource)
	s, sOK := src.Resource.(*Resource)
	if !dOK || !sOK {
		return
	}
	l.deferred = append(l.deferred, func() {
		copyTexels(d, dst, s, src)
	})
}

// copyTexels moves rows between a placed footprint and a tightly packed texture subresource
func copyTexels(dst *Resource, dstLoc native.CopyLocation, src *Resource, srcLoc native.CopyLocation) {
	switch {
	case srcLoc.Placed && !dstLoc.Placed:
		fp := srcLoc.Footprint
		rowBytes := int(fp.Width * fp.Format.ByteSize())
		base := subresourceOffset(dst, dstLoc.Subresource)
		for row := 0; row < int(fp.Height); row++ {
			from := int(fp.Offset) + row*int(fp.RowPitch)
			to := base + row*rowBytes
			copy(dst.Memory[to:to+rowBytes], src.Memory[from:from+rowBytes])
		}
	case !srcLoc.Placed && dstLoc.Placed:
		fp := dstLoc.Footprint
		rowBytes := int(fp.Width * fp.Format.ByteSize())
		base := subresourceOffset(src, srcLoc.Subresource)
		for row := 0; row < int(fp.Height); row++ {
			from := base + row*rowBytes
			to := int(fp.Offset) + row*int(fp.RowPitch)
			copy(dst.Memory[to:to+rowBytes], src.Memory[from:from+rowBytes])
		}
	default:
		size := min(len(dst.Memory)-subresourceOffset(dst, dstLoc.Subresource), len(src.Memory)-subresourceOffset(src, srcLoc.Subresource))
		from := subresourceOffset(src, srcLoc.Subresource)
		to := subresourceOffset(dst, dstLoc.Subresource)
		copy(dst.Memory[to:to+size], src.Memory[from:from+size])
	}
}

// subresourceOffset places subresources back to back at their mip 0 size, which is enough for
// the copies tests make
func subresourceOffset(r *Resource, subresource uint32) int {
	desc := r.Texture
	size := int(desc.Width) * int(desc.Height) * int(desc.Format.ByteSize())
	return min(int(subresource)*size, len(r.Memory))
}

func (l *CommandList) EndQuery(heap native.QueryHeap, index uint32) {
	l.record("EndQuery", heap, index)

	h, ok := heap.(*QueryHeap)
	if !ok {
		return
	}
	l.deferred = append(l.deferred, func() {
		h.Timestamps[index]++
	})
}

func (l *CommandList) ResolveQueryData(heap native.QueryHeap, start, count uint32, dest native.Resource, offset uint64) {
	l.record("ResolveQueryData", heap, start, count, dest, offset)
}

func (l *CommandList) Release() {
	l.Released = true
}
