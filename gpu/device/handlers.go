package device

import (
	"github.com/vkngwrapper/kiln/fatal"
	"github.com/vkngwrapper/kiln/gpu"
	"github.com/vkngwrapper/kiln/gpu/command"
	"github.com/vkngwrapper/kiln/gpu/native"
)

// replay translates every record in buffer into native calls on the list
func (l *commandList) replay(buffer *command.Buffer, timestamps native.QueryHeap, swapChain *swapChain) {
	records := buffer.Records()
	for records.Next() {
		record := records.Record()

		switch record.Type {
		case command.TypeDraw:
			l.draw(command.Decode[command.Draw](record))
		case command.TypeLayoutBarrier:
			l.transitionBarrier(command.Decode[command.LayoutBarrier](record))
		case command.TypeResourceBarrier:
			l.uavBarrier(command.Decode[command.ResourceBarrier](record))
		case command.TypeDispatch:
			l.dispatch(command.Decode[command.Dispatch](record))
		case command.TypeDispatchIndirect:
			l.dispatchIndirect(command.Decode[command.DispatchIndirect](record))
		case command.TypeBeginRenderPass:
			l.beginRenderPass(command.Decode[command.BeginRenderPass](record))
		case command.TypeEndRenderPass:
			l.endRenderPass()
		case command.TypeCopyBuffer:
			l.copyBuffer(command.Decode[command.CopyBuffer](record))
		case command.TypeCopyBufferToTexture:
			l.copyBufferToTexture(command.Decode[command.CopyBufferToTexture](record))
		case command.TypeCopyTexture:
			l.copyTexture(command.Decode[command.CopyTexture](record))
		case command.TypeCopyTextureToBuffer:
			l.copyTextureToBuffer(command.Decode[command.CopyTextureToBuffer](record))
		case command.TypeInsertTimestamp:
			l.insertTimestamp(command.Decode[command.InsertTimestamp](record), timestamps)
		case command.TypeResolveTimestamps:
			l.resolveTimestamps(command.Decode[command.ResolveTimestamps](record), timestamps)
		case command.TypeCopyToSwapChain:
			l.copyToSwapChain(command.Decode[command.CopyToSwapChain](record), swapChain)
		default:
			fatal.Reportf("unhandled command type %s", record.Type)
		}
	}
}

func (l *commandList) transitionBarrier(cmd *command.LayoutBarrier) {
	texture := l.res.texture(cmd.Texture.Texture)

	subresource := native.AllSubresources
	if !cmd.AllSubresources {
		subresource = textureSubresource(cmd.Texture)
	}

	l.addTransition(texture.resource, subresource, native.StateFor(cmd.Before), native.StateFor(cmd.After))
}

func (l *commandList) uavBarrier(cmd *command.ResourceBarrier) {
	fatal.Check(cmd.NumBufferBarriers <= gpu.MaxResourceBarriers && cmd.NumTextureBarriers <= gpu.MaxResourceBarriers,
		"resource barrier on %d buffers and %d textures", cmd.NumBufferBarriers, cmd.NumTextureBarriers)

	l.issueBarriers()

	var barriers [gpu.MaxResourceBarriers]native.Barrier
	if cmd.NumBufferBarriers > 0 {
		for i := uint32(0); i < cmd.NumBufferBarriers; i++ {
			barriers[i] = native.UAVBarrier(l.res.buffer(cmd.Buffers[i]).resource)
		}
		l.list.ResourceBarrier(barriers[:cmd.NumBufferBarriers])
	}

	if cmd.NumTextureBarriers > 0 {
		for i := uint32(0); i < cmd.NumTextureBarriers; i++ {
			barriers[i] = native.UAVBarrier(l.res.texture(cmd.Textures[i]).resource)
		}
		l.list.ResourceBarrier(barriers[:cmd.NumTextureBarriers])
	}
}

func (l *commandList) beginRenderPass(cmd *command.BeginRenderPass) {
	fatal.Check(l.renderPass == nil, "render pass begun inside another render pass")

	pass := l.res.renderPass(cmd.RenderPass)
	fatal.Check(pass.live, "%s is not a live render pass", cmd.RenderPass)
	fatal.Check(cmd.RenderTargetCount == pass.desc.NumRenderTargets,
		"render pass has %d render targets, %d bound", pass.desc.NumRenderTargets, cmd.RenderTargetCount)

	for i := uint32(0); i < pass.desc.NumRenderTargets; i++ {
		view := cmd.Color[i]
		fatal.Check(view.Dimension == gpu.ViewTexture2D, "render target %d is not a 2D view", i)

		target := l.res.texture(view.Texture)
		if target.rtv == noDescriptor {
			target.rtv = l.res.rtvs.Allocate()
			l.backend.CreateRenderTargetView(target.resource, view, target.rtv)
		}

		l.targets[i] = native.RenderPassTarget{Descriptor: target.rtv, Desc: pass.desc.RenderTargets[i]}
	}

	var depth *native.RenderPassDepthTarget
	if pass.desc.DepthStencil != nil {
		view := cmd.DepthStencil
		fatal.Check(view.Dimension == gpu.ViewTexture2D, "depth stencil target is not a 2D view")

		target := l.res.texture(view.Texture)
		descriptor := &target.dsvRead
		if cmd.DepthWrite {
			descriptor = &target.dsvWrite
		}

		if *descriptor == noDescriptor {
			*descriptor = l.res.dsvs.Allocate()
			l.backend.CreateDepthStencilView(target.resource, view, !cmd.DepthWrite, *descriptor)
		}

		depth = &native.RenderPassDepthTarget{Descriptor: *descriptor, Desc: *pass.desc.DepthStencil}
	}

	l.issueBarriers()
	l.list.BeginRenderPass(l.targets[:pass.desc.NumRenderTargets], depth)
	l.renderPass = pass

	l.list.SetViewport(cmd.Viewport)
	l.list.SetPrimitiveTopology(cmd.Topology)
}

func (l *commandList) endRenderPass() {
	fatal.Check(l.renderPass != nil, "render pass ended without one being begun")

	l.list.EndRenderPass()
	l.renderPass = nil
}

func (l *commandList) copyBuffer(cmd *command.CopyBuffer) {
	dst := l.res.buffer(cmd.Dst)
	src := l.res.buffer(cmd.Src)

	l.issueBarriers()
	l.list.CopyBufferRegion(dst.resource, cmd.DstOffset, src.resource, cmd.SrcOffset, cmd.NumBytes)
}

func (l *commandList) copyTexture(cmd *command.CopyTexture) {
	dst := native.CopyLocation{
		Resource:    l.res.texture(cmd.Dst.Texture).resource,
		Subresource: textureSubresource(cmd.Dst),
	}
	src := native.CopyLocation{
		Resource:    l.res.texture(cmd.Src.Texture).resource,
		Subresource: textureSubresource(cmd.Src),
	}

	l.issueBarriers()
	l.list.CopyTextureRegion(dst, src)
}

func placedFootprint(resource native.Resource, view gpu.TextureView, offset, width, height, rowSize uint32) native.CopyLocation {
	return native.CopyLocation{
		Resource: resource,
		Placed:   true,
		Footprint: native.Footprint{
			Offset:   uint64(offset),
			Format:   view.Format,
			Width:    width,
			Height:   height,
			Depth:    1,
			RowPitch: rowSize,
		},
	}
}

func (l *commandList) copyBufferToTexture(cmd *command.CopyBufferToTexture) {
	dst := native.CopyLocation{
		Resource:    l.res.texture(cmd.Texture.Texture).resource,
		Subresource: textureSubresource(cmd.Texture),
	}
	src := placedFootprint(l.res.buffer(cmd.Buffer).resource, cmd.Texture, cmd.BufferOffset, cmd.Width, cmd.Height, cmd.RowSize)

	l.issueBarriers()
	l.list.CopyTextureRegion(dst, src)
}

func (l *commandList) copyTextureToBuffer(cmd *command.CopyTextureToBuffer) {
	dst := placedFootprint(l.res.buffer(cmd.Buffer).resource, cmd.Texture, cmd.BufferOffset, cmd.Width, cmd.Height, cmd.RowSize)
	src := native.CopyLocation{
		Resource:    l.res.texture(cmd.Texture.Texture).resource,
		Subresource: textureSubresource(cmd.Texture),
	}

	l.issueBarriers()
	l.list.CopyTextureRegion(dst, src)
}

func (l *commandList) dispatch(cmd *command.Dispatch) {
	l.issueBarriers()
	l.setComputeState(cmd.ComputePipeline, &cmd.InputState)
	l.list.Dispatch(cmd.X, cmd.Y, cmd.Z)
}

func (l *commandList) dispatchIndirect(cmd *command.DispatchIndirect) {
	l.issueBarriers()
	l.setComputeState(cmd.ComputePipeline, &cmd.InputState)

	args := l.res.buffer(cmd.Args)
	fatal.Check(uint64(cmd.Offset)+gpu.DispatchIndirectStride <= args.desc.Size,
		"indirect dispatch arguments at offset %d overrun a buffer of %d bytes", cmd.Offset, args.desc.Size)
	l.list.DispatchIndirect(args.resource, uint64(cmd.Offset))
}

func (l *commandList) draw(cmd *command.Draw) {
	l.issueBarriers()
	l.setGraphicsState(cmd.GraphicsPipeline, &cmd.InputState)

	var views [gpu.MaxVertexBuffers]native.VertexBufferView
	if cmd.InputBuffer != gpu.NullBuffer {
		address := l.res.buffer(cmd.InputBuffer).resource.GPUAddress()
		for i := uint8(0); i < cmd.NumVertexBuffers; i++ {
			views[i] = native.VertexBufferView{
				Address: address + uint64(cmd.VertexBufferOffsets[i]),
				Size:    cmd.VertexBufferSizes[i],
				Stride:  cmd.VertexBufferStrides[i],
			}
		}
	}

	l.list.SetScissor(cmd.Rect)
	l.list.SetVertexBuffers(views[:cmd.NumVertexBuffers])

	if cmd.IndexBuffer == gpu.NullBuffer {
		l.list.DrawInstanced(cmd.NumElements, uint32(cmd.NumInstances))
		return
	}

	index := l.res.buffer(cmd.IndexBuffer)
	l.list.SetIndexBuffer(native.IndexBufferView{
		Address: index.resource.GPUAddress() + uint64(cmd.IndexBufferOffset),
		Size:    cmd.IndexBufferSize,
		Format:  gpu.FormatR32_UINT,
	})
	l.list.DrawIndexedInstanced(cmd.NumElements, uint32(cmd.NumInstances))
}

// copyToSwapChain copies a texture into the current back buffer, leaving both in the states they
// were in before the copy
func (l *commandList) copyToSwapChain(cmd *command.CopyToSwapChain, swapChain *swapChain) {
	fatal.Check(swapChain != nil, "copy to swapchain without a swapchain")

	backBuffer := swapChain.current()
	src := native.CopyLocation{
		Resource:    l.res.texture(cmd.Texture.Texture).resource,
		Subresource: textureSubresource(cmd.Texture),
	}
	dst := native.CopyLocation{Resource: backBuffer}
	state := native.StateFor(cmd.TextureState)

	l.addTransition(src.Resource, src.Subresource, state, native.StateCopySource)
	l.addTransition(backBuffer, 0, native.StatePresent, native.StateCopyDest)
	l.issueBarriers()

	l.list.CopyTextureRegion(dst, src)

	l.addTransition(backBuffer, 0, native.StateCopyDest, native.StatePresent)
	l.addTransition(src.Resource, src.Subresource, native.StateCopySource, state)
	l.issueBarriers()
}

func (l *commandList) insertTimestamp(cmd *command.InsertTimestamp, timestamps native.QueryHeap) {
	fatal.Check(cmd.Index < gpu.MaxTimestampQueries, "timestamp index %d out of range", cmd.Index)

	l.issueBarriers()
	l.list.EndQuery(timestamps, cmd.Index)
}

func (l *commandList) resolveTimestamps(cmd *command.ResolveTimestamps, timestamps native.QueryHeap) {
	fatal.Check(cmd.Index+cmd.TimestampCount <= gpu.MaxTimestampQueries,
		"resolving timestamps [%d, %d) out of range", cmd.Index, cmd.Index+cmd.TimestampCount)
	fatal.Check(cmd.Dest != gpu.NullBuffer, "timestamps resolved into the null buffer")

	dest := l.res.buffer(cmd.Dest)

	l.issueBarriers()
	l.list.ResolveQueryData(timestamps, cmd.Index, cmd.TimestampCount, dest.resource, uint64(cmd.AlignedOffset))
}
