package device

import (
	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/kiln/descriptor"
	"github.com/vkngwrapper/kiln/gpu"
	"github.com/vkngwrapper/kiln/gpu/native"
)

var backBufferView = gpu.TextureView{
	Format:    gpu.FormatR8G8B8A8_UNORM,
	Dimension: gpu.ViewTexture2D,
	MipCount:  1,
	Depth:     1,
}

type swapChain struct {
	native native.SwapChain
	width  uint32
	height uint32
	views  [gpu.SwapChainBackBufferCount]uint64
}

func newSwapChain(backend native.Device, queue native.Queue, desc gpu.SwapChainDesc, rtvs *descriptor.CPUPool) (*swapChain, error) {
	sc, err := backend.CreateSwapChain(queue, desc, gpu.SwapChainBackBufferCount)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to create %dx%d swapchain", desc.Width, desc.Height)
	}

	s := &swapChain{
		native: sc,
		width:  desc.Width,
		height: desc.Height,
	}
	for i := range s.views {
		s.views[i] = rtvs.Allocate()
	}
	s.createViews(backend)

	return s, nil
}

// createViews writes a render-target view for every back buffer. The descriptors are reused
// across resizes.
func (s *swapChain) createViews(backend native.Device) {
	for i, view := range s.views {
		backend.CreateRenderTargetView(s.native.BackBuffer(i), backBufferView, view)
	}
}

func (s *swapChain) current() native.Resource {
	return s.native.BackBuffer(s.native.CurrentBackBufferIndex())
}

func (s *swapChain) resize(backend native.Device, width, height uint32) error {
	if err := s.native.Resize(width, height); err != nil {
		return errors.Wrapf(err, "failed to resize swapchain to %dx%d", width, height)
	}

	s.width, s.height = width, height
	s.createViews(backend)
	return nil
}

func (s *swapChain) release(rtvs *descriptor.CPUPool) {
	for _, view := range s.views {
		rtvs.Release(view)
	}
	s.native.Release()
}
