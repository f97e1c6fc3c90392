package device

import (
	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/kiln/gpu/native"
)

// Fence is the CPU-side view of one queue's fence timeline. Head is the most recent value handed
// out to a submission, LastSignal the most recent value the queue was asked to signal and Tail the
// most recent value the CPU knows the GPU has reached.
type Fence struct {
	Head       uint64
	Tail       uint64
	LastSignal uint64

	native native.Fence
}

func (f *Fence) valid() bool {
	return f.Tail <= f.LastSignal && f.LastSignal <= f.Head
}

func (f *Fence) Validate() error {
	if !f.valid() {
		return errors.Newf("fence out of order: tail %d, last signal %d, head %d", f.Tail, f.LastSignal, f.Head)
	}
	return nil
}

// Native is the backend fence the queue signals
func (f *Fence) Native() native.Fence {
	return f.native
}
