package frame

import (
	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/kiln/fatal"
	"github.com/vkngwrapper/kiln/gpu"
	"github.com/vkngwrapper/kiln/gpu/command"
	"github.com/vkngwrapper/kiln/memutils"
)

const (
	DefaultRingSize      = 1 << 27
	DefaultRingAlignment = 256
)

// ErrRingFull is returned when an allocation would overwrite ring space that a frame still in
// flight is reading. Callers recover by waiting for an older frame and calling Reset.
var ErrRingFull = errors.New("ring allocation overlaps a span still in use by the GPU")

// Allocation is a range of the ring. Buffer is the device-local copy for uploaded allocations and
// the CPU-visible staging buffer otherwise; the offset is the same in both.
type Allocation struct {
	Buffer gpu.BufferHandle
	Offset uint32
	Size   uint32
}

// span is the half-open byte range [tail, head) of the ring
type span struct {
	tail uint32
	head uint32
}

func (s span) overlaps(offset, size uint32) bool {
	return memutils.RangesOverlap(s.tail, s.head-s.tail, offset, size)
}

type lockedSpan struct {
	fence gpu.Signal
	span  span
}

// BufferAllocator hands out per-frame transient memory from a ring. Every allocation is written
// through a persistently mapped staging buffer; uploaded allocations are additionally copied into
// a device-local buffer at the same offset on the copy queue. A frame's span is locked behind its
// present fence and only becomes reusable once Reset observes that fence complete.
type BufferAllocator struct {
	device    Device
	commands  *command.Buffer
	size      uint32
	alignment uint32

	gpuBuffer    gpu.BufferHandle
	uploadBuffer gpu.BufferHandle
	mapped       []byte

	frame span
	// wrapped is set once the current frame has restarted at offset 0. The frame then covers
	// [tail, size) and [0, head), which is the whole ring when head == tail.
	wrapped bool
	dirty   []span
	locked  []lockedSpan

	copyFence gpu.Signal
}

func NewBufferAllocator(dev Device, size, alignment int) (*BufferAllocator, error) {
	if size <= 0 {
		size = DefaultRingSize
	}
	if alignment <= 0 {
		alignment = DefaultRingAlignment
	}
	if err := memutils.CheckPow2(alignment, "ring alignment"); err != nil {
		return nil, err
	}

	upload, err := dev.CreateBuffer(gpu.BufferDesc{
		Size:    uint64(size),
		Storage: gpu.StorageUpload,
		Flags:   gpu.BindShaderResource,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create ring staging buffer")
	}

	local, err := dev.CreateBuffer(gpu.BufferDesc{
		Size:    uint64(size),
		Storage: gpu.StorageDevice,
		Flags:   gpu.BindShaderResource | gpu.BindRW,
	})
	if err != nil {
		dev.DestroyBuffer(upload)
		return nil, errors.Wrap(err, "failed to create ring buffer")
	}

	mapped, err := dev.Map(upload, 0, size)
	if err != nil {
		dev.DestroyBuffer(local)
		dev.DestroyBuffer(upload)
		return nil, err
	}

	return &BufferAllocator{
		device:       dev,
		commands:     command.New(0),
		size:         uint32(size),
		alignment:    uint32(alignment),
		gpuBuffer:    local,
		uploadBuffer: upload,
		mapped:       mapped,
		copyFence:    gpu.Signal{Queue: gpu.QueueCopy},
	}, nil
}

// reserved reports whether [offset, offset+size) touches a locked span or the part of the ring
// the current frame has already handed out
func (a *BufferAllocator) reserved(offset, size uint32) bool {
	for _, locked := range a.locked {
		if locked.span.overlaps(offset, size) {
			return true
		}
	}

	if !a.wrapped {
		return a.frame.overlaps(offset, size)
	}
	return span{a.frame.tail, a.size}.overlaps(offset, size) || span{0, a.frame.head}.overlaps(offset, size)
}

// CreateBuffer reserves size bytes and copies data, if any, into the staging buffer. With upload
// set the range is queued for a copy to the device-local buffer and that buffer is returned;
// otherwise the staging buffer is returned and shaders read it directly.
func (a *BufferAllocator) CreateBuffer(size uint32, data []byte, upload bool) (Allocation, error) {
	fatal.Check(size > 0 && size < a.size, "ring allocation of %d bytes in a ring of %d", size, a.size)
	fatal.Check(len(data) <= int(size), "%d bytes of data for a %d byte allocation", len(data), size)

	offset := a.frame.head
	head := memutils.AlignUp(offset+size, a.alignment)
	wraps := head > a.size
	if wraps {
		offset = 0
		head = memutils.AlignUp(size, a.alignment)
	}

	if a.reserved(offset, head-offset) {
		return Allocation{}, errors.Wrapf(ErrRingFull, "%d bytes at offset %d", size, offset)
	}
	a.frame.head = head
	a.wrapped = a.wrapped || wraps

	copy(a.mapped[offset:], data)

	if !upload {
		return Allocation{Buffer: a.uploadBuffer, Offset: offset, Size: size}, nil
	}

	if n := len(a.dirty); n > 0 && a.dirty[n-1].head == offset {
		a.dirty[n-1].head = head
	} else {
		a.dirty = append(a.dirty, span{tail: offset, head: head})
	}
	return Allocation{Buffer: a.gpuBuffer, Offset: offset, Size: size}, nil
}

// Bytes is the staging memory behind an allocation. Writes to an uploaded allocation must land
// before the next UpdateData.
func (a *BufferAllocator) Bytes(alloc Allocation) []byte {
	return a.mapped[alloc.Offset : alloc.Offset+alloc.Size]
}

// UpdateData records a copy for every dirty range of the staging buffer
func (a *BufferAllocator) UpdateData() {
	for _, dirty := range a.dirty {
		a.commands.Add(&command.CopyBuffer{
			Dst:       a.gpuBuffer,
			DstOffset: uint64(dirty.tail),
			Src:       a.uploadBuffer,
			SrcOffset: uint64(dirty.tail),
			NumBytes:  uint64(dirty.head - dirty.tail),
		})
	}
	a.dirty = a.dirty[:0]
}

// Flush submits the recorded copies to the copy queue and returns the fence that covers them.
// With nothing recorded the previous fence is returned.
func (a *BufferAllocator) Flush() gpu.Signal {
	if a.commands.Len() > 0 {
		a.copyFence = a.device.SubmitCommands(a.commands, gpu.QueueCopy)
		a.commands.Reset()
	}
	return a.copyFence
}

// CopyFence is the fence of the most recent Flush that submitted work
func (a *BufferAllocator) CopyFence() gpu.Signal {
	return a.copyFence
}

// Lock closes the current frame's span behind fence. A frame that wrapped past the end of the
// ring locks two spans.
func (a *BufferAllocator) Lock(fence gpu.Signal) {
	fatal.Check(len(a.dirty) == 0, "ring locked with %d ranges that were never copied", len(a.dirty))

	if !a.wrapped {
		a.push(fence, a.frame)
	} else {
		a.push(fence, span{a.frame.tail, a.size})
		a.push(fence, span{0, a.frame.head})
	}
	a.frame.tail = a.frame.head
	a.wrapped = false
}

func (a *BufferAllocator) push(fence gpu.Signal, s span) {
	if s.head == s.tail {
		return
	}
	a.locked = append(a.locked, lockedSpan{fence: fence, span: s})
}

// Reset releases every locked span whose fence value is at or below completed, oldest first
func (a *BufferAllocator) Reset(completed uint64) {
	released := 0
	for released < len(a.locked) && a.locked[released].fence.Value <= completed {
		released++
	}
	if released == 0 {
		return
	}

	n := copy(a.locked, a.locked[released:])
	a.locked = a.locked[:n]
}

// LockedSpans is the number of spans waiting on a fence
func (a *BufferAllocator) LockedSpans() int {
	return len(a.locked)
}

func (a *BufferAllocator) Destroy() {
	a.device.Unmap(a.uploadBuffer, 0, int(a.size))
	a.device.DestroyBuffer(a.uploadBuffer)
	a.device.DestroyBuffer(a.gpuBuffer)
	a.mapped = nil
}
