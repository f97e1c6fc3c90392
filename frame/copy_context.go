package frame

import (
	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/kiln/fatal"
	"github.com/vkngwrapper/kiln/gpu"
	"github.com/vkngwrapper/kiln/gpu/command"
	"github.com/vkngwrapper/kiln/memutils"
)

const (
	DefaultCopySize = 1 << 27

	// TextureRowAlignment is the pitch every texel row is padded to in the staging buffer
	TextureRowAlignment = 256
	// TextureSliceAlignment is the alignment of the first row of each uploaded slice
	TextureSliceAlignment = 512
)

type stagingRange struct {
	offset uint32
	size   uint32
}

// CopyContext uploads asset data through a dedicated staging buffer. Flush blocks until the copy
// queue is done, so callers may use the destinations as soon as it returns.
type CopyContext struct {
	device   Device
	commands *command.Buffer

	staging gpu.BufferHandle
	mapped  []byte
	size    uint32
	offset  uint32

	// pending ranges are referenced by recorded copies; free ranges can be reserved again
	pending []stagingRange
	free    []stagingRange

	fence gpu.Signal
}

func NewCopyContext(dev Device, size int) (*CopyContext, error) {
	if size <= 0 {
		size = DefaultCopySize
	}

	staging, err := dev.CreateBuffer(gpu.BufferDesc{Size: uint64(size), Storage: gpu.StorageUpload})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create copy staging buffer")
	}

	mapped, err := dev.Map(staging, 0, size)
	if err != nil {
		dev.DestroyBuffer(staging)
		return nil, err
	}

	return &CopyContext{
		device:   dev,
		commands: command.New(0),
		staging:  staging,
		mapped:   mapped,
		size:     uint32(size),
		fence:    gpu.Signal{Queue: gpu.QueueCopy},
	}, nil
}

// reserve takes the first free range that is large enough and suitably aligned, and otherwise
// bumps the staging offset. Freed ranges are never split or merged.
func (c *CopyContext) reserve(size, alignment uint32) stagingRange {
	for i, r := range c.free {
		if size <= r.size && memutils.IsAligned(r.offset, alignment) {
			c.free = append(c.free[:i], c.free[i+1:]...)
			c.pending = append(c.pending, r)
			return r
		}
	}

	offset := memutils.AlignUp(c.offset, alignment)
	fatal.Check(uint64(offset)+uint64(size) <= uint64(c.size),
		"copy staging buffer of %d bytes cannot fit %d more bytes at offset %d", c.size, size, offset)

	r := stagingRange{offset: offset, size: size}
	c.offset = offset + size
	c.pending = append(c.pending, r)
	return r
}

// UploadTextureSlice stages height rows of width texels, read from data rowPitch bytes apart, and
// records a copy into the subresource view selects
func (c *CopyContext) UploadTextureSlice(view gpu.TextureView, data []byte, width, height uint16, rowPitch uint32) {
	packed := gpu.RowSize(uint32(width), view.Format)
	fatal.Check(packed <= rowPitch, "row pitch %d is smaller than a row of %d bytes", rowPitch, packed)
	fatal.Check(height == 0 || len(data) >= int(rowPitch)*(int(height)-1)+int(packed),
		"%d bytes of texel data for %d rows of pitch %d", len(data), height, rowPitch)

	row := memutils.AlignUp(packed, TextureRowAlignment)
	r := c.reserve(row*uint32(height), TextureSliceAlignment)

	dst := c.mapped[r.offset:]
	for i := 0; i < int(height); i++ {
		src := data[i*int(rowPitch):]
		copy(dst[i*int(row):i*int(row)+int(packed)], src[:packed])
	}

	c.commands.Add(&command.CopyBufferToTexture{
		Texture:      view,
		Width:        uint32(width),
		Height:       uint32(height),
		Buffer:       c.staging,
		BufferOffset: r.offset,
		RowSize:      row,
	})
}

// UploadBuffer stages data and records a copy into the range view describes
func (c *CopyContext) UploadBuffer(view gpu.BufferView, data []byte) {
	fatal.Check(len(data) >= int(view.Size), "%d bytes of data for a %d byte upload", len(data), view.Size)

	r := c.reserve(view.Size, TextureRowAlignment)
	copy(c.mapped[r.offset:r.offset+view.Size], data)

	c.commands.Add(&command.CopyBuffer{
		Dst:       view.Buffer,
		DstOffset: uint64(view.Offset),
		Src:       c.staging,
		SrcOffset: uint64(r.offset),
		NumBytes:  uint64(view.Size),
	})
}

// Flush submits every recorded copy and blocks until the copy queue has finished them
func (c *CopyContext) Flush() {
	if c.commands.Len() > 0 {
		c.fence = c.device.SubmitCommands(c.commands, gpu.QueueCopy)
		c.device.Block(c.fence)
		c.commands.Reset()
	}

	c.free = append(c.free, c.pending...)
	c.pending = c.pending[:0]
}

// Fence is the copy-queue value of the last Flush that submitted work
func (c *CopyContext) Fence() gpu.Signal {
	return c.fence
}

func (c *CopyContext) Destroy() {
	c.device.Unmap(c.staging, 0, int(c.size))
	c.device.DestroyBuffer(c.staging)
	c.mapped = nil
}
