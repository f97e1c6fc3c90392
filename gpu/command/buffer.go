package command

import (
	"unsafe"

	"github.com/vkngwrapper/kiln/fatal"
	"github.com/vkngwrapper/kiln/memutils"
)

const (
	// DefaultSize is the arena size used when a Buffer is created with a size of 0
	DefaultSize = 1 << 20

	recordAlignment = 8
	headerSize      = int(unsafe.Sizeof(header{}))
)

type header struct {
	Type Type
	// Size spans the header and the aligned payload, so that it is also the stride to the next record
	Size uint32
}

// Buffer is an append-only arena of type-tagged command records. It is written by one producer,
// replayed front to back exactly once per submission and then Reset. The backing storage survives
// Reset so steady-state recording does not allocate.
type Buffer struct {
	// words keeps the arena 8-byte aligned so payloads can be read in place
	words  []uint64
	data   []byte
	offset int
	count  uint32
}

func New(size int) *Buffer {
	if size <= 0 {
		size = DefaultSize
	}
	size = memutils.AlignUp(size, recordAlignment)

	words := make([]uint64, size/recordAlignment)
	return &Buffer{
		words: words,
		data:  unsafe.Slice((*byte)(unsafe.Pointer(&words[0])), size),
	}
}

// Add copies cmd to the end of the arena. Running out of room is fatal: buffers are sized from
// configuration and a frame that overflows one is a sizing bug.
func (b *Buffer) Add(cmd Command) {
	switch c := cmd.(type) {
	case *Draw:
		appendRecord(b, c)
	case *LayoutBarrier:
		appendRecord(b, c)
	case *ResourceBarrier:
		appendRecord(b, c)
	case *Dispatch:
		appendRecord(b, c)
	case *DispatchIndirect:
		appendRecord(b, c)
	case *BeginRenderPass:
		appendRecord(b, c)
	case *EndRenderPass:
		appendRecord(b, c)
	case *CopyBuffer:
		appendRecord(b, c)
	case *CopyBufferToTexture:
		appendRecord(b, c)
	case *CopyTexture:
		appendRecord(b, c)
	case *CopyTextureToBuffer:
		appendRecord(b, c)
	case *InsertTimestamp:
		appendRecord(b, c)
	case *ResolveTimestamps:
		appendRecord(b, c)
	case *CopyToSwapChain:
		appendRecord(b, c)
	default:
		fatal.Reportf("unhandled command type %T", cmd)
	}
}

func appendRecord[T any, P interface {
	*T
	Command
}](b *Buffer, cmd P) {
	payloadSize := int(unsafe.Sizeof(*cmd))
	recordSize := headerSize + memutils.AlignUp(payloadSize, recordAlignment)

	fatal.Check(b.offset+recordSize <= len(b.data),
		"command buffer overflow: %s record of %d bytes at offset %d exceeds capacity %d",
		cmd.CommandType(), recordSize, b.offset, len(b.data))

	*(*header)(unsafe.Pointer(&b.data[b.offset])) = header{Type: cmd.CommandType(), Size: uint32(recordSize)}
	if payloadSize > 0 {
		copy(b.data[b.offset+headerSize:], unsafe.Slice((*byte)(unsafe.Pointer(cmd)), payloadSize))
	}

	b.offset += recordSize
	b.count++
}

// Reset rewinds the arena without releasing its storage
func (b *Buffer) Reset() {
	b.offset = 0
	b.count = 0
}

// Len is the number of recorded commands
func (b *Buffer) Len() int {
	return int(b.count)
}

// Size is the number of bytes written
func (b *Buffer) Size() int {
	return b.offset
}

func (b *Buffer) Capacity() int {
	return len(b.data)
}

// Records returns a cursor positioned before the first record
func (b *Buffer) Records() Iterator {
	return Iterator{buffer: b, next: 0}
}

// Record is one command in a Buffer. Its payload aliases the arena and is only valid until the
// buffer is Reset.
type Record struct {
	Type    Type
	Size    uint32
	payload []byte
}

// Iterator walks a Buffer's records in the order they were added
type Iterator struct {
	buffer  *Buffer
	next    int
	current Record
}

func (it *Iterator) Next() bool {
	if it.next >= it.buffer.offset {
		return false
	}

	h := *(*header)(unsafe.Pointer(&it.buffer.data[it.next]))
	fatal.Check(h.Size >= uint32(headerSize) && it.next+int(h.Size) <= it.buffer.offset,
		"corrupt command record at offset %d: size %d", it.next, h.Size)

	it.current = Record{
		Type:    h.Type,
		Size:    h.Size,
		payload: it.buffer.data[it.next+headerSize : it.next+int(h.Size)],
	}
	it.next += int(h.Size)
	return true
}

func (it *Iterator) Record() Record {
	return it.current
}

// Decode returns the payload of r as the command type it was recorded as. The pointer aliases the
// arena. Decoding a record as the wrong type is fatal.
func Decode[T any, P interface {
	*T
	Command
}](r Record) *T {
	var zero T
	want := P(&zero).CommandType()
	fatal.Check(r.Type == want, "command record is %s, decoded as %s", r.Type, want)

	size := int(unsafe.Sizeof(zero))
	fatal.Check(memutils.AlignUp(size, recordAlignment) == len(r.payload),
		"command record %s has %d payload bytes, expected %d", r.Type, len(r.payload), size)

	if size == 0 {
		return &zero
	}
	return (*T)(unsafe.Pointer(&r.payload[0]))
}
