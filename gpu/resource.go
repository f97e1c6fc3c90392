package gpu

type BufferStorage uint8

const (
	StorageDevice BufferStorage = iota
	StorageUpload
	StorageReadback
)

func (s BufferStorage) String() string {
	switch s {
	case StorageDevice:
		return "Device"
	case StorageUpload:
		return "Upload"
	case StorageReadback:
		return "Readback"
	}
	return "Unknown"
}

// CPUVisible reports whether buffers with this storage can be mapped
func (s BufferStorage) CPUVisible() bool {
	return s == StorageUpload || s == StorageReadback
}

type BindFlags uint16

const (
	BindNone               BindFlags = 0x0
	BindVertexBuffer       BindFlags = 0x1
	BindIndexBuffer        BindFlags = 0x2
	BindIndirectArguments  BindFlags = 0x4
	BindShaderResource     BindFlags = 0x8
	BindRenderTarget       BindFlags = 0x10
	BindDepthStencilTarget BindFlags = 0x20
	BindRW                 BindFlags = 0x40
)

func (f BindFlags) Has(flag BindFlags) bool {
	return f&flag == flag
}

type BufferDesc struct {
	Size    uint64
	Storage BufferStorage
	Flags   BindFlags
}

type BufferView struct {
	Buffer BufferHandle
	Format BufferFormat
	Offset uint32
	Size   uint32
	Stride uint32
}

type TextureDimension uint8

const (
	Texture1D TextureDimension = iota
	Texture2D
	Texture3D
)

type TextureViewDimension uint8

const (
	ViewTexture1D TextureViewDimension = iota
	ViewTexture2D
	ViewTexture2DArray
	ViewTexture2DMS
	ViewTextureCube
	ViewTexture3D
)

type TextureDesc struct {
	Width       uint16
	Height      uint16
	Depth       uint16
	MipLevels   uint16
	SampleCount uint16
	Format      BufferFormat
	Dimension   TextureDimension
	Flags       BindFlags
}

// IsTarget reports whether the texture can be bound as a colour or depth attachment
func (d TextureDesc) IsTarget() bool {
	return d.Flags&(BindRenderTarget|BindDepthStencilTarget) != 0
}

// Multisampled reports whether the texture has more than one sample per texel
func (d TextureDesc) Multisampled() bool {
	return d.SampleCount > 1
}

// ArraySize is the number of array slices, which for 3D textures is always one
func (d TextureDesc) ArraySize() uint16 {
	if d.Dimension == Texture3D || d.Depth == 0 {
		return 1
	}
	return d.Depth
}

type TextureView struct {
	Texture   TextureHandle
	Format    BufferFormat
	Dimension TextureViewDimension
	MipCount  uint16
	Depth     uint16
	MipLevel  uint16
	Index     uint16
	Plane     uint16
}

// SubresourceIndex flattens a mip/array/plane triple into the index native barriers and copies expect
func SubresourceIndex(mip, arrayIndex, plane, mipCount, arraySize uint32) uint32 {
	return mip + mipCount*arrayIndex + mipCount*arraySize*plane
}

type ResourceState uint8

const (
	StateCommon ResourceState = iota
	StateRenderTarget
	StateUnorderedAccess
	StateDepthWrite
	StateDepthRead
)

var resourceStateNames = [...]string{"Common", "RenderTarget", "UnorderedAccess", "DepthWrite", "DepthRead"}

func (s ResourceState) String() string {
	if int(s) < len(resourceStateNames) {
		return resourceStateNames[s]
	}
	return "Unknown"
}

type Viewport struct {
	TopLeftX float32
	TopLeftY float32
	Width    float32
	Height   float32
	MinZ     float32
	MaxZ     float32
}

type Scissor struct {
	Left   uint32
	Top    uint32
	Right  uint32
	Bottom uint32
}

// FullViewport covers a width x height target with the standard 0..1 depth range
func FullViewport(width, height uint32) Viewport {
	return Viewport{Width: float32(width), Height: float32(height), MaxZ: 1}
}

func FullScissor(width, height uint32) Scissor {
	return Scissor{Right: width, Bottom: height}
}

type SwapChainDesc struct {
	Surface uintptr
	Width   uint32
	Height  uint32
}

type FeatureInfo struct {
	// UMA is set when device memory and system memory are the same pool
	UMA                bool
	TimestampFrequency [QueueTypeCount]uint64
}

// Texture2DDesc describes a single-sample 2D texture with one mip and one array slice
func Texture2DDesc(width, height uint16, format BufferFormat, flags BindFlags) TextureDesc {
	return TextureDesc{
		Width:       width,
		Height:      height,
		Depth:       1,
		MipLevels:   1,
		SampleCount: 1,
		Format:      format,
		Dimension:   Texture2D,
		Flags:       flags,
	}
}

// DefaultView is the 2D view of every mip of the first slice of texture
func DefaultView(texture TextureHandle, desc TextureDesc) TextureView {
	return TextureView{
		Texture:   texture,
		Format:    desc.Format,
		Dimension: ViewTexture2D,
		MipCount:  desc.MipLevels,
		Depth:     desc.Depth,
	}
}

// RowSize is the byte size of width tightly packed texels
func RowSize(width uint32, format BufferFormat) uint32 {
	return width * format.ByteSize()
}
