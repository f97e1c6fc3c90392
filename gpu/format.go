package gpu

import "fmt"

// BufferFormat is the element layout of a typed buffer view or a texture
type BufferFormat uint8

const (
	FormatUndefined BufferFormat = iota
	FormatR32G32B32A32_Typeless
	FormatR32G32B32A32_FLOAT
	FormatR32G32B32A32_UINT
	FormatR32G32B32A32_SINT
	FormatR32G32B32_Typeless
	FormatR32G32B32_FLOAT
	FormatR32G32B32_UINT
	FormatR32G32B32_SINT
	FormatR16G16B16A16_Typeless
	FormatR16G16B16A16_FLOAT
	FormatR16G16B16A16_UNORM
	FormatR16G16B16A16_UINT
	FormatR16G16B16A16_SNORM
	FormatR16G16B16A16_SINT
	FormatR32G32_Typeless
	FormatR32G32_FLOAT
	FormatR32G32_UINT
	FormatR32G32_SINT
	FormatR32G8X24_Typeless
	FormatD32_FLOAT_S8X24_UINT
	FormatR32_FLOAT_X8X24_Typeless
	FormatX32_Typeless_G8X24_UINT
	FormatR10G10B10A2_Typeless
	FormatR10G10B10A2_UNORM
	FormatR10G10B10A2_UINT
	FormatR11G11B10_FLOAT
	FormatR8G8B8A8_Typeless
	FormatR8G8B8A8_UNORM
	FormatR8G8B8A8_UNORM_SRGB
	FormatR8G8B8A8_UINT
	FormatR8G8B8A8_SNORM
	FormatR8G8B8A8_SINT
	FormatR16G16_Typeless
	FormatR16G16_FLOAT
	FormatR16G16_UNORM
	FormatR16G16_UINT
	FormatR16G16_SNORM
	FormatR16G16_SINT
	FormatR32_Typeless
	FormatD32_FLOAT
	FormatR32_FLOAT
	FormatR32_UINT
	FormatR32_SINT
	FormatR24G8_Typeless
	FormatD24_UNORM_S8_UINT
	FormatR24_UNORM_X8_Typeless
	FormatX24_Typeless_G8_UINT
	FormatR8G8_Typeless
	FormatR8G8_UNORM
	FormatR8G8_UINT
	FormatR8G8_SNORM
	FormatR8G8_SINT
	FormatR16_Typeless
	FormatR16_FLOAT
	FormatD16_UNORM
	FormatR16_UNORM
	FormatR16_UINT
	FormatR16_SNORM
	FormatR16_SINT
	FormatR8_Typeless
	FormatR8_UNORM
	FormatR8_UINT
	FormatR8_SNORM
	FormatR8_SINT
	FormatA8_UNORM
	FormatR1_UNORM
	FormatR8G8_B8G8_UNORM
	FormatG8R8_G8B8_UNORM
	FormatBC1_Typeless
	FormatBC1_UNORM
	FormatBC1_UNORM_SRGB
	FormatBC2_Typeless
	FormatBC2_UNORM
	FormatBC2_UNORM_SRGB
	FormatBC3_Typeless
	FormatBC3_UNORM
	FormatBC3_UNORM_SRGB
	FormatBC4_Typeless
	FormatBC4_UNORM
	FormatBC4_SNORM
	FormatBC5_Typeless
	FormatBC5_UNORM
	FormatBC5_SNORM
	FormatB5G6R5_UNORM
	FormatB5G5R5A1_UNORM
	FormatB8G8R8A8_UNORM
	FormatB8G8R8X8_UNORM
	FormatB8G8R8A8_Typeless
	FormatB8G8R8A8_UNORM_SRGB
	FormatB8G8R8X8_Typeless
	FormatB8G8R8X8_UNORM_SRGB
	FormatBC6H_Typeless
	FormatBC6H_UF16
	FormatBC6H_SF16
	FormatBC7_Typeless
	FormatBC7_UNORM
	FormatBC7_UNORM_SRGB
	FormatB4G4R4A4_UNORM

	formatCount
)

type formatInfo struct {
	name  string
	bytes uint32
}

var formatInfos = [formatCount]formatInfo{
	FormatUndefined: {"Undefined", 0},
	FormatR32G32B32A32_Typeless: {"R32G32B32A32_Typeless", 16},
	FormatR32G32B32A32_FLOAT: {"R32G32B32A32_FLOAT", 16},
	FormatR32G32B32A32_UINT: {"R32G32B32A32_UINT", 16},
	FormatR32G32B32A32_SINT: {"R32G32B32A32_SINT", 16},
	FormatR32G32B32_Typeless: {"R32G32B32_Typeless", 12},
	FormatR32G32B32_FLOAT: {"R32G32B32_FLOAT", 12},
	FormatR32G32B32_UINT: {"R32G32B32_UINT", 12},
	FormatR32G32B32_SINT: {"R32G32B32_SINT", 12},
	FormatR16G16B16A16_Typeless: {"R16G16B16A16_Typeless", 8},
	FormatR16G16B16A16_FLOAT: {"R16G16B16A16_FLOAT", 8},
	FormatR16G16B16A16_UNORM: {"R16G16B16A16_UNORM", 8},
	FormatR16G16B16A16_UINT: {"R16G16B16A16_UINT", 8},
	FormatR16G16B16A16_SNORM: {"R16G16B16A16_SNORM", 8},
	FormatR16G16B16A16_SINT: {"R16G16B16A16_SINT", 8},
	FormatR32G32_Typeless: {"R32G32_Typeless", 8},
	FormatR32G32_FLOAT: {"R32G32_FLOAT", 8},
	FormatR32G32_UINT: {"R32G32_UINT", 8},
	FormatR32G32_SINT: {"R32G32_SINT", 8},
	FormatR32G8X24_Typeless: {"R32G8X24_Typeless", 8},
	FormatD32_FLOAT_S8X24_UINT: {"D32_FLOAT_S8X24_UINT", 8},
	FormatR32_FLOAT_X8X24_Typeless: {"R32_FLOAT_X8X24_Typeless", 8},
	FormatX32_Typeless_G8X24_UINT: {"X32_Typeless_G8X24_UINT", 8},
	FormatR10G10B10A2_Typeless: {"R10G10B10A2_Typeless", 4},
	FormatR10G10B10A2_UNORM: {"R10G10B10A2_UNORM", 4},
	FormatR10G10B10A2_UINT: {"R10G10B10A2_UINT", 4},
	FormatR11G11B10_FLOAT: {"R11G11B10_FLOAT", 4},
	FormatR8G8B8A8_Typeless: {"R8G8B8A8_Typeless", 4},
	FormatR8G8B8A8_UNORM: {"R8G8B8A8_UNORM", 4},
	FormatR8G8B8A8_UNORM_SRGB: {"R8G8B8A8_UNORM_SRGB", 4},
	FormatR8G8B8A8_UINT: {"R8G8B8A8_UINT", 4},
	FormatR8G8B8A8_SNORM: {"R8G8B8A8_SNORM", 4},
	FormatR8G8B8A8_SINT: {"R8G8B8A8_SINT", 4},
	FormatR16G16_Typeless: {"R16G16_Typeless", 4},
	FormatR16G16_FLOAT: {"R16G16_FLOAT", 4},
	FormatR16G16_UNORM: {"R16G16_UNORM", 4},
	FormatR16G16_UINT: {"R16G16_UINT", 4},
	FormatR16G16_SNORM: {"R16G16_SNORM", 4},
	FormatR16G16_SINT: {"R16G16_SINT", 4},
	FormatR32_Typeless: {"R32_Typeless", 4},
	FormatD32_FLOAT: {"D32_FLOAT", 4},
	FormatR32_FLOAT: {"R32_FLOAT", 4},
	FormatR32_UINT: {"R32_UINT", 4},
	FormatR32_SINT: {"R32_SINT", 4},
	FormatR24G8_Typeless: {"R24G8_Typeless", 4},
	FormatD24_UNORM_S8_UINT: {"D24_UNORM_S8_UINT", 4},
	FormatR24_UNORM_X8_Typeless: {"R24_UNORM_X8_Typeless", 4},
	FormatX24_Typeless_G8_UINT: {"X24_Typeless_G8_UINT", 4},
	FormatR8G8_Typeless: {"R8G8_Typeless", 2},
	FormatR8G8_UNORM: {"R8G8_UNORM", 2},
	FormatR8G8_UINT: {"R8G8_UINT", 2},
	FormatR8G8_SNORM: {"R8G8_SNORM", 2},
	FormatR8G8_SINT: {"R8G8_SINT", 2},
	FormatR16_Typeless: {"R16_Typeless", 2},
	FormatR16_FLOAT: {"R16_FLOAT", 2},
	FormatD16_UNORM: {"D16_UNORM", 2},
	FormatR16_UNORM: {"R16_UNORM", 2},
	FormatR16_UINT: {"R16_UINT", 2},
	FormatR16_SNORM: {"R16_SNORM", 2},
	FormatR16_SINT: {"R16_SINT", 2},
	FormatR8_Typeless: {"R8_Typeless", 1},
	FormatR8_UNORM: {"R8_UNORM", 1},
	FormatR8_UINT: {"R8_UINT", 1},
	FormatR8_SNORM: {"R8_SNORM", 1},
	FormatR8_SINT: {"R8_SINT", 1},
	FormatA8_UNORM: {"A8_UNORM", 1},
	FormatR1_UNORM: {"R1_UNORM", 0},
	FormatR8G8_B8G8_UNORM: {"R8G8_B8G8_UNORM", 4},
	FormatG8R8_G8B8_UNORM: {"G8R8_G8B8_UNORM", 4},
	FormatBC1_Typeless: {"BC1_Typeless", 0},
	FormatBC1_UNORM: {"BC1_UNORM", 0},
	FormatBC1_UNORM_SRGB: {"BC1_UNORM_SRGB", 0},
	FormatBC2_Typeless: {"BC2_Typeless", 0},
	FormatBC2_UNORM: {"BC2_UNORM", 0},
	FormatBC2_UNORM_SRGB: {"BC2_UNORM_SRGB", 0},
	FormatBC3_Typeless: {"BC3_Typeless", 0},
	FormatBC3_UNORM: {"BC3_UNORM", 0},
	FormatBC3_UNORM_SRGB: {"BC3_UNORM_SRGB", 0},
	FormatBC4_Typeless: {"BC4_Typeless", 0},
	FormatBC4_UNORM: {"BC4_UNORM", 0},
	FormatBC4_SNORM: {"BC4_SNORM", 0},
	FormatBC5_Typeless: {"BC5_Typeless", 0},
	FormatBC5_UNORM: {"BC5_UNORM", 0},
	FormatBC5_SNORM: {"BC5_SNORM", 0},
	FormatB5G6R5_UNORM: {"B5G6R5_UNORM", 2},
	FormatB5G5R5A1_UNORM: {"B5G5R5A1_UNORM", 2},
	FormatB8G8R8A8_UNORM: {"B8G8R8A8_UNORM", 4},
	FormatB8G8R8X8_UNORM: {"B8G8R8X8_UNORM", 4},
	FormatB8G8R8A8_Typeless: {"B8G8R8A8_Typeless", 4},
	FormatB8G8R8A8_UNORM_SRGB: {"B8G8R8A8_UNORM_SRGB", 4},
	FormatB8G8R8X8_Typeless: {"B8G8R8X8_Typeless", 4},
	FormatB8G8R8X8_UNORM_SRGB: {"B8G8R8X8_UNORM_SRGB", 4},
	FormatBC6H_Typeless: {"BC6H_Typeless", 0},
	FormatBC6H_UF16: {"BC6H_UF16", 0},
	FormatBC6H_SF16: {"BC6H_SF16", 0},
	FormatBC7_Typeless: {"BC7_Typeless", 0},
	FormatBC7_UNORM: {"BC7_UNORM", 0},
	FormatBC7_UNORM_SRGB: {"BC7_UNORM_SRGB", 0},
	FormatB4G4R4A4_UNORM: {"B4G4R4A4_UNORM", 2},
}

func (f BufferFormat) String() string {
	if f < formatCount {
		return formatInfos[f].name
	}
	return fmt.Sprintf("BufferFormat(%d)", uint8(f))
}

// ByteSize is the size of one element in bytes, or 0 for block-compressed and sub-byte formats
func (f BufferFormat) ByteSize() uint32 {
	if f < formatCount {
		return formatInfos[f].bytes
	}
	return 0
}

func (f BufferFormat) IsDepth() bool {
	switch f {
	case FormatD32_FLOAT_S8X24_UINT, FormatD32_FLOAT, FormatD24_UNORM_S8_UINT, FormatD16_UNORM:
		return true
	}
	return false
}

// HasStencil reports whether a depth format carries a stencil plane
func (f BufferFormat) HasStencil() bool {
	return f == FormatD32_FLOAT_S8X24_UINT || f == FormatD24_UNORM_S8_UINT
}
