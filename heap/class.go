package heap

import (
	"github.com/vkngwrapper/kiln/gpu"
	"github.com/vkngwrapper/kiln/gpu/native"
)

// ClassForBuffer picks the heap class a buffer with the provided storage is placed in
func ClassForBuffer(storage gpu.BufferStorage) native.HeapClass {
	switch storage {
	case gpu.StorageUpload:
		return native.HeapUpload
	case gpu.StorageReadback:
		return native.HeapReadback
	default:
		return native.HeapBuffer
	}
}

// ClassForTexture picks the heap class for a texture. Render and depth targets may not share a
// heap with sampled-only textures, and multisampled textures need their own placement alignment.
func ClassForTexture(desc gpu.TextureDesc) native.HeapClass {
	if desc.Multisampled() {
		return native.HeapMultisampleTexture
	}

	if desc.IsTarget() {
		return native.HeapRenderTarget
	}

	return native.HeapTexture
}
