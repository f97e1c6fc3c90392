// Package gpu holds the vocabulary shared by every layer of the GPU core: opaque resource handles,
// formats, resource and pipeline descriptions, and the fixed limits that size every table. All
// descriptions that travel through a command buffer are plain fixed-size values with no pointers.
package gpu
