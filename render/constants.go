package render

import (
	"encoding/binary"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/vkngwrapper/kiln/frame"
)

// MaxLights is the capacity of a scene's light buffer
const MaxLights = 64

// constantWriter packs shader constants little-endian in declaration order. Callers keep
// vectors from straddling 16-byte boundaries themselves.
type constantWriter struct {
	buf []byte
}

func (w *constantWriter) float(v float32) {
	w.buf = binary.LittleEndian.AppendUint32(w.buf, math32.Float32bits(v))
}

func (w *constantWriter) uint(v uint32) {
	w.buf = binary.LittleEndian.AppendUint32(w.buf, v)
}

func (w *constantWriter) mat4(m mgl32.Mat4) {
	for _, v := range m {
		w.float(v)
	}
}

func (w *constantWriter) vec4(v mgl32.Vec4) {
	for _, c := range v {
		w.float(c)
	}
}

func (w *constantWriter) bytes() []byte {
	return w.buf
}

// Light is a point light as the lighting shader reads it
type Light struct {
	Position  mgl32.Vec4
	Color     mgl32.Vec4
	Intensity float32
}

// LightSize is the byte stride of a Light in the light buffer
const LightSize = 48

func (l Light) encode(w *constantWriter) {
	w.vec4(l.Position)
	w.vec4(l.Color)
	w.float(l.Intensity)
	w.uint(0)
	w.uint(0)
	w.uint(0)
}

// LightingParameters is the lighting pass constant buffer
type LightingParameters struct {
	InverseViewProjection mgl32.Mat4
	CameraTransform       mgl32.Mat4
	InverseResolution     mgl32.Vec2
	LightCount            uint32
}

// UploadLights writes lights into a CPU-visible ring allocation. An empty light list still
// allocates one entry so the shader always has a buffer to bind.
func UploadLights(ring *frame.BufferAllocator, lights []Light) (frame.Allocation, error) {
	if len(lights) > MaxLights {
		lights = lights[:MaxLights]
	}

	w := constantWriter{buf: make([]byte, 0, max(len(lights), 1)*LightSize)}
	for _, light := range lights {
		light.encode(&w)
	}
	return ring.CreateBuffer(uint32(max(len(lights), 1)*LightSize), w.bytes(), false)
}

// UploadLightingParameters writes the lighting constants into a CPU-visible ring allocation
func UploadLightingParameters(ring *frame.BufferAllocator, params LightingParameters) (frame.Allocation, error) {
	var w constantWriter
	w.mat4(params.InverseViewProjection)
	w.mat4(params.CameraTransform)
	w.float(params.InverseResolution.X())
	w.float(params.InverseResolution.Y())
	w.uint(params.LightCount)
	return ring.CreateBuffer(uint32(len(w.bytes())), w.bytes(), false)
}
