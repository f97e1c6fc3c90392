// Package render records a deferred-shading frame: a depth prepass, a four-target G-buffer pass,
// compute lighting and tonemapping, a forward sky pass and the final copy to the swapchain.
//
// Scenes, models, materials, cameras and shader compilation are supplied by the caller through
// the interfaces in this file.
package render

import (
	"github.com/cockroachdb/errors"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/vkngwrapper/kiln/frame"
	"github.com/vkngwrapper/kiln/gpu"
)

// ErrShaderCompile wraps every error returned by a ShaderCompiler
var ErrShaderCompile = errors.New("shader compilation failed")

type ShaderStage uint8

const (
	StageCompute ShaderStage = iota
	StageVertex
	StagePixel
)

func (s ShaderStage) String() string {
	switch s {
	case StageCompute:
		return "Compute"
	case StageVertex:
		return "Vertex"
	case StagePixel:
		return "Pixel"
	}
	return "Unknown"
}

type ShaderDesc struct {
	Path       string
	EntryPoint string
	Stage      ShaderStage
	Defines    []string
}

// ShaderCompiler turns shader source into bytecode the device accepts
type ShaderCompiler interface {
	Compile(desc ShaderDesc) ([]byte, error)
}

func compile(compiler ShaderCompiler, desc ShaderDesc) ([]byte, error) {
	bytecode, err := compiler.Compile(desc)
	if err != nil {
		return nil, errors.Wrapf(errors.Mark(err, ErrShaderCompile), "%s:%s (%s)", desc.Path, desc.EntryPoint, desc.Stage)
	}
	if len(bytecode) == 0 {
		return nil, errors.Wrapf(ErrShaderCompile, "%s:%s (%s) produced no bytecode", desc.Path, desc.EntryPoint, desc.Stage)
	}
	return bytecode, nil
}

// Camera matrices use the column-vector convention: clip = Projection * View * world.
type Camera interface {
	// Transform places the camera in the world; View is its inverse
	Transform() mgl32.Mat4
	View() mgl32.Mat4
	Projection() mgl32.Mat4
	ViewProjection() mgl32.Mat4
	InverseProjection() mgl32.Mat4
}

// AABB is an axis-aligned box in model space
type AABB struct {
	Min mgl32.Vec3
	Max mgl32.Vec3
}

const (
	VertexPosition = iota
	VertexNormal
	VertexTangent
	VertexTexCoords
	VertexElementCount
)

// IndexedInputBuffer describes where a mesh's vertex streams and indices live. Every vertex
// element is a separate stream inside InputBuffer.
type IndexedInputBuffer struct {
	InputBuffer         gpu.BufferHandle
	NumVertices         uint32
	IndexBuffer         gpu.BufferHandle
	NumIndices          uint32
	IndexBufferSize     uint32
	VertexBufferOffsets [VertexElementCount]uint32
	VertexBufferStrides [VertexElementCount]uint32
	VertexBufferSizes   [VertexElementCount]uint32
}

type Mesh interface {
	InputBuffer() *IndexedInputBuffer
	Bounds() AABB
}

type Material interface {
	// Index is the offset of the material's textures in the scene's material list
	Index() uint32
}

// Model pairs every mesh with the material it is drawn with. A nil material draws with index 0.
type Model interface {
	Meshes() []Mesh
	Materials() []Material
}

// Scene provides the per-frame lighting inputs. LightBuffer and LightingParameters must have been
// allocated from the frame's ring during the current frame.
type Scene interface {
	Camera() Camera
	LightBuffer() frame.Allocation
	LightingParameters() frame.Allocation
	// MaterialList is the input list holding every material texture
	MaterialList() gpu.PipelineHandle
}
