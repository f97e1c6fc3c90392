package main

import (
	"encoding/binary"

	"github.com/chewxy/math32"
	"github.com/cockroachdb/errors"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/vkngwrapper/kiln/config"
	"github.com/vkngwrapper/kiln/frame"
	"github.com/vkngwrapper/kiln/gpu"
	"github.com/vkngwrapper/kiln/render"
)

const (
	cubeVertices = 24
	cubeIndices  = 36

	materialCount       = 4
	materialTextureSize = 4
	skyFaceSize         = 8
)

// orbitCamera circles the origin at a fixed height
type orbitCamera struct {
	eye        mgl32.Vec3
	view       mgl32.Mat4
	projection mgl32.Mat4
}

func newOrbitCamera(aspect float32) *orbitCamera {
	c := &orbitCamera{projection: mgl32.Perspective(mgl32.DegToRad(60), aspect, 0.1, 200)}
	c.orbit(0)
	return c
}

func (c *orbitCamera) orbit(angle float32) {
	c.eye = mgl32.Vec3{math32.Cos(angle) * 18, 6, math32.Sin(angle) * 18}
	c.view = mgl32.LookAtV(c.eye, mgl32.Vec3{}, mgl32.Vec3{0, 1, 0})
}

func (c *orbitCamera) setAspect(aspect float32) {
	c.projection = mgl32.Perspective(mgl32.DegToRad(60), aspect, 0.1, 200)
}

func (c *orbitCamera) Transform() mgl32.Mat4         { return c.view.Inv() }
func (c *orbitCamera) View() mgl32.Mat4              { return c.view }
func (c *orbitCamera) Projection() mgl32.Mat4        { return c.projection }
func (c *orbitCamera) ViewProjection() mgl32.Mat4    { return c.projection.Mul4(c.view) }
func (c *orbitCamera) InverseProjection() mgl32.Mat4 { return c.projection.Inv() }

type cubeMesh struct {
	input render.IndexedInputBuffer
}

func (m *cubeMesh) InputBuffer() *render.IndexedInputBuffer { return &m.input }

func (m *cubeMesh) Bounds() render.AABB {
	return render.AABB{Min: mgl32.Vec3{-1, -1, -1}, Max: mgl32.Vec3{1, 1, 1}}
}

type material uint32

func (m material) Index() uint32 { return uint32(m) }

type model struct {
	meshes    []render.Mesh
	materials []render.Material
}

func (m *model) Meshes() []render.Mesh        { return m.meshes }
func (m *model) Materials() []render.Material { return m.materials }

// demoScene is a grid of cubes with one material each, a handful of orbiting point lights and a
// gradient sky
type demoScene struct {
	frame  *frame.Frame
	camera *orbitCamera

	vertices gpu.BufferHandle
	indices  gpu.BufferHandle
	textures []gpu.TextureHandle
	sky      gpu.TextureHandle
	skyDesc  gpu.TextureDesc

	materialList gpu.PipelineHandle
	models       []*model
	transforms   []mgl32.Mat4
	lights       []render.Light

	lightBuffer frame.Allocation
	parameters  frame.Allocation
}

func appendFloats(buf []byte, values ...float32) []byte {
	for _, v := range values {
		buf = binary.LittleEndian.AppendUint32(buf, math32.Float32bits(v))
	}
	return buf
}

// cubeStreams builds the four vertex streams and the index list of a unit cube with one quad
// per face
func cubeStreams() (streams [render.VertexElementCount][]byte, indices []byte) {
	faces := [6][2]mgl32.Vec3{
		{{1, 0, 0}, {0, 0, -1}},
		{{-1, 0, 0}, {0, 0, 1}},
		{{0, 1, 0}, {1, 0, 0}},
		{{0, -1, 0}, {1, 0, 0}},
		{{0, 0, 1}, {1, 0, 0}},
		{{0, 0, -1}, {-1, 0, 0}},
	}
	corners := [4][2]float32{{-1, -1}, {1, -1}, {1, 1}, {-1, 1}}

	for face, axes := range faces {
		normal, tangent := axes[0], axes[1]
		bitangent := normal.Cross(tangent)

		for _, corner := range corners {
			p := normal.Add(tangent.Mul(corner[0])).Add(bitangent.Mul(corner[1]))
			streams[render.VertexPosition] = appendFloats(streams[render.VertexPosition], p[:]...)
			streams[render.VertexNormal] = appendFloats(streams[render.VertexNormal], normal[:]...)
			streams[render.VertexTangent] = appendFloats(streams[render.VertexTangent], tangent[:]...)
			streams[render.VertexTexCoords] = appendFloats(streams[render.VertexTexCoords], (corner[0]+1)/2, (corner[1]+1)/2)
		}

		base := uint32(face * 4)
		for _, i := range [6]uint32{0, 1, 2, 0, 2, 3} {
			indices = binary.LittleEndian.AppendUint32(indices, base+i)
		}
	}
	return streams, indices
}

func newDemoScene(f *frame.Frame, options config.Scene) (*demoScene, error) {
	s := &demoScene{
		frame:  f,
		camera: newOrbitCamera(float32(f.Width()) / float32(f.Height())),
	}

	if err := s.uploadCube(); err != nil {
		s.Destroy()
		return nil, err
	}
	if err := s.uploadMaterials(); err != nil {
		s.Destroy()
		return nil, err
	}
	if err := s.uploadSky(); err != nil {
		s.Destroy()
		return nil, err
	}
	f.CopyContext().Flush()

	mesh := &cubeMesh{}
	offset := uint32(0)
	strides := [render.VertexElementCount]uint32{12, 12, 12, 8}
	for i := range strides {
		mesh.input.VertexBufferOffsets[i] = offset
		mesh.input.VertexBufferStrides[i] = strides[i]
		mesh.input.VertexBufferSizes[i] = strides[i] * cubeVertices
		offset += strides[i] * cubeVertices
	}
	mesh.input.InputBuffer = s.vertices
	mesh.input.NumVertices = cubeVertices
	mesh.input.IndexBuffer = s.indices
	mesh.input.NumIndices = cubeIndices
	mesh.input.IndexBufferSize = cubeIndices * 4

	// lay the models out on a square grid centered on the origin
	side := int(math32.Ceil(math32.Sqrt(float32(options.Models))))
	for i := 0; i < options.Models; i++ {
		x := float32(i%side) - float32(side-1)/2
		z := float32(i/side) - float32(side-1)/2
		s.models = append(s.models, &model{
			meshes:    []render.Mesh{mesh},
			materials: []render.Material{material(i % materialCount)},
		})
		s.transforms = append(s.transforms, mgl32.Translate3D(x*3, 0, z*3))
	}

	for i := 0; i < options.Lights; i++ {
		hue := float32(i) / float32(max(options.Lights, 1))
		s.lights = append(s.lights, render.Light{
			Color:     mgl32.Vec4{1 - hue, 0.5, hue, 1},
			Intensity: 10,
		})
	}
	return s, nil
}

func (s *demoScene) uploadCube() error {
	dev := s.frame.Device()
	streams, indices := cubeStreams()

	var data []byte
	for _, stream := range streams {
		data = append(data, stream...)
	}

	var err error
	s.vertices, err = dev.CreateBuffer(gpu.BufferDesc{Size: uint64(len(data)), Flags: gpu.BindVertexBuffer})
	if err != nil {
		return errors.Wrap(err, "failed to create cube vertices")
	}
	s.indices, err = dev.CreateBuffer(gpu.BufferDesc{Size: uint64(len(indices)), Flags: gpu.BindIndexBuffer})
	if err != nil {
		return errors.Wrap(err, "failed to create cube indices")
	}

	copies := s.frame.CopyContext()
	copies.UploadBuffer(gpu.BufferView{Buffer: s.vertices, Size: uint32(len(data))}, data)
	copies.UploadBuffer(gpu.BufferView{Buffer: s.indices, Size: uint32(len(indices))}, indices)
	return nil
}

func solidTexels(width, height int, color [4]byte) []byte {
	texels := make([]byte, 0, width*height*4)
	for i := 0; i < width*height; i++ {
		texels = append(texels, color[:]...)
	}
	return texels
}

func (s *demoScene) uploadMaterials() error {
	dev := s.frame.Device()
	copies := s.frame.CopyContext()

	s.materialList = dev.CreatePipelineInputList(render.MaterialListSize)

	views := make([]gpu.TextureView, 0, materialCount)
	for i := 0; i < materialCount; i++ {
		desc := gpu.Texture2DDesc(materialTextureSize, materialTextureSize, gpu.FormatR8G8B8A8_UNORM, gpu.BindShaderResource)
		texture, err := dev.CreateTexture(desc)
		if err != nil {
			return errors.Wrapf(err, "failed to create material %d", i)
		}
		s.textures = append(s.textures, texture)

		shade := byte(64*(i+1) - 1)
		texels := solidTexels(materialTextureSize, materialTextureSize, [4]byte{shade, 255 - shade, 128, 255})
		view := gpu.DefaultView(texture, desc)
		copies.UploadTextureSlice(view, texels, materialTextureSize, materialTextureSize, materialTextureSize*4)
		views = append(views, view)
	}

	dev.UpdateTextureViews(s.materialList, gpu.DescriptorSRV, views, 0)
	return nil
}

func (s *demoScene) uploadSky() error {
	s.skyDesc = gpu.Texture2DDesc(skyFaceSize, skyFaceSize, gpu.FormatR8G8B8A8_UNORM, gpu.BindShaderResource)
	s.skyDesc.Depth = 6

	var err error
	s.sky, err = s.frame.Device().CreateTexture(s.skyDesc)
	if err != nil {
		return errors.Wrap(err, "failed to create sky")
	}

	copies := s.frame.CopyContext()
	for face := uint16(0); face < 6; face++ {
		view := gpu.DefaultView(s.sky, s.skyDesc)
		view.Index = face
		blue := byte(160 + face*16)
		copies.UploadTextureSlice(view, solidTexels(skyFaceSize, skyFaceSize, [4]byte{90, 140, blue, 255}), skyFaceSize, skyFaceSize, skyFaceSize*4)
	}
	return nil
}

// update moves the camera and lights for frame index and queues every model with the renderer
func (s *demoScene) update(renderer *render.Renderer, index uint64) {
	t := float32(index) / 60
	s.camera.orbit(t * 0.5)

	for i := range s.lights {
		angle := t + float32(i)*2*math32.Pi/float32(len(s.lights))
		s.lights[i].Position = mgl32.Vec4{math32.Cos(angle) * 8, 3, math32.Sin(angle) * 8, 1}
	}

	for i, m := range s.models {
		spin := mgl32.HomogRotate3DY(t + float32(i))
		renderer.AddModel(m, s.transforms[i].Mul4(spin))
	}
}

// upload writes the frame's light buffer and lighting constants into the ring
func (s *demoScene) upload() error {
	ring := s.frame.Allocator()

	var err error
	s.lightBuffer, err = render.UploadLights(ring, s.lights)
	if err != nil {
		return err
	}

	s.parameters, err = render.UploadLightingParameters(ring, render.LightingParameters{
		InverseViewProjection: s.camera.ViewProjection().Inv(),
		CameraTransform:       s.camera.Transform(),
		InverseResolution:     mgl32.Vec2{1 / float32(s.frame.Width()), 1 / float32(s.frame.Height())},
		LightCount:            uint32(min(len(s.lights), render.MaxLights)),
	})
	return err
}

func (s *demoScene) Camera() render.Camera                { return s.camera }
func (s *demoScene) LightBuffer() frame.Allocation        { return s.lightBuffer }
func (s *demoScene) LightingParameters() frame.Allocation { return s.parameters }
func (s *demoScene) MaterialList() gpu.PipelineHandle     { return s.materialList }

// Destroy releases the scene's device objects. The GPU must be idle.
func (s *demoScene) Destroy() {
	dev := s.frame.Device()
	if s.vertices.Valid() {
		dev.DestroyBuffer(s.vertices)
	}
	if s.indices.Valid() {
		dev.DestroyBuffer(s.indices)
	}
	for _, texture := range s.textures {
		dev.DestroyTexture(texture)
	}
	if s.sky.Valid() {
		dev.DestroyTexture(s.sky)
	}
	if !s.materialList.IsNull() {
		dev.DestroyPipelineResource(s.materialList)
	}
}
