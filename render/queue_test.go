package render

import (
	"encoding/binary"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/require"
	"github.com/vkngwrapper/kiln/gpu"
)

func queued(q *RenderQueue) []Mesh {
	var meshes []Mesh
	q.each(func(instance *meshInstance) {
		meshes = append(meshes, instance.mesh)
	})
	return meshes
}

func TestDepthQueueSortsFrontToBack(t *testing.T) {
	env := newTestEnv(t, 64, 64)
	ring := env.frame.Allocator()

	far := meshWithBuffer(1, AABB{})
	near := meshWithBuffer(2, AABB{})
	behind := meshWithBuffer(3, AABB{})
	alsoNear := meshWithBuffer(4, AABB{})

	q := NewRenderQueue(ConsumerDepth)
	require.NoError(t, q.Setup(ring, make([]byte, mat4Size)))
	require.NoError(t, q.Add(far, nil, 0, 40))
	require.NoError(t, q.Add(near, nil, 1, 2.5))
	require.NoError(t, q.Add(behind, nil, 2, -3))
	require.NoError(t, q.Add(alsoNear, nil, 3, 2.5))
	q.Sort()

	// negative depths clamp to zero; equal depths keep insertion order
	require.Equal(t, []Mesh{behind, near, alsoNear, far}, queued(q))
	require.Equal(t, 4, q.Len())
}

func TestGeometryQueueGroupsByMaterial(t *testing.T) {
	env := newTestEnv(t, 64, 64)
	ring := env.frame.Allocator()

	a := meshWithBuffer(7, AABB{})
	b := meshWithBuffer(3, AABB{})
	c := meshWithBuffer(5, AABB{})
	d := meshWithBuffer(1, AABB{})

	q := NewRenderQueue(ConsumerGeometry)
	require.NoError(t, q.Setup(ring, make([]byte, mat4Size)))
	require.NoError(t, q.Add(a, testMaterial(2), 0, 1))
	require.NoError(t, q.Add(b, testMaterial(9), 0, 1))
	require.NoError(t, q.Add(c, testMaterial(2), 0, 1))
	require.NoError(t, q.Add(d, nil, 0, 1))
	q.Sort()

	require.Equal(t, []Mesh{d, c, a, b}, queued(q))
}

func TestQueueInstanceConstants(t *testing.T) {
	env := newTestEnv(t, 64, 64)
	ring := env.frame.Allocator()

	q := NewRenderQueue(ConsumerGeometry)
	require.NoError(t, q.Setup(ring, make([]byte, mat4Size)))
	require.Equal(t, uint32(mat4Size), q.Constants().Size)

	require.NoError(t, q.Add(meshWithBuffer(1, AABB{}), testMaterial(11), 6, 0))
	q.each(func(instance *meshInstance) {
		data := ring.Bytes(instance.constants)
		require.Len(t, data, instanceConstantsSize)
		require.Equal(t, uint32(6), binary.LittleEndian.Uint32(data[0:]))
		require.Equal(t, uint32(11), binary.LittleEndian.Uint32(data[4:]))
	})

	q.Reset()
	require.Zero(t, q.Len())
	require.Equal(t, gpu.NullBuffer, q.Constants().Buffer)
}

func TestQueueAddBeforeSetupPanics(t *testing.T) {
	q := NewRenderQueue(ConsumerDepth)
	require.Panics(t, func() {
		_ = q.Add(meshWithBuffer(1, AABB{}), nil, 0, 0)
	})
}

func TestCulling(t *testing.T) {
	camera := newTestCamera(mgl32.Vec3{0, 0, 5}, mgl32.Vec3{0, 0, 0})
	viewProjection := camera.ViewProjection()

	testCases := []struct {
		name    string
		center  mgl32.Vec3
		visible bool
	}{
		{name: "InFront", center: mgl32.Vec3{0, 0, 0}, visible: true},
		{name: "StraddlesNearPlane", center: mgl32.Vec3{0, 0, 5}, visible: true},
		{name: "Behind", center: mgl32.Vec3{0, 0, 20}, visible: false},
		{name: "FarLeft", center: mgl32.Vec3{-50, 0, 0}, visible: false},
		{name: "PastFarPlane", center: mgl32.Vec3{0, 0, -200}, visible: false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.visible, visible(unitBox(tc.center), viewProjection))
		})
	}
}

func TestViewDepth(t *testing.T) {
	camera := newTestCamera(mgl32.Vec3{0, 0, 5}, mgl32.Vec3{0, 0, 0})

	require.InDelta(t, 5, viewDepth(unitBox(mgl32.Vec3{}), camera.View()), 1e-4)
	require.InDelta(t, 8, viewDepth(unitBox(mgl32.Vec3{}), camera.View().Mul4(mgl32.Translate3D(0, 0, -3))), 1e-4)
	require.Zero(t, viewDepth(unitBox(mgl32.Vec3{0, 0, 10}), camera.View()))
}

func TestBuildCullsAndQueues(t *testing.T) {
	env := newTestEnv(t, 64, 64)

	model := &testModel{
		meshes: []Mesh{
			meshWithBuffer(env.vertices, unitBox(mgl32.Vec3{})),
			meshWithBuffer(env.vertices, unitBox(mgl32.Vec3{0, 0, 20})),
		},
		materials: []Material{testMaterial(1)},
	}

	env.frame.Begin()
	env.renderer.AddModel(model, mgl32.Ident4())
	env.renderer.AddModel(model, mgl32.Translate3D(-50, 0, 0))
	require.NoError(t, env.renderer.Build(env.scene.camera))

	require.Equal(t, 1, env.renderer.Visible())
	require.Equal(t, 3, env.renderer.Culled())

	require.Equal(t, uint32(2*mat4Size), env.renderer.transformBuffer.Size)

	env.renderer.Clear()
	require.Zero(t, env.renderer.Visible())
	require.NoError(t, env.renderer.Build(env.scene.camera))
	require.Zero(t, env.renderer.Culled())
	env.frame.Present()

	env.destroy(t)
}
