package render

import (
	"github.com/chewxy/math32"
	"github.com/vkngwrapper/kiln/fatal"
	"github.com/vkngwrapper/kiln/frame"
	"golang.org/x/exp/slices"
)

// Consumer selects the pass a RenderQueue feeds, which decides how its meshes are ordered
type Consumer uint8

const (
	// ConsumerDepth orders meshes front to back
	ConsumerDepth Consumer = iota
	// ConsumerGeometry groups meshes by material, then by vertex buffer
	ConsumerGeometry
)

func (c Consumer) String() string {
	switch c {
	case ConsumerDepth:
		return "Depth"
	case ConsumerGeometry:
		return "Geometry"
	}
	return "Unknown"
}

// instanceConstantsSize is {transform index, material index}
const instanceConstantsSize = 8

type meshInstance struct {
	mesh     Mesh
	material Material
	// constants holds the per-draw instance constants in the ring
	constants frame.Allocation
}

// RenderQueue collects the visible meshes of one pass for one frame along with the ring
// allocations their draws bind
type RenderQueue struct {
	consumer  Consumer
	ring      *frame.BufferAllocator
	constants frame.Allocation

	instances []meshInstance
	keys      []uint64
	order     []uint32
}

func NewRenderQueue(consumer Consumer) *RenderQueue {
	return &RenderQueue{consumer: consumer}
}

// Setup uploads the queue-wide constants for this frame
func (q *RenderQueue) Setup(ring *frame.BufferAllocator, constants []byte) error {
	alloc, err := ring.CreateBuffer(uint32(len(constants)), constants, true)
	if err != nil {
		return err
	}

	q.ring = ring
	q.constants = alloc
	return nil
}

func materialIndex(material Material) uint32 {
	if material == nil {
		return 0
	}
	return material.Index()
}

// Add uploads the instance constants for mesh and queues it. depth is the mesh's distance along
// the camera's forward axis.
func (q *RenderQueue) Add(mesh Mesh, material Material, transformIndex uint32, depth float32) error {
	fatal.Check(q.ring != nil, "%s render queue used before Setup", q.consumer)

	var w constantWriter
	w.uint(transformIndex)
	w.uint(materialIndex(material))

	alloc, err := q.ring.CreateBuffer(instanceConstantsSize, w.bytes(), true)
	if err != nil {
		return err
	}

	q.instances = append(q.instances, meshInstance{mesh: mesh, material: material, constants: alloc})
	q.keys = append(q.keys, q.sortKey(mesh, material, depth))
	q.order = append(q.order, uint32(len(q.order)))
	return nil
}

func (q *RenderQueue) sortKey(mesh Mesh, material Material, depth float32) uint64 {
	switch q.consumer {
	case ConsumerDepth:
		// the bits of a non-negative float order the same way the float does
		return uint64(math32.Float32bits(math32.Max(depth, 0)))
	case ConsumerGeometry:
		return uint64(materialIndex(material))<<32 | uint64(mesh.InputBuffer().InputBuffer)
	}

	fatal.Reportf("unhandled render queue consumer %s", q.consumer)
	return 0
}

// Sort orders the queue by sort key. Meshes with equal keys keep the order they were added in.
func (q *RenderQueue) Sort() {
	slices.SortStableFunc(q.order, func(a, b uint32) bool {
		return q.keys[a] < q.keys[b]
	})
}

// Reset empties the queue. The backing arrays are kept for the next frame.
func (q *RenderQueue) Reset() {
	for i := range q.instances {
		q.instances[i] = meshInstance{}
	}
	q.instances = q.instances[:0]
	q.keys = q.keys[:0]
	q.order = q.order[:0]
	q.constants = frame.Allocation{}
}

func (q *RenderQueue) Len() int {
	return len(q.instances)
}

// Constants is the queue-wide constant allocation
func (q *RenderQueue) Constants() frame.Allocation {
	return q.constants
}

// each calls fn for every queued mesh in sorted order
func (q *RenderQueue) each(fn func(instance *meshInstance)) {
	for _, index := range q.order {
		fn(&q.instances[index])
	}
}
