package render

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

func (b AABB) corners() [8]mgl32.Vec4 {
	var corners [8]mgl32.Vec4
	for i := range corners {
		x, y, z := b.Min.X(), b.Min.Y(), b.Min.Z()
		if i&1 != 0 {
			x = b.Max.X()
		}
		if i&2 != 0 {
			y = b.Max.Y()
		}
		if i&4 != 0 {
			z = b.Max.Z()
		}
		corners[i] = mgl32.Vec4{x, y, z, 1}
	}
	return corners
}

func (b AABB) center() mgl32.Vec3 {
	return b.Min.Add(b.Max).Mul(0.5)
}

// clip plane tests in homogeneous clip space. A corner is outside a plane when the test is
// negative. The near plane is taken at z = -w, which also admits everything in front of a
// projection that maps depth to [0, w].
var clipPlanes = [6]func(c mgl32.Vec4) float32{
	func(c mgl32.Vec4) float32 { return c.W() + c.X() },
	func(c mgl32.Vec4) float32 { return c.W() - c.X() },
	func(c mgl32.Vec4) float32 { return c.W() + c.Y() },
	func(c mgl32.Vec4) float32 { return c.W() - c.Y() },
	func(c mgl32.Vec4) float32 { return c.W() + c.Z() },
	func(c mgl32.Vec4) float32 { return c.W() - c.Z() },
}

// visible reports whether box, transformed by the model-view-projection matrix mvp, may
// intersect the view volume. It only rejects boxes that lie entirely outside one clip plane.
func visible(box AABB, mvp mgl32.Mat4) bool {
	corners := box.corners()
	for i := range corners {
		corners[i] = mvp.Mul4x1(corners[i])
	}

	for _, plane := range clipPlanes {
		outside := 0
		for _, corner := range corners {
			if plane(corner) < 0 {
				outside++
			}
		}
		if outside == len(corners) {
			return false
		}
	}
	return true
}

// viewDepth is the distance of the box's center in front of the camera. View space looks down
// -Z; anything behind the camera is clamped to 0.
func viewDepth(box AABB, modelView mgl32.Mat4) float32 {
	center := modelView.Mul4x1(box.center().Vec4(1))
	return math32.Max(-center.Z(), 0)
}
