package spatialmath

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/golang/geo/r3"
)

// Backend is the set of geometric primitives that the kinematic chain and collision engine rely on.
// Any implementation must agree with DefaultBackend on composition order and box semantics.
type Backend interface {
	// Compose returns a*b.
	Compose(a, b mgl64.Mat4) mgl64.Mat4
	// Invert returns the inverse of a rigid transform.
	Invert(m mgl64.Mat4) mgl64.Mat4
	// ToRigid converts a homogeneous transform to a Pose, failing if it is not a rigid motion.
	ToRigid(m mgl64.Mat4) (Pose, error)
	// NewBox returns a box centered at pose.
	NewBox(pose Pose, halfSize r3.Vector) (*Box, error)
	// BoundingSphere returns a sphere containing the box.
	BoundingSphere(b *Box) Sphere
	// TransformSphere moves a sphere by a pose.
	TransformSphere(s Sphere, p Pose) Sphere
	// SpheresIntersect reports whether the spheres are within buffer of each other.
	SpheresIntersect(a, b Sphere, buffer float64) bool
	// BoxesCollide reports whether two boxes are within buffer of each other.
	BoxesCollide(a, b *Box, buffer float64) bool
	// BoxDistance returns the separation of two boxes, non-positive when they overlap.
	BoxDistance(a, b *Box) float64
}

type defaultBackend struct{}

// DefaultBackend returns the mathgl and golang/geo backed implementation.
func DefaultBackend() Backend {
	return defaultBackend{}
}

func (defaultBackend) Compose(a, b mgl64.Mat4) mgl64.Mat4 {
	return a.Mul4(b)
}

func (defaultBackend) Invert(m mgl64.Mat4) mgl64.Mat4 {
	rt := m.Mat3().Transpose()
	t := rt.Mul3x1(mgl64.Vec3{m.At(0, 3), m.At(1, 3), m.At(2, 3)}).Mul(-1)
	out := rt.Mat4()
	out.SetCol(3, mgl64.Vec4{t[0], t[1], t[2], 1})
	return out
}

func (defaultBackend) ToRigid(m mgl64.Mat4) (Pose, error) {
	return NewPoseFromMatrix(m)
}

func (defaultBackend) NewBox(pose Pose, halfSize r3.Vector) (*Box, error) {
	return NewBox(pose, halfSize)
}

func (defaultBackend) BoundingSphere(b *Box) Sphere {
	return b.BoundingSphere()
}

func (defaultBackend) TransformSphere(s Sphere, p Pose) Sphere {
	return s.Transform(p)
}

func (defaultBackend) SpheresIntersect(a, b Sphere, buffer float64) bool {
	return a.Intersects(b, buffer)
}

func (defaultBackend) BoxesCollide(a, b *Box, buffer float64) bool {
	return a.CollidesWith(b, buffer)
}

func (defaultBackend) BoxDistance(a, b *Box) float64 {
	return a.DistanceFrom(b)
}
