package spatialmath

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/golang/geo/r3"
	"go.viam.com/test"
)

func TestJointTransformOrder(t *testing.T) {
	// rotate about X by 90 degrees, then translate 2 along the rotated Z, which now points along -Y
	m := JointTransform(math.Pi/2, r3.Vector{X: 1}, r3.Vector{Z: 2})
	pt := Translation(m)
	test.That(t, pt.X, test.ShouldAlmostEqual, 0.)
	test.That(t, pt.Y, test.ShouldAlmostEqual, -2.)
	test.That(t, pt.Z, test.ShouldAlmostEqual, 0.)
	test.That(t, IsRigid(m), test.ShouldBeTrue)
}

func TestJointTransformUnnormalizedAxis(t *testing.T) {
	a := JointTransform(0.3, r3.Vector{Z: 5}, r3.Vector{Z: 1})
	b := JointTransform(0.3, r3.Vector{Z: 1}, r3.Vector{Z: 1})
	test.That(t, a.ApproxEqualThreshold(b, 1e-12), test.ShouldBeTrue)
}

func TestIsRigid(t *testing.T) {
	test.That(t, IsRigid(mgl64.Ident4()), test.ShouldBeTrue)
	test.That(t, IsRigid(mgl64.Scale3D(2, 1, 1)), test.ShouldBeFalse)
	test.That(t, IsRigid(mgl64.Scale3D(-1, 1, 1)), test.ShouldBeFalse)

	m := mgl64.Ident4()
	m.Set(3, 0, 1)
	test.That(t, IsRigid(m), test.ShouldBeFalse)

	_, err := NewPoseFromMatrix(mgl64.Scale3D(2, 2, 2))
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "rigid")
}

func TestRowMajorRoundTrip(t *testing.T) {
	vals := [16]float64{1, 0, 0, 4, 0, 1, 0, 5, 0, 0, 1, 6, 0, 0, 0, 1}
	m := MatrixFromRowMajor(vals)
	test.That(t, Translation(m), test.ShouldResemble, r3.Vector{X: 4, Y: 5, Z: 6})
	test.That(t, RowMajor(m), test.ShouldResemble, vals)
}

func TestPoseComposeInverse(t *testing.T) {
	m := TranslationMatrix(r3.Vector{X: 1, Y: 2, Z: 3}).Mul4(JointTransform(0.7, r3.Vector{X: 1, Y: 1}, r3.Vector{Z: 2}))
	p, err := NewPoseFromMatrix(m)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, p.Matrix().ApproxEqualThreshold(m, 1e-12), test.ShouldBeTrue)

	id := Compose(p, PoseInverse(p))
	test.That(t, PoseAlmostEqual(id, NewZeroPose(), 1e-9), test.ShouldBeTrue)

	backend := DefaultBackend()
	inv := backend.Invert(m)
	test.That(t, backend.Compose(m, inv).ApproxEqualThreshold(mgl64.Ident4(), 1e-9), test.ShouldBeTrue)
	test.That(t, inv.ApproxEqualThreshold(m.Inv(), 1e-9), test.ShouldBeTrue)
}

func TestSphere(t *testing.T) {
	a := Sphere{Radius: 1}
	b := Sphere{Center: r3.Vector{X: 2}, Radius: 1}
	test.That(t, a.Intersects(b, 0), test.ShouldBeTrue)
	b.Center.X = 2.1
	test.That(t, a.Intersects(b, 0), test.ShouldBeFalse)
	test.That(t, a.Intersects(b, 0.2), test.ShouldBeTrue)

	moved := a.Transform(NewPoseFromPoint(r3.Vector{Y: 3}))
	test.That(t, moved.Center, test.ShouldResemble, r3.Vector{Y: 3})
	test.That(t, moved.Radius, test.ShouldEqual, 1.)
}
