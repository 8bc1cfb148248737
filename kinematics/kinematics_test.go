package kinematics

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/golang/geo/r3"
	"go.viam.com/test"

	"go.viam.com/chainik/referenceframe"
	"go.viam.com/chainik/spatialmath"
)

var (
	xAxis = r3.Vector{X: 1}
	yAxis = r3.Vector{Y: 1}
	zAxis = r3.Vector{Z: 1}
)

func TestChainTransformsThreeJoint(t *testing.T) {
	origin := mgl64.Ident4()
	mats, err := ChainTransforms(origin, []float64{0, 0, 0}, []r3.Vector{xAxis, yAxis, zAxis}, []float64{5, 3, 1})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, len(mats), test.ShouldEqual, 4)

	forward := ForwardProducts(mats)
	backward := BackwardProducts(mats)
	test.That(t, len(forward), test.ShouldEqual, 4)
	test.That(t, len(backward), test.ShouldEqual, 5)

	test.That(t, forward[0], test.ShouldResemble, origin)
	test.That(t, backward[4], test.ShouldResemble, mgl64.Ident4())
	test.That(t, forward[1].ApproxEqualThreshold(mgl64.Translate3D(0, 0, 5), 1e-12), test.ShouldBeTrue)
	test.That(t, spatialmath.Translation(forward[3]), test.ShouldResemble, r3.Vector{Z: 9})
	test.That(t, backward[0].ApproxEqualThreshold(forward[3], 1e-12), test.ShouldBeTrue)
}

func TestChainTransformsLengthMismatch(t *testing.T) {
	_, err := ChainTransforms(mgl64.Ident4(), []float64{0, 0}, []r3.Vector{xAxis, yAxis, zAxis}, []float64{5, 3, 1})
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "angles: 2, axes: 3, radii: 3")

	_, err = NewChain(mgl64.Ident4(), []float64{0, 0}, []r3.Vector{xAxis, yAxis, zAxis}, []float64{5, 3, 1}, nil)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "angles: 2, axes: 3, radii: 3")
}

func TestNewChainValidation(t *testing.T) {
	thetas := []float64{0, 0}
	axes := []r3.Vector{xAxis, {}}
	radii := []float64{1, 1}

	_, err := NewChain(mgl64.Ident4(), thetas, []r3.Vector{xAxis, yAxis}, radii, []referenceframe.Limit{{Min: 0, Max: 1}})
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "got 1 joint limits for 2 joints")

	_, err = NewChain(mgl64.Scale3D(2, 2, 2), thetas, axes, radii, []referenceframe.Limit{{Min: 1, Max: 0}, referenceframe.Unbounded()})
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "rigid")
	test.That(t, err.Error(), test.ShouldContainSubstring, "zero-length rotation axis")

	c, err := NewChain(mgl64.Ident4(), thetas, []r3.Vector{xAxis, yAxis}, radii, nil)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, c.Len(), test.ShouldEqual, 2)
	test.That(t, c.ArmLength(), test.ShouldEqual, 2.)
	test.That(t, c.Limits()[0].Contains(100), test.ShouldBeTrue)
}

func TestChainRespectsLimits(t *testing.T) {
	limits := []referenceframe.Limit{{Min: -1, Max: 1}, referenceframe.Unbounded()}
	axes := []r3.Vector{xAxis, yAxis}
	radii := []float64{1, 2}

	_, err := NewChain(mgl64.Ident4(), []float64{2, 0}, axes, radii, limits)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, referenceframe.OOBErrString)
	test.That(t, err.Error(), test.ShouldContainSubstring, "joint 0")

	// bounds are inclusive
	c, err := NewChain(mgl64.Ident4(), []float64{1, 50}, axes, radii, limits)
	test.That(t, err, test.ShouldBeNil)

	err = c.SetThetas([]float64{-1.5, 0})
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, referenceframe.OOBErrString)
	test.That(t, c.Thetas(), test.ShouldResemble, []float64{1, 50})
	test.That(t, c.SetThetas([]float64{-1, 0}), test.ShouldBeNil)
	test.That(t, c.Thetas(), test.ShouldResemble, []float64{-1, 0})

	err = c.SetTheta(0, 1.2)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, referenceframe.OOBErrString)
	test.That(t, c.Theta(0), test.ShouldEqual, -1.)

	err = c.SetTheta(2, 0)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "joint index 2 out of range")
	test.That(t, c.SetTheta(-1, 0), test.ShouldNotBeNil)
	test.That(t, c.SetTheta(1, -7), test.ShouldBeNil)
}

func TestChainCloneIsIndependent(t *testing.T) {
	c, err := NewChain(mgl64.Ident4(), []float64{0.1, 0.2}, []r3.Vector{xAxis, yAxis}, []float64{1, 2}, nil)
	test.That(t, err, test.ShouldBeNil)
	clone := c.Clone()
	test.That(t, clone.SetTheta(0, 3), test.ShouldBeNil)
	test.That(t, c.Theta(0), test.ShouldEqual, 0.1)
	test.That(t, clone.Theta(0), test.ShouldEqual, 3.)

	err = c.SetThetas([]float64{1})
	test.That(t, err, test.ShouldNotBeNil)
}

func TestPerturbedJointMatchesRecompute(t *testing.T) {
	origin := mgl64.Translate3D(1, -2, 0.5).Mul4(mgl64.HomogRotate3DZ(0.3))
	axes := []r3.Vector{zAxis, yAxis, xAxis, yAxis}
	radii := []float64{2, 3, 1.5, 1}
	thetas := []float64{0.4, -0.7, 1.1, 0.2}

	c, err := NewChain(origin, thetas, axes, radii, nil)
	test.That(t, err, test.ShouldBeNil)
	poses := c.Poses()

	for i := range thetas {
		perturbed := c.Thetas()
		perturbed[i] += 0.05
		want, err := c.PosesAt(perturbed)
		test.That(t, err, test.ShouldBeNil)

		m := c.JointTransform(i, perturbed[i])
		test.That(t, poses.EndEffectorWithJoint(i, m).ApproxEqualThreshold(want.EndEffector(), 1e-9), test.ShouldBeTrue)

		fwd := poses.ForwardWithJoint(i, m)
		test.That(t, len(fwd), test.ShouldEqual, len(want.Forward))
		for k := range fwd {
			test.That(t, fwd[k].ApproxEqualThreshold(want.Forward[k], 1e-9), test.ShouldBeTrue)
		}
	}
}

func TestForwardAndBackwardInvariants(t *testing.T) {
	origin := mgl64.Translate3D(0, 0, 4)
	for n := 0; n < 5; n++ {
		thetas := make([]float64, n)
		axes := make([]r3.Vector, n)
		radii := make([]float64, n)
		for i := 0; i < n; i++ {
			thetas[i] = float64(i) * 0.3
			axes[i] = []r3.Vector{xAxis, yAxis, zAxis}[i%3]
			radii[i] = float64(i + 1)
		}
		p, err := NewPoses(origin, thetas, axes, radii)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, p.Forward[0], test.ShouldResemble, origin)
		test.That(t, p.Backward[len(p.Backward)-1], test.ShouldResemble, mgl64.Ident4())
		test.That(t, len(p.Backward), test.ShouldEqual, n+2)
	}
}

// countingBackend counts the compositions it is asked for.
type countingBackend struct {
	spatialmath.Backend
	composed int
	inverted int
}

func (b *countingBackend) Compose(x, y mgl64.Mat4) mgl64.Mat4 {
	b.composed++
	return b.Backend.Compose(x, y)
}

func (b *countingBackend) Invert(m mgl64.Mat4) mgl64.Mat4 {
	b.inverted++
	return b.Backend.Invert(m)
}

func TestChainWithBackend(t *testing.T) {
	backend := &countingBackend{Backend: spatialmath.DefaultBackend()}
	thetas := []float64{0.3, -0.4, 0.2}
	axes := []r3.Vector{zAxis, yAxis, xAxis}
	radii := []float64{2, 1, 1}
	c, err := NewChain(mgl64.Translate3D(0, 0, 1), thetas, axes, radii, nil, WithBackend(backend))
	test.That(t, err, test.ShouldBeNil)

	poses := c.Poses()
	// three forward and four backward compositions
	test.That(t, backend.composed, test.ShouldEqual, 7)
	want, err := NewPoses(c.Origin(), thetas, axes, radii)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, poses.EndEffector().ApproxEqualThreshold(want.EndEffector(), 1e-12), test.ShouldBeTrue)

	// the backend travels with clones and with the poses they produce
	backend.composed = 0
	c.Clone().Poses().EndEffectorWithJoint(1, c.JointTransform(1, 0.1))
	test.That(t, backend.composed, test.ShouldEqual, 9)

	residual := poses.Residual(want.EndEffector())
	test.That(t, backend.inverted, test.ShouldEqual, 1)
	test.That(t, residual.ApproxEqualThreshold(mgl64.Ident4(), 1e-9), test.ShouldBeTrue)
}

func TestResidual(t *testing.T) {
	c, err := NewChain(mgl64.Ident4(), []float64{0, 0}, []r3.Vector{xAxis, yAxis}, []float64{2, 3}, nil)
	test.That(t, err, test.ShouldBeNil)
	poses := c.Poses()

	// the end-effector at z=5 seen from a target one unit higher and turned a quarter about z
	target := mgl64.Translate3D(0, 0, 6).Mul4(mgl64.HomogRotate3DZ(math.Pi / 2))
	residual := poses.Residual(target)
	test.That(t, spatialmath.Translation(residual).Z, test.ShouldAlmostEqual, -1.)
	test.That(t, spatialmath.Translation(residual).Norm(), test.ShouldAlmostEqual, 1.)
	test.That(t, residual.At(0, 1), test.ShouldAlmostEqual, 1.)
	test.That(t, target.Mul4(residual).ApproxEqualThreshold(poses.EndEffector(), 1e-9), test.ShouldBeTrue)
}

func TestLoss(t *testing.T) {
	target := mgl64.Translate3D(0, 0, 10)
	test.That(t, PoseLoss(target, target, 10), test.ShouldEqual, 0.)

	actual := mgl64.Translate3D(0, 5, 10)
	test.That(t, PositionLoss(actual, target, 10), test.ShouldAlmostEqual, 0.25)
	test.That(t, PositionLoss(actual, target, 0), test.ShouldAlmostEqual, 25.)
	test.That(t, RotationLoss(actual, target), test.ShouldEqual, 0.)

	// half turn about z flips two diagonal entries from 1 to -1
	flipped := target.Mul4(mgl64.HomogRotate3DZ(math.Pi))
	test.That(t, RotationLoss(flipped, target), test.ShouldAlmostEqual, 8/math.Pi)
	test.That(t, NewPositionOnlyMetric(target, 10)(flipped), test.ShouldAlmostEqual, 0.)
	test.That(t, NewPoseMetric(target, 10)(flipped), test.ShouldAlmostEqual, 8/math.Pi)
}
