package collision

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/golang/geo/r3"
	"go.viam.com/test"

	"go.viam.com/chainik/kinematics"
	"go.viam.com/chainik/spatialmath"
)

// foldedArm returns four links of length 2 where link 2 folds back through link 0 and link 3 is far away.
func foldedArm() ([]r3.Vector, []mgl64.Mat4) {
	arm := ArmHalfSizes([]float64{2, 2, 2, 2}, 0.5)
	forward := []mgl64.Mat4{
		mgl64.Ident4(),
		// link 0 is vertical from z=0 to z=2
		mgl64.Translate3D(0, 0, 2),
		// link 1 is horizontal from x=0 to x=2 at z=2
		mgl64.Translate3D(2, 0, 2).Mul4(mgl64.HomogRotate3DY(math.Pi / 2)),
		// link 2 is horizontal from x=2 to x=0 at z=1, crossing link 0
		mgl64.Translate3D(0, 0, 1).Mul4(mgl64.HomogRotate3DY(-math.Pi / 2)),
		// link 3 hangs far off to the side
		mgl64.Translate3D(10, 0, 0),
	}
	return arm, forward
}

func TestFindSelfCollisions(t *testing.T) {
	arm, forward := foldedArm()
	h, err := NewHandler(arm, nil)
	test.That(t, err, test.ShouldBeNil)

	marks, err := h.FindSelfCollisions(forward)
	test.That(t, err, test.ShouldBeNil)
	// links 0 and 1 overlap at the elbow but are adjacent, as are 1 and 2
	test.That(t, marks, test.ShouldResemble, []bool{true, false, true, false})

	colliding, err := h.IsArmCollidingSelf(0, forward)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, colliding, test.ShouldBeTrue)

	colliding, err = h.IsArmCollidingSelf(2, forward)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, colliding, test.ShouldBeTrue)

	colliding, err = h.IsArmCollidingSelf(3, forward)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, colliding, test.ShouldBeFalse)

	collisions, err := h.Collisions(forward)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, len(collisions), test.ShouldEqual, 1)
	test.That(t, collisions[0].Link, test.ShouldEqual, 0)
	test.That(t, collisions[0].Other, test.ShouldEqual, 2)
	test.That(t, collisions[0].World, test.ShouldBeFalse)
	test.That(t, collisions[0].Distance, test.ShouldBeLessThanOrEqualTo, 0.)
}

func TestFindWorldCollisions(t *testing.T) {
	arm, forward := foldedArm()
	world := []Obstacle{
		{HalfSize: r3.Vector{X: 0.2, Y: 0.2, Z: 0.2}, Offset: mgl64.Translate3D(0.25, 0, 1)},
		{HalfSize: r3.Vector{X: 0.5, Y: 0.5, Z: 0.5}, Offset: mgl64.Translate3D(10, 0, -1)},
	}
	h, err := NewHandler(arm, world)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, h.NumObstacles(), test.ShouldEqual, 2)

	marks, err := h.FindWorldCollisions(forward)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, marks, test.ShouldResemble, []bool{true, false, true, true})

	colliding, err := h.IsArmCollidingWorld(1, forward)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, colliding, test.ShouldBeTrue)

	// only the far obstacle remains
	h, err = NewHandler(arm, world[1:])
	test.That(t, err, test.ShouldBeNil)
	marks, err = h.FindWorldCollisions(forward)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, marks, test.ShouldResemble, []bool{false, false, false, true})
}

func TestWorldSpheresAreBaked(t *testing.T) {
	arm, forward := foldedArm()
	h, err := NewHandler(arm, []Obstacle{{HalfSize: r3.Vector{X: 1, Y: 2, Z: 2}, Offset: mgl64.Translate3D(-5, 3, 0)}})
	test.That(t, err, test.ShouldBeNil)

	before := h.WorldSpheres()
	test.That(t, before[0].Center, test.ShouldResemble, r3.Vector{X: -5, Y: 3})
	test.That(t, before[0].Radius, test.ShouldAlmostEqual, 3.)

	for _, shift := range []float64{-5, 0, 5} {
		moved := make([]mgl64.Mat4, len(forward))
		for i, m := range forward {
			moved[i] = mgl64.Translate3D(shift, shift, 0).Mul4(m)
		}
		_, err := h.FindWorldCollisions(moved)
		test.That(t, err, test.ShouldBeNil)
	}
	test.That(t, h.WorldSpheres(), test.ShouldResemble, before)

	// mutating the returned copy must not reach the handler
	before[0].Center.X = 100
	test.That(t, h.WorldSpheres()[0].Center.X, test.ShouldEqual, -5.)
}

func TestNoArmColliders(t *testing.T) {
	h, err := NewHandler(nil, []Obstacle{{HalfSize: r3.Vector{X: 1, Y: 1, Z: 1}, Offset: mgl64.Ident4()}})
	test.That(t, err, test.ShouldBeNil)

	forward := []mgl64.Mat4{mgl64.Ident4(), mgl64.Ident4(), mgl64.Ident4()}
	colliding, err := h.IsArmColliding(forward)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, colliding, test.ShouldBeFalse)

	marks, err := h.FindSelfCollisions(forward)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, len(marks), test.ShouldEqual, 0)

	clearance, err := h.WorldClearance(forward)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, math.IsInf(clearance, 1), test.ShouldBeTrue)
}

func TestQueryErrors(t *testing.T) {
	arm, forward := foldedArm()
	h, err := NewHandler(arm, []Obstacle{{HalfSize: r3.Vector{X: 1, Y: 1, Z: 1}, Offset: mgl64.Translate3D(20, 0, 0)}})
	test.That(t, err, test.ShouldBeNil)

	_, err = h.FindSelfCollisions(forward[:3])
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "got 3 forward poses for 4 arm links")

	bad := append([]mgl64.Mat4{}, forward...)
	bad[2] = mgl64.Scale3D(2, 1, 1)
	_, err = h.IsArmColliding(bad)
	test.That(t, err, test.ShouldNotBeNil)

	_, err = NewHandler(arm, []Obstacle{{HalfSize: r3.Vector{X: 1}, Offset: mgl64.Scale3D(1, 1, 3)}})
	test.That(t, err, test.ShouldNotBeNil)
	_, err = NewHandler([]r3.Vector{{X: -1}}, nil)
	test.That(t, err, test.ShouldNotBeNil)
	_, err = NewHandler(arm, nil, WithBuffer(-1))
	test.That(t, err, test.ShouldNotBeNil)
}

func TestBufferAndClearance(t *testing.T) {
	arm := ArmHalfSizes([]float64{2}, 0.5)
	forward := []mgl64.Mat4{mgl64.Ident4(), mgl64.Translate3D(0, 0, 2)}
	world := []Obstacle{{HalfSize: r3.Vector{X: 0.5, Y: 0.5, Z: 0.5}, Offset: mgl64.Translate3D(1.3, 0, 1)}}

	h, err := NewHandler(arm, world)
	test.That(t, err, test.ShouldBeNil)
	colliding, err := h.IsArmColliding(forward)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, colliding, test.ShouldBeFalse)

	clearance, err := h.WorldClearance(forward)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, clearance, test.ShouldAlmostEqual, 0.3, 1e-6)

	h, err = NewHandler(arm, world, WithBuffer(0.5))
	test.That(t, err, test.ShouldBeNil)
	colliding, err = h.IsArmColliding(forward)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, colliding, test.ShouldBeTrue)
}

func TestHandlerWithChain(t *testing.T) {
	radii := []float64{4, 4, 6}
	axes := []r3.Vector{{Z: 1}, {Y: 1}, {Y: 1}}
	h, err := NewHandler(ArmHalfSizes(radii, 0.6), nil)
	test.That(t, err, test.ShouldBeNil)

	straight, err := kinematics.NewPoses(mgl64.Ident4(), []float64{0, 0, 0}, axes, radii)
	test.That(t, err, test.ShouldBeNil)
	colliding, err := h.IsArmColliding(straight.Forward)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, colliding, test.ShouldBeFalse)

	// folding the longer last link all the way back pushes it down into the first
	folded, err := kinematics.NewPoses(mgl64.Ident4(), []float64{0, 0, math.Pi}, axes, radii)
	test.That(t, err, test.ShouldBeNil)
	marks, err := h.FindSelfCollisions(folded.Forward)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, marks, test.ShouldResemble, []bool{true, false, true})
}

type countingBackend struct {
	spatialmath.Backend
	narrow int
}

func (b *countingBackend) BoxesCollide(x, y *spatialmath.Box, buffer float64) bool {
	b.narrow++
	return b.Backend.BoxesCollide(x, y, buffer)
}

func TestWithBackend(t *testing.T) {
	arm, forward := foldedArm()
	backend := &countingBackend{Backend: spatialmath.DefaultBackend()}
	h, err := NewHandler(arm, nil, WithBackend(backend))
	test.That(t, err, test.ShouldBeNil)

	marks, err := h.FindSelfCollisions(forward)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, marks, test.ShouldResemble, []bool{true, false, true, false})
	// link 3 is culled by the broad phase, leaving only the 0-2 pair for the narrow phase
	test.That(t, backend.narrow, test.ShouldEqual, 1)

	_, err = h.IsArmCollidingSelf(5, forward)
	test.That(t, err, test.ShouldNotBeNil)
	_, err = h.IsArmCollidingSelf(-1, forward)
	test.That(t, err, test.ShouldNotBeNil)
}
