package spatialmath

import (
	"fmt"
	"math"

	"github.com/golang/geo/r3"

	"go.viam.com/chainik/utils"
)

// floatEpsilon is the tolerance under which a cross product of two box axes is treated as degenerate.
const floatEpsilon = 1e-6

// Box is an oriented box: a center pose and half extents along the pose's local axes.
type Box struct {
	pose            Pose
	halfSize        [3]float64
	boundingSphereR float64
}

// NewBox instantiates a box centered at pose with the given half extents. Half extents must be finite and
// non-negative; a zero extent gives a degenerate (flat) box which is still valid.
func NewBox(pose Pose, halfSize r3.Vector) (*Box, error) {
	for _, v := range []float64{halfSize.X, halfSize.Y, halfSize.Z} {
		if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, newBadGeometryDimensionsError(halfSize)
		}
	}
	return &Box{
		pose:            pose,
		halfSize:        [3]float64{halfSize.X, halfSize.Y, halfSize.Z},
		boundingSphereR: halfSize.Norm(),
	}, nil
}

func (b *Box) String() string {
	return fmt.Sprintf("Type: Box | Position: X:%.2f, Y:%.2f, Z:%.2f | HalfSize: X:%.2f, Y:%.2f, Z:%.2f",
		b.pose.point.X, b.pose.point.Y, b.pose.point.Z, b.halfSize[0], b.halfSize[1], b.halfSize[2])
}

// Pose returns the center pose of the box.
func (b *Box) Pose() Pose {
	return b.pose
}

// HalfSize returns the half extents of the box.
func (b *Box) HalfSize() r3.Vector {
	return r3.Vector{X: b.halfSize[0], Y: b.halfSize[1], Z: b.halfSize[2]}
}

// Transform premultiplies the box's pose with toPremultiply and returns the moved box.
func (b *Box) Transform(toPremultiply Pose) *Box {
	return &Box{
		pose:            Compose(toPremultiply, b.pose),
		halfSize:        b.halfSize,
		boundingSphereR: b.boundingSphereR,
	}
}

// BoundingSphere returns the smallest sphere centered on the box that contains it.
func (b *Box) BoundingSphere() Sphere {
	return Sphere{Center: b.pose.point, Radius: b.boundingSphereR}
}

// CollidesWith reports whether the two boxes are within collisionBuffer of each other. Touching boxes collide.
// Disjoint bounding spheres answer first; otherwise the boxes collide unless one of the separating axes shows a
// gap wider than the buffer.
func (b *Box) CollidesWith(other *Box, collisionBuffer float64) bool {
	if !b.BoundingSphere().Intersects(other.BoundingSphere(), collisionBuffer) {
		return false
	}
	for _, axis := range separatingAxes(b, other) {
		if gapAlong(b, other, axis) > collisionBuffer {
			return false
		}
	}
	return true
}

// DistanceFrom returns the separation between two boxes. Overlapping boxes return a non-positive number whose
// magnitude is the smallest penetration over the separating axes.
func (b *Box) DistanceFrom(other *Box) float64 {
	gap := math.Inf(-1)
	for _, axis := range separatingAxes(b, other) {
		gap = math.Max(gap, gapAlong(b, other, axis))
	}
	if gap <= 0 {
		return gap
	}
	// the widest axis gap is only a lower bound when edges face each other
	return math.Max(gap, separation(b, other))
}

// closestPoint returns the closest point on the box to pt.
func (b *Box) closestPoint(pt r3.Vector) r3.Vector {
	result := b.pose.point
	direction := pt.Sub(result)
	for i := 0; i < 3; i++ {
		axis := b.pose.rot.Col(i)
		distance := utils.Clamp(direction.Dot(axis), -b.halfSize[i], b.halfSize[i])
		result = result.Add(axis.Mul(distance))
	}
	return result
}

// extent is the half length of the box's shadow on a unit axis.
func (b *Box) extent(axis r3.Vector) float64 {
	var r float64
	for i := 0; i < 3; i++ {
		r += b.halfSize[i] * math.Abs(b.pose.rot.Col(i).Dot(axis))
	}
	return r
}

// separatingAxes lists the unit axes on which two boxes can be told apart: the face normals of both boxes and every
// non-degenerate cross product of an edge of a with an edge of b. Parallel edge pairs add nothing the face
// normals do not already cover.
// references: https://gamedev.stackexchange.com/questions/25397/obb-vs-obb-collision-detection
func separatingAxes(a, b *Box) []r3.Vector {
	axes := make([]r3.Vector, 0, 15)
	for i := 0; i < 3; i++ {
		axes = append(axes, a.pose.rot.Col(i), b.pose.rot.Col(i))
	}
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			cross := a.pose.rot.Col(i).Cross(b.pose.rot.Col(j))
			if n := cross.Norm(); n > floatEpsilon {
				axes = append(axes, cross.Mul(1/n))
			}
		}
	}
	return axes
}

// gapAlong is the distance between the shadows of a and b on a unit axis. It is negative when the shadows overlap.
func gapAlong(a, b *Box, axis r3.Vector) float64 {
	return math.Abs(b.pose.point.Sub(a.pose.point).Dot(axis)) - a.extent(axis) - b.extent(axis)
}

const (
	maxProjectionSteps  = 256
	projectionTolerance = 1e-12
)

// separation is the Euclidean distance between two disjoint boxes. It projects back and forth between them
// starting from b's center; every round trip can only shorten the segment, and for convex shapes it settles on a
// closest pair.
func separation(a, b *Box) float64 {
	p := a.closestPoint(b.pose.point)
	q := b.closestPoint(p)
	dist := p.Distance(q)
	for i := 0; i < maxProjectionSteps; i++ {
		p = a.closestPoint(q)
		q = b.closestPoint(p)
		next := p.Distance(q)
		if dist-next <= projectionTolerance {
			return next
		}
		dist = next
	}
	return dist
}
