package spatialmath

import (
	"fmt"

	"github.com/golang/geo/r3"
)

// Sphere is a center and a radius. It is used as a cheap broad-phase proxy for boxes.
type Sphere struct {
	Center r3.Vector
	Radius float64
}

func (s Sphere) String() string {
	return fmt.Sprintf("Type: Sphere | Center: X:%.2f, Y:%.2f, Z:%.2f | Radius: %.2f", s.Center.X, s.Center.Y, s.Center.Z, s.Radius)
}

// Transform moves the sphere's center by p. The radius is unchanged.
func (s Sphere) Transform(p Pose) Sphere {
	return Sphere{Center: p.TransformPoint(s.Center), Radius: s.Radius}
}

// Intersects reports whether two spheres are within buffer of each other. Tangent spheres intersect.
func (s Sphere) Intersects(other Sphere, buffer float64) bool {
	return s.Center.Sub(other.Center).Norm() <= s.Radius+other.Radius+buffer
}
