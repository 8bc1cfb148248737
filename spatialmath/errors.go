package spatialmath

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
)

// NewNotRigidError is returned when a transform that must be a rigid motion is not one.
func NewNotRigidError(m mgl64.Mat4) error {
	return errors.Errorf("transform is not a valid rigid motion: %v", RowMajor(m))
}

func newBadGeometryDimensionsError(halfSize r3.Vector) error {
	return errors.Errorf("box half size %v must have non-negative, finite components", halfSize)
}
