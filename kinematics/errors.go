package kinematics

import (
	"github.com/pkg/errors"
)

// NewLengthMismatchError is returned when the angle, axis and radius vectors of a chain differ in length.
func NewLengthMismatchError(angles, axes, radii int) error {
	return errors.Errorf("vector lengths unequal! angles: %d, axes: %d, radii: %d", angles, axes, radii)
}

// NewLimitsLengthError is returned when a chain is given a limit slice whose length differs from its joint count.
func NewLimitsLengthError(limits, joints int) error {
	return errors.Errorf("got %d joint limits for %d joints", limits, joints)
}

// NewJointIndexError is returned when a joint index is out of range for the chain.
func NewJointIndexError(i, joints int) error {
	return errors.Errorf("joint index %d out of range for chain of %d joints", i, joints)
}

func newZeroAxisError(i int) error {
	return errors.Errorf("joint %d has a zero-length rotation axis", i)
}
