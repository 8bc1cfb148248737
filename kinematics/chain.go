package kinematics

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"go.uber.org/multierr"

	"go.viam.com/chainik/referenceframe"
	"go.viam.com/chainik/spatialmath"
)

// Chain is a serial chain of revolute joints hung off an origin pose.
type Chain struct {
	origin mgl64.Mat4
	thetas []float64
	axes   []r3.Vector
	radii  []float64
	limits []referenceframe.Limit
	// backend composes every pose the chain produces
	backend spatialmath.Backend
}

// ChainOption configures a chain at construction.
type ChainOption func(*Chain)

// WithBackend replaces the transform backend used to compose the chain's poses.
func WithBackend(b spatialmath.Backend) ChainOption {
	return func(c *Chain) {
		c.backend = b
	}
}

// NewChain validates and returns a chain. A nil limits slice leaves every joint unbounded, and initial angles
// must lie within their limits. Length mismatches are reported before any other problem.
func NewChain(
	origin mgl64.Mat4,
	thetas []float64,
	axes []r3.Vector,
	radii []float64,
	limits []referenceframe.Limit,
	opts ...ChainOption,
) (*Chain, error) {
	if len(thetas) != len(axes) || len(thetas) != len(radii) {
		return nil, NewLengthMismatchError(len(thetas), len(axes), len(radii))
	}
	if limits == nil {
		limits = referenceframe.UnboundedLimits(len(thetas))
	}
	if len(limits) != len(thetas) {
		return nil, NewLimitsLengthError(len(limits), len(thetas))
	}

	var err error
	if !spatialmath.IsRigid(origin) {
		err = multierr.Append(err, spatialmath.NewNotRigidError(origin))
	}
	for i, axis := range axes {
		if axis.Norm() == 0 {
			err = multierr.Append(err, newZeroAxisError(i))
		}
	}
	for _, lim := range limits {
		err = multierr.Append(err, lim.Validate())
	}
	err = multierr.Append(err, referenceframe.CheckInputs(thetas, limits))
	if err != nil {
		return nil, err
	}

	c := &Chain{
		origin:  origin,
		thetas:  append([]float64{}, thetas...),
		axes:    append([]r3.Vector{}, axes...),
		radii:   append([]float64{}, radii...),
		limits:  append([]referenceframe.Limit{}, limits...),
		backend: spatialmath.DefaultBackend(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Len returns the number of joints.
func (c *Chain) Len() int {
	return len(c.thetas)
}

// Origin returns the pose prefixed to the whole chain.
func (c *Chain) Origin() mgl64.Mat4 {
	return c.origin
}

// Thetas returns a copy of the current joint angles.
func (c *Chain) Thetas() []float64 {
	return append([]float64{}, c.thetas...)
}

// SetThetas replaces the joint angles. Nothing changes if any angle is outside its limit.
func (c *Chain) SetThetas(thetas []float64) error {
	if len(thetas) != len(c.thetas) {
		return NewLengthMismatchError(len(thetas), len(c.axes), len(c.radii))
	}
	if err := referenceframe.CheckInputs(thetas, c.limits); err != nil {
		return err
	}
	copy(c.thetas, thetas)
	return nil
}

// SetTheta sets the angle of joint i, which must be within the joint's limit.
func (c *Chain) SetTheta(i int, theta float64) error {
	if i < 0 || i >= len(c.thetas) {
		return NewJointIndexError(i, len(c.thetas))
	}
	if !c.limits[i].Contains(theta) {
		return errors.Errorf("joint %d: %.5f %s %v", i, theta, referenceframe.OOBErrString, c.limits[i])
	}
	c.thetas[i] = theta
	return nil
}

// Theta returns the angle of joint i.
func (c *Chain) Theta(i int) float64 {
	return c.thetas[i]
}

// Axes returns the joint rotation axes.
func (c *Chain) Axes() []r3.Vector {
	return append([]r3.Vector{}, c.axes...)
}

// Radii returns the link lengths.
func (c *Chain) Radii() []float64 {
	return append([]float64{}, c.radii...)
}

// Limits returns the per-joint angle limits.
func (c *Chain) Limits() []referenceframe.Limit {
	return append([]referenceframe.Limit{}, c.limits...)
}

// ArmLength returns the sum of all link lengths.
func (c *Chain) ArmLength() float64 {
	return lo.Sum(c.radii)
}

// JointTransform returns the local transform of joint i at the given angle.
func (c *Chain) JointTransform(i int, angle float64) mgl64.Mat4 {
	return JointTransform(angle, c.axes[i], LinkOffset(c.radii[i]))
}

// Poses computes the pose sequence at the chain's current angles.
func (c *Chain) Poses() *Poses {
	p, err := c.PosesAt(c.thetas)
	if err != nil {
		// lengths were validated at construction and SetThetas keeps them equal
		panic(err)
	}
	return p
}

// PosesAt computes the pose sequence for an arbitrary configuration of this chain.
func (c *Chain) PosesAt(thetas []float64) (*Poses, error) {
	return newPoses(c.backend, c.origin, thetas, c.axes, c.radii)
}

// Clone returns a deep copy of the chain.
func (c *Chain) Clone() *Chain {
	return &Chain{
		origin:  c.origin,
		thetas:  c.Thetas(),
		axes:    c.Axes(),
		radii:   c.Radii(),
		limits:  c.Limits(),
		backend: c.backend,
	}
}
