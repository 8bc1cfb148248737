// Package config reads scene files: a chain, its link colliders, world obstacles, a target pose and the
// solver used to reach it.
package config

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"go.uber.org/multierr"

	"go.viam.com/chainik/collision"
	"go.viam.com/chainik/kinematics"
	"go.viam.com/chainik/logging"
	"go.viam.com/chainik/motionplan/ik"
	"go.viam.com/chainik/referenceframe"
	"go.viam.com/chainik/spatialmath"
)

// SolverKind names a solver.
type SolverKind string

// The available solvers.
const (
	SolverGradient SolverKind = "gradient"
	SolverGenetic  SolverKind = "genetic"
	SolverCombined SolverKind = "combined"
)

const defaultThreshold = 1e-4

// Matrix is a homogeneous transform written row by row.
type Matrix [16]float64

// Mat4 converts m to a transform.
func (m Matrix) Mat4() mgl64.Mat4 {
	return spatialmath.MatrixFromRowMajor(m)
}

// Vector is an x, y, z triple.
type Vector [3]float64

// R3 converts v to an r3.Vector.
func (v Vector) R3() r3.Vector {
	return r3.Vector{X: v[0], Y: v[1], Z: v[2]}
}

// JointConfig describes one joint. Min and Max default to unbounded.
type JointConfig struct {
	Axis   Vector   `json:"axis"`
	Radius float64  `json:"radius"`
	Theta  float64  `json:"theta"`
	Min    *float64 `json:"min,omitempty"`
	Max    *float64 `json:"max,omitempty"`
}

// Limit returns the joint's angle limit.
func (j JointConfig) Limit() referenceframe.Limit {
	limit := referenceframe.Unbounded()
	if j.Min != nil {
		limit.Min = *j.Min
	}
	if j.Max != nil {
		limit.Max = *j.Max
	}
	return limit
}

// ArmConfig describes the link colliders, either explicitly or as boxes of one half width spanning each link.
type ArmConfig struct {
	HalfWidth float64  `json:"half_width,omitempty"`
	HalfSizes []Vector `json:"half_sizes,omitempty"`
}

// ObstacleConfig is a static box placed by either a translation or a full offset transform.
type ObstacleConfig struct {
	HalfSize    Vector  `json:"half_size"`
	Translation *Vector `json:"translation,omitempty"`
	Offset      *Matrix `json:"offset,omitempty"`
}

// Transform returns the obstacle's world transform.
func (o ObstacleConfig) Transform() mgl64.Mat4 {
	if o.Offset != nil {
		return o.Offset.Mat4()
	}
	if o.Translation != nil {
		return spatialmath.TranslationMatrix(o.Translation.R3())
	}
	return mgl64.Ident4()
}

// Scene is the top level of a scene file.
type Scene struct {
	ConfigFilePath string `json:"-"`

	Origin    *Matrix          `json:"origin,omitempty"`
	Joints    []JointConfig    `json:"joints"`
	Arm       *ArmConfig       `json:"arm,omitempty"`
	Obstacles []ObstacleConfig `json:"obstacles,omitempty"`

	Solver    SolverKind  `json:"solver"`
	Threshold float64     `json:"threshold"`
	Target    *Matrix     `json:"target"`
	Options   *ik.Options `json:"options,omitempty"`
}

// Validate reports every problem with the scene.
func (s *Scene) Validate() error {
	var err error
	if len(s.Joints) == 0 {
		err = multierr.Append(err, errors.New("scene must have at least one joint"))
	}
	if s.Target == nil {
		err = multierr.Append(err, errors.New("scene must have a target"))
	}
	switch s.Solver {
	case SolverGradient, SolverGenetic, SolverCombined:
	default:
		err = multierr.Append(err, errors.Errorf("unknown solver %q", s.Solver))
	}
	if !(s.Threshold > 0) {
		err = multierr.Append(err, errors.Errorf("threshold must be positive, got %v", s.Threshold))
	}
	if s.Arm != nil {
		if s.Arm.HalfWidth < 0 {
			err = multierr.Append(err, errors.Errorf("arm half_width must not be negative, got %v", s.Arm.HalfWidth))
		}
		if len(s.Arm.HalfSizes) != 0 && len(s.Arm.HalfSizes) != len(s.Joints) {
			err = multierr.Append(err, errors.Errorf("got %d arm half_sizes for %d joints", len(s.Arm.HalfSizes), len(s.Joints)))
		}
	}
	for i, o := range s.Obstacles {
		if o.Offset != nil && o.Translation != nil {
			err = multierr.Append(err, errors.Errorf("obstacle %d has both translation and offset", i))
		}
	}
	if s.Options != nil {
		err = multierr.Append(err, s.Options.Validate())
	}
	return err
}

// OriginMatrix returns the chain origin, identity when unset.
func (s *Scene) OriginMatrix() mgl64.Mat4 {
	if s.Origin == nil {
		return mgl64.Ident4()
	}
	return s.Origin.Mat4()
}

// TargetMatrix returns the target pose.
func (s *Scene) TargetMatrix() mgl64.Mat4 {
	if s.Target == nil {
		return mgl64.Ident4()
	}
	return s.Target.Mat4()
}

// Chain builds the kinematic chain.
func (s *Scene) Chain() (*kinematics.Chain, error) {
	return kinematics.NewChain(
		s.OriginMatrix(),
		lo.Map(s.Joints, func(j JointConfig, _ int) float64 { return j.Theta }),
		lo.Map(s.Joints, func(j JointConfig, _ int) r3.Vector { return j.Axis.R3() }),
		s.radii(),
		lo.Map(s.Joints, func(j JointConfig, _ int) referenceframe.Limit { return j.Limit() }),
	)
}

func (s *Scene) radii() []float64 {
	return lo.Map(s.Joints, func(j JointConfig, _ int) float64 { return j.Radius })
}

// CollisionHandler builds the colliders. A scene without an arm section has no arm colliders and never collides.
func (s *Scene) CollisionHandler() (*collision.Handler, error) {
	var arm []r3.Vector
	if s.Arm != nil {
		if len(s.Arm.HalfSizes) > 0 {
			arm = lo.Map(s.Arm.HalfSizes, func(v Vector, _ int) r3.Vector { return v.R3() })
		} else {
			arm = collision.ArmHalfSizes(s.radii(), s.Arm.HalfWidth)
		}
	}
	world := lo.Map(s.Obstacles, func(o ObstacleConfig, _ int) collision.Obstacle {
		return collision.Obstacle{HalfSize: o.HalfSize.R3(), Offset: o.Transform()}
	})
	return collision.NewHandler(arm, world, collision.WithBuffer(s.SolverOptions().CollisionBuffer))
}

// SolverOptions returns the scene's solver options, defaults when unset.
func (s *Scene) SolverOptions() *ik.Options {
	if s.Options == nil {
		s.Options = ik.NewDefaultOptions()
	}
	return s.Options
}

// NewSolver builds the scene's solver with its chain and colliders.
func (s *Scene) NewSolver(logger logging.Logger, solverOpts ...ik.SolverOption) (ik.Solver, error) {
	chain, err := s.Chain()
	if err != nil {
		return nil, err
	}
	handler, err := s.CollisionHandler()
	if err != nil {
		return nil, err
	}
	switch s.Solver {
	case SolverGradient:
		return ik.NewGradientDescentSolver(chain, handler, s.SolverOptions(), logger, solverOpts...)
	case SolverGenetic:
		return ik.NewGeneticSolver(chain, handler, s.SolverOptions(), logger, solverOpts...)
	case SolverCombined:
		return ik.NewCombinedIK(chain, handler, s.SolverOptions(), logger, solverOpts...)
	default:
		return nil, errors.Errorf("unknown solver %q", s.Solver)
	}
}
