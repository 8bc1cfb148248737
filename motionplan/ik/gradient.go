package ik

import (
	"context"

	"github.com/go-gl/mathgl/mgl64"

	"go.viam.com/chainik/collision"
	"go.viam.com/chainik/kinematics"
	"go.viam.com/chainik/logging"
	"go.viam.com/chainik/utils"
)

// GradientDescentSolver estimates each joint's partial derivative of the loss by finite difference and steps
// against it with momentum and a decaying learn rate. A step that would leave the joint's limits is skipped and a
// step that would collide is reversed.
type GradientDescentSolver struct {
	*solverState
	momentum  []float64
	learnRate float64
}

// NewGradientDescentSolver returns a solver for chain. A nil handler disables collision checks; a nil opts uses
// the defaults.
func NewGradientDescentSolver(
	chain *kinematics.Chain,
	handler *collision.Handler,
	opts *Options,
	logger logging.Logger,
	solverOpts ...SolverOption,
) (*GradientDescentSolver, error) {
	s, err := newSolverState(chain, handler, opts, logger, solverOpts)
	if err != nil {
		return nil, err
	}
	return &GradientDescentSolver{
		solverState: s,
		momentum:    make([]float64, chain.Len()),
		learnRate:   s.opts.LearnRate,
	}, nil
}

// SetTarget sets the target pose and resets momentum, learn rate and iteration count.
func (gd *GradientDescentSolver) SetTarget(target mgl64.Mat4) error {
	if err := gd.setTarget(target); err != nil {
		return err
	}
	gd.momentum = make([]float64, gd.chain.Len())
	gd.learnRate = gd.opts.LearnRate
	return nil
}

// LearnRate returns the current, decayed learn rate.
func (gd *GradientDescentSolver) LearnRate() float64 {
	return gd.learnRate
}

// Solve runs gradient steps until the loss is at or below threshold or MaxIterations steps have run.
func (gd *GradientDescentSolver) Solve(ctx context.Context, target mgl64.Mat4, threshold float64) (*Result, error) {
	return gd.solve(ctx, target, threshold, gd.opts.MaxIterations, gd.SetTarget, gd.refreshLoss, gd.Update)
}

func (gd *GradientDescentSolver) refreshLoss() error {
	gd.loss = gd.metric(gd.chain.Poses().EndEffector())
	return nil
}

// Update runs one gradient step over every joint. All partial derivatives are taken from the pose sequence at
// the start of the step.
func (gd *GradientDescentSolver) Update(ctx context.Context) error {
	if gd.state == Idle {
		return nil
	}
	poses := gd.chain.Poses()
	loss := gd.metric(poses.EndEffector())
	gd.loss = loss
	limits := gd.chain.Limits()

	for i := 0; i < gd.chain.Len(); i++ {
		theta := gd.chain.Theta(i)

		perturbed := gd.chain.JointTransform(i, theta+gd.opts.Epsilon)
		gradient := (gd.metric(poses.EndEffectorWithJoint(i, perturbed)) - loss) / gd.opts.Epsilon
		gradient = utils.Clamp(gradient, -gd.opts.GradientClamp, gd.opts.GradientClamp)

		nudge := gd.momentum[i]*gd.opts.MomentumRetain + gradient*gd.learnRate
		next := theta - nudge
		if !limits[i].Contains(next) {
			continue
		}

		forward := poses.ForwardWithJoint(i, gd.chain.JointTransform(i, next))
		colliding, err := gd.isColliding(i, forward)
		if err != nil {
			return err
		}
		if colliding {
			// repel away from the collision instead
			if err := gd.chain.SetTheta(i, limits[i].Clamp(theta+nudge)); err != nil {
				return err
			}
			gd.momentum[i] = -nudge
		} else {
			if err := gd.chain.SetTheta(i, next); err != nil {
				return err
			}
			gd.momentum[i] = nudge
		}
	}

	gd.iterations++
	gd.learnRate = gd.opts.LearnRate / (1 + gd.opts.Decay*float64(gd.iterations))
	if err := gd.refreshLoss(); err != nil {
		return err
	}
	gd.logger.Debugw("gradient step", "iteration", gd.iterations, "loss", gd.loss, "learn_rate", gd.learnRate)
	return nil
}

func (gd *GradientDescentSolver) isColliding(joint int, forward []mgl64.Mat4) (bool, error) {
	self, err := gd.handler.IsArmCollidingSelf(joint, forward)
	if err != nil || self {
		return self, err
	}
	return gd.handler.IsArmCollidingWorld(joint, forward)
}

var _ IterativeSolver = (*GradientDescentSolver)(nil)
