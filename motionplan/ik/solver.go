// Package ik solves inverse kinematics for a serial chain with iterative optimizers: a momentum gradient descent
// that rejects colliding steps, a genetic algorithm that penalizes colliding candidates, and a combination of both.
package ik

import (
	"context"
	"math"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"

	"go.viam.com/chainik/collision"
	"go.viam.com/chainik/kinematics"
	"go.viam.com/chainik/logging"
	"go.viam.com/chainik/spatialmath"
)

// Result is the outcome of a Solve call. A result that did not converge is not an error: Thetas holds the best
// configuration found.
type Result struct {
	Thetas     []float64
	Loss       float64
	Iterations int
	Converged  bool
	State      State
	Elapsed    time.Duration
}

// Solver drives a chain toward a target pose.
type Solver interface {
	// Solve iterates from the current configuration until the loss is at or below threshold or the iteration cap
	// is hit.
	Solve(ctx context.Context, target mgl64.Mat4, threshold float64) (*Result, error)
	Thetas() []float64
	Loss() float64
	Iterations() int
	State() State
}

// IterativeSolver is a Solver that can also be stepped by hand.
type IterativeSolver interface {
	Solver
	// SetTarget moves the solver to Solving and resets its iteration state.
	SetTarget(target mgl64.Mat4) error
	// Update runs a single iteration. It does nothing while the solver is Idle.
	Update(ctx context.Context) error
	SetThetas(thetas []float64) error
}

// SolverOption configures a solver at construction.
type SolverOption func(*solverState)

// WithClock replaces the clock used to time Solve calls.
func WithClock(c clock.Clock) SolverOption {
	return func(s *solverState) {
		s.clock = c
	}
}

// solverState is the bookkeeping shared by the iterative solvers.
type solverState struct {
	chain      *kinematics.Chain
	handler    *collision.Handler
	opts       *Options
	logger     logging.Logger
	clock      clock.Clock
	state      State
	target     mgl64.Mat4
	metric     kinematics.Metric
	loss       float64
	iterations int
}

func newSolverState(
	chain *kinematics.Chain,
	handler *collision.Handler,
	opts *Options,
	logger logging.Logger,
	solverOpts []SolverOption,
) (*solverState, error) {
	if opts == nil {
		opts = NewDefaultOptions()
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if handler == nil {
		var err error
		handler, err = collision.NewHandler(nil, nil)
		if err != nil {
			return nil, err
		}
	}
	if handler.NumLinks() != 0 && handler.NumLinks() != chain.Len() {
		return nil, errors.Errorf("collision handler has %d arm links for a chain of %d joints", handler.NumLinks(), chain.Len())
	}
	s := &solverState{
		// the solver mutates its own copy of the chain
		chain:   chain.Clone(),
		handler: handler,
		opts:    opts,
		logger:  logger,
		clock:   clock.New(),
		state:   Idle,
		loss:    initialLoss,
	}
	for _, opt := range solverOpts {
		opt(s)
	}
	return s, nil
}

func (s *solverState) setTarget(target mgl64.Mat4) error {
	for _, v := range target {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return errors.New("target pose contains non-finite values")
		}
	}
	if !spatialmath.IsRigid(target) {
		return spatialmath.NewNotRigidError(target)
	}
	s.target = target
	if s.opts.PositionOnly {
		s.metric = kinematics.NewPositionOnlyMetric(target, s.chain.ArmLength())
	} else {
		s.metric = kinematics.NewPoseMetric(target, s.chain.ArmLength())
	}
	s.state = Solving
	s.iterations = 0
	s.loss = initialLoss
	return nil
}

// Thetas returns a copy of the current joint angles.
func (s *solverState) Thetas() []float64 {
	return s.chain.Thetas()
}

// SetThetas replaces the current joint angles.
func (s *solverState) SetThetas(thetas []float64) error {
	return s.chain.SetThetas(thetas)
}

// Loss returns the loss of the current configuration.
func (s *solverState) Loss() float64 {
	return s.loss
}

// Iterations returns the number of updates since the target was set.
func (s *solverState) Iterations() int {
	return s.iterations
}

// State returns the solver state.
func (s *solverState) State() State {
	return s.state
}

// Chain returns a copy of the chain being solved.
func (s *solverState) Chain() *kinematics.Chain {
	return s.chain.Clone()
}

// solve runs update until the loss meets threshold or maxIterations updates have run.
func (s *solverState) solve(
	ctx context.Context,
	target mgl64.Mat4,
	threshold float64,
	maxIterations int,
	setTarget func(mgl64.Mat4) error,
	refresh func() error,
	update func(context.Context) error,
) (*Result, error) {
	if !(threshold > 0) || math.IsInf(threshold, 1) {
		return nil, errors.Errorf("threshold must be a positive finite number, got %v", threshold)
	}
	start := s.clock.Now()
	if err := setTarget(target); err != nil {
		return nil, err
	}
	if err := refresh(); err != nil {
		return nil, err
	}

	for s.loss > threshold {
		if s.iterations >= maxIterations {
			s.state = Failed
			s.logger.Warnf("failed to solve in %d steps, loss %f", s.iterations, s.loss)
			return s.result(start), nil
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := update(ctx); err != nil {
			return nil, err
		}
	}
	s.state = Converged
	s.logger.Infof("solution found in %d steps", s.iterations)
	return s.result(start), nil
}

func (s *solverState) result(start time.Time) *Result {
	return &Result{
		Thetas:     s.chain.Thetas(),
		Loss:       s.loss,
		Iterations: s.iterations,
		Converged:  s.state == Converged,
		State:      s.state,
		Elapsed:    s.clock.Since(start),
	}
}
