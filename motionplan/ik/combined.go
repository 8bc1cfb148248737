package ik

import (
	"context"
	"math"

	"github.com/benbjohnson/clock"
	"github.com/go-gl/mathgl/mgl64"

	"go.viam.com/chainik/collision"
	"go.viam.com/chainik/kinematics"
	"go.viam.com/chainik/logging"
)

// CombinedIK runs the genetic solver down to a coarse threshold to get clear of collision regions, then polishes
// its result with gradient descent.
type CombinedIK struct {
	genetic    *GeneticSolver
	gradient   *GradientDescentSolver
	last       Solver
	// iterations spans both stages of the last Solve call
	iterations int
	clock      clock.Clock
	logger     logging.Logger
}

// NewCombinedIK builds both stages over the same chain and collision handler.
func NewCombinedIK(
	chain *kinematics.Chain,
	handler *collision.Handler,
	opts *Options,
	logger logging.Logger,
	solverOpts ...SolverOption,
) (*CombinedIK, error) {
	ga, err := NewGeneticSolver(chain, handler, opts, logger.Sublogger("genetic"), solverOpts...)
	if err != nil {
		return nil, err
	}
	gd, err := NewGradientDescentSolver(chain, handler, opts, logger.Sublogger("gradient"), solverOpts...)
	if err != nil {
		return nil, err
	}
	return &CombinedIK{genetic: ga, gradient: gd, last: gd, clock: gd.clock, logger: logger}, nil
}

// Solve runs the genetic stage to max(threshold, CoarseThreshold) and, unless that already meets threshold, the
// gradient stage from the genetic result. Iterations and elapsed time cover both stages.
func (ik *CombinedIK) Solve(ctx context.Context, target mgl64.Mat4, threshold float64) (*Result, error) {
	start := ik.clock.Now()
	if err := ik.genetic.SetThetas(ik.last.Thetas()); err != nil {
		return nil, err
	}
	coarse, err := ik.genetic.Solve(ctx, target, math.Max(threshold, ik.genetic.opts.CoarseThreshold))
	if err != nil {
		return nil, err
	}
	ik.last = ik.genetic
	ik.iterations = coarse.Iterations
	if coarse.Converged && coarse.Loss <= threshold {
		coarse.Elapsed = ik.clock.Since(start)
		return coarse, nil
	}
	ik.logger.Debugf("genetic stage ended at loss %f after %d generations, polishing", coarse.Loss, coarse.Iterations)

	if err := ik.gradient.SetThetas(coarse.Thetas); err != nil {
		return nil, err
	}
	fine, err := ik.gradient.Solve(ctx, target, threshold)
	if err != nil {
		return nil, err
	}
	ik.last = ik.gradient
	ik.iterations += fine.Iterations
	fine.Iterations = ik.iterations
	fine.Elapsed = ik.clock.Since(start)
	return fine, nil
}

// Thetas returns the configuration of the stage that ran last.
func (ik *CombinedIK) Thetas() []float64 {
	return ik.last.Thetas()
}

// Loss returns the loss of the stage that ran last.
func (ik *CombinedIK) Loss() float64 {
	return ik.last.Loss()
}

// Iterations returns the generations and gradient steps of the last Solve call combined.
func (ik *CombinedIK) Iterations() int {
	return ik.iterations
}

// State returns the state of the stage that ran last.
func (ik *CombinedIK) State() State {
	return ik.last.State()
}

var _ Solver = (*CombinedIK)(nil)
