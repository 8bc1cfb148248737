package ik

import (
	"context"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"

	"go.viam.com/chainik/collision"
	"go.viam.com/chainik/genetics"
	"go.viam.com/chainik/kinematics"
	"go.viam.com/chainik/logging"
)

// GeneticSolver evolves a population seeded with the current configuration and adopts its best member after
// every generation. Colliding candidates score the collision penalty, so the search crosses collision regions
// that stall gradient descent.
type GeneticSolver struct {
	*solverState
	evaluator  fitnessEvaluator
	population *genetics.Population
}

// NewGeneticSolver returns a solver for chain. A nil handler disables collision checks; a nil opts uses the
// defaults.
func NewGeneticSolver(
	chain *kinematics.Chain,
	handler *collision.Handler,
	opts *Options,
	logger logging.Logger,
	solverOpts ...SolverOption,
) (*GeneticSolver, error) {
	s, err := newSolverState(chain, handler, opts, logger, solverOpts)
	if err != nil {
		return nil, err
	}
	return &GeneticSolver{solverState: s}, nil
}

// SetTarget sets the target pose and replaces the population with one seeded from the current configuration.
func (ga *GeneticSolver) SetTarget(target mgl64.Mat4) error {
	if err := ga.setTarget(target); err != nil {
		return err
	}
	ga.evaluator = newFitnessEvaluator(ga.chain, ga.metric, ga.handler, ga.opts.CollisionPenalty, ga.logger)
	seed, err := genetics.NewGene(ga.chain.Thetas(), ga.opts.LearnRate, ga.chain.Limits())
	if err != nil {
		return err
	}
	ga.population, err = genetics.NewPopulation(seed, ga.evaluator, ga.opts.populationOptions(), ga.logger.Sublogger("population"))
	return err
}

// Solve breeds generations until the loss is at or below threshold or MaxGenerations generations have run.
func (ga *GeneticSolver) Solve(ctx context.Context, target mgl64.Mat4, threshold float64) (*Result, error) {
	return ga.solve(ctx, target, threshold, ga.opts.MaxGenerations, ga.SetTarget, ga.refreshLoss, ga.Update)
}

func (ga *GeneticSolver) refreshLoss() error {
	ga.loss = ga.evaluator.Loss(ga.chain.Thetas())
	return nil
}

// Update breeds one generation and adopts the population's alpha.
func (ga *GeneticSolver) Update(ctx context.Context) error {
	if ga.state == Idle {
		return nil
	}
	if ga.population == nil {
		return errors.New("genetic solver has no population, set a target first")
	}
	if err := ga.population.NewGeneration(ctx); err != nil {
		return err
	}
	if err := ga.chain.SetThetas(ga.population.Alpha()); err != nil {
		return err
	}
	ga.iterations++
	if err := ga.refreshLoss(); err != nil {
		return err
	}
	ga.logger.Debugw("generation", "iteration", ga.iterations, "loss", ga.loss, "min_err", ga.population.MinErr())
	return nil
}

// Alpha returns the best configuration the population has seen, or nil without a population.
func (ga *GeneticSolver) Alpha() []float64 {
	if ga.population == nil {
		return nil
	}
	return ga.population.Alpha()
}

// MinErr returns the loss of Alpha, or the current loss without a population.
func (ga *GeneticSolver) MinErr() float64 {
	if ga.population == nil {
		return ga.loss
	}
	return ga.population.MinErr()
}

var _ IterativeSolver = (*GeneticSolver)(nil)
