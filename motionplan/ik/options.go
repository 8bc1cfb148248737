package ik

import (
	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"go.viam.com/chainik/genetics"
)

// default values for the solvers.
const (
	defaultMaxIterations  = 10000
	defaultMaxGenerations = 200
	defaultLearnRate      = 0.7
	defaultDecay          = 5e-6
	defaultMomentumRetain = 0.25
	// clamp on the raw finite-difference gradient, bounding the size of one step
	defaultGradientClamp = 0.5
	// angle perturbation used to estimate each partial derivative
	defaultEpsilon          = 1e-5
	defaultCollisionPenalty = 1000.
	// the genetic stage of the combined solver stops once the loss drops below this
	defaultCoarseThreshold = 0.05

	// loss value before the first evaluation
	initialLoss = 100.
)

// Options configures the solvers.
type Options struct {
	// Max number of gradient steps before the gradient solver gives up
	MaxIterations int `json:"max_iterations"`

	// Max number of generations before the genetic solver gives up
	MaxGenerations int `json:"max_generations"`

	LearnRate      float64 `json:"learn_rate"`
	Decay          float64 `json:"decay"`
	MomentumRetain float64 `json:"momentum_retain"`
	GradientClamp  float64 `json:"gradient_clamp"`
	Epsilon        float64 `json:"epsilon"`

	PopulationSize int     `json:"population_size"`
	MutationChance float64 `json:"mutation_chance"`
	MutationSize   float64 `json:"mutation_size"`

	// Loss assigned to a colliding configuration by the genetic solver
	CollisionPenalty float64 `json:"collision_penalty"`
	// Clearance under which boxes are considered colliding
	CollisionBuffer float64 `json:"collision_buffer"`

	// Evaluate population fitness on a worker pool
	Parallel bool  `json:"parallel"`
	Seed     int64 `json:"seed"`

	// Ignore orientation when scoring the end-effector
	PositionOnly bool `json:"position_only"`

	CoarseThreshold float64 `json:"coarse_threshold"`
}

// NewDefaultOptions returns the default solver options.
func NewDefaultOptions() *Options {
	popOpts := genetics.NewDefaultPopulationOptions()
	return &Options{
		MaxIterations:    defaultMaxIterations,
		MaxGenerations:   defaultMaxGenerations,
		LearnRate:        defaultLearnRate,
		Decay:            defaultDecay,
		MomentumRetain:   defaultMomentumRetain,
		GradientClamp:    defaultGradientClamp,
		Epsilon:          defaultEpsilon,
		PopulationSize:   popOpts.Size,
		MutationChance:   popOpts.MutationChance,
		MutationSize:     popOpts.MutationSize,
		CollisionPenalty: defaultCollisionPenalty,
		Parallel:         popOpts.Parallel,
		CoarseThreshold:  defaultCoarseThreshold,
	}
}

// Validate checks every field and reports all problems together.
func (o *Options) Validate() error {
	var err error
	positive := func(name string, v float64) {
		if !(v > 0) {
			err = multierr.Append(err, errors.Errorf("%s must be positive, got %v", name, v))
		}
	}
	nonNegative := func(name string, v float64) {
		if !(v >= 0) {
			err = multierr.Append(err, errors.Errorf("%s must not be negative, got %v", name, v))
		}
	}
	if o.MaxIterations < 1 {
		err = multierr.Append(err, errors.Errorf("max_iterations must be positive, got %d", o.MaxIterations))
	}
	if o.MaxGenerations < 1 {
		err = multierr.Append(err, errors.Errorf("max_generations must be positive, got %d", o.MaxGenerations))
	}
	if o.PopulationSize < 1 {
		err = multierr.Append(err, errors.Errorf("population_size must be positive, got %d", o.PopulationSize))
	}
	positive("learn_rate", o.LearnRate)
	positive("gradient_clamp", o.GradientClamp)
	positive("epsilon", o.Epsilon)
	positive("collision_penalty", o.CollisionPenalty)
	positive("coarse_threshold", o.CoarseThreshold)
	nonNegative("decay", o.Decay)
	nonNegative("momentum_retain", o.MomentumRetain)
	nonNegative("mutation_size", o.MutationSize)
	nonNegative("collision_buffer", o.CollisionBuffer)
	if !(o.MutationChance >= 0 && o.MutationChance <= 1) {
		err = multierr.Append(err, errors.Errorf("mutation_chance must be within [0, 1], got %v", o.MutationChance))
	}
	return err
}

func (o *Options) populationOptions() genetics.PopulationOptions {
	return genetics.PopulationOptions{
		Size:           o.PopulationSize,
		MutationChance: o.MutationChance,
		MutationSize:   o.MutationSize,
		Elitism:        true,
		Parallel:       o.Parallel,
		Seed:           o.Seed,
	}
}
