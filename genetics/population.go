package genetics

import (
	"context"
	"math"
	"math/rand"

	"github.com/montanaflynn/stats"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"

	"go.viam.com/chainik/logging"
	"go.viam.com/chainik/utils"
)

const (
	defaultPopulationSize = 100
	defaultMutationChance = 0.25
	// defaultMutationSize is how large a single mutation can be.
	defaultMutationSize = 0.25
)

// Fitness scores a candidate vector. Higher is better. Implementations must be safe to call concurrently.
type Fitness interface {
	Evaluate(thetas []float64) float64
}

// FitnessFunc adapts a plain function to Fitness.
type FitnessFunc func(thetas []float64) float64

// Evaluate calls f.
func (f FitnessFunc) Evaluate(thetas []float64) float64 {
	return f(thetas)
}

// PopulationOptions configures breeding.
type PopulationOptions struct {
	Size           int     `json:"size"`
	MutationChance float64 `json:"mutation_chance"`
	MutationSize   float64 `json:"mutation_size"`
	// Elitism carries the best gene seen so far into every new generation unchanged.
	Elitism bool `json:"elitism"`
	// Parallel evaluates fitness on a worker pool.
	Parallel bool  `json:"parallel"`
	Seed     int64 `json:"seed"`
}

// NewDefaultPopulationOptions returns the default breeding options.
func NewDefaultPopulationOptions() PopulationOptions {
	return PopulationOptions{
		Size:           defaultPopulationSize,
		MutationChance: defaultMutationChance,
		MutationSize:   defaultMutationSize,
		Elitism:        true,
		Parallel:       true,
	}
}

// FitnessStats summarizes the scores of one generation.
type FitnessStats struct {
	Mean   float64
	StdDev float64
	Max    float64
}

// Population is a fixed-size set of genes bred one generation at a time. It is not safe for concurrent use.
type Population struct {
	opts       PopulationOptions
	fitness    Fitness
	members    []*Gene
	generation int
	alpha      *Gene
	minErr     float64
	stats      FitnessStats
	rng        *rand.Rand
	logger     logging.Logger
}

// NewPopulation fills a population with copies of seed.
func NewPopulation(seed *Gene, fitness Fitness, opts PopulationOptions, logger logging.Logger) (*Population, error) {
	if opts.Size < 1 {
		return nil, errors.Errorf("population size must be positive, got %d", opts.Size)
	}
	if opts.MutationChance < 0 || opts.MutationChance > 1 {
		return nil, errors.Errorf("mutation chance must be within [0, 1], got %f", opts.MutationChance)
	}
	members := make([]*Gene, opts.Size)
	for i := range members {
		members[i] = seed.clone()
	}
	return &Population{
		opts:    opts,
		fitness: fitness,
		members: members,
		alpha:   seed.clone(),
		minErr:  math.Inf(1),
		//nolint:gosec
		rng:    rand.New(rand.NewSource(opts.Seed)),
		logger: logger,
	}, nil
}

func (g *Gene) clone() *Gene {
	return &Gene{thetas: g.Thetas(), learnRate: g.learnRate, limits: g.limits}
}

// Size returns the number of members.
func (p *Population) Size() int {
	return len(p.members)
}

// Generation returns how many generations have been bred.
func (p *Population) Generation() int {
	return p.generation
}

// Members returns the current genes.
func (p *Population) Members() []*Gene {
	return append([]*Gene{}, p.members...)
}

// Alpha returns the best vector seen so far, or the seed before any generation.
func (p *Population) Alpha() []float64 {
	return p.alpha.Thetas()
}

// MinErr returns the reciprocal fitness of Alpha, +Inf before any generation. It never increases.
func (p *Population) MinErr() float64 {
	return p.minErr
}

// Stats returns the fitness statistics of the last evaluated generation.
func (p *Population) Stats() FitnessStats {
	return p.stats
}

// NewGeneration scores every member, records the best, and replaces the members with bred children.
func (p *Population) NewGeneration(ctx context.Context) error {
	scores, err := p.evaluate(ctx)
	if err != nil {
		return err
	}

	best := floats.MaxIdx(scores)
	if math.IsInf(scores[best], 1) {
		// a perfect member: nothing can improve on it
		p.alpha = p.members[best].clone()
		p.minErr = 0
		for i := range p.members {
			p.members[i] = p.alpha.clone()
		}
		p.generation++
		p.logger.Debugw("population found an exact solution", "generation", p.generation)
		return nil
	}
	if bestErr := 1 / scores[best]; bestErr < p.minErr {
		p.alpha = p.members[best].clone()
		p.minErr = bestErr
	}
	p.recordStats(scores)

	weights := p.selectionWeights(scores)
	next := make([]*Gene, 0, len(p.members))
	if p.opts.Elitism {
		next = append(next, p.alpha.clone())
	}
	for len(next) < len(p.members) {
		parent1 := p.members[p.roulette(weights)]
		parent2 := p.members[p.roulette(weights)]
		child, err := Crossover(parent1, parent2, p.rng)
		if err != nil {
			return err
		}
		child.Mutate(p.rng, p.opts.MutationChance, p.opts.MutationSize)
		next = append(next, child)
	}
	p.members = next
	p.generation++
	return nil
}

func (p *Population) evaluate(ctx context.Context) ([]float64, error) {
	scores := make([]float64, len(p.members))
	score := func(i int) {
		s := p.fitness.Evaluate(p.members[i].thetas)
		if math.IsNaN(s) || s < 0 {
			s = 0
		}
		scores[i] = s
	}

	if !p.opts.Parallel {
		for i := range p.members {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			score(i)
		}
		return scores, nil
	}

	err := utils.GroupWorkParallel(
		ctx,
		len(p.members),
		nil,
		func(groupNum, groupSize, from, to int) (utils.MemberWorkFunc, utils.GroupWorkDoneFunc) {
			return func(memberNum, workNum int) {
				score(workNum)
			}, nil
		},
	)
	if err != nil {
		return nil, err
	}
	return scores, nil
}

// selectionWeights normalizes scores to sum to one. A zero or infinite total falls back to uniform weights.
func (p *Population) selectionWeights(scores []float64) []float64 {
	weights := append([]float64{}, scores...)
	sum := floats.Sum(weights)
	if sum <= 0 || math.IsInf(sum, 0) {
		for i := range weights {
			weights[i] = 1 / float64(len(weights))
		}
		return weights
	}
	floats.Scale(1/sum, weights)
	return weights
}

// roulette accumulates weights in member order until the running total passes a uniform draw. Rounding that
// leaves the draw uncovered picks member 0.
func (p *Population) roulette(weights []float64) int {
	draw := p.rng.Float64()
	running := 0.
	for i, w := range weights {
		running += w
		if running > draw {
			return i
		}
	}
	return 0
}

func (p *Population) recordStats(scores []float64) {
	data := stats.Float64Data(scores)
	mean, err := data.Mean()
	if err != nil {
		return
	}
	stdDev, err := data.StandardDeviation()
	if err != nil {
		return
	}
	maxScore, err := data.Max()
	if err != nil {
		return
	}
	p.stats = FitnessStats{Mean: mean, StdDev: stdDev, Max: maxScore}
	p.logger.Debugw("generation scored",
		"generation", p.generation,
		"mean", mean,
		"stddev", stdDev,
		"max", maxScore,
		"min_err", p.minErr,
	)
}
