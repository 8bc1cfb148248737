// Package genetics is a small evolutionary optimizer over bounded real vectors: genes carry a candidate vector,
// and a population breeds them by fitness-proportional selection, uniform crossover and bounded mutation.
package genetics

import (
	"math/rand"

	"go.viam.com/chainik/referenceframe"
)

// Gene is one candidate vector together with the learn rate and limits it was bred with.
type Gene struct {
	thetas    []float64
	learnRate float64
	limits    []referenceframe.Limit
}

// NewGene copies thetas into a new gene. A nil limits slice leaves every value unbounded.
func NewGene(thetas []float64, learnRate float64, limits []referenceframe.Limit) (*Gene, error) {
	if limits == nil {
		limits = referenceframe.UnboundedLimits(len(thetas))
	}
	if len(limits) != len(thetas) {
		return nil, newGeneLimitsError(len(limits), len(thetas))
	}
	return &Gene{
		thetas:    append([]float64{}, thetas...),
		learnRate: learnRate,
		limits:    limits,
	}, nil
}

// Thetas returns a copy of the gene's values.
func (g *Gene) Thetas() []float64 {
	return append([]float64{}, g.thetas...)
}

// Len returns the number of values.
func (g *Gene) Len() int {
	return len(g.thetas)
}

// LearnRate returns the gene's learn rate.
func (g *Gene) LearnRate() float64 {
	return g.learnRate
}

// Limits returns the bounds the gene is clamped to on mutation.
func (g *Gene) Limits() []referenceframe.Limit {
	return g.limits
}

// Crossover builds a child choosing each value uniformly from parent1 or parent2. The child inherits parent1's
// learn rate and limits.
func Crossover(parent1, parent2 *Gene, rng *rand.Rand) (*Gene, error) {
	if parent1.Len() != parent2.Len() {
		return nil, NewParentLengthError(parent1.Len(), parent2.Len())
	}
	child := make([]float64, parent1.Len())
	for i := range child {
		if rng.Float64() < 0.5 {
			child[i] = parent1.thetas[i]
		} else {
			child[i] = parent2.thetas[i]
		}
	}
	return &Gene{thetas: child, learnRate: parent1.learnRate, limits: parent1.limits}, nil
}

// Mutate perturbs each value with probability chance by a uniform amount in [-size, size], then clamps the value
// to its limit.
func (g *Gene) Mutate(rng *rand.Rand, chance, size float64) {
	for i := range g.thetas {
		if rng.Float64() < chance {
			g.thetas[i] += (2*rng.Float64() - 1) * size
		}
		g.thetas[i] = g.limits[i].Clamp(g.thetas[i])
	}
}
