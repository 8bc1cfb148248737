package ik

import (
	"math"
	"sync"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/golang/geo/r3"

	"go.viam.com/chainik/collision"
	"go.viam.com/chainik/kinematics"
	"go.viam.com/chainik/logging"
)

// fitnessEvaluator is an immutable snapshot of everything needed to score a candidate configuration. It holds no
// reference to the solver, so one value can be evaluated from many goroutines at once.
type fitnessEvaluator struct {
	origin  mgl64.Mat4
	axes    []r3.Vector
	radii   []float64
	metric  kinematics.Metric
	handler *collision.Handler
	penalty float64
	logger  logging.Logger
	// warned is shared by copies so a broken configuration space is reported once, not once per candidate
	warned *sync.Once
}

func newFitnessEvaluator(
	chain *kinematics.Chain,
	metric kinematics.Metric,
	handler *collision.Handler,
	penalty float64,
	logger logging.Logger,
) fitnessEvaluator {
	return fitnessEvaluator{
		origin:  chain.Origin(),
		axes:    chain.Axes(),
		radii:   chain.Radii(),
		metric:  metric,
		handler: handler,
		penalty: penalty,
		logger:  logger,
		warned:  &sync.Once{},
	}
}

// Loss scores thetas, returning the collision penalty for configurations that collide with themselves or the
// world. Configurations whose poses cannot be checked are treated as colliding and the first such error is
// logged.
func (e fitnessEvaluator) Loss(thetas []float64) float64 {
	poses, err := kinematics.NewPoses(e.origin, thetas, e.axes, e.radii)
	if err != nil {
		e.unscorable(thetas, err)
		return e.penalty
	}
	colliding, err := e.handler.IsArmColliding(poses.Forward)
	if err != nil {
		e.unscorable(thetas, err)
		return e.penalty
	}
	if colliding {
		return e.penalty
	}
	return e.metric(poses.EndEffector())
}

func (e fitnessEvaluator) unscorable(thetas []float64, err error) {
	e.warned.Do(func() {
		e.logger.Warnw("configuration could not be scored, using the collision penalty", "thetas", thetas, "error", err)
	})
}

// Evaluate returns the reciprocal of Loss. An exact solution scores +Inf.
func (e fitnessEvaluator) Evaluate(thetas []float64) float64 {
	loss := e.Loss(thetas)
	if loss == 0 {
		return math.Inf(1)
	}
	return 1 / loss
}
