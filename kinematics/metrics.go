package kinematics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"go.viam.com/chainik/spatialmath"
	"go.viam.com/chainik/utils"
)

// RotationScale normalizes the rotation term of the pose loss.
const RotationScale = math.Pi

// Metric scores an end-effector pose. Lower is better and zero is a perfect match.
type Metric func(endEffector mgl64.Mat4) float64

// PositionLoss is the squared distance between the translations of actual and expected, divided by the squared
// arm length. A zero arm length is treated as 1.
func PositionLoss(actual, expected mgl64.Mat4, armLength float64) float64 {
	if armLength == 0 {
		armLength = 1
	}
	delta := spatialmath.Translation(actual).Sub(spatialmath.Translation(expected))
	return delta.Norm2() / utils.Square(armLength)
}

// RotationLoss is the sum of squared differences of the nine rotation entries, divided by RotationScale.
func RotationLoss(actual, expected mgl64.Mat4) float64 {
	sum := 0.
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			sum += utils.Square(actual.At(r, c) - expected.At(r, c))
		}
	}
	return sum / RotationScale
}

// PoseLoss is PositionLoss plus RotationLoss.
func PoseLoss(actual, expected mgl64.Mat4, armLength float64) float64 {
	return PositionLoss(actual, expected, armLength) + RotationLoss(actual, expected)
}

// NewPoseMetric returns a Metric scoring both position and orientation against target.
func NewPoseMetric(target mgl64.Mat4, armLength float64) Metric {
	return func(ee mgl64.Mat4) float64 {
		return PoseLoss(ee, target, armLength)
	}
}

// NewPositionOnlyMetric returns a Metric that ignores orientation.
func NewPositionOnlyMetric(target mgl64.Mat4, armLength float64) Metric {
	return func(ee mgl64.Mat4) float64 {
		return PositionLoss(ee, target, armLength)
	}
}
