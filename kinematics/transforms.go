// Package kinematics composes the per-joint homogeneous transforms of a serial chain of revolute joints and
// scores end-effector poses against a target.
package kinematics

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/golang/geo/r3"

	"go.viam.com/chainik/spatialmath"
)

// LinkOffset returns the translation a link of the given length applies along its joint's outgoing z-axis.
func LinkOffset(radius float64) r3.Vector {
	return r3.Vector{Z: radius}
}

// JointTransform returns the local transform of one joint: a rotation of angle about axis followed by offset
// in the rotated frame.
func JointTransform(angle float64, axis, offset r3.Vector) mgl64.Mat4 {
	return spatialmath.JointTransform(angle, axis, offset)
}

// ChainTransforms returns N+1 local transforms: origin followed by one joint transform per joint.
func ChainTransforms(origin mgl64.Mat4, angles []float64, axes []r3.Vector, radii []float64) ([]mgl64.Mat4, error) {
	if len(angles) != len(axes) || len(angles) != len(radii) {
		return nil, NewLengthMismatchError(len(angles), len(axes), len(radii))
	}
	mats := make([]mgl64.Mat4, 0, len(angles)+1)
	mats = append(mats, origin)
	for i, angle := range angles {
		mats = append(mats, JointTransform(angle, axes[i], LinkOffset(radii[i])))
	}
	return mats, nil
}

// ForwardProducts left-folds mats so that element i is the world pose of joint i. Element 0 is mats[0].
func ForwardProducts(mats []mgl64.Mat4) []mgl64.Mat4 {
	return forwardProducts(spatialmath.DefaultBackend(), mats)
}

// BackwardProducts right-folds mats so that element k is mats[k]*...*mats[n-1]. One trailing identity is
// appended to represent the empty remainder past the end-effector, giving len(mats)+1 elements.
func BackwardProducts(mats []mgl64.Mat4) []mgl64.Mat4 {
	return backwardProducts(spatialmath.DefaultBackend(), mats)
}

func forwardProducts(b spatialmath.Backend, mats []mgl64.Mat4) []mgl64.Mat4 {
	if len(mats) == 0 {
		return nil
	}
	forward := make([]mgl64.Mat4, len(mats))
	forward[0] = mats[0]
	for i := 1; i < len(mats); i++ {
		forward[i] = b.Compose(forward[i-1], mats[i])
	}
	return forward
}

func backwardProducts(b spatialmath.Backend, mats []mgl64.Mat4) []mgl64.Mat4 {
	backward := make([]mgl64.Mat4, len(mats)+1)
	backward[len(mats)] = mgl64.Ident4()
	for k := len(mats) - 1; k >= 0; k-- {
		backward[k] = b.Compose(mats[k], backward[k+1])
	}
	return backward
}
