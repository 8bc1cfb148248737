package spatialmath

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/golang/geo/r3"

	"go.viam.com/chainik/utils"
)

// Pose is a rigid transform: a rotation followed by a translation.
type Pose struct {
	point r3.Vector
	rot   RotationMatrix
}

// NewZeroPose returns the identity pose.
func NewZeroPose() Pose {
	return Pose{rot: NewIdentityRotation()}
}

// NewPoseFromPoint returns a pose at point with no rotation.
func NewPoseFromPoint(point r3.Vector) Pose {
	return Pose{point: point, rot: NewIdentityRotation()}
}

// NewPoseFromMatrix converts a homogeneous transform to a Pose. It returns an error if the matrix is not a
// rigid motion.
func NewPoseFromMatrix(m mgl64.Mat4) (Pose, error) {
	if !IsRigid(m) {
		return Pose{}, NewNotRigidError(m)
	}
	return Pose{point: Translation(m), rot: rotationFromMat4(m)}, nil
}

// Point returns the translation of the pose.
func (p Pose) Point() r3.Vector {
	return p.point
}

// RotationMatrix returns the rotation of the pose.
func (p Pose) RotationMatrix() RotationMatrix {
	return p.rot
}

// Matrix returns the homogeneous transform equivalent of the pose.
func (p Pose) Matrix() mgl64.Mat4 {
	return mgl64.Mat4FromRows(
		mgl64.Vec4{p.rot.At(0, 0), p.rot.At(0, 1), p.rot.At(0, 2), p.point.X},
		mgl64.Vec4{p.rot.At(1, 0), p.rot.At(1, 1), p.rot.At(1, 2), p.point.Y},
		mgl64.Vec4{p.rot.At(2, 0), p.rot.At(2, 1), p.rot.At(2, 2), p.point.Z},
		mgl64.Vec4{0, 0, 0, 1},
	)
}

// TransformPoint maps a point expressed in the pose's frame to the parent frame.
func (p Pose) TransformPoint(pt r3.Vector) r3.Vector {
	return p.rot.Apply(pt).Add(p.point)
}

// Compose returns the pose a*b, i.e. b expressed in a's parent frame.
func Compose(a, b Pose) Pose {
	return Pose{
		point: a.TransformPoint(b.point),
		rot:   a.rot.Mul(b.rot),
	}
}

// PoseInverse returns the inverse rigid transform.
func PoseInverse(p Pose) Pose {
	rt := p.rot.Transpose()
	return Pose{point: rt.Apply(p.point).Mul(-1), rot: rt}
}

// PoseAlmostEqual compares two poses entry-wise with tolerance epsilon.
func PoseAlmostEqual(a, b Pose, epsilon float64) bool {
	if a.point.Sub(b.point).Norm() > epsilon {
		return false
	}
	for i := range a.rot.mat {
		if !utils.Float64AlmostEqual(a.rot.mat[i], b.rot.mat[i], epsilon) {
			return false
		}
	}
	return true
}
