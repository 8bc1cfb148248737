// Package spatialmath is the geometry backend for the kinematic chain and collision engine:
// homogeneous transforms, rigid poses, oriented boxes, bounding spheres and box distance queries.
package spatialmath

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/golang/geo/r3"
)

// rigidTolerance bounds how far a rotation block may drift from orthonormal before it is rejected.
const rigidTolerance = 1e-6

// JointTransform returns the homogeneous transform of a revolute joint: a rotation of angle radians about axis,
// followed by a translation of offset expressed in the rotated frame. The composition is R*T, so a link length
// placed on the offset's Z component extends along the joint's outgoing (rotated) Z direction.
func JointTransform(angle float64, axis, offset r3.Vector) mgl64.Mat4 {
	// HomogRotate3D expects a unit axis
	axis = axis.Normalize()
	rot := mgl64.HomogRotate3D(angle, mgl64.Vec3{axis.X, axis.Y, axis.Z})
	return rot.Mul4(mgl64.Translate3D(offset.X, offset.Y, offset.Z))
}

// Translation returns the translation column of a homogeneous transform.
func Translation(m mgl64.Mat4) r3.Vector {
	return r3.Vector{X: m.At(0, 3), Y: m.At(1, 3), Z: m.At(2, 3)}
}

// MatrixFromRowMajor builds a transform from 16 values listed row by row, the way a 4x4 matrix is usually written.
func MatrixFromRowMajor(vals [16]float64) mgl64.Mat4 {
	return mgl64.Mat4FromRows(
		mgl64.Vec4{vals[0], vals[1], vals[2], vals[3]},
		mgl64.Vec4{vals[4], vals[5], vals[6], vals[7]},
		mgl64.Vec4{vals[8], vals[9], vals[10], vals[11]},
		mgl64.Vec4{vals[12], vals[13], vals[14], vals[15]},
	)
}

// RowMajor flattens a transform row by row.
func RowMajor(m mgl64.Mat4) [16]float64 {
	var out [16]float64
	for r := 0; r < 4; r++ {
		for c := 0; c < 4; c++ {
			out[4*r+c] = m.At(r, c)
		}
	}
	return out
}

// TranslationMatrix returns a pure translation transform.
func TranslationMatrix(v r3.Vector) mgl64.Mat4 {
	return mgl64.Translate3D(v.X, v.Y, v.Z)
}

// IsRigid reports whether m is a rigid motion: an orthonormal, right-handed rotation block and a [0 0 0 1] bottom row.
func IsRigid(m mgl64.Mat4) bool {
	for _, v := range m {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	if !near(m.At(3, 0), 0) || !near(m.At(3, 1), 0) || !near(m.At(3, 2), 0) || !near(m.At(3, 3), 1) {
		return false
	}
	rot := m.Mat3()
	should := rot.Transpose().Mul3(rot)
	if !should.ApproxEqualThreshold(mgl64.Ident3(), rigidTolerance) {
		return false
	}
	return near(rot.Det(), 1)
}

func near(a, b float64) bool {
	return math.Abs(a-b) <= rigidTolerance
}
