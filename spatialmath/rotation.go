package spatialmath

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/golang/geo/r3"
)

// RotationMatrix is a 3x3 rotation stored row-major.
type RotationMatrix struct {
	mat [9]float64
}

// NewIdentityRotation returns the identity rotation.
func NewIdentityRotation() RotationMatrix {
	return RotationMatrix{mat: [9]float64{1, 0, 0, 0, 1, 0, 0, 0, 1}}
}

func rotationFromMat4(m mgl64.Mat4) RotationMatrix {
	var rm RotationMatrix
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			rm.mat[3*r+c] = m.At(r, c)
		}
	}
	return rm
}

// At returns the entry at row r and column c.
func (rm RotationMatrix) At(r, c int) float64 {
	return rm.mat[3*r+c]
}

// Row returns row i.
func (rm RotationMatrix) Row(i int) r3.Vector {
	return r3.Vector{X: rm.mat[3*i], Y: rm.mat[3*i+1], Z: rm.mat[3*i+2]}
}

// Col returns column i, which is the direction of local axis i expressed in the parent frame.
func (rm RotationMatrix) Col(i int) r3.Vector {
	return r3.Vector{X: rm.mat[i], Y: rm.mat[3+i], Z: rm.mat[6+i]}
}

// Mul returns rm * other.
func (rm RotationMatrix) Mul(other RotationMatrix) RotationMatrix {
	var out RotationMatrix
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			sum := 0.
			for k := 0; k < 3; k++ {
				sum += rm.mat[3*r+k] * other.mat[3*k+c]
			}
			out.mat[3*r+c] = sum
		}
	}
	return out
}

// Transpose returns the transpose, which for a rotation is its inverse.
func (rm RotationMatrix) Transpose() RotationMatrix {
	var out RotationMatrix
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			out.mat[3*c+r] = rm.mat[3*r+c]
		}
	}
	return out
}

// Apply rotates v.
func (rm RotationMatrix) Apply(v r3.Vector) r3.Vector {
	return r3.Vector{
		X: rm.mat[0]*v.X + rm.mat[1]*v.Y + rm.mat[2]*v.Z,
		Y: rm.mat[3]*v.X + rm.mat[4]*v.Y + rm.mat[5]*v.Z,
		Z: rm.mat[6]*v.X + rm.mat[7]*v.Y + rm.mat[8]*v.Z,
	}
}
