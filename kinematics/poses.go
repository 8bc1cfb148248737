package kinematics

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/golang/geo/r3"

	"go.viam.com/chainik/spatialmath"
)

// Poses is the full pose sequence of a chain at one joint configuration.
type Poses struct {
	// Local holds the origin followed by each joint's local transform.
	Local []mgl64.Mat4
	// Forward holds the world pose of each joint; the last is the end-effector.
	Forward []mgl64.Mat4
	// Backward holds the residual products, ending with identity.
	Backward []mgl64.Mat4

	backend spatialmath.Backend
}

// NewPoses computes the local, forward and backward sequences for the given joint configuration.
func NewPoses(origin mgl64.Mat4, thetas []float64, axes []r3.Vector, radii []float64) (*Poses, error) {
	return newPoses(spatialmath.DefaultBackend(), origin, thetas, axes, radii)
}

func newPoses(b spatialmath.Backend, origin mgl64.Mat4, thetas []float64, axes []r3.Vector, radii []float64) (*Poses, error) {
	local, err := ChainTransforms(origin, thetas, axes, radii)
	if err != nil {
		return nil, err
	}
	return &Poses{
		Local:    local,
		Forward:  forwardProducts(b, local),
		Backward: backwardProducts(b, local),
		backend:  b,
	}, nil
}

// EndEffector returns the world pose of the end of the chain.
func (p *Poses) EndEffector() mgl64.Mat4 {
	return p.Forward[len(p.Forward)-1]
}

// EndEffectorWithJoint returns the end-effector pose obtained when joint i's local transform is replaced with m,
// without recomposing the rest of the chain.
func (p *Poses) EndEffectorWithJoint(i int, m mgl64.Mat4) mgl64.Mat4 {
	return p.backend.Compose(p.backend.Compose(p.Forward[i], m), p.Backward[i+2])
}

// ForwardWithJoint returns the forward products obtained when joint i's local transform is replaced with m.
// Poses before joint i are shared with the receiver's values; the rest are recomposed.
func (p *Poses) ForwardWithJoint(i int, m mgl64.Mat4) []mgl64.Mat4 {
	out := make([]mgl64.Mat4, len(p.Forward))
	copy(out, p.Forward[:i+1])
	out[i+1] = p.backend.Compose(p.Forward[i], m)
	for k := i + 2; k < len(out); k++ {
		out[k] = p.backend.Compose(out[k-1], p.Local[k])
	}
	return out
}

// Residual returns the end-effector pose expressed in the target's frame. It is the identity when the chain
// reaches the target exactly.
func (p *Poses) Residual(target mgl64.Mat4) mgl64.Mat4 {
	return p.backend.Compose(p.backend.Invert(target), p.EndEffector())
}
