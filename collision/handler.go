// Package collision answers self- and world-collision queries for a serial chain whose links are modeled as
// oriented boxes, using a bounding-sphere broad phase followed by an exact box test.
package collision

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"

	"go.viam.com/chainik/spatialmath"
)

// Obstacle is a static box in the world, centered at Offset.
type Obstacle struct {
	HalfSize r3.Vector
	Offset   mgl64.Mat4
}

// Collision is a pair of entities in collision along with the distance between them, which is non-positive when
// the boxes overlap. Other indexes a link for self collisions and an obstacle for world collisions.
type Collision struct {
	Link     int
	Other    int
	World    bool
	Distance float64
}

type armCollider struct {
	// box is centered on its link in the frame of the link's far joint
	box    *spatialmath.Box
	sphere spatialmath.Sphere
}

type worldCollider struct {
	box    *spatialmath.Box
	sphere spatialmath.Sphere
}

// Handler holds the arm and world colliders. It is immutable after construction and safe for concurrent use.
type Handler struct {
	backend spatialmath.Backend
	buffer  float64
	arm     []armCollider
	world   []worldCollider
}

// HandlerOption configures a Handler.
type HandlerOption func(*Handler)

// WithBackend replaces the geometry backend.
func WithBackend(backend spatialmath.Backend) HandlerOption {
	return func(h *Handler) {
		h.backend = backend
	}
}

// WithBuffer sets the clearance under which two boxes are considered colliding.
func WithBuffer(buffer float64) HandlerOption {
	return func(h *Handler) {
		h.buffer = buffer
	}
}

// ArmHalfSizes returns link colliders of the given half width whose half length spans each link.
func ArmHalfSizes(radii []float64, halfWidth float64) []r3.Vector {
	out := make([]r3.Vector, 0, len(radii))
	for _, r := range radii {
		out = append(out, r3.Vector{X: halfWidth, Y: halfWidth, Z: math.Abs(r) / 2})
	}
	return out
}

// NewHandler builds the colliders for an arm with one box per link and a set of static obstacles. Each link box
// is placed so that it ends at the link's far joint and extends back along the joint's z-axis by its full length.
// Obstacle bounding spheres are moved into world space here and never recomputed.
func NewHandler(arm []r3.Vector, world []Obstacle, opts ...HandlerOption) (*Handler, error) {
	h := &Handler{backend: spatialmath.DefaultBackend()}
	for _, opt := range opts {
		opt(h)
	}
	if h.buffer < 0 || math.IsNaN(h.buffer) {
		return nil, errors.Errorf("collision buffer must be non-negative, got %f", h.buffer)
	}

	for i, halfSize := range arm {
		local := spatialmath.NewPoseFromPoint(r3.Vector{Z: -halfSize.Z})
		box, err := h.backend.NewBox(local, halfSize)
		if err != nil {
			return nil, errors.Wrapf(err, "arm collider %d", i)
		}
		h.arm = append(h.arm, armCollider{box: box, sphere: h.backend.BoundingSphere(box)})
	}

	for i, obstacle := range world {
		pose, err := h.backend.ToRigid(obstacle.Offset)
		if err != nil {
			return nil, errors.Wrapf(err, "obstacle %d", i)
		}
		local, err := h.backend.NewBox(spatialmath.NewZeroPose(), obstacle.HalfSize)
		if err != nil {
			return nil, errors.Wrapf(err, "obstacle %d", i)
		}
		h.world = append(h.world, worldCollider{
			box:    local.Transform(pose),
			sphere: h.backend.TransformSphere(h.backend.BoundingSphere(local), pose),
		})
	}
	return h, nil
}

// NumLinks returns the number of arm colliders.
func (h *Handler) NumLinks() int {
	return len(h.arm)
}

// NumObstacles returns the number of world colliders.
func (h *Handler) NumObstacles() int {
	return len(h.world)
}

// Buffer returns the collision buffer.
func (h *Handler) Buffer() float64 {
	return h.buffer
}

// WorldSpheres returns a copy of the baked world-space bounding spheres of the obstacles.
func (h *Handler) WorldSpheres() []spatialmath.Sphere {
	out := make([]spatialmath.Sphere, 0, len(h.world))
	for _, w := range h.world {
		out = append(out, w.sphere)
	}
	return out
}

type placedLink struct {
	box    *spatialmath.Box
	sphere spatialmath.Sphere
}

// placeLinks positions the link colliders at forward[1:]. Links below from are left empty.
func (h *Handler) placeLinks(forward []mgl64.Mat4, from int) ([]placedLink, error) {
	if len(forward) != len(h.arm)+1 {
		return nil, NewPoseCountError(len(forward), len(h.arm))
	}
	if from < 0 || from > len(h.arm) {
		return nil, newStartIndexError(from, len(h.arm))
	}
	placed := make([]placedLink, len(h.arm))
	for k := from; k < len(h.arm); k++ {
		pose, err := h.backend.ToRigid(forward[k+1])
		if err != nil {
			return nil, errors.Wrapf(err, "link %d", k)
		}
		placed[k] = placedLink{
			box:    h.arm[k].box.Transform(pose),
			sphere: h.backend.TransformSphere(h.arm[k].sphere, pose),
		}
	}
	return placed, nil
}

func (h *Handler) collide(a, b *spatialmath.Box, sa, sb spatialmath.Sphere) bool {
	if !h.backend.SpheresIntersect(sa, sb, h.buffer) {
		return false
	}
	return h.backend.BoxesCollide(a, b, h.buffer)
}
