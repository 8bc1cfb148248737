package collision

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// FindSelfCollisions marks every link that collides with a non-adjacent link. Links whose indices differ by one
// share a joint and are never tested against each other.
func (h *Handler) FindSelfCollisions(forward []mgl64.Mat4) ([]bool, error) {
	marks := make([]bool, len(h.arm))
	if len(h.arm) == 0 {
		return marks, nil
	}
	placed, err := h.placeLinks(forward, 0)
	if err != nil {
		return nil, err
	}
	for i := 0; i < len(placed); i++ {
		for j := i + 2; j < len(placed); j++ {
			if h.collide(placed[i].box, placed[j].box, placed[i].sphere, placed[j].sphere) {
				marks[i] = true
				marks[j] = true
			}
		}
	}
	return marks, nil
}

// FindWorldCollisions marks every link that collides with any obstacle.
func (h *Handler) FindWorldCollisions(forward []mgl64.Mat4) ([]bool, error) {
	marks := make([]bool, len(h.arm))
	if len(h.arm) == 0 || len(h.world) == 0 {
		return marks, nil
	}
	placed, err := h.placeLinks(forward, 0)
	if err != nil {
		return nil, err
	}
	for i, link := range placed {
		for _, obstacle := range h.world {
			if h.collide(link.box, obstacle.box, link.sphere, obstacle.sphere) {
				marks[i] = true
				break
			}
		}
	}
	return marks, nil
}

// IsArmCollidingSelf reports whether any non-adjacent link pair with at least one link at index from or above
// collides. Rotating joint i only moves links i and above, so passing from = i skips pairs that cannot have
// changed. from = 0 checks every pair.
func (h *Handler) IsArmCollidingSelf(from int, forward []mgl64.Mat4) (bool, error) {
	if len(h.arm) == 0 {
		return false, nil
	}
	if from < 0 || from > len(h.arm) {
		return false, newStartIndexError(from, len(h.arm))
	}
	placed, err := h.placeLinks(forward, 0)
	if err != nil {
		return false, err
	}
	for j := from; j < len(placed); j++ {
		for i := 0; i < j-1; i++ {
			if h.collide(placed[i].box, placed[j].box, placed[i].sphere, placed[j].sphere) {
				return true, nil
			}
		}
	}
	return false, nil
}

// IsArmCollidingWorld reports whether any link at index from or above collides with an obstacle.
func (h *Handler) IsArmCollidingWorld(from int, forward []mgl64.Mat4) (bool, error) {
	if len(h.arm) == 0 || len(h.world) == 0 {
		return false, nil
	}
	placed, err := h.placeLinks(forward, from)
	if err != nil {
		return false, err
	}
	for _, link := range placed[from:] {
		for _, obstacle := range h.world {
			if h.collide(link.box, obstacle.box, link.sphere, obstacle.sphere) {
				return true, nil
			}
		}
	}
	return false, nil
}

// IsArmColliding reports whether the arm collides with itself or the world.
func (h *Handler) IsArmColliding(forward []mgl64.Mat4) (bool, error) {
	self, err := h.IsArmCollidingSelf(0, forward)
	if err != nil || self {
		return self, err
	}
	return h.IsArmCollidingWorld(0, forward)
}

// Collisions lists every colliding self and world pair with its distance.
func (h *Handler) Collisions(forward []mgl64.Mat4) ([]Collision, error) {
	if len(h.arm) == 0 {
		return nil, nil
	}
	placed, err := h.placeLinks(forward, 0)
	if err != nil {
		return nil, err
	}
	var out []Collision
	for i := range placed {
		for j := i + 2; j < len(placed); j++ {
			if h.collide(placed[i].box, placed[j].box, placed[i].sphere, placed[j].sphere) {
				out = append(out, Collision{Link: i, Other: j, Distance: h.backend.BoxDistance(placed[i].box, placed[j].box)})
			}
		}
		for k, obstacle := range h.world {
			if h.collide(placed[i].box, obstacle.box, placed[i].sphere, obstacle.sphere) {
				out = append(out, Collision{Link: i, Other: k, World: true, Distance: h.backend.BoxDistance(placed[i].box, obstacle.box)})
			}
		}
	}
	return out, nil
}

// WorldClearance returns the smallest distance between any link and any obstacle, or +Inf when there is nothing
// to measure. Negative values are penetration depths.
func (h *Handler) WorldClearance(forward []mgl64.Mat4) (float64, error) {
	clearance := math.Inf(1)
	if len(h.arm) == 0 || len(h.world) == 0 {
		return clearance, nil
	}
	placed, err := h.placeLinks(forward, 0)
	if err != nil {
		return 0, err
	}
	for _, link := range placed {
		for _, obstacle := range h.world {
			clearance = math.Min(clearance, h.backend.BoxDistance(link.box, obstacle.box))
		}
	}
	return clearance, nil
}
