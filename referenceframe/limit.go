// Package referenceframe holds the joint-space vocabulary shared by the kinematics and optimization packages.
package referenceframe

import (
	"fmt"
	"math"

	"go.viam.com/chainik/utils"
)

// OOBErrString is a string that all OOB errors should contain, so that they can be checked for distinct from other errors.
const OOBErrString = "input out of bounds"

// Limit represents the limits of motion for a joint.
type Limit struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Unbounded returns a Limit that admits every finite angle.
func Unbounded() Limit {
	return Limit{Min: math.Inf(-1), Max: math.Inf(1)}
}

// UnboundedLimits returns n unbounded limits.
func UnboundedLimits(n int) []Limit {
	limits := make([]Limit, n)
	for i := range limits {
		limits[i] = Unbounded()
	}
	return limits
}

// Contains reports whether value lies within [Min, Max].
func (l Limit) Contains(value float64) bool {
	return value >= l.Min && value <= l.Max
}

// Clamp restricts value to [Min, Max].
func (l Limit) Clamp(value float64) float64 {
	return utils.Clamp(value, l.Min, l.Max)
}

// Validate returns an error if the limit is inverted or contains NaN.
func (l Limit) Validate() error {
	if math.IsNaN(l.Min) || math.IsNaN(l.Max) {
		return fmt.Errorf("limit %v contains NaN", l)
	}
	if l.Min > l.Max {
		return fmt.Errorf("limit min %.5f greater than max %.5f", l.Min, l.Max)
	}
	return nil
}

// CheckInputs returns an error naming the first value that falls outside of its limit.
func CheckInputs(values []float64, limits []Limit) error {
	for i, v := range values {
		if i >= len(limits) {
			break
		}
		if !limits[i].Contains(v) {
			return fmt.Errorf("joint %d: %.5f %s %v", i, v, OOBErrString, limits[i])
		}
	}
	return nil
}
