package genetics

import "github.com/pkg/errors"

// NewParentLengthError is returned when two parents of different lengths are crossed.
func NewParentLengthError(len1, len2 int) error {
	return errors.Errorf("parent gene lengths unequal! %d %d", len1, len2)
}

func newGeneLimitsError(limits, thetas int) error {
	return errors.Errorf("gene has %d limits for %d values", limits, thetas)
}
