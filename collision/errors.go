package collision

import (
	"github.com/pkg/errors"
)

// NewPoseCountError is returned when a query supplies a forward pose sequence that does not fit the arm colliders.
func NewPoseCountError(got, links int) error {
	return errors.Errorf("got %d forward poses for %d arm links, expected %d", got, links, links+1)
}

func newStartIndexError(from, links int) error {
	return errors.Errorf("collision query start index %d out of range for %d arm links", from, links)
}
