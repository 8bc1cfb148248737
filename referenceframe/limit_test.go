package referenceframe

import (
	"math"
	"strings"
	"testing"

	"go.viam.com/test"
)

func TestLimit(t *testing.T) {
	l := Limit{Min: -1, Max: 1}
	test.That(t, l.Contains(0), test.ShouldBeTrue)
	test.That(t, l.Contains(1), test.ShouldBeTrue)
	test.That(t, l.Contains(1.01), test.ShouldBeFalse)
	test.That(t, l.Clamp(5), test.ShouldEqual, 1.)
	test.That(t, l.Validate(), test.ShouldBeNil)

	test.That(t, Limit{Min: 2, Max: 1}.Validate(), test.ShouldNotBeNil)
	test.That(t, Limit{Min: math.NaN(), Max: 1}.Validate(), test.ShouldNotBeNil)

	u := Unbounded()
	test.That(t, u.Contains(1e300), test.ShouldBeTrue)
	test.That(t, u.Validate(), test.ShouldBeNil)
}

func TestCheckInputs(t *testing.T) {
	limits := []Limit{{-1, 1}, {0, 2}}
	test.That(t, CheckInputs([]float64{0, 1}, limits), test.ShouldBeNil)
	err := CheckInputs([]float64{0, 3}, limits)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, strings.Contains(err.Error(), OOBErrString), test.ShouldBeTrue)
	test.That(t, err.Error(), test.ShouldContainSubstring, "joint 1")

	// extra values past the last limit are not checked
	test.That(t, CheckInputs([]float64{0, 1, 100}, limits), test.ShouldBeNil)
	test.That(t, CheckInputs([]float64{0, 1e300}, UnboundedLimits(2)), test.ShouldBeNil)
}
