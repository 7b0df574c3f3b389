// Package rangemap converts user-facing control values into the ranges the
// generation models accept.
package rangemap

import (
	"math"

	"github.com/basel-ax/imagegen/internal/domain"
)

// Declared ranges for the numeric generation knobs
const (
	MinImages = 1
	MaxImages = 4

	MinGuidanceScale = 1.0
	MaxGuidanceScale = 20.0

	MinSteps = 0.0
	MaxSteps = 1.0
)

// Number is the set of types Clamp accepts
type Number interface {
	~int | ~int64 | ~float64
}

// Clamp bounds value to [min, max]
func Clamp[T Number](min, max, value T) T {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}

// MapToModelRange linearly maps a client value in [0,1] onto the step interval
// of the given model. Out-of-range input is clamped and NaN is treated as 0.
// The result is rounded half away from zero.
func MapToModelRange(clientValue float64, model domain.ModelVariant) int {
	r := model.Steps()
	if math.IsNaN(clientValue) {
		clientValue = MinSteps
	}
	x := Clamp(MinSteps, MaxSteps, clientValue)
	return int(math.Round(float64(r.Low) + x*float64(r.High-r.Low)))
}
