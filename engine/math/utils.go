package math

import (
	"github.com/chewxy/math32"
	"golang.org/x/exp/constraints"
)

// Clamp returns the value `f` clamped to the range [low, high].
// It works for any numeric type (integers and floats).
func Clamp[T constraints.Ordered](f, low, high T) T {
	if f < low {
		return low
	}
	if f > high {
		return high
	}
	return f
}

// AlignUp rounds size up to the next multiple of alignment, which must be a
// power of two.
func AlignUp[T constraints.Unsigned](size, alignment T) T {
	return (size + alignment - 1) &^ (alignment - 1)
}

// WrapAngle maps an angle in radians into [0, 2π).
func WrapAngle(radians float32) float32 {
	a := math32.Mod(radians, K_PI_2)
	if a < 0 {
		a += K_PI_2
	}
	return a
}
