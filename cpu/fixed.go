package cpu

import (
	"fmt"
	"math"
)

// SCALE is the fixed-point multiplier: two decimal digits of fraction.
const SCALE = 100

// Fixed is a signed number stored as value * SCALE.
type Fixed int32

// FromInt converts an integer to fixed-point.
func FromInt(value int32) Fixed {
	return Fixed(value * SCALE)
}

// Int truncates towards zero.
func (fx Fixed) Int() int32 {
	return int32(fx) / SCALE
}

// Mul returns fx * other, rounded towards zero.
func (fx Fixed) Mul(other Fixed) Fixed {
	return Fixed(int64(fx) * int64(other) / SCALE)
}

// Div returns fx / other. The caller checks for a zero divisor.
func (fx Fixed) Div(other Fixed) Fixed {
	return Fixed(SCALE * int64(fx) / int64(other))
}

// Sqrt returns the square root, rounded half away from zero.
func (fx Fixed) Sqrt() (root Fixed, err error) {
	if fx < 0 {
		err = ErrDomain
		return
	}

	root = Fixed(math.Round(math.Sqrt(float64(fx)/SCALE) * SCALE))
	return
}

// String formats with exactly two fractional digits.
func (fx Fixed) String() string {
	value := int64(fx)
	sign := ""
	if value < 0 {
		sign = "-"
		value = -value
	}

	return fmt.Sprintf("%s%d.%02d", sign, value/SCALE, value%SCALE)
}
