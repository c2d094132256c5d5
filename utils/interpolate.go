// SPDX-License-Identifier: EPL-2.0

// Package utils holds the sample level arithmetic shared by the resamplers
// and the format codecs.
package utils

// CubicInterpolate evaluates the Catmull-Rom spline through y0..y3 at x,
// the fractional position between y1 (x=0) and y2 (x=1).
func CubicInterpolate(y0, y1, y2, y3, x float32) float32 {
	a0 := -0.5*y0 + 1.5*y1 - 1.5*y2 + 0.5*y3
	a1 := y0 - 2.5*y1 + 2*y2 - 0.5*y3
	a2 := -0.5*y0 + 0.5*y2

	return ((a0*x+a1)*x+a2)*x + y1
}
