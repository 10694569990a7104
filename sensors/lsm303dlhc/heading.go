package lsm303dlhc

import "math"

// Heading converts a magnetic field reading into a compass bearing in
// degrees, in [0, 360). The bearing is computed from the horizontal
// components only and is exact only while the board is flat (Z axis
// vertical); no tilt compensation is attempted. With a degenerate input
// (X and Y both zero, for instance a saturated or unpowered sensor) the
// result is indeterminate and callers should not rely on any specific value.
func Heading(m MagneticField) float64 {
	deg := math.Atan2(m.Y, m.X) * 180.0 / math.Pi
	if deg < 0 {
		deg += 360.0
	}
	return deg
}
