// Package sensors provides a discosense interface to the motion sensors on
// the board: the L3GD20 gyroscope and the LSM303DLHC e-compass. The wrappers
// here poll the chips' data-ready flags and cache the latest converted
// reading, so callers never see stale or half-written samples.
package sensors

import "errors"

// ErrNotReady is returned while no fresh measurement has been observed yet,
// either because the sensor is still settling or because its data-ready bit
// has not been seen set since the last read.
var ErrNotReady = errors.New("sensors: no measurement available yet")

// GyroReader provides an interface to a three-axis angular rate sensor such
// as the L3GD20.
type GyroReader interface {
	// AngularRate returns the latest rates in degrees per second.
	AngularRate() (x, y, z float64, err error)
	// Temperature returns the sensor die temperature in degrees C (uncalibrated).
	Temperature() (float64, error)
	// Close stops reading from the sensor and powers it down.
	Close()
}

// CompassReader provides an interface to a combined accelerometer and
// magnetometer such as the LSM303DLHC.
type CompassReader interface {
	// Acceleration returns the latest acceleration in g.
	Acceleration() (x, y, z float64, err error)
	// MagneticField returns the latest magnetic field in gauss.
	MagneticField() (x, y, z float64, err error)
	// Heading returns the flat-board compass bearing in degrees, [0, 360).
	Heading() (float64, error)
	// Temperature returns the magnetometer die temperature in degrees C (uncalibrated).
	Temperature() (float64, error)
	// Close stops reading from the sensor.
	Close()
}
