package sensors

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/vhollo/discosense/sensors/lsm303dlhc"
)

// Compass wraps an LSM303DLHC driver and implements the CompassReader
// interface. The accelerometer and magnetometer are polled independently
// because they signal data-ready on separate sub-devices at different rates.
type Compass struct {
	busMu  sync.Mutex
	sensor *lsm303dlhc.LSM303DLHC

	mu      sync.RWMutex
	accel   lsm303dlhc.Acceleration
	field   lsm303dlhc.MagneticField
	temp    int16
	accelOK bool
	magOK   bool
	tempOK  bool
	lastErr error

	busErrors uint64
	samples   uint64
	quit      chan struct{}
	closeOnce sync.Once
}

var _ CompassReader = (*Compass)(nil)

// NewCompass initializes both sub-devices and begins polling them every poll
// interval.
func NewCompass(sensor *lsm303dlhc.LSM303DLHC, poll time.Duration) (*Compass, error) {
	if err := sensor.Init(); err != nil {
		return nil, err
	}
	c := &Compass{sensor: sensor, quit: make(chan struct{})}
	go c.run(poll)
	return c, nil
}

func (c *Compass) run(poll time.Duration) {
	clock := time.NewTicker(poll)
	defer clock.Stop()

	for {
		select {
		case <-clock.C:
			c.sample()
		case <-c.quit:
			return
		}
	}
}

func (c *Compass) sample() {
	c.busMu.Lock()
	defer c.busMu.Unlock()

	took := false

	ready, err := c.sensor.AccelDataReady()
	if err != nil {
		c.noteError(err)
		return
	}
	if ready {
		accel, err := c.sensor.ReadAcceleration()
		if err != nil {
			c.noteError(err)
			return
		}
		c.mu.Lock()
		c.accel = accel
		c.accelOK = true
		c.lastErr = nil
		c.mu.Unlock()
		took = true
	}

	ready, err = c.sensor.MagDataReady()
	if err != nil {
		c.noteError(err)
		return
	}
	if ready {
		field, err := c.sensor.ReadMagneticField()
		if err != nil {
			c.noteError(err)
			return
		}
		temp, err := c.sensor.ReadTemperature()
		if err != nil {
			c.noteError(err)
			return
		}
		c.mu.Lock()
		c.field = field
		c.temp = temp
		c.magOK = true
		c.tempOK = true
		c.lastErr = nil
		c.mu.Unlock()
		took = true
	}

	if took {
		atomic.AddUint64(&c.samples, 1)
	}
}

func (c *Compass) noteError(err error) {
	atomic.AddUint64(&c.busErrors, 1)
	c.mu.Lock()
	c.lastErr = err
	c.mu.Unlock()
}

// Acceleration returns the latest accelerations in g, or the most recent bus
// error, or ErrNotReady before the first good sample.
func (c *Compass) Acceleration() (x, y, z float64, err error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.lastErr != nil {
		return 0, 0, 0, c.lastErr
	}
	if !c.accelOK {
		return 0, 0, 0, ErrNotReady
	}
	return c.accel.X, c.accel.Y, c.accel.Z, nil
}

// MagneticField returns the latest field strengths in gauss.
func (c *Compass) MagneticField() (x, y, z float64, err error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.lastErr != nil {
		return 0, 0, 0, c.lastErr
	}
	if !c.magOK {
		return 0, 0, 0, ErrNotReady
	}
	return c.field.X, c.field.Y, c.field.Z, nil
}

// Heading returns the magnetic bearing in [0, 360) degrees computed from the
// latest field sample. The board must be held level for the value to mean
// anything.
func (c *Compass) Heading() (float64, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.lastErr != nil {
		return 0, c.lastErr
	}
	if !c.magOK {
		return 0, ErrNotReady
	}
	return lsm303dlhc.Heading(c.field), nil
}

// Temperature returns the magnetometer die temperature in degrees C,
// 8 LSB/degC.
func (c *Compass) Temperature() (float64, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.lastErr != nil {
		return 0, c.lastErr
	}
	if !c.tempOK {
		return 0, ErrNotReady
	}
	return float64(c.temp) / 8.0, nil
}

// SetAccelScale forwards a range change to the accelerometer, serialized
// against the poll loop.
func (c *Compass) SetAccelScale(scale lsm303dlhc.AccelScale) error {
	c.busMu.Lock()
	defer c.busMu.Unlock()
	return c.sensor.SetAccelScale(scale)
}

// SetMagGain forwards a gain change to the magnetometer, serialized against
// the poll loop.
func (c *Compass) SetMagGain(gain lsm303dlhc.MagGain) error {
	c.busMu.Lock()
	defer c.busMu.Unlock()
	return c.sensor.SetMagGain(gain)
}

// BusErrors reports how many transactions have failed since startup.
func (c *Compass) BusErrors() uint64 { return atomic.LoadUint64(&c.busErrors) }

// Samples reports how many poll cycles produced new data since startup.
func (c *Compass) Samples() uint64 { return atomic.LoadUint64(&c.samples) }

// Close stops the poll loop and powers both sub-devices down.
func (c *Compass) Close() {
	c.closeOnce.Do(func() {
		close(c.quit)
		c.busMu.Lock()
		defer c.busMu.Unlock()
		c.sensor.Close()
	})
}
