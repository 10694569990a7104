package sensors

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/vhollo/discosense/sensors/l3gd20"
)

// Gyro wraps an L3GD20 driver and implements the GyroReader interface. The
// wrapper serializes every register transaction through one mutex, preserving
// the chip's strict in-order, single-owner bus contract while letting any
// number of goroutines read the cached values.
type Gyro struct {
	busMu  sync.Mutex // serializes all transactions to the chip
	sensor *l3gd20.L3GD20

	mu      sync.RWMutex // guards the cached reading below
	rate    l3gd20.AngularRate
	temp    int8
	valid   bool
	lastErr error

	busErrors uint64
	samples   uint64
	quit      chan struct{}
	closeOnce sync.Once
}

var _ GyroReader = (*Gyro)(nil)

// NewGyro initializes the chip and begins polling it every poll interval,
// reading the axis registers only after the data-ready bit is seen set.
func NewGyro(sensor *l3gd20.L3GD20, poll time.Duration) (*Gyro, error) {
	if err := sensor.Init(); err != nil {
		return nil, err
	}
	g := &Gyro{sensor: sensor, quit: make(chan struct{})}
	go g.run(poll)
	return g, nil
}

func (g *Gyro) run(poll time.Duration) {
	clock := time.NewTicker(poll)
	defer clock.Stop()

	for {
		select {
		case <-clock.C:
			g.sample()
		case <-g.quit:
			return
		}
	}
}

// sample performs one data-ready gated read cycle.
func (g *Gyro) sample() {
	g.busMu.Lock()
	defer g.busMu.Unlock()

	ready, err := g.sensor.DataReady()
	if err != nil {
		g.noteError(err)
		return
	}
	if !ready {
		return
	}
	rate, err := g.sensor.ReadAngularRate()
	if err != nil {
		g.noteError(err)
		return
	}
	temp, err := g.sensor.ReadTemperature()
	if err != nil {
		g.noteError(err)
		return
	}

	g.mu.Lock()
	g.rate = rate
	g.temp = temp
	g.valid = true
	g.lastErr = nil
	g.mu.Unlock()
	atomic.AddUint64(&g.samples, 1)
}

func (g *Gyro) noteError(err error) {
	atomic.AddUint64(&g.busErrors, 1)
	g.mu.Lock()
	g.lastErr = err
	g.mu.Unlock()
}

// AngularRate returns the latest angular rates in degrees per second, or the
// most recent bus error, or ErrNotReady before the first good sample.
func (g *Gyro) AngularRate() (x, y, z float64, err error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if g.lastErr != nil {
		return 0, 0, 0, g.lastErr
	}
	if !g.valid {
		return 0, 0, 0, ErrNotReady
	}
	return g.rate.X, g.rate.Y, g.rate.Z, nil
}

// Temperature returns the gyro die temperature in degrees C. The register is
// 1 LSB/degC with no factory offset correction.
func (g *Gyro) Temperature() (float64, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if g.lastErr != nil {
		return 0, g.lastErr
	}
	if !g.valid {
		return 0, ErrNotReady
	}
	return float64(g.temp), nil
}

// SetFullScale forwards a range change to the chip, serialized against the
// poll loop's transactions.
func (g *Gyro) SetFullScale(scale l3gd20.FullScale) error {
	g.busMu.Lock()
	defer g.busMu.Unlock()
	return g.sensor.SetFullScale(scale)
}

// BusErrors reports how many transactions have failed since startup.
func (g *Gyro) BusErrors() uint64 { return atomic.LoadUint64(&g.busErrors) }

// Samples reports how many complete readings have been taken since startup.
func (g *Gyro) Samples() uint64 { return atomic.LoadUint64(&g.samples) }

// Close stops the poll loop and powers the chip down.
func (g *Gyro) Close() {
	g.closeOnce.Do(func() {
		close(g.quit)
		g.busMu.Lock()
		defer g.busMu.Unlock()
		g.sensor.Close()
	})
}
