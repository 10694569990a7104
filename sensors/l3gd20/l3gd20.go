package l3gd20

import (
	"fmt"
	"log"
	"time"

	"github.com/vhollo/discosense/sensors/bus"
)

// The charge pump needs this long after power-up before the output data is
// trustworthy (datasheet turn-on time at 95 Hz).
const settleDelay = 250 * time.Millisecond

// AngularRate is a three-axis rate reading in degrees per second.
type AngularRate struct {
	X, Y, Z float64
}

// L3GD20 drives one gyroscope over its register connection. The driver owns
// the connection exclusively and is not safe for concurrent use; all register
// operations happen strictly in call order. A freshly constructed driver
// models the chip in its power-down reset state until Init runs.
type L3GD20 struct {
	conn  bus.Conn
	scale FullScale
	rate  DataRate
	on    bool
}

// New binds the driver to conn, taking ownership of it. The chip is not
// touched until Init.
func New(conn bus.Conn) *L3GD20 {
	return &L3GD20{
		conn:  conn,
		scale: Scale250dps,
		rate:  Rate95Hz,
	}
}

// Init powers the chip up with all three axes enabled and the range and rate
// at chip defaults (250 dps, 95 Hz), then waits out the charge-pump settle
// time. An unexpected WHO_AM_I is logged but not fatal; bus failures are.
func (d *L3GD20) Init() error {
	id, err := d.conn.ReadReg(RegWhoAmI)
	if err != nil {
		return fmt.Errorf("L3GD20: reading WHO_AM_I: %w", err)
	}
	if id != ChipID && id != ChipIDVariant {
		log.Printf("L3GD20 Warning: WHO_AM_I is 0x%02X, expected 0x%02X or 0x%02X\n", id, ChipID, ChipIDVariant)
	}

	seq := []struct {
		reg, value byte
	}{
		{RegCtrl1, ctrl1PowerUp}, // normal mode, X/Y/Z enabled
		{RegCtrl2, 0x00},         // high-pass filter off
		{RegCtrl3, 0x00},         // interrupts off
		{RegCtrl4, 0x00},         // continuous update, 250 dps
		{RegCtrl5, 0x00},         // FIFO off
	}
	for _, w := range seq {
		if err := d.conn.WriteReg(w.reg, w.value); err != nil {
			return fmt.Errorf("L3GD20: writing control register 0x%02X: %w", w.reg, err)
		}
	}
	d.scale = Scale250dps
	d.rate = Rate95Hz
	d.on = true

	time.Sleep(settleDelay)
	return nil
}

// SetFullScale changes the measurement range, preserving all other CTRL_REG4
// bits. On success the conversion factor tracks the new register value; on a
// bus error neither changes.
func (d *L3GD20) SetFullScale(scale FullScale) error {
	ctrl4, err := d.conn.ReadReg(RegCtrl4)
	if err != nil {
		return fmt.Errorf("L3GD20: reading CTRL_REG4: %w", err)
	}
	ctrl4 = ctrl4&ctrl4ScaleMask | byte(scale)
	if err := d.conn.WriteReg(RegCtrl4, ctrl4); err != nil {
		return fmt.Errorf("L3GD20: setting full scale to %s: %w", scale, err)
	}
	d.scale = scale
	return nil
}

// FullScale reports the range most recently written to the chip.
func (d *L3GD20) FullScale() FullScale { return d.scale }

// SetDataRate changes the output data rate and bandwidth, preserving
// CTRL_REG1 bits 0-3 (power mode and axis enables).
func (d *L3GD20) SetDataRate(rate DataRate) error {
	ctrl1, err := d.conn.ReadReg(RegCtrl1)
	if err != nil {
		return fmt.Errorf("L3GD20: reading CTRL_REG1: %w", err)
	}
	ctrl1 = ctrl1&ctrl1RateMask | byte(rate)
	if err := d.conn.WriteReg(RegCtrl1, ctrl1); err != nil {
		return fmt.Errorf("L3GD20: setting data rate: %w", err)
	}
	d.rate = rate
	return nil
}

// DataReady reports whether a fresh measurement is available on all three
// axes. The chip raises no interrupts in this configuration, so callers must
// poll this before ReadAngularRate or risk reading stale data.
func (d *L3GD20) DataReady() (bool, error) {
	status, err := d.conn.ReadReg(RegStatus)
	if err != nil {
		return false, fmt.Errorf("L3GD20: reading status: %w", err)
	}
	return status&statusZYXDA != 0, nil
}

// ReadAngularRate burst-reads the six axis registers and converts them to
// degrees per second using the sensitivity of the active range.
func (d *L3GD20) ReadAngularRate() (AngularRate, error) {
	var raw [6]byte
	if err := d.conn.ReadBurst(RegOutXL, raw[:]); err != nil {
		return AngularRate{}, fmt.Errorf("L3GD20: reading axis data: %w", err)
	}

	// Each axis is little-endian signed 16-bit.
	x := int16(uint16(raw[0]) | uint16(raw[1])<<8)
	y := int16(uint16(raw[2]) | uint16(raw[3])<<8)
	z := int16(uint16(raw[4]) | uint16(raw[5])<<8)

	sens := d.scale.Sensitivity() / 1000.0 // mdps/LSB -> dps/LSB
	return AngularRate{
		X: float64(x) * sens,
		Y: float64(y) * sens,
		Z: float64(z) * sens,
	}, nil
}

// ReadTemperature returns the raw temperature register, 1 LSB/degC two's
// complement with no offset correction.
func (d *L3GD20) ReadTemperature() (int8, error) {
	t, err := d.conn.ReadReg(RegOutTemp)
	if err != nil {
		return 0, fmt.Errorf("L3GD20: reading temperature: %w", err)
	}
	return int8(t), nil
}

// Close powers the chip down and releases the bus connection.
func (d *L3GD20) Close() error {
	if d.on {
		if err := d.conn.WriteReg(RegCtrl1, ctrl1PowerDown); err != nil {
			log.Printf("L3GD20 Warning: couldn't power down: %s\n", err.Error())
		}
		d.on = false
	}
	return d.conn.Close()
}
