package lsm303dlhc

import (
	"fmt"
	"log"
	"time"

	"github.com/vhollo/discosense/sensors/bus"
)

// Settle time after configuring each sub-device before its first read.
const settleDelay = 10 * time.Millisecond

// Acceleration is a three-axis reading in g.
type Acceleration struct {
	X, Y, Z float64
}

// MagneticField is a three-axis reading in gauss.
type MagneticField struct {
	X, Y, Z float64
}

// LSM303DLHC drives the accelerometer and magnetometer sub-devices through
// their two register connections on the shared bus. The driver owns both
// connections exclusively; register operations are strictly sequenced in call
// order and concurrent calls into one driver instance are not supported. If
// another chip hangs off the same physical bus, mutual exclusion between the
// two drivers is the caller's problem.
type LSM303DLHC struct {
	accel      bus.Conn
	mag        bus.Conn
	accelScale AccelScale
	magGain    MagGain
}

// New binds the driver to the two sub-device connections, taking ownership of
// both. Neither chip is touched until Init.
func New(accel, mag bus.Conn) *LSM303DLHC {
	return &LSM303DLHC{
		accel:      accel,
		mag:        mag,
		accelScale: Scale2g,
		magGain:    Gain1_3,
	}
}

// Init configures the accelerometer for normal power, 100 Hz, all axes,
// high-resolution +/-2g output, and the magnetometer for continuous
// conversion at 15 Hz with the temperature sensor on and +/-1.3 gauss gain,
// waiting out a short settle after each sub-device.
func (d *LSM303DLHC) Init() error {
	accelSeq := []struct {
		reg, value byte
	}{
		{RegAccelCtrl1, accelCtrl1Init},
		{RegAccelCtrl2, 0x00}, // high-pass filter off
		{RegAccelCtrl3, 0x00}, // interrupts off
		{RegAccelCtrl4, accelCtrl4Init},
		{RegAccelCtrl5, 0x00}, // FIFO off
	}
	for _, w := range accelSeq {
		if err := d.accel.WriteReg(w.reg, w.value); err != nil {
			return fmt.Errorf("LSM303DLHC: configuring accelerometer register 0x%02X: %w", w.reg, err)
		}
	}
	d.accelScale = Scale2g
	time.Sleep(settleDelay)

	magSeq := []struct {
		reg, value byte
	}{
		{RegMagCRA, magCRAInit},
		{RegMagCRB, magCRBInit},
		{RegMagMR, magMRInit},
	}
	for _, w := range magSeq {
		if err := d.mag.WriteReg(w.reg, w.value); err != nil {
			return fmt.Errorf("LSM303DLHC: configuring magnetometer register 0x%02X: %w", w.reg, err)
		}
	}
	d.magGain = Gain1_3
	time.Sleep(settleDelay)

	return nil
}

// SetAccelScale changes the accelerometer range, preserving all other
// CTRL_REG4_A bits. The conversion factor only tracks a successful write.
func (d *LSM303DLHC) SetAccelScale(scale AccelScale) error {
	ctrl4, err := d.accel.ReadReg(RegAccelCtrl4)
	if err != nil {
		return fmt.Errorf("LSM303DLHC: reading CTRL_REG4_A: %w", err)
	}
	ctrl4 = ctrl4&accelCtrl4ScaleMask | byte(scale)
	if err := d.accel.WriteReg(RegAccelCtrl4, ctrl4); err != nil {
		return fmt.Errorf("LSM303DLHC: setting accel scale to %s: %w", scale, err)
	}
	d.accelScale = scale
	return nil
}

// AccelScale reports the range most recently written to the chip.
func (d *LSM303DLHC) AccelScale() AccelScale { return d.accelScale }

// SetAccelDataRate changes the accelerometer output rate, preserving
// CTRL_REG1_A bits 0-3 (power mode and axis enables).
func (d *LSM303DLHC) SetAccelDataRate(rate AccelDataRate) error {
	ctrl1, err := d.accel.ReadReg(RegAccelCtrl1)
	if err != nil {
		return fmt.Errorf("LSM303DLHC: reading CTRL_REG1_A: %w", err)
	}
	ctrl1 = ctrl1&accelCtrl1RateMask | byte(rate)
	if err := d.accel.WriteReg(RegAccelCtrl1, ctrl1); err != nil {
		return fmt.Errorf("LSM303DLHC: setting accel data rate: %w", err)
	}
	return nil
}

// SetMagGain changes the magnetometer range. Nothing else lives in CRB, so
// the register is overwritten rather than read-modify-written.
func (d *LSM303DLHC) SetMagGain(gain MagGain) error {
	if err := d.mag.WriteReg(RegMagCRB, byte(gain)); err != nil {
		return fmt.Errorf("LSM303DLHC: setting mag gain to %s: %w", gain, err)
	}
	d.magGain = gain
	return nil
}

// MagGain reports the gain most recently written to the chip.
func (d *LSM303DLHC) MagGain() MagGain { return d.magGain }

// SetMagDataRate changes the magnetometer output rate, preserving the
// temperature-enable and averaging bits of CRA_REG_M.
func (d *LSM303DLHC) SetMagDataRate(rate MagDataRate) error {
	cra, err := d.mag.ReadReg(RegMagCRA)
	if err != nil {
		return fmt.Errorf("LSM303DLHC: reading CRA_REG_M: %w", err)
	}
	cra = cra&magCRARateMask | byte(rate)
	if err := d.mag.WriteReg(RegMagCRA, cra); err != nil {
		return fmt.Errorf("LSM303DLHC: setting mag data rate: %w", err)
	}
	return nil
}

// AccelDataReady reports whether a fresh accelerometer measurement is
// available on all three axes. Poll before ReadAcceleration; the driver does
// no interrupt-driven synchronization.
func (d *LSM303DLHC) AccelDataReady() (bool, error) {
	status, err := d.accel.ReadReg(RegAccelStatus)
	if err != nil {
		return false, fmt.Errorf("LSM303DLHC: reading accel status: %w", err)
	}
	return status&accelStatusZYXDA != 0, nil
}

// MagDataReady reports whether a fresh magnetometer measurement is available.
func (d *LSM303DLHC) MagDataReady() (bool, error) {
	status, err := d.mag.ReadReg(RegMagSR)
	if err != nil {
		return false, fmt.Errorf("LSM303DLHC: reading mag status: %w", err)
	}
	return status&magSRDataReady != 0, nil
}

// ReadAcceleration burst-reads the six accelerometer data registers and
// converts them to g. The chip produces 12-bit left-justified little-endian
// values, so each axis is arithmetic-shifted right by 4 before scaling.
func (d *LSM303DLHC) ReadAcceleration() (Acceleration, error) {
	var raw [6]byte
	if err := d.accel.ReadBurst(RegAccelOutXL|accelAutoIncrement, raw[:]); err != nil {
		return Acceleration{}, fmt.Errorf("LSM303DLHC: reading accel data: %w", err)
	}

	x := int16(uint16(raw[0])|uint16(raw[1])<<8) >> 4
	y := int16(uint16(raw[2])|uint16(raw[3])<<8) >> 4
	z := int16(uint16(raw[4])|uint16(raw[5])<<8) >> 4

	sens := d.accelScale.Sensitivity() / 1000.0 // mg/LSB -> g/LSB
	return Acceleration{
		X: float64(x) * sens,
		Y: float64(y) * sens,
		Z: float64(z) * sens,
	}, nil
}

// ReadMagneticField burst-reads the six magnetometer data registers and
// converts them to gauss. The device's register order is X, Z, Y with the
// high byte of each axis first, and Z uses its own gain divisor.
func (d *LSM303DLHC) ReadMagneticField() (MagneticField, error) {
	var raw [6]byte
	if err := d.mag.ReadBurst(RegMagOutXH, raw[:]); err != nil {
		return MagneticField{}, fmt.Errorf("LSM303DLHC: reading mag data: %w", err)
	}

	x := int16(uint16(raw[0])<<8 | uint16(raw[1]))
	z := int16(uint16(raw[2])<<8 | uint16(raw[3]))
	y := int16(uint16(raw[4])<<8 | uint16(raw[5]))

	return MagneticField{
		X: float64(x) / d.magGain.SensitivityXY(),
		Y: float64(y) / d.magGain.SensitivityXY(),
		Z: float64(z) / d.magGain.SensitivityZ(),
	}, nil
}

// ReadTemperature returns the magnetometer die temperature as the raw signed
// 12-bit value (8 LSB/degC, uncalibrated offset).
func (d *LSM303DLHC) ReadTemperature() (int16, error) {
	high, err := d.mag.ReadReg(RegMagTempH)
	if err != nil {
		return 0, fmt.Errorf("LSM303DLHC: reading temperature high byte: %w", err)
	}
	low, err := d.mag.ReadReg(RegMagTempL)
	if err != nil {
		return 0, fmt.Errorf("LSM303DLHC: reading temperature low byte: %w", err)
	}
	return int16(uint16(high)<<8|uint16(low)) >> 4, nil
}

// Close powers the accelerometer down, puts the magnetometer to sleep and
// releases both sub-device connections.
func (d *LSM303DLHC) Close() error {
	if err := d.accel.WriteReg(RegAccelCtrl1, byte(AccelPowerDown)); err != nil {
		log.Printf("LSM303DLHC Warning: couldn't power down accelerometer: %s\n", err.Error())
	}
	if err := d.mag.WriteReg(RegMagMR, magMRSleep); err != nil {
		log.Printf("LSM303DLHC Warning: couldn't sleep magnetometer: %s\n", err.Error())
	}
	if err := d.accel.Close(); err != nil {
		return err
	}
	return d.mag.Close()
}
