package lsm303dlhc

import (
	"errors"
	"math"
	"testing"
)

type fakeConn struct {
	regs    map[byte]byte
	burst   map[byte][]byte
	failAll error
}

func (f *fakeConn) ReadReg(reg byte) (byte, error) {
	if f.failAll != nil {
		return 0, f.failAll
	}
	return f.regs[reg], nil
}

func (f *fakeConn) ReadBurst(reg byte, buf []byte) error {
	if f.failAll != nil {
		return f.failAll
	}
	if data, ok := f.burst[reg]; ok {
		copy(buf, data)
		return nil
	}
	for i := range buf {
		buf[i] = f.regs[reg+byte(i)]
	}
	return nil
}

func (f *fakeConn) WriteReg(reg, value byte) error {
	if f.failAll != nil {
		return f.failAll
	}
	f.regs[reg] = value
	return nil
}

func (f *fakeConn) Close() error { return nil }

func newFakeConn() *fakeConn {
	return &fakeConn{regs: map[byte]byte{}, burst: map[byte][]byte{}}
}

func newDriver() (*LSM303DLHC, *fakeConn, *fakeConn) {
	accel := newFakeConn()
	mag := newFakeConn()
	return New(accel, mag), accel, mag
}

func TestInitConfiguresBothSubDevices(t *testing.T) {
	d, accel, mag := newDriver()

	if err := d.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}
	if accel.regs[RegAccelCtrl1] != 0x57 {
		t.Errorf("CTRL_REG1_A = 0x%02X, want 0x57 (normal power, 100 Hz, XYZ)", accel.regs[RegAccelCtrl1])
	}
	if accel.regs[RegAccelCtrl4] != 0x08 {
		t.Errorf("CTRL_REG4_A = 0x%02X, want 0x08 (high resolution, +/-2g)", accel.regs[RegAccelCtrl4])
	}
	for _, reg := range []byte{RegAccelCtrl2, RegAccelCtrl3, RegAccelCtrl5} {
		if accel.regs[reg] != 0x00 {
			t.Errorf("accel control register 0x%02X = 0x%02X, want 0x00", reg, accel.regs[reg])
		}
	}
	if mag.regs[RegMagCRA] != 0x90 {
		t.Errorf("CRA_REG_M = 0x%02X, want 0x90 (temperature on, 15 Hz)", mag.regs[RegMagCRA])
	}
	if mag.regs[RegMagCRB] != 0x20 {
		t.Errorf("CRB_REG_M = 0x%02X, want 0x20 (+/-1.3 gauss)", mag.regs[RegMagCRB])
	}
	if mag.regs[RegMagMR] != 0x00 {
		t.Errorf("MR_REG_M = 0x%02X, want 0x00 (continuous conversion)", mag.regs[RegMagMR])
	}
}

func TestSetAccelScalePreservesOtherBits(t *testing.T) {
	d, accel, _ := newDriver()
	accel.regs[RegAccelCtrl4] = 0x08 // high-resolution bit set by Init

	if err := d.SetAccelScale(Scale8g); err != nil {
		t.Fatalf("SetAccelScale: %v", err)
	}
	if got := accel.regs[RegAccelCtrl4]; got != 0x28 {
		t.Errorf("CTRL_REG4_A = 0x%02X, want 0x28 (only bits 4-5 changed)", got)
	}
	if d.AccelScale() != Scale8g {
		t.Errorf("driver scale = %v, want 8g", d.AccelScale())
	}
}

func TestSetAccelDataRatePreservesPowerBits(t *testing.T) {
	d, accel, _ := newDriver()
	accel.regs[RegAccelCtrl1] = 0x57

	if err := d.SetAccelDataRate(AccelRate400Hz); err != nil {
		t.Fatalf("SetAccelDataRate: %v", err)
	}
	if got := accel.regs[RegAccelCtrl1]; got != 0x77 {
		t.Errorf("CTRL_REG1_A = 0x%02X, want 0x77 (bits 0-3 untouched)", got)
	}
}

func TestSetMagGainOverwritesCRB(t *testing.T) {
	d, _, mag := newDriver()
	mag.regs[RegMagCRB] = 0x20

	if err := d.SetMagGain(Gain4_7); err != nil {
		t.Fatalf("SetMagGain: %v", err)
	}
	if got := mag.regs[RegMagCRB]; got != 0xA0 {
		t.Errorf("CRB_REG_M = 0x%02X, want 0xA0", got)
	}
	if d.MagGain() != Gain4_7 {
		t.Errorf("driver gain = %v, want 4.7gauss", d.MagGain())
	}
}

func TestSetMagDataRatePreservesTempEnable(t *testing.T) {
	d, _, mag := newDriver()
	mag.regs[RegMagCRA] = 0x90 // temperature enabled, 15 Hz

	if err := d.SetMagDataRate(MagRate75Hz); err != nil {
		t.Fatalf("SetMagDataRate: %v", err)
	}
	if got := mag.regs[RegMagCRA]; got != 0x98 {
		t.Errorf("CRA_REG_M = 0x%02X, want 0x98 (temperature bit preserved)", got)
	}
}

func TestDataReadyBits(t *testing.T) {
	d, accel, mag := newDriver()

	ready, err := d.AccelDataReady()
	if err != nil || ready {
		t.Errorf("AccelDataReady = %v, %v; want false, nil", ready, err)
	}
	accel.regs[RegAccelStatus] = 0x08
	ready, err = d.AccelDataReady()
	if err != nil || !ready {
		t.Errorf("AccelDataReady = %v, %v; want true, nil", ready, err)
	}

	ready, err = d.MagDataReady()
	if err != nil || ready {
		t.Errorf("MagDataReady = %v, %v; want false, nil", ready, err)
	}
	mag.regs[RegMagSR] = 0x01
	ready, err = d.MagDataReady()
	if err != nil || !ready {
		t.Errorf("MagDataReady = %v, %v; want true, nil", ready, err)
	}
}

func TestReadAccelerationTwelveBitHandling(t *testing.T) {
	d, accel, _ := newDriver()
	// X raw register value 0x00F0: shifting right by 4 gives 15 counts,
	// which at 1 mg/LSB is 0.015 g.
	accel.burst[RegAccelOutXL|0x80] = []byte{0xF0, 0x00, 0x00, 0xF0, 0x00, 0x00}

	a, err := d.ReadAcceleration()
	if err != nil {
		t.Fatalf("ReadAcceleration: %v", err)
	}
	if math.Abs(a.X-0.015) > 1e-9 {
		t.Errorf("X = %v, want 0.015 g", a.X)
	}
	// Y raw 0xF000 is negative: -4096 >> 4 = -256 counts = -0.256 g.
	if math.Abs(a.Y - -0.256) > 1e-9 {
		t.Errorf("Y = %v, want -0.256 g", a.Y)
	}
	if a.Z != 0 {
		t.Errorf("Z = %v, want 0", a.Z)
	}
}

func TestReadMagneticFieldXZYOrder(t *testing.T) {
	d, _, mag := newDriver()
	// Physical register order is X, Z, Y, big-endian: first pair 1100,
	// second pair 980, third pair -1100.
	mag.burst[RegMagOutXH] = []byte{0x04, 0x4C, 0x03, 0xD4, 0xFB, 0xB4}

	m, err := d.ReadMagneticField()
	if err != nil {
		t.Fatalf("ReadMagneticField: %v", err)
	}
	// At +/-1.3 gauss gain: XY divide by 1100, Z by 980.
	if math.Abs(m.X-1.0) > 1e-9 {
		t.Errorf("X = %v, want 1.0 gauss (first register pair)", m.X)
	}
	if math.Abs(m.Z-1.0) > 1e-9 {
		t.Errorf("Z = %v, want 1.0 gauss (second register pair)", m.Z)
	}
	if math.Abs(m.Y - -1.0) > 1e-9 {
		t.Errorf("Y = %v, want -1.0 gauss (third register pair)", m.Y)
	}
}

func TestMagGainChangesDivisors(t *testing.T) {
	d, _, mag := newDriver()
	mag.burst[RegMagOutXH] = []byte{0x01, 0xC2, 0x01, 0x8F, 0x00, 0x00} // X=450, Z=399

	if err := d.SetMagGain(Gain4_0); err != nil {
		t.Fatalf("SetMagGain: %v", err)
	}
	m, err := d.ReadMagneticField()
	if err != nil {
		t.Fatalf("ReadMagneticField: %v", err)
	}
	if math.Abs(m.X-1.0) > 1e-9 {
		t.Errorf("X = %v, want 1.0 gauss at 450 LSB/gauss", m.X)
	}
	if math.Abs(m.Z-399.0/400.0) > 1e-9 {
		t.Errorf("Z = %v, want %v", m.Z, 399.0/400.0)
	}
}

func TestReadTemperatureTwelveBit(t *testing.T) {
	d, _, mag := newDriver()
	mag.regs[RegMagTempH] = 0x14 // 0x14C0 >> 4 = 332
	mag.regs[RegMagTempL] = 0xC0

	temp, err := d.ReadTemperature()
	if err != nil {
		t.Fatalf("ReadTemperature: %v", err)
	}
	if temp != 332 {
		t.Errorf("temperature = %d, want 332", temp)
	}

	mag.regs[RegMagTempH] = 0xFF // negative value keeps its sign through the shift
	mag.regs[RegMagTempL] = 0x00
	temp, err = d.ReadTemperature()
	if err != nil {
		t.Fatalf("ReadTemperature: %v", err)
	}
	if temp != -16 {
		t.Errorf("temperature = %d, want -16", temp)
	}
}

func TestSensitivityTables(t *testing.T) {
	accelCases := []struct {
		scale AccelScale
		mg    float64
	}{
		{Scale2g, 1.0}, {Scale4g, 2.0}, {Scale8g, 4.0}, {Scale16g, 12.0},
	}
	for _, c := range accelCases {
		if got := c.scale.Sensitivity(); got != c.mg {
			t.Errorf("%v sensitivity = %v, want %v mg/LSB", c.scale, got, c.mg)
		}
	}

	magCases := []struct {
		gain  MagGain
		xy, z float64
	}{
		{Gain1_3, 1100, 980},
		{Gain1_9, 855, 760},
		{Gain2_5, 670, 600},
		{Gain4_0, 450, 400},
		{Gain4_7, 400, 355},
		{Gain5_6, 330, 295},
		{Gain8_1, 230, 205},
	}
	for _, c := range magCases {
		if got := c.gain.SensitivityXY(); got != c.xy {
			t.Errorf("%v XY sensitivity = %v, want %v", c.gain, got, c.xy)
		}
		if got := c.gain.SensitivityZ(); got != c.z {
			t.Errorf("%v Z sensitivity = %v, want %v", c.gain, got, c.z)
		}
	}
}

func TestBusErrorsPropagate(t *testing.T) {
	cause := errors.New("i2c: no ack")
	d, accel, mag := newDriver()
	accel.failAll = cause
	mag.failAll = cause

	if err := d.Init(); !errors.Is(err, cause) {
		t.Errorf("Init error = %v, want wrapped bus cause", err)
	}
	if err := d.SetAccelScale(Scale4g); !errors.Is(err, cause) {
		t.Errorf("SetAccelScale error = %v, want wrapped bus cause", err)
	}
	if d.AccelScale() != Scale2g {
		t.Error("accel scale changed even though the register write failed")
	}
	if err := d.SetMagGain(Gain8_1); !errors.Is(err, cause) {
		t.Errorf("SetMagGain error = %v, want wrapped bus cause", err)
	}
	if d.MagGain() != Gain1_3 {
		t.Error("mag gain changed even though the register write failed")
	}
	if _, err := d.AccelDataReady(); !errors.Is(err, cause) {
		t.Errorf("AccelDataReady error = %v, want wrapped bus cause", err)
	}
	if _, err := d.MagDataReady(); !errors.Is(err, cause) {
		t.Errorf("MagDataReady error = %v, want wrapped bus cause", err)
	}
	if _, err := d.ReadAcceleration(); !errors.Is(err, cause) {
		t.Errorf("ReadAcceleration error = %v, want wrapped bus cause", err)
	}
	if _, err := d.ReadMagneticField(); !errors.Is(err, cause) {
		t.Errorf("ReadMagneticField error = %v, want wrapped bus cause", err)
	}
	if _, err := d.ReadTemperature(); !errors.Is(err, cause) {
		t.Errorf("ReadTemperature error = %v, want wrapped bus cause", err)
	}
}
