package l3gd20

import (
	"errors"
	"math"
	"testing"
)

// fakeConn simulates the chip's register file behind the bus.Conn interface.
type fakeConn struct {
	regs    map[byte]byte
	burst   map[byte][]byte // scripted burst responses by start register
	writes  []byte          // registers written, in order
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
	f.writes = append(f.writes, reg)
	return nil
}

func (f *fakeConn) Close() error { return nil }

func newFakeConn() *fakeConn {
	return &fakeConn{
		regs:  map[byte]byte{RegWhoAmI: ChipID},
		burst: map[byte][]byte{},
	}
}

func TestInitPowersUpAllAxes(t *testing.T) {
	conn := newFakeConn()
	d := New(conn)

	if err := d.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}
	if conn.regs[RegCtrl1] != 0x0F {
		t.Errorf("CTRL_REG1 = 0x%02X, want 0x0F (normal mode, XYZ enabled)", conn.regs[RegCtrl1])
	}
	for _, reg := range []byte{RegCtrl2, RegCtrl3, RegCtrl4, RegCtrl5} {
		if conn.regs[reg] != 0x00 {
			t.Errorf("control register 0x%02X = 0x%02X, want 0x00", reg, conn.regs[reg])
		}
	}
	if d.FullScale() != Scale250dps {
		t.Errorf("FullScale after Init = %v, want 250dps default", d.FullScale())
	}
}

func TestInitIdentityMismatchIsAdvisory(t *testing.T) {
	conn := newFakeConn()
	conn.regs[RegWhoAmI] = 0x00

	if err := New(conn).Init(); err != nil {
		t.Fatalf("Init failed on WHO_AM_I mismatch, want advisory only: %v", err)
	}
}

func TestInitAcceptsVariantID(t *testing.T) {
	conn := newFakeConn()
	conn.regs[RegWhoAmI] = ChipIDVariant

	if err := New(conn).Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}
}

func TestSensitivityTable(t *testing.T) {
	cases := []struct {
		scale FullScale
		mdps  float64
	}{
		{Scale250dps, 8.75},
		{Scale500dps, 17.5},
		{Scale2000dps, 70.0},
	}
	for _, c := range cases {
		if got := c.scale.Sensitivity(); got != c.mdps {
			t.Errorf("%v sensitivity = %v, want %v mdps/LSB", c.scale, got, c.mdps)
		}
	}
}

func TestSetFullScalePreservesOtherBits(t *testing.T) {
	conn := newFakeConn()
	d := New(conn)
	conn.regs[RegCtrl4] = 0x8A // BDU and endianness bits set by someone else

	if err := d.SetFullScale(Scale2000dps); err != nil {
		t.Fatalf("SetFullScale: %v", err)
	}
	if got := conn.regs[RegCtrl4]; got != 0xAA {
		t.Errorf("CTRL_REG4 = 0x%02X, want 0xAA (only bits 4-5 changed)", got)
	}
	if d.FullScale() != Scale2000dps {
		t.Errorf("driver scale = %v, want 2000dps", d.FullScale())
	}
}

func TestScaleChangesConversionFactor(t *testing.T) {
	conn := newFakeConn()
	d := New(conn)
	conn.burst[RegOutXL] = []byte{0xE8, 0x03, 0x00, 0x00, 0x00, 0x00} // X = 1000

	rate, err := d.ReadAngularRate()
	if err != nil {
		t.Fatalf("ReadAngularRate: %v", err)
	}
	if math.Abs(rate.X-8.75) > 1e-9 {
		t.Errorf("X at 250dps = %v, want 8.75 dps", rate.X)
	}

	if err := d.SetFullScale(Scale2000dps); err != nil {
		t.Fatalf("SetFullScale: %v", err)
	}
	rate, err = d.ReadAngularRate()
	if err != nil {
		t.Fatalf("ReadAngularRate: %v", err)
	}
	if math.Abs(rate.X-70.0) > 1e-9 {
		t.Errorf("X at 2000dps = %v, want 70 dps", rate.X)
	}
}

func TestSetDataRatePreservesPowerBits(t *testing.T) {
	conn := newFakeConn()
	d := New(conn)
	conn.regs[RegCtrl1] = 0x0F

	if err := d.SetDataRate(Rate380Hz); err != nil {
		t.Fatalf("SetDataRate: %v", err)
	}
	if got := conn.regs[RegCtrl1]; got != 0x8F {
		t.Errorf("CTRL_REG1 = 0x%02X, want 0x8F (bits 0-3 untouched)", got)
	}
}

func TestDataReadyTracksStatusBit(t *testing.T) {
	conn := newFakeConn()
	d := New(conn)

	ready, err := d.DataReady()
	if err != nil {
		t.Fatalf("DataReady: %v", err)
	}
	if ready {
		t.Error("DataReady = true with ZYXDA clear")
	}

	conn.regs[RegStatus] = 0x08
	ready, err = d.DataReady()
	if err != nil {
		t.Fatalf("DataReady: %v", err)
	}
	if !ready {
		t.Error("DataReady = false with ZYXDA set")
	}
}

func TestReadAngularRateDecodesLittleEndianSigned(t *testing.T) {
	conn := newFakeConn()
	d := New(conn)
	conn.burst[RegOutXL] = []byte{0xFF, 0xFF, 0x01, 0x00, 0x00, 0x80} // -1, 1, -32768

	rate, err := d.ReadAngularRate()
	if err != nil {
		t.Fatalf("ReadAngularRate: %v", err)
	}
	sens := 8.75 / 1000.0
	if math.Abs(rate.X - -sens) > 1e-12 {
		t.Errorf("X = %v, want %v", rate.X, -sens)
	}
	if math.Abs(rate.Y-sens) > 1e-12 {
		t.Errorf("Y = %v, want %v", rate.Y, sens)
	}
	if math.Abs(rate.Z - -32768*sens) > 1e-9 {
		t.Errorf("Z = %v, want %v", rate.Z, -32768*sens)
	}
}

func TestReadTemperatureIsSigned(t *testing.T) {
	conn := newFakeConn()
	d := New(conn)
	conn.regs[RegOutTemp] = 0xE8

	temp, err := d.ReadTemperature()
	if err != nil {
		t.Fatalf("ReadTemperature: %v", err)
	}
	if temp != -24 {
		t.Errorf("temperature = %d, want -24", temp)
	}
}

func TestBusErrorsPropagate(t *testing.T) {
	cause := errors.New("spi transfer failed")
	conn := newFakeConn()
	conn.failAll = cause
	d := New(conn)

	if err := d.Init(); !errors.Is(err, cause) {
		t.Errorf("Init error = %v, want wrapped bus cause", err)
	}
	if err := d.SetFullScale(Scale500dps); !errors.Is(err, cause) {
		t.Errorf("SetFullScale error = %v, want wrapped bus cause", err)
	}
	if d.FullScale() != Scale250dps {
		t.Error("scale changed even though the register write failed")
	}
	if err := d.SetDataRate(Rate190Hz); !errors.Is(err, cause) {
		t.Errorf("SetDataRate error = %v, want wrapped bus cause", err)
	}
	if _, err := d.DataReady(); !errors.Is(err, cause) {
		t.Errorf("DataReady error = %v, want wrapped bus cause", err)
	}
	if _, err := d.ReadAngularRate(); !errors.Is(err, cause) {
		t.Errorf("ReadAngularRate error = %v, want wrapped bus cause", err)
	}
	if _, err := d.ReadTemperature(); !errors.Is(err, cause) {
		t.Errorf("ReadTemperature error = %v, want wrapped bus cause", err)
	}
}
