// Package lsm303dlhc provides a driver for ST's LSM303DLHC e-compass, a
// 3-axis accelerometer and 3-axis magnetometer sharing one I2C bus at two
// fixed addresses.
// The datasheet can be found here: https://www.st.com/resource/en/datasheet/lsm303dlhc.pdf
package lsm303dlhc

// The two sub-devices answer at distinct 7-bit addresses on the same bus.
const (
	AccelAddress byte = 0x19 // 0x32 >> 1
	MagAddress   byte = 0x1E // 0x3C >> 1
)

// Accelerometer registers.
const (
	RegAccelCtrl1  byte = 0x20 // power mode, data rate, axis enables
	RegAccelCtrl2  byte = 0x21 // high-pass filter
	RegAccelCtrl3  byte = 0x22 // interrupt routing
	RegAccelCtrl4  byte = 0x23 // full scale, high-resolution mode
	RegAccelCtrl5  byte = 0x24 // FIFO
	RegAccelCtrl6  byte = 0x25
	RegAccelStatus byte = 0x27
	RegAccelOutXL  byte = 0x28 // six data registers, X low first, little-endian
)

// Magnetometer registers. The axis data registers are laid out X, Z, Y —
// not X, Y, Z — with the high byte of each pair first.
const (
	RegMagCRA    byte = 0x00 // temperature enable, data rate
	RegMagCRB    byte = 0x01 // gain
	RegMagMR     byte = 0x02 // conversion mode
	RegMagOutXH  byte = 0x03 // start of X, Z, Y big-endian data
	RegMagSR     byte = 0x09
	RegMagTempH  byte = 0x31 // 12-bit temperature, left-justified big-endian
	RegMagTempL  byte = 0x32
)

const (
	// Accelerometer init values: normal power, 100 Hz, all axes (CTRL1);
	// high-resolution continuous-update output, +/-2g (CTRL4).
	accelCtrl1Init byte = 0x57
	accelCtrl4Init byte = 0x08

	// The MSB of an accelerometer sub-address enables register
	// auto-increment for burst transfers. The magnetometer always
	// auto-increments.
	accelAutoIncrement byte = 0x80

	accelStatusZYXDA    byte = 0x08 // new data on all three axes
	accelCtrl4ScaleMask byte = 0xCF // bits 4-5 select full scale
	accelCtrl1RateMask  byte = 0x0F // bits 4-7 select data rate

	// Magnetometer init values: temperature sensor on at 15 Hz (CRA),
	// +/-1.3 gauss gain (CRB), continuous conversion (MR).
	magCRAInit byte = 0x90
	magCRBInit byte = 0x20
	magMRInit  byte = 0x00
	magMRSleep byte = 0x03

	magSRDataReady byte = 0x01 // DRDY
	magCRARateMask byte = 0xE3 // bits 2-4 select data rate
)

// AccelScale selects the accelerometer range written to CTRL_REG4_A bits 4-5.
type AccelScale byte

const (
	Scale2g  AccelScale = 0x00
	Scale4g  AccelScale = 0x10
	Scale8g  AccelScale = 0x20
	Scale16g AccelScale = 0x30
)

// Sensitivity returns the conversion factor for the range in milli-g per LSB
// of the 12-bit right-aligned value.
func (s AccelScale) Sensitivity() float64 {
	switch s {
	case Scale4g:
		return 2.0
	case Scale8g:
		return 4.0
	case Scale16g:
		return 12.0
	default: // Scale2g
		return 1.0
	}
}

func (s AccelScale) String() string {
	switch s {
	case Scale4g:
		return "4g"
	case Scale8g:
		return "8g"
	case Scale16g:
		return "16g"
	default:
		return "2g"
	}
}

// MagGain selects the magnetometer range written to CRB_REG_M. The Z-axis
// coil is built with a different sensitivity than X/Y, so each gain carries
// two conversion constants.
type MagGain byte

const (
	Gain1_3 MagGain = 0x20 // +/-1.3 gauss
	Gain1_9 MagGain = 0x40
	Gain2_5 MagGain = 0x60
	Gain4_0 MagGain = 0x80
	Gain4_7 MagGain = 0xA0
	Gain5_6 MagGain = 0xC0
	Gain8_1 MagGain = 0xE0
)

// SensitivityXY returns the X/Y conversion divisor in LSB per gauss.
func (g MagGain) SensitivityXY() float64 {
	switch g {
	case Gain1_9:
		return 855
	case Gain2_5:
		return 670
	case Gain4_0:
		return 450
	case Gain4_7:
		return 400
	case Gain5_6:
		return 330
	case Gain8_1:
		return 230
	default: // Gain1_3
		return 1100
	}
}

// SensitivityZ returns the Z conversion divisor in LSB per gauss.
func (g MagGain) SensitivityZ() float64 {
	switch g {
	case Gain1_9:
		return 760
	case Gain2_5:
		return 600
	case Gain4_0:
		return 400
	case Gain4_7:
		return 355
	case Gain5_6:
		return 295
	case Gain8_1:
		return 205
	default: // Gain1_3
		return 980
	}
}

func (g MagGain) String() string {
	switch g {
	case Gain1_9:
		return "1.9gauss"
	case Gain2_5:
		return "2.5gauss"
	case Gain4_0:
		return "4.0gauss"
	case Gain4_7:
		return "4.7gauss"
	case Gain5_6:
		return "5.6gauss"
	case Gain8_1:
		return "8.1gauss"
	default:
		return "1.3gauss"
	}
}

// AccelDataRate selects the accelerometer output rate written to CTRL_REG1_A
// bits 4-7.
type AccelDataRate byte

const (
	AccelPowerDown AccelDataRate = 0x00
	AccelRate1Hz   AccelDataRate = 0x10
	AccelRate10Hz  AccelDataRate = 0x20
	AccelRate25Hz  AccelDataRate = 0x30
	AccelRate50Hz  AccelDataRate = 0x40
	AccelRate100Hz AccelDataRate = 0x50
	AccelRate200Hz AccelDataRate = 0x60
	AccelRate400Hz AccelDataRate = 0x70
)

// MagDataRate selects the magnetometer output rate written to CRA_REG_M
// bits 2-4.
type MagDataRate byte

const (
	MagRate0_75Hz MagDataRate = 0x00
	MagRate1_5Hz  MagDataRate = 0x04
	MagRate3Hz    MagDataRate = 0x08
	MagRate7_5Hz  MagDataRate = 0x0C
	MagRate15Hz   MagDataRate = 0x10
	MagRate30Hz   MagDataRate = 0x14
	MagRate75Hz   MagDataRate = 0x18
	MagRate220Hz  MagDataRate = 0x1C
)
