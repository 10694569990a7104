// Package l3gd20 provides a driver for ST's L3GD20 three-axis angular rate
// sensor, attached over SPI (clock idle high, data captured on the second
// edge, up to 10 MHz).
// The datasheet can be found here: https://www.st.com/resource/en/datasheet/l3gd20.pdf
package l3gd20

const (
	RegWhoAmI    byte = 0x0F // identity register
	RegCtrl1     byte = 0x20 // power, data rate/bandwidth, axis enables
	RegCtrl2     byte = 0x21 // high-pass filter
	RegCtrl3     byte = 0x22 // interrupt routing
	RegCtrl4     byte = 0x23 // full-scale selection, data update mode
	RegCtrl5     byte = 0x24 // FIFO and output path
	RegReference byte = 0x25
	RegOutTemp   byte = 0x26 // temperature, 1 LSB/degC, two's complement
	RegStatus    byte = 0x27
	RegOutXL     byte = 0x28 // start of the six axis data registers, X low first
	RegOutXH     byte = 0x29
	RegOutYL     byte = 0x2A
	RegOutYH     byte = 0x2B
	RegOutZL     byte = 0x2C
	RegOutZH     byte = 0x2D
)

const (
	// WHO_AM_I responses. 0xD4 is the L3GD20; some silicon revisions
	// (L3GD20H) answer 0xD7 instead and otherwise behave the same here.
	ChipID        byte = 0xD4
	ChipIDVariant byte = 0xD7

	// CTRL_REG1 power-up value: normal mode, all three axes enabled,
	// data rate left at the 95 Hz default.
	ctrl1PowerUp   byte = 0x0F
	ctrl1PowerDown byte = 0x00

	// STATUS_REG ZYXDA: new data available on all three axes.
	statusZYXDA byte = 0x08

	ctrl1RateMask  byte = 0x0F // bits 4-7 select rate/bandwidth
	ctrl4ScaleMask byte = 0xCF // bits 4-5 select full scale
)

// FullScale selects the measurement range written to CTRL_REG4 bits 4-5.
type FullScale byte

const (
	Scale250dps  FullScale = 0x00
	Scale500dps  FullScale = 0x10
	Scale2000dps FullScale = 0x20
)

// Sensitivity returns the conversion factor for the range, in millidegrees
// per second per LSB. Keeping the constant on the setting means the value
// written to CTRL_REG4 and the factor used for conversion can never drift
// apart.
func (s FullScale) Sensitivity() float64 {
	switch s {
	case Scale500dps:
		return 17.5
	case Scale2000dps:
		return 70.0
	default: // Scale250dps
		return 8.75
	}
}

func (s FullScale) String() string {
	switch s {
	case Scale500dps:
		return "500dps"
	case Scale2000dps:
		return "2000dps"
	default:
		return "250dps"
	}
}

// DataRate selects the output data rate and bandwidth cutoff written to
// CTRL_REG1 bits 4-7.
type DataRate byte

const (
	Rate95Hz     DataRate = 0x00 // 95 Hz, 12.5 Hz cutoff
	Rate95Hz25   DataRate = 0x10 // 95 Hz, 25 Hz cutoff
	Rate190Hz    DataRate = 0x40 // 190 Hz, 12.5 Hz cutoff
	Rate190Hz25  DataRate = 0x50
	Rate190Hz50  DataRate = 0x60
	Rate190Hz70  DataRate = 0x70
	Rate380Hz    DataRate = 0x80 // 380 Hz, 20 Hz cutoff
	Rate380Hz25  DataRate = 0x90
	Rate380Hz50  DataRate = 0xA0
	Rate380Hz100 DataRate = 0xB0
	Rate760Hz    DataRate = 0xC0 // 760 Hz, 30 Hz cutoff
	Rate760Hz35  DataRate = 0xD0
	Rate760Hz50  DataRate = 0xE0
	Rate760Hz100 DataRate = 0xF0
)
