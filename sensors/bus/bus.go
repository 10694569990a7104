// Package bus provides uniform register-level access to sensor chips attached
// over SPI or I2C. Drivers talk to a Conn and never see the wire protocol
// underneath; the two implementations here frame the transactions the way the
// ST motion sensors expect them.
package bus

import (
	"fmt"

	"github.com/kidoman/embd"
)

const (
	// SPI address-byte flags. The MSB selects read (1) or write (0); the
	// next bit down asks the device to auto-increment the register address
	// during multi-byte transfers.
	spiReadFlag      byte = 0x80
	spiAutoIncrement byte = 0x40
	spiWriteMask     byte = 0x7F
)

// TransactionError reports a failed bus transfer. A transaction either
// completes in full or returns one of these; partial transfers are never
// surfaced as data.
type TransactionError struct {
	Op  string // "read", "write" or "burst"
	Reg byte
	Err error
}

func (e *TransactionError) Error() string {
	return fmt.Sprintf("bus: %s register 0x%02X: %s", e.Op, e.Reg, e.Err.Error())
}

func (e *TransactionError) Unwrap() error { return e.Err }

// Conn is a register-level connection to a single device. Implementations are
// not safe for concurrent use; each Conn has exactly one owner.
type Conn interface {
	// ReadReg reads a single register.
	ReadReg(reg byte) (byte, error)
	// ReadBurst reads len(buf) consecutive registers starting at reg,
	// relying on device auto-increment within one framed transaction.
	ReadBurst(reg byte, buf []byte) error
	// WriteReg writes a single register.
	WriteReg(reg, value byte) error
	// Close releases the underlying bus handle.
	Close() error
}

// SPIConn adapts an embd SPI bus to register transactions. The device's
// chip-select stays asserted for the whole address+data frame because each
// call maps to a single full-duplex transfer.
type SPIConn struct {
	bus embd.SPIBus
}

// NewSPIConn takes ownership of b. No other code may use b afterwards.
func NewSPIConn(b embd.SPIBus) *SPIConn {
	return &SPIConn{bus: b}
}

func (c *SPIConn) ReadReg(reg byte) (byte, error) {
	frame := []byte{reg | spiReadFlag, 0x00}
	if err := c.bus.TransferAndReceiveData(frame); err != nil {
		return 0, &TransactionError{Op: "read", Reg: reg, Err: err}
	}
	return frame[1], nil
}

func (c *SPIConn) ReadBurst(reg byte, buf []byte) error {
	addr := reg | spiReadFlag
	if len(buf) > 1 {
		addr |= spiAutoIncrement
	}
	frame := make([]byte, len(buf)+1)
	frame[0] = addr
	if err := c.bus.TransferAndReceiveData(frame); err != nil {
		return &TransactionError{Op: "burst", Reg: reg, Err: err}
	}
	copy(buf, frame[1:])
	return nil
}

func (c *SPIConn) WriteReg(reg, value byte) error {
	frame := []byte{reg & spiWriteMask, value}
	if err := c.bus.TransferAndReceiveData(frame); err != nil {
		return &TransactionError{Op: "write", Reg: reg, Err: err}
	}
	return nil
}

func (c *SPIConn) Close() error {
	return c.bus.Close()
}

// I2CConn adapts one device address on an embd I2C bus to register
// transactions. Several I2CConns may share a bus (the LSM303DLHC exposes two
// register spaces at two addresses); the bus itself is closed by whoever
// created it, not by the conns.
type I2CConn struct {
	bus  embd.I2CBus
	addr byte
}

func NewI2CConn(b embd.I2CBus, addr byte) *I2CConn {
	return &I2CConn{bus: b, addr: addr}
}

func (c *I2CConn) ReadReg(reg byte) (byte, error) {
	v, err := c.bus.ReadByteFromReg(c.addr, reg)
	if err != nil {
		return 0, &TransactionError{Op: "read", Reg: reg, Err: err}
	}
	return v, nil
}

func (c *I2CConn) ReadBurst(reg byte, buf []byte) error {
	if err := c.bus.ReadFromReg(c.addr, reg, buf); err != nil {
		return &TransactionError{Op: "burst", Reg: reg, Err: err}
	}
	return nil
}

func (c *I2CConn) WriteReg(reg, value byte) error {
	if err := c.bus.WriteByteToReg(c.addr, reg, value); err != nil {
		return &TransactionError{Op: "write", Reg: reg, Err: err}
	}
	return nil
}

// Close is a no-op: the shared I2C bus outlives the conn.
func (c *I2CConn) Close() error { return nil }
