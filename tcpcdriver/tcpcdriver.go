// Package tcpcdriver defines the bus interface USB Type-C port controller
// drivers are built on.
//
// The interface matches the I2C types of TinyGo's machine package and of
// periph.io, so either can be passed to a driver as is.
package tcpcdriver

// I2C is the two-wire bus a port controller is attached to. A driver issues
// two kinds of transfers through its single Tx method:
//
//	i2c.Tx(addr, w, nil)
//
// writes w to the device at the 7-bit address addr, and
//
//	i2c.Tx(addr, w, r)
//
// writes w and then, with a repeated start, reads len(r) bytes into r.
//
// Drivers assume exclusive use of the device address. Tx need not be safe
// for concurrent use unless the bus is shared by several drivers.
type I2C interface {
	Tx(addr uint16, w, r []byte) error
}
