package fusb302

import (
	"errors"
	"fmt"
)

var (
	// ErrNotSupported is returned when a register is accessed in a direction
	// its access mode does not permit, such as writing a read-only register.
	// No bus transaction is issued in that case.
	ErrNotSupported = errors.New("fusb302: operation not supported")

	// ErrLength is returned when a field set is built from a number of bytes
	// that does not match the register width.
	ErrLength = errors.New("fusb302: length does not match register width")

	// ErrLenExceedsBuffer is returned when data does not fit an internal
	// buffer used to stage a bus transaction or assemble a frame.
	ErrLenExceedsBuffer = errors.New("fusb302: data length exceeds internal buffer size")

	// ErrUnexpectedDevice is returned by Init when the device ID register does
	// not identify a known FUSB302 silicon version.
	ErrUnexpectedDevice = errors.New("fusb302: unexpected device id")

	// ErrTimeout is returned, wrapped in a PD transport error, when the chip
	// did not raise the expected interrupt before the deadline.
	ErrTimeout = errors.New("fusb302: timed out waiting for interrupt")

	// ErrRetriesExhausted is returned, wrapped in typec.ErrTxDiscarded, when
	// hardware auto-retry gave up without receiving GoodCRC.
	ErrRetriesExhausted = errors.New("fusb302: auto-retries exhausted")

	// ErrCollision is returned, wrapped in typec.ErrTxDiscarded, when the CC
	// line was busy and the chip did not transmit.
	ErrCollision = errors.New("fusb302: cc bus collision")

	// ErrInvalidToken is returned, wrapped in typec.ErrRxDiscarded, when the
	// first byte in the receive FIFO is not a start of packet token.
	ErrInvalidToken = errors.New("fusb302: invalid start of packet token")
)

// BusError is returned when an I2C transfer fails. The underlying error is
// available through Unwrap.
type BusError struct {
	Op   string // "read" or "write"
	Addr uint8  // register or FIFO address
	Err  error
}

func (e *BusError) Error() string {
	return fmt.Sprintf("fusb302: i2c %s at 0x%02x: %v", e.Op, e.Addr, e.Err)
}

func (e *BusError) Unwrap() error {
	return e.Err
}

// ConversionError is returned when an enumerated field holds a value that
// is not one of its defined codes.
type ConversionError struct {
	Field string
	Value uint8
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("fusb302: invalid value 0x%x for field %s", e.Value, e.Field)
}
