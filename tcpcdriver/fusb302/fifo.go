package fusb302

import (
	"github.com/oxplot/go-typec-phy/tcpcdriver"
)

// fifoStagingSize is the size of the buffer a FIFO write is staged in,
// including the leading address byte.
const fifoStagingSize = 64

// FIFO is the byte stream channel to the chip's transmit and receive FIFOs.
// Writes go to the transmit FIFO and reads come from the receive FIFO. The
// channel imposes no framing.
//
// FIFO implements io.Reader and io.Writer. Each call is a single bus
// transaction; use io.ReadFull where an exact count is needed.
type FIFO struct {
	port tcpcdriver.I2C
	addr uint16
	cmd  [1]byte
	buf  [fifoStagingSize]byte
}

// Write writes p to the transmit FIFO. ErrLenExceedsBuffer is returned
// without touching the bus if p does not fit the staging buffer.
func (q *FIFO) Write(p []byte) (int, error) {
	if 1+len(p) > len(q.buf) {
		return 0, ErrLenExceedsBuffer
	}
	q.buf[0] = FIFOAddr
	copy(q.buf[1:], p)
	if err := q.port.Tx(q.addr, q.buf[:1+len(p)], nil); err != nil {
		return 0, &BusError{Op: "write", Addr: FIFOAddr, Err: err}
	}
	return len(p), nil
}

// Read reads len(p) bytes from the receive FIFO.
func (q *FIFO) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	q.cmd[0] = FIFOAddr
	if err := q.port.Tx(q.addr, q.cmd[:], p); err != nil {
		return 0, &BusError{Op: "read", Addr: FIFOAddr, Err: err}
	}
	return len(p), nil
}

// Flush is a no-op, written bytes reach the chip before Write returns.
func (q *FIFO) Flush() error {
	return nil
}
