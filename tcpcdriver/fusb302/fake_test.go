package fusb302

import (
	"errors"
	"time"
)

func bit(f Field) byte {
	return 1 << f.Pos
}

type regWrite struct {
	addr uint8
	val  byte
}

// fakeChip simulates a FUSB302 on the other end of the I2C bus. Interrupt
// registers clear the bits written as 1; control bits that the chip clears
// by itself read back as 0.
type fakeChip struct {
	regs [0x44]byte

	cc1, cc2 BCLevel // BC level seen when measuring each line

	rxFIFO        []byte
	fifoReadBytes int
	txFrames      [][]byte

	txs        int // total bus transactions
	writes     []regWrite
	swResets   int
	pdResets   int
	rxFlushes  int
	hardResets int

	// Raised on the matching events, if set.
	onTxFrame   func(c *fakeChip, frame []byte)
	onHardReset func(c *fakeChip)

	// fail, if set, is consulted before every transaction.
	fail func(w, r []byte) error
}

var errBus = errors.New("nack")

func newFakeChip() *fakeChip {
	c := &fakeChip{}
	c.regs[RegDeviceID.Addr] = 0x91 // version B, revision 1
	return c
}

func (c *fakeChip) Tx(addr uint16, w, r []byte) error {
	c.txs++
	if addr != uint16(FUSB302BMPX.I2CAddress()) {
		return errBus
	}
	if c.fail != nil {
		if err := c.fail(w, r); err != nil {
			return err
		}
	}
	if r == nil {
		c.write(w[0], w[1:])
		return nil
	}
	c.read(w[0], r)
	return nil
}

func (c *fakeChip) write(addr uint8, data []byte) {
	if addr == FIFOAddr {
		frame := append([]byte(nil), data...)
		c.txFrames = append(c.txFrames, frame)
		if c.onTxFrame != nil {
			c.onTxFrame(c, frame)
		}
		return
	}
	for _, v := range data {
		c.writes = append(c.writes, regWrite{addr, v})
		switch addr {
		case RegInterruptA.Addr, RegInterruptB.Addr, RegInterrupt.Addr:
			c.regs[addr] &^= v
		case RegReset.Addr:
			if v&bit(ResetSWRes) != 0 {
				c.swResets++
				id := c.regs[RegDeviceID.Addr]
				c.regs = [0x44]byte{}
				c.regs[RegDeviceID.Addr] = id
			}
			if v&bit(ResetPDReset) != 0 {
				c.pdResets++
			}
		case RegControl1.Addr:
			if v&bit(Control1RxFlush) != 0 {
				c.rxFlushes++
				c.rxFIFO = nil
			}
			c.regs[addr] = v &^ bit(Control1RxFlush)
		case RegControl3.Addr:
			c.regs[addr] = v &^ bit(Control3SendHardReset)
			if v&bit(Control3SendHardReset) != 0 {
				c.hardResets++
				if c.onHardReset != nil {
					c.onHardReset(c)
				}
			}
		default:
			c.regs[addr] = v
		}
	}
}

func (c *fakeChip) read(addr uint8, r []byte) {
	if addr == FIFOAddr {
		n := copy(r, c.rxFIFO)
		c.rxFIFO = c.rxFIFO[n:]
		for i := n; i < len(r); i++ {
			r[i] = 0
		}
		c.fifoReadBytes += len(r)
		return
	}
	v := c.regs[addr]
	if addr == RegStatus0.Addr {
		v &^= 0b11
		sw := c.regs[RegSwitches0.Addr]
		switch {
		case sw&bit(Switches0MeasCC1) != 0:
			v |= byte(c.cc1)
		case sw&bit(Switches0MeasCC2) != 0:
			v |= byte(c.cc2)
		}
	}
	r[0] = v
}

// raise sets interrupt bit f of register r.
func (c *fakeChip) raise(r *Register, f Field) {
	c.regs[r.Addr] |= bit(f)
}

func (c *fakeChip) has(r *Register, f Field) bool {
	return c.regs[r.Addr]&bit(f) != 0
}

// writesTo returns the values written to register r, in order.
func (c *fakeChip) writesTo(r *Register) []byte {
	var v []byte
	for _, w := range c.writes {
		if w.addr == r.Addr {
			v = append(v, w.val)
		}
	}
	return v
}

// fakeClock advances only when slept on.
type fakeClock struct {
	t       time.Time
	slept   time.Duration
	onSleep func()
}

func (c *fakeClock) now() time.Time {
	return c.t
}

func (c *fakeClock) sleep(d time.Duration) {
	c.t = c.t.Add(d)
	c.slept += d
	if c.onSleep != nil {
		c.onSleep()
	}
}

func newTestDevice() (*FUSB302, *fakeChip, *fakeClock) {
	chip := newFakeChip()
	clk := &fakeClock{t: time.Unix(0, 0)}
	f := New(chip, FUSB302BMPX)
	f.sleep = clk.sleep
	f.now = clk.now
	return f, chip, clk
}
