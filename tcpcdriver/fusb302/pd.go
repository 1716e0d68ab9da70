package fusb302

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/oxplot/go-typec-phy"
	"github.com/oxplot/go-typec-phy/pdmsg"
)

// FIFO tokens
const (
	fifoTokenTxOn    = 0xA1
	fifoTokenSync1   = 0x12
	fifoTokenSync2   = 0x13
	fifoTokenPackSym = 0x80
	fifoTokenJamCRC  = 0xFF
	fifoTokenEOP     = 0x14
	fifoTokenTxOff   = 0xFE

	// Any of the SOP, SOP' and SOP'' receive tokens.
	fifoTokenSOPMask    = 0b1110_0000
	fifoTokenSOPPattern = 0b1110_0000
)

// frameOverhead is the number of tokens around a message: 4 preamble tokens,
// the packet symbol and 4 trailer tokens.
const frameOverhead = 9

const (
	pollInterval = time.Millisecond

	txTimeout        = 15 * time.Millisecond // with auto-retry, up to 3 attempts
	txTimeoutNoRetry = 5 * time.Millisecond
	hardResetTimeout = 5 * time.Millisecond
	rxTimeout        = 20 * time.Millisecond
)

// poll calls check every pollInterval until it reports done or an error, or
// until timeout has passed, in which case ErrTimeout is returned. check is
// called at least once.
func (f *FUSB302) poll(timeout time.Duration, check func() (done bool, err error)) error {
	deadline := f.now().Add(timeout)
	for {
		done, err := check()
		if err != nil {
			return err
		}
		if done {
			return nil
		}
		if !f.now().Before(deadline) {
			return ErrTimeout
		}
		f.sleep(pollInterval)
	}
}

// setOscillator switches the internal oscillator needed by the transmitter.
func (f *FUSB302) setOscillator(on bool) error {
	return f.Modify(RegPower, func(s *FieldSet) { s.SetBool(PowerOscillator, on) })
}

// assemble builds the FIFO frame for msg in the scratch buffer and returns
// its length.
func (f *FUSB302) assemble(msg []byte) (int, error) {
	if frameOverhead+len(msg) > len(f.frame) {
		return 0, fmt.Errorf("%w: %d byte message", ErrLenExceedsBuffer, len(msg))
	}
	b := f.frame[:0]
	b = append(b, fifoTokenSync1, fifoTokenSync1, fifoTokenSync1, fifoTokenSync2)
	b = append(b, fifoTokenPackSym|byte(2+len(msg)))
	b = append(b, msg...)
	b = append(b, fifoTokenJamCRC, fifoTokenEOP, fifoTokenTxOff, fifoTokenTxOn)
	return len(b), nil
}

// Transmit sends msg, made of a PD header and data objects, and waits for the
// port partner to acknowledge it. The CRC is appended by the hardware.
func (f *FUSB302) Transmit(msg []byte) error {
	// Switched off on every return, Init leaves it running.
	defer func() { _ = f.setOscillator(false) }()
	if err := f.setOscillator(true); err != nil {
		return fmt.Errorf("%w: %w", typec.ErrTxDiscarded, err)
	}

	n, err := f.assemble(msg)
	if err != nil {
		return fmt.Errorf("%w: %w", typec.ErrTxDiscarded, err)
	}
	if _, err := f.fifo.Write(f.frame[:n]); err != nil {
		return fmt.Errorf("%w: %w", typec.ErrTxDiscarded, err)
	}

	// Wait until either:
	// - GoodCRC is received: tx successful
	// - Auto retry failed or CC bus was busy: tx discarded
	// - Hard reset received: tx interrupted
	// - Deadline has passed: tx discarded

	timeout := txTimeout
	if !f.retrying {
		timeout = txTimeoutNoRetry
	}
	switch err := f.poll(timeout, f.txDone); {
	case err == nil:
		return nil
	case errors.Is(err, typec.ErrTxHardReset):
		f.log.Warn("hard reset during transmit")
		return err
	default:
		f.log.Debug("transmit discarded", "err", err)
		return fmt.Errorf("%w: %w", typec.ErrTxDiscarded, err)
	}
}

func (f *FUSB302) txDone() (bool, error) {
	a, err := f.Read(RegInterruptA)
	if err != nil {
		return false, err
	}
	switch {
	case a.Bool(InterruptATxSent):
		f.ack(RegInterruptA, InterruptATxSent)
		return true, nil
	case a.Bool(InterruptARetryFail):
		f.ack(RegInterruptA, InterruptARetryFail)
		return false, ErrRetriesExhausted
	case a.Bool(InterruptAHardRst):
		return false, typec.ErrTxHardReset
	}
	i, err := f.Read(RegInterrupt)
	if err != nil {
		return false, err
	}
	if i.Bool(InterruptCollision) {
		f.ack(RegInterrupt, InterruptCollision)
		return false, ErrCollision
	}
	return false, nil
}

// TransmitHardReset sends hard reset signalling to the port partner.
func (f *FUSB302) TransmitHardReset() error {
	if err := f.Modify(RegControl3, func(s *FieldSet) { s.SetBool(Control3SendHardReset, true) }); err != nil {
		return fmt.Errorf("%w: %w", typec.ErrTxDiscarded, err)
	}
	err := f.poll(hardResetTimeout, func() (bool, error) {
		a, err := f.Read(RegInterruptA)
		if err != nil {
			return false, err
		}
		if a.Bool(InterruptAHardSent) {
			f.ack(RegInterruptA, InterruptAHardSent)
			return true, nil
		}
		return false, nil
	})
	if err != nil {
		f.log.Debug("hard reset discarded", "err", err)
		return fmt.Errorf("%w: %w", typec.ErrTxDiscarded, err)
	}
	return nil
}

// Receive waits for a message that passed the hardware CRC check and copies
// its header and data objects into buf.
func (f *FUSB302) Receive(buf []byte) (int, error) {
	if err := f.poll(rxTimeout, f.rxReady); err != nil {
		if errors.Is(err, typec.ErrRxHardReset) {
			f.log.Warn("hard reset received")
			return 0, err
		}
		return 0, fmt.Errorf("%w: %w", typec.ErrRxDiscarded, err)
	}

	if _, err := io.ReadFull(&f.fifo, f.tok[:]); err != nil {
		return 0, fmt.Errorf("%w: %w", typec.ErrRxDiscarded, err)
	}
	if f.tok[0]&fifoTokenSOPMask != fifoTokenSOPPattern {
		_ = f.flushRx()
		f.log.Debug("receive discarded", "token", f.tok[0])
		return 0, fmt.Errorf("%w: %w 0x%02x", typec.ErrRxDiscarded, ErrInvalidToken, f.tok[0])
	}

	// Read the header to learn the number of data objects

	if _, err := io.ReadFull(&f.fifo, f.hdr[:]); err != nil {
		return 0, fmt.Errorf("%w: %w", typec.ErrRxDiscarded, err)
	}
	m := pdmsg.Message{Header: binary.LittleEndian.Uint16(f.hdr[:])}
	dlen := int(m.DataObjectCount()) * 4
	n := 2 + dlen
	if n > len(buf) {
		_ = f.flushRx()
		return 0, fmt.Errorf("%w: %w: %d byte message", typec.ErrRxDiscarded, ErrLenExceedsBuffer, n)
	}
	copy(buf, f.hdr[:])
	if dlen > 0 {
		if _, err := io.ReadFull(&f.fifo, buf[2:n]); err != nil {
			return 0, fmt.Errorf("%w: %w", typec.ErrRxDiscarded, err)
		}
	}

	// Discard the CRC, already checked by the hardware

	if _, err := io.ReadFull(&f.fifo, f.crc[:]); err != nil {
		return 0, fmt.Errorf("%w: %w", typec.ErrRxDiscarded, err)
	}
	return n, nil
}

func (f *FUSB302) rxReady() (bool, error) {
	a, err := f.Read(RegInterruptA)
	if err != nil {
		return false, err
	}
	if a.Bool(InterruptAHardRst) {
		return false, typec.ErrRxHardReset
	}
	i, err := f.Read(RegInterrupt)
	if err != nil {
		return false, err
	}
	if i.Bool(InterruptCRCChk) {
		f.ack(RegInterrupt, InterruptCRCChk)
		return true, nil
	}
	return false, nil
}
