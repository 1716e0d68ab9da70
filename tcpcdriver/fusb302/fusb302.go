// Package fusb302 implements a register level driver and USB power delivery
// physical layer transport for the FUSB302B type-C port controller from
// ONSemi.
//
// The register map is described declaratively by the Reg* and field
// variables and accessed through Read, Write and Modify. PD messages are
// exchanged through the chip's FIFO by Transmit, TransmitHardReset and
// Receive, which implement typec.PHY.
package fusb302

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/oxplot/go-typec-phy"
	"github.com/oxplot/go-typec-phy/pdmsg"
	"github.com/oxplot/go-typec-phy/tcpcdriver"
)

// MPN represents the manufacturer part number
type MPN uint8

// I2CAddress returns the I2C address of the FUSB302.
func (m MPN) I2CAddress() uint8 {
	return uint8(m)
}

// Manufacturer part numbers
const (
	FUSB302BUCX   MPN = 0b100010
	FUSB302BMPX   MPN = 0b100010
	FUSB302VMPX   MPN = 0b100010
	FUSB302B01MPX MPN = 0b100011
	FUSB302B10MPX MPN = 0b100100
	FUSB302B11MPX MPN = 0b100101
)

// CCPin identifies one of the two configuration channel lines.
type CCPin uint8

// CC lines. CCNone is reported before a successful Init.
const (
	CCNone CCPin = iota
	CC1
	CC2
)

func (p CCPin) String() string {
	switch p {
	case CCNone:
		return "None"
	case CC1:
		return "CC1"
	case CC2:
		return "CC2"
	default:
		return "INVALID"
	}
}

const (
	resetSettleTime = 10 * time.Millisecond // after software reset
	ccMeasureTime   = 10 * time.Millisecond // per CC line probe

	// Number of hardware retries mandated by the PD spec (nRetryCount).
	pdRetryCount RetryCount = 2
)

// FUSB302 represents a FUSB302B port controller. FUSB302 is not safe for
// concurrent use. If an operation is abandoned halfway, Init must be called
// again before further use.
type FUSB302 struct {
	port tcpcdriver.I2C
	addr uint16
	log  *slog.Logger

	autoRetry bool
	retrying  bool // auto_retry as written to control3 by the last Init
	cc        CCPin

	// Swapped out in tests.
	sleep func(time.Duration)
	now   func() time.Time

	// Buffers used for register transactions and framing, defined once here
	// instead to avoid heap allocations in each method used.
	reg   [1 + RegisterBytes]byte
	fifo  FIFO
	frame [frameOverhead + pdmsg.MaxMessageBytes]byte
	tok   [1]byte
	hdr   [2]byte
	crc   [4]byte
}

var _ typec.PHY = (*FUSB302)(nil)

// New creates a new controller and allocates all necessary memory for all
// future operations. Init must be called before the controller is used.
//
// I2C port must have <=1Mhz frequency.
func New(port tcpcdriver.I2C, mpn MPN) *FUSB302 {
	f := &FUSB302{
		port:      port,
		addr:      uint16(mpn.I2CAddress()),
		autoRetry: true,
		sleep:     time.Sleep,
		now:       time.Now,
	}
	f.fifo.port = port
	f.fifo.addr = f.addr
	f.SetLogger(nil)
	return f
}

// SetLogger sets the logger used to report bring-up progress and transport
// failures. Passing nil disables logging.
func (f *FUSB302) SetLogger(l *slog.Logger) {
	if l == nil {
		l = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	f.log = l.With("component", "fusb302")
}

// SetAutoRetry enables or disables hardware auto-retry of transmitted
// messages. It is enabled by default. The setting takes effect on the next
// call to Init, and until then Transmit keeps waiting as long as the chip is
// configured to retry.
func (f *FUSB302) SetAutoRetry(on bool) {
	f.autoRetry = on
}

// FIFO returns the transmit/receive buffer channel of the chip.
func (f *FUSB302) FIFO() *FIFO {
	return &f.fifo
}

// CCPin returns the CC line selected by the last successful Init.
func (f *FUSB302) CCPin() CCPin {
	return f.cc
}

// DeviceIdentity is the decoded content of the device ID register.
type DeviceIdentity struct {
	Version  Version
	Product  uint8 // 0 for FUSB302B, 1 to 3 for FUSB302B01/10/11
	Revision uint8 // 0 for revision A onwards
}

// DeviceID reads the device ID register. ErrUnexpectedDevice is returned if
// the version is not one of the known silicon versions.
func (f *FUSB302) DeviceID() (DeviceIdentity, error) {
	s, err := f.Read(RegDeviceID)
	if err != nil {
		return DeviceIdentity{}, err
	}
	v, err := GetEnum[Version](s, DeviceIDVersion)
	if err != nil {
		return DeviceIdentity{}, fmt.Errorf("%w 0x%02x: %w", ErrUnexpectedDevice, s.Raw(), err)
	}
	return DeviceIdentity{
		Version:  v,
		Product:  s.Uint(DeviceIDProduct),
		Revision: s.Uint(DeviceIDRevision),
	}, nil
}

// Status is a snapshot of the attach related fields of the status0 register.
type Status struct {
	VBusOK  bool    // VBUS above the vSafe5V threshold
	BCLevel BCLevel // voltage on the measured CC line
}

// Status reads the current VBUS and CC line state. The BC level hints at the
// current advertised by a non-PD source: 200-660mV default USB power,
// 660-1230mV 1.5A and above 1230mV 3A.
func (f *FUSB302) Status() (Status, error) {
	s, err := f.Read(RegStatus0)
	if err != nil {
		return Status{}, err
	}
	lvl, err := GetEnum[BCLevel](s, Status0BCLvl)
	if err != nil {
		return Status{}, err
	}
	return Status{VBusOK: s.Bool(Status0VBusOK), BCLevel: lvl}, nil
}

// Init resets the chip and brings it up in sink mode with the CC line that
// has a source attached selected for PD communication. Init returns the first
// error encountered, after which the chip state is undefined.
func (f *FUSB302) Init() error {
	f.cc = CCNone
	f.retrying = false

	// Reset the chip and registers to default

	if err := f.set(RegReset, func(s *FieldSet) { s.SetBool(ResetSWRes, true) }); err != nil {
		return err
	}
	f.sleep(resetSettleTime)

	// Make sure we're talking to a FUSB302

	id, err := f.DeviceID()
	if err != nil {
		return err
	}
	f.log.Debug("device identified", "version", id.Version, "product", id.Product, "revision", id.Revision)

	// Turn on all power

	if err := f.set(RegPower, func(s *FieldSet) {
		s.SetBool(PowerBandgap, true)
		s.SetBool(PowerReceiver, true)
		s.SetBool(PowerMeasure, true)
		s.SetBool(PowerOscillator, true)
	}); err != nil {
		return err
	}

	// Unmask all interrupts

	for _, r := range []*Register{RegMask, RegMaskA, RegMaskB} {
		if err := f.Write(r, NewFieldSet(r)); err != nil {
			return err
		}
	}
	if err := f.Modify(RegControl0, func(s *FieldSet) { s.SetBool(Control0IntMask, false) }); err != nil {
		return err
	}

	// Hardware retries only. Soft and hard resets are left to the policy
	// engine.

	if err := f.set(RegControl3, func(s *FieldSet) {
		if f.autoRetry {
			s.SetBool(Control3AutoRetry, true)
			SetEnum(s, Control3NRetries, pdRetryCount)
		}
		s.SetBool(Control3AutoSoftReset, false)
		s.SetBool(Control3AutoHardReset, false)
	}); err != nil {
		return err
	}
	f.retrying = f.autoRetry

	if err := f.flushRx(); err != nil {
		return err
	}

	cc, err := f.detectCC()
	if err != nil {
		return err
	}

	// Clear PD state left over from probing

	if err := f.set(RegReset, func(s *FieldSet) { s.SetBool(ResetPDReset, true) }); err != nil {
		return err
	}
	f.cc = cc
	f.log.Debug("initialized", "cc", cc, "auto_retry", f.retrying)
	return nil
}

// measureCC enables pull-downs on both CC lines and the measure block on
// pin.
func (f *FUSB302) measureCC(pin CCPin) error {
	return f.set(RegSwitches0, func(s *FieldSet) {
		s.SetBool(Switches0PDWN1, true)
		s.SetBool(Switches0PDWN2, true)
		s.SetBool(Switches0MeasCC1, pin == CC1)
		s.SetBool(Switches0MeasCC2, pin == CC2)
	})
}

func (f *FUSB302) probeCC(pin CCPin) (BCLevel, error) {
	if err := f.measureCC(pin); err != nil {
		return 0, err
	}
	f.sleep(ccMeasureTime)
	s, err := f.Read(RegStatus0)
	if err != nil {
		return 0, err
	}
	return GetEnum[BCLevel](s, Status0BCLvl)
}

// detectCC selects the CC line with the higher voltage, which is the one
// pulled up by the source. Equal levels select CC2.
func (f *FUSB302) detectCC() (CCPin, error) {
	cc1, err := f.probeCC(CC1)
	if err != nil {
		return CCNone, err
	}
	cc2, err := f.probeCC(CC2)
	if err != nil {
		return CCNone, err
	}
	pin := CC2
	if cc1 > cc2 {
		pin = CC1
	}
	f.log.Debug("cc probed", "cc1", cc1, "cc2", cc2, "selected", pin)

	// Enable tx and GoodCRC responses on the detected CC line

	if err := f.set(RegSwitches1, func(s *FieldSet) {
		s.SetBool(Switches1TxCC1, pin == CC1)
		s.SetBool(Switches1TxCC2, pin == CC2)
		s.SetBool(Switches1AutoCRC, true)
		SetEnum(s, Switches1SpecRev, SpecRev20)
	}); err != nil {
		return CCNone, err
	}
	if err := f.measureCC(pin); err != nil {
		return CCNone, err
	}
	return pin, nil
}

// flushRx empties the receive FIFO.
func (f *FUSB302) flushRx() error {
	return f.Modify(RegControl1, func(s *FieldSet) { s.SetBool(Control1RxFlush, true) })
}
