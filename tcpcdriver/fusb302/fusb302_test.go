package fusb302

import (
	"errors"
	"reflect"
	"testing"
	"time"
)

func TestInit(t *testing.T) {
	f, chip, clk := newTestDevice()
	chip.cc1, chip.cc2 = BCLevel660To1230mV, BCLevel200To660mV

	if err := f.Init(); err != nil {
		t.Fatalf("Init() error = %v", err)
	}

	want := []regWrite{
		{RegReset.Addr, 0x01},
		{RegPower.Addr, 0x0F},
		{RegMask.Addr, 0x00},
		{RegMaskA.Addr, 0x00},
		{RegMaskB.Addr, 0x00},
		{RegControl0.Addr, 0x00},
		{RegControl3.Addr, 0x05}, // auto retry, 2 retries
		{RegControl1.Addr, 0x04}, // rx flush
		{RegSwitches0.Addr, 0x07},
		{RegSwitches0.Addr, 0x0B},
		{RegSwitches1.Addr, 0x25}, // specrev 2.0, auto crc, tx on cc1
		{RegSwitches0.Addr, 0x07},
		{RegReset.Addr, 0x02},
	}
	if !reflect.DeepEqual(chip.writes, want) {
		t.Errorf("Init() writes\n got %v\nwant %v", chip.writes, want)
	}
	if chip.swResets != 1 || chip.pdResets != 1 || chip.rxFlushes != 1 {
		t.Errorf("resets = %d sw, %d pd, %d rx flushes, want 1 each", chip.swResets, chip.pdResets, chip.rxFlushes)
	}
	if clk.slept < 30*time.Millisecond {
		t.Errorf("Init() slept %v, want at least 30ms", clk.slept)
	}
	if f.CCPin() != CC1 {
		t.Errorf("CCPin() = %v, want CC1", f.CCPin())
	}
}

func TestInitCCSelection(t *testing.T) {
	tests := []struct {
		cc1, cc2 BCLevel
		want     CCPin
	}{
		{BCLevel660To1230mV, BCLevel200To660mV, CC1},
		{BCLevel200To660mV, BCLevel660To1230mV, CC2},
		{BCLevelAbove1230mV, BCLevelBelow200mV, CC1},
		{BCLevelBelow200mV, BCLevelAbove1230mV, CC2},
		{BCLevel200To660mV, BCLevel200To660mV, CC2},
		{BCLevelBelow200mV, BCLevelBelow200mV, CC2},
	}
	for _, tt := range tests {
		t.Run(tt.cc1.String()+"/"+tt.cc2.String(), func(t *testing.T) {
			f, chip, _ := newTestDevice()
			chip.cc1, chip.cc2 = tt.cc1, tt.cc2
			if err := f.Init(); err != nil {
				t.Fatalf("Init() error = %v", err)
			}
			if f.CCPin() != tt.want {
				t.Errorf("CCPin() = %v, want %v", f.CCPin(), tt.want)
			}
			sw1, _ := FieldSetFromBytes(RegSwitches1, chip.regs[RegSwitches1.Addr:RegSwitches1.Addr+1])
			if sw1.Bool(Switches1TxCC1) != (tt.want == CC1) || sw1.Bool(Switches1TxCC2) != (tt.want == CC2) {
				t.Errorf("switches1 = 0b%08b, want tx on %v only", sw1.Raw(), tt.want)
			}
			if !sw1.Bool(Switches1AutoCRC) {
				t.Error("auto crc not enabled")
			}
			sw0, _ := FieldSetFromBytes(RegSwitches0, chip.regs[RegSwitches0.Addr:RegSwitches0.Addr+1])
			if sw0.Bool(Switches0MeasCC1) != (tt.want == CC1) || sw0.Bool(Switches0MeasCC2) != (tt.want == CC2) {
				t.Errorf("switches0 = 0b%08b, want measure on %v only", sw0.Raw(), tt.want)
			}
		})
	}
}

func TestInitUnexpectedDevice(t *testing.T) {
	for _, id := range []byte{0x00, 0x71, 0xB1, 0xFF} {
		f, chip, _ := newTestDevice()
		chip.regs[RegDeviceID.Addr] = id
		err := f.Init()
		if !errors.Is(err, ErrUnexpectedDevice) {
			t.Errorf("Init() with id 0x%02x error = %v, want %v", id, err, ErrUnexpectedDevice)
		}
		var ce *ConversionError
		if !errors.As(err, &ce) {
			t.Errorf("Init() with id 0x%02x error = %v, want *ConversionError inside", id, err)
		}
		if want := []regWrite{{RegReset.Addr, 0x01}}; !reflect.DeepEqual(chip.writes, want) {
			t.Errorf("Init() with id 0x%02x writes = %v, want only the reset", id, chip.writes)
		}
		if f.CCPin() != CCNone {
			t.Errorf("CCPin() = %v, want None", f.CCPin())
		}
	}
}

func TestInitAbortsOnBusError(t *testing.T) {
	f, chip, _ := newTestDevice()
	chip.fail = func(w, r []byte) error {
		if r == nil && w[0] == RegControl3.Addr {
			return errBus
		}
		return nil
	}
	err := f.Init()
	var be *BusError
	if !errors.As(err, &be) || be.Addr != RegControl3.Addr {
		t.Fatalf("Init() error = %v, want *BusError on control3", err)
	}
	if n := len(chip.writesTo(RegSwitches0)); n != 0 {
		t.Errorf("switches0 written %d times after failure", n)
	}
	if f.CCPin() != CCNone {
		t.Errorf("CCPin() = %v, want None", f.CCPin())
	}
}

func TestInitWithoutAutoRetry(t *testing.T) {
	f, chip, _ := newTestDevice()
	f.SetAutoRetry(false)
	if err := f.Init(); err != nil {
		t.Fatal(err)
	}
	if got := chip.writesTo(RegControl3); len(got) != 1 || got[0] != 0 {
		t.Errorf("control3 writes = %v, want [0]", got)
	}
}

func TestDeviceID(t *testing.T) {
	f, chip, _ := newTestDevice()
	chip.regs[RegDeviceID.Addr] = 0b1010_0110
	id, err := f.DeviceID()
	if err != nil {
		t.Fatal(err)
	}
	want := DeviceIdentity{Version: VersionC, Product: 1, Revision: 2}
	if id != want {
		t.Errorf("DeviceID() = %+v, want %+v", id, want)
	}
}

func TestStatus(t *testing.T) {
	f, chip, _ := newTestDevice()
	chip.cc2 = BCLevelAbove1230mV
	chip.regs[RegSwitches0.Addr] = bit(Switches0MeasCC2)
	chip.raise(RegStatus0, Status0VBusOK)
	s, err := f.Status()
	if err != nil {
		t.Fatal(err)
	}
	if want := (Status{VBusOK: true, BCLevel: BCLevelAbove1230mV}); s != want {
		t.Errorf("Status() = %+v, want %+v", s, want)
	}
}
