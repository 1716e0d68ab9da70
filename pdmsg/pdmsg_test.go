package pdmsg

import (
	"bytes"
	"errors"
	"testing"
)

func TestHeaderFields(t *testing.T) {
	var m Message
	m.SetType(TypeRequest)
	m.SetDataObjectCount(1)
	m.SetID(5)
	m.SetRevision(Revision30)
	m.SetPowerRole(PowerRoleSource)
	m.SetDataRole(DataRoleDFP)

	if m.Header != 0b0001_1011_1010_0010 {
		t.Fatalf("Header = 0b%016b", m.Header)
	}
	if !m.IsData() || m.Type() != TypeRequest || m.DataObjectCount() != 1 || m.ID() != 5 {
		t.Errorf("decoded type %v, count %d, id %d", m.Type(), m.DataObjectCount(), m.ID())
	}
	if m.Revision() != Revision30 || m.PowerRole() != PowerRoleSource || m.DataRole() != DataRoleDFP {
		t.Errorf("decoded revision %v, power role %v, data role %v", m.Revision(), m.PowerRole(), m.DataRole())
	}
	if m.IsExtended() {
		t.Error("IsExtended() = true")
	}
	m.SetExtended(true)
	if !m.IsExtended() || m.Header&0x7FFF != 0b0001_1011_1010_0010 {
		t.Errorf("SetExtended(true) Header = 0b%016b", m.Header)
	}

	m.SetID(0)
	if m.ID() != 0 || m.DataObjectCount() != 1 {
		t.Errorf("SetID(0) changed other fields: 0b%016b", m.Header)
	}
}

func TestToBytes(t *testing.T) {
	var m Message
	m.SetType(TypeSourceCap)
	m.SetDataObjectCount(2)
	m.Data[0] = 0x0801912C
	m.Data[1] = 0xC1A42164
	m.Data[2] = 0xFFFFFFFF // beyond the count, not serialized

	b := make([]byte, MaxMessageBytes)
	n := m.ToBytes(b)
	want := []byte{0x01, 0x20, 0x2C, 0x91, 0x01, 0x08, 0x64, 0x21, 0xA4, 0xC1}
	if !bytes.Equal(b[:n], want) {
		t.Errorf("ToBytes() = % x, want % x", b[:n], want)
	}

	var got Message
	got.Data[5] = 1
	if err := got.FromBytes(b[:n]); err != nil {
		t.Fatalf("FromBytes() error = %v", err)
	}
	m.Data[2] = 0
	if got != m {
		t.Errorf("FromBytes() = %+v, want %+v", got, m)
	}
}

func TestFromBytesShort(t *testing.T) {
	tests := [][]byte{
		nil,
		{0x01},
		// 2 objects declared, 1 partial
		{0x01, 0x20, 0x2C, 0x91, 0x01},
		// 2 objects declared, 1 and a byte present
		{0x01, 0x20, 0x2C, 0x91, 0x01, 0x08, 0x64},
	}
	for _, b := range tests {
		var m Message
		if err := m.FromBytes(b); !errors.Is(err, ErrShortMessage) {
			t.Errorf("FromBytes(% x) error = %v, want %v", b, err, ErrShortMessage)
		}
	}
}

func TestPDO(t *testing.T) {
	tests := []struct {
		pdo  PDO
		want PDOType
	}{
		{0x0801912C, PDOTypeFixedSupply},
		{0x4000_0000, PDOTypeBattery},
		{0x8000_0000, PDOTypeVariableSupply},
		{0xC1A42164, PDOTypePPS},
		{0xD000_0000, PDOTypeEPRAVS},
	}
	for _, tt := range tests {
		if got := tt.pdo.Type(); got != tt.want {
			t.Errorf("PDO(0x%08x).Type() = %v, want %v", uint32(tt.pdo), got, tt.want)
		}
	}

	// 5V 3A
	f := FixedSupplyPDO(0x0801912C)
	if f.Voltage() != 5000 || f.MaxCurrent() != 3000 {
		t.Errorf("fixed supply = %dmV %dmA, want 5000mV 3000mA", f.Voltage(), f.MaxCurrent())
	}

	// 3.3-21V 5A
	p := PPSPDO(0xC1A42164)
	if p.MinVoltage() != 3300 || p.MaxVoltage() != 21000 || p.MaxCurrent() != 5000 {
		t.Errorf("pps = %d-%dmV %dmA, want 3300-21000mV 5000mA", p.MinVoltage(), p.MaxVoltage(), p.MaxCurrent())
	}
	if p.IsPowerLimited() || !(p | 1<<27).IsPowerLimited() {
		t.Error("IsPowerLimited() does not follow bit 27")
	}
}
