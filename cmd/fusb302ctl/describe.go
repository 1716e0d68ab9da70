package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/oxplot/go-typec-phy/pdmsg"
)

var controlNames = map[pdmsg.Type]string{
	pdmsg.TypeGoodCRC:      "GoodCRC",
	pdmsg.TypeAccept:       "Accept",
	pdmsg.TypeReject:       "Reject",
	pdmsg.TypePing:         "Ping",
	pdmsg.TypePSReady:      "PS_RDY",
	pdmsg.TypeGetSourceCap: "Get_Source_Cap",
	pdmsg.TypeGetSinkCap:   "Get_Sink_Cap",
	pdmsg.TypeWait:         "Wait",
	pdmsg.TypeSoftReset:    "Soft_Reset",
}

var dataNames = map[pdmsg.Type]string{
	pdmsg.TypeSourceCap: "Source_Capabilities",
	pdmsg.TypeRequest:   "Request",
	pdmsg.TypeSinkCap:   "Sink_Capabilities",
}

func typeName(m pdmsg.Message) string {
	names := controlNames
	if m.IsData() {
		names = dataNames
	}
	if n, ok := names[m.Type()]; ok {
		return n
	}
	return fmt.Sprintf("type 0x%02x", uint8(m.Type()))
}

// describeMessage returns a one line summary of the message header.
func describeMessage(m pdmsg.Message) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s id=%d", typeName(m), m.ID())
	if m.IsExtended() {
		b.WriteString(" extended")
	}
	for _, d := range m.Data[:m.DataObjectCount()] {
		fmt.Fprintf(&b, " %08x", d)
	}
	return b.String()
}

// describePDO returns the textual description of a power data object.
func describePDO(p pdmsg.PDO) string {
	switch p.Type() {
	case pdmsg.PDOTypeFixedSupply:
		fs := pdmsg.FixedSupplyPDO(p)
		return fmt.Sprintf("Fixed %.1fV @ max. %.1fA", float32(fs.Voltage())/1000, float32(fs.MaxCurrent())/1000)
	case pdmsg.PDOTypeVariableSupply:
		return "Variable (not supported)"
	case pdmsg.PDOTypePPS:
		pps := pdmsg.PPSPDO(p)
		var powerLimited string
		if pps.IsPowerLimited() {
			powerLimited = " (power limited)"
		}
		minV, maxV, maxC := float32(pps.MinVoltage())/1000, float32(pps.MaxVoltage())/1000, float32(pps.MaxCurrent())/1000
		return fmt.Sprintf("Programmable %.1f-%.1fV @ max. %.1fA%s", minV, maxV, maxC, powerLimited)
	case pdmsg.PDOTypeBattery:
		return "Battery (not supported)"
	case pdmsg.PDOTypeEPRAVS:
		return "EPRAVS (not supported)"
	default:
		return "INVALID!"
	}
}

// printCapabilities writes out the power data objects of a source
// capabilities message, one per line.
func printCapabilities(w io.Writer, m pdmsg.Message) {
	pdos := m.Data[:m.DataObjectCount()]
	fmt.Fprintf(w, "Received %d profiles:\n", len(pdos))
	for i, p := range pdos {
		fmt.Fprintf(w, "  %d) %s\n", i+1, describePDO(pdmsg.PDO(p)))
	}
}
