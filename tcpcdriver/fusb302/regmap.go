package fusb302

// Access is the access mode of a register.
type Access uint8

// Register access modes.
const (
	ReadOnly  Access = 1 << iota // may only be read
	WriteOnly                    // may only be written
	ReadWrite = ReadOnly | WriteOnly
)

// CanRead returns true if registers with this mode may be read.
func (a Access) CanRead() bool { return a&ReadOnly != 0 }

// CanWrite returns true if registers with this mode may be written.
func (a Access) CanWrite() bool { return a&WriteOnly != 0 }

func (a Access) String() string {
	switch a {
	case ReadOnly:
		return "RO"
	case WriteOnly:
		return "WO"
	case ReadWrite:
		return "RW"
	default:
		return "INVALID"
	}
}

// RegisterBytes is the width of every FUSB302 register in bytes.
const RegisterBytes = 1

// Register describes a single 8-bit register of the chip.
type Register struct {
	Name   string
	Addr   uint8
	Access Access
	Fields []Field
}

// FieldKind is the type of value a field holds.
type FieldKind uint8

// Field kinds.
const (
	KindBool FieldKind = iota // single bit
	KindUint                  // raw unsigned integer
	KindEnum                  // one of a closed set of codes
)

// Field is a named bit range within a register. Pos is the position of the
// least significant bit of the field, counting from bit 0 of the register.
//
// Only the field variables of this package, such as Control3AutoRetry, are
// valid arguments to FieldSet methods. Their fields are exported to describe
// the register map and must not be used to build new fields: a Field that
// does not fit within RegisterBytes makes FieldSet methods panic.
type Field struct {
	Name  string
	Pos   uint8
	Width uint8
	Kind  FieldKind
	Codes []uint8 // defined codes, for KindEnum only
}

// valid returns true if v is one of the defined codes of the field. Fields
// other than enums accept any value.
func (f Field) valid(v uint8) bool {
	if f.Kind != KindEnum {
		return true
	}
	for _, c := range f.Codes {
		if c == v {
			return true
		}
	}
	return false
}

func boolField(name string, pos uint8) Field {
	return Field{Name: name, Pos: pos, Width: 1, Kind: KindBool}
}

func uintField(name string, pos, width uint8) Field {
	return Field{Name: name, Pos: pos, Width: width, Kind: KindUint}
}

func enumField(name string, pos, width uint8, codes ...uint8) Field {
	return Field{Name: name, Pos: pos, Width: width, Kind: KindEnum, Codes: codes}
}

// FIFOAddr is the address of the transmit/receive FIFO buffer channel.
const FIFOAddr = 0x43

// Fields of the registers, named after the register they belong to.
var (
	DeviceIDVersion  = enumField("version_id", 4, 4, uint8(VersionA), uint8(VersionB), uint8(VersionC))
	DeviceIDProduct  = uintField("product_id", 2, 2)
	DeviceIDRevision = uintField("revision_id", 0, 2)

	Switches0PUEn2    = boolField("pu_en_2", 7)
	Switches0PUEn1    = boolField("pu_en_1", 6)
	Switches0VConnCC2 = boolField("vconn_cc_2", 5)
	Switches0VConnCC1 = boolField("vconn_cc_1", 4)
	Switches0MeasCC2  = boolField("meas_cc_2", 3)
	Switches0MeasCC1  = boolField("meas_cc_1", 2)
	Switches0PDWN2    = boolField("pdwn_2", 1)
	Switches0PDWN1    = boolField("pdwn_1", 0)

	Switches1PowerRole = boolField("powerrole", 7)
	Switches1SpecRev   = enumField("specrev", 5, 2, uint8(SpecRev10), uint8(SpecRev20))
	Switches1DataRole  = boolField("datarole", 4)
	Switches1AutoCRC   = boolField("auto_crc", 2)
	Switches1TxCC2     = boolField("txcc_2", 1)
	Switches1TxCC1     = boolField("txcc_1", 0)

	MeasureVBus = boolField("meas_vbus", 6)
	MeasureMDAC = uintField("mdac", 0, 6)

	SliceSDACHys = enumField("sdac_hys", 6, 2, uint8(Hysteresis0mV), uint8(Hysteresis85mV), uint8(Hysteresis170mV), uint8(Hysteresis255mV))
	SliceSDAC    = uintField("sdac", 0, 6)

	Control0TxFlush = boolField("tx_flush", 6)
	Control0IntMask = boolField("int_mask", 5)
	Control0HostCur = enumField("host_cur", 2, 2, uint8(HostCurrentNone), uint8(HostCurrentDefault), uint8(HostCurrent1A5), uint8(HostCurrent3A))
	Control0AutoPre = boolField("auto_pre", 1)
	Control0TxStart = boolField("tx_start", 0)

	Control1EnSOP2DB  = boolField("ensop_2_db", 6)
	Control1EnSOP1DB  = boolField("ensop_1_db", 5)
	Control1BISTMode2 = boolField("bist_mode_2", 4)
	Control1RxFlush   = boolField("rx_flush", 2)
	Control1EnSOP2    = boolField("ensop_2", 1)
	Control1EnSOP1    = boolField("ensop_1", 0)

	Control2TogSavePwr = enumField("tog_save_pwr", 6, 2, uint8(TogSavePwrNone), uint8(TogSavePwr40ms), uint8(TogSavePwr80ms), uint8(TogSavePwr160ms))
	Control2TogRdOnly  = boolField("tog_rd_only", 5)
	Control2WakeEn     = boolField("wake_en", 3)
	Control2Mode       = enumField("mode", 1, 2, uint8(ToggleDRP), uint8(ToggleSnk), uint8(ToggleSrc))
	Control2Toggle     = boolField("toggle", 0)

	Control3SendHardReset = boolField("send_hard_reset", 6)
	Control3BISTTMode     = boolField("bist_tmode", 5)
	Control3AutoHardReset = boolField("auto_hardreset", 4)
	Control3AutoSoftReset = boolField("auto_softreset", 3)
	Control3NRetries      = enumField("n_retries", 1, 2, 0, 1, 2, 3)
	Control3AutoRetry     = boolField("auto_retry", 0)

	MaskVBusOK    = boolField("m_vbusok", 7)
	MaskActivity  = boolField("m_activity", 6)
	MaskCompChng  = boolField("m_comp_chng", 5)
	MaskCRCChk    = boolField("m_crc_chk", 4)
	MaskAlert     = boolField("m_alert", 3)
	MaskWake      = boolField("m_wake", 2)
	MaskCollision = boolField("m_collision", 1)
	MaskBCLvl     = boolField("m_bc_lvl", 0)

	PowerOscillator = boolField("pwr_3_internal_oscillator", 3)
	PowerMeasure    = boolField("pwr_2_measure_block", 2)
	PowerReceiver   = boolField("pwr_1_receiver_and_refs", 1)
	PowerBandgap    = boolField("pwr_0_bandgap_and_wake", 0)

	ResetPDReset = boolField("pd_reset", 1)
	ResetSWRes   = boolField("sw_res", 0)

	OCPRegRange = boolField("ocp_range", 3)
	OCPRegCur   = uintField("ocp_cur", 0, 3)

	MaskAOCPTemp   = boolField("m_ocp_temp", 7)
	MaskATogDone   = boolField("m_togdone", 6)
	MaskASoftFail  = boolField("m_softfail", 5)
	MaskARetryFail = boolField("m_retryfail", 4)
	MaskAHardSent  = boolField("m_hardsent", 3)
	MaskATxSent    = boolField("m_txsent", 2)
	MaskASoftRst   = boolField("m_softrst", 1)
	MaskAHardRst   = boolField("m_hardrst", 0)

	MaskBGCRCSent = boolField("m_gcrcsent", 0)

	Control4TogExitAud = boolField("tog_exit_aud", 0)

	Status0ASoftFail  = boolField("softfail", 5)
	Status0ARetryFail = boolField("retryfail", 4)
	Status0APower     = uintField("power", 2, 2)
	Status0ASoftRst   = boolField("softrst", 1)
	Status0AHardRst   = boolField("hardrst", 0)

	Status1ATogSS    = enumField("togss", 3, 3, 0, 1, 2, 5, 6, 7)
	Status1ARxSOP2DB = boolField("rxsop_2_db", 2)
	Status1ARxSOP1DB = boolField("rxsop_1_db", 1)
	Status1ARxSOP    = boolField("rxsop", 0)

	InterruptAOCPTemp   = boolField("i_ocp_temp", 7)
	InterruptATogDone   = boolField("i_togdone", 6)
	InterruptASoftFail  = boolField("i_softfail", 5)
	InterruptARetryFail = boolField("i_retryfail", 4)
	InterruptAHardSent  = boolField("i_hardsent", 3)
	InterruptATxSent    = boolField("i_txsent", 2)
	InterruptASoftRst   = boolField("i_softrst", 1)
	InterruptAHardRst   = boolField("i_hardrst", 0)

	InterruptBGCRCSent = boolField("i_gcrcsent", 0)

	Status0VBusOK   = boolField("vbusok", 7)
	Status0Activity = boolField("activity", 6)
	Status0Comp     = boolField("comp", 5)
	Status0CRCChk   = boolField("crc_chk", 4)
	Status0Alert    = boolField("alert", 3)
	Status0Wake     = boolField("wake", 2)
	Status0BCLvl    = enumField("bc_lvl", 0, 2, uint8(BCLevelBelow200mV), uint8(BCLevel200To660mV), uint8(BCLevel660To1230mV), uint8(BCLevelAbove1230mV))

	Status1RxSOP2  = boolField("rxsop_2", 7)
	Status1RxSOP1  = boolField("rxsop_1", 6)
	Status1RxEmpty = boolField("rx_empty", 5)
	Status1RxFull  = boolField("rx_full", 4)
	Status1TxEmpty = boolField("tx_empty", 3)
	Status1TxFull  = boolField("tx_full", 2)
	Status1OvrTemp = boolField("ovrtemp", 1)
	Status1OCP     = boolField("ocp", 0)

	InterruptVBusOK    = boolField("i_vbusok", 7)
	InterruptActivity  = boolField("i_activity", 6)
	InterruptCompChng  = boolField("i_comp_chng", 5)
	InterruptCRCChk    = boolField("i_crc_chk", 4)
	InterruptAlert     = boolField("i_alert", 3)
	InterruptWake      = boolField("i_wake", 2)
	InterruptCollision = boolField("i_collision", 1)
	InterruptBCLvl     = boolField("i_bc_lvl", 0)
)

// The register map. Interrupt registers are cleared by writing 1 to the bits
// to acknowledge.
var (
	RegDeviceID = &Register{"device_id", 0x01, ReadOnly, []Field{
		DeviceIDVersion, DeviceIDProduct, DeviceIDRevision}}
	RegSwitches0 = &Register{"switches0", 0x02, ReadWrite, []Field{
		Switches0PUEn2, Switches0PUEn1, Switches0VConnCC2, Switches0VConnCC1,
		Switches0MeasCC2, Switches0MeasCC1, Switches0PDWN2, Switches0PDWN1}}
	RegSwitches1 = &Register{"switches1", 0x03, ReadWrite, []Field{
		Switches1PowerRole, Switches1SpecRev, Switches1DataRole, Switches1AutoCRC,
		Switches1TxCC2, Switches1TxCC1}}
	RegMeasure = &Register{"measure", 0x04, ReadWrite, []Field{
		MeasureVBus, MeasureMDAC}}
	RegSlice = &Register{"slice", 0x05, ReadWrite, []Field{
		SliceSDACHys, SliceSDAC}}
	RegControl0 = &Register{"control0", 0x06, ReadWrite, []Field{
		Control0TxFlush, Control0IntMask, Control0HostCur, Control0AutoPre,
		Control0TxStart}}
	RegControl1 = &Register{"control1", 0x07, ReadWrite, []Field{
		Control1EnSOP2DB, Control1EnSOP1DB, Control1BISTMode2, Control1RxFlush,
		Control1EnSOP2, Control1EnSOP1}}
	RegControl2 = &Register{"control2", 0x08, ReadWrite, []Field{
		Control2TogSavePwr, Control2TogRdOnly, Control2WakeEn, Control2Mode,
		Control2Toggle}}
	RegControl3 = &Register{"control3", 0x09, ReadWrite, []Field{
		Control3SendHardReset, Control3BISTTMode, Control3AutoHardReset,
		Control3AutoSoftReset, Control3NRetries, Control3AutoRetry}}
	RegMask = &Register{"mask", 0x0A, ReadWrite, []Field{
		MaskVBusOK, MaskActivity, MaskCompChng, MaskCRCChk, MaskAlert, MaskWake,
		MaskCollision, MaskBCLvl}}
	RegPower = &Register{"power", 0x0B, ReadWrite, []Field{
		PowerOscillator, PowerMeasure, PowerReceiver, PowerBandgap}}
	RegReset = &Register{"reset", 0x0C, WriteOnly, []Field{
		ResetPDReset, ResetSWRes}}
	RegOCPReg = &Register{"ocpreg", 0x0D, ReadWrite, []Field{
		OCPRegRange, OCPRegCur}}
	RegMaskA = &Register{"maska", 0x0E, ReadWrite, []Field{
		MaskAOCPTemp, MaskATogDone, MaskASoftFail, MaskARetryFail, MaskAHardSent,
		MaskATxSent, MaskASoftRst, MaskAHardRst}}
	RegMaskB = &Register{"maskb", 0x0F, ReadWrite, []Field{
		MaskBGCRCSent}}
	RegControl4 = &Register{"control4", 0x10, ReadWrite, []Field{
		Control4TogExitAud}}
	RegStatus0A = &Register{"status0a", 0x3C, ReadOnly, []Field{
		Status0ASoftFail, Status0ARetryFail, Status0APower, Status0ASoftRst,
		Status0AHardRst}}
	RegStatus1A = &Register{"status1a", 0x3D, ReadOnly, []Field{
		Status1ATogSS, Status1ARxSOP2DB, Status1ARxSOP1DB, Status1ARxSOP}}
	RegInterruptA = &Register{"interrupta", 0x3E, ReadWrite, []Field{
		InterruptAOCPTemp, InterruptATogDone, InterruptASoftFail,
		InterruptARetryFail, InterruptAHardSent, InterruptATxSent,
		InterruptASoftRst, InterruptAHardRst}}
	RegInterruptB = &Register{"interruptb", 0x3F, ReadWrite, []Field{
		InterruptBGCRCSent}}
	RegStatus0 = &Register{"status0", 0x40, ReadOnly, []Field{
		Status0VBusOK, Status0Activity, Status0Comp, Status0CRCChk, Status0Alert,
		Status0Wake, Status0BCLvl}}
	RegStatus1 = &Register{"status1", 0x41, ReadOnly, []Field{
		Status1RxSOP2, Status1RxSOP1, Status1RxEmpty, Status1RxFull,
		Status1TxEmpty, Status1TxFull, Status1OvrTemp, Status1OCP}}
	RegInterrupt = &Register{"interrupt", 0x42, ReadWrite, []Field{
		InterruptVBusOK, InterruptActivity, InterruptCompChng, InterruptCRCChk,
		InterruptAlert, InterruptWake, InterruptCollision, InterruptBCLvl}}
)

// Registers lists every register of the chip in address order.
var Registers = []*Register{
	RegDeviceID, RegSwitches0, RegSwitches1, RegMeasure, RegSlice,
	RegControl0, RegControl1, RegControl2, RegControl3, RegMask, RegPower,
	RegReset, RegOCPReg, RegMaskA, RegMaskB, RegControl4,
	RegStatus0A, RegStatus1A, RegInterruptA, RegInterruptB,
	RegStatus0, RegStatus1, RegInterrupt,
}

// Version is the silicon version reported in the device ID register.
type Version uint8

// Known silicon versions.
const (
	VersionA Version = 0b1000
	VersionB Version = 0b1001
	VersionC Version = 0b1010
)

func (v Version) String() string {
	switch v {
	case VersionA:
		return "A"
	case VersionB:
		return "B"
	case VersionC:
		return "C"
	default:
		return "INVALID"
	}
}

// SpecRev is the PD specification revision used in automatic GoodCRC
// responses.
type SpecRev uint8

// Specification revisions.
const (
	SpecRev10 SpecRev = 0
	SpecRev20 SpecRev = 1
)

// ToggleMode selects what the autonomous toggle logic polls for.
type ToggleMode uint8

// Toggle modes.
const (
	ToggleDRP ToggleMode = 1
	ToggleSnk ToggleMode = 2
	ToggleSrc ToggleMode = 3
)

// SDACHysteresis is the hysteresis of the slice comparator.
type SDACHysteresis uint8

// Comparator hysteresis settings.
const (
	Hysteresis0mV   SDACHysteresis = 0
	Hysteresis85mV  SDACHysteresis = 1
	Hysteresis170mV SDACHysteresis = 2
	Hysteresis255mV SDACHysteresis = 3
)

// HostCurrent is the pull-up current sourced on CC when acting as a source.
type HostCurrent uint8

// Host current settings, named after the advertised current.
const (
	HostCurrentNone    HostCurrent = 0
	HostCurrentDefault HostCurrent = 1 // 80uA
	HostCurrent1A5     HostCurrent = 2 // 180uA
	HostCurrent3A      HostCurrent = 3 // 330uA
)

// TogSavePwr is the time the toggle logic waits between toggle cycles.
type TogSavePwr uint8

// Toggle power saving delays.
const (
	TogSavePwrNone  TogSavePwr = 0
	TogSavePwr40ms  TogSavePwr = 1
	TogSavePwr80ms  TogSavePwr = 2
	TogSavePwr160ms TogSavePwr = 3
)

// RetryCount is the number of hardware auto-retries.
type RetryCount uint8

// ToggleState is the state the toggle logic settled to.
type ToggleState uint8

// Toggle states.
const (
	ToggleRunning  ToggleState = 0
	ToggleSrcCC1   ToggleState = 1
	ToggleSrcCC2   ToggleState = 2
	ToggleSnkCC1   ToggleState = 5
	ToggleSnkCC2   ToggleState = 6
	ToggleAudioAcc ToggleState = 7
)

// BCLevel is the coarse comparator reading of the voltage on the measured CC
// line. Levels are ordered, a higher level means a higher voltage.
type BCLevel uint8

// BC levels.
const (
	BCLevelBelow200mV  BCLevel = 0
	BCLevel200To660mV  BCLevel = 1
	BCLevel660To1230mV BCLevel = 2
	BCLevelAbove1230mV BCLevel = 3
)

func (l BCLevel) String() string {
	switch l {
	case BCLevelBelow200mV:
		return "<200mV"
	case BCLevel200To660mV:
		return "200-660mV"
	case BCLevel660To1230mV:
		return "660-1230mV"
	case BCLevelAbove1230mV:
		return ">1230mV"
	default:
		return "INVALID"
	}
}
