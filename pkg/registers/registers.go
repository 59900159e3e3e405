package registers

// Register is an Si4702 register number as addressed by the chip (0x0 - 0xF)
type Register uint8

// Register numbers
const (
	DEVICEID   Register = 0x0
	CHIPID     Register = 0x1
	POWERCFG   Register = 0x2
	CHANNEL    Register = 0x3
	SYSCONFIG1 Register = 0x4
	SYSCONFIG2 Register = 0x5
	SYSCONFIG3 Register = 0x6
	TEST1      Register = 0x7
	TEST2      Register = 0x8 // Reserved
	BOOTCONFIG Register = 0x9 // Reserved
	STATUSRSSI Register = 0xA
	READCHAN   Register = 0xB
	RDSA       Register = 0xC
	RDSB       Register = 0xD
	RDSC       Register = 0xE
	RDSD       Register = 0xF
)

// Register file geometry
const (
	Count     = 16 // registers on the chip
	ImageSize = 32 // bytes in the shadow image, two per register

	// ReadStart is where every chip read begins; reads wrap from 0xF to 0x0.
	ReadStart = STATUSRSSI

	// WriteStart and WriteEnd bound the only span the firmware ever writes.
	WriteStart = POWERCFG
	WriteEnd   = TEST1
	WriteCount = int(WriteEnd-WriteStart) + 1
)

// Address is the fixed 7-bit bus address of the Si4702 ("0010000")
const Address = 0x10

// offsets maps a chip register number to its byte offset in the shadow image.
// The image starts at ReadStart so a full read lands in it without reordering.
var offsets = [Count]uint8{
	DEVICEID:   12,
	CHIPID:     14,
	POWERCFG:   16,
	CHANNEL:    18,
	SYSCONFIG1: 20,
	SYSCONFIG2: 22,
	SYSCONFIG3: 24,
	TEST1:      26,
	TEST2:      28,
	BOOTCONFIG: 30,
	STATUSRSSI: 0,
	READCHAN:   2,
	RDSA:       4,
	RDSB:       6,
	RDSC:       8,
	RDSD:       10,
}

// Offset returns the byte offset of reg in the shadow image.
// Only the low four bits of reg are significant.
func Offset(reg Register) int {
	return int(offsets[reg&0x0F])
}

// String returns the datasheet name of the register
func (r Register) String() string {
	names := map[Register]string{
		DEVICEID:   "DEVICEID",
		CHIPID:     "CHIPID",
		POWERCFG:   "POWERCFG",
		CHANNEL:    "CHANNEL",
		SYSCONFIG1: "SYSCONFIG1",
		SYSCONFIG2: "SYSCONFIG2",
		SYSCONFIG3: "SYSCONFIG3",
		TEST1:      "TEST1",
		TEST2:      "TEST2",
		BOOTCONFIG: "BOOTCONFIG",
		STATUSRSSI: "STATUSRSSI",
		READCHAN:   "READCHAN",
		RDSA:       "RDSA",
		RDSB:       "RDSB",
		RDSC:       "RDSC",
		RDSD:       "RDSD",
	}
	if name, ok := names[r]; ok {
		return name
	}
	return "UNKNOWN"
}

// POWERCFG (0x2) bits
const (
	PowerDSMUTE  = 0x8000 // Softmute disable
	PowerDMUTE   = 0x4000 // Mute disable
	PowerMONO    = 0x2000 // Force mono
	PowerRDSM    = 0x0800 // RDS verbose mode
	PowerSKMODE  = 0x0400 // Stop seek at band limit
	PowerSEEKUP  = 0x0200 // Seek direction up
	PowerSEEK    = 0x0100 // Start seek
	PowerDISABLE = 0x0040 // Powerup disable
	PowerENABLE  = 0x0001 // Powerup enable
)

// PowerBaseline is the power configuration applied at power-up:
// softmute and mute disabled, forced mono, seek up, enabled.
const PowerBaseline = PowerDSMUTE | PowerDMUTE | PowerMONO | PowerSEEKUP | PowerENABLE

// PowerDown places the chip in powerdown while preserving register state
const PowerDown = PowerDISABLE | PowerENABLE

// CHANNEL (0x3) bits
const (
	ChannelTUNE = 0x8000 // Tune request
	ChannelMask = 0x01FF // Channel number field as driven by the firmware
)

// SYSCONFIG1 (0x4) bits
const (
	Sys1RDSIEN = 0x8000 // RDS interrupt enable
	Sys1STCIEN = 0x4000 // Seek/tune complete interrupt enable
	Sys1RDS    = 0x1000 // RDS enable
	Sys1DE     = 0x0800 // De-emphasis 50us (0 = 75us)
	Sys1AGCD   = 0x0400 // AGC disable
)

// SYSCONFIG2 (0x5) fields
const (
	Sys2SeekThShift = 8
	Sys2SeekThMask  = 0xFF00
	Sys2BandShift   = 6
	Sys2BandMask    = 0x00C0
	Sys2SpaceShift  = 4
	Sys2SpaceMask   = 0x0030
	Sys2VolumeMask  = 0x000F
)

// SYSCONFIG3 (0x6) fields
const (
	Sys3SKSNRShift = 4
	Sys3SKSNRMask  = 0x00F0
	Sys3SKCNTMask  = 0x000F
)

// TEST1 (0x7) bits
const (
	Test1XOSCEN = 0x8000 // Crystal oscillator enable
	Test1AHIZEN = 0x4000 // Audio high-Z enable

	// Test1Reserved is the reserved bit pattern required while powered down
	Test1Reserved = 0x0100
)

// Test1Oscillator enables the crystal oscillator
const Test1Oscillator = Test1XOSCEN | Test1Reserved

// STATUSRSSI (0xA) bits
const (
	StatusRDSR  = 0x8000 // RDS ready
	StatusSTC   = 0x4000 // Seek/tune complete
	StatusSFBL  = 0x2000 // Seek fail / band limit
	StatusAFCRL = 0x1000 // AFC rail
	StatusRDSS  = 0x0800 // RDS synchronized
	StatusST    = 0x0100 // Stereo indicator
	StatusRSSI  = 0x00FF // RSSI field
)

// READCHAN (0xB) field
const ReadChanMask = 0x03FF

// Seek thresholds (see Appendix of SiLabs AN230)
const (
	SeekRSSIThreshold    = 10
	SeekSNRThreshold     = 2
	SeekImpulseThreshold = 4
)

// RegisterMap is a named, serializable snapshot of the full register file
type RegisterMap struct {
	DEVICEID   uint16 `json:"deviceid"`   // 0x0
	CHIPID     uint16 `json:"chipid"`     // 0x1
	POWERCFG   uint16 `json:"powercfg"`   // 0x2
	CHANNEL    uint16 `json:"channel"`    // 0x3
	SYSCONFIG1 uint16 `json:"sysconfig1"` // 0x4
	SYSCONFIG2 uint16 `json:"sysconfig2"` // 0x5
	SYSCONFIG3 uint16 `json:"sysconfig3"` // 0x6
	TEST1      uint16 `json:"test1"`      // 0x7
	TEST2      uint16 `json:"test2"`      // 0x8
	BOOTCONFIG uint16 `json:"bootconfig"` // 0x9
	STATUSRSSI uint16 `json:"statusrssi"` // 0xA
	READCHAN   uint16 `json:"readchan"`   // 0xB
	RDSA       uint16 `json:"rdsa"`       // 0xC
	RDSB       uint16 `json:"rdsb"`       // 0xD
	RDSC       uint16 `json:"rdsc"`       // 0xE
	RDSD       uint16 `json:"rdsd"`       // 0xF
}
