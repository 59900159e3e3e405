package config

// EEPROM record layout
const (
	RecordSize    = 16
	WorkingOffset = 0x00 // mutable record read at boot
	FactoryOffset = 0x10 // write-once recovery baseline

	// MinMemorySize is the smallest image that holds both records
	MinMemorySize = FactoryOffset + RecordSize
)

// Field offsets within a record. Multi-byte fields are little-endian.
const (
	FieldBand       = 0
	FieldDeEmphasis = 1
	FieldSpacing    = 2
	FieldChannel    = 3
	FieldVolume     = 5
	FieldReserved   = 6
	FieldCRC        = 14

	// CoveredSize is the number of leading bytes protected by the CRC
	CoveredSize = FieldCRC
)
