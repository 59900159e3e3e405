// Package config manages the CRC protected tuner configuration records kept
// in non-volatile memory: a working record read at boot and a factory record
// it is recovered from.
package config

import (
	"encoding/binary"
	"fmt"

	"github.com/snksoft/crc"
)

// Record is one persisted configuration
type Record struct {
	Band       Band    `json:"band"`
	DeEmphasis bool    `json:"de_emphasis"`
	Spacing    Spacing `json:"spacing"`
	Channel    uint16  `json:"channel"`
	Volume     uint8   `json:"volume"`
	Reserved   [8]byte `json:"-"`
}

// LastResort is the compiled-in image that seeds a corrupt factory slot:
// channel 9, volume 15, CRC 0x6C6F.
var LastResort = [RecordSize]byte{
	0x00, 0x00, 0x00, 0x09, 0x00, 0x0F,
	0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
	0x6F, 0x6C,
}

// Checksum computes the CRC-16 (poly 0xA001 reflected, init 0) of p.
// Over a complete valid record, CRC field included, the result is zero.
func Checksum(p []byte) uint16 {
	return uint16(crc.CalculateCRC(crc.CRC16, p))
}

// Encode serializes the record and appends its checksum
func (r Record) Encode() [RecordSize]byte {
	var b [RecordSize]byte
	b[FieldBand] = byte(r.Band)
	if r.DeEmphasis {
		b[FieldDeEmphasis] = 1
	}
	b[FieldSpacing] = byte(r.Spacing)
	binary.LittleEndian.PutUint16(b[FieldChannel:], r.Channel)
	b[FieldVolume] = r.Volume
	copy(b[FieldReserved:FieldCRC], r.Reserved[:])
	binary.LittleEndian.PutUint16(b[FieldCRC:], Checksum(b[:CoveredSize]))
	return b
}

// Valid reports whether b holds a record with a matching checksum
func Valid(b []byte) bool {
	return len(b) >= RecordSize && Checksum(b[:RecordSize]) == 0
}

// Decode parses a record. The fields are returned even when the checksum
// fails, together with ErrBadCRC.
func Decode(b []byte) (Record, error) {
	if len(b) < RecordSize {
		return Record{}, fmt.Errorf("%w: %d bytes", ErrShortRecord, len(b))
	}

	r := Record{
		Band:       Band(b[FieldBand]),
		DeEmphasis: b[FieldDeEmphasis] != 0,
		Spacing:    Spacing(b[FieldSpacing]),
		Channel:    binary.LittleEndian.Uint16(b[FieldChannel:]),
		Volume:     b[FieldVolume],
	}
	copy(r.Reserved[:], b[FieldReserved:FieldCRC])

	if !Valid(b) {
		return r, ErrBadCRC
	}
	return r, nil
}

// FrequencyMHz returns the frequency the record's channel maps to
func (r Record) FrequencyMHz() float64 {
	return FrequencyMHz(r.Band, r.Spacing, r.Channel)
}

func (r Record) String() string {
	return fmt.Sprintf("%.2f MHz (band %s, spacing %s, channel %d, volume %d)",
		r.FrequencyMHz(), r.Band, r.Spacing, r.Channel, r.Volume)
}
