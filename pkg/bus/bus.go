// Package bus defines the two-wire transfer primitive the tuner is driven over.
//
// The Si470x family does not take a register pointer on the wire: reads always
// begin at the chip's first readable register and writes always begin at its
// first writable register. A Bus is therefore bound to one device address and
// only moves raw byte runs.
package bus

// Bus is a blocking transfer primitive bound to a single chip address.
type Bus interface {
	// Read fills p starting at the chip's implicit read start register.
	Read(p []byte) error

	// Write sends p starting at the chip's implicit write start register.
	Write(p []byte) error
}
