package tuner

import "time"

// Settle delays mandated between power-up and tune steps
const (
	// OscillatorSettle follows enabling the crystal oscillator (AN230 2.1.1
	// recommends no less than 500 ms).
	OscillatorSettle = 500 * time.Millisecond

	// PowerUpSettle follows setting the ENABLE bit
	PowerUpSettle = 110 * time.Millisecond

	// TuneSettle follows a tune request before the TUNE bit is cleared
	TuneSettle = 160 * time.Millisecond
)

// MaxVolume is the largest value of the four-bit volume field (0 dBFS)
const MaxVolume = 0x0F
