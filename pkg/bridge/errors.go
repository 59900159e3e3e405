package bridge

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound      = errors.New("no MCP2221 devices found")
	ErrShortReport   = errors.New("short HID report")
	ErrEcho          = errors.New("response does not echo the command")
	ErrAddressNACK   = errors.New("I2C address not acknowledged")
	ErrI2CTimeout    = errors.New("I2C transfer timed out")
	ErrI2CBusy       = errors.New("I2C engine busy")
	ErrTransferSize  = errors.New("I2C transfer size out of range")
	ErrInvalidPin    = errors.New("invalid GP pin")
	ErrNotGPIO       = errors.New("pin is not designated GPIO")
	ErrInvalidSpeed  = errors.New("I2C speed out of range")
	ErrNotADCCapable = errors.New("pin has no ADC channel")
)

// CommandError is returned when the bridge rejects a command
type CommandError struct {
	Command byte
	Code    byte
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("command 0x%02X failed with code 0x%02X", e.Command, e.Code)
}

func isTimeoutState(state byte) bool {
	switch state {
	case i2cStartTimeout, i2cReadTimeout, i2cRepStartTmout, i2cAddrTimeout, i2cStopTimeout, i2cWriteTimeout:
		return true
	}
	return false
}
