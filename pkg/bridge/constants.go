package bridge

import "time"

// USB Device Identifiers
const (
	VendorID  = 0x04D8
	ProductID = 0x00DD // MCP2221 / MCP2221A
)

// USB Endpoint Configuration
const (
	HIDInterface = 2 // vendor HID interface, after the CDC pair
	HIDEndpoint  = 3 // EP3 IN (0x83) and EP3 OUT (0x03)
	ReportSize   = 64
)

// USB Timeouts
const (
	USBDefaultTimeout = 1000 * time.Millisecond
)

// HID command codes
const (
	CmdStatus   = 0x10 // Status / set parameters
	CmdI2CData  = 0x40 // Read back data from a completed I2C read
	CmdGPIOSet  = 0x50 // Set GPIO output values and directions
	CmdGPIOGet  = 0x51 // Get GPIO values
	CmdSRAMSet  = 0x60 // Set runtime settings
	CmdSRAMGet  = 0x61 // Get runtime settings
	CmdReset    = 0x70 // Reset the chip
	CmdI2CWrite = 0x90 // I2C write with start and stop
	CmdI2CRead  = 0x91 // I2C read with start and stop
)

// Status / set parameters request offsets
const (
	statusCancelOffset  = 2
	statusSpeedOffset   = 3
	statusDivisorOffset = 4

	statusCancel   = 0x10
	statusSetSpeed = 0x20
)

// Status response offsets
const (
	statusI2CState  = 8
	statusADCOffset = 50 // three little-endian 10-bit samples, GP1 to GP3
)

// I2C engine states reported in the status response
const (
	i2cIdle          = 0x00
	i2cAddrNACK      = 0x25
	i2cPartialData   = 0x41
	i2cWriteNoStop   = 0x45
	i2cReadPartial   = 0x54
	i2cReadComplete  = 0x55
	i2cReadError     = 0x7F
	i2cStartTimeout  = 0x12
	i2cReadTimeout   = 0x17
	i2cRepStartTmout = 0x23
	i2cAddrTimeout   = 0x44
	i2cStopTimeout   = 0x52
	i2cWriteTimeout  = 0x62
)

// I2C transfer limits
const (
	I2CChunkSize     = 60 // payload bytes per report
	I2CMaxTransfer   = 0xFFFF
	DefaultI2CSpeed  = 100000
	MinI2CSpeed      = 46875
	MaxI2CSpeed      = 400000
	bridgeClockHz    = 12000000
	I2CRetries       = 50
	I2CRetryInterval = 300 * time.Microsecond
)

// GPIO
const (
	PinCount = 4

	gpioNotGPIO = 0xEE // value byte for a pin not designated GPIO
	alterValue  = 0xFF

	dirOutput = 0x00
	dirInput  = 0x01
)

// Runtime setting offsets used for pin designation and ADC reference
const (
	sramADCRef      = 5 // request: ADC voltage reference, bit 7 alters
	sramAlterGP     = 7 // request: 0xFF alters the GP designations
	sramGPOffset    = 8 // request: GP0 - GP3 designations
	sramGetGPOffset = 22

	gpModeGPIO = 0x00
	gpModeADC  = 0x02
)

// VRef selects the ADC voltage reference
type VRef uint8

const (
	VRefVDD   VRef = 0x00
	VRef1V024 VRef = 0x03
	VRef2V048 VRef = 0x05
	VRef4V096 VRef = 0x07
)

// Volts returns the reference voltage, with vdd standing in for VRefVDD
func (r VRef) Volts(vdd float64) float64 {
	switch r {
	case VRef1V024:
		return 1.024
	case VRef2V048:
		return 2.048
	case VRef4V096:
		return 4.096
	default:
		return vdd
	}
}

// ADCMax is the full-scale ADC reading
const ADCMax = 1023
