package bridge

import (
	"encoding/binary"
	"fmt"
)

// Status is the decoded status / set parameters reply
type Status struct {
	I2CState byte
	Divisor  byte
	ADC      [3]uint16 // GP1, GP2, GP3
}

func parseStatus(rsp []byte) Status {
	s := Status{
		I2CState: rsp[statusI2CState],
		Divisor:  rsp[14],
	}
	for i := range s.ADC {
		s.ADC[i] = binary.LittleEndian.Uint16(rsp[statusADCOffset+2*i:]) & ADCMax
	}
	return s
}

// Status reads the bridge status without changing any parameter
func (d *Device) Status() (Status, error) {
	rsp, err := d.command(newReport(CmdStatus))
	if err != nil {
		return Status{}, err
	}
	return parseStatus(rsp), nil
}

// CancelI2C aborts the current I2C transfer and frees the bus
func (d *Device) CancelI2C() error {
	report := newReport(CmdStatus)
	report[statusCancelOffset] = statusCancel
	_, err := d.command(report)
	return err
}

// SetI2CSpeed sets the I2C clock in Hz
func (d *Device) SetI2CSpeed(hz int) error {
	if hz < MinI2CSpeed || hz > MaxI2CSpeed {
		return fmt.Errorf("%w: %d Hz", ErrInvalidSpeed, hz)
	}
	report := newReport(CmdStatus)
	report[statusSpeedOffset] = statusSetSpeed
	report[statusDivisorOffset] = byte(bridgeClockHz/hz - 3)

	rsp, err := d.command(report)
	if err != nil {
		return err
	}
	// 0x21 in the speed echo means the engine was busy and kept its speed
	if rsp[statusSpeedOffset] != statusSetSpeed {
		return fmt.Errorf("failed to set I2C speed: %w", ErrI2CBusy)
	}
	return nil
}

// idle cancels a stuck transfer left over from an earlier session
func (d *Device) idle() error {
	status, err := d.Status()
	if err != nil {
		return err
	}
	if status.I2CState != i2cIdle {
		return d.CancelI2C()
	}
	return nil
}

// waitIdle polls status until the I2C engine finishes or reports a failure
func (d *Device) waitIdle(addr uint8) error {
	for retry := 0; retry < I2CRetries; retry++ {
		status, err := d.Status()
		if err != nil {
			return err
		}
		switch {
		case status.I2CState == i2cIdle:
			return nil
		case status.I2CState == i2cAddrNACK:
			return fmt.Errorf("%w: 0x%02X", ErrAddressNACK, addr)
		case isTimeoutState(status.I2CState):
			return fmt.Errorf("%w: state 0x%02X", ErrI2CTimeout, status.I2CState)
		}
		d.sleep(I2CRetryInterval)
	}
	return fmt.Errorf("%w: address 0x%02X", ErrI2CTimeout, addr)
}

// I2CWrite writes data to the 7-bit address with a start and stop condition
func (d *Device) I2CWrite(addr uint8, data []byte) error {
	if len(data) == 0 || len(data) > I2CMaxTransfer {
		return fmt.Errorf("%w: %d bytes", ErrTransferSize, len(data))
	}
	if err := d.idle(); err != nil {
		return err
	}

	for pos := 0; pos < len(data); {
		size := min(len(data)-pos, I2CChunkSize)

		report := newReport(CmdI2CWrite)
		binary.LittleEndian.PutUint16(report[1:3], uint16(len(data)))
		report[3] = addr << 1
		copy(report[4:], data[pos:pos+size])

		accepted := false
		for retry := 0; retry < I2CRetries; retry++ {
			rsp, err := d.command(report)
			if err == nil {
				accepted = true
				break
			}
			if rsp == nil {
				return err
			}
			if rsp[2] == i2cAddrNACK {
				return fmt.Errorf("%w: 0x%02X", ErrAddressNACK, addr)
			}
			if isTimeoutState(rsp[2]) {
				return fmt.Errorf("%w: state 0x%02X", ErrI2CTimeout, rsp[2])
			}
			d.sleep(I2CRetryInterval)
		}
		if !accepted {
			return fmt.Errorf("write to 0x%02X: %w", addr, ErrI2CBusy)
		}
		pos += size
	}

	return d.waitIdle(addr)
}

// I2CRead fills p from the 7-bit address with a start and stop condition
func (d *Device) I2CRead(addr uint8, p []byte) error {
	if len(p) == 0 || len(p) > I2CMaxTransfer {
		return fmt.Errorf("%w: %d bytes", ErrTransferSize, len(p))
	}
	if err := d.idle(); err != nil {
		return err
	}

	report := newReport(CmdI2CRead)
	binary.LittleEndian.PutUint16(report[1:3], uint16(len(p)))
	report[3] = addr<<1 | 1
	if _, err := d.command(report); err != nil {
		return fmt.Errorf("read from 0x%02X: %w", addr, err)
	}

	for pos := 0; pos < len(p); {
		n, err := d.readChunk(addr, p[pos:])
		if err != nil {
			return err
		}
		pos += n
	}
	return nil
}

// readChunk fetches the next block of read data, waiting out the engine
// while it is still clocking bytes in
func (d *Device) readChunk(addr uint8, p []byte) (int, error) {
	for retry := 0; retry < I2CRetries; retry++ {
		rsp, err := d.exchange(newReport(CmdI2CData))
		if err != nil {
			return 0, err
		}
		if rsp[2] == i2cAddrNACK {
			return 0, fmt.Errorf("%w: 0x%02X", ErrAddressNACK, addr)
		}
		if isTimeoutState(rsp[2]) {
			return 0, fmt.Errorf("%w: state 0x%02X", ErrI2CTimeout, rsp[2])
		}
		if rsp[1] == i2cPartialData || rsp[3] == i2cReadError || rsp[3] == 0 {
			d.sleep(I2CRetryInterval)
			continue
		}
		if rsp[1] != 0 {
			return 0, &CommandError{Command: CmdI2CData, Code: rsp[1]}
		}

		n := min(int(rsp[3]), I2CChunkSize, len(p))
		copy(p, rsp[4:4+n])
		return n, nil
	}
	return 0, fmt.Errorf("read from 0x%02X: %w", addr, ErrI2CTimeout)
}

// I2C is a bus bound to one chip address on the bridge
type I2C struct {
	dev  *Device
	addr uint8
}

// I2C returns a bus for the 7-bit address
func (d *Device) I2C(addr uint8) *I2C {
	return &I2C{dev: d, addr: addr}
}

// Read implements bus.Bus
func (b *I2C) Read(p []byte) error {
	return b.dev.I2CRead(b.addr, p)
}

// Write implements bus.Bus
func (b *I2C) Write(p []byte) error {
	return b.dev.I2CWrite(b.addr, p)
}

// String identifies the bus in logs
func (b *I2C) String() string {
	return fmt.Sprintf("%s@0x%02X", b.dev, b.addr)
}
