package bridge

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"testing"
	"time"

	"github.com/herlein/pubradio/pkg/registers"
	"github.com/herlein/pubradio/pkg/sim"
	"github.com/herlein/pubradio/pkg/tuner"
	"github.com/retroenv/retrogolib/assert"
)

// emulator answers HID reports the way an MCP2221A does, with a sim.Chip
// on its I2C port
type emulator struct {
	chip *sim.Chip
	addr uint8

	state   byte
	divisor byte
	partial int // get-data polls answered as still reading
	busy    int // write reports refused as busy
	written []byte
	pending []byte

	gpio   [PinCount]byte
	design [PinCount]byte
	adc    [3]uint16
	adcRef byte

	requests []byte
}

func newEmulator() *emulator {
	return &emulator{chip: sim.NewChip(), addr: 0x10}
}

func (e *emulator) Transfer(ctx context.Context, report []byte) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	e.requests = append(e.requests, report[0])

	rsp := make([]byte, ReportSize)
	rsp[0] = report[0]

	switch report[0] {
	case CmdStatus:
		if report[statusCancelOffset] == statusCancel {
			e.state = i2cIdle
			e.pending = nil
			e.written = nil
		}
		if report[statusSpeedOffset] == statusSetSpeed {
			e.divisor = report[statusDivisorOffset]
			rsp[statusSpeedOffset] = statusSetSpeed
		}
		rsp[statusI2CState] = e.state
		rsp[14] = e.divisor
		for i, v := range e.adc {
			binary.LittleEndian.PutUint16(rsp[statusADCOffset+2*i:], v)
		}

	case CmdI2CWrite:
		if e.busy > 0 {
			e.busy--
			rsp[1] = 0x01
			return rsp, nil
		}
		if report[3]>>1 != e.addr {
			e.state = i2cAddrNACK
			return rsp, nil
		}
		total := int(binary.LittleEndian.Uint16(report[1:3]))
		n := min(total-len(e.written), I2CChunkSize)
		e.written = append(e.written, report[4:4+n]...)
		if len(e.written) == total {
			_ = e.chip.Write(e.written)
			e.written = nil
		}

	case CmdI2CRead:
		if report[3]>>1 != e.addr {
			e.state = i2cAddrNACK
			return rsp, nil
		}
		e.pending = make([]byte, binary.LittleEndian.Uint16(report[1:3]))
		_ = e.chip.Read(e.pending)

	case CmdI2CData:
		if e.state == i2cAddrNACK {
			rsp[1] = i2cPartialData
			rsp[2] = i2cAddrNACK
			return rsp, nil
		}
		if e.partial > 0 {
			e.partial--
			rsp[1] = i2cPartialData
			rsp[2] = i2cReadPartial
			return rsp, nil
		}
		n := min(len(e.pending), I2CChunkSize)
		rsp[2] = i2cReadComplete
		rsp[3] = byte(n)
		copy(rsp[4:], e.pending[:n])
		e.pending = e.pending[n:]

	case CmdGPIOSet:
		for pin := 0; pin < PinCount; pin++ {
			i := 2 + 4*pin
			if report[i] == alterValue {
				e.gpio[pin] = report[i+1]
			}
		}

	case CmdGPIOGet:
		for pin := 0; pin < PinCount; pin++ {
			if e.design[pin]&0x07 != gpModeGPIO {
				rsp[2+2*pin] = gpioNotGPIO
				rsp[3+2*pin] = gpioNotGPIO
				continue
			}
			rsp[2+2*pin] = e.gpio[pin]
			rsp[3+2*pin] = e.design[pin] >> 3 & 1
		}

	case CmdSRAMSet:
		if report[sramAlterGP] == alterValue {
			copy(e.design[:], report[sramGPOffset:sramGPOffset+PinCount])
		}
		if report[sramADCRef]&0x80 != 0 {
			e.adcRef = report[sramADCRef] & 0x7F
		}

	case CmdSRAMGet:
		copy(rsp[sramGetGPOffset:], e.design[:])

	default:
		rsp[1] = 0xFF
	}
	return rsp, nil
}

func newTestDevice(t *testing.T) (*Device, *emulator) {
	t.Helper()
	emu := newEmulator()
	dev := NewDevice(emu)
	dev.Sleep = func(time.Duration) {}
	return dev, emu
}

func TestTunerOverBridge(t *testing.T) {
	dev, emu := newTestDevice(t)

	seq := tuner.New(registers.NewShadow(dev.I2C(emu.addr)))
	seq.Delay = func(time.Duration) {}

	assert.NoError(t, seq.PowerUp(tuner.Settings{Channel: 9, Volume: 0x0F}))
	assert.True(t, emu.chip.Enabled())
	assert.Equal(t, uint16(9), emu.chip.Register(registers.CHANNEL))
	assert.Equal(t, uint16(0x0F), emu.chip.Register(registers.SYSCONFIG2)&registers.Sys2VolumeMask)
	assert.Equal(t, 1, emu.chip.Reads())

	assert.NoError(t, seq.TuneDirect(10))
	assert.Equal(t, uint16(10), emu.chip.Register(registers.CHANNEL))
}

func TestI2CWriteChunks(t *testing.T) {
	dev, emu := newTestDevice(t)

	data := make([]byte, 2*I2CChunkSize+4)
	for i := range data {
		data[i] = byte(i)
	}
	assert.NoError(t, dev.I2CWrite(emu.addr, data))

	writes := 0
	for _, cmd := range emu.requests {
		if cmd == CmdI2CWrite {
			writes++
		}
	}
	assert.Equal(t, 3, writes)
	assert.Equal(t, 1, len(emu.chip.Writes()))
	assert.Equal(t, 0, len(emu.written))
}

func TestI2CReadChunks(t *testing.T) {
	dev, emu := newTestDevice(t)
	emu.partial = 3

	p := make([]byte, 100)
	assert.NoError(t, dev.I2CRead(emu.addr, p))

	// Reads start at STATUSRSSI and wrap through the register file
	assert.Equal(t, byte(sim.DeviceID>>8), p[registers.Offset(registers.DEVICEID)])
	assert.Equal(t, byte(sim.DeviceID), p[registers.Offset(registers.DEVICEID)+1])
	assert.True(t, bytes.Equal(p[0:32], p[32:64]))
	assert.Equal(t, 0, len(emu.pending))
}

func TestI2CAddressNACK(t *testing.T) {
	dev, emu := newTestDevice(t)

	err := dev.I2CWrite(0x22, []byte{0x00, 0x01})
	assert.True(t, errors.Is(err, ErrAddressNACK))

	err = dev.I2CRead(0x22, make([]byte, 2))
	assert.True(t, errors.Is(err, ErrAddressNACK))

	// The stuck engine is cancelled before the next transfer
	assert.NoError(t, dev.I2CWrite(emu.addr, make([]byte, 12)))
	assert.Equal(t, byte(i2cIdle), emu.state)
}

func TestI2CWriteRetriesBusy(t *testing.T) {
	dev, emu := newTestDevice(t)
	emu.busy = 2

	assert.NoError(t, dev.I2CWrite(emu.addr, make([]byte, 12)))
	assert.Equal(t, 1, len(emu.chip.Writes()))

	emu.busy = I2CRetries
	err := dev.I2CWrite(emu.addr, make([]byte, 12))
	assert.True(t, errors.Is(err, ErrI2CBusy))
}

func TestI2CTransferSize(t *testing.T) {
	dev, _ := newTestDevice(t)
	assert.True(t, errors.Is(dev.I2CWrite(0x10, nil), ErrTransferSize))
	assert.True(t, errors.Is(dev.I2CRead(0x10, nil), ErrTransferSize))
}

func TestSetI2CSpeed(t *testing.T) {
	dev, emu := newTestDevice(t)

	assert.NoError(t, dev.SetI2CSpeed(DefaultI2CSpeed))
	assert.Equal(t, byte(117), emu.divisor)

	status, err := dev.Status()
	assert.NoError(t, err)
	assert.Equal(t, byte(117), status.Divisor)

	assert.True(t, errors.Is(dev.SetI2CSpeed(1000000), ErrInvalidSpeed))
}

func TestButtonAndLED(t *testing.T) {
	dev, emu := newTestDevice(t)

	button, err := dev.OpenButton(0)
	assert.NoError(t, err)
	led, err := dev.OpenLED(3)
	assert.NoError(t, err)
	assert.Equal(t, byte(dirInput<<3), emu.design[0])
	assert.Equal(t, byte(dirOutput), emu.design[3])

	emu.gpio[0] = 1
	assert.True(t, button.Level())
	emu.gpio[0] = 0
	assert.False(t, button.Level())

	assert.NoError(t, led.SetDuty(0xFF))
	assert.Equal(t, byte(1), emu.gpio[3])

	before := len(emu.requests)
	assert.NoError(t, led.SetDuty(0xC0))
	assert.Equal(t, before, len(emu.requests))

	assert.NoError(t, led.SetDuty(0x10))
	assert.Equal(t, byte(0), emu.gpio[3])
}

func TestGPIOErrors(t *testing.T) {
	dev, emu := newTestDevice(t)

	_, err := dev.GPIO(4)
	assert.True(t, errors.Is(err, ErrInvalidPin))

	emu.design[1] = gpModeADC
	_, err = dev.GPIO(1)
	assert.True(t, errors.Is(err, ErrNotGPIO))

	// An unreadable button reports released
	b := &Button{dev: dev, pin: 1}
	assert.True(t, b.Level())
}

func TestVoltmeter(t *testing.T) {
	dev, emu := newTestDevice(t)

	_, err := dev.OpenVoltmeter(0, VRef2V048)
	assert.True(t, errors.Is(err, ErrNotADCCapable))

	vm, err := dev.OpenVoltmeter(2, VRef2V048)
	assert.NoError(t, err)
	assert.Equal(t, byte(gpModeADC|dirInput<<3), emu.design[2])
	assert.Equal(t, byte(VRef2V048), emu.adcRef)

	vm.Scale = 2
	emu.adc[1] = ADCMax
	volts, err := vm.SampleVoltage()
	assert.NoError(t, err)
	assert.Equal(t, 4.096, volts)

	emu.adc[1] = 0
	volts, err = vm.SampleVoltage()
	assert.NoError(t, err)
	assert.Equal(t, 0.0, volts)
}

func TestCommandErrors(t *testing.T) {
	dev, _ := newTestDevice(t)

	_, err := dev.command(newReport(0x22))
	var cmdErr *CommandError
	assert.True(t, errors.As(err, &cmdErr))
	assert.Equal(t, byte(0x22), cmdErr.Command)
	assert.Equal(t, byte(0xFF), cmdErr.Code)
}

type echoLink struct {
	reply []byte
}

func (l echoLink) Transfer(context.Context, []byte) ([]byte, error) {
	return l.reply, nil
}

func TestExchangeChecksReply(t *testing.T) {
	dev := NewDevice(echoLink{reply: make([]byte, 8)})
	_, err := dev.Status()
	assert.True(t, errors.Is(err, ErrShortReport))

	dev = NewDevice(echoLink{reply: newReport(CmdGPIOGet)})
	_, err = dev.Status()
	assert.True(t, errors.Is(err, ErrEcho))
}

func TestSelector(t *testing.T) {
	devices := []*Device{
		{Serial: "A1", Bus: 1, Address: 4},
		{Serial: "B2", Bus: 1, Address: 7},
		{Serial: "B2", Bus: 2, Address: 3},
	}

	tests := []struct {
		selector DeviceSelector
		want     *Device
		rest     int
		wantErr  bool
	}{
		{selector: "", want: devices[0], rest: 2},
		{selector: "#2", want: devices[2], rest: 2},
		{selector: "#3", wantErr: true, rest: 3},
		{selector: "1:7", want: devices[1], rest: 2},
		{selector: "9:9", wantErr: true, rest: 3},
		{selector: "A1", want: devices[0], rest: 2},
		{selector: "B2", wantErr: true, rest: 3},
	}

	for _, tt := range tests {
		t.Run(string(tt.selector), func(t *testing.T) {
			sel, err := parseSelector(tt.selector)
			assert.NoError(t, err)

			got, rest, err := sel.pick(devices)
			assert.Equal(t, tt.rest, len(rest))
			if tt.wantErr {
				assert.Error(t, err)
				assert.True(t, got == nil)
				return
			}
			assert.NoError(t, err)
			assert.True(t, got == tt.want)
		})
	}

	for _, bad := range []DeviceSelector{"#x", "#-1", "x:1", "1:y"} {
		_, err := parseSelector(bad)
		assert.Error(t, err)
	}

	_, _, err := selection{}.pick(nil)
	assert.True(t, errors.Is(err, ErrNotFound))
}
