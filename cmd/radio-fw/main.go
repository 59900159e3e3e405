//go:build tinygo && rp2040

// radio-fw: Run the radio firmware core on an RP2040 with TinyGo
//
// The Si4702 sits on I2C0 (GP4 SDA, GP5 SCL) with its reset line on GP14.
// The button pulls GP15 low and the status LED is the board LED. Records
// are kept in RAM, so a power cycle starts again from the factory slot.
package main

import (
	"context"
	"machine"
	"time"

	"github.com/herlein/pubradio/pkg/bus"
	"github.com/herlein/pubradio/pkg/config"
	"github.com/herlein/pubradio/pkg/controller"
	"github.com/herlein/pubradio/pkg/led"
	"github.com/herlein/pubradio/pkg/nvm"
	"github.com/herlein/pubradio/pkg/registers"
	"github.com/herlein/pubradio/pkg/tuner"
)

const (
	buttonPin = machine.GP15
	resetPin  = machine.GP14
)

// pinButton reads the active-low button
type pinButton struct {
	pin machine.Pin
}

func (b pinButton) Level() bool {
	return b.pin.Get()
}

// pinLED lights the LED for any duty at or above half
type pinLED struct {
	pin machine.Pin
}

func (l pinLED) SetDuty(duty uint8) error {
	l.pin.Set(duty >= led.MaxDuty/2)
	return nil
}

func main() {
	button := pinButton{pin: buttonPin}
	button.pin.Configure(machine.PinConfig{Mode: machine.PinInputPullup})

	indicator := pinLED{pin: machine.LED}
	indicator.pin.Configure(machine.PinConfig{Mode: machine.PinOutput})

	// SDIO held low while reset rises selects the 2-wire bus
	sdio := machine.GP4
	sdio.Configure(machine.PinConfig{Mode: machine.PinOutput})
	sdio.Low()
	reset := resetPin
	reset.Configure(machine.PinConfig{Mode: machine.PinOutput})
	reset.Low()
	time.Sleep(100 * time.Millisecond)
	reset.High()
	time.Sleep(100 * time.Millisecond)

	i2c := machine.I2C0
	if err := i2c.Configure(machine.I2CConfig{
		Frequency: 100 * machine.KHz,
		SDA:       sdio,
		SCL:       machine.GP5,
	}); err != nil {
		fail("i2c configure", err)
	}

	store, err := config.NewStore(nvm.NewRAM(nvm.DefaultSize))
	if err != nil {
		fail("store", err)
	}

	seq := tuner.New(registers.NewShadow(bus.NewDrivers(i2c, registers.Address)))
	ctrl, err := controller.New(nil, seq, store, indicator, nil)
	if err != nil {
		fail("controller", err)
	}

	ctx := context.Background()
	if _, err := ctrl.Boot(ctx, controller.Board{}); err != nil {
		println("boot:", err.Error())
	}
	if err := ctrl.Run(ctx, button); err != nil {
		fail("run", err)
	}
}

// fail reports err on the console and blinks the LED forever
func fail(what string, err error) {
	println(what+":", err.Error())
	for {
		machine.LED.High()
		time.Sleep(100 * time.Millisecond)
		machine.LED.Low()
		time.Sleep(900 * time.Millisecond)
	}
}
