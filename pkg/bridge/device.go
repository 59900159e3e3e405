// Package bridge drives a Microchip MCP2221A USB to I2C/GPIO bridge over
// gousb so a bench host can stand in for the radio's microcontroller: the
// tuner sits on the bridge's I2C port, the button and LED on its GP pins and
// the supply voltage on one of its ADC inputs.
package bridge

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/gousb"
)

// Link moves one 64-byte HID report to the bridge and returns its reply
type Link interface {
	Transfer(ctx context.Context, report []byte) ([]byte, error)
}

// Device represents an MCP2221A USB device
type Device struct {
	usbDevice    *gousb.Device
	usbConfig    *gousb.Config
	usbInterface *gousb.Interface
	link         Link
	Serial       string
	Manufacturer string
	Product      string
	Bus          int
	Address      int

	// Timeout bounds each report exchange. Defaults to USBDefaultTimeout.
	Timeout time.Duration

	// Sleep waits between I2C engine polls. Defaults to time.Sleep.
	Sleep func(time.Duration)

	mu sync.Mutex
}

// NewDevice wraps a link that is not backed by gousb
func NewDevice(link Link) *Device {
	return &Device{
		link:    link,
		Timeout: USBDefaultTimeout,
		Sleep:   time.Sleep,
	}
}

// FindAllDevices finds all connected MCP2221A devices
func FindAllDevices(ctx *gousb.Context) ([]*Device, error) {
	devices := []*Device{}

	usbDevices, err := ctx.OpenDevices(func(descriptor *gousb.DeviceDesc) bool {
		return descriptor.Vendor == gousb.ID(VendorID) && descriptor.Product == gousb.ID(ProductID)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate devices: %w", err)
	}

	for _, usbDev := range usbDevices {
		device, err := wrapDevice(usbDev)
		if err != nil {
			usbDev.Close()
			continue
		}
		devices = append(devices, device)
	}

	return devices, nil
}

func wrapDevice(usbDev *gousb.Device) (*Device, error) {
	manufacturer, _ := usbDev.Manufacturer()
	product, _ := usbDev.Product()
	serial, _ := usbDev.SerialNumber()

	// The kernel binds hid-generic to the HID interface
	usbDev.SetAutoDetach(true)

	config, err := usbDev.Config(1)
	if err != nil {
		return nil, fmt.Errorf("failed to get configuration: %w", err)
	}

	iface, err := config.Interface(HIDInterface, 0)
	if err != nil {
		config.Close()
		return nil, fmt.Errorf("failed to claim interface: %w", err)
	}

	epIn, err := iface.InEndpoint(HIDEndpoint)
	if err != nil {
		iface.Close()
		config.Close()
		return nil, fmt.Errorf("failed to get IN endpoint: %w", err)
	}

	epOut, err := iface.OutEndpoint(HIDEndpoint)
	if err != nil {
		iface.Close()
		config.Close()
		return nil, fmt.Errorf("failed to get OUT endpoint: %w", err)
	}

	desc := usbDev.Desc
	device := NewDevice(&usbLink{epIn: epIn, epOut: epOut})
	device.usbDevice = usbDev
	device.usbConfig = config
	device.usbInterface = iface
	device.Serial = serial
	device.Manufacturer = manufacturer
	device.Product = product
	device.Bus = desc.Bus
	device.Address = desc.Address

	return device, nil
}

// Close releases the interface, configuration and device
func (d *Device) Close() error {
	if d.usbInterface != nil {
		d.usbInterface.Close()
	}
	if d.usbConfig != nil {
		d.usbConfig.Close()
	}
	if d.usbDevice != nil {
		return d.usbDevice.Close()
	}
	return nil
}

// String returns a human-readable description of the device
func (d *Device) String() string {
	return fmt.Sprintf("%s %s (Serial: %s)", d.Manufacturer, d.Product, d.Serial)
}

// newReport returns a zeroed request carrying cmd
func newReport(cmd byte) []byte {
	report := make([]byte, ReportSize)
	report[0] = cmd
	return report
}

// exchange sends a request and returns the checked-for-echo reply. The
// status byte is left to the caller.
func (d *Device) exchange(report []byte) ([]byte, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	timeout := d.Timeout
	if timeout == 0 {
		timeout = USBDefaultTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	rsp, err := d.link.Transfer(ctx, report)
	if err != nil {
		return nil, fmt.Errorf("command 0x%02X: %w", report[0], err)
	}
	if len(rsp) < ReportSize {
		return nil, fmt.Errorf("command 0x%02X: %w: %d bytes", report[0], ErrShortReport, len(rsp))
	}
	if rsp[0] != report[0] {
		return nil, fmt.Errorf("command 0x%02X: %w: got 0x%02X", report[0], ErrEcho, rsp[0])
	}
	return rsp, nil
}

// command is exchange plus a zero status check
func (d *Device) command(report []byte) ([]byte, error) {
	rsp, err := d.exchange(report)
	if err != nil {
		return nil, err
	}
	if rsp[1] != 0 {
		return rsp, &CommandError{Command: report[0], Code: rsp[1]}
	}
	return rsp, nil
}

func (d *Device) sleep(v time.Duration) {
	if d.Sleep != nil {
		d.Sleep(v)
		return
	}
	time.Sleep(v)
}

// Reset reboots the bridge. The device re-enumerates and must be reopened.
func (d *Device) Reset() error {
	report := newReport(CmdReset)
	report[1] = 0xAB
	report[2] = 0xCD
	report[3] = 0xEF

	d.mu.Lock()
	defer d.mu.Unlock()
	ctx, cancel := context.WithTimeout(context.Background(), USBDefaultTimeout)
	defer cancel()

	// No reply is sent before the chip drops off the bus
	if ul, ok := d.link.(*usbLink); ok {
		return ul.write(ctx, report)
	}
	_, err := d.link.Transfer(ctx, report)
	return err
}

// usbLink exchanges reports over the HID interrupt endpoints
type usbLink struct {
	epIn  *gousb.InEndpoint
	epOut *gousb.OutEndpoint
}

func (l *usbLink) write(ctx context.Context, report []byte) error {
	n, err := l.epOut.WriteContext(ctx, report)
	if err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("write timeout: %w", err)
		}
		return fmt.Errorf("failed to write to EP%d: %w", HIDEndpoint, err)
	}
	if n != len(report) {
		return fmt.Errorf("short write: wrote %d of %d bytes", n, len(report))
	}
	return nil
}

func (l *usbLink) Transfer(ctx context.Context, report []byte) ([]byte, error) {
	if err := l.write(ctx, report); err != nil {
		return nil, err
	}

	buf := make([]byte, ReportSize)
	n, err := l.epIn.ReadContext(ctx, buf)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("read timeout: %w", err)
		}
		return nil, fmt.Errorf("failed to read from EP%d: %w", HIDEndpoint, err)
	}
	return buf[:n], nil
}
