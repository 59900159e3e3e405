package bridge

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/google/gousb"
)

// DeviceSelector specifies how to identify an MCP2221A
// Supported formats:
//   - ""           : Use first available device
//   - "serial"     : Match by serial number (e.g., "0001234567")
//   - "bus:addr"   : Match by USB bus and address (e.g., "1:10")
//   - "#N"         : Use Nth device, 0-indexed (e.g., "#0", "#1")
type DeviceSelector string

// selection is a parsed selector: either an index or a match function
type selection struct {
	index int
	match func(*Device) bool
	desc  string
}

func parseSelector(selector DeviceSelector) (selection, error) {
	sel := string(selector)

	switch {
	case sel == "":
		return selection{index: 0, desc: "first device"}, nil

	case strings.HasPrefix(sel, "#"):
		index, err := strconv.Atoi(sel[1:])
		if err != nil || index < 0 {
			return selection{}, fmt.Errorf("invalid device index: %s", sel)
		}
		return selection{index: index, desc: "device " + sel}, nil

	case strings.Contains(sel, ":"):
		parts := strings.SplitN(sel, ":", 2)
		bus, err := strconv.Atoi(parts[0])
		if err != nil {
			return selection{}, fmt.Errorf("invalid bus number: %s", parts[0])
		}
		addr, err := strconv.Atoi(parts[1])
		if err != nil {
			return selection{}, fmt.Errorf("invalid address number: %s", parts[1])
		}
		return selection{
			index: -1,
			match: func(d *Device) bool { return d.Bus == bus && d.Address == addr },
			desc:  fmt.Sprintf("bus %d address %d", bus, addr),
		}, nil

	default:
		return selection{
			index: -1,
			match: func(d *Device) bool { return d.Serial == sel },
			desc:  "serial " + sel,
		}, nil
	}
}

// pick chooses one device from the enumerated list and returns the rest to
// be closed
func (s selection) pick(devices []*Device) (*Device, []*Device, error) {
	if len(devices) == 0 {
		return nil, nil, ErrNotFound
	}

	if s.match == nil {
		if s.index >= len(devices) {
			return nil, devices, fmt.Errorf("device index %d out of range (found %d devices)", s.index, len(devices))
		}
		rest := append(append([]*Device{}, devices[:s.index]...), devices[s.index+1:]...)
		return devices[s.index], rest, nil
	}

	var matches, rest []*Device
	for _, d := range devices {
		if s.match(d) {
			matches = append(matches, d)
		} else {
			rest = append(rest, d)
		}
	}

	switch len(matches) {
	case 0:
		return nil, rest, fmt.Errorf("no MCP2221 found with %s", s.desc)
	case 1:
		return matches[0], rest, nil
	default:
		return nil, devices, fmt.Errorf("multiple devices (%d) found with %s; use bus:addr format (e.g., 1:10) or index format (e.g., #0)", len(matches), s.desc)
	}
}

// SelectDevice opens an MCP2221A matching the selector
func SelectDevice(ctx *gousb.Context, selector DeviceSelector) (*Device, error) {
	sel, err := parseSelector(selector)
	if err != nil {
		return nil, err
	}

	devices, err := FindAllDevices(ctx)
	if err != nil {
		return nil, err
	}

	device, rest, err := sel.pick(devices)
	for _, d := range rest {
		d.Close()
	}
	return device, err
}

// DeviceFlagUsage returns the usage string for the -d flag
func DeviceFlagUsage() string {
	return `Device selector. Formats:
    ""        - Use first available device
    "serial"  - Match by serial number (e.g., "0001234567")
    "bus:addr"- Match by USB location (e.g., "1:10")
    "#N"      - Use Nth device, 0-indexed (e.g., "#0", "#1")`
}
