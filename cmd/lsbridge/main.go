// lsbridge: List all connected MCP2221A bridges
//
// This tool enumerates the USB to I2C bridges a bench radio can be wired
// to and, with -v, probes each one's I2C bus for the tuner.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/google/gousb"
	"github.com/herlein/pubradio/pkg/bridge"
	"github.com/herlein/pubradio/pkg/registers"
)

func main() {
	verbose := flag.Bool("v", false, "Verbose output (probe for a tuner on each bridge)")
	reset := flag.String("reset", "", "Reset the selected bridge instead of listing (device selector, \"first\" for the first one)")
	flag.Parse()

	// Create USB context
	context := gousb.NewContext()
	defer context.Close()

	if *reset != "" {
		selector := *reset
		if selector == "first" {
			selector = ""
		}
		device, err := bridge.SelectDevice(context, bridge.DeviceSelector(selector))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer device.Close()
		if err := device.Reset(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: Reset failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Reset %s\n", device)
		return
	}

	devices, err := bridge.FindAllDevices(context)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: Failed to enumerate devices: %v\n", err)
		os.Exit(1)
	}

	if len(devices) == 0 {
		fmt.Println("No MCP2221 devices found")
		os.Exit(0)
	}

	fmt.Printf("Found %d MCP2221 device(s):\n", len(devices))
	fmt.Println()

	for i, device := range devices {
		defer device.Close()

		if !*verbose {
			fmt.Printf("  #%d  %s  %d:%d\n", i, device.Serial, device.Bus, device.Address)
			continue
		}

		fmt.Printf("Device #%d:\n", i)
		fmt.Printf("  Serial:       %s\n", device.Serial)
		fmt.Printf("  Bus:Address:  %d:%d\n", device.Bus, device.Address)
		fmt.Printf("  Manufacturer: %s\n", device.Manufacturer)
		fmt.Printf("  Product:      %s\n", device.Product)

		if status, err := device.Status(); err == nil {
			fmt.Printf("  I2C state:    0x%02X\n", status.I2CState)
		} else {
			fmt.Printf("  I2C state:    (error: %v)\n", err)
		}

		// A tuner answers a full register read at its fixed address
		image := make([]byte, registers.ImageSize)
		if err := device.I2CRead(registers.Address, image); err == nil {
			offset := registers.Offset(registers.DEVICEID)
			fmt.Printf("  Tuner:        DEVICEID 0x%02X%02X\n", image[offset], image[offset+1])
		} else {
			fmt.Printf("  Tuner:        (not found: %v)\n", err)
		}
		fmt.Println()
	}

	if !*verbose {
		fmt.Println()
		fmt.Println("Use -d flag with radio-bench to select a bridge:")
		fmt.Println("  -d \"#0\"          Select by index")
		fmt.Println("  -d \"1:10\"        Select by bus:address")
		fmt.Println("  -d \"0001234567\"  Select by serial (if unique)")
	}
}
