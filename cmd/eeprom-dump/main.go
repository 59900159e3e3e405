// eeprom-dump: Dump the configuration records of an EEPROM image to JSON
//
// Both slots are decoded as stored, without the recovery chain the radio
// runs at power-up, so a corrupt slot shows up as invalid instead of being
// repaired. The output can be loaded back with eeprom-load.
package main

import (
	"encoding/hex"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/herlein/pubradio/internal/cli"
	"github.com/herlein/pubradio/pkg/config"
	"github.com/herlein/pubradio/pkg/nvm"
)

func main() {
	// Parse command line flags
	outputFile := flag.String("o", "", "Output file path (default: stdout)")
	raw := flag.Bool("raw", false, "Also print a hex dump of the record area")
	verbose := flag.Bool("v", false, "Verbose output")
	flag.Parse()

	args := flag.Args()
	if len(args) < 1 {
		fmt.Fprintf(os.Stderr, "Usage: %s [options] <eeprom-image>\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nOptions:\n")
		flag.PrintDefaults()
		os.Exit(1)
	}
	imagePath := args[0]

	if _, err := os.Stat(imagePath); err != nil {
		cli.Fatalf("Failed to open image: %v", err)
	}

	store, err := cli.OpenStore(imagePath)
	if err != nil {
		cli.Fatalf("%v", err)
	}

	snapshot, err := store.TakeSnapshot()
	if err != nil {
		cli.Fatalf("Failed to read records: %v", err)
	}

	if *raw {
		area := make([]byte, config.MinMemorySize)
		if err := nvm.LoadBlock(store.Memory(), 0, area); err != nil {
			cli.Fatalf("Failed to read image: %v", err)
		}
		fmt.Fprint(os.Stderr, hex.Dump(area))
	}

	if *outputFile == "" {
		data, err := json.MarshalIndent(snapshot, "", "  ")
		if err != nil {
			cli.Fatalf("Failed to marshal snapshot: %v", err)
		}
		fmt.Println(string(data))
	} else {
		if err := config.SaveToFile(snapshot, *outputFile); err != nil {
			cli.Fatalf("Failed to save snapshot: %v", err)
		}
		fmt.Printf("Snapshot saved to: %s\n", *outputFile)
	}

	if *verbose {
		printSummary(snapshot)
	}
}

func printSummary(s *config.Snapshot) {
	fmt.Fprintln(os.Stderr, "\nRecord Summary:")
	for _, slot := range []struct {
		name string
		info config.RecordInfo
	}{
		{"Working", s.Working},
		{"Factory", s.Factory},
	} {
		state := "valid"
		if !slot.info.Valid {
			state = "INVALID"
		}
		fmt.Fprintf(os.Stderr, "  %-8s %-8s %s\n", slot.name+":", state, slot.info.Record)
	}
}
