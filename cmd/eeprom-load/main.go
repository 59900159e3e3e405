// eeprom-load: Provision an EEPROM image
//
// The image is written from a regional preset (-preset) or from a snapshot
// saved by eeprom-dump. Provisioning writes the factory slot first and then
// the working slot, both with fresh checksums.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/herlein/pubradio/internal/cli"
	"github.com/herlein/pubradio/pkg/config"
)

func main() {
	// Parse command line flags
	presetName := flag.String("preset", "", "Regional preset ("+strings.Join(config.PresetNames(), ", ")+")")
	presetFile := flag.String("presets", "", "JSON preset file to use instead of the built-in presets")
	snapshotFile := flag.String("snapshot", "", "Snapshot JSON written by eeprom-dump")
	workingOnly := flag.Bool("working", false, "With -snapshot, only rewrite the working slot")
	list := flag.Bool("l", false, "List presets and exit")
	verbose := flag.Bool("v", false, "Verbose output")
	flag.Parse()

	presets := config.Presets()
	if *presetFile != "" {
		var err error
		if presets, err = config.LoadPresetFile(*presetFile); err != nil {
			cli.Fatalf("%v", err)
		}
	}

	if *list {
		for _, p := range presets {
			fmt.Printf("  %-8s %s\n", p.Name, p.Description)
		}
		return
	}

	args := flag.Args()
	if len(args) < 1 || (*presetName == "") == (*snapshotFile == "") {
		fmt.Fprintf(os.Stderr, "Usage: %s (-preset <name> | -snapshot <file>) [options] <eeprom-image>\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nOptions:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExample:\n")
		fmt.Fprintf(os.Stderr, "  %s -preset EU etc/eeprom.bin\n", os.Args[0])
		os.Exit(1)
	}
	imagePath := args[0]

	store, err := cli.OpenStore(imagePath)
	if err != nil {
		cli.Fatalf("%v", err)
	}

	if *presetName != "" {
		preset, err := config.FindPreset(presets, *presetName)
		if err != nil {
			cli.Fatalf("%v", err)
		}
		record, err := preset.Record()
		if err != nil {
			cli.Fatalf("Preset %s: %v", preset.Name, err)
		}
		if err := store.Provision(record); err != nil {
			cli.Fatalf("Failed to provision image: %v", err)
		}
		if *verbose {
			fmt.Printf("Preset %s: %s\n", preset.Name, preset.Description)
		}
		fmt.Printf("Provisioned %s with %s\n", imagePath, record)
		return
	}

	snapshot, err := config.LoadFromFile(*snapshotFile)
	if err != nil {
		cli.Fatalf("Failed to load snapshot: %v", err)
	}
	if *verbose {
		fmt.Printf("Snapshot taken: %s\n", snapshot.Timestamp.Format("2006-01-02 15:04:05"))
	}

	if *workingOnly {
		err = store.WriteWorking(snapshot.Working.Record)
	} else {
		err = store.Provision(snapshot.Factory.Record)
		if err == nil {
			err = store.WriteWorking(snapshot.Working.Record)
		}
	}
	if err != nil {
		cli.Fatalf("Failed to write image: %v", err)
	}

	fmt.Printf("Loaded %s into %s\n", *snapshotFile, imagePath)
	if *verbose {
		fmt.Printf("  Working: %s\n", snapshot.Working.Record)
		fmt.Printf("  Factory: %s\n", snapshot.Factory.Record)
	}
}
