// Package cli holds the pieces shared by the command line tools.
package cli

import (
	"fmt"
	"os"

	"github.com/herlein/pubradio/pkg/config"
	"github.com/herlein/pubradio/pkg/nvm"
	"github.com/retroenv/retrogolib/log"
)

// NewLogger returns a logger at debug level when debug is set, error level
// when quiet is set, and info level otherwise
func NewLogger(debug, quiet bool) *log.Logger {
	cfg := log.DefaultConfig()
	if debug {
		cfg.Level = log.DebugLevel
	} else if quiet {
		cfg.Level = log.ErrorLevel
	}
	return log.NewWithConfig(cfg)
}

// OpenStore opens the EEPROM image at path, or an erased in-memory image
// when path is empty
func OpenStore(path string) (*config.Store, error) {
	var mem nvm.Memory
	if path == "" {
		mem = nvm.NewRAM(nvm.DefaultSize)
	} else {
		file, err := nvm.OpenFile(path, nvm.DefaultSize)
		if err != nil {
			return nil, fmt.Errorf("failed to open EEPROM image: %w", err)
		}
		mem = file
	}
	return config.NewStore(mem)
}

// Fatalf prints an error in the tools' common format and exits
func Fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}
