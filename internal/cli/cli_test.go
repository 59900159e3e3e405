package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/herlein/pubradio/pkg/nvm"
	"github.com/retroenv/retrogolib/assert"
)

func TestOpenStoreInMemory(t *testing.T) {
	store, err := OpenStore("")
	assert.NoError(t, err)

	_, ok := store.Memory().(*nvm.RAM)
	assert.True(t, ok)
}

func TestOpenStoreFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "eeprom.bin")

	store, err := OpenStore(path)
	assert.NoError(t, err)
	_, _, err = store.Load()
	assert.NoError(t, err)

	// The repaired records were written through to the image
	data, err := os.ReadFile(path)
	assert.NoError(t, err)
	assert.Equal(t, nvm.DefaultSize, len(data))

	reopened, err := OpenStore(path)
	assert.NoError(t, err)
	channel, err := reopened.StoredChannel()
	assert.NoError(t, err)
	assert.Equal(t, uint16(9), channel)
}

func TestNewLoggerLevels(t *testing.T) {
	assert.NotNil(t, NewLogger(true, false))
	assert.NotNil(t, NewLogger(false, true))
	assert.NotNil(t, NewLogger(false, false))
}
