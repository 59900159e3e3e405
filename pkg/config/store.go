package config

import (
	"fmt"

	"github.com/herlein/pubradio/pkg/nvm"
)

// Recovery reports which path Load took to produce a valid working record
type Recovery int

const (
	RecoveryNone       Recovery = iota // working record was valid
	RecoveryFactory                    // working record restored from factory
	RecoveryLastResort                 // factory reseeded, then copied to working
)

func (r Recovery) String() string {
	switch r {
	case RecoveryNone:
		return "none"
	case RecoveryFactory:
		return "factory"
	case RecoveryLastResort:
		return "last-resort"
	default:
		return fmt.Sprintf("Recovery(%d)", int(r))
	}
}

// loadStep is a state of the boot recovery chain
type loadStep int

const (
	checkWorking loadStep = iota
	checkFactory
	seedFactory
	copyFactory
	loadDone
)

// Store reads and writes the working and factory records
type Store struct {
	mem nvm.Memory
}

// NewStore creates a Store over mem
func NewStore(mem nvm.Memory) (*Store, error) {
	if mem.Size() < MinMemorySize {
		return nil, fmt.Errorf("%w: %d bytes", ErrMemoryTooSmall, mem.Size())
	}
	return &Store{mem: mem}, nil
}

// Memory returns the backing memory
func (s *Store) Memory() nvm.Memory {
	return s.mem
}

// Load validates the working record and repairs it from the factory record,
// reseeding the factory record from LastResort when it is corrupt too.
func (s *Store) Load() (Record, Recovery, error) {
	recovery := RecoveryNone

	for step := checkWorking; step != loadDone; {
		switch step {
		case checkWorking:
			ok, err := s.WorkingValid()
			if err != nil {
				return Record{}, recovery, err
			}
			if ok {
				step = loadDone
			} else {
				step = checkFactory
			}

		case checkFactory:
			recovery = RecoveryFactory
			ok, err := s.FactoryValid()
			if err != nil {
				return Record{}, recovery, err
			}
			if ok {
				step = copyFactory
			} else {
				step = seedFactory
			}

		case seedFactory:
			recovery = RecoveryLastResort
			if err := s.SeedFactory(); err != nil {
				return Record{}, recovery, err
			}
			step = copyFactory

		case copyFactory:
			if err := s.RestoreFactory(); err != nil {
				return Record{}, recovery, err
			}
			step = loadDone
		}
	}

	r, err := s.Working()
	return r, recovery, err
}

// WorkingValid checks the working record's CRC
func (s *Store) WorkingValid() (bool, error) {
	return s.valid(WorkingOffset)
}

// FactoryValid checks the factory record's CRC
func (s *Store) FactoryValid() (bool, error) {
	return s.valid(FactoryOffset)
}

// SeedFactory overwrites the factory record with LastResort
func (s *Store) SeedFactory() error {
	if err := nvm.StoreBlock(s.mem, FactoryOffset, LastResort[:]); err != nil {
		return fmt.Errorf("failed to seed factory record: %w", err)
	}
	return nil
}

// RestoreFactory copies the factory record over the working record verbatim.
// The source is not validated.
func (s *Store) RestoreFactory() error {
	var b [RecordSize]byte
	if err := nvm.LoadBlock(s.mem, FactoryOffset, b[:]); err != nil {
		return fmt.Errorf("failed to read factory record: %w", err)
	}
	if err := nvm.StoreBlock(s.mem, WorkingOffset, b[:]); err != nil {
		return fmt.Errorf("failed to write working record: %w", err)
	}
	return nil
}

// SaveChannel rewrites the working channel field and then its CRC. Losing
// power between the two writes leaves a record Load repairs.
func (s *Store) SaveChannel(channel uint16) error {
	if err := s.mem.StoreWord(WorkingOffset+FieldChannel, channel); err != nil {
		return fmt.Errorf("failed to write channel: %w", err)
	}

	var b [RecordSize]byte
	if err := nvm.LoadBlock(s.mem, WorkingOffset, b[:CoveredSize]); err != nil {
		return fmt.Errorf("failed to read working record: %w", err)
	}
	if err := s.mem.StoreWord(WorkingOffset+FieldCRC, Checksum(b[:CoveredSize])); err != nil {
		return fmt.Errorf("failed to write checksum: %w", err)
	}
	return nil
}

// StoredChannel returns the working record's channel field
func (s *Store) StoredChannel() (uint16, error) {
	channel, err := s.mem.LoadWord(WorkingOffset + FieldChannel)
	if err != nil {
		return 0, fmt.Errorf("failed to read channel: %w", err)
	}
	return channel, nil
}

// Working decodes the working record
func (s *Store) Working() (Record, error) {
	return s.read(WorkingOffset)
}

// Factory decodes the factory record
func (s *Store) Factory() (Record, error) {
	return s.read(FactoryOffset)
}

// WriteWorking replaces the working record
func (s *Store) WriteWorking(r Record) error {
	return s.write(WorkingOffset, r)
}

// Provision writes r as both the factory and the working record
func (s *Store) Provision(r Record) error {
	if err := s.write(FactoryOffset, r); err != nil {
		return err
	}
	return s.write(WorkingOffset, r)
}

func (s *Store) valid(offset int) (bool, error) {
	var b [RecordSize]byte
	if err := nvm.LoadBlock(s.mem, offset, b[:]); err != nil {
		return false, fmt.Errorf("failed to read record at 0x%02X: %w", offset, err)
	}
	return Valid(b[:]), nil
}

func (s *Store) read(offset int) (Record, error) {
	var b [RecordSize]byte
	if err := nvm.LoadBlock(s.mem, offset, b[:]); err != nil {
		return Record{}, fmt.Errorf("failed to read record at 0x%02X: %w", offset, err)
	}
	return Decode(b[:])
}

func (s *Store) write(offset int, r Record) error {
	b := r.Encode()
	if err := nvm.StoreBlock(s.mem, offset, b[:]); err != nil {
		return fmt.Errorf("failed to write record at 0x%02X: %w", offset, err)
	}
	return nil
}
