package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/c2FmZQ/storage"
	"github.com/c2FmZQ/storage/crypto"
	"github.com/rs/zerolog"

	"github.com/pable/go-b5-metrics/internal/model"
)

// SlotKey is the fixed logical key of the current match.
const SlotKey = "baseball5-game-state"

// Slot is a single-value store holding the current match.
type Slot interface {
	Save(blob []byte) error
	// Load returns ok=false when nothing has been saved.
	Load() (blob []byte, ok bool, err error)
	Clear() error
	Exists() bool
	// Close releases the slot and any key material it holds.
	Close() error
}

// slotFile is the on-disk envelope; c2FmZQ/storage encodes it and, with a
// master key, encrypts it.
type slotFile struct {
	Key   string `json:"key"`
	State []byte `json:"state"`
}

// FileSlot keeps the slot in a file under a data directory.
type FileSlot struct {
	dir   string
	store *storage.Storage
	mk    crypto.MasterKey
}

// NewFileSlot returns a slot stored under dir. A nil masterKey stores the
// payload unencrypted. The slot owns masterKey and wipes it on Close, also
// when NewFileSlot fails.
func NewFileSlot(dir string, masterKey crypto.MasterKey) (*FileSlot, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		if masterKey != nil {
			masterKey.Wipe()
		}
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return &FileSlot{dir: dir, store: storage.New(dir, masterKey), mk: masterKey}, nil
}

// Close wipes the master key. The slot must not be used afterwards.
func (f *FileSlot) Close() error {
	if f.mk != nil {
		f.mk.Wipe()
		f.mk = nil
	}
	return nil
}

func (f *FileSlot) name() string { return SlotKey + ".dat" }

func (f *FileSlot) Save(blob []byte) error {
	if err := f.store.SaveDataFile(f.name(), slotFile{Key: SlotKey, State: blob}); err != nil {
		return fmt.Errorf("save slot: %w", err)
	}
	return nil
}

func (f *FileSlot) Load() ([]byte, bool, error) {
	var sf slotFile
	if err := f.store.ReadDataFile(f.name(), &sf); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("read slot: %w", err)
	}
	return sf.State, true, nil
}

func (f *FileSlot) Clear() error {
	err := os.Remove(filepath.Join(f.dir, f.name()))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("clear slot: %w", err)
	}
	return nil
}

func (f *FileSlot) Exists() bool {
	_, err := os.Stat(filepath.Join(f.dir, f.name()))
	return err == nil
}

// OpenMasterKey loads the master key at keyFile, creating it on first use.
// The caller owns the key and must Wipe it, usually by handing it to
// NewFileSlot.
// An empty passphrase means no encryption: nil is returned, unless a key
// file already exists, which is an error.
func OpenMasterKey(keyFile, passphrase string) (crypto.MasterKey, error) {
	if passphrase == "" {
		if _, err := os.Stat(keyFile); err == nil {
			return nil, fmt.Errorf("%s exists but no passphrase was given", keyFile)
		}
		return nil, nil
	}
	if _, err := os.Stat(keyFile); err == nil {
		mk, err := crypto.ReadMasterKey([]byte(passphrase), keyFile)
		if err != nil {
			return nil, fmt.Errorf("read master key: %w", err)
		}
		return mk, nil
	}
	if err := os.MkdirAll(filepath.Dir(keyFile), 0o755); err != nil {
		return nil, fmt.Errorf("create key dir: %w", err)
	}
	mk, err := crypto.CreateMasterKey()
	if err != nil {
		return nil, fmt.Errorf("create master key: %w", err)
	}
	if err := mk.Save([]byte(passphrase), keyFile); err != nil {
		mk.Wipe()
		return nil, fmt.Errorf("save master key: %w", err)
	}
	return mk, nil
}

// MemorySlot is an in-process slot.
type MemorySlot struct {
	mu   sync.Mutex
	blob []byte
	ok   bool
}

func (m *MemorySlot) Save(blob []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.blob = append([]byte(nil), blob...)
	m.ok = true
	return nil
}

func (m *MemorySlot) Load() ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.ok {
		return nil, false, nil
	}
	return append([]byte(nil), m.blob...), true, nil
}

func (m *MemorySlot) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.blob, m.ok = nil, false
	return nil
}

func (m *MemorySlot) Exists() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ok
}

func (m *MemorySlot) Close() error { return nil }

// SaveState encodes s into the slot.
func SaveState(slot Slot, s model.GameState) error {
	blob, err := EncodeState(s)
	if err != nil {
		return err
	}
	return slot.Save(blob)
}

// LoadState reads the slot. Any failure, including a malformed payload, is
// logged and reported as no saved state.
func LoadState(slot Slot, log zerolog.Logger) (model.GameState, bool) {
	blob, ok, err := slot.Load()
	if err != nil {
		log.Warn().Err(err).Msg("saved match unreadable, starting fresh")
		return model.GameState{}, false
	}
	if !ok {
		return model.GameState{}, false
	}
	s, err := DecodeState(blob)
	if err != nil {
		log.Warn().Err(err).Msg("saved match malformed, starting fresh")
		return model.GameState{}, false
	}
	return s, true
}
