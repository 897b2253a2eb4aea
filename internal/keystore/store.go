// Package keystore persists fixed-size device key records on disk.
package keystore

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"sync"

	"github.com/rs/zerolog/log"
)

const (
	ValueLen  = 16
	RandomLen = 32
	RecordLen = ValueLen + RandomLen

	keysDir = "keys"
)

var (
	ErrNotFound     = errors.New("keystore: key not found")
	ErrRecordSize   = errors.New("keystore: record size mismatch")
	ErrRootRequired = errors.New("keystore: root required")
)

// Key is one stored record: the key value and the random material bound to it.
type Key struct {
	Value  [ValueLen]byte
	Random [RandomLen]byte
}

func (k Key) MarshalBinary() ([]byte, error) {
	out := make([]byte, RecordLen)
	copy(out[:ValueLen], k.Value[:])
	copy(out[ValueLen:], k.Random[:])
	return out, nil
}

func (k *Key) UnmarshalBinary(b []byte) error {
	if len(b) != RecordLen {
		return fmt.Errorf("%w: got %d want %d", ErrRecordSize, len(b), RecordLen)
	}
	copy(k.Value[:], b[:ValueLen])
	copy(k.Random[:], b[ValueLen:])
	return nil
}

// Store keeps one file per key id under <root>/keys. Load and Save are
// serialized by a single lock.
type Store struct {
	mu   sync.Mutex
	root string
}

func Open(root string) (*Store, error) {
	if root == "" {
		return nil, ErrRootRequired
	}
	if err := os.MkdirAll(filepath.Join(root, keysDir), 0o700); err != nil {
		return nil, fmt.Errorf("keystore: create %s: %w", root, err)
	}
	return &Store{root: root}, nil
}

func (s *Store) Load(id uint8) (Key, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := os.ReadFile(s.path(id))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Key{}, fmt.Errorf("%w: id=%d", ErrNotFound, id)
		}
		return Key{}, err
	}
	var k Key
	if err := k.UnmarshalBinary(b); err != nil {
		log.Warn().Err(err).Uint8("id", id).Msg("keystore load rejected")
		return Key{}, err
	}
	return k, nil
}

func (s *Store) Save(id uint8, k Key) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, _ := k.MarshalBinary()
	tmp, err := os.CreateTemp(filepath.Join(s.root, keysDir), ".key-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(b); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmp.Name(), s.path(id)); err != nil {
		return err
	}
	log.Debug().Uint8("id", id).Msg("keystore saved")
	return nil
}

// IDs lists stored key ids in ascending order.
func (s *Store) IDs() ([]uint8, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := os.ReadDir(filepath.Join(s.root, keysDir))
	if err != nil {
		return nil, err
	}
	out := make([]uint8, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		n, err := strconv.ParseUint(e.Name(), 10, 8)
		if err != nil {
			continue
		}
		out = append(out, uint8(n))
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, nil
}

func (s *Store) path(id uint8) string {
	return filepath.Join(s.root, keysDir, strconv.Itoa(int(id)))
}
