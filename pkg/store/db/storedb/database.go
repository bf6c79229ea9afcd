package storedb

import (
	"errors"
	"fmt"

	"timelinedb/pkg/state/logger"

	"github.com/cockroachdb/pebble"
)

// Store is one instance's record store: a single Pebble database holding
// all eight key namespaces plus their index entries.
type Store struct {
	db   *pebble.DB
	path string
}

func Open(path string) (*Store, error) {
	opts := &pebble.Options{
		// WAL stays on; eviction deletes are destructive and must survive a crash
		DisableWAL: false,
	}
	db, err := pebble.Open(path, opts)
	if err != nil {
		logger.Error("pebble_open_failed", "path", path, "error", err)
		return nil, err
	}
	return &Store{db: db, path: path}, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	if err := s.db.Close(); err != nil {
		return err
	}
	s.db = nil
	return nil
}

func (s *Store) Path() string { return s.path }

func IsNotFound(err error) bool {
	return errors.Is(err, pebble.ErrNotFound)
}

func (s *Store) Get(key string) ([]byte, error) {
	if s.db == nil {
		return nil, fmt.Errorf("pebble not opened; call storedb.Open first")
	}
	v, closer, err := s.db.Get([]byte(key))
	if err != nil {
		if !errors.Is(err, pebble.ErrNotFound) {
			logger.Error("get_key_failed", "key", key, "error", err)
		}
		return nil, err
	}
	out := append([]byte(nil), v...)
	if closer != nil {
		_ = closer.Close()
	}
	return out, nil
}

func (s *Store) Set(key string, value []byte) error {
	if s.db == nil {
		return fmt.Errorf("pebble not opened; call storedb.Open first")
	}
	if err := s.db.Set([]byte(key), value, pebble.Sync); err != nil {
		logger.Error("set_key_failed", "key", key, "error", err)
		return err
	}
	return nil
}

func (s *Store) Delete(key string) error {
	if s.db == nil {
		return fmt.Errorf("pebble not opened; call storedb.Open first")
	}
	if err := s.db.Delete([]byte(key), pebble.Sync); err != nil {
		logger.Error("delete_key_failed", "key", key, "error", err)
		return err
	}
	return nil
}

// NewIter returns an iterator bounded to [lower, upper). Callers own Close.
func (s *Store) NewIter(lower, upper []byte) (*pebble.Iterator, error) {
	if s.db == nil {
		return nil, fmt.Errorf("pebble not opened; call storedb.Open first")
	}
	return s.db.NewIter(&pebble.IterOptions{LowerBound: lower, UpperBound: upper})
}
