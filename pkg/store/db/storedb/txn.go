package storedb

import (
	"errors"
	"fmt"

	"github.com/cockroachdb/pebble"
)

// Txn is a read-write transaction spanning the whole store, backed by a
// Pebble indexed batch: reads observe the transaction's own pending writes,
// commit is atomic, and an aborted transaction applies nothing.
type Txn struct {
	b *pebble.Batch
}

// Update runs fn inside a transaction. If fn returns an error the batch is
// discarded and nothing is applied; otherwise the batch commits durably.
func (s *Store) Update(fn func(tx *Txn) error) error {
	if s.db == nil {
		return fmt.Errorf("pebble not opened; call storedb.Open first")
	}
	b := s.db.NewIndexedBatch()
	tx := &Txn{b: b}
	if err := fn(tx); err != nil {
		_ = b.Close()
		return err
	}
	if err := b.Commit(pebble.Sync); err != nil {
		_ = b.Close()
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (t *Txn) Get(key string) ([]byte, error) {
	v, closer, err := t.b.Get([]byte(key))
	if err != nil {
		return nil, err
	}
	out := append([]byte(nil), v...)
	if closer != nil {
		_ = closer.Close()
	}
	return out, nil
}

func (t *Txn) Has(key string) (bool, error) {
	_, err := t.Get(key)
	if err != nil {
		if errors.Is(err, pebble.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (t *Txn) Set(key string, value []byte) error {
	return t.b.Set([]byte(key), value, nil)
}

// Delete queues a delete in the transaction. Deleting an absent key is a
// no-op, which keeps cascade deletes idempotent.
func (t *Txn) Delete(key string) error {
	return t.b.Delete([]byte(key), nil)
}

// NewIter returns an iterator bounded to [lower, upper) that sees the
// transaction's pending deletes. Callers own Close.
func (t *Txn) NewIter(lower, upper []byte) (*pebble.Iterator, error) {
	return t.b.NewIter(&pebble.IterOptions{LowerBound: lower, UpperBound: upper})
}
