package registry

import (
	"errors"
	"fmt"
	"path/filepath"
	"sync"

	"timelinedb/pkg/state/logger"
	"timelinedb/pkg/store/db/storedb"
)

// ErrStoreUnavailable reports that an instance's store could not be
// resolved. Fatal for that instance's sweep; other instances are unaffected.
var ErrStoreUnavailable = errors.New("store unavailable")

// Registry maps logged-in instance identifiers to their open stores. The
// instance list is an explicit, ordered input; it is not ambient state.
type Registry struct {
	mu      sync.Mutex
	dataDir string
	order   []string
	stores  map[string]*storedb.Store
}

func New(dataDir string) *Registry {
	return &Registry{dataDir: dataDir, stores: make(map[string]*storedb.Store)}
}

// Add registers an instance and opens its store under <dataDir>/<instance>.
func (r *Registry) Add(instance string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.stores[instance]; ok {
		return nil
	}
	s, err := storedb.Open(filepath.Join(r.dataDir, instance))
	if err != nil {
		return fmt.Errorf("open store for %s: %w", instance, err)
	}
	r.stores[instance] = s
	r.order = append(r.order, instance)
	logger.Info("instance_store_opened", "instance", instance, "path", s.Path())
	return nil
}

// Get resolves the store handle for an instance.
func (r *Registry) Get(instance string) (*storedb.Store, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.stores[instance]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrStoreUnavailable, instance)
	}
	return s, nil
}

// Instances returns the logged-in instances in registration order.
func (r *Registry) Instances() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.order...)
}

// Remove closes and forgets an instance's store (logout).
func (r *Registry) Remove(instance string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.stores[instance]
	if !ok {
		return nil
	}
	delete(r.stores, instance)
	for i, name := range r.order {
		if name == instance {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return s.Close()
}

func (r *Registry) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	var firstErr error
	for name, s := range r.stores {
		if err := s.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		delete(r.stores, name)
	}
	r.order = nil
	return firstErr
}
