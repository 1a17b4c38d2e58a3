package index

import (
	"slices"
	"sync"
	"time"

	"github.com/MrSnakeDoc/eoltracker/internal/domain"
)

// MemoryIndex holds the published catalog in memory.
// The catalog is never mutated after UpdateCatalog; readers share it.
type MemoryIndex struct {
	mu         sync.RWMutex
	catalog    *domain.Catalog
	services   map[string]*domain.ServiceRecord // ID -> record
	lastReload time.Time                        // Timestamp of last successful reload
	lastErr    error                            // Error of the last failed reload, if any
	version    uint64                           // Bumped on every UpdateCatalog
}

// NewMemoryIndex creates an empty memory index
func NewMemoryIndex() *MemoryIndex {
	return &MemoryIndex{
		services: make(map[string]*domain.ServiceRecord),
	}
}

// UpdateCatalog replaces the published catalog
func (idx *MemoryIndex) UpdateCatalog(c *domain.Catalog) {
	services := make(map[string]*domain.ServiceRecord, len(c.Services))
	for _, svc := range c.Services {
		services[svc.ID] = svc
	}

	idx.mu.Lock()
	defer idx.mu.Unlock()

	idx.catalog = c
	idx.services = services
	idx.lastReload = time.Now()
	idx.lastErr = nil
	idx.version++
}

// RecordFailure remembers why the last reload failed. A previously
// published catalog stays in place.
func (idx *MemoryIndex) RecordFailure(err error) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	idx.lastErr = err
}

// Catalog returns the published catalog with its version, or nil before
// the first successful load.
func (idx *MemoryIndex) Catalog() (*domain.Catalog, uint64) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	return idx.catalog, idx.version
}

// GetService retrieves a record by ID
func (idx *MemoryIndex) GetService(id string) (*domain.ServiceRecord, bool) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	svc, ok := idx.services[id]
	return svc, ok
}

// GetAllServices returns all records in catalog order
func (idx *MemoryIndex) GetAllServices() []*domain.ServiceRecord {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	if idx.catalog == nil {
		return []*domain.ServiceRecord{}
	}
	return slices.Clone(idx.catalog.Services)
}

// Count returns the number of records in the index
func (idx *MemoryIndex) Count() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	return len(idx.services)
}

// Ready reports whether a catalog has been published
func (idx *MemoryIndex) Ready() bool {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	return idx.catalog != nil
}

// LastError returns the error of the last failed reload (nil after a success)
func (idx *MemoryIndex) LastError() error {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	return idx.lastErr
}

// GetLastReload returns the timestamp of the last successful reload
func (idx *MemoryIndex) GetLastReload() time.Time {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	return idx.lastReload
}
