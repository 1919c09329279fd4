package loader

import (
	"sort"
	"sync"

	"github.com/andreatomassetti/ansible-variables/pkg/schema"
)

// ProvenanceEntry is one definition of a variable in the precedence chain.
type ProvenanceEntry struct {
	Source schema.Source
	Value  any
}

// ProvenanceStorage records, per variable, every source that defined it.
// Chains are ordered lowest precedence first, so the last entry is the
// definition that won.
type ProvenanceStorage struct {
	entries map[string][]ProvenanceEntry
	mutex   sync.RWMutex
}

// NewProvenanceStorage creates an empty provenance storage.
func NewProvenanceStorage() *ProvenanceStorage {
	return &ProvenanceStorage{
		entries: make(map[string][]ProvenanceEntry),
	}
}

// Record appends a definition to the chain of name.
func (ps *ProvenanceStorage) Record(name string, entry ProvenanceEntry) {
	if ps == nil {
		return
	}

	ps.mutex.Lock()
	defer ps.mutex.Unlock()

	ps.entries[name] = append(ps.entries[name], entry)
}

// Get returns a copy of the chain of name, or nil.
func (ps *ProvenanceStorage) Get(name string) []ProvenanceEntry {
	if ps == nil {
		return nil
	}

	ps.mutex.RLock()
	defer ps.mutex.RUnlock()

	entries, exists := ps.entries[name]
	if !exists {
		return nil
	}

	result := make([]ProvenanceEntry, len(entries))
	copy(result, entries)
	return result
}

// GetLatest returns the winning definition of name.
func (ps *ProvenanceStorage) GetLatest(name string) (ProvenanceEntry, bool) {
	if ps == nil {
		return ProvenanceEntry{}, false
	}

	ps.mutex.RLock()
	defer ps.mutex.RUnlock()

	entries := ps.entries[name]
	if len(entries) == 0 {
		return ProvenanceEntry{}, false
	}
	return entries[len(entries)-1], true
}

// GetNames returns every recorded variable name, sorted.
func (ps *ProvenanceStorage) GetNames() []string {
	if ps == nil {
		return nil
	}

	ps.mutex.RLock()
	defer ps.mutex.RUnlock()

	names := make([]string, 0, len(ps.entries))
	for name := range ps.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
