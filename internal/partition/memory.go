package partition

import (
	"sync"

	"github.com/rohmanhakim/shell-cache/pkg/failure"
)

// MemoryStore keeps partitions in process memory. This is the default backend:
// it mirrors the ephemerality of a browser cache that the next deploy sweeps
// away anyway.
type MemoryStore struct {
	mu         sync.RWMutex
	partitions map[string]*memoryPartition
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		partitions: make(map[string]*memoryPartition),
	}
}

func (s *MemoryStore) Open(name string) (Partition, failure.ClassifiedError) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.partitions[name]
	if !ok {
		p = &memoryPartition{entries: make(map[string]Entry)}
		s.partitions[name] = p
	}
	return p, nil
}

func (s *MemoryStore) Names() ([]string, failure.ClassifiedError) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.partitions))
	for name := range s.partitions {
		names = append(names, name)
	}
	return names, nil
}

func (s *MemoryStore) Delete(name string) failure.ClassifiedError {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.partitions, name)
	return nil
}

type memoryPartition struct {
	mu      sync.RWMutex
	entries map[string]Entry
}

func (p *memoryPartition) Match(key string) (Entry, bool, failure.ClassifiedError) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	entry, ok := p.entries[key]
	if !ok {
		return Entry{}, false, nil
	}
	return entry, true, nil
}

func (p *memoryPartition) Put(key string, entry Entry) failure.ClassifiedError {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.entries[key] = entry
	return nil
}

func (p *memoryPartition) Keys() ([]string, failure.ClassifiedError) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	keys := make([]string, 0, len(p.entries))
	for key := range p.entries {
		keys = append(keys, key)
	}
	return keys, nil
}
