package terminal

import (
	"strings"
	"sync"
)

// AliasStore maps user-assigned voice aliases to destination identifiers.
//
// Persistence across runs is an external concern; this store is in-memory.
// Reassigning an alias supersedes any prior alias held by the same target.
type AliasStore struct {
	mu      sync.RWMutex
	byAlias map[string]string // alias -> target id
	byID    map[string]string // target id -> alias
}

// NewAliasStore builds an empty alias table.
func NewAliasStore() *AliasStore {
	return &AliasStore{
		byAlias: make(map[string]string),
		byID:    make(map[string]string),
	}
}

// Set assigns alias to targetID, replacing any previous alias for that target
// and stealing the alias from any other target that held it.
func (s *AliasStore) Set(targetID, alias string) {
	alias = strings.ToLower(strings.TrimSpace(alias))
	if alias == "" || targetID == "" {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if previous, ok := s.byID[targetID]; ok {
		delete(s.byAlias, previous)
	}
	if holder, ok := s.byAlias[alias]; ok {
		delete(s.byID, holder)
	}
	s.byAlias[alias] = targetID
	s.byID[targetID] = alias
}

// Resolve returns the target id bound to alias, if any.
func (s *AliasStore) Resolve(alias string) (string, bool) {
	alias = strings.ToLower(strings.TrimSpace(alias))

	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byAlias[alias]
	return id, ok
}

// AliasFor returns the alias assigned to targetID, if any.
func (s *AliasStore) AliasFor(targetID string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	alias, ok := s.byID[targetID]
	return alias, ok
}

// Remove deletes an alias binding.
func (s *AliasStore) Remove(alias string) bool {
	alias = strings.ToLower(strings.TrimSpace(alias))

	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.byAlias[alias]
	if !ok {
		return false
	}
	delete(s.byAlias, alias)
	delete(s.byID, id)
	return true
}

// Apply decorates a descriptor snapshot with stored aliases.
func (s *AliasStore) Apply(descriptors []Descriptor) []Descriptor {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Descriptor, len(descriptors))
	copy(out, descriptors)
	for i := range out {
		if alias, ok := s.byID[out[i].ID]; ok {
			out[i].Alias = alias
		}
	}
	return out
}
