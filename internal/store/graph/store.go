// Package graph is the read/write contract for the relationship-graph
// collaborator: pairwise communication-health metrics between the two
// participants of a room.
package graph

import (
	"context"
	"sync"
)

// Health summarizes the pairwise metrics tracked per sender/receiver pair.
type Health struct {
	Messages      int64 `json:"messages"`
	Interventions int64 `json:"interventions"`
}

// Store is the collaborator contract. Writes happen off the response path and
// are best-effort.
type Store interface {
	RecordMessage(ctx context.Context, senderID, receiverID, roomID string) error
	RecordIntervention(ctx context.Context, senderID, receiverID, roomID, patternID string) error
	PairHealth(ctx context.Context, senderID, receiverID string) (Health, error)
}

// MemoryStore backs tests and single-node development.
type MemoryStore struct {
	mu    sync.RWMutex
	pairs map[[2]string]Health
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{pairs: make(map[[2]string]Health)}
}

func (s *MemoryStore) RecordMessage(_ context.Context, senderID, receiverID, _ string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := [2]string{senderID, receiverID}
	health := s.pairs[key]
	health.Messages++
	s.pairs[key] = health
	return nil
}

func (s *MemoryStore) RecordIntervention(_ context.Context, senderID, receiverID, _ string, _ string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := [2]string{senderID, receiverID}
	health := s.pairs[key]
	health.Interventions++
	s.pairs[key] = health
	return nil
}

func (s *MemoryStore) PairHealth(_ context.Context, senderID, receiverID string) (Health, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pairs[[2]string{senderID, receiverID}], nil
}
