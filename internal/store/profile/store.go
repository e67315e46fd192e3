// Package profile is the read/write contract for the participant-profile
// collaborator: display attributes, mediation consent, and the long-lived
// record of interventions against a sender.
package profile

import (
	"context"
	"errors"
	"sync"
	"time"
)

var ErrNotFound = errors.New("profile not found")

// Profile is the subset of participant attributes the core reads.
// MediationConsent false is an explicit opt-out from interventions.
type Profile struct {
	ID               string    `json:"id"`
	DisplayName      string    `json:"displayName"`
	MediationConsent bool      `json:"mediationConsent"`
	Interventions    int64     `json:"interventions"`
	LastIntervention time.Time `json:"lastIntervention"`
}

// Store is the collaborator contract. Writes are best-effort from the
// engine's perspective; implementations decide durability.
type Store interface {
	Get(ctx context.Context, participantID string) (Profile, error)
	// RecordIntervention increments the sender's intervention tally for the
	// given behavioral pattern.
	RecordIntervention(ctx context.Context, participantID, patternID string) error
}

// MemoryStore backs tests and single-node development.
type MemoryStore struct {
	mu       sync.RWMutex
	profiles map[string]Profile
	patterns map[string]map[string]int64
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		profiles: make(map[string]Profile),
		patterns: make(map[string]map[string]int64),
	}
}

// Put seeds or replaces a profile.
func (s *MemoryStore) Put(profile Profile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles[profile.ID] = profile
}

func (s *MemoryStore) Get(_ context.Context, participantID string) (Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	profile, ok := s.profiles[participantID]
	if !ok {
		return Profile{}, ErrNotFound
	}
	return profile, nil
}

func (s *MemoryStore) RecordIntervention(_ context.Context, participantID, patternID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	profile := s.profiles[participantID]
	profile.ID = participantID
	profile.Interventions++
	profile.LastIntervention = time.Now().UTC()
	s.profiles[participantID] = profile

	if s.patterns[participantID] == nil {
		s.patterns[participantID] = make(map[string]int64)
	}
	s.patterns[participantID][patternID]++
	return nil
}

// PatternCount reports how often a pattern was recorded for a participant.
func (s *MemoryStore) PatternCount(participantID, patternID string) int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.patterns[participantID][patternID]
}
