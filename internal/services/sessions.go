package services

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/hoopsight/hoopsight/internal/models"
)

// WhatIfSession holds one client's draft orderings for one season.
// Sessions live only in memory and expire after idling; simulation
// state is never persisted.
type WhatIfSession struct {
	ID         string    `json:"id"`
	SeasonSlug string    `json:"season_slug"`
	Drafts     *Drafts   `json:"drafts"`
	LastAccess time.Time `json:"-"`

	baseline []models.OrderedTeam
}

// snapshot copies the session with cloned drafts so callers can read
// and project it outside the store lock.
func (s *WhatIfSession) snapshot() *WhatIfSession {
	return &WhatIfSession{
		ID:         s.ID,
		SeasonSlug: s.SeasonSlug,
		Drafts:     s.Drafts.Clone(),
		LastAccess: s.LastAccess,
	}
}

// WhatIfStore is the in-memory session registry.
type WhatIfStore struct {
	mu          sync.Mutex
	sessions    map[string]*WhatIfSession
	idleTimeout time.Duration
	logger      *logrus.Logger
}

func NewWhatIfStore(idleTimeout time.Duration, logger *logrus.Logger) *WhatIfStore {
	return &WhatIfStore{
		sessions:    make(map[string]*WhatIfSession),
		idleTimeout: idleTimeout,
		logger:      logger,
	}
}

// Create opens a session with drafts initialized from the standings
// index.
func (s *WhatIfStore) Create(seasonSlug string, index []models.OrderedTeam) *WhatIfSession {
	session := &WhatIfSession{
		ID:         uuid.NewString(),
		SeasonSlug: seasonSlug,
		Drafts:     NewDrafts(index),
		LastAccess: time.Now(),
		baseline:   index,
	}

	s.mu.Lock()
	s.sessions[session.ID] = session
	s.mu.Unlock()
	return session.snapshot()
}

// Get returns a snapshot of the session and refreshes its idle clock.
// The stored session is only ever touched under the store lock, so a
// concurrent Drag cannot race a caller projecting the returned drafts.
func (s *WhatIfStore) Get(id string) (*WhatIfSession, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[id]
	if !ok {
		return nil, false
	}
	session.LastAccess = time.Now()
	return session.snapshot(), true
}

// Drag applies one reorder to the named conference of a session.
func (s *WhatIfStore) Drag(id string, conf models.Conference, from, to int, enabled bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[id]
	if !ok {
		return ErrSessionNotFound
	}
	session.LastAccess = time.Now()
	return session.Drafts.ApplyDrag(conf, from, to, enabled)
}

// Reset restores a session's drafts to the standings index it was
// opened with.
func (s *WhatIfStore) Reset(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[id]
	if !ok {
		return ErrSessionNotFound
	}
	session.LastAccess = time.Now()
	session.Drafts.Reset(session.baseline)
	return nil
}

// Delete removes a session.
func (s *WhatIfStore) Delete(id string) {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
}

// Sweep drops sessions idle past the timeout and returns how many
// were removed.
func (s *WhatIfStore) Sweep(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, session := range s.sessions {
		if now.Sub(session.LastAccess) > s.idleTimeout {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}

// StartSweeper runs the idle sweep until the context is canceled.
func (s *WhatIfStore) StartSweeper(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				if removed := s.Sweep(now); removed > 0 {
					s.logger.WithFields(logrus.Fields{
						"component": "whatif_store",
						"removed":   removed,
					}).Debug("Swept idle what-if sessions")
				}
			}
		}
	}()
}
