package storage

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/CVSRohit/PodcastGen/models"
)

// Storage keeps one PodcastSession per browser session.
type Storage struct {
	mu              sync.Mutex
	podcastSessions map[string]*models.PodcastSession
}

func NewStorage() *Storage {
	return &Storage{
		podcastSessions: make(map[string]*models.PodcastSession),
	}
}

// NewSessionID returns a fresh random session id.
func NewSessionID() string {
	return uuid.New().String()
}

// Get returns a copy of the session, creating an empty one on first use.
func (s *Storage) Get(id string) models.PodcastSession {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.getLocked(id)
}

// Update applies fn to the stored session under the lock and returns the
// updated copy.
func (s *Storage) Update(id string, fn func(*models.PodcastSession)) models.PodcastSession {
	s.mu.Lock()
	defer s.mu.Unlock()
	ps := s.getLocked(id)
	fn(ps)
	ps.UpdatedAt = time.Now()
	return *ps
}

func (s *Storage) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.podcastSessions, id)
}

// Evict removes every session last updated before cutoff and returns them so
// the caller can release their files.
func (s *Storage) Evict(cutoff time.Time) []models.PodcastSession {
	s.mu.Lock()
	defer s.mu.Unlock()
	var evicted []models.PodcastSession
	for id, ps := range s.podcastSessions {
		if ps.UpdatedAt.Before(cutoff) {
			evicted = append(evicted, *ps)
			delete(s.podcastSessions, id)
		}
	}
	return evicted
}

func (s *Storage) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.podcastSessions)
}

func (s *Storage) getLocked(id string) *models.PodcastSession {
	ps, ok := s.podcastSessions[id]
	if !ok {
		ps = &models.PodcastSession{ID: id, UpdatedAt: time.Now()}
		s.podcastSessions[id] = ps
	}
	return ps
}
