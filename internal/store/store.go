// Package store keeps parsed uploads in memory for a limited time.
package store

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"salespro-go/internal/dataset"
	"salespro-go/internal/logger"
)

var ErrNotFound = errors.New("upload not found or expired")

type Upload struct {
	ID         string           `json:"id"`
	Filename   string           `json:"filename"`
	Branches   []string         `json:"branches"`
	Skipped    int              `json:"skipped_cells"`
	CreatedAt  time.Time        `json:"created_at"`
	LastActive time.Time        `json:"last_active"`
	Dataset    *dataset.Dataset `json:"-"`
}

// Store maps upload ids to datasets. Entries idle for longer than the TTL are
// dropped by Sweep.
type Store struct {
	mu      sync.RWMutex
	uploads map[string]*Upload
	ttl     time.Duration
	now     func() time.Time
}

func New(ttl time.Duration) *Store {
	return &Store{
		uploads: make(map[string]*Upload),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Put registers ds under a fresh id.
func (s *Store) Put(filename string, ds *dataset.Dataset) Upload {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	u := &Upload{
		ID:         uuid.New().String(),
		Filename:   filename,
		Branches:   ds.Branches(),
		Skipped:    ds.Skipped,
		CreatedAt:  now,
		LastActive: now,
		Dataset:    ds,
	}
	s.uploads[u.ID] = u
	return *u
}

// Get returns the upload and refreshes its idle timer.
func (s *Store) Get(id string) (Upload, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.uploads[id]
	if !ok || s.expired(u) {
		return Upload{}, ErrNotFound
	}
	u.LastActive = s.now()
	return *u, nil
}

func (s *Store) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.uploads, id)
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.uploads)
}

// Sweep removes expired uploads and returns how many were dropped.
func (s *Store) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for id, u := range s.uploads {
		if s.expired(u) {
			delete(s.uploads, id)
			n++
		}
	}
	return n
}

// Run sweeps every interval until ctx is done.
func (s *Store) Run(ctx context.Context, interval time.Duration) {
	log := logger.Component("store")
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.Sweep(); n > 0 {
				log.WithField("dropped", n).WithField("remaining", s.Len()).Info("expired uploads removed")
			}
		}
	}
}

func (s *Store) expired(u *Upload) bool {
	return s.ttl > 0 && s.now().Sub(u.LastActive) > s.ttl
}
