package progress

import (
	"context"
	"errors"
	"sync"
)

var errBoom = errors.New("boom")

type memoryStore struct {
	mu      sync.Mutex
	docs    map[string]Snapshot
	saveErr error
	loads   int
}

func newMemoryStore() *memoryStore {
	return &memoryStore{docs: map[string]Snapshot{}}
}

func (s *memoryStore) Save(_ context.Context, userID string, snap Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return s.saveErr
	}
	if prev, ok := s.docs[userID]; ok {
		snap.StartedAt = prev.StartedAt
	}
	s.docs[userID] = snap
	return nil
}

func (s *memoryStore) Load(_ context.Context, userID string) (*Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loads++
	snap, ok := s.docs[userID]
	if !ok {
		return nil, nil
	}
	return &snap, nil
}

func (s *memoryStore) Reset(_ context.Context, userID string, snap Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[userID] = snap
	return nil
}

type memoryCache struct {
	store  map[string]Snapshot
	getErr error
	sets   int
}

func newMemoryCache() *memoryCache {
	return &memoryCache{store: map[string]Snapshot{}}
}

func (c *memoryCache) Get(_ context.Context, userID string) (*Snapshot, error) {
	if c.getErr != nil {
		return nil, c.getErr
	}
	if snap, ok := c.store[userID]; ok {
		return &snap, nil
	}
	return nil, nil
}

func (c *memoryCache) Set(_ context.Context, snap Snapshot) error {
	c.sets++
	c.store[snap.UserID] = snap
	return nil
}

func (c *memoryCache) Delete(_ context.Context, userID string) error {
	delete(c.store, userID)
	return nil
}

type recordingPublisher struct {
	mu        sync.Mutex
	published []Snapshot
	err       error
}

func (p *recordingPublisher) Publish(_ context.Context, snap Snapshot) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.published = append(p.published, snap)
	return p.err
}
