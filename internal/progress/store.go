package progress

import (
	"context"

	"github.com/rs/zerolog"
)

// Store persists one snapshot per user.
//
// Save upserts: an absent document is created, an existing one is overwritten
// except for its original StartedAt. Load returns nil, nil when the user has no
// document. Reset overwrites every field, StartedAt included.
type Store interface {
	Save(ctx context.Context, userID string, snap Snapshot) error
	Load(ctx context.Context, userID string) (*Snapshot, error)
	Reset(ctx context.Context, userID string, snap Snapshot) error
}

// SnapshotCache is a read-through cache for stored snapshots.
type SnapshotCache interface {
	Get(ctx context.Context, userID string) (*Snapshot, error)
	Set(ctx context.Context, snap Snapshot) error
	Delete(ctx context.Context, userID string) error
}

// CachedStore fronts a Store with a SnapshotCache. Cache failures never fail
// the call; the backing store stays authoritative.
type CachedStore struct {
	store  Store
	cache  SnapshotCache
	logger zerolog.Logger
}

var _ Store = (*CachedStore)(nil)

func NewCachedStore(store Store, cache SnapshotCache, logger zerolog.Logger) *CachedStore {
	return &CachedStore{
		store:  store,
		cache:  cache,
		logger: logger.With().Str("component", "progress_cached_store").Logger(),
	}
}

func (s *CachedStore) Save(ctx context.Context, userID string, snap Snapshot) error {
	if err := s.store.Save(ctx, userID, snap); err != nil {
		return err
	}
	s.invalidate(ctx, userID)
	return nil
}

func (s *CachedStore) Load(ctx context.Context, userID string) (*Snapshot, error) {
	if s.cache != nil {
		cached, err := s.cache.Get(ctx, userID)
		if err != nil {
			s.logger.Warn().Err(err).Str("user_id", userID).Msg("progress cache read failed")
		} else if cached != nil {
			return cached, nil
		}
	}

	snap, err := s.store.Load(ctx, userID)
	if err != nil || snap == nil {
		return snap, err
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, *snap); err != nil {
			s.logger.Warn().Err(err).Str("user_id", userID).Msg("progress cache write failed")
		}
	}
	return snap, nil
}

func (s *CachedStore) Reset(ctx context.Context, userID string, snap Snapshot) error {
	if err := s.store.Reset(ctx, userID, snap); err != nil {
		return err
	}
	s.invalidate(ctx, userID)
	return nil
}

func (s *CachedStore) invalidate(ctx context.Context, userID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, userID); err != nil {
		s.logger.Warn().Err(err).Str("user_id", userID).Msg("progress cache invalidation failed")
	}
}
