package progress

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
)

// Publisher announces saved snapshots to live clients.
type Publisher interface {
	Publish(ctx context.Context, snap Snapshot) error
}

// Service is the progress facade used by the quiz controller and the HTTP layer.
type Service struct {
	store     Store
	agg       *Aggregator
	publisher Publisher
	logger    zerolog.Logger
}

func NewService(store Store, agg *Aggregator, publisher Publisher, logger zerolog.Logger) *Service {
	return &Service{
		store:     store,
		agg:       agg,
		publisher: publisher,
		logger:    logger.With().Str("component", "progress_service").Logger(),
	}
}

// Aggregator returns the aggregator bound to the question bank.
func (s *Service) Aggregator() *Aggregator { return s.agg }

// Save persists snap and announces it. A failed announcement is only logged.
func (s *Service) Save(ctx context.Context, snap Snapshot) error {
	if err := s.store.Save(ctx, snap.UserID, snap); err != nil {
		return fmt.Errorf("save progress: %w", err)
	}
	s.publish(ctx, snap)
	return nil
}

// Load returns the stored snapshot of userID, or nil when there is none.
func (s *Service) Load(ctx context.Context, userID string) (*Snapshot, error) {
	snap, err := s.store.Load(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load progress: %w", err)
	}
	return snap, nil
}

// LoadOrEmpty is Load with a zeroed snapshot in place of a missing one.
func (s *Service) LoadOrEmpty(ctx context.Context, userID string) (Snapshot, error) {
	snap, err := s.Load(ctx, userID)
	if err != nil {
		return Snapshot{}, err
	}
	if snap == nil {
		return s.agg.Empty(userID), nil
	}
	return *snap, nil
}

// Reset zeroes the counters of userID and clears the stored answers.
func (s *Service) Reset(ctx context.Context, userID string) (Snapshot, error) {
	snap := s.agg.Empty(userID)
	if err := s.store.Reset(ctx, userID, snap); err != nil {
		return Snapshot{}, fmt.Errorf("reset progress: %w", err)
	}
	s.publish(ctx, snap)
	return snap, nil
}

func (s *Service) publish(ctx context.Context, snap Snapshot) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, snap); err != nil {
		s.logger.Warn().Err(err).Str("user_id", snap.UserID).Msg("progress publish failed")
	}
}
