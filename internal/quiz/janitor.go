package quiz

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// Janitor periodically evicts idle sessions from memory.
type Janitor struct {
	svc      *Service
	interval time.Duration
	logger   zerolog.Logger
}

func NewJanitor(svc *Service, interval time.Duration, logger zerolog.Logger) *Janitor {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &Janitor{
		svc:      svc,
		interval: interval,
		logger:   logger.With().Str("component", "quiz_session_janitor").Logger(),
	}
}

// Run blocks until context cancellation.
func (j *Janitor) Run(ctx context.Context) error {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if removed := j.svc.Sweep(); removed > 0 {
				j.logger.Info().Int("removed", removed).Int("remaining", j.svc.Len()).Msg("evicted idle sessions")
			}
		}
	}
}
