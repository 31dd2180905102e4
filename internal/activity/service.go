package activity

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/aprendeexcel/quiz-engine/internal/metrics"
)

// DefaultRecentLimit caps the activity log returned with a progress read.
const DefaultRecentLimit = 20

// Store persists learning progress and the activity log.
type Store interface {
	// Load returns nil, nil when the user has no record yet.
	Load(ctx context.Context, userID string) (*Progress, error)
	// Apply runs fn against the current record of userID, creating one at
	// now when absent, and stores the result together with the returned
	// entry as one unit. An error from fn discards the change.
	Apply(ctx context.Context, userID string, now time.Time, fn func(*Progress) (*Entry, error)) (*Progress, error)
	Recent(ctx context.Context, userID string, limit int) ([]Entry, error)
}

// Result is returned by every recorded action.
type Result struct {
	Progress *Progress `json:"progress"`
	Stats    Stats     `json:"stats"`
	Awarded  int       `json:"awarded_points"`
}

// Overview is the dashboard read model.
type Overview struct {
	Progress *Progress `json:"progress"`
	Stats    Stats     `json:"stats"`
	Recent   []Entry   `json:"recent"`
}

// Service applies learner actions to stored progress.
type Service struct {
	store  Store
	now    func() time.Time
	logger zerolog.Logger
}

func NewService(store Store, now func() time.Time, logger zerolog.Logger) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{
		store:  store,
		now:    now,
		logger: logger.With().Str("component", "activity_service").Logger(),
	}
}

// Overview returns the progress of userID with its most recent activities.
// Users without a record get an empty one that is not persisted.
func (s *Service) Overview(ctx context.Context, userID string, limit int) (Overview, error) {
	p, err := s.store.Load(ctx, userID)
	if err != nil {
		return Overview{}, fmt.Errorf("load activity progress: %w", err)
	}
	if p == nil {
		p = NewProgress(userID, s.now().UTC())
	}
	if limit <= 0 {
		limit = DefaultRecentLimit
	}
	recent, err := s.store.Recent(ctx, userID, limit)
	if err != nil {
		return Overview{}, fmt.Errorf("list activities: %w", err)
	}
	return Overview{Progress: p, Stats: p.Stats(), Recent: recent}, nil
}

func (s *Service) DownloadExercise(ctx context.Context, userID string, subj Subject) (Result, error) {
	return s.apply(ctx, userID, KindExercise, ActionDownloaded, subj, func(p *Progress, now time.Time) (int, *Entry, error) {
		return p.DownloadExercise(subj.ID, now), entry(userID, KindExercise, ActionDownloaded, subj, now), nil
	})
}

func (s *Service) CompleteExercise(ctx context.Context, userID string, subj Subject, minutes int) (Result, error) {
	if minutes < 0 {
		return Result{}, ErrInvalidTime
	}
	return s.apply(ctx, userID, KindExercise, ActionCompleted, subj, func(p *Progress, now time.Time) (int, *Entry, error) {
		return p.CompleteExercise(subj.ID, minutes, now), entry(userID, KindExercise, ActionCompleted, subj, now), nil
	})
}

func (s *Service) ViewFormula(ctx context.Context, userID string, subj Subject) (Result, error) {
	return s.apply(ctx, userID, KindFormula, ActionViewed, subj, func(p *Progress, now time.Time) (int, *Entry, error) {
		return p.ViewFormula(subj.ID, now), entry(userID, KindFormula, ActionViewed, subj, now), nil
	})
}

func (s *Service) PracticeFormula(ctx context.Context, userID string, subj Subject) (Result, error) {
	return s.apply(ctx, userID, KindFormula, ActionPracticed, subj, func(p *Progress, now time.Time) (int, *Entry, error) {
		return p.PracticeFormula(subj.ID, now), entry(userID, KindFormula, ActionPracticed, subj, now), nil
	})
}

func (s *Service) MasterFormula(ctx context.Context, userID string, subj Subject) (Result, error) {
	return s.apply(ctx, userID, KindFormula, ActionMastered, subj, func(p *Progress, now time.Time) (int, *Entry, error) {
		return p.MasterFormula(subj.ID, now), entry(userID, KindFormula, ActionMastered, subj, now), nil
	})
}

func (s *Service) StartVideo(ctx context.Context, userID string, subj Subject, totalDuration int) (Result, error) {
	return s.apply(ctx, userID, KindVideo, ActionStarted, subj, func(p *Progress, now time.Time) (int, *Entry, error) {
		awarded, err := p.StartVideo(subj.ID, totalDuration, now)
		if err != nil {
			return 0, nil, err
		}
		e := entry(userID, KindVideo, ActionStarted, subj, now)
		e.TotalDuration = totalDuration
		return awarded, e, nil
	})
}

// UpdateVideo stores a playback position. Only the update that completes the
// video is written to the activity log.
func (s *Service) UpdateVideo(ctx context.Context, userID string, subj Subject, watchTime, totalDuration int) (Result, error) {
	return s.apply(ctx, userID, KindVideo, ActionProgress, subj, func(p *Progress, now time.Time) (int, *Entry, error) {
		awarded, completed, err := p.UpdateVideo(subj.ID, watchTime, totalDuration, now)
		if err != nil || !completed {
			return awarded, nil, err
		}
		e := entry(userID, KindVideo, ActionCompleted, subj, now)
		e.WatchTime = watchTime
		e.TotalDuration = totalDuration
		return awarded, e, nil
	})
}

func (s *Service) apply(ctx context.Context, userID string, kind Kind, action Action, subj Subject, fn func(*Progress, time.Time) (int, *Entry, error)) (Result, error) {
	if subj.ID == "" {
		return Result{}, ErrMissingSubject
	}
	now := s.now().UTC()
	var awarded int
	p, err := s.store.Apply(ctx, userID, now, func(p *Progress) (*Entry, error) {
		n, e, err := fn(p, now)
		awarded = n
		return e, err
	})
	if err != nil {
		return Result{}, fmt.Errorf("record %s %s: %w", kind, action, err)
	}
	metrics.ActivityEvents.WithLabelValues(string(action)).Inc()
	s.logger.Debug().
		Str("user_id", userID).
		Str("kind", string(kind)).
		Str("action", string(action)).
		Str("subject_id", subj.ID).
		Int("awarded", awarded).
		Int("points", p.Points).
		Msg("activity recorded")
	return Result{Progress: p, Stats: p.Stats(), Awarded: awarded}, nil
}

func entry(userID string, kind Kind, action Action, subj Subject, now time.Time) *Entry {
	return &Entry{UserID: userID, Kind: kind, Subject: subj, Action: action, At: now}
}
