package quiz

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/aprendeexcel/quiz-engine/internal/metrics"
	"github.com/aprendeexcel/quiz-engine/internal/notify"
	"github.com/aprendeexcel/quiz-engine/internal/progress"
	"github.com/aprendeexcel/quiz-engine/internal/question"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrNotCompleted    = errors.New("session is still in progress")
)

// ProgressSaver persists aggregated snapshots.
type ProgressSaver interface {
	Save(ctx context.Context, snap progress.Snapshot) error
}

// CompletionNotifier is told about every finished quiz.
type CompletionNotifier interface {
	NotifyQuizCompletion(ctx context.Context, c notify.QuizCompletion) error
}

// ServiceOptions tunes session lifetime and save deadlines.
type ServiceOptions struct {
	IntermediateSaveTimeout time.Duration
	FinalSaveTimeout        time.Duration
	SessionTTL              time.Duration
	Now                     func() time.Time
	Shuffle                 func([]question.Question) []question.Question
}

// Completion is the outcome of finishing a session. The snapshot is always
// available; Saved reports whether it reached the store.
type Completion struct {
	Snapshot  progress.Snapshot `json:"snapshot"`
	Saved     bool              `json:"saved"`
	Retryable bool              `json:"retryable"`
	Error     string            `json:"error,omitempty"`
}

// Result is returned by every session operation.
type Result struct {
	View       View        `json:"session"`
	Answer     *AnswerView `json:"answer,omitempty"`
	Completion *Completion `json:"completion,omitempty"`
}

type entry struct {
	mu         sync.Mutex
	session    *Session
	lastSeen   time.Time
	completion *Completion

	// At most one goroutine flushes intermediate snapshots of a session, so
	// they reach the store in order and the final save lands last.
	saveMu   sync.Mutex
	queued   *progress.Snapshot
	flushing bool
	flushed  sync.WaitGroup
}

// result renders the entry; the caller holds e.mu.
func (e *entry) result() Result {
	res := Result{View: e.session.View()}
	if e.completion != nil {
		c := *e.completion
		res.Completion = &c
	}
	return res
}

// Service owns live sessions and drives persistence around them.
type Service struct {
	agg      *progress.Aggregator
	saver    ProgressSaver
	notifier CompletionNotifier
	opts     ServiceOptions
	logger   zerolog.Logger

	mu       sync.Mutex
	sessions map[uuid.UUID]*entry

	pending sync.WaitGroup
}

func NewService(agg *progress.Aggregator, saver ProgressSaver, notifier CompletionNotifier, opts ServiceOptions, logger zerolog.Logger) *Service {
	if opts.IntermediateSaveTimeout <= 0 {
		opts.IntermediateSaveTimeout = 3 * time.Second
	}
	if opts.FinalSaveTimeout <= 0 {
		opts.FinalSaveTimeout = 5 * time.Second
	}
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = 2 * time.Hour
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Shuffle == nil {
		opts.Shuffle = question.Shuffle
	}
	return &Service{
		agg:      agg,
		saver:    saver,
		notifier: notifier,
		opts:     opts,
		logger:   logger.With().Str("component", "quiz_service").Logger(),
		sessions: make(map[uuid.UUID]*entry),
	}
}

// Questions lists the bank in authored order for display.
func (s *Service) Questions() []question.Public {
	all := s.agg.Bank().All()
	out := make([]question.Public, len(all))
	for i, q := range all {
		out[i] = q.Public()
	}
	return out
}

// Start opens a new session over a fresh shuffle of the bank.
func (s *Service) Start(_ context.Context, userID string) (Result, error) {
	sess, err := NewSession(uuid.New(), userID, s.opts.Shuffle(s.agg.Bank().All()), s.opts.Now)
	if err != nil {
		return Result{}, err
	}

	s.mu.Lock()
	s.sessions[sess.ID()] = &entry{session: sess, lastSeen: s.opts.Now()}
	active := len(s.sessions)
	s.mu.Unlock()

	metrics.SessionsStarted.Inc()
	metrics.ActiveSessions.Set(float64(active))
	s.logger.Info().Str("user_id", userID).Str("session_id", sess.ID().String()).Msg("quiz session started")
	return Result{View: sess.View()}, nil
}

// acquire returns the locked entry of a session owned by userID. Sessions of
// other users are reported as missing.
func (s *Service) acquire(id uuid.UUID, userID string) (*entry, error) {
	s.mu.Lock()
	e, ok := s.sessions[id]
	s.mu.Unlock()
	if !ok || e.session.UserID() != userID {
		return nil, ErrSessionNotFound
	}
	e.mu.Lock()
	e.lastSeen = s.opts.Now()
	return e, nil
}

// Get returns the current view of a session.
func (s *Service) Get(_ context.Context, id uuid.UUID, userID string) (Result, error) {
	e, err := s.acquire(id, userID)
	if err != nil {
		return Result{}, err
	}
	defer e.mu.Unlock()
	return e.result(), nil
}

// Submit records an answer and saves progress in the background.
func (s *Service) Submit(_ context.Context, id uuid.UUID, userID, questionID string, resp question.Response) (Result, error) {
	e, err := s.acquire(id, userID)
	if err != nil {
		return Result{}, err
	}
	defer e.mu.Unlock()

	sess := e.session
	ans, err := sess.SubmitAnswer(questionID, resp)
	if err != nil {
		return Result{}, err
	}

	q, _ := s.agg.Bank().Get(questionID)
	metrics.AnswersSubmitted.WithLabelValues(string(q.Type), strconv.FormatBool(ans.IsCorrect)).Inc()

	s.saveAsync(e, s.snapshot(sess))

	av := answerView(q, ans)
	return Result{View: sess.View(), Answer: &av}, nil
}

// Next advances the session; moving past the last question completes it.
func (s *Service) Next(ctx context.Context, id uuid.UUID, userID string) (Result, error) {
	return s.transition(ctx, id, userID, (*Session).GoNext)
}

// Previous steps the session back one question.
func (s *Service) Previous(ctx context.Context, id uuid.UUID, userID string) (Result, error) {
	return s.transition(ctx, id, userID, (*Session).GoPrevious)
}

// Complete finalizes the session from any question.
func (s *Service) Complete(ctx context.Context, id uuid.UUID, userID string) (Result, error) {
	return s.transition(ctx, id, userID, (*Session).Complete)
}

func (s *Service) transition(ctx context.Context, id uuid.UUID, userID string, step func(*Session) error) (Result, error) {
	e, err := s.acquire(id, userID)
	if err != nil {
		return Result{}, err
	}
	defer e.mu.Unlock()

	if err := step(e.session); err != nil {
		return Result{}, err
	}
	if e.session.Completed() && e.completion == nil {
		s.finalize(ctx, e)
	}
	return e.result(), nil
}

// RetrySave re-attempts a failed final save. It succeeds without writing
// when the final snapshot is already stored.
func (s *Service) RetrySave(ctx context.Context, id uuid.UUID, userID string) (Result, error) {
	e, err := s.acquire(id, userID)
	if err != nil {
		return Result{}, err
	}
	defer e.mu.Unlock()

	if e.completion == nil {
		return Result{}, ErrNotCompleted
	}
	if !e.completion.Saved {
		s.saveFinal(ctx, e.completion)
	}
	return e.result(), nil
}

func (s *Service) finalize(ctx context.Context, e *entry) {
	sess := e.session
	e.flushed.Wait()
	e.completion = &Completion{Snapshot: s.snapshot(sess)}
	s.saveFinal(ctx, e.completion)

	metrics.SessionsCompleted.Inc()
	s.logger.Info().
		Str("user_id", sess.UserID()).
		Str("session_id", sess.ID().String()).
		Int("score", sess.Score()).
		Bool("saved", e.completion.Saved).
		Msg("quiz session completed")

	s.notify(sess, e.completion.Snapshot)
}

func (s *Service) snapshot(sess *Session) progress.Snapshot {
	snap := s.agg.Aggregate(sess.UserID(), sess.Answers())
	snap.StartedAt = sess.StartedAt().UTC()
	return snap
}

// saveFinal is awaited by the caller and bounded by the final save timeout.
// saveFinal is bounded by FinalSaveTimeout only; cancelling the request
// context does not abort it.
func (s *Service) saveFinal(ctx context.Context, c *Completion) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.opts.FinalSaveTimeout)
	defer cancel()

	err := s.save(ctx, metrics.SaveFinal, c.Snapshot)
	c.Saved = err == nil
	c.Retryable = err != nil
	c.Error = ""
	if err != nil {
		c.Error = "progress could not be saved, please retry"
		s.logger.Error().Err(err).Str("user_id", c.Snapshot.UserID).Msg("final progress save failed")
	}
}

// saveAsync queues an intermediate snapshot without blocking the caller,
// which holds e.mu. A queued snapshot not yet written is replaced by the
// newer one. Failures are logged and dropped.
func (s *Service) saveAsync(e *entry, snap progress.Snapshot) {
	e.saveMu.Lock()
	defer e.saveMu.Unlock()
	e.queued = &snap
	if e.flushing {
		return
	}
	e.flushing = true
	e.flushed.Add(1)
	s.pending.Add(1)
	go s.flush(e)
}

func (s *Service) flush(e *entry) {
	defer s.pending.Done()
	defer e.flushed.Done()
	for {
		e.saveMu.Lock()
		snap := e.queued
		e.queued = nil
		if snap == nil {
			e.flushing = false
			e.saveMu.Unlock()
			return
		}
		e.saveMu.Unlock()

		ctx, cancel := context.WithTimeout(context.Background(), s.opts.IntermediateSaveTimeout)
		if err := s.save(ctx, metrics.SaveIntermediate, *snap); err != nil {
			s.logger.Warn().Err(err).Str("user_id", snap.UserID).Msg("intermediate progress save failed")
		}
		cancel()
	}
}

func (s *Service) save(ctx context.Context, kind string, snap progress.Snapshot) error {
	start := time.Now()
	err := s.saver.Save(ctx, snap)
	metrics.ProgressSaveDuration.WithLabelValues(kind).Observe(time.Since(start).Seconds())
	metrics.ProgressSaves.WithLabelValues(kind, metrics.Status(err)).Inc()
	if err != nil {
		return fmt.Errorf("%s save: %w", kind, err)
	}
	return nil
}

func (s *Service) notify(sess *Session, snap progress.Snapshot) {
	if s.notifier == nil {
		return
	}
	notice := notify.QuizCompletion{
		UserID:          sess.UserID(),
		SessionID:       sess.ID().String(),
		Score:           snap.TotalPoints,
		MaxScore:        snap.MaxPoints,
		Answered:        snap.AnsweredQuestions,
		Correct:         snap.CorrectAnswers,
		TotalQuestions:  snap.TotalQuestions,
		AccuracyPercent: snap.AccuracyPercent,
		Duration:        sess.Elapsed(),
		CompletedAt:     sess.CompletedAt(),
	}
	s.pending.Add(1)
	go func() {
		defer s.pending.Done()
		ctx, cancel := context.WithTimeout(context.Background(), s.opts.FinalSaveTimeout)
		defer cancel()
		if err := s.notifier.NotifyQuizCompletion(ctx, notice); err != nil {
			s.logger.Warn().Err(err).Str("user_id", notice.UserID).Msg("completion notice failed")
		}
	}()
}

// Sweep evicts sessions idle for longer than the session TTL and returns how
// many were removed.
func (s *Service) Sweep() int {
	cutoff := s.opts.Now().Add(-s.opts.SessionTTL)

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, e := range s.sessions {
		if !e.mu.TryLock() {
			continue
		}
		idle := e.lastSeen.Before(cutoff)
		e.mu.Unlock()
		if idle {
			delete(s.sessions, id)
			removed++
		}
	}
	metrics.ActiveSessions.Set(float64(len(s.sessions)))
	return removed
}

// Len is the number of live sessions.
func (s *Service) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Wait blocks until background saves and notices have finished.
func (s *Service) Wait() {
	s.pending.Wait()
}
