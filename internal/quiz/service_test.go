package quiz

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aprendeexcel/quiz-engine/internal/notify"
	"github.com/aprendeexcel/quiz-engine/internal/progress"
	"github.com/aprendeexcel/quiz-engine/internal/question"
)

type recordingSaver struct {
	mu    sync.Mutex
	saved []progress.Snapshot
	err   error
}

func (s *recordingSaver) Save(_ context.Context, snap progress.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.saved = append(s.saved, snap)
	return nil
}

func (s *recordingSaver) setErr(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

func (s *recordingSaver) snapshots() []progress.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]progress.Snapshot(nil), s.saved...)
}

type recordingNotifier struct {
	mu      sync.Mutex
	notices []notify.QuizCompletion
}

func (n *recordingNotifier) NotifyQuizCompletion(_ context.Context, c notify.QuizCompletion) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notices = append(n.notices, c)
	return nil
}

type fixture struct {
	svc      *Service
	saver    *recordingSaver
	notifier *recordingNotifier
	clock    *fakeClock
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	bank, err := question.NewBank(threeQuestions())
	require.NoError(t, err)

	f := &fixture{saver: &recordingSaver{}, notifier: &recordingNotifier{}, clock: newFakeClock()}
	agg := progress.NewAggregator(bank, f.clock.Now, zerolog.Nop())
	f.svc = NewService(agg, f.saver, f.notifier, ServiceOptions{
		SessionTTL: time.Hour,
		Now:        f.clock.Now,
		Shuffle:    func(q []question.Question) []question.Question { return q },
	}, zerolog.Nop())
	return f
}

func (f *fixture) start(t *testing.T) uuid.UUID {
	t.Helper()
	res, err := f.svc.Start(context.Background(), "user-1")
	require.NoError(t, err)
	return uuid.MustParse(res.View.SessionID)
}

func TestStartCreatesSession(t *testing.T) {
	f := newFixture(t)
	res, err := f.svc.Start(context.Background(), "user-1")
	require.NoError(t, err)

	assert.Equal(t, StateInProgress, res.View.State)
	assert.Equal(t, 3, res.View.Total)
	assert.Equal(t, "q1", res.View.Question.ID)
	assert.Equal(t, 1, f.svc.Len())
}

func TestSessionsAreScopedToTheirOwner(t *testing.T) {
	f := newFixture(t)
	id := f.start(t)

	_, err := f.svc.Get(context.Background(), id, "intruder")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	_, err = f.svc.Get(context.Background(), uuid.New(), "user-1")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestSubmitSavesInBackground(t *testing.T) {
	f := newFixture(t)
	id := f.start(t)

	res, err := f.svc.Submit(context.Background(), id, "user-1", "q1", question.Response{OptionID: "x"})
	require.NoError(t, err)
	require.NotNil(t, res.Answer)
	assert.True(t, res.Answer.IsCorrect)
	assert.Equal(t, "SUM adds a range.", res.Answer.Explanation)
	assert.Equal(t, 5, res.View.Score)

	f.svc.Wait()
	saved := f.saver.snapshots()
	require.Len(t, saved, 1)
	assert.Equal(t, "user-1", saved[0].UserID)
	assert.Equal(t, 1, saved[0].AnsweredQuestions)
	assert.Equal(t, 5, saved[0].TotalPoints)
	assert.Equal(t, 20, saved[0].MaxPoints)
}

func TestIntermediateSaveFailureIsSilent(t *testing.T) {
	f := newFixture(t)
	f.saver.setErr(errors.New("store down"))
	id := f.start(t)

	res, err := f.svc.Submit(context.Background(), id, "user-1", "q2", question.Response{Value: question.Bool(false)})
	require.NoError(t, err)
	assert.False(t, res.Answer.IsCorrect)
	f.svc.Wait()

	view, err := f.svc.Get(context.Background(), id, "user-1")
	require.NoError(t, err)
	assert.Equal(t, 1, view.View.Answered)
}

func TestSubmitRejectionsPropagate(t *testing.T) {
	f := newFixture(t)
	id := f.start(t)

	_, err := f.svc.Submit(context.Background(), id, "user-1", "q3", question.Response{Text: ""})
	assert.ErrorIs(t, err, question.ErrEmptyResponse)

	_, err = f.svc.Submit(context.Background(), id, "user-1", "nope", question.Response{Text: "x"})
	assert.ErrorIs(t, err, ErrUnknownQuestion)

	f.svc.Wait()
	assert.Empty(t, f.saver.snapshots())
}

func TestNextPastLastQuestionCompletesAndSaves(t *testing.T) {
	f := newFixture(t)
	id := f.start(t)
	ctx := context.Background()

	_, err := f.svc.Submit(ctx, id, "user-1", "q1", question.Response{OptionID: "x"})
	require.NoError(t, err)
	for i := 0; i < 2; i++ {
		res, err := f.svc.Next(ctx, id, "user-1")
		require.NoError(t, err)
		assert.Nil(t, res.Completion)
	}

	res, err := f.svc.Next(ctx, id, "user-1")
	require.NoError(t, err)
	assert.Equal(t, StateCompleted, res.View.State)
	require.NotNil(t, res.Completion)
	assert.True(t, res.Completion.Saved)
	assert.False(t, res.Completion.Retryable)
	assert.Equal(t, 5, res.Completion.Snapshot.TotalPoints)

	_, err = f.svc.Next(ctx, id, "user-1")
	assert.ErrorIs(t, err, ErrSessionCompleted)

	f.svc.Wait()
	require.Len(t, f.notifier.notices, 1)
	assert.Equal(t, 5, f.notifier.notices[0].Score)
	assert.Equal(t, 20, f.notifier.notices[0].MaxScore)
}

type ctxAwareSaver struct {
	recordingSaver
}

func (s *ctxAwareSaver) Save(ctx context.Context, snap progress.Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.recordingSaver.Save(ctx, snap)
}

func TestFinalSaveOutlivesCancelledRequest(t *testing.T) {
	f := newFixture(t)
	saver := &ctxAwareSaver{}
	f.svc.saver = saver
	id := f.start(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res, err := f.svc.Complete(ctx, id, "user-1")
	require.NoError(t, err)
	require.NotNil(t, res.Completion)
	assert.True(t, res.Completion.Saved)
	assert.False(t, res.Completion.Retryable)

	f.svc.Wait()
	assert.Len(t, saver.snapshots(), 1)
}

func TestFailedFinalSaveIsRetryable(t *testing.T) {
	f := newFixture(t)
	id := f.start(t)
	ctx := context.Background()

	_, err := f.svc.Submit(ctx, id, "user-1", "q2", question.Response{Value: question.Bool(true)})
	require.NoError(t, err)
	f.svc.Wait()
	f.saver.setErr(errors.New("timeout"))

	res, err := f.svc.Complete(ctx, id, "user-1")
	require.NoError(t, err)
	require.NotNil(t, res.Completion)
	assert.False(t, res.Completion.Saved)
	assert.True(t, res.Completion.Retryable)
	assert.NotEmpty(t, res.Completion.Error)
	assert.Equal(t, 1, res.Completion.Snapshot.CorrectAnswers)

	view, err := f.svc.Get(ctx, id, "user-1")
	require.NoError(t, err)
	assert.Equal(t, StateCompleted, view.View.State)
	assert.False(t, view.Completion.Saved)

	f.saver.setErr(nil)
	res, err = f.svc.RetrySave(ctx, id, "user-1")
	require.NoError(t, err)
	assert.True(t, res.Completion.Saved)
	assert.Empty(t, res.Completion.Error)

	saved := f.saver.snapshots()
	last := saved[len(saved)-1]
	assert.Equal(t, 1, last.CorrectAnswers)
}

func TestRetrySaveBeforeCompletion(t *testing.T) {
	f := newFixture(t)
	id := f.start(t)

	_, err := f.svc.RetrySave(context.Background(), id, "user-1")
	assert.ErrorIs(t, err, ErrNotCompleted)
}

func TestRetrySaveAfterSuccessDoesNotWriteAgain(t *testing.T) {
	f := newFixture(t)
	id := f.start(t)
	ctx := context.Background()

	_, err := f.svc.Complete(ctx, id, "user-1")
	require.NoError(t, err)
	f.svc.Wait()
	before := len(f.saver.snapshots())

	res, err := f.svc.RetrySave(ctx, id, "user-1")
	require.NoError(t, err)
	assert.True(t, res.Completion.Saved)
	assert.Len(t, f.saver.snapshots(), before)
}

func TestSweepEvictsIdleSessions(t *testing.T) {
	f := newFixture(t)
	idle := f.start(t)
	f.clock.Advance(50 * time.Minute)
	active := f.start(t)
	f.clock.Advance(20 * time.Minute)

	assert.Equal(t, 1, f.svc.Sweep())
	assert.Equal(t, 1, f.svc.Len())

	_, err := f.svc.Get(context.Background(), idle, "user-1")
	assert.ErrorIs(t, err, ErrSessionNotFound)
	_, err = f.svc.Get(context.Background(), active, "user-1")
	assert.NoError(t, err)
}

func TestConcurrentSubmissionsAreSerialized(t *testing.T) {
	f := newFixture(t)
	id := f.start(t)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.Submit(context.Background(), id, "user-1", "q1", question.Response{OptionID: "x"})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	f.svc.Wait()

	res, err := f.svc.Get(context.Background(), id, "user-1")
	require.NoError(t, err)
	assert.Equal(t, 1, res.View.Answered)
	require.NotNil(t, res.View.Answer)
	assert.Equal(t, 20, res.View.Answer.AttemptCount)
}

func TestQuestionsHidesAnswerKeys(t *testing.T) {
	f := newFixture(t)
	qs := f.svc.Questions()
	require.Len(t, qs, 3)
	assert.Equal(t, "q1", qs[0].ID)
}

// gatedSaver holds the first save until the gate is closed.
type gatedSaver struct {
	recordingSaver
	gate  chan struct{}
	calls atomic.Int32
}

func (s *gatedSaver) Save(ctx context.Context, snap progress.Snapshot) error {
	if s.calls.Add(1) == 1 {
		<-s.gate
	}
	return s.recordingSaver.Save(ctx, snap)
}

func TestFinalSaveLandsAfterPendingIntermediateSave(t *testing.T) {
	bank, err := question.NewBank(threeQuestions())
	require.NoError(t, err)
	clock := newFakeClock()
	saver := &gatedSaver{gate: make(chan struct{})}
	svc := NewService(progress.NewAggregator(bank, clock.Now, zerolog.Nop()), saver, nil, ServiceOptions{
		Now:     clock.Now,
		Shuffle: func(q []question.Question) []question.Question { return q },
	}, zerolog.Nop())
	ctx := context.Background()

	started, err := svc.Start(ctx, "user-1")
	require.NoError(t, err)
	id := uuid.MustParse(started.View.SessionID)
	_, err = svc.Submit(ctx, id, "user-1", "q1", question.Response{OptionID: "x"})
	require.NoError(t, err)

	done := make(chan Result)
	go func() {
		res, err := svc.Complete(ctx, id, "user-1")
		assert.NoError(t, err)
		done <- res
	}()

	select {
	case <-done:
		t.Fatal("final save did not wait for the pending intermediate save")
	case <-time.After(50 * time.Millisecond):
	}
	close(saver.gate)

	res := <-done
	assert.True(t, res.Completion.Saved)
	svc.Wait()

	assert.Len(t, saver.snapshots(), 2)
}
