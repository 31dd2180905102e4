package progress

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) (*Service, *memoryStore, *recordingPublisher) {
	t.Helper()
	store := newMemoryStore()
	pub := &recordingPublisher{}
	return NewService(store, defaultAggregator(t), pub, zerolog.Nop()), store, pub
}

func TestServiceSavePublishes(t *testing.T) {
	svc, store, pub := newTestService(t)
	snap := svc.Aggregator().Aggregate("user-1", []UserAnswer{{QuestionID: "mc-1", IsCorrect: true, AttemptCount: 1}})

	require.NoError(t, svc.Save(context.Background(), snap))

	assert.Contains(t, store.docs, "user-1")
	require.Len(t, pub.published, 1)
	assert.Equal(t, 5, pub.published[0].TotalPoints)
}

func TestServiceSavePublishFailureIsNotAnError(t *testing.T) {
	svc, _, pub := newTestService(t)
	pub.err = errBoom

	assert.NoError(t, svc.Save(context.Background(), Snapshot{UserID: "user-1"}))
}

func TestServiceSaveError(t *testing.T) {
	svc, store, pub := newTestService(t)
	store.saveErr = errBoom

	err := svc.Save(context.Background(), Snapshot{UserID: "user-1"})
	assert.ErrorIs(t, err, errBoom)
	assert.Empty(t, pub.published)
}

func TestServiceSavePreservesStartedAt(t *testing.T) {
	svc, store, _ := newTestService(t)
	ctx := context.Background()
	started := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, svc.Save(ctx, Snapshot{UserID: "user-1", StartedAt: started}))
	require.NoError(t, svc.Save(ctx, Snapshot{UserID: "user-1", StartedAt: started.Add(time.Hour), AnsweredQuestions: 1}))

	assert.Equal(t, started, store.docs["user-1"].StartedAt)
	assert.Equal(t, 1, store.docs["user-1"].AnsweredQuestions)
}

func TestServiceLoadOrEmpty(t *testing.T) {
	svc, _, _ := newTestService(t)

	snap, err := svc.LoadOrEmpty(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, "user-1", snap.UserID)
	assert.Zero(t, snap.AnsweredQuestions)
	assert.Equal(t, 136, snap.MaxPoints)
}

func TestServiceReset(t *testing.T) {
	svc, store, pub := newTestService(t)
	ctx := context.Background()
	agg := svc.Aggregator()

	full := agg.Aggregate("user-1", []UserAnswer{
		{QuestionID: "mc-1", IsCorrect: true, AttemptCount: 1},
		{QuestionID: "tf-1", IsCorrect: false, AttemptCount: 2},
	})
	require.NoError(t, svc.Save(ctx, full))

	snap, err := svc.Reset(ctx, "user-1")
	require.NoError(t, err)

	stored := store.docs["user-1"]
	assert.Equal(t, snap, stored)
	assert.Zero(t, stored.AnsweredQuestions)
	assert.Zero(t, stored.TotalPoints)
	assert.Empty(t, stored.Answers)
	assert.Equal(t, 136, stored.MaxPoints)
	assert.Equal(t, agg.Bank().Len(), stored.TotalQuestions)
	assert.Len(t, pub.published, 2)
}
