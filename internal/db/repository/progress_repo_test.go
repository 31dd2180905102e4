package repository

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/aprendeexcel/quiz-engine/internal/db/queries"
	"github.com/aprendeexcel/quiz-engine/internal/progress"
	"github.com/aprendeexcel/quiz-engine/internal/question"
)

type mockProgressStore struct {
	mock.Mock
}

func (m *mockProgressStore) GetQuizProgress(ctx context.Context, userID string) (queries.QuizProgress, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(queries.QuizProgress), args.Error(1)
}

func (m *mockProgressStore) UpsertQuizProgress(ctx context.Context, arg queries.UpsertQuizProgressParams) error {
	return m.Called(ctx, arg).Error(0)
}

func (m *mockProgressStore) ReplaceQuizProgress(ctx context.Context, arg queries.ReplaceQuizProgressParams) error {
	return m.Called(ctx, arg).Error(0)
}

func sampleSnapshot() progress.Snapshot {
	return progress.Snapshot{
		UserID:            "user-1",
		TotalQuestions:    20,
		AnsweredQuestions: 1,
		CorrectAnswers:    1,
		TotalPoints:       5,
		MaxPoints:         136,
		AccuracyPercent:   100,
		Answers: []progress.UserAnswer{{
			QuestionID:       "mc-1",
			Response:         question.Response{OptionID: "b"},
			IsCorrect:        true,
			TimeSpentSeconds: 7,
			AttemptCount:     1,
		}},
		LevelBreakdown: map[question.Level]progress.Bucket{question.LevelBasic: {Correct: 1, Total: 1}},
		TypeBreakdown:  map[question.Type]progress.Bucket{question.TypeMultipleChoice: {Correct: 1, Total: 1}},
		StartedAt:      started,
		LastUpdatedAt:  updated,
	}
}

func TestProgressRepository_Save(t *testing.T) {
	store := new(mockProgressStore)
	repo := NewProgressRepository(store)
	snap := sampleSnapshot()

	store.On("UpsertQuizProgress", mock.Anything, mock.MatchedBy(func(arg queries.UpsertQuizProgressParams) bool {
		var answers []progress.UserAnswer
		if err := json.Unmarshal(arg.Answers, &answers); err != nil {
			return false
		}
		return arg.UserID == "user-1" &&
			arg.TotalPoints == 5 &&
			arg.MaxPoints == 136 &&
			len(answers) == 1 &&
			arg.StartedAt == ts(started) &&
			!arg.CompletedAt.Valid
	})).Return(nil)

	err := repo.Save(context.Background(), "user-1", snap)

	assert.NoError(t, err)
	store.AssertExpectations(t)
}

func TestProgressRepository_ResetReplacesRow(t *testing.T) {
	store := new(mockProgressStore)
	repo := NewProgressRepository(store)
	snap := progress.Snapshot{UserID: "user-1", MaxPoints: 136, StartedAt: updated, LastUpdatedAt: updated}

	store.On("ReplaceQuizProgress", mock.Anything, mock.MatchedBy(func(arg queries.ReplaceQuizProgressParams) bool {
		return string(arg.Answers) == "[]" && arg.StartedAt == ts(updated)
	})).Return(nil)

	err := repo.Reset(context.Background(), "user-1", snap)

	assert.NoError(t, err)
	store.AssertNotCalled(t, "UpsertQuizProgress", mock.Anything, mock.Anything)
	store.AssertExpectations(t)
}

func TestProgressRepository_LoadMissing(t *testing.T) {
	store := new(mockProgressStore)
	repo := NewProgressRepository(store)

	store.On("GetQuizProgress", mock.Anything, "ghost").Return(queries.QuizProgress{}, pgx.ErrNoRows)

	got, err := repo.Load(context.Background(), "ghost")

	assert.NoError(t, err)
	assert.Nil(t, got)
}

func TestProgressRepository_LoadRoundTrip(t *testing.T) {
	store := new(mockProgressStore)
	repo := NewProgressRepository(store)
	snap := sampleSnapshot()
	completed := updated
	snap.CompletedAt = &completed

	var row queries.QuizProgress
	store.On("UpsertQuizProgress", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		row = queries.QuizProgress(args.Get(1).(queries.UpsertQuizProgressParams))
	}).Return(nil)
	require.NoError(t, repo.Save(context.Background(), "user-1", snap))

	store.On("GetQuizProgress", mock.Anything, "user-1").Return(row, nil)
	got, err := repo.Load(context.Background(), "user-1")

	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, snap, *got)
}

func TestProgressRepository_LoadError(t *testing.T) {
	store := new(mockProgressStore)
	repo := NewProgressRepository(store)

	store.On("GetQuizProgress", mock.Anything, "user-1").Return(queries.QuizProgress{}, errors.New("conn reset"))

	_, err := repo.Load(context.Background(), "user-1")

	assert.EqualError(t, err, "conn reset")
}
