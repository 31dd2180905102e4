package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/aprendeexcel/quiz-engine/internal/db/queries"
	"github.com/aprendeexcel/quiz-engine/internal/progress"
	"github.com/aprendeexcel/quiz-engine/internal/question"
)

type progressStore interface {
	GetQuizProgress(ctx context.Context, userID string) (queries.QuizProgress, error)
	UpsertQuizProgress(ctx context.Context, arg queries.UpsertQuizProgressParams) error
	ReplaceQuizProgress(ctx context.Context, arg queries.ReplaceQuizProgressParams) error
}

// ProgressRepository stores quiz progress snapshots, one row per user.
type ProgressRepository struct {
	store progressStore
}

// NewProgressRepository wraps sqlc Queries for progress snapshots.
func NewProgressRepository(store progressStore) *ProgressRepository {
	return &ProgressRepository{store: store}
}

// Save upserts the snapshot. The started_at of an existing row is kept.
func (r *ProgressRepository) Save(ctx context.Context, userID string, snap progress.Snapshot) error {
	params, err := snapshotParams(userID, snap)
	if err != nil {
		return err
	}
	return r.store.UpsertQuizProgress(ctx, queries.UpsertQuizProgressParams(params))
}

// Reset overwrites every column, started_at included.
func (r *ProgressRepository) Reset(ctx context.Context, userID string, snap progress.Snapshot) error {
	params, err := snapshotParams(userID, snap)
	if err != nil {
		return err
	}
	return r.store.ReplaceQuizProgress(ctx, params)
}

// Load returns nil, nil when the user has no stored snapshot.
func (r *ProgressRepository) Load(ctx context.Context, userID string) (*progress.Snapshot, error) {
	row, err := r.store.GetQuizProgress(ctx, userID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	snap := progress.Snapshot{
		UserID:            row.UserID,
		TotalQuestions:    int(row.TotalQuestions),
		AnsweredQuestions: int(row.AnsweredQuestions),
		CorrectAnswers:    int(row.CorrectAnswers),
		TotalPoints:       int(row.TotalPoints),
		MaxPoints:         int(row.MaxPoints),
		AccuracyPercent:   row.AccuracyPercent,
		StartedAt:         fromTimestamptz(row.StartedAt),
		LastUpdatedAt:     fromTimestamptz(row.LastUpdatedAt),
	}
	if row.CompletedAt.Valid {
		t := fromTimestamptz(row.CompletedAt)
		snap.CompletedAt = &t
	}
	if err := decodeJSON(row.Answers, &snap.Answers); err != nil {
		return nil, fmt.Errorf("decode answers: %w", err)
	}
	if err := decodeJSON(row.LevelBreakdown, &snap.LevelBreakdown); err != nil {
		return nil, fmt.Errorf("decode level breakdown: %w", err)
	}
	if err := decodeJSON(row.TypeBreakdown, &snap.TypeBreakdown); err != nil {
		return nil, fmt.Errorf("decode type breakdown: %w", err)
	}
	if snap.LevelBreakdown == nil {
		snap.LevelBreakdown = map[question.Level]progress.Bucket{}
	}
	if snap.TypeBreakdown == nil {
		snap.TypeBreakdown = map[question.Type]progress.Bucket{}
	}
	return &snap, nil
}

func snapshotParams(userID string, snap progress.Snapshot) (queries.ReplaceQuizProgressParams, error) {
	answers := snap.Answers
	if answers == nil {
		answers = []progress.UserAnswer{}
	}
	answersJSON, err := json.Marshal(answers)
	if err != nil {
		return queries.ReplaceQuizProgressParams{}, fmt.Errorf("encode answers: %w", err)
	}
	levelsJSON, err := json.Marshal(snap.LevelBreakdown)
	if err != nil {
		return queries.ReplaceQuizProgressParams{}, fmt.Errorf("encode level breakdown: %w", err)
	}
	typesJSON, err := json.Marshal(snap.TypeBreakdown)
	if err != nil {
		return queries.ReplaceQuizProgressParams{}, fmt.Errorf("encode type breakdown: %w", err)
	}

	params := queries.ReplaceQuizProgressParams{
		UserID:            userID,
		TotalQuestions:    int32(snap.TotalQuestions),
		AnsweredQuestions: int32(snap.AnsweredQuestions),
		CorrectAnswers:    int32(snap.CorrectAnswers),
		TotalPoints:       int32(snap.TotalPoints),
		MaxPoints:         int32(snap.MaxPoints),
		AccuracyPercent:   snap.AccuracyPercent,
		Answers:           answersJSON,
		LevelBreakdown:    levelsJSON,
		TypeBreakdown:     typesJSON,
		StartedAt:         timestamptz(snap.StartedAt),
		LastUpdatedAt:     timestamptz(snap.LastUpdatedAt),
	}
	if snap.CompletedAt != nil {
		params.CompletedAt = timestamptz(*snap.CompletedAt)
	}
	return params, nil
}

func timestamptz(t time.Time) pgtype.Timestamptz {
	return pgtype.Timestamptz{Time: t, Valid: !t.IsZero()}
}

func fromTimestamptz(ts pgtype.Timestamptz) time.Time {
	if !ts.Valid {
		return time.Time{}
	}
	return ts.Time.UTC()
}

func decodeJSON(raw []byte, dst any) error {
	if len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, dst)
}
