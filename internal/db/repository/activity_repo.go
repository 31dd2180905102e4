package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/aprendeexcel/quiz-engine/internal/activity"
	"github.com/aprendeexcel/quiz-engine/internal/db/queries"
)

// ActivityQuerier is the query set the activity repository runs, inside or
// outside a transaction.
type ActivityQuerier interface {
	EnsureStudentProgress(ctx context.Context, arg queries.EnsureStudentProgressParams) error
	GetStudentProgress(ctx context.Context, userID string) (queries.StudentProgress, error)
	GetStudentProgressForUpdate(ctx context.Context, userID string) (queries.StudentProgress, error)
	UpsertStudentProgress(ctx context.Context, arg queries.UpsertStudentProgressParams) error
	InsertActivity(ctx context.Context, arg queries.InsertActivityParams) error
	ListRecentActivities(ctx context.Context, arg queries.ListRecentActivitiesParams) ([]queries.Activity, error)
}

type activityStore interface {
	ActivityQuerier
	InTx(ctx context.Context, fn func(ActivityQuerier) error) error
}

type txBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// PostgresActivityStore binds the generated queries to a pool so that
// progress updates and their log entries commit together.
type PostgresActivityStore struct {
	*queries.Queries
	db txBeginner
}

// NewPostgresActivityStore accepts a *pgxpool.Pool.
func NewPostgresActivityStore(db interface {
	queries.DBTX
	txBeginner
}) *PostgresActivityStore {
	return &PostgresActivityStore{Queries: queries.New(db), db: db}
}

func (s *PostgresActivityStore) InTx(ctx context.Context, fn func(ActivityQuerier) error) error {
	return pgx.BeginFunc(ctx, s.db, func(tx pgx.Tx) error {
		return fn(s.Queries.WithTx(tx))
	})
}

// ActivityRepository persists learning progress and the activity log.
type ActivityRepository struct {
	store activityStore
}

func NewActivityRepository(store activityStore) *ActivityRepository {
	return &ActivityRepository{store: store}
}

// Load returns nil, nil when the user has no record.
func (r *ActivityRepository) Load(ctx context.Context, userID string) (*activity.Progress, error) {
	row, err := r.store.GetStudentProgress(ctx, userID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return progressFromRow(row)
}

// Apply locks the user's row for the duration of fn.
func (r *ActivityRepository) Apply(ctx context.Context, userID string, now time.Time, fn func(*activity.Progress) (*activity.Entry, error)) (*activity.Progress, error) {
	var out *activity.Progress
	err := r.store.InTx(ctx, func(q ActivityQuerier) error {
		if err := q.EnsureStudentProgress(ctx, queries.EnsureStudentProgressParams{
			UserID:    userID,
			CreatedAt: timestamptz(now),
		}); err != nil {
			return fmt.Errorf("ensure student progress: %w", err)
		}
		row, err := q.GetStudentProgressForUpdate(ctx, userID)
		if err != nil {
			return fmt.Errorf("lock student progress: %w", err)
		}
		p, err := progressFromRow(row)
		if err != nil {
			return err
		}

		entry, err := fn(p)
		if err != nil {
			return err
		}

		params, err := progressParams(p)
		if err != nil {
			return err
		}
		if err := q.UpsertStudentProgress(ctx, params); err != nil {
			return fmt.Errorf("store student progress: %w", err)
		}
		if entry != nil {
			if err := q.InsertActivity(ctx, activityParams(entry)); err != nil {
				return fmt.Errorf("append activity: %w", err)
			}
		}
		out = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Recent lists the newest activities of userID first.
func (r *ActivityRepository) Recent(ctx context.Context, userID string, limit int) ([]activity.Entry, error) {
	rows, err := r.store.ListRecentActivities(ctx, queries.ListRecentActivitiesParams{
		UserID: userID,
		Limit:  int32(limit),
	})
	if err != nil {
		return nil, err
	}
	entries := make([]activity.Entry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, activity.Entry{
			UserID: row.UserID,
			Kind:   activity.Kind(row.Kind),
			Subject: activity.Subject{
				ID:    row.SubjectID,
				Name:  row.SubjectName,
				Label: row.Label,
			},
			Action:        activity.Action(row.Action),
			WatchTime:     int(row.WatchTime),
			TotalDuration: int(row.TotalDuration),
			At:            fromTimestamptz(row.CreatedAt),
		})
	}
	return entries, nil
}

func progressFromRow(row queries.StudentProgress) (*activity.Progress, error) {
	p := activity.NewProgress(row.UserID, fromTimestamptz(row.CreatedAt))
	p.Points = int(row.Points)
	p.Level = activity.Level(row.Level)
	p.LastActivity = fromTimestamptz(row.LastActivity)
	if err := decodeJSON(row.Exercises, &p.Exercises); err != nil {
		return nil, fmt.Errorf("decode exercises: %w", err)
	}
	if err := decodeJSON(row.Formulas, &p.Formulas); err != nil {
		return nil, fmt.Errorf("decode formulas: %w", err)
	}
	if err := decodeJSON(row.Videos, &p.Videos); err != nil {
		return nil, fmt.Errorf("decode videos: %w", err)
	}
	return p, nil
}

func progressParams(p *activity.Progress) (queries.UpsertStudentProgressParams, error) {
	exercises, err := json.Marshal(p.Exercises)
	if err != nil {
		return queries.UpsertStudentProgressParams{}, fmt.Errorf("encode exercises: %w", err)
	}
	formulas, err := json.Marshal(p.Formulas)
	if err != nil {
		return queries.UpsertStudentProgressParams{}, fmt.Errorf("encode formulas: %w", err)
	}
	videos, err := json.Marshal(p.Videos)
	if err != nil {
		return queries.UpsertStudentProgressParams{}, fmt.Errorf("encode videos: %w", err)
	}
	return queries.UpsertStudentProgressParams{
		UserID:       p.UserID,
		Exercises:    exercises,
		Formulas:     formulas,
		Videos:       videos,
		Points:       int32(p.Points),
		Level:        string(p.Level),
		CreatedAt:    timestamptz(p.CreatedAt),
		LastActivity: timestamptz(p.LastActivity),
	}, nil
}

func activityParams(e *activity.Entry) queries.InsertActivityParams {
	return queries.InsertActivityParams{
		UserID:        e.UserID,
		Kind:          string(e.Kind),
		SubjectID:     e.Subject.ID,
		SubjectName:   e.Subject.Name,
		Label:         e.Subject.Label,
		Action:        string(e.Action),
		WatchTime:     int32(e.WatchTime),
		TotalDuration: int32(e.TotalDuration),
		CreatedAt:     timestamptz(e.At),
	}
}
