package repository

import (
	"time"

	"github.com/jackc/pgx/v5/pgtype"
)

var (
	started = time.Date(2024, 5, 2, 14, 0, 0, 0, time.UTC)
	updated = started.Add(12 * time.Minute)
)

func ts(t time.Time) pgtype.Timestamptz {
	return pgtype.Timestamptz{Time: t, Valid: true}
}
