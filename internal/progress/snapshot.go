package progress

import (
	"time"

	"github.com/aprendeexcel/quiz-engine/internal/question"
)

// UserAnswer is the recorded outcome of one question within a session.
type UserAnswer struct {
	QuestionID       string            `json:"question_id"`
	Response         question.Response `json:"response"`
	IsCorrect        bool              `json:"is_correct"`
	TimeSpentSeconds int               `json:"time_spent_seconds"`
	AttemptCount     int               `json:"attempt_count"`
}

// Bucket counts answers within a level or type.
type Bucket struct {
	Correct int `json:"correct"`
	Total   int `json:"total"`
}

// Percentage is the bucket accuracy, 0 when empty.
func (b Bucket) Percentage() float64 {
	return percent(b.Correct, b.Total)
}

// Snapshot is the durable, aggregated progress record of one user.
type Snapshot struct {
	UserID            string                    `json:"user_id"`
	TotalQuestions    int                       `json:"total_questions"`
	AnsweredQuestions int                       `json:"answered_questions"`
	CorrectAnswers    int                       `json:"correct_answers"`
	TotalPoints       int                       `json:"total_points"`
	MaxPoints         int                       `json:"max_points"`
	AccuracyPercent   float64                   `json:"accuracy_percent"`
	Answers           []UserAnswer              `json:"answers"`
	LevelBreakdown    map[question.Level]Bucket `json:"level_breakdown"`
	TypeBreakdown     map[question.Type]Bucket  `json:"type_breakdown"`
	StartedAt         time.Time                 `json:"started_at"`
	LastUpdatedAt     time.Time                 `json:"last_updated_at"`
	CompletedAt       *time.Time                `json:"completed_at,omitempty"`
}

// Completed reports whether every question of the bank has been answered.
func (s Snapshot) Completed() bool { return s.CompletedAt != nil }

// Stats summarises a snapshot for the progress overview.
type Stats struct {
	TotalAttempts   int     `json:"total_attempts"`
	BestScore       int     `json:"best_score"`
	MaxPoints       int     `json:"max_points"`
	AverageAccuracy float64 `json:"average_accuracy"`
	CompletionRate  float64 `json:"completion_rate"`
}

// Stats derives the overview figures. Only the latest attempt is stored, so
// a snapshot with answers counts as a single attempt.
func (s Snapshot) Stats() Stats {
	st := Stats{
		BestScore:       s.TotalPoints,
		MaxPoints:       s.MaxPoints,
		AverageAccuracy: s.AccuracyPercent,
		CompletionRate:  percent(s.AnsweredQuestions, s.TotalQuestions),
	}
	if s.AnsweredQuestions > 0 {
		st.TotalAttempts = 1
	}
	return st
}

// BucketStats is a Bucket with its accuracy precomputed for display.
type BucketStats struct {
	Correct    int     `json:"correct"`
	Total      int     `json:"total"`
	Percentage float64 `json:"percentage"`
}

func statsOf(b Bucket) BucketStats {
	return BucketStats{Correct: b.Correct, Total: b.Total, Percentage: b.Percentage()}
}

// LevelStats returns per-level accuracy for every known level.
func (s Snapshot) LevelStats() map[question.Level]BucketStats {
	out := make(map[question.Level]BucketStats, len(question.Levels))
	for _, l := range question.Levels {
		out[l] = statsOf(s.LevelBreakdown[l])
	}
	return out
}

// TypeStats returns per-type accuracy for every known question type.
func (s Snapshot) TypeStats() map[question.Type]BucketStats {
	out := make(map[question.Type]BucketStats, len(question.Types))
	for _, t := range question.Types {
		out[t] = statsOf(s.TypeBreakdown[t])
	}
	return out
}

func zeroLevels() map[question.Level]Bucket {
	m := make(map[question.Level]Bucket, len(question.Levels))
	for _, l := range question.Levels {
		m[l] = Bucket{}
	}
	return m
}

func zeroTypes() map[question.Type]Bucket {
	m := make(map[question.Type]Bucket, len(question.Types))
	for _, t := range question.Types {
		m[t] = Bucket{}
	}
	return m
}

func percent(part, whole int) float64 {
	if whole <= 0 {
		return 0
	}
	return 100 * float64(part) / float64(whole)
}
