package progress

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/aprendeexcel/quiz-engine/internal/question"
)

// Aggregator folds answer lists into snapshots against a question bank.
type Aggregator struct {
	bank   *question.Bank
	now    func() time.Time
	logger zerolog.Logger
}

// NewAggregator builds an aggregator. A nil clock defaults to time.Now.
func NewAggregator(bank *question.Bank, now func() time.Time, logger zerolog.Logger) *Aggregator {
	if now == nil {
		now = time.Now
	}
	return &Aggregator{
		bank:   bank,
		now:    now,
		logger: logger.With().Str("component", "progress_aggregator").Logger(),
	}
}

// Aggregate computes the snapshot for answers. Answers whose question is not
// in the bank are skipped and left out of the snapshot. The result depends only
// on the set of answers and the clock.
func (a *Aggregator) Aggregate(userID string, answers []UserAnswer) Snapshot {
	now := a.now().UTC()
	snap := Snapshot{
		UserID:         userID,
		TotalQuestions: a.bank.Len(),
		MaxPoints:      a.bank.TotalPoints(),
		Answers:        make([]UserAnswer, 0, len(answers)),
		LevelBreakdown: zeroLevels(),
		TypeBreakdown:  zeroTypes(),
		StartedAt:      now,
		LastUpdatedAt:  now,
	}

	for _, ans := range answers {
		q, ok := a.bank.Get(ans.QuestionID)
		if !ok {
			a.logger.Warn().
				Str("user_id", userID).
				Str("question_id", ans.QuestionID).
				Msg("skipping answer for unknown question")
			continue
		}
		snap.Answers = append(snap.Answers, ans)
		snap.AnsweredQuestions++

		level := snap.LevelBreakdown[q.Level]
		typ := snap.TypeBreakdown[q.Type]
		level.Total++
		typ.Total++
		if ans.IsCorrect {
			snap.CorrectAnswers++
			snap.TotalPoints += q.Points
			level.Correct++
			typ.Correct++
		}
		snap.LevelBreakdown[q.Level] = level
		snap.TypeBreakdown[q.Type] = typ
	}

	snap.AccuracyPercent = percent(snap.CorrectAnswers, snap.AnsweredQuestions)
	if snap.TotalQuestions > 0 && snap.AnsweredQuestions == snap.TotalQuestions {
		completed := now
		snap.CompletedAt = &completed
	}
	return snap
}

// Empty is the reset state for userID: no answers, zeroed counters.
func (a *Aggregator) Empty(userID string) Snapshot {
	return a.Aggregate(userID, nil)
}

// Bank exposes the catalog the aggregator resolves against.
func (a *Aggregator) Bank() *question.Bank { return a.bank }
