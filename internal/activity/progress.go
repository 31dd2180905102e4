// Package activity tracks learning progress outside the quiz: exercise
// workbooks, formula cards and video lessons.
package activity

import (
	"errors"
	"time"
)

var (
	ErrMissingSubject  = errors.New("subject id is required")
	ErrInvalidDuration = errors.New("video duration must be positive")
	ErrInvalidTime     = errors.New("time values must not be negative")
)

// Level is the learner tier derived from accumulated points.
type Level string

const (
	LevelBeginner     Level = "Principiante"
	LevelBasic        Level = "Básico"
	LevelIntermediate Level = "Intermedio"
	LevelAdvanced     Level = "Avanzado"
)

// Minimum points for each level.
const (
	ThresholdBasic        = 100
	ThresholdIntermediate = 300
	ThresholdAdvanced     = 600
)

// Points awarded the first time each milestone is reached.
const (
	PointsExerciseDownload = 5
	PointsExerciseComplete = 15
	PointsFormulaView      = 2
	PointsFormulaPractice  = 5
	PointsFormulaMaster    = 10
	PointsVideoStart       = 3
	PointsVideoComplete    = 20
)

// VideoCompletePercent is the watched share at which a video counts as seen.
const VideoCompletePercent = 90

// LevelFor maps a point total to a level.
func LevelFor(points int) Level {
	switch {
	case points >= ThresholdAdvanced:
		return LevelAdvanced
	case points >= ThresholdIntermediate:
		return LevelIntermediate
	case points >= ThresholdBasic:
		return LevelBasic
	default:
		return LevelBeginner
	}
}

type Exercise struct {
	DownloadedAt     *time.Time `json:"downloaded_at,omitempty"`
	Completed        bool       `json:"completed"`
	CompletedAt      *time.Time `json:"completed_at,omitempty"`
	TimeSpentMinutes int        `json:"time_spent_minutes"`
}

type Formula struct {
	Viewed      bool       `json:"viewed"`
	Practiced   bool       `json:"practiced"`
	Mastered    bool       `json:"mastered"`
	ViewedAt    *time.Time `json:"viewed_at,omitempty"`
	PracticedAt *time.Time `json:"practiced_at,omitempty"`
	MasteredAt  *time.Time `json:"mastered_at,omitempty"`
}

type Video struct {
	Watched              bool       `json:"watched"`
	WatchedAt            *time.Time `json:"watched_at,omitempty"`
	WatchTimeSeconds     int        `json:"watch_time_seconds"`
	TotalDurationSeconds int        `json:"total_duration_seconds"`
	Completed            bool       `json:"completed"`
	CompletedAt          *time.Time `json:"completed_at,omitempty"`
}

// Progress is the learning record of one user.
type Progress struct {
	UserID       string              `json:"user_id"`
	Exercises    map[string]Exercise `json:"exercises"`
	Formulas     map[string]Formula  `json:"formulas"`
	Videos       map[string]Video    `json:"videos"`
	Points       int                 `json:"points"`
	Level        Level               `json:"level"`
	CreatedAt    time.Time           `json:"created_at"`
	LastActivity time.Time           `json:"last_activity"`
}

// NewProgress returns the initial record of a user with no activity.
func NewProgress(userID string, now time.Time) *Progress {
	return &Progress{
		UserID:       userID,
		Exercises:    map[string]Exercise{},
		Formulas:     map[string]Formula{},
		Videos:       map[string]Video{},
		Level:        LevelBeginner,
		CreatedAt:    now,
		LastActivity: now,
	}
}

// Stats are the counters shown on the learner dashboard.
type Stats struct {
	ExercisesCompleted int   `json:"exercises_completed"`
	FormulasLearned    int   `json:"formulas_learned"`
	VideosWatched      int   `json:"videos_watched"`
	TimeSpentMinutes   int   `json:"time_spent_minutes"`
	Points             int   `json:"points"`
	Level              Level `json:"level"`
}

func (p *Progress) Stats() Stats {
	s := Stats{Points: p.Points, Level: p.Level}
	for _, e := range p.Exercises {
		if e.Completed {
			s.ExercisesCompleted++
		}
		s.TimeSpentMinutes += e.TimeSpentMinutes
	}
	for _, f := range p.Formulas {
		if f.Mastered {
			s.FormulasLearned++
		}
	}
	for _, v := range p.Videos {
		if v.Completed {
			s.VideosWatched++
		}
	}
	return s
}

// DownloadExercise records a workbook download and returns the points awarded.
func (p *Progress) DownloadExercise(id string, now time.Time) int {
	e := p.Exercises[id]
	awarded := 0
	if e.DownloadedAt == nil {
		awarded = PointsExerciseDownload
	}
	e.DownloadedAt = stamp(now)
	p.Exercises[id] = e
	return p.award(awarded, now)
}

// CompleteExercise marks an exercise done and accumulates the time spent on it.
func (p *Progress) CompleteExercise(id string, minutes int, now time.Time) int {
	e := p.Exercises[id]
	awarded := 0
	if !e.Completed {
		awarded = PointsExerciseComplete
		e.Completed = true
		e.CompletedAt = stamp(now)
	}
	e.TimeSpentMinutes += minutes
	p.Exercises[id] = e
	return p.award(awarded, now)
}

func (p *Progress) ViewFormula(id string, now time.Time) int {
	f := p.Formulas[id]
	awarded := 0
	if !f.Viewed {
		awarded = PointsFormulaView
		f.Viewed = true
		f.ViewedAt = stamp(now)
	}
	p.Formulas[id] = f
	return p.award(awarded, now)
}

// PracticeFormula implies the formula was viewed but only awards practice points.
func (p *Progress) PracticeFormula(id string, now time.Time) int {
	f := p.Formulas[id]
	awarded := 0
	if !f.Practiced {
		awarded = PointsFormulaPractice
		f.Practiced = true
		f.PracticedAt = stamp(now)
	}
	if !f.Viewed {
		f.Viewed = true
		f.ViewedAt = stamp(now)
	}
	p.Formulas[id] = f
	return p.award(awarded, now)
}

func (p *Progress) MasterFormula(id string, now time.Time) int {
	f := p.Formulas[id]
	awarded := 0
	if !f.Mastered {
		awarded = PointsFormulaMaster
		f.Mastered = true
		f.MasteredAt = stamp(now)
	}
	if !f.Practiced {
		f.Practiced = true
		f.PracticedAt = stamp(now)
	}
	if !f.Viewed {
		f.Viewed = true
		f.ViewedAt = stamp(now)
	}
	p.Formulas[id] = f
	return p.award(awarded, now)
}

// StartVideo records playback start. Watch time already recorded is kept.
func (p *Progress) StartVideo(id string, totalDuration int, now time.Time) (int, error) {
	if totalDuration <= 0 {
		return 0, ErrInvalidDuration
	}
	v := p.Videos[id]
	awarded := 0
	if !v.Watched {
		awarded = PointsVideoStart
		v.Watched = true
	}
	v.WatchedAt = stamp(now)
	v.TotalDurationSeconds = totalDuration
	p.Videos[id] = v
	return p.award(awarded, now), nil
}

// UpdateVideo stores the playback position. It reports whether this update
// is the one that completed the video. Completion is never revoked by a
// later, shorter position.
func (p *Progress) UpdateVideo(id string, watchTime, totalDuration int, now time.Time) (int, bool, error) {
	if totalDuration <= 0 {
		return 0, false, ErrInvalidDuration
	}
	if watchTime < 0 {
		return 0, false, ErrInvalidTime
	}
	v := p.Videos[id]
	if !v.Watched {
		v.Watched = true
		v.WatchedAt = stamp(now)
	}
	v.WatchTimeSeconds = watchTime
	v.TotalDurationSeconds = totalDuration

	completedNow := false
	if !v.Completed && watchTime*100 >= totalDuration*VideoCompletePercent {
		v.Completed = true
		v.CompletedAt = stamp(now)
		completedNow = true
	}
	p.Videos[id] = v

	awarded := 0
	if completedNow {
		awarded = PointsVideoComplete
	}
	return p.award(awarded, now), completedNow, nil
}

func (p *Progress) award(points int, now time.Time) int {
	p.Points += points
	p.Level = LevelFor(p.Points)
	p.LastActivity = now
	return points
}

func stamp(t time.Time) *time.Time { return &t }
