package activity

import "time"

// Kind is the content family an activity refers to.
type Kind string

const (
	KindExercise Kind = "exercise"
	KindFormula  Kind = "formula"
	KindVideo    Kind = "video"
)

// Action is what the learner did.
type Action string

const (
	ActionDownloaded Action = "downloaded"
	ActionCompleted  Action = "completed"
	ActionViewed     Action = "viewed"
	ActionPracticed  Action = "practiced"
	ActionMastered   Action = "mastered"
	ActionStarted    Action = "started"
	ActionProgress   Action = "progress"
)

// Subject identifies the content item acted upon. Label carries the level of
// an exercise or video, or the category of a formula.
type Subject struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Label string `json:"label"`
}

// Entry is one line of the activity log.
type Entry struct {
	UserID        string    `json:"user_id"`
	Kind          Kind      `json:"kind"`
	Subject       Subject   `json:"subject"`
	Action        Action    `json:"action"`
	WatchTime     int       `json:"watch_time,omitempty"`
	TotalDuration int       `json:"total_duration,omitempty"`
	At            time.Time `json:"at"`
}
