package question

import "fmt"

// Type identifies the answer format of a question.
type Type string

// Question types.
const (
	TypeMultipleChoice Type = "multiple_choice"
	TypeFillInBlank    Type = "fill_in_blank"
	TypeDragDrop       Type = "drag_drop"
	TypeTrueFalse      Type = "true_false"
)

// Types lists every question type in display order.
var Types = []Type{TypeMultipleChoice, TypeFillInBlank, TypeDragDrop, TypeTrueFalse}

// Valid reports whether t is a known question type.
func (t Type) Valid() bool {
	switch t {
	case TypeMultipleChoice, TypeFillInBlank, TypeDragDrop, TypeTrueFalse:
		return true
	}
	return false
}

// Level is the difficulty tier of a question.
type Level string

// Difficulty levels.
const (
	LevelBasic        Level = "basic"
	LevelIntermediate Level = "intermediate"
	LevelAdvanced     Level = "advanced"
)

// Levels lists every level from easiest to hardest.
var Levels = []Level{LevelBasic, LevelIntermediate, LevelAdvanced}

// Valid reports whether l is a known level.
func (l Level) Valid() bool {
	switch l {
	case LevelBasic, LevelIntermediate, LevelAdvanced:
		return true
	}
	return false
}

// Option is a single choice of a multiple choice question.
type Option struct {
	ID        string `json:"id" yaml:"id"`
	Text      string `json:"text" yaml:"text"`
	IsCorrect bool   `json:"-" yaml:"correct"`
}

// Item is a draggable element of a drag and drop question.
type Item struct {
	ID            string `json:"id" yaml:"id"`
	Content       string `json:"content" yaml:"content"`
	CorrectZoneID string `json:"-" yaml:"zone"`
}

// Zone is a drop target of a drag and drop question.
type Zone struct {
	ID    string `json:"id" yaml:"id"`
	Label string `json:"label" yaml:"label"`
}

// Question is a catalog entry. The type-specific fields are only meaningful
// for the matching Type.
type Question struct {
	ID          string `yaml:"id"`
	Type        Type   `yaml:"type"`
	Level       Level  `yaml:"level"`
	Prompt      string `yaml:"prompt"`
	Points      int    `yaml:"points"`
	Explanation string `yaml:"explanation"`

	// multiple_choice
	Options []Option `yaml:"options"`

	// fill_in_blank
	AcceptedAnswers []string `yaml:"accepted_answers"`
	CaseSensitive   bool     `yaml:"case_sensitive"`

	// drag_drop
	Items []Item `yaml:"items"`
	Zones []Zone `yaml:"zones"`

	// true_false
	CorrectAnswer bool `yaml:"correct_answer"`
}

// Public is the client-facing view of a question. It carries what is needed
// to render input controls and never any correctness data.
type Public struct {
	ID      string   `json:"id"`
	Type    Type     `json:"type"`
	Level   Level    `json:"level"`
	Prompt  string   `json:"prompt"`
	Points  int      `json:"points"`
	Options []Option `json:"options,omitempty"`
	Items   []Item   `json:"items,omitempty"`
	Zones   []Zone   `json:"zones,omitempty"`
}

// Public strips answer keys from q.
func (q Question) Public() Public {
	return Public{
		ID:      q.ID,
		Type:    q.Type,
		Level:   q.Level,
		Prompt:  q.Prompt,
		Points:  q.Points,
		Options: q.Options,
		Items:   q.Items,
		Zones:   q.Zones,
	}
}

// Response is a submitted answer. Exactly one field is relevant, selected by
// the type of the question it answers.
type Response struct {
	OptionID   string            `json:"option_id,omitempty"`
	Text       string            `json:"text,omitempty"`
	Value      *bool             `json:"value,omitempty"`
	Placements map[string]string `json:"placements,omitempty"` // item id -> zone id
}

// Bool is a helper for building true/false responses.
func Bool(v bool) *bool { return &v }

func (q Question) String() string {
	return fmt.Sprintf("%s(%s/%s)", q.ID, q.Type, q.Level)
}
