package question

import (
	_ "embed"
	"errors"
	"fmt"
	"math/rand/v2"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed bank.yaml
var defaultCatalog []byte

// ErrInvalidBank is wrapped by every catalog validation failure.
var ErrInvalidBank = errors.New("invalid question bank")

// Bank is an immutable, validated question catalog.
type Bank struct {
	questions []Question
	byID      map[string]int
	total     int
}

type catalog struct {
	Questions []Question `yaml:"questions"`
}

// DefaultBank loads the compiled-in Excel catalog.
func DefaultBank() (*Bank, error) {
	return LoadBank(defaultCatalog)
}

// LoadBankFile loads and validates a YAML catalog from disk.
func LoadBankFile(path string) (*Bank, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read question bank: %w", err)
	}
	return LoadBank(data)
}

// LoadBank parses a YAML catalog and validates every entry.
func LoadBank(data []byte) (*Bank, error) {
	var c catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("decode question bank: %w", err)
	}
	return NewBank(c.Questions)
}

// NewBank validates questions and builds a bank over a private copy of them.
func NewBank(questions []Question) (*Bank, error) {
	if len(questions) == 0 {
		return nil, fmt.Errorf("%w: no questions", ErrInvalidBank)
	}
	b := &Bank{
		questions: make([]Question, len(questions)),
		byID:      make(map[string]int, len(questions)),
	}
	copy(b.questions, questions)

	var problems []string
	for i, q := range b.questions {
		if _, dup := b.byID[q.ID]; dup {
			problems = append(problems, fmt.Sprintf("%s: duplicate id", q.ID))
			continue
		}
		if err := validate(q); err != nil {
			problems = append(problems, err.Error())
			continue
		}
		b.byID[q.ID] = i
		b.total += q.Points
	}
	if len(problems) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrInvalidBank, strings.Join(problems, "; "))
	}
	return b, nil
}

func validate(q Question) error {
	if q.ID == "" {
		return fmt.Errorf("question with prompt %q: missing id", q.Prompt)
	}
	if !q.Type.Valid() {
		return fmt.Errorf("%s: unknown type %q", q.ID, q.Type)
	}
	if !q.Level.Valid() {
		return fmt.Errorf("%s: unknown level %q", q.ID, q.Level)
	}
	if q.Points <= 0 {
		return fmt.Errorf("%s: points must be positive", q.ID)
	}

	switch q.Type {
	case TypeMultipleChoice:
		correct := 0
		for _, opt := range q.Options {
			if opt.IsCorrect {
				correct++
			}
		}
		if correct != 1 {
			return fmt.Errorf("%s: multiple choice needs exactly one correct option, has %d", q.ID, correct)
		}
	case TypeFillInBlank:
		for _, a := range q.AcceptedAnswers {
			if strings.TrimSpace(a) != "" {
				return nil
			}
		}
		return fmt.Errorf("%s: fill in blank needs an accepted answer", q.ID)
	case TypeDragDrop:
		if len(q.Items) == 0 {
			return fmt.Errorf("%s: drag and drop needs items", q.ID)
		}
		for _, item := range q.Items {
			if !hasZone(q, item.CorrectZoneID) {
				return fmt.Errorf("%s: item %s targets unknown zone %q", q.ID, item.ID, item.CorrectZoneID)
			}
		}
	case TypeTrueFalse:
	}
	return nil
}

// All returns the catalog in its authored order. The slice is a copy.
func (b *Bank) All() []Question {
	out := make([]Question, len(b.questions))
	copy(out, b.questions)
	return out
}

// Get resolves a question by id.
func (b *Bank) Get(id string) (Question, bool) {
	i, ok := b.byID[id]
	if !ok {
		return Question{}, false
	}
	return b.questions[i], true
}

// Len is the number of questions in the bank.
func (b *Bank) Len() int { return len(b.questions) }

// TotalPoints is the sum of all question point values.
func (b *Bank) TotalPoints() int { return b.total }

// ByLevel returns the questions of one difficulty level.
func (b *Bank) ByLevel(level Level) []Question {
	var out []Question
	for _, q := range b.questions {
		if q.Level == level {
			out = append(out, q)
		}
	}
	return out
}

// ByType returns the questions of one type.
func (b *Bank) ByType(t Type) []Question {
	var out []Question
	for _, q := range b.questions {
		if q.Type == t {
			out = append(out, q)
		}
	}
	return out
}

// Shuffle returns a uniformly permuted copy of questions.
func Shuffle(questions []Question) []Question {
	return ShuffleWith(nil, questions)
}

// ShuffleWith is Shuffle driven by rng; a nil rng uses the global source.
// The input slice is left untouched.
func ShuffleWith(rng *rand.Rand, questions []Question) []Question {
	out := make([]Question, len(questions))
	copy(out, questions)
	intN := rand.IntN
	if rng != nil {
		intN = rng.IntN
	}
	// Fisher-Yates
	for i := len(out) - 1; i > 0; i-- {
		j := intN(i + 1)
		out[i], out[j] = out[j], out[i]
	}
	return out
}
