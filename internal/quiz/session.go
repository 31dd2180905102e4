package quiz

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/aprendeexcel/quiz-engine/internal/progress"
	"github.com/aprendeexcel/quiz-engine/internal/question"
)

// State of a quiz session.
type State string

const (
	StateInProgress State = "in_progress"
	StateCompleted  State = "completed"
)

var (
	ErrSessionCompleted = errors.New("session already completed")
	ErrUnknownQuestion  = errors.New("question is not part of this session")
	ErrNoQuestions      = errors.New("session needs at least one question")
)

// EventKind identifies a session transition.
type EventKind string

const (
	EventAnswerSubmitted EventKind = "answer_submitted"
	EventNavigated       EventKind = "navigated"
	EventCompleted       EventKind = "completed"
)

// Event is delivered to session observers after a transition took effect.
type Event struct {
	Kind      EventKind
	SessionID uuid.UUID
	Index     int
	Answer    *progress.UserAnswer
}

// Session is one attempt at the quiz. It is not safe for concurrent use.
// Rejected calls never change its state.
type Session struct {
	id        uuid.UUID
	userID    string
	questions []question.Question
	positions map[string]int

	current int
	shownAt time.Time
	answers map[string]progress.UserAnswer
	order   []string
	score   int

	state       State
	startedAt   time.Time
	completedAt time.Time

	now       func() time.Time
	observers map[int]func(Event)
	nextObs   int
}

// NewSession starts a session over questions in the given order. A nil clock
// defaults to time.Now.
func NewSession(id uuid.UUID, userID string, questions []question.Question, now func() time.Time) (*Session, error) {
	if len(questions) == 0 {
		return nil, ErrNoQuestions
	}
	if now == nil {
		now = time.Now
	}
	s := &Session{
		id:        id,
		userID:    userID,
		questions: make([]question.Question, len(questions)),
		positions: make(map[string]int, len(questions)),
		answers:   make(map[string]progress.UserAnswer),
		state:     StateInProgress,
		now:       now,
		observers: make(map[int]func(Event)),
	}
	copy(s.questions, questions)
	for i, q := range s.questions {
		s.positions[q.ID] = i
	}
	s.startedAt = now()
	s.shownAt = s.startedAt
	return s, nil
}

func (s *Session) ID() uuid.UUID { return s.id }
func (s *Session) UserID() string { return s.userID }
func (s *Session) State() State { return s.state }
func (s *Session) Completed() bool { return s.state == StateCompleted }
func (s *Session) Index() int { return s.current }
func (s *Session) Len() int { return len(s.questions) }
func (s *Session) Score() int { return s.score }
func (s *Session) StartedAt() time.Time { return s.startedAt }
func (s *Session) Current() question.Question { return s.questions[s.current] }

// CompletedAt is the zero time while the session is in progress.
func (s *Session) CompletedAt() time.Time { return s.completedAt }

// Questions returns the session order. The slice is a copy.
func (s *Session) Questions() []question.Question {
	out := make([]question.Question, len(s.questions))
	copy(out, s.questions)
	return out
}

// Subscribe registers fn for every subsequent event and returns a function
// that removes it.
func (s *Session) Subscribe(fn func(Event)) (unsubscribe func()) {
	id := s.nextObs
	s.nextObs++
	s.observers[id] = fn
	return func() { delete(s.observers, id) }
}

func (s *Session) emit(evt Event) {
	evt.SessionID = s.id
	evt.Index = s.current
	for _, fn := range s.observers {
		fn(evt)
	}
}

// SubmitAnswer evaluates resp and records it, replacing any earlier answer to
// the same question. The current index does not move.
func (s *Session) SubmitAnswer(questionID string, resp question.Response) (progress.UserAnswer, error) {
	if s.Completed() {
		return progress.UserAnswer{}, ErrSessionCompleted
	}
	pos, ok := s.positions[questionID]
	if !ok {
		return progress.UserAnswer{}, fmt.Errorf("%w: %s", ErrUnknownQuestion, questionID)
	}
	q := s.questions[pos]
	if err := question.ValidateResponse(q, resp); err != nil {
		return progress.UserAnswer{}, err
	}

	prev, answered := s.answers[questionID]
	ans := progress.UserAnswer{
		QuestionID:       questionID,
		Response:         resp,
		IsCorrect:        question.Evaluate(q, resp),
		TimeSpentSeconds: prev.TimeSpentSeconds,
		AttemptCount:     prev.AttemptCount + 1,
	}
	// A first answer to a question other than the current one is charged the
	// time on screen so far; later answers to it keep what was measured.
	if pos == s.current || !answered {
		ans.TimeSpentSeconds = seconds(s.now().Sub(s.shownAt))
	}

	s.answers[questionID] = ans
	if !answered {
		s.order = append(s.order, questionID)
	}
	s.score = s.computeScore()

	s.emit(Event{Kind: EventAnswerSubmitted, Answer: &ans})
	return ans, nil
}

func (s *Session) computeScore() int {
	score := 0
	for id, ans := range s.answers {
		if ans.IsCorrect {
			score += s.questions[s.positions[id]].Points
		}
	}
	return score
}

// GoNext advances to the next question, or completes the session when called
// on the last one.
func (s *Session) GoNext() error {
	if s.Completed() {
		return ErrSessionCompleted
	}
	if s.current == len(s.questions)-1 {
		s.finish()
		return nil
	}
	s.current++
	s.shownAt = s.now()
	s.emit(Event{Kind: EventNavigated})
	return nil
}

// GoPrevious steps back one question. It is a no-op on the first question.
func (s *Session) GoPrevious() error {
	if s.Completed() {
		return ErrSessionCompleted
	}
	if s.current == 0 {
		return nil
	}
	s.current--
	s.shownAt = s.now()
	s.emit(Event{Kind: EventNavigated})
	return nil
}

// Complete finalizes the session from any question.
func (s *Session) Complete() error {
	if s.Completed() {
		return ErrSessionCompleted
	}
	s.finish()
	return nil
}

func (s *Session) finish() {
	s.state = StateCompleted
	s.completedAt = s.now()
	s.emit(Event{Kind: EventCompleted})
}

// AnswerFor returns the stored answer for questionID.
func (s *Session) AnswerFor(questionID string) (progress.UserAnswer, bool) {
	ans, ok := s.answers[questionID]
	return ans, ok
}

// Answers lists the recorded answers in first-submission order.
func (s *Session) Answers() []progress.UserAnswer {
	out := make([]progress.UserAnswer, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.answers[id])
	}
	return out
}

// CorrectCount is the number of currently correct answers.
func (s *Session) CorrectCount() int {
	n := 0
	for _, ans := range s.answers {
		if ans.IsCorrect {
			n++
		}
	}
	return n
}

// Elapsed is the time since start, frozen at completion.
func (s *Session) Elapsed() time.Duration {
	end := s.now()
	if s.Completed() {
		end = s.completedAt
	}
	return end.Sub(s.startedAt)
}

func seconds(d time.Duration) int {
	if d < 0 {
		return 0
	}
	return int(d / time.Second)
}
