package quiz

import (
	"github.com/aprendeexcel/quiz-engine/internal/progress"
	"github.com/aprendeexcel/quiz-engine/internal/question"
)

// AnswerView is a stored answer as shown when a question is revisited.
type AnswerView struct {
	Response     question.Response `json:"response"`
	IsCorrect    bool              `json:"is_correct"`
	AttemptCount int               `json:"attempt_count"`
	Explanation  string            `json:"explanation,omitempty"`
}

// View is the display model of a session.
type View struct {
	SessionID      string          `json:"session_id"`
	State          State           `json:"state"`
	Question       question.Public `json:"question"`
	Index          int             `json:"index"`
	Total          int             `json:"total"`
	ElapsedSeconds int             `json:"elapsed_seconds"`
	Score          int             `json:"score"`
	MaxScore       int             `json:"max_score"`
	Answered       int             `json:"answered"`
	Correct        int             `json:"correct"`
	Answer         *AnswerView     `json:"answer,omitempty"`
}

// View renders the session for display.
func (s *Session) View() View {
	q := s.Current()
	v := View{
		SessionID:      s.id.String(),
		State:          s.state,
		Question:       q.Public(),
		Index:          s.current,
		Total:          len(s.questions),
		ElapsedSeconds: seconds(s.Elapsed()),
		Score:          s.score,
		MaxScore:       s.maxScore(),
		Answered:       len(s.answers),
		Correct:        s.CorrectCount(),
	}
	if ans, ok := s.answers[q.ID]; ok {
		av := answerView(q, ans)
		v.Answer = &av
	}
	return v
}

func (s *Session) maxScore() int {
	total := 0
	for _, q := range s.questions {
		total += q.Points
	}
	return total
}

func answerView(q question.Question, ans progress.UserAnswer) AnswerView {
	return AnswerView{
		Response:     ans.Response,
		IsCorrect:    ans.IsCorrect,
		AttemptCount: ans.AttemptCount,
		Explanation:  q.Explanation,
	}
}
