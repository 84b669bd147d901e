package interview

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// NoAnswer replaces answers the candidate skipped.
const NoAnswer = "No answer provided"

// AnswerRecord holds the candidate answer and its evaluation for one question.
type AnswerRecord struct {
	QuestionIndex int     `json:"question_index"`
	UserAnswer    string  `json:"user_answer"`
	Score         float64 `json:"score"`
	Feedback      string  `json:"feedback"`
}

// Session is one interview attempt. It exclusively owns its questions and answers.
type Session struct {
	ID              string              `json:"id"`
	Mode            Mode                `json:"mode"`
	ContextData     string              `json:"context_data"`
	Questions       []GeneratedQuestion `json:"questions"`
	Answers         []AnswerRecord      `json:"answers"`
	OverallFeedback string              `json:"overall_feedback"`
	CreatedAt       time.Time           `json:"created_at"`
	EvaluatedAt     *time.Time          `json:"evaluated_at,omitempty"`
}

// NewSession creates a session with empty answer records. The question set must
// match the plan of the mode.
func NewSession(id string, mode Mode, contextData string, questions []GeneratedQuestion, now time.Time) (*Session, error) {
	if strings.TrimSpace(id) == "" {
		return nil, fmt.Errorf("%w: session id is required", ErrInvalidInput)
	}
	if err := CheckPlan(mode, questions); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	answers := make([]AnswerRecord, len(questions))
	for i := range answers {
		answers[i] = AnswerRecord{QuestionIndex: i}
	}

	return &Session{
		ID:          id,
		Mode:        mode,
		ContextData: contextData,
		Questions:   append([]GeneratedQuestion(nil), questions...),
		Answers:     answers,
		CreatedAt:   now,
	}, nil
}

// Completed reports whether the session has been evaluated.
func (s *Session) Completed() bool {
	return s.EvaluatedAt != nil
}

// Title is a short human readable label for listings.
func (s *Session) Title() string {
	switch s.Mode {
	case ModeTechStack:
		if data := strings.TrimSpace(s.ContextData); data != "" {
			return data
		}
		return "Technical interview"
	case ModeCV:
		return "Résumé based interview"
	case ModeJobDescription:
		return "Job offer interview"
	case ModeBehavioral:
		return "Soft skills interview"
	default:
		return "Interview"
	}
}

// Batch pairs the questions with the submitted answers. Missing or blank answers
// are replaced with NoAnswer.
func (s *Session) Batch(answers []string) EvaluationBatch {
	batch := make(EvaluationBatch, len(s.Questions))
	for i, q := range s.Questions {
		answer := NoAnswer
		if i < len(answers) && strings.TrimSpace(answers[i]) != "" {
			answer = answers[i]
		}
		batch[i] = BatchItem{Index: i, Question: q.Text, UserAnswer: answer}
	}
	return batch
}

// ApplyEvaluation records the batch answers and their scores. The session is
// left untouched if the evaluation does not cover every question exactly once.
func (s *Session) ApplyEvaluation(batch EvaluationBatch, eval *Evaluation, now time.Time) error {
	if eval == nil {
		return errors.New("evaluation is required")
	}
	if len(batch) != len(s.Questions) || len(eval.Items) != len(s.Questions) {
		return fmt.Errorf("evaluation covers %d answers, session has %d questions", len(eval.Items), len(s.Questions))
	}

	updated := make([]AnswerRecord, len(s.Questions))
	for i, item := range eval.Items {
		if item.Index != i || batch[i].Index != i {
			return fmt.Errorf("evaluation item %d has index %d", i, item.Index)
		}
		updated[i] = AnswerRecord{
			QuestionIndex: i,
			UserAnswer:    batch[i].UserAnswer,
			Score:         item.Score,
			Feedback:      item.Feedback,
		}
	}

	s.Answers = updated
	s.OverallFeedback = eval.OverallFeedback
	s.EvaluatedAt = &now
	return nil
}

// AggregateScore is the mean answer score rounded to one decimal, 0 until evaluated.
func (s *Session) AggregateScore() float64 {
	if !s.Completed() {
		return 0
	}

	scores := make([]float64, len(s.Answers))
	for i, a := range s.Answers {
		scores[i] = a.Score
	}
	return AverageScore(scores)
}
