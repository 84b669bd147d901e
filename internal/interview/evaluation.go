package interview

import "math"

const (
	MinScore = 1
	MaxScore = 10
)

// BatchItem is one question/answer pair submitted for scoring.
type BatchItem struct {
	Index      int    `json:"index"`
	Question   string `json:"question"`
	UserAnswer string `json:"user_answer"`
}

// EvaluationBatch is ordered: item i always has Index i.
type EvaluationBatch []BatchItem

// Answers returns the user answers in batch order.
func (b EvaluationBatch) Answers() []string {
	answers := make([]string, len(b))
	for i, item := range b {
		answers[i] = item.UserAnswer
	}
	return answers
}

// ScoredAnswer is the fused judgment for one batch item.
type ScoredAnswer struct {
	Index    int     `json:"index"`
	Score    float64 `json:"score"`
	Feedback string  `json:"feedback"`
}

// Evaluation is the result of scoring a batch. Items[i].Index == i.
type Evaluation struct {
	Items           []ScoredAnswer `json:"evaluations"`
	OverallFeedback string         `json:"overall_feedback"`
}

// Scores returns the per-answer scores in order.
func (e *Evaluation) Scores() []float64 {
	scores := make([]float64, len(e.Items))
	for i, item := range e.Items {
		scores[i] = item.Score
	}
	return scores
}

// AggregateScore is the mean per-answer score rounded to one decimal place.
func (e *Evaluation) AggregateScore() float64 {
	return AverageScore(e.Scores())
}

// AverageScore returns the arithmetic mean rounded to one decimal place, or 0 for no scores.
func AverageScore(scores []float64) float64 {
	if len(scores) == 0 {
		return 0
	}

	var total float64
	for _, s := range scores {
		total += s
	}

	return math.Round(total/float64(len(scores))*10) / 10
}

// ClampScore forces s into [MinScore, MaxScore].
func ClampScore(s float64) float64 {
	if math.IsNaN(s) || s < MinScore {
		return MinScore
	}
	if s > MaxScore {
		return MaxScore
	}
	return s
}
