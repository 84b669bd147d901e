package tone

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"github.com/spigell/interview-coach/internal/ai"
	"github.com/spigell/interview-coach/internal/interview"
	"github.com/spigell/interview-coach/internal/logger"
)

// DefaultMinLength is the shortest trimmed answer, in characters, worth classifying.
const DefaultMinLength = 5

var errNoClassifier = errors.New("tone classifier is not configured")

var labelAliases = map[string]interview.ToneLabel{
	"label_0":  interview.ToneNegative,
	"label_1":  interview.ToneNeutral,
	"label_2":  interview.TonePositive,
	"negative": interview.ToneNegative,
	"neutral":  interview.ToneNeutral,
	"positive": interview.TonePositive,
}

// Adapter classifies the sentiment of candidate answers. It never fails the
// caller: any problem degrades to a nil result and a warning.
type Adapter struct {
	classifier ai.ToneClassifier
	minLength  int
	logger     *zap.Logger
}

// NewAdapter wraps classifier. A nil classifier disables tone analysis.
func NewAdapter(classifier ai.ToneClassifier, minLength int, log *zap.Logger) *Adapter {
	if minLength <= 0 {
		minLength = DefaultMinLength
	}
	return &Adapter{
		classifier: classifier,
		minLength:  minLength,
		logger:     logger.ForOperation(log, "tone"),
	}
}

// Classify returns one result per answer long enough to classify, each tagged
// with the answer's position in answers.
func (a *Adapter) Classify(ctx context.Context, answers []string) []interview.ToneResult {
	if a == nil {
		return nil
	}

	indexes := make([]int, 0, len(answers))
	texts := make([]string, 0, len(answers))
	for i, answer := range answers {
		trimmed := strings.TrimSpace(answer)
		if utf8.RuneCountInString(trimmed) < a.minLength {
			continue
		}
		indexes = append(indexes, i)
		texts = append(texts, trimmed)
	}

	if len(texts) == 0 {
		return nil
	}

	if a.classifier == nil {
		a.degraded(errNoClassifier, len(texts))
		return nil
	}

	body, err := a.classifier.Classify(ctx, texts)
	if err != nil {
		a.degraded(err, len(texts))
		return nil
	}

	results, err := parse(body, indexes)
	if err != nil {
		a.degraded(err, len(texts))
		return nil
	}

	return results
}

func (a *Adapter) degraded(err error, inputs int) {
	a.logger.Warn("tone classification degraded", zap.Int("inputs", inputs), zap.Error(err))
}

// parse accepts either the nested shape [[{label,score}...]...] with one list
// per input, or the flat shape [{label,score}...] sent for a single input.
func parse(body []byte, indexes []int) ([]interview.ToneResult, error) {
	if !gjson.ValidBytes(body) {
		return nil, errors.New("tone response is not valid json")
	}

	root := gjson.ParseBytes(body)
	if !root.IsArray() {
		if msg := root.Get("error"); msg.Exists() {
			return nil, fmt.Errorf("tone service error: %s", msg.String())
		}
		return nil, errors.New("tone response is not an array")
	}

	elements := root.Array()
	var groups []gjson.Result
	switch {
	case len(elements) == 0:
		return nil, errors.New("tone response is empty")
	case elements[0].IsArray():
		groups = elements
	case len(indexes) == 1:
		groups = []gjson.Result{root}
	default:
		return nil, fmt.Errorf("flat tone response for %d inputs", len(indexes))
	}

	if len(groups) != len(indexes) {
		return nil, fmt.Errorf("tone response has %d results for %d inputs", len(groups), len(indexes))
	}

	results := make([]interview.ToneResult, len(groups))
	for i, group := range groups {
		label, confidence := dominant(group)
		results[i] = interview.ToneResult{Index: indexes[i], Label: label, Confidence: confidence}
	}

	return results, nil
}

// dominant picks the highest scoring label. A tie at the top or an unknown
// label is reported as neutral.
func dominant(group gjson.Result) (interview.ToneLabel, float64) {
	var (
		best  string
		score = -1.0
		tied  bool
	)

	group.ForEach(func(_, candidate gjson.Result) bool {
		s := candidate.Get("score").Float()
		switch {
		case s > score:
			best, score, tied = candidate.Get("label").String(), s, false
		case s == score:
			tied = true
		}
		return true
	})

	if score < 0 {
		return interview.ToneNeutral, 0
	}

	label, ok := labelAliases[strings.ToLower(strings.TrimSpace(best))]
	if !ok || tied {
		return interview.ToneNeutral, score
	}
	return label, score
}
