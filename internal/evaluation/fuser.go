package evaluation

import (
	"context"
	"errors"
	"fmt"
	"math"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/spigell/interview-coach/internal/ai"
	"github.com/spigell/interview-coach/internal/interview"
	"github.com/spigell/interview-coach/internal/logger"
	"github.com/spigell/interview-coach/internal/prompts"
	"github.com/spigell/interview-coach/internal/retry"
	"github.com/spigell/interview-coach/internal/tone"
)

const op = "evaluate answers"

// Tone fragments appended to the feedback of behavioral answers.
const (
	ToneFragmentPositive = " 🟢 Your tone conveys confidence and assurance."
	ToneFragmentNegative = " 🔴 Your tone comes across as somewhat insecure or hesitant."
	ToneFragmentNeutral  = " 🟡 Your tone is neutral."
)

// Fuser scores a batch of answers and, for behavioral interviews, merges the
// tone of each answer into its feedback.
type Fuser struct {
	llm     ai.Generator
	prompts *prompts.Builder
	retry   *retry.Executor
	tone    *tone.Adapter
	logger  *zap.Logger
}

// NewFuser creates a Fuser. toneAdapter may be nil, which disables tone fusion.
func NewFuser(llm ai.Generator, builder *prompts.Builder, executor *retry.Executor, toneAdapter *tone.Adapter, log *zap.Logger) *Fuser {
	return &Fuser{
		llm:     llm,
		prompts: builder,
		retry:   executor,
		tone:    toneAdapter,
		logger:  logger.ForOperation(log, "evaluation"),
	}
}

// Evaluate returns one scored answer per batch item, ordered by index.
func (f *Fuser) Evaluate(ctx context.Context, batch interview.EvaluationBatch, mode interview.Mode) (*interview.Evaluation, error) {
	if len(batch) == 0 {
		return nil, fmt.Errorf("%w: evaluation batch is empty", interview.ErrInvalidInput)
	}
	for i, item := range batch {
		if item.Index != i {
			return nil, fmt.Errorf("%w: batch item %d has index %d", interview.ErrInvalidInput, i, item.Index)
		}
	}

	req, err := f.prompts.Evaluation(mode, batch)
	if err != nil {
		return nil, err
	}

	var (
		raw   string
		tones []interview.ToneResult
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		out, err := retry.Do(gctx, f.retry, func(ctx context.Context) (string, error) {
			return f.llm.Generate(ctx, req)
		})
		if err != nil {
			return &interview.ServiceUnavailableError{Op: op, Err: err}
		}
		raw = out
		return nil
	})
	if mode.Behavioral() {
		g.Go(func() error {
			tones = f.tone.Classify(gctx, toneInputs(batch))
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		f.logger.Error("answer scoring failed", zap.String("mode", mode.String()), zap.Error(err))
		return nil, err
	}

	eval, err := parseEvaluation(raw, len(batch))
	if err != nil {
		f.logger.Warn("answer scoring returned unusable data", zap.String("mode", mode.String()), zap.Error(err))
		return nil, err
	}

	fuseTone(eval, tones)

	f.logger.Info("answers evaluated",
		zap.String("mode", mode.String()),
		zap.Int("answers", len(eval.Items)),
		zap.Int("tones", len(tones)),
		zap.Float64("aggregate", eval.AggregateScore()),
	)
	return eval, nil
}

// toneInputs blanks out skipped answers so they are never sent for classification.
func toneInputs(batch interview.EvaluationBatch) []string {
	answers := batch.Answers()
	for i, a := range answers {
		if a == interview.NoAnswer {
			answers[i] = ""
		}
	}
	return answers
}

func fuseTone(eval *interview.Evaluation, tones []interview.ToneResult) {
	for _, t := range tones {
		if t.Index < 0 || t.Index >= len(eval.Items) {
			continue
		}
		eval.Items[t.Index].Feedback += fragment(t.Label)
	}
}

func fragment(label interview.ToneLabel) string {
	switch label {
	case interview.TonePositive:
		return ToneFragmentPositive
	case interview.ToneNegative:
		return ToneFragmentNegative
	default:
		return ToneFragmentNeutral
	}
}

var (
	errNoEvaluations = errors.New("response has no evaluations")
	errIndexMismatch = errors.New("evaluation indices do not match the batch")
)

// parseEvaluation accepts {"evaluations": [...], "overallFeedback": "..."} or a bare
// evaluations array. Every batch index must appear exactly once.
func parseEvaluation(raw string, n int) (*interview.Evaluation, error) {
	var payload any
	if err := ai.DecodeJSON(op, raw, &payload); err != nil {
		return nil, err
	}

	var (
		items   []any
		overall string
	)
	switch v := payload.(type) {
	case []any:
		items = v
	case map[string]any:
		list, ok := v["evaluations"].([]any)
		if !ok {
			return nil, &interview.ParseError{Op: op, Raw: raw, Err: errNoEvaluations}
		}
		items = list
		overall = ai.CoerceString(firstOf(v, "overallFeedback", "overall_feedback"))
	default:
		return nil, &interview.ParseError{Op: op, Raw: raw, Err: errNoEvaluations}
	}

	if len(items) != n {
		return nil, &interview.ParseError{Op: op, Raw: raw, Err: fmt.Errorf("%w: got %d results for %d answers", errIndexMismatch, len(items), n)}
	}

	scored := make([]interview.ScoredAnswer, n)
	seen := make([]bool, n)
	for pos, item := range items {
		fields, ok := item.(map[string]any)
		if !ok {
			return nil, &interview.ParseError{Op: op, Raw: raw, Err: fmt.Errorf("evaluation %d is not an object", pos)}
		}

		idx, ok := ai.CoerceInt(fields["index"])
		if !ok || idx < 0 || idx >= n || seen[idx] {
			return nil, &interview.ParseError{Op: op, Raw: raw, Err: fmt.Errorf("%w: evaluation %d has index %v", errIndexMismatch, pos, fields["index"])}
		}
		seen[idx] = true

		score := ai.CoerceFloat(fields["score"])
		if math.IsNaN(score) {
			return nil, &interview.ParseError{Op: op, Raw: raw, Err: fmt.Errorf("evaluation %d has no numeric score", pos)}
		}

		scored[idx] = interview.ScoredAnswer{
			Index:    idx,
			Score:    interview.ClampScore(score),
			Feedback: ai.CoerceString(fields["feedback"]),
		}
	}

	return &interview.Evaluation{Items: scored, OverallFeedback: overall}, nil
}

func firstOf(m map[string]any, keys ...string) any {
	for _, k := range keys {
		if v, ok := m[k]; ok && v != nil {
			return v
		}
	}
	return nil
}
