package questions

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/interview-coach/internal/ai"
	"github.com/spigell/interview-coach/internal/interview"
	"github.com/spigell/interview-coach/internal/logger"
	"github.com/spigell/interview-coach/internal/prompts"
	"github.com/spigell/interview-coach/internal/retry"
)

const op = "generate questions"

// Generator obtains a validated question set from the language model.
type Generator struct {
	llm     ai.Generator
	prompts *prompts.Builder
	retry   *retry.Executor
	logger  *zap.Logger
}

func NewGenerator(llm ai.Generator, builder *prompts.Builder, executor *retry.Executor, log *zap.Logger) *Generator {
	return &Generator{
		llm:     llm,
		prompts: builder,
		retry:   executor,
		logger:  logger.ForOperation(log, "questions"),
	}
}

// rawQuestion is the JSON shape requested from the model.
type rawQuestion struct {
	Question string `json:"question"`
	Type     string `json:"type"`
}

// Generate returns exactly the number and categories of questions the mode requires,
// in the order the model produced them.
func (g *Generator) Generate(ctx context.Context, contextText string, mode interview.Mode) ([]interview.GeneratedQuestion, error) {
	if strings.TrimSpace(contextText) == "" {
		return nil, fmt.Errorf("%w: interview context must not be empty", interview.ErrInvalidInput)
	}
	if !mode.Valid() {
		return nil, fmt.Errorf("%w: unknown interview mode %q", interview.ErrInvalidInput, mode)
	}

	req, err := g.prompts.Questions(mode, contextText)
	if err != nil {
		return nil, err
	}

	raw, err := retry.Do(ctx, g.retry, func(ctx context.Context) (string, error) {
		return g.llm.Generate(ctx, req)
	})
	if err != nil {
		g.logger.Error("question generation failed", zap.String("mode", mode.String()), zap.Error(err))
		return nil, &interview.ServiceUnavailableError{Op: op, Err: err}
	}

	questions, err := parseQuestions(raw, mode)
	if err != nil {
		g.logger.Warn("question generation returned unusable data", zap.String("mode", mode.String()), zap.Error(err))
		return nil, err
	}

	g.logger.Info("questions generated", zap.String("mode", mode.String()), zap.Int("count", len(questions)))
	return questions, nil
}

func parseQuestions(raw string, mode interview.Mode) ([]interview.GeneratedQuestion, error) {
	var payload json.RawMessage
	if err := ai.DecodeJSON(op, raw, &payload); err != nil {
		return nil, err
	}

	var items []rawQuestion
	if err := json.Unmarshal(payload, &items); err != nil {
		var wrapped struct {
			Questions []rawQuestion `json:"questions"`
		}
		if werr := json.Unmarshal(payload, &wrapped); werr != nil || wrapped.Questions == nil {
			return nil, &interview.ParseError{Op: op, Raw: raw, Err: err}
		}
		items = wrapped.Questions
	}

	questions := make([]interview.GeneratedQuestion, 0, len(items))
	for i, item := range items {
		text := strings.TrimSpace(item.Question)
		if text == "" {
			return nil, &interview.ParseError{Op: op, Raw: raw, Err: fmt.Errorf("question %d has no text", i)}
		}
		category, err := interview.ParseCategory(item.Type)
		if err != nil {
			return nil, &interview.ParseError{Op: op, Raw: raw, Err: fmt.Errorf("question %d: %w", i, err)}
		}
		questions = append(questions, interview.GeneratedQuestion{Text: text, Category: category})
	}

	if err := interview.CheckPlan(mode, questions); err != nil {
		return nil, &interview.ParseError{Op: op, Raw: raw, Err: errors.Join(errPlanMismatch, err)}
	}

	return questions, nil
}

var errPlanMismatch = errors.New("question set does not match the interview plan")
