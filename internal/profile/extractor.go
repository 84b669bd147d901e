package profile

import (
	"context"
	"errors"
	"strings"

	"github.com/mitchellh/mapstructure"
	"go.uber.org/zap"

	"github.com/spigell/interview-coach/internal/ai"
	"github.com/spigell/interview-coach/internal/interview"
	"github.com/spigell/interview-coach/internal/logger"
	"github.com/spigell/interview-coach/internal/prompts"
	"github.com/spigell/interview-coach/internal/retry"
	"github.com/spigell/interview-coach/internal/utils"
)

const op = "extract profile"

var errEmptyProfile = errors.New("profile carries no information")

// Extractor turns free résumé text into a structured profile. Failures never
// propagate: callers get nil and the reason is logged.
type Extractor struct {
	llm     ai.Generator
	prompts *prompts.Builder
	retry   *retry.Executor
	logger  *zap.Logger
}

func NewExtractor(llm ai.Generator, builder *prompts.Builder, executor *retry.Executor, log *zap.Logger) *Extractor {
	return &Extractor{
		llm:     llm,
		prompts: builder,
		retry:   executor,
		logger:  logger.ForOperation(log, "profile"),
	}
}

// Extract returns the profile or nil when the text is empty or the model
// output cannot be used.
func (e *Extractor) Extract(ctx context.Context, text string) *interview.Profile {
	if strings.TrimSpace(text) == "" {
		e.logger.Warn("skipping profile extraction for empty text")
		return nil
	}

	req, err := e.prompts.Profile(text)
	if err != nil {
		e.logger.Warn("profile prompt failed", zap.Error(err))
		return nil
	}

	raw, err := retry.Do(ctx, e.retry, func(ctx context.Context) (string, error) {
		return e.llm.Generate(ctx, req)
	})
	if err != nil {
		e.logger.Warn("profile extraction unavailable", zap.Error(&interview.ServiceUnavailableError{Op: op, Err: err}))
		return nil
	}

	profile, err := decodeProfile(raw)
	if err != nil {
		e.logger.Warn("profile extraction returned unusable data",
			zap.Error(err),
			zap.String("response", utils.TruncateForLog(raw, 200)),
		)
		return nil
	}

	e.logger.Info("profile extracted", zap.String("role", profile.Role), zap.Int("skills", len(profile.Skills)))
	return profile
}

func decodeProfile(raw string) (*interview.Profile, error) {
	var fields map[string]any
	if err := ai.DecodeJSON(op, raw, &fields); err != nil {
		return nil, err
	}

	var profile interview.Profile
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &profile,
	})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(fields); err != nil {
		return nil, &interview.ParseError{Op: op, Raw: raw, Err: err}
	}

	profile.Role = strings.TrimSpace(profile.Role)
	profile.Summary = strings.TrimSpace(profile.Summary)
	profile.Skills = compact(profile.Skills)
	profile.Experience = compact(profile.Experience)
	profile.Education = compact(profile.Education)

	if profile.Empty() {
		return nil, &interview.ParseError{Op: op, Raw: raw, Err: errEmptyProfile}
	}

	return &profile, nil
}

func compact(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
