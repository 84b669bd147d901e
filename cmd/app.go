package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/interview-coach/internal/ai"
	"github.com/spigell/interview-coach/internal/ai/gemini"
	"github.com/spigell/interview-coach/internal/ai/huggingface"
	"github.com/spigell/interview-coach/internal/evaluation"
	"github.com/spigell/interview-coach/internal/logger"
	"github.com/spigell/interview-coach/internal/profile"
	"github.com/spigell/interview-coach/internal/prompts"
	"github.com/spigell/interview-coach/internal/questions"
	"github.com/spigell/interview-coach/internal/retry"
	"github.com/spigell/interview-coach/internal/secrets"
	"github.com/spigell/interview-coach/internal/simulation"
	"github.com/spigell/interview-coach/internal/store"
	"github.com/spigell/interview-coach/internal/tone"
)

// environment holds what every command needs.
type environment struct {
	config  *Config
	logger  *zap.Logger
	store   *store.SQLiteStore
	service *simulation.Service
}

func (e *environment) Close() {
	if e.store != nil {
		if err := e.store.Close(); err != nil {
			e.logger.Warn("closing the database", zap.Error(err))
		}
	}
	_ = e.logger.Sync()
}

// setup builds the logger, config and store. With withAI the language model
// and tone classifier are wired in too; read-only commands skip them.
func setup(ctx context.Context, withAI bool) *environment {
	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(redacted(config), "", "  ")
	logger.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	st, err := store.NewSQLiteStore(config.DB)
	if err != nil {
		logger.Fatal("opening the database", zap.Error(err), zap.String("db", config.DB))
	}

	env := &environment{config: config, logger: logger, store: st}
	if !withAI {
		env.service = simulation.NewService(st, nil, nil, nil, logger)
		return env
	}

	generator, err := newGenerator(ctx, config, logger)
	if err != nil {
		logger.Fatal(
			"building the gemini client",
			zap.Error(err),
			zap.String("hint", "set GEMINI_API_KEY, GEMINI_API_KEY_FILE or gemini.api-key-file in the configuration file"),
		)
	}

	builder := prompts.NewBuilder(config.Generation)
	executor := retry.New(config.Retry.MaxAttempts, config.Retry.BaseDelay, logger.With(zap.String("component", "retry")))
	adapter := tone.NewAdapter(newToneClassifier(config.Tone, logger), config.Tone.MinLength, logger)

	env.service = simulation.NewService(st,
		questions.NewGenerator(generator, builder, executor, logger),
		evaluation.NewFuser(generator, builder, executor, adapter, logger),
		profile.NewExtractor(generator, builder, executor, logger),
		logger,
	)

	return env
}

func newGenerator(ctx context.Context, config *Config, logger *zap.Logger) (ai.Generator, error) {
	apiKey, err := secrets.Load(secrets.Source{
		Name:  "gemini api key",
		Value: config.Gemini.APIKey,
		File:  config.Gemini.APIKeyFile,
	})
	if err != nil {
		return nil, err
	}

	return gemini.NewGenerator(ctx, apiKey, config.Gemini.Model, config.MaxLogLength, logger)
}

// newToneClassifier returns nil when tone analysis is disabled or has no token,
// which makes the adapter degrade instead of failing startup.
func newToneClassifier(config *ToneConfig, logger *zap.Logger) ai.ToneClassifier {
	if !config.Enabled {
		logger.Info("tone analysis disabled in configuration")
		return nil
	}

	token, err := secrets.Load(secrets.Source{
		Name:  "hugging face token",
		Value: config.Token,
		File:  config.TokenFile,
	})
	if err != nil {
		if errors.Is(err, secrets.ErrNotConfigured) {
			logger.Warn("tone analysis disabled", zap.String("hint", "set HF_API_TOKEN or HF_API_TOKEN_FILE"))
		} else {
			logger.Warn("tone analysis disabled", zap.Error(err))
		}
		return nil
	}

	classifier, err := huggingface.NewClassifier(config.URL, token, config.Timeout, logger)
	if err != nil {
		logger.Warn("tone analysis disabled", zap.Error(err))
		return nil
	}
	return classifier
}

// redacted returns a copy of config that is safe to log.
func redacted(config *Config) *Config {
	c := *config
	if c.Gemini != nil && c.Gemini.APIKey != "" {
		g := *c.Gemini
		g.APIKey = "***"
		c.Gemini = &g
	}
	if c.Tone != nil && c.Tone.Token != "" {
		t := *c.Tone
		t.Token = "***"
		c.Tone = &t
	}
	return &c
}
