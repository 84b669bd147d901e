package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/spigell/interview-coach/internal/ai/gemini"
	"github.com/spigell/interview-coach/internal/ai/huggingface"
	"github.com/spigell/interview-coach/internal/prompts"
	"github.com/spigell/interview-coach/internal/retry"
	"github.com/spigell/interview-coach/internal/tone"
)

const (
	app = "interview-coach"
)

type Config struct {
	DB           string         `mapstructure:"db"`
	MaxLogLength int            `mapstructure:"max-log-length"`
	Gemini       *GeminiConfig  `mapstructure:"gemini"`
	Generation   prompts.Params `mapstructure:"generation"`
	Retry        *RetryConfig   `mapstructure:"retry"`
	Tone         *ToneConfig    `mapstructure:"tone"`
}

type GeminiConfig struct {
	APIKey     string `mapstructure:"api-key"`
	APIKeyFile string `mapstructure:"api-key-file"`
	Model      string `mapstructure:"model"`
}

type RetryConfig struct {
	MaxAttempts int           `mapstructure:"max-attempts"`
	BaseDelay   time.Duration `mapstructure:"base-delay"`
}

type ToneConfig struct {
	Enabled   bool          `mapstructure:"enabled"`
	URL       string        `mapstructure:"url"`
	Token     string        `mapstructure:"token"`
	TokenFile string        `mapstructure:"token-file"`
	MinLength int           `mapstructure:"min-length"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:          app,
		Short:        "interview-coach generates mock job interviews with Gemini and scores your answers",
		SilenceUsage: true,
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

var envBindings = map[string]string{
	"gemini.api-key":      "GEMINI_API_KEY",
	"gemini.api-key-file": "GEMINI_API_KEY_FILE",
	"tone.token":          "HF_API_TOKEN",
	"tone.token-file":     "HF_API_TOKEN_FILE",
	"db":                  "INTERVIEW_COACH_DB",
}

func init() {
	for key, env := range envBindings {
		if err := viper.BindEnv(key, env); err != nil {
			log.Fatalf("binding %s environment variable: %v", env, err)
		}
	}

	viper.SetDefault("db", app+".db")
	viper.SetDefault("max-log-length", 200)
	viper.SetDefault("gemini.model", gemini.DefaultModel)
	viper.SetDefault("generation", defaultGeneration())
	viper.SetDefault("retry.max-attempts", retry.DefaultMaxAttempts)
	viper.SetDefault("retry.base-delay", retry.DefaultBaseDelay)
	viper.SetDefault("tone.enabled", true)
	viper.SetDefault("tone.url", huggingface.DefaultURL)
	viper.SetDefault("tone.min-length", tone.DefaultMinLength)
	viper.SetDefault("tone.timeout", huggingface.DefaultTimeout)

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is interview-coach.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")
	rootCmd.PersistentFlags().String("db", "", "path to the sqlite database")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
	viper.BindPFlag("db", rootCmd.PersistentFlags().Lookup("db"))
}

func defaultGeneration() map[string]any {
	p := prompts.DefaultParams()
	return map[string]any{
		"temperature":       p.Temperature,
		"top-p":             p.TopP,
		"top-k":             p.TopK,
		"max-output-tokens": p.MaxOutputTokens,
	}
}

func initConfig() {
	// The version command needs no configuration.
	if versionCmd.CalledAs() != "" {
		return
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Fatalf("loading .env: %v", err)
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app)
	}

	// An explicit config file must parse; the default one is optional.
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			log.Fatal(err)
		}
	}
}

func getConfig() (*Config, error) {
	var config *Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if config == nil {
		return nil, errors.New("config is required")
	}
	if config.Gemini == nil {
		config.Gemini = &GeminiConfig{}
	}
	if config.Retry == nil {
		config.Retry = &RetryConfig{}
	}
	if config.Tone == nil {
		config.Tone = &ToneConfig{}
	}

	return config, nil
}
