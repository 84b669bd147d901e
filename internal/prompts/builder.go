package prompts

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"strings"
	"text/template"

	"github.com/spigell/interview-coach/internal/ai"
	"github.com/spigell/interview-coach/internal/interview"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// Parsed once at package init; reused on every build.
var templates = template.Must(template.ParseFS(templateFS, "templates/*.tmpl"))

const (
	technicalInterviewer = "You are an expert IT technical interviewer."
	hrInterviewer        = "You are an expert in Human Resources and Organizational Psychology."
	technicalReviewer    = "You are a senior technical recruiter. Evaluate the technical correctness of the code or concept and its efficiency."
	hrReviewer           = "You are an experienced HR manager. Evaluate the answers using the STAR method, empathy and assertive communication. " +
		"Judge the quality of the content (what was said), not only how it was said."
	recruiter = "You are an expert recruiter."

	jsonDirective = "Respond only with valid JSON that matches the required schema. Do not add prose, comments or markdown code fences."
)

var modeLabels = map[interview.Mode]string{
	interview.ModeCV:             "résumé based technical interview",
	interview.ModeJobDescription: "job description based technical interview",
	interview.ModeTechStack:      "technology stack interview",
}

// Params are the generation settings attached to every request.
type Params struct {
	Temperature     float32 `mapstructure:"temperature"`
	TopP            float32 `mapstructure:"top-p"`
	TopK            float32 `mapstructure:"top-k"`
	MaxOutputTokens int32   `mapstructure:"max-output-tokens"`
}

func DefaultParams() Params {
	return Params{Temperature: 0.7, TopP: 0.95, TopK: 64, MaxOutputTokens: 8192}
}

// Builder maps interview inputs to generation requests. It performs no I/O.
type Builder struct {
	params Params
}

// NewBuilder creates a Builder; zero params fall back to DefaultParams.
func NewBuilder(p Params) *Builder {
	def := DefaultParams()
	if p.Temperature <= 0 {
		p.Temperature = def.Temperature
	}
	if p.TopP <= 0 {
		p.TopP = def.TopP
	}
	if p.TopK <= 0 {
		p.TopK = def.TopK
	}
	if p.MaxOutputTokens <= 0 {
		p.MaxOutputTokens = def.MaxOutputTokens
	}
	return &Builder{params: p}
}

func (b *Builder) Params() Params { return b.params }

// Context builds the interview context passed to Questions from the raw session data.
func Context(mode interview.Mode, data string) string {
	data = strings.TrimSpace(data)
	switch mode {
	case interview.ModeCV:
		return "Based on the following professional profile extracted from a résumé: " + data
	case interview.ModeJobDescription:
		return "Based on this job description: " + data
	case interview.ModeBehavioral:
		return "Soft skills interview focused on: " + data
	default:
		return "Technical interview focused on these technologies: " + data
	}
}

// Questions builds the question generation request for mode.
func (b *Builder) Questions(mode interview.Mode, context string) (ai.Request, error) {
	if !mode.Valid() {
		return ai.Request{}, fmt.Errorf("%w: unknown interview mode %q", interview.ErrInvalidInput, mode)
	}

	plan := mode.Plan()
	data := map[string]any{
		"Mode":        modeLabels[mode],
		"Context":     strings.TrimSpace(context),
		"Theoretical": plan[interview.CategoryTheoretical],
		"Practical":   plan[interview.CategoryPractical],
		"Behavioral":  plan[interview.CategoryBehavioral],
	}

	name, role := "questions_technical.tmpl", technicalInterviewer
	if mode.Behavioral() {
		name, role = "questions_behavioral.tmpl", hrInterviewer
	}

	prompt, err := render(name, data)
	if err != nil {
		return ai.Request{}, err
	}

	return b.request(role, prompt), nil
}

// Evaluation builds the scoring request for a batch of answers.
func (b *Builder) Evaluation(mode interview.Mode, batch interview.EvaluationBatch) (ai.Request, error) {
	if !mode.Valid() {
		return ai.Request{}, fmt.Errorf("%w: unknown interview mode %q", interview.ErrInvalidInput, mode)
	}

	payload, err := json.MarshalIndent(batch, "", "  ")
	if err != nil {
		return ai.Request{}, fmt.Errorf("marshal evaluation batch: %w", err)
	}

	prompt, err := render("evaluation.tmpl", map[string]any{
		"Batch":      string(payload),
		"Behavioral": mode.Behavioral(),
	})
	if err != nil {
		return ai.Request{}, err
	}

	role := technicalReviewer
	if mode.Behavioral() {
		role = hrReviewer
	}

	return b.request(role, prompt), nil
}

// Profile builds the résumé profile extraction request.
func (b *Builder) Profile(text string) (ai.Request, error) {
	prompt, err := render("profile.tmpl", map[string]any{"Text": strings.TrimSpace(text)})
	if err != nil {
		return ai.Request{}, err
	}
	return b.request(recruiter, prompt), nil
}

func (b *Builder) request(role, prompt string) ai.Request {
	return ai.Request{
		SystemInstruction: role + " " + jsonDirective,
		Prompt:            prompt,
		Temperature:       b.params.Temperature,
		TopP:              b.params.TopP,
		TopK:              b.params.TopK,
		MaxOutputTokens:   b.params.MaxOutputTokens,
		JSONOnly:          true,
	}
}

func render(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return buf.String(), nil
}
