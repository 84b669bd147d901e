package prompts

import (
	"errors"
	"strings"
	"testing"

	"github.com/spigell/interview-coach/internal/interview"
)

func TestQuestionsPerMode(t *testing.T) {
	b := NewBuilder(Params{})

	tests := []struct {
		mode     interview.Mode
		contains []string
		role     string
	}{
		{
			mode:     interview.ModeTechStack,
			contains: []string{"exactly 3 theoretical", "exactly 1 short practical", `"type": "practical"`},
			role:     technicalInterviewer,
		},
		{
			mode:     interview.ModeJobDescription,
			contains: []string{"exactly 3 theoretical", "job description based"},
			role:     technicalInterviewer,
		},
		{
			mode:     interview.ModeCV,
			contains: []string{"exactly 3 theoretical", "résumé based"},
			role:     technicalInterviewer,
		},
		{
			mode:     interview.ModeBehavioral,
			contains: []string{"exactly 4 questions", "STAR", `"type": "behavioral"`},
			role:     hrInterviewer,
		},
	}

	for _, tt := range tests {
		t.Run(string(tt.mode), func(t *testing.T) {
			req, err := b.Questions(tt.mode, "Go, Kubernetes")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			for _, want := range tt.contains {
				if !strings.Contains(req.Prompt, want) {
					t.Fatalf("expected prompt to contain %q:\n%s", want, req.Prompt)
				}
			}
			if !strings.Contains(req.Prompt, "Go, Kubernetes") {
				t.Fatalf("expected context in prompt:\n%s", req.Prompt)
			}
			if !strings.HasPrefix(req.SystemInstruction, tt.role) {
				t.Fatalf("unexpected system instruction: %q", req.SystemInstruction)
			}
			if !req.JSONOnly {
				t.Fatal("expected JSONOnly request")
			}
		})
	}
}

func TestQuestionsIsDeterministic(t *testing.T) {
	b := NewBuilder(DefaultParams())

	first, err := b.Questions(interview.ModeBehavioral, "leadership")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := b.Questions(interview.ModeBehavioral, "leadership")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first != second {
		t.Fatalf("expected identical requests:\n%+v\n%+v", first, second)
	}
}

func TestRequestsCarryGenerationParams(t *testing.T) {
	b := NewBuilder(Params{Temperature: 0.2, MaxOutputTokens: 1024})

	req, err := b.Profile("Jane Doe, Go developer")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.Temperature != 0.2 || req.MaxOutputTokens != 1024 {
		t.Fatalf("expected configured params, got %+v", req)
	}
	if req.TopP != 0.95 || req.TopK != 64 {
		t.Fatalf("expected default topP/topK, got %+v", req)
	}
	if !strings.Contains(req.SystemInstruction, "Do not add prose") {
		t.Fatalf("expected json directive, got %q", req.SystemInstruction)
	}
}

func TestEvaluationFramingByMode(t *testing.T) {
	b := NewBuilder(Params{})
	batch := interview.EvaluationBatch{
		{Index: 0, Question: "Tell me about a conflict.", UserAnswer: "I listened first."},
	}

	tech, err := b.Evaluation(interview.ModeTechStack, batch)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(tech.SystemInstruction, technicalReviewer) {
		t.Fatalf("unexpected technical framing: %q", tech.SystemInstruction)
	}
	if strings.Contains(tech.Prompt, "more professional") {
		t.Fatal("technical prompt must not carry soft skills advice")
	}

	hr, err := b.Evaluation(interview.ModeBehavioral, batch)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(hr.SystemInstruction, hrReviewer) {
		t.Fatalf("unexpected behavioral framing: %q", hr.SystemInstruction)
	}
	if !strings.Contains(hr.Prompt, `"user_answer": "I listened first."`) {
		t.Fatalf("expected batch in prompt:\n%s", hr.Prompt)
	}
}

func TestInvalidModeRejected(t *testing.T) {
	b := NewBuilder(Params{})
	if _, err := b.Questions("poetry", "x"); !errors.Is(err, interview.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if _, err := b.Evaluation("poetry", nil); !errors.Is(err, interview.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestContextPerMode(t *testing.T) {
	if got := Context(interview.ModeJobDescription, " Backend engineer "); got != "Based on this job description: Backend engineer" {
		t.Fatalf("unexpected context: %q", got)
	}
	if got := Context(interview.ModeTechStack, "Go"); !strings.HasSuffix(got, "technologies: Go") {
		t.Fatalf("unexpected context: %q", got)
	}
}
