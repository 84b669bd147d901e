package gemini

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/spigell/interview-coach/internal/ai"
	"github.com/spigell/interview-coach/internal/retry"
)

type fakeModels struct {
	mu    sync.Mutex
	calls []modelCallRecord
	queue []fakeResponse
}

type modelCallRecord struct {
	model    string
	contents []*genai.Content
	config   *genai.GenerateContentConfig
}

type fakeResponse struct {
	resp *genai.GenerateContentResponse
	err  error
}

func (f *fakeModels) enqueue(resp *genai.GenerateContentResponse, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queue = append(f.queue, fakeResponse{resp: resp, err: err})
}

func (f *fakeModels) GenerateContent(_ context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, modelCallRecord{model: model, contents: contents, config: config})
	if len(f.queue) == 0 {
		return nil, errors.New("unexpected call")
	}
	res := f.queue[0]
	f.queue = f.queue[1:]
	return res.resp, res.err
}

func textResponse(parts ...string) *genai.GenerateContentResponse {
	content := &genai.Content{}
	for _, p := range parts {
		content.Parts = append(content.Parts, &genai.Part{Text: p})
	}
	return &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{Content: content}}}
}

func TestGenerateSendsStructuredOutputConfig(t *testing.T) {
	models := &fakeModels{}
	models.enqueue(textResponse(`[{"question":"q","type":"theoretical"}]`), nil)

	g := newGenerator(models, "gemini-pro", 0, zap.NewNop())

	out, err := g.Generate(context.Background(), ai.Request{
		SystemInstruction: "system",
		Prompt:            "message",
		Temperature:       0.7,
		TopP:              0.95,
		TopK:              64,
		MaxOutputTokens:   8192,
		JSONOnly:          true,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != `[{"question":"q","type":"theoretical"}]` {
		t.Fatalf("unexpected output: %q", out)
	}

	if len(models.calls) != 1 {
		t.Fatalf("expected 1 call, got %d", len(models.calls))
	}

	call := models.calls[0]
	if call.model != "gemini-pro" {
		t.Fatalf("unexpected model: %q", call.model)
	}
	cfg := call.config
	if cfg.ResponseMIMEType != "application/json" {
		t.Fatalf("expected json mime type, got %q", cfg.ResponseMIMEType)
	}
	if cfg.Temperature == nil || *cfg.Temperature != 0.7 {
		t.Fatalf("unexpected temperature: %v", cfg.Temperature)
	}
	if cfg.TopK == nil || *cfg.TopK != 64 {
		t.Fatalf("unexpected topK: %v", cfg.TopK)
	}
	if cfg.MaxOutputTokens != 8192 {
		t.Fatalf("unexpected max output tokens: %d", cfg.MaxOutputTokens)
	}
	if cfg.SystemInstruction == nil || cfg.SystemInstruction.Parts[0].Text != "system" {
		t.Fatalf("expected system instruction to be set")
	}
	if len(call.contents) != 1 || call.contents[0].Parts[0].Text != "message" {
		t.Fatalf("unexpected contents: %+v", call.contents)
	}
}

func TestGenerateJoinsParts(t *testing.T) {
	models := &fakeModels{}
	models.enqueue(textResponse(" first ", "", "second"), nil)

	g := newGenerator(models, "", 0, nil)
	out, err := g.Generate(context.Background(), ai.Request{Prompt: "p"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "first\nsecond" {
		t.Fatalf("unexpected output: %q", out)
	}
	if g.Model() != DefaultModel {
		t.Fatalf("expected default model, got %q", g.Model())
	}
}

func TestGenerateEmptyResponseIsTransient(t *testing.T) {
	models := &fakeModels{}
	models.enqueue(&genai.GenerateContentResponse{}, nil)

	g := newGenerator(models, "gemini-pro", 0, nil)
	_, err := g.Generate(context.Background(), ai.Request{Prompt: "p"})
	if err == nil {
		t.Fatal("expected error for empty response")
	}
	if isPermanent(err) {
		t.Fatalf("empty response should be retryable: %v", err)
	}
}

func TestGenerateClassifiesAPIErrors(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		permanent bool
	}{
		{name: "server error", err: genai.APIError{Code: http.StatusInternalServerError, Status: "INTERNAL"}},
		{name: "overloaded", err: genai.APIError{Code: http.StatusServiceUnavailable, Status: "UNAVAILABLE"}},
		{name: "rate limited", err: genai.APIError{Code: http.StatusTooManyRequests, Status: "RESOURCE_EXHAUSTED"}},
		{name: "bad request", err: genai.APIError{Code: http.StatusBadRequest, Status: "INVALID_ARGUMENT"}, permanent: true},
		{name: "network", err: errors.New("connection reset by peer")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			models := &fakeModels{}
			models.enqueue(nil, tt.err)

			g := newGenerator(models, "gemini-pro", 0, nil)
			_, err := g.Generate(context.Background(), ai.Request{Prompt: "p"})
			if err == nil {
				t.Fatal("expected error")
			}
			if got := isPermanent(err); got != tt.permanent {
				t.Fatalf("expected permanent=%v, got %v (%v)", tt.permanent, got, err)
			}
		})
	}
}

func TestGenerateRejectsEmptyPrompt(t *testing.T) {
	models := &fakeModels{}
	g := newGenerator(models, "gemini-pro", 0, nil)

	_, err := g.Generate(context.Background(), ai.Request{Prompt: "  "})
	if err == nil || !isPermanent(err) {
		t.Fatalf("expected permanent error, got %v", err)
	}
	if len(models.calls) != 0 {
		t.Fatalf("expected no calls, got %d", len(models.calls))
	}
}

// isPermanent reports whether retry.Do would stop on err after one attempt.
func isPermanent(err error) bool {
	calls := 0
	_, _ = retry.Do(context.Background(), retry.New(2, 1, nil), func(context.Context) (struct{}, error) {
		calls++
		if calls > 1 {
			return struct{}{}, nil
		}
		return struct{}{}, err
	})
	return calls == 1
}
