package ai

import "context"

// Request is a provider independent generation request.
type Request struct {
	// SystemInstruction frames the role of the model.
	SystemInstruction string
	Prompt            string

	Temperature     float32
	TopP            float32
	TopK            float32
	MaxOutputTokens int32

	// JSONOnly asks the provider to answer with bare JSON: no prose, no fences.
	JSONOnly bool
}

// Generator sends a request to a generative language model and returns its text.
type Generator interface {
	Generate(ctx context.Context, req Request) (string, error)
}

// ToneClassifier classifies the sentiment of a batch of texts and returns the
// raw response body of the classification service.
type ToneClassifier interface {
	Classify(ctx context.Context, texts []string) ([]byte, error)
}
