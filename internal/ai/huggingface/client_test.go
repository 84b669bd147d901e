package huggingface

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTestClassifier(t *testing.T, handler http.HandlerFunc) *Classifier {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := NewClassifier(srv.URL+"/models/cardiffnlp/test", "hf-token", 0, nil)
	if err != nil {
		t.Fatalf("NewClassifier: %v", err)
	}
	return c
}

func TestClassifySendsBatchWithToken(t *testing.T) {
	var gotAuth string
	var gotReq classifyRequest

	c := newTestClassifier(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[[{"label":"positive","score":0.9}]]`))
	})

	body, err := c.Classify(context.Background(), []string{"I led the migration."})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(body) != `[[{"label":"positive","score":0.9}]]` {
		t.Fatalf("unexpected body: %s", body)
	}
	if gotAuth != "Bearer hf-token" {
		t.Fatalf("Authorization header = %q", gotAuth)
	}
	if len(gotReq.Inputs) != 1 || gotReq.Inputs[0] != "I led the migration." {
		t.Fatalf("unexpected inputs: %+v", gotReq.Inputs)
	}
}

func TestClassifyRejectsNonJSON(t *testing.T) {
	c := newTestClassifier(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusGone)
		_, _ = w.Write([]byte("<html>gone</html>"))
	})

	_, err := c.Classify(context.Background(), []string{"hello there"})
	if !errors.Is(err, ErrNotJSON) {
		t.Fatalf("expected ErrNotJSON, got %v", err)
	}
}

func TestClassifyRejectsErrorStatus(t *testing.T) {
	c := newTestClassifier(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"error":"Model is currently loading"}`))
	})

	if _, err := c.Classify(context.Background(), []string{"hello there"}); err == nil {
		t.Fatal("expected error on 503")
	}
}

func TestNewClassifierRequiresToken(t *testing.T) {
	if _, err := NewClassifier(DefaultURL, " ", 0, nil); err == nil {
		t.Fatal("expected error without token")
	}
}

func TestModelName(t *testing.T) {
	if got := modelName(DefaultURL); got != "cardiffnlp/twitter-roberta-base-sentiment-latest" {
		t.Fatalf("unexpected model name: %q", got)
	}
}
