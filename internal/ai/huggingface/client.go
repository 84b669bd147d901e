package huggingface

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/spigell/interview-coach/internal/logger"
	"github.com/spigell/interview-coach/internal/utils"
)

const (
	DefaultURL     = "https://router.huggingface.co/hf-inference/models/cardiffnlp/twitter-roberta-base-sentiment-latest"
	DefaultTimeout = 30 * time.Second

	providerName = "huggingface"
)

// ErrNotJSON is returned when the inference API answers with something other than JSON,
// typically an HTML error page from a moved or retired model URL.
var ErrNotJSON = errors.New("response is not json")

// Classifier calls a Hugging Face text-classification inference endpoint.
type Classifier struct {
	client *resty.Client
	url    string
	logger *zap.Logger
}

type classifyRequest struct {
	Inputs []string `json:"inputs"`
}

// NewClassifier creates a classifier for the model served at url.
func NewClassifier(url, token string, timeout time.Duration, log *zap.Logger) (*Classifier, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, errors.New("hugging face api token is required")
	}
	if url = strings.TrimSpace(url); url == "" {
		url = DefaultURL
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	client := resty.New().
		SetTimeout(timeout).
		SetAuthToken(token).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	return &Classifier{
		client: client,
		url:    url,
		logger: logger.WithCommonFields(log, providerName, modelName(url)),
	}, nil
}

// Classify posts every text in one batch and returns the raw JSON body.
func (c *Classifier) Classify(ctx context.Context, texts []string) ([]byte, error) {
	if len(texts) == 0 {
		return nil, errors.New("no texts to classify")
	}

	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(classifyRequest{Inputs: texts}).
		Post(c.url)
	if err != nil {
		return nil, fmt.Errorf("classify request: %w", err)
	}

	body := resp.Body()
	if !isJSON(resp.Header().Get("Content-Type")) {
		return nil, fmt.Errorf("classify: HTTP %d: %w", resp.StatusCode(), ErrNotJSON)
	}

	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("classify: HTTP %d: %s", resp.StatusCode(), utils.TruncateForLog(string(body), 200))
	}

	c.logger.Debug("tone classification response",
		zap.Int("inputs", len(texts)),
		zap.Int("response_length", len(body)),
	)

	return body, nil
}

func isJSON(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mediaType == "application/json"
}

// modelName extracts "owner/model" from an inference URL for log fields.
func modelName(url string) string {
	const marker = "/models/"
	if idx := strings.Index(url, marker); idx != -1 {
		return url[idx+len(marker):]
	}
	return url
}
