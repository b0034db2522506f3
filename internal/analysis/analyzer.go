// Package analysis asks a vision model to assess plant photos.
package analysis

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
)

// ErrEmptyAnalysis is returned when the model answers with no content.
var ErrEmptyAnalysis = errors.New("analysis returned no content")

const systemPrompt = `You are a friendly plant doctor for a reading-garden app.
Look at the photo and assess the plant's health.
Answer in plain text. The first line must be a short health status of at most six words,
for example "Healthy", "Slightly overwatered" or "Needs more light".
After the first line give two to five short care tips, one per line.`

// Config configures an Analyzer.
type Config struct {
	BaseURL    string
	APIKey     string
	Model      string
	Timeout    time.Duration
	HTTPClient *http.Client
}

// Analyzer sends images to an OpenAI-compatible chat completion endpoint.
type Analyzer struct {
	client  *openai.Client
	model   string
	timeout time.Duration
	logger  *slog.Logger
}

// New creates an Analyzer.
func New(cfg Config, logger *slog.Logger) *Analyzer {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}
	if cfg.HTTPClient != nil {
		clientCfg.HTTPClient = cfg.HTTPClient
	}

	model := cfg.Model
	if model == "" {
		model = openai.GPT4oMini
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = time.Minute
	}

	logger.Info("initializing plant analyzer", "model", model)

	return &Analyzer{
		client:  openai.NewClientWithConfig(clientCfg),
		model:   model,
		timeout: timeout,
		logger:  logger,
	}
}

// Analyze returns the model's free-text assessment of a JPEG image.
func (a *Analyzer) Analyze(ctx context.Context, jpeg []byte) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	req := openai.ChatCompletionRequest{
		Model: a.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{Type: openai.ChatMessagePartTypeText, Text: "How is this plant doing?"},
					{
						Type: openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{
							URL:    DataURL("image/jpeg", jpeg),
							Detail: openai.ImageURLDetailAuto,
						},
					},
				},
			},
		},
		MaxCompletionTokens: 400,
	}

	a.logger.Debug("requesting plant analysis", "model", a.model, "image_bytes", len(jpeg))

	resp, err := a.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyAnalysis
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return "", ErrEmptyAnalysis
	}

	a.logger.Debug("plant analysis received", "finish_reason", resp.Choices[0].FinishReason)
	return content, nil
}

// DataURL encodes data as a base64 data URL.
func DataURL(mimeType string, data []byte) string {
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data)
}
