package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAnalyzer(t *testing.T, handler http.HandlerFunc) *Analyzer {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return New(Config{BaseURL: srv.URL + "/v1", APIKey: "test-key", Model: "vision-test"},
		slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func completion(content string) openai.ChatCompletionResponse {
	return openai.ChatCompletionResponse{
		ID: "chatcmpl-1",
		Choices: []openai.ChatCompletionChoice{{
			Index:        0,
			Message:      openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: content},
			FinishReason: openai.FinishReasonStop,
		}},
	}
}

func TestAnalyze_SendsImageAndReturnsText(t *testing.T) {
	var got openai.ChatCompletionRequest
	var auth string
	a := newTestAnalyzer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		auth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(completion("Healthy\nWater weekly.")))
	})

	out, err := a.Analyze(context.Background(), []byte{0xff, 0xd8, 0xff})
	require.NoError(t, err)

	assert.Equal(t, "Healthy\nWater weekly.", out)
	assert.Equal(t, "Bearer test-key", auth)
	assert.Equal(t, "vision-test", got.Model)
	require.Len(t, got.Messages, 2)

	parts := got.Messages[1].MultiContent
	require.Len(t, parts, 2)
	assert.Equal(t, openai.ChatMessagePartTypeImageURL, parts[1].Type)
	require.NotNil(t, parts[1].ImageURL)
	assert.Equal(t, "data:image/jpeg;base64,/9j/", parts[1].ImageURL.URL)
}

func TestAnalyze_EmptyContent(t *testing.T) {
	a := newTestAnalyzer(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(completion("   "))
	})

	_, err := a.Analyze(context.Background(), []byte("img"))
	assert.True(t, errors.Is(err, ErrEmptyAnalysis))
}

func TestAnalyze_UpstreamFailure(t *testing.T) {
	a := newTestAnalyzer(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"rate limited","type":"rate_limit"}}`))
	})

	_, err := a.Analyze(context.Background(), []byte("img"))
	require.Error(t, err)

	var apiErr *openai.APIError
	assert.True(t, errors.As(err, &apiErr))
}

func TestDataURL(t *testing.T) {
	assert.Equal(t, "data:image/png;base64,aGk=", DataURL("image/png", []byte("hi")))
}
