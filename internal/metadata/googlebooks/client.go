// Package googlebooks looks up book metadata through the Google Books API.
package googlebooks

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/time/rate"
	books "google.golang.org/api/books/v1"
	"google.golang.org/api/option"
)

// DefaultMaxResults bounds how many volumes a search returns.
const DefaultMaxResults = 5

// Config configures a Client.
type Config struct {
	// APIKey is optional; anonymous requests are allowed at a lower quota.
	APIKey string
	// Endpoint overrides the API base URL.
	Endpoint   string
	HTTPClient *http.Client
	MaxResults int
	Timeout    time.Duration
}

// Client searches Google Books volumes.
type Client struct {
	svc         *books.Service
	rateLimiter *rate.Limiter
	logger      *slog.Logger
	maxResults  int
	timeout     time.Duration
}

// NewClient creates a Google Books client.
// Rate limited to one request per second with a burst of 5.
func NewClient(ctx context.Context, cfg Config, logger *slog.Logger) (*Client, error) {
	var opts []option.ClientOption
	switch {
	case cfg.HTTPClient != nil:
		opts = append(opts, option.WithHTTPClient(cfg.HTTPClient))
	case cfg.APIKey != "":
		opts = append(opts, option.WithAPIKey(cfg.APIKey))
	default:
		opts = append(opts, option.WithoutAuthentication())
	}
	if cfg.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(cfg.Endpoint))
	}

	svc, err := books.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create books service: %w", err)
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = DefaultMaxResults
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &Client{
		svc:         svc,
		rateLimiter: rate.NewLimiter(rate.Every(time.Second), 5),
		logger:      logger,
		maxResults:  maxResults,
		timeout:     timeout,
	}, nil
}

// wait blocks until the rate limiter allows a request.
func (c *Client) wait(ctx context.Context) error {
	return c.rateLimiter.Wait(ctx)
}
