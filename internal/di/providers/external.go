package providers

import (
	"context"

	"github.com/samber/do/v2"

	"github.com/rootmarks/rootmarks-server/internal/analysis"
	"github.com/rootmarks/rootmarks-server/internal/config"
	"github.com/rootmarks/rootmarks-server/internal/logger"
	"github.com/rootmarks/rootmarks-server/internal/metadata/googlebooks"
)

// ProvideGoogleBooksClient provides the book lookup client.
func ProvideGoogleBooksClient(i do.Injector) (*googlebooks.Client, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	client, err := googlebooks.NewClient(context.Background(), googlebooks.Config{
		APIKey:     cfg.Lookup.APIKey,
		Endpoint:   cfg.Lookup.Endpoint,
		MaxResults: cfg.Lookup.MaxResults,
		Timeout:    cfg.Lookup.Timeout,
	}, log.Logger)
	if err != nil {
		return nil, err
	}

	log.Info("Google Books client initialized", "api_key", cfg.Lookup.APIKey != "")

	return client, nil
}

// ProvideAnalyzer provides the plant photo analyzer.
func ProvideAnalyzer(i do.Injector) (*analysis.Analyzer, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	if cfg.Analysis.APIKey == "" {
		log.Warn("No analysis API key configured, plant scans will fail upstream")
	}

	return analysis.New(analysis.Config{
		BaseURL: cfg.Analysis.BaseURL,
		APIKey:  cfg.Analysis.APIKey,
		Model:   cfg.Analysis.Model,
		Timeout: cfg.Analysis.Timeout,
	}, log.Logger), nil
}
