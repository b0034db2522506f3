// Package catalog loads badge definitions from YAML and keeps the store in
// sync with them.
package catalog

import (
	"bytes"
	"context"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/rootmarks/rootmarks-server/internal/domain"
	"github.com/rootmarks/rootmarks-server/internal/sse"
)

//go:embed default_badges.yaml
var defaultCatalog []byte

type catalogFile struct {
	Badges []*domain.Badge `yaml:"badges"`
}

// Parse decodes and validates a catalog document. Unknown fields, invalid
// definitions and duplicate ids are errors. An explicit "badges: []" is a
// valid empty catalog; a blank document is rejected because editors leave
// one behind mid-save. Position is assigned from document order.
func Parse(data []byte) ([]*domain.Badge, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var doc catalogFile
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("badge catalog is empty")
		}
		return nil, fmt.Errorf("decode badge catalog: %w", err)
	}

	if doc.Badges == nil {
		return nil, errors.New("badge catalog has no badges list")
	}

	seen := make(map[string]struct{}, len(doc.Badges))
	for i, b := range doc.Badges {
		if b == nil {
			return nil, fmt.Errorf("badge %d is empty", i)
		}
		if err := b.Validate(); err != nil {
			return nil, err
		}
		if _, dup := seen[b.ID]; dup {
			return nil, fmt.Errorf("duplicate badge id %q", b.ID)
		}
		seen[b.ID] = struct{}{}
		if b.Difficulty == "" {
			b.Difficulty = domain.DifficultyNormal
		}
		b.Position = i
	}

	return doc.Badges, nil
}

// Default returns the built-in catalog.
func Default() []*domain.Badge {
	badges, err := Parse(defaultCatalog)
	if err != nil {
		panic(fmt.Sprintf("built-in badge catalog is invalid: %v", err))
	}
	return badges
}

// Load reads the catalog at path, or the built-in one when path is empty.
func Load(path string) ([]*domain.Badge, error) {
	if path == "" {
		return Default(), nil
	}

	//#nosec G304 -- operator-configured catalog path
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read badge catalog: %w", err)
	}

	badges, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return badges, nil
}

// Replacer persists badge definitions as the whole active catalog and
// reports how many stored badges dropped out of it.
type Replacer interface {
	ReplaceBadges(ctx context.Context, badges []*domain.Badge) (int, error)
}

// Syncer writes the configured catalog into the store.
type Syncer struct {
	store   Replacer
	path    string
	emitter sse.Emitter
	logger  *slog.Logger
}

// NewSyncer creates a Syncer for path (empty means built-in). emitter may
// be nil.
func NewSyncer(store Replacer, path string, emitter sse.Emitter, logger *slog.Logger) *Syncer {
	return &Syncer{
		store:   store,
		path:    path,
		emitter: emitter,
		logger:  logger,
	}
}

// Path returns the override file path, or "" for the built-in catalog.
func (s *Syncer) Path() string {
	return s.path
}

// Sync loads the catalog and replaces the stored one with it. Badges no
// longer listed are retired. A catalog that fails to load leaves the stored
// definitions untouched.
func (s *Syncer) Sync(ctx context.Context) (int, error) {
	badges, err := Load(s.path)
	if err != nil {
		return 0, err
	}

	retired, err := s.store.ReplaceBadges(ctx, badges)
	if err != nil {
		return 0, fmt.Errorf("store badge catalog: %w", err)
	}

	source := s.path
	if source == "" {
		source = "built-in"
	}
	s.logger.Info("badge catalog synced",
		slog.String("source", source),
		slog.Int("badges", len(badges)),
		slog.Int("retired", retired))
	if len(badges) == 0 {
		s.logger.Warn("badge catalog is empty, no badges can be earned", slog.String("source", source))
	}

	if s.emitter != nil {
		s.emitter.Emit(sse.NewCatalogUpdatedEvent(len(badges)))
	}

	return len(badges), nil
}
