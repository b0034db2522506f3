package googlebooks

import (
	"context"
	"fmt"
	"strings"

	books "google.golang.org/api/books/v1"

	"github.com/rootmarks/rootmarks-server/internal/domain"
	"github.com/rootmarks/rootmarks-server/internal/normalize"
)

// descriptionLimit caps candidate descriptions, in characters.
const descriptionLimit = 200

// Search returns up to MaxResults candidates for query. No matches is an
// empty slice, not an error.
func (c *Client) Search(ctx context.Context, query string) ([]domain.BookCandidate, error) {
	if err := c.wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	c.logger.Debug("searching google books", "query", query, "max_results", c.maxResults)

	resp, err := c.svc.Volumes.List(query).
		MaxResults(int64(c.maxResults)).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("volumes list: %w", err)
	}

	candidates := make([]domain.BookCandidate, 0, len(resp.Items))
	for _, v := range resp.Items {
		if v == nil {
			continue
		}
		candidates = append(candidates, toCandidate(v))
		if len(candidates) == c.maxResults {
			break
		}
	}

	c.logger.Debug("google books results", "query", query, "count", len(candidates))
	return candidates, nil
}

func toCandidate(v *books.Volume) domain.BookCandidate {
	candidate := domain.BookCandidate{
		ID:     v.Id,
		Title:  domain.UnknownTitle,
		Author: domain.UnknownAuthor,
	}

	info := v.VolumeInfo
	if info == nil {
		return candidate
	}

	if title := normalize.Text(info.Title); title != "" {
		candidate.Title = title
	}

	authors := make([]string, 0, len(info.Authors))
	for _, a := range info.Authors {
		if a = normalize.Text(a); a != "" {
			authors = append(authors, a)
		}
	}
	if len(authors) > 0 {
		candidate.Author = strings.Join(authors, ", ")
	}

	if info.PageCount > 0 {
		pages := int(info.PageCount)
		candidate.PageCount = &pages
	}

	if info.ImageLinks != nil {
		thumb := info.ImageLinks.Thumbnail
		if thumb == "" {
			thumb = info.ImageLinks.SmallThumbnail
		}
		candidate.CoverURL = normalize.HTTPS(thumb)
	}

	candidate.Description = normalize.Summary(info.Description, descriptionLimit)
	candidate.PublishedDate = info.PublishedDate
	return candidate
}
