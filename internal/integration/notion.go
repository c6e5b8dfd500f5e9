package integration

import (
	"context"
	"fmt"
	"log/slog"
)

// NotionClient reads pages for the extraction pipeline.
type NotionClient interface {
	GetPage(ctx context.Context, pageID string) (NotionPage, error)
	SearchPages(ctx context.Context, query string) ([]NotionPage, error)
}

// StubNotionClient checks its configuration and fails loudly until the real
// API wiring ships.
type StubNotionClient struct {
	apiKey     string
	databaseID string
	log        *slog.Logger
}

var _ NotionClient = (*StubNotionClient)(nil)

func NewNotionClient(apiKey, databaseID string, log *slog.Logger) *StubNotionClient {
	return &StubNotionClient{apiKey: apiKey, databaseID: databaseID, log: log}
}

func (c *StubNotionClient) GetPage(ctx context.Context, pageID string) (NotionPage, error) {
	if c.apiKey == "" {
		return NotionPage{}, fmt.Errorf("notion: %w", ErrNotConfigured)
	}
	c.log.Warn("notion API wiring not available yet", "page_id", pageID)
	return NotionPage{}, fmt.Errorf("notion get page: %w", ErrNotImplemented)
}

func (c *StubNotionClient) SearchPages(ctx context.Context, query string) ([]NotionPage, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("notion: %w", ErrNotConfigured)
	}
	c.log.Warn("notion API wiring not available yet", "query", query)
	return nil, fmt.Errorf("notion search: %w", ErrNotImplemented)
}

// PageContent flattens a fetched page into one analysis string.
func PageContent(page NotionPage) string {
	if page.Title == "" {
		return page.Content
	}
	return page.Title + "\n\n" + page.Content
}
