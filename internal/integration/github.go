package integration

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// GitHubClient reads repository issues for the extraction pipeline.
type GitHubClient interface {
	RepoIssues(ctx context.Context, repo, state string, limit int) ([]GitHubIssue, error)
}

// StubGitHubClient checks its configuration and fails loudly until the real
// API wiring ships.
type StubGitHubClient struct {
	token string
	org   string
	log   *slog.Logger
}

var _ GitHubClient = (*StubGitHubClient)(nil)

func NewGitHubClient(token, org string, log *slog.Logger) *StubGitHubClient {
	return &StubGitHubClient{token: token, org: org, log: log}
}

func (c *StubGitHubClient) RepoIssues(ctx context.Context, repo, state string, limit int) ([]GitHubIssue, error) {
	if c.token == "" {
		return nil, fmt.Errorf("github: %w", ErrNotConfigured)
	}
	c.log.Warn("github API wiring not available yet", "repo", repo, "state", state)
	return nil, fmt.Errorf("github issues: %w", ErrNotImplemented)
}

// ContentFromIssues combines listed issues into one analysis string.
func ContentFromIssues(issues []GitHubIssue) string {
	blocks := make([]string, len(issues))
	for i, issue := range issues {
		blocks[i] = fmt.Sprintf("Issue #%d: %s\n%s", issue.Number, issue.Title, issue.Body)
	}
	return strings.Join(blocks, "\n\n")
}
