package integration

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockNotionClient is a mock implementation of NotionClient using testify/mock.
type MockNotionClient struct {
	mock.Mock
}

func (m *MockNotionClient) GetPage(ctx context.Context, pageID string) (NotionPage, error) {
	args := m.Called(ctx, pageID)
	return args.Get(0).(NotionPage), args.Error(1)
}

func (m *MockNotionClient) SearchPages(ctx context.Context, query string) ([]NotionPage, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]NotionPage), args.Error(1)
}

// MockSlackClient is a mock implementation of SlackClient using testify/mock.
type MockSlackClient struct {
	mock.Mock
}

func (m *MockSlackClient) ChannelMessages(ctx context.Context, channelID string, limit int) ([]SlackMessage, error) {
	args := m.Called(ctx, channelID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]SlackMessage), args.Error(1)
}

// MockGitHubClient is a mock implementation of GitHubClient using testify/mock.
type MockGitHubClient struct {
	mock.Mock
}

func (m *MockGitHubClient) RepoIssues(ctx context.Context, repo, state string, limit int) ([]GitHubIssue, error) {
	args := m.Called(ctx, repo, state, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]GitHubIssue), args.Error(1)
}
