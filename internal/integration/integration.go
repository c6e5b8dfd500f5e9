package integration

import (
	"errors"
	"time"
)

// Sentinel errors separate "credential missing" from "API wiring has not
// shipped yet". Stub clients return one of these explicitly; none of them
// fake an empty result.
var (
	ErrNotConfigured  = errors.New("integration not configured")
	ErrNotImplemented = errors.New("integration not implemented")
)

// NotionPage is a fetched Notion page, flattened for analysis.
type NotionPage struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Content    string    `json:"content"`
	URL        string    `json:"url,omitempty"`
	LastEdited time.Time `json:"last_edited,omitempty"`
}

// SlackMessage is one message from a channel history read.
type SlackMessage struct {
	ID        string    `json:"id"`
	ChannelID string    `json:"channel_id"`
	UserID    string    `json:"user_id"`
	UserName  string    `json:"user_name,omitempty"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp,omitempty"`
	ThreadTS  string    `json:"thread_ts,omitempty"`
	Reactions []string  `json:"reactions,omitempty"`
}

// GitHubIssue is one issue from a repository listing.
type GitHubIssue struct {
	Number    int       `json:"number"`
	Title     string    `json:"title"`
	Body      string    `json:"body,omitempty"`
	State     string    `json:"state"`
	Labels    []string  `json:"labels,omitempty"`
	Assignee  string    `json:"assignee,omitempty"`
	URL       string    `json:"url,omitempty"`
	CreatedAt time.Time `json:"created_at,omitempty"`
	UpdatedAt time.Time `json:"updated_at,omitempty"`
}
