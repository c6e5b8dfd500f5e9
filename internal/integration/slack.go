package integration

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
)

// SlackClient reads channel history for the extraction pipeline.
type SlackClient interface {
	ChannelMessages(ctx context.Context, channelID string, limit int) ([]SlackMessage, error)
}

// StubSlackClient checks its configuration and fails loudly until the real
// API wiring ships.
type StubSlackClient struct {
	botToken string
	log      *slog.Logger
}

var _ SlackClient = (*StubSlackClient)(nil)

func NewSlackClient(botToken string, log *slog.Logger) *StubSlackClient {
	return &StubSlackClient{botToken: botToken, log: log}
}

func (c *StubSlackClient) ChannelMessages(ctx context.Context, channelID string, limit int) ([]SlackMessage, error) {
	if c.botToken == "" {
		return nil, fmt.Errorf("slack: %w", ErrNotConfigured)
	}
	c.log.Warn("slack API wiring not available yet", "channel_id", channelID, "limit", limit)
	return nil, fmt.Errorf("slack channel history: %w", ErrNotImplemented)
}

// taskMarkers are the message fragments treated as explicit action items.
var taskMarkers = []string{
	"todo:",
	"action:",
	"task:",
	"[ ]",
	"◻",
	"@here please",
	"@channel please",
}

// taskReactions mark a message as an action item regardless of its text.
var taskReactions = []string{"white_check_mark", "ballot_box_with_check", "todo"}

// ActionableMessages filters channel history down to messages carrying a
// task marker or a task reaction.
func ActionableMessages(messages []SlackMessage) []SlackMessage {
	var actionable []SlackMessage
	for _, msg := range messages {
		text := strings.ToLower(msg.Text)
		marked := false
		for _, marker := range taskMarkers {
			if strings.Contains(text, marker) {
				marked = true
				break
			}
		}
		if !marked {
			for _, reaction := range msg.Reactions {
				if slices.Contains(taskReactions, reaction) {
					marked = true
					break
				}
			}
		}
		if marked {
			actionable = append(actionable, msg)
		}
	}
	return actionable
}

// ContentFromMessages combines channel history into one analysis string.
func ContentFromMessages(messages []SlackMessage) string {
	lines := make([]string, len(messages))
	for i, msg := range messages {
		author := msg.UserName
		if author == "" {
			author = msg.UserID
		}
		lines[i] = fmt.Sprintf("[%s]: %s", author, msg.Text)
	}
	return strings.Join(lines, "\n\n")
}
