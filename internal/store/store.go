package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// PromptVersion tags every proposal batch with the prompt revision that
// produced it, so reviewers can tell batches from different prompt eras apart.
const PromptVersion = "1.0.0"

// DefaultDisclosure is what happens to an approved proposal when the model
// does not say otherwise. Nothing is ever executed automatically.
const DefaultDisclosure = "Saved to task list"

type TaskPriority string

const (
	PriorityHigh   TaskPriority = "high"
	PriorityMedium TaskPriority = "medium"
	PriorityLow    TaskPriority = "low"
)

type TaskStatus string

const (
	TaskPending    TaskStatus = "pending"
	TaskInProgress TaskStatus = "in_progress"
	TaskCompleted  TaskStatus = "completed"
	TaskCancelled  TaskStatus = "cancelled"
)

type TaskSource string

const (
	SourceMeetingTranscript TaskSource = "meeting_transcript"
	SourceSlackMessage      TaskSource = "slack_message"
	SourceNotionPage        TaskSource = "notion_page"
	SourceGitHubIssue       TaskSource = "github_issue"
	SourceManual            TaskSource = "manual"
)

type ProposalType string

const (
	ProposalCreateTask    ProposalType = "create_task"
	ProposalDraftFollowup ProposalType = "draft_followup"
	ProposalReminder      ProposalType = "reminder"
	ProposalSummary       ProposalType = "summary"
	ProposalRiskAlert     ProposalType = "risk_alert"
)

// ProposalStatus tracks the review lifecycle of a batch. Transitions are
// driven by the review workflow, never by the extraction pipeline.
type ProposalStatus string

const (
	StatusProposed ProposalStatus = "proposed"
	StatusApproved ProposalStatus = "approved"
	StatusRejected ProposalStatus = "rejected"
	StatusEdited   ProposalStatus = "edited"
)

type MemoryItemType string

const (
	MemoryTask     MemoryItemType = "task"
	MemoryDecision MemoryItemType = "decision"
	MemoryContext  MemoryItemType = "context"
	MemoryReminder MemoryItemType = "reminder"
)

var (
	ErrTaskNotFound    = errors.New("task not found")
	ErrBatchNotFound   = errors.New("proposal batch not found")
	ErrSummaryNotFound = errors.New("daily summary not found")
)

func ParseTaskPriority(s string) (TaskPriority, error) {
	switch TaskPriority(s) {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return TaskPriority(s), nil
	}
	return "", fmt.Errorf("unknown priority: %q", s)
}

func ParseTaskStatus(s string) (TaskStatus, error) {
	switch TaskStatus(s) {
	case TaskPending, TaskInProgress, TaskCompleted, TaskCancelled:
		return TaskStatus(s), nil
	}
	return "", fmt.Errorf("unknown task status: %q", s)
}

func ParseTaskSource(s string) (TaskSource, error) {
	switch TaskSource(s) {
	case SourceMeetingTranscript, SourceSlackMessage, SourceNotionPage, SourceGitHubIssue, SourceManual:
		return TaskSource(s), nil
	}
	return "", fmt.Errorf("unknown source type: %q", s)
}

func ParseProposalType(s string) (ProposalType, error) {
	switch ProposalType(s) {
	case ProposalCreateTask, ProposalDraftFollowup, ProposalReminder, ProposalSummary, ProposalRiskAlert:
		return ProposalType(s), nil
	}
	return "", fmt.Errorf("unknown proposal type: %q", s)
}

func ParseProposalStatus(s string) (ProposalStatus, error) {
	switch ProposalStatus(s) {
	case StatusProposed, StatusApproved, StatusRejected, StatusEdited:
		return ProposalStatus(s), nil
	}
	return "", fmt.Errorf("unknown proposal status: %q", s)
}

func ParseMemoryItemType(s string) (MemoryItemType, error) {
	switch MemoryItemType(s) {
	case MemoryTask, MemoryDecision, MemoryContext, MemoryReminder:
		return MemoryItemType(s), nil
	}
	return "", fmt.Errorf("unknown memory item type: %q", s)
}

// Task is a confirmed work item. Tasks exist only after a human approved a
// proposal; the pipeline itself never creates one.
type Task struct {
	ID          uuid.UUID      `json:"id"`
	Title       string         `json:"title"`
	Description string         `json:"description,omitempty"`
	Owner       string         `json:"owner,omitempty"`
	Deadline    string         `json:"deadline,omitempty"`
	Priority    TaskPriority   `json:"priority"`
	Status      TaskStatus     `json:"status"`
	SourceType  TaskSource     `json:"source_type"`
	SourceID    string         `json:"source_id,omitempty"`
	SourceURL   string         `json:"source_url,omitempty"`
	Tags        []string       `json:"tags,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// TaskUpdate is a partial update; nil fields are left untouched.
type TaskUpdate struct {
	Title       *string       `json:"title,omitempty"`
	Description *string       `json:"description,omitempty"`
	Owner       *string       `json:"owner,omitempty"`
	Deadline    *string       `json:"deadline,omitempty"`
	Priority    *TaskPriority `json:"priority,omitempty"`
	Status      *TaskStatus   `json:"status,omitempty"`
	Tags        []string      `json:"tags,omitempty"`
}

// Proposal is a single suggested action produced by the model. It is
// immutable once decoded; review decisions live in ApprovedAction records.
type Proposal struct {
	ID             string       `json:"id"`
	Type           ProposalType `json:"type"`
	Title          string       `json:"title"`
	Description    string       `json:"description"`
	Evidence       []string     `json:"evidence"`
	Rationale      string       `json:"rationale"`
	WhatWillHappen string       `json:"what_will_happen"`
	Owner          string       `json:"owner,omitempty"`
	Deadline       string       `json:"deadline,omitempty"`
	Priority       TaskPriority `json:"priority"`
}

// ProposalBatch groups the proposals of one pipeline run. The pipeline
// constructs it exactly once and never touches it again.
type ProposalBatch struct {
	ID            uuid.UUID       `json:"id"`
	UserID        string          `json:"user_id"`
	SourceType    TaskSource      `json:"source_type"`
	SourceID      string          `json:"source_id"`
	Proposals     []Proposal      `json:"proposals"`
	Status        ProposalStatus  `json:"status"`
	EnabledSkills map[string]bool `json:"enabled_skills"`
	ModelInfo     string          `json:"model_info"`
	PromptVersion string          `json:"prompt_version"`
	CreatedAt     time.Time       `json:"created_at"`
}

// ApprovedAction records a human decision on one proposal, including the
// final (possibly edited) task content that was acted on.
type ApprovedAction struct {
	ID            uuid.UUID      `json:"id"`
	UserID        string         `json:"user_id"`
	BatchID       uuid.UUID      `json:"batch_id"`
	ProposalID    string         `json:"proposal_id"`
	Decision      ProposalStatus `json:"decision"`
	FinalAction   Task           `json:"final_action"`
	DecisionNotes string         `json:"decision_notes,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
}

// MemoryItem is short-lived working context carried between pipeline runs.
type MemoryItem struct {
	ID        uuid.UUID      `json:"id"`
	UserID    string         `json:"user_id"`
	Type      MemoryItemType `json:"type"`
	Payload   map[string]any `json:"payload"`
	ActiveDay string         `json:"active_day"`
	ExpiresAt time.Time      `json:"expires_at"`
	CreatedAt time.Time      `json:"created_at"`
}

// DailySummary is the output of the summary pipeline, one per user per day.
type DailySummary struct {
	ID                uuid.UUID `json:"id"`
	UserID            string    `json:"user_id"`
	Date              string    `json:"date"`
	SummaryText       string    `json:"summary_text"`
	Highlights        []string  `json:"highlights"`
	PendingItems      []string  `json:"pending_items"`
	UpcomingDeadlines []string  `json:"upcoming_deadlines"`
	TomorrowFocus     []string  `json:"tomorrow_focus"`
	CreatedAt         time.Time `json:"created_at"`
}

type TaskFilter struct {
	Status TaskStatus
	Source TaskSource
	Limit  int
}

type BatchFilter struct {
	Status ProposalStatus
	Limit  int
}

type MemoryFilter struct {
	ActiveDay string
	Type      MemoryItemType
}

// Store defines the persistence contract. The pipeline treats it as
// best-effort: a store failure never invalidates an extraction or summary.
type Store interface {
	SaveTask(ctx context.Context, task Task) (Task, error)
	GetTask(ctx context.Context, id uuid.UUID) (Task, error)
	UpdateTask(ctx context.Context, id uuid.UUID, update TaskUpdate) (Task, error)
	DeleteTask(ctx context.Context, id uuid.UUID) error
	ListTasks(ctx context.Context, filter TaskFilter) ([]Task, error)

	SaveProposalBatch(ctx context.Context, batch ProposalBatch) (ProposalBatch, error)
	GetProposalBatch(ctx context.Context, id uuid.UUID) (ProposalBatch, error)
	ListProposalBatches(ctx context.Context, userID string, filter BatchFilter) ([]ProposalBatch, error)
	UpdateProposalBatchStatus(ctx context.Context, id uuid.UUID, status ProposalStatus) error

	SaveApprovedAction(ctx context.Context, action ApprovedAction) (ApprovedAction, error)
	ListApprovedActions(ctx context.Context, userID string, limit int) ([]ApprovedAction, error)

	SaveMemoryItem(ctx context.Context, item MemoryItem) (MemoryItem, error)
	GetMemoryItems(ctx context.Context, userID string, filter MemoryFilter) ([]MemoryItem, error)
	CleanupExpiredMemory(ctx context.Context) (int, error)

	SaveDailySummary(ctx context.Context, summary DailySummary) (DailySummary, error)
	GetDailySummary(ctx context.Context, userID, date string) (DailySummary, error)
}
