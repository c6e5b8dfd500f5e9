package agent

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"operia/internal/llm"
	"operia/internal/metrics"
	"operia/internal/store"
)

const (
	defaultUserID = "default"
	dateLayout    = "2006-01-02"
)

// ExtractRequest is one extraction pipeline invocation. A nil Skills map
// means all skills enabled; MemoryContext is optional.
type ExtractRequest struct {
	Content       string
	SourceType    store.TaskSource
	SourceID      string
	UserID        string
	Skills        map[string]bool
	MemoryContext string
}

// ExtractionResult is the transient outcome of one extraction run. It is
// handed back to the caller and never persisted.
type ExtractionResult struct {
	Success        bool             `json:"success"`
	Source         store.TaskSource `json:"source"`
	BatchID        *uuid.UUID       `json:"proposal_batch_id,omitempty"`
	ProposalsCount int              `json:"proposals_count"`
	Err            string           `json:"error,omitempty"`
}

// SummaryRequest is one daily-summary pipeline invocation.
type SummaryRequest struct {
	UserID          string
	Date            string
	ApprovedActions []store.Task
	MemoryContext   string
}

// Agent runs the extraction and summary pipelines. Both share one
// completion client and one JSON decode step. The store is optional: with
// no store configured, results are returned without being persisted.
type Agent struct {
	llm   llm.Client
	store store.Store
	log   *slog.Logger
}

func New(client llm.Client, st store.Store, log *slog.Logger) *Agent {
	return &Agent{llm: client, store: st, log: log}
}

// Extract analyzes free-text content and returns typed proposals for human
// review. Every failure mode comes back inside the result; Extract never
// panics and never retries the model call.
func (a *Agent) Extract(ctx context.Context, req ExtractRequest) ExtractionResult {
	if req.UserID == "" {
		req.UserID = defaultUserID
	}
	skills := req.Skills
	if skills == nil {
		skills = DefaultSkills()
	}

	prompt := BuildExtractionPrompt(req.SourceType, req.SourceID, skills, req.MemoryContext, req.Content)

	raw, err := a.llm.Complete(ctx, systemPrompt, prompt)
	if err != nil {
		a.log.Error("extraction call failed", "source_type", req.SourceType, "error", err)
		metrics.IncrementExtraction(string(req.SourceType), "failed")
		return ExtractionResult{Source: req.SourceType, Err: err.Error()}
	}

	proposals, err := decodeProposals(raw)
	if err != nil {
		a.log.Error("failed to parse model response", "source_type", req.SourceType, "error", err)
		metrics.IncrementExtraction(string(req.SourceType), "failed")
		return ExtractionResult{Source: req.SourceType, Err: fmt.Sprintf("failed to parse response: %v", err)}
	}

	batch := store.ProposalBatch{
		ID:            uuid.New(),
		UserID:        req.UserID,
		SourceType:    req.SourceType,
		SourceID:      req.SourceID,
		Proposals:     proposals,
		Status:        store.StatusProposed,
		EnabledSkills: skills,
		ModelInfo:     a.llm.ModelInfo(),
		PromptVersion: store.PromptVersion,
		CreatedAt:     time.Now().UTC(),
	}

	if a.store != nil {
		// Persistence is best-effort; a failed save does not fail the run.
		if _, err := a.store.SaveProposalBatch(ctx, batch); err != nil {
			a.log.Warn("failed to persist proposal batch", "batch_id", batch.ID, "error", err)
		}
	}

	counts := make(map[store.ProposalType]int)
	for _, p := range proposals {
		counts[p.Type]++
	}
	for proposalType, n := range counts {
		metrics.IncrementProposals(string(proposalType), n)
	}
	metrics.IncrementExtraction(string(req.SourceType), "success")
	a.log.Info("extracted proposals",
		"source_type", req.SourceType,
		"proposals_count", len(proposals),
		"batch_id", batch.ID,
	)

	batchID := batch.ID
	return ExtractionResult{
		Success:        true,
		Source:         req.SourceType,
		BatchID:        &batchID,
		ProposalsCount: len(proposals),
	}
}

// Summarize generates the daily summary for one user and date. On failure
// it returns a nil summary and the reason; it never panics.
func (a *Agent) Summarize(ctx context.Context, req SummaryRequest) (*store.DailySummary, error) {
	if req.UserID == "" {
		req.UserID = defaultUserID
	}
	date := req.Date
	if date == "" {
		date = time.Now().UTC().Format(dateLayout)
	}

	prompt := BuildSummaryPrompt(date, req.ApprovedActions, req.MemoryContext)

	raw, err := a.llm.Complete(ctx, systemPrompt, prompt)
	if err != nil {
		a.log.Error("summary call failed", "user_id", req.UserID, "date", date, "error", err)
		metrics.IncrementSummary("failed")
		return nil, fmt.Errorf("summary call failed: %w", err)
	}

	payload, err := decodeSummary(raw)
	if err != nil {
		a.log.Error("failed to parse model response", "user_id", req.UserID, "date", date, "error", err)
		metrics.IncrementSummary("failed")
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	summary := store.DailySummary{
		ID:                uuid.New(),
		UserID:            req.UserID,
		Date:              date,
		SummaryText:       payload.SummaryText,
		Highlights:        payload.Highlights,
		PendingItems:      payload.PendingItems,
		UpcomingDeadlines: payload.UpcomingDeadlines,
		TomorrowFocus:     payload.TomorrowFocus,
		CreatedAt:         time.Now().UTC(),
	}

	if a.store != nil {
		// Same best-effort policy as extraction.
		if _, err := a.store.SaveDailySummary(ctx, summary); err != nil {
			a.log.Warn("failed to persist daily summary", "user_id", req.UserID, "date", date, "error", err)
		}
	}

	metrics.IncrementSummary("success")
	a.log.Info("generated daily summary", "user_id", req.UserID, "date", date)
	return &summary, nil
}
