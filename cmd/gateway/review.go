package main

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"operia/internal/agent"
	"operia/internal/app"
	"operia/internal/httputil"
	"operia/internal/store"
)

const (
	defaultUserID = "default"
	dateLayout    = "2006-01-02"
)

type summaryGenerateRequest struct {
	UserID string `json:"user_id"`
	Date   string `json:"date" validate:"omitempty,datetime=2006-01-02"`
}

func generateSummaryHandler(deps app.Deps, ag *agent.Agent) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req summaryGenerateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			httputil.Fail(deps.Log, w, "invalid payload", err, http.StatusBadRequest)
			return
		}
		if err := httputil.Validator.Struct(&req); err != nil {
			httputil.ValidationError(deps.Log, w, err)
			return
		}
		if req.UserID == "" {
			req.UserID = defaultUserID
		}
		if req.Date == "" {
			req.Date = time.Now().UTC().Format(dateLayout)
		}

		ctx := r.Context()
		ttl := time.Duration(deps.Config.ContextCacheTTLSeconds) * time.Second

		summary, err := ag.Summarize(ctx, agent.SummaryRequest{
			UserID:          req.UserID,
			Date:            req.Date,
			ApprovedActions: approvedTasksFor(ctx, deps, req.UserID, req.Date),
			MemoryContext:   agent.RecentContext(ctx, deps.Store, deps.Cache, req.UserID, ttl, deps.Log),
		})
		if err != nil {
			httputil.Fail(deps.Log, w, "summary generation failed", err, http.StatusBadGateway)
			return
		}

		httputil.WriteJSON(w, http.StatusOK, summary)
	}
}

// approvedTasksFor collects the final tasks of approve and edit decisions
// recorded on the given day.
func approvedTasksFor(ctx context.Context, deps app.Deps, userID, date string) []store.Task {
	actions, err := deps.Store.ListApprovedActions(ctx, userID, 200)
	if err != nil {
		deps.Log.Warn("failed to list approved actions", "err", err)
		return nil
	}

	var tasks []store.Task
	for _, action := range actions {
		if action.Decision != store.StatusApproved && action.Decision != store.StatusEdited {
			continue
		}
		if action.CreatedAt.UTC().Format(dateLayout) != date {
			continue
		}
		tasks = append(tasks, action.FinalAction)
	}
	return tasks
}

func getSummaryHandler(deps app.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := chi.URLParam(r, "userID")
		date := chi.URLParam(r, "date")

		summary, err := deps.Store.GetDailySummary(r.Context(), userID, date)
		if errors.Is(err, store.ErrSummaryNotFound) {
			httputil.Fail(deps.Log, w, "summary not found", err, http.StatusNotFound)
			return
		}
		if err != nil {
			httputil.Fail(deps.Log, w, "failed to load summary", err, http.StatusInternalServerError)
			return
		}

		httputil.WriteJSON(w, http.StatusOK, summary)
	}
}

func listBatchesHandler(deps app.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := r.URL.Query().Get("user_id")
		if userID == "" {
			userID = defaultUserID
		}

		var filter store.BatchFilter
		if s := r.URL.Query().Get("status"); s != "" {
			status, err := store.ParseProposalStatus(s)
			if err != nil {
				httputil.Fail(deps.Log, w, "invalid status filter", err, http.StatusBadRequest)
				return
			}
			filter.Status = status
		}
		if l := r.URL.Query().Get("limit"); l != "" {
			n, err := strconv.Atoi(l)
			if err != nil || n < 1 {
				httputil.Fail(deps.Log, w, "invalid limit", err, http.StatusBadRequest)
				return
			}
			filter.Limit = n
		}

		batches, err := deps.Store.ListProposalBatches(r.Context(), userID, filter)
		if err != nil {
			httputil.Fail(deps.Log, w, "failed to list proposal batches", err, http.StatusInternalServerError)
			return
		}

		httputil.WriteJSON(w, http.StatusOK, map[string]any{
			"batches": batches,
			"count":   len(batches),
		})
	}
}

func getBatchHandler(deps app.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			httputil.Fail(deps.Log, w, "invalid batch id", err, http.StatusBadRequest)
			return
		}

		batch, err := deps.Store.GetProposalBatch(r.Context(), id)
		if errors.Is(err, store.ErrBatchNotFound) {
			httputil.Fail(deps.Log, w, "batch not found", err, http.StatusNotFound)
			return
		}
		if err != nil {
			httputil.Fail(deps.Log, w, "failed to load batch", err, http.StatusInternalServerError)
			return
		}

		httputil.WriteJSON(w, http.StatusOK, batch)
	}
}

type decisionRequest struct {
	Decision string     `json:"decision" validate:"required,oneof=approved rejected edited"`
	Notes    string     `json:"notes"`
	Edits    *taskEdits `json:"edits"`
}

type taskEdits struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Owner       string `json:"owner"`
	Deadline    string `json:"deadline"`
	Priority    string `json:"priority" validate:"omitempty,oneof=high medium low"`
}

// decisionHandler is the human review entry point. The pipeline only ever
// proposes; tasks come into existence here, on an approve or edit decision.
func decisionHandler(deps app.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		batchID, err := uuid.Parse(chi.URLParam(r, "batchID"))
		if err != nil {
			httputil.Fail(deps.Log, w, "invalid batch id", err, http.StatusBadRequest)
			return
		}
		proposalID := chi.URLParam(r, "proposalID")

		var req decisionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httputil.Fail(deps.Log, w, "invalid payload", err, http.StatusBadRequest)
			return
		}
		if err := httputil.Validator.Struct(&req); err != nil {
			httputil.ValidationError(deps.Log, w, err)
			return
		}

		ctx := r.Context()
		batch, err := deps.Store.GetProposalBatch(ctx, batchID)
		if errors.Is(err, store.ErrBatchNotFound) {
			httputil.Fail(deps.Log, w, "batch not found", err, http.StatusNotFound)
			return
		}
		if err != nil {
			httputil.Fail(deps.Log, w, "failed to load batch", err, http.StatusInternalServerError)
			return
		}

		var proposal *store.Proposal
		for i := range batch.Proposals {
			if batch.Proposals[i].ID == proposalID {
				proposal = &batch.Proposals[i]
				break
			}
		}
		if proposal == nil {
			httputil.Fail(deps.Log, w, "proposal not found in batch", nil, http.StatusNotFound)
			return
		}

		decision := store.ProposalStatus(req.Decision)
		task := materializeTask(batch, *proposal, req.Edits)

		if decision != store.StatusRejected {
			task, err = deps.Store.SaveTask(ctx, task)
			if err != nil {
				httputil.Fail(deps.Log, w, "failed to save task", err, http.StatusInternalServerError)
				return
			}
		}

		action, err := deps.Store.SaveApprovedAction(ctx, store.ApprovedAction{
			UserID:        batch.UserID,
			BatchID:       batch.ID,
			ProposalID:    proposal.ID,
			Decision:      decision,
			FinalAction:   task,
			DecisionNotes: req.Notes,
		})
		if err != nil {
			httputil.Fail(deps.Log, w, "failed to record decision", err, http.StatusInternalServerError)
			return
		}

		// Batch status is review bookkeeping; the action record above is the
		// source of truth.
		if err := deps.Store.UpdateProposalBatchStatus(ctx, batch.ID, decision); err != nil {
			deps.Log.Warn("failed to update batch status", "batch_id", batch.ID, "err", err)
		}

		resp := map[string]any{
			"action_id":   action.ID,
			"batch_id":    batch.ID,
			"proposal_id": proposal.ID,
			"decision":    decision,
		}
		if decision != store.StatusRejected {
			resp["task"] = task
		}
		httputil.WriteJSON(w, http.StatusOK, resp)
	}
}

// materializeTask turns a proposal into a pending task, applying reviewer
// edits on top of the proposed content.
func materializeTask(batch store.ProposalBatch, p store.Proposal, edits *taskEdits) store.Task {
	task := store.Task{
		Title:       p.Title,
		Description: p.Description,
		Owner:       p.Owner,
		Deadline:    p.Deadline,
		Priority:    p.Priority,
		Status:      store.TaskPending,
		SourceType:  batch.SourceType,
		SourceID:    batch.SourceID,
		Metadata: map[string]any{
			"batch_id":      batch.ID.String(),
			"proposal_id":   p.ID,
			"proposal_type": string(p.Type),
		},
	}

	if edits != nil {
		if edits.Title != "" {
			task.Title = edits.Title
		}
		if edits.Description != "" {
			task.Description = edits.Description
		}
		if edits.Owner != "" {
			task.Owner = edits.Owner
		}
		if edits.Deadline != "" {
			task.Deadline = edits.Deadline
		}
		if edits.Priority != "" {
			task.Priority = store.TaskPriority(edits.Priority)
		}
	}
	return task
}

func listTasksHandler(deps app.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var filter store.TaskFilter
		if s := r.URL.Query().Get("status"); s != "" {
			status, err := store.ParseTaskStatus(s)
			if err != nil {
				httputil.Fail(deps.Log, w, "invalid status filter", err, http.StatusBadRequest)
				return
			}
			filter.Status = status
		}
		if s := r.URL.Query().Get("source"); s != "" {
			source, err := store.ParseTaskSource(s)
			if err != nil {
				httputil.Fail(deps.Log, w, "invalid source filter", err, http.StatusBadRequest)
				return
			}
			filter.Source = source
		}
		if l := r.URL.Query().Get("limit"); l != "" {
			n, err := strconv.Atoi(l)
			if err != nil || n < 1 {
				httputil.Fail(deps.Log, w, "invalid limit", err, http.StatusBadRequest)
				return
			}
			filter.Limit = n
		}

		tasks, err := deps.Store.ListTasks(r.Context(), filter)
		if err != nil {
			httputil.Fail(deps.Log, w, "failed to list tasks", err, http.StatusInternalServerError)
			return
		}

		httputil.WriteJSON(w, http.StatusOK, map[string]any{
			"tasks": tasks,
			"count": len(tasks),
		})
	}
}

type memoryRequest struct {
	UserID  string         `json:"user_id"`
	Type    string         `json:"type" validate:"required,oneof=task decision context reminder"`
	Payload map[string]any `json:"payload" validate:"required"`
	TTLDays int            `json:"ttl_days" validate:"omitempty,min=1,max=365"`
}

func saveMemoryHandler(deps app.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req memoryRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httputil.Fail(deps.Log, w, "invalid payload", err, http.StatusBadRequest)
			return
		}
		if err := httputil.Validator.Struct(&req); err != nil {
			httputil.ValidationError(deps.Log, w, err)
			return
		}
		if req.UserID == "" {
			req.UserID = defaultUserID
		}
		ttlDays := req.TTLDays
		if ttlDays == 0 {
			ttlDays = deps.Config.MemoryWindowDays
		}

		ctx := r.Context()
		item, err := deps.Store.SaveMemoryItem(ctx, store.MemoryItem{
			UserID:    req.UserID,
			Type:      store.MemoryItemType(req.Type),
			Payload:   req.Payload,
			ExpiresAt: time.Now().UTC().Add(time.Duration(ttlDays) * 24 * time.Hour),
		})
		if err != nil {
			httputil.Fail(deps.Log, w, "failed to save memory item", err, http.StatusInternalServerError)
			return
		}

		if deps.Cache != nil {
			if err := deps.Cache.InvalidateUser(ctx, req.UserID); err != nil {
				deps.Log.Warn("failed to invalidate context cache", "err", err)
			}
		}

		httputil.WriteJSON(w, http.StatusCreated, item)
	}
}

func cleanupMemoryHandler(deps app.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		removed, err := deps.Store.CleanupExpiredMemory(r.Context())
		if err != nil {
			httputil.Fail(deps.Log, w, "memory cleanup failed", err, http.StatusInternalServerError)
			return
		}

		httputil.WriteJSON(w, http.StatusOK, map[string]any{
			"removed": removed,
		})
	}
}
