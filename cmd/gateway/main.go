package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/ledongthuc/pdf"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"operia/internal/agent"
	"operia/internal/app"
	"operia/internal/httputil"
	"operia/internal/integration"
	"operia/internal/queue"
	"operia/internal/store"
)

type extractRequest struct {
	Content       string          `json:"content" validate:"required,min=1"`
	SourceType    string          `json:"source_type" validate:"omitempty,oneof=meeting_transcript slack_message notion_page github_issue manual"`
	SourceID      string          `json:"source_id"`
	UserID        string          `json:"user_id"`
	EnabledSkills map[string]bool `json:"enabled_skills"`
	MemoryContext string          `json:"memory_context"`
}

type extractTaskPayload struct {
	Content       string          `json:"content"`
	SourceType    string          `json:"source_type"`
	SourceID      string          `json:"source_id"`
	UserID        string          `json:"user_id"`
	EnabledSkills map[string]bool `json:"enabled_skills"`
}

func main() {
	deps, err := app.Build("gateway")
	if err != nil {
		slog.Default().Error("failed to build dependencies", "err", err)
		os.Exit(1)
	}
	ag := agent.New(deps.LLM, deps.Store, deps.Log)

	r := httputil.NewRouter(deps.Log)

	r.Post("/api/extract", extractHandler(deps, ag))
	r.Post("/api/extract/async", asyncExtractHandler(deps))
	r.Post("/api/transcripts/upload", uploadHandler(deps, ag))
	r.Post("/api/integrations/{provider}/extract", integrationExtractHandler(deps, ag))
	r.Post("/api/summaries/generate", generateSummaryHandler(deps, ag))
	r.Get("/api/users/{userID}/summaries/{date}", getSummaryHandler(deps))
	r.Get("/api/proposal-batches", listBatchesHandler(deps))
	r.Get("/api/proposal-batches/{id}", getBatchHandler(deps))
	r.Post("/api/proposal-batches/{batchID}/proposals/{proposalID}/decision", decisionHandler(deps))
	r.Get("/api/tasks", listTasksHandler(deps))
	r.Post("/api/memory", saveMemoryHandler(deps))
	r.Post("/api/memory/cleanup", cleanupMemoryHandler(deps))
	r.Get("/healthz", httputil.HealthHandler(deps))
	r.Handle("/metrics", promhttp.Handler())

	addr := fmt.Sprintf(":%d", deps.Config.Port)
	deps.Log.Info("gateway listening", "addr", addr)
	if err := http.ListenAndServe(addr, r); err != nil {
		deps.Log.Error("server failed", "err", err)
	}
}

func extractHandler(deps app.Deps, ag *agent.Agent) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req extractRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httputil.Fail(deps.Log, w, "invalid payload", err, http.StatusBadRequest)
			return
		}
		if err := httputil.Validator.Struct(&req); err != nil {
			httputil.ValidationError(deps.Log, w, err)
			return
		}

		sourceType := store.SourceManual
		if req.SourceType != "" {
			sourceType = store.TaskSource(req.SourceType)
		}

		runExtraction(deps, ag, w, r, agent.ExtractRequest{
			Content:       req.Content,
			SourceType:    sourceType,
			SourceID:      req.SourceID,
			UserID:        req.UserID,
			Skills:        req.EnabledSkills,
			MemoryContext: req.MemoryContext,
		})
	}
}

// runExtraction is the shared tail of every extraction endpoint: fill in
// recent context, run the pipeline, record the run as memory, answer.
func runExtraction(deps app.Deps, ag *agent.Agent, w http.ResponseWriter, r *http.Request, req agent.ExtractRequest) {
	ctx := r.Context()

	if req.MemoryContext == "" {
		ttl := time.Duration(deps.Config.ContextCacheTTLSeconds) * time.Second
		req.MemoryContext = agent.RecentContext(ctx, deps.Store, deps.Cache, req.UserID, ttl, deps.Log)
	}

	result := ag.Extract(ctx, req)
	if !result.Success {
		httputil.WriteJSON(w, http.StatusBadGateway, result)
		return
	}

	window := time.Duration(deps.Config.MemoryWindowDays) * 24 * time.Hour
	agent.RememberExtraction(ctx, deps.Store, deps.Cache, result, req.UserID, window, deps.Log)

	httputil.WriteJSON(w, http.StatusOK, result)
}

func asyncExtractHandler(deps app.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if deps.Queue == nil {
			httputil.Fail(deps.Log, w, "async extraction requires a queue (QUEUE_PROVIDER=nats)", nil, http.StatusServiceUnavailable)
			return
		}

		var req extractRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httputil.Fail(deps.Log, w, "invalid payload", err, http.StatusBadRequest)
			return
		}
		if err := httputil.Validator.Struct(&req); err != nil {
			httputil.ValidationError(deps.Log, w, err)
			return
		}

		body, err := json.Marshal(extractTaskPayload{
			Content:       req.Content,
			SourceType:    req.SourceType,
			SourceID:      req.SourceID,
			UserID:        req.UserID,
			EnabledSkills: req.EnabledSkills,
		})
		if err != nil {
			httputil.Fail(deps.Log, w, "marshal payload failed", err, http.StatusInternalServerError)
			return
		}

		task := queue.Task{ID: uuid.New(), Type: queue.TaskTypeExtract, Payload: body}
		if err := queue.EnqueueWithRetry(r.Context(), deps.Queue, task, 3, 200*time.Millisecond); err != nil {
			httputil.Fail(deps.Log, w, "failed to enqueue extraction; please retry", err, http.StatusInternalServerError)
			return
		}

		httputil.WriteJSON(w, http.StatusAccepted, map[string]any{
			"task_id": task.ID.String(),
			"status":  "queued",
		})
	}
}

func uploadHandler(deps app.Deps, ag *agent.Agent) http.HandlerFunc {
	maxFileSize := deps.Config.MaxUploadSize

	return func(w http.ResponseWriter, r *http.Request) {
		// Validate file size before parsing
		if r.ContentLength > maxFileSize {
			httputil.Fail(deps.Log, w, fmt.Sprintf("file too large (max %d bytes)", maxFileSize), nil, http.StatusBadRequest)
			return
		}

		file, header, err := r.FormFile("file")
		if err != nil {
			httputil.Fail(deps.Log, w, "file is required", err, http.StatusBadRequest)
			return
		}
		defer file.Close()

		if header.Size > maxFileSize {
			httputil.Fail(deps.Log, w, fmt.Sprintf("file too large (max %d bytes)", maxFileSize), nil, http.StatusBadRequest)
			return
		}

		contentType := header.Header.Get("Content-Type")

		// If Content-Type is missing, detect from filename
		if contentType == "" {
			ext := strings.ToLower(filepath.Ext(header.Filename))
			switch ext {
			case ".txt":
				contentType = "text/plain"
			case ".pdf":
				contentType = "application/pdf"
			default:
				httputil.Fail(deps.Log, w, "unsupported file type (only PDF and TXT allowed)", nil, http.StatusBadRequest)
				return
			}
		}

		allowedTypes := map[string]bool{
			"text/plain":      true,
			"application/pdf": true,
		}
		if !allowedTypes[contentType] {
			httputil.Fail(deps.Log, w, "unsupported file type (only PDF and TXT allowed)", nil, http.StatusBadRequest)
			return
		}

		content, err := io.ReadAll(file)
		if err != nil {
			httputil.Fail(deps.Log, w, "failed to read file", err, http.StatusInternalServerError)
			return
		}
		text := extractText(header.Filename, content, deps)
		if strings.TrimSpace(text) == "" {
			httputil.Fail(deps.Log, w, "file contains no extractable text", nil, http.StatusBadRequest)
			return
		}

		runExtraction(deps, ag, w, r, agent.ExtractRequest{
			Content:    text,
			SourceType: store.SourceMeetingTranscript,
			SourceID:   header.Filename,
			UserID:     r.FormValue("user_id"),
		})
	}
}

type integrationRequest struct {
	UserID    string `json:"user_id"`
	PageID    string `json:"page_id"`
	ChannelID string `json:"channel_id"`
	Repo      string `json:"repo"`
	Limit     int    `json:"limit" validate:"omitempty,min=1,max=100"`
}

func integrationExtractHandler(deps app.Deps, ag *agent.Agent) http.HandlerFunc {
	const defaultFetchLimit = 50

	return func(w http.ResponseWriter, r *http.Request) {
		provider := chi.URLParam(r, "provider")

		var req integrationRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			httputil.Fail(deps.Log, w, "invalid payload", err, http.StatusBadRequest)
			return
		}
		if err := httputil.Validator.Struct(&req); err != nil {
			httputil.ValidationError(deps.Log, w, err)
			return
		}
		if req.Limit == 0 {
			req.Limit = defaultFetchLimit
		}

		ctx := r.Context()
		var (
			content    string
			sourceType store.TaskSource
			sourceID   string
		)

		switch provider {
		case "notion":
			page, err := deps.Notion.GetPage(ctx, req.PageID)
			if err != nil {
				httputil.Fail(deps.Log, w, "notion fetch failed", err, integrationStatus(err))
				return
			}
			content = integration.PageContent(page)
			sourceType = store.SourceNotionPage
			sourceID = req.PageID
		case "slack":
			messages, err := deps.Slack.ChannelMessages(ctx, req.ChannelID, req.Limit)
			if err != nil {
				httputil.Fail(deps.Log, w, "slack fetch failed", err, integrationStatus(err))
				return
			}
			actionable := integration.ActionableMessages(messages)
			if len(actionable) == 0 {
				// Nothing task-like in the channel; no model call needed.
				httputil.WriteJSON(w, http.StatusOK, agent.ExtractionResult{
					Success: true,
					Source:  store.SourceSlackMessage,
				})
				return
			}
			content = integration.ContentFromMessages(actionable)
			sourceType = store.SourceSlackMessage
			sourceID = req.ChannelID
		case "github":
			issues, err := deps.GitHub.RepoIssues(ctx, req.Repo, "open", req.Limit)
			if err != nil {
				httputil.Fail(deps.Log, w, "github fetch failed", err, integrationStatus(err))
				return
			}
			if len(issues) == 0 {
				httputil.WriteJSON(w, http.StatusOK, agent.ExtractionResult{
					Success: true,
					Source:  store.SourceGitHubIssue,
				})
				return
			}
			content = integration.ContentFromIssues(issues)
			sourceType = store.SourceGitHubIssue
			sourceID = req.Repo
		default:
			httputil.Fail(deps.Log, w, "unknown integration: "+provider, nil, http.StatusNotFound)
			return
		}

		runExtraction(deps, ag, w, r, agent.ExtractRequest{
			Content:    content,
			SourceType: sourceType,
			SourceID:   sourceID,
			UserID:     req.UserID,
		})
	}
}

// integrationStatus maps integration sentinel errors to HTTP statuses.
func integrationStatus(err error) int {
	switch {
	case errors.Is(err, integration.ErrNotConfigured):
		return http.StatusServiceUnavailable
	case errors.Is(err, integration.ErrNotImplemented):
		return http.StatusNotImplemented
	default:
		return http.StatusBadGateway
	}
}

// extractText extracts text from uploaded files, with PDF support.
func extractText(filename string, content []byte, deps app.Deps) string {
	if strings.HasSuffix(strings.ToLower(filename), ".pdf") {
		text, err := extractPDF(content)
		if err != nil {
			deps.Log.Warn("pdf extraction failed, using raw bytes", "err", err, "filename", filename)
			return string(content)
		}
		return text
	}
	// Treat other files as plain text
	return string(content)
}

func extractPDF(content []byte) (string, error) {
	reader := bytes.NewReader(content)
	pdfReader, err := pdf.NewReader(reader, int64(len(content)))
	if err != nil {
		return "", err
	}

	var textBuilder strings.Builder
	numPages := pdfReader.NumPage()

	for pageNum := 1; pageNum <= numPages; pageNum++ {
		page := pdfReader.Page(pageNum)
		if page.V.IsNull() || page.V.Key("Contents").Kind() == pdf.Null {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			// Skip pages that fail to extract
			continue
		}
		textBuilder.WriteString(text)
		textBuilder.WriteString("\n")
	}

	return textBuilder.String(), nil
}
