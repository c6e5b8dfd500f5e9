package main

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"operia/internal/agent"
	"operia/internal/app"
	"operia/internal/httputil"
	"operia/internal/queue"
	"operia/internal/store"
)

// extractTaskPayload mirrors what the gateway enqueues.
type extractTaskPayload struct {
	Content       string          `json:"content"`
	SourceType    string          `json:"source_type"`
	SourceID      string          `json:"source_id"`
	UserID        string          `json:"user_id"`
	EnabledSkills map[string]bool `json:"enabled_skills"`
}

func main() {
	deps, err := app.Build("worker")
	if err != nil {
		slog.Default().Error("failed to build dependencies", "err", err)
		os.Exit(1)
	}
	if deps.Queue == nil {
		deps.Log.Error("worker requires a queue (set QUEUE_PROVIDER=nats)")
		os.Exit(1)
	}
	deps.Log.Info("extraction worker starting")

	ag := agent.New(deps.LLM, deps.Store, deps.Log)

	g, ctx := errgroup.WithContext(context.Background())

	// Run queue worker
	g.Go(func() error {
		return deps.Queue.Worker(ctx, queue.TaskTypeExtract, func(ctx context.Context, task queue.Task) error {
			var payload extractTaskPayload
			if err := json.Unmarshal(task.Payload, &payload); err != nil {
				return err
			}
			return handleExtract(ctx, deps, ag, payload)
		})
	})

	// Run health check server
	g.Go(func() error {
		return httputil.ServeHealth(deps, "worker")
	})

	// Wait for either to fail
	if err := g.Wait(); err != nil {
		deps.Log.Error("worker service stopped", "err", err)
	}
}

// handleExtract runs one queued extraction end to end. A returned error
// sends the task back through the queue's retry path.
func handleExtract(ctx context.Context, deps app.Deps, ag *agent.Agent, payload extractTaskPayload) error {
	sourceType := store.SourceManual
	if payload.SourceType != "" {
		sourceType = store.TaskSource(payload.SourceType)
	}

	ttl := time.Duration(deps.Config.ContextCacheTTLSeconds) * time.Second
	result := ag.Extract(ctx, agent.ExtractRequest{
		Content:       payload.Content,
		SourceType:    sourceType,
		SourceID:      payload.SourceID,
		UserID:        payload.UserID,
		Skills:        payload.EnabledSkills,
		MemoryContext: agent.RecentContext(ctx, deps.Store, deps.Cache, payload.UserID, ttl, deps.Log),
	})
	if !result.Success {
		return errors.New(result.Err)
	}

	window := time.Duration(deps.Config.MemoryWindowDays) * 24 * time.Hour
	agent.RememberExtraction(ctx, deps.Store, deps.Cache, result, payload.UserID, window, deps.Log)
	return nil
}
