package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"operia/internal/cache"
	"operia/internal/store"
)

// MemoryContext renders stored memory items into the recent-context block
// that gets interpolated into prompts, one line per item, oldest first.
// An empty item list renders as "" so the prompt builder drops the block.
func MemoryContext(items []store.MemoryItem) string {
	if len(items) == 0 {
		return ""
	}
	lines := make([]string, 0, len(items))
	for _, item := range items {
		lines = append(lines, fmt.Sprintf("- [%s] %s", item.Type, memoryLine(item)))
	}
	return strings.Join(lines, "\n")
}

// memoryLine prefers the readable payload fields and falls back to compact
// JSON for free-form payloads.
func memoryLine(item store.MemoryItem) string {
	for _, key := range []string{"summary", "text", "title"} {
		if v, ok := item.Payload[key].(string); ok && v != "" {
			return v
		}
	}
	data, _ := json.Marshal(item.Payload)
	return string(data)
}

// RecentContext assembles the recent-context block for a user, consulting
// the cache before the store. Failures degrade to an empty block; context
// is an enrichment, never a precondition.
func RecentContext(ctx context.Context, st store.Store, ch cache.Cache, userID string, ttl time.Duration, log *slog.Logger) string {
	if userID == "" {
		userID = defaultUserID
	}

	if ch != nil {
		if mc, err := ch.GetMemoryContext(ctx, userID); err == nil && mc != nil {
			return mc.Context
		} else if err != nil {
			log.Warn("context cache read failed", "err", err)
		}
	}

	if st == nil {
		return ""
	}
	items, err := st.GetMemoryItems(ctx, userID, store.MemoryFilter{})
	if err != nil {
		log.Warn("failed to load memory items", "err", err)
		return ""
	}
	block := MemoryContext(items)

	if ch != nil {
		mc := &cache.MemoryContext{Context: block, ItemCount: len(items), AssembledAt: time.Now().UTC()}
		if err := ch.SetMemoryContext(ctx, userID, mc, ttl); err != nil {
			log.Warn("failed to cache context", "err", err)
		}
	}
	return block
}

// RememberExtraction stores a context memory item describing a finished
// extraction so later runs see it as recent context.
func RememberExtraction(ctx context.Context, st store.Store, ch cache.Cache, result ExtractionResult, userID string, window time.Duration, log *slog.Logger) {
	if st == nil || !result.Success || result.BatchID == nil {
		return
	}
	if userID == "" {
		userID = defaultUserID
	}

	summary := fmt.Sprintf("Extracted %d proposal(s) from %s", result.ProposalsCount, result.Source)
	if batch, err := st.GetProposalBatch(ctx, *result.BatchID); err == nil {
		titles := make([]string, 0, len(batch.Proposals))
		for _, p := range batch.Proposals {
			titles = append(titles, p.Title)
		}
		if len(titles) > 0 {
			summary += ": " + strings.Join(titles, "; ")
		}
	}
	item := store.MemoryItem{
		UserID: userID,
		Type:   store.MemoryContext,
		Payload: map[string]any{
			"summary":  summary,
			"batch_id": result.BatchID.String(),
			"source":   result.Source,
		},
	}
	if window > 0 {
		item.ExpiresAt = time.Now().UTC().Add(window)
	}
	if _, err := st.SaveMemoryItem(ctx, item); err != nil {
		log.Warn("failed to save context memory item", "err", err)
		return
	}
	if ch != nil {
		if err := ch.InvalidateUser(ctx, userID); err != nil {
			log.Warn("failed to invalidate context cache", "err", err)
		}
	}
}
