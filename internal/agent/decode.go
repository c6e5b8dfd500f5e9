package agent

import (
	"encoding/json"
	"fmt"

	"operia/internal/store"
)

type proposalPayload struct {
	ID             string   `json:"id"`
	Type           string   `json:"type"`
	Title          string   `json:"title"`
	Description    string   `json:"description"`
	Evidence       []string `json:"evidence"`
	Rationale      string   `json:"rationale"`
	WhatWillHappen string   `json:"what_will_happen"`
	Owner          string   `json:"owner"`
	Deadline       string   `json:"deadline"`
	Priority       string   `json:"priority"`
}

type proposalsPayload struct {
	Proposals []proposalPayload `json:"proposals"`
}

type summaryPayload struct {
	SummaryText       string   `json:"summary_text"`
	Highlights        []string `json:"highlights"`
	PendingItems      []string `json:"pending_items"`
	UpcomingDeadlines []string `json:"upcoming_deadlines"`
	TomorrowFocus     []string `json:"tomorrow_focus"`
}

// decodeProposals turns a raw model reply into typed proposals, preserving
// array order. One unrecognized type or priority rejects the whole reply;
// partial batches never reach review.
func decodeProposals(raw string) ([]store.Proposal, error) {
	var payload proposalsPayload
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return nil, err
	}

	proposals := make([]store.Proposal, 0, len(payload.Proposals))
	for i, p := range payload.Proposals {
		typeValue := p.Type
		if typeValue == "" {
			typeValue = string(store.ProposalCreateTask)
		}
		proposalType, err := store.ParseProposalType(typeValue)
		if err != nil {
			return nil, fmt.Errorf("proposal %d: %w", i, err)
		}

		priorityValue := p.Priority
		if priorityValue == "" {
			priorityValue = string(store.PriorityMedium)
		}
		priority, err := store.ParseTaskPriority(priorityValue)
		if err != nil {
			return nil, fmt.Errorf("proposal %d: %w", i, err)
		}

		disclosure := p.WhatWillHappen
		if disclosure == "" {
			disclosure = store.DefaultDisclosure
		}
		evidence := p.Evidence
		if evidence == nil {
			evidence = []string{}
		}

		proposals = append(proposals, store.Proposal{
			ID:             p.ID,
			Type:           proposalType,
			Title:          p.Title,
			Description:    p.Description,
			Evidence:       evidence,
			Rationale:      p.Rationale,
			WhatWillHappen: disclosure,
			Owner:          p.Owner,
			Deadline:       p.Deadline,
			Priority:       priority,
		})
	}
	return proposals, nil
}

// decodeSummary parses the summary reply; missing fields stay zero-valued
// and absent lists normalize to empty.
func decodeSummary(raw string) (summaryPayload, error) {
	var payload summaryPayload
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return summaryPayload{}, err
	}
	if payload.Highlights == nil {
		payload.Highlights = []string{}
	}
	if payload.PendingItems == nil {
		payload.PendingItems = []string{}
	}
	if payload.UpcomingDeadlines == nil {
		payload.UpcomingDeadlines = []string{}
	}
	if payload.TomorrowFocus == nil {
		payload.TomorrowFocus = []string{}
	}
	return payload, nil
}
