package agent

import (
	"strings"
	"testing"

	"operia/internal/store"
)

func TestDecodeProposalsDefaults(t *testing.T) {
	proposals, err := decodeProposals(`{"proposals":[{}]}`)
	if err != nil {
		t.Fatalf("decodeProposals: %v", err)
	}
	if len(proposals) != 1 {
		t.Fatalf("expected 1 proposal, got %d", len(proposals))
	}

	p := proposals[0]
	if p.ID != "" || p.Title != "" || p.Description != "" || p.Rationale != "" {
		t.Errorf("missing text fields must default to empty, got %+v", p)
	}
	if p.Type != store.ProposalCreateTask {
		t.Errorf("missing type must default to create_task, got %s", p.Type)
	}
	if p.Priority != store.PriorityMedium {
		t.Errorf("missing priority must default to medium, got %s", p.Priority)
	}
	if p.WhatWillHappen != store.DefaultDisclosure {
		t.Errorf("missing disclosure must default to %q, got %q", store.DefaultDisclosure, p.WhatWillHappen)
	}
	if p.Evidence == nil || len(p.Evidence) != 0 {
		t.Errorf("missing evidence must default to an empty list, got %#v", p.Evidence)
	}
}

func TestDecodeProposalsOrderPreserved(t *testing.T) {
	raw := `{"proposals":[
		{"id":"a","type":"create_task"},
		{"id":"b","type":"risk_alert"},
		{"id":"c","type":"reminder"}
	]}`
	proposals, err := decodeProposals(raw)
	if err != nil {
		t.Fatalf("decodeProposals: %v", err)
	}
	if len(proposals) != 3 {
		t.Fatalf("expected 3 proposals, got %d", len(proposals))
	}
	for i, want := range []string{"a", "b", "c"} {
		if proposals[i].ID != want {
			t.Errorf("position %d: expected id %q, got %q", i, want, proposals[i].ID)
		}
	}
}

func TestDecodeProposalsPassthroughFields(t *testing.T) {
	raw := `{"proposals":[{
		"id":"p1",
		"type":"draft_followup",
		"title":"Reply to Bob",
		"description":"Send the follow-up about the migration",
		"evidence":["Bob: can someone get back to me?"],
		"rationale":"An explicit request was left unanswered",
		"what_will_happen":"A draft will be saved for review",
		"owner":"alice",
		"deadline":"whenever Bob is back",
		"priority":"high"
	}]}`
	proposals, err := decodeProposals(raw)
	if err != nil {
		t.Fatalf("decodeProposals: %v", err)
	}

	p := proposals[0]
	if p.Type != store.ProposalDraftFollowup || p.Priority != store.PriorityHigh {
		t.Errorf("enums decoded wrong: %+v", p)
	}
	if p.Owner != "alice" {
		t.Errorf("owner must pass through untouched, got %q", p.Owner)
	}
	// Deadlines are free-form and never validated.
	if p.Deadline != "whenever Bob is back" {
		t.Errorf("deadline must pass through untouched, got %q", p.Deadline)
	}
	if p.WhatWillHappen != "A draft will be saved for review" {
		t.Errorf("explicit disclosure must not be replaced, got %q", p.WhatWillHappen)
	}
	if len(p.Evidence) != 1 || p.Evidence[0] != "Bob: can someone get back to me?" {
		t.Errorf("evidence decoded wrong: %#v", p.Evidence)
	}
}

func TestDecodeProposalsUnknownType(t *testing.T) {
	_, err := decodeProposals(`{"proposals":[{"id":"a"},{"id":"b","type":"launch_missiles"}]}`)
	if err == nil {
		t.Fatal("expected an error for an unknown proposal type")
	}
	if !strings.Contains(err.Error(), "launch_missiles") {
		t.Errorf("error must name the unrecognized value, got %q", err.Error())
	}
}

func TestDecodeProposalsUnknownPriority(t *testing.T) {
	_, err := decodeProposals(`{"proposals":[{"id":"a","priority":"urgent"}]}`)
	if err == nil {
		t.Fatal("expected an error for an unknown priority")
	}
	if !strings.Contains(err.Error(), "urgent") {
		t.Errorf("error must name the unrecognized value, got %q", err.Error())
	}
}

func TestDecodeProposalsInvalidJSON(t *testing.T) {
	if _, err := decodeProposals("not valid json"); err == nil {
		t.Fatal("expected an error for non-JSON input")
	}
}

func TestDecodeProposalsEmptyObject(t *testing.T) {
	proposals, err := decodeProposals(`{}`)
	if err != nil {
		t.Fatalf("decodeProposals: %v", err)
	}
	if len(proposals) != 0 {
		t.Errorf("a reply without proposals decodes to an empty batch, got %d", len(proposals))
	}
}

func TestDecodeSummary(t *testing.T) {
	payload, err := decodeSummary(`{
		"summary_text":"A productive day.",
		"highlights":["Shipped the fix"],
		"pending_items":[],
		"upcoming_deadlines":["Friday release"],
		"tomorrow_focus":["Code review"]
	}`)
	if err != nil {
		t.Fatalf("decodeSummary: %v", err)
	}
	if payload.SummaryText != "A productive day." {
		t.Errorf("unexpected summary text: %q", payload.SummaryText)
	}
	if len(payload.Highlights) != 1 || payload.Highlights[0] != "Shipped the fix" {
		t.Errorf("highlights decoded wrong: %#v", payload.Highlights)
	}
}

func TestDecodeSummaryDefaults(t *testing.T) {
	payload, err := decodeSummary(`{}`)
	if err != nil {
		t.Fatalf("decodeSummary: %v", err)
	}
	if payload.SummaryText != "" {
		t.Errorf("missing text must default to empty, got %q", payload.SummaryText)
	}
	for name, list := range map[string][]string{
		"highlights":         payload.Highlights,
		"pending_items":      payload.PendingItems,
		"upcoming_deadlines": payload.UpcomingDeadlines,
		"tomorrow_focus":     payload.TomorrowFocus,
	} {
		if list == nil || len(list) != 0 {
			t.Errorf("%s must normalize to an empty list, got %#v", name, list)
		}
	}
}

func TestDecodeSummaryInvalidJSON(t *testing.T) {
	if _, err := decodeSummary("plain text, no json here"); err == nil {
		t.Fatal("expected an error for non-JSON input")
	}
}
