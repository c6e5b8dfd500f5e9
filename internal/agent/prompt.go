package agent

import (
	"fmt"
	"strings"

	"operia/internal/store"
)

// Skill keys toggle what the extraction prompt asks the model to look for.
const (
	SkillExtractTasks     = "extract_tasks"
	SkillSummarize        = "summarize"
	SkillDraftFollowups   = "draft_followups"
	SkillSuggestReminders = "suggest_reminders"
	SkillDetectRisks      = "detect_risks"
)

// systemPrompt pins the copilot to propose-only behavior: approved proposals
// go to the task list, nothing is ever executed.
const systemPrompt = `You are Operia, an AI Operations Copilot. Your role is to analyze various work signals (Notion pages, Slack messages, GitHub issues, meeting transcripts) to help users stay organized.

CRITICAL RULES:
1. You NEVER execute actions autonomously - you only PROPOSE actions
2. Every proposal must include evidence (direct quotes from the source)
3. Every proposal must explain WHY it was suggested
4. Every proposal must clearly state WHAT WILL HAPPEN if approved (always "saved to task list" - no automation)

You extract:
- Decisions made in meetings or discussions
- Action items and tasks
- Owners and deadlines (if mentioned)
- Follow-up requirements
- Potential risks or blockers

Be concise, accurate, and always cite your sources with exact quotes.`

const extractionPromptTemplate = `Analyze the following content and generate action proposals.

SOURCE TYPE: %s
SOURCE: %s

ENABLED SKILLS:
%s

%s

CONTENT TO ANALYZE:
---
%s
---

Generate a JSON response with the following structure:
{
  "proposals": [
    {
      "id": "unique-id-1",
      "type": "create_task" | "draft_followup" | "reminder" | "summary" | "risk_alert",
      "title": "Brief title",
      "description": "Detailed description of the action",
      "evidence": ["Exact quote from content supporting this"],
      "rationale": "Why this action is being proposed",
      "what_will_happen": "If approved, this will be saved to your task list for tracking",
      "owner": "Person responsible (if mentioned)",
      "deadline": "Deadline (if mentioned, in ISO format)",
      "priority": "high" | "medium" | "low"
    }
  ]
}

Return ONLY valid JSON. Generate proposals only for items clearly mentioned or implied in the content.`

const summaryPromptTemplate = `Generate a daily summary for %s.

APPROVED ACTIONS TODAY:
%s

RECENT CONTEXT:
%s

Generate a concise, professional summary that:
1. Highlights key accomplishments
2. Lists pending items
3. Notes any upcoming deadlines
4. Suggests focus areas for tomorrow

Return a JSON response:
{
  "summary_text": "The narrative summary in 2-3 paragraphs",
  "highlights": ["Key point 1", "Key point 2"],
  "pending_items": ["Pending item 1", "Pending item 2"],
  "upcoming_deadlines": ["Deadline info 1"],
  "tomorrow_focus": ["Focus area 1"]
}

Return ONLY valid JSON.`

const (
	noActionsPlaceholder = "(No actions approved today)"
	noContextPlaceholder = "(No recent context)"
)

// skillCatalog fixes the rendering order so equal skill sets always produce
// byte-identical prompts.
var skillCatalog = []struct {
	key  string
	desc string
}{
	{SkillExtractTasks, "- Extract all actionable tasks with owners and deadlines if mentioned"},
	{SkillSummarize, "- Create a brief summary of key decisions and outcomes"},
	{SkillDraftFollowups, "- Draft follow-up messages for any items that need communication"},
	{SkillSuggestReminders, "- Suggest reminders for time-sensitive items"},
	{SkillDetectRisks, "- Identify any blockers, risks, or concerns mentioned"},
}

// DefaultSkills returns the full skill set, all enabled.
func DefaultSkills() map[string]bool {
	skills := make(map[string]bool, len(skillCatalog))
	for _, s := range skillCatalog {
		skills[s.key] = true
	}
	return skills
}

// SkillList renders the enabled skills as prompt bullet lines in catalog
// order. Unknown keys are ignored; an all-disabled set renders empty.
func SkillList(skills map[string]bool) string {
	var lines []string
	for _, s := range skillCatalog {
		if skills[s.key] {
			lines = append(lines, s.desc)
		}
	}
	return strings.Join(lines, "\n")
}

// BuildExtractionPrompt assembles the user prompt for one extraction run.
// The recent-context block is omitted entirely when there is no context.
func BuildExtractionPrompt(sourceType store.TaskSource, sourceName string, skills map[string]bool, memoryContext, content string) string {
	contextBlock := ""
	if memoryContext != "" {
		contextBlock = "RECENT CONTEXT:\n" + memoryContext + "\n"
	}
	return fmt.Sprintf(extractionPromptTemplate,
		sourceType, sourceName, SkillList(skills), contextBlock, content)
}

// BuildSummaryPrompt assembles the user prompt for one daily summary run.
// Empty action lists and empty context render as fixed placeholders.
func BuildSummaryPrompt(date string, approved []store.Task, memoryContext string) string {
	actionsText := noActionsPlaceholder
	if len(approved) > 0 {
		lines := make([]string, len(approved))
		for i, task := range approved {
			lines[i] = fmt.Sprintf("%d. [%s] %s: %s", i+1, task.SourceType, task.Title, task.Description)
		}
		actionsText = strings.Join(lines, "\n")
	}

	contextText := memoryContext
	if contextText == "" {
		contextText = noContextPlaceholder
	}
	return fmt.Sprintf(summaryPromptTemplate, date, actionsText, contextText)
}
