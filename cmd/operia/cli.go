package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/urfave/cli/v2"

	"operia/internal/agent"
	"operia/internal/store"
)

// demoTranscript is the sample sprint-planning meeting used by the demo
// command.
const demoTranscript = `Team Meeting - Sprint Planning
Date: 2026-02-01
Attendees: Alice, Bob, Charlie, Diana

Alice: Let's discuss the priorities for this sprint. We need to finish the
user authentication feature by Friday.

Bob: I can take the backend API work. I'll need to set up the OAuth2 flow
and integrate with our identity provider.

Charlie: I'll handle the frontend components. We need login, logout, and
password reset flows. I should have mockups by Wednesday.

Diana: There's a potential risk here - we haven't finalized the security
review yet. We should block on that before going to production.

Alice: Good point. Charlie, can you also create a task to schedule the
security review with the InfoSec team?

Charlie: Sure, I'll reach out to them today.

Alice: Also, don't forget we have the client demo next Thursday. We need
to prepare a slide deck. Bob, can you own that?

Bob: Yes, I'll start on the slides Monday and share a draft by Wednesday.

Summary of decisions:
1. Sprint goal: Complete user authentication
2. Security review required before production
3. Client demo preparation assigned to Bob`

// newCLIApp creates the CLI application with all commands.
func newCLIApp(ag *agent.Agent, st store.Store) *cli.App {
	app := &cli.App{
		Name:    "operia",
		Usage:   "Turn free text into reviewable task proposals",
		Version: Version,
		Commands: []*cli.Command{
			extractCmd(ag, st),
			summarizeCmd(ag),
			demoCmd(ag, st),
		},
	}
	// Disable default exit error handler to allow proper error return in tests
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

// extractCmd creates the extract command.
func extractCmd(ag *agent.Agent, st store.Store) *cli.Command {
	return &cli.Command{
		Name:      "extract",
		Usage:     "Run the extraction pipeline on a file or stdin",
		ArgsUsage: "[file]",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "source", Aliases: []string{"s"}, Value: "manual", Usage: "Source type: meeting_transcript|slack_message|notion_page|github_issue|manual"},
			&cli.StringFlag{Name: "source-id", Usage: "Source identifier (defaults to the filename)"},
			&cli.StringFlag{Name: "user", Aliases: []string{"u"}, Value: "default", Usage: "User the proposals belong to"},
			&cli.BoolFlag{Name: "json", Usage: "Print the proposal batch as JSON"},
		},
		Action: func(c *cli.Context) error {
			content, sourceID, err := readContent(c)
			if err != nil {
				return cli.Exit(err.Error(), 1)
			}
			sourceType, err := store.ParseTaskSource(c.String("source"))
			if err != nil {
				return cli.Exit(err.Error(), 1)
			}
			if id := c.String("source-id"); id != "" {
				sourceID = id
			}

			result := ag.Extract(c.Context, agent.ExtractRequest{
				Content:    content,
				SourceType: sourceType,
				SourceID:   sourceID,
				UserID:     c.String("user"),
			})
			return printResult(c, st, result)
		},
	}
}

// summarizeCmd creates the summarize command.
func summarizeCmd(ag *agent.Agent) *cli.Command {
	return &cli.Command{
		Name:  "summarize",
		Usage: "Generate the daily summary for a user",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "user", Aliases: []string{"u"}, Value: "default", Usage: "User to summarize"},
			&cli.StringFlag{Name: "date", Aliases: []string{"d"}, Usage: "Day to summarize (YYYY-MM-DD, default today)"},
			&cli.BoolFlag{Name: "json", Usage: "Print the summary as JSON"},
		},
		Action: func(c *cli.Context) error {
			date := c.String("date")
			if date == "" {
				date = time.Now().UTC().Format("2006-01-02")
			} else if _, err := time.Parse("2006-01-02", date); err != nil {
				return cli.Exit(fmt.Sprintf("invalid date %q (want YYYY-MM-DD)", date), 1)
			}

			summary, err := ag.Summarize(c.Context, agent.SummaryRequest{
				UserID: c.String("user"),
				Date:   date,
			})
			if err != nil {
				return cli.Exit("summary failed: "+err.Error(), 1)
			}

			if c.Bool("json") {
				return outputJSON(summary)
			}
			renderSummary(summary)
			return nil
		},
	}
}

// demoCmd creates the demo command.
func demoCmd(ag *agent.Agent, st store.Store) *cli.Command {
	return &cli.Command{
		Name:  "demo",
		Usage: "Run the extraction pipeline on a built-in sprint-planning transcript",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "json", Usage: "Print the proposal batch as JSON"},
		},
		Action: func(c *cli.Context) error {
			result := ag.Extract(c.Context, agent.ExtractRequest{
				Content:    demoTranscript,
				SourceType: store.SourceMeetingTranscript,
				SourceID:   "Sprint Planning Meeting",
				UserID:     "demo-user",
			})
			return printResult(c, st, result)
		},
	}
}

// printResult loads the persisted batch behind a successful run and renders
// it as a table or JSON.
func printResult(c *cli.Context, st store.Store, result agent.ExtractionResult) error {
	if !result.Success {
		return cli.Exit("extraction failed: "+result.Err, 1)
	}

	batch, err := st.GetProposalBatch(c.Context, *result.BatchID)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}

	if c.Bool("json") {
		return outputJSON(batch)
	}
	renderProposals(batch)
	return nil
}

func renderProposals(batch store.ProposalBatch) {
	fmt.Printf("Batch %s from %s: %d proposal(s) awaiting review\n",
		batch.ID, batch.SourceType, len(batch.Proposals))

	tw := table.NewWriter()
	tw.SetOutputMirror(os.Stdout)
	tw.AppendHeader(table.Row{"#", "Type", "Title", "Priority", "Owner", "Deadline"})
	for i, p := range batch.Proposals {
		tw.AppendRow(table.Row{i + 1, p.Type, p.Title, p.Priority, p.Owner, p.Deadline})
	}
	tw.Render()
}

func renderSummary(s *store.DailySummary) {
	fmt.Printf("Daily summary for %s (%s)\n\n%s\n", s.UserID, s.Date, s.SummaryText)
	printList("Highlights", s.Highlights)
	printList("Pending", s.PendingItems)
	printList("Upcoming deadlines", s.UpcomingDeadlines)
	printList("Tomorrow", s.TomorrowFocus)
}

func printList(label string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Printf("\n%s:\n", label)
	for _, item := range items {
		fmt.Println("  -", item)
	}
}

// Helper functions

// readContent returns the text to extract from, either a file argument or
// piped stdin, along with a source identifier for it.
func readContent(c *cli.Context) (string, string, error) {
	if c.NArg() > 0 {
		path := c.Args().First()
		data, err := os.ReadFile(path)
		if err != nil {
			return "", "", err
		}
		return string(data), filepath.Base(path), nil
	}

	if !stdinHasData() {
		return "", "", fmt.Errorf("pass a file argument or pipe content via stdin")
	}
	content, err := readStdin()
	if err != nil {
		return "", "", err
	}
	if content == "" {
		return "", "", fmt.Errorf("no content to extract")
	}
	return content, "stdin", nil
}

// outputJSON marshals result to stdout as JSON.
func outputJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// stdinHasData returns true if stdin has piped data (not a terminal).
func stdinHasData() bool {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) == 0
}

// readStdin reads all content from stdin.
func readStdin() (string, error) {
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}
