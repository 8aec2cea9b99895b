package mcp

import (
	"context"
	"errors"
	"fmt"

	"github.com/felixgeelhaar/mcp-go"
)

// RegisterPrompts registers prompts for common organizer workflows.
func RegisterPrompts(srv *mcp.Server, deps ToolDependencies) error {
	if srv == nil {
		return errors.New("server is required")
	}

	srv.Prompt("meeting_followup").
		Description("Review a meeting's invitations, chase unpaid visitors and repair the roster.").
		Handler(func(ctx context.Context, args map[string]string) (*mcp.PromptResult, error) {
			meetingID := args["meeting_id"]
			if meetingID == "" {
				meetingID = "<meeting id>"
			}
			return &mcp.PromptResult{
				Description: "Meeting follow-up",
				Messages: []mcp.PromptMessage{
					{
						Role: string(mcp.RoleUser),
						Content: mcp.TextContent{
							Type: "text",
							Text: fmt.Sprintf(`Help me follow up on meeting %s. Please:

1. Load the meeting with meeting.get
2. List pending invitations with invitation.list and status "pending"
3. For pending invitations without a payment link, issue one with invitation.issue_link
4. Run meeting.reconcile_roster and tell me how many visitors were repaired
5. Show the invited view of meeting.roster

Summarize who has paid and who still needs a reminder.`, meetingID),
						},
					},
				},
			}, nil
		})

	srv.Prompt("invitation_report").
		Description("Summarize the acting member's paid invitations over a window.").
		Handler(func(ctx context.Context, args map[string]string) (*mcp.PromptResult, error) {
			window := args["window"]
			if window == "" {
				window = "last3months"
			}
			return &mcp.PromptResult{
				Description: "Invitation report",
				Messages: []mcp.PromptMessage{
					{
						Role: string(mcp.RoleUser),
						Content: mcp.TextContent{
							Type: "text",
							Text: fmt.Sprintf(`Run report.invitations with window %q and summarize it.
Point out the busiest bucket, empty stretches, and how paid invitations compare with distinct paid people.`, window),
						},
					},
				},
			}, nil
		})

	return nil
}
