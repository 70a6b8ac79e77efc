package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/abdidvp/slopwatch/internal/application"
	"github.com/abdidvp/slopwatch/internal/domain"
)

// registerTools registers all slopwatch MCP tools on the given server.
func registerTools(s *server.MCPServer, session *application.Session, root string) {
	pathArg := mcplib.WithString("path",
		mcplib.Required(),
		mcplib.Description("Path of the file, absolute or relative to the server's working directory"),
	)
	rootArg := mcplib.WithString("root",
		mcplib.Description("Workspace root (defaults to the server's workspace)"),
	)

	// 1. slopwatch_analyze_file
	s.AddTool(
		mcplib.NewTool("slopwatch_analyze_file",
			mcplib.WithDescription("Analyze one file now and return its verdict, diagnostics and status"),
			pathArg,
		),
		handleAnalyzeFile(session),
	)

	// 2. slopwatch_file_saved
	s.AddTool(
		mcplib.NewTool("slopwatch_file_saved",
			mcplib.WithDescription("Report that a file was saved; schedules an on-save analysis when enabled"),
			pathArg,
		),
		handleTrigger(session, domain.TriggerSave),
	)

	// 3. slopwatch_file_changed
	s.AddTool(
		mcplib.NewTool("slopwatch_file_changed",
			mcplib.WithDescription("Report an unsaved edit; schedules a debounced analysis when lint-on-change is enabled"),
			pathArg,
		),
		handleTrigger(session, domain.TriggerChange),
	)

	// 4. slopwatch_file_closed
	s.AddTool(
		mcplib.NewTool("slopwatch_file_closed",
			mcplib.WithDescription("Report that a file was closed or deleted; drops its diagnostics"),
			pathArg,
		),
		handleFileClosed(session),
	)

	// 5. slopwatch_analyze_workspace
	s.AddTool(
		mcplib.NewTool("slopwatch_analyze_workspace",
			mcplib.WithDescription("Analyze the whole workspace and return the aggregate summary"),
			rootArg,
		),
		handleAnalyzeWorkspace(session, root),
	)

	// 6. slopwatch_show_history
	s.AddTool(
		mcplib.NewTool("slopwatch_show_history",
			mcplib.WithDescription("Return the recorded score history of a file, newest first"),
			pathArg,
		),
		handleShowHistory(session),
	)

	// 7. slopwatch_install_hook
	s.AddTool(
		mcplib.NewTool("slopwatch_install_hook",
			mcplib.WithDescription("Install the analyzer's git pre-commit hook in the workspace repository"),
			rootArg,
		),
		handleInstallHook(session, root),
	)

	// 8. slopwatch_status
	s.AddTool(
		mcplib.NewTool("slopwatch_status",
			mcplib.WithDescription("Return the current status snapshot"),
		),
		handleStatus(session),
	)

	// 9. slopwatch_diagnostics
	s.AddTool(
		mcplib.NewTool("slopwatch_diagnostics",
			mcplib.WithDescription("Return the live diagnostics of a file"),
			pathArg,
		),
		handleDiagnostics(session),
	)
}

// triggerReply answers an editor event.
type triggerReply struct {
	Scheduled bool               `json:"scheduled"`
	RequestID string             `json:"request_id,omitempty"`
	Path      string             `json:"path,omitempty"`
	Trigger   domain.TriggerKind `json:"trigger"`
	Reason    string             `json:"reason,omitempty"`
}

// diagnosticsReply is the live diagnostic set of one file.
type diagnosticsReply struct {
	Path        string                   `json:"path"`
	Tracked     bool                     `json:"tracked"`
	State       application.SubjectState `json:"state"`
	Diagnostics []domain.Diagnostic      `json:"diagnostics"`
}

type statusReply struct {
	Status  domain.StatusSnapshot `json:"status"`
	Tracked []string              `json:"tracked"`
}

func handleAnalyzeFile(session *application.Session) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
		path := request.GetString("path", "")
		if path == "" {
			return errorResult("[!] No active file"), nil
		}

		out, err := session.Analysis.Analyze(ctx, path)
		if errors.Is(err, domain.ErrNotScheduled) {
			return textResult(fmt.Sprintf("not analyzed: %v", err)), nil
		}
		if errors.Is(err, domain.ErrCancelled) {
			return textResult("superseded by a newer request for " + path), nil
		}
		if err != nil {
			return errorResult(fmt.Sprintf("analysis failed: %v", err)), nil
		}
		return jsonResult(out)
	}
}

func handleTrigger(session *application.Session, trigger domain.TriggerKind) server.ToolHandlerFunc {
	return func(_ context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
		path, err := request.RequireString("path")
		if err != nil {
			return errorResult(err.Error()), nil
		}

		ticket, err := session.Analysis.Trigger(path, trigger)
		if errors.Is(err, domain.ErrNotScheduled) {
			return jsonResult(triggerReply{Trigger: trigger, Path: path, Reason: err.Error()})
		}
		if err != nil {
			return errorResult(err.Error()), nil
		}
		return jsonResult(triggerReply{
			Scheduled: true,
			RequestID: ticket.Request.ID,
			Path:      ticket.Request.Subject.Path,
			Trigger:   trigger,
		})
	}
}

func handleFileClosed(session *application.Session) server.ToolHandlerFunc {
	return func(_ context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
		path, err := request.RequireString("path")
		if err != nil {
			return errorResult(err.Error()), nil
		}
		session.Forget(path)
		return textResult("forgot " + path), nil
	}
}

func handleAnalyzeWorkspace(session *application.Session, defaultRoot string) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
		root := request.GetString("root", defaultRoot)

		out, err := session.Workspace.Analyze(ctx, root)
		if errors.Is(err, domain.ErrCancelled) {
			return textResult("superseded by a newer workspace analysis"), nil
		}
		if err != nil {
			return errorResult(fmt.Sprintf("workspace analysis failed: %v", err)), nil
		}
		return jsonResult(out.Workspace)
	}
}

func handleShowHistory(session *application.Session) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
		view, err := session.History.Show(ctx, request.GetString("path", ""))
		if err != nil {
			return errorResult(err.Error()), nil
		}
		return jsonResult(view)
	}
}

func handleInstallHook(session *application.Session, defaultRoot string) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
		root := request.GetString("root", defaultRoot)

		outcome, err := session.Hooks.Install(ctx, root)
		if err != nil {
			return errorResult(err.Error()), nil
		}
		return jsonResult(outcome)
	}
}

func handleStatus(session *application.Session) server.ToolHandlerFunc {
	return func(_ context.Context, _ mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
		tracked := session.Tracked()
		if tracked == nil {
			tracked = []string{}
		}
		return jsonResult(statusReply{Status: session.Status(), Tracked: tracked})
	}
}

func handleDiagnostics(session *application.Session) server.ToolHandlerFunc {
	return func(_ context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
		path, err := request.RequireString("path")
		if err != nil {
			return errorResult(err.Error()), nil
		}
		return jsonResult(diagnosticsFor(session, path))
	}
}

func diagnosticsFor(session *application.Session, path string) diagnosticsReply {
	diags, ok := session.Diagnostics(path)
	if diags == nil {
		diags = []domain.Diagnostic{}
	}
	return diagnosticsReply{Path: path, Tracked: ok, State: session.State(path), Diagnostics: diags}
}

// jsonResult marshals v to indented JSON and returns it as a text content result.
func jsonResult(v any) (*mcplib.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling result: %w", err)
	}
	return &mcplib.CallToolResult{
		Content: []mcplib.Content{mcplib.NewTextContent(string(data))},
	}, nil
}

// textResult returns a plain text content result.
func textResult(text string) *mcplib.CallToolResult {
	return &mcplib.CallToolResult{
		Content: []mcplib.Content{mcplib.NewTextContent(text)},
	}
}

// errorResult returns a tool result that indicates an error occurred.
func errorResult(msg string) *mcplib.CallToolResult {
	return &mcplib.CallToolResult{
		Content: []mcplib.Content{mcplib.NewTextContent(msg)},
		IsError: true,
	}
}
