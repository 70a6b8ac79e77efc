package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/abdidvp/slopwatch/internal/application"
)

const diagnosticsPrefix = "slopwatch://diagnostics/"

// registerResources registers the live-state resources.
func registerResources(s *server.MCPServer, session *application.Session) {
	// 1. slopwatch://status - the single status snapshot
	s.AddResource(
		mcplib.NewResource(
			statusURI,
			"Status",
			mcplib.WithResourceDescription("Current slopwatch status snapshot"),
			mcplib.WithMIMEType("application/json"),
		),
		handleStatusResource(session),
	)

	// 2. slopwatch://diagnostics/{path} - per-file diagnostics (resource template)
	s.AddResourceTemplate(
		mcplib.NewResourceTemplate(
			diagnosticsPrefix+"{path}",
			"Diagnostics",
			mcplib.WithTemplateDescription("Live diagnostics for a file (URL-encoded absolute path)"),
			mcplib.WithTemplateMIMEType("application/json"),
		),
		handleDiagnosticsResource(session),
	)
}

func handleStatusResource(session *application.Session) server.ResourceHandlerFunc {
	return func(_ context.Context, request mcplib.ReadResourceRequest) ([]mcplib.ResourceContents, error) {
		return jsonContents(request.Params.URI, session.Status())
	}
}

func handleDiagnosticsResource(session *application.Session) server.ResourceTemplateHandlerFunc {
	return func(_ context.Context, request mcplib.ReadResourceRequest) ([]mcplib.ResourceContents, error) {
		path, err := diagnosticsPath(request)
		if err != nil {
			return nil, err
		}
		return jsonContents(request.Params.URI, diagnosticsFor(session, path))
	}
}

// diagnosticsPath prefers the template argument and falls back to the URI
// suffix, unescaping either.
func diagnosticsPath(request mcplib.ReadResourceRequest) (string, error) {
	var raw string
	switch v := request.Params.Arguments["path"].(type) {
	case string:
		raw = v
	case []string:
		raw = strings.Join(v, "/")
	}
	if raw == "" {
		raw = strings.TrimPrefix(request.Params.URI, diagnosticsPrefix)
	}
	path, err := url.PathUnescape(raw)
	if err != nil {
		return "", fmt.Errorf("decoding path %q: %w", raw, err)
	}
	if path == "" {
		return "", fmt.Errorf("file path is required")
	}
	return path, nil
}

func jsonContents(uri string, v any) ([]mcplib.ResourceContents, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling %s: %w", uri, err)
	}
	return []mcplib.ResourceContents{
		mcplib.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
