package mcp

import (
	"log"
	"sync"

	"github.com/mark3labs/mcp-go/server"

	"github.com/abdidvp/slopwatch/internal/application"
	"github.com/abdidvp/slopwatch/internal/domain"
)

// Version is reported to MCP clients during initialization.
var Version = "0.1.0"

const statusURI = "slopwatch://status"

// NewSlopwatchMCPServer creates an MCP server exposing the session's
// operations as tools and its live state as resources. root is the default
// workspace for workspace-scoped tools; it may be empty. When bridge is not
// nil, notifications and status changes are pushed to connected clients.
func NewSlopwatchMCPServer(session *application.Session, root string, bridge *Bridge) *server.MCPServer {
	s := server.NewMCPServer(
		"slopwatch",
		Version,
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(true, false),
		server.WithLogging(),
	)

	registerTools(s, session, root)
	registerResources(s, session)

	if bridge != nil {
		bridge.attach(s)
		session.OnStatus(bridge.statusChanged)
	}

	return s
}

// Bridge delivers session notifications to MCP clients. It is created
// before the server so it can be handed to the session as its Notifier.
type Bridge struct {
	mu     sync.RWMutex
	srv    *server.MCPServer
	logger *log.Logger
}

func NewBridge(logger *log.Logger) *Bridge {
	return &Bridge{logger: logger}
}

func (b *Bridge) attach(s *server.MCPServer) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.srv = s
}

// Notify sends n as an MCP log message. Before a server is attached the
// message only goes to the log.
func (b *Bridge) Notify(n domain.Notification) {
	b.logger.Printf("%s: %s", n.Level, n.Message)

	b.mu.RLock()
	s := b.srv
	b.mu.RUnlock()
	if s == nil {
		return
	}
	s.SendNotificationToAllClients("notifications/message", map[string]any{
		"level":  string(n.Level),
		"logger": "slopwatch",
		"data":   n.Message,
	})
}

func (b *Bridge) statusChanged(snap domain.StatusSnapshot) {
	b.mu.RLock()
	s := b.srv
	b.mu.RUnlock()
	if s == nil {
		return
	}
	s.SendNotificationToAllClients("notifications/resources/updated", map[string]any{
		"uri": statusURI,
	})
}
