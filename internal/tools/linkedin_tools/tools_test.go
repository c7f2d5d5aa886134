package linkedin_tools

import (
	"context"
	"testing"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/adenhq/composio-mcp/internal/server"
)

func TestRegisterLinkedInTools(t *testing.T) {
	sc := server.NewServerContext(context.Background())
	defer sc.Shutdown()

	s := mcpserver.NewMCPServer("test-server", "0.0.1",
		mcpserver.WithToolCapabilities(true),
	)

	if err := RegisterLinkedInTools(s, sc); err != nil {
		t.Fatalf("RegisterLinkedInTools() error = %v", err)
	}
}
