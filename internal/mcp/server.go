package mcp

import (
	"context"
	"net/http"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"r2r-mcp/internal/logging"
	"r2r-mcp/internal/pipeline"
	"r2r-mcp/internal/r2r"
)

const serverVersion = "1.0.0"

// Backend is the slice of the R2R client the MCP surface uses.
// *r2r.Client satisfies it.
type Backend interface {
	Search(ctx context.Context, req r2r.SearchRequest) (*r2r.SearchResponse, error)
	RAG(ctx context.Context, req r2r.RAGRequest) (*r2r.RAGResponse, error)
	GetDocument(ctx context.Context, documentID string) (*r2r.Document, error)
	GetCollection(ctx context.Context, collectionID string) (*r2r.Collection, error)
	ListCollectionDocuments(ctx context.Context, collectionID string) ([]r2r.Document, error)
	Health(ctx context.Context) error
}

type Server struct {
	mcpServer *server.MCPServer
	backend   Backend
	cache     *pipeline.Cache
	searchTTL time.Duration
	logger    *logging.Logger
}

func NewServer(backend Backend, cache *pipeline.Cache, searchTTL time.Duration, logger *logging.Logger) *Server {
	s := &Server{
		mcpServer: server.NewMCPServer(
			"R2R Retrieval",
			serverVersion,
			server.WithToolCapabilities(true),
			server.WithResourceCapabilities(true, true),
			server.WithPromptCapabilities(true),
		),
		backend:   backend,
		cache:     cache,
		searchTTL: searchTTL,
		logger:    logger,
	}

	s.mcpServer.EnableSampling()
	s.registerTools()
	s.registerResources()
	s.registerPrompts()
	return s
}

func (s *Server) GetMCPServer() *server.MCPServer {
	return s.mcpServer
}

// runContext builds the per-request pipeline context: the application
// logger, a progress sink bound to the request's progress token (nil when
// the client sent none), and a sampler backed by the MCP session.
func (s *Server) runContext(ctx context.Context, request mcp.CallToolRequest) *pipeline.Context {
	var logger pipeline.Logger
	if s.logger != nil {
		logger = s.logger
	}
	return pipeline.NewContext(logger, progressFunc(ctx, request), samplerFromContext(ctx))
}

// progressFunc returns a sink that forwards progress notifications to the
// client, or nil when the request carries no progress token.
func progressFunc(ctx context.Context, request mcp.CallToolRequest) pipeline.ProgressFunc {
	meta := request.Params.Meta
	if meta == nil || meta.ProgressToken == nil {
		return nil
	}
	srv := server.ServerFromContext(ctx)
	if srv == nil {
		return nil
	}
	token := meta.ProgressToken
	return func(current, total int) {
		// Notification failures must not abort the tool call.
		_ = srv.SendNotificationToClient(ctx, "notifications/progress", map[string]any{
			"progressToken": token,
			"progress":      current,
			"total":         total,
		})
	}
}

func MountHTTPHandlers(mux *http.ServeMux, mcpServer *server.MCPServer) {
	// Use SSE server for /mcp/sse and /mcp/message endpoints
	sseServer := server.NewSSEServer(mcpServer, server.WithStaticBasePath("/mcp"))

	mux.HandleFunc("/mcp", func(w http.ResponseWriter, r *http.Request) {
		// Direct POST for tool calls
		if r.Method == http.MethodPost {
			sseServer.ServeHTTP(w, r)
			return
		}
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	})

	// SSE endpoints
	mux.HandleFunc("/mcp/sse", sseServer.ServeHTTP)
	mux.HandleFunc("/mcp/message", sseServer.ServeHTTP)
}
