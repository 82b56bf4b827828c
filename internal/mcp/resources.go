package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) registerResources() {
	s.mcpServer.AddResource(
		mcp.NewResource(
			"r2r://server/info",
			"Server information",
			mcp.WithResourceDescription("Name, version, and backend health of this server"),
			mcp.WithMIMEType("application/json"),
		),
		s.handleServerInfo,
	)

	s.mcpServer.AddResourceTemplate(
		mcp.NewResourceTemplate(
			"r2r://documents/{id}",
			"Document metadata",
			mcp.WithTemplateDescription("Metadata for a stored document"),
			mcp.WithTemplateMIMEType("application/json"),
		),
		s.handleDocumentResource,
	)

	s.mcpServer.AddResourceTemplate(
		mcp.NewResourceTemplate(
			"r2r://collections/{id}/summary",
			"Collection summary",
			mcp.WithTemplateDescription("A collection's metadata and its document listing"),
			mcp.WithTemplateMIMEType("application/json"),
		),
		s.handleCollectionSummary,
	)
}

func (s *Server) handleServerInfo(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	backendStatus := "ok"
	if err := s.backend.Health(ctx); err != nil {
		backendStatus = fmt.Sprintf("unreachable: %v", err)
	}

	info, _ := json.Marshal(map[string]any{
		"name":    "R2R Retrieval",
		"version": serverVersion,
		"backend": backendStatus,
	})
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      request.Params.URI,
			MIMEType: "application/json",
			Text:     string(info),
		},
	}, nil
}

func (s *Server) handleDocumentResource(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	id := strings.TrimPrefix(request.Params.URI, "r2r://documents/")
	if id == "" || strings.Contains(id, "/") {
		return nil, fmt.Errorf("invalid document URI %q", request.Params.URI)
	}

	doc, err := s.backend.GetDocument(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("fetch document %s: %w", id, err)
	}

	out, _ := json.Marshal(doc)
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      request.Params.URI,
			MIMEType: "application/json",
			Text:     string(out),
		},
	}, nil
}

func (s *Server) handleCollectionSummary(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	id := strings.TrimPrefix(request.Params.URI, "r2r://collections/")
	id = strings.TrimSuffix(id, "/summary")
	if id == "" || strings.Contains(id, "/") {
		return nil, fmt.Errorf("invalid collection URI %q", request.Params.URI)
	}

	collection, err := s.backend.GetCollection(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("fetch collection %s: %w", id, err)
	}
	docs, err := s.backend.ListCollectionDocuments(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("list collection documents %s: %w", id, err)
	}

	titles := make([]string, 0, len(docs))
	for _, doc := range docs {
		title := doc.Title
		if title == "" {
			title = doc.DocumentID
		}
		titles = append(titles, title)
	}

	out, _ := json.Marshal(map[string]any{
		"collection": collection,
		"documents":  titles,
	})
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      request.Params.URI,
			MIMEType: "application/json",
			Text:     string(out),
		},
	}, nil
}
