package mcp

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"r2r-mcp/internal/pipeline"
)

// clientSampler implements pipeline.Sampler by asking the connected MCP
// client to run a completion. The model call happens on the client's side;
// this server never holds model credentials.
type clientSampler struct {
	srv *server.MCPServer
}

// samplerFromContext returns a sampler bound to the session behind ctx, or
// nil when the call did not arrive through an MCP session.
func samplerFromContext(ctx context.Context) pipeline.Sampler {
	srv := server.ServerFromContext(ctx)
	if srv == nil {
		return nil
	}
	return &clientSampler{srv: srv}
}

func (s *clientSampler) Sample(ctx context.Context, req pipeline.SampleRequest) (string, error) {
	result, err := s.srv.RequestSampling(ctx, mcp.CreateMessageRequest{
		CreateMessageParams: mcp.CreateMessageParams{
			Messages: []mcp.SamplingMessage{
				{
					Role:    mcp.RoleUser,
					Content: mcp.TextContent{Type: "text", Text: req.Prompt},
				},
			},
			SystemPrompt: req.SystemPrompt,
			Temperature:  req.Temperature,
			MaxTokens:    req.MaxTokens,
		},
	})
	if err != nil {
		return "", fmt.Errorf("sampling request: %w", err)
	}

	switch content := result.Content.(type) {
	case mcp.TextContent:
		return content.Text, nil
	case *mcp.TextContent:
		return content.Text, nil
	default:
		return "", fmt.Errorf("sampling returned unsupported content type %T", result.Content)
	}
}
