package mcp

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"r2r-mcp/internal/steps"
)

func (s *Server) registerPrompts() {
	s.mcpServer.AddPrompt(
		mcp.NewPrompt(
			"rag_query_prompt",
			mcp.WithPromptDescription("A grounded question-answering prompt over retrieved context"),
			mcp.WithArgument("query", mcp.RequiredArgument(), mcp.ArgumentDescription("The question to answer")),
			mcp.WithArgument("context", mcp.ArgumentDescription("Retrieved context to ground the answer in")),
		),
		s.handleRAGQueryPrompt,
	)

	s.mcpServer.AddPrompt(
		mcp.NewPrompt(
			"document_analysis_prompt",
			mcp.WithPromptDescription("A typed document analysis prompt"),
			mcp.WithArgument("content", mcp.RequiredArgument(), mcp.ArgumentDescription("The document content")),
			mcp.WithArgument("analysis_type", mcp.ArgumentDescription("One of: summary, entities, topics, sentiment")),
		),
		s.handleDocumentAnalysisPrompt,
	)
}

func (s *Server) handleRAGQueryPrompt(ctx context.Context, request mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	query := request.Params.Arguments["query"]
	if query == "" {
		return nil, fmt.Errorf("missing required argument: query")
	}
	context := request.Params.Arguments["context"]
	if context == "" {
		context = "(no context retrieved)"
	}

	return mcp.NewGetPromptResult(
		"Grounded question answering",
		[]mcp.PromptMessage{
			mcp.NewPromptMessage(mcp.RoleUser, mcp.NewTextContent(steps.RAGQueryPrompt(query, context))),
		},
	), nil
}

func (s *Server) handleDocumentAnalysisPrompt(ctx context.Context, request mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	content := request.Params.Arguments["content"]
	if content == "" {
		return nil, fmt.Errorf("missing required argument: content")
	}
	analysisType := request.Params.Arguments["analysis_type"]
	if analysisType == "" {
		analysisType = steps.AnalysisSummary
	}

	return mcp.NewGetPromptResult(
		"Document analysis",
		[]mcp.PromptMessage{
			mcp.NewPromptMessage(mcp.RoleUser, mcp.NewTextContent(steps.DocumentAnalysisPrompt(content, analysisType))),
		},
	), nil
}
