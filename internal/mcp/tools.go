package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"r2r-mcp/internal/pipeline"
	"r2r-mcp/internal/r2r"
	"r2r-mcp/internal/steps"
)

func (s *Server) registerTools() {
	s.mcpServer.AddTool(
		mcp.NewTool(
			"enhanced_search",
			mcp.WithDescription("Search the knowledge base with hybrid retrieval. Results are cached briefly."),
			mcp.WithString("query", mcp.Required(), mcp.Description("The search query")),
			mcp.WithNumber("limit", mcp.Description("Maximum number of results (default 5)")),
		),
		s.handleEnhancedSearch,
	)

	s.mcpServer.AddTool(
		mcp.NewTool(
			"rag_query",
			mcp.WithDescription("Answer a question with retrieval-augmented generation. Falls back to plain search results when generation is unavailable."),
			mcp.WithString("query", mcp.Required(), mcp.Description("The question to answer")),
			mcp.WithNumber("max_tokens", mcp.Description("Token budget for the generated answer")),
		),
		s.handleRAGQuery,
	)

	s.mcpServer.AddTool(
		mcp.NewTool(
			"analyze_search_results",
			mcp.WithDescription("Search the knowledge base and analyze the results via client-side sampling"),
			mcp.WithString("query", mcp.Required(), mcp.Description("The search query")),
			mcp.WithString("analysis_type", mcp.Description("One of: summary, entities, topics, sentiment")),
		),
		s.handleAnalyzeSearchResults,
	)

	s.mcpServer.AddTool(
		mcp.NewTool(
			"research_pipeline",
			mcp.WithDescription("Run the full search, analyze, summarize pipeline for a topic"),
			mcp.WithString("query", mcp.Required(), mcp.Description("The research question")),
			mcp.WithNumber("limit", mcp.Description("Maximum number of search results (default 5)")),
		),
		s.handleResearchPipeline,
	)

	s.mcpServer.AddTool(
		mcp.NewTool(
			"comparative_analysis",
			mcp.WithDescription("Search several topics in parallel and compare the findings"),
			mcp.WithString("topics", mcp.Required(), mcp.Description("Comma-separated list of topics to compare")),
		),
		s.handleComparativeAnalysis,
	)

	s.mcpServer.AddTool(
		mcp.NewTool(
			"extract_structured_data",
			mcp.WithDescription("Extract a JSON object matching a schema from free text"),
			mcp.WithString("content", mcp.Required(), mcp.Description("The text to extract from")),
			mcp.WithString("schema", mcp.Required(), mcp.Description("A JSON sketch of the desired output shape")),
		),
		s.handleExtractStructuredData,
	)

	s.mcpServer.AddTool(
		mcp.NewTool(
			"generate_followup_questions",
			mcp.WithDescription("Suggest follow-up questions for a query and its answer"),
			mcp.WithString("query", mcp.Required(), mcp.Description("The original query")),
			mcp.WithString("answer", mcp.Required(), mcp.Description("The answer the user received")),
			mcp.WithNumber("count", mcp.Description("How many questions to suggest (default 3)")),
		),
		s.handleGenerateFollowups,
	)
}

func toolArgs(request mcp.CallToolRequest) (map[string]any, bool) {
	args, ok := request.Params.Arguments.(map[string]any)
	return args, ok
}

func requireString(args map[string]any, key string) (string, *mcp.CallToolResult) {
	v, ok := args[key].(string)
	if !ok || v == "" {
		return "", mcp.NewToolResultError("Missing required parameter: " + key)
	}
	return v, nil
}

func numberArg(args map[string]any, key string, fallback int) int {
	if v, ok := args[key].(float64); ok && v > 0 {
		return int(v)
	}
	return fallback
}

func (s *Server) handleEnhancedSearch(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := toolArgs(request)
	if !ok {
		return mcp.NewToolResultError("Invalid arguments type"), nil
	}
	query, errResult := requireString(args, "query")
	if errResult != nil {
		return errResult, nil
	}
	limit := numberArg(args, "limit", steps.DefaultSearchLimit)

	rc := s.runContext(ctx, request)
	key := fmt.Sprintf("search:%s:%d", query, limit)

	value, err := s.cache.Do(ctx, rc, key, s.searchTTL, func(ctx context.Context, rc *pipeline.Context, _ pipeline.Args) (any, error) {
		resp, err := s.backend.Search(ctx, r2r.SearchRequest{
			Query: query,
			SearchSettings: &r2r.SearchSettings{
				Limit:           limit,
				UseHybridSearch: true,
			},
		})
		if err != nil {
			return nil, err
		}
		return r2r.FormatSearchResults(resp, 0), nil
	}, nil)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Search failed: %v", err)), nil
	}

	return mcp.NewToolResultText(value.(string)), nil
}

func (s *Server) handleRAGQuery(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := toolArgs(request)
	if !ok {
		return mcp.NewToolResultError("Invalid arguments type"), nil
	}
	query, errResult := requireString(args, "query")
	if errResult != nil {
		return errResult, nil
	}
	maxTokens := numberArg(args, "max_tokens", 1024)

	rc := s.runContext(ctx, request)

	value, err := pipeline.WithFallback(ctx, rc,
		func(ctx context.Context, rc *pipeline.Context, _ pipeline.Args) (any, error) {
			resp, err := s.backend.RAG(ctx, r2r.RAGRequest{
				Query: query,
				RAGGeneration: &r2r.RAGSettings{
					MaxTokens:        maxTokens,
					IncludeCitations: true,
				},
			})
			if err != nil {
				return nil, err
			}
			return formatRAGAnswer(resp), nil
		},
		func(ctx context.Context, rc *pipeline.Context, _ pipeline.Args) (any, error) {
			resp, err := s.backend.Search(ctx, r2r.SearchRequest{
				Query:          query,
				SearchSettings: &r2r.SearchSettings{Limit: steps.DefaultSearchLimit, UseHybridSearch: true},
			})
			if err != nil {
				return nil, err
			}
			return "Generation unavailable, raw search results:\n\n" + r2r.FormatSearchResults(resp, 0), nil
		}, nil)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Query failed: %v", err)), nil
	}

	return mcp.NewToolResultText(value.(string)), nil
}

func formatRAGAnswer(resp *r2r.RAGResponse) string {
	if len(resp.Citations) == 0 {
		return resp.Answer
	}
	var b strings.Builder
	b.WriteString(resp.Answer)
	b.WriteString("\n\nSources:\n")
	for i, source := range r2r.ExtractCitations(resp) {
		fmt.Fprintf(&b, "%d. %s\n", i+1, source)
	}
	return strings.TrimRight(b.String(), "\n")
}

func (s *Server) handleAnalyzeSearchResults(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := toolArgs(request)
	if !ok {
		return mcp.NewToolResultError("Invalid arguments type"), nil
	}
	query, errResult := requireString(args, "query")
	if errResult != nil {
		return errResult, nil
	}
	analysisType, _ := args["analysis_type"].(string)
	if analysisType == "" {
		analysisType = steps.AnalysisSummary
	}

	rc := s.runContext(ctx, request)
	rc.ReportProgress(0, 2)

	resp, err := s.backend.Search(ctx, r2r.SearchRequest{
		Query:          query,
		SearchSettings: &r2r.SearchSettings{Limit: steps.DefaultSearchLimit, UseHybridSearch: true},
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Search failed: %v", err)), nil
	}
	rc.ReportProgress(1, 2)

	analysis, err := steps.AnalyzeDocument(ctx, rc, r2r.FormatSearchResults(resp, 0), analysisType)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Analysis failed: %v", err)), nil
	}
	rc.ReportProgress(2, 2)

	return mcp.NewToolResultText(analysis), nil
}

func (s *Server) handleResearchPipeline(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := toolArgs(request)
	if !ok {
		return mcp.NewToolResultError("Invalid arguments type"), nil
	}
	query, errResult := requireString(args, "query")
	if errResult != nil {
		return errResult, nil
	}
	limit := numberArg(args, "limit", steps.DefaultSearchLimit)

	rc := s.runContext(ctx, request)

	results, err := pipeline.New(rc).
		Step("search", steps.Search(s.backend), pipeline.Args{"query": query, "limit": limit}).
		Step("analyze", steps.Analyze(), pipeline.Args{"topic": query}).
		Step("summarize", steps.Summarize(), nil).
		Execute(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Pipeline failed: %v", err)), nil
	}

	analysis, _ := results.Get("analyze")
	summary, _ := results.Get("summarize")

	out, _ := json.Marshal(map[string]any{
		"query":    query,
		"analysis": analysis,
		"summary":  summary,
	})
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) handleComparativeAnalysis(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := toolArgs(request)
	if !ok {
		return mcp.NewToolResultError("Invalid arguments type"), nil
	}
	topicsArg, errResult := requireString(args, "topics")
	if errResult != nil {
		return errResult, nil
	}

	topics := make([]string, 0, 4)
	for _, topic := range strings.Split(topicsArg, ",") {
		if topic = strings.TrimSpace(topic); topic != "" {
			topics = append(topics, topic)
		}
	}
	if len(topics) < 2 {
		return mcp.NewToolResultError("Need at least two topics to compare"), nil
	}

	rc := s.runContext(ctx, request)

	type section struct {
		topic string
		text  string
	}
	sections := pipeline.RunAll(ctx, rc, topics, func(ctx context.Context, topic string, index int) (section, error) {
		resp, err := s.backend.Search(ctx, r2r.SearchRequest{
			Query:          topic,
			SearchSettings: &r2r.SearchSettings{Limit: 3, UseHybridSearch: true},
		})
		if err != nil {
			return section{}, err
		}
		return section{topic: topic, text: r2r.FormatSearchResults(resp, 0)}, nil
	})
	if len(sections) == 0 {
		return mcp.NewToolResultError("All topic searches failed"), nil
	}

	surviving := make([]string, len(sections))
	material := make([]string, len(sections))
	for i, sec := range sections {
		surviving[i] = sec.topic
		material[i] = sec.text
	}

	comparison, err := steps.Compare(ctx, rc, surviving, material)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Comparison failed: %v", err)), nil
	}

	return mcp.NewToolResultText(comparison), nil
}

func (s *Server) handleExtractStructuredData(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := toolArgs(request)
	if !ok {
		return mcp.NewToolResultError("Invalid arguments type"), nil
	}
	content, errResult := requireString(args, "content")
	if errResult != nil {
		return errResult, nil
	}
	schema, errResult := requireString(args, "schema")
	if errResult != nil {
		return errResult, nil
	}

	rc := s.runContext(ctx, request)

	extraction, err := steps.ExtractStructured(ctx, rc, content, schema)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Extraction failed: %v", err)), nil
	}

	out, _ := json.Marshal(extraction)
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) handleGenerateFollowups(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := toolArgs(request)
	if !ok {
		return mcp.NewToolResultError("Invalid arguments type"), nil
	}
	query, errResult := requireString(args, "query")
	if errResult != nil {
		return errResult, nil
	}
	answer, errResult := requireString(args, "answer")
	if errResult != nil {
		return errResult, nil
	}
	count := numberArg(args, "count", 3)

	rc := s.runContext(ctx, request)

	questions, err := steps.GenerateFollowups(ctx, rc, query, answer, count)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Generation failed: %v", err)), nil
	}

	out, _ := json.Marshal(questions)
	return mcp.NewToolResultText(string(out)), nil
}
