// Package steps provides the reusable pipeline steps and sampling helpers
// behind the research tools: retrieval against the backend, analysis and
// summarization via client-side sampling, structured extraction, and
// follow-up question generation.
package steps

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"r2r-mcp/internal/pipeline"
	"r2r-mcp/internal/r2r"
)

// DefaultSearchLimit bounds a search step when the caller does not set one.
const DefaultSearchLimit = 5

// Searcher is the retrieval surface the steps need. *r2r.Client satisfies it.
type Searcher interface {
	Search(ctx context.Context, req r2r.SearchRequest) (*r2r.SearchResponse, error)
}

// Search returns a step that queries the backend. Args: "query" (required),
// "limit" (optional). The step result is the *r2r.SearchResponse.
func Search(backend Searcher) pipeline.StepFunc {
	return func(ctx context.Context, rc *pipeline.Context, args pipeline.Args, prev *pipeline.Results) (any, error) {
		query := stringArg(args, "query")
		if query == "" {
			return nil, fmt.Errorf("search: missing query argument")
		}
		limit := intArg(args, "limit", DefaultSearchLimit)

		resp, err := backend.Search(ctx, r2r.SearchRequest{
			Query: query,
			SearchSettings: &r2r.SearchSettings{
				Limit:           limit,
				UseHybridSearch: true,
			},
		})
		if err != nil {
			return nil, fmt.Errorf("search: %w", err)
		}

		rc.Debug("search step complete", "query", query, "chunks", len(resp.Results.ChunkSearchResults))
		return resp, nil
	}
}

// Analyze returns a step that analyzes the "search" result via sampling.
// Args: "topic" (defaults to the search query wording via the prompt). The
// step result is the analysis text.
func Analyze() pipeline.StepFunc {
	return func(ctx context.Context, rc *pipeline.Context, args pipeline.Args, prev *pipeline.Results) (any, error) {
		raw, ok := prev.Get("search")
		if !ok {
			return nil, fmt.Errorf("analyze: no search result to analyze")
		}
		resp, ok := raw.(*r2r.SearchResponse)
		if !ok {
			return nil, fmt.Errorf("analyze: unexpected search result type %T", raw)
		}

		topic := stringArg(args, "topic")
		prompt := analysisPrompt(topic, r2r.FormatSearchResults(resp, 0))

		analysis, err := rc.Sample(ctx, pipeline.SampleRequest{
			Prompt:      prompt,
			Temperature: 0.4,
			MaxTokens:   1500,
		})
		if err != nil {
			return nil, fmt.Errorf("analyze: %w", err)
		}
		return analysis, nil
	}
}

// Summarize returns a step that condenses the "analyze" result into a short
// summary. The step result is the summary text.
func Summarize() pipeline.StepFunc {
	return func(ctx context.Context, rc *pipeline.Context, args pipeline.Args, prev *pipeline.Results) (any, error) {
		raw, ok := prev.Get("analyze")
		if !ok {
			return nil, fmt.Errorf("summarize: no analysis to summarize")
		}
		analysis, ok := raw.(string)
		if !ok {
			return nil, fmt.Errorf("summarize: unexpected analysis type %T", raw)
		}

		summary, err := rc.Sample(ctx, pipeline.SampleRequest{
			Prompt:      summaryPrompt(analysis),
			Temperature: 0.3,
			MaxTokens:   300,
		})
		if err != nil {
			return nil, fmt.Errorf("summarize: %w", err)
		}
		return summary, nil
	}
}

// Compare asks the sampler to contrast retrieved material across topics.
// topics and sections must be index-aligned.
func Compare(ctx context.Context, rc *pipeline.Context, topics, sections []string) (string, error) {
	if len(topics) != len(sections) {
		return "", fmt.Errorf("compare: %d topics but %d sections", len(topics), len(sections))
	}
	out, err := rc.Sample(ctx, pipeline.SampleRequest{
		Prompt:      comparisonPrompt(topics, sections),
		Temperature: 0.4,
		MaxTokens:   1500,
	})
	if err != nil {
		return "", fmt.Errorf("compare: %w", err)
	}
	return out, nil
}

// AnalyzeDocument runs a typed analysis of document content via sampling.
func AnalyzeDocument(ctx context.Context, rc *pipeline.Context, content, analysisType string) (string, error) {
	out, err := rc.Sample(ctx, pipeline.SampleRequest{
		Prompt:      DocumentAnalysisPrompt(content, analysisType),
		Temperature: 0.3,
		MaxTokens:   1000,
	})
	if err != nil {
		return "", fmt.Errorf("analyze document: %w", err)
	}
	return out, nil
}

// Extraction is the outcome of ExtractStructured. When the sampled reply is
// not valid JSON, Data is nil and Raw carries the reply untouched.
type Extraction struct {
	Data map[string]any `json:"data,omitempty"`
	Raw  string         `json:"raw,omitempty"`
}

// ExtractStructured asks the sampler for a JSON object matching schema and
// parses the reply. A reply that is not parseable JSON is returned raw
// rather than treated as an error; the model's text may still be useful.
func ExtractStructured(ctx context.Context, rc *pipeline.Context, content, schema string) (*Extraction, error) {
	reply, err := rc.Sample(ctx, pipeline.SampleRequest{
		Prompt:      extractionPrompt(content, schema),
		Temperature: 0.1,
		MaxTokens:   1000,
	})
	if err != nil {
		return nil, fmt.Errorf("extract structured: %w", err)
	}

	cleaned := trimCodeFence(reply)
	var data map[string]any
	if err := json.Unmarshal([]byte(cleaned), &data); err != nil {
		rc.Debug("extraction reply is not valid JSON, returning raw text")
		return &Extraction{Raw: reply}, nil
	}
	return &Extraction{Data: data}, nil
}

// GenerateFollowups suggests follow-up questions for a query and its
// answer, one question per returned entry.
func GenerateFollowups(ctx context.Context, rc *pipeline.Context, query, answer string, count int) ([]string, error) {
	if count < 1 {
		count = 3
	}
	reply, err := rc.Sample(ctx, pipeline.SampleRequest{
		Prompt:      followupPrompt(query, answer, count),
		Temperature: 0.7,
		MaxTokens:   300,
	})
	if err != nil {
		return nil, fmt.Errorf("generate followups: %w", err)
	}

	questions := make([]string, 0, count)
	for _, line := range strings.Split(reply, "\n") {
		line = strings.TrimSpace(strings.TrimLeft(line, "-*• \t"))
		if line == "" {
			continue
		}
		questions = append(questions, line)
		if len(questions) == count {
			break
		}
	}
	return questions, nil
}

// trimCodeFence strips a markdown code fence wrapper, which models add
// around JSON replies even when told not to.
func trimCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

func stringArg(args pipeline.Args, key string) string {
	if v, ok := args[key].(string); ok {
		return v
	}
	return ""
}

func intArg(args pipeline.Args, key string, fallback int) int {
	switch v := args[key].(type) {
	case int:
		return v
	case float64:
		return int(v)
	default:
		return fallback
	}
}
