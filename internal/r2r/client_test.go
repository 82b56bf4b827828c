package r2r

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"r2r-mcp/internal/auth"
)

// rotatingSource returns a different token on each call, simulating a
// credential injected after the client was constructed.
type rotatingSource struct {
	tokens []string
	calls  int
}

func (s *rotatingSource) Resolve() string {
	if s.calls >= len(s.tokens) {
		return ""
	}
	t := s.tokens[s.calls]
	s.calls++
	return t
}

func TestClient_Search_SendsBearerAtRequestTime(t *testing.T) {
	var seen []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = append(seen, r.Header.Get("Authorization"))
		assert.Equal(t, "/v3/retrieval/search", r.URL.Path)

		var req SearchRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "machine learning", req.Query)
		assert.Equal(t, 5, req.SearchSettings.Limit)

		json.NewEncoder(w).Encode(SearchResponse{Results: SearchResults{
			ChunkSearchResults: []ChunkResult{{ID: "1", Text: "sample", Score: 0.9}},
		}})
	}))
	defer srv.Close()

	src := &rotatingSource{tokens: []string{"tok-a", "tok-b"}}
	client := NewClient(srv.URL, src, time.Second)

	req := SearchRequest{Query: "machine learning", SearchSettings: &SearchSettings{Limit: 5}}

	resp, err := client.Search(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, resp.Results.ChunkSearchResults, 1)
	assert.Equal(t, "sample", resp.Results.ChunkSearchResults[0].Text)

	_, err = client.Search(context.Background(), req)
	require.NoError(t, err)

	// Each call resolved the source anew and observed the rotated token.
	assert.Equal(t, []string{"Bearer tok-a", "Bearer tok-b"}, seen)
}

func TestClient_NoToken_NoAuthorizationHeader(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Absence of a credential is a valid state, not an error.
		_, present := r.Header["Authorization"]
		assert.False(t, present)
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, auth.StaticTokenSource(""), time.Second)
	assert.NoError(t, client.Health(context.Background()))
}

func TestClient_NonOKStatus_ReturnsAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "document not found", http.StatusNotFound)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, nil, time.Second)
	_, err := client.GetDocument(context.Background(), "missing-id")
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.Contains(t, apiErr.Body, "document not found")
	assert.True(t, IsNotFound(err))
	assert.False(t, IsUnauthorized(err))
}

func TestClient_ConnectionFailure_IsNotAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // refuse all connections

	client := NewClient(srv.URL, nil, time.Second)
	err := client.Health(context.Background())
	require.Error(t, err)

	var apiErr *APIError
	assert.False(t, IsNotFound(err))
	assert.NotErrorAs(t, err, &apiErr)
}

func TestClient_RAG(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v3/retrieval/rag", r.URL.Path)
		var req RAGRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, 2000, req.RAGGeneration.MaxTokens)
		json.NewEncoder(w).Encode(RAGResponse{
			Answer:    "RAG stands for retrieval-augmented generation.",
			Citations: []Citation{{Text: "source one"}},
		})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, nil, time.Second)
	resp, err := client.RAG(context.Background(), RAGRequest{
		Query:         "What is RAG?",
		RAGGeneration: &RAGSettings{MaxTokens: 2000, Temperature: 0.1, IncludeCitations: true},
	})
	require.NoError(t, err)
	assert.Contains(t, resp.Answer, "retrieval-augmented")
	assert.Equal(t, []string{"source one"}, ExtractCitations(resp))
}

func TestClient_CreateDocumentFromFile_Multipart(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("hello r2r"), 0o600))

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))

		f, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer f.Close()
		assert.Equal(t, "notes.txt", header.Filename)

		var meta DocumentMetadata
		require.NoError(t, json.Unmarshal([]byte(r.FormValue("metadata")), &meta))
		assert.Equal(t, "batch_ingest", meta.Source)

		json.NewEncoder(w).Encode(Document{DocumentID: "doc-1"})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, nil, time.Second)
	doc, err := client.CreateDocumentFromFile(context.Background(), path, &DocumentMetadata{
		Title:  "notes.txt",
		Source: "batch_ingest",
	})
	require.NoError(t, err)
	assert.Equal(t, "doc-1", doc.DocumentID)
}

func TestFormatSearchResults(t *testing.T) {
	resp := &SearchResponse{Results: SearchResults{ChunkSearchResults: []ChunkResult{
		{Score: 0.912, Text: "first chunk", DocumentID: "d1"},
		{Score: 0.801, Text: "second chunk", DocumentID: "d2"},
	}}}

	out := FormatSearchResults(resp, 1)
	assert.Contains(t, out, "Result 1:")
	assert.Contains(t, out, "0.912")
	assert.NotContains(t, out, "second chunk")

	assert.Equal(t, "No results found", FormatSearchResults(&SearchResponse{}, 0))
}
