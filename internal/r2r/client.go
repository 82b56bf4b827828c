// Package r2r is the HTTP gateway to the remote R2R API. It owns all
// outbound calls: every request resolves the bearer token through the
// configured auth.TokenSource at the moment it is sent, attaches it when
// non-empty, and maps non-2xx statuses to *APIError. Retries are a caller
// concern; the client only enforces the per-call timeout.
package r2r

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"r2r-mcp/internal/auth"
)

// DefaultTimeout is used when the config does not override the per-call
// timeout.
const DefaultTimeout = 30 * time.Second

// Client issues authenticated requests against an R2R deployment.
type Client struct {
	baseURL    string
	tokens     auth.TokenSource
	httpClient *http.Client
}

// NewClient creates a Client for the given base URL. tokens may be nil for
// unauthenticated backends. A non-positive timeout falls back to
// DefaultTimeout.
func NewClient(baseURL string, tokens auth.TokenSource, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL:    baseURL,
		tokens:     tokens,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Search runs a retrieval search over the knowledge base.
func (c *Client) Search(ctx context.Context, req SearchRequest) (*SearchResponse, error) {
	var out SearchResponse
	if err := c.doJSON(ctx, http.MethodPost, "/v3/retrieval/search", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// RAG runs a retrieval-augmented generation query.
func (c *Client) RAG(ctx context.Context, req RAGRequest) (*RAGResponse, error) {
	var out RAGResponse
	if err := c.doJSON(ctx, http.MethodPost, "/v3/retrieval/rag", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Agent sends one turn to the conversational agent.
func (c *Client) Agent(ctx context.Context, req AgentRequest) (*AgentResponse, error) {
	var out AgentResponse
	if err := c.doJSON(ctx, http.MethodPost, "/v3/retrieval/agent", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateDocument uploads raw text content as a new document.
func (c *Client) CreateDocument(ctx context.Context, content string, metadata *DocumentMetadata, collectionIDs []string) (*Document, error) {
	payload := map[string]any{"content": content}
	if metadata != nil {
		payload["metadata"] = metadata
	}
	if len(collectionIDs) > 0 {
		payload["collection_ids"] = collectionIDs
	}
	var out Document
	if err := c.doJSON(ctx, http.MethodPost, "/v3/documents", payload, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateDocumentFromFile uploads a file as a multipart request.
func (c *Client) CreateDocumentFromFile(ctx context.Context, path string, metadata *DocumentMetadata) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open document: %w", err)
	}
	defer f.Close()

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		return nil, fmt.Errorf("build multipart body: %w", err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}
	if metadata != nil {
		meta, err := json.Marshal(metadata)
		if err != nil {
			return nil, fmt.Errorf("marshal metadata: %w", err)
		}
		if err := w.WriteField("metadata", string(meta)); err != nil {
			return nil, fmt.Errorf("build multipart body: %w", err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("build multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v3/documents", &body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	var out Document
	if err := c.send(req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetDocument fetches a document's metadata by ID.
func (c *Client) GetDocument(ctx context.Context, documentID string) (*Document, error) {
	var out Document
	if err := c.doJSON(ctx, http.MethodGet, "/v3/documents/"+url.PathEscape(documentID), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteDocument removes a document.
func (c *Client) DeleteDocument(ctx context.Context, documentID string) error {
	return c.doJSON(ctx, http.MethodDelete, "/v3/documents/"+url.PathEscape(documentID), nil, nil)
}

// ListDocuments pages through stored documents.
func (c *Client) ListDocuments(ctx context.Context, limit, offset int) ([]Document, error) {
	var out struct {
		Results []Document `json:"results"`
	}
	path := fmt.Sprintf("/v3/documents?limit=%s&offset=%s", strconv.Itoa(limit), strconv.Itoa(offset))
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out.Results, nil
}

// CreateCollection creates a named collection.
func (c *Client) CreateCollection(ctx context.Context, name, description string) (*Collection, error) {
	payload := map[string]any{"name": name, "description": description}
	var out Collection
	if err := c.doJSON(ctx, http.MethodPost, "/v3/collections", payload, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetCollection fetches a collection by ID.
func (c *Client) GetCollection(ctx context.Context, collectionID string) (*Collection, error) {
	var out Collection
	if err := c.doJSON(ctx, http.MethodGet, "/v3/collections/"+url.PathEscape(collectionID), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListCollectionDocuments lists the documents that belong to a collection.
func (c *Client) ListCollectionDocuments(ctx context.Context, collectionID string) ([]Document, error) {
	var out struct {
		Results []Document `json:"results"`
	}
	path := "/v3/collections/" + url.PathEscape(collectionID) + "/documents"
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out.Results, nil
}

// AddDocumentToCollection attaches an existing document to a collection.
func (c *Client) AddDocumentToCollection(ctx context.Context, collectionID, documentID string) error {
	path := "/v3/collections/" + url.PathEscape(collectionID) + "/documents/" + url.PathEscape(documentID)
	return c.doJSON(ctx, http.MethodPost, path, nil, nil)
}

// Health checks the backend's health endpoint.
func (c *Client) Health(ctx context.Context) error {
	return c.doJSON(ctx, http.MethodGet, "/health", nil, nil)
}

// Do issues a request against an endpoint the typed surface does not wrap
// yet. body may be nil; the decoded JSON response is returned as a map.
func (c *Client) Do(ctx context.Context, method, path string, body any) (map[string]any, error) {
	var out map[string]any
	if err := c.doJSON(ctx, method, path, body, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// doJSON issues a JSON request and decodes the response into out (skipped
// when out is nil).
func (c *Client) doJSON(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return c.send(req, out)
}

// send resolves the credential, executes the request, and maps the response.
// Token resolution happens here, on every call, so a credential injected or
// rotated after the Client was built is always honored.
func (c *Client) send(req *http.Request, out any) error {
	if c.tokens != nil {
		if token := c.tokens.Resolve(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("r2r: %s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &APIError{
			StatusCode: resp.StatusCode,
			Method:     req.Method,
			Path:       req.URL.Path,
			Body:       string(bytes.TrimSpace(snippet)),
		}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response body: %w", err)
	}
	return nil
}
