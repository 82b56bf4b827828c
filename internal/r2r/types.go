package r2r

// Request and response shapes for the R2R v3 API. Only the fields this
// service touches are modelled; everything else rides along in metadata maps.

// SearchSettings configures a retrieval search.
type SearchSettings struct {
	Limit           int            `json:"limit,omitempty"`
	Offset          int            `json:"offset,omitempty"`
	UseHybridSearch bool           `json:"use_hybrid_search,omitempty"`
	UseSemantic     bool           `json:"use_semantic_search,omitempty"`
	UseFulltext     bool           `json:"use_fulltext_search,omitempty"`
	SearchStrategy  string         `json:"search_strategy,omitempty"`
	Filters         map[string]any `json:"filters,omitempty"`
}

// SearchRequest is the body of POST /v3/retrieval/search.
type SearchRequest struct {
	Query          string          `json:"query"`
	SearchSettings *SearchSettings `json:"search_settings,omitempty"`
}

// ChunkResult is a single retrieved chunk.
type ChunkResult struct {
	ID         string         `json:"id"`
	DocumentID string         `json:"document_id"`
	Text       string         `json:"text"`
	Score      float64        `json:"score"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}

// SearchResults is the inner payload of a search response.
type SearchResults struct {
	ChunkSearchResults []ChunkResult `json:"chunk_search_results"`
}

// SearchResponse is the body returned by the search endpoint.
type SearchResponse struct {
	Results SearchResults `json:"results"`
}

// RAGSettings configures answer generation.
type RAGSettings struct {
	MaxTokens        int     `json:"max_tokens,omitempty"`
	Model            string  `json:"model,omitempty"`
	Temperature      float64 `json:"temperature,omitempty"`
	IncludeCitations bool    `json:"include_citations,omitempty"`
}

// RAGRequest is the body of POST /v3/retrieval/rag.
type RAGRequest struct {
	Query          string          `json:"query"`
	RAGGeneration  *RAGSettings    `json:"rag_generation_config,omitempty"`
	SearchSettings *SearchSettings `json:"search_settings,omitempty"`
}

// Citation is a source reference attached to a generated answer.
type Citation struct {
	Text     string         `json:"text"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// RAGResponse is the body returned by the RAG endpoint.
type RAGResponse struct {
	Answer    string     `json:"answer"`
	Citations []Citation `json:"citations,omitempty"`
}

// AgentMessage is one turn of an agent conversation.
type AgentMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// AgentRequest is the body of POST /v3/retrieval/agent.
type AgentRequest struct {
	Message        AgentMessage `json:"message"`
	ConversationID string       `json:"conversation_id,omitempty"`
	Mode           string       `json:"mode,omitempty"`
	MaxTokens      int          `json:"max_tokens,omitempty"`
}

// AgentResponse is the body returned by the agent endpoint.
type AgentResponse struct {
	Response       string `json:"response"`
	ConversationID string `json:"conversation_id,omitempty"`
}

// DocumentMetadata describes an uploaded document.
type DocumentMetadata struct {
	Title  string         `json:"title,omitempty"`
	Source string         `json:"source,omitempty"`
	Tags   []string       `json:"tags,omitempty"`
	Custom map[string]any `json:"custom,omitempty"`
}

// Document is a stored document's metadata as returned by the API.
type Document struct {
	DocumentID string         `json:"document_id"`
	Title      string         `json:"title,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	CreatedAt  string         `json:"created_at,omitempty"`
	UpdatedAt  string         `json:"updated_at,omitempty"`
}

// Collection groups documents.
type Collection struct {
	CollectionID  string `json:"collection_id"`
	Name          string `json:"name"`
	Description   string `json:"description,omitempty"`
	DocumentCount int    `json:"document_count,omitempty"`
	CreatedAt     string `json:"created_at,omitempty"`
}
