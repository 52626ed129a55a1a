package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/jogodabiblia/biblia/core/errors"
	"github.com/jogodabiblia/biblia/core/reference"
	"github.com/jogodabiblia/biblia/internal/logging"
)

// APIResponse is the standard API response wrapper.
type APIResponse struct {
	Success bool      `json:"success"`
	Data    any       `json:"data,omitempty"`
	Error   *APIError `json:"error,omitempty"`
	Meta    *APIMeta  `json:"meta,omitempty"`
}

// APIError represents an API error.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// APIMeta contains response metadata.
type APIMeta struct {
	Total     int    `json:"total,omitempty"`
	Timestamp string `json:"timestamp"`
}

// VerseResult is one resolved verse with its text.
type VerseResult struct {
	Book    string `json:"book"`
	Chapter int    `json:"chapter"`
	Verse   int    `json:"verse"`
	Version string `json:"version"`
	Text    string `json:"text"`
}

// HealthInfo is the health check response.
type HealthInfo struct {
	Status   string `json:"status"`
	Version  string `json:"version"`
	Uptime   string `json:"uptime"`
	Driver   string `json:"driver"`
	Database string `json:"database"`
}

// Texts returned in place of verse content when the lookup misses,
// matching the behavior users of the original service expect.
const (
	verseNotFoundText   = "Versículo não encontrado"
	versionNotFoundText = "Versão não encontrada"
)

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		respondError(w, http.StatusNotFound, "NOT_FOUND", "Endpoint not found")
		return
	}

	respond(w, http.StatusOK, map[string]any{
		"name":    "Biblia API",
		"version": Version,
		"endpoints": []string{
			"GET /health",
			"GET /metrics",
			"GET /api/v1/hello",
			"GET /api/v1/schema",
			"GET /api/v1/bible/verse",
			"GET /api/v1/bible/books",
			"GET /api/v1/bible/versions",
			"GET /api/v1/reading-lists",
			"GET /api/v1/tags",
			"POST /api/v1/tags",
			"GET /api/v1/search",
			"POST /api/v1/search/index",
			"GET /api/v1/jobs/:id",
			"WS /api/v1/ws",
		},
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respondError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Only GET is allowed")
		return
	}

	status := "healthy"
	database := "ok"
	code := http.StatusOK
	if err := s.store.Ping(r.Context()); err != nil {
		status = "degraded"
		database = "unreachable"
		code = http.StatusServiceUnavailable
	}

	respond(w, code, HealthInfo{
		Status:   status,
		Version:  Version,
		Uptime:   time.Since(s.startTime).String(),
		Driver:   s.store.Driver(),
		Database: database,
	})
}

func (s *Server) handleHello(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respondError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Only GET is allowed")
		return
	}
	respond(w, http.StatusOK, map[string]string{"message": "Olá! A API da Bíblia está no ar."})
}

func (s *Server) handleSchema(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respondError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Only GET is allowed")
		return
	}
	version, err := s.store.SchemaVersion(r.Context())
	if err != nil {
		respondStoreError(w, r, err)
		return
	}
	respond(w, http.StatusOK, map[string]int{"schema_version": version})
}

// handleVerseSearch resolves a free-form reference like
// "João 3:16-18, 20; 1Pe 2:22" into verses with text.
func (s *Server) handleVerseSearch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respondError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Only GET is allowed")
		return
	}

	query := r.URL.Query().Get("q")
	if query == "" {
		respondError(w, http.StatusBadRequest, "MISSING_QUERY", "Query parameter q is required")
		return
	}
	version := r.URL.Query().Get("version")
	if version == "" {
		version = s.cfg.DefaultVersion
	}

	refs, err := s.parser.Parse(r.Context(), query)
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_REFERENCE", err.Error())
		return
	}

	results := make([]VerseResult, 0, len(refs))
	for _, ref := range refs {
		text, err := s.verseText(r, version, ref)
		if err != nil {
			respondStoreError(w, r, err)
			return
		}
		results = append(results, VerseResult{
			Book:    ref.Book,
			Chapter: ref.Chapter,
			Verse:   ref.Verse,
			Version: version,
			Text:    text,
		})
	}
	respondList(w, results, len(results))
}

// verseText fetches one verse through the LRU cache. A missing verse
// or version becomes explanatory text rather than an error.
func (s *Server) verseText(r *http.Request, version string, ref reference.Reference) (string, error) {
	key := fmt.Sprintf("%s|%s|%d:%d", version, ref.Book, ref.Chapter, ref.Verse)
	if text, ok := s.verseCache.Get(key); ok {
		return text, nil
	}

	text, err := s.store.GetVerseText(r.Context(), version, ref.Book, ref.Chapter, ref.Verse)
	if err != nil {
		var nf *errors.NotFoundError
		if errors.As(err, &nf) {
			if nf.Resource == "version" {
				return versionNotFoundText, nil
			}
			return verseNotFoundText, nil
		}
		return "", err
	}
	s.verseCache.Put(key, text)
	return text, nil
}

func (s *Server) handleBooks(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respondError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Only GET is allowed")
		return
	}
	books, err := s.store.ListBooks(r.Context())
	if err != nil {
		respondStoreError(w, r, err)
		return
	}
	respondList(w, books, len(books))
}

func (s *Server) handleVersions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respondError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Only GET is allowed")
		return
	}
	versions, err := s.store.ListVersions(r.Context())
	if err != nil {
		respondStoreError(w, r, err)
		return
	}
	respondList(w, versions, len(versions))
}

func (s *Server) handleReadingLists(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respondError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Only GET is allowed")
		return
	}

	q := r.URL.Query().Get("q")
	page := queryInt(r, "page", 1)
	size := queryInt(r, "size", 10)
	if size > 100 {
		size = 100
	}

	result, err := s.store.SearchReadingLists(r.Context(), q, page, size)
	if err != nil {
		respondStoreError(w, r, err)
		return
	}
	respond(w, http.StatusOK, result)
}

func (s *Server) handleTags(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		tags, err := s.store.ListTags(r.Context())
		if err != nil {
			respondStoreError(w, r, err)
			return
		}
		respondList(w, tags, len(tags))
	case http.MethodPost:
		var req struct {
			Name        string `json:"name"`
			Color       string `json:"color"`
			Description string `json:"description"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid JSON body")
			return
		}
		if req.Name == "" {
			respondError(w, http.StatusBadRequest, "MISSING_PARAMS", "name is required")
			return
		}
		id, err := s.store.CreateTag(r.Context(), req.Name, req.Color, req.Description)
		if err != nil {
			respondStoreError(w, r, err)
			return
		}
		respond(w, http.StatusCreated, map[string]int64{"id": id})
	default:
		respondError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Only GET and POST are allowed")
	}
}

func (s *Server) handleSemanticSearch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respondError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Only GET is allowed")
		return
	}
	if s.search == nil {
		respondError(w, http.StatusServiceUnavailable, "SEARCH_DISABLED", "Semantic search is not enabled")
		return
	}

	q := r.URL.Query().Get("q")
	if q == "" {
		respondError(w, http.StatusBadRequest, "MISSING_QUERY", "Query parameter q is required")
		return
	}
	limit := queryInt(r, "limit", 5)
	if limit > 50 {
		limit = 50
	}

	results, err := s.search.Search(r.Context(), q, limit)
	if err != nil {
		logging.ErrorContext(r.Context(), "semantic search failed", "error", err)
		respondError(w, http.StatusBadGateway, "SEARCH_FAILED", "Semantic search backend unavailable")
		return
	}
	logging.SearchEvent("semantic_search", "query_len", len(q), "results", len(results))
	respondList(w, results, len(results))
}

// Helper functions

func queryInt(r *http.Request, name string, def int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return def
	}
	return n
}

// respondStoreError maps store failures without leaking internals.
func respondStoreError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.IsNotFound(err) {
		respondError(w, http.StatusNotFound, "NOT_FOUND", err.Error())
		return
	}
	logging.ErrorContext(r.Context(), "store operation failed", "error", err)
	respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error")
}

func respond(w http.ResponseWriter, status int, data any) {
	response := APIResponse{
		Success: true,
		Data:    data,
		Meta: &APIMeta{
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		},
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(response)
}

func respondList(w http.ResponseWriter, data any, total int) {
	response := APIResponse{
		Success: true,
		Data:    data,
		Meta: &APIMeta{
			Total:     total,
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		},
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	response := APIResponse{
		Success: false,
		Error: &APIError{
			Code:    code,
			Message: message,
		},
		Meta: &APIMeta{
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		},
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(response)
}
