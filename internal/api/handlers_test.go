package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jogodabiblia/biblia/internal/store"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	st, err := store.Open(store.Config{
		Driver: store.DriverSQLite,
		DSN:    filepath.Join(t.TempDir(), "test.db"),
	})
	if err != nil {
		t.Fatalf("opening store: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	if err := st.Migrate(context.Background()); err != nil {
		t.Fatalf("migrating: %v", err)
	}
	return st
}

func seedBible(t *testing.T, st *store.Store) {
	t.Helper()
	ctx := context.Background()

	versionID, err := st.CreateVersion(ctx, "Almeida Revista e Atualizada", "ARA", true, "digest")
	if err != nil {
		t.Fatalf("creating version: %v", err)
	}

	seed := map[string][]store.Verse{
		"Jo": {
			{Chapter: 3, Number: 16, Text: "Porque Deus amou o mundo de tal maneira..."},
			{Chapter: 3, Number: 17, Text: "Porque Deus enviou o seu Filho ao mundo..."},
		},
		"Gn": {
			{Chapter: 1, Number: 1, Text: "No princípio criou Deus os céus e a terra."},
		},
		"1Pe": {
			{Chapter: 2, Number: 22, Text: "Ele não cometeu pecado..."},
		},
	}
	for abbrev, verses := range seed {
		book, err := st.BookByAbbrev(ctx, abbrev)
		if err != nil {
			t.Fatalf("looking up %s: %v", abbrev, err)
		}
		if err := st.InsertVerses(ctx, versionID, book.ID, verses); err != nil {
			t.Fatalf("inserting verses for %s: %v", abbrev, err)
		}
	}

	for _, title := range []string{"Plano de 30 dias", "Plano de oração", "Salmos favoritos"} {
		if _, err := st.InsertReadingList(ctx, title, "Jo 3:16"); err != nil {
			t.Fatalf("inserting reading list: %v", err)
		}
	}
	if _, err := st.CreateTag(ctx, "promessas", "", "versículos de promessa"); err != nil {
		t.Fatalf("creating tag: %v", err)
	}
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	st := newTestStore(t)
	seedBible(t, st)
	cfg := DefaultConfig()
	cfg.RateLimitRequests = 0
	return NewServer(cfg, st)
}

func doRequest(t *testing.T, s *Server, method, target string, body string) (*httptest.ResponseRecorder, APIResponse) {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	rec := httptest.NewRecorder()
	s.routes().ServeHTTP(rec, req)

	var resp APIResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response %q: %v", rec.Body.String(), err)
	}
	return rec, resp
}

func verseResults(t *testing.T, resp APIResponse) []VerseResult {
	t.Helper()
	raw, err := json.Marshal(resp.Data)
	if err != nil {
		t.Fatalf("re-marshaling data: %v", err)
	}
	var results []VerseResult
	if err := json.Unmarshal(raw, &results); err != nil {
		t.Fatalf("decoding verse results: %v", err)
	}
	return results
}

func TestVerseSearch(t *testing.T) {
	s := newTestServer(t)

	target := "/api/v1/bible/verse?q=" + url.QueryEscape("Jo 3:16")
	rec, resp := doRequest(t, s, http.MethodGet, target, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !resp.Success {
		t.Fatalf("response not successful: %+v", resp.Error)
	}

	results := verseResults(t, resp)
	if len(results) != 1 {
		t.Fatalf("got %d results, want 1", len(results))
	}
	r := results[0]
	if r.Book != "Jo" || r.Chapter != 3 || r.Verse != 16 || r.Version != "ARA" {
		t.Errorf("unexpected result: %+v", r)
	}
	if !strings.HasPrefix(r.Text, "Porque Deus amou") {
		t.Errorf("unexpected text %q", r.Text)
	}
}

func TestVerseSearchCompound(t *testing.T) {
	s := newTestServer(t)

	target := "/api/v1/bible/verse?q=" + url.QueryEscape("João 3:16-17; 1Pe 2:22")
	rec, resp := doRequest(t, s, http.MethodGet, target, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	results := verseResults(t, resp)
	if len(results) != 3 {
		t.Fatalf("got %d results, want 3", len(results))
	}
	if results[2].Book != "1Pe" || results[2].Chapter != 2 || results[2].Verse != 22 {
		t.Errorf("unexpected last result: %+v", results[2])
	}
}

func TestVerseSearchParseError(t *testing.T) {
	s := newTestServer(t)

	rec, resp := doRequest(t, s, http.MethodGet, "/api/v1/bible/verse?q="+url.QueryEscape("Jo 3:"), "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if resp.Error == nil || resp.Error.Code != "INVALID_REFERENCE" {
		t.Errorf("unexpected error: %+v", resp.Error)
	}
}

func TestVerseSearchMissingQuery(t *testing.T) {
	s := newTestServer(t)

	rec, resp := doRequest(t, s, http.MethodGet, "/api/v1/bible/verse", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if resp.Error == nil || resp.Error.Code != "MISSING_QUERY" {
		t.Errorf("unexpected error: %+v", resp.Error)
	}
}

func TestVerseSearchMissingVerseText(t *testing.T) {
	s := newTestServer(t)

	rec, resp := doRequest(t, s, http.MethodGet, "/api/v1/bible/verse?q="+url.QueryEscape("Gn 50:1"), "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	results := verseResults(t, resp)
	if len(results) != 1 || results[0].Text != verseNotFoundText {
		t.Errorf("unexpected results: %+v", results)
	}
}

func TestVerseSearchUnknownVersionText(t *testing.T) {
	s := newTestServer(t)

	target := "/api/v1/bible/verse?q=" + url.QueryEscape("Jo 3:16") + "&version=NVI"
	rec, resp := doRequest(t, s, http.MethodGet, target, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	results := verseResults(t, resp)
	if len(results) != 1 || results[0].Text != versionNotFoundText {
		t.Errorf("unexpected results: %+v", results)
	}
}

func TestVerseSearchUsesCache(t *testing.T) {
	s := newTestServer(t)

	target := "/api/v1/bible/verse?q=" + url.QueryEscape("Jo 3:16")
	doRequest(t, s, http.MethodGet, target, "")
	if s.verseCache.Len() != 1 {
		t.Fatalf("cache has %d entries after first request, want 1", s.verseCache.Len())
	}
	doRequest(t, s, http.MethodGet, target, "")
	stats := s.verseCache.Stats()
	if stats.Hits != 1 {
		t.Errorf("cache hits = %d, want 1", stats.Hits)
	}
}

func TestBooks(t *testing.T) {
	s := newTestServer(t)

	rec, resp := doRequest(t, s, http.MethodGet, "/api/v1/bible/books", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if resp.Meta == nil || resp.Meta.Total != 66 {
		t.Errorf("meta total = %+v, want 66", resp.Meta)
	}
}

func TestVersions(t *testing.T) {
	s := newTestServer(t)

	rec, resp := doRequest(t, s, http.MethodGet, "/api/v1/bible/versions", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if resp.Meta == nil || resp.Meta.Total != 1 {
		t.Errorf("meta total = %+v, want 1", resp.Meta)
	}
}

func TestReadingLists(t *testing.T) {
	s := newTestServer(t)

	rec, resp := doRequest(t, s, http.MethodGet, "/api/v1/reading-lists?q=plano&page=1&size=1", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	raw, _ := json.Marshal(resp.Data)
	var page store.ReadingListPage
	if err := json.Unmarshal(raw, &page); err != nil {
		t.Fatalf("decoding page: %v", err)
	}
	if page.Total != 2 || page.TotalPages != 2 || len(page.Items) != 1 {
		t.Errorf("unexpected page: %+v", page)
	}
}

func TestTags(t *testing.T) {
	s := newTestServer(t)

	rec, resp := doRequest(t, s, http.MethodGet, "/api/v1/tags", "")
	if rec.Code != http.StatusOK || resp.Meta.Total != 1 {
		t.Fatalf("list: status = %d, total = %+v", rec.Code, resp.Meta)
	}

	rec, _ = doRequest(t, s, http.MethodPost, "/api/v1/tags", `{"name": "estudo"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: status = %d, want 201", rec.Code)
	}

	_, resp = doRequest(t, s, http.MethodGet, "/api/v1/tags", "")
	if resp.Meta.Total != 2 {
		t.Errorf("total after create = %d, want 2", resp.Meta.Total)
	}

	rec, resp = doRequest(t, s, http.MethodPost, "/api/v1/tags", `{"color": "#fff"}`)
	if rec.Code != http.StatusBadRequest || resp.Error.Code != "MISSING_PARAMS" {
		t.Errorf("nameless create: status = %d, error = %+v", rec.Code, resp.Error)
	}
}

func TestHelloAndSchema(t *testing.T) {
	s := newTestServer(t)

	rec, _ := doRequest(t, s, http.MethodGet, "/api/v1/hello", "")
	if rec.Code != http.StatusOK {
		t.Errorf("hello status = %d, want 200", rec.Code)
	}

	_, resp := doRequest(t, s, http.MethodGet, "/api/v1/schema", "")
	raw, _ := json.Marshal(resp.Data)
	var data map[string]int
	json.Unmarshal(raw, &data)
	if data["schema_version"] != 1 {
		t.Errorf("schema_version = %d, want 1", data["schema_version"])
	}
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)

	rec, resp := doRequest(t, s, http.MethodGet, "/health", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	raw, _ := json.Marshal(resp.Data)
	var health HealthInfo
	json.Unmarshal(raw, &health)
	if health.Status != "healthy" || health.Driver != store.DriverSQLite {
		t.Errorf("unexpected health: %+v", health)
	}
}

func TestRootAndNotFound(t *testing.T) {
	s := newTestServer(t)

	rec, _ := doRequest(t, s, http.MethodGet, "/", "")
	if rec.Code != http.StatusOK {
		t.Errorf("root status = %d, want 200", rec.Code)
	}

	rec, resp := doRequest(t, s, http.MethodGet, "/nope", "")
	if rec.Code != http.StatusNotFound || resp.Error.Code != "NOT_FOUND" {
		t.Errorf("unknown path: status = %d, error = %+v", rec.Code, resp.Error)
	}
}

func TestSemanticSearchDisabled(t *testing.T) {
	s := newTestServer(t)

	rec, resp := doRequest(t, s, http.MethodGet, "/api/v1/search?q=amor", "")
	if rec.Code != http.StatusServiceUnavailable || resp.Error.Code != "SEARCH_DISABLED" {
		t.Errorf("status = %d, error = %+v", rec.Code, resp.Error)
	}

	rec, resp = doRequest(t, s, http.MethodPost, "/api/v1/search/index", `{}`)
	if rec.Code != http.StatusServiceUnavailable || resp.Error.Code != "SEARCH_DISABLED" {
		t.Errorf("index: status = %d, error = %+v", rec.Code, resp.Error)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	s := newTestServer(t)

	for _, target := range []string{
		"/api/v1/bible/verse",
		"/api/v1/bible/books",
		"/api/v1/bible/versions",
		"/api/v1/reading-lists",
		"/api/v1/hello",
	} {
		rec, resp := doRequest(t, s, http.MethodDelete, target, "")
		if rec.Code != http.StatusMethodNotAllowed || resp.Error.Code != "METHOD_NOT_ALLOWED" {
			t.Errorf("%s: status = %d, error = %+v", target, rec.Code, resp.Error)
		}
	}
}

func TestSecurityAndCORSHeaders(t *testing.T) {
	s := newTestServer(t)
	handler := s.Handler()

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if got := rec.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("X-Content-Type-Options = %q", got)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Access-Control-Allow-Origin = %q", got)
	}
	if got := rec.Header().Get("X-Request-ID"); got == "" {
		t.Error("X-Request-ID header not set")
	}
}

func TestCORSRestrictedOrigin(t *testing.T) {
	st := newTestStore(t)
	cfg := DefaultConfig()
	cfg.RateLimitRequests = 0
	cfg.AllowedOrigins = []string{"https://biblia.example"}
	s := NewServer(cfg, st)
	handler := s.Handler()

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "https://biblia.example")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://biblia.example" {
		t.Errorf("allowed origin header = %q", got)
	}

	req = httptest.NewRequest(http.MethodOptions, "/health", nil)
	req.Header.Set("Origin", "https://evil.example")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Errorf("preflight from disallowed origin: status = %d, want 403", rec.Code)
	}
}

func TestRateLimitExceeded(t *testing.T) {
	st := newTestStore(t)
	cfg := DefaultConfig()
	cfg.RateLimitRequests = 60
	cfg.RateLimitBurst = 2
	s := NewServer(cfg, st)
	handler := s.Handler()

	var last int
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/hello", nil)
		req.RemoteAddr = "10.1.2.3:4444"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		last = rec.Code
	}
	if last != http.StatusTooManyRequests {
		t.Errorf("third request status = %d, want 429", last)
	}
}
