// Package api provides the Bible REST API server.
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/jogodabiblia/biblia/core/cache"
	"github.com/jogodabiblia/biblia/core/reference"
	"github.com/jogodabiblia/biblia/internal/logging"
	"github.com/jogodabiblia/biblia/internal/search"
	"github.com/jogodabiblia/biblia/internal/store"
)

// Server wires the store, the reference parser and the search
// collaborators behind the HTTP API.
type Server struct {
	cfg        Config
	store      *store.Store
	parser     *reference.Parser
	verseCache cache.Cache[string, string]
	search     *search.Client
	hub        *Hub
	jobs       *JobStore
	metrics    *Metrics
	startTime  time.Time
}

// NewServer creates a server over an opened (and migrated) store.
func NewServer(cfg Config, st *store.Store) *Server {
	if cfg.DefaultVersion == "" {
		cfg.DefaultVersion = DefaultConfig().DefaultVersion
	}
	if cfg.CacheSize == 0 {
		cfg.CacheSize = DefaultConfig().CacheSize
	}

	resolver := reference.NewResolver(reference.CatalogFunc(
		func(ctx context.Context) ([]reference.CatalogBook, error) {
			books, err := st.ListBooks(ctx)
			if err != nil {
				return nil, err
			}
			catalog := make([]reference.CatalogBook, len(books))
			for i, b := range books {
				catalog[i] = reference.CatalogBook{Abbrev: b.Abbrev, Name: b.Name}
			}
			return catalog, nil
		}))

	s := &Server{
		cfg:    cfg,
		store:  st,
		parser: reference.NewParser(resolver),
		verseCache: cache.NewLRUCache[string, string](cache.Config{
			MaxSize: cfg.CacheSize,
			TTL:     cfg.CacheTTL,
		}),
		hub:       NewHub(),
		jobs:      NewJobStore(),
		metrics:   NewMetrics(),
		startTime: time.Now(),
	}
	if cfg.SearchEnabled {
		s.search = search.NewClient(cfg.Search)
	}
	return s
}

// Handler returns the full HTTP handler with the middleware chain
// applied.
func (s *Server) Handler() http.Handler {
	mux := s.routes()

	var handler http.Handler = SecurityHeadersMiddleware(mux)
	handler = s.metrics.Middleware(handler)

	if s.cfg.RateLimitRequests > 0 {
		rlCfg := RateLimiterConfig{
			RequestsPerMinute: s.cfg.RateLimitRequests,
			BurstSize:         s.cfg.RateLimitBurst,
		}
		if rlCfg.BurstSize == 0 {
			rlCfg.BurstSize = 10
		}
		handler = NewRateLimiter(rlCfg).Middleware(handler)
	}

	handler = CORSMiddleware(CORSConfig{AllowedOrigins: s.cfg.AllowedOrigins}, handler)
	return logging.CombinedMiddleware(handler)
}

// Start runs the websocket hub and the HTTP server. It blocks until
// the listener fails.
func (s *Server) Start() error {
	go s.hub.Run()

	logging.ServerStartup("rest_api", "http", s.cfg.Port,
		"db_driver", s.store.Driver(),
		"default_version", s.cfg.DefaultVersion,
		"search_enabled", s.cfg.SearchEnabled)

	addr := fmt.Sprintf(":%d", s.cfg.Port)
	return http.ListenAndServe(addr, s.Handler())
}

// routes configures all HTTP routes.
func (s *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/", s.handleRoot)
	mux.HandleFunc("/health", s.handleHealth)
	mux.Handle("/metrics", s.metrics.Handler())

	mux.HandleFunc("/api/v1/hello", s.handleHello)
	mux.HandleFunc("/api/v1/schema", s.handleSchema)
	mux.HandleFunc("/api/v1/bible/verse", s.handleVerseSearch)
	mux.HandleFunc("/api/v1/bible/books", s.handleBooks)
	mux.HandleFunc("/api/v1/bible/versions", s.handleVersions)
	mux.HandleFunc("/api/v1/reading-lists", s.handleReadingLists)
	mux.HandleFunc("/api/v1/tags", s.handleTags)
	mux.HandleFunc("/api/v1/search", s.handleSemanticSearch)
	mux.HandleFunc("/api/v1/search/index", s.handleSearchIndex)
	mux.HandleFunc("/api/v1/jobs/", s.handleJobByID)
	mux.HandleFunc("/api/v1/ws", s.handleWebSocket)

	return mux
}
