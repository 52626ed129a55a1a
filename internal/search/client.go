// Package search implements semantic verse search against two remote
// collaborators: an Ollama server for text embeddings and a Qdrant
// instance for vector storage and nearest-neighbour queries. Both are
// spoken to over their plain HTTP/JSON APIs.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Config holds the endpoints and collection settings.
type Config struct {
	QdrantURL  string // e.g. http://qdrant:6333
	OllamaURL  string // e.g. http://ollama:11434
	APIKey     string // Qdrant api-key header, optional
	Collection string // e.g. biblia_ara
	Model      string // embedding model, e.g. mxbai-embed-large
	Dimension  int    // embedding dimension, e.g. 1024
}

// DefaultConfig returns the self-hosted defaults.
func DefaultConfig() Config {
	return Config{
		QdrantURL:  "http://qdrant:6333",
		OllamaURL:  "http://ollama:11434",
		Collection: "biblia_ara",
		Model:      "mxbai-embed-large",
		Dimension:  1024,
	}
}

// Client talks to the embedding and vector-store collaborators.
type Client struct {
	cfg  Config
	http *http.Client
}

// NewClient creates a search client. A zero-valued field in cfg falls
// back to its default.
func NewClient(cfg Config) *Client {
	def := DefaultConfig()
	if cfg.QdrantURL == "" {
		cfg.QdrantURL = def.QdrantURL
	}
	if cfg.OllamaURL == "" {
		cfg.OllamaURL = def.OllamaURL
	}
	if cfg.Collection == "" {
		cfg.Collection = def.Collection
	}
	if cfg.Model == "" {
		cfg.Model = def.Model
	}
	if cfg.Dimension == 0 {
		cfg.Dimension = def.Dimension
	}
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: 30 * time.Second},
	}
}

// Point is one vector with its verse payload.
type Point struct {
	ID      int64          `json:"id"`
	Vector  []float32      `json:"vector"`
	Payload map[string]any `json:"payload"`
}

// Result is one semantic search hit.
type Result struct {
	ID      int64          `json:"id"`
	Score   float32        `json:"score"`
	Payload map[string]any `json:"payload"`
}

// Embed returns the embedding vector for a text.
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	body := map[string]string{
		"model":  c.cfg.Model,
		"prompt": text,
	}
	var out struct {
		Embedding []float32 `json:"embedding"`
	}
	if err := c.postJSON(ctx, c.cfg.OllamaURL+"/api/embeddings", http.MethodPost, body, &out); err != nil {
		return nil, fmt.Errorf("embedding text: %w", err)
	}
	if len(out.Embedding) == 0 {
		return nil, fmt.Errorf("embedding text: empty embedding from model %s", c.cfg.Model)
	}
	return out.Embedding, nil
}

// EnsureCollection creates the vector collection if it does not exist.
func (c *Client) EnsureCollection(ctx context.Context) error {
	url := c.cfg.QdrantURL + "/collections/" + c.cfg.Collection

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	c.setHeaders(req)
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("checking collection: %w", err)
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	if resp.StatusCode == http.StatusOK {
		return nil
	}

	create := map[string]any{
		"vectors": map[string]any{
			"size":     c.cfg.Dimension,
			"distance": "Cosine",
		},
	}
	if err := c.postJSON(ctx, url, http.MethodPut, create, nil); err != nil {
		return fmt.Errorf("creating collection %s: %w", c.cfg.Collection, err)
	}
	return nil
}

// UpsertPoints writes a batch of vectors into the collection.
func (c *Client) UpsertPoints(ctx context.Context, points []Point) error {
	if len(points) == 0 {
		return nil
	}
	body := map[string]any{"points": points}
	url := c.cfg.QdrantURL + "/collections/" + c.cfg.Collection + "/points?wait=true"
	if err := c.postJSON(ctx, url, http.MethodPut, body, nil); err != nil {
		return fmt.Errorf("upserting %d points: %w", len(points), err)
	}
	return nil
}

// Search embeds the query and returns the closest verses.
func (c *Client) Search(ctx context.Context, query string, limit int) ([]Result, error) {
	if limit < 1 {
		limit = 5
	}
	vector, err := c.Embed(ctx, query)
	if err != nil {
		return nil, err
	}

	body := map[string]any{
		"vector":       vector,
		"limit":        limit,
		"with_payload": true,
	}
	var out struct {
		Result []Result `json:"result"`
	}
	url := c.cfg.QdrantURL + "/collections/" + c.cfg.Collection + "/points/search"
	if err := c.postJSON(ctx, url, http.MethodPost, body, &out); err != nil {
		return nil, fmt.Errorf("searching collection %s: %w", c.cfg.Collection, err)
	}
	return out.Result, nil
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	if c.cfg.APIKey != "" {
		req.Header.Set("api-key", c.cfg.APIKey)
	}
}

func (c *Client) postJSON(ctx context.Context, url, method string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	c.setHeaders(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%s %s: status %d: %s", method, url, resp.StatusCode, data)
	}
	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
