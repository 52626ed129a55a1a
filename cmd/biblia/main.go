// Command biblia runs the Bible API server and its import and
// indexing tools.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/alecthomas/kong"

	"github.com/jogodabiblia/biblia/internal/api"
	"github.com/jogodabiblia/biblia/internal/importer"
	"github.com/jogodabiblia/biblia/internal/logging"
	"github.com/jogodabiblia/biblia/internal/search"
	"github.com/jogodabiblia/biblia/internal/store"
)

// CLI defines the command-line interface for biblia.
var CLI struct {
	// Global flags
	DBDriver  string `name:"db-driver" help:"Database driver (sqlite or postgres)" default:"sqlite" enum:"sqlite,postgres"`
	DBDSN     string `name:"db-dsn" help:"Database DSN (file path for sqlite, URL for postgres)" default:"biblia.db"`
	LogLevel  string `name:"log-level" help:"Log level (debug, info, warn, error)" default:"info"`
	LogFormat string `name:"log-format" help:"Log format (text or json)" default:"text"`

	Serve   ServeCmd   `cmd:"" help:"Start the REST API server"`
	Import  ImportCmd  `cmd:"" help:"Import Bible text or reading lists"`
	Index   IndexCmd   `cmd:"" help:"Build the semantic search index for a version"`
	Version VersionCmd `cmd:"" help:"Print version information"`
}

// openStore opens and migrates the configured database.
func openStore(ctx context.Context) (*store.Store, error) {
	st, err := store.Open(store.Config{Driver: CLI.DBDriver, DSN: CLI.DBDSN})
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		st.Close()
		return nil, fmt.Errorf("migrating database: %w", err)
	}
	return st, nil
}

// ServeCmd starts the REST API server.
type ServeCmd struct {
	Port           int      `help:"HTTP server port" default:"8000"`
	Origins        []string `help:"Allowed CORS origins (empty allows all)"`
	RateLimit      int      `name:"rate-limit" help:"Requests per minute per IP (0 disables)" default:"120"`
	RateBurst      int      `name:"rate-burst" help:"Rate limit burst size" default:"20"`
	DefaultVersion string   `name:"default-version" help:"Translation used when a query names none" default:"ARA"`
	CacheSize      int      `name:"cache-size" help:"Verse text cache entries" default:"4096"`
	Search         bool     `help:"Enable semantic search endpoints"`
	QdrantURL      string   `name:"qdrant-url" help:"Qdrant base URL" default:"http://qdrant:6333"`
	QdrantKey      string   `name:"qdrant-key" help:"Qdrant API key"`
	OllamaURL      string   `name:"ollama-url" help:"Ollama base URL" default:"http://ollama:11434"`
	EmbedModel     string   `name:"embed-model" help:"Embedding model name" default:"mxbai-embed-large"`
}

func (c *ServeCmd) Run() error {
	st, err := openStore(context.Background())
	if err != nil {
		return err
	}
	defer st.Close()

	cfg := api.Config{
		Port:              c.Port,
		AllowedOrigins:    c.Origins,
		RateLimitRequests: c.RateLimit,
		RateLimitBurst:    c.RateBurst,
		DefaultVersion:    c.DefaultVersion,
		CacheSize:         c.CacheSize,
		SearchEnabled:     c.Search,
		Search: search.Config{
			QdrantURL: c.QdrantURL,
			APIKey:    c.QdrantKey,
			OllamaURL: c.OllamaURL,
			Model:     c.EmbedModel,
		},
	}
	return api.NewServer(cfg, st).Start()
}

// ImportCmd groups the importers.
type ImportCmd struct {
	AraJSON      ImportAraJSONCmd      `cmd:"" name:"ara-json" help:"Import a Bible from the pt-BR JSON format"`
	OSIS         ImportOSISCmd         `cmd:"" name:"osis" help:"Import a Bible from OSIS XML"`
	ReadingLists ImportReadingListsCmd `cmd:"" name:"reading-lists" help:"Import reading lists from a JSON export"`
}

// ImportAraJSONCmd imports a Bible translation from JSON.
type ImportAraJSONCmd struct {
	Path    string `arg:"" help:"Path to the JSON file (.json or .json.xz)" type:"existingfile"`
	Name    string `help:"Version display name" default:"Almeida Revista e Atualizada"`
	Version string `help:"Version abbreviation" default:"ARA"`
}

func (c *ImportAraJSONCmd) Run() error {
	ctx := context.Background()
	st, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	res, err := importer.New(st).ImportBibleJSON(ctx, c.Path, c.Name, c.Version, func(done, total int) {
		logging.ImportProgress("ara-json", fmt.Sprintf("%d/%d", done, total), 0)
	})
	if err != nil {
		return err
	}
	if res.Skipped {
		fmt.Printf("%s already imported (digest %s)\n", res.Version, res.Digest[:12])
		return nil
	}
	fmt.Printf("imported %s: %d books, %d verses\n", res.Version, res.Books, res.Verses)
	return nil
}

// ImportOSISCmd imports a Bible translation from OSIS XML.
type ImportOSISCmd struct {
	Path    string `arg:"" help:"Path to the OSIS file (.xml or .xml.xz)" type:"existingfile"`
	Name    string `required:"" help:"Version display name"`
	Version string `required:"" help:"Version abbreviation"`
}

func (c *ImportOSISCmd) Run() error {
	ctx := context.Background()
	st, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	res, err := importer.New(st).ImportOSIS(ctx, c.Path, c.Name, c.Version, nil)
	if err != nil {
		return err
	}
	if res.Skipped {
		fmt.Printf("%s already imported (digest %s)\n", res.Version, res.Digest[:12])
		return nil
	}
	fmt.Printf("imported %s: %d books, %d verses\n", res.Version, res.Books, res.Verses)
	return nil
}

// ImportReadingListsCmd imports reading lists from JSON.
type ImportReadingListsCmd struct {
	Path string `arg:"" help:"Path to the reading-list JSON file" type:"existingfile"`
}

func (c *ImportReadingListsCmd) Run() error {
	ctx := context.Background()
	st, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	res, err := importer.New(st).ImportReadingLists(ctx, c.Path)
	if err != nil {
		return err
	}
	fmt.Printf("imported %d reading lists (%d skipped)\n", res.Imported, res.Skipped)
	return nil
}

// IndexCmd builds the semantic search index from the CLI.
type IndexCmd struct {
	Version    string `help:"Version abbreviation to index" default:"ARA"`
	QdrantURL  string `name:"qdrant-url" help:"Qdrant base URL" default:"http://qdrant:6333"`
	QdrantKey  string `name:"qdrant-key" help:"Qdrant API key"`
	OllamaURL  string `name:"ollama-url" help:"Ollama base URL" default:"http://ollama:11434"`
	EmbedModel string `name:"embed-model" help:"Embedding model name" default:"mxbai-embed-large"`
	Collection string `help:"Qdrant collection name" default:"biblia_ara"`
}

func (c *IndexCmd) Run() error {
	ctx := context.Background()
	st, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	client := search.NewClient(search.Config{
		QdrantURL:  c.QdrantURL,
		APIKey:     c.QdrantKey,
		OllamaURL:  c.OllamaURL,
		Model:      c.EmbedModel,
		Collection: c.Collection,
	})

	indexed, err := search.NewIndexer(client, st).IndexVersion(ctx, c.Version, func(done, total int) {
		fmt.Fprintf(os.Stderr, "\rindexing %s: %d/%d", c.Version, done, total)
	})
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return err
	}
	fmt.Printf("indexed %d verses of %s\n", indexed, c.Version)
	return nil
}

// VersionCmd prints the service version.
type VersionCmd struct{}

func (c *VersionCmd) Run() error {
	fmt.Printf("biblia version %s\n", api.Version)
	return nil
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("biblia"),
		kong.Description("Self-hosted Bible API with reference parsing and semantic search"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
	)

	logging.InitLogger(logging.ParseLevel(CLI.LogLevel), logging.ParseFormat(CLI.LogFormat))

	err := ctx.Run(ctx)
	ctx.FatalIfErrorf(err)
}
