// Package resumeparse is the public entry point for parsing a resume
// document into its structured section record (§6). It wires a
// config.Manager, a persisted section database, and an orchestrator
// behind a small functional-options constructor.
package resumeparse

import (
	"context"
	"log/slog"

	"github.com/tsawler/resumecore/config"
	"github.com/tsawler/resumecore/orchestrator"
	"github.com/tsawler/resumecore/sections"
	"github.com/tsawler/resumecore/wordsource"
)

// Client parses documents against one configuration and one section
// database; build one per process and reuse it across documents.
type Client struct {
	orch *orchestrator.Orchestrator
	db   *sections.Database
}

// Option configures a Client at construction time.
type Option func(*options)

type options struct {
	cfgFile     string
	dbPath      string
	embedder    sections.EmbeddingProvider
	ocrProvider wordsource.OCRProvider
	logger      *slog.Logger
}

// WithConfigFile loads configuration from path instead of the default
// search path (§6 environment knobs still apply on top).
func WithConfigFile(path string) Option {
	return func(o *options) { o.cfgFile = path }
}

// WithSectionDBPath overrides SECTION_DB_PATH for this client.
func WithSectionDBPath(path string) Option {
	return func(o *options) { o.dbPath = path }
}

// WithEmbeddingProvider wires an optional embedding recall step into
// the section matcher (§4.6 step 4).
func WithEmbeddingProvider(p sections.EmbeddingProvider) Option {
	return func(o *options) { o.embedder = p }
}

// WithOCRProvider wires the OCR fallback strategy's recognizer.
func WithOCRProvider(p wordsource.OCRProvider) Option {
	return func(o *options) { o.ocrProvider = p }
}

// WithLogger overrides the default slog.Logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// New builds a Client, loading configuration and the section database
// from disk (creating the database from seed defaults if absent).
func New(opts ...Option) (*Client, error) {
	o := &options{}
	for _, apply := range opts {
		apply(o)
	}

	mgr, err := config.NewManager(o.cfgFile)
	if err != nil {
		return nil, err
	}
	cfg := mgr.Get()

	dbPath := o.dbPath
	if dbPath == "" {
		dbPath = cfg.SectionDBPath
	}
	db := sections.New(dbPath)
	if err := db.Load(); err != nil {
		return nil, err
	}

	orch := orchestrator.New(cfg, db, o.embedder, o.ocrProvider, o.logger)
	return &Client{orch: orch, db: db}, nil
}

// Parse runs the full pipeline against one document path and returns
// its structured result (§6).
func (c *Client) Parse(ctx context.Context, path string) (*orchestrator.Result, error) {
	return c.orch.Parse(ctx, path)
}

// ParseAll parses every path concurrently, bounded by workerCount (0
// selects CPU_count, per §5).
func (c *Client) ParseAll(ctx context.Context, paths []string, workerCount int) []orchestrator.Outcome {
	pool := orchestrator.NewPool(c.orch, orchestrator.PoolConfig{WorkerCount: workerCount})
	return pool.ParseAll(ctx, paths)
}
