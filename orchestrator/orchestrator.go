// Package orchestrator composes word acquisition, layout analysis,
// column/line/header/section components into the Detect → Extract →
// Analyze → Segment → Validate → Commit|Fallback state machine from
// §4.8, and drives the bounded cross-document worker pool from §5.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/tsawler/resumecore/config"
	"github.com/tsawler/resumecore/embed"
	"github.com/tsawler/resumecore/errs"
	"github.com/tsawler/resumecore/headers"
	"github.com/tsawler/resumecore/model"
	"github.com/tsawler/resumecore/sections"
	"github.com/tsawler/resumecore/wordsource"
)

// maxStrategies is K from §4.8: at most this many strategies are tried
// per document before giving up.
const maxStrategies = 3

// extractTimeout is the §5 per-stage timeout for token acquisition.
const extractTimeout = 60 * time.Second

// Orchestrator runs the full pipeline for one document at a time; use
// Pool to bound how many documents run concurrently across a batch.
type Orchestrator struct {
	cfg          *config.Config
	db           *sections.Database
	embedder     sections.EmbeddingProvider
	ocrProvider  wordsource.OCRProvider
	logger       *slog.Logger
}

// New builds an Orchestrator. db is required; embedder and ocrProvider
// may be nil (embeddings and OCR recall are both optional per §9/§4.1).
// logger defaults to slog.Default() when nil.
func New(cfg *config.Config, db *sections.Database, embedder sections.EmbeddingProvider, ocrProvider wordsource.OCRProvider, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{cfg: cfg, db: db, embedder: embedder, ocrProvider: ocrProvider, logger: logger}
}

// NewWithOpenAIEmbedder is a convenience constructor wiring embed.New
// as the EmbeddingProvider when cfg.EmbeddingsEnabled and an API key is
// available; it is otherwise identical to New.
func NewWithOpenAIEmbedder(cfg *config.Config, db *sections.Database, apiKey string, ocrProvider wordsource.OCRProvider, logger *slog.Logger) *Orchestrator {
	var embedder sections.EmbeddingProvider
	if cfg.EmbeddingsEnabled && apiKey != "" {
		embedder = embed.New(embed.Config{APIKey: apiKey})
	}
	return New(cfg, db, embedder, ocrProvider, logger)
}

type attemptOutcome struct {
	strategyName string
	layouts      []LayoutInfo
	sections     []model.Section
	unknown      []UnknownHeader
	quality      Quality
	matcher      *sections.Matcher
}

// Parse runs the full state machine for one document, per §4.8.
func (o *Orchestrator) Parse(ctx context.Context, path string) (*Result, error) {
	start := time.Now()
	runID := uuid.New().String()
	log := o.logger.With("run", runID, "file", path)

	kind := detect(path)
	if kind == kindUnsupported {
		return nil, fmt.Errorf("%w: unsupported file type %q", errs.InvalidInput, path)
	}

	strategies := o.strategiesFor(kind)
	if len(strategies) == 0 {
		return nil, fmt.Errorf("%w: no acquisition strategy for %q", errs.InvalidInput, path)
	}
	if len(strategies) > maxStrategies {
		strategies = strategies[:maxStrategies]
	}

	var (
		tried    []string
		outcomes []*attemptOutcome
	)

	for _, src := range strategies {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("%w", errs.Cancelled)
		}

		if src == nil {
			tried = append(tried, "render+ocr")
			log.Warn("fallback strategy unavailable", "strategy", "render+ocr")
			continue
		}

		outcome, err := o.attempt(ctx, src, path)
		tried = append(tried, src.Name())
		if err != nil {
			if errors.Is(err, errs.InvalidInput) || errors.Is(err, errs.Cancelled) {
				return nil, err
			}
			log.Warn("strategy attempt failed", "strategy", src.Name(), "error", err)
			continue
		}

		outcomes = append(outcomes, outcome)
		if outcome.quality.Score >= 0.6 {
			break
		}
	}

	outcomes = filterHallucinatedOutcomes(outcomes)

	var best *attemptOutcome
	anyViable := false
	for _, outcome := range outcomes {
		viable := !(outcome.quality.Score < 0.4 && len(outcome.sections) == 0)
		if viable {
			anyViable = true
		}
		if best == nil || outcome.quality.Score > best.quality.Score {
			best = outcome
		}
	}

	if best == nil || !anyViable {
		return nil, fmt.Errorf("%w: %s", errs.ParseFailed, path)
	}

	if err := o.db.Commit(best.matcher.Entries(), best.matcher.LearnedCount(), best.matcher.FalsePositives()); err != nil {
		log.Warn("section database commit failed", "error", err)
	}

	result := &Result{
		File: FileInfo{
			Name:    filepath.Base(path),
			Type:    fileTypeFor(kind),
			Pages:   pageCountFromLayouts(best.layouts),
			Scanned: best.strategyName == "ocr",
		},
		Layouts:        best.layouts,
		Sections:       toSectionOutputs(best.sections),
		UnknownHeaders: best.unknown,
		Quality:        best.quality,
		Metadata: ResultMetadata{
			StrategyUsed:    best.strategyName,
			FallbacksTried:  tried,
			ElapsedMs:       time.Since(start).Milliseconds(),
			RunID:           runID,
			LearnedVariants: best.matcher.LearnedCount(),
		},
	}
	return result, nil
}

// attempt runs one Extract→Analyze→Segment→Validate pass with src.
func (o *Orchestrator) attempt(ctx context.Context, src wordsource.Source, path string) (*attemptOutcome, error) {
	extractCtx, cancel := context.WithTimeout(ctx, extractTimeout)
	defer cancel()

	doc, _, err := src.Acquire(extractCtx, path)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: %s: %v", errs.StageTimeout, src.Name(), err)
		}
		return nil, err
	}

	entries := o.db.Snapshot()
	var embedder sections.EmbeddingProvider
	if o.cfg.EmbeddingsEnabled {
		embedder = o.embedder
	}
	matcher := sections.NewMatcher(entries, embedder, o.cfg.EmbeddingSimThreshold)

	hcfg := headers.Config{ThresholdOverride: o.cfg.HeaderScoreThresholdOverride}
	layouts, secs, unknown, _ := analyze(doc, matcher, hcfg)

	q := quality(secs, unknown, doc.PageCount())

	return &attemptOutcome{
		strategyName: src.Name(),
		layouts:      layouts,
		sections:     secs,
		unknown:      unknown,
		quality:      q,
		matcher:      matcher,
	}, nil
}

func fileTypeFor(kind docKind) string {
	switch kind {
	case kindPDFText, kindPDFScanned:
		return "pdf"
	case kindDocx:
		return "docx"
	case kindImage:
		return "image"
	default:
		return "unknown"
	}
}

func pageCountFromLayouts(layouts []LayoutInfo) int {
	max := 0
	for _, l := range layouts {
		if l.Page+1 > max {
			max = l.Page + 1
		}
	}
	return max
}
