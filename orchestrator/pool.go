package orchestrator

import (
	"context"
	"log/slog"
	"runtime"
	"sync"
	"sync/atomic"
)

// Pool bounds how many documents are parsed concurrently: one worker
// per document at a time, no intra-document parallelism (§5). All
// workers pull from a single shared queue.
type Pool struct {
	orch        *Orchestrator
	logger      *slog.Logger
	workerCount int
	queueSize   int

	inFlight atomic.Int32
}

type job struct {
	path string
	resp chan<- Outcome
}

// Outcome pairs one Parse call's result with the path it was for.
type Outcome struct {
	Path   string
	Result *Result
	Err    error
}

// PoolConfig configures a new Pool.
type PoolConfig struct {
	WorkerCount int // default: runtime.NumCPU()
	QueueSize   int // default: 1024
	Logger      *slog.Logger
}

// NewPool creates a Pool bound to orch.
func NewPool(orch *Orchestrator, cfg PoolConfig) *Pool {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	workers := cfg.WorkerCount
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	queueSize := cfg.QueueSize
	if queueSize <= 0 {
		queueSize = 1024
	}
	return &Pool{
		orch:        orch,
		logger:      logger.With("pool", "document-parse", "workers", workers),
		workerCount: workers,
		queueSize:   queueSize,
	}
}

func (p *Pool) worker(ctx context.Context, id int, queue <-chan job) {
	log := p.logger.With("worker", id)
	for {
		select {
		case <-ctx.Done():
			return
		case j, ok := <-queue:
			if !ok {
				return
			}
			p.inFlight.Add(1)
			log.Debug("parsing", "file", j.path)
			result, err := p.orch.Parse(ctx, j.path)
			p.inFlight.Add(-1)
			if err != nil {
				log.Warn("parse failed", "file", j.path, "error", err)
			}
			j.resp <- Outcome{Path: j.path, Result: result, Err: err}
		}
	}
}

// InFlight reports how many documents are currently being parsed.
func (p *Pool) InFlight() int { return int(p.inFlight.Load()) }

// ParseAll parses every path in paths, bounded by the pool's worker
// count, and returns one Outcome per path in the same order as paths.
// The pool may be reused for further ParseAll calls afterward.
func (p *Pool) ParseAll(ctx context.Context, paths []string) []Outcome {
	results := make([]Outcome, len(paths))
	queue := make(chan job, p.queueSize)

	respChans := make([]chan Outcome, len(paths))
	for i := range paths {
		respChans[i] = make(chan Outcome, 1)
	}

	var wg sync.WaitGroup
	for i := 0; i < p.workerCount; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			p.worker(ctx, id, queue)
		}(i)
	}

	go func() {
		for i, path := range paths {
			select {
			case <-ctx.Done():
				close(queue)
				return
			case queue <- job{path: path, resp: respChans[i]}:
			}
		}
		close(queue)
	}()

	for i := range paths {
		select {
		case <-ctx.Done():
			results[i] = Outcome{Path: paths[i], Err: ctx.Err()}
		case out := <-respChans[i]:
			results[i] = out
		}
	}
	wg.Wait()
	return results
}
