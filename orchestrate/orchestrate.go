// Package orchestrate runs the full regenerate pass: reconcile every chunk,
// then generate the modules of every chunk whose reconciliation succeeded.
package orchestrate

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"go.uber.org/multierr"

	"github.com/minios-linux/resxgen/generate"
	"github.com/minios-linux/resxgen/lockfile"
	"github.com/minios-linux/resxgen/reconcile"
	"github.com/minios-linux/resxgen/store"
)

// ChunkSummary is the outcome of one chunk.
type ChunkSummary struct {
	Chunk        string
	Reconcile    *reconcile.Result
	ReconcileErr error
	// Generate is nil when the chunk was not generated.
	Generate    *generate.ChunkResult
	GenerateErr error
}

// OK reports whether both phases succeeded.
func (c *ChunkSummary) OK() bool {
	return c.ReconcileErr == nil && c.GenerateErr == nil && c.Generate != nil
}

// Summary is the outcome of a regenerate pass, one entry per chunk in
// discovery order.
type Summary struct {
	Chunks []*ChunkSummary
}

// Failed returns the chunks that failed in either phase.
func (s *Summary) Failed() []string {
	var out []string
	for _, c := range s.Chunks {
		if !c.OK() {
			out = append(out, c.Chunk)
		}
	}
	return out
}

// Counts returns the number of succeeded and failed chunks.
func (s *Summary) Counts() (ok, failed int) {
	for _, c := range s.Chunks {
		if c.OK() {
			ok++
		} else {
			failed++
		}
	}
	return
}

// Orchestrator sequences reconciliation and generation over a store.
type Orchestrator struct {
	store *store.Store
}

// New returns an Orchestrator for s.
func New(s *store.Store) *Orchestrator {
	return &Orchestrator{store: s}
}

// RegenerateAll holds the run lock for the whole pass. All reconciliations
// complete before any generation starts. Per-chunk failures are recorded in
// the summary and joined in the returned error; they never stop siblings.
func (o *Orchestrator) RegenerateAll(ctx context.Context) (*Summary, error) {
	cfg := o.store.Config()

	lock, err := o.store.Lock()
	if err != nil {
		return nil, err
	}
	defer lock.Close()

	lf, err := lockfile.Load(cfg.DistFolder)
	if err != nil {
		return nil, err
	}

	chunks, err := o.store.ChunkNames()
	if err != nil {
		return nil, err
	}

	sum := &Summary{Chunks: make([]*ChunkSummary, len(chunks))}
	byName := make(map[string]*ChunkSummary, len(chunks))
	for i, c := range chunks {
		sum.Chunks[i] = &ChunkSummary{Chunk: c}
		byName[c] = sum.Chunks[i]
	}

	slog.InfoContext(ctx, "Regenerating src files", slog.Int("chunks", len(chunks)))
	rec := reconcile.New(o.store)
	var wg sync.WaitGroup
	for _, cs := range sum.Chunks {
		wg.Add(1)
		go func(cs *ChunkSummary) {
			defer wg.Done()
			cs.Reconcile, cs.ReconcileErr = rec.Reconcile(ctx, cs.Chunk)
		}(cs)
	}
	wg.Wait()

	var ready []string
	for _, cs := range sum.Chunks {
		if cs.ReconcileErr != nil {
			slog.WarnContext(ctx, "Skipping generation of chunk",
				slog.String("chunk", cs.Chunk),
				slog.Any("error", cs.ReconcileErr))
			continue
		}
		ready = append(ready, cs.Chunk)
	}

	slog.InfoContext(ctx, "Regenerating dist files", slog.Int("chunks", len(ready)))
	gen := generate.New(o.store, lf)
	for _, r := range gen.GenerateChunks(ctx, ready) {
		cs := byName[r.Chunk]
		cs.Generate, cs.GenerateErr = r, r.Err
	}

	var errs error
	for _, cs := range sum.Chunks {
		if cs.ReconcileErr != nil {
			errs = multierr.Append(errs, fmt.Errorf("reconciling %s: %w", cs.Chunk, cs.ReconcileErr))
		}
		if cs.GenerateErr != nil {
			errs = multierr.Append(errs, fmt.Errorf("generating %s: %w", cs.Chunk, cs.GenerateErr))
		}
	}

	lf.Clean(chunks)
	if err := lf.Save(); err != nil {
		errs = multierr.Append(errs, err)
	}

	return sum, errs
}
