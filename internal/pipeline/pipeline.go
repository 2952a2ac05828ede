// Package pipeline drives a full ingest run: extract verse records from one
// source file, annotate them, and commit them to the store in batches.
package pipeline

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	verrors "github.com/FocuswithJustin/versetag/core/errors"
	"github.com/FocuswithJustin/versetag/core/semantic"
	"github.com/FocuswithJustin/versetag/core/verse"
	"github.com/FocuswithJustin/versetag/internal/formats"
	"github.com/FocuswithJustin/versetag/internal/formats/osis"
	"github.com/FocuswithJustin/versetag/internal/formats/usfx"
	"github.com/FocuswithJustin/versetag/internal/logging"
	"github.com/FocuswithJustin/versetag/internal/store"
)

// DefaultBatchSize is the number of verses per transaction.
const DefaultBatchSize = 2000

// Config configures one Runner.
type Config struct {
	Store     *store.Store
	Annotator *semantic.Annotator

	// Translation tags every row written by this run.
	Translation string

	// Dialect forces a source dialect. Empty means sniff the file head.
	Dialect string

	// BatchSize is verses per transaction. Zero means DefaultBatchSize.
	BatchSize int

	// Workers is the annotation fan-out per batch. Zero or one means the
	// batch is annotated in a single call.
	Workers int

	// Patch switches to repair mode: fill text only where the stored text
	// is empty, and write no annotations.
	Patch bool
}

// Result summarizes one completed run.
type Result struct {
	RunID       string
	Dialect     string
	Stats       formats.Stats
	Batches     int
	Verses      int
	Annotations int
	Elapsed     time.Duration
}

// Runner executes ingest runs. Batches commit independently: a run that
// fails mid-file keeps its already committed batches.
type Runner struct {
	cfg Config
}

// New builds a Runner, filling config defaults.
func New(cfg Config) *Runner {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	return &Runner{cfg: cfg}
}

// Run ingests one source file. The returned Result is valid even on error,
// reflecting the work committed before the failure.
func (r *Runner) Run(ctx context.Context, path string) (Result, error) {
	res := Result{RunID: uuid.NewString()}
	ctx = logging.WithRunID(ctx, res.RunID)
	start := time.Now()

	src, err := formats.Open(path)
	if err != nil {
		return res, err
	}
	defer src.Close()

	dialect := r.cfg.Dialect
	if dialect == "" {
		dialect, err = src.DetectDialect()
		if err != nil {
			return res, err
		}
	}
	res.Dialect = dialect

	var extractor formats.Extractor
	switch dialect {
	case formats.DialectOSIS:
		extractor = &osis.Extractor{SkipEmpty: r.cfg.Patch}
	case formats.DialectUSFX:
		extractor = usfx.New()
	default:
		return res, verrors.NewUnsupported("dialect", dialect)
	}

	logging.IngestStart(ctx, path, r.cfg.Translation, dialect,
		"patch", r.cfg.Patch, "batch_size", r.cfg.BatchSize, "workers", r.cfg.Workers)

	batch := make([]verse.Record, 0, r.cfg.BatchSize)
	stats, err := extractor.Extract(src, r.cfg.Translation, func(rec verse.Record) error {
		batch = append(batch, rec)
		if len(batch) < r.cfg.BatchSize {
			return nil
		}
		if err := r.commitBatch(ctx, batch, &res); err != nil {
			return err
		}
		batch = batch[:0]
		return nil
	})
	res.Stats = stats
	if err != nil {
		return res, err
	}
	if err := r.commitBatch(ctx, batch, &res); err != nil {
		return res, err
	}

	res.Elapsed = time.Since(start)
	logging.IngestDone(ctx, path, stats.Verses, stats.Skipped(), stats.AnomalousRefs, res.Elapsed,
		"batches", res.Batches)
	return res, nil
}

// commitBatch writes one batch inside a single transaction. Any failure
// rolls the whole batch back and aborts the run.
func (r *Runner) commitBatch(ctx context.Context, batch []verse.Record, res *Result) error {
	if len(batch) == 0 {
		return nil
	}

	var anns []verse.Annotation
	if !r.cfg.Patch {
		var err error
		anns, err = r.annotate(ctx, batch)
		if err != nil {
			return err
		}
	}

	tx, err := r.cfg.Store.Begin(ctx)
	if err != nil {
		logging.StoreError(ctx, "begin", err)
		return err
	}

	for _, rec := range batch {
		if r.cfg.Patch {
			err = r.cfg.Store.PatchVerse(ctx, tx, rec)
		} else {
			err = r.cfg.Store.UpsertVerse(ctx, tx, rec)
		}
		if err != nil {
			tx.Rollback()
			logging.StoreError(ctx, "upsert_verse", err, "stable_id", rec.StableID)
			return err
		}
	}
	for _, ann := range anns {
		if err := r.cfg.Store.UpsertAnnotation(ctx, tx, ann); err != nil {
			tx.Rollback()
			logging.StoreError(ctx, "upsert_annotation", err, "stable_id", ann.StableID)
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		logging.StoreError(ctx, "commit", err)
		return err
	}

	res.Batches++
	res.Verses += len(batch)
	res.Annotations += len(anns)
	logging.BatchCommitted(ctx, r.cfg.Translation, len(batch), len(anns), res.Verses+res.Annotations)
	return nil
}

// annotate fans one batch out across Workers chunks. Output order matches
// the input batch regardless of worker scheduling.
func (r *Runner) annotate(ctx context.Context, batch []verse.Record) ([]verse.Annotation, error) {
	workers := r.cfg.Workers
	if workers <= 1 || len(batch) <= workers {
		return r.cfg.Annotator.Annotate(ctx, batch)
	}

	out := make([]verse.Annotation, len(batch))
	chunk := (len(batch) + workers - 1) / workers

	var wg sync.WaitGroup
	var mu sync.Mutex
	var firstErr error

	for start := 0; start < len(batch); start += chunk {
		end := start + chunk
		if end > len(batch) {
			end = len(batch)
		}
		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()
			anns, err := r.cfg.Annotator.Annotate(ctx, batch[start:end])
			if err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = err
				}
				mu.Unlock()
				return
			}
			copy(out[start:end], anns)
		}(start, end)
	}
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	return out, nil
}
