// Package batch assembles many profile documents concurrently.
//
// A failing document is logged and reported as skipped; it never stops the
// run. Records come back sorted by owner display name.
package batch

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"runtime"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/hyperifyio/lattes/internal/profile"
	"github.com/hyperifyio/lattes/internal/record"
	"github.com/hyperifyio/lattes/internal/store"
)

// Assembler turns one document into a record.
type Assembler interface {
	Assemble(docID string, content []byte) (record.Professor, error)
}

// Source is one input document.
type Source struct {
	ID   string
	Load func(ctx context.Context) ([]byte, error)
}

// Skip names a document that produced no record.
type Skip struct {
	DocID   string `json:"doc_id"`
	Outcome string `json:"outcome"`
	Reason  string `json:"reason"`
}

// Document describes one input as it was processed.
type Document struct {
	ID      string `json:"id"`
	SHA256  string `json:"sha256,omitempty"`
	Bytes   int    `json:"bytes"`
	Outcome string `json:"outcome"`
}

// Report is the result of a run. Documents and Skipped follow input order;
// Records are sorted by display name.
type Report struct {
	Records   []record.Professor
	Skipped   []Skip
	Documents []Document
}

// Runner processes sources with a bounded number of workers.
type Runner struct {
	Assembler Assembler
	// Workers bounds concurrent assemblies; zero means runtime.NumCPU().
	Workers int
	Logger  zerolog.Logger
	Metrics *Metrics
}

type result struct {
	doc  Document
	rec  record.Professor
	skip *Skip
}

// Run assembles every source. Per-document failures become Skipped
// entries. The returned error is non-nil only when ctx is canceled, in which
// case the report covers the documents finished before cancellation.
func (r *Runner) Run(ctx context.Context, sources []Source) (Report, error) {
	workers := r.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	assembler := r.Assembler
	if assembler == nil {
		assembler = profile.New()
	}

	results := make([]*result, len(sources))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, src := range sources {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if gctx.Err() != nil {
				return nil
			}
			results[i] = r.process(gctx, assembler, src)
			return nil
		})
	}
	_ = g.Wait()

	var rep Report
	for _, res := range results {
		if res == nil {
			continue
		}
		rep.Documents = append(rep.Documents, res.doc)
		if res.skip != nil {
			rep.Skipped = append(rep.Skipped, *res.skip)
			continue
		}
		rep.Records = append(rep.Records, res.rec)
	}
	SortRecords(rep.Records)

	r.Logger.Info().
		Int("documents", len(sources)).
		Int("records", len(rep.Records)).
		Int("skipped", len(rep.Skipped)).
		Msg("batch complete")
	if err := ctx.Err(); err != nil {
		return rep, fmt.Errorf("batch interrupted: %w", err)
	}
	return rep, nil
}

func (r *Runner) process(ctx context.Context, assembler Assembler, src Source) *result {
	res := &result{doc: Document{ID: src.ID}}
	skip := func(outcome string, err error) *result {
		res.doc.Outcome = outcome
		res.skip = &Skip{DocID: src.ID, Outcome: outcome, Reason: err.Error()}
		r.Metrics.IncrementOutcome(outcome)
		r.Logger.Warn().Str("doc", src.ID).Str("outcome", outcome).Err(err).Msg("document skipped")
		return res
	}

	content, err := src.Load(ctx)
	if err != nil {
		return skip(OutcomeLoadError, err)
	}
	sum := sha256.Sum256(content)
	res.doc.SHA256 = hex.EncodeToString(sum[:])
	res.doc.Bytes = len(content)

	start := time.Now()
	rec, err := assembler.Assemble(src.ID, content)
	r.Metrics.ObserveAssembly(time.Since(start))
	switch {
	case errors.Is(err, profile.ErrEmptyIdentity):
		return skip(OutcomeEmptyIdentity, err)
	case err != nil:
		return skip(OutcomeAssemblyError, err)
	}

	res.doc.Outcome = OutcomeAssembled
	res.rec = rec
	r.Metrics.IncrementOutcome(OutcomeAssembled)
	r.Logger.Debug().Str("doc", src.ID).Str("name", rec.Identification.Name).Msg("document assembled")
	return res
}

// SortRecords orders records by owner display name, keeping input order
// among equal names.
func SortRecords(recs []record.Professor) {
	sort.SliceStable(recs, func(i, j int) bool {
		return recs[i].Identification.Name < recs[j].Identification.Name
	})
}

// FromStore returns one Source per document saved in st, in ID order.
func FromStore(st *store.Store) ([]Source, error) {
	ids, err := st.List()
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	sources := make([]Source, 0, len(ids))
	for _, id := range ids {
		sources = append(sources, Source{
			ID:   id,
			Load: func(ctx context.Context) ([]byte, error) { return st.Load(ctx, id) },
		})
	}
	return sources, nil
}
