package tokendex

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/RoaringBitmap/roaring"
	"github.com/apache/arrow/go/v17/arrow"
	"github.com/apache/arrow/go/v17/arrow/array"
	"github.com/apache/arrow/go/v17/arrow/ipc"
	"github.com/apache/arrow/go/v17/arrow/memory"
	"golang.org/x/sync/errgroup"
)

// ═══════════════════════════════════════════════════════════════════════════════
// COLUMNAR STORAGE: Arrow IPC Files
// ═══════════════════════════════════════════════════════════════════════════════
// Batches persist as one Arrow IPC file with zstd-compressed record batches.
// The file's schema is the index's only metadata: column names alone are
// enough to reconstruct the bucket plan (see PlanFromSchema), so there is no
// separate plan file to keep in sync.
//
// Write-once, read-many: batches are appended during the single indexing pass
// and never updated. Each flushed batch is self-contained, so an abandoned
// write leaves every already-flushed batch durable and queryable.
// ═══════════════════════════════════════════════════════════════════════════════

// ErrScan wraps failures while evaluating a query against stored batches.
// This layer does not retry; retry policy belongs to whoever owns the storage.
var ErrScan = errors.New("index scan failed")

// WriteIndex drains the encoder into a new index file at path. The context is
// checked between chunks, which are the only suspension points of the pass;
// cancelling mid-write keeps already-flushed batches valid but leaves an
// incomplete file, which the caller should remove.
func WriteIndex(ctx context.Context, path string, enc *Encoder) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating index file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("closing index file: %w", cerr)
		}
	}()

	w, err := ipc.NewFileWriter(f,
		ipc.WithSchema(enc.Schema()),
		ipc.WithAllocator(memory.DefaultAllocator),
		ipc.WithZstd(),
	)
	if err != nil {
		return fmt.Errorf("creating index writer: %w", err)
	}

	batches, rows := 0, int64(0)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		rec, err := enc.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
		werr := w.Write(rec)
		rows += rec.NumRows()
		rec.Release()
		if werr != nil {
			return fmt.Errorf("writing batch %d: %w", batches, werr)
		}
		batches++
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("finalizing index file: %w", err)
	}

	slog.Info("wrote index",
		slog.String("path", path),
		slog.Int("batches", batches),
		slog.Int64("documents", rows),
		slog.Int("columns", len(enc.Schema().Fields())))
	return nil
}

// Index is an opened, immutable index file. Safe for concurrent queries; the
// underlying reader is only touched by the goroutine inside Scan that loads
// batches, while evaluation fans out over already-loaded records.
type Index struct {
	f     *os.File
	r     *ipc.FileReader
	names []string
	plan  Plan
}

// OpenIndex opens an index file and validates that its schema has the
// id-plus-buckets shape. Anything else surfaces as ErrNotAnIndex.
func OpenIndex(path string) (*Index, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening index file: %w", err)
	}
	r, err := ipc.NewFileReader(f, ipc.WithAllocator(memory.DefaultAllocator))
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("%w: %v", ErrNotAnIndex, err)
	}

	fields := r.Schema().Fields()
	names := make([]string, len(fields))
	for i, field := range fields {
		names[i] = field.Name
	}
	plan, err := PlanFromSchema(names)
	if err != nil {
		r.Close()
		f.Close()
		return nil, err
	}

	slog.Info("opened index",
		slog.String("path", path),
		slog.Int("batches", r.NumRecords()),
		slog.Int("buckets", len(plan)))

	return &Index{f: f, r: r, names: names, plan: plan}, nil
}

func (ix *Index) Close() error {
	rerr := ix.r.Close()
	ferr := ix.f.Close()
	if rerr != nil {
		return rerr
	}
	return ferr
}

// ColumnNames returns the schema names in written order: the id column first,
// then one name per bucket.
func (ix *Index) ColumnNames() []string {
	return ix.names
}

// Plan returns the bucket plan recovered from the stored schema.
func (ix *Index) Plan() Plan {
	return ix.plan
}

// Scan pushes a predicate down over every stored batch and returns the total
// number of matching documents. Batches are loaded sequentially (the IPC
// reader is not safe for concurrent access) but evaluated in parallel; counts
// are summed, never interleaved.
func (ix *Index) Scan(ctx context.Context, predicate Predicate) (uint64, error) {
	counts := make([]uint64, ix.r.NumRecords())
	err := ix.scanBatches(ctx, predicate, func(batch int, rec recordWithRows) error {
		counts[batch] = rec.rows.GetCardinality()
		return nil
	})
	if err != nil {
		return 0, err
	}
	var total uint64
	for _, c := range counts {
		total += c
	}
	return total, nil
}

// ScanIDs evaluates a predicate and returns the ids of matching documents, in
// arrival order (batch order, then row order within each batch).
func (ix *Index) ScanIDs(ctx context.Context, predicate Predicate) ([]uint64, error) {
	perBatch := make([][]uint64, ix.r.NumRecords())
	err := ix.scanBatches(ctx, predicate, func(batch int, rec recordWithRows) error {
		ids, ok := rec.rec.Column(0).(*array.Uint64)
		if !ok {
			return fmt.Errorf("%w: id column is %T, want uint64", ErrNotAnIndex, rec.rec.Column(0))
		}
		matched := make([]uint64, 0, rec.rows.GetCardinality())
		it := rec.rows.Iterator()
		for it.HasNext() {
			matched = append(matched, ids.Value(int(it.Next())))
		}
		perBatch[batch] = matched
		return nil
	})
	if err != nil {
		return nil, err
	}
	var all []uint64
	for _, ids := range perBatch {
		all = append(all, ids...)
	}
	return all, nil
}

type recordWithRows struct {
	rec  arrow.Record
	rows *roaring.Bitmap
}

// scanBatches loads each batch on the calling goroutine and fans evaluation
// out to workers. Workers see only retained, immutable records and write only
// their own batch slot, so no locks are needed.
func (ix *Index) scanBatches(ctx context.Context, predicate Predicate, visit func(batch int, rec recordWithRows) error) error {
	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < ix.r.NumRecords(); i++ {
		if ctx.Err() != nil {
			// A worker failed or the caller cancelled; either way stop
			// loading batches and report the first cause.
			if err := g.Wait(); err != nil {
				return err
			}
			return ctx.Err()
		}
		rec, err := ix.r.RecordAt(i)
		if err != nil {
			_ = g.Wait()
			return fmt.Errorf("%w: reading batch %d: %v", ErrScan, i, err)
		}
		batch := i
		g.Go(func() error {
			defer rec.Release()
			rows, err := predicate.Evaluate(rec)
			if err != nil {
				return fmt.Errorf("%w: batch %d: %v", ErrScan, batch, err)
			}
			return visit(batch, recordWithRows{rec: rec, rows: rows})
		})
	}
	return g.Wait()
}

// Count plans and runs a containment query for a raw query string: the query
// is tokenized exactly like indexed documents, and a document matches when it
// contains every query token.
//
// A query that tokenizes to nothing yields the False predicate and a count of
// zero — the empty reduction matches nothing, not everything. Callers wanting
// match-all semantics for an empty query must special-case it above this layer.
func (ix *Index) Count(ctx context.Context, query string) (uint64, error) {
	tokens := UniqueTokens(Tokenize(query))
	return ix.Scan(ctx, PlanQuery(tokens, ix.names))
}

// Search is the id-returning variant of Count.
func (ix *Index) Search(ctx context.Context, query string) ([]uint64, error) {
	tokens := UniqueTokens(Tokenize(query))
	return ix.ScanIDs(ctx, PlanQuery(tokens, ix.names))
}
