package tokendex

import (
	"errors"
	"fmt"
	"io"

	"github.com/apache/arrow/go/v17/arrow"
	"github.com/apache/arrow/go/v17/arrow/array"
	"github.com/apache/arrow/go/v17/arrow/memory"
)

// ═══════════════════════════════════════════════════════════════════════════════
// DOCUMENT ENCODING: Corpus → Columnar Batches
// ═══════════════════════════════════════════════════════════════════════════════
// The encoder streams documents through a finalized bucket plan and produces
// Arrow record batches of up to ChunkSize rows each.
//
// PER DOCUMENT:
// -------------
// 1. Append the id to the id column.
// 2. Resolve every token to its bucket by binary search (Plan.Resolve — the
//    exact rule the query planner uses).
// 3. Drain the staged tokens into the column builders:
//    - Single bucket → boolean: true iff at least one token resolved there
//    - Multi bucket  → list<string> of the staged tokens, traversal order
//
// PER CHUNK:
// ----------
// Once ChunkSize documents are staged (or the source ends), the builders are
// finalized into one immutable record and a fresh set is started. That bounds
// peak memory and makes every flushed batch independent: abandoning the pass
// between chunks never leaves a half-written batch behind.
// ═══════════════════════════════════════════════════════════════════════════════

// DefaultChunkSize is the number of documents per batch.
const DefaultChunkSize = 8192

// ErrEncode wraps failures while building a chunk. Batches emitted before the
// failing chunk remain valid.
var ErrEncode = errors.New("encoding chunk failed")

// EncoderOption configures an Encoder.
type EncoderOption func(*Encoder)

// WithChunkSize overrides the documents-per-batch limit. Any positive size is
// valid; batch boundaries carry no query-visible meaning.
func WithChunkSize(n int) EncoderOption {
	return func(e *Encoder) {
		if n > 0 {
			e.chunkSize = n
		}
	}
}

// WithAllocator overrides the Arrow allocator used for column builders.
func WithAllocator(mem memory.Allocator) EncoderOption {
	return func(e *Encoder) {
		if mem != nil {
			e.mem = mem
		}
	}
}

// Encoder is the pull-based chunk loop: each call to Next fully resolves one
// chunk before returning it. The only mutable state is the current chunk's
// builders, owned exclusively by the caller's goroutine until Next hands the
// finished record over.
type Encoder struct {
	src       DocumentSource
	plan      Plan
	schema    *arrow.Schema
	mem       memory.Allocator
	chunkSize int

	// staged[i] accumulates one document's tokens for bucket i, cleared after
	// every document.
	staged [][]string
	done   bool
}

// NewEncoder prepares an encoder for one pass of src through plan. The plan
// must already be finalized and sorted; the encoder never mutates it.
func NewEncoder(src DocumentSource, plan Plan, opts ...EncoderOption) *Encoder {
	e := &Encoder{
		src:       src,
		plan:      plan,
		schema:    plan.Schema(),
		mem:       memory.DefaultAllocator,
		chunkSize: DefaultChunkSize,
		staged:    make([][]string, len(plan)),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Schema returns the shared schema of every batch this encoder emits.
func (e *Encoder) Schema() *arrow.Schema {
	return e.schema
}

// Next encodes and returns the next batch. The caller owns the record and must
// Release it. Returns io.EOF once the source is exhausted and every document
// has been flushed.
func (e *Encoder) Next() (arrow.Record, error) {
	if e.done {
		return nil, io.EOF
	}

	builder := array.NewRecordBuilder(e.mem, e.schema)
	defer builder.Release()

	rows := 0
	for rows < e.chunkSize {
		doc, err := e.src.Next()
		if err == io.EOF {
			e.done = true
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrEncode, err)
		}
		if err := e.appendDocument(builder, doc); err != nil {
			return nil, fmt.Errorf("%w: document %d: %v", ErrEncode, doc.ID, err)
		}
		rows++
	}

	if rows == 0 {
		return nil, io.EOF
	}
	return builder.NewRecord(), nil
}

func (e *Encoder) appendDocument(builder *array.RecordBuilder, doc Document) error {
	idBuilder, ok := builder.Field(0).(*array.Uint64Builder)
	if !ok {
		return fmt.Errorf("id column has builder %T, want uint64", builder.Field(0))
	}
	idBuilder.Append(doc.ID)

	// Group the tokens by destination bucket.
	for _, token := range doc.Tokens {
		idx := e.plan.Resolve(token)
		e.staged[idx] = append(e.staged[idx], token)
	}

	// Drain every bucket into its builder. Most are empty for any given
	// document, and that is fine: empty list, false boolean.
	for i, bucket := range e.plan {
		field := builder.Field(i + 1)
		switch bucket.Type {
		case BucketSingle:
			b, ok := field.(*array.BooleanBuilder)
			if !ok {
				return fmt.Errorf("column %q has builder %T, want boolean", bucket.ColumnName(), field)
			}
			b.Append(len(e.staged[i]) > 0)
		default:
			b, ok := field.(*array.ListBuilder)
			if !ok {
				return fmt.Errorf("column %q has builder %T, want list", bucket.ColumnName(), field)
			}
			b.Append(true)
			values := b.ValueBuilder().(*array.StringBuilder)
			for _, token := range e.staged[i] {
				values.Append(token)
			}
		}
		e.staged[i] = e.staged[i][:0]
	}
	return nil
}
