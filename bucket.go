// Package tokendex implements a bucketed, column-oriented approximation of an
// inverted index over sets of tokens.
//
// ═══════════════════════════════════════════════════════════════════════════════
// WHAT IS A BUCKETED INDEX?
// ═══════════════════════════════════════════════════════════════════════════════
// A classic inverted index keeps one posting list per distinct token. That is
// exact, but for a large vocabulary it means a very large number of lists.
//
// The bucketed index takes a different trade: partition the token keyspace into
// a bounded number of ordered buckets, and store one COLUMN per bucket:
//
//	tokens:   apple  banana  cherry  date  ...  zebra
//	buckets:  [──── "apple" ────)[──── "date" ────)[──── tail ────)
//	columns:  bool or list<string>, one per bucket
//
// Every token maps to exactly one bucket by binary search, so a containment
// query over N tokens touches at most N columns out of a fixed total, no matter
// how large the vocabulary is. Buckets that the sample says hold exactly one
// distinct token are stored as a presence boolean (one bit per document);
// everything else degrades to a per-document token list.
//
// The same bucket plan drives both encoding and querying. It is recovered at
// query time purely from the stored column names, so no side file is needed.
// ═══════════════════════════════════════════════════════════════════════════════
package tokendex

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/apache/arrow/go/v17/arrow"
)

var (
	ErrBadColumnName = errors.New("column name does not encode a bucket")
	ErrNotAnIndex    = errors.New("schema does not have the id-plus-buckets shape")
)

// IDColumn is the name of the document id column. It is always the first field
// of an index schema; every other column encodes one bucket.
const IDColumn = "::id::"

// BucketType decides the storage shape of a bucket's column.
//
// Single must sort before Multi: bucket resolution always probes with an exact
// (token, Single) key first, and the plan's sort order has to agree with that.
type BucketType uint8

const (
	// BucketSingle stores only a presence boolean per document. Chosen when
	// the sample saw exactly one distinct token value at this boundary.
	BucketSingle BucketType = iota

	// BucketMulti stores the list of tokens that landed in the bucket's range.
	BucketMulti
)

func (t BucketType) String() string {
	switch t {
	case BucketSingle:
		return "single"
	case BucketMulti:
		return "multi"
	default:
		return fmt.Sprintf("bucket-type-%d", uint8(t))
	}
}

// Bucket is one boundary of the token keyspace partition. A bucket owns the
// range from its Key (inclusive) up to the next bucket's key.
type Bucket struct {
	Key  string
	Type BucketType
}

// ColumnName encodes a bucket losslessly into its column name: the boundary
// token, a colon, and the type digit. The digit ordering ("0" before "1")
// preserves Single-before-Multi when column names are compared as strings,
// which is what lets the query planner binary search the schema directly.
func (b Bucket) ColumnName() string {
	return fmt.Sprintf("%s:%d", b.Key, b.Type)
}

// ParseColumnName is the inverse of ColumnName. The boundary token may itself
// contain colons, so the split happens at the last one.
func ParseColumnName(name string) (Bucket, error) {
	i := strings.LastIndexByte(name, ':')
	if i < 0 || i+1 >= len(name) {
		return Bucket{}, fmt.Errorf("%w: %q", ErrBadColumnName, name)
	}
	switch name[i+1:] {
	case "0":
		return Bucket{Key: name[:i], Type: BucketSingle}, nil
	case "1":
		return Bucket{Key: name[:i], Type: BucketMulti}, nil
	default:
		return Bucket{}, fmt.Errorf("%w: %q", ErrBadColumnName, name)
	}
}

// Plan is the finalized, ordered bucket sequence governing one index.
//
// Invariants: strictly sorted by (Key, Type) with Single before Multi at equal
// keys, and the final bucket is always Multi so that tokens beyond every
// boundary still have a home. A Plan is immutable once built; the encoder and
// every query share it read-only.
type Plan []Bucket

// Resolve maps a token to its destination bucket index.
//
// The search probes for an exact (token, Single) match first. On a miss the
// insertion point locates the enclosing range: the bucket immediately before
// it, clamped to bucket 0 for tokens smaller than every boundary.
//
// This rule runs identically at index time and at query time. If the two ever
// disagreed, lookups would silently miss, so both paths call this one method.
func (p Plan) Resolve(token string) int {
	idx, found := sort.Find(len(p), func(i int) int {
		if c := strings.Compare(token, p[i].Key); c != 0 {
			return c
		}
		return int(BucketSingle) - int(p[i].Type)
	})
	if found || idx == 0 {
		return idx
	}
	return idx - 1
}

// ColumnNames returns the full schema name sequence: the id column followed by
// one encoded name per bucket, in plan order.
func (p Plan) ColumnNames() []string {
	names := make([]string, 0, len(p)+1)
	names = append(names, IDColumn)
	for _, b := range p {
		names = append(names, b.ColumnName())
	}
	return names
}

// Schema builds the Arrow schema for this plan: a non-nullable uint64 id
// column, then one boolean or list<utf8> column per bucket.
func (p Plan) Schema() *arrow.Schema {
	fields := make([]arrow.Field, 0, len(p)+1)
	fields = append(fields, arrow.Field{Name: IDColumn, Type: arrow.PrimitiveTypes.Uint64})
	for _, b := range p {
		var dt arrow.DataType
		switch b.Type {
		case BucketSingle:
			dt = arrow.FixedWidthTypes.Boolean
		default:
			dt = arrow.ListOf(arrow.BinaryTypes.String)
		}
		fields = append(fields, arrow.Field{Name: b.ColumnName(), Type: dt})
	}
	return arrow.NewSchema(fields, nil)
}

// PlanFromSchema reconstructs the bucket plan from a stored schema's column
// names. This is how a query against an already-built index recovers the plan:
// the names alone carry every (boundary, type) pair.
func PlanFromSchema(names []string) (Plan, error) {
	if len(names) < 2 || names[0] != IDColumn {
		return nil, fmt.Errorf("%w: got %d columns", ErrNotAnIndex, len(names))
	}
	plan := make(Plan, 0, len(names)-1)
	for _, name := range names[1:] {
		b, err := ParseColumnName(name)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrNotAnIndex, err)
		}
		plan = append(plan, b)
	}
	if plan[len(plan)-1].Type != BucketMulti {
		return nil, fmt.Errorf("%w: final bucket is not multi-valued", ErrNotAnIndex)
	}
	return plan, nil
}
