package tokendex

import (
	"fmt"

	"github.com/RoaringBitmap/roaring"
	"github.com/apache/arrow/go/v17/arrow"
	"github.com/apache/arrow/go/v17/arrow/array"
)

// ═══════════════════════════════════════════════════════════════════════════════
// PREDICATES: The Filter Language Pushed Down to Batches
// ═══════════════════════════════════════════════════════════════════════════════
// The variant set is fixed and small, so predicates are a closed tagged type
// evaluated by a single visitor — not an open interface hierarchy:
//
//	False                      matches nothing (the empty-query reduction)
//	ColumnEquals(col)          boolean bucket column is true
//	ListContains(col, token)   list bucket column contains token
//	And(left, right)           both sides match
//
// Evaluation is a pure read over one record batch, returning the matching row
// set as a roaring bitmap. Only the columns a predicate names are touched, so
// a query over N tokens reads N columns regardless of schema width.
// ═══════════════════════════════════════════════════════════════════════════════

// PredicateKind tags the predicate variant.
type PredicateKind uint8

const (
	PredFalse PredicateKind = iota
	PredColumnEquals
	PredListContains
	PredAnd
)

// Predicate is one node of a filter expression over bucket columns.
type Predicate struct {
	Kind   PredicateKind
	Column string     // ColumnEquals, ListContains
	Token  string     // ListContains
	Left   *Predicate // And
	Right  *Predicate // And
}

// False matches no documents.
func False() Predicate {
	return Predicate{Kind: PredFalse}
}

// ColumnEquals matches documents whose boolean bucket column is set.
func ColumnEquals(column string) Predicate {
	return Predicate{Kind: PredColumnEquals, Column: column}
}

// ListContains matches documents whose list bucket column contains token.
func ListContains(column, token string) Predicate {
	return Predicate{Kind: PredListContains, Column: column, Token: token}
}

// And matches documents satisfying both sides.
func And(left, right Predicate) Predicate {
	return Predicate{Kind: PredAnd, Left: &left, Right: &right}
}

func (p Predicate) String() string {
	switch p.Kind {
	case PredFalse:
		return "false"
	case PredColumnEquals:
		return fmt.Sprintf("(%s = true)", p.Column)
	case PredListContains:
		return fmt.Sprintf("(%s contains %s)", p.Column, p.Token)
	case PredAnd:
		return fmt.Sprintf("(%s and %s)", p.Left, p.Right)
	default:
		return fmt.Sprintf("predicate-kind-%d", uint8(p.Kind))
	}
}

// Evaluate filters one batch, returning the set of matching row positions.
// The record is read-only; concurrent evaluation of the same predicate over
// different batches is safe.
func (p Predicate) Evaluate(rec arrow.Record) (*roaring.Bitmap, error) {
	switch p.Kind {
	case PredFalse:
		return roaring.New(), nil

	case PredColumnEquals:
		col, err := recordColumn(rec, p.Column)
		if err != nil {
			return nil, err
		}
		flags, ok := col.(*array.Boolean)
		if !ok {
			return nil, fmt.Errorf("%w: column %q is %T, want boolean", ErrNotAnIndex, p.Column, col)
		}
		rows := roaring.New()
		for i := 0; i < flags.Len(); i++ {
			if flags.Value(i) {
				rows.Add(uint32(i))
			}
		}
		return rows, nil

	case PredListContains:
		col, err := recordColumn(rec, p.Column)
		if err != nil {
			return nil, err
		}
		list, ok := col.(*array.List)
		if !ok {
			return nil, fmt.Errorf("%w: column %q is %T, want list", ErrNotAnIndex, p.Column, col)
		}
		values, ok := list.ListValues().(*array.String)
		if !ok {
			return nil, fmt.Errorf("%w: column %q holds %T, want string", ErrNotAnIndex, p.Column, list.ListValues())
		}
		rows := roaring.New()
		for i := 0; i < list.Len(); i++ {
			start, end := list.ValueOffsets(i)
			for j := start; j < end; j++ {
				if values.Value(int(j)) == p.Token {
					rows.Add(uint32(i))
					break
				}
			}
		}
		return rows, nil

	case PredAnd:
		left, err := p.Left.Evaluate(rec)
		if err != nil {
			return nil, err
		}
		// Short-circuit: an empty left side cannot intersect to anything.
		if left.IsEmpty() {
			return left, nil
		}
		right, err := p.Right.Evaluate(rec)
		if err != nil {
			return nil, err
		}
		return roaring.And(left, right), nil

	default:
		return nil, fmt.Errorf("unknown predicate kind %d", uint8(p.Kind))
	}
}

func recordColumn(rec arrow.Record, name string) (arrow.Array, error) {
	indices := rec.Schema().FieldIndices(name)
	if len(indices) == 0 {
		return nil, fmt.Errorf("%w: column %q not in schema", ErrNotAnIndex, name)
	}
	return rec.Column(indices[0]), nil
}
