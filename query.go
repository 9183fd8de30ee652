package tokendex

import (
	"sort"
)

// ═══════════════════════════════════════════════════════════════════════════════
// QUERY PLANNING: Tokens → Predicate
// ═══════════════════════════════════════════════════════════════════════════════
// For each query token, compute the Single-typed column name it would have and
// binary search the stored schema names for it:
//
//	exact hit → the token owns a Single bucket; ColumnEquals on that column
//	miss      → the insertion point locates the enclosing bucket; the token is
//	            (at most) somewhere in that bucket's list; ListContains
//
// The miss case clamps insertion points below 1 to 1: the id column occupies
// position 0, so the first data column is index 1. Everything AND-reduces.
//
// This is the query-time half of the resolution rule in Plan.Resolve; the two
// agree because column names sort exactly like (key, type) pairs.
// ═══════════════════════════════════════════════════════════════════════════════

// PlanQuery builds the conjunctive predicate for a token set against the
// stored column names (id column first, bucket columns in plan order).
//
// Token order does not affect the matched set, only the And tree shape; the
// tokens are sorted so the plan is deterministic for a given set.
//
// An empty token set reduces to False and therefore matches nothing. Callers
// expecting match-all semantics for an empty query must handle that above this
// layer; see the Count doc comment.
func PlanQuery(tokens []string, columnNames []string) Predicate {
	sorted := make([]string, len(tokens))
	copy(sorted, tokens)
	sort.Strings(sorted)

	predicate := False()
	first := true
	for _, token := range UniqueTokens(sorted) {
		needle := Bucket{Key: token, Type: BucketSingle}.ColumnName()
		idx := sort.SearchStrings(columnNames, needle)

		var p Predicate
		if idx < len(columnNames) && columnNames[idx] == needle {
			p = ColumnEquals(columnNames[idx])
		} else {
			if idx < 1 {
				idx = 1
			} else {
				idx--
			}
			p = ListContains(columnNames[idx], token)
		}

		if first {
			predicate = p
			first = false
		} else {
			predicate = And(predicate, p)
		}
	}
	return predicate
}
