package tokendex

import (
	"strings"
	"testing"
)

// ═══════════════════════════════════════════════════════════════════════════════
// BASELINE ENGINE TESTS
// ═══════════════════════════════════════════════════════════════════════════════

func TestBaselineIndex_Count(t *testing.T) {
	idx := NewBaselineIndex()
	idx.Add(1, "quick brown fox")
	idx.Add(2, "lazy brown dog")
	idx.Add(3, "quick red fox")

	tests := []struct {
		query string
		want  uint64
	}{
		{"brown", 2},
		{"quick fox", 2},
		{"quick brown", 1},
		{"missing", 0},
		{"", 0},
	}
	for _, tt := range tests {
		if got := idx.Count(tt.query); got != tt.want {
			t.Errorf("Count(%q) = %d, want %d", tt.query, got, tt.want)
		}
	}
}

func TestBaselineIndex_CountMatchesAnalysis(t *testing.T) {
	idx := NewBaselineIndex()
	idx.Add(1, "running dogs")

	// Query and document stem to the same roots.
	if got := idx.Count("run dog"); got != 1 {
		t.Errorf("Count(run dog) = %d, want 1 (stemming applies to both sides)", got)
	}
}

func TestBaselineIndex_TopK(t *testing.T) {
	idx := NewBaselineIndex()
	idx.Add(1, "gopher gopher gopher burrow")
	idx.Add(2, "gopher meadow meadow meadow")
	idx.Add(3, "badger badger badger sett")

	hits := idx.TopK("gopher", 10)
	if len(hits) != 2 {
		t.Fatalf("TopK() returned %d hits, want 2", len(hits))
	}
	// Doc 1 mentions the term three times in a same-length document; it must
	// outrank doc 2's single mention.
	if hits[0].DocID != 1 || hits[1].DocID != 2 {
		t.Errorf("TopK() order = [%d %d], want [1 2]", hits[0].DocID, hits[1].DocID)
	}
	if hits[0].Score <= hits[1].Score {
		t.Errorf("scores not descending: %f <= %f", hits[0].Score, hits[1].Score)
	}
}

func TestBaselineIndex_AddLines(t *testing.T) {
	corpus := "gopher gopher gopher burrow\ngopher meadow\n"
	idx := NewBaselineIndex()
	if err := idx.AddLines(strings.NewReader(corpus)); err != nil {
		t.Fatalf("AddLines() error: %v", err)
	}

	if got := idx.Count("gopher"); got != 2 {
		t.Errorf("Count(gopher) = %d, want 2", got)
	}

	// Repeated terms must survive loading: if the corpus were collapsed to
	// token sets on the way in, both documents would carry identical stats
	// (one "gopher", one other term) and could not be told apart by score.
	hits := idx.TopK("gopher", 10)
	if len(hits) != 2 {
		t.Fatalf("TopK() returned %d hits, want 2", len(hits))
	}
	if hits[0].DocID != 0 {
		t.Errorf("TopK() best = doc %d, want doc 0 (three mentions)", hits[0].DocID)
	}
	if hits[0].Score <= hits[1].Score {
		t.Errorf("scores not strictly descending: %f <= %f", hits[0].Score, hits[1].Score)
	}
}

func TestBaselineIndex_TopKLimit(t *testing.T) {
	idx := NewBaselineIndex()
	for i := uint32(0); i < 5; i++ {
		idx.Add(i, "shared token set")
	}

	if hits := idx.TopK("shared", 3); len(hits) != 3 {
		t.Errorf("TopK(3) returned %d hits, want 3", len(hits))
	}
	if hits := idx.TopK("shared", 0); len(hits) != 0 {
		t.Errorf("TopK(0) returned %d hits, want 0", len(hits))
	}
}
