package tokendex

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"math"
	"sort"
	"sync"

	"github.com/RoaringBitmap/roaring"
)

// ═══════════════════════════════════════════════════════════════════════════════
// BASELINE: A Conventional Inverted Index
// ═══════════════════════════════════════════════════════════════════════════════
// The baseline exists to benchmark the bucketed design against, nothing more.
// It is the classic shape: one roaring bitmap of document ids per term, plus
// the per-document statistics BM25 ranking needs. It shares no state with the
// bucketed index and uses the full analysis pipeline (stopwords, stemming)
// rather than the raw tokenizer.
//
// A containment query intersects the term bitmaps; ranked search scores the
// intersection with BM25 and returns the top k.
// ═══════════════════════════════════════════════════════════════════════════════

// BM25Parameters holds the tuning parameters for BM25 scoring.
type BM25Parameters struct {
	K1 float64 // term frequency saturation (typical: 1.2-2.0)
	B  float64 // length normalization (typical: 0.75)
}

// DefaultBM25Parameters returns the standard BM25 parameters.
func DefaultBM25Parameters() BM25Parameters {
	return BM25Parameters{K1: 1.5, B: 0.75}
}

type baselineDocStats struct {
	length    int
	termFreqs map[string]int
}

// Hit is one ranked search result.
type Hit struct {
	DocID uint32
	Score float64
}

// BaselineIndex is an in-memory inverted index with BM25 ranking.
type BaselineIndex struct {
	mu sync.RWMutex

	postings   map[string]*roaring.Bitmap
	docStats   map[uint32]baselineDocStats
	totalDocs  int
	totalTerms int64
	params     BM25Parameters
	config     AnalyzerConfig
}

// NewBaselineIndex creates an empty baseline index using the default analyzer
// configuration and BM25 parameters.
func NewBaselineIndex() *BaselineIndex {
	return &BaselineIndex{
		postings: make(map[string]*roaring.Bitmap),
		docStats: make(map[uint32]baselineDocStats),
		params:   DefaultBM25Parameters(),
		config:   DefaultAnalyzerConfig(),
	}
}

// Add analyzes a document's text and indexes it under docID.
func (idx *BaselineIndex) Add(docID uint32, text string) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	slog.Debug("baseline indexing document", slog.Int("docID", int(docID)))

	tokens := AnalyzeWithConfig(text, idx.config)
	stats := baselineDocStats{
		length:    len(tokens),
		termFreqs: make(map[string]int, len(tokens)),
	}
	for _, token := range tokens {
		if idx.postings[token] == nil {
			idx.postings[token] = roaring.NewBitmap()
		}
		idx.postings[token].Add(docID)
		stats.termFreqs[token]++
	}

	idx.docStats[docID] = stats
	idx.totalDocs++
	idx.totalTerms += int64(len(tokens))
}

// AddLines indexes one document per line of raw text, ids assigned by line
// number starting at 0. The raw line goes straight into Add, so repeated terms
// keep their frequencies for BM25 ranking; nothing is deduplicated on the way
// in.
func (idx *BaselineIndex) AddLines(r io.Reader) error {
	scanner := bufio.NewScanner(r)
	var id uint32
	for scanner.Scan() {
		idx.Add(id, scanner.Text())
		id++
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading corpus line %d: %w", id, err)
	}
	return nil
}

// Count returns the number of documents containing every term of the query.
func (idx *BaselineIndex) Count(query string) uint64 {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.matches(query).GetCardinality()
}

// TopK returns up to k matches ranked by BM25 score, best first.
func (idx *BaselineIndex) TopK(query string, k int) []Hit {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	terms := AnalyzeWithConfig(query, idx.config)
	matched := idx.matches(query)

	hits := make([]Hit, 0, matched.GetCardinality())
	it := matched.Iterator()
	for it.HasNext() {
		docID := it.Next()
		if score := idx.score(docID, terms); score > 0 {
			hits = append(hits, Hit{DocID: docID, Score: score})
		}
	}
	sort.Slice(hits, func(i, j int) bool { return hits[i].Score > hits[j].Score })
	if k >= 0 && len(hits) > k {
		hits = hits[:k]
	}
	return hits
}

// matches intersects the posting bitmaps of every analyzed query term.
// Callers hold at least the read lock.
func (idx *BaselineIndex) matches(query string) *roaring.Bitmap {
	terms := AnalyzeWithConfig(query, idx.config)
	if len(terms) == 0 {
		return roaring.NewBitmap()
	}
	var result *roaring.Bitmap
	for _, term := range terms {
		bitmap := idx.postings[term]
		if bitmap == nil {
			return roaring.NewBitmap()
		}
		if result == nil {
			result = bitmap.Clone()
		} else {
			result.And(bitmap)
		}
	}
	return result
}

// score computes the BM25 score of one document for the query terms.
//
//	score = Σ IDF(term) * tf*(k1+1) / (tf + k1*(1 - b + b*docLen/avgDocLen))
func (idx *BaselineIndex) score(docID uint32, terms []string) float64 {
	stats, ok := idx.docStats[docID]
	if !ok || idx.totalDocs == 0 {
		return 0
	}
	avgDocLen := float64(idx.totalTerms) / float64(idx.totalDocs)

	var score float64
	for _, term := range terms {
		tf := float64(stats.termFreqs[term])
		if tf == 0 {
			continue
		}
		df := float64(0)
		if bitmap := idx.postings[term]; bitmap != nil {
			df = float64(bitmap.GetCardinality())
		}
		idf := math.Log(1 + (float64(idx.totalDocs)-df+0.5)/(df+0.5))

		norm := 1 - idx.params.B + idx.params.B*float64(stats.length)/avgDocLen
		score += idf * tf * (idx.params.K1 + 1) / (tf + idx.params.K1*norm)
	}
	return score
}
