package tokendex

import (
	"errors"
	"log/slog"
	"sort"
)

// ═══════════════════════════════════════════════════════════════════════════════
// BUCKET PLANNING: Choosing the Partition from a Sample
// ═══════════════════════════════════════════════════════════════════════════════
// The planner never sees the full vocabulary. It sees a non-unique token sample
// (typically the tokens of a corpus prefix) and has to pick boundaries that
// divide the sample roughly equally.
//
// ALGORITHM:
// ----------
// 1. Sort the sample.
// 2. Take one candidate boundary per bucket: the token at position
//    floor(i * len / bucketCount) for each i.
// 3. Walk the candidates, tracking the previous one:
//    - candidate differs from previous  → emit previous as Multi
//    - candidate repeats, first repeat  → emit previous as Single
//    - candidate repeats again          → emit nothing; the next differing
//      value's transition emits the Multi that covers the run
// 4. Cap with the last candidate as Multi (the catch-all).
//
// A boundary that recurred exactly once among candidates is a token popular
// enough to fill a whole quantile range on its own — it gets a Single bucket
// and compresses to one bit per document. Anything messier degrades to Multi,
// so the plan can lose compression but never lose tokens.
//
// EXAMPLE:
// --------
// sorted sample: [ant ant ant bat cow], bucketCount 5
// candidates:    ant ant ant bat cow
// walk:          (ant,Single) — repeat skipped — (ant,Multi) (bat,Multi)
// cap:           (cow,Multi)
// ═══════════════════════════════════════════════════════════════════════════════

var (
	ErrEmptySample = errors.New("bucket planning requires a non-empty token sample")
	ErrNoBuckets   = errors.New("bucket count must be positive")
)

// PlanBuckets selects up to bucketCount bucket boundaries that roughly equally
// divide the sample, classifying each as Single- or Multi-valued.
//
// The sample is a fixed corpus prefix, not a random draw: if the corpus is not
// shuffled, boundaries skew toward its early vocabulary. That skew only costs
// balance, never correctness, because the tail bucket catches everything.
func PlanBuckets(sample []string, bucketCount int) (Plan, error) {
	if len(sample) == 0 {
		return nil, ErrEmptySample
	}
	if bucketCount < 1 {
		return nil, ErrNoBuckets
	}

	sorted := make([]string, len(sample))
	copy(sorted, sample)
	sort.Strings(sorted)

	prev := sorted[0]
	singleEmitted := false
	plan := make(Plan, 0, bucketCount)
	for i := 1; i < bucketCount; i++ {
		candidate := sorted[i*len(sorted)/bucketCount]
		if candidate != prev {
			plan = append(plan, Bucket{Key: prev, Type: BucketMulti})
			singleEmitted = false
		} else if !singleEmitted {
			plan = append(plan, Bucket{Key: prev, Type: BucketSingle})
			singleEmitted = true
		}
		prev = candidate
	}
	// The final bucket is always Multi: it owns every token at or beyond the
	// last boundary.
	plan = append(plan, Bucket{Key: prev, Type: BucketMulti})

	slog.Info("planned buckets",
		slog.Int("sampleTokens", len(sample)),
		slog.Int("requested", bucketCount),
		slog.Int("planned", len(plan)))

	return plan, nil
}
