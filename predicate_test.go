package tokendex

import (
	"testing"
)

// ═══════════════════════════════════════════════════════════════════════════════
// PREDICATE EVALUATION TESTS
// ═══════════════════════════════════════════════════════════════════════════════
// All evaluation tests run against one hand-built batch:
//
//	row  id  cat:0   cat:1
//	0    1   true    ["dog"]
//	1    2   false   ["dog", "emu"]
//	2    3   true    []
//
// encoded from the plan [(cat, Single), (cat, Multi)].

func predicateFixture(t *testing.T) (Plan, []Document) {
	t.Helper()
	plan := Plan{
		{Key: "cat", Type: BucketSingle},
		{Key: "cat", Type: BucketMulti},
	}
	docs := []Document{
		{ID: 1, Tokens: []string{"cat", "dog"}},
		{ID: 2, Tokens: []string{"dog", "emu"}},
		{ID: 3, Tokens: []string{"cat"}},
	}
	return plan, docs
}

func TestPredicate_False(t *testing.T) {
	plan, docs := predicateFixture(t)
	rec := encodeOne(t, docs, plan)
	defer rec.Release()

	rows, err := False().Evaluate(rec)
	if err != nil {
		t.Fatalf("Evaluate() error: %v", err)
	}
	if !rows.IsEmpty() {
		t.Errorf("False matched rows %v, want none", rows.ToArray())
	}
}

func TestPredicate_ColumnEquals(t *testing.T) {
	plan, docs := predicateFixture(t)
	rec := encodeOne(t, docs, plan)
	defer rec.Release()

	rows, err := ColumnEquals("cat:0").Evaluate(rec)
	if err != nil {
		t.Fatalf("Evaluate() error: %v", err)
	}
	assertRows(t, rows.ToArray(), []uint32{0, 2})
}

func TestPredicate_ListContains(t *testing.T) {
	plan, docs := predicateFixture(t)
	rec := encodeOne(t, docs, plan)
	defer rec.Release()

	rows, err := ListContains("cat:1", "dog").Evaluate(rec)
	if err != nil {
		t.Fatalf("Evaluate() error: %v", err)
	}
	assertRows(t, rows.ToArray(), []uint32{0, 1})

	rows, err = ListContains("cat:1", "yak").Evaluate(rec)
	if err != nil {
		t.Fatalf("Evaluate() error: %v", err)
	}
	if !rows.IsEmpty() {
		t.Errorf("absent token matched rows %v, want none", rows.ToArray())
	}
}

func TestPredicate_And(t *testing.T) {
	plan, docs := predicateFixture(t)
	rec := encodeOne(t, docs, plan)
	defer rec.Release()

	p := And(ColumnEquals("cat:0"), ListContains("cat:1", "dog"))
	rows, err := p.Evaluate(rec)
	if err != nil {
		t.Fatalf("Evaluate() error: %v", err)
	}
	assertRows(t, rows.ToArray(), []uint32{0})

	// False on either side annihilates the conjunction.
	rows, err = And(False(), ColumnEquals("cat:0")).Evaluate(rec)
	if err != nil {
		t.Fatalf("Evaluate() error: %v", err)
	}
	if !rows.IsEmpty() {
		t.Errorf("And(False, _) matched rows %v, want none", rows.ToArray())
	}
}

func TestPredicate_UnknownColumn(t *testing.T) {
	plan, docs := predicateFixture(t)
	rec := encodeOne(t, docs, plan)
	defer rec.Release()

	if _, err := ColumnEquals("nope:0").Evaluate(rec); err == nil {
		t.Error("Evaluate() on unknown column succeeded, want error")
	}
}

func TestPredicate_TypeMismatch(t *testing.T) {
	plan, docs := predicateFixture(t)
	rec := encodeOne(t, docs, plan)
	defer rec.Release()

	// cat:0 is a boolean column; asking for list containment on it is a
	// schema-shape failure, not a silent false.
	if _, err := ListContains("cat:0", "dog").Evaluate(rec); err == nil {
		t.Error("Evaluate() with mismatched column type succeeded, want error")
	}
	if _, err := ColumnEquals("cat:1").Evaluate(rec); err == nil {
		t.Error("Evaluate() with mismatched column type succeeded, want error")
	}
}

func TestPredicate_String(t *testing.T) {
	p := And(ColumnEquals("a:0"), ListContains("b:1", "tok"))
	if got := p.String(); got != "((a:0 = true) and (b:1 contains tok))" {
		t.Errorf("String() = %q", got)
	}
}

func assertRows(t *testing.T, got, want []uint32) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("matched rows %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("matched rows %v, want %v", got, want)
		}
	}
}
