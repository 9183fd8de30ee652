package tokendex

import (
	"testing"
)

// ═══════════════════════════════════════════════════════════════════════════════
// TOKENIZATION TESTS
// ═══════════════════════════════════════════════════════════════════════════════

func TestTokenize(t *testing.T) {
	tests := []struct {
		text string
		want []string
	}{
		{"The quick brown fox", []string{"the", "quick", "brown", "fox"}},
		{"'Quoted!' and (parenthesized)", []string{"quoted", "and", "parenthesized"}},
		{"o'clock stays whole", []string{"o'clock", "stays", "whole"}},
		{"  spaces\tand\nnewlines  ", []string{"spaces", "and", "newlines"}},
		{"!!! ---", nil},
		{"", nil},
		{"Henry V, act 2", []string{"henry", "v", "act", "2"}},
	}
	for _, tt := range tests {
		got := Tokenize(tt.text)
		if len(got) != len(tt.want) {
			t.Errorf("Tokenize(%q) = %v, want %v", tt.text, got, tt.want)
			continue
		}
		for i := range tt.want {
			if got[i] != tt.want[i] {
				t.Errorf("Tokenize(%q) = %v, want %v", tt.text, got, tt.want)
				break
			}
		}
	}
}

func TestUniqueTokens(t *testing.T) {
	got := UniqueTokens([]string{"b", "a", "b", "c", "a"})
	want := []string{"b", "a", "c"}
	if len(got) != len(want) {
		t.Fatalf("UniqueTokens() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("UniqueTokens() = %v, want %v (first-seen order)", got, want)
		}
	}
}

// ═══════════════════════════════════════════════════════════════════════════════
// ANALYSIS PIPELINE TESTS
// ═══════════════════════════════════════════════════════════════════════════════

func TestAnalyze_RemovesStopwords(t *testing.T) {
	tokens := Analyze("the quick brown fox")
	for _, token := range tokens {
		if token == "the" {
			t.Error("stopword 'the' survived analysis")
		}
	}
}

func TestAnalyze_Stems(t *testing.T) {
	tokens := Analyze("running foxes")
	want := map[string]bool{"run": true, "fox": true}
	if len(tokens) != 2 {
		t.Fatalf("Analyze() = %v, want 2 stemmed tokens", tokens)
	}
	for _, token := range tokens {
		if !want[token] {
			t.Errorf("unexpected token %q in %v", token, tokens)
		}
	}
}

func TestAnalyzeWithConfig_StemmingOff(t *testing.T) {
	config := AnalyzerConfig{MinTokenLength: 2, EnableStemming: false, EnableStopwords: false}
	tokens := AnalyzeWithConfig("running the foxes", config)
	want := []string{"running", "the", "foxes"}
	if len(tokens) != len(want) {
		t.Fatalf("AnalyzeWithConfig() = %v, want %v", tokens, want)
	}
	for i := range want {
		if tokens[i] != want[i] {
			t.Fatalf("AnalyzeWithConfig() = %v, want %v", tokens, want)
		}
	}
}

func TestAnalyzeWithConfig_LengthFilter(t *testing.T) {
	config := AnalyzerConfig{MinTokenLength: 4, EnableStemming: false, EnableStopwords: false}
	tokens := AnalyzeWithConfig("go gopher ox oxen", config)
	want := []string{"gopher", "oxen"}
	if len(tokens) != len(want) {
		t.Fatalf("AnalyzeWithConfig() = %v, want %v", tokens, want)
	}
}
