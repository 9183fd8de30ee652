// Command tokendex builds and queries bucketed token-containment indexes, with
// a conventional inverted index available as a comparison baseline.
//
// Usage:
//
//	tokendex index -corpus corpus.txt -out idx.arrow [-buckets 64] [-sample 1000] [-chunk 8192]
//	tokendex search -index idx.arrow -query "some words"
//	tokendex baseline -corpus corpus.txt -query "some words" [-topk 10]
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/wizenheimer/tokendex"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	var err error
	switch os.Args[1] {
	case "index":
		err = runIndex(os.Args[2:])
	case "search":
		err = runSearch(os.Args[2:])
	case "baseline":
		err = runBaseline(os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "tokendex:", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: tokendex <index|search|baseline> [flags]")
}

func runIndex(args []string) error {
	fs := flag.NewFlagSet("index", flag.ExitOnError)
	corpus := fs.String("corpus", "", "corpus file, one document per line")
	out := fs.String("out", "index.arrow", "output index file")
	buckets := fs.Int("buckets", 64, "maximum bucket count")
	sample := fs.Int("sample", 1000, "documents sampled for bucket planning")
	chunk := fs.Int("chunk", tokendex.DefaultChunkSize, "documents per batch")
	fs.Parse(args)

	docs, err := readCorpus(*corpus)
	if err != nil {
		return err
	}

	sampleTokens, err := tokendex.SampleTokens(tokendex.NewSliceSource(docs), *sample)
	if err != nil {
		return err
	}
	plan, err := tokendex.PlanBuckets(sampleTokens, *buckets)
	if err != nil {
		return err
	}

	enc := tokendex.NewEncoder(tokendex.NewSliceSource(docs), plan, tokendex.WithChunkSize(*chunk))
	if err := tokendex.WriteIndex(context.Background(), *out, enc); err != nil {
		return err
	}
	fmt.Printf(">>> created %s with %d buckets\n", *out, len(plan))
	return nil
}

func runSearch(args []string) error {
	fs := flag.NewFlagSet("search", flag.ExitOnError)
	path := fs.String("index", "index.arrow", "index file")
	query := fs.String("query", "", "query text")
	fs.Parse(args)

	ix, err := tokendex.OpenIndex(*path)
	if err != nil {
		return err
	}
	defer ix.Close()

	count, err := ix.Count(context.Background(), *query)
	if err != nil {
		return err
	}
	fmt.Printf(">>> %d\n", count)
	return nil
}

func runBaseline(args []string) error {
	fs := flag.NewFlagSet("baseline", flag.ExitOnError)
	corpus := fs.String("corpus", "", "corpus file, one document per line")
	query := fs.String("query", "", "query text")
	topk := fs.Int("topk", 10, "ranked hits to print")
	fs.Parse(args)

	f, err := os.Open(*corpus)
	if err != nil {
		return err
	}
	defer f.Close()

	// The baseline indexes the raw lines, not the deduplicated token sets the
	// bucketed index works from: BM25 needs real term frequencies.
	idx := tokendex.NewBaselineIndex()
	if err := idx.AddLines(f); err != nil {
		return err
	}

	fmt.Printf(">>> %d\n", idx.Count(*query))
	for _, hit := range idx.TopK(*query, *topk) {
		fmt.Printf(">>> %.4f:\t%d\n", hit.Score, hit.DocID)
	}
	return nil
}

func readCorpus(path string) ([]tokendex.Document, error) {
	if path == "" {
		return nil, fmt.Errorf("missing -corpus")
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return tokendex.ReadDocuments(tokendex.NewLineSource(f))
}
