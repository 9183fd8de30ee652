package tokendex

import (
	"bufio"
	"fmt"
	"io"
)

// Document is one unit of the corpus: an id paired with its unique token set.
// Tokens is deduplicated; order within it carries no meaning for queries but
// is kept deterministic (first-seen) so that re-encoding is reproducible.
type Document struct {
	ID     uint64
	Tokens []string
}

// DocumentSource is a pull-based stream of documents. Next returns io.EOF when
// the source is exhausted. A source has exactly one consumer; it is the only
// mutable state shared across encoding chunks.
type DocumentSource interface {
	Next() (Document, error)
}

// SliceSource iterates over an in-memory document slice. Restartable by
// constructing a fresh one over the same slice.
type SliceSource struct {
	docs []Document
	pos  int
}

func NewSliceSource(docs []Document) *SliceSource {
	return &SliceSource{docs: docs}
}

func (s *SliceSource) Next() (Document, error) {
	if s.pos >= len(s.docs) {
		return Document{}, io.EOF
	}
	doc := s.docs[s.pos]
	s.pos++
	return doc, nil
}

// LineSource turns a reader into documents: one line of text per document,
// ids assigned by line number starting at 0.
type LineSource struct {
	scanner *bufio.Scanner
	nextID  uint64
}

func NewLineSource(r io.Reader) *LineSource {
	return &LineSource{scanner: bufio.NewScanner(r)}
}

func (s *LineSource) Next() (Document, error) {
	if !s.scanner.Scan() {
		if err := s.scanner.Err(); err != nil {
			return Document{}, fmt.Errorf("reading corpus line %d: %w", s.nextID, err)
		}
		return Document{}, io.EOF
	}
	doc := Document{
		ID:     s.nextID,
		Tokens: UniqueTokens(Tokenize(s.scanner.Text())),
	}
	s.nextID++
	return doc, nil
}

// ReadDocuments drains a source into memory. Useful when the same corpus must
// be walked twice (once for sampling, once for encoding) and the backing
// source is single-pass.
func ReadDocuments(src DocumentSource) ([]Document, error) {
	var docs []Document
	for {
		doc, err := src.Next()
		if err == io.EOF {
			return docs, nil
		}
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
}

// SampleTokens collects the tokens of the first sampleDocs documents,
// duplicates included. The sample is a fixed corpus prefix rather than a
// random draw; see PlanBuckets for the skew this implies.
func SampleTokens(src DocumentSource, sampleDocs int) ([]string, error) {
	var sample []string
	for i := 0; i < sampleDocs; i++ {
		doc, err := src.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		sample = append(sample, doc.Tokens...)
	}
	return sample, nil
}
