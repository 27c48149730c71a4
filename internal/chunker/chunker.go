// Package chunker splits a cleaned transcript into fixed-size overlapping
// chunks for embedding. Splitting operates on code points, so a multi-byte
// character is never cut in half; word boundaries are deliberately not
// respected, which keeps boundary computation O(1) and the output
// reproducible across runs.
package chunker

import (
	"errors"
	"fmt"
	"unicode/utf8"
)

var (
	// ErrInvalidSpec reports a size/overlap combination that cannot
	// produce an advancing window.
	ErrInvalidSpec = errors.New("invalid chunk spec")

	// ErrInvalidEncoding reports a document that is not valid UTF-8.
	ErrInvalidEncoding = errors.New("document is not valid UTF-8")
)

// Spec is the chunking configuration, fixed for a pipeline run.
type Spec struct {
	Size    int // maximum code points per chunk
	Overlap int // trailing code points repeated at the start of the next chunk
}

// Validate rejects specs that would clamp, stall, or never terminate.
// Values are never adjusted silently: clamping would make chunk
// boundaries irreproducible across runs.
func (s Spec) Validate() error {
	if s.Size <= 0 {
		return fmt.Errorf("%w: size (%d) must be positive", ErrInvalidSpec, s.Size)
	}
	if s.Overlap < 0 {
		return fmt.Errorf("%w: overlap (%d) must not be negative", ErrInvalidSpec, s.Overlap)
	}
	if s.Overlap >= s.Size {
		return fmt.Errorf("%w: overlap (%d) must be less than size (%d)", ErrInvalidSpec, s.Overlap, s.Size)
	}
	return nil
}

// Chunk is one window of the document. Offsets are code-point offsets
// into the document, with Text == document[StartOffset:EndOffset].
type Chunk struct {
	Index       int
	Text        string
	StartOffset int
	EndOffset   int
}

// Split partitions document into overlapping chunks per spec. It is a
// pure function: identical inputs always yield an identical sequence.
// Adjacent chunks share spec.Overlap code points; the final chunk may be
// shorter than spec.Size. An empty document yields no chunks and no
// error. Split fails before producing any output if the spec is invalid
// or the document is not valid UTF-8.
func Split(document string, spec Spec) ([]Chunk, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	if !utf8.ValidString(document) {
		return nil, ErrInvalidEncoding
	}
	if document == "" {
		return nil, nil
	}

	runes := []rune(document)
	step := spec.Size - spec.Overlap

	var chunks []Chunk
	for start := 0; start < len(runes); start += step {
		end := start + spec.Size
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, Chunk{
			Index:       len(chunks),
			Text:        string(runes[start:end]),
			StartOffset: start,
			EndOffset:   end,
		})
		// Once a window reaches the document end the remainder is
		// already covered; further windows would only repeat it.
		if end == len(runes) {
			break
		}
	}
	return chunks, nil
}
