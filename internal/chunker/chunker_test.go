package chunker

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitExactFit(t *testing.T) {
	chunks, err := Split("ABCDEFGHIJ", Spec{Size: 4, Overlap: 2})
	require.NoError(t, err)

	want := []Chunk{
		{Index: 0, Text: "ABCD", StartOffset: 0, EndOffset: 4},
		{Index: 1, Text: "CDEF", StartOffset: 2, EndOffset: 6},
		{Index: 2, Text: "EFGH", StartOffset: 4, EndOffset: 8},
		{Index: 3, Text: "GHIJ", StartOffset: 6, EndOffset: 10},
	}
	assert.Equal(t, want, chunks)
}

func TestSplitShortTail(t *testing.T) {
	chunks, err := Split("ABCDEFG", Spec{Size: 4, Overlap: 2})
	require.NoError(t, err)

	want := []Chunk{
		{Index: 0, Text: "ABCD", StartOffset: 0, EndOffset: 4},
		{Index: 1, Text: "CDEF", StartOffset: 2, EndOffset: 6},
		{Index: 2, Text: "EFG", StartOffset: 4, EndOffset: 7},
	}
	assert.Equal(t, want, chunks)
}

func TestSplitNoOverlap(t *testing.T) {
	chunks, err := Split("ABCDEFGHIJ", Spec{Size: 5, Overlap: 0})
	require.NoError(t, err)
	require.Len(t, chunks, 2)
	assert.Equal(t, "ABCDE", chunks[0].Text)
	assert.Equal(t, "FGHIJ", chunks[1].Text)
}

func TestSplitDocumentShorterThanSize(t *testing.T) {
	chunks, err := Split("AB", Spec{Size: 100, Overlap: 10})
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, Chunk{Index: 0, Text: "AB", StartOffset: 0, EndOffset: 2}, chunks[0])
}

func TestSplitEmptyDocument(t *testing.T) {
	chunks, err := Split("", Spec{Size: 100, Overlap: 10})
	require.NoError(t, err)
	assert.Empty(t, chunks)
}

func TestSplitInvalidSpec(t *testing.T) {
	tests := []struct {
		name string
		spec Spec
	}{
		{"zero size", Spec{Size: 0, Overlap: 0}},
		{"negative size", Spec{Size: -5, Overlap: 0}},
		{"negative overlap", Spec{Size: 100, Overlap: -1}},
		{"overlap equals size", Spec{Size: 100, Overlap: 100}},
		{"overlap exceeds size", Spec{Size: 300, Overlap: 500}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chunks, err := Split("some document", tt.spec)
			assert.ErrorIs(t, err, ErrInvalidSpec)
			assert.Nil(t, chunks)
		})
	}
}

func TestSplitInvalidSpecMessageNamesValues(t *testing.T) {
	_, err := Split("doc", Spec{Size: 300, Overlap: 500})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "overlap (500) must be less than size (300)")
}

func TestSplitInvalidEncoding(t *testing.T) {
	chunks, err := Split("abc\xff\xfedef", Spec{Size: 4, Overlap: 0})
	assert.ErrorIs(t, err, ErrInvalidEncoding)
	assert.Nil(t, chunks)
}

func TestSplitMultiByteRunesNeverSplit(t *testing.T) {
	doc := "héllo wörld, добрый день, 你好世界"
	chunks, err := Split(doc, Spec{Size: 5, Overlap: 2})
	require.NoError(t, err)

	runes := []rune(doc)
	for _, c := range chunks {
		// Text must be exactly the rune range it claims to cover.
		assert.Equal(t, string(runes[c.StartOffset:c.EndOffset]), c.Text)
	}
}

func TestSplitDeterministic(t *testing.T) {
	doc := strings.Repeat("the quick brown fox jumps over the lazy dog. ", 40)
	spec := Spec{Size: 300, Overlap: 60}

	first, err := Split(doc, spec)
	require.NoError(t, err)
	second, err := Split(doc, spec)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestSplitCoverage(t *testing.T) {
	docs := []string{
		"a",
		"hello",
		strings.Repeat("x", 99),
		strings.Repeat("y", 100),
		strings.Repeat("z", 101),
		strings.Repeat("Ω", 257),
	}
	spec := Spec{Size: 32, Overlap: 8}

	for _, doc := range docs {
		chunks, err := Split(doc, spec)
		require.NoError(t, err)
		require.NotEmpty(t, chunks)

		n := len([]rune(doc))
		assert.Equal(t, 0, chunks[0].StartOffset)
		assert.Equal(t, n, chunks[len(chunks)-1].EndOffset)
		for i, c := range chunks {
			assert.Equal(t, i, c.Index)
			assert.Less(t, c.StartOffset, c.EndOffset, "chunk %d must not be empty", i)
			assert.NotEmpty(t, c.Text)
			if i > 0 {
				// No gap: each chunk starts at or before the previous end.
				assert.LessOrEqual(t, c.StartOffset, chunks[i-1].EndOffset)
				assert.Greater(t, c.EndOffset, chunks[i-1].EndOffset)
			}
		}
	}
}

func TestSplitOverlapLaw(t *testing.T) {
	doc := strings.Repeat("abcdefghij", 25)
	spec := Spec{Size: 40, Overlap: 15}

	chunks, err := Split(doc, spec)
	require.NoError(t, err)
	require.Greater(t, len(chunks), 1)

	for i := 0; i < len(chunks)-1; i++ {
		cur := []rune(chunks[i].Text)
		next := []rune(chunks[i+1].Text)
		if len(cur) < spec.Size || len(next) < spec.Overlap {
			continue
		}
		tail := string(cur[len(cur)-spec.Overlap:])
		head := string(next[:spec.Overlap])
		assert.Equal(t, tail, head, "chunks %d/%d", i, i+1)
	}
}

func TestSplitChunkCount(t *testing.T) {
	spec := Spec{Size: 4, Overlap: 2}
	step := spec.Size - spec.Overlap

	for n := 1; n <= 40; n++ {
		doc := strings.Repeat("a", n)
		chunks, err := Split(doc, spec)
		require.NoError(t, err)

		// One chunk when the document fits, otherwise the first window
		// plus one per step needed to reach the end.
		want := 1
		if n > spec.Size {
			want = 1 + (n-spec.Size+step-1)/step
		}
		assert.Len(t, chunks, want, "length %d", n)
	}
}
