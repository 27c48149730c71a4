package report

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"transcript-rag/internal/models"
)

func TestSanitize(t *testing.T) {
	assert.Equal(t, `"quoted" - it's fine...`, sanitize("“quoted” — it’s fine…"))
	assert.Equal(t, "(c) 2024", sanitize("© 2024"))
	// non-ASCII without a replacement is dropped
	assert.Equal(t, "he said ", sanitize("he said 你好"))
}

func TestWriteProducesPDF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "summary.pdf")

	err := Write(path, "Session Summary", []models.PromptResponse{
		{Query: "What was the dosage?", Content: "50mg daily.", Source: "the dosage was 50mg"},
	})
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, len(data) > 0)
	assert.Equal(t, "%PDF", string(data[:4]))
}

func TestRenderWritesPDFToWriter(t *testing.T) {
	var buf bytes.Buffer

	err := Render(&buf, "Session Summary", []models.PromptResponse{
		{Query: "What was the dosage?", Content: "50mg daily.", Source: "the dosage was 50mg"},
	})
	require.NoError(t, err)
	assert.Equal(t, "%PDF", buf.String()[:4])
}
