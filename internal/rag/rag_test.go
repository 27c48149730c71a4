package rag

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"transcript-rag/internal/config"
	"transcript-rag/internal/models"
	"transcript-rag/internal/vectorstore"
)

// fakeEmbedder returns a fixed vector regardless of input.
type fakeEmbedder struct {
	vector []float32
}

func (f *fakeEmbedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = f.vector
	}
	return out, nil
}

func (f *fakeEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	return f.vector, nil
}

func newSSEServer(t *testing.T, fragments []string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "text/event-stream")
		for _, frag := range fragments {
			w.Write([]byte(`data: {"choices":[{"delta":{"content":"` + frag + `"}}]}` + "\n\n"))
		}
		w.Write([]byte("data: [DONE]\n\n"))
	}))
}

func testStore(t *testing.T, vector []float32) *vectorstore.Store {
	t.Helper()
	store, err := vectorstore.New(&config.VectorStoreConfig{Collection: "test", InMemory: true})
	require.NoError(t, err)

	err = store.UpsertChunks(context.Background(), []models.ChunkEmbedding{
		{DocumentID: "doc1", ChunkIndex: 0, Content: "the dosage was 50mg", Embedding: vector},
	})
	require.NoError(t, err)
	return store
}

func TestQueryStreamsAnswerWithRetrievedContext(t *testing.T) {
	srv := newSSEServer(t, []string{"The dosage ", "was 50mg."})
	defer srv.Close()

	vector := []float32{0.6, 0.8, 0}
	cfg := &config.Config{
		InferenceLLM: config.LLMConfig{BaseURL: srv.URL, Key: "test-key", Model: "test-model"},
		RAG:          config.RAGConfig{TopK: 5},
	}

	engine := NewRAG(nil, testStore(t, vector), &fakeEmbedder{vector: vector}, cfg)

	resp, err := engine.Query(context.Background(), "what was the dosage?")
	require.NoError(t, err)
	assert.Equal(t, "what was the dosage?", resp.Query)
	assert.Equal(t, "The dosage was 50mg.", resp.Content)
	assert.Contains(t, resp.Source, "the dosage was 50mg")
}

func TestQueryFailsWithoutStore(t *testing.T) {
	cfg := &config.Config{RAG: config.RAGConfig{TopK: 5}}
	engine := NewRAG(nil, nil, &fakeEmbedder{vector: []float32{1, 0, 0}}, cfg)

	_, err := engine.Query(context.Background(), "anything")
	assert.Error(t, err)
}

func TestQueryPropagatesCompletionError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model overloaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	vector := []float32{0.6, 0.8, 0}
	cfg := &config.Config{
		InferenceLLM: config.LLMConfig{BaseURL: srv.URL, Key: "test-key", Model: "test-model"},
		RAG:          config.RAGConfig{TopK: 5},
	}
	engine := NewRAG(nil, testStore(t, vector), &fakeEmbedder{vector: vector}, cfg)

	_, err := engine.Query(context.Background(), "what was the dosage?")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
}
