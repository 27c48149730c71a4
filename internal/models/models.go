package models

// ChunkEmbedding pairs a chunk with its embedding vector and the
// source coordinates needed to map it back to the transcript.
type ChunkEmbedding struct {
	DocumentID  string
	ChunkIndex  int
	Content     string
	StartOffset int
	EndOffset   int
	Embedding   []float32
}

// RetrievedChunk is a chunk returned from a similarity search.
type RetrievedChunk struct {
	ID         string
	Content    string
	Similarity float32
}

type PromptResponse struct {
	Query   string
	Source  string
	Content string
}
