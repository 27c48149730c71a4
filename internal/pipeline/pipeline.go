// Package pipeline runs the ingest path end to end: obtain a transcript
// (speech-to-text for audio, a loader otherwise), clean it, chunk it,
// embed each chunk, and upsert the records into the configured store.
// Stages pass typed values in process; nothing is written to
// intermediate files.
package pipeline

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"transcript-rag/internal/chunker"
	"transcript-rag/internal/cleaner"
	"transcript-rag/internal/embedding"
	"transcript-rag/internal/models"
	"transcript-rag/internal/source"
)

// Transcriber converts an audio file into text.
type Transcriber interface {
	Transcribe(ctx context.Context, path string) (string, error)
}

// Embedder computes embedding vectors. Satisfied by langchaingo's
// embeddings.Embedder.
type Embedder interface {
	EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error)
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// Store receives the embedded chunk records of one document.
type Store interface {
	UpsertChunks(ctx context.Context, chunkEmbeddings []models.ChunkEmbedding) error
}

type Pipeline struct {
	transcriber Transcriber
	embedder    Embedder
	store       Store
	spec        chunker.Spec
}

// Result summarizes one ingest run.
type Result struct {
	DocumentID string          `json:"document_id"`
	Transcript string          `json:"-"`
	Chunks     []chunker.Chunk `json:"chunks"`
	Stored     int             `json:"stored"`
}

// New validates the chunk spec up front so a misconfigured pipeline
// fails before any API call is made.
func New(transcriber Transcriber, embedder Embedder, store Store, spec chunker.Spec) (*Pipeline, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	return &Pipeline{
		transcriber: transcriber,
		embedder:    embedder,
		store:       store,
		spec:        spec,
	}, nil
}

// Ingest processes the file at path under the given document ID.
func (p *Pipeline) Ingest(ctx context.Context, documentID, path string) (*Result, error) {
	transcript, err := p.transcript(ctx, path)
	if err != nil {
		return nil, err
	}

	cleaned := cleaner.Clean(transcript)
	if cleaned == "" {
		log.Warn().Str("path", path).Msg("Transcript is empty after cleaning")
		return &Result{DocumentID: documentID}, nil
	}

	chunks, err := chunker.Split(cleaned, p.spec)
	if err != nil {
		return nil, err
	}
	log.Info().Str("document_id", documentID).Int("chunks", len(chunks)).Msg("Chunked transcript")

	chunkEmbeddings, err := embedding.EmbedChunks(ctx, p.embedder, documentID, chunks)
	if err != nil {
		return nil, fmt.Errorf("failed to embed chunks: %w", err)
	}

	if err := p.store.UpsertChunks(ctx, chunkEmbeddings); err != nil {
		return nil, fmt.Errorf("failed to store chunks: %w", err)
	}

	return &Result{
		DocumentID: documentID,
		Transcript: cleaned,
		Chunks:     chunks,
		Stored:     len(chunkEmbeddings),
	}, nil
}

// Preview runs the transcript, clean and chunk stages only. Used by
// dry runs to inspect chunk boundaries without touching any API.
func (p *Pipeline) Preview(ctx context.Context, documentID, path string) (*Result, error) {
	transcript, err := p.transcript(ctx, path)
	if err != nil {
		return nil, err
	}

	cleaned := cleaner.Clean(transcript)
	chunks, err := chunker.Split(cleaned, p.spec)
	if err != nil {
		return nil, err
	}
	return &Result{DocumentID: documentID, Transcript: cleaned, Chunks: chunks}, nil
}

func (p *Pipeline) transcript(ctx context.Context, path string) (string, error) {
	if source.IsAudio(path) {
		if p.transcriber == nil {
			return "", fmt.Errorf("no transcriber configured for audio input %s", path)
		}
		log.Info().Str("path", path).Msg("Transcribing audio")
		text, err := p.transcriber.Transcribe(ctx, path)
		if err != nil {
			return "", fmt.Errorf("failed to transcribe %s: %w", path, err)
		}
		return text, nil
	}
	return source.Load(path)
}
