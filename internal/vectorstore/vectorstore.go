// Package vectorstore manages the chromem-go vector index used when no
// postgres instance is configured.
package vectorstore

import (
	"context"
	"fmt"
	"runtime"

	"github.com/philippgille/chromem-go"
	"github.com/rs/zerolog/log"

	"transcript-rag/internal/config"
	"transcript-rag/internal/helper"
	"transcript-rag/internal/models"
)

// Store wraps a chromem-go database and a single collection.
type Store struct {
	db            *chromem.DB
	collection    *chromem.Collection
	path          string
	compress      bool
	encryptionKey string
	filePath      string
}

const compress = false

// New opens (or creates) the vector store described by cfg.
func New(cfg *config.VectorStoreConfig) (*Store, error) {
	var db *chromem.DB
	var err error
	if cfg.InMemory {
		db = chromem.NewDB()
	} else {
		db, err = chromem.NewPersistentDB(cfg.Path, compress)
		if err != nil {
			return nil, fmt.Errorf("failed to create vector store: %w", err)
		}
	}

	s := &Store{
		db:            db,
		path:          cfg.Path,
		compress:      compress,
		encryptionKey: cfg.EncryptionKey,
		filePath:      cfg.Path + "/" + cfg.Collection + ".chromem",
	}

	s.collection, err = db.GetOrCreateCollection(cfg.Collection, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create/get collection: %w", err)
	}
	return s, nil
}

// UpsertChunks stores one record per embedded chunk. Record IDs are
// derived from (document, index), so re-ingesting a document replaces
// its previous records.
func (s *Store) UpsertChunks(ctx context.Context, chunkEmbeddings []models.ChunkEmbedding) error {
	if len(chunkEmbeddings) == 0 {
		return nil
	}

	docs := make([]chromem.Document, 0, len(chunkEmbeddings))
	for _, ce := range chunkEmbeddings {
		docs = append(docs, chromem.Document{
			ID:        helper.ChunkID(ce.DocumentID, ce.ChunkIndex),
			Content:   ce.Content,
			Embedding: ce.Embedding,
			Metadata: map[string]string{
				"source_id":    ce.DocumentID,
				"chunk_index":  fmt.Sprintf("%d", ce.ChunkIndex),
				"start_offset": fmt.Sprintf("%d", ce.StartOffset),
				"end_offset":   fmt.Sprintf("%d", ce.EndOffset),
			},
		})
	}

	if err := s.collection.AddDocuments(ctx, docs, runtime.NumCPU()); err != nil {
		return fmt.Errorf("failed to add documents: %w", err)
	}
	return nil
}

// Query returns the topK records nearest to queryEmbedding.
func (s *Store) Query(ctx context.Context, queryEmbedding []float32, topK int) ([]models.RetrievedChunk, error) {
	if len(queryEmbedding) == 0 {
		return nil, fmt.Errorf("query embedding must not be empty")
	}
	if count := s.collection.Count(); count < topK {
		topK = count
	}
	if topK == 0 {
		return nil, nil
	}

	results, err := s.collection.QueryEmbedding(ctx, queryEmbedding, topK, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to query by similarity: %w", err)
	}

	retrieved := make([]models.RetrievedChunk, 0, len(results))
	for _, r := range results {
		retrieved = append(retrieved, models.RetrievedChunk{
			ID:         r.ID,
			Content:    r.Content,
			Similarity: r.Similarity,
		})
	}
	return retrieved, nil
}

// Export writes the collection to an encrypted file. Only meaningful
// for in-memory stores; persistent stores are already on disk.
func (s *Store) Export(ctx context.Context) error {
	if s.encryptionKey == "" {
		return fmt.Errorf("encryption key is required")
	}
	log.Debug().Str("file", s.filePath).Str("collection", s.collection.Name).Msg("Exporting collection")
	if err := s.db.ExportToFile(s.filePath, s.compress, s.encryptionKey, s.collection.Name); err != nil {
		return fmt.Errorf("failed to export vector store: %w", err)
	}
	return nil
}

// Import restores a collection previously written by Export.
func (s *Store) Import(ctx context.Context) error {
	if err := s.db.ImportFromFile(s.filePath, s.encryptionKey); err != nil {
		return fmt.Errorf("failed to import vector store: %w", err)
	}
	return nil
}

// DeleteCollection drops the collection and its records.
func (s *Store) DeleteCollection() error {
	if err := s.db.DeleteCollection(s.collection.Name); err != nil {
		return fmt.Errorf("failed to drop collection: %w", err)
	}
	return nil
}
