package db

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/extra/bundebug"

	"transcript-rag/internal/config"
	"transcript-rag/internal/models"
)

// Document is one embedded chunk row. Offsets are code-point offsets
// into the cleaned transcript the chunk came from.
type Document struct {
	bun.BaseModel `bun:"table:documents,alias:d"`
	ID            int64     `bun:"id,pk,autoincrement"`
	SourceID      string    `bun:"source_id,notnull"`
	ChunkIndex    int       `bun:"chunk_index,notnull"`
	Content       string    `bun:"content,notnull"`
	StartOffset   int       `bun:"start_offset,notnull"`
	EndOffset     int       `bun:"end_offset,notnull"`
	Embedding     []float32 `bun:"embedding,notnull,type:vector"`
}

func ConnectDB(cfg *config.DatabaseConfig) (*sql.DB, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("database DSN cannot be empty")
	}
	return sql.OpenDB(pgdriver.NewConnector(
		pgdriver.WithDSN(cfg.DSN),
		pgdriver.WithPassword(cfg.Password),
	)), nil
}

func NewDB(sqldb *sql.DB, debug bool) *bun.DB {
	db := bun.NewDB(sqldb, pgdialect.New())
	if debug {
		db.AddQueryHook(bundebug.NewQueryHook(bundebug.WithVerbose(true)))
	}
	return db
}

// InitDB creates the documents table. The embedding dimension is part
// of the pgvector column type, so it is fixed here at table creation
// from the configured vector size.
func InitDB(ctx context.Context, db *bun.DB, vectorSize int) error {
	if vectorSize <= 0 {
		return fmt.Errorf("vector size (%d) must be positive", vectorSize)
	}
	ddl := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS documents (
	id BIGSERIAL PRIMARY KEY,
	source_id TEXT NOT NULL,
	chunk_index INTEGER NOT NULL,
	content TEXT NOT NULL,
	start_offset INTEGER NOT NULL,
	end_offset INTEGER NOT NULL,
	embedding vector(%d) NOT NULL
)`, vectorSize)
	_, err := db.ExecContext(ctx, ddl)
	return err
}

// StoreChunks batch-inserts the embedded chunks of one document.
func StoreChunks(ctx context.Context, db bun.IDB, chunkEmbeddings []models.ChunkEmbedding) error {
	if len(chunkEmbeddings) == 0 {
		return nil
	}
	docs := make([]Document, len(chunkEmbeddings))
	for i, ce := range chunkEmbeddings {
		docs[i] = Document{
			SourceID:    ce.DocumentID,
			ChunkIndex:  ce.ChunkIndex,
			Content:     ce.Content,
			StartOffset: ce.StartOffset,
			EndOffset:   ce.EndOffset,
			Embedding:   ce.Embedding,
		}
	}
	_, err := db.NewInsert().Model(&docs).Exec(ctx)
	return err
}

// DeleteDocument removes every chunk row belonging to sourceID, so a
// re-ingested transcript replaces its previous content.
func DeleteDocument(ctx context.Context, db bun.IDB, sourceID string) error {
	_, err := db.NewDelete().Model((*Document)(nil)).Where("source_id = ?", sourceID).Exec(ctx)
	return err
}

// SearchDocuments returns the limit rows nearest to queryEmbedding.
func SearchDocuments(ctx context.Context, db *bun.DB, queryEmbedding []float32, limit int) ([]Document, error) {
	var docs []Document
	err := db.NewSelect().
		Model(&docs).
		Column("id", "source_id", "chunk_index", "content", "start_offset", "end_offset").
		OrderExpr("embedding <-> ?", queryEmbedding).
		Limit(limit).
		Scan(ctx)
	return docs, err
}

func DropDocuments(ctx context.Context, db *bun.DB) error {
	_, err := db.NewDropTable().Model((*Document)(nil)).IfExists().Exec(ctx)
	return err
}

// Store adapts the postgres database to the pipeline's store interface.
// Re-ingesting a document replaces its previous rows.
type Store struct {
	db *bun.DB
}

func NewStore(db *bun.DB) *Store {
	return &Store{db: db}
}

// UpsertChunks replaces the document's rows inside a single
// transaction, so a failed insert rolls the delete back instead of
// losing the previously indexed chunks.
func (s *Store) UpsertChunks(ctx context.Context, chunkEmbeddings []models.ChunkEmbedding) error {
	if len(chunkEmbeddings) == 0 {
		return nil
	}
	return s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if err := DeleteDocument(ctx, tx, chunkEmbeddings[0].DocumentID); err != nil {
			return err
		}
		return StoreChunks(ctx, tx, chunkEmbeddings)
	})
}
