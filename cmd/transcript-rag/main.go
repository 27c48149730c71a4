package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/embeddings"
	"github.com/uptrace/bun"

	"transcript-rag/internal/chunker"
	"transcript-rag/internal/config"
	"transcript-rag/internal/db"
	"transcript-rag/internal/embedding"
	"transcript-rag/internal/helper"
	"transcript-rag/internal/models"
	"transcript-rag/internal/pipeline"
	"transcript-rag/internal/rag"
	"transcript-rag/internal/report"
	"transcript-rag/internal/server"
	"transcript-rag/internal/transcribe"
	"transcript-rag/internal/vectorstore"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).With().Caller().Logger()

	_ = godotenv.Load()

	configPath := flag.String("config", "./configs/config.yaml", "Path to the config file")
	ingestPath := flag.String("ingest", "", "Audio or transcript file to ingest")
	documentID := flag.String("id", "", "Document ID for ingest (default: new UUID)")
	query := flag.String("query", "", "Question to answer")
	serve := flag.Bool("serve", false, "Start the chat server")
	exportPath := flag.String("export", "", "With -query: write the answer as a PDF report to this path")
	dryRun := flag.Bool("dry-run", false, "With -ingest: stop after chunking and print the chunks")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Error loading config")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch {
	case *ingestPath != "":
		ingest(ctx, cfg, *ingestPath, *documentID, *dryRun)
	case *query != "":
		answer(ctx, cfg, *query, *exportPath)
	case *serve:
		runServer(ctx, cfg)
	default:
		log.Fatal().Msg("Please provide -ingest, -query, or -serve")
	}
}

func newEmbedder(cfg *config.Config) (*embeddings.EmbedderImpl, error) {
	if cfg.EmbedLLM.Key != "" {
		return embedding.NewEmbedder(&cfg.EmbedLLM)
	}
	return embedding.NewOllamaEmbedder(&cfg.EmbedLLM)
}

func ingest(ctx context.Context, cfg *config.Config, path, documentID string, dryRun bool) {
	spec := chunker.Spec{Size: cfg.RAG.ChunkSize, Overlap: cfg.RAG.ChunkOverlap}

	if documentID == "" {
		var err error
		documentID, err = helper.NewDocumentID()
		if err != nil {
			log.Fatal().Err(err).Msg("Error generating document ID")
		}
	}

	var transcriber pipeline.Transcriber
	if cfg.Transcriber.Endpoint != "" {
		client, err := transcribe.NewClient(cfg.Transcriber)
		if err != nil {
			log.Fatal().Err(err).Msg("Error initializing transcriber")
		}
		transcriber = client
	}

	if dryRun {
		p, err := pipeline.New(transcriber, nil, nil, spec)
		if err != nil {
			log.Fatal().Err(err).Msg("Error building pipeline")
		}
		res, err := p.Preview(ctx, documentID, path)
		if err != nil {
			log.Fatal().Err(err).Msg("Error previewing chunks")
		}
		log.Info().Int("chunks", len(res.Chunks)).Msg("Dry run complete")
		helper.PrettyPrint(res.Chunks)
		return
	}

	embedder, err := newEmbedder(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Error initializing embedder")
	}

	store, err := newPipelineStore(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Error opening store")
	}

	p, err := pipeline.New(transcriber, embedder, store, spec)
	if err != nil {
		log.Fatal().Err(err).Msg("Error building pipeline")
	}

	res, err := p.Ingest(ctx, documentID, path)
	if err != nil {
		log.Fatal().Err(err).Msg("Error ingesting transcript")
	}
	log.Info().Str("document_id", res.DocumentID).Int("stored", res.Stored).Msg("Ingest complete")
}

func answer(ctx context.Context, cfg *config.Config, query, exportPath string) {
	engine, err := newEngine(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Error building query engine")
	}

	resp, err := engine.Query(ctx, query)
	if err != nil {
		log.Fatal().Err(err).Msg("Error querying")
	}

	log.Info().Msg("Query:")
	fmt.Printf("%s\n\n", resp.Query)
	log.Info().Msg("Source:")
	fmt.Printf("%s\n\n", resp.Source)
	log.Info().Msg("Assistant:")
	fmt.Printf("%s\n\n", resp.Content)

	if exportPath != "" {
		if err := report.Write(exportPath, "Transcript Summary Report", []models.PromptResponse{*resp}); err != nil {
			log.Fatal().Err(err).Msg("Error writing report")
		}
		log.Info().Str("path", exportPath).Msg("Report written")
	}
}

func runServer(ctx context.Context, cfg *config.Config) {
	engine, err := newEngine(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Error building query engine")
	}

	srv := server.New(cfg.Server.Addr, engine)
	if err := srv.Run(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server error")
	}
}

// newPipelineStore picks the chunk store: postgres when a DSN is
// configured, the embedded chromem store otherwise.
func newPipelineStore(ctx context.Context, cfg *config.Config) (pipeline.Store, error) {
	if cfg.Database.DSN != "" {
		database, err := connectDatabase(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return db.NewStore(database), nil
	}
	store, err := vectorstore.New(&cfg.VectorStore)
	if err != nil {
		return nil, err
	}
	return store, nil
}

func connectDatabase(ctx context.Context, cfg *config.Config) (*bun.DB, error) {
	sqldb, err := db.ConnectDB(&cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	database := db.NewDB(sqldb, cfg.Database.Debug)
	if err := db.InitDB(ctx, database, cfg.Database.VectorSize); err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	return database, nil
}

func newEngine(ctx context.Context, cfg *config.Config) (*rag.RAG, error) {
	embedder, err := newEmbedder(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize embedder: %w", err)
	}

	if cfg.Database.DSN != "" {
		database, err := connectDatabase(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return rag.NewRAG(database, nil, embedder, cfg), nil
	}

	store, err := vectorstore.New(&cfg.VectorStore)
	if err != nil {
		return nil, fmt.Errorf("failed to open vector store: %w", err)
	}
	return rag.NewRAG(nil, store, embedder, cfg), nil
}
