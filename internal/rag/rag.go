// Package rag answers questions against the indexed transcripts:
// embed the question, retrieve the nearest chunks, and stream a
// completion from an OpenAI-compatible chat endpoint.
package rag

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/embeddings"
	"github.com/uptrace/bun"

	"transcript-rag/internal/config"
	"transcript-rag/internal/db"
	"transcript-rag/internal/models"
	"transcript-rag/internal/vectorstore"
)

type RAG struct {
	db       *bun.DB
	store    *vectorstore.Store
	embedder embeddings.Embedder
	cfg      *config.Config
	client   *http.Client
}

// NewRAG builds a query engine over whichever store is non-nil; the
// postgres store wins when both are configured.
func NewRAG(database *bun.DB, store *vectorstore.Store, embedder embeddings.Embedder, cfg *config.Config) *RAG {
	return &RAG{
		db:       database,
		store:    store,
		embedder: embedder,
		cfg:      cfg,
		client:   &http.Client{Timeout: 60 * time.Second},
	}
}

// Query answers a question using the indexed chunks as context.
func (r *RAG) Query(ctx context.Context, query string) (*models.PromptResponse, error) {
	queryEmbedding, err := r.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	sources, err := r.retrieve(ctx, queryEmbedding)
	if err != nil {
		return nil, err
	}

	log.Debug().Int("sources", len(sources)).Msg("Retrieved context chunks")

	var contextText strings.Builder
	for _, s := range sources {
		contextText.WriteString(s)
		contextText.WriteString("\n\n")
	}

	content, err := r.streamCompletion(ctx, query, contextText.String())
	if err != nil {
		return nil, err
	}

	return &models.PromptResponse{
		Query:   query,
		Source:  strings.TrimSpace(contextText.String()),
		Content: content,
	}, nil
}

func (r *RAG) retrieve(ctx context.Context, queryEmbedding []float32) ([]string, error) {
	topK := r.cfg.RAG.TopK

	if r.db != nil {
		docs, err := db.SearchDocuments(ctx, r.db, queryEmbedding, topK)
		if err != nil {
			return nil, fmt.Errorf("failed to search documents: %w", err)
		}
		sources := make([]string, 0, len(docs))
		for _, doc := range docs {
			sources = append(sources, doc.Content)
		}
		return sources, nil
	}

	if r.store != nil {
		results, err := r.store.Query(ctx, queryEmbedding, topK)
		if err != nil {
			return nil, fmt.Errorf("failed to query vector store: %w", err)
		}
		sources := make([]string, 0, len(results))
		for _, res := range results {
			sources = append(sources, res.Content)
		}
		return sources, nil
	}

	return nil, fmt.Errorf("no store configured")
}

// streamCompletion reads an SSE stream from the chat completions
// endpoint and concatenates the delta fragments.
func (r *RAG) streamCompletion(ctx context.Context, query, contextText string) (string, error) {
	payload := struct {
		Model    string `json:"model"`
		Messages []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
		Stream bool `json:"stream"`
	}{
		Model: r.cfg.InferenceLLM.Model,
		Messages: []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		}{
			{Role: "system", Content: models.SystemPrompt},
			{Role: "user", Content: fmt.Sprintf(models.RAGPromptTemplate, contextText, query)},
		},
		Stream: true,
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		strings.TrimSuffix(r.cfg.InferenceLLM.BaseURL, "/")+"/chat/completions",
		bytes.NewBuffer(jsonData))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+strings.TrimPrefix(r.cfg.InferenceLLM.Key, "Bearer "))
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("completion request failed: %d, %s", resp.StatusCode, string(body))
	}

	var response strings.Builder
	reader := bufio.NewReader(resp.Body)
	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			if err == io.EOF {
				break
			}
			return "", err
		}

		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, ":") {
			continue
		}
		if line == "data: [DONE]" {
			break
		}

		if strings.HasPrefix(line, "data: ") {
			data := strings.TrimPrefix(line, "data: ")
			var chunk struct {
				Choices []struct {
					Delta struct {
						Content string `json:"content"`
					} `json:"delta"`
				} `json:"choices"`
			}
			if err := json.Unmarshal([]byte(data), &chunk); err != nil {
				continue
			}
			if len(chunk.Choices) > 0 && chunk.Choices[0].Delta.Content != "" {
				response.WriteString(chunk.Choices[0].Delta.Content)
			}
		}
	}

	return response.String(), nil
}
