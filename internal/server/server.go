// Package server exposes the question-answering engine over HTTP.
package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"

	"transcript-rag/internal/models"
	"transcript-rag/internal/report"
)

// Answerer answers a question against the indexed transcripts.
// Satisfied by rag.RAG.
type Answerer interface {
	Query(ctx context.Context, query string) (*models.PromptResponse, error)
}

type Server struct {
	server   *http.Server
	answerer Answerer
}

type chatRequest struct {
	Question string `json:"question"`
}

type chatResponse struct {
	Answer  string `json:"answer"`
	Sources string `json:"sources"`
}

type exportRequest struct {
	Title    string `json:"title"`
	Question string `json:"question"`
}

func New(addr string, answerer Answerer) *Server {
	s := &Server{answerer: answerer}

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/api/chat", s.handleChat)
	mux.HandleFunc("/api/export", s.handleExport)

	s.server = &http.Server{
		Addr:         addr,
		Handler:      withLogging(mux),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", s.server.Addr).Msg("Chat server listening")
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return s.server.Shutdown(shutdownCtx)
	}
}

// Handler exposes the routing for tests.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Question == "" {
		http.Error(w, "request must contain a question", http.StatusBadRequest)
		return
	}

	resp, err := s.answerer.Query(r.Context(), req.Question)
	if err != nil {
		log.Error().Err(err).Msg("Query failed")
		http.Error(w, "failed to answer question", http.StatusBadGateway)
		return
	}

	writeJSON(w, http.StatusOK, chatResponse{
		Answer:  resp.Content,
		Sources: resp.Source,
	})
}

// handleExport answers the question and returns the result as a PDF
// summary attachment.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req exportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Question == "" {
		http.Error(w, "request must contain a question", http.StatusBadRequest)
		return
	}
	if req.Title == "" {
		req.Title = "Transcript Summary Report"
	}

	resp, err := s.answerer.Query(r.Context(), req.Question)
	if err != nil {
		log.Error().Err(err).Msg("Query failed")
		http.Error(w, "failed to answer question", http.StatusBadGateway)
		return
	}

	// Render into a per-request buffer; a shared file on disk would
	// let concurrent exports overwrite each other.
	var buf bytes.Buffer
	if err := report.Render(&buf, req.Title, []models.PromptResponse{*resp}); err != nil {
		log.Error().Err(err).Msg("Report generation failed")
		http.Error(w, "failed to generate report", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="report.pdf"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(buf.Bytes()); err != nil {
		log.Error().Err(err).Msg("Failed to send report")
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("Failed to encode response")
	}
}

func withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Dur("duration", time.Since(start)).
			Msg("Request handled")
	})
}
