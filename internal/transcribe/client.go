// Package transcribe calls an OpenAI-compatible speech-to-text endpoint.
package transcribe

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"transcript-rag/internal/config"
)

// Client uploads audio files for transcription. Requests that fail with
// a retryable status are retried with exponential backoff.
type Client struct {
	cfg        config.TranscriberConfig
	httpClient *http.Client
}

type transcriptionResponse struct {
	Text string `json:"text"`
}

func NewClient(cfg config.TranscriberConfig) (*Client, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("transcriber endpoint cannot be empty")
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("transcriber API key cannot be empty")
	}
	timeout := time.Duration(cfg.TimeoutSec) * time.Second
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &Client{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

// Transcribe uploads the audio file at path and returns the transcript
// text with surrounding whitespace trimmed.
func (c *Client) Transcribe(ctx context.Context, path string) (string, error) {
	var lastErr error
	for attempt := 0; attempt <= c.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(1<<(attempt-1)) * time.Second
			if backoff > 30*time.Second {
				backoff = 30 * time.Second
			}
			log.Debug().Int("attempt", attempt).Dur("backoff", backoff).Msg("Retrying transcription")
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return "", ctx.Err()
			}
		}

		text, retryable, err := c.doRequest(ctx, path)
		if err == nil {
			return strings.TrimSpace(text), nil
		}
		lastErr = err
		if !retryable {
			break
		}
	}
	return "", fmt.Errorf("transcription failed after %d attempts: %w", c.cfg.MaxRetries+1, lastErr)
}

func (c *Client) doRequest(ctx context.Context, path string) (text string, retryable bool, err error) {
	f, err := os.Open(path)
	if err != nil {
		return "", false, fmt.Errorf("failed to open audio file: %w", err)
	}
	defer f.Close()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		return "", false, err
	}
	if _, err := io.Copy(part, f); err != nil {
		return "", false, fmt.Errorf("failed to read audio file: %w", err)
	}
	if err := writer.WriteField("model", c.cfg.Model); err != nil {
		return "", false, err
	}
	if err := writer.Close(); err != nil {
		return "", false, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.Endpoint, &body)
	if err != nil {
		return "", false, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", true, fmt.Errorf("transcription request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", true, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		retryable := resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500
		return "", retryable, fmt.Errorf("transcription API returned %d: %s", resp.StatusCode, string(respBody))
	}

	var tr transcriptionResponse
	if err := json.Unmarshal(respBody, &tr); err != nil {
		return "", false, fmt.Errorf("failed to decode transcription response: %w", err)
	}
	return tr.Text, false, nil
}
