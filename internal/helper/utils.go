package helper

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// NewDocumentID creates a random unique ID for an ingested transcript.
func NewDocumentID() (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", fmt.Errorf("failed to generate document ID: %w", err)
	}
	return id.String(), nil
}

// ChunkID derives the vector-store record ID for one chunk of a document.
// The same (document, index) pair always maps to the same ID, so
// re-ingesting a document overwrites its previous records.
func ChunkID(documentID string, index int) string {
	return fmt.Sprintf("%s-%04d", documentID, index)
}

// PrettyPrint dumps v to stdout as indented JSON.
func PrettyPrint(v interface{}) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		log.Warn().Err(err).Msg("Error pretty printing")
		return
	}
	fmt.Println(string(b))
}
