// Package ingest turns a speaker-tagged transcript into an initial record
// store: one person per speaker, with every segment kept as a quote.
package ingest

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/cortexai/roster/internal/store"
)

type Segment struct {
	ID      int     `json:"id"`
	Speaker string  `json:"speaker"`
	Start   float64 `json:"start"`
	End     float64 `json:"end"`
	Text    string  `json:"text"`
}

type Transcript struct {
	Metadata map[string]interface{} `json:"metadata"`
	Segments []Segment              `json:"segments"`
	Language string                 `json:"language"`
}

// LoadTranscript reads a transcript JSON file.
func LoadTranscript(path string) (*Transcript, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open transcript: %w", err)
	}
	defer f.Close()
	return ParseTranscript(f)
}

func ParseTranscript(r io.Reader) (*Transcript, error) {
	var t Transcript
	if err := json.NewDecoder(r).Decode(&t); err != nil {
		return nil, fmt.Errorf("parse transcript: %w", err)
	}
	return &t, nil
}

// Seed loads the transcript at path and builds a store from it.
func Seed(path string, rules Rules) (*store.Context, error) {
	t, err := LoadTranscript(path)
	if err != nil {
		return nil, err
	}
	return BuildStore(t, rules), nil
}
