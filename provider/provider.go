// Package provider defines the contract against the generative-AI
// backend: schema-constrained chat completion, token streaming, and
// speech-to-text with segment timestamps.
package provider

import (
	"context"
	"encoding/json"
	"io"
)

// ChatRequest describes one chat completion call. When Schema is set the
// provider is asked for a schema-constrained JSON object and ChatJSON
// returns the raw object bytes.
type ChatRequest struct {
	Model       string
	System      string
	User        string
	Temperature float64
	MaxTokens   int
	SchemaName  string
	Schema      json.RawMessage
}

type TranscribeRequest struct {
	FileName string
	Reader   io.Reader
	// Language is an optional hint; empty or "auto" lets the provider
	// detect it.
	Language string
}

type TranscriptionSegment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

type Transcription struct {
	Text     string                 `json:"text"`
	Language string                 `json:"language"`
	Duration float64                `json:"duration"`
	Segments []TranscriptionSegment `json:"segments"`
}

type Provider interface {
	// ChatJSON issues a completion constrained to the request schema and
	// returns the message content, which the caller decodes.
	ChatJSON(ctx context.Context, req ChatRequest) ([]byte, error)

	// ChatStream issues a streaming completion. onChunk is invoked for
	// each content fragment in arrival order; the concatenated text is
	// returned once the stream ends.
	ChatStream(ctx context.Context, req ChatRequest, onChunk func(string)) (string, error)

	// Transcribe runs speech-to-text and returns verbose output with
	// segment-level timestamps. An empty segment list is not an error.
	Transcribe(ctx context.Context, req TranscribeRequest) (*Transcription, error)
}
