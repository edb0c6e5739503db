// Package openai implements provider.Provider against the OpenAI HTTP
// API: chat completions with structured output, SSE token streaming, and
// Whisper transcription with verbose segment output.
package openai

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"edulingua/errors"
	"edulingua/provider"

	pkgerrors "github.com/pkg/errors"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

const (
	defaultBaseURL  = "https://api.openai.com/v1"
	chatPath        = "/chat/completions"
	transcribePath  = "/audio/transcriptions"
	defaultChatTime = 2 * time.Minute
	defaultSTTTime  = 10 * time.Minute
)

type Config struct {
	APIKey  string
	BaseURL string

	// Timeouts per operation class: chat completions are short, speech
	// transcription is long. Deadline hits surface as a timeout error
	// kind, not a generic provider failure.
	ChatTimeout       time.Duration
	TranscribeTimeout time.Duration

	// Outbound pacing against provider rate limits. Zero disables.
	RequestsPerSecond float64
	Burst             int

	TranscribeModel string
}

type Client struct {
	config     Config
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     zerolog.Logger
}

func NewClient(cfg Config, logger zerolog.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.ChatTimeout <= 0 {
		cfg.ChatTimeout = defaultChatTime
	}
	if cfg.TranscribeTimeout <= 0 {
		cfg.TranscribeTimeout = defaultSTTTime
	}
	if cfg.TranscribeModel == "" {
		cfg.TranscribeModel = "whisper-1"
	}

	var limiter *rate.Limiter
	if cfg.RequestsPerSecond > 0 {
		burst := cfg.Burst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst)
	}

	return &Client{
		config: cfg,
		httpClient: &http.Client{
			Transport: &http.Transport{
				MaxIdleConns:        10,
				MaxIdleConnsPerHost: 5,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		limiter: limiter,
		logger:  logger.With().Str("component", "openai").Logger(),
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionRequest struct {
	Model          string          `json:"model"`
	Messages       []chatMessage   `json:"messages"`
	Temperature    float64         `json:"temperature"`
	MaxTokens      int             `json:"max_tokens,omitempty"`
	Stream         bool            `json:"stream,omitempty"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type responseFormat struct {
	Type       string      `json:"type"`
	JSONSchema *jsonSchema `json:"json_schema,omitempty"`
}

type jsonSchema struct {
	Name   string          `json:"name"`
	Schema json.RawMessage `json:"schema"`
	Strict bool            `json:"strict"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func (c *Client) ChatJSON(ctx context.Context, req provider.ChatRequest) ([]byte, error) {
	const op = "OpenAIClient.ChatJSON"

	body := chatCompletionRequest{
		Model: req.Model,
		Messages: []chatMessage{
			{Role: "system", Content: req.System},
			{Role: "user", Content: req.User},
		},
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	}
	if req.Schema != nil {
		body.ResponseFormat = &responseFormat{
			Type: "json_schema",
			JSONSchema: &jsonSchema{
				Name:   req.SchemaName,
				Schema: req.Schema,
				Strict: true,
			},
		}
	}

	ctx, cancel := context.WithTimeout(ctx, c.config.ChatTimeout)
	defer cancel()

	respBody, err := c.postJSON(ctx, op, chatPath, body)
	if err != nil {
		return nil, err
	}

	var chatResp chatCompletionResponse
	if err := json.Unmarshal(respBody, &chatResp); err != nil {
		return nil, errors.Provider(op, err, "Malformed provider response")
	}
	if len(chatResp.Choices) == 0 {
		return nil, errors.Provider(op, nil, "Provider returned no choices")
	}

	return []byte(chatResp.Choices[0].Message.Content), nil
}

func (c *Client) ChatStream(ctx context.Context, req provider.ChatRequest, onChunk func(string)) (string, error) {
	const op = "OpenAIClient.ChatStream"

	body := chatCompletionRequest{
		Model: req.Model,
		Messages: []chatMessage{
			{Role: "system", Content: req.System},
			{Role: "user", Content: req.User},
		},
		Temperature: req.Temperature,
		Stream:      true,
	}

	ctx, cancel := context.WithTimeout(ctx, c.config.ChatTimeout)
	defer cancel()

	resp, err := c.post(ctx, op, chatPath, "application/json", mustMarshal(body))
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", c.statusError(op, resp)
	}

	var full strings.Builder
	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, "data:") {
			continue
		}
		data := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if data == "[DONE]" {
			break
		}

		var chunk struct {
			Choices []struct {
				Delta struct {
					Content string `json:"content"`
				} `json:"delta"`
			} `json:"choices"`
		}
		if err := json.Unmarshal([]byte(data), &chunk); err != nil {
			return "", errors.Provider(op, err, "Malformed stream chunk")
		}
		if len(chunk.Choices) == 0 {
			continue
		}
		if content := chunk.Choices[0].Delta.Content; content != "" {
			full.WriteString(content)
			if onChunk != nil {
				onChunk(content)
			}
		}
	}

	if err := scanner.Err(); err != nil {
		return "", c.transportError(op, err, "Stream read failed")
	}

	return full.String(), nil
}

func (c *Client) Transcribe(ctx context.Context, req provider.TranscribeRequest) (*provider.Transcription, error) {
	const op = "OpenAIClient.Transcribe"

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile("file", req.FileName)
	if err != nil {
		return nil, errors.Internal(op, err, "Failed to build upload")
	}
	if _, err := io.Copy(part, req.Reader); err != nil {
		return nil, errors.Internal(op, err, "Failed to read media")
	}

	writer.WriteField("model", c.config.TranscribeModel)
	writer.WriteField("response_format", "verbose_json")
	writer.WriteField("temperature", "0.2")
	if req.Language != "" && req.Language != "auto" {
		writer.WriteField("language", req.Language)
	}
	writer.Close()

	ctx, cancel := context.WithTimeout(ctx, c.config.TranscribeTimeout)
	defer cancel()

	resp, err := c.post(ctx, op, transcribePath, writer.FormDataContentType(), buf.Bytes())
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, c.transportError(op, err, "Failed to read provider response")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, c.bodyStatusError(op, resp.StatusCode, respBody)
	}

	var result provider.Transcription
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, errors.Provider(op, err, "Malformed transcription response")
	}

	return &result, nil
}

// postJSON posts a JSON body and returns the raw response body for OK
// responses; non-OK statuses become provider errors.
func (c *Client) postJSON(ctx context.Context, op, path string, body interface{}) ([]byte, error) {
	resp, err := c.post(ctx, op, path, "application/json", mustMarshal(body))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, c.transportError(op, err, "Failed to read provider response")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, c.bodyStatusError(op, resp.StatusCode, respBody)
	}
	return respBody, nil
}

func (c *Client) post(ctx context.Context, op, path, contentType string, body []byte) (*http.Response, error) {
	if c.config.APIKey == "" {
		return nil, errors.Provider(op, nil, "Provider API key not configured")
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, c.transportError(op, err, "Rate limit wait aborted")
		}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, errors.Internal(op, err, "Failed to build provider request")
	}
	httpReq.Header.Set("Content-Type", contentType)
	httpReq.Header.Set("Authorization", "Bearer "+c.config.APIKey)

	c.logger.Debug().Str("path", path).Int("body_bytes", len(body)).Msg("Provider request")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, c.transportError(op, err, "Provider request failed")
	}
	return resp, nil
}

// transportError distinguishes deadline hits from other transport
// failures so callers see a timeout kind.
func (c *Client) transportError(op string, err error, message string) *errors.AppError {
	if ctxErr := context.DeadlineExceeded; pkgerrors.Is(err, ctxErr) {
		return errors.Timeout(op, err, "Provider request timed out")
	}
	return errors.Provider(op, pkgerrors.Wrap(err, "transport"), message)
}

func (c *Client) statusError(op string, resp *http.Response) *errors.AppError {
	body, _ := io.ReadAll(resp.Body)
	return c.bodyStatusError(op, resp.StatusCode, body)
}

func (c *Client) bodyStatusError(op string, status int, body []byte) *errors.AppError {
	// OpenAI wraps failures as {"error": {"message": ...}}; surface that
	// message verbatim when present.
	var apiErr struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	message := fmt.Sprintf("Provider error (status %d)", status)
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Error.Message != "" {
		message = apiErr.Error.Message
	}
	c.logger.Error().Int("status", status).Str("message", message).Msg("Provider error")
	return errors.Provider(op, nil, message)
}

func mustMarshal(v interface{}) []byte {
	data, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return data
}
