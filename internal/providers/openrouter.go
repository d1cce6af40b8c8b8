package providers

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
)

const (
	OpenRouterName    = "openrouter"
	OpenRouterBaseURL = "https://openrouter.ai/api/v1"
)

// OpenRouterConfig holds configuration for the OpenRouter client.
type OpenRouterConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// OpenRouterClient implements Generator using the OpenRouter chat API with
// PDF file attachments. It makes exactly one attempt per call; backoff and
// retries are owned by the pipeline executor.
type OpenRouterClient struct {
	apiKey  string
	baseURL string
	model   string
	client  *http.Client
}

// NewOpenRouterClient creates a new OpenRouter client.
func NewOpenRouterClient(cfg OpenRouterConfig) *OpenRouterClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = OpenRouterBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = "google/gemini-2.0-flash-001"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 300 * time.Second
	}

	return &OpenRouterClient{
		apiKey:  cfg.APIKey,
		baseURL: cfg.BaseURL,
		model:   cfg.Model,
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

// Name returns the client identifier.
func (c *OpenRouterClient) Name() string {
	return OpenRouterName
}

// Generate sends a chat completion request with the PDF attached and parses
// the structured result.
func (c *OpenRouterClient) Generate(ctx context.Context, req *Request) (*StructuredResult, error) {
	start := time.Now()

	if len(req.FileData) == 0 {
		return nil, fmt.Errorf("file data is required")
	}

	requestID := req.RequestID
	if requestID == "" {
		requestID = uuid.New().String()
	}

	model := req.Model
	if model == "" {
		model = c.model
	}

	mimeType := req.MimeType
	if mimeType == "" {
		mimeType = "application/pdf"
	}

	orReq := openRouterRequest{
		Model: model,
		Messages: []openRouterMessage{
			{
				Role: "user",
				Content: []openRouterContent{
					{
						Type: "file",
						File: &openRouterFile{
							Filename: "document.pdf",
							FileData: "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(req.FileData),
						},
					},
					{Type: "text", Text: req.Prompt},
				},
			},
		},
		ResponseFormat: &openRouterResponseFormat{
			Type: "json_schema",
			JSONSchema: openRouterJSONSchema{
				Name:   "study_guide_chunk",
				Strict: true,
				Schema: ResultSchemaJSON(),
			},
		},
	}

	orResp, err := c.doRequest(ctx, "/chat/completions", requestID, &orReq)
	if err != nil {
		return nil, err
	}

	if len(orResp.Choices) == 0 {
		return nil, &Error{Provider: OpenRouterName, Message: "no choices in response", Transient: true}
	}

	result, err := ParseStructuredResult(orResp.Choices[0].Message.Content)
	if err != nil {
		return nil, fmt.Errorf("openrouter structured output invalid: %w", err)
	}

	result.Provider = OpenRouterName
	result.ModelUsed = orResp.Model
	result.ExecutionTime = time.Since(start)
	return result, nil
}

// doRequest makes a single HTTP request to OpenRouter. Failures are mapped
// to structured Errors carrying the status code.
func (c *OpenRouterClient) doRequest(ctx context.Context, path, requestID string, body *openRouterRequest) (*openRouterResponse, error) {
	bodyBytes, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+path, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("HTTP-Referer", "https://github.com/lumenstudy/lumen")
	req.Header.Set("X-Title", "Lumen")
	req.Header.Set("X-Request-ID", requestID)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &Error{Provider: OpenRouterName, Message: err.Error(), Transient: true}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{Provider: OpenRouterName, Message: fmt.Sprintf("failed to read response: %v", err), Transient: true}
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &Error{
			Provider:   OpenRouterName,
			StatusCode: resp.StatusCode,
			Message:    string(respBody),
		}
	}

	var orResp openRouterResponse
	if err := json.Unmarshal(respBody, &orResp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	return &orResp, nil
}

// OpenRouter API types

type openRouterRequest struct {
	Model          string                    `json:"model"`
	Messages       []openRouterMessage       `json:"messages"`
	ResponseFormat *openRouterResponseFormat `json:"response_format,omitempty"`
}

type openRouterMessage struct {
	Role    string              `json:"role"`
	Content []openRouterContent `json:"content"`
}

type openRouterContent struct {
	Type string          `json:"type"`
	Text string          `json:"text,omitempty"`
	File *openRouterFile `json:"file,omitempty"`
}

type openRouterFile struct {
	Filename string `json:"filename"`
	FileData string `json:"file_data"`
}

type openRouterResponseFormat struct {
	Type       string               `json:"type"`
	JSONSchema openRouterJSONSchema `json:"json_schema"`
}

type openRouterJSONSchema struct {
	Name   string          `json:"name"`
	Strict bool            `json:"strict"`
	Schema json.RawMessage `json:"schema"`
}

type openRouterResponse struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Choices []struct {
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
}

// Verify interface
var _ Generator = (*OpenRouterClient)(nil)
