package providers

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"time"

	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/responses"
)

const (
	OpenAIName         = "openai"
	openAIDefaultModel = "gpt-4o-mini"
)

// OpenAIConfig holds configuration for the OpenAI generation client.
type OpenAIConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration

	// HTTPClient overrides the default client (used in tests).
	HTTPClient *http.Client
}

// OpenAIClient implements Generator using the OpenAI Responses API with
// PDF file input and JSON-schema structured output.
type OpenAIClient struct {
	model   string
	timeout time.Duration
	client  openai.Client
}

// NewOpenAIClient creates a new OpenAI generation client.
// Retries are owned by the caller, so SDK-level retries are disabled.
func NewOpenAIClient(cfg OpenAIConfig) *OpenAIClient {
	if cfg.Model == "" {
		cfg.Model = openAIDefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 300 * time.Second
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithHTTPClient(httpClient),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	return &OpenAIClient{
		model:   cfg.Model,
		timeout: cfg.Timeout,
		client:  openai.NewClient(opts...),
	}
}

// Name returns the provider identifier.
func (c *OpenAIClient) Name() string {
	return OpenAIName
}

// Generate sends the PDF and prompt to the Responses API and parses the
// structured result.
func (c *OpenAIClient) Generate(ctx context.Context, req *Request) (*StructuredResult, error) {
	start := time.Now()

	if len(req.FileData) == 0 {
		return nil, fmt.Errorf("file data is required")
	}

	model := req.Model
	if model == "" {
		model = c.model
	}

	mimeType := req.MimeType
	if mimeType == "" {
		mimeType = "application/pdf"
	}

	encoded := base64.StdEncoding.EncodeToString(req.FileData)

	resp, err := c.client.Responses.New(ctx, responses.ResponseNewParams{
		Model: model,
		Input: responses.ResponseNewParamsInputUnion{
			OfInputItemList: responses.ResponseInputParam{
				responses.ResponseInputItemParamOfMessage(
					responses.ResponseInputMessageContentListParam{
						responses.ResponseInputContentUnionParam{
							OfInputFile: &responses.ResponseInputFileParam{
								FileData: openai.String("data:" + mimeType + ";base64," + encoded),
								Filename: openai.String("document.pdf"),
							},
						},
						responses.ResponseInputContentParamOfInputText(req.Prompt),
					},
					"user",
				),
			},
		},
		Text: responses.ResponseTextConfigParam{
			Format: responses.ResponseFormatTextConfigParamOfJSONSchema("study_guide_chunk", ResultSchema()),
		},
	})
	if err != nil {
		return nil, mapOpenAIError(err)
	}
	if resp == nil {
		return nil, &Error{Provider: OpenAIName, Message: "nil response", Transient: true}
	}

	result, err := ParseStructuredResult(resp.OutputText())
	if err != nil {
		return nil, fmt.Errorf("openai structured output invalid: %w", err)
	}

	result.Provider = OpenAIName
	result.ModelUsed = model
	result.ExecutionTime = time.Since(start)
	return result, nil
}

// mapOpenAIError converts SDK errors into structured provider errors so the
// executor can classify retryability without inspecting message text.
func mapOpenAIError(err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return &Error{
			Provider:   OpenAIName,
			StatusCode: apiErr.StatusCode,
			Message:    apiErr.Message,
		}
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return &Error{Provider: OpenAIName, Message: "request deadline exceeded", Transient: true}
	}

	return err
}

// Verify interface
var _ Generator = (*OpenAIClient)(nil)
