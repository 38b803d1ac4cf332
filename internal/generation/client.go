package generation

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/mimosaworkshops/testimonial-api/internal/testimonial"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

// DefaultModelName is the model used when none is configured. The complex
// multi-format copywriting task needs the larger reasoning model.
const DefaultModelName = "gemini-3-pro-preview"

var (
	// ErrProviderFailure covers transport failures and provider-side errors.
	ErrProviderFailure = errors.New("generation: provider request failed")
	// ErrMalformedResponse covers responses that fail to parse as the declared
	// four-section structure.
	ErrMalformedResponse = errors.New("generation: malformed provider response")

	errMissingModel = errors.New("content model is required")
)

// ContentModel is the provider boundary: one call taking the instruction
// block, returning a structured response or an error. *genai.GenerativeModel
// satisfies it.
type ContentModel interface {
	GenerateContent(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error)
}

// ClientConfig describes the dependencies required to construct a Client.
type ClientConfig struct {
	Model     ContentModel
	BrandName string
	Logger    *zap.Logger
}

// Client turns a completed entry into a provider request and enforces the
// response contract. It performs no retries: retry is the caller's decision.
type Client struct {
	model     ContentModel
	brandName string
	logger    *zap.Logger
}

// NewClient constructs a generation client over the provided content model.
func NewClient(cfg ClientConfig) (*Client, error) {
	if cfg.Model == nil {
		return nil, fmt.Errorf("generation: %w", errMissingModel)
	}
	brandName := cfg.BrandName
	if brandName == "" {
		brandName = DefaultBrandName
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{model: cfg.Model, brandName: brandName, logger: logger}, nil
}

// Generate builds the (possibly redacted) instruction block for the entry,
// invokes the provider, and parses the response into an output bundle. Any
// transport failure, provider-side error, or contract violation surfaces as
// a single recoverable error with no partial bundle. The provider is
// non-deterministic, so two calls with identical input produce different
// prose.
func (c *Client) Generate(ctx context.Context, entry testimonial.Entry) (testimonial.Outputs, error) {
	prompt, err := BuildPrompt(c.brandName, entry)
	if err != nil {
		return testimonial.Outputs{}, err
	}

	response, err := c.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return testimonial.Outputs{}, fmt.Errorf("%w: %v", ErrProviderFailure, err)
	}

	payload, err := responseText(response)
	if err != nil {
		return testimonial.Outputs{}, err
	}

	outputs, err := decodeOutputs([]byte(payload))
	if err != nil {
		c.logger.Warn("provider response violated the output contract",
			zap.String("entry_id", entry.ID),
			zap.Error(err))
		return testimonial.Outputs{}, err
	}
	return outputs, nil
}

// responseText concatenates the text parts of the first candidate.
func responseText(response *genai.GenerateContentResponse) (string, error) {
	if response == nil || len(response.Candidates) == 0 || response.Candidates[0].Content == nil {
		return "", fmt.Errorf("%w: empty candidate set", ErrMalformedResponse)
	}
	var builder strings.Builder
	for _, part := range response.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			builder.WriteString(string(text))
		}
	}
	if builder.Len() == 0 {
		return "", fmt.Errorf("%w: no text parts", ErrMalformedResponse)
	}
	return builder.String(), nil
}

// NewGeminiModel opens a Gemini client and configures a generative model with
// the structured four-section response schema. The returned closer releases
// the underlying connection.
func NewGeminiModel(ctx context.Context, apiKey, modelName string) (*genai.GenerativeModel, func() error, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, nil, fmt.Errorf("generation: api key is required")
	}
	if modelName == "" {
		modelName = DefaultModelName
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, nil, fmt.Errorf("generation: create provider client: %w", err)
	}

	model := client.GenerativeModel(modelName)
	model.ResponseMIMEType = "application/json"
	model.ResponseSchema = outputsSchema

	return model, client.Close, nil
}
