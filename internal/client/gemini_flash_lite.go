package client

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/windfall/kidvocab_service/internal/errors"
)

// GeminiFlashLiteClient wraps the Gemini Flash Lite model used for short,
// latency sensitive judgements such as pronunciation grading.
type GeminiFlashLiteClient struct {
	client *genai.Client
	model  string
}

// NewGeminiFlashLiteClient creates a new Gemini Flash Lite client from an API key.
func NewGeminiFlashLiteClient(ctx context.Context, apiKey string) (*GeminiFlashLiteClient, error) {
	if apiKey == "" {
		return nil, errors.MissingCredential("gemini flash lite")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini flash lite client: %w", err)
	}

	return &GeminiFlashLiteClient{
		client: client,
		model:  "gemini-2.5-flash-lite",
	}, nil
}

// WithModel sets the model to use.
func (c *GeminiFlashLiteClient) WithModel(model string) *GeminiFlashLiteClient {
	if model != "" {
		c.model = model
	}
	return c
}

// Close closes the client.
func (c *GeminiFlashLiteClient) Close() {
	if c.client != nil {
		c.client.Close()
	}
}

// GenerateJSON runs a schema-constrained generation and returns the raw JSON text.
func (c *GeminiFlashLiteClient) GenerateJSON(ctx context.Context, prompt string, shape Shape) (string, error) {
	model := c.client.GenerativeModel(c.model)
	model.ResponseMIMEType = "application/json"
	model.ResponseSchema = flashLiteSchema(shape)

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", errors.AIService("gemini flash lite generate content failed", err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", errors.Unparsable("gemini flash lite returned no candidates", nil)
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	if sb.Len() == 0 {
		return "", errors.Unparsable("gemini flash lite returned no text", nil)
	}
	return sb.String(), nil
}

func flashLiteSchema(shape Shape) *genai.Schema {
	switch shape {
	case ShapeGrade:
		return &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"score":    {Type: genai.TypeInteger},
				"feedback": {Type: genai.TypeString},
			},
			Required: []string{"score", "feedback"},
		}
	default:
		return &genai.Schema{
			Type: genai.TypeArray,
			Items: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"word":        {Type: genai.TypeString},
					"translation": {Type: genai.TypeString},
					"example":     {Type: genai.TypeString},
					"phonetic":    {Type: genai.TypeString},
				},
				Required: []string{"word", "translation", "example"},
			},
		}
	}
}
