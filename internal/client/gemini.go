package client

import (
	"context"
	"fmt"

	"cloud.google.com/go/auth/credentials"
	"golang.org/x/oauth2/google"
	"google.golang.org/genai"

	"github.com/windfall/kidvocab_service/internal/errors"
	"github.com/windfall/kidvocab_service/internal/model"
)

const cloudPlatformScope = "https://www.googleapis.com/auth/cloud-platform"

// GeminiOptions selects models and voices for a GeminiClient.
type GeminiOptions struct {
	Model    string
	TTSModel string
	VoiceUS  string
	VoiceUK  string
	// BaseURL overrides the API endpoint. Empty uses the SDK default.
	BaseURL string
}

// GeminiClient wraps the Google Gen AI client for structured text and speech.
type GeminiClient struct {
	client    *genai.Client
	model     string
	ttsModel  string
	voices    map[model.Accent]string
	projectID string
	location  string
}

// NewGeminiClient creates a new Gemini client using a Gemini API key.
func NewGeminiClient(ctx context.Context, apiKey string, opts GeminiOptions) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, errors.MissingCredential("gemini")
	}

	cfg := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if opts.BaseURL != "" {
		cfg.HTTPOptions.BaseURL = opts.BaseURL
	}

	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return newGeminiClient(client, opts, "", ""), nil
}

// NewGeminiClientWithServiceAccount creates a new Gemini client on Vertex AI
// from a service account JSON key. The project is read from the key.
func NewGeminiClientWithServiceAccount(ctx context.Context, serviceAccountJSON []byte, location string, opts GeminiOptions) (*GeminiClient, error) {
	if len(serviceAccountJSON) == 0 {
		return nil, errors.MissingCredential("vertex service account")
	}

	gcreds, err := google.CredentialsFromJSON(ctx, serviceAccountJSON, cloudPlatformScope)
	if err != nil {
		return nil, fmt.Errorf("failed to parse service account: %w", err)
	}
	if gcreds.ProjectID == "" {
		return nil, fmt.Errorf("service account has no project_id")
	}

	creds, err := credentials.DetectDefault(&credentials.DetectOptions{
		Scopes:          []string{cloudPlatformScope},
		CredentialsJSON: serviceAccountJSON,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load service account credentials: %w", err)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		Project:     gcreds.ProjectID,
		Location:    location,
		Backend:     genai.BackendVertexAI,
		Credentials: creds,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create vertex gemini client: %w", err)
	}

	return newGeminiClient(client, opts, gcreds.ProjectID, location), nil
}

func newGeminiClient(client *genai.Client, opts GeminiOptions, projectID, location string) *GeminiClient {
	c := &GeminiClient{
		client:    client,
		model:     "gemini-2.5-flash",
		ttsModel:  "gemini-2.5-flash-preview-tts",
		voices:    map[model.Accent]string{model.AccentUS: "Kore", model.AccentUK: "Puck"},
		projectID: projectID,
		location:  location,
	}
	if opts.Model != "" {
		c.model = opts.Model
	}
	if opts.TTSModel != "" {
		c.ttsModel = opts.TTSModel
	}
	if opts.VoiceUS != "" {
		c.voices[model.AccentUS] = opts.VoiceUS
	}
	if opts.VoiceUK != "" {
		c.voices[model.AccentUK] = opts.VoiceUK
	}
	return c
}

// WithModel sets the text model to use.
func (c *GeminiClient) WithModel(model string) *GeminiClient {
	c.model = model
	return c
}

// ProjectID returns the Vertex project, empty for API key clients.
func (c *GeminiClient) ProjectID() string {
	return c.projectID
}

// Close closes the client.
func (c *GeminiClient) Close() {
	// No explicit close needed for new SDK
}

// GenerateJSON runs a schema-constrained generation and returns the raw JSON text.
func (c *GeminiClient) GenerateJSON(ctx context.Context, prompt string, shape Shape) (string, error) {
	cfg := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   geminiSchema(shape),
	}

	resp, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(prompt), cfg)
	if err != nil {
		return "", errors.AIService("gemini generate content failed", err)
	}

	text := resp.Text()
	if text == "" {
		return "", errors.Unparsable("gemini returned no text", nil)
	}
	return text, nil
}

// GenerateSpeech synthesizes the prompt and returns raw 16-bit PCM at 24 kHz.
func (c *GeminiClient) GenerateSpeech(ctx context.Context, req SpeechRequest) ([]byte, error) {
	voice, ok := c.voices[req.Accent]
	if !ok {
		voice = c.voices[model.AccentUS]
	}

	prompt := req.Prompt
	if prompt == "" {
		prompt = req.Text
	}

	cfg := &genai.GenerateContentConfig{
		ResponseModalities: []string{string(genai.ModalityAudio)},
		SpeechConfig: &genai.SpeechConfig{
			VoiceConfig: &genai.VoiceConfig{
				PrebuiltVoiceConfig: &genai.PrebuiltVoiceConfig{VoiceName: voice},
			},
		},
	}

	resp, err := c.client.Models.GenerateContent(ctx, c.ttsModel, genai.Text(prompt), cfg)
	if err != nil {
		return nil, errors.AIService("gemini speech generation failed", err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, errors.Unparsable("gemini returned no audio", nil)
	}
	for _, part := range resp.Candidates[0].Content.Parts {
		if part != nil && part.InlineData != nil && len(part.InlineData.Data) > 0 {
			return part.InlineData.Data, nil
		}
	}
	return nil, errors.Unparsable("gemini returned no audio", nil)
}

func geminiSchema(shape Shape) *genai.Schema {
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
