package client

import (
	"context"
	"fmt"
	"io"

	openai "github.com/sashabaranov/go-openai"

	"github.com/windfall/kidvocab_service/internal/errors"
	"github.com/windfall/kidvocab_service/internal/model"
)

// OpenAIOptions selects models and voices for an OpenAIClient.
type OpenAIOptions struct {
	Model    string
	TTSModel string
	VoiceUS  string
	VoiceUK  string
	// BaseURL overrides the API endpoint, including the /v1 suffix.
	BaseURL string
}

// OpenAIClient wraps the OpenAI API client.
type OpenAIClient struct {
	client   *openai.Client
	model    string
	ttsModel openai.SpeechModel
	voices   map[model.Accent]openai.SpeechVoice
}

// NewOpenAIClient creates a new OpenAI client.
func NewOpenAIClient(apiKey string, opts OpenAIOptions) (*OpenAIClient, error) {
	if apiKey == "" {
		return nil, errors.MissingCredential("openai")
	}

	cfg := openai.DefaultConfig(apiKey)
	if opts.BaseURL != "" {
		cfg.BaseURL = opts.BaseURL
	}

	c := &OpenAIClient{
		client:   openai.NewClientWithConfig(cfg),
		model:    openai.GPT4oMini,
		ttsModel: openai.TTSModel1,
		voices: map[model.Accent]openai.SpeechVoice{
			model.AccentUS: openai.VoiceNova,
			model.AccentUK: openai.VoiceFable,
		},
	}
	if opts.Model != "" {
		c.model = opts.Model
	}
	if opts.TTSModel != "" {
		c.ttsModel = openai.SpeechModel(opts.TTSModel)
	}
	if opts.VoiceUS != "" {
		c.voices[model.AccentUS] = openai.SpeechVoice(opts.VoiceUS)
	}
	if opts.VoiceUK != "" {
		c.voices[model.AccentUK] = openai.SpeechVoice(opts.VoiceUK)
	}
	return c, nil
}

// WithModel sets the chat model to use.
func (c *OpenAIClient) WithModel(model string) *OpenAIClient {
	c.model = model
	return c
}

// GenerateJSON asks the chat model for a JSON object of the given shape and
// returns the raw JSON text. Word lists come back wrapped as {"words": [...]}.
func (c *OpenAIClient) GenerateJSON(ctx context.Context, prompt string, shape Shape) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: openAIShapeInstruction(shape),
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return "", errors.AIService("openai chat completion failed", err)
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", errors.Unparsable("openai returned no content", nil)
	}

	return resp.Choices[0].Message.Content, nil
}

// GenerateSpeech synthesizes the literal text and returns raw 16-bit PCM at 24 kHz.
func (c *OpenAIClient) GenerateSpeech(ctx context.Context, req SpeechRequest) ([]byte, error) {
	voice, ok := c.voices[req.Accent]
	if !ok {
		voice = c.voices[model.AccentUS]
	}

	resp, err := c.client.CreateSpeech(ctx, openai.CreateSpeechRequest{
		Model:          c.ttsModel,
		Input:          req.Text,
		Voice:          voice,
		ResponseFormat: openai.SpeechResponseFormatPcm,
	})
	if err != nil {
		return nil, errors.AIService("openai speech generation failed", err)
	}
	defer resp.Close()

	data, err := io.ReadAll(resp)
	if err != nil {
		return nil, errors.AIService("failed to read openai speech", err)
	}
	return data, nil
}

func openAIShapeInstruction(shape Shape) string {
	switch shape {
	case ShapeGrade:
		return `Respond with a JSON object {"score": <integer 0-100>, "feedback": <string>}.`
	default:
		return fmt.Sprintf("Respond with a JSON object %s where every entry has string fields word, translation, example and an optional phonetic.",
			`{"words": [...]}`)
	}
}
