package client

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/cloudwego/eino-ext/components/model/claude"
	"github.com/cloudwego/eino-ext/components/model/gemini"
	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"google.golang.org/genai"
)

// Default models per provider. Gemini matches the model the mobile scanner
// shipped with.
const (
	DefaultGeminiModel = "gemini-1.5-flash"
	DefaultOpenAIModel = "gpt-4o-mini"
	DefaultClaudeModel = "claude-3-5-haiku-latest"

	claudeMaxTokens = 2048
)

// Analyzer is the AI boundary used by the scan orchestrator: one image plus
// one prompt in, free text out.
type Analyzer interface {
	AnalyzeImage(ctx context.Context, image []byte, mimeType, prompt string) (string, error)
}

// LLMClient adapts any eino chat model to the Analyzer boundary.
type LLMClient struct {
	chatModel model.BaseChatModel
	provider  string
	modelName string
}

// Provider returns the provider identifier the client was built for.
func (c *LLMClient) Provider() string { return c.provider }

// ModelName returns the underlying model name.
func (c *LLMClient) ModelName() string { return c.modelName }

// AnalyzeImage sends the captured label photo and the prompt to the model in
// a single user message and returns the assistant text. An empty image or
// prompt is rejected before any network call.
func (c *LLMClient) AnalyzeImage(ctx context.Context, image []byte, mimeType, prompt string) (string, error) {
	if len(image) == 0 {
		return "", fmt.Errorf("image data is empty")
	}
	if strings.TrimSpace(prompt) == "" {
		return "", fmt.Errorf("prompt is empty")
	}
	if mimeType == "" {
		mimeType = "image/jpeg"
	}

	dataURL := fmt.Sprintf("data:%s;base64,%s", mimeType, base64.StdEncoding.EncodeToString(image))
	messages := []*schema.Message{
		{
			Role: schema.User,
			MultiContent: []schema.ChatMessagePart{
				{
					Type: schema.ChatMessagePartTypeImageURL,
					ImageURL: &schema.ChatMessageImageURL{
						URL:      dataURL,
						MIMEType: mimeType,
						Detail:   schema.ImageURLDetailAuto,
					},
				},
				{
					Type: schema.ChatMessagePartTypeText,
					Text: prompt,
				},
			},
		},
	}

	out, err := c.chatModel.Generate(ctx, messages)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}
	if out == nil {
		return "", fmt.Errorf("model returned no message")
	}
	return out.Content, nil
}

type GeminiModelOptions struct {
	Model string
}

// NewGeminiClient builds an Analyzer on the Gemini API.
func NewGeminiClient(ctx context.Context, apiKey string, opts GeminiModelOptions) (*LLMClient, error) {
	modelName := opts.Model
	if modelName == "" {
		modelName = DefaultGeminiModel
	}

	genaiClient, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	chatModel, err := gemini.NewChatModel(ctx, &gemini.Config{
		Client: genaiClient,
		Model:  modelName,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini chat model: %w", err)
	}

	return &LLMClient{chatModel: chatModel, provider: "gemini", modelName: modelName}, nil
}

type OpenAIModelOptions struct {
	Model string
}

// NewOpenAIClient builds an Analyzer on the OpenAI API.
func NewOpenAIClient(ctx context.Context, apiKey string, opts OpenAIModelOptions) (*LLMClient, error) {
	modelName := opts.Model
	if modelName == "" {
		modelName = DefaultOpenAIModel
	}

	chatModel, err := openai.NewChatModel(ctx, &openai.ChatModelConfig{
		APIKey: apiKey,
		Model:  modelName,
	})
	if err != nil {
		return nil, fmt.Errorf("create openai chat model: %w", err)
	}

	return &LLMClient{chatModel: chatModel, provider: "openai", modelName: modelName}, nil
}

type ClaudeModelOptions struct {
	Model string
}

// NewClaudeClient builds an Analyzer on the Anthropic API.
func NewClaudeClient(ctx context.Context, apiKey string, opts ClaudeModelOptions) (*LLMClient, error) {
	modelName := opts.Model
	if modelName == "" {
		modelName = DefaultClaudeModel
	}

	chatModel, err := claude.NewChatModel(ctx, &claude.Config{
		APIKey:    apiKey,
		Model:     modelName,
		MaxTokens: claudeMaxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("create claude chat model: %w", err)
	}

	return &LLMClient{chatModel: chatModel, provider: "anthropic", modelName: modelName}, nil
}

// NewClient builds an Analyzer for the named provider. An empty model picks
// the provider default.
func NewClient(ctx context.Context, provider, apiKey, modelName string) (*LLMClient, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("API key for %s is not configured", provider)
	}

	switch strings.ToLower(strings.TrimSpace(provider)) {
	case "gemini":
		return NewGeminiClient(ctx, apiKey, GeminiModelOptions{Model: modelName})
	case "openai":
		return NewOpenAIClient(ctx, apiKey, OpenAIModelOptions{Model: modelName})
	case "anthropic", "claude":
		return NewClaudeClient(ctx, apiKey, ClaudeModelOptions{Model: modelName})
	default:
		return nil, fmt.Errorf("unsupported provider: %s", provider)
	}
}
