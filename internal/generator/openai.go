package generator

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	goopenai "github.com/sashabaranov/go-openai"

	"kbqa/internal/domain"
)

const defaultBaseURL = "https://api.openai.com/v1"

// OpenAIConfig configures a chat-completion backed generator.
type OpenAIConfig struct {
	BaseURL   string
	APIKeyEnv string
	Model     string
	Timeout   time.Duration
}

// OpenAI answers through any OpenAI-compatible chat completion endpoint.
type OpenAI struct {
	api   *goopenai.Client
	model string
}

// NewOpenAI creates the generator. The API key may only be absent for
// self-hosted endpoints.
func NewOpenAI(cfg OpenAIConfig) (*OpenAI, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	key := os.Getenv(cfg.APIKeyEnv)
	if key == "" && strings.HasPrefix(cfg.BaseURL, defaultBaseURL) {
		return nil, fmt.Errorf("missing API key in env %s", cfg.APIKeyEnv)
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	occ := goopenai.DefaultConfig(key)
	occ.BaseURL = strings.TrimSuffix(cfg.BaseURL, "/")
	occ.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	return &OpenAI{api: goopenai.NewClientWithConfig(occ), model: cfg.Model}, nil
}

func (g *OpenAI) Name() string { return "openai" }

// Generate sends the rendered prompt as a single user message.
func (g *OpenAI) Generate(ctx context.Context, prompt domain.Prompt, maxTokens int) (string, error) {
	resp, err := g.api.CreateChatCompletion(ctx, goopenai.ChatCompletionRequest{
		Model: g.model,
		Messages: []goopenai.ChatCompletionMessage{
			{Role: goopenai.ChatMessageRoleUser, Content: Render(prompt)},
		},
		MaxTokens:   maxTokens,
		Temperature: 0,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("chat completion returned no choices")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
