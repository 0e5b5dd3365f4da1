package chat

import (
	"context"
	"fmt"
	"os"

	openai "github.com/sashabaranov/go-openai"
)

// DefaultBaseURL is the local Ollama OpenAI-compatible endpoint.
const DefaultBaseURL = "http://localhost:11434/v1"

// OpenAI talks to any OpenAI-compatible chat endpoint, which in the
// default setup is a local Ollama server.
type OpenAI struct {
	client *openai.Client
}

// NewOpenAI builds a completer against baseURL. The base URL falls back
// to OLLAMA_HOST, then to the local default. Ollama ignores the API key
// but the client requires one.
func NewOpenAI(baseURL string) *OpenAI {
	if baseURL == "" {
		baseURL = os.Getenv("OLLAMA_HOST")
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	cfg := openai.DefaultConfig("ollama")
	cfg.BaseURL = baseURL
	return &OpenAI{client: openai.NewClientWithConfig(cfg)}
}

func (o *OpenAI) Complete(ctx context.Context, model string, turns []Turn, opts Options) (string, error) {
	req := openai.ChatCompletionRequest{Model: model}
	for _, t := range turns {
		req.Messages = append(req.Messages, openai.ChatCompletionMessage{
			Role:    string(t.Role),
			Content: t.Content,
		})
	}
	if opts.Temperature != nil {
		req.Temperature = float32(*opts.Temperature)
	}
	if opts.MaxTokens != nil {
		req.MaxTokens = *opts.MaxTokens
	}

	resp, err := o.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("empty completion response")
	}
	return resp.Choices[0].Message.Content, nil
}
