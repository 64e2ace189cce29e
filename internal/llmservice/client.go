package llmservice

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"docsearch/internal/config"
	"docsearch/internal/metrics"

	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"
	"google.golang.org/genai"
)

// Client sends a single free-text prompt to a language model and returns its
// free-text reply.
type Client interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

var errEmptyResponse = errors.New("empty response from language model")

// NewClient builds the client for the configured provider.
func NewClient(ctx context.Context, llmConfig *config.LLMConfig) (Client, error) {
	log.Debug().
		Str("provider", llmConfig.Provider).
		Str("model", llmConfig.Model).
		Str("base_url", llmConfig.BaseURL).
		Msg("Creating llm client")

	var (
		c   Client
		err error
	)
	switch llmConfig.Provider {
	case config.ProviderGemini:
		c, err = newGeminiClient(ctx, llmConfig)
	case config.ProviderOpenAI:
		var llm llms.Model
		llm, err = openai.New(
			openai.WithBaseURL(llmConfig.BaseURL),
			openai.WithToken(strings.TrimPrefix(llmConfig.Key, "Bearer ")),
			openai.WithModel(llmConfig.Model),
		)
		c = &langchainClient{llm: llm, temperature: llmConfig.Temperature}
	case config.ProviderOllama:
		var llm llms.Model
		llm, err = ollama.New(
			ollama.WithServerURL(llmConfig.BaseURL),
			ollama.WithModel(llmConfig.Model),
		)
		c = &langchainClient{llm: llm, temperature: llmConfig.Temperature}
	default:
		return nil, fmt.Errorf("unsupported llm provider: %q", llmConfig.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("initializing %s client: %w", llmConfig.Provider, err)
	}
	return WithMetrics(c, llmConfig.Provider, llmConfig.Model), nil
}

// langchainClient serves the openai-compatible and ollama providers.
type langchainClient struct {
	llm         llms.Model
	temperature float32
}

func (c *langchainClient) Generate(ctx context.Context, prompt string) (string, error) {
	msgContent := []llms.MessageContent{
		{
			Role:  llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{llms.TextContent{Text: prompt}},
		},
	}

	var opts []llms.CallOption
	if c.temperature > 0 {
		opts = append(opts, llms.WithTemperature(float64(c.temperature)))
	}

	res, err := c.llm.GenerateContent(ctx, msgContent, opts...)
	if err != nil {
		return "", err
	}
	if res == nil || len(res.Choices) == 0 {
		return "", errEmptyResponse
	}
	return res.Choices[0].Content, nil
}

type geminiClient struct {
	client *genai.Client
	model  string
	config *genai.GenerateContentConfig
}

func newGeminiClient(ctx context.Context, llmConfig *config.LLMConfig) (*geminiClient, error) {
	cc := &genai.ClientConfig{
		APIKey:  llmConfig.Key,
		Backend: genai.BackendGeminiAPI,
	}
	if llmConfig.BaseURL != "" {
		cc.HTTPOptions.BaseURL = llmConfig.BaseURL
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, err
	}

	gc := &genai.GenerateContentConfig{}
	if llmConfig.Temperature > 0 {
		gc.Temperature = genai.Ptr(llmConfig.Temperature)
	}
	return &geminiClient{client: client, model: llmConfig.Model, config: gc}, nil
}

func (c *geminiClient) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(prompt), c.config)
	if err != nil {
		return "", err
	}
	text := resp.Text()
	if text == "" {
		return "", errEmptyResponse
	}
	return text, nil
}

type instrumented struct {
	next     Client
	provider string
	model    string
}

// WithMetrics records request counts and latency for every call made through c.
func WithMetrics(c Client, provider, model string) Client {
	return &instrumented{next: c, provider: provider, model: model}
}

func (i *instrumented) Generate(ctx context.Context, prompt string) (string, error) {
	start := time.Now()
	out, err := i.next.Generate(ctx, prompt)
	metrics.LLMRequestDuration.WithLabelValues(i.provider, i.model).Observe(time.Since(start).Seconds())

	status := "ok"
	if err != nil {
		status = "error"
	}
	metrics.LLMRequestsTotal.WithLabelValues(i.provider, i.model, status).Inc()
	return out, err
}
