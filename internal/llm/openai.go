package llm

import (
	"context"
	"fmt"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
)

// OpenAIProvider implements the Provider interface for OpenAI-compatible chat APIs
type OpenAIProvider struct {
	client *openai.Client
	config Config
	name   string
}

// NewOpenAIProvider creates a new OpenAI provider
func NewOpenAIProvider(config Config) (*OpenAIProvider, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}

	clientConfig := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		clientConfig.BaseURL = config.BaseURL
	}

	return &OpenAIProvider{
		client: openai.NewClientWithConfig(clientConfig),
		config: config,
		name:   "openai",
	}, nil
}

// Name returns the provider name
func (p *OpenAIProvider) Name() string {
	return p.name
}

// IsAvailable checks if the provider is properly configured
func (p *OpenAIProvider) IsAvailable(ctx context.Context) bool {
	_, err := p.client.ListModels(ctx)
	return err == nil
}

// Advise generates a note using the Chat Completions API
func (p *OpenAIProvider) Advise(ctx context.Context, req AdviseRequest) (*AdviseResponse, error) {
	prompt := req.Prompt
	if prompt == "" {
		prompt = BuildPrompt(req)
	}

	model := req.Model
	if model == "" {
		model = p.config.Model
	}
	if model == "" {
		model = openai.GPT4oMini
	}

	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = p.config.MaxTokens
	}
	if maxTokens == 0 {
		maxTokens = 400
	}

	timeout := time.Duration(p.config.Timeout) * time.Second
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	ctxWithTimeout, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	chatReq := openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: "You help users choose between music catalog tracks. You never change the given ranking and only cite listed track URIs.",
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
		MaxTokens:   maxTokens,
		Temperature: 0.2,
	}

	resp, err := p.client.CreateChatCompletion(ctxWithTimeout, chatReq)
	if err != nil {
		return nil, fmt.Errorf("%s API error: %w", p.name, err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no response from %s", p.name)
	}

	note := strings.TrimSpace(resp.Choices[0].Message.Content)

	cited := extractTrackURIs(note)
	allowed := req.AllowedURIs()
	for _, uri := range cited {
		if !slices.Contains(allowed, uri) {
			return nil, fmt.Errorf("CITATION LEAK: LLM cited unknown track: %s", uri)
		}
	}

	return &AdviseResponse{
		Note:       note,
		CitedURIs:  cited,
		Model:      model,
		TokensUsed: resp.Usage.TotalTokens,
	}, nil
}

// trackURIPattern matches catalog track identifiers such as spotify:track:<id>
var trackURIPattern = regexp.MustCompile(`\b[a-z][a-z0-9]*:track:[A-Za-z0-9]+`)

// extractTrackURIs extracts unique track URIs from text, in order of appearance
func extractTrackURIs(text string) []string {
	var unique []string
	for _, uri := range trackURIPattern.FindAllString(text, -1) {
		if !slices.Contains(unique, uri) {
			unique = append(unique, uri)
		}
	}
	return unique
}
