package openai

import (
	"context"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/ahsan-courses/coursebot/internal/domain"
)

// PlaceholderReply is returned instead of calling the model when no API key is configured.
const PlaceholderReply = "[LLM API key not configured. Set GEMINI_API_KEY in .env to enable live responses]"

const systemPrompt = `You are Ahsan Courses AI Chatbot assistant. You help users learn about our AI courses.
You ONLY answer questions about these course categories:
%s
Be professional and concise. If someone asks about topics outside these courses,
politely decline and offer to take their contact information or suggest exploring our course catalog.

When describing courses, include:
- Course duration
- Prerequisites
- Key topics covered
- Learning outcomes
- Next steps for enrollment`

// ChatConfig holds the answer model settings.
type ChatConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float32
	TopP        float32
	MaxTokens   int
	Timeout     time.Duration
	Logger      *zap.Logger
}

// ChatClient generates course answers through an OpenAI-compatible chat
// completions endpoint (Gemini exposes one).
type ChatClient struct {
	client      *openai.Client
	configured  bool
	model       string
	temperature float32
	topP        float32
	maxTokens   int
	logger      *zap.Logger
}

// NewChatClient creates an answer generator.
func NewChatClient(cfg *ChatConfig) *ChatClient {
	return &ChatClient{
		client:      newClient(cfg.APIKey, cfg.BaseURL, cfg.Timeout),
		configured:  cfg.APIKey != "",
		model:       cfg.Model,
		temperature: cfg.Temperature,
		topP:        cfg.TopP,
		maxTokens:   cfg.MaxTokens,
		logger:      cfg.Logger,
	}
}

// Configured reports whether live generation is enabled.
func (c *ChatClient) Configured() bool { return c.configured }

// Generate answers question using the retrieved course context.
func (c *ChatClient) Generate(ctx context.Context, question, courseContext string) (string, error) {
	if !c.configured {
		return PlaceholderReply, nil
	}

	req := openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: buildSystemPrompt()},
			{Role: openai.ChatMessageRoleUser, Content: buildUserPrompt(question, courseContext)},
		},
		Temperature: c.temperature,
		TopP:        c.topP,
		MaxTokens:   c.maxTokens,
	}

	start := time.Now()
	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", wrapAPIError("llm", err, domain.ErrLLMProviderError)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("llm returned no choices: %w", domain.ErrLLMProviderError)
	}

	answer := strings.TrimSpace(resp.Choices[0].Message.Content)
	if answer == "" {
		return "", fmt.Errorf("llm returned empty answer (finish_reason=%s): %w",
			resp.Choices[0].FinishReason, domain.ErrLLMProviderError)
	}

	domain.UsageFromContext(ctx).AddLLMTokens(resp.Usage.TotalTokens)

	c.logger.Debug("LLM answer generated",
		zap.String("model", c.model),
		zap.Int("prompt_tokens", resp.Usage.PromptTokens),
		zap.Int("completion_tokens", resp.Usage.CompletionTokens),
		zap.Duration("duration", time.Since(start)),
	)
	return answer, nil
}

// HealthCheck verifies the model endpoint when a key is configured.
func (c *ChatClient) HealthCheck(ctx context.Context) error {
	if !c.configured {
		return nil
	}
	if _, err := c.client.ListModels(ctx); err != nil {
		return fmt.Errorf("list models: %w", err)
	}
	return nil
}

func buildSystemPrompt() string {
	var b strings.Builder
	for _, course := range domain.Courses {
		b.WriteString("- ")
		b.WriteString(course)
		b.WriteString("\n")
	}
	return fmt.Sprintf(systemPrompt, b.String())
}

func buildUserPrompt(question, courseContext string) string {
	if strings.TrimSpace(courseContext) == "" {
		courseContext = "(no matching course material found)"
	}
	return "Use this course context to answer accurately:\n" + courseContext +
		"\n\nUser Question: " + question
}
