package decide

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAILLMDecider is an alternate LLMDecider: it sends the same decision
// prompt built by decisionPrompt to an OpenAI-compatible chat completion
// endpoint and parses a Decision out of the reply, tolerating surrounding
// prose the same way AnthropicLLMDecider does.
type OpenAILLMDecider struct {
	client    *openai.Client
	model     string
	maxTokens int
}

// NewOpenAILLMDecider constructs a decider against the OpenAI chat
// completions API.
func NewOpenAILLMDecider(apiKey, model string, maxTokens int) *OpenAILLMDecider {
	return &OpenAILLMDecider{
		client:    openai.NewClient(apiKey),
		model:     model,
		maxTokens: maxTokens,
	}
}

// Decide implements LLMDecider.
func (d *OpenAILLMDecider) Decide(ctx context.Context, content, category string, related []RelatedNote) (*Decision, error) {
	prompt := decisionPrompt(content, category, related)

	resp, err := d.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     d.model,
		MaxTokens: d.maxTokens,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("chat completion request failed; %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no choices in response")
	}

	return parseDecision(resp.Choices[0].Message.Content)
}
