package decide

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"
)

const anthropicAPIURL = "https://api.anthropic.com/v1/messages"

// AnthropicLLMDecider is the reference LLMDecider: it builds a decision
// prompt from the content, category, and related notes, sends it to the
// Claude messages API, and parses a Decision out of the reply. Malformed
// or non-JSON replies are surfaced as an error so Decide falls back to
// the heuristic, per Open Question 3.
type AnthropicLLMDecider struct {
	apiKey     string
	model      string
	maxTokens  int
	httpClient *http.Client
}

// NewAnthropicLLMDecider constructs a decider against the Claude messages
// API, mirroring the teacher's semantic.Client HTTP envelope.
func NewAnthropicLLMDecider(apiKey, model string, maxTokens, timeoutSeconds int) *AnthropicLLMDecider {
	return &AnthropicLLMDecider{
		apiKey:    apiKey,
		model:     model,
		maxTokens: maxTokens,
		httpClient: &http.Client{
			Timeout: time.Duration(timeoutSeconds) * time.Second,
		},
	}
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content []anthropicTextContent `json:"content"`
}

type anthropicTextContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type anthropicRequest struct {
	Model     string              `json:"model"`
	MaxTokens int                 `json:"max_tokens"`
	Messages  []anthropicMessage  `json:"messages"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

// Decide implements LLMDecider.
func (d *AnthropicLLMDecider) Decide(ctx context.Context, content, category string, related []RelatedNote) (*Decision, error) {
	prompt := decisionPrompt(content, category, related)

	reqBody, err := json.Marshal(anthropicRequest{
		Model:     d.model,
		MaxTokens: d.maxTokens,
		Messages: []anthropicMessage{
			{Role: "user", Content: []anthropicTextContent{{Type: "text", Text: prompt}}},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request; %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, anthropicAPIURL, bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request; %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", d.apiKey)
	httpReq.Header.Set("anthropic-version", "2023-06-01")

	httpResp, err := d.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to send request; %w", err)
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response; %w", err)
	}
	if httpResp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API returned status %d: %s", httpResp.StatusCode, string(respBody))
	}

	var resp anthropicResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response; %w", err)
	}
	if len(resp.Content) == 0 {
		return nil, fmt.Errorf("no content in response")
	}

	return parseDecision(resp.Content[0].Text)
}

var jsonObjectPattern = regexp.MustCompile(`(?s)\{.*\}`)

// parseDecision extracts and unmarshals the Decision JSON object from the
// model's reply, tolerating surrounding prose the way the original's
// regex-extraction fallback does.
func parseDecision(text string) (*Decision, error) {
	candidate := strings.TrimSpace(text)
	if m := jsonObjectPattern.FindString(candidate); m != "" {
		candidate = m
	}

	var d Decision
	if err := json.Unmarshal([]byte(candidate), &d); err != nil {
		return nil, fmt.Errorf("failed to parse decision JSON; %w", err)
	}
	if d.Action != "create" && d.Action != "update" {
		return nil, fmt.Errorf("decision has invalid action %q", d.Action)
	}
	if d.Alternatives == nil {
		d.Alternatives = []Alternative{}
	}
	return &d, nil
}

func decisionPrompt(content, category string, related []RelatedNote) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are an intelligent knowledge management assistant. Decide whether to CREATE a new note or UPDATE an existing note for the content below.\n\n")
	fmt.Fprintf(&b, "CATEGORY: %s\nWORD COUNT: %d\nCONTENT:\n%s\n\n", category, len(strings.Fields(content)), content)

	if len(related) == 0 {
		b.WriteString("EXISTING RELEVANT NOTES: none found.\n\n")
	} else {
		b.WriteString("EXISTING RELEVANT NOTES:\n")
		for i, n := range related {
			fmt.Fprintf(&b, "%d. %s (category: %s, relevance: %.2f, via %s)\n   %s\n",
				i+1, n.Title, n.Category, n.RelevanceScore, n.SourceType, n.Snippet)
		}
		b.WriteString("\n")
	}

	b.WriteString(`Respond with ONLY a JSON object: {"action":"create"|"update","confidence":0.0-1.0,"reasoning":["..."],"recommended_note":{"title":"...","file_path":"...","category":"..."}|null,"alternatives":[{"title":"...","reason":"..."}]}`)
	return b.String()
}
