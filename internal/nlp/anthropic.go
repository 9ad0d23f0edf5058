package nlp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const anthropicMessagesURL = "https://api.anthropic.com/v1/messages"

// fallbackPrompt constrains the model to the coarse label vocabulary.
const fallbackPrompt = `You classify messages sent to a task-management bot. Respond with exactly one of these labels and nothing else:

create_task, set_reminder, get_analytics, edit_task, unknown

Examples:
- "I should really sort out my inbox" -> create_task
- "ping me about the invoice on friday" -> set_reminder
- "how did my week go" -> get_analytics
- "the title of that one is wrong" -> edit_task
- "thanks!" -> unknown`

// AnthropicFallback is an LLM-backed coarse classifier used when keyword
// rules are not enough. It implements dialogue.FallbackClassifier.
type AnthropicFallback struct {
	apiKey     string
	model      string
	httpClient *http.Client
}

// NewAnthropicFallback creates a fallback classifier using the given API key
// and model. The HTTP timeout is short: classification must not stall the
// message pipeline.
func NewAnthropicFallback(apiKey, model string) *AnthropicFallback {
	if model == "" {
		model = "claude-3-5-haiku-20241022"
	}
	return &AnthropicFallback{
		apiKey: apiKey,
		model:  model,
		httpClient: &http.Client{
			Timeout: 5 * time.Second,
		},
	}
}

// Label asks the model for a single coarse label. Any transport or parse
// failure is returned as an error; the engine degrades to unknown.
func (c *AnthropicFallback) Label(ctx context.Context, text string) (string, error) {
	requestBody := map[string]any{
		"model":      c.model,
		"max_tokens": 10,
		"system":     fallbackPrompt,
		"messages": []map[string]string{
			{"role": "user", "content": fmt.Sprintf("Classify this message: %s", text)},
		},
	}

	jsonBody, err := json.Marshal(requestBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, anthropicMessagesURL, bytes.NewReader(jsonBody))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("anthropic-version", "2023-06-01")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("API request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("API returned status %d", resp.StatusCode)
	}

	var apiResp struct {
		Content []struct {
			Text string `json:"text"`
		} `json:"content"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	if len(apiResp.Content) == 0 {
		return "", fmt.Errorf("empty response from API")
	}

	return normalizeLabel(apiResp.Content[0].Text), nil
}

// normalizeLabel trims the model output down to a known label.
func normalizeLabel(raw string) string {
	label := strings.ToLower(strings.TrimSpace(raw))
	switch label {
	case LabelCreateTask, LabelSetReminder, LabelGetAnalytics, LabelEditTask:
		return label
	default:
		return LabelUnknown
	}
}
