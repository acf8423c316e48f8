package copy

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const openRouterURL = "https://openrouter.ai/api/v1/chat/completions"

// OpenRouter generates copy through the OpenRouter chat-completions API.
type OpenRouter struct {
	apiKey   string
	model    string
	referer  string
	endpoint string
	client   *http.Client
}

// NewOpenRouter returns nil when no API key is configured.
func NewOpenRouter(apiKey, model, referer string) *OpenRouter {
	if apiKey == "" {
		return nil
	}
	return &OpenRouter{
		apiKey:   apiKey,
		model:    model,
		referer:  referer,
		endpoint: openRouterURL,
		client:   &http.Client{Timeout: 30 * time.Second},
	}
}

// Name implements Provider.
func (o *OpenRouter) Name() string { return "openrouter" }

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Generate implements Provider.
func (o *OpenRouter) Generate(ctx context.Context, req Request) (*MarketingCopy, error) {
	prompt := buildPrompt(req) + `

Devuelve SOLO un objeto JSON: {"telegram": "...", "tiktok": "...", "instagram": "..."}`

	payload := chatRequest{
		Model: o.model,
		Messages: []chatMessage{
			{Role: "system", Content: "You are an expert social media marketer specializing in outdoor and camping products. Always respond in Spanish."},
			{Role: "user", Content: prompt},
		},
		Temperature: 0.8,
		MaxTokens:   1000,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, o.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Authorization", "Bearer "+o.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("HTTP-Referer", o.referer)
	httpReq.Header.Set("X-Title", "Camper Deals - AI Marketing")

	resp, err := o.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("openrouter request: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("openrouter status %d: %s", resp.StatusCode, string(respBody))
	}

	var chat chatResponse
	if err := json.Unmarshal(respBody, &chat); err != nil {
		return nil, fmt.Errorf("parse openrouter response: %w", err)
	}
	if len(chat.Choices) == 0 {
		return nil, fmt.Errorf("no choices in openrouter response")
	}

	text := strings.TrimSpace(chat.Choices[0].Message.Content)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")

	var parsed geminiPayload
	if err := json.Unmarshal([]byte(strings.TrimSpace(text)), &parsed); err != nil {
		return nil, fmt.Errorf("parse openrouter content: %w", err)
	}
	return &MarketingCopy{
		Telegram:         parsed.Telegram,
		TikTokScript:     parsed.TikTok,
		InstagramCaption: parsed.Instagram,
	}, nil
}
