package copy

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// Gemini generates copy through the Gemini API with structured JSON output.
type Gemini struct {
	client *genai.Client
	model  string
}

// NewGemini returns nil when no API key is configured so the chain can
// skip the provider entirely.
func NewGemini(ctx context.Context, apiKey, model string) (*Gemini, error) {
	if apiKey == "" {
		return nil, nil
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &Gemini{client: client, model: model}, nil
}

// Name implements Provider.
func (g *Gemini) Name() string { return "gemini" }

type geminiPayload struct {
	Telegram  string `json:"telegram"`
	TikTok    string `json:"tiktok"`
	Instagram string `json:"instagram"`
}

// Generate implements Provider.
func (g *Gemini) Generate(ctx context.Context, req Request) (*MarketingCopy, error) {
	prompt := buildPrompt(req) + `

Devuelve SOLO un objeto JSON con esta estructura exacta:
{"telegram": "...", "tiktok": "...", "instagram": "..."}
- telegram: copy corto con emojis, ancla de precio y enlace de afiliado.
- tiktok: guion con marcas de tiempo (0:00, 0:05, ...) con gancho, beneficios y CTA.
- instagram: caption con hashtags.`

	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt),
		&genai.GenerateContentConfig{
			Temperature:      genai.Ptr[float32](0.8),
			ResponseMIMEType: "application/json",
		})
	if err != nil {
		return nil, fmt.Errorf("gemini generation failed: %w", err)
	}

	text := strings.TrimSpace(resp.Text())
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")

	var payload geminiPayload
	if err := json.Unmarshal([]byte(strings.TrimSpace(text)), &payload); err != nil {
		return nil, fmt.Errorf("parse gemini response: %w", err)
	}
	return &MarketingCopy{
		Telegram:         payload.Telegram,
		TikTokScript:     payload.TikTok,
		InstagramCaption: payload.Instagram,
	}, nil
}

func buildPrompt(req Request) string {
	var b strings.Builder
	b.WriteString("Eres un experto en marketing digital de productos de camping y outdoor. Responde en español.\n")
	fmt.Fprintf(&b, "PRODUCTO: %s\n", req.Topic)
	if req.ProductURL != "" {
		fmt.Fprintf(&b, "URL: %s\n", req.ProductURL)
	}
	if req.Price > 0 {
		fmt.Fprintf(&b, "PRECIO: %.2f€ (descuento %d%%)\n", req.Price, req.Discount)
	}
	if req.Category != "" {
		fmt.Fprintf(&b, "CATEGORÍA: %s\n", req.Category)
	}
	return b.String()
}
