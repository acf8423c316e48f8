// Package copy generates social-media marketing copy for deals, trying
// configured AI providers in a fixed preference order and degrading to a
// deterministic template so callers never see a hard failure.
package copy

import (
	"context"
	"fmt"
	"log/slog"
)

// Request describes the product the copy should promote.
type Request struct {
	Topic      string  `json:"topic" binding:"required"`
	ProductURL string  `json:"productUrl"`
	Price      float64 `json:"price"`
	Discount   int     `json:"discount"`
	Category   string  `json:"category"`
}

// MarketingCopy is the per-platform output. Provenance names the provider
// that produced it ("gemini", "openrouter" or "template").
type MarketingCopy struct {
	Telegram         string `json:"telegram"`
	TikTokScript     string `json:"tiktokScript"`
	InstagramCaption string `json:"instagramCaption"`
	Provenance       string `json:"provenance"`
}

// Provider is one text-generation backend.
type Provider interface {
	Name() string
	Generate(ctx context.Context, req Request) (*MarketingCopy, error)
}

// Chain tries providers in order and falls back to the template when all
// fail or none is configured.
type Chain struct {
	providers []Provider
}

// NewChain builds a Chain; nil providers are skipped.
func NewChain(providers ...Provider) *Chain {
	var kept []Provider
	for _, p := range providers {
		if p != nil {
			kept = append(kept, p)
		}
	}
	return &Chain{providers: kept}
}

// Generate never returns an error: exhausting every provider yields the
// template copy with provenance "template".
func (c *Chain) Generate(ctx context.Context, req Request) *MarketingCopy {
	for _, p := range c.providers {
		out, err := p.Generate(ctx, req)
		if err != nil {
			slog.Warn("Copy provider failed, trying next", "provider", p.Name(), "error", err)
			continue
		}
		out.Provenance = p.Name()
		return out
	}
	return templateCopy(req)
}

func templateCopy(req Request) *MarketingCopy {
	link := req.ProductURL
	if link == "" {
		link = "enlace en bio"
	}
	return &MarketingCopy{
		Telegram: fmt.Sprintf(
			"🔥 *¡CHOLLO: %s!* 🔥\n\n⬇️ Bajada de precio destacada\n✅ Calidad premium\n📦 Envío rápido\n\n👉 %s\n\n#camping #ofertas",
			req.Topic, link),
		TikTokScript: fmt.Sprintf(
			"(0:00) 😲 ¡Mira esta oferta de %s!\n(0:10) Todas las ventajas en 20 segundos.\n(0:30) ¡Link en bio!",
			req.Topic),
		InstagramCaption: fmt.Sprintf(
			"✨ %s a precio de escándalo.\n\n¡Link en bio! #camping #ofertas #outdoor",
			req.Topic),
		Provenance: "template",
	}
}
