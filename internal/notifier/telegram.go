// Package notifier posts deal announcements to a Telegram channel.
package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/camperoutlet/camperdeals/internal/models"
)

const defaultAPIBase = "https://api.telegram.org"

// Telegram sends channel messages through the Bot API. A nil-safe empty
// token means sends are skipped and reported as failures.
type Telegram struct {
	apiBase     string
	botToken    string
	channelID   string
	client      *http.Client
	rateLimiter *rate.Limiter
}

// New builds a Telegram client. The rate limiter keeps bursts within the
// Bot API's per-channel message limit.
func New(botToken, channelID string) *Telegram {
	return &Telegram{
		apiBase:     defaultAPIBase,
		botToken:    botToken,
		channelID:   channelID,
		client:      &http.Client{Timeout: 10 * time.Second},
		rateLimiter: rate.NewLimiter(rate.Every(time.Second), 1),
	}
}

// Configured reports whether a bot token is present.
func (t *Telegram) Configured() bool {
	return t.botToken != ""
}

// SendText posts a Markdown message; returns false on any failure.
// No retry: the caller counts failures and moves on.
func (t *Telegram) SendText(ctx context.Context, text string) bool {
	return t.post(ctx, "sendMessage", map[string]any{
		"chat_id":    t.channelID,
		"text":       text,
		"parse_mode": "Markdown",
	})
}

// SendPhoto posts an image with a Markdown caption; returns false on any
// failure.
func (t *Telegram) SendPhoto(ctx context.Context, imageURL, caption string) bool {
	return t.post(ctx, "sendPhoto", map[string]any{
		"chat_id":    t.channelID,
		"photo":      imageURL,
		"caption":    caption,
		"parse_mode": "Markdown",
	})
}

// Announce formats and dispatches one deal, preferring a photo message when
// the deal has a real product image.
func (t *Telegram) Announce(ctx context.Context, deal models.Deal) bool {
	message := FormatDealMessage(deal)
	if deal.ImageURL != "" && !strings.Contains(deal.ImageURL, "placeholder") {
		return t.SendPhoto(ctx, deal.ImageURL, message)
	}
	return t.SendText(ctx, message)
}

func (t *Telegram) post(ctx context.Context, method string, payload map[string]any) bool {
	if t.botToken == "" {
		return false
	}
	if err := t.rateLimiter.Wait(ctx); err != nil {
		return false
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return false
	}

	url := fmt.Sprintf("%s/bot%s/%s", t.apiBase, t.botToken, method)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return false
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	return resp.StatusCode >= 200 && resp.StatusCode < 300
}

// FormatDealMessage renders the channel message for one deal.
func FormatDealMessage(deal models.Deal) string {
	title := deal.Title
	if r := []rune(title); len(r) > 100 {
		title = string(r[:100]) + "..."
	}

	link := deal.AffiliateURL
	if link == "" {
		link = deal.SourceURL
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s *¡OFERTA -%d%%!*\n\n", models.CategoryEmoji(deal.Category), deal.DiscountPercent)
	fmt.Fprintf(&b, "📦 %s\n\n", title)
	fmt.Fprintf(&b, "💰 ~%.2f€~ → *%.2f€*\n", deal.OriginalPrice, deal.Price)
	fmt.Fprintf(&b, "💵 Ahorras: %.2f€\n", deal.Savings())
	if deal.Rating != nil {
		fmt.Fprintf(&b, "\n⭐ %.1f/5\n", *deal.Rating)
	}
	fmt.Fprintf(&b, "\n🔗 [Ver en Amazon](%s)\n\n", link)
	b.WriteString("_Enlace de afiliado. Los precios pueden variar._")
	return b.String()
}
