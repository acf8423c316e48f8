package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

// Config holds all runtime configuration. Values come from the environment,
// with an optional .env file for local development.
type Config struct {
	Port    string `env:"PORT" envDefault:"8080"`
	DevMode bool   `env:"DEV_MODE" envDefault:"false"`
	SiteURL string `env:"SITE_URL" envDefault:"https://camperoutlet.es"`

	DatabasePath string `env:"DATABASE_PATH" envDefault:"data/offers.db"`

	// CronSecret guards the sync trigger endpoints. Empty means only
	// dev mode or same-origin requests can trigger them.
	CronSecret string `env:"CRON_SECRET"`

	AmazonPartnerTag string `env:"AMAZON_PARTNER_TAG" envDefault:"camperdeals-21"`

	ScraperCommand     string        `env:"SCRAPER_COMMAND" envDefault:"python3 scraper/professional_amazon_scraper.py"`
	ScraperResultsFile string        `env:"SCRAPER_RESULTS_FILE" envDefault:"scrape_results.json"`
	ScraperTimeout     time.Duration `env:"SCRAPER_TIMEOUT" envDefault:"180s"`

	StalenessWindow time.Duration `env:"STALENESS_WINDOW" envDefault:"168h"`

	TelegramBotToken  string        `env:"TELEGRAM_BOT_TOKEN"`
	TelegramChannelID string        `env:"TELEGRAM_CHANNEL_ID" envDefault:"@camperdeals"`
	PublishLimit      int           `env:"PUBLISH_LIMIT" envDefault:"3"`
	PublishMinDiscount int          `env:"PUBLISH_MIN_DISCOUNT" envDefault:"30"`
	PublishDelay      time.Duration `env:"PUBLISH_DELAY" envDefault:"3s"`

	GeminiAPIKey     string `env:"GOOGLE_API_KEY"`
	GeminiModel      string `env:"GEMINI_MODEL" envDefault:"gemini-2.0-flash"`
	OpenRouterAPIKey string `env:"OPENROUTER_API_KEY"`
	OpenRouterModel  string `env:"OPENROUTER_MODEL" envDefault:"meta-llama/llama-3-8b-instruct:free"`

	BlobEndpoint string `env:"BLOB_ENDPOINT"`
	BlobBucket   string `env:"BLOB_BUCKET" envDefault:"videos"`
	BlobAPIKey   string `env:"BLOB_API_KEY"`
}

// Load reads configuration from the environment. A missing .env file is not
// an error; unset optional credentials only produce warnings.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}

	if cfg.CronSecret == "" && !cfg.DevMode {
		slog.Warn("CRON_SECRET not set, sync endpoints only accept same-origin triggers")
	}
	if cfg.TelegramBotToken == "" {
		slog.Warn("TELEGRAM_BOT_TOKEN not set, channel notifications will be skipped")
	}
	if cfg.GeminiAPIKey == "" && cfg.OpenRouterAPIKey == "" {
		slog.Warn("no AI provider configured, marketing copy falls back to templates")
	}

	if cfg.PublishLimit <= 0 {
		return nil, fmt.Errorf("PUBLISH_LIMIT must be positive, got %d", cfg.PublishLimit)
	}
	if cfg.StalenessWindow <= 0 {
		return nil, fmt.Errorf("STALENESS_WINDOW must be positive, got %s", cfg.StalenessWindow)
	}

	return cfg, nil
}
