package models

import (
	"errors"
	"time"
)

// ErrNotFound is returned when a deal lookup by ASIN matches nothing.
var ErrNotFound = errors.New("deal not found")

// Deal is the canonical persisted product-offer record. The ASIN is the
// stable 10-character Amazon product code and never changes after insert.
type Deal struct {
	ASIN            string    `json:"asin" validate:"required,len=10,alphanum"`
	Title           string    `json:"title" validate:"required"`
	Description     string    `json:"description"`
	Price           float64   `json:"price" validate:"gt=0"`
	OriginalPrice   float64   `json:"original_price" validate:"gt=0"`
	DiscountPercent int       `json:"discount" validate:"gte=0,lte=100"`
	ImageURL        string    `json:"image_url"`
	SourceURL       string    `json:"url" validate:"required,url"`
	AffiliateURL    string    `json:"affiliate_url" validate:"required,url"`
	Category        string    `json:"category"`
	Rating          *float64  `json:"rating,omitempty" validate:"omitempty,gte=0,lte=5"`
	ReviewCount     *int      `json:"review_count,omitempty" validate:"omitempty,gte=0"`
	IsActive        bool      `json:"is_active"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// Savings is the absolute price drop. DiscountPercent stays authoritative;
// this is only used for display copy.
func (d Deal) Savings() float64 {
	return d.OriginalPrice - d.Price
}

// RawScrapeRecord is the loosely typed shape emitted by the external scraper.
// It only exists between acquisition and normalization and is never persisted.
type RawScrapeRecord map[string]any

// NotificationEvent records one dispatch attempt to a messaging channel.
// Events are append-only.
type NotificationEvent struct {
	ASIN        string    `json:"asin"`
	Channel     string    `json:"channel"`
	Success     bool      `json:"success"`
	PublishedAt time.Time `json:"published_at"`
}
