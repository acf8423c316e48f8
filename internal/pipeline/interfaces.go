package pipeline

import (
	"context"
	"time"

	"github.com/camperoutlet/camperdeals/internal/models"
	"github.com/camperoutlet/camperdeals/internal/scraper"
	"github.com/camperoutlet/camperdeals/internal/store"
)

// DealStore abstracts the catalog persistence the pipeline needs.
type DealStore interface {
	UpsertBatch(ctx context.Context, deals []models.Deal) store.BatchResult
	DeactivateStale(ctx context.Context, maxAge time.Duration) (int, error)
	Query(ctx context.Context, f store.Filter) ([]models.Deal, error)
	LogNotification(ctx context.Context, ev models.NotificationEvent) error
}

// DealNotifier abstracts the messaging channel.
type DealNotifier interface {
	Announce(ctx context.Context, deal models.Deal) bool
}

// ScrapeRunner abstracts the external scraping process.
type ScrapeRunner interface {
	Run(ctx context.Context) (*scraper.Output, error)
}
