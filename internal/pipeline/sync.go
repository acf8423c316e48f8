// Package pipeline orchestrates the catalog refresh and publish runs.
// Each run is a self-contained state machine: no state is carried between
// invocations beyond what lives in the store, so re-triggering is always
// safe.
package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/camperoutlet/camperdeals/internal/config"
	"github.com/camperoutlet/camperdeals/internal/models"
	"github.com/camperoutlet/camperdeals/internal/normalize"
	"github.com/camperoutlet/camperdeals/internal/scraper"
	"github.com/camperoutlet/camperdeals/internal/store"
)

// Provenance markers for a scrape run's data source.
const (
	ProvenanceScraper  = "scraper"
	ProvenanceFallback = "fallback"
)

const notificationChannel = "telegram"

// ScrapeReport summarizes one scrape→normalize→persist→expire run.
type ScrapeReport struct {
	RunID             string `json:"runId"`
	Processed         int    `json:"processed"`
	Rejected          int    `json:"rejected"`
	InsertedOrUpdated int    `json:"insertedOrUpdated"`
	Errors            int    `json:"errors"`
	Deactivated       int    `json:"deactivated"`
	Provenance        string `json:"provenance"`
	Note              string `json:"note,omitempty"`
}

// PublishResult is the per-deal outcome of a publish run.
type PublishResult struct {
	ASIN    string `json:"asin"`
	Title   string `json:"title"`
	Success bool   `json:"success"`
}

// PublishReport summarizes one notification dispatch run.
type PublishReport struct {
	RunID     string          `json:"runId"`
	Published int             `json:"published"`
	Total     int             `json:"total"`
	Results   []PublishResult `json:"results"`
}

// Sync wires the scraper, normalizer, store and notifier into the two
// independently triggerable runs.
type Sync struct {
	store    DealStore
	notifier DealNotifier
	runner   ScrapeRunner
	cfg      *config.Config

	// sleep is swapped out in tests to avoid real publish delays.
	sleep func(ctx context.Context, d time.Duration) error
}

// New builds a Sync orchestrator.
func New(s DealStore, n DealNotifier, r ScrapeRunner, cfg *config.Config) *Sync {
	return &Sync{
		store:    s,
		notifier: n,
		runner:   r,
		cfg:      cfg,
		sleep:    sleepCtx,
	}
}

// RunScrape executes acquire → (fallback) → normalize → persist → expire.
// A scraper failure degrades to the sample set instead of failing the run,
// and an expiry failure is logged and noted but never fails a run that
// already persisted deals.
func (s *Sync) RunScrape(ctx context.Context) (*ScrapeReport, error) {
	report := &ScrapeReport{
		RunID:      uuid.NewString(),
		Provenance: ProvenanceScraper,
	}
	slog.Info("Starting scrape run", "runId", report.RunID)

	var deals []models.Deal

	output, err := s.runner.Run(ctx)
	if err != nil {
		slog.Error("Scraper failed, using sample data as fallback", "runId", report.RunID, "error", err)
		deals = scraper.SampleDeals()
		report.Provenance = ProvenanceFallback
		report.Note = "scraper failed, using sample data as fallback"
	} else {
		slog.Info("Scraper returned records", "runId", report.RunID, "count", len(output.Records))
		var rejections []string
		deals, rejections = normalize.Batch(output.Records, s.cfg.AmazonPartnerTag)
		report.Rejected = len(rejections)
		for _, reason := range rejections {
			slog.Warn("Dropped record", "runId", report.RunID, "reason", reason)
		}
	}

	report.Processed = len(deals)

	batch := s.store.UpsertBatch(ctx, deals)
	report.InsertedOrUpdated = batch.InsertedOrUpdated
	report.Errors = batch.Errors

	deactivated, err := s.store.DeactivateStale(ctx, s.cfg.StalenessWindow)
	if err != nil {
		slog.Error("Failed to deactivate stale deals", "runId", report.RunID, "error", err)
		report.Errors++
		report.Note = appendNote(report.Note, "failed to deactivate stale deals")
	}
	report.Deactivated = deactivated

	slog.Info("Scrape run finished",
		"runId", report.RunID,
		"provenance", report.Provenance,
		"insertedOrUpdated", report.InsertedOrUpdated,
		"errors", report.Errors,
		"deactivated", report.Deactivated,
	)
	return report, nil
}

// RunPublish selects the top active deals by discount and announces them
// sequentially, waiting the configured delay between messages to respect
// the channel's rate limit. Every attempt is logged to the audit trail,
// success or not.
func (s *Sync) RunPublish(ctx context.Context) (*PublishReport, error) {
	report := &PublishReport{RunID: uuid.NewString()}
	slog.Info("Starting publish run", "runId", report.RunID)

	deals, err := s.store.Query(ctx, publishFilter(s.cfg))
	if err != nil {
		return report, err
	}
	report.Total = len(deals)
	if len(deals) == 0 {
		slog.Info("No deals to publish", "runId", report.RunID)
		return report, nil
	}

	for i, deal := range deals {
		success := s.notifier.Announce(ctx, deal)
		if success {
			report.Published++
			slog.Info("Published deal", "runId", report.RunID, "asin", deal.ASIN)
		} else {
			slog.Warn("Failed to publish deal", "runId", report.RunID, "asin", deal.ASIN)
		}

		report.Results = append(report.Results, PublishResult{
			ASIN:    deal.ASIN,
			Title:   truncate(deal.Title, 50),
			Success: success,
		})

		if err := s.store.LogNotification(ctx, models.NotificationEvent{
			ASIN:        deal.ASIN,
			Channel:     notificationChannel,
			Success:     success,
			PublishedAt: time.Now().UTC(),
		}); err != nil {
			slog.Warn("Failed to log notification event", "runId", report.RunID, "error", err)
		}

		// No delay after the last item.
		if i < len(deals)-1 {
			if err := s.sleep(ctx, s.cfg.PublishDelay); err != nil {
				return report, err
			}
		}
	}

	slog.Info("Publish run finished", "runId", report.RunID,
		"published", report.Published, "total", report.Total)
	return report, nil
}

func publishFilter(cfg *config.Config) store.Filter {
	return store.Filter{
		MinDiscount: cfg.PublishMinDiscount,
		ActiveOnly:  true,
		Limit:       cfg.PublishLimit,
	}
}

func appendNote(existing, note string) string {
	if existing == "" {
		return note
	}
	return existing + "; " + note
}

func truncate(s string, n int) string {
	return string(lo.Subset([]rune(s), 0, uint(n)))
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
