// Package store persists the deal catalog in SQLite.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	_ "modernc.org/sqlite"

	"github.com/camperoutlet/camperdeals/internal/models"
)

var validate = validator.New()

// Catalog manages deal persistence backed by SQLite.
type Catalog struct {
	db   *sql.DB
	path string
}

// BatchResult summarizes an UpsertBatch run. Errors counts individual write
// failures; they never abort the remaining items.
type BatchResult struct {
	InsertedOrUpdated int `json:"insertedOrUpdated"`
	Errors            int `json:"errors"`
}

// Filter narrows Query results. Zero values mean "no constraint".
type Filter struct {
	Category    string
	MinDiscount int
	ActiveOnly  bool
	Limit       int
	Offset      int
}

// Stats aggregates catalog-wide numbers for the status endpoint.
type Stats struct {
	TotalDeals  int       `json:"totalDeals"`
	ActiveDeals int       `json:"activeDeals"`
	AvgDiscount int       `json:"avgDiscount"`
	MaxDiscount int       `json:"maxDiscount"`
	LastUpdate  time.Time `json:"lastUpdate"`
}

// Open initializes or connects to the catalog database and applies the schema.
func Open(path string) (*Catalog, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("ensure data directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	c := &Catalog{db: db, path: path}
	if err := c.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return c, nil
}

// Close closes the underlying database connection.
func (c *Catalog) Close() error {
	if c == nil || c.db == nil {
		return nil
	}
	return c.db.Close()
}

func (c *Catalog) initSchema(ctx context.Context) error {
	schema := `
CREATE TABLE IF NOT EXISTS deals (
    asin TEXT PRIMARY KEY,
    title TEXT NOT NULL,
    description TEXT,
    price REAL NOT NULL,
    original_price REAL NOT NULL,
    discount INTEGER NOT NULL,
    image_url TEXT NOT NULL,
    url TEXT NOT NULL,
    affiliate_url TEXT NOT NULL,
    category TEXT NOT NULL,
    rating REAL,
    review_count INTEGER,
    is_active INTEGER NOT NULL DEFAULT 1,
    updated_at TEXT NOT NULL,
    created_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_deals_category ON deals(category);
CREATE INDEX IF NOT EXISTS idx_deals_discount ON deals(discount DESC);
CREATE INDEX IF NOT EXISTS idx_deals_updated ON deals(updated_at DESC);

CREATE TABLE IF NOT EXISTS notification_events (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    asin TEXT NOT NULL,
    channel TEXT NOT NULL,
    success INTEGER NOT NULL,
    published_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_events_published ON notification_events(published_at DESC);
`
	if _, err := c.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

// Upsert inserts the deal or overwrites every field except the ASIN.
// updated_at is always refreshed, so repeated calls are idempotent in
// end-state while still counting as an ingestion touch.
func (c *Catalog) Upsert(ctx context.Context, deal models.Deal) error {
	if err := validate.Struct(deal); err != nil {
		return fmt.Errorf("invalid deal %q: %w", deal.ASIN, err)
	}
	now := time.Now().UTC().Format(time.RFC3339Nano)
	_, err := c.db.ExecContext(ctx, `
INSERT INTO deals (
    asin, title, description, price, original_price, discount,
    image_url, url, affiliate_url, category, rating, review_count,
    is_active, updated_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(asin) DO UPDATE SET
    title = excluded.title,
    description = excluded.description,
    price = excluded.price,
    original_price = excluded.original_price,
    discount = excluded.discount,
    image_url = excluded.image_url,
    url = excluded.url,
    affiliate_url = excluded.affiliate_url,
    category = excluded.category,
    rating = excluded.rating,
    review_count = excluded.review_count,
    is_active = excluded.is_active,
    updated_at = excluded.updated_at`,
		deal.ASIN, deal.Title, deal.Description, deal.Price, deal.OriginalPrice,
		deal.DiscountPercent, deal.ImageURL, deal.SourceURL, deal.AffiliateURL,
		deal.Category, nullableFloat(deal.Rating), nullableInt(deal.ReviewCount),
		boolToInt(deal.IsActive), now,
	)
	if err != nil {
		return fmt.Errorf("upsert deal %s: %w", deal.ASIN, err)
	}
	return nil
}

// UpsertBatch applies Upsert per item with failure isolation: a storage error
// on one deal is logged and counted, and the remaining items still run.
func (c *Catalog) UpsertBatch(ctx context.Context, deals []models.Deal) BatchResult {
	var result BatchResult
	for _, deal := range deals {
		if err := c.Upsert(ctx, deal); err != nil {
			slog.Error("Failed to upsert deal", "asin", deal.ASIN, "error", err)
			result.Errors++
			continue
		}
		result.InsertedOrUpdated++
	}
	return result
}

// DeactivateStale flips is_active off for active deals not touched within
// maxAge. Rows are never deleted; returns the number of deals deactivated.
func (c *Catalog) DeactivateStale(ctx context.Context, maxAge time.Duration) (int, error) {
	cutoff := time.Now().UTC().Add(-maxAge).Format(time.RFC3339Nano)
	res, err := c.db.ExecContext(ctx,
		`UPDATE deals SET is_active = 0 WHERE is_active = 1 AND updated_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("deactivate stale deals: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return int(n), nil
}

// Query returns deals ordered by discount descending, most recently
// refreshed first on ties.
func (c *Catalog) Query(ctx context.Context, f Filter) ([]models.Deal, error) {
	var (
		conds []string
		args  []any
	)
	if f.Category != "" {
		conds = append(conds, "category = ?")
		args = append(args, f.Category)
	}
	if f.MinDiscount > 0 {
		conds = append(conds, "discount >= ?")
		args = append(args, f.MinDiscount)
	}
	if f.ActiveOnly {
		conds = append(conds, "is_active = 1")
	}

	query := "SELECT " + dealColumns + " FROM deals"
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY discount DESC, updated_at DESC"
	if f.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, f.Limit)
		if f.Offset > 0 {
			query += " OFFSET ?"
			args = append(args, f.Offset)
		}
	}

	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query deals: %w", err)
	}
	defer rows.Close()

	var deals []models.Deal
	for rows.Next() {
		deal, err := scanDeal(rows)
		if err != nil {
			return nil, err
		}
		deals = append(deals, deal)
	}
	return deals, rows.Err()
}

// GetByASIN returns one deal or models.ErrNotFound.
func (c *Catalog) GetByASIN(ctx context.Context, asin string) (*models.Deal, error) {
	row := c.db.QueryRowContext(ctx,
		"SELECT "+dealColumns+" FROM deals WHERE asin = ?", asin)
	deal, err := scanDeal(row)
	if err == sql.ErrNoRows {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &deal, nil
}

// Stats aggregates catalog numbers; an empty catalog yields zero values.
func (c *Catalog) Stats(ctx context.Context) (Stats, error) {
	var s Stats
	var avg sql.NullFloat64
	var max sql.NullInt64
	var last sql.NullString

	err := c.db.QueryRowContext(ctx, `
SELECT COUNT(*),
       COALESCE(SUM(is_active), 0),
       AVG(discount),
       MAX(discount),
       MAX(updated_at)
FROM deals`).Scan(&s.TotalDeals, &s.ActiveDeals, &avg, &max, &last)
	if err != nil {
		return Stats{}, fmt.Errorf("query stats: %w", err)
	}
	if avg.Valid {
		s.AvgDiscount = int(avg.Float64 + 0.5)
	}
	if max.Valid {
		s.MaxDiscount = int(max.Int64)
	}
	if last.Valid {
		if t, perr := time.Parse(time.RFC3339Nano, last.String); perr == nil {
			s.LastUpdate = t
		}
	}
	return s, nil
}

// LogNotification appends one dispatch attempt to the audit log.
func (c *Catalog) LogNotification(ctx context.Context, ev models.NotificationEvent) error {
	_, err := c.db.ExecContext(ctx,
		`INSERT INTO notification_events (asin, channel, success, published_at) VALUES (?, ?, ?, ?)`,
		ev.ASIN, ev.Channel, boolToInt(ev.Success), ev.PublishedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("log notification for %s: %w", ev.ASIN, err)
	}
	return nil
}

// LastNotificationAt returns the timestamp of the most recent dispatch
// attempt, or the zero time when none exist.
func (c *Catalog) LastNotificationAt(ctx context.Context) (time.Time, error) {
	var last sql.NullString
	err := c.db.QueryRowContext(ctx,
		`SELECT MAX(published_at) FROM notification_events`).Scan(&last)
	if err != nil {
		return time.Time{}, fmt.Errorf("query last notification: %w", err)
	}
	if !last.Valid {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339Nano, last.String)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse last notification timestamp: %w", err)
	}
	return t, nil
}

// Ping verifies database connectivity for the status endpoint.
func (c *Catalog) Ping(ctx context.Context) error {
	return c.db.PingContext(ctx)
}

const dealColumns = `asin, title, description, price, original_price, discount,
image_url, url, affiliate_url, category, rating, review_count, is_active, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDeal(row rowScanner) (models.Deal, error) {
	var (
		deal      models.Deal
		desc      sql.NullString
		rating    sql.NullFloat64
		reviews   sql.NullInt64
		active    int
		updatedAt string
	)
	err := row.Scan(
		&deal.ASIN, &deal.Title, &desc, &deal.Price, &deal.OriginalPrice,
		&deal.DiscountPercent, &deal.ImageURL, &deal.SourceURL,
		&deal.AffiliateURL, &deal.Category, &rating, &reviews, &active, &updatedAt,
	)
	if err != nil {
		return models.Deal{}, err
	}
	deal.Description = desc.String
	if rating.Valid {
		deal.Rating = &rating.Float64
	}
	if reviews.Valid {
		n := int(reviews.Int64)
		deal.ReviewCount = &n
	}
	deal.IsActive = active != 0
	if t, perr := time.Parse(time.RFC3339Nano, updatedAt); perr == nil {
		deal.UpdatedAt = t
	}
	return deal, nil
}

func nullableFloat(f *float64) any {
	if f == nil {
		return nil
	}
	return *f
}

func nullableInt(i *int) any {
	if i == nil {
		return nil
	}
	return *i
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
