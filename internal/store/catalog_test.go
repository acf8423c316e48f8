package store

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-faker/faker/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/camperoutlet/camperdeals/internal/models"
)

func newTestCatalog(t *testing.T) *Catalog {
	t.Helper()
	c, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func testDeal(asin string, discount int) models.Deal {
	return models.Deal{
		ASIN:            asin,
		Title:           faker.Sentence(),
		Description:     faker.Paragraph(),
		Price:           59.99,
		OriginalPrice:   99.99,
		DiscountPercent: discount,
		ImageURL:        "https://images.example.com/" + asin + ".jpg",
		SourceURL:       "https://www.amazon.es/dp/" + asin,
		AffiliateURL:    "https://www.amazon.es/dp/" + asin + "?tag=camperdeals-21",
		Category:        models.CategoryDefault,
		IsActive:        true,
	}
}

// backdate rewrites a deal's updated_at so staleness logic can be exercised
// without waiting.
func backdate(t *testing.T, c *Catalog, asin string, age time.Duration) {
	t.Helper()
	ts := time.Now().UTC().Add(-age).Format(time.RFC3339Nano)
	_, err := c.db.Exec(`UPDATE deals SET updated_at = ? WHERE asin = ?`, ts, asin)
	require.NoError(t, err)
}

func TestUpsertAndGetByASIN(t *testing.T) {
	c := newTestCatalog(t)
	ctx := context.Background()

	deal := testDeal("B0AAAAAAA1", 40)
	rating := 4.3
	reviews := 128
	deal.Rating = &rating
	deal.ReviewCount = &reviews

	require.NoError(t, c.Upsert(ctx, deal))

	got, err := c.GetByASIN(ctx, "B0AAAAAAA1")
	require.NoError(t, err)
	assert.Equal(t, deal.Title, got.Title)
	assert.Equal(t, 40, got.DiscountPercent)
	require.NotNil(t, got.Rating)
	assert.Equal(t, 4.3, *got.Rating)
	require.NotNil(t, got.ReviewCount)
	assert.Equal(t, 128, *got.ReviewCount)
	assert.True(t, got.IsActive)
	assert.False(t, got.UpdatedAt.IsZero())
}

func TestGetByASINNotFound(t *testing.T) {
	c := newTestCatalog(t)
	_, err := c.GetByASIN(context.Background(), "B0MISSING1")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestUpsertIsIdempotentPerASIN(t *testing.T) {
	c := newTestCatalog(t)
	ctx := context.Background()

	deal := testDeal("B0AAAAAAA1", 30)
	require.NoError(t, c.Upsert(ctx, deal))

	deal.Price = 49.99
	deal.DiscountPercent = 50
	require.NoError(t, c.Upsert(ctx, deal))

	deals, err := c.Query(ctx, Filter{})
	require.NoError(t, err)
	require.Len(t, deals, 1, "same ASIN must never produce a second row")
	assert.Equal(t, 49.99, deals[0].Price)
	assert.Equal(t, 50, deals[0].DiscountPercent)
}

func TestUpsertReactivatesStaleDeal(t *testing.T) {
	c := newTestCatalog(t)
	ctx := context.Background()

	require.NoError(t, c.Upsert(ctx, testDeal("B0AAAAAAA1", 30)))
	backdate(t, c, "B0AAAAAAA1", 8*24*time.Hour)

	n, err := c.DeactivateStale(ctx, 7*24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	// A fresh scrape of the same ASIN brings it back.
	require.NoError(t, c.Upsert(ctx, testDeal("B0AAAAAAA1", 35)))
	got, err := c.GetByASIN(ctx, "B0AAAAAAA1")
	require.NoError(t, err)
	assert.True(t, got.IsActive)
}

func TestDeactivateStaleLeavesFreshDeals(t *testing.T) {
	c := newTestCatalog(t)
	ctx := context.Background()

	require.NoError(t, c.Upsert(ctx, testDeal("B0OLDDEAL1", 30)))
	require.NoError(t, c.Upsert(ctx, testDeal("B0FRESH111", 30)))
	backdate(t, c, "B0OLDDEAL1", 8*24*time.Hour)
	backdate(t, c, "B0FRESH111", 6*24*time.Hour)

	n, err := c.DeactivateStale(ctx, 7*24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	old, err := c.GetByASIN(ctx, "B0OLDDEAL1")
	require.NoError(t, err)
	assert.False(t, old.IsActive, "stale deal must be deactivated, not deleted")

	fresh, err := c.GetByASIN(ctx, "B0FRESH111")
	require.NoError(t, err)
	assert.True(t, fresh.IsActive)
}

func TestUpsertBatchIsolatesFailures(t *testing.T) {
	c := newTestCatalog(t)
	ctx := context.Background()

	deals := []models.Deal{
		testDeal("B0AAAAAAA1", 30),
		testDeal("B0AAAAAAA2", 35),
		{ASIN: "", Title: "broken"}, // fails validation before the write
		testDeal("B0AAAAAAA3", 40),
		testDeal("B0AAAAAAA4", 45),
	}
	res := c.UpsertBatch(ctx, deals)
	assert.Equal(t, 4, res.InsertedOrUpdated)
	assert.Equal(t, 1, res.Errors)

	stored, err := c.Query(ctx, Filter{})
	require.NoError(t, err)
	assert.Len(t, stored, 4)
}

func TestQueryOrderingAndFilters(t *testing.T) {
	c := newTestCatalog(t)
	ctx := context.Background()

	require.NoError(t, c.Upsert(ctx, testDeal("B0DISC0020", 20)))
	require.NoError(t, c.Upsert(ctx, testDeal("B0DISC0050", 50)))
	require.NoError(t, c.Upsert(ctx, testDeal("B0DISC0035", 35)))

	inactive := testDeal("B0DISC0090", 90)
	inactive.IsActive = false
	require.NoError(t, c.Upsert(ctx, inactive))

	deals, err := c.Query(ctx, Filter{ActiveOnly: true})
	require.NoError(t, err)
	require.Len(t, deals, 3)
	assert.Equal(t, "B0DISC0050", deals[0].ASIN, "highest discount first")
	assert.Equal(t, "B0DISC0035", deals[1].ASIN)
	assert.Equal(t, "B0DISC0020", deals[2].ASIN)

	deals, err = c.Query(ctx, Filter{ActiveOnly: true, MinDiscount: 30, Limit: 1})
	require.NoError(t, err)
	require.Len(t, deals, 1)
	assert.Equal(t, "B0DISC0050", deals[0].ASIN)
}

func TestQueryByCategory(t *testing.T) {
	c := newTestCatalog(t)
	ctx := context.Background()

	tent := testDeal("B0TENT0001", 30)
	tent.Category = models.CategoryTents
	require.NoError(t, c.Upsert(ctx, tent))
	require.NoError(t, c.Upsert(ctx, testDeal("B0OTHER001", 30)))

	deals, err := c.Query(ctx, Filter{Category: models.CategoryTents})
	require.NoError(t, err)
	require.Len(t, deals, 1)
	assert.Equal(t, "B0TENT0001", deals[0].ASIN)
}

func TestStats(t *testing.T) {
	c := newTestCatalog(t)
	ctx := context.Background()

	s, err := c.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, s.TotalDeals)

	require.NoError(t, c.Upsert(ctx, testDeal("B0DISC0020", 20)))
	require.NoError(t, c.Upsert(ctx, testDeal("B0DISC0060", 60)))
	inactive := testDeal("B0DISC0040", 40)
	inactive.IsActive = false
	require.NoError(t, c.Upsert(ctx, inactive))

	s, err = c.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, s.TotalDeals)
	assert.Equal(t, 2, s.ActiveDeals)
	assert.Equal(t, 40, s.AvgDiscount)
	assert.Equal(t, 60, s.MaxDiscount)
	assert.False(t, s.LastUpdate.IsZero())
}

func TestNotificationAudit(t *testing.T) {
	c := newTestCatalog(t)
	ctx := context.Background()

	last, err := c.LastNotificationAt(ctx)
	require.NoError(t, err)
	assert.True(t, last.IsZero())

	for i, success := range []bool{true, false, true} {
		require.NoError(t, c.LogNotification(ctx, models.NotificationEvent{
			ASIN:        fmt.Sprintf("B0AAAAAAA%d", i),
			Channel:     "telegram",
			Success:     success,
			PublishedAt: time.Now().Add(time.Duration(i) * time.Minute),
		}))
	}

	last, err = c.LastNotificationAt(ctx)
	require.NoError(t, err)
	assert.False(t, last.IsZero())
	assert.WithinDuration(t, time.Now().Add(2*time.Minute), last, 5*time.Second)
}
