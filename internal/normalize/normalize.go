// Package normalize converts raw scraper records into canonical deals.
// Every function here is pure: the same record always yields the same
// result, and rejected records never reach the store.
package normalize

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/camperoutlet/camperdeals/internal/models"
)

const placeholderImageURL = "https://via.placeholder.com/400x400?text=Camping+Deal"

var (
	asinPattern    = regexp.MustCompile(`^[A-Za-z0-9]{10}$`)
	asinURLPattern = regexp.MustCompile(`(?i)/dp/([A-Z0-9]{10})`)
)

// Result is the outcome of normalizing one record: either a fully populated
// deal or a rejection reason. Rejections are expected and not retried.
type Result struct {
	Deal   models.Deal
	Reason string
}

// Ok reports whether the record survived normalization.
func (r Result) Ok() bool {
	return r.Reason == ""
}

func rejected(format string, args ...any) Result {
	return Result{Reason: fmt.Sprintf(format, args...)}
}

// Record validates and cleans one raw scraper record. partnerTag is appended
// to the source URL when the scraper did not provide an affiliate link.
func Record(raw models.RawScrapeRecord, partnerTag string) Result {
	url := stringField(raw, "url")
	asin := extractASIN(raw["asin"], url)
	if asin == "" {
		return rejected("missing or invalid asin")
	}

	title := stringField(raw, "title")
	if title == "" {
		return rejected("missing title for %s", asin)
	}
	if url == "" {
		return rejected("missing url for %s", asin)
	}

	// Scraper versions disagree on the price field name; current_price wins.
	price := toNumber(raw["current_price"])
	if price == nil {
		price = toNumber(raw["price"])
	}
	originalPrice := toNumber(raw["original_price"])
	discount := toNumber(raw["discount"])
	if price == nil || originalPrice == nil || discount == nil {
		return rejected("unparsable price fields for %s", asin)
	}
	if *price <= 0 || *originalPrice <= 0 {
		return rejected("non-positive price for %s", asin)
	}
	if *discount < 0 || *discount > 100 {
		return rejected("discount %.0f out of range for %s", *discount, asin)
	}

	affiliateURL := stringField(raw, "affiliate_url")
	if affiliateURL == "" {
		affiliateURL = synthesizeAffiliateURL(url, partnerTag)
	}

	description := stringField(raw, "description")
	if description == "" {
		description = title + " - Oferta destacada de camping"
	}

	imageURL := stringField(raw, "image_url")
	if imageURL == "" {
		imageURL = placeholderImageURL
	}

	category := stringField(raw, "category")
	if !models.IsKnownCategory(category) {
		category = models.CategoryDefault
	}

	// Optional fields outside their valid range are dropped, not fatal.
	rating := toNumber(raw["rating"])
	if rating != nil && (*rating < 0 || *rating > 5) {
		rating = nil
	}
	reviewCount := toInt(raw["review_count"])
	if reviewCount != nil && *reviewCount < 0 {
		reviewCount = nil
	}

	deal := models.Deal{
		ASIN:            asin,
		Title:           title,
		Description:     description,
		Price:           *price,
		OriginalPrice:   *originalPrice,
		DiscountPercent: int(*discount),
		ImageURL:        imageURL,
		SourceURL:       url,
		AffiliateURL:    affiliateURL,
		Category:        category,
		Rating:          rating,
		ReviewCount:     reviewCount,
		IsActive:        true,
		// UpdatedAt is assigned by the store on upsert.
	}
	return Result{Deal: deal}
}

// Batch normalizes every record, splitting results into accepted deals and
// rejection reasons. One bad record never affects the rest.
func Batch(records []models.RawScrapeRecord, partnerTag string) ([]models.Deal, []string) {
	var deals []models.Deal
	var rejections []string
	for _, raw := range records {
		res := Record(raw, partnerTag)
		if res.Ok() {
			deals = append(deals, res.Deal)
		} else {
			rejections = append(rejections, res.Reason)
		}
	}
	return deals, rejections
}

// extractASIN accepts a literal 10-char code, or derives it from a
// /dp/<asin> path segment inside the product URL.
func extractASIN(rawASIN any, url string) string {
	if s, ok := rawASIN.(string); ok {
		s = strings.TrimSpace(s)
		if asinPattern.MatchString(s) {
			return strings.ToUpper(s)
		}
	}
	if m := asinURLPattern.FindStringSubmatch(url); len(m) == 2 {
		return strings.ToUpper(m[1])
	}
	return ""
}

func synthesizeAffiliateURL(url, partnerTag string) string {
	sep := "?"
	if strings.Contains(url, "?") {
		sep = "&"
	}
	return url + sep + "tag=" + partnerTag
}

func stringField(raw models.RawScrapeRecord, key string) string {
	s, _ := raw[key].(string)
	return strings.TrimSpace(s)
}

// toNumber coerces numeric types and numeric strings, rejecting anything
// non-finite. JSON decoding hands us float64 for all numbers, but scraper
// output has been seen carrying prices as strings.
func toNumber(v any) *float64 {
	switch n := v.(type) {
	case float64:
		if isFinite(n) {
			return &n
		}
	case float32:
		f := float64(n)
		if isFinite(f) {
			return &f
		}
	case int:
		f := float64(n)
		return &f
	case int64:
		f := float64(n)
		return &f
	case string:
		s := strings.TrimSpace(n)
		if s == "" {
			return nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil || !isFinite(f) {
			return nil
		}
		return &f
	}
	return nil
}

func toInt(v any) *int {
	f := toNumber(v)
	if f == nil {
		return nil
	}
	i := int(*f)
	return &i
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
