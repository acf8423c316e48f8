package server

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/camperoutlet/camperdeals/internal/config"
	"github.com/camperoutlet/camperdeals/internal/copy"
	"github.com/camperoutlet/camperdeals/internal/pipeline"
	"github.com/camperoutlet/camperdeals/internal/store"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type mockSyncer struct {
	scrapeReport  *pipeline.ScrapeReport
	scrapeErr     error
	publishReport *pipeline.PublishReport
	publishErr    error
}

func (m *mockSyncer) RunScrape(context.Context) (*pipeline.ScrapeReport, error) {
	return m.scrapeReport, m.scrapeErr
}

func (m *mockSyncer) RunPublish(context.Context) (*pipeline.PublishReport, error) {
	return m.publishReport, m.publishErr
}

type mockStatusStore struct {
	stats    store.Stats
	statsErr error
	lastAt   time.Time
	pingErr  error
}

func (m *mockStatusStore) Stats(context.Context) (store.Stats, error) {
	return m.stats, m.statsErr
}

func (m *mockStatusStore) LastNotificationAt(context.Context) (time.Time, error) {
	return m.lastAt, nil
}

func (m *mockStatusStore) Ping(context.Context) error { return m.pingErr }

type mockCopyGen struct{}

func (mockCopyGen) Generate(_ context.Context, req copy.Request) *copy.MarketingCopy {
	return &copy.MarketingCopy{Telegram: "copy for " + req.Topic, Provenance: "template"}
}

func testConfig() *config.Config {
	return &config.Config{
		Port:       "8080",
		SiteURL:    "https://camperoutlet.es",
		CronSecret: "s3cret",
	}
}

func newTestRouter(cfg *config.Config, syncer Syncer, st StatusStore) *gin.Engine {
	if syncer == nil {
		syncer = &mockSyncer{
			scrapeReport:  &pipeline.ScrapeReport{RunID: "run-1", Provenance: pipeline.ProvenanceScraper},
			publishReport: &pipeline.PublishReport{RunID: "run-2", Published: 2, Total: 3},
		}
	}
	if st == nil {
		st = &mockStatusStore{stats: store.Stats{TotalDeals: 5, ActiveDeals: 4}}
	}
	return New(cfg, syncer, st, mockCopyGen{}, nil).Router()
}

func doRequest(r *gin.Engine, method, path string, headers map[string]string, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Host = "camperoutlet.es"
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestSyncEndpointsRejectAnonymous(t *testing.T) {
	r := newTestRouter(testConfig(), nil, nil)

	for _, path := range []string{"/sync/scrape", "/sync/publish"} {
		w := doRequest(r, http.MethodGet, path, nil, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code, path)

		w = doRequest(r, http.MethodPost, path, nil, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code, path)
	}
}

func TestSyncAcceptsBearerSecret(t *testing.T) {
	r := newTestRouter(testConfig(), nil, nil)

	w := doRequest(r, http.MethodPost, "/sync/scrape",
		map[string]string{"Authorization": "Bearer s3cret"}, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"success":true`)
	assert.Contains(t, w.Body.String(), "run-1")
}

func TestSyncRejectsWrongSecret(t *testing.T) {
	r := newTestRouter(testConfig(), nil, nil)

	w := doRequest(r, http.MethodPost, "/sync/scrape",
		map[string]string{"Authorization": "Bearer wrong"}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestSyncAcceptsSameOriginReferer(t *testing.T) {
	r := newTestRouter(testConfig(), nil, nil)

	w := doRequest(r, http.MethodGet, "/sync/publish",
		map[string]string{"Referer": "https://camperoutlet.es/admin"}, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "run-2")
}

func TestSyncRejectsForeignReferer(t *testing.T) {
	r := newTestRouter(testConfig(), nil, nil)

	w := doRequest(r, http.MethodGet, "/sync/scrape",
		map[string]string{"Referer": "https://evil.example.com/"}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestDevModeBypassesAuth(t *testing.T) {
	cfg := testConfig()
	cfg.DevMode = true
	r := newTestRouter(cfg, nil, nil)

	w := doRequest(r, http.MethodGet, "/sync/scrape", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestScrapeErrorReturns500WithReport(t *testing.T) {
	syncer := &mockSyncer{
		scrapeReport: &pipeline.ScrapeReport{RunID: "run-err"},
		scrapeErr:    errors.New("expiry failed"),
	}
	r := newTestRouter(testConfig(), syncer, nil)

	w := doRequest(r, http.MethodPost, "/sync/scrape",
		map[string]string{"Authorization": "Bearer s3cret"}, "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), `"success":false`)
	assert.Contains(t, w.Body.String(), "expiry failed")
	assert.Contains(t, w.Body.String(), "run-err")
}

func TestStatusEndpointIsPublic(t *testing.T) {
	r := newTestRouter(testConfig(), nil, nil)

	w := doRequest(r, http.MethodGet, "/system/status", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)
	assert.Contains(t, w.Body.String(), `"totalDeals":5`)
}

func TestStatusDegradesWhenDatabaseDown(t *testing.T) {
	st := &mockStatusStore{pingErr: errors.New("db unreachable")}
	r := newTestRouter(testConfig(), nil, st)

	w := doRequest(r, http.MethodGet, "/system/status", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"degraded"`)
	assert.Contains(t, w.Body.String(), `"database":"unreachable"`)
}

func TestGenerateCopy(t *testing.T) {
	r := newTestRouter(testConfig(), nil, nil)

	headers := map[string]string{
		"Content-Type":  "application/json",
		"Authorization": "Bearer s3cret",
	}
	w := doRequest(r, http.MethodPost, "/marketing/generate", headers,
		`{"topic": "Tienda Coleman", "price": 89.99, "discount": 40}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "copy for Tienda Coleman")
}

func TestGenerateCopyRequiresAuth(t *testing.T) {
	r := newTestRouter(testConfig(), nil, nil)

	w := doRequest(r, http.MethodPost, "/marketing/generate",
		map[string]string{"Content-Type": "application/json"},
		`{"topic": "Tienda Coleman"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestGenerateCopyRequiresTopic(t *testing.T) {
	r := newTestRouter(testConfig(), nil, nil)

	headers := map[string]string{
		"Content-Type":  "application/json",
		"Authorization": "Bearer s3cret",
	}
	w := doRequest(r, http.MethodPost, "/marketing/generate", headers, `{"price": 10}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
