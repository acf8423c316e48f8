package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/camperoutlet/camperdeals/internal/copy"
	"github.com/camperoutlet/camperdeals/internal/pipeline"
	"github.com/camperoutlet/camperdeals/internal/store"
)

type scrapeResponse struct {
	Success   bool      `json:"success"`
	Error     string    `json:"error,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	*pipeline.ScrapeReport
}

type publishResponse struct {
	Success   bool      `json:"success"`
	Error     string    `json:"error,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	*pipeline.PublishReport
}

// Degraded runs (fallback data, partial publish failures) still report
// success: true; false is reserved for runs that produced nothing useful.
func (s *Server) handleScrape(c *gin.Context) {
	report, err := s.syncer.RunScrape(c.Request.Context())
	if err != nil {
		slog.Error("Scrape run failed", "error", err)
		c.JSON(http.StatusInternalServerError, scrapeResponse{
			Error:        err.Error(),
			Timestamp:    time.Now().UTC(),
			ScrapeReport: report,
		})
		return
	}
	c.JSON(http.StatusOK, scrapeResponse{
		Success:      true,
		Timestamp:    time.Now().UTC(),
		ScrapeReport: report,
	})
}

func (s *Server) handlePublish(c *gin.Context) {
	report, err := s.syncer.RunPublish(c.Request.Context())
	if err != nil {
		slog.Error("Publish run failed", "error", err)
		c.JSON(http.StatusInternalServerError, publishResponse{
			Error:         err.Error(),
			Timestamp:     time.Now().UTC(),
			PublishReport: report,
		})
		return
	}
	c.JSON(http.StatusOK, publishResponse{
		Success:       true,
		Timestamp:     time.Now().UTC(),
		PublishReport: report,
	})
}

type providerFlags struct {
	Telegram bool `json:"telegram"`
	AI       bool `json:"ai"`
	Blob     bool `json:"blob"`
}

type statusResponse struct {
	Status             string        `json:"status"`
	Database           string        `json:"database"`
	Stats              store.Stats   `json:"stats"`
	Providers          providerFlags `json:"providers"`
	LastNotificationAt *time.Time    `json:"lastNotificationAt,omitempty"`
	CheckedAt          time.Time     `json:"checkedAt"`
}

// handleStatus reports catalog health. It degrades instead of erroring so
// monitoring always gets a body to inspect.
func (s *Server) handleStatus(c *gin.Context) {
	ctx := c.Request.Context()
	resp := statusResponse{
		Status:   "ok",
		Database: "ok",
		Providers: providerFlags{
			Telegram: s.cfg.TelegramBotToken != "",
			AI:       s.cfg.GeminiAPIKey != "" || s.cfg.OpenRouterAPIKey != "",
			Blob:     s.cfg.BlobEndpoint != "",
		},
		CheckedAt: time.Now().UTC(),
	}

	if err := s.store.Ping(ctx); err != nil {
		slog.Error("Database ping failed", "error", err)
		resp.Status = "degraded"
		resp.Database = "unreachable"
		c.JSON(http.StatusOK, resp)
		return
	}

	stats, err := s.store.Stats(ctx)
	if err != nil {
		slog.Error("Failed to load catalog stats", "error", err)
		resp.Status = "degraded"
	} else {
		resp.Stats = stats
	}

	if last, err := s.store.LastNotificationAt(ctx); err == nil && !last.IsZero() {
		resp.LastNotificationAt = &last
	}

	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleGenerateCopy(c *gin.Context) {
	var req copy.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "topic is required"})
		return
	}
	c.JSON(http.StatusOK, s.copy.Generate(c.Request.Context(), req))
}
