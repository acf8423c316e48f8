// Package server exposes the HTTP surface: sync triggers, system status
// and marketing copy generation.
package server

import (
	"context"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/camperoutlet/camperdeals/internal/blob"
	"github.com/camperoutlet/camperdeals/internal/config"
	"github.com/camperoutlet/camperdeals/internal/copy"
	"github.com/camperoutlet/camperdeals/internal/pipeline"
	"github.com/camperoutlet/camperdeals/internal/store"
)

// Syncer runs the two pipeline stages.
type Syncer interface {
	RunScrape(ctx context.Context) (*pipeline.ScrapeReport, error)
	RunPublish(ctx context.Context) (*pipeline.PublishReport, error)
}

// StatusStore is the catalog view the status handler needs.
type StatusStore interface {
	Stats(ctx context.Context) (store.Stats, error)
	LastNotificationAt(ctx context.Context) (time.Time, error)
	Ping(ctx context.Context) error
}

// CopyGenerator produces marketing copy, never failing hard.
type CopyGenerator interface {
	Generate(ctx context.Context, req copy.Request) *copy.MarketingCopy
}

// Server holds the wired dependencies behind the HTTP handlers.
type Server struct {
	cfg    *config.Config
	syncer Syncer
	store  StatusStore
	copy   CopyGenerator
	blob   blob.Uploader
}

// New builds a Server. up may be nil when no blob store is configured.
func New(cfg *config.Config, syncer Syncer, st StatusStore, cg CopyGenerator, up blob.Uploader) *Server {
	return &Server{cfg: cfg, syncer: syncer, store: st, copy: cg, blob: up}
}

// Router assembles the gin engine with CORS and all routes.
func (s *Server) Router() *gin.Engine {
	if !s.cfg.DevMode {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())

	corsCfg := cors.DefaultConfig()
	corsCfg.AllowOrigins = []string{s.cfg.SiteURL}
	if s.cfg.DevMode {
		corsCfg.AllowAllOrigins = true
		corsCfg.AllowOrigins = nil
	}
	corsCfg.AllowHeaders = append(corsCfg.AllowHeaders, "Authorization")
	r.Use(cors.New(corsCfg))

	sync := r.Group("/sync", s.requireCronAuth())
	{
		sync.GET("/scrape", s.handleScrape)
		sync.POST("/scrape", s.handleScrape)
		sync.GET("/publish", s.handlePublish)
		sync.POST("/publish", s.handlePublish)
	}

	r.GET("/system/status", s.handleStatus)
	r.POST("/marketing/generate", s.requireCronAuth(), s.handleGenerateCopy)

	vid := r.Group("/video", s.requireCronAuth())
	{
		vid.POST("/composition", s.handleComposition)
		vid.POST("/publish", s.handleVideoPublish)
	}

	return r
}
