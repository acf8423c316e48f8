package server

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/camperoutlet/camperdeals/internal/blob"
	"github.com/camperoutlet/camperdeals/internal/video"
)

// compositionRequest is a deal video spec plus an optional frame range to
// evaluate server-side for the external renderer.
type compositionRequest struct {
	video.DealVideoSpec
	FromFrame int `json:"fromFrame"`
	ToFrame   int `json:"toFrame"`
}

type layerInfo struct {
	Name       string `json:"name"`
	StartFrame int    `json:"startFrame"`
}

type compositionResponse struct {
	FPS              int                  `json:"fps"`
	DurationInFrames int                  `json:"durationInFrames"`
	Width            int                  `json:"width"`
	Height           int                  `json:"height"`
	AudioFile        string               `json:"audioFile,omitempty"`
	Layers           []layerInfo          `json:"layers"`
	Frames           [][]video.LayerState `json:"frames,omitempty"`
}

// handleComposition builds the layer timeline for one deal and, when a
// frame range is requested, evaluates those frames so a renderer without
// the curve math can consume them directly.
func (s *Server) handleComposition(c *gin.Context) {
	var req compositionRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Title == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "title is required"})
		return
	}

	comp, err := video.NewDealComposition(req.DealVideoSpec, video.DefaultConfig())
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resp := compositionResponse{
		FPS:              comp.FPS,
		DurationInFrames: comp.DurationInFrames,
		Width:            comp.Width,
		Height:           comp.Height,
		AudioFile:        comp.AudioFile,
	}
	for _, l := range comp.Layers {
		resp.Layers = append(resp.Layers, layerInfo{Name: l.Name, StartFrame: l.StartFrame})
	}

	if req.ToFrame > req.FromFrame {
		frames, err := comp.EvalFrames(req.FromFrame, req.ToFrame, 4)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		resp.Frames = frames
	}

	c.JSON(http.StatusOK, resp)
}

type videoPublishRequest struct {
	LocalPath string `json:"localPath" binding:"required"`
	Name      string `json:"name" binding:"required"`
}

// handleVideoPublish uploads a rendered artifact to the blob store and
// removes the local temp file whatever the outcome.
func (s *Server) handleVideoPublish(c *gin.Context) {
	var req videoPublishRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "localPath and name are required"})
		return
	}

	if s.blob == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "no blob store configured"})
		return
	}

	url, err := blob.PublishFile(c.Request.Context(), s.blob, req.LocalPath, req.Name)
	if err != nil {
		slog.Error("Video publish failed", "name", req.Name, "error", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": url})
}
