package server

import (
	"crypto/subtle"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// requireCronAuth guards the sync trigger endpoints. A request passes when
// any of these hold:
//   - dev mode is enabled
//   - it carries "Authorization: Bearer <CRON_SECRET>"
//   - it came from the site itself (referer contains the request host)
func (s *Server) requireCronAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if s.cfg.DevMode {
			c.Next()
			return
		}

		if s.cfg.CronSecret != "" {
			token := strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
			if token != "" && subtle.ConstantTimeCompare([]byte(token), []byte(s.cfg.CronSecret)) == 1 {
				c.Next()
				return
			}
		}

		referer := c.GetHeader("Referer")
		host := c.Request.Host
		if referer != "" && host != "" && strings.Contains(referer, host) {
			c.Next()
			return
		}

		slog.Warn("Rejected sync trigger", "path", c.Request.URL.Path, "remote", c.ClientIP())
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
	}
}
