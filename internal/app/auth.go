package app

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/garyellow/vkbot-go/internal/config"
	"github.com/garyellow/vkbot-go/internal/logger"
)

const metricsRealm = `Basic realm="vkbot metrics"`

// metricsAuth guards /metrics with Basic Auth when a metrics password is
// configured. Credentials are read once; the comparison is constant time.
func metricsAuth(cfg *config.Config, log *logger.Logger) gin.HandlerFunc {
	if !cfg.MetricsAuthEnabled() {
		return func(c *gin.Context) { c.Next() }
	}

	wantUser := []byte(cfg.MetricsUsername)
	wantPass := []byte(cfg.MetricsPassword)
	log = log.WithModule("metrics_auth")

	return func(c *gin.Context) {
		user, pass, ok := c.Request.BasicAuth()
		if ok {
			userOK := subtle.ConstantTimeCompare([]byte(user), wantUser) == 1
			passOK := subtle.ConstantTimeCompare([]byte(pass), wantPass) == 1
			if userOK && passOK {
				c.Next()
				return
			}
		}

		log.WithField("client_ip", c.ClientIP()).
			WithField("credentials", ok).
			WarnContext(c.Request.Context(), "Rejected metrics scrape")
		c.Header("WWW-Authenticate", metricsRealm)
		c.AbortWithStatus(http.StatusUnauthorized)
	}
}
