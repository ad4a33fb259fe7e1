package app

import (
	"context"
	"net/http"

	"github.com/garyellow/vkbot-go/internal/config"
	"github.com/garyellow/vkbot-go/internal/sentry"
	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const repositoryURL = "https://github.com/garyellow/vkbot-go"

// router builds the HTTP surface. The callback route is the only one VK
// calls; the rest serve probes and scraping.
func (a *Application) router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	if sentry.IsEnabled() {
		router.Use(sentrygin.New(sentrygin.Options{Repanic: true}))
	}
	router.Use(requestIDMiddleware())
	router.Use(securityHeadersMiddleware())
	router.Use(loggingMiddleware(a.logger))

	router.GET("/", a.redirectToRepository)
	router.HEAD("/", a.redirectToRepository)
	router.GET("/livez", a.livenessCheck)
	router.HEAD("/livez", a.livenessCheck)
	router.GET("/readyz", a.readinessCheck)
	router.HEAD("/readyz", a.readinessCheck)
	router.GET("/metrics",
		metricsAuth(a.cfg, a.logger),
		gin.WrapH(promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{})))

	a.webhookHandler.Register(router, CallbackPath)
	return router
}

func (a *Application) redirectToRepository(c *gin.Context) {
	c.Redirect(http.StatusTemporaryRedirect, repositoryURL)
}

// livenessCheck never touches dependencies.
func (a *Application) livenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "alive",
	})
}

func (a *Application) readinessCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), config.ReadinessCheck)
	defer cancel()

	if err := a.db.Ping(ctx); err != nil {
		a.logger.WithError(err).WarnContext(ctx, "Readiness check failed: database unavailable")
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "not ready",
			"reason": "database unavailable",
		})
		return
	}

	resp := gin.H{
		"status":   "ready",
		"database": "connected",
	}
	if count, err := a.db.CountEvents(ctx); err == nil {
		resp["tracked_events"] = count
	} else {
		a.logger.WithError(err).WarnContext(ctx, "Failed to count tracked events")
	}
	c.JSON(http.StatusOK, resp)
}
