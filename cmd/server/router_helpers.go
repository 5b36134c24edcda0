package main

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"davspay.backend/internal/config"
	domainerrors "davspay.backend/internal/domain/errors"
	"davspay.backend/internal/interfaces/http/middleware"
	"davspay.backend/internal/interfaces/http/response"
	"davspay.backend/pkg/metrics"
)

const (
	serviceName    = "davspay-auth"
	serviceVersion = "1.0.0"
)

func newRouter(cfg *config.Config, d routeDeps) *gin.Engine {
	r := gin.New()
	r.Use(gin.CustomRecovery(recoverToEnvelope))
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.LoggerMiddleware())
	r.Use(middleware.MetricsMiddleware())

	applyCORSMiddleware(r, cfg.CORS.AllowedOrigins)
	registerHealthRoute(r)
	registerIndexRoute(r)
	r.GET("/metrics", gin.WrapH(metrics.Handler()))
	registerAuthRoutes(r, d)

	r.NoRoute(func(c *gin.Context) {
		response.Error(c, domainerrors.NotFound("Endpoint not found"))
	})
	return r
}

func recoverToEnvelope(c *gin.Context, recovered any) {
	response.Abort(c, domainerrors.InternalError(fmt.Errorf("panic: %v", recovered)))
}

func applyCORSMiddleware(r *gin.Engine, allowedOrigins []string) {
	allowAll := false
	allowed := make(map[string]struct{}, len(allowedOrigins))
	for _, o := range allowedOrigins {
		if o == "*" {
			allowAll = true
		}
		allowed[strings.TrimRight(o, "/")] = struct{}{}
	}

	r.Use(func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin != "" {
			if _, ok := allowed[origin]; ok || allowAll {
				c.Header("Access-Control-Allow-Origin", origin)
				c.Header("Access-Control-Allow-Credentials", "true")
				c.Header("Vary", "Origin")
			}
		}
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization, Idempotency-Key, "+middleware.RequestIDHeader)
		c.Header("Access-Control-Expose-Headers", middleware.RequestIDHeader)

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	})
}

func registerHealthRoute(r *gin.Engine) {
	health := func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": serviceName,
			"version": serviceVersion,
		})
	}
	r.GET("/health", health)
	r.GET("/api/health", health)
}

func registerIndexRoute(r *gin.Engine) {
	r.GET("/api/", func(c *gin.Context) {
		response.Success(c, http.StatusOK, "Davspay auth API", gin.H{
			"service":   serviceName,
			"version":   serviceVersion,
			"endpoints": authEndpoints,
		})
	})
}
