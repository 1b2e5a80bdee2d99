package main

import (
	"net/http"

	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"taskledger/internal/cache"
)

// healthCheck answers 503 when the database is unreachable. An unreachable
// cache is reported as degraded.
func healthCheck(gormDB *gorm.DB, cacheClient *cache.Client) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		status := echo.Map{"database": "ok", "cache": "ok"}

		sqlDB, err := gormDB.DB()
		if err == nil {
			err = sqlDB.PingContext(ctx)
		}
		if err != nil {
			log.WithError(err).Warn("health check: database unreachable")
			status["database"] = "down"
			return c.JSON(http.StatusServiceUnavailable, status)
		}
		if err := cacheClient.Ping(ctx); err != nil {
			status["cache"] = "degraded"
		}
		return c.JSON(http.StatusOK, status)
	}
}
