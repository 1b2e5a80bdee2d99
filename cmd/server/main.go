package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"

	"taskledger/docs"
	"taskledger/internal/auth"
	"taskledger/internal/cache"
	"taskledger/internal/config"
	"taskledger/internal/db"
	"taskledger/internal/handler"
	"taskledger/internal/jobs"
	"taskledger/internal/repository"
	"taskledger/internal/router"
	"taskledger/internal/service"
)

// @title Task Ledger API
// @version 1.0
// @description Gamified task tracking: tasks pay coins, experience and attribute growth into an append-only ledger.
// @host localhost:8080
// @BasePath /api
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("load config")
	}
	config.SetupLogging(cfg)

	gormDB, err := db.Open(cfg)
	if err != nil {
		log.WithError(err).Fatal("database init")
	}

	if cfg.ResetDB {
		log.Warn("RESET_DB=true detected, dropping all tables")
		if err := db.Reset(gormDB); err != nil {
			log.WithError(err).Fatal("reset database")
		}
	}
	if err := db.Migrate(gormDB); err != nil {
		log.WithError(err).Fatal("auto-migrate")
	}

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	defer cacheClient.Close()

	repos := repository.New(gormDB)
	jwtService := auth.NewJWTService(cfg.JWTSecret)

	// Initialize services
	userService := service.NewUserService(repos, cacheClient)
	authService := service.NewAuthService(userService, jwtService)
	ledgerService := service.NewLedgerService(repos, cacheClient, cfg.BalanceCacheTTL, cfg.HistoryDefaultLimit)
	attributeService := service.NewAttributeService(repos)
	inventoryService := service.NewInventoryService(repos)
	categoryService := service.NewCategoryService(repos)
	taskService := service.NewTaskService(repos, service.NewRewardEngine(), cacheClient)
	shopService := service.NewShopService(repos, cacheClient)

	e := echo.New()
	e.HideBanner = true
	router.Register(e, jwtService.Secret(), router.Handlers{
		Auth:       handler.NewAuthHandler(authService),
		User:       handler.NewUserHandler(userService),
		Ledger:     handler.NewLedgerHandler(ledgerService),
		Attribute:  handler.NewAttributeHandler(attributeService),
		Resource:   handler.NewResourceHandler(inventoryService),
		Category:   handler.NewCategoryHandler(categoryService),
		Task:       handler.NewTaskHandler(taskService),
		Shop:       handler.NewShopHandler(shopService),
		HealthFunc: healthCheck(gormDB, cacheClient),
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.ReconcileEnabled {
		scheduler := jobs.NewScheduler(userService, cfg.ReconcileSchedule)
		if err := scheduler.Start(ctx); err != nil {
			log.WithError(err).Fatal("start scheduler")
		}
		defer scheduler.Stop()
	}

	if cfg.SwaggerHost != "" {
		docs.SwaggerInfo.Host = strings.TrimPrefix(strings.TrimPrefix(cfg.SwaggerHost, "http://"), "https://")
	}
	log.Infof("Swagger documentation available at: http://%s/swagger/index.html", docs.SwaggerInfo.Host)

	go func() {
		addr := ":" + cfg.ServerPort
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("server start")
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("server shutdown")
	}
}
