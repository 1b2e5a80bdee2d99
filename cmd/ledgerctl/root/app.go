package root

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"taskledger/internal/auth"
	"taskledger/internal/config"
	"taskledger/internal/db"
	"taskledger/internal/model"
	"taskledger/internal/repository"
	"taskledger/internal/service"
)

// app holds the services a command needs. The cache is left out so that
// commands always read the database.
type app struct {
	cfg        *config.Config
	db         *gorm.DB
	users      service.UserService
	auth       service.AuthService
	ledger     service.LedgerService
	categories service.CategoryService
}

func openApp() (*app, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	config.SetupLogging(cfg)

	gormDB, err := db.Open(cfg)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		if sqlDB, err := gormDB.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}

	repos := repository.New(gormDB)
	users := service.NewUserService(repos, nil)
	return &app{
		cfg:        cfg,
		db:         gormDB,
		users:      users,
		auth:       service.NewAuthService(users, auth.NewJWTService(cfg.JWTSecret)),
		ledger:     service.NewLedgerService(repos, nil, 0, cfg.HistoryDefaultLimit),
		categories: service.NewCategoryService(repos),
	}, cleanup, nil
}

// resolveUser accepts a user id or a handle.
func (a *app) resolveUser(ctx context.Context, ref string) (*model.User, error) {
	if id, err := uuid.Parse(ref); err == nil {
		return a.users.Get(ctx, id)
	}
	user, err := a.users.GetByHandle(ctx, ref)
	if err != nil {
		return nil, fmt.Errorf("user %q: %w", ref, err)
	}
	return user, nil
}
