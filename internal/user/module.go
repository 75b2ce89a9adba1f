package user

import (
	"database/sql"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"vincula/internal/cache"
	"vincula/internal/config"
	"vincula/internal/domain"
)

func NewModule(db *sql.DB, cfg *config.Config, logger *zap.Logger) (*Controller, *Service) {
	repo := NewMySQLRepository(db)
	entityCache := cache.NewEntity[domain.User](cfg.Cache.Size, cfg.Cache.TTL)
	svc := NewService(repo, entityCache, uuid.NewString, logger)
	return NewController(svc, logger), svc
}
