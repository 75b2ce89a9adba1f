package category

import (
	"database/sql"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"vincula/internal/cache"
	"vincula/internal/config"
	"vincula/internal/domain"
)

func NewModule(db *sql.DB, products ProductChecker, cfg *config.Config, logger *zap.Logger) (*Controller, *MySQLRepository) {
	repo := NewMySQLRepository(db)
	entityCache := cache.NewEntity[domain.Category](cfg.Cache.Size, cfg.Cache.TTL)
	svc := NewService(repo, products, entityCache, uuid.NewString, logger)
	return NewController(svc, logger), repo
}
