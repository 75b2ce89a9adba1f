package product

import (
	"database/sql"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"vincula/internal/cache"
	"vincula/internal/config"
	"vincula/internal/domain"
)

func NewModule(db *sql.DB, categories CategoryRepository, cfg *config.Config, logger *zap.Logger) (*Controller, *Service, *MySQLRepository) {
	repo := NewMySQLRepository(db)
	entityCache := cache.NewEntity[domain.Product](cfg.Cache.Size, cfg.Cache.TTL)
	svc := NewService(repo, categories, entityCache, uuid.NewString, logger)
	return NewController(svc, logger), svc, repo
}
