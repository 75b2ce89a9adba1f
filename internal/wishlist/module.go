package wishlist

import (
	"database/sql"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"vincula/internal/cache"
	"vincula/internal/config"
)

func NewModule(db *sql.DB, products ProductFinder, cfg *config.Config, logger *zap.Logger) (*Controller, *MySQLRepository) {
	repo := NewMySQLRepository(db)
	entityCache := cache.NewEntity[Entry](cfg.Cache.Size, cfg.Cache.TTL)
	svc := NewService(repo, products, entityCache, uuid.NewString, logger)
	return NewController(svc, logger), repo
}
