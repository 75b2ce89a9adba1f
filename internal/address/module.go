package address

import (
	"database/sql"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"vincula/internal/cache"
	"vincula/internal/config"
	"vincula/internal/domain"
)

func NewModule(db *sql.DB, users UserChecker, cfg *config.Config, logger *zap.Logger) (*Controller, *MySQLRepository) {
	repo := NewMySQLRepository(db)
	entityCache := cache.NewEntity[domain.Address](cfg.Cache.Size, cfg.Cache.TTL)
	svc := NewService(repo, users, entityCache, uuid.NewString, logger)
	return NewController(svc, logger), repo
}
