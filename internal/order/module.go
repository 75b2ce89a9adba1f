package order

import (
	"database/sql"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"vincula/internal/cache"
	"vincula/internal/config"
	"vincula/internal/domain"
	"vincula/internal/infrastructure/mysql"
)

func NewModule(
	db *sql.DB,
	products ProductRepository,
	users UserRepository,
	productCache ProductCacheInvalidator,
	cfg *config.Config,
	logger *zap.Logger,
) (*Controller, *Service) {
	repo := NewMySQLRepository(db)
	items := NewMySQLItemRepository(db)
	entityCache := cache.NewEntity[domain.Order](cfg.Cache.Size, cfg.Cache.TTL)
	svc := NewService(repo, items, products, users, mysql.NewTxManager(db),
		productCache, entityCache, uuid.NewString, NewNumber, logger)
	return NewController(svc, logger), svc
}
