package cart

import (
	"database/sql"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

func NewModule(db *sql.DB, products ProductFinder, logger *zap.Logger) (*Controller, *Service) {
	repo := NewMySQLRepository(db)
	svc := NewService(repo, products, uuid.NewString, logger)
	return NewController(svc, logger), svc
}
