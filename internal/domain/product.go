package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID          string
	SKU         string
	Name        string
	Description string
	Price       decimal.Decimal
	Stock       int
	CategoryID  *string
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (p Product) HasSufficientStock(quantity int) bool {
	return p.Stock >= quantity
}
