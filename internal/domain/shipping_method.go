package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type ShippingMethod struct {
	ID            string
	Name          string
	Description   string
	Cost          decimal.Decimal
	EstimatedDays int
	IsActive      bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
