package product

import (
	"time"

	"github.com/shopspring/decimal"

	"vincula/internal/domain"
)

type CreateRequest struct {
	SKU         string          `json:"sku"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	CategoryID  *string         `json:"categoryId"`
	IsActive    *bool           `json:"isActive"`
}

type UpdateRequest struct {
	SKU         *string          `json:"sku"`
	Name        *string          `json:"name"`
	Description *string          `json:"description"`
	Price       *decimal.Decimal `json:"price"`
	Stock       *int             `json:"stock"`
	CategoryID  *string          `json:"categoryId"`
	IsActive    *bool            `json:"isActive"`
}

type Response struct {
	ID          string          `json:"id"`
	SKU         string          `json:"sku"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	CategoryID  *string         `json:"categoryId"`
	IsActive    bool            `json:"isActive"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

func ToResponse(p domain.Product) Response {
	return Response{
		ID:          p.ID,
		SKU:         p.SKU,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		Stock:       p.Stock,
		CategoryID:  p.CategoryID,
		IsActive:    p.IsActive,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func ToResponses(products []domain.Product) []Response {
	responses := make([]Response, 0, len(products))
	for _, p := range products {
		responses = append(responses, ToResponse(p))
	}
	return responses
}
