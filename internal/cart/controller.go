package cart

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"vincula/internal/auth"
	apperrors "vincula/internal/errors"
	"vincula/internal/response"
)

type Controller struct {
	service *Service
	logger  *zap.Logger
}

func NewController(service *Service, logger *zap.Logger) *Controller {
	return &Controller{
		service: service,
		logger:  logger,
	}
}

type addItemRequest struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

type updateItemRequest struct {
	Quantity int `json:"quantity"`
}

type lineResponse struct {
	ProductID   string          `json:"productId"`
	ProductName string          `json:"productName"`
	ProductSKU  string          `json:"productSku"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	Quantity    int             `json:"quantity"`
	LineTotal   decimal.Decimal `json:"lineTotal"`
}

type viewResponse struct {
	ID        string          `json:"id"`
	UserID    string          `json:"userId"`
	Items     []lineResponse  `json:"items"`
	Total     decimal.Decimal `json:"total"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

func toViewResponse(v View) viewResponse {
	lines := make([]lineResponse, 0, len(v.Lines))
	for _, l := range v.Lines {
		lines = append(lines, lineResponse{
			ProductID:   l.Product.ID,
			ProductName: l.Product.Name,
			ProductSKU:  l.Product.SKU,
			UnitPrice:   l.Product.Price,
			Quantity:    l.Item.Quantity,
			LineTotal:   l.LineTotal,
		})
	}
	return viewResponse{
		ID:        v.Cart.ID,
		UserID:    v.Cart.UserID,
		Items:     lines,
		Total:     v.Total,
		UpdatedAt: v.Cart.UpdatedAt,
	}
}

func (c *Controller) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		response.FromError(w, r, c.logger, apperrors.NewUnauthorizedError("missing authentication"))
		return
	}

	view, err := c.service.Get(r.Context(), userID)
	if err != nil {
		response.FromError(w, r, c.logger, err)
		return
	}

	response.OK(w, r, c.logger, "cart retrieved", toViewResponse(*view))
}

func (c *Controller) AddItem(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		response.FromError(w, r, c.logger, apperrors.NewUnauthorizedError("missing authentication"))
		return
	}

	var req addItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, r, c.logger, http.StatusBadRequest, "invalid JSON body", apperrors.ValidationDetail{
			Field:   "body",
			Message: "request body must be valid JSON",
		})
		return
	}

	if req.ProductID == "" {
		response.FromError(w, r, c.logger, apperrors.NewValidationError("validation failed", apperrors.ValidationDetail{
			Field:   "productId",
			Message: "productId is required",
		}))
		return
	}

	view, err := c.service.AddItem(r.Context(), userID, req.ProductID, req.Quantity)
	if err != nil {
		response.FromError(w, r, c.logger, err)
		return
	}

	response.OK(w, r, c.logger, "item added to cart", toViewResponse(*view))
}

func (c *Controller) UpdateItem(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		response.FromError(w, r, c.logger, apperrors.NewUnauthorizedError("missing authentication"))
		return
	}

	var req updateItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, r, c.logger, http.StatusBadRequest, "invalid JSON body", apperrors.ValidationDetail{
			Field:   "body",
			Message: "request body must be valid JSON",
		})
		return
	}

	view, err := c.service.UpdateItem(r.Context(), userID, chi.URLParam(r, "productId"), req.Quantity)
	if err != nil {
		response.FromError(w, r, c.logger, err)
		return
	}

	response.OK(w, r, c.logger, "cart item updated", toViewResponse(*view))
}

func (c *Controller) RemoveItem(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		response.FromError(w, r, c.logger, apperrors.NewUnauthorizedError("missing authentication"))
		return
	}

	view, err := c.service.RemoveItem(r.Context(), userID, chi.URLParam(r, "productId"))
	if err != nil {
		response.FromError(w, r, c.logger, err)
		return
	}

	response.OK(w, r, c.logger, "cart item removed", toViewResponse(*view))
}

func (c *Controller) Clear(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		response.FromError(w, r, c.logger, apperrors.NewUnauthorizedError("missing authentication"))
		return
	}

	if err := c.service.Clear(r.Context(), userID); err != nil {
		response.FromError(w, r, c.logger, err)
		return
	}

	response.OK(w, r, c.logger, "cart cleared", nil)
}
