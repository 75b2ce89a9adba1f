package wishlist

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

type addRequest struct {
	ProductID string `json:"productId"`
}

type entryResponse struct {
	ID           string          `json:"id"`
	ProductID    string          `json:"productId"`
	ProductName  string          `json:"productName"`
	ProductSKU   string          `json:"productSku"`
	ProductPrice decimal.Decimal `json:"productPrice"`
	InStock      bool            `json:"inStock"`
	AddedAt      time.Time       `json:"addedAt"`
}

func toEntryResponse(e Entry) entryResponse {
	return entryResponse{
		ID:           e.Item.ID,
		ProductID:    e.Product.ID,
		ProductName:  e.Product.Name,
		ProductSKU:   e.Product.SKU,
		ProductPrice: e.Product.Price,
		InStock:      e.Product.Stock > 0,
		AddedAt:      e.Item.CreatedAt,
	}
}

func toEntryResponses(entries []Entry) []entryResponse {
	responses := make([]entryResponse, 0, len(entries))
	for _, e := range entries {
		responses = append(responses, toEntryResponse(e))
	}
	return responses
}

func (c *Controller) Add(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		response.FromError(w, r, c.logger, apperrors.NewUnauthorizedError("missing authentication"))
		return
	}

	var req addRequest
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

	entry, err := c.service.Add(r.Context(), userID, req.ProductID)
	if err != nil {
		response.FromError(w, r, c.logger, err)
		return
	}

	response.Created(w, r, c.logger, "product added to wishlist", toEntryResponse(*entry))
}

func (c *Controller) ListMine(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		response.FromError(w, r, c.logger, apperrors.NewUnauthorizedError("missing authentication"))
		return
	}

	pageReq, err := response.ParsePageRequest(r)
	if err != nil {
		response.FromError(w, r, c.logger, err)
		return
	}

	entries, total, err := c.service.ListByUser(r.Context(), userID, pageReq.Size, pageReq.Offset())
	if err != nil {
		response.FromError(w, r, c.logger, err)
		return
	}

	response.OK(w, r, c.logger, "wishlist retrieved", response.NewPage(toEntryResponses(entries), pageReq, total))
}

func (c *Controller) Remove(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		response.FromError(w, r, c.logger, apperrors.NewUnauthorizedError("missing authentication"))
		return
	}

	if err := c.service.Remove(r.Context(), userID, chi.URLParam(r, "productId")); err != nil {
		response.FromError(w, r, c.logger, err)
		return
	}

	response.OK(w, r, c.logger, "product removed from wishlist", nil)
}
