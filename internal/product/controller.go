package product

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

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

func (c *Controller) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, r, c.logger, http.StatusBadRequest, "invalid JSON body", apperrors.ValidationDetail{
			Field:   "body",
			Message: "request body must be valid JSON",
		})
		return
	}

	if err := validateCreateRequest(req); err != nil {
		response.FromError(w, r, c.logger, err)
		return
	}

	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}

	p, err := c.service.Create(r.Context(), CreateInput{
		SKU:         req.SKU,
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Stock:       req.Stock,
		CategoryID:  req.CategoryID,
		IsActive:    active,
	})
	if err != nil {
		response.FromError(w, r, c.logger, err)
		return
	}

	response.Created(w, r, c.logger, "product created", ToResponse(*p))
}

func (c *Controller) GetByID(w http.ResponseWriter, r *http.Request) {
	p, err := c.service.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.FromError(w, r, c.logger, err)
		return
	}

	response.OK(w, r, c.logger, "product retrieved", ToResponse(*p))
}

func (c *Controller) GetBySKU(w http.ResponseWriter, r *http.Request) {
	p, err := c.service.GetBySKU(r.Context(), chi.URLParam(r, "sku"))
	if err != nil {
		response.FromError(w, r, c.logger, err)
		return
	}

	response.OK(w, r, c.logger, "product retrieved", ToResponse(*p))
}

func (c *Controller) List(w http.ResponseWriter, r *http.Request) {
	pageReq, err := response.ParsePageRequest(r)
	if err != nil {
		response.FromError(w, r, c.logger, err)
		return
	}

	products, total, err := c.service.List(r.Context(), pageReq.Size, pageReq.Offset())
	if err != nil {
		response.FromError(w, r, c.logger, err)
		return
	}

	response.OK(w, r, c.logger, "products retrieved", response.NewPage(ToResponses(products), pageReq, total))
}

func (c *Controller) ListByCategory(w http.ResponseWriter, r *http.Request) {
	pageReq, err := response.ParsePageRequest(r)
	if err != nil {
		response.FromError(w, r, c.logger, err)
		return
	}

	categoryID := chi.URLParam(r, "categoryId")

	products, total, err := c.service.ListByCategory(r.Context(), categoryID, pageReq.Size, pageReq.Offset())
	if err != nil {
		response.FromError(w, r, c.logger, err)
		return
	}

	response.OK(w, r, c.logger, "products retrieved", response.NewPage(ToResponses(products), pageReq, total))
}

func (c *Controller) Update(w http.ResponseWriter, r *http.Request) {
	var req UpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, r, c.logger, http.StatusBadRequest, "invalid JSON body", apperrors.ValidationDetail{
			Field:   "body",
			Message: "request body must be valid JSON",
		})
		return
	}

	p, err := c.service.Update(r.Context(), chi.URLParam(r, "id"), UpdateInput{
		SKU:         req.SKU,
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Stock:       req.Stock,
		CategoryID:  req.CategoryID,
		IsActive:    req.IsActive,
	})
	if err != nil {
		response.FromError(w, r, c.logger, err)
		return
	}

	response.OK(w, r, c.logger, "product updated", ToResponse(*p))
}

func (c *Controller) Delete(w http.ResponseWriter, r *http.Request) {
	if err := c.service.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		response.FromError(w, r, c.logger, err)
		return
	}

	response.OK(w, r, c.logger, "product deleted", nil)
}

func (c *Controller) Count(w http.ResponseWriter, r *http.Request) {
	count, err := c.service.CountProducts(r.Context())
	if err != nil {
		response.FromError(w, r, c.logger, err)
		return
	}

	response.OK(w, r, c.logger, "product count retrieved", map[string]int64{"count": count})
}

func validateCreateRequest(req CreateRequest) error {
	var details []apperrors.ValidationDetail

	if req.SKU == "" {
		details = append(details, apperrors.ValidationDetail{
			Field:   "sku",
			Message: "sku is required",
		})
	}
	if req.Name == "" {
		details = append(details, apperrors.ValidationDetail{
			Field:   "name",
			Message: "name is required",
		})
	}
	if req.Price.IsNegative() {
		details = append(details, apperrors.ValidationDetail{
			Field:         "price",
			Message:       "price must be non-negative",
			RejectedValue: req.Price.String(),
		})
	}
	if req.Stock < 0 {
		details = append(details, apperrors.ValidationDetail{
			Field:         "stock",
			Message:       "stock must be non-negative",
			RejectedValue: req.Stock,
		})
	}

	if len(details) > 0 {
		return apperrors.NewValidationError("validation failed", details...)
	}
	return nil
}
