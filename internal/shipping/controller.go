package shipping

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"vincula/internal/domain"
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

type createRequest struct {
	Name          string          `json:"name"`
	Description   string          `json:"description"`
	Cost          decimal.Decimal `json:"cost"`
	EstimatedDays int             `json:"estimatedDays"`
	IsActive      bool            `json:"isActive"`
}

type updateRequest struct {
	Name          *string          `json:"name"`
	Description   *string          `json:"description"`
	Cost          *decimal.Decimal `json:"cost"`
	EstimatedDays *int             `json:"estimatedDays"`
	IsActive      *bool            `json:"isActive"`
}

type Response struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Description   string          `json:"description"`
	Cost          decimal.Decimal `json:"cost"`
	EstimatedDays int             `json:"estimatedDays"`
	IsActive      bool            `json:"isActive"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

func toResponse(m domain.ShippingMethod) Response {
	return Response{
		ID:            m.ID,
		Name:          m.Name,
		Description:   m.Description,
		Cost:          m.Cost,
		EstimatedDays: m.EstimatedDays,
		IsActive:      m.IsActive,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}

func toResponses(methods []domain.ShippingMethod) []Response {
	responses := make([]Response, 0, len(methods))
	for _, m := range methods {
		responses = append(responses, toResponse(m))
	}
	return responses
}

func (c *Controller) Create(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, r, c.logger, http.StatusBadRequest, "invalid JSON body", apperrors.ValidationDetail{
			Field:   "body",
			Message: "request body must be valid JSON",
		})
		return
	}

	if req.Name == "" {
		response.FromError(w, r, c.logger, apperrors.NewValidationError("validation failed", apperrors.ValidationDetail{
			Field:   "name",
			Message: "name is required",
		}))
		return
	}

	created, err := c.service.Create(r.Context(), Input{
		Name:          req.Name,
		Description:   req.Description,
		Cost:          req.Cost,
		EstimatedDays: req.EstimatedDays,
		IsActive:      req.IsActive,
	})
	if err != nil {
		response.FromError(w, r, c.logger, err)
		return
	}

	response.Created(w, r, c.logger, "shipping method created", toResponse(*created))
}

func (c *Controller) GetByID(w http.ResponseWriter, r *http.Request) {
	m, err := c.service.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.FromError(w, r, c.logger, err)
		return
	}

	response.OK(w, r, c.logger, "shipping method retrieved", toResponse(*m))
}

func (c *Controller) List(w http.ResponseWriter, r *http.Request) {
	activeOnly := r.URL.Query().Get("active") == "true"

	methods, err := c.service.List(r.Context(), activeOnly)
	if err != nil {
		response.FromError(w, r, c.logger, err)
		return
	}

	response.OK(w, r, c.logger, "shipping methods retrieved", toResponses(methods))
}

func (c *Controller) Update(w http.ResponseWriter, r *http.Request) {
	var req updateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, r, c.logger, http.StatusBadRequest, "invalid JSON body", apperrors.ValidationDetail{
			Field:   "body",
			Message: "request body must be valid JSON",
		})
		return
	}

	updated, err := c.service.Update(r.Context(), chi.URLParam(r, "id"), UpdateInput{
		Name:          req.Name,
		Description:   req.Description,
		Cost:          req.Cost,
		EstimatedDays: req.EstimatedDays,
		IsActive:      req.IsActive,
	})
	if err != nil {
		response.FromError(w, r, c.logger, err)
		return
	}

	response.OK(w, r, c.logger, "shipping method updated", toResponse(*updated))
}

func (c *Controller) Delete(w http.ResponseWriter, r *http.Request) {
	if err := c.service.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		response.FromError(w, r, c.logger, err)
		return
	}

	response.OK(w, r, c.logger, "shipping method deleted", nil)
}
