package category

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
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
	Name        string `json:"name"`
	Description string `json:"description"`
}

type updateRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

type Response struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func toResponse(c domain.Category) Response {
	return Response{
		ID:          c.ID,
		Name:        c.Name,
		Description: c.Description,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

func toResponses(categories []domain.Category) []Response {
	responses := make([]Response, 0, len(categories))
	for _, c := range categories {
		responses = append(responses, toResponse(c))
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

	created, err := c.service.Create(r.Context(), req.Name, req.Description)
	if err != nil {
		response.FromError(w, r, c.logger, err)
		return
	}

	response.Created(w, r, c.logger, "category created", toResponse(*created))
}

func (c *Controller) GetByID(w http.ResponseWriter, r *http.Request) {
	cat, err := c.service.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.FromError(w, r, c.logger, err)
		return
	}

	response.OK(w, r, c.logger, "category retrieved", toResponse(*cat))
}

func (c *Controller) List(w http.ResponseWriter, r *http.Request) {
	pageReq, err := response.ParsePageRequest(r)
	if err != nil {
		response.FromError(w, r, c.logger, err)
		return
	}

	categories, total, err := c.service.List(r.Context(), pageReq.Size, pageReq.Offset())
	if err != nil {
		response.FromError(w, r, c.logger, err)
		return
	}

	response.OK(w, r, c.logger, "categories retrieved", response.NewPage(toResponses(categories), pageReq, total))
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

	updated, err := c.service.Update(r.Context(), chi.URLParam(r, "id"), req.Name, req.Description)
	if err != nil {
		response.FromError(w, r, c.logger, err)
		return
	}

	response.OK(w, r, c.logger, "category updated", toResponse(*updated))
}

func (c *Controller) Delete(w http.ResponseWriter, r *http.Request) {
	if err := c.service.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		response.FromError(w, r, c.logger, err)
		return
	}

	response.OK(w, r, c.logger, "category deleted", nil)
}
