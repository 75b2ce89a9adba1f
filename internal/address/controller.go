package address

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"vincula/internal/auth"
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
	Street    string `json:"street"`
	City      string `json:"city"`
	State     string `json:"state"`
	Zip       string `json:"zip"`
	Country   string `json:"country"`
	IsDefault bool   `json:"isDefault"`
}

type updateRequest struct {
	Street    *string `json:"street"`
	City      *string `json:"city"`
	State     *string `json:"state"`
	Zip       *string `json:"zip"`
	Country   *string `json:"country"`
	IsDefault *bool   `json:"isDefault"`
}

type Response struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Street    string    `json:"street"`
	City      string    `json:"city"`
	State     string    `json:"state"`
	Zip       string    `json:"zip"`
	Country   string    `json:"country"`
	IsDefault bool      `json:"isDefault"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func toResponse(a domain.Address) Response {
	return Response{
		ID:        a.ID,
		UserID:    a.UserID,
		Street:    a.Street,
		City:      a.City,
		State:     a.State,
		Zip:       a.Zip,
		Country:   a.Country,
		IsDefault: a.IsDefault,
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}

func toResponses(addresses []domain.Address) []Response {
	responses := make([]Response, 0, len(addresses))
	for _, a := range addresses {
		responses = append(responses, toResponse(a))
	}
	return responses
}

func validateCreateRequest(req createRequest) []apperrors.ValidationDetail {
	var details []apperrors.ValidationDetail
	if req.Street == "" {
		details = append(details, apperrors.ValidationDetail{Field: "street", Message: "street is required"})
	}
	if req.City == "" {
		details = append(details, apperrors.ValidationDetail{Field: "city", Message: "city is required"})
	}
	if req.Country == "" {
		details = append(details, apperrors.ValidationDetail{Field: "country", Message: "country is required"})
	}
	return details
}

func (c *Controller) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		response.FromError(w, r, c.logger, apperrors.NewUnauthorizedError("missing authentication"))
		return
	}

	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, r, c.logger, http.StatusBadRequest, "invalid JSON body", apperrors.ValidationDetail{
			Field:   "body",
			Message: "request body must be valid JSON",
		})
		return
	}

	if details := validateCreateRequest(req); len(details) > 0 {
		response.FromError(w, r, c.logger, apperrors.NewValidationError("validation failed", details...))
		return
	}

	created, err := c.service.Create(r.Context(), userID, Input{
		Street:    req.Street,
		City:      req.City,
		State:     req.State,
		Zip:       req.Zip,
		Country:   req.Country,
		IsDefault: req.IsDefault,
	})
	if err != nil {
		response.FromError(w, r, c.logger, err)
		return
	}

	response.Created(w, r, c.logger, "address created", toResponse(*created))
}

func (c *Controller) GetByID(w http.ResponseWriter, r *http.Request) {
	a, err := c.service.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.FromError(w, r, c.logger, err)
		return
	}

	response.OK(w, r, c.logger, "address retrieved", toResponse(*a))
}

func (c *Controller) ListMine(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		response.FromError(w, r, c.logger, apperrors.NewUnauthorizedError("missing authentication"))
		return
	}

	addresses, err := c.service.ListByUser(r.Context(), userID)
	if err != nil {
		response.FromError(w, r, c.logger, err)
		return
	}

	response.OK(w, r, c.logger, "addresses retrieved", toResponses(addresses))
}

func (c *Controller) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		response.FromError(w, r, c.logger, apperrors.NewUnauthorizedError("missing authentication"))
		return
	}

	var req updateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, r, c.logger, http.StatusBadRequest, "invalid JSON body", apperrors.ValidationDetail{
			Field:   "body",
			Message: "request body must be valid JSON",
		})
		return
	}

	updated, err := c.service.Update(r.Context(), chi.URLParam(r, "id"), userID, UpdateInput{
		Street:    req.Street,
		City:      req.City,
		State:     req.State,
		Zip:       req.Zip,
		Country:   req.Country,
		IsDefault: req.IsDefault,
	})
	if err != nil {
		response.FromError(w, r, c.logger, err)
		return
	}

	response.OK(w, r, c.logger, "address updated", toResponse(*updated))
}

func (c *Controller) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		response.FromError(w, r, c.logger, apperrors.NewUnauthorizedError("missing authentication"))
		return
	}

	if err := c.service.Delete(r.Context(), chi.URLParam(r, "id"), userID); err != nil {
		response.FromError(w, r, c.logger, err)
		return
	}

	response.OK(w, r, c.logger, "address deleted", nil)
}
