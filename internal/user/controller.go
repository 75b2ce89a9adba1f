package user

import (
	"encoding/json"
	"net/http"
	"strings"

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

	u, err := c.service.Register(r.Context(), req.Email, req.Password, req.FirstName, req.LastName, req.Phone)
	if err != nil {
		response.FromError(w, r, c.logger, err)
		return
	}

	response.Created(w, r, c.logger, "user created", ToResponse(*u))
}

func (c *Controller) GetByID(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	u, err := c.service.GetByID(r.Context(), id)
	if err != nil {
		response.FromError(w, r, c.logger, err)
		return
	}

	response.OK(w, r, c.logger, "user retrieved", ToResponse(*u))
}

func (c *Controller) GetByEmail(w http.ResponseWriter, r *http.Request) {
	email := chi.URLParam(r, "email")

	u, err := c.service.GetByEmail(r.Context(), email)
	if err != nil {
		response.FromError(w, r, c.logger, err)
		return
	}

	response.OK(w, r, c.logger, "user retrieved", ToResponse(*u))
}

func (c *Controller) List(w http.ResponseWriter, r *http.Request) {
	pageReq, err := response.ParsePageRequest(r)
	if err != nil {
		response.FromError(w, r, c.logger, err)
		return
	}

	users, total, err := c.service.List(r.Context(), pageReq.Size, pageReq.Offset())
	if err != nil {
		response.FromError(w, r, c.logger, err)
		return
	}

	response.OK(w, r, c.logger, "users retrieved", response.NewPage(ToResponses(users), pageReq, total))
}

func (c *Controller) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req UpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, r, c.logger, http.StatusBadRequest, "invalid JSON body", apperrors.ValidationDetail{
			Field:   "body",
			Message: "request body must be valid JSON",
		})
		return
	}

	u, err := c.service.Update(r.Context(), id, UpdateInput{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
	})
	if err != nil {
		response.FromError(w, r, c.logger, err)
		return
	}

	response.OK(w, r, c.logger, "user updated", ToResponse(*u))
}

func (c *Controller) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := c.service.Delete(r.Context(), id); err != nil {
		response.FromError(w, r, c.logger, err)
		return
	}

	response.OK(w, r, c.logger, "user deleted", nil)
}

func (c *Controller) Count(w http.ResponseWriter, r *http.Request) {
	count, err := c.service.CountUsers(r.Context())
	if err != nil {
		response.FromError(w, r, c.logger, err)
		return
	}

	response.OK(w, r, c.logger, "user count retrieved", map[string]int64{"count": count})
}

func validateCreateRequest(req CreateRequest) error {
	var details []apperrors.ValidationDetail

	if req.Email == "" || !strings.Contains(req.Email, "@") {
		details = append(details, apperrors.ValidationDetail{
			Field:         "email",
			Message:       "email must be a valid address",
			RejectedValue: req.Email,
		})
	}
	if len(req.Password) < 8 {
		details = append(details, apperrors.ValidationDetail{
			Field:   "password",
			Message: "password must be at least 8 characters",
		})
	}
	if req.FirstName == "" {
		details = append(details, apperrors.ValidationDetail{
			Field:   "firstName",
			Message: "firstName is required",
		})
	}
	if req.LastName == "" {
		details = append(details, apperrors.ValidationDetail{
			Field:   "lastName",
			Message: "lastName is required",
		})
	}

	if len(details) > 0 {
		return apperrors.NewValidationError("validation failed", details...)
	}
	return nil
}
