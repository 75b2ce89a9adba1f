package payment

import (
	"encoding/json"
	"net/http"
	"strings"
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
	Kind      string `json:"kind"`
	Label     string `json:"label"`
	Token     string `json:"token"`
	IsDefault bool   `json:"isDefault"`
}

type updateRequest struct {
	Label     *string `json:"label"`
	IsDefault *bool   `json:"isDefault"`
}

type Response struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Kind      string    `json:"kind"`
	Label     string    `json:"label"`
	Token     string    `json:"token"`
	IsDefault bool      `json:"isDefault"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// maskToken keeps the last four characters visible. Stored tokens are
// gateway references, never raw card numbers, but they still should not
// round-trip through the API whole.
func maskToken(token string) string {
	if len(token) <= 4 {
		return token
	}
	return strings.Repeat("*", len(token)-4) + token[len(token)-4:]
}

func toResponse(m domain.PaymentMethod) Response {
	return Response{
		ID:        m.ID,
		UserID:    m.UserID,
		Kind:      m.Kind,
		Label:     m.Label,
		Token:     maskToken(m.Token),
		IsDefault: m.IsDefault,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

func toResponses(methods []domain.PaymentMethod) []Response {
	responses := make([]Response, 0, len(methods))
	for _, m := range methods {
		responses = append(responses, toResponse(m))
	}
	return responses
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

	if req.Token == "" {
		response.FromError(w, r, c.logger, apperrors.NewValidationError("validation failed", apperrors.ValidationDetail{
			Field:   "token",
			Message: "token is required",
		}))
		return
	}

	created, err := c.service.Create(r.Context(), userID, Input{
		Kind:      req.Kind,
		Label:     req.Label,
		Token:     req.Token,
		IsDefault: req.IsDefault,
	})
	if err != nil {
		response.FromError(w, r, c.logger, err)
		return
	}

	response.Created(w, r, c.logger, "payment method created", toResponse(*created))
}

func (c *Controller) GetByID(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		response.FromError(w, r, c.logger, apperrors.NewUnauthorizedError("missing authentication"))
		return
	}

	m, err := c.service.GetByID(r.Context(), chi.URLParam(r, "id"), userID)
	if err != nil {
		response.FromError(w, r, c.logger, err)
		return
	}

	response.OK(w, r, c.logger, "payment method retrieved", toResponse(*m))
}

func (c *Controller) ListMine(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		response.FromError(w, r, c.logger, apperrors.NewUnauthorizedError("missing authentication"))
		return
	}

	methods, err := c.service.ListByUser(r.Context(), userID)
	if err != nil {
		response.FromError(w, r, c.logger, err)
		return
	}

	response.OK(w, r, c.logger, "payment methods retrieved", toResponses(methods))
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
		Label:     req.Label,
		IsDefault: req.IsDefault,
	})
	if err != nil {
		response.FromError(w, r, c.logger, err)
		return
	}

	response.OK(w, r, c.logger, "payment method updated", toResponse(*updated))
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

	response.OK(w, r, c.logger, "payment method deleted", nil)
}
