package review

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
	ProductID string `json:"productId"`
	Rating    int    `json:"rating"`
	Comment   string `json:"comment"`
}

type updateRequest struct {
	Rating  *int    `json:"rating"`
	Comment *string `json:"comment"`
}

type Response struct {
	ID        string    `json:"id"`
	ProductID string    `json:"productId"`
	UserID    string    `json:"userId"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type averageResponse struct {
	ProductID     string  `json:"productId"`
	AverageRating float64 `json:"averageRating"`
}

func toResponse(rv domain.Review) Response {
	return Response{
		ID:        rv.ID,
		ProductID: rv.ProductID,
		UserID:    rv.UserID,
		Rating:    rv.Rating,
		Comment:   rv.Comment,
		CreatedAt: rv.CreatedAt,
		UpdatedAt: rv.UpdatedAt,
	}
}

func toResponses(reviews []domain.Review) []Response {
	responses := make([]Response, 0, len(reviews))
	for _, rv := range reviews {
		responses = append(responses, toResponse(rv))
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

	if req.ProductID == "" {
		response.FromError(w, r, c.logger, apperrors.NewValidationError("validation failed", apperrors.ValidationDetail{
			Field:   "productId",
			Message: "productId is required",
		}))
		return
	}

	created, err := c.service.Create(r.Context(), userID, req.ProductID, req.Rating, req.Comment)
	if err != nil {
		response.FromError(w, r, c.logger, err)
		return
	}

	response.Created(w, r, c.logger, "review created", toResponse(*created))
}

func (c *Controller) GetByID(w http.ResponseWriter, r *http.Request) {
	rv, err := c.service.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.FromError(w, r, c.logger, err)
		return
	}

	response.OK(w, r, c.logger, "review retrieved", toResponse(*rv))
}

func (c *Controller) ListByProduct(w http.ResponseWriter, r *http.Request) {
	pageReq, err := response.ParsePageRequest(r)
	if err != nil {
		response.FromError(w, r, c.logger, err)
		return
	}

	productID := chi.URLParam(r, "productId")
	reviews, total, err := c.service.ListByProduct(r.Context(), productID, pageReq.Size, pageReq.Offset())
	if err != nil {
		response.FromError(w, r, c.logger, err)
		return
	}

	response.OK(w, r, c.logger, "reviews retrieved", response.NewPage(toResponses(reviews), pageReq, total))
}

func (c *Controller) AverageRating(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "productId")
	avg, err := c.service.AverageRating(r.Context(), productID)
	if err != nil {
		response.FromError(w, r, c.logger, err)
		return
	}

	response.OK(w, r, c.logger, "average rating retrieved", averageResponse{
		ProductID:     productID,
		AverageRating: avg,
	})
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

	updated, err := c.service.Update(r.Context(), chi.URLParam(r, "id"), userID, req.Rating, req.Comment)
	if err != nil {
		response.FromError(w, r, c.logger, err)
		return
	}

	response.OK(w, r, c.logger, "review updated", toResponse(*updated))
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

	response.OK(w, r, c.logger, "review deleted", nil)
}
