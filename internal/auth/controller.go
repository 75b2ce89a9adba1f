package auth

import (
	"context"
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"vincula/internal/domain"
	apperrors "vincula/internal/errors"
	"vincula/internal/response"
	"vincula/internal/user"
)

type UserService interface {
	Register(ctx context.Context, email, password, firstName, lastName string, phone *string) (*domain.User, error)
	Authenticate(ctx context.Context, email, password string) (*domain.User, error)
	GetByID(ctx context.Context, id string) (*domain.User, error)
}

type Controller struct {
	users   UserService
	manager *Manager
	logger  *zap.Logger
}

func NewController(users UserService, manager *Manager, logger *zap.Logger) *Controller {
	return &Controller{
		users:   users,
		manager: manager,
		logger:  logger,
	}
}

type registerRequest struct {
	Email     string  `json:"email"`
	Password  string  `json:"password"`
	FirstName string  `json:"firstName"`
	LastName  string  `json:"lastName"`
	Phone     *string `json:"phone"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string        `json:"token"`
	User  user.Response `json:"user"`
}

func (c *Controller) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, r, c.logger, http.StatusBadRequest, "invalid JSON body", apperrors.ValidationDetail{
			Field:   "body",
			Message: "request body must be valid JSON",
		})
		return
	}

	var details []apperrors.ValidationDetail
	if req.Email == "" {
		details = append(details, apperrors.ValidationDetail{Field: "email", Message: "email is required"})
	}
	if len(req.Password) < 8 {
		details = append(details, apperrors.ValidationDetail{Field: "password", Message: "password must be at least 8 characters"})
	}
	if len(details) > 0 {
		response.FromError(w, r, c.logger, apperrors.NewValidationError("validation failed", details...))
		return
	}

	u, err := c.users.Register(r.Context(), req.Email, req.Password, req.FirstName, req.LastName, req.Phone)
	if err != nil {
		response.FromError(w, r, c.logger, err)
		return
	}

	token, err := c.manager.Issue(u.ID, u.Role)
	if err != nil {
		response.FromError(w, r, c.logger, err)
		return
	}

	response.Created(w, r, c.logger, "user registered", loginResponse{
		Token: token,
		User:  user.ToResponse(*u),
	})
}

func (c *Controller) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, r, c.logger, http.StatusBadRequest, "invalid JSON body", apperrors.ValidationDetail{
			Field:   "body",
			Message: "request body must be valid JSON",
		})
		return
	}

	u, err := c.users.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		response.FromError(w, r, c.logger, err)
		return
	}

	token, err := c.manager.Issue(u.ID, u.Role)
	if err != nil {
		response.FromError(w, r, c.logger, err)
		return
	}

	c.logger.Info("user logged in", zap.String("userId", u.ID))
	response.OK(w, r, c.logger, "login successful", loginResponse{
		Token: token,
		User:  user.ToResponse(*u),
	})
}

func (c *Controller) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserIDFromContext(r.Context())
	if !ok {
		response.Error(w, r, c.logger, http.StatusUnauthorized, "missing bearer token")
		return
	}

	u, err := c.users.GetByID(r.Context(), userID)
	if err != nil {
		response.FromError(w, r, c.logger, err)
		return
	}

	response.OK(w, r, c.logger, "user retrieved", user.ToResponse(*u))
}
