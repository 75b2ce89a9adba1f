package response

import (
	"encoding/json"
	"math"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	apperrors "vincula/internal/errors"
)

// Envelope is the uniform body every REST endpoint returns, success or not.
type Envelope struct {
	Status     bool                         `json:"status"`
	Message    string                       `json:"message"`
	Data       interface{}                  `json:"data"`
	Timestamp  time.Time                    `json:"timestamp"`
	StatusCode int                          `json:"statusCode"`
	Path       *string                      `json:"path"`
	Errors     []apperrors.ValidationDetail `json:"errors,omitempty"`
}

type Page struct {
	Content       interface{} `json:"content"`
	PageNumber    int         `json:"pageNumber"`
	PageSize      int         `json:"pageSize"`
	TotalElements int64       `json:"totalElements"`
	TotalPages    int         `json:"totalPages"`
	First         bool        `json:"first"`
	Last          bool        `json:"last"`
	HasNext       bool        `json:"hasNext"`
	HasPrevious   bool        `json:"hasPrevious"`
}

func NewPage(content interface{}, req PageRequest, totalElements int64) Page {
	totalPages := 0
	if req.Size > 0 {
		totalPages = int(math.Ceil(float64(totalElements) / float64(req.Size)))
	}

	return Page{
		Content:       content,
		PageNumber:    req.Page,
		PageSize:      req.Size,
		TotalElements: totalElements,
		TotalPages:    totalPages,
		First:         req.Page == 0,
		Last:          req.Page >= totalPages-1,
		HasNext:       req.Page < totalPages-1,
		HasPrevious:   req.Page > 0,
	}
}

type PageRequest struct {
	Page int
	Size int
}

func (p PageRequest) Offset() int {
	return p.Page * p.Size
}

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// ParsePageRequest reads page/size query parameters. Page is zero-based,
// size is bounded to [1,100].
func ParsePageRequest(r *http.Request) (PageRequest, error) {
	req := PageRequest{Page: 0, Size: defaultPageSize}

	if raw := r.URL.Query().Get("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil || page < 0 {
			return req, apperrors.NewValidationError("invalid pagination parameters", apperrors.ValidationDetail{
				Field:         "page",
				Message:       "page must be a non-negative integer",
				RejectedValue: raw,
			})
		}
		req.Page = page
	}

	if raw := r.URL.Query().Get("size"); raw != "" {
		size, err := strconv.Atoi(raw)
		if err != nil || size < 1 || size > maxPageSize {
			return req, apperrors.NewValidationError("invalid pagination parameters", apperrors.ValidationDetail{
				Field:         "size",
				Message:       "size must be between 1 and 100",
				RejectedValue: raw,
			})
		}
		req.Size = size
	}

	return req, nil
}

func OK(w http.ResponseWriter, r *http.Request, logger *zap.Logger, message string, data interface{}) {
	write(w, r, logger, http.StatusOK, message, data)
}

func Created(w http.ResponseWriter, r *http.Request, logger *zap.Logger, message string, data interface{}) {
	write(w, r, logger, http.StatusCreated, message, data)
}

func Error(w http.ResponseWriter, r *http.Request, logger *zap.Logger, statusCode int, message string, details ...apperrors.ValidationDetail) {
	path := r.URL.Path
	env := Envelope{
		Status:     false,
		Message:    message,
		Data:       nil,
		Timestamp:  time.Now().UTC(),
		StatusCode: statusCode,
		Path:       &path,
		Errors:     details,
	}
	writeJSON(w, logger, statusCode, env)
}

// FromError maps the error taxonomy to the matching HTTP status and
// envelope. Unknown errors are reported as 500 without leaking the cause.
func FromError(w http.ResponseWriter, r *http.Request, logger *zap.Logger, err error) {
	if ve, ok := apperrors.IsValidationError(err); ok {
		Error(w, r, logger, http.StatusBadRequest, ve.Message, ve.Details...)
		return
	}
	if _, ok := apperrors.IsNotFoundError(err); ok {
		Error(w, r, logger, http.StatusNotFound, err.Error())
		return
	}
	if _, ok := apperrors.IsConflictError(err); ok {
		Error(w, r, logger, http.StatusConflict, err.Error())
		return
	}
	if _, ok := apperrors.IsUnauthorizedError(err); ok {
		Error(w, r, logger, http.StatusUnauthorized, err.Error())
		return
	}
	if _, ok := apperrors.IsForbiddenError(err); ok {
		Error(w, r, logger, http.StatusForbidden, err.Error())
		return
	}
	if _, ok := apperrors.IsDeadlockError(err); ok {
		Error(w, r, logger, http.StatusConflict, err.Error())
		return
	}

	logger.Error("unexpected error", zap.Error(err))
	Error(w, r, logger, http.StatusInternalServerError, "an unexpected error occurred")
}

func write(w http.ResponseWriter, r *http.Request, logger *zap.Logger, statusCode int, message string, data interface{}) {
	path := r.URL.Path
	env := Envelope{
		Status:     true,
		Message:    message,
		Data:       data,
		Timestamp:  time.Now().UTC(),
		StatusCode: statusCode,
		Path:       &path,
	}
	writeJSON(w, logger, statusCode, env)
}

func writeJSON(w http.ResponseWriter, logger *zap.Logger, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Error("failed to encode response", zap.Error(err))
	}
}
