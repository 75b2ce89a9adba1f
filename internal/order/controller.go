package order

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

type itemRequest struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

type createRequest struct {
	UserID            string        `json:"userId"`
	Items             []itemRequest `json:"items"`
	PaymentMethodID   *string       `json:"paymentMethodId"`
	ShippingMethodID  *string       `json:"shippingMethodId"`
	ShippingAddressID *string       `json:"shippingAddressId"`
	Notes             *string       `json:"notes"`
}

type updateRequest struct {
	PaymentMethodID   *string       `json:"paymentMethodId"`
	ShippingMethodID  *string       `json:"shippingMethodId"`
	ShippingAddressID *string       `json:"shippingAddressId"`
	Notes             *string       `json:"notes"`
	Items             []itemRequest `json:"items"`
}

type ItemResponse struct {
	ID          string          `json:"id"`
	ProductID   string          `json:"productId"`
	ProductName string          `json:"productName"`
	ProductSKU  string          `json:"productSku"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	Quantity    int             `json:"quantity"`
	TotalPrice  decimal.Decimal `json:"totalPrice"`
}

type Response struct {
	ID                string          `json:"id"`
	UserID            string          `json:"userId"`
	OrderNumber       string          `json:"orderNumber"`
	Status            string          `json:"status"`
	PaymentStatus     string          `json:"paymentStatus"`
	PaymentMethodID   *string         `json:"paymentMethodId"`
	ShippingMethodID  *string         `json:"shippingMethodId"`
	ShippingAddressID *string         `json:"shippingAddressId"`
	Subtotal          decimal.Decimal `json:"subtotal"`
	ShippingCost      decimal.Decimal `json:"shippingCost"`
	Total             decimal.Decimal `json:"total"`
	Notes             *string         `json:"notes"`
	Items             []ItemResponse  `json:"items"`
	CreatedAt         time.Time       `json:"createdAt"`
	UpdatedAt         time.Time       `json:"updatedAt"`
	CancelledAt       *time.Time      `json:"cancelledAt"`
}

type countResponse struct {
	Count int64 `json:"count"`
}

func toResponse(o domain.Order) Response {
	items := make([]ItemResponse, 0, len(o.Items))
	for _, item := range o.Items {
		items = append(items, ItemResponse{
			ID:          item.ID,
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			ProductSKU:  item.ProductSKU,
			UnitPrice:   item.UnitPrice,
			Quantity:    item.Quantity,
			TotalPrice:  item.TotalPrice,
		})
	}
	return Response{
		ID:                o.ID,
		UserID:            o.UserID,
		OrderNumber:       o.OrderNumber,
		Status:            string(o.Status),
		PaymentStatus:     string(o.PaymentStatus),
		PaymentMethodID:   o.PaymentMethodID,
		ShippingMethodID:  o.ShippingMethodID,
		ShippingAddressID: o.ShippingAddressID,
		Subtotal:          o.Subtotal,
		ShippingCost:      o.ShippingCost,
		Total:             o.Total,
		Notes:             o.Notes,
		Items:             items,
		CreatedAt:         o.CreatedAt,
		UpdatedAt:         o.UpdatedAt,
		CancelledAt:       o.CancelledAt,
	}
}

func toResponses(orders []domain.Order) []Response {
	responses := make([]Response, 0, len(orders))
	for _, o := range orders {
		responses = append(responses, toResponse(o))
	}
	return responses
}

func toItemInputs(items []itemRequest) []ItemInput {
	inputs := make([]ItemInput, 0, len(items))
	for _, item := range items {
		inputs = append(inputs, ItemInput{ProductID: item.ProductID, Quantity: item.Quantity})
	}
	return inputs
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

	if req.UserID == "" {
		response.FromError(w, r, c.logger, apperrors.NewValidationError("validation failed", apperrors.ValidationDetail{
			Field:   "userId",
			Message: "userId is required",
		}))
		return
	}

	created, err := c.service.Create(r.Context(), CreateInput{
		UserID:            req.UserID,
		Items:             toItemInputs(req.Items),
		PaymentMethodID:   req.PaymentMethodID,
		ShippingMethodID:  req.ShippingMethodID,
		ShippingAddressID: req.ShippingAddressID,
		Notes:             req.Notes,
	})
	if err != nil {
		response.FromError(w, r, c.logger, err)
		return
	}

	response.Created(w, r, c.logger, "order created", toResponse(*created))
}

func (c *Controller) GetByID(w http.ResponseWriter, r *http.Request) {
	o, err := c.service.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.FromError(w, r, c.logger, err)
		return
	}

	response.OK(w, r, c.logger, "order retrieved", toResponse(*o))
}

func (c *Controller) GetByNumber(w http.ResponseWriter, r *http.Request) {
	o, err := c.service.GetByNumber(r.Context(), chi.URLParam(r, "orderNumber"))
	if err != nil {
		response.FromError(w, r, c.logger, err)
		return
	}

	response.OK(w, r, c.logger, "order retrieved", toResponse(*o))
}

func (c *Controller) List(w http.ResponseWriter, r *http.Request) {
	pageReq, err := response.ParsePageRequest(r)
	if err != nil {
		response.FromError(w, r, c.logger, err)
		return
	}

	orders, total, err := c.service.List(r.Context(), pageReq.Size, pageReq.Offset())
	if err != nil {
		response.FromError(w, r, c.logger, err)
		return
	}

	response.OK(w, r, c.logger, "orders retrieved", response.NewPage(toResponses(orders), pageReq, total))
}

func (c *Controller) ListByUser(w http.ResponseWriter, r *http.Request) {
	pageReq, err := response.ParsePageRequest(r)
	if err != nil {
		response.FromError(w, r, c.logger, err)
		return
	}

	orders, total, err := c.service.ListByUser(r.Context(), chi.URLParam(r, "userId"), pageReq.Size, pageReq.Offset())
	if err != nil {
		response.FromError(w, r, c.logger, err)
		return
	}

	response.OK(w, r, c.logger, "orders retrieved", response.NewPage(toResponses(orders), pageReq, total))
}

func (c *Controller) ListByStatus(w http.ResponseWriter, r *http.Request) {
	status, ok := domain.ParseOrderStatus(chi.URLParam(r, "status"))
	if !ok {
		response.FromError(w, r, c.logger, apperrors.NewValidationError("validation failed", apperrors.ValidationDetail{
			Field:         "status",
			Message:       "unknown order status",
			RejectedValue: chi.URLParam(r, "status"),
		}))
		return
	}

	pageReq, err := response.ParsePageRequest(r)
	if err != nil {
		response.FromError(w, r, c.logger, err)
		return
	}

	orders, total, err := c.service.ListByStatus(r.Context(), status, pageReq.Size, pageReq.Offset())
	if err != nil {
		response.FromError(w, r, c.logger, err)
		return
	}

	response.OK(w, r, c.logger, "orders retrieved", response.NewPage(toResponses(orders), pageReq, total))
}

func (c *Controller) Count(w http.ResponseWriter, r *http.Request) {
	count, err := c.service.Count(r.Context())
	if err != nil {
		response.FromError(w, r, c.logger, err)
		return
	}

	response.OK(w, r, c.logger, "order count retrieved", countResponse{Count: count})
}

func (c *Controller) CountByStatus(w http.ResponseWriter, r *http.Request) {
	status, ok := domain.ParseOrderStatus(chi.URLParam(r, "status"))
	if !ok {
		response.FromError(w, r, c.logger, apperrors.NewValidationError("validation failed", apperrors.ValidationDetail{
			Field:         "status",
			Message:       "unknown order status",
			RejectedValue: chi.URLParam(r, "status"),
		}))
		return
	}

	count, err := c.service.CountByStatus(r.Context(), status)
	if err != nil {
		response.FromError(w, r, c.logger, err)
		return
	}

	response.OK(w, r, c.logger, "order count retrieved", countResponse{Count: count})
}

func (c *Controller) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("status")
	status, ok := domain.ParseOrderStatus(raw)
	if !ok {
		response.FromError(w, r, c.logger, apperrors.NewValidationError("validation failed", apperrors.ValidationDetail{
			Field:         "status",
			Message:       "unknown order status",
			RejectedValue: raw,
		}))
		return
	}

	updated, err := c.service.UpdateStatus(r.Context(), chi.URLParam(r, "id"), status)
	if err != nil {
		response.FromError(w, r, c.logger, err)
		return
	}

	response.OK(w, r, c.logger, "order status updated", toResponse(*updated))
}

func (c *Controller) UpdatePaymentStatus(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("paymentStatus")
	status, ok := domain.ParsePaymentStatus(raw)
	if !ok {
		response.FromError(w, r, c.logger, apperrors.NewValidationError("validation failed", apperrors.ValidationDetail{
			Field:         "paymentStatus",
			Message:       "unknown payment status",
			RejectedValue: raw,
		}))
		return
	}

	updated, err := c.service.UpdatePaymentStatus(r.Context(), chi.URLParam(r, "id"), status)
	if err != nil {
		response.FromError(w, r, c.logger, err)
		return
	}

	response.OK(w, r, c.logger, "order payment status updated", toResponse(*updated))
}

func (c *Controller) Cancel(w http.ResponseWriter, r *http.Request) {
	cancelled, err := c.service.Cancel(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.FromError(w, r, c.logger, err)
		return
	}

	response.OK(w, r, c.logger, "order cancelled", toResponse(*cancelled))
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

	var items []ItemInput
	if req.Items != nil {
		items = toItemInputs(req.Items)
	}

	updated, err := c.service.Update(r.Context(), chi.URLParam(r, "id"), UpdateInput{
		PaymentMethodID:   req.PaymentMethodID,
		ShippingMethodID:  req.ShippingMethodID,
		ShippingAddressID: req.ShippingAddressID,
		Notes:             req.Notes,
		Items:             items,
	})
	if err != nil {
		response.FromError(w, r, c.logger, err)
		return
	}

	response.OK(w, r, c.logger, "order updated", toResponse(*updated))
}

func (c *Controller) Delete(w http.ResponseWriter, r *http.Request) {
	if err := c.service.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		response.FromError(w, r, c.logger, err)
		return
	}

	response.OK(w, r, c.logger, "order deleted", nil)
}
