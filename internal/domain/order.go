package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPending        OrderStatus = "pending"
	OrderStatusConfirmed      OrderStatus = "confirmed"
	OrderStatusProcessing     OrderStatus = "processing"
	OrderStatusShipped        OrderStatus = "shipped"
	OrderStatusOutForDelivery OrderStatus = "out_for_delivery"
	OrderStatusDelivered      OrderStatus = "delivered"
	OrderStatusCancelled      OrderStatus = "cancelled"
	OrderStatusRefunded       OrderStatus = "refunded"
	OrderStatusFailed         OrderStatus = "failed"
)

type PaymentStatus string

const (
	PaymentStatusPending           PaymentStatus = "pending"
	PaymentStatusPaid              PaymentStatus = "paid"
	PaymentStatusFailed            PaymentStatus = "failed"
	PaymentStatusRefunded          PaymentStatus = "refunded"
	PaymentStatusPartiallyRefunded PaymentStatus = "partially_refunded"
)

// orderTransitions is the full transition graph. Statuses absent from the
// map accept no outgoing transition.
var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:    {OrderStatusConfirmed, OrderStatusCancelled},
	OrderStatusConfirmed:  {OrderStatusProcessing, OrderStatusCancelled},
	OrderStatusProcessing: {OrderStatusShipped, OrderStatusCancelled},
	OrderStatusShipped:    {OrderStatusDelivered},
}

// CanTransitionTo reports whether the status graph allows moving to
// target. A transition to the same status is always allowed (no-op).
func (s OrderStatus) CanTransitionTo(target OrderStatus) bool {
	if s == target {
		return true
	}
	for _, next := range orderTransitions[s] {
		if next == target {
			return true
		}
	}
	return false
}

// IsCancellable reports whether an order in this status may still be
// cancelled with full stock restoration.
func (s OrderStatus) IsCancellable() bool {
	return s == OrderStatusPending || s == OrderStatusConfirmed || s == OrderStatusProcessing
}

func ParseOrderStatus(raw string) (OrderStatus, bool) {
	switch s := OrderStatus(raw); s {
	case OrderStatusPending, OrderStatusConfirmed, OrderStatusProcessing,
		OrderStatusShipped, OrderStatusOutForDelivery, OrderStatusDelivered,
		OrderStatusCancelled, OrderStatusRefunded, OrderStatusFailed:
		return s, true
	}
	return "", false
}

func ParsePaymentStatus(raw string) (PaymentStatus, bool) {
	switch s := PaymentStatus(raw); s {
	case PaymentStatusPending, PaymentStatusPaid, PaymentStatusFailed,
		PaymentStatusRefunded, PaymentStatusPartiallyRefunded:
		return s, true
	}
	return "", false
}

type Order struct {
	ID                string
	UserID            string
	OrderNumber       string
	Status            OrderStatus
	PaymentStatus     PaymentStatus
	PaymentMethodID   *string
	ShippingMethodID  *string
	ShippingAddressID *string
	Subtotal          decimal.Decimal
	ShippingCost      decimal.Decimal
	Total             decimal.Decimal
	Notes             *string
	CreatedAt         time.Time
	UpdatedAt         time.Time
	CancelledAt       *time.Time
	Items             []OrderItem
}

type OrderItem struct {
	ID        string
	OrderID   string
	ProductID string
	// Name and SKU are snapshots taken at order time; later product edits
	// must not alter historical orders.
	ProductName string
	ProductSKU  string
	UnitPrice   decimal.Decimal
	Quantity    int
	TotalPrice  decimal.Decimal
}

// ItemTotal computes unit price × quantity.
func ItemTotal(unitPrice decimal.Decimal, quantity int) decimal.Decimal {
	return unitPrice.Mul(decimal.NewFromInt(int64(quantity)))
}

// Subtotal sums the total price of every item.
func (o *Order) ComputeSubtotal() decimal.Decimal {
	subtotal := decimal.Zero
	for _, item := range o.Items {
		subtotal = subtotal.Add(item.TotalPrice)
	}
	return subtotal
}
