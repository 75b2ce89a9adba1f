package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestOrderStatus_HappyPath(t *testing.T) {
	path := []OrderStatus{
		OrderStatusPending,
		OrderStatusConfirmed,
		OrderStatusProcessing,
		OrderStatusShipped,
		OrderStatusDelivered,
	}

	for i := 0; i < len(path)-1; i++ {
		assert.True(t, path[i].CanTransitionTo(path[i+1]),
			"%s -> %s should be allowed", path[i], path[i+1])
	}
}

func TestOrderStatus_SkipRejected(t *testing.T) {
	tests := []struct {
		from OrderStatus
		to   OrderStatus
	}{
		{OrderStatusPending, OrderStatusShipped},
		{OrderStatusPending, OrderStatusDelivered},
		{OrderStatusPending, OrderStatusProcessing},
		{OrderStatusConfirmed, OrderStatusShipped},
		{OrderStatusConfirmed, OrderStatusDelivered},
		{OrderStatusProcessing, OrderStatusDelivered},
		{OrderStatusShipped, OrderStatusCancelled},
		{OrderStatusDelivered, OrderStatusPending},
		{OrderStatusCancelled, OrderStatusPending},
		{OrderStatusCancelled, OrderStatusConfirmed},
		{OrderStatusDelivered, OrderStatusRefunded},
	}

	for _, tt := range tests {
		assert.False(t, tt.from.CanTransitionTo(tt.to),
			"%s -> %s should be rejected", tt.from, tt.to)
	}
}

func TestOrderStatus_SameStatusNoOp(t *testing.T) {
	statuses := []OrderStatus{
		OrderStatusPending, OrderStatusConfirmed, OrderStatusProcessing,
		OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled,
	}

	for _, s := range statuses {
		assert.True(t, s.CanTransitionTo(s), "%s -> %s should be a no-op", s, s)
	}
}

func TestOrderStatus_Cancellable(t *testing.T) {
	assert.True(t, OrderStatusPending.IsCancellable())
	assert.True(t, OrderStatusConfirmed.IsCancellable())
	assert.True(t, OrderStatusProcessing.IsCancellable())

	assert.False(t, OrderStatusShipped.IsCancellable())
	assert.False(t, OrderStatusDelivered.IsCancellable())
	assert.False(t, OrderStatusCancelled.IsCancellable())
}

func TestParseOrderStatus(t *testing.T) {
	s, ok := ParseOrderStatus("out_for_delivery")
	assert.True(t, ok)
	assert.Equal(t, OrderStatusOutForDelivery, s)

	_, ok = ParseOrderStatus("PENDING")
	assert.False(t, ok)

	_, ok = ParseOrderStatus("unknown")
	assert.False(t, ok)
}

func TestParsePaymentStatus(t *testing.T) {
	s, ok := ParsePaymentStatus("partially_refunded")
	assert.True(t, ok)
	assert.Equal(t, PaymentStatusPartiallyRefunded, s)

	_, ok = ParsePaymentStatus("settled")
	assert.False(t, ok)
}

func TestItemTotal(t *testing.T) {
	total := ItemTotal(decimal.RequireFromString("10.00"), 2)
	assert.True(t, total.Equal(decimal.RequireFromString("20.00")), "got %s", total)
}

func TestOrder_ComputeSubtotal(t *testing.T) {
	order := Order{
		Items: []OrderItem{
			{TotalPrice: decimal.RequireFromString("20.00")},
			{TotalPrice: decimal.RequireFromString("5.50")},
		},
	}

	assert.True(t, order.ComputeSubtotal().Equal(decimal.RequireFromString("25.50")))
}
