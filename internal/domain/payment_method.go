package domain

import "time"

type PaymentMethod struct {
	ID        string
	UserID    string
	Kind      string
	Label     string
	Token     string
	IsDefault bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

const (
	PaymentKindCard   = "card"
	PaymentKindPaypal = "paypal"
	PaymentKindBank   = "bank"
)

func ValidPaymentKind(kind string) bool {
	return kind == PaymentKindCard || kind == PaymentKindPaypal || kind == PaymentKindBank
}
