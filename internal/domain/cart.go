package domain

import "time"

type Cart struct {
	ID        string
	UserID    string
	CreatedAt time.Time
	UpdatedAt time.Time
	Items     []CartItem
}

type CartItem struct {
	ID        string
	CartID    string
	ProductID string
	Quantity  int
	CreatedAt time.Time
	UpdatedAt time.Time
}
