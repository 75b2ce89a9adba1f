package domain

import "time"

type WishlistItem struct {
	ID        string
	UserID    string
	ProductID string
	CreatedAt time.Time
}
