package domain

import "time"

type Address struct {
	ID        string
	UserID    string
	Street    string
	City      string
	State     string
	Zip       string
	Country   string
	IsDefault bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
