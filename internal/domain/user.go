package domain

import "time"

type User struct {
	ID           string
	Email        string
	PasswordHash string
	FirstName    string
	LastName     string
	Phone        *string
	Role         string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

const (
	RoleCustomer = "customer"
	RoleAdmin    = "admin"
)
