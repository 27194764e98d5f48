package domain

import "time"

// Customer models a repair-shop client who brings equipment in.
type Customer struct {
	ID        string
	Name      string
	Phone     string
	Email     string
	Document  string
	Address   string
	Notes     string
	CreatedAt time.Time
	UpdatedAt time.Time
}
