package domain

import "time"

// BudgetStatus enumerates budget lifecycle states.
type BudgetStatus string

const (
	BudgetStatusPending  BudgetStatus = "PENDING"
	BudgetStatusApproved BudgetStatus = "APPROVED"
	BudgetStatusRejected BudgetStatus = "REJECTED"
	BudgetStatusExpired  BudgetStatus = "EXPIRED"
)

// Budget is a repair cost estimate offered to a customer. Amounts are cents.
type Budget struct {
	ID          string
	CustomerID  string
	OrderID     *string
	Description string
	LaborAmount int64
	PartsAmount int64
	TotalAmount int64
	Status      BudgetStatus
	ValidUntil  time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Expired reports whether the budget validity window has passed.
func (b Budget) Expired(now time.Time) bool {
	return b.Status == BudgetStatusPending && now.After(b.ValidUntil)
}
