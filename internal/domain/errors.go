package domain

import "errors"

// Sentinel errors shared across services. Handlers map these onto the HTTP
// error taxonomy; services never leak backend detail through them.
var (
	ErrNotFound           = errors.New("not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTooManyAttempts    = errors.New("too many attempts")
	ErrEmailTaken         = errors.New("email already registered")
	ErrSKUTaken           = errors.New("sku already registered")
	ErrInvalidTransition  = errors.New("invalid status transition")
	ErrOrderFinalized     = errors.New("order already finalized")
	ErrInsufficientStock  = errors.New("insufficient stock")
	ErrCustomerHasOrders  = errors.New("customer has open orders")
	ErrSelfDelete         = errors.New("cannot delete own account")
	ErrBudgetNotPending   = errors.New("budget is not pending")
)
