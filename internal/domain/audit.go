package domain

import "time"

// Audit action tags.
const (
	AuditLogin          = "login"
	AuditLoginFailed    = "login_failed"
	AuditLogout         = "logout"
	AuditRegister       = "register"
	AuditUserUpdated    = "user_updated"
	AuditUserDeleted    = "user_deleted"
	AuditOrderCreated   = "order_created"
	AuditOrderFinalized = "order_finalized"
	AuditStockMovement  = "stock_movement"
)

// AuditEntry is an append-only activity record. ActorID is nil for failed
// logins where no account resolved.
type AuditEntry struct {
	ID          string
	ActorID     *string
	Action      string
	Description string
	CreatedAt   time.Time
}
