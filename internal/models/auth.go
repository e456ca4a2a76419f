package models

// Roles carried in the JWT "role" claim.
const (
	RoleAdmin  = "admin"
	RoleSystem = "system" // service-to-service calls, e.g. the donation flow
)

// Context keys set by the auth middleware.
const (
	ContextUserID    = "userID"
	ContextUserEmail = "userEmail"
	ContextUserRole  = "userRole"
)
