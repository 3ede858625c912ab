package constants

// Context keys
const (
	ContextKeyUserID = "user_id"
)

// Pagination bounds
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Authentication
const (
	MinPasswordLength = 8
	BearerPrefix      = "Bearer "
)
