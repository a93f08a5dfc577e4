package constants

const (
	// ContextKeyUserID is the gin context key holding the authenticated user ID.
	ContextKeyUserID = "user_id"

	// IdentityHeader carries the caller's user ID on every non-auth request.
	IdentityHeader = "X-User-Id"

	// MinPasswordLength is the minimum accepted password length at registration.
	MinPasswordLength = 8
)
