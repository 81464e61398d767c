package middleware

// Keys used to store authenticated identity in the gin context.
const (
	// UserIDKey is the context key for the authenticated user's document ID.
	UserIDKey = "userID"
	// UserEmailKey is the context key for the authenticated user's email, the
	// identity used throughout the relationship and ledger documents.
	UserEmailKey = "userEmail"
)
