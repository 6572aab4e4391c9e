package model

// AuthContext carries the resolved identity of an authenticated request.
// Built by the auth middleware after token validation and user resolution.
type AuthContext struct {
	UserID   int64
	Username string
}
