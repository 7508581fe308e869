package identity

import "errors"

// Sentinel errors for token verification.
var (
	ErrMissingToken   = errors.New("identity: missing token")
	ErrTokenExpired   = errors.New("identity: token expired")
	ErrTokenMalformed = errors.New("identity: token malformed")
	ErrTokenInvalid   = errors.New("identity: token invalid")
)
