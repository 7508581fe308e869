package permission

import "errors"

// Sentinel errors for the permission engine.
var (
	ErrInvalidRule     = errors.New("permission: invalid rule")
	ErrDuplicateRule   = errors.New("permission: duplicate rule id")
	ErrUnknownField    = errors.New("permission: unknown condition field")
	ErrUnknownOperator = errors.New("permission: unknown condition operator")
)
