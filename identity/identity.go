package identity

import "time"

// Grant is a direct permission attached to an identity: an action on a
// resource within a scope. Patterns in Resource may use glob wildcards.
type Grant struct {
	// Action is the permitted action (e.g. "read", "execute").
	Action string `json:"action"`

	// Scope is the resource category the grant applies to.
	Scope string `json:"scope"`

	// Resource is the resource pattern the grant covers.
	Resource string `json:"resource"`
}

// Identity represents the principal dispatching commands.
type Identity struct {
	// Principal is the unique identifier (e.g., user ID, email).
	Principal string

	// Roles are the roles assigned to this identity, consumed by
	// role-based permission conditions.
	Roles []string

	// Grants are direct permissions checked before any rule evaluation.
	Grants []Grant

	// Claims contains raw claims from the authentication token, if any.
	Claims map[string]any

	// ExpiresAt is when this identity expires. Zero means no expiry.
	ExpiresAt time.Time

	// IssuedAt is when this identity was created.
	IssuedAt time.Time
}

// HasRole checks if the identity has a specific role.
func (id *Identity) HasRole(role string) bool {
	for _, r := range id.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// IsExpired checks if the identity has expired.
func (id *Identity) IsExpired() bool {
	if id.ExpiresAt.IsZero() {
		return false
	}
	return time.Now().After(id.ExpiresAt)
}

// IsAnonymous returns true if no principal is set.
func (id *Identity) IsAnonymous() bool {
	return id == nil || id.Principal == ""
}

// Anonymous creates a default anonymous identity.
func Anonymous() *Identity {
	return &Identity{
		Principal: "anonymous",
		Claims:    make(map[string]any),
	}
}
