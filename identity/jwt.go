package identity

import (
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// VerifierConfig configures the token verifier.
type VerifierConfig struct {
	// Secret is the HMAC signing secret. Required.
	Secret []byte

	// Issuer is the expected token issuer (iss claim). Empty disables the
	// check.
	Issuer string

	// Audience is the expected token audience (aud claim). Empty disables
	// the check.
	Audience string

	// PrincipalClaim is the claim containing the principal.
	// Default: "sub"
	PrincipalClaim string

	// RolesClaim is the claim containing the roles list.
	// Default: "roles"
	RolesClaim string
}

// Verifier validates bearer tokens and produces identities from their
// claims.
type Verifier struct {
	config VerifierConfig
}

// NewVerifier creates a new token verifier.
func NewVerifier(config VerifierConfig) *Verifier {
	if config.PrincipalClaim == "" {
		config.PrincipalClaim = "sub"
	}
	if config.RolesClaim == "" {
		config.RolesClaim = "roles"
	}

	return &Verifier{config: config}
}

// Verify validates the token string and builds an Identity from its
// claims.
func (v *Verifier) Verify(tokenString string) (*Identity, error) {
	tokenString = strings.TrimSpace(strings.TrimPrefix(tokenString, "Bearer "))
	if tokenString == "" {
		return nil, ErrMissingToken
	}

	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{"HS256", "HS384", "HS512"})}
	if v.config.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.config.Issuer))
	}
	if v.config.Audience != "" {
		opts = append(opts, jwt.WithAudience(v.config.Audience))
	}

	token, err := jwt.Parse(tokenString, func(_ *jwt.Token) (any, error) {
		return v.config.Secret, nil
	}, opts...)
	if err != nil {
		if strings.Contains(err.Error(), "expired") {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenMalformed
	}
	if !token.Valid {
		return nil, ErrTokenInvalid
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrTokenMalformed
	}

	id := &Identity{Claims: map[string]any(claims)}

	if principal, ok := claims[v.config.PrincipalClaim].(string); ok {
		id.Principal = principal
	}
	if rawRoles, ok := claims[v.config.RolesClaim].([]any); ok {
		for _, r := range rawRoles {
			if role, ok := r.(string); ok {
				id.Roles = append(id.Roles, role)
			}
		}
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		id.ExpiresAt = exp.Time
	}
	if iat, err := claims.GetIssuedAt(); err == nil && iat != nil {
		id.IssuedAt = iat.Time
	}

	if id.Principal == "" {
		return nil, ErrTokenInvalid
	}
	return id, nil
}
