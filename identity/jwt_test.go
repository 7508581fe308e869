package identity

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var testSecret = []byte("test-secret-key-for-verification")

func signToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(testSecret)
	if err != nil {
		t.Fatalf("SignedString failed: %v", err)
	}
	return signed
}

func TestVerifier_Valid(t *testing.T) {
	v := NewVerifier(VerifierConfig{Secret: testSecret})

	tokenString := signToken(t, jwt.MapClaims{
		"sub":   "alice",
		"roles": []any{"developer", "reviewer"},
		"exp":   time.Now().Add(time.Hour).Unix(),
	})

	id, err := v.Verify(tokenString)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if id.Principal != "alice" {
		t.Errorf("Principal = %q, want alice", id.Principal)
	}
	if !id.HasRole("developer") || !id.HasRole("reviewer") {
		t.Errorf("Roles = %v, want developer+reviewer", id.Roles)
	}
	if id.ExpiresAt.IsZero() {
		t.Error("ExpiresAt should be populated from exp claim")
	}
}

func TestVerifier_BearerPrefix(t *testing.T) {
	v := NewVerifier(VerifierConfig{Secret: testSecret})

	tokenString := signToken(t, jwt.MapClaims{"sub": "alice"})
	id, err := v.Verify("Bearer " + tokenString)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if id.Principal != "alice" {
		t.Errorf("Principal = %q, want alice", id.Principal)
	}
}

func TestVerifier_Expired(t *testing.T) {
	v := NewVerifier(VerifierConfig{Secret: testSecret})

	tokenString := signToken(t, jwt.MapClaims{
		"sub": "alice",
		"exp": time.Now().Add(-time.Hour).Unix(),
	})

	_, err := v.Verify(tokenString)
	if !errors.Is(err, ErrTokenExpired) {
		t.Errorf("Verify error = %v, want ErrTokenExpired", err)
	}
}

func TestVerifier_WrongSecret(t *testing.T) {
	v := NewVerifier(VerifierConfig{Secret: []byte("other-secret")})

	tokenString := signToken(t, jwt.MapClaims{"sub": "alice"})
	if _, err := v.Verify(tokenString); err == nil {
		t.Error("Verify with wrong secret should fail")
	}
}

func TestVerifier_MissingToken(t *testing.T) {
	v := NewVerifier(VerifierConfig{Secret: testSecret})

	if _, err := v.Verify(""); !errors.Is(err, ErrMissingToken) {
		t.Errorf("Verify(\"\") error = %v, want ErrMissingToken", err)
	}
}

func TestVerifier_MissingPrincipal(t *testing.T) {
	v := NewVerifier(VerifierConfig{Secret: testSecret})

	tokenString := signToken(t, jwt.MapClaims{"roles": []any{"developer"}})
	if _, err := v.Verify(tokenString); !errors.Is(err, ErrTokenInvalid) {
		t.Errorf("Verify error = %v, want ErrTokenInvalid", err)
	}
}

func TestVerifier_IssuerCheck(t *testing.T) {
	v := NewVerifier(VerifierConfig{Secret: testSecret, Issuer: "cmdops"})

	good := signToken(t, jwt.MapClaims{"sub": "alice", "iss": "cmdops"})
	if _, err := v.Verify(good); err != nil {
		t.Errorf("Verify with matching issuer failed: %v", err)
	}

	bad := signToken(t, jwt.MapClaims{"sub": "alice", "iss": "someone-else"})
	if _, err := v.Verify(bad); err == nil {
		t.Error("Verify with wrong issuer should fail")
	}
}
