package security

import (
	"errors"
	"testing"
	"time"

	"github.com/citadelx/marketplace/internal/domain"
	"github.com/golang-jwt/jwt/v5"
)

const testSecret = "unit-test-secret"

func issueToken(t *testing.T, secret, address string, expiresAt time.Time) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, walletJWTClaims{
		Address: address,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   address,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	})
	raw, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign test token: %v", err)
	}
	return raw
}

func TestWalletVerifierAcceptsValidToken(t *testing.T) {
	t.Parallel()

	verifier, err := NewWalletVerifier(testSecret)
	if err != nil {
		t.Fatalf("new verifier: %v", err)
	}

	exp := time.Now().Add(time.Hour)
	claims, err := verifier.Verify(issueToken(t, testSecret, "WALLET-ADDR-1", exp))
	if err != nil {
		t.Fatalf("verify failed: %v", err)
	}
	if claims.Address != "WALLET-ADDR-1" {
		t.Fatalf("unexpected address: %s", claims.Address)
	}
	if claims.ExpiresAt.Sub(exp).Abs() > time.Second {
		t.Fatalf("expiry not carried over: %v vs %v", claims.ExpiresAt, exp)
	}
}

func TestWalletVerifierRejectsWrongSecret(t *testing.T) {
	t.Parallel()

	verifier, _ := NewWalletVerifier(testSecret)
	raw := issueToken(t, "other-secret", "WALLET-ADDR-1", time.Now().Add(time.Hour))
	if _, err := verifier.Verify(raw); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestWalletVerifierRejectsExpiredToken(t *testing.T) {
	t.Parallel()

	verifier, _ := NewWalletVerifier(testSecret)
	raw := issueToken(t, testSecret, "WALLET-ADDR-1", time.Now().Add(-time.Hour))
	if _, err := verifier.Verify(raw); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for expired token, got %v", err)
	}
}

func TestWalletVerifierRejectsMissingAddress(t *testing.T) {
	t.Parallel()

	verifier, _ := NewWalletVerifier(testSecret)
	raw := issueToken(t, testSecret, "", time.Now().Add(time.Hour))
	if _, err := verifier.Verify(raw); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for empty address, got %v", err)
	}
}

func TestWalletVerifierRequiresSecret(t *testing.T) {
	t.Parallel()

	if _, err := NewWalletVerifier("  "); err == nil {
		t.Fatalf("expected error for empty secret")
	}
}
