package security

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/citadelx/marketplace/internal/domain"
	"github.com/citadelx/marketplace/internal/ports"
	"github.com/golang-jwt/jwt/v5"
)

// WalletVerifier validates bearer tokens issued by the external wallet
// identity service. Tokens assert which ledger address the caller controls;
// this service never holds keys or sessions of its own.
type WalletVerifier struct {
	secret []byte
}

func NewWalletVerifier(secret string) (*WalletVerifier, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, errors.New("wallet token secret is required")
	}
	return &WalletVerifier{secret: []byte(secret)}, nil
}

type walletJWTClaims struct {
	Address string `json:"address"`
	jwt.RegisteredClaims
}

func (v *WalletVerifier) Verify(raw string) (ports.WalletClaims, error) {
	parsed, err := jwt.ParseWithClaims(raw, &walletJWTClaims{}, func(token *jwt.Token) (any, error) {
		if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, fmt.Errorf("unexpected signing method: %s", token.Method.Alg())
		}
		return v.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithLeeway(30*time.Second))
	if err != nil {
		return ports.WalletClaims{}, fmt.Errorf("%w: %v", domain.ErrUnauthorized, err)
	}
	claims, ok := parsed.Claims.(*walletJWTClaims)
	if !ok || !parsed.Valid {
		return ports.WalletClaims{}, domain.ErrUnauthorized
	}
	if strings.TrimSpace(claims.Address) == "" {
		return ports.WalletClaims{}, fmt.Errorf("%w: token missing address", domain.ErrUnauthorized)
	}

	out := ports.WalletClaims{Address: claims.Address}
	if claims.ExpiresAt != nil {
		out.ExpiresAt = claims.ExpiresAt.Time.UTC()
	}
	return out, nil
}
