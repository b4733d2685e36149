package ports

import "time"

// WalletClaims is the verified identity attached to a request. Address is
// the caller's ledger address as asserted by the external identity service.
type WalletClaims struct {
	Address   string
	ExpiresAt time.Time
}

// IdentityVerifier validates collaborator-issued bearer tokens. Identity and
// session management live outside this service; only verification is local.
type IdentityVerifier interface {
	Verify(token string) (WalletClaims, error)
}
