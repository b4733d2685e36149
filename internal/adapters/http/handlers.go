package http

import (
	"context"
	"net/http"
)

func (h *Handler) healthz(w http.ResponseWriter, _ *http.Request) {
	writeMessage(w, http.StatusOK, "ok")
}

func (h *Handler) readyz(w http.ResponseWriter, _ *http.Request) {
	writeMessage(w, http.StatusOK, "ready")
}

func (h *Handler) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, err := bearerTokenFromHeader(r.Header.Get("Authorization"))
		if err != nil {
			writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing bearer token")
			return
		}

		claims, err := h.verifier.Verify(raw)
		if err != nil {
			status, code, msg := mapDomainError(err)
			writeError(w, status, code, msg)
			return
		}

		ctx := context.WithValue(r.Context(), ctxKeyWallet, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// callerAddress returns the verified wallet address or writes a 401.
func (h *Handler) callerAddress(w http.ResponseWriter, r *http.Request) (string, bool) {
	claims, ok := walletFromContext(r.Context())
	if !ok || claims.Address == "" {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing wallet identity")
		return "", false
	}
	return claims.Address, true
}
