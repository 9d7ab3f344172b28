// Copyright 2026 The Punchlist Authors
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/punchlist-io/punchlist/lib/identity"
)

// ownerContextKey is the private key under which the authentication
// middleware stores the verified subject. Handlers read it back with
// ownerFromContext; nothing outside this package can inject an owner.
type ownerContextKey struct{}

// ownerFromContext returns the verified subject stashed by the
// authentication middleware, or "" when the request never passed
// through it.
func ownerFromContext(ctx context.Context) string {
	owner, _ := ctx.Value(ownerContextKey{}).(string)
	return owner
}

// corsHeaders sets the cross-origin headers on every response that
// passes through it, errors and preflights included. Browsers discard
// responses without these headers, so a 401 missing them would surface
// to a web client as an opaque network failure instead of a readable
// error.
func corsHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := w.Header()
		header.Set("Access-Control-Allow-Origin", "*")
		header.Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		header.Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		next.ServeHTTP(w, r)
	})
}

// authenticate verifies the bearer token on each request and stores the
// verified subject in the request context before delegating to next.
// Every failure is the same 401: which check failed (missing header,
// bad signature, expiry, audience) is logged, not revealed.
func (h *handler) authenticate(verifier *identity.Verifier, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authorization := r.Header.Get("Authorization")
		if authorization == "" {
			h.sendError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}

		encoded, ok := strings.CutPrefix(authorization, "Bearer ")
		if !ok {
			h.sendError(w, http.StatusUnauthorized, "authorization header is not a bearer token")
			return
		}

		token, err := verifier.VerifyAt(encoded, h.clock.Now())
		if err != nil {
			h.logger.Debug("token verification failed", "path", r.URL.Path, "error", err)
			h.sendError(w, http.StatusUnauthorized, "invalid or expired token")
			return
		}

		ctx := context.WithValue(r.Context(), ownerContextKey{}, token.Subject)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
