package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/swiftcart/storefront-platform/internal/identity"
	"github.com/swiftcart/storefront-platform/internal/store"
)

type contextKey string

const identityContextKey contextKey = "identity"

const sessionHeader = "X-Session-ID"

// RequireAuth verifies the bearer token and stores the resolved identity
// in the request context. Requests without a valid token get a 401.
func RequireAuth(provider identity.Provider) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				respondWithError(w, http.StatusUnauthorized, "Missing bearer token")
				return
			}
			ident, err := provider.Verify(r.Context(), token)
			if err != nil {
				respondWithError(w, mapErrorToStatusCode(err), "Invalid or expired token")
				return
			}
			ctx := context.WithValue(r.Context(), identityContextKey, ident)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func identityFromContext(ctx context.Context) (*identity.Identity, bool) {
	ident, ok := ctx.Value(identityContextKey).(*identity.Identity)
	return ident, ok
}

func sessionIDFromRequest(r *http.Request) string {
	return strings.TrimSpace(r.Header.Get(sessionHeader))
}

// requireOwnedStore loads the {storeID} route parameter and checks that
// the authenticated identity owns it. It writes the error response
// itself when the check fails.
func requireOwnedStore(w http.ResponseWriter, r *http.Request, registry *store.Registry) (*store.MerchantStore, bool) {
	ident, ok := identityFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Not authenticated")
		return nil, false
	}

	storeID := chi.URLParam(r, "storeID")

	s, err := registry.GetByID(r.Context(), storeID)
	if err != nil {
		respondStoreLookupError(w, err, "Failed to get store")
		return nil, false
	}

	if s.Profile.UserID != ident.ID {
		respondWithError(w, http.StatusForbidden, "Not the store owner")
		return nil, false
	}

	return s, true
}
