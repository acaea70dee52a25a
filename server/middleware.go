package server

import (
	"context"
	"net/http"
	"strings"

	"github.com/collegegpt/ragserver/pkg/authorizer"
)

type contextKey string

const identityKey contextKey = "identity"

// withIdentity verifies a Bearer token when an authorizer is configured.
// Requests without a token stay anonymous; identity only personalizes
// answers. An invalid or expired token is rejected.
func (s *Server) withIdentity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth := s.config.Authorizer()

		if auth == nil {
			next.ServeHTTP(w, r)
			return
		}

		header := r.Header.Get("Authorization")

		if header == "" {
			next.ServeHTTP(w, r)
			return
		}

		token := strings.TrimPrefix(header, "Bearer ")

		identity, err := auth.Verify(r.Context(), token)

		if err != nil {
			s.logger.WithError(err).Debug("rejected bearer token")

			writeError(w, http.StatusUnauthorized, "invalid or expired token")
			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), identityKey, identity)))
	})
}

func identityFromContext(ctx context.Context) *authorizer.Identity {
	identity, _ := ctx.Value(identityKey).(*authorizer.Identity)
	return identity
}
