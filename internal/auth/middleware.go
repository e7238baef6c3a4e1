package auth

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/MrSnakeDoc/scoreboard/internal/logger"
)

// Resolver maps a bearer token to a caller.
type Resolver interface {
	Resolve(token string) (Caller, bool)
}

// Require rejects requests without a valid bearer token with 401 and
// stores the resolved caller in the request context.
func Require(tokens Resolver, log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			caller, ok := tokens.Resolve(bearer(r))
			if !ok {
				log.Debug("rejected request without valid token",
					logger.String("path", r.URL.Path),
					logger.String("remote_ip", r.RemoteAddr))
				w.Header().Set("WWW-Authenticate", `Bearer realm="scoreboard"`)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				_ = json.NewEncoder(w).Encode(map[string]string{"error": "unauthorized"})
				return
			}

			if holder, ok := r.Context().Value(holderKey{}).(*Caller); ok {
				*holder = caller
			}
			next.ServeHTTP(w, r.WithContext(WithCaller(r.Context(), caller)))
		})
	}
}

// bearer extracts the token of an "Authorization: Bearer <token>" header.
func bearer(r *http.Request) string {
	h := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(h, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
