package mw

import (
	"net/http"

	"github.com/MrSnakeDoc/scoreboard/internal/logger"
	"github.com/MrSnakeDoc/scoreboard/internal/utils"
)

// AllowOnlyCIDRS allows only the listed IPs and CIDRs. An empty list does
// not filter.
func AllowOnlyCIDRS(allowed []string, trustProxy bool, log logger.Logger) func(http.Handler) http.Handler {
	m := utils.NewIPMatcher(allowed)
	if m.IsEmpty() {
		return func(next http.Handler) http.Handler { return next }
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := utils.ClientIP(r, trustProxy)
			if !m.Allow(ip) {
				log.Debug("rejected ip outside allowed cidrs",
					logger.String("ip", ip),
					logger.String("path", r.URL.Path))
				w.WriteHeader(http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
