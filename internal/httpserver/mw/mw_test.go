package mw

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/scoreboard/internal/auth"
	"github.com/MrSnakeDoc/scoreboard/internal/logger"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})
}

func TestAllowOnlyCIDRS(t *testing.T) {
	h := AllowOnlyCIDRS([]string{"10.0.0.0/8"}, false, logger.NewNop())(okHandler())

	tests := []struct {
		remote string
		want   int
	}{
		{"10.2.3.4:1234", http.StatusOK},
		{"192.0.2.1:1234", http.StatusForbidden},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
		req.RemoteAddr = tt.remote
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Code != tt.want {
			t.Errorf("%s: status = %d, want %d", tt.remote, rec.Code, tt.want)
		}
	}
}

func TestAllowOnlyCIDRSEmptyPassthrough(t *testing.T) {
	h := AllowOnlyCIDRS(nil, false, logger.NewNop())(okHandler())
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}

func TestRateLimit(t *testing.T) {
	h := RateLimit(RateLimitConfig{RPS: 0.001, Burst: 2})(okHandler())

	codes := make([]int, 0, 3)
	for range 3 {
		req := httptest.NewRequest(http.MethodGet, "/api/leaderboard", nil)
		req.RemoteAddr = "192.0.2.1:1000"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
		if rec.Code == http.StatusTooManyRequests && rec.Header().Get("Retry-After") == "" {
			t.Error("429 without Retry-After")
		}
	}
	if codes[0] != http.StatusOK || codes[1] != http.StatusOK || codes[2] != http.StatusTooManyRequests {
		t.Errorf("codes = %v, want [200 200 429]", codes)
	}

	other := httptest.NewRequest(http.MethodGet, "/api/leaderboard", nil)
	other.RemoteAddr = "192.0.2.2:1000"
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, other)
	if rec.Code != http.StatusOK {
		t.Errorf("other client throttled: %d", rec.Code)
	}
}

func TestRateLimitDisabled(t *testing.T) {
	h := RateLimit(RateLimitConfig{RPS: 0})(okHandler())
	for range 50 {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d with limiting disabled", rec.Code)
		}
	}
}

func TestLimiterSweep(t *testing.T) {
	l := newLimiter(RateLimitConfig{RPS: 1, Burst: 1, IdleTTL: time.Minute, SweepInterval: time.Hour})
	now := time.Now()
	l.get("a", now)
	l.get("b", now.Add(2*time.Minute))

	l.mu.Lock()
	l.sweepLocked(now.Add(2 * time.Minute))
	_, hasA := l.clients["a"]
	_, hasB := l.clients["b"]
	l.mu.Unlock()

	if hasA || !hasB {
		t.Errorf("sweep kept a=%v b=%v, want only b", hasA, hasB)
	}
}

type httpObs struct {
	mu     sync.Mutex
	routes []string
	codes  []int
}

func (o *httpObs) ObserveHTTP(route, _ string, code int, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.routes = append(o.routes, route)
	o.codes = append(o.codes, code)
}

func TestLogRecordsRouteAndCaller(t *testing.T) {
	tokens := auth.NewTokens("admin")
	obs := &httpObs{}

	var seenHolder bool
	r := chi.NewRouter()
	r.Use(Log(logger.NewNop(), obs))
	r.With(auth.Require(tokens, logger.NewNop())).Get("/api/teams/{teamID}/scores", func(w http.ResponseWriter, r *http.Request) {
		seenHolder = auth.FromContext(r.Context()).IsAdmin()
		w.WriteHeader(http.StatusTeapot)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/teams/3/scores", nil)
	req.Header.Set("Authorization", "Bearer admin")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if !seenHolder {
		t.Error("handler did not see admin caller")
	}
	if len(obs.routes) != 1 || obs.routes[0] != "/api/teams/{teamID}/scores" || obs.codes[0] != http.StatusTeapot {
		t.Errorf("observed routes=%v codes=%v", obs.routes, obs.codes)
	}
}
