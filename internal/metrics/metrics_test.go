package metrics

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveAggregation(t *testing.T) {
	m := New()

	m.ObserveAggregation("leaderboard", 5*time.Millisecond, nil)
	m.ObserveAggregation("leaderboard", 5*time.Millisecond, nil)
	m.ObserveAggregation("matrix", time.Millisecond, errors.New("boom"))

	if got := testutil.ToFloat64(m.aggregationTotal.WithLabelValues("leaderboard", "ok")); got != 2 {
		t.Errorf("leaderboard ok = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.aggregationTotal.WithLabelValues("matrix", "error")); got != 1 {
		t.Errorf("matrix error = %v, want 1", got)
	}
	if got := testutil.CollectAndCount(m.aggregationDuration); got != 2 {
		t.Errorf("duration series = %d, want 2", got)
	}
}

func TestObserveCorruptRows(t *testing.T) {
	m := New()

	m.ObserveCorruptRows("matrix", 3)
	m.ObserveCorruptRows("matrix", 0)

	if got := testutil.ToFloat64(m.corruptRows.WithLabelValues("matrix")); got != 3 {
		t.Errorf("corrupt rows = %v, want 3", got)
	}
}

func TestObserveProvision(t *testing.T) {
	m := New()
	at := time.Unix(1_700_000_000, 0)

	m.ObserveProvision(4, 9, at, nil)
	m.ObserveProvision(1, 1, at.Add(time.Hour), errors.New("bad yaml"))

	if got := testutil.ToFloat64(m.provisionedTeams); got != 4 {
		t.Errorf("teams gauge = %v, want 4 (failed run must not move it)", got)
	}
	if got := testutil.ToFloat64(m.provisionedServices); got != 9 {
		t.Errorf("services gauge = %v, want 9", got)
	}
	if got := testutil.ToFloat64(m.lastProvision); got != float64(at.Unix()) {
		t.Errorf("last provision = %v", got)
	}
	if got := testutil.ToFloat64(m.provisionRuns.WithLabelValues("error")); got != 1 {
		t.Errorf("error runs = %v, want 1", got)
	}
}

func TestHandler(t *testing.T) {
	m := New()
	m.ObserveHTTP("/api/leaderboard", http.MethodGet, http.StatusOK, 2*time.Millisecond)
	m.ObserveHTTP("", http.MethodGet, http.StatusNotFound, time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body, _ := io.ReadAll(rec.Body)
	for _, want := range []string{
		`scoreboard_http_requests_total{code="200",method="GET",route="/api/leaderboard"} 1`,
		`route="unmatched"`,
		"go_goroutines",
	} {
		if !strings.Contains(string(body), want) {
			t.Errorf("exposition missing %q", want)
		}
	}
}
