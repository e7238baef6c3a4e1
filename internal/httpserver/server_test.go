package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/MrSnakeDoc/scoreboard/internal/auth"
	"github.com/MrSnakeDoc/scoreboard/internal/config"
	"github.com/MrSnakeDoc/scoreboard/internal/domain"
	"github.com/MrSnakeDoc/scoreboard/internal/httpserver/deps"
	"github.com/MrSnakeDoc/scoreboard/internal/index"
	"github.com/MrSnakeDoc/scoreboard/internal/logger"
	"github.com/MrSnakeDoc/scoreboard/internal/metrics"
	"github.com/MrSnakeDoc/scoreboard/internal/scoring"
)

const (
	adminToken = "admin-token"
	alphaToken = "alpha-pw"
	bravoToken = "bravo-pw"
)

var errDown = errors.New("dial tcp: connection refused")

type downStore struct{}

func (downStore) Ping(context.Context) error { return errDown }

func (downStore) Snapshot(context.Context) (scoring.Snapshot, error) {
	return scoring.Snapshot{}, errDown
}

func (downStore) TeamView(context.Context, int, int) (scoring.TeamView, error) {
	return scoring.TeamView{}, errDown
}

func (downStore) TeamServiceRow(context.Context, domain.TeamServiceKey, int) (scoring.TeamServiceRow, bool, error) {
	return scoring.TeamServiceRow{}, false, errDown
}

type fixture struct {
	handler http.Handler
	httpID  int
	sshID   int
	trigger chan struct{}
}

func seed(t *testing.T) (*index.MemoryLedger, int, int) {
	t.Helper()
	ctx := context.Background()
	m := index.NewMemoryLedger()

	_ = m.UpsertTeam(ctx, domain.Team{ID: 1, Name: "Alpha", Color: "#f00"})
	_ = m.UpsertTeam(ctx, domain.Team{ID: 2, Name: "Bravo", Color: "#00f"})
	web, _ := m.UpsertService(ctx, domain.Service{Name: "web01_http", Box: "web01"})
	ssh, _ := m.UpsertService(ctx, domain.Service{Name: "web01_ssh", Box: "web01", Disabled: true})
	for _, team := range []int{1, 2} {
		for _, svc := range []int{web.ID, ssh.ID} {
			if _, err := m.EnrollTeamService(ctx, domain.TeamServiceKey{TeamID: team, ServiceID: svc}); err != nil {
				t.Fatalf("EnrollTeamService() error = %v", err)
			}
		}
	}

	now := time.Now()
	mustRecord := func(team, svc int, up bool, award int) {
		if err := m.RecordCheck(ctx, domain.TeamServiceKey{TeamID: team, ServiceID: svc}, up, award, now); err != nil {
			t.Fatalf("RecordCheck() error = %v", err)
		}
	}
	mustRecord(1, web.ID, true, 10)
	mustRecord(1, web.ID, false, 10)
	mustRecord(2, web.ID, false, 10)
	mustRecord(1, ssh.ID, true, 5)

	return m, web.ID, ssh.ID
}

func newFixture(t *testing.T, reader scoring.Reader, pinger deps.Pinger, cidrs []string) *fixture {
	t.Helper()
	tokens := auth.NewTokens(adminToken)
	tokens.SetTeamCredentials(map[string]int{alphaToken: 1, bravoToken: 2})
	trigger := make(chan struct{}, 1)

	cfg := &config.Config{ListenPort: ":0", RequestTimeout: 5 * time.Second}
	reg := metrics.New()
	d := deps.Deps{
		Logger:        logger.NewNop(),
		StartTime:     time.Now(),
		AllowedCIDRS:  cidrs,
		Engine:        scoring.NewEngine(reader, logger.NewNop(), reg, 10),
		Store:         pinger,
		StoreKind:     "memory",
		Tokens:        tokens,
		Metrics:       reg,
		ReloadTrigger: trigger,
	}
	return &fixture{handler: NewRouter(cfg, logger.NewNop(), d), trigger: trigger}
}

func newSeededFixture(t *testing.T) *fixture {
	m, httpID, sshID := seed(t)
	f := newFixture(t, m, m, nil)
	f.httpID, f.sshID = httpID, sshID
	return f
}

func (f *fixture) do(t *testing.T, method, path, token string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	req.RemoteAddr = "192.0.2.10:4000"
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("invalid JSON %q: %v", rec.Body.String(), err)
	}
	return v
}

func TestAPIRequiresToken(t *testing.T) {
	f := newSeededFixture(t)

	for _, path := range []string{"/api/leaderboard", "/api/matrix", "/api/dashboard", "/api/services", "/api/teams"} {
		if rec := f.do(t, http.MethodGet, path, ""); rec.Code != http.StatusUnauthorized {
			t.Errorf("%s without token: status = %d, want 401", path, rec.Code)
		}
		if rec := f.do(t, http.MethodGet, path, "wrong"); rec.Code != http.StatusUnauthorized {
			t.Errorf("%s with bad token: status = %d, want 401", path, rec.Code)
		}
	}
}

func TestLeaderboard(t *testing.T) {
	f := newSeededFixture(t)

	rec := f.do(t, http.MethodGet, "/api/leaderboard", bravoToken)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}
	board := decode[[]scoring.LeaderboardEntry](t, rec)
	if len(board) != 2 || board[0].Team != "Alpha" || board[0].Points != 15 || board[1].Points != 0 {
		t.Errorf("leaderboard = %+v", board)
	}
}

func TestMatrixScopeByCaller(t *testing.T) {
	f := newSeededFixture(t)

	team := decode[scoring.Matrix](t, f.do(t, http.MethodGet, "/api/matrix", alphaToken))
	if len(team.Services) != 1 || team.Services[0] != "web01_http" {
		t.Errorf("team matrix services = %v, want only the enabled one", team.Services)
	}
	for _, row := range team.Rows {
		if _, ok := row.Status["web01_ssh"]; ok {
			t.Errorf("disabled service leaked into team matrix row %+v", row)
		}
	}

	admin := decode[scoring.Matrix](t, f.do(t, http.MethodGet, "/api/matrix", adminToken))
	if len(admin.Services) != 2 {
		t.Errorf("admin matrix services = %v, want both", admin.Services)
	}
	if admin.LastUpdated.IsZero() {
		t.Error("matrix has no last_updated")
	}
}

func TestDashboard(t *testing.T) {
	f := newSeededFixture(t)

	rec := f.do(t, http.MethodGet, "/api/dashboard", alphaToken)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, `"leaderboard":{"data":`) || !strings.Contains(body, `"matrix":{"data":`) {
		t.Errorf("dashboard = %s", body)
	}
}

func TestServicesByCapability(t *testing.T) {
	f := newSeededFixture(t)

	admin := decode[[]scoring.AdminService](t, f.do(t, http.MethodGet, "/api/services", adminToken))
	if len(admin) != 2 {
		t.Fatalf("admin services = %+v", admin)
	}

	team := decode[[]scoring.TeamServiceStatus](t, f.do(t, http.MethodGet, "/api/services", alphaToken))
	if len(team) != 2 {
		t.Fatalf("team services = %+v", team)
	}
	for _, s := range team {
		if s.ServiceID == f.httpID && (s.Uptime.Percent != 50 || s.Points != 10 || len(s.RecentChecks) != 2) {
			t.Errorf("http row = %+v", s)
		}
	}
}

func TestUptime(t *testing.T) {
	f := newSeededFixture(t)

	path := "/api/team-services/1/" + strconv.Itoa(f.httpID) + "/uptime"
	rec := f.do(t, http.MethodGet, path, alphaToken)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	proj := decode[scoring.UptimeProjection](t, rec)
	if !proj.Found || proj.Uptime.Percent != 50 {
		t.Errorf("projection = %+v", proj)
	}

	if rec := f.do(t, http.MethodGet, path, bravoToken); rec.Code != http.StatusForbidden {
		t.Errorf("other team status = %d, want 403", rec.Code)
	}
	if rec := f.do(t, http.MethodGet, path, adminToken); rec.Code != http.StatusOK {
		t.Errorf("admin status = %d, want 200", rec.Code)
	}

	missing := decode[scoring.UptimeProjection](t, f.do(t, http.MethodGet, "/api/team-services/1/999/uptime", alphaToken))
	if missing.Found || missing.Uptime.Percent != 0 {
		t.Errorf("missing projection = %+v", missing)
	}

	if rec := f.do(t, http.MethodGet, "/api/team-services/x/1/uptime", adminToken); rec.Code != http.StatusBadRequest {
		t.Errorf("bad id status = %d, want 400", rec.Code)
	}
}

func TestTeamsAndScores(t *testing.T) {
	f := newSeededFixture(t)

	teams := decode[[]domain.Team](t, f.do(t, http.MethodGet, "/api/teams", alphaToken))
	if len(teams) != 2 || teams[0].ID != 1 || teams[0].Color != "#f00" {
		t.Errorf("teams = %+v", teams)
	}

	scores := decode[[]scoring.TeamScore](t, f.do(t, http.MethodGet, "/api/teams/scores", adminToken))
	if len(scores) != 2 {
		t.Errorf("team scores = %+v", scores)
	}

	one := decode[[]scoring.ServiceScore](t, f.do(t, http.MethodGet, "/api/teams/1/scores", alphaToken))
	if len(one) == 0 {
		t.Errorf("team 1 scores empty")
	}

	unknown := f.do(t, http.MethodGet, "/api/teams/42/scores", alphaToken)
	if unknown.Code != http.StatusOK || strings.TrimSpace(unknown.Body.String()) != "[]" {
		t.Errorf("unknown team scores = %d %s", unknown.Code, unknown.Body)
	}
}

func TestStoreUnavailable(t *testing.T) {
	f := newFixture(t, downStore{}, downStore{}, nil)

	for _, path := range []string{"/api/leaderboard", "/api/matrix", "/api/services", "/api/teams", "/api/dashboard"} {
		rec := f.do(t, http.MethodGet, path, adminToken)
		if rec.Code != http.StatusServiceUnavailable {
			t.Errorf("%s: status = %d, want 503", path, rec.Code)
		}
		if strings.Contains(rec.Body.String(), "connection refused") {
			t.Errorf("%s leaked internal error: %s", path, rec.Body)
		}
	}

	if rec := f.do(t, http.MethodGet, "/readyz", ""); rec.Code != http.StatusServiceUnavailable {
		t.Errorf("readyz status = %d, want 503", rec.Code)
	}
	infra := decode[map[string]any](t, f.do(t, http.MethodGet, "/infra", ""))
	if infra["mode"] != "critical" {
		t.Errorf("infra mode = %v, want critical", infra["mode"])
	}
}

func TestOpsEndpoints(t *testing.T) {
	f := newSeededFixture(t)

	if rec := f.do(t, http.MethodGet, "/healthz", ""); rec.Code != http.StatusOK {
		t.Errorf("healthz status = %d", rec.Code)
	}
	if rec := f.do(t, http.MethodGet, "/readyz", ""); rec.Code != http.StatusOK {
		t.Errorf("readyz status = %d", rec.Code)
	}

	infra := decode[map[string]any](t, f.do(t, http.MethodGet, "/infra", ""))
	if infra["mode"] != "operational" {
		t.Errorf("infra mode = %v", infra["mode"])
	}

	if rec := f.do(t, http.MethodPost, "/reload", ""); rec.Code != http.StatusAccepted {
		t.Errorf("first reload status = %d, want 202", rec.Code)
	}
	if rec := f.do(t, http.MethodPost, "/reload", ""); rec.Code != http.StatusTooManyRequests {
		t.Errorf("pending reload status = %d, want 429", rec.Code)
	}
	<-f.trigger

	f.do(t, http.MethodGet, "/api/leaderboard", adminToken)
	rec := f.do(t, http.MethodGet, "/metrics", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `scoreboard_aggregations_total{op="leaderboard",status="ok"}`) {
		t.Errorf("metrics = %d %s", rec.Code, rec.Body)
	}
}

func TestOpsRestrictedByCIDR(t *testing.T) {
	m, _, _ := seed(t)
	f := newFixture(t, m, m, []string{"10.0.0.0/8"})

	for _, path := range []string{"/metrics", "/infra"} {
		if rec := f.do(t, http.MethodGet, path, ""); rec.Code != http.StatusForbidden {
			t.Errorf("%s from outside: status = %d, want 403", path, rec.Code)
		}
	}
	if rec := f.do(t, http.MethodPost, "/reload", ""); rec.Code != http.StatusForbidden {
		t.Errorf("reload from outside: status = %d, want 403", rec.Code)
	}
	if rec := f.do(t, http.MethodGet, "/healthz", ""); rec.Code != http.StatusOK {
		t.Errorf("healthz should stay public, got %d", rec.Code)
	}
}
