package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/MrSnakeDoc/scoreboard/internal/logger"
)

func TestTokensResolve(t *testing.T) {
	tokens := NewTokens("admin-secret")
	tokens.SetTeamCredentials(map[string]int{"red": 1, "blue": 2, "": 3})

	tests := []struct {
		name   string
		token  string
		want   Caller
		wantOK bool
	}{
		{"admin", "admin-secret", Admin(), true},
		{"team", "blue", TeamMember(2), true},
		{"unknown", "green", Caller{}, false},
		{"empty", "", Caller{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tokens.Resolve(tt.token)
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("Resolve(%q) = (%+v, %v), want (%+v, %v)", tt.token, got, ok, tt.want, tt.wantOK)
			}
		})
	}

	if tokens.TeamCount() != 2 {
		t.Errorf("TeamCount() = %d, want 2 (empty password skipped)", tokens.TeamCount())
	}
}

func TestSetTeamCredentialsReplaces(t *testing.T) {
	tokens := NewTokens("admin")
	tokens.SetTeamCredentials(map[string]int{"old": 1})
	tokens.SetTeamCredentials(map[string]int{"new": 1})

	if _, ok := tokens.Resolve("old"); ok {
		t.Error("old team token still resolves after replacement")
	}
	if c, ok := tokens.Resolve("new"); !ok || c.TeamID != 1 {
		t.Errorf("Resolve(new) = (%+v, %v)", c, ok)
	}
}

func TestCaller(t *testing.T) {
	if !Admin().CanSeeTeam(7) {
		t.Error("admin should see every team")
	}
	if !TeamMember(7).CanSeeTeam(7) || TeamMember(7).CanSeeTeam(8) {
		t.Error("team caller should see only its own team")
	}
	if (Caller{}).CanSeeTeam(0) {
		t.Error("anonymous caller should see no team")
	}
	if got := TeamMember(3).String(); got != "team:3" {
		t.Errorf("String() = %q", got)
	}
	if got := Admin().String(); got != "admin" {
		t.Errorf("String() = %q", got)
	}
	if got := FromContext(context.Background()); got.Role != RoleAnonymous {
		t.Errorf("FromContext(empty) = %+v", got)
	}
}

func TestRequire(t *testing.T) {
	tokens := NewTokens("admin-secret")
	tokens.SetTeamCredentials(map[string]int{"red": 1})

	var seen Caller
	h := Require(tokens, logger.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = FromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantCaller Caller
	}{
		{"no header", "", http.StatusUnauthorized, Caller{}},
		{"wrong scheme", "Basic red", http.StatusUnauthorized, Caller{}},
		{"bad token", "Bearer nope", http.StatusUnauthorized, Caller{}},
		{"team", "Bearer red", http.StatusNoContent, TeamMember(1)},
		{"admin lowercase scheme", "bearer admin-secret", http.StatusNoContent, Admin()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen = Caller{}
			req := httptest.NewRequest(http.MethodGet, "/api/leaderboard", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			ctx, holder := Track(req.Context())
			rec := httptest.NewRecorder()

			h.ServeHTTP(rec, req.WithContext(ctx))

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if seen != tt.wantCaller || *holder != tt.wantCaller {
				t.Errorf("caller = %+v (holder %+v), want %+v", seen, *holder, tt.wantCaller)
			}
		})
	}
}
