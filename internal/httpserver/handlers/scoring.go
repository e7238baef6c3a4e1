package handlers

import (
	"net/http"

	"github.com/MrSnakeDoc/scoreboard/internal/auth"
	"github.com/MrSnakeDoc/scoreboard/internal/domain"
	"github.com/MrSnakeDoc/scoreboard/internal/httpserver/deps"
	"github.com/MrSnakeDoc/scoreboard/internal/logger"
	"github.com/MrSnakeDoc/scoreboard/internal/scoring"
)

func matrixScope(c auth.Caller) scoring.MatrixScope {
	if c.IsAdmin() {
		return scoring.MatrixAdmin
	}
	return scoring.MatrixPublic
}

// Leaderboard serves the ranked point totals.
func Leaderboard(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		board, err := d.Engine.Leaderboard(r.Context())
		if err != nil {
			writeError(d, w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, board)
	}
}

// Matrix serves the team × service status grid. Admins see disabled
// services, everyone else does not.
func Matrix(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		m, err := d.Engine.Matrix(r.Context(), matrixScope(auth.FromContext(r.Context())))
		if err != nil {
			writeError(d, w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, m)
	}
}

// Dashboard serves the leaderboard and the matrix together. Each section
// fails on its own; the response is 503 only when both failed.
func Dashboard(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		dash := d.Engine.Dashboard(r.Context(), matrixScope(auth.FromContext(r.Context())))

		status := http.StatusOK
		if !dash.Leaderboard.OK() && !dash.Matrix.OK() {
			status = http.StatusServiceUnavailable
		}
		if !dash.Leaderboard.OK() {
			d.Logger.Error("dashboard section failed", logger.String("section", "leaderboard"), logger.Error(dash.Leaderboard.Err))
			dash.Leaderboard.Error = "leaderboard temporarily unavailable"
		}
		if !dash.Matrix.OK() {
			d.Logger.Error("dashboard section failed", logger.String("section", "matrix"), logger.Error(dash.Matrix.Err))
			dash.Matrix.Error = "matrix temporarily unavailable"
		}
		writeJSON(w, status, dash)
	}
}

// Services lists every service with admin fields for admins, and the
// caller's own services with counters, uptime and recent checks for teams.
func Services(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller := auth.FromContext(r.Context())

		if caller.IsAdmin() {
			list, err := d.Engine.AdminServices(r.Context())
			if err != nil {
				writeError(d, w, r, err)
				return
			}
			writeJSON(w, http.StatusOK, list)
			return
		}

		list, err := d.Engine.TeamServices(r.Context(), caller.TeamID)
		if err != nil {
			writeError(d, w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}

// Uptime serves the uptime projection of one team-service pairing. Team
// callers may only read their own team.
func Uptime(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		teamID, ok := intParam(r, "teamID")
		if !ok {
			writeErrorMessage(w, http.StatusBadRequest, "invalid team id")
			return
		}
		serviceID, ok := intParam(r, "serviceID")
		if !ok {
			writeErrorMessage(w, http.StatusBadRequest, "invalid service id")
			return
		}
		if !auth.FromContext(r.Context()).CanSeeTeam(teamID) {
			writeErrorMessage(w, http.StatusForbidden, "forbidden")
			return
		}

		proj, err := d.Engine.Uptime(r.Context(), domain.TeamServiceKey{TeamID: teamID, ServiceID: serviceID})
		if err != nil {
			writeError(d, w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, proj)
	}
}

// Teams lists the team catalog.
func Teams(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		teams, err := d.Engine.Teams(r.Context())
		if err != nil {
			writeError(d, w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, teams)
	}
}

// TeamScores lists every team's points per service.
func TeamScores(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		scores, err := d.Engine.TeamScores(r.Context())
		if err != nil {
			writeError(d, w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, scores)
	}
}

// TeamScore lists one team's points per service.
func TeamScore(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		teamID, ok := intParam(r, "teamID")
		if !ok {
			writeErrorMessage(w, http.StatusBadRequest, "invalid team id")
			return
		}
		scores, err := d.Engine.TeamScore(r.Context(), teamID)
		if err != nil {
			writeError(d, w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, scores)
	}
}
