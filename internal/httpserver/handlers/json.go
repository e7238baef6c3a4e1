package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/MrSnakeDoc/scoreboard/internal/httpserver/deps"
	"github.com/MrSnakeDoc/scoreboard/internal/logger"
	"github.com/MrSnakeDoc/scoreboard/internal/scoring"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErrorMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// writeError logs err and maps it to a status: 503 when the store could
// not be read, 500 otherwise. Internal details never reach the client.
func writeError(d deps.Deps, w http.ResponseWriter, r *http.Request, err error) {
	d.Logger.Error("request failed",
		logger.String("path", r.URL.Path),
		logger.String("request_id", middleware.GetReqID(r.Context())),
		logger.Error(err))

	if errors.Is(err, scoring.ErrStoreUnavailable) {
		writeErrorMessage(w, http.StatusServiceUnavailable, "scoring data temporarily unavailable")
		return
	}
	writeErrorMessage(w, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
}

// intParam parses a positive integer URL parameter.
func intParam(r *http.Request, name string) (int, bool) {
	v, err := strconv.Atoi(chi.URLParam(r, name))
	if err != nil || v <= 0 {
		return 0, false
	}
	return v, true
}
