package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/MrSnakeDoc/scoreboard/internal/httpserver/deps"
)

type componentStatus struct {
	OK         bool   `json:"ok"`
	Mode       string `json:"mode,omitempty"`
	LastReload string `json:"last_reload,omitempty"`
	Teams      *int   `json:"teams,omitempty"`
	Services   *int   `json:"services,omitempty"`
	Impact     string `json:"impact,omitempty"`
	Error      string `json:"error,omitempty"`
}

type infraResponse struct {
	Mode       string                     `json:"mode"`
	Components map[string]componentStatus `json:"components"`
}

// Infra reports the state of the store, provisioning and authentication.
func Infra(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		components := map[string]componentStatus{
			"store":        checkStore(r.Context(), d),
			"provisioning": provisioningStatus(d),
			"auth":         authStatus(d),
		}
		writeJSON(w, http.StatusOK, infraResponse{
			Mode:       overallMode(components),
			Components: components,
		})
	}
}

// overallMode is "critical" when scores cannot be read, "degraded" when
// they can but provisioning or team logins are broken.
func overallMode(components map[string]componentStatus) string {
	if !components["store"].OK {
		return "critical"
	}
	for _, c := range components {
		if !c.OK {
			return "degraded"
		}
	}
	return "operational"
}

func checkStore(ctx context.Context, d deps.Deps) componentStatus {
	if d.Store == nil {
		return componentStatus{OK: false, Error: "store not initialized"}
	}

	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := d.Store.Ping(ctx); err != nil {
		return componentStatus{
			OK:     false,
			Mode:   d.StoreKind,
			Impact: "scores unavailable",
			Error:  "ping failed",
		}
	}
	return componentStatus{OK: true, Mode: d.StoreKind}
}

func provisioningStatus(d deps.Deps) componentStatus {
	if d.Provisioner == nil {
		return componentStatus{OK: true, Mode: "disabled"}
	}

	st := d.Provisioner.Status()
	out := componentStatus{
		OK:         st.LastError == "" && !st.LastSuccess.IsZero(),
		Mode:       "file",
		LastReload: "never",
		Error:      st.LastError,
	}
	if !st.LastSuccess.IsZero() {
		out.LastReload = st.LastSuccess.UTC().Format(time.RFC3339)
		out.Teams = &st.Teams
		out.Services = &st.Services
	}
	if st.LastError != "" {
		out.Impact = "serving last applied competition file"
	}
	return out
}

func authStatus(d deps.Deps) componentStatus {
	if d.Tokens == nil {
		return componentStatus{OK: false, Error: "token table not initialized"}
	}
	teams := d.Tokens.TeamCount()
	out := componentStatus{OK: true, Mode: "bearer", Teams: &teams}
	if teams == 0 {
		out.Impact = "admin token only"
	}
	return out
}
