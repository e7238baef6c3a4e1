package handlers

import (
	"net/http"

	"github.com/MrSnakeDoc/scoreboard/internal/httpserver/deps"
	"github.com/MrSnakeDoc/scoreboard/internal/logger"
)

type reloadResponse struct {
	Triggered bool   `json:"triggered"`
	Message   string `json:"message"`
}

// Reload asks the provisioner to re-apply the competition file.
func Reload(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if d.ReloadTrigger == nil {
			writeJSON(w, http.StatusNotFound, reloadResponse{Message: "provisioning is disabled"})
			return
		}

		select {
		case d.ReloadTrigger <- struct{}{}:
			d.Logger.Info("manual provisioning triggered via endpoint",
				logger.String("remote_ip", r.RemoteAddr))
			writeJSON(w, http.StatusAccepted, reloadResponse{Triggered: true, Message: "reload triggered"})
		default:
			d.Logger.Warn("provisioning reload already pending",
				logger.String("remote_ip", r.RemoteAddr))
			writeJSON(w, http.StatusTooManyRequests, reloadResponse{Message: "reload already pending, please wait"})
		}
	}
}
