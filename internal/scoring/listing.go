package scoring

import (
	"sort"

	"github.com/MrSnakeDoc/scoreboard/internal/domain"
)

// AdminService is a catalog entry as seen by administrators.
type AdminService struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Box      string `json:"box"`
	Port     int    `json:"port"`
	Award    int    `json:"award"`
	Disabled bool   `json:"disabled"`
}

// TeamServiceStatus is one of a team's own services with its counters,
// uptime and recent check window.
type TeamServiceStatus struct {
	ServiceID        int                   `json:"service_id"`
	Name             string                `json:"name"`
	Box              string                `json:"box"`
	Disabled         bool                  `json:"disabled"`
	Points           int                   `json:"points"`
	IsUp             bool                  `json:"is_up"`
	TotalChecks      int                   `json:"total_checks"`
	SuccessfulChecks int                   `json:"successful_checks"`
	Uptime           Uptime                `json:"uptime"`
	RecentChecks     []domain.ServiceCheck `json:"recent_checks"`
}

// buildAdminServices lists every catalog service, disabled ones included,
// ordered by id.
func buildAdminServices(snap Snapshot) []AdminService {
	out := make([]AdminService, 0, len(snap.Services))
	for _, s := range snap.Services {
		out = append(out, AdminService{ID: s.ID, Name: s.Name, Box: s.Box, Port: s.Port, Award: s.Award, Disabled: s.Disabled})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// buildTeamServices lists a team's own ledger rows ordered by service name.
// Disabled services stay in this view; the public matrix hides them.
func buildTeamServices(view TeamView, window int) []TeamServiceStatus {
	if !view.Found {
		return []TeamServiceStatus{}
	}
	out := make([]TeamServiceStatus, 0, len(view.Rows))
	for _, row := range view.Rows {
		out = append(out, TeamServiceStatus{
			ServiceID:        row.Service.ID,
			Name:             row.Service.Name,
			Box:              row.Service.Box,
			Disabled:         row.Service.Disabled,
			Points:           row.Ledger.Points,
			IsUp:             row.Ledger.IsUp,
			TotalChecks:      row.Ledger.TotalChecks,
			SuccessfulChecks: row.Ledger.SuccessfulChecks,
			Uptime:           UptimeOf(row.Ledger),
			RecentChecks:     recentWindow(row.Recent, window),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ServiceID < out[j].ServiceID
	})
	return out
}
