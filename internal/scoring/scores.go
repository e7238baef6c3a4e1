package scoring

import (
	"sort"

	"github.com/MrSnakeDoc/scoreboard/internal/domain"
)

// TeamScore is a team's points broken down by service name.
type TeamScore struct {
	TeamID   int            `json:"id"`
	Team     string         `json:"name"`
	Services map[string]int `json:"services"`
}

// ServiceScore is the points earned on one service.
type ServiceScore struct {
	Service string `json:"service"`
	Points  int    `json:"score"`
}

func buildTeamScores(snap Snapshot) []TeamScore {
	teams := make(map[int]domain.Team, len(snap.Teams))
	for _, t := range snap.Teams {
		teams[t.ID] = t
	}
	services := make(map[int]domain.Service, len(snap.Services))
	for _, s := range snap.Services {
		services[s.ID] = s
	}

	byTeam := make(map[int]*TeamScore)
	for _, row := range snap.Ledger {
		team, ok := teams[row.Key.TeamID]
		if !ok {
			continue
		}
		svc, ok := services[row.Key.ServiceID]
		if !ok {
			continue
		}
		ts, ok := byTeam[team.ID]
		if !ok {
			ts = &TeamScore{TeamID: team.ID, Team: team.Name, Services: make(map[string]int)}
			byTeam[team.ID] = ts
		}
		ts.Services[svc.Name] = row.Points
	}

	out := make([]TeamScore, 0, len(byTeam))
	for _, ts := range byTeam {
		out = append(out, *ts)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TeamID < out[j].TeamID })
	return out
}

func buildServiceScores(view TeamView) []ServiceScore {
	out := make([]ServiceScore, 0, len(view.Rows))
	if !view.Found {
		return out
	}
	for _, row := range view.Rows {
		out = append(out, ServiceScore{Service: row.Service.Name, Points: row.Ledger.Points})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Service < out[j].Service })
	return out
}

func sortedTeams(snap Snapshot) []domain.Team {
	out := make([]domain.Team, len(snap.Teams))
	copy(out, snap.Teams)
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
