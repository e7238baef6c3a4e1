package scoring

import (
	"sort"
	"time"

	"github.com/MrSnakeDoc/scoreboard/internal/domain"
)

// MatrixScope selects which services the status matrix exposes.
type MatrixScope int

const (
	// MatrixPublic hides disabled services from the columns and the cells.
	MatrixPublic MatrixScope = iota
	// MatrixAdmin shows every service in the catalog.
	MatrixAdmin
)

// MatrixRow is the current up/down state of one team's services, keyed by
// service name. A missing key means "unknown", not "down".
type MatrixRow struct {
	Team   string          `json:"team"`
	Status map[string]bool `json:"status"`
}

// Matrix is the team × service grid.
type Matrix struct {
	Services    []string    `json:"services"`
	Rows        []MatrixRow `json:"teams"`
	LastUpdated time.Time   `json:"last_updated"`
}

// buildMatrix projects the ledger into the status grid. Columns are the
// distinct service names in ascending order; rows are ordered by team name.
// Only teams with at least one visible ledger row get a row.
func buildMatrix(snap Snapshot, scope MatrixScope, now time.Time) *Matrix {
	services := make(map[int]domain.Service, len(snap.Services))
	names := make(map[string]struct{}, len(snap.Services))
	for _, s := range snap.Services {
		if s.Disabled && scope != MatrixAdmin {
			continue
		}
		services[s.ID] = s
		names[s.Name] = struct{}{}
	}

	columns := make([]string, 0, len(names))
	for name := range names {
		columns = append(columns, name)
	}
	sort.Strings(columns)

	teams := make(map[int]domain.Team, len(snap.Teams))
	for _, t := range snap.Teams {
		teams[t.ID] = t
	}

	byTeam := make(map[string]map[string]bool)
	for _, row := range snap.Ledger {
		team, ok := teams[row.Key.TeamID]
		if !ok {
			continue
		}
		svc, ok := services[row.Key.ServiceID]
		if !ok {
			continue
		}
		cells, ok := byTeam[team.Name]
		if !ok {
			cells = make(map[string]bool)
			byTeam[team.Name] = cells
		}
		cells[svc.Name] = row.IsUp
	}

	rows := make([]MatrixRow, 0, len(byTeam))
	for name, cells := range byTeam {
		rows = append(rows, MatrixRow{Team: name, Status: cells})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Team < rows[j].Team })

	return &Matrix{
		Services:    columns,
		Rows:        rows,
		LastUpdated: now.UTC(),
	}
}
