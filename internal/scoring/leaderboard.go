package scoring

import (
	"sort"

	"github.com/MrSnakeDoc/scoreboard/internal/domain"
)

// LeaderboardEntry is one ranked team.
type LeaderboardEntry struct {
	TeamID int    `json:"team_id"`
	Team   string `json:"team"`
	Points int    `json:"points"`
}

// buildLeaderboard sums points per team over every ledger row, disabled
// services included, and ranks teams by total descending. Equal totals are
// ordered by team id ascending. Teams without ledger rows, and rows whose
// team is missing from the catalog, do not appear.
func buildLeaderboard(snap Snapshot) []LeaderboardEntry {
	teams := make(map[int]domain.Team, len(snap.Teams))
	for _, t := range snap.Teams {
		teams[t.ID] = t
	}

	totals := make(map[int]int)
	for _, row := range snap.Ledger {
		if _, ok := teams[row.Key.TeamID]; !ok {
			continue
		}
		totals[row.Key.TeamID] += row.Points
	}

	board := make([]LeaderboardEntry, 0, len(totals))
	for id, points := range totals {
		board = append(board, LeaderboardEntry{
			TeamID: id,
			Team:   teams[id].Name,
			Points: points,
		})
	}

	sort.Slice(board, func(i, j int) bool {
		if board[i].Points != board[j].Points {
			return board[i].Points > board[j].Points
		}
		return board[i].TeamID < board[j].TeamID
	})

	return board
}
