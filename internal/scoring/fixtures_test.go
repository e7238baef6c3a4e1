package scoring

import "github.com/MrSnakeDoc/scoreboard/internal/domain"

func key(team, service int) domain.TeamServiceKey {
	return domain.TeamServiceKey{TeamID: team, ServiceID: service}
}

// scenarioSnapshot: team A has S1 at 3/4 with 12 points, team B has S1
// with no checks yet.
func scenarioSnapshot() Snapshot {
	return Snapshot{
		Teams: []domain.Team{
			{ID: 1, Name: "A", Color: "#ff0000"},
			{ID: 2, Name: "B", Color: "#0000ff"},
		},
		Services: []domain.Service{
			{ID: 1, Name: "S1", Box: "box1"},
		},
		Ledger: []domain.TeamService{
			{Key: key(1, 1), Points: 12, IsUp: true, TotalChecks: 4, SuccessfulChecks: 3},
			{Key: key(2, 1), Points: 0, IsUp: false, TotalChecks: 0, SuccessfulChecks: 0},
		},
	}
}
