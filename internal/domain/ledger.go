package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// TeamServiceKey identifies the unique pairing of a team and a service.
type TeamServiceKey struct {
	TeamID    int `json:"team_id"`
	ServiceID int `json:"service_id"`
}

// String renders the key as "<team>:<service>".
func (k TeamServiceKey) String() string {
	return strconv.Itoa(k.TeamID) + ":" + strconv.Itoa(k.ServiceID)
}

// ParseTeamServiceKey is the inverse of TeamServiceKey.String.
func ParseTeamServiceKey(s string) (TeamServiceKey, error) {
	team, service, ok := strings.Cut(s, ":")
	if !ok {
		return TeamServiceKey{}, fmt.Errorf("invalid team service key: %q", s)
	}
	teamID, err := strconv.Atoi(team)
	if err != nil {
		return TeamServiceKey{}, fmt.Errorf("invalid team id in key %q: %w", s, err)
	}
	serviceID, err := strconv.Atoi(service)
	if err != nil {
		return TeamServiceKey{}, fmt.Errorf("invalid service id in key %q: %w", s, err)
	}
	return TeamServiceKey{TeamID: teamID, ServiceID: serviceID}, nil
}

// TeamService is a ledger row: the cumulative counters for one team
// running one service. Only the prober mutates it.
//
// Invariant: SuccessfulChecks <= TotalChecks.
type TeamService struct {
	Key              TeamServiceKey `json:"key"`
	Points           int            `json:"points"`
	IsUp             bool           `json:"is_up"`
	TotalChecks      int            `json:"total_checks"`
	SuccessfulChecks int            `json:"successful_checks"`
}

// Consistent reports whether the counters satisfy the ledger invariants.
func (ts TeamService) Consistent() bool {
	return ts.TotalChecks >= 0 &&
		ts.SuccessfulChecks >= 0 &&
		ts.Points >= 0 &&
		ts.SuccessfulChecks <= ts.TotalChecks
}
