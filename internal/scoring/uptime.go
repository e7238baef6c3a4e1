package scoring

import (
	"github.com/MrSnakeDoc/scoreboard/internal/domain"
)

// Uptime is an integer uptime percentage. Corrupt is set when the counters
// it was computed from violate the ledger invariants; Percent is then
// clamped to [0, 100].
type Uptime struct {
	Percent int  `json:"percent"`
	Corrupt bool `json:"corrupt,omitempty"`
}

// ComputeUptime returns floor(successful*100/total), or 0 when no check has
// run yet.
func ComputeUptime(successful, total int) Uptime {
	corrupt := successful < 0 || total < 0 || successful > total
	if total <= 0 {
		return Uptime{Percent: 0, Corrupt: corrupt}
	}
	if successful < 0 {
		return Uptime{Percent: 0, Corrupt: true}
	}
	if successful > total {
		return Uptime{Percent: 100, Corrupt: true}
	}
	return Uptime{Percent: successful * 100 / total, Corrupt: corrupt}
}

// UptimeOf computes the uptime of a ledger row.
func UptimeOf(row domain.TeamService) Uptime {
	return ComputeUptime(row.SuccessfulChecks, row.TotalChecks)
}

// UptimeProjection is the uptime of one team-service pairing together with
// its recent check window.
type UptimeProjection struct {
	Key          domain.TeamServiceKey `json:"key"`
	Found        bool                  `json:"found"`
	Uptime       Uptime                `json:"uptime"`
	RecentChecks []domain.ServiceCheck `json:"recent_checks"`
}

func projectUptime(key domain.TeamServiceKey, row TeamServiceRow, found bool, window int) UptimeProjection {
	if !found {
		return UptimeProjection{Key: key, RecentChecks: []domain.ServiceCheck{}}
	}
	return UptimeProjection{
		Key:          key,
		Found:        true,
		Uptime:       UptimeOf(row.Ledger),
		RecentChecks: recentWindow(row.Recent, window),
	}
}
