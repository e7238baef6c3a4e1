package scoring

import (
	"context"

	"github.com/MrSnakeDoc/scoreboard/internal/domain"
)

// DefaultHistoryWindow is the number of recent checks attached to a
// team-service projection.
const DefaultHistoryWindow = 10

// Snapshot is one consistent view of the catalog and the full ledger.
type Snapshot struct {
	Teams    []domain.Team
	Services []domain.Service
	Ledger   []domain.TeamService
}

// TeamServiceRow is a ledger row joined to its service together with the
// most recent checks, newest first.
type TeamServiceRow struct {
	Service domain.Service
	Ledger  domain.TeamService
	Recent  []domain.ServiceCheck
}

// TeamView is one consistent view of a single team's ledger.
// Found is false when the team does not exist in the catalog.
type TeamView struct {
	Team  domain.Team
	Found bool
	Rows  []TeamServiceRow
}

// Reader is the read interface the engine needs from the store.
// Implementations must return each result from a single consistent view
// and must return a nil error with empty results when data is absent.
type Reader interface {
	Snapshot(ctx context.Context) (Snapshot, error)
	TeamView(ctx context.Context, teamID int, window int) (TeamView, error)
	TeamServiceRow(ctx context.Context, key domain.TeamServiceKey, window int) (TeamServiceRow, bool, error)
}
