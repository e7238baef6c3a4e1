package index

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/MrSnakeDoc/scoreboard/internal/domain"
	"github.com/MrSnakeDoc/scoreboard/internal/scoring"
)

// MemoryLedger keeps the catalog, the ledger and the check history in
// process memory. It serves the same read and write surface as the Redis
// store and is used for local runs and tests.
type MemoryLedger struct {
	mu            sync.RWMutex
	teams         map[int]domain.Team
	services      map[int]domain.Service
	serviceByName map[string]int
	nextServiceID int
	ledger        map[domain.TeamServiceKey]domain.TeamService
	checks        map[domain.TeamServiceKey][]domain.ServiceCheck
}

// NewMemoryLedger creates an empty ledger.
func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{
		teams:         make(map[int]domain.Team),
		services:      make(map[int]domain.Service),
		serviceByName: make(map[string]int),
		ledger:        make(map[domain.TeamServiceKey]domain.TeamService),
		checks:        make(map[domain.TeamServiceKey][]domain.ServiceCheck),
	}
}

// Ping always succeeds.
func (m *MemoryLedger) Ping(context.Context) error { return nil }

// ─────────────────────────────────────────────────────────────────
// Read side
// ─────────────────────────────────────────────────────────────────

// Snapshot copies the catalog and the ledger under one read lock.
func (m *MemoryLedger) Snapshot(ctx context.Context) (scoring.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return scoring.Snapshot{}, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	snap := scoring.Snapshot{
		Teams:    make([]domain.Team, 0, len(m.teams)),
		Services: make([]domain.Service, 0, len(m.services)),
		Ledger:   make([]domain.TeamService, 0, len(m.ledger)),
	}
	for _, t := range m.teams {
		snap.Teams = append(snap.Teams, t)
	}
	for _, s := range m.services {
		snap.Services = append(snap.Services, s)
	}
	for _, row := range m.ledger {
		snap.Ledger = append(snap.Ledger, row)
	}
	return snap, nil
}

// TeamView returns the team's ledger rows joined to their services. A
// window <= 0 skips the check history.
func (m *MemoryLedger) TeamView(ctx context.Context, teamID int, window int) (scoring.TeamView, error) {
	if err := ctx.Err(); err != nil {
		return scoring.TeamView{}, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	team, ok := m.teams[teamID]
	if !ok {
		return scoring.TeamView{}, nil
	}

	view := scoring.TeamView{Team: team, Found: true}
	for key, row := range m.ledger {
		if key.TeamID != teamID {
			continue
		}
		svc, ok := m.services[key.ServiceID]
		if !ok {
			continue
		}
		view.Rows = append(view.Rows, scoring.TeamServiceRow{
			Service: svc,
			Ledger:  row,
			Recent:  m.recentLocked(key, window),
		})
	}
	sort.Slice(view.Rows, func(i, j int) bool {
		return view.Rows[i].Service.ID < view.Rows[j].Service.ID
	})
	return view, nil
}

// TeamServiceRow returns one ledger row with its recent checks.
func (m *MemoryLedger) TeamServiceRow(ctx context.Context, key domain.TeamServiceKey, window int) (scoring.TeamServiceRow, bool, error) {
	if err := ctx.Err(); err != nil {
		return scoring.TeamServiceRow{}, false, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	row, ok := m.ledger[key]
	if !ok {
		return scoring.TeamServiceRow{}, false, nil
	}
	svc, ok := m.services[key.ServiceID]
	if !ok {
		svc = domain.Service{ID: key.ServiceID}
	}
	return scoring.TeamServiceRow{
		Service: svc,
		Ledger:  row,
		Recent:  m.recentLocked(key, window),
	}, true, nil
}

func (m *MemoryLedger) recentLocked(key domain.TeamServiceKey, window int) []domain.ServiceCheck {
	if window <= 0 {
		return nil
	}
	history := m.checks[key]
	out := make([]domain.ServiceCheck, len(history))
	copy(out, history)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.After(out[j].Timestamp)
	})
	if len(out) > window {
		out = out[:window]
	}
	return out
}

// ─────────────────────────────────────────────────────────────────
// Provisioning
// ─────────────────────────────────────────────────────────────────

// UpsertTeam creates or replaces a team.
func (m *MemoryLedger) UpsertTeam(_ context.Context, team domain.Team) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.teams[team.ID] = team
	return nil
}

// UpsertService stores svc under its name, creating it with the next free
// id if needed. svc.ID is ignored; the stored service is returned.
func (m *MemoryLedger) UpsertService(_ context.Context, svc domain.Service) (domain.Service, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id, ok := m.serviceByName[svc.Name]
	if !ok {
		m.nextServiceID++
		id = m.nextServiceID
		m.serviceByName[svc.Name] = id
	}
	svc.ID = id
	m.services[id] = svc
	return svc, nil
}

// EnrollTeamService creates a zeroed ledger row for key. Existing rows are
// left untouched; created reports whether a row was added.
func (m *MemoryLedger) EnrollTeamService(_ context.Context, key domain.TeamServiceKey) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.ledger[key]; ok {
		return false, nil
	}
	m.ledger[key] = domain.TeamService{Key: key}
	return true, nil
}

// ─────────────────────────────────────────────────────────────────
// Prober side
// ─────────────────────────────────────────────────────────────────

// RecordCheck applies one check outcome to the ledger row and appends it to
// the history. award is added to the points when up is true.
func (m *MemoryLedger) RecordCheck(_ context.Context, key domain.TeamServiceKey, up bool, award int, at time.Time) error {
	if award < 0 {
		return fmt.Errorf("award must be >= 0, got %d", award)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	row, ok := m.ledger[key]
	if !ok {
		return fmt.Errorf("team service not enrolled: %s", key)
	}
	row.TotalChecks++
	row.IsUp = up
	if up {
		row.SuccessfulChecks++
		row.Points += award
	}
	m.ledger[key] = row
	m.checks[key] = append(m.checks[key], domain.ServiceCheck{Status: up, Timestamp: at.UTC()})
	return nil
}

// PutTeamService overwrites a ledger row as-is, bypassing the prober
// bookkeeping. Used to load fixtures.
func (m *MemoryLedger) PutTeamService(row domain.TeamService) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.ledger[row.Key] = row
}
