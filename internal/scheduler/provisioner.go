package scheduler

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/MrSnakeDoc/scoreboard/internal/domain"
	"github.com/MrSnakeDoc/scoreboard/internal/logger"
	"github.com/MrSnakeDoc/scoreboard/internal/scoring"
	"github.com/MrSnakeDoc/scoreboard/internal/sources/competition"
)

// Catalog is the store surface provisioning writes to.
type Catalog interface {
	Snapshot(ctx context.Context) (scoring.Snapshot, error)
	UpsertTeam(ctx context.Context, team domain.Team) error
	UpsertService(ctx context.Context, svc domain.Service) (domain.Service, error)
	EnrollTeamService(ctx context.Context, key domain.TeamServiceKey) (bool, error)
}

// CredentialSink receives the team passwords of each applied file.
type CredentialSink interface {
	SetTeamCredentials(creds map[string]int)
}

// Observer is told about every provisioning run.
type Observer interface {
	ObserveProvision(teams, services int, at time.Time, err error)
}

// Status describes the last provisioning runs, for /infra.
type Status struct {
	LastSuccess time.Time
	LastAttempt time.Time
	LastError   string
	Teams       int
	Services    int
	Disabled    int
}

// Provisioner applies the competition file to the store at startup, on an
// interval, on manual trigger and whenever the file changes.
type Provisioner struct {
	loader        *competition.Loader
	store         Catalog
	creds         CredentialSink
	observer      Observer
	logger        logger.Logger
	interval      time.Duration
	watch         bool
	manualTrigger <-chan struct{}
	now           func() time.Time

	runMu sync.Mutex // serializes runs

	statusMu sync.RWMutex
	status   Status
}

// NewProvisioner creates a provisioner. observer may be nil.
func NewProvisioner(
	file string,
	store Catalog,
	creds CredentialSink,
	observer Observer,
	log logger.Logger,
	interval time.Duration,
	watch bool,
	manualTrigger <-chan struct{},
) *Provisioner {
	return &Provisioner{
		loader:        competition.NewLoader(file),
		store:         store,
		creds:         creds,
		observer:      observer,
		logger:        log.With(logger.String("file", file)),
		interval:      interval,
		watch:         watch,
		manualTrigger: manualTrigger,
		now:           time.Now,
	}
}

// Start applies the file once and fails if that first run fails.
func (p *Provisioner) Start(ctx context.Context) error {
	if err := p.Provision(ctx); err != nil {
		return fmt.Errorf("initial provisioning failed: %w", err)
	}
	return nil
}

// Run re-applies the file until ctx is cancelled. A failed run is logged
// and the previously applied state stays in place.
func (p *Provisioner) Run(ctx context.Context) error {
	var ticks <-chan time.Time
	if p.interval > 0 {
		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()
		ticks = ticker.C
	}

	var (
		events <-chan fsnotify.Event
		errs   <-chan error
	)
	if p.watch {
		watcher, err := p.newWatcher()
		if err != nil {
			p.logger.Warn("file watch disabled", logger.Error(err))
		} else {
			defer watcher.Close()
			events, errs = watcher.Events, watcher.Errors
		}
	}

	target := filepath.Clean(p.loader.Path())
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticks:
			p.provisionLogged(ctx, "interval")
		case <-p.manualTrigger:
			p.provisionLogged(ctx, "manual")
		case event, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			if filepath.Clean(event.Name) != target || (!event.Has(fsnotify.Write) && !event.Has(fsnotify.Create)) {
				continue
			}
			p.provisionLogged(ctx, "file change")
		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			p.logger.Error("file watcher error", logger.Error(err))
		}
	}
}

// newWatcher watches the directory of the file so atomic saves that
// replace the inode keep being seen.
func (p *Provisioner) newWatcher() (*fsnotify.Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := watcher.Add(filepath.Dir(p.loader.Path())); err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("failed to watch directory: %w", err)
	}
	return watcher, nil
}

func (p *Provisioner) provisionLogged(ctx context.Context, reason string) {
	p.logger.Info("provisioning triggered", logger.String("reason", reason))
	if err := p.Provision(ctx); err != nil {
		p.logger.Error("failed to provision competition", logger.Error(err))
	}
}

// Provision loads the file and applies it:
//   - every team is upserted, teams absent from the file are kept
//   - every service is upserted under "<box>_<service>"
//   - services no longer in the file are disabled, never deleted
//   - every team gets a ledger row for every service, existing rows are
//     left untouched
//   - team passwords replace the current team tokens
func (p *Provisioner) Provision(ctx context.Context) (err error) {
	p.runMu.Lock()
	defer p.runMu.Unlock()

	started := p.now()
	var plan competition.Plan
	disabled := 0
	defer func() { p.finish(started, plan, disabled, err) }()

	cfg, err := p.loader.Load()
	if err != nil {
		return fmt.Errorf("failed to load competition file: %w", err)
	}
	plan = competition.Map(cfg)

	snap, err := p.store.Snapshot(ctx)
	if err != nil {
		return fmt.Errorf("failed to read catalog: %w", err)
	}

	for _, team := range plan.Teams {
		if err := p.store.UpsertTeam(ctx, team); err != nil {
			return fmt.Errorf("failed to upsert team %d: %w", team.ID, err)
		}
	}

	wanted := make(map[string]bool, len(plan.Services))
	services := make([]domain.Service, 0, len(plan.Services))
	for _, want := range plan.Services {
		svc, err := p.store.UpsertService(ctx, want)
		if err != nil {
			return fmt.Errorf("failed to upsert service %s: %w", want.Name, err)
		}
		wanted[want.Name] = true
		services = append(services, svc)
	}

	for _, existing := range snap.Services {
		if wanted[existing.Name] || existing.Disabled {
			continue
		}
		existing.Disabled = true
		if _, err := p.store.UpsertService(ctx, existing); err != nil {
			return fmt.Errorf("failed to disable service %s: %w", existing.Name, err)
		}
		disabled++
	}

	enrolled := 0
	for _, team := range plan.Teams {
		for _, svc := range services {
			created, err := p.store.EnrollTeamService(ctx, domain.TeamServiceKey{TeamID: team.ID, ServiceID: svc.ID})
			if err != nil {
				return fmt.Errorf("failed to enroll team %d for service %s: %w", team.ID, svc.Name, err)
			}
			if created {
				enrolled++
			}
		}
	}

	if p.creds != nil {
		p.creds.SetTeamCredentials(plan.Credentials)
	}

	p.logger.Info("competition provisioned",
		logger.Int("teams", len(plan.Teams)),
		logger.Int("services", len(plan.Services)),
		logger.Int("disabled", disabled),
		logger.Int("enrolled", enrolled),
		logger.Duration("duration", p.now().Sub(started)))

	return nil
}

func (p *Provisioner) finish(at time.Time, plan competition.Plan, disabled int, err error) {
	if p.observer != nil {
		p.observer.ObserveProvision(len(plan.Teams), len(plan.Services), at, err)
	}

	p.statusMu.Lock()
	defer p.statusMu.Unlock()
	p.status.LastAttempt = at
	if err != nil {
		p.status.LastError = err.Error()
		return
	}
	p.status.LastSuccess = at
	p.status.LastError = ""
	p.status.Teams = len(plan.Teams)
	p.status.Services = len(plan.Services)
	p.status.Disabled = disabled
}

// Status returns the outcome of the latest runs.
func (p *Provisioner) Status() Status {
	p.statusMu.RLock()
	defer p.statusMu.RUnlock()
	return p.status
}
