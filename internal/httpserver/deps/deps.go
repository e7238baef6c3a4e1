package deps

import (
	"context"
	"time"

	"github.com/MrSnakeDoc/scoreboard/internal/auth"
	"github.com/MrSnakeDoc/scoreboard/internal/logger"
	"github.com/MrSnakeDoc/scoreboard/internal/metrics"
	"github.com/MrSnakeDoc/scoreboard/internal/scheduler"
	"github.com/MrSnakeDoc/scoreboard/internal/scoring"
	"github.com/MrSnakeDoc/scoreboard/internal/version"
)

// Pinger reports whether the backing store answers.
type Pinger interface {
	Ping(ctx context.Context) error
}

// ProvisionStatus exposes the outcome of the latest provisioning runs.
type ProvisionStatus interface {
	Status() scheduler.Status
}

type Deps struct {
	Logger    logger.Logger
	StartTime time.Time
	Build     version.Info
	TimeNow   func() time.Time // for testing, defaults to time.Now

	AllowedCIDRS []string // IPs allowed to reach /metrics, /infra and /reload
	TrustProxy   bool     // true if running behind a trusted reverse proxy

	Engine    *scoring.Engine
	Store     Pinger
	StoreKind string // "redis" | "memory"
	Tokens    *auth.Tokens
	Metrics   *metrics.Metrics // nil disables /metrics

	Provisioner   ProvisionStatus // nil when no competition file is configured
	ReloadTrigger chan<- struct{} // nil when no competition file is configured
}

// Now returns the current time through TimeNow when set.
func (d Deps) Now() time.Time {
	if d.TimeNow != nil {
		return d.TimeNow()
	}
	return time.Now()
}
