package scoring

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/MrSnakeDoc/scoreboard/internal/domain"
	"github.com/MrSnakeDoc/scoreboard/internal/logger"
)

const tracerName = "github.com/MrSnakeDoc/scoreboard/internal/scoring"

// Recorder receives one observation per aggregation.
type Recorder interface {
	ObserveAggregation(op string, elapsed time.Duration, err error)
	ObserveCorruptRows(op string, count int)
}

type nopRecorder struct{}

func (nopRecorder) ObserveAggregation(string, time.Duration, error) {}
func (nopRecorder) ObserveCorruptRows(string, int)                 {}

// Engine computes the dashboard projections. It holds no mutable state and
// is safe for concurrent use; every call performs its own store read.
type Engine struct {
	reader   Reader
	logger   logger.Logger
	recorder Recorder
	tracer   trace.Tracer
	window   int
	now      func() time.Time
}

// NewEngine creates an engine over reader. A nil recorder disables metrics
// and a window <= 0 falls back to DefaultHistoryWindow.
func NewEngine(reader Reader, log logger.Logger, recorder Recorder, window int) *Engine {
	if recorder == nil {
		recorder = nopRecorder{}
	}
	if window <= 0 {
		window = DefaultHistoryWindow
	}
	return &Engine{
		reader:   reader,
		logger:   log,
		recorder: recorder,
		tracer:   otel.Tracer(tracerName),
		window:   window,
		now:      time.Now,
	}
}

// Window returns the number of recent checks attached to projections.
func (e *Engine) Window() int { return e.window }

// observe opens a span and returns the function that closes it and records
// the outcome.
func (e *Engine) observe(ctx context.Context, op string) (context.Context, func(*error)) {
	ctx, span := e.tracer.Start(ctx, "scoring."+op)
	start := e.now()
	return ctx, func(errp *error) {
		var err error
		if errp != nil {
			err = *errp
		}
		elapsed := e.now().Sub(start)
		e.recorder.ObserveAggregation(op, elapsed, err)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}
}

// Uptime projects a single team-service pairing. An unknown pairing yields
// Found=false and a nil error.
func (e *Engine) Uptime(ctx context.Context, key domain.TeamServiceKey) (proj UptimeProjection, err error) {
	ctx, done := e.observe(ctx, "uptime")
	defer done(&err)

	row, found, err := e.reader.TeamServiceRow(ctx, key, e.window)
	if err != nil {
		return UptimeProjection{}, storeError("uptime", err)
	}
	proj = projectUptime(key, row, found, e.window)
	if proj.Uptime.Corrupt {
		e.reportCorrupt("uptime", []domain.TeamService{row.Ledger})
	}
	return proj, nil
}

// Leaderboard ranks teams by total points.
func (e *Engine) Leaderboard(ctx context.Context) (board []LeaderboardEntry, err error) {
	ctx, done := e.observe(ctx, "leaderboard")
	defer done(&err)

	snap, err := e.reader.Snapshot(ctx)
	if err != nil {
		return nil, storeError("leaderboard", err)
	}
	return buildLeaderboard(snap), nil
}

// Matrix builds the team × service status grid for the given scope.
func (e *Engine) Matrix(ctx context.Context, scope MatrixScope) (m *Matrix, err error) {
	ctx, done := e.observe(ctx, "matrix")
	defer done(&err)

	trace.SpanFromContext(ctx).SetAttributes(attribute.Bool("scoring.matrix.admin", scope == MatrixAdmin))

	snap, err := e.reader.Snapshot(ctx)
	if err != nil {
		return nil, storeError("matrix", err)
	}
	return buildMatrix(snap, scope, e.now()), nil
}

// AdminServices lists the whole catalog, disabled services included.
func (e *Engine) AdminServices(ctx context.Context) (list []AdminService, err error) {
	ctx, done := e.observe(ctx, "admin_services")
	defer done(&err)

	snap, err := e.reader.Snapshot(ctx)
	if err != nil {
		return nil, storeError("admin services", err)
	}
	return buildAdminServices(snap), nil
}

// TeamServices lists a team's own services with uptime and recent checks.
// An unknown team yields an empty listing.
func (e *Engine) TeamServices(ctx context.Context, teamID int) (list []TeamServiceStatus, err error) {
	ctx, done := e.observe(ctx, "team_services")
	defer done(&err)

	trace.SpanFromContext(ctx).SetAttributes(attribute.Int("scoring.team_id", teamID))

	view, err := e.reader.TeamView(ctx, teamID, e.window)
	if err != nil {
		return nil, storeError("team services", err)
	}
	rows := make([]domain.TeamService, 0, len(view.Rows))
	for _, r := range view.Rows {
		rows = append(rows, r.Ledger)
	}
	e.reportCorrupt("team_services", rows)
	return buildTeamServices(view, e.window), nil
}

// Teams lists the team catalog ordered by id.
func (e *Engine) Teams(ctx context.Context) (teams []domain.Team, err error) {
	ctx, done := e.observe(ctx, "teams")
	defer done(&err)

	snap, err := e.reader.Snapshot(ctx)
	if err != nil {
		return nil, storeError("teams", err)
	}
	return sortedTeams(snap), nil
}

// TeamScores returns every team's points broken down by service.
func (e *Engine) TeamScores(ctx context.Context) (scores []TeamScore, err error) {
	ctx, done := e.observe(ctx, "team_scores")
	defer done(&err)

	snap, err := e.reader.Snapshot(ctx)
	if err != nil {
		return nil, storeError("team scores", err)
	}
	return buildTeamScores(snap), nil
}

// TeamScore returns one team's points per service. An unknown team yields
// an empty slice.
func (e *Engine) TeamScore(ctx context.Context, teamID int) (scores []ServiceScore, err error) {
	ctx, done := e.observe(ctx, "team_score")
	defer done(&err)

	view, err := e.reader.TeamView(ctx, teamID, 0)
	if err != nil {
		return nil, storeError("team score", err)
	}
	return buildServiceScores(view), nil
}

// Section is one independently computed part of a composite response.
// Exactly one of Data and Error is set.
type Section[T any] struct {
	Data  T
	Error string
	Err   error
}

// OK reports whether the section was computed.
func (s Section[T]) OK() bool { return s.Err == nil }

// MarshalJSON renders {"data": ...} or {"error": "..."}.
func (s Section[T]) MarshalJSON() ([]byte, error) {
	if !s.OK() {
		return json.Marshal(struct {
			Error string `json:"error"`
		}{s.Error})
	}
	return json.Marshal(struct {
		Data T `json:"data"`
	}{s.Data})
}

func section[T any](data T, err error) Section[T] {
	if err != nil {
		var zero T
		return Section[T]{Data: zero, Error: err.Error(), Err: err}
	}
	return Section[T]{Data: data}
}

// Dashboard is the leaderboard and matrix computed side by side. A failure
// in one section does not discard the other.
type Dashboard struct {
	Leaderboard Section[[]LeaderboardEntry] `json:"leaderboard"`
	Matrix      Section[*Matrix]            `json:"matrix"`
}

// Dashboard computes both sections concurrently.
func (e *Engine) Dashboard(ctx context.Context, scope MatrixScope) Dashboard {
	var (
		d  Dashboard
		wg sync.WaitGroup
	)
	wg.Go(func() {
		board, err := e.Leaderboard(ctx)
		d.Leaderboard = section(board, err)
	})
	wg.Go(func() {
		m, err := e.Matrix(ctx, scope)
		d.Matrix = section(m, err)
	})
	wg.Wait()
	return d
}

func (e *Engine) reportCorrupt(op string, rows []domain.TeamService) {
	count := 0
	for _, row := range rows {
		if row.Consistent() && !UptimeOf(row).Corrupt {
			continue
		}
		count++
		if e.logger != nil {
			e.logger.Warn("ledger row violates counter invariants",
				logger.String("op", op),
				logger.String("team_service", row.Key.String()),
				logger.Int("total_checks", row.TotalChecks),
				logger.Int("successful_checks", row.SuccessfulChecks),
				logger.Int("points", row.Points))
		}
	}
	if count > 0 {
		e.recorder.ObserveCorruptRows(op, count)
	}
}
