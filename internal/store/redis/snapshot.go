package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/scoreboard/internal/domain"
	"github.com/MrSnakeDoc/scoreboard/internal/scoring"
)

// Snapshot reads the teams, the services and the whole ledger inside one
// MULTI/EXEC so the three come from the same point in time.
func (s *Store) Snapshot(ctx context.Context) (scoring.Snapshot, error) {
	var teamsCmd, servicesCmd, ledgerCmd *redis.MapStringStringCmd

	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		teamsCmd = pipe.HGetAll(ctx, KeyTeams)
		servicesCmd = pipe.HGetAll(ctx, KeyServices)
		ledgerCmd = pipe.HGetAll(ctx, KeyLedger)
		return nil
	})
	if err != nil {
		return scoring.Snapshot{}, fmt.Errorf("failed to read snapshot: %w", err)
	}

	teams, err := decodeHash[domain.Team](teamsCmd.Val())
	if err != nil {
		return scoring.Snapshot{}, fmt.Errorf("failed to decode teams: %w", err)
	}
	services, err := decodeHash[domain.Service](servicesCmd.Val())
	if err != nil {
		return scoring.Snapshot{}, fmt.Errorf("failed to decode services: %w", err)
	}
	ledger, err := decodeHash[domain.TeamService](ledgerCmd.Val())
	if err != nil {
		return scoring.Snapshot{}, fmt.Errorf("failed to decode ledger: %w", err)
	}

	return scoring.Snapshot{Teams: teams, Services: services, Ledger: ledger}, nil
}

// TeamView reads one team's ledger rows and their recent checks. The reads
// run under WATCH and are retried if the prober wrote in between. A window
// <= 0 skips the check history.
func (s *Store) TeamView(ctx context.Context, teamID int, window int) (scoring.TeamView, error) {
	var view scoring.TeamView

	err := s.watch(ctx, func(tx *redis.Tx) error {
		view = scoring.TeamView{}

		teamRaw, err := tx.HGet(ctx, KeyTeams, strconv.Itoa(teamID)).Bytes()
		if errors.Is(err, redis.Nil) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to get team %d: %w", teamID, err)
		}
		if err := json.Unmarshal(teamRaw, &view.Team); err != nil {
			return fmt.Errorf("failed to unmarshal team %d: %w", teamID, err)
		}
		view.Found = true

		rawServices, err := tx.HGetAll(ctx, KeyServices).Result()
		if err != nil {
			return fmt.Errorf("failed to get services: %w", err)
		}
		services, err := decodeHash[domain.Service](rawServices)
		if err != nil {
			return fmt.Errorf("failed to decode services: %w", err)
		}
		if len(services) == 0 {
			return validate(ctx, tx)
		}
		sort.Slice(services, func(i, j int) bool { return services[i].ID < services[j].ID })

		fields := make([]string, len(services))
		for i, svc := range services {
			fields[i] = LedgerField(domain.TeamServiceKey{TeamID: teamID, ServiceID: svc.ID})
		}
		values, err := tx.HMGet(ctx, KeyLedger, fields...).Result()
		if err != nil {
			return fmt.Errorf("failed to get ledger rows for team %d: %w", teamID, err)
		}

		for i, v := range values {
			raw, ok := v.(string)
			if !ok {
				continue // not enrolled
			}
			var row domain.TeamService
			if err := json.Unmarshal([]byte(raw), &row); err != nil {
				return fmt.Errorf("failed to unmarshal ledger row %s: %w", fields[i], err)
			}
			view.Rows = append(view.Rows, scoring.TeamServiceRow{Service: services[i], Ledger: row})
		}

		if window > 0 && len(view.Rows) > 0 {
			cmds := make([]*redis.StringSliceCmd, len(view.Rows))
			_, err := tx.Pipelined(ctx, func(pipe redis.Pipeliner) error {
				for i, row := range view.Rows {
					cmds[i] = pipe.ZRevRange(ctx, ChecksKey(row.Ledger.Key), 0, int64(window-1))
				}
				return nil
			})
			if err != nil {
				return fmt.Errorf("failed to get check history for team %d: %w", teamID, err)
			}
			for i, cmd := range cmds {
				history, err := decodeChecks(cmd.Val())
				if err != nil {
					return err
				}
				view.Rows[i].Recent = history
			}
		}

		return validate(ctx, tx)
	}, KeyTeams, KeyServices, KeyLedger)
	if err != nil {
		return scoring.TeamView{}, fmt.Errorf("failed to read team view: %w", err)
	}

	return view, nil
}

// TeamServiceRow reads one ledger row, its service and its recent checks
// under WATCH.
func (s *Store) TeamServiceRow(ctx context.Context, key domain.TeamServiceKey, window int) (scoring.TeamServiceRow, bool, error) {
	var (
		row   scoring.TeamServiceRow
		found bool
	)

	err := s.watch(ctx, func(tx *redis.Tx) error {
		row, found = scoring.TeamServiceRow{}, false

		raw, err := tx.HGet(ctx, KeyLedger, LedgerField(key)).Bytes()
		if errors.Is(err, redis.Nil) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to get ledger row %s: %w", key, err)
		}
		if err := json.Unmarshal(raw, &row.Ledger); err != nil {
			return fmt.Errorf("failed to unmarshal ledger row %s: %w", key, err)
		}
		found = true

		svcRaw, err := tx.HGet(ctx, KeyServices, strconv.Itoa(key.ServiceID)).Bytes()
		switch {
		case errors.Is(err, redis.Nil):
			row.Service = domain.Service{ID: key.ServiceID}
		case err != nil:
			return fmt.Errorf("failed to get service %d: %w", key.ServiceID, err)
		default:
			if err := json.Unmarshal(svcRaw, &row.Service); err != nil {
				return fmt.Errorf("failed to unmarshal service %d: %w", key.ServiceID, err)
			}
		}

		if window > 0 {
			members, err := tx.ZRevRange(ctx, ChecksKey(key), 0, int64(window-1)).Result()
			if err != nil {
				return fmt.Errorf("failed to get check history %s: %w", key, err)
			}
			if row.Recent, err = decodeChecks(members); err != nil {
				return err
			}
		}

		return validate(ctx, tx)
	}, KeyServices, KeyLedger)
	if err != nil {
		return scoring.TeamServiceRow{}, false, fmt.Errorf("failed to read team service: %w", err)
	}

	return row, found, nil
}

// validate commits an empty transaction so EXEC fails with TxFailedErr when
// a watched key changed during the reads.
func validate(ctx context.Context, tx *redis.Tx) error {
	_, err := tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Exists(ctx, KeyLedger)
		return nil
	})
	return err
}

func decodeHash[T any](raw map[string]string) ([]T, error) {
	out := make([]T, 0, len(raw))
	for field, value := range raw {
		var v T
		if err := json.Unmarshal([]byte(value), &v); err != nil {
			return nil, fmt.Errorf("field %s: %w", field, err)
		}
		out = append(out, v)
	}
	return out, nil
}
